package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrRateLimited           = errors.New("rate limited by provider")
	ErrUnsupported           = errors.New("request unsupported by provider")
	ErrForbidden             = errors.New("resource not included in provider plan")
)

package usecase

import (
	"context"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
)

// MatchProvider is the upstream fixtures API. Implementations mark errors
// with ErrRateLimited, ErrUnsupported, ErrForbidden or
// ErrDependencyUnavailable (no connectivity) so callers can branch on them.
type MatchProvider interface {
	ListMatches(ctx context.Context, date string, codes []string) ([]fixture.Record, error)
	ListCompetitionMatches(ctx context.Context, code, date string) ([]fixture.Record, error)
}

// FetchProgress is a coarse progress report for long fetches.
type FetchProgress struct {
	Percent int
	Message string
}

// ProgressFunc receives progress reports. A nil ProgressFunc is valid.
type ProgressFunc func(FetchProgress)

func (f ProgressFunc) report(percent int, message string) {
	if f == nil {
		return
	}
	f(FetchProgress{Percent: percent, Message: message})
}

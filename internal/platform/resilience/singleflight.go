package resilience

import "golang.org/x/sync/singleflight"

// Group collapses concurrent loads of the same key into one call and hands
// every waiter the same typed result.
type Group[T any] struct {
	group singleflight.Group
}

func (g *Group[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	out, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	value, _ := out.(T)
	return value, err, shared
}

// Forget drops an in-flight key so the next caller starts a fresh load.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}

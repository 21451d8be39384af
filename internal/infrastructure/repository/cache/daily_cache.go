package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
	basecache "github.com/riskibarqy/predictz/internal/platform/cache"
)

type cachedDay struct {
	fixtures []fixture.Fixture
	exists   bool
}

// DailyCache keeps the last lookup of a durable DailyCache in process, so
// the web and chat paths do not hit the database on every request.
type DailyCache struct {
	next  fixture.DailyCache
	cache *basecache.Store[cachedDay]
}

// NewDailyCache wraps next. Entries expire after ttl so another process
// writing the same backend is picked up eventually.
func NewDailyCache(next fixture.DailyCache, ttl time.Duration) *DailyCache {
	return &DailyCache{next: next, cache: basecache.NewStore[cachedDay](ttl)}
}

func (r *DailyCache) Load(ctx context.Context, date string) ([]fixture.Fixture, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, dayKey(date), func(ctx context.Context) (cachedDay, error) {
		items, exists, err := r.next.Load(ctx, date)
		if err != nil {
			return cachedDay{}, err
		}
		return cachedDay{fixtures: append([]fixture.Fixture(nil), items...), exists: exists}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return append([]fixture.Fixture(nil), v.fixtures...), v.exists, nil
}

func (r *DailyCache) Save(ctx context.Context, date string, fixtures []fixture.Fixture) error {
	if err := r.next.Save(ctx, date, fixtures); err != nil {
		return err
	}
	r.cache.Purge(ctx)
	r.cache.Set(ctx, dayKey(date), cachedDay{fixtures: append([]fixture.Fixture(nil), fixtures...), exists: true})
	return nil
}

func (r *DailyCache) Clear(ctx context.Context) error {
	r.cache.Purge(ctx)
	return r.next.Clear(ctx)
}

func dayKey(date string) string {
	return "fixtures:day:" + date
}

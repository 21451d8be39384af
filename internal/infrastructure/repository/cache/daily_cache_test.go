package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
)

type countingCache struct {
	loads    int
	saves    int
	clears   int
	fixtures []fixture.Fixture
	date     string
	err      error
}

func (c *countingCache) Load(_ context.Context, date string) ([]fixture.Fixture, bool, error) {
	c.loads++
	if c.err != nil {
		return nil, false, c.err
	}
	if date != c.date {
		return nil, false, nil
	}
	return c.fixtures, true, nil
}

func (c *countingCache) Save(_ context.Context, date string, fixtures []fixture.Fixture) error {
	c.saves++
	c.date, c.fixtures = date, fixtures
	return nil
}

func (c *countingCache) Clear(_ context.Context) error {
	c.clears++
	c.date, c.fixtures = "", nil
	return nil
}

func TestDailyCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	next := &countingCache{date: "2026-03-14", fixtures: []fixture.Fixture{{ID: "1"}}}
	cache := NewDailyCache(next, time.Minute)

	for i := 0; i < 3; i++ {
		got, ok, err := cache.Load(ctx, "2026-03-14")
		if err != nil || !ok || len(got) != 1 {
			t.Fatalf("unexpected load: %+v ok=%v err=%v", got, ok, err)
		}
	}
	if next.loads != 1 {
		t.Fatalf("expected one backend load, got %d", next.loads)
	}

	if _, ok, _ := cache.Load(ctx, "2026-03-13"); ok {
		t.Fatalf("expected stale date to miss")
	}
	if _, ok, _ := cache.Load(ctx, "2026-03-13"); ok || next.loads != 2 {
		t.Fatalf("expected cached miss, loads=%d", next.loads)
	}
}

func TestDailyCache_SaveAndClear(t *testing.T) {
	ctx := context.Background()
	next := &countingCache{}
	cache := NewDailyCache(next, time.Minute)

	if _, ok, _ := cache.Load(ctx, "2026-03-14"); ok {
		t.Fatalf("expected empty cache")
	}
	if err := cache.Save(ctx, "2026-03-14", []fixture.Fixture{{ID: "7"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := cache.Load(ctx, "2026-03-14")
	if err != nil || !ok || got[0].ID != "7" || next.loads != 1 {
		t.Fatalf("expected saved day from memory: %+v ok=%v loads=%d", got, ok, next.loads)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := cache.Load(ctx, "2026-03-14"); ok || next.clears != 1 || next.loads != 2 {
		t.Fatalf("expected clear to reach backend, loads=%d clears=%d", next.loads, next.clears)
	}
}

func TestDailyCache_LoadErrorNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingCache{err: errors.New("connection refused")}
	cache := NewDailyCache(next, time.Minute)

	if _, _, err := cache.Load(ctx, "2026-03-14"); err == nil {
		t.Fatalf("expected backend error")
	}
	next.err = nil
	if _, _, err := cache.Load(ctx, "2026-03-14"); err != nil || next.loads != 2 {
		t.Fatalf("expected retry after error, loads=%d err=%v", next.loads, err)
	}
}

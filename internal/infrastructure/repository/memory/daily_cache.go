package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
)

// DailyCache holds one day of fixtures for the lifetime of the process.
type DailyCache struct {
	mu       sync.RWMutex
	date     string
	fixtures []fixture.Fixture
}

func NewDailyCache() *DailyCache {
	return &DailyCache{}
}

func (c *DailyCache) Load(_ context.Context, date string) ([]fixture.Fixture, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.date == "" || c.date != date {
		return nil, false, nil
	}
	return append([]fixture.Fixture(nil), c.fixtures...), true, nil
}

func (c *DailyCache) Save(_ context.Context, date string, fixtures []fixture.Fixture) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.date = date
	c.fixtures = append([]fixture.Fixture(nil), fixtures...)
	return nil
}

func (c *DailyCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.date = ""
	c.fixtures = nil
	return nil
}

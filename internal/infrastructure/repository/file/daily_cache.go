package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/infrastructure/repository/snapshot"
	"github.com/riskibarqy/predictz/internal/platform/atomicfile"
)

// DailyCache keeps one day of fixtures in a JSON file. A file for another
// date is treated as absent.
type DailyCache struct {
	mu   sync.Mutex
	path string
}

func NewDailyCache(path string) *DailyCache {
	if path == "" {
		path = "fixtures_cache.json"
	}
	return &DailyCache{path: path}
}

func (c *DailyCache) Path() string {
	return c.path
}

func (c *DailyCache) Load(_ context.Context, date string) ([]fixture.Fixture, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read fixture cache: %w", err)
	}

	day, err := snapshot.Decode(raw)
	if err != nil {
		return nil, false, err
	}
	if day.Date != date {
		return nil, false, nil
	}
	return day.Fixtures(), true, nil
}

func (c *DailyCache) Save(_ context.Context, date string, fixtures []fixture.Fixture) error {
	raw, err := snapshot.Encode(snapshot.FromFixtures(date, fixtures))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := atomicfile.WriteFile(c.path, raw, 0o644); err != nil {
		return fmt.Errorf("write fixture cache: %w", err)
	}
	return nil
}

func (c *DailyCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove fixture cache: %w", err)
	}
	return nil
}

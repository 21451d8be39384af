package fixture

import "context"

// DailyCache keeps one calendar day of fixtures. Load reports false for a
// missing entry or one stored for another date.
type DailyCache interface {
	Load(ctx context.Context, date string) ([]Fixture, bool, error)
	Save(ctx context.Context, date string, fixtures []Fixture) error
	Clear(ctx context.Context) error
}

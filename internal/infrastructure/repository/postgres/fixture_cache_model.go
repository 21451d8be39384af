package postgres

import "time"

const fixtureCacheTable = "fixture_cache"

type fixtureCacheTableModel struct {
	CacheDate    string    `db:"cache_date"`
	Payload      []byte    `db:"payload"`
	FixtureCount int       `db:"fixture_count"`
	SavedAt      time.Time `db:"saved_at"`
}

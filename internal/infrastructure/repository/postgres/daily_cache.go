package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/infrastructure/repository/snapshot"
	qb "github.com/riskibarqy/predictz/internal/platform/querybuilder"
)

// DailyCache stores the day's fixtures as one JSONB row. Saving a day drops
// every other day in the same transaction, so at most one row survives.
type DailyCache struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewDailyCache(db *sqlx.DB) *DailyCache {
	return &DailyCache{db: db, now: time.Now}
}

func (r *DailyCache) Load(ctx context.Context, date string) ([]fixture.Fixture, bool, error) {
	query, args, err := qb.Select("cache_date", "payload", "fixture_count", "saved_at").
		From(fixtureCacheTable).
		Where(qb.Eq("cache_date", date)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build select fixture cache query: %w", err)
	}

	var row fixtureCacheTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select fixture cache: %w", err)
	}

	day, err := snapshot.Decode(row.Payload)
	if err != nil {
		return nil, false, err
	}
	return day.Fixtures(), true, nil
}

func (r *DailyCache) Save(ctx context.Context, date string, fixtures []fixture.Fixture) error {
	payload, err := snapshot.Encode(snapshot.FromFixtures(date, fixtures))
	if err != nil {
		return err
	}

	upsertQuery, upsertArgs, err := qb.InsertModel(fixtureCacheTable, fixtureCacheTableModel{
		CacheDate:    date,
		Payload:      payload,
		FixtureCount: len(fixtures),
		SavedAt:      r.now().UTC(),
	}, `ON CONFLICT (cache_date)
DO UPDATE SET
    payload = EXCLUDED.payload,
    fixture_count = EXCLUDED.fixture_count,
    saved_at = EXCLUDED.saved_at`)
	if err != nil {
		return fmt.Errorf("build upsert fixture cache query: %w", err)
	}
	pruneQuery, pruneArgs, err := qb.DeleteFrom(fixtureCacheTable).
		Where(qb.Expr("cache_date <> ?", date)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build prune fixture cache query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save fixture cache: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, upsertQuery, upsertArgs...); err != nil {
		return fmt.Errorf("upsert fixture cache: %w", err)
	}
	if _, err := tx.ExecContext(ctx, pruneQuery, pruneArgs...); err != nil {
		return fmt.Errorf("prune fixture cache: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fixture cache: %w", err)
	}
	return nil
}

func (r *DailyCache) Clear(ctx context.Context) error {
	query, args, err := qb.DeleteFrom(fixtureCacheTable).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear fixture cache query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear fixture cache: %w", err)
	}
	return nil
}

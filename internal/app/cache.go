package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/predictz/db"
	"github.com/riskibarqy/predictz/internal/config"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/predictz/internal/infrastructure/repository/file"
	"github.com/riskibarqy/predictz/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/predictz/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// postgresReadCacheTTL bounds how long a process trusts its in-memory copy
// of a row another process may have rewritten.
const postgresReadCacheTTL = 5 * time.Minute

// openDailyCache builds the configured cache backend. The returned close
// func is never nil.
func openDailyCache(ctx context.Context, cfg config.Config, logger *logging.Logger) (fixture.DailyCache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		logger.Info("fixture cache backend selected", "backend", cfg.CacheBackend)
		return memory.NewDailyCache(), noop, nil
	case config.CacheBackendPostgres:
		dsn := normalizeDBURL(cfg.DBURL, cfg.ServiceName)
		if cfg.DBAutoMigrate {
			if err := migrateUp(dsn); err != nil {
				return nil, noop, err
			}
		}
		dbx, err := openDB(ctx, dsn, cfg)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("fixture cache backend selected", "backend", cfg.CacheBackend, "db_name", dbNameFromURL(cfg.DBURL))
		return cache.NewDailyCache(postgres.NewDailyCache(dbx), postgresReadCacheTTL), dbx.Close, nil
	default:
		fileCache := file.NewDailyCache(cfg.CacheFilePath)
		logger.Info("fixture cache backend selected", "backend", config.CacheBackendFile, "path", fileCache.Path())
		return fileCache, noop, nil
	}
}

func openDB(ctx context.Context, dsn string, cfg config.Config) (*sqlx.DB, error) {
	dbx, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	dbx.SetMaxOpenConns(cfg.DBMaxOpenConns)
	dbx.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := dbx.PingContext(ctx); err != nil {
		_ = dbx.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return dbx, nil
}

func migrateUp(dsn string) error {
	source, err := iofs.New(db.Migrations, db.MigrationsPath)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

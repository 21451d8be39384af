package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// FetchSource tells which path produced a fetch result.
type FetchSource string

const (
	FetchSourceBulk         FetchSource = "bulk"
	FetchSourceCompetitions FetchSource = "competitions"
	FetchSourceCache        FetchSource = "cache"
	FetchSourceNone         FetchSource = "none"
)

// FetchConfig holds the provider-specific pacing. The defaults match the
// free football-data.org tier (10 requests per minute).
type FetchConfig struct {
	BulkRateLimitCooldown        time.Duration
	CompetitionRateLimitCooldown time.Duration
	InterRequestDelay            time.Duration
}

func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		BulkRateLimitCooldown:        15 * time.Second,
		CompetitionRateLimitCooldown: 20 * time.Second,
		InterRequestDelay:            7 * time.Second,
	}
}

// FetchResult is what a fetch accumulated. Aborted is set when connectivity
// was lost; Records then holds whatever arrived before the failure.
type FetchResult struct {
	Records []fixture.Record
	Source  FetchSource
	Aborted bool
	Cause   error
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FixtureFetcher pulls one day of matches, trying the bulk endpoint first
// and falling back to one request per competition.
type FixtureFetcher struct {
	provider MatchProvider
	catalog  *fixture.Catalog
	cfg      FetchConfig
	sleep    Sleeper
	logger   *logging.Logger
}

func NewFixtureFetcher(provider MatchProvider, catalog *fixture.Catalog, cfg FetchConfig, logger *logging.Logger) *FixtureFetcher {
	if catalog == nil {
		catalog = fixture.DefaultCatalog()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureFetcher{
		provider: provider,
		catalog:  catalog,
		cfg:      cfg,
		sleep:    sleepContext,
		logger:   logger,
	}
}

// WithSleeper swaps the pause implementation, mainly for tests.
func (f *FixtureFetcher) WithSleeper(sleep Sleeper) *FixtureFetcher {
	if sleep != nil {
		f.sleep = sleep
	}
	return f
}

// FetchToday never returns an error: per-competition failures are
// swallowed and connectivity loss is reported through Aborted.
func (f *FixtureFetcher) FetchToday(ctx context.Context, date string, codes []string, progress ProgressFunc) FetchResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureFetcher.FetchToday",
		attribute.String("fetch.date", date),
		attribute.Int("fetch.codes", len(codes)),
	)
	result := f.fetch(ctx, date, codes, progress)
	span.SetAttributes(
		attribute.String("fetch.source", string(result.Source)),
		attribute.Int("fetch.records", len(result.Records)),
		attribute.Bool("fetch.aborted", result.Aborted),
	)
	finishUsecaseSpan(span, result.Cause)
	return result
}

func (f *FixtureFetcher) fetch(ctx context.Context, date string, codes []string, progress ProgressFunc) FetchResult {
	if len(codes) == 0 {
		return FetchResult{Source: FetchSourceNone}
	}

	progress.report(20, "Fetching from football-data.org...")
	records, err := f.provider.ListMatches(ctx, date, codes)
	switch {
	case err == nil && len(records) > 0:
		f.logger.InfoContext(ctx, "bulk fixtures fetched", "date", date, "count", len(records))
		return FetchResult{Records: f.stampCompetitions(records, ""), Source: FetchSourceBulk}
	case err == nil:
		f.logger.InfoContext(ctx, "bulk fetch returned no matches, trying per competition", "date", date)
	case isConnectivityError(ctx, err):
		f.logger.WarnContext(ctx, "bulk fetch lost connectivity", "date", date, "error", err)
		return FetchResult{Source: FetchSourceNone, Aborted: true, Cause: err}
	case errors.Is(err, ErrRateLimited):
		f.logger.WarnContext(ctx, "bulk fetch rate limited, cooling down", "cooldown", f.cfg.BulkRateLimitCooldown.String())
		if sleepErr := f.sleep(ctx, f.cfg.BulkRateLimitCooldown); sleepErr != nil {
			return FetchResult{Source: FetchSourceNone, Aborted: true, Cause: sleepErr}
		}
	default:
		f.logger.InfoContext(ctx, "bulk fetch unavailable, trying per competition", "date", date, "error", err)
	}

	return f.fetchPerCompetition(ctx, date, codes, progress)
}

func (f *FixtureFetcher) fetchPerCompetition(ctx context.Context, date string, codes []string, progress ProgressFunc) FetchResult {
	out := FetchResult{Source: FetchSourceCompetitions}
	for i, code := range codes {
		name := f.catalog.Lookup(code).Name
		progress.report(25+i*70/len(codes), fmt.Sprintf("Fetching %s...", name))

		records, err := f.fetchCompetition(ctx, code, date)
		switch {
		case err == nil:
			out.Records = append(out.Records, f.stampCompetitions(records, code)...)
		case isConnectivityError(ctx, err):
			f.logger.WarnContext(ctx, "competition fetch lost connectivity, stopping", "code", code, "error", err)
			out.Aborted = true
			out.Cause = err
			return out
		default:
			f.logger.DebugContext(ctx, "competition skipped", "code", code, "error", err)
		}

		if i == len(codes)-1 {
			break
		}
		if err := f.sleep(ctx, f.cfg.InterRequestDelay); err != nil {
			out.Aborted = true
			out.Cause = err
			return out
		}
	}

	f.logger.InfoContext(ctx, "per competition fetch finished", "date", date, "count", len(out.Records))
	return out
}

// fetchCompetition retries exactly once after a rate-limit cool-down.
func (f *FixtureFetcher) fetchCompetition(ctx context.Context, code, date string) ([]fixture.Record, error) {
	records, err := f.provider.ListCompetitionMatches(ctx, code, date)
	if err == nil || !errors.Is(err, ErrRateLimited) {
		return records, err
	}

	f.logger.WarnContext(ctx, "competition fetch rate limited, retrying once", "code", code, "cooldown", f.cfg.CompetitionRateLimitCooldown.String())
	if sleepErr := f.sleep(ctx, f.cfg.CompetitionRateLimitCooldown); sleepErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, sleepErr)
	}
	return f.provider.ListCompetitionMatches(ctx, code, date)
}

// stampCompetitions fills in competition metadata the provider omitted.
func (f *FixtureFetcher) stampCompetitions(records []fixture.Record, code string) []fixture.Record {
	if code == "" {
		return records
	}
	known := f.catalog.Lookup(code)
	for i := range records {
		if records[i].HasCompetition() {
			continue
		}
		records[i].Competition = fixture.RecordCompetition{Name: known.Name, Code: known.Code}
	}
	return records
}

func isConnectivityError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDependencyUnavailable) || ctx.Err() != nil
}

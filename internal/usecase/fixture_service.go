package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MessageNoConnectivity = "No internet connection"
	MessageNoFixtures     = "No fixtures today"
)

// TodayResult is one day of playable fixtures. Message is set when the
// list is empty and says why.
type TodayResult struct {
	Date      string
	Fixtures  []fixture.Fixture
	Source    FetchSource
	FromCache bool
	Aborted   bool
	Message   string
}

func (r TodayResult) Empty() bool {
	return len(r.Fixtures) == 0
}

type FixtureServiceConfig struct {
	Codes    []string
	Location *time.Location
}

// FixtureService serves today's fixtures from the same-day cache, falling
// back to the provider.
type FixtureService struct {
	fetcher *FixtureFetcher
	cache   fixture.DailyCache
	parser  *fixture.Parser
	codes   []string
	now     func() time.Time
	logger  *logging.Logger
}

func NewFixtureService(fetcher *FixtureFetcher, cache fixture.DailyCache, parser *fixture.Parser, cfg FixtureServiceConfig, logger *logging.Logger) *FixtureService {
	if logger == nil {
		logger = logging.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	if parser == nil {
		parser = fixture.NewParser(nil, loc, nil)
	}
	return &FixtureService{
		fetcher: fetcher,
		cache:   cache,
		parser:  parser,
		codes:   normalizeCodes(cfg.Codes),
		now:     time.Now,
		logger:  logger,
	}
}

// Date is the current UTC calendar date, the day football-data.org is
// asked for and the cache key. Kickoff times stay in the local zone.
func (s *FixtureService) Date() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *FixtureService) Codes() []string {
	return append([]string(nil), s.codes...)
}

// Today returns the playable fixtures for the current date. Provider
// failures never surface as errors; only a cancelled ctx does.
func (s *FixtureService) Today(ctx context.Context, progress ProgressFunc) (TodayResult, error) {
	date := s.Date()
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Today", attribute.String("fixture.date", date))
	result, err := s.today(ctx, date, progress)
	finishUsecaseSpan(span, err)
	return result, err
}

func (s *FixtureService) today(ctx context.Context, date string, progress ProgressFunc) (TodayResult, error) {
	progress.report(5, "Checking cache...")
	if cached, ok := s.loadCache(ctx, date); ok {
		progress.report(100, fmt.Sprintf("Loaded %d fixtures from cache", len(cached)))
		return TodayResult{
			Date:      date,
			Fixtures:  cached,
			Source:    FetchSourceCache,
			FromCache: true,
			Message:   emptyMessage(len(cached), false),
		}, nil
	}

	fetched := s.fetcher.FetchToday(ctx, date, s.codes, progress)
	if err := ctx.Err(); err != nil {
		return TodayResult{Date: date, Aborted: true, Message: MessageNoConnectivity}, fmt.Errorf("fetch fixtures: %w", err)
	}

	fixtures := s.parser.ParseAll(fetched.Records)
	fixture.SortByKickoff(fixtures)

	if !fetched.Aborted && len(fixtures) > 0 {
		s.saveCache(ctx, date, fixtures)
	}

	result := TodayResult{
		Date:     date,
		Fixtures: fixtures,
		Source:   fetched.Source,
		Aborted:  fetched.Aborted,
		Message:  emptyMessage(len(fixtures), fetched.Aborted),
	}
	if result.Empty() {
		progress.report(100, result.Message)
	} else {
		progress.report(100, fmt.Sprintf("Loaded %d fixtures", len(fixtures)))
	}
	return result, nil
}

// Refresh drops the cached day and fetches again.
func (s *FixtureService) Refresh(ctx context.Context, progress ProgressFunc) (TodayResult, error) {
	if err := s.ClearCache(ctx); err != nil {
		s.logger.WarnContext(ctx, "clear fixture cache failed", "error", err)
	}
	return s.Today(ctx, progress)
}

func (s *FixtureService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear fixture cache: %w", err)
	}
	return nil
}

func (s *FixtureService) loadCache(ctx context.Context, date string) ([]fixture.Fixture, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, ok, err := s.cache.Load(ctx, date)
	if err != nil {
		s.logger.WarnContext(ctx, "load fixture cache failed", "date", date, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return fixture.FilterPlayable(cached), true
}

func (s *FixtureService) saveCache(ctx context.Context, date string, fixtures []fixture.Fixture) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, date, fixtures); err != nil {
		s.logger.WarnContext(ctx, "save fixture cache failed", "date", date, "error", err)
	}
}

func emptyMessage(count int, aborted bool) string {
	if count > 0 {
		return ""
	}
	if aborted {
		return MessageNoConnectivity
	}
	return MessageNoFixtures
}

// normalizeCodes upper-cases and de-duplicates competition codes, keeping
// their order.
func normalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

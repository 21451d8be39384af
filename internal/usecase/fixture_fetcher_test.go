package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	usecasemock "github.com/riskibarqy/predictz/internal/mocks/usecase"
	"github.com/stretchr/testify/mock"
)

type recordedSleeps struct {
	calls []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return ctx.Err()
}

func matchRecord(id int64, code, home, away string) fixture.Record {
	return fixture.Record{
		ID:          &id,
		UTCDate:     "2026-03-14T15:00:00Z",
		Status:      "TIMED",
		Competition: fixture.RecordCompetition{Code: code},
		HomeTeam:    fixture.RecordTeam{ShortName: home},
		AwayTeam:    fixture.RecordTeam{ShortName: away},
	}
}

func newTestFetcher(provider MatchProvider, sleeps *recordedSleeps) *FixtureFetcher {
	return NewFixtureFetcher(provider, fixture.DefaultCatalog(), DefaultFetchConfig(), logging.NewNop()).
		WithSleeper(sleeps.sleep)
}

func TestFixtureFetcher_BulkSuccessSkipsCompetitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewMatchProvider(t)
	sleeps := &recordedSleeps{}
	codes := []string{"PL", "PD"}

	provider.
		On("ListMatches", mock.Anything, "2026-03-14", codes).
		Return([]fixture.Record{matchRecord(1, "PL", "Arsenal", "Chelsea")}, nil).
		Once()

	got := newTestFetcher(provider, sleeps).FetchToday(ctx, "2026-03-14", codes, nil)
	if got.Source != FetchSourceBulk {
		t.Fatalf("unexpected source: got=%s want=%s", got.Source, FetchSourceBulk)
	}
	if len(got.Records) != 1 || got.Aborted {
		t.Fatalf("unexpected result: records=%d aborted=%v", len(got.Records), got.Aborted)
	}
	if len(sleeps.calls) != 0 {
		t.Fatalf("expected no sleeps, got %v", sleeps.calls)
	}
	provider.AssertNotCalled(t, "ListCompetitionMatches", mock.Anything, mock.Anything, mock.Anything)
}

func TestFixtureFetcher_FallbackSkipsForbiddenCompetition(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewMatchProvider(t)
	sleeps := &recordedSleeps{}
	codes := []string{"PL", "BSA", "SA"}

	provider.On("ListMatches", mock.Anything, "2026-03-14", codes).
		Return(nil, fmt.Errorf("%w: status 400", ErrUnsupported)).Once()
	provider.On("ListCompetitionMatches", mock.Anything, "PL", "2026-03-14").
		Return([]fixture.Record{{UTCDate: "2026-03-14T12:30:00Z", HomeTeam: fixture.RecordTeam{Name: "Everton"}, AwayTeam: fixture.RecordTeam{Name: "Fulham"}}}, nil).Once()
	provider.On("ListCompetitionMatches", mock.Anything, "BSA", "2026-03-14").
		Return(nil, fmt.Errorf("%w: status 403", ErrForbidden)).Once()
	provider.On("ListCompetitionMatches", mock.Anything, "SA", "2026-03-14").
		Return([]fixture.Record{matchRecord(9, "SA", "Inter", "Milan")}, nil).Once()

	var reports []FetchProgress
	got := newTestFetcher(provider, sleeps).FetchToday(ctx, "2026-03-14", codes, func(p FetchProgress) {
		reports = append(reports, p)
	})

	if got.Source != FetchSourceCompetitions || got.Aborted {
		t.Fatalf("unexpected result: source=%s aborted=%v", got.Source, got.Aborted)
	}
	if len(got.Records) != 2 {
		t.Fatalf("unexpected record count: got=%d want=2", len(got.Records))
	}
	if got.Records[0].Competition.Code != "PL" || got.Records[0].Competition.Name != "Premier League" {
		t.Fatalf("expected competition stamped from catalog, got %+v", got.Records[0].Competition)
	}
	if len(sleeps.calls) != 2 {
		t.Fatalf("expected a delay between each pair of requests only, got %v", sleeps.calls)
	}
	for _, d := range sleeps.calls {
		if d != 7*time.Second {
			t.Fatalf("unexpected inter request delay: %s", d)
		}
	}
	if len(reports) == 0 || reports[0].Percent != 20 {
		t.Fatalf("unexpected first progress report: %+v", reports)
	}
	if reports[1].Percent != 25 || reports[1].Message != "Fetching Premier League..." {
		t.Fatalf("unexpected competition progress: %+v", reports[1])
	}
}

func TestFixtureFetcher_CompetitionRateLimitRetriesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewMatchProvider(t)
	sleeps := &recordedSleeps{}
	codes := []string{"PL"}

	provider.On("ListMatches", mock.Anything, "2026-03-14", codes).Return(nil, nil).Once()
	provider.On("ListCompetitionMatches", mock.Anything, "PL", "2026-03-14").
		Return(nil, fmt.Errorf("%w: status 429", ErrRateLimited)).Once()
	provider.On("ListCompetitionMatches", mock.Anything, "PL", "2026-03-14").
		Return([]fixture.Record{matchRecord(1, "PL", "Arsenal", "Chelsea")}, nil).Once()

	got := newTestFetcher(provider, sleeps).FetchToday(ctx, "2026-03-14", codes, nil)
	if len(got.Records) != 1 {
		t.Fatalf("expected retried competition to succeed, got %d records", len(got.Records))
	}
	if len(sleeps.calls) != 1 || sleeps.calls[0] != 20*time.Second {
		t.Fatalf("expected one 20s cool-down, got %v", sleeps.calls)
	}
}

func TestFixtureFetcher_CompetitionRateLimitedTwiceIsSkipped(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewMatchProvider(t)
	sleeps := &recordedSleeps{}
	codes := []string{"PL", "SA"}
	limited := fmt.Errorf("%w: status 429", ErrRateLimited)

	provider.On("ListMatches", mock.Anything, "2026-03-14", codes).Return(nil, nil).Once()
	provider.On("ListCompetitionMatches", mock.Anything, "PL", "2026-03-14").Return(nil, limited).Twice()
	provider.On("ListCompetitionMatches", mock.Anything, "SA", "2026-03-14").
		Return([]fixture.Record{matchRecord(2, "SA", "Roma", "Lazio")}, nil).Once()

	got := newTestFetcher(provider, sleeps).FetchToday(context.Background(), "2026-03-14", codes, nil)
	if len(got.Records) != 1 || got.Aborted {
		t.Fatalf("unexpected result: records=%d aborted=%v", len(got.Records), got.Aborted)
	}
	want := []time.Duration{20 * time.Second, 7 * time.Second}
	if fmt.Sprint(sleeps.calls) != fmt.Sprint(want) {
		t.Fatalf("unexpected sleeps: got=%v want=%v", sleeps.calls, want)
	}
}

func TestFixtureFetcher_BulkRateLimitCoolsDownBeforeFallback(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewMatchProvider(t)
	sleeps := &recordedSleeps{}
	codes := []string{"PL"}

	provider.On("ListMatches", mock.Anything, "2026-03-14", codes).
		Return(nil, fmt.Errorf("%w: status 429", ErrRateLimited)).Once()
	provider.On("ListCompetitionMatches", mock.Anything, "PL", "2026-03-14").Return(nil, nil).Once()

	got := newTestFetcher(provider, sleeps).FetchToday(context.Background(), "2026-03-14", codes, nil)
	if got.Source != FetchSourceCompetitions {
		t.Fatalf("unexpected source: %s", got.Source)
	}
	if len(sleeps.calls) != 1 || sleeps.calls[0] != 15*time.Second {
		t.Fatalf("expected one 15s cool-down, got %v", sleeps.calls)
	}
}

func TestFixtureFetcher_ConnectivityLossAborts(t *testing.T) {
	t.Parallel()

	t.Run("bulk", func(t *testing.T) {
		provider := usecasemock.NewMatchProvider(t)
		sleeps := &recordedSleeps{}
		codes := []string{"PL", "SA"}

		provider.On("ListMatches", mock.Anything, "2026-03-14", codes).
			Return(nil, fmt.Errorf("%w: dial tcp: no such host", ErrDependencyUnavailable)).Once()

		got := newTestFetcher(provider, sleeps).FetchToday(context.Background(), "2026-03-14", codes, nil)
		if !got.Aborted || len(got.Records) != 0 {
			t.Fatalf("expected aborted empty result, got %+v", got)
		}
	})

	t.Run("per competition keeps partial records", func(t *testing.T) {
		provider := usecasemock.NewMatchProvider(t)
		sleeps := &recordedSleeps{}
		codes := []string{"PL", "SA", "FL1"}

		provider.On("ListMatches", mock.Anything, "2026-03-14", codes).Return(nil, nil).Once()
		provider.On("ListCompetitionMatches", mock.Anything, "PL", "2026-03-14").
			Return([]fixture.Record{matchRecord(1, "PL", "Arsenal", "Chelsea")}, nil).Once()
		provider.On("ListCompetitionMatches", mock.Anything, "SA", "2026-03-14").
			Return(nil, fmt.Errorf("%w: connection refused", ErrDependencyUnavailable)).Once()

		got := newTestFetcher(provider, sleeps).FetchToday(context.Background(), "2026-03-14", codes, nil)
		if !got.Aborted {
			t.Fatalf("expected aborted result")
		}
		if len(got.Records) != 1 {
			t.Fatalf("expected partial records to be kept, got %d", len(got.Records))
		}
	})
}

func TestFixtureFetcher_NoCodes(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewMatchProvider(t)
	got := newTestFetcher(provider, &recordedSleeps{}).FetchToday(context.Background(), "2026-03-14", nil, nil)
	if got.Source != FetchSourceNone || len(got.Records) != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

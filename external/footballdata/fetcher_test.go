package footballdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/platform/resilience"
	"github.com/riskibarqy/predictz/internal/usecase"
)

const singleMatchPayload = `{
  "matches": [
    {
      "id": %s,
      "utcDate": "2026-03-14T18:30:00Z",
      "status": "TIMED",
      "homeTeam": {"name": "Home FC", "shortName": "Home"},
      "awayTeam": {"name": "Away FC", "shortName": "Away"},
      "score": {"fullTime": {"home": null, "away": null}}
    }
  ]
}`

func TestFixtureFetcher_ServerErrorsSkipCompetitionsWithoutAborting(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/matches":
			_, _ = w.Write([]byte(`{"matches":[]}`))
		case "/competitions/BL1/matches":
			_, _ = w.Write([]byte(strings.Replace(singleMatchPayload, "%s", "700001", 1)))
		case "/competitions/SA/matches":
			_, _ = w.Write([]byte(strings.Replace(singleMatchPayload, "%s", "700002", 1)))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.DefaultCircuitBreakerConfig())
	fetcher := usecase.NewFixtureFetcher(client, nil, usecase.FetchConfig{}, logging.NewNop()).
		WithSleeper(func(context.Context, time.Duration) error { return nil })

	result := fetcher.FetchToday(context.Background(), "2026-03-14", []string{"PL", "CL", "PD", "BL1", "SA"}, nil)

	if result.Aborted {
		t.Fatalf("server errors must not abort the fetch, cause=%v", result.Cause)
	}
	if result.Source != usecase.FetchSourceCompetitions {
		t.Fatalf("expected per competition source, got %q", result.Source)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected BL1 and SA records, got %d", len(result.Records))
	}
	if got := result.Records[0].Competition.Code; got != "BL1" {
		t.Fatalf("expected stamped BL1 competition, got %q", got)
	}
	if got := result.Records[1].Competition.Code; got != "SA" {
		t.Fatalf("expected stamped SA competition, got %q", got)
	}
}

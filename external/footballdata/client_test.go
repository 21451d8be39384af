package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/platform/resilience"
	"github.com/riskibarqy/predictz/internal/usecase"
)

const matchesPayload = `{
  "matches": [
    {
      "id": 497410,
      "utcDate": "2026-03-14T15:00:00Z",
      "status": "TIMED",
      "competition": {"name": "Premier League", "code": "PL"},
      "homeTeam": {"name": "Arsenal FC", "shortName": "Arsenal"},
      "awayTeam": {"name": "Chelsea FC", "shortName": "Chelsea"},
      "score": {"fullTime": {"home": null, "away": null}}
    },
    {
      "id": 497411,
      "utcDate": "2026-03-14T12:30:00Z",
      "status": "FINISHED",
      "competition": {"name": "Premier League", "code": "PL"},
      "homeTeam": {"name": "Everton FC", "shortName": ""},
      "awayTeam": {"name": "Fulham FC", "shortName": "Fulham"},
      "score": {"fullTime": {"home": 2, "away": 1}}
    }
  ]
}`

func newTestClient(baseURL string, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		APIKey:         "secret-key",
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestClient_ListMatches(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Auth-Token"); got != "secret-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		q := r.URL.Query()
		if q.Get("dateFrom") != "2026-03-14" || q.Get("dateTo") != "2026-03-14" {
			t.Errorf("unexpected date range: %s", r.URL.RawQuery)
		}
		if q.Get("competitions") != "PL,SA" {
			t.Errorf("unexpected competitions: %q", q.Get("competitions"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(matchesPayload))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})
	records, err := client.ListMatches(context.Background(), "2026-03-14", []string{"PL", "SA"})
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected record count: got=%d want=2", len(records))
	}
	first := records[0]
	if first.ID == nil || *first.ID != 497410 {
		t.Fatalf("unexpected id: %v", first.ID)
	}
	if first.HomeTeam.ShortName != "Arsenal" || first.Competition.Code != "PL" {
		t.Fatalf("unexpected record: %+v", first)
	}
	second := records[1]
	if second.Score.Home == nil || *second.Score.Home != 2 || *second.Score.Away != 1 {
		t.Fatalf("unexpected score: %+v", second.Score)
	}
	if second.HomeTeam.Name != "Everton FC" {
		t.Fatalf("unexpected home team: %+v", second.HomeTeam)
	}
}

func TestClient_ListCompetitionMatchesPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions/PL/matches" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Has("competitions") {
			t.Errorf("competition endpoint must not send a competitions filter")
		}
		_, _ = w.Write([]byte(`{"matches":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})
	records, err := client.ListCompetitionMatches(context.Background(), " pl ", "2026-03-14")
	if err != nil {
		t.Fatalf("list competition matches: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}

	if _, err := client.ListCompetitionMatches(context.Background(), " ", "2026-03-14"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, usecase.ErrRateLimited},
		{http.StatusBadRequest, usecase.ErrUnsupported},
		{http.StatusForbidden, usecase.ErrForbidden},
		{http.StatusNotFound, usecase.ErrNotFound},
	}
	for _, tc := range cases {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))

		client := newTestClient(server.URL, 2, resilience.CircuitBreakerConfig{})
		_, err := client.ListCompetitionMatches(context.Background(), "PL", "2026-03-14")
		server.Close()

		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if got := hits.Load(); got != 1 {
			t.Fatalf("status %d: expected a single request, got %d", tc.status, got)
		}
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(matchesPayload))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1, resilience.CircuitBreakerConfig{})
	records, err := client.ListMatches(context.Background(), "2026-03-14", nil)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(records) != 2 || hits.Load() != 2 {
		t.Fatalf("expected success after one retry, records=%d hits=%d", len(records), hits.Load())
	}
}

func TestClient_UnreachableIsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := newTestClient(baseURL, 0, resilience.CircuitBreakerConfig{})
	_, err := client.ListMatches(context.Background(), "2026-03-14", []string{"PL"})
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestClient_ServerErrorsDoNotOpenCircuit(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 3; i++ {
		_, err := client.ListCompetitionMatches(context.Background(), "PL", "2026-03-14")
		if err == nil || errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("call %d: expected a plain provider error, got %v", i, err)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected every call to reach the provider, got %d hits", got)
	}
}

func TestClient_CircuitOpensWhenUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := newTestClient(baseURL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	_, err := client.ListCompetitionMatches(context.Background(), "PL", "2026-03-14")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	_, err = client.ListCompetitionMatches(context.Background(), "PL", "2026-03-14")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) || !strings.Contains(err.Error(), "temporarily unavailable") {
		t.Fatalf("expected open circuit rejection, got %v", err)
	}
}

func TestClassifyTransportError_TimeoutIsTransient(t *testing.T) {
	err := classifyTransportError(&timeoutError{})
	if errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("timeouts must not count as lost connectivity")
	}
	if !errors.Is(err, errFootballDataTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

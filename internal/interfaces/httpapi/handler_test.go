package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/domain/prediction"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/usecase"
)

type fakeFeed struct {
	snapshot  usecase.FetchSnapshot
	refreshed atomic.Int32
	busy      bool
}

func (f *fakeFeed) Snapshot() usecase.FetchSnapshot { return f.snapshot }

func (f *fakeFeed) Subscribe(ctx context.Context) <-chan usecase.FetchSnapshot {
	ch := make(chan usecase.FetchSnapshot, 1)
	ch <- f.snapshot
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (f *fakeFeed) Start() bool { return !f.busy }

func (f *fakeFeed) Refresh() bool {
	if f.busy {
		return false
	}
	f.refreshed.Add(1)
	return true
}

type envelope[T any] struct {
	APIVersion string `json:"apiVersion"`
	Data       T      `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
	}
	return out
}

func newTestRouter(feed *fakeFeed) http.Handler {
	analysis := usecase.NewAnalysisService(&prediction.SequenceSource{Ints: []int{1}})
	handler := NewHandler(feed, analysis, []string{"*"}, logging.NewNop())
	handler.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return NewRouter(handler, logging.NewNop(), []string{"*"})
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loadedFeed() *fakeFeed {
	return &fakeFeed{snapshot: usecase.FetchSnapshot{
		Status:   usecase.FetchStatusDone,
		Progress: 100,
		Message:  "Loaded 2 fixtures",
		Count:    3,
		Date:     "2026-03-14",
		Fixtures: []fixture.Fixture{
			{ID: "1", CompetitionCode: "PL", CompetitionName: "Premier League", HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kickoff: "15:00", Status: fixture.StatusScheduled},
			{ID: "2", CompetitionCode: "PL", CompetitionName: "Premier League", HomeTeam: "Leeds", AwayTeam: "Wolves", Kickoff: "17:30", Status: fixture.StatusCancelled},
			{ID: "3", CompetitionCode: "SA", CompetitionName: "Serie A", HomeTeam: "Inter", AwayTeam: "Milan", Kickoff: "19:45", Status: fixture.StatusLive},
		},
	}}
}

func TestHandler_Status(t *testing.T) {
	rec := doRequest(newTestRouter(loadedFeed()), http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
	body := decodeEnvelope[statusDTO](t, rec)
	if body.Data.Status != "done" || body.Data.Progress != 100 || body.Data.Msg != "Loaded 2 fixtures" {
		t.Fatalf("unexpected status payload: %+v", body.Data)
	}
}

func TestHandler_FixturesFiltersCancelled(t *testing.T) {
	rec := doRequest(newTestRouter(loadedFeed()), http.MethodGet, "/api/fixtures", "")
	body := decodeEnvelope[fixturesDTO](t, rec)

	if body.Data.Count != 2 || len(body.Data.Matches) != 2 {
		t.Fatalf("expected 2 playable fixtures, got %+v", body.Data)
	}
	for _, m := range body.Data.Matches {
		if m.ID == "2" {
			t.Fatalf("cancelled fixture leaked into listing")
		}
		if m.OddsHome < prediction.MinPrice || m.Prediction != "" {
			t.Fatalf("expected odds without prediction before analysis: %+v", m)
		}
	}
	if body.Data.Matches[1].Status != "LIVE" {
		t.Fatalf("unexpected live label: %q", body.Data.Matches[1].Status)
	}
	if body.Data.Date != "Saturday, 14 March 2026" {
		t.Fatalf("unexpected date label: %q", body.Data.Date)
	}
}

func TestHandler_AnalyseAttachesPredictions(t *testing.T) {
	payload := `{"matches":[
		{"id":"1","league":"Premier League","code":"PL","home":"Arsenal","away":"Chelsea","time":"15:00","state":"scheduled"},
		{"id":"2","league":"Premier League","code":"PL","home":"Leeds","away":"Wolves","time":"17:30","status":"CNCL"}
	]}`
	rec := doRequest(newTestRouter(loadedFeed()), http.MethodPost, "/api/analyse", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope[analyseResponse](t, rec)
	if len(body.Data.Matches) != 1 {
		t.Fatalf("expected cancelled match to be dropped, got %d", len(body.Data.Matches))
	}
	got := body.Data.Matches[0]
	want := prediction.DeriveOdds("Arsenal", "Chelsea")
	if got.Market != string(prediction.MarketBTTS) || got.SelOdds != want.BTTS {
		t.Fatalf("unexpected prediction: %+v", got)
	}
	if got.OddsHome != want.Home || got.Reasoning == "" {
		t.Fatalf("unexpected odds or reason: %+v", got)
	}
}

func TestHandler_AnalyseRejectsInvalidPayload(t *testing.T) {
	router := newTestRouter(loadedFeed())

	rec := doRequest(router, http.MethodPost, "/api/analyse", `{"matches":[{"home":"Arsenal","away":"Chelsea"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", rec.Code)
	}
	rec = doRequest(router, http.MethodPost, "/api/analyse", `{"matches":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestHandler_AnalyseToleratesEmptyTeamNames(t *testing.T) {
	rec := doRequest(newTestRouter(loadedFeed()), http.MethodPost, "/api/analyse",
		`{"matches":[{"id":"9","home":"","away":"  ","time":"20:00","state":"scheduled"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope[analyseResponse](t, rec)
	if len(body.Data.Matches) != 1 {
		t.Fatalf("expected one prediction, got %d", len(body.Data.Matches))
	}
	got := body.Data.Matches[0]
	if got.Home != fixture.TeamPlaceholder || got.Away != fixture.TeamPlaceholder {
		t.Fatalf("expected placeholder team names, got %q vs %q", got.Home, got.Away)
	}
	if got.OddsHome < prediction.MinPrice || got.Prediction == "" {
		t.Fatalf("expected odds and a prediction, got %+v", got)
	}
}

func TestHandler_FixturesUsesSnapshotDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{name: "snapshot from the previous day", date: "2026-03-13", want: "Friday, 13 March 2026"},
		{name: "no snapshot date falls back to now", date: "", want: "Saturday, 14 March 2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := loadedFeed()
			feed.snapshot.Date = tt.date

			body := decodeEnvelope[fixturesDTO](t, doRequest(newTestRouter(feed), http.MethodGet, "/api/fixtures", ""))
			if body.Data.Date != tt.want {
				t.Fatalf("date label=%q want=%q", body.Data.Date, tt.want)
			}
		})
	}
}

func TestHandler_BetslipCombinedOdds(t *testing.T) {
	router := newTestRouter(loadedFeed())

	rec := doRequest(router, http.MethodPost, "/api/betslip",
		`{"selections":[{"id":"1","price":1.80},{"id":"3","price":2.10},{"id":"1","price":1.80}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d body=%s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope[betslipResponse](t, rec)
	if body.Data.Count != 2 || body.Data.Combined != 3.78 || body.Data.Display != "3.78x" {
		t.Fatalf("unexpected betslip: %+v", body.Data)
	}

	rec = doRequest(router, http.MethodPost, "/api/betslip", `{"selections":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty slip, got %d", rec.Code)
	}
}

func TestHandler_Refresh(t *testing.T) {
	feed := loadedFeed()
	router := newTestRouter(feed)

	rec := doRequest(router, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if feed.refreshed.Load() != 1 {
		t.Fatalf("expected one refresh")
	}

	feed.busy = true
	rec = doRequest(router, http.MethodPost, "/api/refresh", "")
	body := decodeEnvelope[refreshResponse](t, rec)
	if rec.Code != http.StatusOK || body.Data.Started {
		t.Fatalf("expected no-op refresh while busy, got %d %+v", rec.Code, body.Data)
	}
}

func TestHandler_DashboardAndHealth(t *testing.T) {
	router := newTestRouter(loadedFeed())

	rec := doRequest(router, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "A103 PREDICTZ AI") {
		t.Fatalf("unexpected dashboard response: %d", rec.Code)
	}
	rec = doRequest(router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected health status: %d", rec.Code)
	}
	rec = doRequest(router, http.MethodGet, "/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rec.Code)
	}
}

func TestHandler_StreamPushesSnapshot(t *testing.T) {
	server := httptest.NewServer(newTestRouter(loadedFeed()))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame statusDTO
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Status != "done" || frame.Count != 3 {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}

package httpapi

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/predictz/internal/domain/betslip"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/usecase"
)

const maxRequestBytes = 2 << 20

//go:embed static/dashboard.html
var dashboardHTML []byte

// FixtureFeed is the background fetch state the dashboard reads.
type FixtureFeed interface {
	Snapshot() usecase.FetchSnapshot
	Subscribe(ctx context.Context) <-chan usecase.FetchSnapshot
	Start() bool
	Refresh() bool
}

type Handler struct {
	feed      FixtureFeed
	analysis  *usecase.AnalysisService
	logger    *logging.Logger
	validator *validator.Validate
	upgrader  websocket.Upgrader
	now       func() time.Time
}

func NewHandler(feed FixtureFeed, analysis *usecase.AnalysisService, allowedOrigins []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if analysis == nil {
		analysis = usecase.NewAnalysisService(nil)
	}

	origins := newCORS(allowedOrigins)
	return &Handler{
		feed:      feed,
		analysis:  analysis,
		logger:    logger,
		validator: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins.OriginAllowed(r)
			},
		},
		now: time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(dashboardHTML)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Status")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, statusToDTO(h.feed.Snapshot()))
}

func (h *Handler) Fixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Fixtures")
	defer span.End()

	snapshot := h.feed.Snapshot()
	playable := fixture.FilterPlayable(snapshot.Fixtures)
	items := make([]matchDTO, 0, len(playable))
	for _, f := range playable {
		items = append(items, fixtureToDTO(f))
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesDTO{
		Matches: items,
		Count:   len(items),
		Date:    h.displayDate(snapshot.Date),
		Status:  string(snapshot.Status),
	})
}

// displayDate labels the day the snapshot was fetched for, not the wall
// clock, so a snapshot kept past midnight keeps its own date.
func (h *Handler) displayDate(date string) string {
	const layout = "Monday, 02 January 2006"
	if day, err := time.Parse("2006-01-02", strings.TrimSpace(date)); err == nil {
		return day.Format(layout)
	}
	return h.now().Format(layout)
}

func (h *Handler) Analyse(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Analyse")
	defer span.End()

	var req analyseRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fixtures := make([]fixture.Fixture, 0, len(req.Matches))
	for _, m := range req.Matches {
		fixtures = append(fixtures, m.toFixture())
	}
	predicted := h.analysis.Analyse(ctx, fixtures)

	items := make([]matchDTO, 0, len(predicted))
	for _, item := range predicted {
		items = append(items, predictedToDTO(item))
	}
	h.logger.InfoContext(ctx, "fixtures analysed", "requested", len(req.Matches), "predicted", len(items))
	writeSuccess(ctx, w, http.StatusOK, analyseResponse{Matches: items})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Refresh")
	defer span.End()

	started := h.feed.Refresh()
	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	writeSuccess(ctx, w, status, refreshResponse{Started: started})
}

func (h *Handler) Betslip(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Betslip")
	defer span.End()

	var req betslipRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	selections := make([]betslip.Selection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		selections = append(selections, betslip.Selection{FixtureID: sel.ID, Price: sel.Price})
	}
	slip := betslip.New(selections...)
	combined := slip.CombinedOdds()

	writeSuccess(ctx, w, http.StatusOK, betslipResponse{
		Count:    slip.Len(),
		Combined: combined.Round(2).InexactFloat64(),
		Display:  combined.StringFixed(2) + "x",
	})
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, target)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

package httpapi

import (
	"net/http"

	"github.com/riskibarqy/predictz/internal/platform/logging"
)

// NewRouter builds the dashboard server.
func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /{$}", handler.Dashboard)
	mux.HandleFunc("GET /api/status", handler.Status)
	mux.HandleFunc("GET /api/fixtures", handler.Fixtures)
	mux.HandleFunc("GET /api/stream", handler.Stream)
	mux.HandleFunc("POST /api/analyse", handler.Analyse)
	mux.HandleFunc("POST /api/refresh", handler.Refresh)
	mux.HandleFunc("POST /api/betslip", handler.Betslip)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

// NewWhatsAppRouter builds the chat webhook server. Twilio posts
// server-to-server, so there is no CORS layer.
func NewWhatsAppRouter(webhook *Webhook, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET /{$}", webhook.Home)
	mux.HandleFunc("POST /whatsapp", webhook.WhatsApp)

	return RequestTracing(RequestLogging(logger, recoverPanic(logger, mux)))
}

func healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

package httpapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const maxWebhookBytes = 64 << 10

// ChatResponder turns an inbound chat message into the reply text.
type ChatResponder interface {
	Reply(ctx context.Context, text string) string
}

// Webhook serves the Twilio WhatsApp callback.
type Webhook struct {
	chat   ChatResponder
	logger *logging.Logger
}

func NewWebhook(chat ChatResponder, logger *logging.Logger) *Webhook {
	if logger == nil {
		logger = logging.Default()
	}
	return &Webhook{chat: chat, logger: logger}
}

func (h *Webhook) Home(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<h2>✅ A103 Predictz AI WhatsApp Bot is running!</h2>" +
		"<p>Send a WhatsApp message to your Twilio number.</p>" +
		"<p>Commands: <b>predictions, all, betslip, help</b></p>"))
}

// WhatsApp reads the form field Body and answers with a TwiML message.
func (h *Webhook) WhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Webhook.WhatsApp")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	if err := r.ParseForm(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid form payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	text := strings.TrimSpace(r.PostForm.Get("Body"))
	h.logger.InfoContext(ctx, "whatsapp message received", "from", r.PostForm.Get("From"), "length", len(text))

	writeTwiML(w, h.chat.Reply(ctx, text))
}

func writeTwiML(w http.ResponseWriter, message string) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(xml.Header)
	buf.WriteString("<Response><Message>")
	_ = xml.EscapeText(buf, []byte(message))
	buf.WriteString("</Message></Response>")

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.B)
}

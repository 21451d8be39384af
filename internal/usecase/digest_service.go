package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/predictz/internal/platform/logging"
)

// MessageSender pushes an outbound chat message.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// DigestService pushes the day's top predictions to a fixed recipient list.
type DigestService struct {
	chat       *ChatService
	sender     MessageSender
	recipients []string
	logger     *logging.Logger
}

func NewDigestService(chat *ChatService, sender MessageSender, recipients []string, logger *logging.Logger) *DigestService {
	if logger == nil {
		logger = logging.Default()
	}
	cleaned := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return &DigestService{chat: chat, sender: sender, recipients: cleaned, logger: logger}
}

func (s *DigestService) Enabled() bool {
	return s.sender != nil && len(s.recipients) > 0
}

// Send delivers the digest to every recipient. It keeps going after a
// failed recipient and returns the joined errors.
func (s *DigestService) Send(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}

	body, ok, err := s.chat.DigestMessage(ctx)
	if err != nil {
		return 0, fmt.Errorf("build digest: %w", err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "digest skipped, no fixtures today")
		return 0, nil
	}

	sent := 0
	var errs []error
	for _, to := range s.recipients {
		if err := s.sender.SendMessage(ctx, to, body); err != nil {
			s.logger.WarnContext(ctx, "digest delivery failed", "to", to, "error", err)
			errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
			continue
		}
		sent++
	}
	s.logger.InfoContext(ctx, "digest delivered", "sent", sent, "recipients", len(s.recipients))
	return sent, errors.Join(errs...)
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/predictz/internal/domain/prediction"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	usecasemock "github.com/riskibarqy/predictz/internal/mocks/usecase"
	"github.com/stretchr/testify/mock"
)

func TestDigestService_SendKeepsGoingAfterFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sender := usecasemock.NewMessageSender(t)
	source := &stubDailyFixtures{date: "2026-03-14", fixtures: sampleFixtures(3)}
	chat := newTestChatService(source, &prediction.SequenceSource{Ints: []int{1}})
	svc := NewDigestService(chat, sender, []string{"whatsapp:+441111", " ", "whatsapp:+442222"}, logging.NewNop())

	isDigest := mock.MatchedBy(func(body string) bool { return strings.Contains(body, "A103 PREDICTZ AI") })
	sender.On("SendMessage", mock.Anything, "whatsapp:+441111", isDigest).Return(errors.New("twilio: 503")).Once()
	sender.On("SendMessage", mock.Anything, "whatsapp:+442222", isDigest).Return(nil).Once()

	sent, err := svc.Send(ctx)
	if sent != 1 {
		t.Fatalf("unexpected sent count: got=%d want=1", sent)
	}
	if err == nil || !strings.Contains(err.Error(), "whatsapp:+441111") {
		t.Fatalf("expected joined delivery error, got %v", err)
	}
}

func TestDigestService_SkipsEmptyDayUsingMockery(t *testing.T) {
	t.Parallel()

	sender := usecasemock.NewMessageSender(t)
	chat := newTestChatService(&stubDailyFixtures{date: "2026-03-14"}, nil)
	svc := NewDigestService(chat, sender, []string{"whatsapp:+441111"}, logging.NewNop())

	sent, err := svc.Send(context.Background())
	if sent != 0 || err != nil {
		t.Fatalf("expected nothing sent, got sent=%d err=%v", sent, err)
	}
	sender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestDigestService_Disabled(t *testing.T) {
	svc := NewDigestService(nil, nil, []string{"whatsapp:+441111"}, logging.NewNop())
	if svc.Enabled() {
		t.Fatalf("expected digest without a sender to be disabled")
	}
	if sent, err := svc.Send(context.Background()); sent != 0 || err != nil {
		t.Fatalf("unexpected result: sent=%d err=%v", sent, err)
	}
}

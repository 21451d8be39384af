package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/predictz/internal/config"
	"github.com/riskibarqy/predictz/internal/platform/logging"
)

func TestNewBetterStackCore_ShipsBatchedErrors(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		auth     string
		messages []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var lines []map[string]any
		if err := sonic.Unmarshal(raw, &lines); err != nil {
			t.Errorf("decode batch: %v", err)
		}
		mu.Lock()
		auth = r.Header.Get("Authorization")
		for _, line := range lines {
			messages = append(messages, line["msg"].(string))
		}
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	cfg := config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: server.URL,
		BetterStackToken:    "secret-token",
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelError,
	}
	core, shutdown, err := NewBetterStackCore(cfg)
	if err != nil {
		t.Fatalf("new betterstack core: %v", err)
	}

	logger := logging.NewWriter(io.Discard, logging.LevelDebug, core)
	logger.Info("below threshold")
	logger.ErrorContext(context.Background(), "fetch failed", "component", "fetcher")
	logger.Error("second failure")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if auth != "Bearer secret-token" {
		t.Fatalf("unexpected auth header: %q", auth)
	}
	if strings.Join(messages, ",") != "fetch failed,second failure" {
		t.Fatalf("unexpected shipped messages: %v", messages)
	}
}

func TestNewBetterStackCore_Disabled(t *testing.T) {
	core, shutdown, err := NewBetterStackCore(config.Config{})
	if err != nil {
		t.Fatalf("new betterstack core: %v", err)
	}
	if core != nil {
		t.Fatalf("expected nil core when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	tests := map[string]string{
		"":                        "",
		"in.logs.betterstack.com": "https://in.logs.betterstack.com",
		"http://localhost:9000":   "http://localhost:9000",
	}
	for in, want := range tests {
		if got := normalizeBetterStackEndpoint(in); got != want {
			t.Fatalf("normalize %q: got %q want %q", in, got, want)
		}
	}
}

package memory

import (
	"context"
	"testing"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
)

func TestDailyCache(t *testing.T) {
	ctx := context.Background()
	cache := NewDailyCache()

	if _, ok, _ := cache.Load(ctx, "2026-03-14"); ok {
		t.Fatalf("expected empty cache to miss")
	}

	items := []fixture.Fixture{{ID: "1"}}
	if err := cache.Save(ctx, "2026-03-14", items); err != nil {
		t.Fatalf("save: %v", err)
	}
	items[0].ID = "mutated"

	got, ok, err := cache.Load(ctx, "2026-03-14")
	if err != nil || !ok || got[0].ID != "1" {
		t.Fatalf("expected isolated hit, got=%+v ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := cache.Load(ctx, "2026-03-15"); ok {
		t.Fatalf("expected other date to miss")
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := cache.Load(ctx, "2026-03-14"); ok {
		t.Fatalf("expected miss after clear")
	}
}

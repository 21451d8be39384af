package usecase

import (
	"context"
	"testing"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/domain/prediction"
)

func predicted(id, competition string, confidence prediction.Confidence, price float64) PredictedFixture {
	return PredictedFixture{
		Fixture: fixture.Fixture{
			ID:              id,
			CompetitionCode: competition,
			CompetitionName: competition + " League",
			HomeTeam:        "Home " + id,
			AwayTeam:        "Away " + id,
			Kickoff:         "15:00",
			Status:          fixture.StatusScheduled,
		},
		Prediction: prediction.Prediction{
			Market:     prediction.MarketBTTS,
			Pick:       "BTTS — Yes",
			Price:      price,
			Confidence: confidence,
		},
	}
}

func TestAnalysisService_AnalyseSkipsCancelledAndKeepsOrder(t *testing.T) {
	t.Parallel()

	svc := NewAnalysisService(&prediction.SequenceSource{Ints: []int{1}})
	fixtures := []fixture.Fixture{
		{ID: "a", HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: fixture.StatusScheduled},
		{ID: "b", HomeTeam: "Leeds", AwayTeam: "Wolves", Status: fixture.StatusCancelled},
		{ID: "c", HomeTeam: "Inter", AwayTeam: "Milan", Status: fixture.StatusLive},
	}

	got := svc.Analyse(context.Background(), fixtures)
	if len(got) != 2 {
		t.Fatalf("unexpected count: got=%d want=2", len(got))
	}
	if got[0].Fixture.ID != "a" || got[1].Fixture.ID != "c" {
		t.Fatalf("unexpected order: %s, %s", got[0].Fixture.ID, got[1].Fixture.ID)
	}
	want := prediction.DeriveOdds("Arsenal", "Chelsea")
	if got[0].Odds != want {
		t.Fatalf("unexpected odds: got=%+v want=%+v", got[0].Odds, want)
	}
	if got[0].Prediction.Market != prediction.MarketBTTS || got[0].Prediction.Price != want.BTTS {
		t.Fatalf("unexpected prediction: %+v", got[0].Prediction)
	}
}

func TestTopPicks(t *testing.T) {
	items := []PredictedFixture{
		predicted("1", "PL", prediction.ConfidenceMedium, 1.5),
		predicted("2", "PL", prediction.ConfidenceHigh, 1.6),
		predicted("3", "SA", prediction.ConfidenceLow, 1.7),
		predicted("4", "SA", prediction.ConfidenceVeryHigh, 1.8),
	}

	t.Run("high confidence only when present", func(t *testing.T) {
		got := TopPicks(items, 5)
		if len(got) != 2 || got[0].Fixture.ID != "2" || got[1].Fixture.ID != "4" {
			t.Fatalf("unexpected picks: %+v", got)
		}
	})

	t.Run("falls back to first items", func(t *testing.T) {
		low := []PredictedFixture{items[0], items[2]}
		got := TopPicks(low, 1)
		if len(got) != 1 || got[0].Fixture.ID != "1" {
			t.Fatalf("unexpected picks: %+v", got)
		}
	})

	t.Run("non positive limit", func(t *testing.T) {
		if got := TopPicks(items, 0); len(got) != 0 {
			t.Fatalf("expected no picks, got %d", len(got))
		}
	})
}

func TestByCompetitionAndCompetitions(t *testing.T) {
	items := []PredictedFixture{
		predicted("1", "SA", prediction.ConfidenceMedium, 1.5),
		predicted("2", "PL", prediction.ConfidenceHigh, 1.6),
		predicted("3", "SA", prediction.ConfidenceLow, 1.7),
	}

	if got := ByCompetition(items, "sa"); len(got) != 2 {
		t.Fatalf("expected 2 SA fixtures by code, got %d", len(got))
	}
	if got := ByCompetition(items, "pl league"); len(got) != 1 {
		t.Fatalf("expected 1 PL fixture by name, got %d", len(got))
	}

	summary := Competitions(items)
	if len(summary) != 2 {
		t.Fatalf("unexpected summary size: %d", len(summary))
	}
	if summary[0].Name != "PL League" || summary[0].Count != 1 || summary[1].Count != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestBuildBetslip(t *testing.T) {
	slip := BuildBetslip([]PredictedFixture{
		predicted("1", "PL", prediction.ConfidenceHigh, 1.80),
		predicted("2", "SA", prediction.ConfidenceHigh, 2.10),
	})
	if slip.Len() != 2 {
		t.Fatalf("unexpected selections: %d", slip.Len())
	}
	if got := slip.CombinedOdds().StringFixed(2); got != "3.78" {
		t.Fatalf("unexpected combined odds: got=%s want=3.78", got)
	}
}

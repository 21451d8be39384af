package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/predictz/internal/domain/betslip"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/domain/prediction"
	"go.opentelemetry.io/otel/attribute"
)

// PredictedFixture is a fixture with its derived odds and pick.
type PredictedFixture struct {
	Fixture    fixture.Fixture
	Odds       prediction.Odds
	Prediction prediction.Prediction
}

// Selection converts the pick into a betslip selection.
func (p PredictedFixture) Selection() betslip.Selection {
	return betslip.Selection{
		FixtureID: p.Fixture.ID,
		Title:     p.Fixture.Title(),
		Pick:      p.Prediction.Pick,
		Price:     p.Prediction.Price,
	}
}

// CompetitionSummary counts predicted fixtures per competition.
type CompetitionSummary struct {
	Code   string
	Name   string
	Emblem string
	Count  int
}

type AnalysisService struct {
	rng prediction.RandomSource
}

func NewAnalysisService(rng prediction.RandomSource) *AnalysisService {
	if rng == nil {
		rng = prediction.NewRandomSource(0)
	}
	return &AnalysisService{rng: rng}
}

// Analyse attaches odds and a prediction to every playable fixture, keeping
// input order.
func (s *AnalysisService) Analyse(ctx context.Context, fixtures []fixture.Fixture) []PredictedFixture {
	_, span := startUsecaseSpan(ctx, "usecase.AnalysisService.Analyse", attribute.Int("analysis.fixtures", len(fixtures)))
	defer span.End()

	out := make([]PredictedFixture, 0, len(fixtures))
	for _, item := range fixtures {
		if item.Excluded() {
			continue
		}
		odds := prediction.DeriveOdds(item.HomeTeam, item.AwayTeam)
		out = append(out, PredictedFixture{
			Fixture:    item,
			Odds:       odds,
			Prediction: prediction.Predict(item, odds, s.rng),
		})
	}
	return out
}

func HighConfidence(items []PredictedFixture) []PredictedFixture {
	out := make([]PredictedFixture, 0, len(items))
	for _, item := range items {
		if item.Prediction.Confidence.High() {
			out = append(out, item)
		}
	}
	return out
}

// ByCompetition matches on competition code or name, case-insensitively.
func ByCompetition(items []PredictedFixture, competition string) []PredictedFixture {
	competition = strings.TrimSpace(competition)
	out := make([]PredictedFixture, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.Fixture.CompetitionCode, competition) || strings.EqualFold(item.Fixture.CompetitionName, competition) {
			out = append(out, item)
		}
	}
	return out
}

// Competitions lists the competitions present, sorted by name.
func Competitions(items []PredictedFixture) []CompetitionSummary {
	index := make(map[string]int)
	out := make([]CompetitionSummary, 0, 8)
	for _, item := range items {
		key := item.Fixture.CompetitionName
		if pos, ok := index[key]; ok {
			out[pos].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, CompetitionSummary{
			Code:   item.Fixture.CompetitionCode,
			Name:   item.Fixture.CompetitionName,
			Emblem: item.Fixture.Emblem,
			Count:  1,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TopPicks returns at most n items. High-confidence picks come first in
// their original order; when there are none the first n items are used.
func TopPicks(items []PredictedFixture, n int) []PredictedFixture {
	if n <= 0 {
		return nil
	}
	source := HighConfidence(items)
	if len(source) == 0 {
		source = items
	}
	if len(source) > n {
		source = source[:n]
	}
	out := make([]PredictedFixture, len(source))
	copy(out, source)
	return out
}

// BuildBetslip puts every item on a fresh slip.
func BuildBetslip(items []PredictedFixture) *betslip.Betslip {
	selections := make([]betslip.Selection, 0, len(items))
	for _, item := range items {
		selections = append(selections, item.Selection())
	}
	return betslip.New(selections...)
}

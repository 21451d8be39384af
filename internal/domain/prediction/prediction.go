package prediction

import (
	"math"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
)

type Market string

const (
	Market1X2          Market = "1X2"
	MarketBTTS         Market = "Both Teams To Score"
	MarketOver25       Market = "Over 2.5 Goals"
	MarketOver15       Market = "Over 1.5 Goals"
	MarketDoubleChance Market = "Double Chance"
	MarketDrawNoBet    Market = "Draw No Bet"
)

// Markets is the menu Predict draws from, uniformly.
var Markets = []Market{Market1X2, MarketBTTS, MarketOver25, MarketOver15, MarketDoubleChance, MarketDrawNoBet}

type Confidence string

const (
	ConfidenceVeryHigh Confidence = "Very High"
	ConfidenceHigh     Confidence = "High"
	ConfidenceMedium   Confidence = "Medium"
	ConfidenceLow      Confidence = "Low"
)

// confidencePool weights the draw towards High and Medium.
var confidencePool = []Confidence{
	ConfidenceVeryHigh,
	ConfidenceHigh,
	ConfidenceHigh,
	ConfidenceMedium,
	ConfidenceMedium,
	ConfidenceLow,
}

func (c Confidence) High() bool {
	return c == ConfidenceVeryHigh || c == ConfidenceHigh
}

// Stars renders the confidence as a four-star meter.
func (c Confidence) Stars() string {
	switch c {
	case ConfidenceVeryHigh:
		return "★★★★"
	case ConfidenceHigh:
		return "★★★☆"
	case ConfidenceMedium:
		return "★★☆☆"
	case ConfidenceLow:
		return "★☆☆☆"
	default:
		return "☆☆☆☆"
	}
}

// Emoji is the chat badge for the confidence.
func (c Confidence) Emoji() string {
	switch c {
	case ConfidenceVeryHigh:
		return "🔥"
	case ConfidenceHigh:
		return "⭐"
	case ConfidenceMedium:
		return "✅"
	default:
		return "⚪"
	}
}

// Rank orders confidences from strongest (0) to weakest.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceVeryHigh:
		return 0
	case ConfidenceHigh:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 3
	default:
		return 4
	}
}

// Prediction is one market pick attached to a fixture.
type Prediction struct {
	Market     Market
	Pick       string
	Price      float64
	Confidence Confidence
	Reason     string
}

// Predict picks a market, a confidence and a reason at random. Only the
// price of the chosen pick is derived deterministically from odds.
func Predict(f fixture.Fixture, odds Odds, rng RandomSource) Prediction {
	market := Markets[rng.Intn(len(Markets))]
	confidence := confidencePool[rng.Intn(len(confidencePool))]

	var (
		pick  string
		price float64
		kind  reasonKind
	)
	switch market {
	case Market1X2:
		pick, price, kind = pick1X2(odds, rng.Float64())
	case MarketBTTS:
		pick, price, kind = "BTTS — Yes", odds.BTTS, reasonBTTS
	case MarketOver25:
		pick, price, kind = "Over 2.5", odds.Over25, reasonOver25
	case MarketOver15:
		pick, price, kind = "Over 1.5", Over15Price(odds), reasonOver15
	case MarketDoubleChance:
		pick, price = doubleChance(odds)
		kind = reasonDraw
	default:
		pick, price = drawNoBet(f, odds)
		kind = reasonDefault
	}

	return Prediction{
		Market:     market,
		Pick:       pick,
		Price:      round2(price),
		Confidence: confidence,
		Reason:     reasonFor(kind, f, rng),
	}
}

// Over15Price is 72% of the Over 2.5 price, floored at MinPrice.
func Over15Price(odds Odds) float64 {
	return round2(math.Max(MinPrice, odds.Over25*0.72))
}

// pick1X2 chooses home, draw or away weighted by implied probability.
// roll is a uniform value in [0, 1).
func pick1X2(odds Odds, roll float64) (string, float64, reasonKind) {
	h, d := 1/odds.Home, 1/odds.Draw
	r := roll * odds.Implied()
	switch {
	case r < h:
		return "Home Win", odds.Home, reasonHomeWin
	case r < h+d:
		return "Draw", odds.Draw, reasonDraw
	default:
		return "Away Win", odds.Away, reasonAwayWin
	}
}

func doubleChance(odds Odds) (string, float64) {
	pick, p := "X2 (Draw or Away)", 1/odds.Draw+1/odds.Away
	if odds.HomeFavoured() {
		pick, p = "1X (Home or Draw)", 1/odds.Home+1/odds.Draw
	}
	return pick, round2(math.Max(MinPrice, 1/math.Min(0.95, p)*bookMargin))
}

func drawNoBet(f fixture.Fixture, odds Odds) (string, float64) {
	side := f.AwayTeam
	if odds.HomeFavoured() {
		side = f.HomeTeam
	}
	return side + " DNB", round2(math.Max(MinPrice, math.Min(odds.Home, odds.Away)*0.82))
}

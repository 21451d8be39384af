package httpapi

import (
	"strings"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/domain/prediction"
	"github.com/riskibarqy/predictz/internal/usecase"
)

type statusDTO struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Msg      string `json:"msg"`
	Count    int    `json:"count"`
}

type fixturesDTO struct {
	Matches []matchDTO `json:"matches"`
	Count   int        `json:"count"`
	Date    string     `json:"date"`
	Status  string     `json:"status"`
}

// matchDTO is one dashboard card. Prediction fields are only set after
// analysis; the odds fields are always present.
type matchDTO struct {
	ID         string  `json:"id" validate:"required"`
	League     string  `json:"league"`
	Code       string  `json:"code"`
	Flag       string  `json:"flag"`
	Home       string  `json:"home"`
	Away       string  `json:"away"`
	Time       string  `json:"time"`
	State      string  `json:"state"`
	Status     string  `json:"status"`
	ScoreHome  *int    `json:"score_h"`
	ScoreAway  *int    `json:"score_a"`
	OddsHome   float64 `json:"odds_h"`
	OddsDraw   float64 `json:"odds_d"`
	OddsAway   float64 `json:"odds_a"`
	OddsBTTS   float64 `json:"odds_btts"`
	OddsOver25 float64 `json:"odds_o25"`
	Market     string  `json:"market,omitempty"`
	Prediction string  `json:"prediction,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
	SelOdds    float64 `json:"sel_odds,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

type analyseRequest struct {
	Matches []matchDTO `json:"matches" validate:"required,max=500,dive"`
}

type analyseResponse struct {
	Matches []matchDTO `json:"matches"`
}

type betslipRequest struct {
	Selections []betslipSelectionRequest `json:"selections" validate:"required,min=1,max=50,dive"`
}

type betslipSelectionRequest struct {
	ID    string  `json:"id" validate:"required"`
	Price float64 `json:"price" validate:"gte=1"`
}

type betslipResponse struct {
	Count    int     `json:"count"`
	Combined float64 `json:"combined"`
	Display  string  `json:"display"`
}

type refreshResponse struct {
	Started bool `json:"started"`
}

func statusToDTO(s usecase.FetchSnapshot) statusDTO {
	return statusDTO{
		Status:   string(s.Status),
		Progress: s.Progress,
		Msg:      s.Message,
		Count:    s.Count,
	}
}

// fixtureToDTO renders a card before analysis. Odds depend only on the team
// names, so they are shown straight away.
func fixtureToDTO(f fixture.Fixture) matchDTO {
	out := matchDTO{
		ID:        f.ID,
		League:    f.CompetitionName,
		Code:      f.CompetitionCode,
		Flag:      f.Emblem,
		Home:      f.HomeTeam,
		Away:      f.AwayTeam,
		Time:      f.Kickoff,
		State:     string(f.Status),
		Status:    f.Status.Label(),
		ScoreHome: f.HomeScore,
		ScoreAway: f.AwayScore,
	}
	setOdds(&out, prediction.DeriveOdds(f.HomeTeam, f.AwayTeam))
	return out
}

func setOdds(out *matchDTO, odds prediction.Odds) {
	out.OddsHome = odds.Home
	out.OddsDraw = odds.Draw
	out.OddsAway = odds.Away
	out.OddsBTTS = odds.BTTS
	out.OddsOver25 = odds.Over25
}

func predictedToDTO(item usecase.PredictedFixture) matchDTO {
	out := fixtureToDTO(item.Fixture)
	setOdds(&out, item.Odds)
	out.Market = string(item.Prediction.Market)
	out.Prediction = item.Prediction.Pick
	out.Confidence = string(item.Prediction.Confidence)
	out.SelOdds = item.Prediction.Price
	out.Reasoning = item.Prediction.Reason
	return out
}

// toFixture rebuilds the fixture a dashboard card was rendered from. Cards
// from older pages carry no state, so the badge label is mapped back.
func (m matchDTO) toFixture() fixture.Fixture {
	status := fixture.Status(strings.ToLower(strings.TrimSpace(m.State)))
	if !status.Valid() {
		status = statusFromLabel(m.Status)
	}
	kickoff := strings.TrimSpace(m.Time)
	if kickoff == "" {
		kickoff = fixture.KickoffUnknown
	}
	return fixture.Fixture{
		ID:              m.ID,
		CompetitionCode: m.Code,
		CompetitionName: m.League,
		Emblem:          m.Flag,
		HomeTeam:        teamOrPlaceholder(m.Home),
		AwayTeam:        teamOrPlaceholder(m.Away),
		Kickoff:         kickoff,
		Status:          status,
		HomeScore:       m.ScoreHome,
		AwayScore:       m.ScoreAway,
	}
}

func teamOrPlaceholder(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fixture.TeamPlaceholder
}

func statusFromLabel(label string) fixture.Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "LIVE":
		return fixture.StatusLive
	case "FT":
		return fixture.StatusFinished
	case "PPND":
		return fixture.StatusPostponed
	case "CNCL", "CANCELLED":
		return fixture.StatusCancelled
	case "":
		return fixture.StatusScheduled
	default:
		return fixture.StatusUnknown
	}
}

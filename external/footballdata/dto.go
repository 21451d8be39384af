package footballdata

import "github.com/riskibarqy/predictz/internal/domain/fixture"

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID          *int64          `json:"id"`
	UTCDate     string          `json:"utcDate"`
	Status      string          `json:"status"`
	Competition competitionItem `json:"competition"`
	HomeTeam    teamItem        `json:"homeTeam"`
	AwayTeam    teamItem        `json:"awayTeam"`
	Score       scoreItem       `json:"score"`
}

type competitionItem struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type teamItem struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type scoreItem struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

func (e matchesEnvelope) records() []fixture.Record {
	out := make([]fixture.Record, 0, len(e.Matches))
	for _, item := range e.Matches {
		out = append(out, fixture.Record{
			ID:          item.ID,
			UTCDate:     item.UTCDate,
			Status:      item.Status,
			Competition: fixture.RecordCompetition{Name: item.Competition.Name, Code: item.Competition.Code},
			HomeTeam:    fixture.RecordTeam{Name: item.HomeTeam.Name, ShortName: item.HomeTeam.ShortName},
			AwayTeam:    fixture.RecordTeam{Name: item.AwayTeam.Name, ShortName: item.AwayTeam.ShortName},
			Score:       fixture.RecordScore{Home: item.Score.FullTime.Home, Away: item.Score.FullTime.Away},
		})
	}
	return out
}

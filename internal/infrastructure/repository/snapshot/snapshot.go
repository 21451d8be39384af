// Package snapshot is the on-disk and in-database shape of one cached day
// of fixtures.
package snapshot

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
)

// Day is serialized as {"date": "...", "matches": [...]}.
type Day struct {
	Date    string  `json:"date"`
	Matches []Match `json:"matches"`
}

type Match struct {
	ID              string    `json:"id"`
	CompetitionCode string    `json:"competitionCode"`
	CompetitionName string    `json:"competitionName"`
	Emblem          string    `json:"emblem"`
	HomeTeam        string    `json:"homeTeam"`
	AwayTeam        string    `json:"awayTeam"`
	KickoffAt       time.Time `json:"kickoffAt"`
	Kickoff         string    `json:"kickoff"`
	Status          string    `json:"status"`
	HomeScore       *int      `json:"homeScore,omitempty"`
	AwayScore       *int      `json:"awayScore,omitempty"`
}

func FromFixtures(date string, fixtures []fixture.Fixture) Day {
	out := Day{Date: date, Matches: make([]Match, 0, len(fixtures))}
	for _, f := range fixtures {
		out.Matches = append(out.Matches, Match{
			ID:              f.ID,
			CompetitionCode: f.CompetitionCode,
			CompetitionName: f.CompetitionName,
			Emblem:          f.Emblem,
			HomeTeam:        f.HomeTeam,
			AwayTeam:        f.AwayTeam,
			KickoffAt:       f.KickoffAt,
			Kickoff:         f.Kickoff,
			Status:          string(f.Status),
			HomeScore:       f.HomeScore,
			AwayScore:       f.AwayScore,
		})
	}
	return out
}

func (d Day) Fixtures() []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(d.Matches))
	for _, m := range d.Matches {
		status := fixture.Status(m.Status)
		if !status.Valid() {
			status = fixture.StatusUnknown
		}
		kickoff := m.Kickoff
		if kickoff == "" {
			kickoff = fixture.KickoffUnknown
		}
		out = append(out, fixture.Fixture{
			ID:              m.ID,
			CompetitionCode: m.CompetitionCode,
			CompetitionName: m.CompetitionName,
			Emblem:          m.Emblem,
			HomeTeam:        m.HomeTeam,
			AwayTeam:        m.AwayTeam,
			KickoffAt:       m.KickoffAt,
			Kickoff:         kickoff,
			Status:          status,
			HomeScore:       m.HomeScore,
			AwayScore:       m.AwayScore,
		})
	}
	return out
}

func Encode(day Day) ([]byte, error) {
	raw, err := sonic.Marshal(day)
	if err != nil {
		return nil, fmt.Errorf("encode fixture snapshot: %w", err)
	}
	return raw, nil
}

func Decode(raw []byte) (Day, error) {
	var day Day
	if err := sonic.Unmarshal(raw, &day); err != nil {
		return Day{}, fmt.Errorf("decode fixture snapshot: %w", err)
	}
	return day, nil
}

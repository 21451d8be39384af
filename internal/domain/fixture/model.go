package fixture

import (
	"strings"
	"time"
)

// Status is the normalized lifecycle of a match.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusPostponed Status = "postponed"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// KickoffUnknown is shown when the provider timestamp cannot be parsed.
const KickoffUnknown = "--:--"

// TeamPlaceholder names a side the provider has not announced yet.
const TeamPlaceholder = "TBC"

// ParseStatus maps a provider status string onto Status.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SCHEDULED", "TIMED":
		return StatusScheduled
	case "IN_PLAY", "PAUSED", "HALF_TIME", "EXTRA_TIME", "PENALTY_SHOOTOUT", "LIVE":
		return StatusLive
	case "FINISHED", "AWARDED":
		return StatusFinished
	case "POSTPONED", "SUSPENDED":
		return StatusPostponed
	case "CANCELLED":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// Label is the short badge rendered next to a fixture. Scheduled and
// unknown fixtures show their kickoff time instead, so they have no label.
func (s Status) Label() string {
	switch s {
	case StatusLive:
		return "LIVE"
	case StatusFinished:
		return "FT"
	case StatusPostponed:
		return "PPND"
	case StatusCancelled:
		return "CNCL"
	default:
		return ""
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished, StatusPostponed, StatusCancelled, StatusUnknown:
		return true
	default:
		return false
	}
}

// Fixture is one match of the day, ready for display.
type Fixture struct {
	ID              string
	CompetitionCode string
	CompetitionName string
	Emblem          string
	HomeTeam        string
	AwayTeam        string
	KickoffAt       time.Time
	Kickoff         string
	Status          Status
	HomeScore       *int
	AwayScore       *int
}

// Excluded reports whether the fixture must be dropped from every list.
func (f Fixture) Excluded() bool {
	return f.Status == StatusCancelled
}

func (f Fixture) HasScore() bool {
	return f.HomeScore != nil && f.AwayScore != nil
}

// Title renders "Home vs Away".
func (f Fixture) Title() string {
	return f.HomeTeam + " vs " + f.AwayTeam
}

// Record is a raw provider match before normalization.
type Record struct {
	ID          *int64
	UTCDate     string
	Status      string
	Competition RecordCompetition
	HomeTeam    RecordTeam
	AwayTeam    RecordTeam
	Score       RecordScore
}

type RecordCompetition struct {
	Name string
	Code string
}

type RecordTeam struct {
	Name      string
	ShortName string
}

type RecordScore struct {
	Home *int
	Away *int
}

// HasCompetition reports whether the provider attached competition
// metadata to the record.
func (r Record) HasCompetition() bool {
	return strings.TrimSpace(r.Competition.Code) != "" || strings.TrimSpace(r.Competition.Name) != ""
}

package fixture

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/predictz/internal/platform/id"
)

var providerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Parser turns provider records into display fixtures.
type Parser struct {
	Catalog  *Catalog
	Location *time.Location
	IDs      id.Generator
}

func NewParser(catalog *Catalog, loc *time.Location, ids id.Generator) *Parser {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if loc == nil {
		loc = time.Local
	}
	if ids == nil {
		ids = id.NewUUIDGenerator("local-")
	}
	return &Parser{Catalog: catalog, Location: loc, IDs: ids}
}

// Parse never fails. Missing names become the placeholder and a bad
// timestamp renders as KickoffUnknown.
func (p *Parser) Parse(rec Record) Fixture {
	code := strings.ToUpper(strings.TrimSpace(rec.Competition.Code))
	known := p.Catalog.Lookup(code)
	name := strings.TrimSpace(rec.Competition.Name)
	if name == "" {
		name = known.Name
	}

	out := Fixture{
		ID:              p.fixtureID(rec.ID),
		CompetitionCode: code,
		CompetitionName: name,
		Emblem:          known.Emblem,
		HomeTeam:        teamName(rec.HomeTeam),
		AwayTeam:        teamName(rec.AwayTeam),
		Kickoff:         KickoffUnknown,
		Status:          ParseStatus(rec.Status),
	}
	if kickoff, ok := parseProviderTime(rec.UTCDate); ok {
		out.KickoffAt = kickoff
		out.Kickoff = kickoff.In(p.Location).Format("15:04")
	}
	if out.Status == StatusFinished && rec.Score.Home != nil && rec.Score.Away != nil {
		home, away := *rec.Score.Home, *rec.Score.Away
		out.HomeScore = &home
		out.AwayScore = &away
	}

	return out
}

// ParseAll parses records and drops cancelled fixtures.
func (p *Parser) ParseAll(records []Record) []Fixture {
	out := make([]Fixture, 0, len(records))
	for _, rec := range records {
		item := p.Parse(rec)
		if item.Excluded() {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (p *Parser) fixtureID(raw *int64) string {
	if raw != nil && *raw > 0 {
		return strconv.FormatInt(*raw, 10)
	}
	value, err := p.IDs.NewID()
	if err != nil || value == "" {
		return "local-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return value
}

func teamName(team RecordTeam) string {
	if v := strings.TrimSpace(team.ShortName); v != "" {
		return v
	}
	if v := strings.TrimSpace(team.Name); v != "" {
		return v
	}
	return TeamPlaceholder
}

func parseProviderTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range providerTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// FilterPlayable drops cancelled fixtures and keeps the input order.
func FilterPlayable(items []Fixture) []Fixture {
	out := make([]Fixture, 0, len(items))
	for _, item := range items {
		if item.Excluded() {
			continue
		}
		out = append(out, item)
	}
	return out
}

// SortByKickoff orders fixtures by kickoff, then competition, then home
// team. Unknown kickoffs go last.
func SortByKickoff(items []Fixture) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]
		if left.KickoffAt.IsZero() != right.KickoffAt.IsZero() {
			return right.KickoffAt.IsZero()
		}
		if !left.KickoffAt.Equal(right.KickoffAt) {
			return left.KickoffAt.Before(right.KickoffAt)
		}
		if left.CompetitionName != right.CompetitionName {
			return left.CompetitionName < right.CompetitionName
		}
		return left.HomeTeam < right.HomeTeam
	})
}

// GroupByCompetition buckets fixtures by competition name, keeping first
// appearance order for both groups and members.
func GroupByCompetition(items []Fixture) ([]string, map[string][]Fixture) {
	order := make([]string, 0, 8)
	groups := make(map[string][]Fixture, 8)
	for _, item := range items {
		key := item.CompetitionName
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}
	return order, groups
}

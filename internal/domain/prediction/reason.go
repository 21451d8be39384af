package prediction

import (
	"strings"

	"github.com/riskibarqy/predictz/internal/domain/fixture"
)

type reasonKind int

const (
	reasonDefault reasonKind = iota
	reasonHomeWin
	reasonAwayWin
	reasonDraw
	reasonBTTS
	reasonOver25
	reasonOver15
)

var reasonPools = map[reasonKind][]string{
	reasonHomeWin: {
		"{home} have won 4 of their last 5 home fixtures.",
		"Head-to-head data strongly favours {home}.",
		"Poisson model assigns 67%+ win probability to {home}.",
		"{home} concede under 1 goal/game at home this season.",
	},
	reasonAwayWin: {
		"{away} are unbeaten in their last 6 away games.",
		"{away} scored 2+ in 5 of their last 6 away fixtures.",
		"{home} have failed to win in their last 4 home games.",
	},
	reasonDraw: {
		"Both sides evenly matched, a draw is strong value.",
		"H2H shows 3 of last 5 meetings ended level.",
		"Tactical, low-scoring affair expected; 1-1 most probable.",
	},
	reasonBTTS: {
		"Both teams scored in 7 of their last 8 combined fixtures.",
		"Neither side kept a clean sheet in their last 5 games.",
		"Both clubs rank top-half for goals scored this season.",
	},
	reasonOver25: {
		"Combined xG points to a high-scoring encounter.",
		"Both teams score and concede freely, Over 2.5 is value.",
		"Last 5 H2H meetings averaged 3.4 goals per game.",
	},
	reasonOver15: {
		"At least 2 goals expected based on recent output.",
		"Over 1.5 landed in 9 of the last 10 home games for this side.",
	},
	reasonDefault: {
		"Statistical model confirms a clear edge on this pick.",
		"Value edge: implied probability exceeds the market line.",
	},
}

func reasonFor(kind reasonKind, f fixture.Fixture, rng RandomSource) string {
	pool := reasonPools[kind]
	if len(pool) == 0 {
		pool = reasonPools[reasonDefault]
	}
	template := pool[rng.Intn(len(pool))]
	return strings.NewReplacer("{home}", f.HomeTeam, "{away}", f.AwayTeam).Replace(template)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/riskibarqy/predictz/internal/platform/cache"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
)

type Intent string

const (
	IntentHelp        Intent = "help"
	IntentPredictions Intent = "predictions"
	IntentAll         Intent = "all"
	IntentBetslip     Intent = "betslip"
	IntentUnknown     Intent = "unknown"
)

const (
	chatPredictionLimit = 5
	chatBetslipLegs     = 3
	chatRule            = "────────────────────────────"
)

// intentWords is checked in order; the first intent with a matching word
// wins.
var intentWords = []struct {
	intent Intent
	words  []string
}{
	{IntentPredictions, []string{"prediction", "predictions", "picks", "pick", "tips", "tip"}},
	{IntentAll, []string{"all", "fixtures", "fixture", "matches", "today"}},
	{IntentBetslip, []string{"betslip", "best", "combo", "accumulator", "acca"}},
	{IntentHelp, []string{"help", "hi", "hello", "hey", "start", "menu"}},
}

// DetectIntent matches whole words case-insensitively, so "matches" never
// triggers the "hi" greeting.
func DetectIntent(text string) Intent {
	tokens := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[token] = struct{}{}
	}
	for _, group := range intentWords {
		for _, word := range group.words {
			if _, ok := tokens[word]; ok {
				return group.intent
			}
		}
	}
	if strings.Contains(text, "?") {
		return IntentHelp
	}
	return IntentUnknown
}

// DailyFixtures is the fixture source the chat front-end reads from.
type DailyFixtures interface {
	Date() string
	Today(ctx context.Context, progress ProgressFunc) (TodayResult, error)
}

var errEmptyDay = errors.New("no fixtures for the day")

// ChatService answers chat commands. Predictions are computed once per day
// so every command in a day sees the same picks.
type ChatService struct {
	fixtures DailyFixtures
	analysis *AnalysisService
	picks    *cache.Store[[]PredictedFixture]
	now      func() time.Time
	logger   *logging.Logger
}

func NewChatService(fixtures DailyFixtures, analysis *AnalysisService, ttl time.Duration, logger *logging.Logger) *ChatService {
	if logger == nil {
		logger = logging.Default()
	}
	if analysis == nil {
		analysis = NewAnalysisService(nil)
	}
	return &ChatService{
		fixtures: fixtures,
		analysis: analysis,
		picks:    cache.NewStore[[]PredictedFixture](ttl),
		now:      time.Now,
		logger:   logger,
	}
}

// Reply always produces a message; failures become a friendly apology.
func (s *ChatService) Reply(ctx context.Context, text string) string {
	intent := DetectIntent(text)
	ctx, span := startUsecaseSpan(ctx, "usecase.ChatService.Reply", attribute.String("chat.intent", string(intent)))
	defer span.End()

	s.logger.InfoContext(ctx, "chat message received", "intent", string(intent), "length", len(text))

	switch intent {
	case IntentHelp:
		return HelpMessage()
	case IntentUnknown:
		return unknownMessage(text)
	}

	picks, err := s.TodayPicks(ctx)
	if err != nil && !errors.Is(err, errEmptyDay) {
		s.logger.WarnContext(ctx, "load chat picks failed", "error", err)
	}

	switch intent {
	case IntentPredictions:
		return s.formatPredictions(picks)
	case IntentAll:
		return s.formatAll(picks)
	default:
		return s.formatBetslip(picks)
	}
}

// TodayPicks returns the day's predictions, loading them at most once per
// date across concurrent callers. Empty days are not cached.
func (s *ChatService) TodayPicks(ctx context.Context) ([]PredictedFixture, error) {
	date := s.fixtures.Date()
	return s.picks.GetOrLoad(ctx, date, func(ctx context.Context) ([]PredictedFixture, error) {
		result, err := s.fixtures.Today(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("load fixtures: %w", err)
		}
		if result.Empty() {
			return nil, errEmptyDay
		}
		return s.analysis.Analyse(ctx, result.Fixtures), nil
	})
}

// DigestMessage is the predictions reply used for scheduled pushes. It
// reports false when there is nothing worth sending.
func (s *ChatService) DigestMessage(ctx context.Context) (string, bool, error) {
	picks, err := s.TodayPicks(ctx)
	if errors.Is(err, errEmptyDay) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.formatPredictions(picks), true, nil
}

func (s *ChatService) today() string {
	return s.now().Format("02 Jan 2006")
}

func (s *ChatService) formatPredictions(picks []PredictedFixture) string {
	shown := TopPicks(picks, chatPredictionLimit)
	if len(shown) == 0 {
		return "No fixtures found today. Try again later!"
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "⚽ *A103 PREDICTZ AI*\n📅 %s\n%s\n", s.today(), chatRule)
	for i, item := range shown {
		f, p := item.Fixture, item.Prediction
		fmt.Fprintf(buf, "\n%s *Match %d*\n%s %s\n🏠 %s vs %s\n🕐 %s\n🎯 *%s* @ %.2fx\n📊 %s · %s confidence\n",
			p.Confidence.Emoji(), i+1,
			f.Emblem, f.CompetitionName,
			f.HomeTeam, f.AwayTeam,
			f.Kickoff,
			p.Pick, p.Price,
			p.Market, p.Confidence,
		)
	}
	fmt.Fprintf(buf, "\n%s\n💡 Reply *betslip* for combined odds\n💡 Reply *all* for all fixtures", chatRule)
	return buf.String()
}

func (s *ChatService) formatAll(picks []PredictedFixture) string {
	if len(picks) == 0 {
		return "No fixtures found today."
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "⚽ *ALL FIXTURES TODAY*\n📅 %s\n%s\n", s.today(), chatRule)
	current := ""
	for _, item := range picks {
		f := item.Fixture
		if f.CompetitionName != current {
			current = f.CompetitionName
			fmt.Fprintf(buf, "\n%s *%s*\n", f.Emblem, f.CompetitionName)
		}
		fmt.Fprintf(buf, "  🕐 %s  %s vs %s\n", f.Kickoff, f.HomeTeam, f.AwayTeam)
	}
	fmt.Fprintf(buf, "\n%s\nTotal: %d fixtures\nReply *predictions* for AI picks", chatRule, len(picks))
	return buf.String()
}

func (s *ChatService) formatBetslip(picks []PredictedFixture) string {
	legs := TopPicks(picks, chatBetslipLegs)
	if len(legs) == 0 {
		return "No fixtures available for betslip today."
	}
	slip := BuildBetslip(legs)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "🎯 *A103 TOP BETSLIP*\n📅 %s\n%s\n", s.today(), chatRule)
	for i, item := range legs {
		f, p := item.Fixture, item.Prediction
		fmt.Fprintf(buf, "\n*Leg %d:* %s %s vs %s\n  Pick: *%s* @ %.2fx\n", i+1, f.Emblem, f.HomeTeam, f.AwayTeam, p.Pick, p.Price)
	}
	fmt.Fprintf(buf, "\n%s\n💰 *COMBINED ODDS: %sx*\n⚠️ Always gamble responsibly", chatRule, slip.CombinedOdds().StringFixed(2))
	return buf.String()
}

// HelpMessage lists the chat commands.
func HelpMessage() string {
	return "⚽ *A103 PREDICTZ AI*\n" +
		"Your football predictions bot!\n" +
		"─────────────────────────\n\n" +
		"*Commands:*\n\n" +
		"🔥 *predictions*: Top AI picks today\n" +
		"📋 *all*: All fixtures & odds\n" +
		"🎯 *betslip*: Best 3-pick combo\n" +
		"❓ *help*: Show this menu\n\n" +
		"─────────────────────────\n" +
		"Data: football-data.org\n" +
		"Always gamble responsibly ⚠️"
}

func unknownMessage(text string) string {
	return fmt.Sprintf("👋 Hi! I didn't understand *%s*\n\n"+
		"Try one of these:\n"+
		"✅ *predictions*\n"+
		"✅ *all*\n"+
		"✅ *betslip*\n"+
		"✅ *help*", strings.TrimSpace(text))
}

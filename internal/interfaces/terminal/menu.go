package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/riskibarqy/predictz/internal/domain/betslip"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/usecase"
)

const width = 70

// FixtureLoader is the part of FixtureService the menu drives.
type FixtureLoader interface {
	Date() string
	Today(ctx context.Context, progress usecase.ProgressFunc) (usecase.TodayResult, error)
	Refresh(ctx context.Context, progress usecase.ProgressFunc) (usecase.TodayResult, error)
}

// ReportExporter writes the predictions report and returns its path.
type ReportExporter interface {
	Export(ctx context.Context, picks []usecase.PredictedFixture, slip *betslip.Betslip) (string, error)
}

type Config struct {
	In      io.Reader
	Out     io.Writer
	NoColor bool
}

// Menu is the interactive numbered menu. It is not safe for concurrent use.
type Menu struct {
	loader   FixtureLoader
	analysis *usecase.AnalysisService
	reports  ReportExporter
	logger   *logging.Logger

	in  *bufio.Scanner
	out io.Writer
	p   palette

	fixtures []fixture.Fixture
	picks    []usecase.PredictedFixture
	slip     *betslip.Betslip
}

func NewMenu(loader FixtureLoader, analysis *usecase.AnalysisService, reports ReportExporter, cfg Config, logger *logging.Logger) *Menu {
	if logger == nil {
		logger = logging.Default()
	}
	if analysis == nil {
		analysis = usecase.NewAnalysisService(nil)
	}
	return &Menu{
		loader:   loader,
		analysis: analysis,
		reports:  reports,
		logger:   logger,
		in:       bufio.NewScanner(cfg.In),
		out:      cfg.Out,
		p:        newPalette(cfg.NoColor),
		slip:     betslip.New(),
	}
}

// Run loads today's fixtures and serves the menu until the user exits,
// input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	m.banner()
	m.printf("  %s %s\n", m.p.dim("Date  :"), m.p.cyan(m.loader.Date()))
	m.printf("  %s football-data.org\n\n", m.p.dim("Source:"))

	m.load(ctx, m.loader.Today)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		m.printMenu()
		choice, ok := m.prompt(m.p.cyan("›") + " Option: ")
		if !ok {
			m.printf("\n\n  %s\n\n", m.p.dim("Goodbye!"))
			return nil
		}

		switch choice {
		case "1":
			m.runAnalysis(ctx)
		case "2":
			m.viewAll()
		case "3":
			m.viewHighConfidence()
		case "4":
			m.filterByLeague()
		case "5":
			m.manageBetslip()
		case "6":
			m.printBetslip()
		case "7":
			m.export(ctx)
		case "8":
			m.refresh(ctx)
		case "0":
			m.printf("\n%s\n", m.p.cyan("  Thank you for using A103 Predictz AI!"))
			m.printf("%s\n\n", m.p.dim("  Always gamble responsibly."))
			return nil
		default:
			m.printf("%s\n\n", m.p.dim("\n  Invalid option."))
		}
	}
}

func (m *Menu) printMenu() {
	top := len(usecase.HighConfidence(m.picks))
	m.hr()
	m.printf("  %s %s\n", m.p.dim("Date:"), m.p.cyan(m.loader.Date()))
	m.hr()
	m.printf("  %s Run A103 AI Analysis\n", m.p.cyan("1."))
	m.printf("  %s View All Predictions       %s\n", m.p.cyan("2."), m.p.dim(fmt.Sprintf("(%d ready)", len(m.picks))))
	m.printf("  %s High Confidence Only       %s\n", m.p.cyan("3."), m.p.dim(fmt.Sprintf("(%d picks)", top)))
	m.printf("  %s Filter by League\n", m.p.cyan("4."))
	m.printf("  %s Manage Betslip             %s\n", m.p.cyan("5."), m.p.dim(fmt.Sprintf("(%d selected)", m.slip.Len())))
	m.printf("  %s View Betslip & Combined Odds\n", m.p.cyan("6."))
	m.printf("  %s Export Predictions to File\n", m.p.cyan("7."))
	m.printf("  %s Refresh Fixtures\n", m.p.cyan("8."))
	m.printf("  %s Exit\n\n", m.p.cyan("0."))
}

func (m *Menu) load(ctx context.Context, fetch func(context.Context, usecase.ProgressFunc) (usecase.TodayResult, error)) {
	m.printf("  %s Fetching today's fixtures from football-data.org\n", m.p.cyan("→"))

	result, err := fetch(ctx, func(p usecase.FetchProgress) {
		m.progress(p.Percent, p.Message)
	})
	m.printf("\n\n")
	if err != nil {
		m.logger.WarnContext(ctx, "load fixtures failed", "error", err)
		m.printf("  %s\n\n", m.p.red("✗ "+usecase.MessageNoConnectivity+". Check your network."))
		m.fixtures = nil
		return
	}

	m.fixtures = fixture.FilterPlayable(result.Fixtures)
	if len(m.fixtures) == 0 {
		m.printf("  %s %s\n", m.p.yellow("⚠"), result.Message)
		m.printf("  %s\n\n", m.p.dim("This may be an international break day."))
		return
	}

	source := ""
	if result.FromCache {
		source = m.p.dim(" (cache)")
	}
	m.printf("  %s Found %s fixtures today%s:\n\n", m.p.green("✓"), m.p.cyan(strconv.Itoa(len(m.fixtures))), source)
	order, groups := fixture.GroupByCompetition(m.fixtures)
	for _, name := range order {
		members := groups[name]
		m.printf("    %s %s %s (%d)\n", m.p.dim("·"), members[0].Emblem, name, len(members))
	}
	m.printf("\n")
}

func (m *Menu) runAnalysis(ctx context.Context) {
	if len(m.fixtures) == 0 {
		m.printf("%s\n\n", m.p.dim("\n  No fixtures to analyse."))
		return
	}
	m.printf("\n  %s %s\n\n", m.p.cyan("⚡"), m.p.white("A103 ANALYSIS ENGINE STARTING"))

	m.picks = m.analysis.Analyse(ctx, m.fixtures)
	// Prices change between runs, so an old slip no longer matches.
	m.slip.Clear()
	for i, item := range m.picks {
		m.progress((i+1)*100/len(m.picks), item.Fixture.Title())
	}
	m.printf("\n\n  %s %s fixtures analysed\n\n", m.p.green("✓"), m.p.cyan(strconv.Itoa(len(m.picks))))
}

func (m *Menu) viewAll() {
	if len(m.picks) == 0 {
		m.printf("%s\n\n", m.p.dim("\n  No predictions yet. Run option 1 first."))
		return
	}
	m.printf("\n  %s PREDICTIONS: %s\n\n", m.p.cyan(strconv.Itoa(len(m.picks))), m.loader.Date())
	m.printCards(m.picks)
}

func (m *Menu) viewHighConfidence() {
	top := usecase.HighConfidence(m.picks)
	if len(top) == 0 {
		m.printf("%s\n\n", m.p.dim("\n  No high confidence picks yet. Run analysis first."))
		return
	}
	m.printf("\n  %s %s HIGH CONFIDENCE PICKS\n\n", m.p.green("⭐"), m.p.cyan(strconv.Itoa(len(top))))
	m.printCards(top)
}

func (m *Menu) filterByLeague() {
	if len(m.picks) == 0 {
		m.printf("%s\n\n", m.p.dim("\n  No predictions yet. Run option 1 first."))
		return
	}
	leagues := usecase.Competitions(m.picks)
	m.printf("\n  %s\n\n", m.p.cyan("FILTER BY LEAGUE"))
	m.printf("  %s All (%d fixtures)\n", m.p.dim("0."), len(m.picks))
	for i, lg := range leagues {
		m.printf("  %s %s %s  %s\n", m.p.dim(strconv.Itoa(i+1)+"."), lg.Emblem, lg.Name, m.p.dim(fmt.Sprintf("(%d)", lg.Count)))
	}

	n, ok := m.readIndex(len(leagues))
	if !ok {
		return
	}
	items := m.picks
	if n > 0 {
		items = usecase.ByCompetition(m.picks, leagues[n-1].Name)
	}
	m.printf("\n")
	m.printCards(items)
}

func (m *Menu) manageBetslip() {
	if len(m.picks) == 0 {
		m.printf("%s\n\n", m.p.dim("\n  No predictions yet. Run analysis first (option 1)."))
		return
	}
	m.printf("\n  %s\n\n", m.p.cyan("ADD / REMOVE FROM BETSLIP"))
	for i, item := range m.picks {
		tick := " "
		if m.slip.Contains(item.Fixture.ID) {
			tick = m.p.green("✓")
		}
		m.printf("  %s [%s]  %s %s%s vs %s  %s %s\n",
			m.p.dim(strconv.Itoa(i+1)+"."), tick, item.Fixture.Emblem,
			m.p.dim(item.Fixture.CompetitionName+"  "), item.Fixture.HomeTeam, item.Fixture.AwayTeam,
			m.p.green(item.Prediction.Pick), m.p.yellow(formatPrice(item.Prediction.Price)))
	}
	m.printf("\n  %s\n", m.p.dim("Type match number to toggle | 0 = done"))

	for {
		raw, ok := m.prompt(m.p.cyan("›") + " ")
		if !ok || raw == "0" {
			break
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > len(m.picks) {
			m.printf("%s\n", m.p.dim("  Invalid number."))
			continue
		}
		item := m.picks[n-1]
		if m.slip.Toggle(item.Selection()) {
			m.printf("  %s Added: %s  %s\n", m.p.green("+"), item.Fixture.Title(), m.p.yellow(formatPrice(item.Prediction.Price)))
		} else {
			m.printf("  %s Removed: %s\n", m.p.yellow("−"), item.Fixture.Title())
		}
	}
	m.printf("\n")
}

func (m *Menu) printBetslip() {
	if m.slip.Len() == 0 {
		m.printf("\n  %s\n\n", m.p.dim("Betslip empty. Add selections from predictions."))
		return
	}
	m.printf("\n%s\n", m.p.green("  ╔══ BETSLIP "+strings.Repeat("═", width-13)+"╗"))
	for i, sel := range m.slip.Selections() {
		m.printf("  %s %s\n", m.p.dim(strconv.Itoa(i+1)+"."), m.p.white(sel.Title))
		m.printf("     %s %s  %s\n", m.p.dim("Pick:"), m.p.green(sel.Pick), m.p.yellow(formatPrice(sel.Price)))
	}
	m.printf("%s\n", m.p.green("  ╠══ SUMMARY "+strings.Repeat("═", width-13)+"╣"))
	m.printf("  %-32s %s\n", m.p.dim("Total Selections :"), m.p.cyan(strconv.Itoa(m.slip.Len())))
	m.printf("  %-32s %s\n", m.p.dim("Combined Odds    :"), m.p.yellow(m.slip.CombinedOdds().StringFixed(2)+"x"))
	m.printf("%s\n\n", m.p.green("  ╚"+strings.Repeat("═", width-2)+"╝"))
}

func (m *Menu) export(ctx context.Context) {
	if len(m.picks) == 0 {
		m.printf("%s\n\n", m.p.dim("\n  No predictions to export. Run analysis first."))
		return
	}
	path, err := m.reports.Export(ctx, m.picks, m.slip)
	if err != nil {
		m.logger.ErrorContext(ctx, "export predictions failed", "error", err)
		m.printf("\n  %s\n\n", m.p.red("✗ Export failed: "+err.Error()))
		return
	}
	m.printf("\n  %s Saved to %s\n\n", m.p.green("✓"), m.p.cyan(path))
}

func (m *Menu) refresh(ctx context.Context) {
	m.picks = nil
	m.slip.Clear()
	m.printf("\n")
	m.load(ctx, m.loader.Refresh)
	if len(m.fixtures) > 0 {
		m.printf("%s\n\n", m.p.green(fmt.Sprintf("  ✓ Refreshed: %d fixtures loaded", len(m.fixtures))))
	}
}

func (m *Menu) printCards(items []usecase.PredictedFixture) {
	for i, item := range items {
		m.printf("  %s", m.p.dim("#"+strconv.Itoa(i+1)))
		m.printCard(item)
	}
}

func (m *Menu) printCard(item usecase.PredictedFixture) {
	f := item.Fixture
	tag := ""
	if label := f.Status.Label(); label != "" {
		tag = "  " + m.p.yellow("["+label+"]")
	}
	if f.HasScore() {
		tag += fmt.Sprintf("  %d-%d", *f.HomeScore, *f.AwayScore)
	}
	m.printf(" %s %s  %s%s\n", f.Emblem, m.p.cyan(f.CompetitionName), m.p.dim("🕐 "+f.Kickoff), tag)
	m.printf("\n  %s  %s  %s\n", m.p.white(f.HomeTeam), m.p.dim("vs"), m.p.white(f.AwayTeam))

	odds := item.Odds
	m.printf("\n  %s %-8s %s %-8s %s %-8s %s %-8s %s %s\n",
		m.p.dim("H:"), formatPrice(odds.Home), m.p.dim("D:"), formatPrice(odds.Draw),
		m.p.dim("A:"), formatPrice(odds.Away), m.p.dim("BTTS:"), formatPrice(odds.BTTS),
		m.p.dim("O2.5:"), formatPrice(odds.Over25))

	pred := item.Prediction
	m.printf("\n  %s %s\n", m.p.dim("Market :"), pred.Market)
	m.printf("  %s %s  %s  %s %s\n", m.p.dim("Pick   :"), m.p.green("🎯 "+pred.Pick),
		m.p.yellow(formatPrice(pred.Price)), pred.Confidence.Emoji(), pred.Confidence)
	m.printf("  %s %s\n\n", m.p.dim("Reason :"), m.p.dim(pred.Reason))
	m.hr()
}

// readIndex reads a number in [0, upper]. It reports false on end of input
// or an invalid entry.
func (m *Menu) readIndex(upper int) (int, bool) {
	raw, ok := m.prompt(m.p.cyan("›") + " ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > upper {
		m.printf("%s\n", m.p.dim(fmt.Sprintf("  Enter 0-%d", upper)))
		return 0, false
	}
	return n, true
}

func (m *Menu) prompt(label string) (string, bool) {
	m.printf("  %s", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) progress(percent int, label string) {
	percent = min(max(percent, 0), 100)
	filled := percent * 36 / 100
	if len(label) > 36 {
		label = label[:36]
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 36-filled)
	m.printf("\r  [%s] %s  %s", bar, m.p.cyan(strconv.Itoa(percent)+"%"), m.p.dim(label))
}

func (m *Menu) banner() {
	m.printf("\n%s\n", m.p.cyan(strings.Repeat("█", width)))
	title := "A103 PREDICTZ AI"
	pad := (width - 2 - len(title)) / 2
	m.printf("%s%s%s%s%s\n", m.p.cyan("█"), strings.Repeat(" ", pad), m.p.green(title),
		strings.Repeat(" ", width-2-pad-len(title)), m.p.cyan("█"))
	m.printf("%s\n\n", m.p.cyan(strings.Repeat("█", width)))
}

func (m *Menu) hr() {
	m.printf("%s\n", m.p.dim(strings.Repeat("─", width)))
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64) + "x"
}

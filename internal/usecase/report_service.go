package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/riskibarqy/predictz/internal/domain/betslip"
	"github.com/riskibarqy/predictz/internal/platform/atomicfile"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

const reportWidth = 70

// ReportService writes the daily plain-text predictions report.
type ReportService struct {
	dir    string
	now    func() time.Time
	logger *logging.Logger
}

func NewReportService(dir string, logger *logging.Logger) *ReportService {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportService{dir: dir, now: time.Now, logger: logger}
}

// ReportFileName is A103_Predictions_<YYYY-MM-DD>.txt for the given date.
func ReportFileName(date string) string {
	return fmt.Sprintf("A103_Predictions_%s.txt", date)
}

// Export renders the report and replaces any earlier report for the day.
// The file appears whole or not at all.
func (s *ReportService) Export(ctx context.Context, picks []PredictedFixture, slip *betslip.Betslip) (string, error) {
	date := s.now().Format("2006-01-02")
	path := filepath.Join(s.dir, ReportFileName(date))

	if err := atomicfile.WriteFile(path, RenderReport(date, picks, slip), 0o644); err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}
	s.logger.InfoContext(ctx, "predictions report exported", "path", path, "picks", len(picks))
	return path, nil
}

// RenderReport builds the report body.
func RenderReport(date string, picks []PredictedFixture, slip *betslip.Betslip) []byte {
	if slip == nil {
		slip = betslip.New()
	}
	heavy := strings.Repeat("=", reportWidth)
	light := strings.Repeat("-", reportWidth)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "%s\n         A103 PREDICTZ AI: DAILY PREDICTIONS\n         Date: %s\n%s\n\n", heavy, date, heavy)
	fmt.Fprintf(buf, "Fixtures Analysed  : %d\n", len(picks))
	fmt.Fprintf(buf, "High Confidence    : %d\n", len(HighConfidence(picks)))
	fmt.Fprintf(buf, "Betslip Selections : %d\n", slip.Len())
	if slip.Len() > 0 {
		fmt.Fprintf(buf, "Combined Odds      : %sx\n", slip.CombinedOdds().StringFixed(2))
	}

	fmt.Fprintf(buf, "\n%s\n\nALL PREDICTIONS\n\n", light)
	for _, item := range picks {
		f, p := item.Fixture, item.Prediction
		fmt.Fprintf(buf, "  [%s] %s\n  %s\n", p.Confidence.Stars(), p.Confidence, f.CompetitionName)
		fmt.Fprintf(buf, "  %s vs %s  |  %s\n", f.HomeTeam, f.AwayTeam, f.Kickoff)
		fmt.Fprintf(buf, "  Market : %s\n  Pick   : %s\n", p.Market, p.Pick)
		fmt.Fprintf(buf, "  Odds   : %.2fx\n  Reason : %s\n\n", p.Price, p.Reason)
	}

	if slip.Len() > 0 {
		byID := make(map[string]PredictedFixture, len(picks))
		for _, item := range picks {
			byID[item.Fixture.ID] = item
		}
		fmt.Fprintf(buf, "%s\n\nBETSLIP\n\n", light)
		for _, sel := range slip.Selections() {
			item, ok := byID[sel.FixtureID]
			if !ok {
				fmt.Fprintf(buf, "  %s\n  %s  @  %.2fx\n\n", sel.Title, sel.Pick, sel.Price)
				continue
			}
			fmt.Fprintf(buf, "  %s  |  %s\n", item.Fixture.CompetitionName, item.Fixture.Title())
			fmt.Fprintf(buf, "  %s  ›  %s  @  %.2fx\n\n", item.Prediction.Market, sel.Pick, sel.Price)
		}
		fmt.Fprintf(buf, "  COMBINED ODDS: %sx\n", slip.CombinedOdds().StringFixed(2))
	}
	fmt.Fprintf(buf, "\n%s\n", heavy)

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out
}

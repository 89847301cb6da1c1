package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/bullscan/internal/audit"
	"github.com/wonny/bullscan/internal/report"
)

// trackCmd represents the track command
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "기록된 추천의 사후 성과 추적",
	Long: `CSV 로그에 기록된 추천 종목의 이후 수익률을 계산합니다.

지표:
- 기간(horizon)별 평균 수익률 / 승률
- 레짐별 기간 성과

Example:
  go run ./cmd/scanner track
  go run ./cmd/scanner track --log ./adaptive_bullish_log.csv --horizons 1,5,10`,
	RunE: runTrack,
}

var (
	trackLogPath  string
	trackSource   string
	trackHorizons []int
	trackJSON     bool
)

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringVar(&trackLogPath, "log", "", "CSV 로그 경로 (기본: $REPORT_LOG)")
	trackCmd.Flags().StringVar(&trackSource, "source", sourceYahoo, "시세 소스 (yahoo|db)")
	trackCmd.Flags().IntSliceVar(&trackHorizons, "horizons", nil, "추적 기간 봉 수 (기본: 전략 파일)")
	trackCmd.Flags().BoolVar(&trackJSON, "json", false, "결과를 JSON 으로 출력")
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	path := trackLogPath
	if path == "" {
		path = a.cfg.ReportLogPath
	}
	signals, err := report.ReadCSVLog(path)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		PrintInfo(fmt.Sprintf("%s has no logged signals", path))
		return nil
	}

	horizons := trackHorizons
	if len(horizons) == 0 {
		strategy, err := a.loadStrategy()
		if err != nil {
			return err
		}
		horizons = strategy.Tracking.HorizonsDays
	}

	source, err := a.source(trackSource)
	if err != nil {
		return err
	}

	rep, err := audit.NewTracker(source, horizons, a.log).Evaluate(ctx, signals)
	if err != nil {
		return err
	}

	if trackJSON {
		return PrintJSON(rep)
	}

	PrintHeader("Signal Performance",
		Field{"Log", path},
		Field{"Period", fmt.Sprintf("%s ~ %s", rep.StartDate.Format(dateLayout), rep.EndDate.Format(dateLayout))},
		Field{"Signals", strconv.Itoa(rep.Signals)},
	)

	widths := []int{10, 8, 6, 11, 8}
	PrintTableHeader([]string{"Regime", "Horizon", "Count", "Mean", "Win"}, widths)
	for _, s := range rep.ByHorizon {
		PrintTableRow(summaryRow("All", s), widths)
	}
	for _, s := range rep.ByRegime {
		PrintTableRow(summaryRow(s.Regime, s), widths)
	}
	fmt.Println()

	if rep.Skipped > 0 {
		PrintInfo(fmt.Sprintf("%d signal/horizon pairs have no forward data yet", rep.Skipped))
	}
	return nil
}

func summaryRow(label string, s audit.Summary) []string {
	return []string{
		label,
		fmt.Sprintf("%dd", s.Horizon),
		strconv.Itoa(s.Count),
		pct(s.MeanReturnPct),
		fmt.Sprintf("%.1f%%", s.WinRatePct),
	}
}

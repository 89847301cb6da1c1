package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bullscan/internal/brain"
	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/data/repos"
	"github.com/wonny/bullscan/internal/report"
	"github.com/wonny/bullscan/internal/strategyconfig"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "스캔 사이클 1회 실행",
	Long: `유니버스 전 종목을 평가하고 상위 N 종목을 리포트합니다.

단계:
  config → fetch → evaluate → rank → report

출력:
- 콘솔 순위표
- CSV 로그 추가 ($REPORT_LOG, --no-log 로 생략)
- DB 저장 (DATABASE_URL 설정 시)

Example:
  go run ./cmd/scanner scan
  go run ./cmd/scanner scan --as-of 2024-03-01 --dry-run
  go run ./cmd/scanner scan --symbols AAPL,MSFT,NVDA --source db`,
	RunE: runScan,
}

var (
	scanAsOf        string
	scanSymbols     string
	scanSource      string
	scanDryRun      bool
	scanNoLog       bool
	scanShowSkipped bool
	scanJSON        bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanAsOf, "as-of", "", "평가 기준일 YYYY-MM-DD (기본: 오늘)")
	scanCmd.Flags().StringVar(&scanSymbols, "symbols", "", "유니버스 대신 사용할 종목 (쉼표 구분)")
	scanCmd.Flags().StringVar(&scanSource, "source", sourceYahoo, "시세 소스 (yahoo|db)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "CSV/DB 기록 없이 콘솔 출력만")
	scanCmd.Flags().BoolVar(&scanNoLog, "no-log", false, "CSV 로그 생략")
	scanCmd.Flags().BoolVar(&scanShowSkipped, "show-skipped", false, "제외 종목 사유 출력")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "리포트를 JSON 으로 출력")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	asOf, err := parseDate(scanAsOf)
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	strategy, err := a.loadStrategy()
	if err != nil {
		return err
	}
	for _, w := range strategyconfig.Warn(strategy) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}

	source, err := a.source(scanSource)
	if err != nil {
		return err
	}

	console := report.NewConsoleReporter(os.Stdout, scanShowSkipped)
	var reporters []contracts.Reporter
	if !scanJSON {
		reporters = append(reporters, console)
	}
	if !scanNoLog {
		reporters = append(reporters, report.NewCSVLog(a.cfg.ReportLogPath))
	}
	if a.db != nil {
		reporters = append(reporters, repos.NewReportRepository(a.db.Pool))
	}

	orch := brain.NewOrchestrator(source, reporters, a.metrics, a.log)
	result, err := orch.Run(ctx, strategy, brain.RunConfig{
		AsOf:    asOf,
		Symbols: splitSymbols(scanSymbols),
		DryRun:  scanDryRun,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Scan failed after stages %v: %s", result.CompletedStages, result.Reason))
		return err
	}

	if scanJSON {
		return PrintJSON(result.Report)
	}
	if scanDryRun {
		if err := console.Report(ctx, result.Report); err != nil {
			return err
		}
	}

	for _, rerr := range result.ReporterErrors {
		PrintWarning(rerr.Error())
	}
	PrintSuccess(fmt.Sprintf("Run %s completed in %s (%d ranked, %d skipped)",
		result.RunID, result.Duration.Round(time.Millisecond), len(result.Report.Entries), len(result.Report.Skipped)))
	return nil
}

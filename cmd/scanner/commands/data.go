package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bullscan/internal/external/wikipedia"
	"github.com/wonny/bullscan/internal/s0_data"
	"github.com/wonny/bullscan/internal/s0_data/collector"
	"github.com/wonny/bullscan/internal/s0_data/quality"
)

// dataCmd represents the data command
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "일봉 수집 및 저장 상태",
	Long: `시장 데이터 제공자에서 일봉을 받아 PostgreSQL 에 저장합니다.
DATABASE_URL 이 필요합니다.

Example:
  go run ./cmd/scanner data collect
  go run ./cmd/scanner data collect --days 730 --workers 8
  go run ./cmd/scanner data collect --sp500
  go run ./cmd/scanner data status`,
}

// dataCollectCmd represents the collect subcommand
var dataCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "일봉 수집 → DB 저장",
	Long: `벤치마크 + 유니버스 종목의 일봉을 수집하고 품질 검사 결과를 출력합니다.

품질 검사:
- 최소 봉 수 (전략 MinBars)
- 최종 봉 경과일
- 최대 공백일
- 거래량 0 비율`,
	RunE: runDataCollect,
}

// dataStatusCmd represents the status subcommand
var dataStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "저장된 일봉 현황",
	RunE:  runDataStatus,
}

var (
	collectDays    int
	collectSymbols string
	collectWorkers int
	collectSP500   bool
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataCollectCmd)
	dataCmd.AddCommand(dataStatusCmd)

	dataCollectCmd.Flags().IntVar(&collectDays, "days", 0, "수집 기간 달력일 (기본: 전략 history_days)")
	dataCollectCmd.Flags().StringVar(&collectSymbols, "symbols", "", "수집 종목 (쉼표 구분, 기본: 전략 유니버스)")
	dataCollectCmd.Flags().IntVar(&collectWorkers, "workers", 4, "동시 수집 워커 수")
	dataCollectCmd.Flags().BoolVar(&collectSP500, "sp500", false, "S&P 500 구성 종목 전체 수집")
}

func runDataCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	strategy, err := a.loadStrategy()
	if err != nil {
		return err
	}

	symbols := splitSymbols(collectSymbols)
	switch {
	case collectSP500:
		symbols, err = wikipedia.NewSP500(a.http, "", a.log).Symbols(ctx)
		if err != nil {
			return err
		}
	case len(symbols) == 0:
		symbols = strategy.Universe.Symbols
	}
	symbols = append([]string{strategy.Universe.Benchmark}, symbols...)

	days := collectDays
	if days <= 0 {
		days = strategy.Universe.HistoryDays
	}
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -days)

	PrintHeader("Price Collection",
		Field{"Period", fmt.Sprintf("%s ~ %s", from.Format(dateLayout), to.Format(dateLayout))},
		Field{"Symbols", strconv.Itoa(len(symbols))},
		Field{"Workers", strconv.Itoa(collectWorkers)},
	)

	gate := quality.NewGate(quality.DefaultConfig(strategy.MinBars()))
	col := collector.NewCollector(a.yahoo(), s0_data.NewPriceRepository(a.db.Pool), gate, a.log)

	started := time.Now()
	results, err := col.Collect(ctx, symbols, from, to, collector.Config{Workers: collectWorkers})
	if err != nil {
		return err
	}

	widths := []int{8, 6, 8, 6, 40}
	PrintTableHeader([]string{"Symbol", "Bars", "Quality", "Pass", "Issues"}, widths)
	failed, skipped := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			PrintTableRow([]string{r.Symbol, "-", "-", "❌", r.Error.Error()}, widths)
			continue
		}
		if r.Skipped {
			skipped++
		}
		row := []string{r.Symbol, strconv.Itoa(r.Bars), "-", "-", ""}
		if r.Quality != nil {
			row[2] = fmt.Sprintf("%.2f", r.Quality.QualityScore)
			row[3] = "✅"
			if r.Skipped {
				row[3] = "⏭️"
			}
			row[4] = strings.Join(r.Quality.Issues, "; ")
		}
		PrintTableRow(row, widths)
	}
	fmt.Println()

	if failed == len(results) {
		PrintError("Every symbol failed")
		return fmt.Errorf("all %d symbols failed", failed)
	}
	if skipped > 0 {
		PrintWarning(fmt.Sprintf("%d symbols rejected by the quality gate and not saved", skipped))
	}
	PrintSuccess(fmt.Sprintf("Collected %d/%d symbols in %.2fs", len(results)-failed-skipped, len(results), time.Since(started).Seconds()))
	return nil
}

func runDataStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	repo := s0_data.NewPriceRepository(a.db.Pool)
	counts, err := repo.CountBars(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		PrintInfo("No bars stored yet: run `scanner data collect`")
		return nil
	}

	symbols := make([]string, 0, len(counts))
	for s := range counts {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	widths := []int{8, 6, 10}
	PrintTableHeader([]string{"Symbol", "Bars", "Latest"}, widths)
	for _, s := range symbols {
		latest := "-"
		if d, ok, err := repo.LatestDate(ctx, s); err == nil && ok {
			latest = d.Format(dateLayout)
		}
		PrintTableRow([]string{s, strconv.Itoa(counts[s]), latest}, widths)
	}
	return nil
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bullscan/internal/backtest"
	"github.com/wonny/bullscan/internal/contracts"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "과거 구간 적중률 평가",
	Long: `과거 일봉으로 스캔을 재현하고 상위 K 종목의 적중률을 계산합니다.

동작:
- 벤치마크 달력에서 cycle_days 간격으로 경계일 선택
- 경계일 이후 봉은 잘라낸 뒤 점수 계산 (미래 데이터 누수 없음)
- holding_days 후 종가가 진입가보다 높으면 적중

Example:
  go run ./cmd/scanner backtest
  go run ./cmd/scanner backtest --days 730 --cycle 5 --holding 10 --top-k 3
  go run ./cmd/scanner backtest --source db --json`,
	RunE: runBacktest,
}

var (
	backtestDays       int
	backtestTo         string
	backtestSource     string
	backtestCycle      int
	backtestHolding    int
	backtestTopK       int
	backtestShowCycles bool
	backtestJSON       bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().IntVar(&backtestDays, "days", 365, "조회 기간 (달력일)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "종료일 YYYY-MM-DD (기본: 오늘)")
	backtestCmd.Flags().StringVar(&backtestSource, "source", sourceYahoo, "시세 소스 (yahoo|db)")
	backtestCmd.Flags().IntVar(&backtestCycle, "cycle", 0, "스캔 간격 봉 수 (기본: 전략 파일)")
	backtestCmd.Flags().IntVar(&backtestHolding, "holding", 0, "보유 봉 수 (기본: 전략 파일)")
	backtestCmd.Flags().IntVar(&backtestTopK, "top-k", 0, "사이클당 평가 종목 수 (기본: 전략 파일)")
	backtestCmd.Flags().BoolVar(&backtestShowCycles, "show-cycles", false, "사이클별 선정 종목 출력")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "결과를 JSON 으로 출력")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	to, err := parseDate(backtestTo)
	if err != nil {
		return err
	}
	if to.IsZero() {
		to = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if backtestDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	from := to.AddDate(0, 0, -backtestDays)

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	strategy, err := a.loadStrategy()
	if err != nil {
		return err
	}
	if backtestCycle > 0 {
		strategy.Backtest.CycleDays = backtestCycle
	}
	if backtestHolding > 0 {
		strategy.Backtest.HoldingDays = backtestHolding
	}
	if backtestTopK > 0 {
		strategy.Backtest.TopK = backtestTopK
	}

	engine, err := backtest.NewEngine(strategy, a.log)
	if err != nil {
		return err
	}

	source, err := a.source(backtestSource)
	if err != nil {
		return err
	}

	if !backtestJSON {
		PrintHeader("Backtest",
			Field{"Period", fmt.Sprintf("%s ~ %s", from.Format(dateLayout), to.Format(dateLayout))},
			Field{"Universe", fmt.Sprintf("%d symbols vs %s", len(strategy.Universe.Symbols), strategy.Universe.Benchmark)},
			Field{"Cycle", fmt.Sprintf("every %d bars, hold %d, top %d",
				strategy.Backtest.CycleDays, strategy.Backtest.HoldingDays, strategy.Backtest.TopK)},
		)
	}

	benchmark, err := source.Fetch(ctx, strategy.Universe.Benchmark, from, to)
	if err != nil {
		return fmt.Errorf("benchmark %s: %w", strategy.Universe.Benchmark, err)
	}

	var universe []*contracts.PriceSeries
	for i, symbol := range strategy.Universe.Symbols {
		series, err := source.Fetch(ctx, symbol, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			PrintWarning(fmt.Sprintf("%s excluded: %v", symbol, err))
			continue
		}
		universe = append(universe, series)
		if verbose && !backtestJSON {
			fmt.Printf("[Fetch] %s: %d bars [%d/%d]\n", symbol, series.Len(), i+1, len(strategy.Universe.Symbols))
		}
	}

	result, err := engine.Run(ctx, universe, benchmark)
	if err != nil {
		return err
	}

	if backtestJSON {
		return PrintJSON(result)
	}
	printBacktestResult(result)
	return nil
}

func printBacktestResult(r *backtest.Result) {
	fmt.Println()
	if backtestShowCycles {
		widths := []int{10, 4, 8, 7, 9, 9}
		PrintTableHeader([]string{"Date", "Rank", "Symbol", "Score", "Regime", "Return"}, widths)
		for _, c := range r.Cycles {
			if c.Skipped {
				PrintTableRow([]string{c.Date.Format(dateLayout), "-", "-", "-", "-", c.SkipReason}, widths)
				continue
			}
			for _, p := range c.Picks {
				PrintTableRow([]string{
					c.Date.Format(dateLayout),
					strconv.Itoa(p.Rank),
					p.Symbol,
					fmt.Sprintf("%.1f", p.Score),
					p.Regime.String(),
					pct(p.ForwardReturn * 100),
				}, widths)
			}
		}
		fmt.Println()
	}

	PrintDoubleSeparator()
	fmt.Printf("  Cycles      : %d (%d skipped)\n", len(r.Cycles), r.SkippedCycles)
	fmt.Printf("  Calls       : %d\n", r.TotalCalls)
	fmt.Printf("  Hits        : %d\n", r.Hits)
	fmt.Printf("  Hit rate    : %.1f%%\n", r.HitRate*100)
	fmt.Printf("  Avg return  : %s\n", pct(r.AvgForwardReturn*100))
	PrintSeparator()

	regimes := make([]contracts.Regime, 0, len(r.ByRegime))
	for regime := range r.ByRegime {
		regimes = append(regimes, regime)
	}
	sort.Slice(regimes, func(i, j int) bool { return regimes[i] < regimes[j] })
	for _, regime := range regimes {
		st := r.ByRegime[regime]
		fmt.Printf("  %-10s  calls %3d  hits %3d  hit rate %5.1f%%  avg %s\n", regime, st.Calls, st.Hits, st.HitRate*100, pct(st.AvgForwardReturn*100))
	}
	PrintSeparator()

	symbols := make([]string, 0, len(r.BySymbol))
	for symbol := range r.BySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		st := r.BySymbol[symbol]
		fmt.Printf("  %-10s  calls %3d  hits %3d  hit rate %5.1f%%  avg %s\n", symbol, st.Calls, st.Hits, st.HitRate*100, pct(st.AvgForwardReturn*100))
	}
	PrintDoubleSeparator()

	if r.TotalCalls == 0 {
		PrintWarning("No calls were made: history too short for the configured holding period")
		return
	}
	PrintSuccess(fmt.Sprintf("Backtest finished in %s", r.Duration.Round(time.Millisecond)))
}

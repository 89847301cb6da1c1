package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/bullscan/internal/external/wikipedia"
	"github.com/wonny/bullscan/internal/s1_universe"
	"github.com/wonny/bullscan/internal/strategyconfig"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "S&P 500 구성 종목 조회",
	Long: `Wikipedia 의 S&P 500 구성 종목 표를 가져옵니다.
--filter 는 가격/거래대금/이력 기준으로 종목을 걸러냅니다 (종목별 일봉 조회).
--yaml 은 전략 파일에 붙여 넣을 universe 블록을 출력합니다.

Example:
  go run ./cmd/scanner universe
  go run ./cmd/scanner universe --sector "Information Technology" --limit 20
  go run ./cmd/scanner universe --sector Energy --yaml
  go run ./cmd/scanner universe --filter --max-symbols 30 --yaml`,
	RunE: runUniverse,
}

var (
	universeURL    string
	universeSector string
	universeLimit  int
	universeYAML   bool

	universeFilter          bool
	universeSource          string
	universeMinPrice        float64
	universeMinDollarVolume float64
	universeMaxSymbols      int
	universeExcludeSectors  []string
)

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().StringVar(&universeURL, "url", wikipedia.DefaultSP500URL, "구성 종목 페이지 URL")
	universeCmd.Flags().StringVar(&universeSector, "sector", "", "GICS 섹터 필터 (대소문자 무시)")
	universeCmd.Flags().IntVar(&universeLimit, "limit", 0, "최대 종목 수 (0 = 전체)")
	universeCmd.Flags().BoolVar(&universeYAML, "yaml", false, "전략 파일용 universe 블록 출력")

	defaults := s1_universe.DefaultConfig(0)
	universeCmd.Flags().BoolVar(&universeFilter, "filter", false, "유동성/가격/이력 필터 적용")
	universeCmd.Flags().StringVar(&universeSource, "source", sourceYahoo, "필터용 시세 소스 (yahoo|db)")
	universeCmd.Flags().Float64Var(&universeMinPrice, "min-price", defaults.MinPrice, "최소 종가 ($)")
	universeCmd.Flags().Float64Var(&universeMinDollarVolume, "min-dollar-volume", defaults.MinDollarVolume, "최소 평균 거래대금 ($)")
	universeCmd.Flags().IntVar(&universeMaxSymbols, "max-symbols", 0, "거래대금 상위 N 종목만 유지 (0 = 전체)")
	universeCmd.Flags().StringSliceVar(&universeExcludeSectors, "exclude-sector", nil, "제외 섹터 (반복 가능)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	members, err := wikipedia.NewSP500(a.http, universeURL, a.log).Constituents(ctx)
	if err != nil {
		return err
	}

	var selected []wikipedia.Constituent
	for _, m := range members {
		if universeSector != "" && !strings.EqualFold(m.Sector, universeSector) {
			continue
		}
		selected = append(selected, m)
		if universeLimit > 0 && len(selected) == universeLimit {
			break
		}
	}

	symbols := make([]string, len(selected))
	for i, m := range selected {
		symbols[i] = m.Symbol
	}

	if universeFilter {
		filtered, err := filterUniverse(ctx, a, selected)
		if err != nil {
			return err
		}
		symbols = filtered.Symbols
		if !universeYAML {
			printExcluded(filtered)
		}
		keep := make(map[string]bool, len(symbols))
		for _, s := range symbols {
			keep[s] = true
		}
		kept := selected[:0]
		for _, m := range selected {
			if keep[m.Symbol] {
				kept = append(kept, m)
			}
		}
		selected = kept
	}

	if universeYAML {
		block := struct {
			Universe strategyconfig.Universe `yaml:"universe"`
		}{}
		block.Universe.Benchmark = "SPY"
		block.Universe.HistoryDays = strategyconfig.Default().Universe.HistoryDays
		block.Universe.Symbols = symbols
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(block)
	}

	widths := []int{8, 40, 28}
	PrintTableHeader([]string{"Symbol", "Security", "Sector"}, widths)
	for _, m := range selected {
		PrintTableRow([]string{m.Symbol, m.Name, m.Sector}, widths)
	}
	fmt.Println()
	PrintInfo(fmt.Sprintf("%d of %d constituents", len(selected), len(members)))
	return nil
}

func filterUniverse(ctx context.Context, a *app, members []wikipedia.Constituent) (*s1_universe.Universe, error) {
	strategy, err := a.loadStrategy()
	if err != nil {
		return nil, err
	}
	source, err := a.source(universeSource)
	if err != nil {
		return nil, err
	}

	cfg := s1_universe.DefaultConfig(strategy.MinBars())
	cfg.MinPrice = universeMinPrice
	cfg.MinDollarVolume = universeMinDollarVolume
	cfg.MaxSymbols = universeMaxSymbols
	cfg.ExcludeSectors = universeExcludeSectors

	candidates := make([]s1_universe.Candidate, len(members))
	for i, m := range members {
		candidates[i] = s1_universe.Candidate{Symbol: m.Symbol, Name: m.Name, Sector: m.Sector}
	}

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	return s1_universe.NewBuilder(source, cfg, a.log).Build(ctx, candidates, asOf, strategy.Universe.HistoryDays)
}

func printExcluded(u *s1_universe.Universe) {
	if len(u.Excluded) == 0 {
		return
	}
	symbols := make([]string, 0, len(u.Excluded))
	for s := range u.Excluded {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	widths := []int{8, 60}
	PrintTableHeader([]string{"Excluded", "Reason"}, widths)
	for _, s := range symbols {
		PrintTableRow([]string{s, u.Excluded[s]}, widths)
	}
	fmt.Println()
}

package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	logLevel     string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Adaptive Bullish Scanner - 레짐 적응형 강세 종목 스캐너",
	Long: `Adaptive Bullish Scanner CLI

일봉 기술 지표 + 시장 레짐(Calm/Volatile/Sideways) 기반으로
유니버스 종목에 0~100 강세 점수를 매기고 상위 N 종목을 리포트합니다.

Usage:
  go run ./cmd/scanner [command]

Examples:
  go run ./cmd/scanner scan
  go run ./cmd/scanner backtest --days 730
  go run ./cmd/scanner track
  go run ./cmd/scanner config check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: $STRATEGY_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

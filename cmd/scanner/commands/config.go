package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 검증/조회",
	Long: `전략 YAML 을 검증하거나 기본값이 채워진 최종 설정을 출력합니다.

Example:
  go run ./cmd/scanner config check
  go run ./cmd/scanner config check --strategy ./my_strategy.yaml
  go run ./cmd/scanner config show`,
}

// configCheckCmd represents the check subcommand
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "전략 파일 검증 (가중치 합, 임계값, 미지원 필드)",
	RunE:  runConfigCheck,
}

// configShowCmd represents the show subcommand
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "기본값 적용 후 최종 설정 출력",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)
}

// resolveStrategyPath avoids opening backends for offline config commands
func resolveStrategyPath() (string, error) {
	if strategyFile != "" {
		return strategyFile, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.StrategyPath, nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path, err := resolveStrategyPath()
	if err != nil {
		return err
	}

	cfg, _, err := strategyconfig.Load(path)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintHeader("Strategy Config",
		Field{"File", path},
		Field{"Strategy", fmt.Sprintf("%s v%s", cfg.Meta.StrategyID, cfg.Meta.Version)},
		Field{"Hash", hash[:12]},
		Field{"Universe", fmt.Sprintf("%d symbols vs %s", len(cfg.Universe.Symbols), cfg.Universe.Benchmark)},
		Field{"MinBars", strconv.Itoa(cfg.MinBars())},
		Field{"Weights", fmt.Sprintf("%d / %d", cfg.Scoring.Weights.Sum(), cfg.Scoring.TotalWeight)},
		Field{"Scope", cfg.Regime.Scope},
	)

	warnings := strategyconfig.Warn(cfg)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	PrintSuccess(fmt.Sprintf("Valid (%d warnings)", len(warnings)))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := resolveStrategyPath()
	if err != nil {
		return err
	}

	cfg, _, err := strategyconfig.Load(path)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

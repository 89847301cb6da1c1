package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/config"
	"github.com/wonny/bullscan/pkg/database"
	"github.com/wonny/bullscan/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "설정 및 백엔드 연결 점검",
	Long: `실행 환경을 점검합니다.

이 명령어는:
- 환경변수 설정 로드
- 전략 파일 검증
- PostgreSQL 연결 + 풀 통계 (DATABASE_URL 설정 시)
- Redis 연결 (REDIS_ENABLED=true 시)

Example:
  go run ./cmd/scanner status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		PrintError(fmt.Sprintf("Failed to load config: %v", err))
		return err
	}
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s)", cfg.Env))

	path := cfg.StrategyPath
	if strategyFile != "" {
		path = strategyFile
	}
	if strategy, _, err := strategyconfig.Load(path); err != nil {
		PrintError(fmt.Sprintf("Strategy %s: %v", path, err))
	} else {
		PrintSuccess(fmt.Sprintf("Strategy %s (%d symbols, MinBars %d)", strategy.Meta.StrategyID, len(strategy.Universe.Symbols), strategy.MinBars()))
	}

	failed := false

	if cfg.Database.Enabled() {
		fmt.Printf("   Database URL: %s\n", maskPassword(cfg.Database.URL))
		db, err := database.New(ctx, cfg)
		if err != nil {
			PrintError(fmt.Sprintf("Database: %v", err))
			failed = true
		} else {
			defer db.Close()
			status, err := db.HealthCheck(ctx)
			if err != nil {
				PrintError(fmt.Sprintf("Health check failed: %v", err))
				failed = true
			} else {
				PrintSuccess(fmt.Sprintf("Database healthy (%v)", status.ResponseTime))
				fmt.Println("📊 Connection Pool Statistics:")
				fmt.Printf("   Max Connections: %d\n", status.MaxConns)
				fmt.Printf("   Total Connections: %d\n", status.TotalConns)
				fmt.Printf("   Acquired Connections: %d\n", status.AcquiredConns)
				fmt.Printf("   Idle Connections: %d\n", status.IdleConns)
			}
		}
	} else {
		PrintInfo("Database disabled (DATABASE_URL not set)")
	}

	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, cfg)
		if err != nil {
			PrintError(fmt.Sprintf("Redis: %v", err))
			failed = true
		} else {
			defer rc.Close()
			PrintSuccess(fmt.Sprintf("Redis reachable at %s:%s", cfg.Redis.Host, cfg.Redis.Port))
		}
	} else {
		PrintInfo("Redis disabled (series cache off)")
	}

	if failed {
		return fmt.Errorf("one or more backends are unreachable")
	}
	fmt.Println()
	PrintSuccess("All checks passed")
	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

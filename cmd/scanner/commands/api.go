package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/bullscan/internal/api"
	"github.com/wonny/bullscan/internal/api/handlers"
	"github.com/wonny/bullscan/internal/data/repos"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `저장된 스캔 리포트를 조회하는 REST API 서버를 시작합니다.
DATABASE_URL 이 필요합니다.

Endpoints:
  GET  /health                 - Health check
  GET  /metrics                - Prometheus metrics (METRICS_ENABLED)
  GET  /api/reports            - 최근 리포트 목록 (?limit=)
  GET  /api/reports/latest     - 최신 리포트
  GET  /api/reports/{run_id}   - 리포트 조회
  GET  /api/strategy           - 현재 전략 설정

Example:
  go run ./cmd/scanner api
  go run ./cmd/scanner api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: $PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "같은 프로세스에서 스케줄러 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	strategy, err := a.loadStrategy()
	if err != nil {
		return err
	}
	strategyHandler, err := handlers.NewStrategyHandler(strategy)
	if err != nil {
		return err
	}

	var metricsHandler http.Handler
	if a.cfg.MetricsEnabled {
		metricsHandler = a.metrics.Handler()
	}

	router := api.NewRouter(api.Handlers{
		Reports:  handlers.NewReportHandler(repos.NewReportRepository(a.db.Pool), a.log),
		Strategy: strategyHandler,
		Metrics:  metricsHandler,
	}, a.log)

	if apiWithScheduler {
		sched, err := buildScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
		printJobs(sched)
	}

	return api.New(a.cfg, a.log, router).Run(ctx)
}

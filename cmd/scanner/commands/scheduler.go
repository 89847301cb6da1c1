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
	"github.com/wonny/bullscan/internal/s0_data"
	"github.com/wonny/bullscan/internal/s0_data/collector"
	"github.com/wonny/bullscan/internal/s0_data/quality"
	"github.com/wonny/bullscan/internal/scheduler"
	"github.com/wonny/bullscan/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `장 마감 후 일일 스캔(및 DB 사용 시 일봉 수집)을 cron 으로 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업과 다음 실행 시각
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/scanner scheduler start
  go run ./cmd/scanner scheduler list
  go run ./cmd/scanner scheduler run daily_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- data_collection: $COLLECT_SCHEDULE (DATABASE_URL 설정 시)
- daily_scan: $SCAN_SCHEDULE

Ctrl+C 로 종료합니다.`,
		RunE: runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  runSchedulerList,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job]",
		Short: "작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerRun,
	}
)

var (
	schedulerRetries    int
	schedulerRetryDelay time.Duration
	schedulerTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().IntVar(&schedulerRetries, "retries", 2, "실패 시 재시도 횟수")
	schedulerCmd.PersistentFlags().DurationVar(&schedulerRetryDelay, "retry-delay", time.Minute, "재시도 간격")
	schedulerCmd.PersistentFlags().DurationVar(&schedulerTimeout, "timeout", 15*time.Minute, "작업당 제한 시간")
}

// buildScheduler registers the daily scan and, with a database, the collection job
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	strategy, err := a.loadStrategy()
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(strategy.Meta.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", strategy.Meta.Timezone, err)
	}

	sched := scheduler.New(scheduler.Options{
		Location:   loc,
		MaxRetries: schedulerRetries,
		RetryDelay: schedulerRetryDelay,
		Timeout:    schedulerTimeout,
	}, a.log)

	sourceName := sourceYahoo
	reporters := []contracts.Reporter{
		report.NewConsoleReporter(os.Stdout, false),
		report.NewCSVLog(a.cfg.ReportLogPath),
	}

	if a.db != nil {
		gate := quality.NewGate(quality.DefaultConfig(strategy.MinBars()))
		col := collector.NewCollector(a.yahoo(), s0_data.NewPriceRepository(a.db.Pool), gate, a.log)
		if err := sched.AddJob(jobs.NewDataCollectionJob(col, a.strategyPath(), a.cfg.CollectSchedule, a.log)); err != nil {
			return nil, err
		}
		sourceName = sourceDB
		reporters = append(reporters, repos.NewReportRepository(a.db.Pool))
	}

	source, err := a.source(sourceName)
	if err != nil {
		return nil, err
	}
	orch := brain.NewOrchestrator(source, reporters, a.metrics, a.log)
	if err := sched.AddJob(jobs.NewDailyScanJob(orch, a.strategyPath(), a.cfg.ScanSchedule, a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := buildScheduler(a)
	if err != nil {
		return err
	}

	PrintHeader("Scheduler", Field{"Env", a.cfg.Env}, Field{"Jobs", fmt.Sprintf("%d", len(sched.Stats()))})
	printJobs(sched)

	sched.Start()
	<-ctx.Done()

	fmt.Println()
	PrintInfo("Shutting down scheduler...")
	sched.Stop()
	PrintSuccess("Scheduler stopped")
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := buildScheduler(a)
	if err != nil {
		return err
	}
	printJobs(sched)
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := buildScheduler(a)
	if err != nil {
		return err
	}

	started := time.Now()
	if err := sched.RunNow(ctx, args[0]); err != nil {
		PrintError(fmt.Sprintf("%s failed: %v", args[0], err))
		return err
	}
	PrintSuccess(fmt.Sprintf("%s completed in %.2fs", args[0], time.Since(started).Seconds()))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	widths := []int{16, 18, 25}
	PrintTableHeader([]string{"Job", "Schedule", "Next run"}, widths)
	for _, st := range sched.Stats() {
		next := "-"
		if t, err := sched.NextRun(st.JobName); err == nil {
			next = t.Format("2006-01-02 15:04:05 MST")
		}
		PrintTableRow([]string{st.JobName, st.Schedule, next}, widths)
	}
	fmt.Println()
}

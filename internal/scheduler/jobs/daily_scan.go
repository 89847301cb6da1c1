package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/bullscan/internal/brain"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

// DailyScanJob runs one scan cycle after the close
// ⭐ SSOT: 일일 스캔 스케줄은 이 Job에서만
// 전략 파일은 매 실행마다 다시 읽는다 (재시작 없이 파라미터 변경 반영)
type DailyScanJob struct {
	orchestrator *brain.Orchestrator
	strategyPath string
	schedule     string
	logger       *logger.Logger
}

// NewDailyScanJob creates a new daily scan job
func NewDailyScanJob(orch *brain.Orchestrator, strategyPath, schedule string, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		orchestrator: orch,
		strategyPath: strategyPath,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule
func (j *DailyScanJob) Schedule() string {
	return j.schedule
}

// Run executes the scan
func (j *DailyScanJob) Run(ctx context.Context) error {
	cfg, _, err := strategyconfig.Load(j.strategyPath)
	if err != nil {
		return fmt.Errorf("load strategy: %w", err)
	}

	result, err := j.orchestrator.Run(ctx, cfg, brain.RunConfig{})
	if err != nil {
		return err
	}

	top, _ := result.Report.Top()
	j.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"top":       top.Symbol,
		"top_score": top.Score,
	}).Info("Scheduled scan completed")
	return nil
}

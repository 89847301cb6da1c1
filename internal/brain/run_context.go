package brain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/bullscan/internal/strategyconfig"
)

// RunContext carries everything a scan cycle needs instead of globals.
// Built once per cycle and never mutated.
type RunContext struct {
	RunID      string
	StartedAt  time.Time
	AsOf       time.Time
	Config     *strategyconfig.Config
	ConfigHash string
}

// NewRunContext validates cfg and stamps a new run id.
// 설정 오류는 여기서 사이클 전체를 중단시킨다.
func NewRunContext(cfg *strategyconfig.Config, asOf, now time.Time) (*RunContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("strategy config is nil")
	}
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash configuration: %w", err)
	}

	return &RunContext{
		RunID:      GenerateRunID(now),
		StartedAt:  now,
		AsOf:       truncateDay(asOf),
		Config:     cfg,
		ConfigHash: hash,
	}, nil
}

// GenerateRunID returns run_YYYYMMDD_HHMMSS_<8 hex>
func GenerateRunID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("run_%s_%s", t.Format("20060102_150405"), suffix)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

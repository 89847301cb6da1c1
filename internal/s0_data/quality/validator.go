package quality

import (
	"fmt"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
)

// Gate checks a fetched series before it is persisted or scored
// ⭐ SSOT: 시세 품질 검증
type Gate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinBars           int     `yaml:"min_bars"`             // 지표 계산 최소 봉 수
	MaxStaleDays      int     `yaml:"max_stale_days"`       // 마지막 봉이 as-of 보다 오래된 허용 일수
	MaxGapDays        int     `yaml:"max_gap_days"`         // 연속 봉 사이 최대 달력일
	MaxZeroVolumeRate float64 `yaml:"max_zero_volume_rate"` // 거래량 0 봉 비율 상한
}

// DefaultConfig returns thresholds suited to daily US equities
func DefaultConfig(minBars int) Config {
	return Config{
		MinBars:           minBars,
		MaxStaleDays:      5,
		MaxGapDays:        7,
		MaxZeroVolumeRate: 0.1,
	}
}

// Snapshot is the quality verdict for one series
type Snapshot struct {
	Symbol         string    `json:"symbol"`
	Bars           int       `json:"bars"`
	LastDate       time.Time `json:"last_date"`
	StaleDays      int       `json:"stale_days"`
	MaxGapDays     int       `json:"max_gap_days"`
	ZeroVolumeBars int       `json:"zero_volume_bars"`
	QualityScore   float64   `json:"quality_score"`
	Passed         bool      `json:"passed"`
	Issues         []string  `json:"issues,omitempty"`
}

// NewGate creates a new Gate
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Check validates one series as of a date
func (g *Gate) Check(series *contracts.PriceSeries, asOf time.Time) *Snapshot {
	snap := &Snapshot{Symbol: series.Symbol, Bars: series.Len()}

	err := series.Validate()
	if err != nil {
		snap.Issues = append(snap.Issues, err.Error())
	}

	last, ok := series.Last()
	if !ok {
		snap.Issues = append(snap.Issues, "no bars")
		return snap
	}
	snap.LastDate = last.Date

	// 1. 봉 수
	if snap.Bars < g.config.MinBars {
		snap.Issues = append(snap.Issues, fmt.Sprintf("only %d bars, need %d", snap.Bars, g.config.MinBars))
	}

	// 2. 신선도
	snap.StaleDays = int(asOf.Sub(last.Date).Hours() / 24)
	if snap.StaleDays > g.config.MaxStaleDays {
		snap.Issues = append(snap.Issues, fmt.Sprintf("last bar %d days old", snap.StaleDays))
	}

	// 3. 결측 구간 / 거래량 0
	for i, b := range series.Bars {
		if b.Volume == 0 {
			snap.ZeroVolumeBars++
		}
		if i == 0 {
			continue
		}
		gap := int(b.Date.Sub(series.Bars[i-1].Date).Hours() / 24)
		if gap > snap.MaxGapDays {
			snap.MaxGapDays = gap
		}
	}
	if snap.MaxGapDays > g.config.MaxGapDays {
		snap.Issues = append(snap.Issues, fmt.Sprintf("gap of %d days", snap.MaxGapDays))
	}
	zeroRate := float64(snap.ZeroVolumeBars) / float64(snap.Bars)
	if zeroRate > g.config.MaxZeroVolumeRate {
		snap.Issues = append(snap.Issues, fmt.Sprintf("%.0f%% zero-volume bars", zeroRate*100))
	}

	snap.QualityScore = g.calculateScore(snap, zeroRate, err == nil)
	snap.Passed = len(snap.Issues) == 0
	return snap
}

// calculateScore blends coverage, freshness, continuity and volume completeness into [0,1]
// 이슈가 하나라도 있으면 1.0 미만
func (g *Gate) calculateScore(snap *Snapshot, zeroRate float64, valid bool) float64 {
	coverage := 1.0
	if g.config.MinBars > 0 && snap.Bars < g.config.MinBars {
		coverage = float64(snap.Bars) / float64(g.config.MinBars)
	}

	freshness := 1.0
	if snap.StaleDays > g.config.MaxStaleDays {
		freshness = 0
	}

	continuity := 1.0
	if snap.MaxGapDays > g.config.MaxGapDays {
		continuity = float64(g.config.MaxGapDays) / float64(snap.MaxGapDays)
	}

	volume := 1 - zeroRate
	if zeroRate > g.config.MaxZeroVolumeRate {
		volume = 0
	}

	score := coverage*0.4 + freshness*0.25 + continuity*0.2 + volume*0.15
	if !valid {
		score *= 0.5
	}
	return score
}

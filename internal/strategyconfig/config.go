package strategyconfig

// Config는 강세 스캐너 전략의 전체 설정
// ⭐ SSOT: 윈도우/가중치/레짐 임계값은 여기서만 정의 (사이클 시작 시 1회 검증, 이후 읽기 전용)
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Indicators Indicators `yaml:"indicators" json:"indicators"`
	Regime     Regime     `yaml:"regime" json:"regime"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	Ranking    Ranking    `yaml:"ranking" json:"ranking"`
	Backtest   Backtest   `yaml:"backtest" json:"backtest"`
	Tracking   Tracking   `yaml:"tracking" json:"tracking"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" default:"adaptive_bullish" validate:"required"`
	Version    string `yaml:"version" json:"version" default:"1.0.0"`
	Timezone   string `yaml:"timezone" json:"timezone" default:"America/New_York" validate:"required"`
}

// Universe 스캔 대상 종목
type Universe struct {
	Symbols     []string `yaml:"symbols" json:"symbols" default:"[\"AAPL\",\"MSFT\",\"NVDA\",\"AMZN\",\"META\",\"GOOGL\",\"TSLA\",\"JPM\",\"AMD\",\"NFLX\",\"KO\",\"PEP\",\"V\",\"MA\",\"XOM\",\"UNH\"]" validate:"dive,required"`
	Benchmark   string   `yaml:"benchmark" json:"benchmark" default:"SPY" validate:"required"`
	HistoryDays int      `yaml:"history_days" json:"history_days" default:"120" validate:"min=30"` // 달력 기준 조회 기간
}

// Indicators 지표 윈도우 (봉 개수)
type Indicators struct {
	SMAShort               int `yaml:"sma_short" json:"sma_short" default:"5" validate:"min=2"`
	SMALong                int `yaml:"sma_long" json:"sma_long" default:"20" validate:"min=2"`
	EMAShort               int `yaml:"ema_short" json:"ema_short" default:"10" validate:"min=2"`
	EMALong                int `yaml:"ema_long" json:"ema_long" default:"20" validate:"min=2"`
	RSIPeriod              int `yaml:"rsi_period" json:"rsi_period" default:"14" validate:"min=2"`
	MomentumLookback       int `yaml:"momentum_lookback" json:"momentum_lookback" default:"3" validate:"min=1"`
	VolumeWindow           int `yaml:"volume_window" json:"volume_window" default:"5" validate:"min=2"`
	RelativeStrengthWindow int `yaml:"relative_strength_window" json:"relative_strength_window" default:"5" validate:"min=1"`
	VolatilityWindow       int `yaml:"volatility_window" json:"volatility_window" default:"10" validate:"min=2"`
}

// Regime scope values
const (
	ScopeSymbol = "symbol" // 종목별 레짐
	ScopeMarket = "market" // 벤치마크 레짐을 전 종목에 적용
)

// Regime 레짐 분류 설정
type Regime struct {
	Scope              string  `yaml:"scope" json:"scope" default:"symbol" validate:"oneof=symbol market"`
	Window             int     `yaml:"window" json:"window" default:"20" validate:"min=2"`
	LowVolThreshold    float64 `yaml:"low_vol_threshold" json:"low_vol_threshold" default:"0.015" validate:"gte=0"`
	HighVolThreshold   float64 `yaml:"high_vol_threshold" json:"high_vol_threshold" default:"0.03" validate:"gt=0"`
	MinDirectionalMove float64 `yaml:"min_directional_move" json:"min_directional_move" default:"0.02" validate:"gte=0"`
}

// Scoring 가중치/정규화/레짐 보정
type Scoring struct {
	TotalWeight       int               `yaml:"total_weight" json:"total_weight" default:"100" validate:"min=1"`
	Weights           Weights           `yaml:"weights" json:"weights"`
	Normalization     Normalization     `yaml:"normalization" json:"normalization"`
	RegimeAdjustments RegimeAdjustments `yaml:"regime_adjustments" json:"regime_adjustments"`
}

// Weights 지표별 가중치 (합 = total_weight)
type Weights struct {
	SMACross         int `yaml:"sma_cross" json:"sma_cross"`
	EMACross         int `yaml:"ema_cross" json:"ema_cross"`
	RSI              int `yaml:"rsi" json:"rsi"`
	Momentum         int `yaml:"momentum" json:"momentum"`
	VolumeRatio      int `yaml:"volume_ratio" json:"volume_ratio"`
	RelativeStrength int `yaml:"relative_strength" json:"relative_strength"`
	Stability        int `yaml:"stability" json:"stability"`
}

// DefaultWeights 기본 가중치
func DefaultWeights() Weights {
	return Weights{
		SMACross:         20,
		EMACross:         20,
		RSI:              10,
		Momentum:         15,
		VolumeRatio:      10,
		RelativeStrength: 15,
		Stability:        10,
	}
}

// Sum 가중치 합계
func (w Weights) Sum() int {
	return w.SMACross + w.EMACross + w.RSI + w.Momentum + w.VolumeRatio + w.RelativeStrength + w.Stability
}

// Missing indicator policies
const (
	PolicyNeutral = "NEUTRAL"
	PolicyFail    = "FAIL"
)

// Normalization 원시 지표 → [0,1] 변환 파라미터
type Normalization struct {
	TrendClip            float64 `yaml:"trend_clip" json:"trend_clip" default:"0.05" validate:"gt=0"`
	MomentumClip         float64 `yaml:"momentum_clip" json:"momentum_clip" default:"0.10" validate:"gt=0"`
	VolumeRatioCap       float64 `yaml:"volume_ratio_cap" json:"volume_ratio_cap" default:"2.0" validate:"gt=0"`
	RelativeStrengthClip float64 `yaml:"relative_strength_clip" json:"relative_strength_clip" default:"0.05" validate:"gt=0"`
	VolatilityCap        float64 `yaml:"volatility_cap" json:"volatility_cap" default:"0.05" validate:"gt=0"`
	RSIOverbought        float64 `yaml:"rsi_overbought" json:"rsi_overbought" default:"75" validate:"gt=0,lte=100"`
	RSIOverboughtPenalty float64 `yaml:"rsi_overbought_penalty" json:"rsi_overbought_penalty" default:"0.5" validate:"gte=0,lte=1"`
	NeutralValue         float64 `yaml:"neutral_value" json:"neutral_value" default:"0.5" validate:"gte=0,lte=1"`
	MissingPolicy        string  `yaml:"missing_policy" json:"missing_policy" default:"NEUTRAL" validate:"oneof=NEUTRAL FAIL"`
}

// RegimeAdjustment 지표 그룹별 배수
type RegimeAdjustment struct {
	Trend            float64 `yaml:"trend" json:"trend" validate:"gte=0"`
	Oscillator       float64 `yaml:"oscillator" json:"oscillator" validate:"gte=0"`
	Momentum         float64 `yaml:"momentum" json:"momentum" validate:"gte=0"`
	Volume           float64 `yaml:"volume" json:"volume" validate:"gte=0"`
	RelativeStrength float64 `yaml:"relative_strength" json:"relative_strength" validate:"gte=0"`
	Stability        float64 `yaml:"stability" json:"stability" validate:"gte=0"`
}

// Neutral returns all-ones multipliers
func Neutral() RegimeAdjustment {
	return RegimeAdjustment{Trend: 1, Oscillator: 1, Momentum: 1, Volume: 1, RelativeStrength: 1, Stability: 1}
}

// RegimeAdjustments 레짐별 보정
// Calm: 추세 가산, Volatile: 모멘텀 감산
type RegimeAdjustments struct {
	Calm     RegimeAdjustment `yaml:"calm" json:"calm"`
	Volatile RegimeAdjustment `yaml:"volatile" json:"volatile"`
	Sideways RegimeAdjustment `yaml:"sideways" json:"sideways"`
}

// DefaultRegimeAdjustments 기본 레짐 보정
// YAML 에서 일부 필드만 지정하면 나머지는 이 값을 유지한다
func DefaultRegimeAdjustments() RegimeAdjustments {
	r := RegimeAdjustments{Calm: Neutral(), Volatile: Neutral(), Sideways: Neutral()}
	r.Calm.Trend = 1.2
	r.Calm.Momentum = 1.1
	r.Volatile.Trend = 0.9
	r.Volatile.Momentum = 0.7
	return r
}

// Ranking 상위 N 선정
type Ranking struct {
	TopN int `yaml:"top_n" json:"top_n" default:"5" validate:"min=1"`
}

// Backtest 과거 재현 평가 설정
type Backtest struct {
	CycleDays   int `yaml:"cycle_days" json:"cycle_days" default:"5" validate:"min=1"`     // 스캔 간격 (봉)
	HoldingDays int `yaml:"holding_days" json:"holding_days" default:"5" validate:"min=1"` // 보유 기간 (봉)
	TopK        int `yaml:"top_k" json:"top_k" default:"1" validate:"min=1"`
}

// Tracking 기록된 추천의 사후 성과 추적
type Tracking struct {
	HorizonsDays []int `yaml:"horizons_days" json:"horizons_days" default:"[1,3,5]" validate:"min=1,dive,min=1"`
}

// MinBars is the history length at which every indicator and the regime window are computable
func (c *Config) MinBars() int {
	ind := c.Indicators
	need := []int{
		ind.SMALong,
		ind.EMALong,
		ind.RSIPeriod + 1,
		ind.MomentumLookback + 1,
		ind.VolumeWindow,
		ind.RelativeStrengthWindow + 1,
		ind.VolatilityWindow + 1,
		c.Regime.Window + 1,
	}
	max := 0
	for _, n := range need {
		if n > max {
			max = n
		}
	}
	return max
}

package contracts

// Indicator names used in bundles, weights and breakdowns
const (
	IndicatorSMACross         = "sma_cross"
	IndicatorEMACross         = "ema_cross"
	IndicatorRSI              = "rsi"
	IndicatorMomentum         = "momentum"
	IndicatorVolumeRatio      = "volume_ratio"
	IndicatorRelativeStrength = "relative_strength"
	IndicatorVolatility       = "volatility"
)

// IndicatorBundle holds the latest indicator values for one symbol
// ⭐ SSOT: 지표 계산 → 레짐/스코어링 전달
type IndicatorBundle struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`

	SMAShort float64 `json:"sma_short"`
	SMALong  float64 `json:"sma_long"`
	EMAShort float64 `json:"ema_short"`
	EMALong  float64 `json:"ema_long"`

	// (short-long)/long
	SMACross float64 `json:"sma_cross"`
	EMACross float64 `json:"ema_cross"`

	RSI              float64 `json:"rsi"`               // 0~100
	Momentum         float64 `json:"momentum"`          // 기간 수익률
	VolumeRatio      float64 `json:"volume_ratio"`      // 최근 거래량 / 평균
	RelativeStrength float64 `json:"relative_strength"` // vs 벤치마크
	Volatility       float64 `json:"volatility"`        // 일간 수익률 표준편차

	// Missing lists indicators that lacked history and must be treated as neutral
	Missing       map[string]bool `json:"missing,omitempty"`
	LowConfidence bool            `json:"low_confidence"`
}

// MarkMissing records a neutral indicator and flags the bundle
func (b *IndicatorBundle) MarkMissing(name string) {
	if b.Missing == nil {
		b.Missing = make(map[string]bool)
	}
	b.Missing[name] = true
	b.LowConfidence = true
}

// IsMissing reports whether name fell back to neutral
func (b *IndicatorBundle) IsMissing(name string) bool {
	return b.Missing[name]
}

// Values returns the name -> value mapping of the scored indicators
func (b *IndicatorBundle) Values() map[string]float64 {
	return map[string]float64{
		IndicatorSMACross:         b.SMACross,
		IndicatorEMACross:         b.EMACross,
		IndicatorRSI:              b.RSI,
		IndicatorMomentum:         b.Momentum,
		IndicatorVolumeRatio:      b.VolumeRatio,
		IndicatorRelativeStrength: b.RelativeStrength,
		IndicatorVolatility:       b.Volatility,
	}
}

package scoring

import (
	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/strategyconfig"
)

// ComponentStability is the score component derived from volatility (low vol → high)
const ComponentStability = "stability"

// Components in scoring order
var Components = []string{
	contracts.IndicatorSMACross,
	contracts.IndicatorEMACross,
	contracts.IndicatorRSI,
	contracts.IndicatorMomentum,
	contracts.IndicatorVolumeRatio,
	contracts.IndicatorRelativeStrength,
	ComponentStability,
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// symmetric maps [-clip, clip] linearly onto [0, 1]
func symmetric(x, clip float64) float64 {
	return clamp01((x/clip + 1) / 2)
}

// Normalize maps each raw indicator of b onto [0,1]; missing indicators take the neutral value
func Normalize(b *contracts.IndicatorBundle, n strategyconfig.Normalization) map[string]float64 {
	out := make(map[string]float64, len(Components))

	pick := func(component, indicator string, fn func() float64) {
		if b.IsMissing(indicator) {
			out[component] = clamp01(n.NeutralValue)
			return
		}
		out[component] = clamp01(fn())
	}

	pick(contracts.IndicatorSMACross, contracts.IndicatorSMACross, func() float64 {
		return symmetric(b.SMACross, n.TrendClip)
	})
	pick(contracts.IndicatorEMACross, contracts.IndicatorEMACross, func() float64 {
		return symmetric(b.EMACross, n.TrendClip)
	})
	pick(contracts.IndicatorRSI, contracts.IndicatorRSI, func() float64 {
		v := b.RSI / 100
		// 과매수 구간 감점
		if b.RSI > n.RSIOverbought {
			v *= 1 - n.RSIOverboughtPenalty
		}
		return v
	})
	pick(contracts.IndicatorMomentum, contracts.IndicatorMomentum, func() float64 {
		return symmetric(b.Momentum, n.MomentumClip)
	})
	pick(contracts.IndicatorVolumeRatio, contracts.IndicatorVolumeRatio, func() float64 {
		return b.VolumeRatio / n.VolumeRatioCap
	})
	pick(contracts.IndicatorRelativeStrength, contracts.IndicatorRelativeStrength, func() float64 {
		return symmetric(b.RelativeStrength, n.RelativeStrengthClip)
	})
	pick(ComponentStability, contracts.IndicatorVolatility, func() float64 {
		return 1 - clamp01(b.Volatility/n.VolatilityCap)
	})

	return out
}

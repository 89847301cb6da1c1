package indicators

import (
	"errors"
	"fmt"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

// Calculator builds an IndicatorBundle from a price series
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type Calculator struct {
	logger *logger.Logger
	cfg    strategyconfig.Indicators
	policy string
}

// NewCalculator creates a calculator for the given windows and missing-data policy
func NewCalculator(cfg *strategyconfig.Config, log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log.Component("indicators"),
		cfg:    cfg.Indicators,
		policy: cfg.Scoring.Normalization.MissingPolicy,
	}
}

// Compute calculates every indicator at the last bar of series.
// benchmark may be nil, in which case relative strength is missing.
//
// Under NEUTRAL policy a short history marks the affected indicators missing and the
// bundle low-confidence; under FAIL it returns *contracts.InsufficientDataError.
func (c *Calculator) Compute(series, benchmark *contracts.PriceSeries) (*contracts.IndicatorBundle, error) {
	lastBar, ok := series.Last()
	if !ok {
		return nil, &contracts.InsufficientDataError{Symbol: series.Symbol, Indicator: "series", Required: 1, Got: 0}
	}

	closes := series.Closes()
	bundle := &contracts.IndicatorBundle{Symbol: series.Symbol, Price: lastBar.Close}

	// 각 지표 계산 결과를 정책에 따라 반영
	apply := func(name string, v float64, err error, set func(float64)) error {
		if err == nil {
			set(v)
			return nil
		}
		var insufficient *contracts.InsufficientDataError
		if !errors.As(err, &insufficient) {
			return fmt.Errorf("%s %s: %w", series.Symbol, name, err)
		}
		insufficient.Symbol = series.Symbol
		if c.policy == strategyconfig.PolicyFail {
			return insufficient
		}
		bundle.MarkMissing(name)
		return nil
	}

	smaShort, errShort := SMA(closes, c.cfg.SMAShort)
	smaLong, errLong := SMA(closes, c.cfg.SMALong)
	if err := apply(contracts.IndicatorSMACross, 0, firstErr(errLong, errShort), func(float64) {
		bundle.SMAShort, bundle.SMALong = smaShort, smaLong
		bundle.SMACross = CrossStrength(smaShort, smaLong)
	}); err != nil {
		return nil, err
	}

	emaShort, errShort := EMA(closes, c.cfg.EMAShort)
	emaLong, errLong := EMA(closes, c.cfg.EMALong)
	if err := apply(contracts.IndicatorEMACross, 0, firstErr(errLong, errShort), func(float64) {
		bundle.EMAShort, bundle.EMALong = emaShort, emaLong
		bundle.EMACross = CrossStrength(emaShort, emaLong)
	}); err != nil {
		return nil, err
	}

	rsi, err := RSI(closes, c.cfg.RSIPeriod)
	if err := apply(contracts.IndicatorRSI, rsi, err, func(v float64) { bundle.RSI = v }); err != nil {
		return nil, err
	}

	mom, err := Momentum(closes, c.cfg.MomentumLookback)
	if err := apply(contracts.IndicatorMomentum, mom, err, func(v float64) { bundle.Momentum = v }); err != nil {
		return nil, err
	}

	vr, err := VolumeRatio(series.Volumes(), c.cfg.VolumeWindow)
	if err := apply(contracts.IndicatorVolumeRatio, vr, err, func(v float64) { bundle.VolumeRatio = v }); err != nil {
		return nil, err
	}

	symCloses, benchCloses := alignOnDates(series, benchmark)
	rs, err := RelativeStrength(symCloses, benchCloses, c.cfg.RelativeStrengthWindow)
	if err := apply(contracts.IndicatorRelativeStrength, rs, err, func(v float64) { bundle.RelativeStrength = v }); err != nil {
		return nil, err
	}

	vol, err := Volatility(closes, c.cfg.VolatilityWindow)
	if err := apply(contracts.IndicatorVolatility, vol, err, func(v float64) { bundle.Volatility = v }); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":            bundle.Symbol,
		"bars":              series.Len(),
		"sma_cross":         bundle.SMACross,
		"ema_cross":         bundle.EMACross,
		"rsi":               bundle.RSI,
		"momentum":          bundle.Momentum,
		"volume_ratio":      bundle.VolumeRatio,
		"relative_strength": bundle.RelativeStrength,
		"volatility":        bundle.Volatility,
		"low_confidence":    bundle.LowConfidence,
	}).Debug("Calculated indicators")

	return bundle, nil
}

// alignOnDates returns closes of both series restricted to the dates they share,
// so window returns cover the same calendar span (거래정지/누락 봉 대응)
func alignOnDates(series, benchmark *contracts.PriceSeries) ([]float64, []float64) {
	if benchmark == nil {
		return series.Closes(), nil
	}

	benchByDay := make(map[string]float64, benchmark.Len())
	for _, b := range benchmark.Bars {
		benchByDay[b.Date.Format("2006-01-02")] = b.Close
	}

	sym := make([]float64, 0, series.Len())
	bench := make([]float64, 0, series.Len())
	for _, b := range series.Bars {
		if v, ok := benchByDay[b.Date.Format("2006-01-02")]; ok {
			sym = append(sym, b.Close)
			bench = append(bench, v)
		}
	}
	return sym, bench
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/wonny/bullscan/internal/contracts"
)

// 모든 함수는 오래된 값 → 최신 값 순서의 슬라이스를 받고 최신 시점의 값을 반환한다.
// 최소 길이 미달 시 *contracts.InsufficientDataError.

func needBars(name string, got, need int) error {
	if got < need {
		return &contracts.InsufficientDataError{Indicator: name, Required: need, Got: got}
	}
	return nil
}

func last(xs []float64) float64 {
	return xs[len(xs)-1]
}

// SMA simple moving average of the last period values. Needs period values.
func SMA(values []float64, period int) (float64, error) {
	if err := needBars("sma", len(values), period); err != nil {
		return 0, err
	}
	return last(talib.Sma(values, period)), nil
}

// EMA exponential moving average seeded with the SMA of the first period values.
// Needs period values.
func EMA(values []float64, period int) (float64, error) {
	if err := needBars("ema", len(values), period); err != nil {
		return 0, err
	}
	return last(talib.Ema(values, period)), nil
}

// CrossStrength returns (short-long)/long
func CrossStrength(short, long float64) float64 {
	if long == 0 {
		return 0
	}
	return (short - long) / long
}

// RSI relative strength index from the simple average gain and loss of the
// last period changes. Needs period+1 values.
// 상승만 있으면 100, 변동이 없으면 50.
func RSI(closes []float64, period int) (float64, error) {
	if err := needBars("rsi", len(closes), period+1); err != nil {
		return 0, err
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	if gains == 0 && losses == 0 {
		return 50, nil
	}
	if losses == 0 {
		return 100, nil
	}

	rs := (gains / float64(period)) / (losses / float64(period))
	return 100 - 100/(1+rs), nil
}

// Momentum percentage change over lookback bars. Needs lookback+1 values.
func Momentum(closes []float64, lookback int) (float64, error) {
	if err := needBars("momentum", len(closes), lookback+1); err != nil {
		return 0, err
	}
	return last(talib.Rocr(closes, lookback)) - 1, nil
}

// VolumeRatio latest volume over the mean of the last window volumes (latest included).
// Needs window values. A zero average reads as 1 (no spike).
func VolumeRatio(volumes []float64, window int) (float64, error) {
	if err := needBars("volume_ratio", len(volumes), window); err != nil {
		return 0, err
	}
	avg := last(talib.Sma(volumes, window))
	if avg <= 0 {
		return 1, nil
	}
	return last(volumes) / avg, nil
}

// RelativeStrength compares window returns as a ratio of growth factors:
// (1+r_symbol)/(1+r_benchmark) - 1. Needs window+1 values in both slices.
func RelativeStrength(closes, benchmark []float64, window int) (float64, error) {
	if err := needBars("relative_strength", len(closes), window+1); err != nil {
		return 0, err
	}
	if err := needBars("relative_strength_benchmark", len(benchmark), window+1); err != nil {
		return 0, err
	}

	sym := last(closes) / closes[len(closes)-1-window]
	bench := last(benchmark) / benchmark[len(benchmark)-1-window]
	if bench == 0 {
		return 0, nil
	}
	return sym/bench - 1, nil
}

// Returns daily simple returns, one shorter than closes
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out
}

// Volatility population standard deviation of the last window daily returns.
// Needs window+1 closes.
func Volatility(closes []float64, window int) (float64, error) {
	if err := needBars("volatility", len(closes), window+1); err != nil {
		return 0, err
	}
	sd := last(talib.StdDev(Returns(closes), window, 1))
	if math.IsNaN(sd) {
		return 0, nil
	}
	return sd, nil
}

package yahoo

import (
	"fmt"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
)

// chartResponse mirrors the subset of /v8/finance/chart we read
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int    `json:"gmtoffset"` // seconds east of UTC
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// bars converts the columnar payload to daily bars.
// null rows (halts, holidays) are dropped; a repeated date keeps the later row.
func (r *chartResponse) bars() ([]contracts.Bar, error) {
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}

	res := r.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart result has no quotes")
	}
	q := res.Indicators.Quote[0]

	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	zone := time.FixedZone("exchange", res.Meta.GMTOffset)
	bars := make([]contracts.Bar, 0, len(res.Timestamp))

	for i, ts := range res.Timestamp {
		open, high, low, cl := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if cl == nil || open == nil || high == nil || low == nil {
			continue
		}

		factor := 1.0
		if a := at(adj, i); a != nil && *cl > 0 {
			factor = *a / *cl
		}

		var volume int64
		if i < len(q.Volume) && q.Volume[i] != nil {
			volume = *q.Volume[i]
		}

		y, m, d := time.Unix(ts, 0).In(zone).Date()
		bar := contracts.Bar{
			Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open:   *open * factor,
			High:   *high * factor,
			Low:    *low * factor,
			Close:  *cl * factor,
			Volume: volume,
		}

		if n := len(bars); n > 0 && bars[n-1].Date.Equal(bar.Date) {
			bars[n-1] = bar
			continue
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func at(xs []*float64, i int) *float64 {
	if i >= len(xs) {
		return nil
	}
	return xs[i]
}

package contracts

import "time"

// SignalScore is the scored result for one symbol in one cycle
// ⭐ SSOT: 스코어링 → 랭킹 전달
type SignalScore struct {
	Symbol        string             `json:"symbol"`
	Score         float64            `json:"score"` // 0~100
	Price         float64            `json:"price"`
	Regime        Regime             `json:"regime"`
	LowConfidence bool               `json:"low_confidence"`
	Components    map[string]float64 `json:"components"` // 가중치 반영 기여 점수
}

// LoggedSignal is one row of the persisted pick log (Date,Ticker,Score,Price,Regime).
// Regime stays a string: older logs carry labels outside the current set.
type LoggedSignal struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol"`
	Score  float64   `json:"score"`
	Price  float64   `json:"price"`
	Regime string    `json:"regime"`
}

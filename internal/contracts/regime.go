package contracts

import (
	"fmt"
	"strings"
)

// Regime is a coarse market state label
type Regime int

const (
	RegimeSideways Regime = iota
	RegimeCalm
	RegimeVolatile
)

// String returns the display label
func (r Regime) String() string {
	switch r {
	case RegimeCalm:
		return "Calm"
	case RegimeVolatile:
		return "Volatile"
	default:
		return "Sideways"
	}
}

// ParseRegime accepts the display label in any case
func ParseRegime(s string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "calm":
		return RegimeCalm, nil
	case "volatile":
		return RegimeVolatile, nil
	case "sideways":
		return RegimeSideways, nil
	}
	return RegimeSideways, fmt.Errorf("unknown regime %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Regime) UnmarshalText(b []byte) error {
	parsed, err := ParseRegime(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RegimeStats are the measurements a regime label is derived from
type RegimeStats struct {
	Volatility      float64 `json:"volatility"`
	DirectionalMove float64 `json:"directional_move"`
	Range           float64 `json:"range"`
}

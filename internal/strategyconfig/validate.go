package strategyconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/bullscan/internal/contracts"
)

// ValidationError 검증 실패 (사이클 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 에러 경로를 YAML 키 이름으로 표시
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field rules and cross-field constraints.
// Weight sums are reported as *contracts.InvalidWeightConfigError.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return err
	}

	ind := cfg.Indicators
	if ind.SMAShort >= ind.SMALong {
		return ValidationError{"indicators.sma_short", "must be < sma_long"}
	}
	if ind.EMAShort >= ind.EMALong {
		return ValidationError{"indicators.ema_short", "must be < ema_long"}
	}

	r := cfg.Regime
	if r.LowVolThreshold >= r.HighVolThreshold {
		return ValidationError{"regime", "low_vol_threshold must be < high_vol_threshold"}
	}

	if err := ValidateWeights(cfg.Scoring.Weights, cfg.Scoring.TotalWeight); err != nil {
		return err
	}

	for _, s := range cfg.Universe.Symbols {
		if s == cfg.Universe.Benchmark {
			return ValidationError{"universe.symbols", fmt.Sprintf("benchmark %s must not be scanned against itself", s)}
		}
	}

	return nil
}

// ValidateWeights rejects negative weights and sums other than total
func ValidateWeights(w Weights, total int) error {
	v := reflect.ValueOf(w)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Int() < 0 {
			name := strings.SplitN(t.Field(i).Tag.Get("yaml"), ",", 2)[0]
			return ValidationError{"scoring.weights." + name, "must be >= 0"}
		}
	}

	if w.Sum() != total {
		return &contracts.InvalidWeightConfigError{Got: w.Sum(), Want: total}
	}
	return nil
}

func fieldError(fe validator.FieldError) ValidationError {
	// Namespace: "Config.regime.window" → "regime.window"
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "required"
	case "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		msg = fmt.Sprintf("must be > %s", fe.Param())
	case "gte":
		msg = fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = fmt.Sprintf("failed validation: %s", fe.Tag())
	}

	return ValidationError{Field: field, Message: msg}
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if len(cfg.Universe.Symbols) < cfg.Ranking.TopN {
		warnings = append(warnings, Warning{
			Code:    "TOPN_EXCEEDS_UNIVERSE",
			Message: fmt.Sprintf("top_n=%d > universe size %d: 전 종목이 리포트됨", cfg.Ranking.TopN, len(cfg.Universe.Symbols)),
		})
	}

	// 달력일 → 거래일 대략 5/7
	tradingDays := cfg.Universe.HistoryDays * 5 / 7
	if tradingDays < cfg.MinBars()+5 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_HISTORY",
			Message: fmt.Sprintf("history_days=%d (~%d 거래일) 이 최소 필요 봉 %d 에 근접: 휴장일에 지표가 중립 처리될 수 있음", cfg.Universe.HistoryDays, tradingDays, cfg.MinBars()),
		})
	}

	if cfg.Scoring.Normalization.MissingPolicy == PolicyNeutral && cfg.Scoring.Normalization.NeutralValue > 0.5 {
		warnings = append(warnings, Warning{
			Code:    "OPTIMISTIC_NEUTRAL",
			Message: "neutral_value > 0.5: 데이터 부족 종목이 유리하게 평가됨",
		})
	}

	return warnings
}

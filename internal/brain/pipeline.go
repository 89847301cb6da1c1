package brain

import (
	"errors"
	"fmt"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/indicators"
	"github.com/wonny/bullscan/internal/regime"
	"github.com/wonny/bullscan/internal/scoring"
	"github.com/wonny/bullscan/internal/selection"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

// Pipeline is the pure Indicator → Regime → Score → Rank chain.
// The scan cycle and the backtest evaluator share it.
type Pipeline struct {
	calc       *indicators.Calculator
	classifier *regime.Classifier
	engine     *scoring.Engine
	ranker     *selection.Ranker
	scope      string
	policy     string
	logger     *logger.Logger
}

// Evaluation is the scored universe of one cycle
type Evaluation struct {
	Scores       []*contracts.SignalScore
	Skipped      []contracts.SkippedSymbol
	MarketRegime *contracts.Regime // market scope only
}

// NewPipeline wires the core components from a validated config
func NewPipeline(cfg *strategyconfig.Config, log *logger.Logger) (*Pipeline, error) {
	engine, err := scoring.NewEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		calc:       indicators.NewCalculator(cfg, log),
		classifier: regime.NewClassifier(cfg, log),
		engine:     engine,
		ranker:     selection.NewRanker(cfg.Ranking.TopN, log),
		scope:      cfg.Regime.Scope,
		policy:     cfg.Scoring.Normalization.MissingPolicy,
		logger:     log.Component("pipeline"),
	}, nil
}

// Evaluate scores every series against the benchmark.
// Per-symbol data problems become Skipped entries; a score outside [0,100] is returned as an error.
func (p *Pipeline) Evaluate(universe []*contracts.PriceSeries, benchmark *contracts.PriceSeries) (*Evaluation, error) {
	eval := &Evaluation{}

	if p.scope == strategyconfig.ScopeMarket {
		r, _, err := p.classifier.Classify(benchmark)
		if err != nil {
			return nil, fmt.Errorf("classify market regime from %s: %w", benchmark.Symbol, err)
		}
		eval.MarketRegime = &r
	}

	for _, series := range universe {
		s, err := p.ScoreSymbol(series, benchmark, eval.MarketRegime)
		if err != nil {
			var outOfRange *contracts.ScoreOutOfRangeError
			if errors.As(err, &outOfRange) {
				return nil, err
			}

			p.logger.WithFields(map[string]interface{}{
				"symbol": series.Symbol,
				"error":  err.Error(),
			}).Warn("Symbol excluded from cycle")
			eval.Skipped = append(eval.Skipped, contracts.SkippedSymbol{Symbol: series.Symbol, Reason: err.Error()})
			continue
		}
		eval.Scores = append(eval.Scores, s)
	}

	return eval, nil
}

// ScoreSymbol runs indicators, regime and scoring for one series.
// marketRegime overrides the per-symbol classification when non-nil.
func (p *Pipeline) ScoreSymbol(series, benchmark *contracts.PriceSeries, marketRegime *contracts.Regime) (*contracts.SignalScore, error) {
	bundle, err := p.calc.Compute(series, benchmark)
	if err != nil {
		return nil, err
	}

	var r contracts.Regime
	if marketRegime != nil {
		r = *marketRegime
	} else {
		r, _, err = p.classifier.Classify(series)
		if err != nil {
			var insufficient *contracts.InsufficientDataError
			if !errors.As(err, &insufficient) || p.policy == strategyconfig.PolicyFail {
				return nil, err
			}
			// 이력 부족: 중립 레짐 + 저신뢰
			r = contracts.RegimeSideways
			bundle.LowConfidence = true
		}
	}

	return p.engine.Score(bundle, r)
}

// Rank applies the configured top N
func (p *Pipeline) Rank(scores []*contracts.SignalScore) ([]contracts.RankedEntry, error) {
	return p.ranker.Rank(scores)
}

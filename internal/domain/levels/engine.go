package levels

import (
	"strata/internal/domain/market_data"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

// Engine derives consolidated support/resistance levels from a price
// series. It is a pure synchronous computation: all inputs are
// materialized before Compute runs, nothing blocks, and concurrent runs
// over different series are independent.
type Engine struct {
	cfg Config
	log *logger.Logger
}

// NewEngine validates the configuration and returns an engine
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg: cfg,
		log: logger.Get().With("component", "levels_engine"),
	}, nil
}

// Compute runs the full pipeline: swing detection, candidate generation
// from all factors, consolidation, strength scoring and classification.
// The series must be chronological. currentPrice anchors the moving
// average, round number and classification logic; pass the latest close.
func (e *Engine) Compute(series []market_data.OHLCV, currentPrice float64) (*Result, error) {
	minBars := 2*e.cfg.SwingWindow + 1
	if len(series) < minBars {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"need at least %d bars for swing window %d, got %d",
			minBars, e.cfg.SwingWindow, len(series))
	}
	if currentPrice <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "current price must be positive, got %v", currentPrice)
	}

	swings := DetectSwings(series, e.cfg.SwingWindow)

	candidates := make([]Candidate, 0, 64)

	fib := fibCandidates(swings, e.cfg.FibRatios, e.cfg.MaxSwingPairs)
	if len(fib) == 0 && len(swings) > 0 {
		e.log.Debug("No fibonacci candidates from swing pairs (degenerate or one-sided swings)")
	}
	candidates = append(candidates, fib...)

	vol := volumeCandidates(series, e.cfg.VolumeBinCount, e.cfg.VolumeTopN)
	if vol == nil {
		e.log.Debug("No volume candidates (flat price range or zero traded volume)")
	}
	candidates = append(candidates, vol...)

	candidates = append(candidates, maCandidates(series, e.cfg.MAWindows, currentPrice, e.cfg.MAProximityPct)...)
	candidates = append(candidates, psychCandidates(currentPrice, e.cfg.PsychSteps, e.cfg.PsychProximityPct)...)

	lookback := e.cfg.PriceActionLookback
	if lookback > len(series) {
		lookback = len(series)
	}
	since := series[len(series)-lookback].OpenTime
	candidates = append(candidates, priceActionCandidates(swings, since, e.cfg.ClusterTolerancePct)...)

	consolidated := Consolidate(candidates, e.cfg.ClusterTolerancePct)
	support, resistance := scoreAndClassify(consolidated, currentPrice)

	e.log.Debugw("Level computation complete",
		"bars", len(series),
		"swings", len(swings),
		"candidates", len(candidates),
		"levels", len(consolidated),
		"support", len(support),
		"resistance", len(resistance),
	)

	return &Result{
		CurrentPrice: currentPrice,
		Support:      support,
		Resistance:   resistance,
		Swings:       swings,
	}, nil
}

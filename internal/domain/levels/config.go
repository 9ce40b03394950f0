package levels

import (
	"strata/pkg/errors"
)

// Config carries the tunable parameters of the level engine
type Config struct {
	// SwingWindow is the lookback/lookahead window for swing detection.
	// A bar is a swing high (low) when its high (low) is the extremum
	// within ±SwingWindow bars.
	SwingWindow int

	// FibRatios are the retracement ratios computed per swing pair.
	// Ratios at exactly 0 and 1 coincide with the swing endpoints and
	// are not emitted as candidates.
	FibRatios []float64

	// MaxSwingPairs bounds how many ranked swing high/low pairs feed
	// the Fibonacci generator.
	MaxSwingPairs int

	// VolumeBinCount is the number of equal-width price bins of the
	// volume profile; VolumeTopN bins become candidates.
	VolumeBinCount int
	VolumeTopN     int

	// ClusterTolerancePct is the consolidation tolerance as a fraction
	// of price (0.002 = 0.2%). Candidates within tolerance of a
	// cluster's representative price join that cluster.
	ClusterTolerancePct float64

	// MAWindows are the trailing SMA periods considered as levels.
	// MAProximityPct is the band around the current price within which
	// an MA value counts as an actionable level.
	MAWindows      []int
	MAProximityPct float64

	// PsychSteps are round-number granularities in price units,
	// coarsest first (100, 50, 25). PsychProximityPct bounds how far
	// from the current price round numbers are enumerated.
	PsychSteps        []int
	PsychProximityPct float64

	// PriceActionLookback is the trailing bar window from which recent
	// swing points are mined for local support/resistance.
	PriceActionLookback int
}

// DefaultConfig returns the standard daily-bars configuration
func DefaultConfig() Config {
	return Config{
		SwingWindow:         20,
		FibRatios:           []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1},
		MaxSwingPairs:       3,
		VolumeBinCount:      40,
		VolumeTopN:          10,
		ClusterTolerancePct: 0.002,
		MAWindows:           []int{50, 200},
		MAProximityPct:      0.05,
		PsychSteps:          []int{100, 50, 25},
		PsychProximityPct:   0.02,
		PriceActionLookback: 90,
	}
}

// Validate fails fast on configurations the engine cannot run with
func (c Config) Validate() error {
	if c.SwingWindow <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "swing window must be positive, got %d", c.SwingWindow)
	}
	if len(c.FibRatios) == 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "fibonacci ratio set is empty")
	}
	for _, r := range c.FibRatios {
		if r < 0 || r > 1 {
			return errors.Wrapf(errors.ErrInvalidConfig, "fibonacci ratio %v outside [0, 1]", r)
		}
	}
	if c.MaxSwingPairs <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "max swing pairs must be positive, got %d", c.MaxSwingPairs)
	}
	if c.VolumeBinCount <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "volume bin count must be positive, got %d", c.VolumeBinCount)
	}
	if c.VolumeTopN <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "volume top-n must be positive, got %d", c.VolumeTopN)
	}
	if c.ClusterTolerancePct <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "cluster tolerance must be positive, got %v", c.ClusterTolerancePct)
	}
	for _, w := range c.MAWindows {
		if w <= 0 {
			return errors.Wrapf(errors.ErrInvalidConfig, "moving average window must be positive, got %d", w)
		}
	}
	if c.MAProximityPct <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "ma proximity must be positive, got %v", c.MAProximityPct)
	}
	for _, s := range c.PsychSteps {
		if s <= 0 {
			return errors.Wrapf(errors.ErrInvalidConfig, "round number step must be positive, got %d", s)
		}
	}
	if c.PsychProximityPct <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "psych proximity must be positive, got %v", c.PsychProximityPct)
	}
	if c.PriceActionLookback <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "price action lookback must be positive, got %d", c.PriceActionLookback)
	}
	return nil
}

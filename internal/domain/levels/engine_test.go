package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/pkg/errors"
)

func testEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	eng, err := NewEngine(cfg)
	require.NoError(t, err)
	return eng
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SwingWindow = 0

	_, err := NewEngine(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestEngine_Compute_InsufficientData(t *testing.T) {
	eng := testEngine(t, nil) // swing window 20 needs 41 bars

	_, err := eng.Compute(flatSeries(40, 100), 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
}

func TestEngine_Compute_RejectsNonPositivePrice(t *testing.T) {
	eng := testEngine(t, nil)

	_, err := eng.Compute(flatSeries(60, 100), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestEngine_Compute_FlatSeriesCompletes(t *testing.T) {
	// No swings, a degenerate volume profile, but the moving average and
	// round number factors still apply. No error, no panic.
	eng := testEngine(t, nil)

	res, err := eng.Compute(flatSeries(60, 100), 100)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Empty(t, res.Swings)
	assert.Empty(t, res.Resistance)
	require.NotEmpty(t, res.Support) // MA and round number at the price itself
	assert.InDelta(t, 100.0, res.Support[0].Price, 1e-9)
}

func TestEngine_Compute_ZeroVolumeSeriesCompletes(t *testing.T) {
	// A moving price range with no traded volume also yields no volume
	// candidates; the rest of the pipeline still runs.
	eng := testEngine(t, func(c *Config) { c.SwingWindow = 5 })

	series := waveSeries(120, 100, 10, 20)
	for i := range series {
		series[i].Volume = 0
	}
	current := series[len(series)-1].Close

	res, err := eng.Compute(series, current)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Support)

	for _, side := range [][]Level{res.Support, res.Resistance} {
		for _, l := range side {
			for _, c := range l.Candidates {
				assert.NotEqual(t, SourceVolumeCluster, c.Source.Kind)
			}
		}
	}
}

func TestEngine_Compute_EndToEnd(t *testing.T) {
	eng := testEngine(t, func(c *Config) { c.SwingWindow = 5 })

	series := waveSeries(120, 100, 10, 20)
	current := series[len(series)-1].Close

	res, err := eng.Compute(series, current)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Swings)
	assert.NotEmpty(t, res.Support)
	assert.NotEmpty(t, res.Resistance)
	assert.InDelta(t, current, res.CurrentPrice, 1e-9)

	for _, l := range res.Support {
		assert.LessOrEqual(t, l.Price, current)
		assert.Equal(t, Support, l.Classification)
		assert.GreaterOrEqual(t, l.Strength, 1)
		assert.LessOrEqual(t, l.Strength, 5)
		assert.NotEmpty(t, l.Candidates)
	}
	for _, l := range res.Resistance {
		assert.Greater(t, l.Price, current)
		assert.Equal(t, Resistance, l.Classification)
		assert.GreaterOrEqual(t, l.Strength, 1)
		assert.LessOrEqual(t, l.Strength, 5)
	}

	// Nearest-first ordering on both sides
	for i := 1; i < len(res.Support); i++ {
		assert.Greater(t, res.Support[i-1].Price, res.Support[i].Price)
	}
	for i := 1; i < len(res.Resistance); i++ {
		assert.Less(t, res.Resistance[i-1].Price, res.Resistance[i].Price)
	}
}

func TestEngine_Compute_Deterministic(t *testing.T) {
	eng := testEngine(t, func(c *Config) { c.SwingWindow = 5 })

	series := waveSeries(120, 100, 10, 20)
	current := series[len(series)-1].Close

	a, err := eng.Compute(series, current)
	require.NoError(t, err)
	b, err := eng.Compute(series, current)
	require.NoError(t, err)

	require.Len(t, b.Support, len(a.Support))
	require.Len(t, b.Resistance, len(a.Resistance))
	for i := range a.Support {
		assert.Equal(t, a.Support[i].Price, b.Support[i].Price)
		assert.Equal(t, a.Support[i].Strength, b.Support[i].Strength)
	}
	for i := range a.Resistance {
		assert.Equal(t, a.Resistance[i].Price, b.Resistance[i].Price)
		assert.Equal(t, a.Resistance[i].Strength, b.Resistance[i].Strength)
	}
}

func TestEngine_Compute_SwingPricesFeedLevels(t *testing.T) {
	// The repeated wave extremes at 111 and 89 should surface as
	// price-action levels with multiple touches.
	eng := testEngine(t, func(c *Config) { c.SwingWindow = 5 })

	series := waveSeries(120, 100, 10, 20)
	current := series[len(series)-1].Close

	res, err := eng.Compute(series, current)
	require.NoError(t, err)

	foundLow := false
	for _, l := range res.Support {
		for _, c := range l.Candidates {
			if c.Source.Kind == SourcePriceAction && c.Source.Swing == SwingLow {
				foundLow = true
			}
		}
	}
	assert.True(t, foundLow, "expected a price-action support from the repeated swing lows")

	foundHigh := false
	for _, l := range res.Resistance {
		for _, c := range l.Candidates {
			if c.Source.Kind == SourcePriceAction && c.Source.Swing == SwingHigh {
				foundHigh = true
			}
		}
	}
	assert.True(t, foundHigh, "expected a price-action resistance from the repeated swing highs")
}

package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/domain/market_data"
)

func TestDetectSwings_ShortSeriesYieldsNothing(t *testing.T) {
	series := waveSeries(10, 100, 5, 8)

	// 10 bars cannot satisfy a ±5 window
	assert.Empty(t, DetectSwings(series, 5))
	assert.Empty(t, DetectSwings(nil, 5))
	assert.Empty(t, DetectSwings(series, 0))
}

func TestDetectSwings_FindsExtrema(t *testing.T) {
	// One clean peak and one clean trough
	closes := []float64{100, 102, 104, 110, 104, 102, 100, 96, 90, 96, 100, 102}
	series := make([]market_data.OHLCV, len(closes))
	for i, c := range closes {
		series[i] = bar(i, c, 0.5, 1000)
	}

	swings := DetectSwings(series, 3)
	require.Len(t, swings, 2)

	assert.Equal(t, SwingHigh, swings[0].Kind)
	assert.InDelta(t, 110.5, swings[0].Price, 1e-9)
	assert.Equal(t, testDay(3), swings[0].Time)

	assert.Equal(t, SwingLow, swings[1].Kind)
	assert.InDelta(t, 89.5, swings[1].Price, 1e-9)
	assert.Equal(t, testDay(8), swings[1].Time)
}

func TestDetectSwings_TieEarliestBarWins(t *testing.T) {
	// Two adjacent bars share the same high; only the first may be a swing
	closes := []float64{100, 101, 105, 105, 101, 100}
	series := make([]market_data.OHLCV, len(closes))
	for i, c := range closes {
		series[i] = bar(i, c, 0, 500)
	}

	swings := DetectSwings(series, 2)

	highs := 0
	for _, s := range swings {
		if s.Kind == SwingHigh {
			highs++
			assert.Equal(t, testDay(2), s.Time)
		}
	}
	assert.Equal(t, 1, highs)
}

func TestDetectSwings_Deterministic(t *testing.T) {
	series := waveSeries(120, 5000, 80, 24)

	first := DetectSwings(series, 8)
	second := DetectSwings(series, 8)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestDetectSwings_ChronologicalOrder(t *testing.T) {
	series := waveSeries(120, 5000, 80, 24)

	swings := DetectSwings(series, 8)
	for i := 1; i < len(swings); i++ {
		assert.True(t, swings[i].Time.After(swings[i-1].Time) || swings[i].Time.Equal(swings[i-1].Time))
	}
}

package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/domain/levels"
	"strata/internal/services/analysis"
)

func testSnapshot() *analysis.Snapshot {
	return &analysis.Snapshot{
		RunID:       "run-1",
		Symbol:      "SPX",
		Timeframe:   "1d",
		GeneratedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		CandleCount: 252,
		TotalVolume: 1_250_000_000,
		Result: &levels.Result{
			CurrentPrice: 5534.20,
			Resistance: []levels.Level{
				{
					Price:          5550.00,
					Strength:       3,
					Classification: levels.Resistance,
					Candidates: []levels.Candidate{
						{Source: levels.Source{Kind: levels.SourceRoundNumber, Step: 50}},
						{Source: levels.Source{Kind: levels.SourceVolumeCluster}},
					},
				},
			},
			Support: []levels.Level{
				{
					Price:          5500.00,
					Strength:       5,
					Classification: levels.Support,
					Candidates: []levels.Candidate{
						{Source: levels.Source{Kind: levels.SourceFibonacci, Ratio: 0.618, PairID: "Fib_Down_1"}},
						{Source: levels.Source{Kind: levels.SourcePriceAction, Touches: 3}},
					},
				},
				{
					Price:          5480.00,
					Strength:       1,
					Classification: levels.Support,
					Candidates: []levels.Candidate{
						{Source: levels.Source{Kind: levels.SourceMovingAverage, Period: 50}},
					},
				},
			},
			Swings: []levels.SwingPoint{
				{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Price: 5600, Kind: levels.SwingHigh},
				{Time: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), Price: 5450, Kind: levels.SwingLow},
				{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Price: 5580, Kind: levels.SwingHigh},
			},
		},
		Volatility: &analysis.VolatilityBias{
			VixClose: 18.3,
			VixSMA:   15.1,
			Elevated: true,
			Text:     "VIX 18.30 above its 20-day average 15.10: elevated volatility, expect wider swings and deeper tests of support",
		},
	}
}

func TestFormatter_Levels(t *testing.T) {
	out := NewFormatter(8).Levels(testSnapshot())

	assert.Contains(t, out, "Technical Levels Report - 2024-03-15")
	assert.Contains(t, out, "Symbol: SPX (1d)")
	assert.Contains(t, out, "Current Price: 5534.20")
	assert.Contains(t, out, "252 candles")
	assert.Contains(t, out, "Volatility: VIX 18.30 above")
	assert.Contains(t, out, "Resistance Levels:")
	assert.Contains(t, out, "5550.00 *** - Round number (50s), Volume cluster")
	assert.Contains(t, out, "Support Levels:")
	assert.Contains(t, out, "5500.00 ***** - Fibonacci 61.8% (Fib_Down_1), Previous consolidation (3 touches)")
	assert.Contains(t, out, "5480.00 * - MA_50 support/resistance")
	assert.Contains(t, out, "Strength Indicator: * (weak) to ***** (very strong)")
}

func TestFormatter_Levels_RespectsMaxLevels(t *testing.T) {
	out := NewFormatter(1).Levels(testSnapshot())

	assert.Contains(t, out, "5500.00")
	assert.NotContains(t, out, "5480.00")
}

func TestFormatter_Levels_EmptySides(t *testing.T) {
	snap := testSnapshot()
	snap.Result.Resistance = nil
	snap.Volatility = nil

	out := NewFormatter(0).Levels(snap)
	assert.Contains(t, out, "(none)")
	assert.NotContains(t, out, "Volatility:")
}

func TestFormatter_SwingPoints(t *testing.T) {
	out := NewFormatter(8).SwingPoints(testSnapshot())

	assert.Contains(t, out, "Swing Points Analysis - 2024-03-15")
	assert.Contains(t, out, "SWING HIGHS (used for Fibonacci calculations)")
	assert.Contains(t, out, "SWING LOWS (used for Fibonacci calculations)")
	assert.Contains(t, out, "2024-02-20: 5450.00")

	// Highs most recent first
	first := strings.Index(out, "2024-03-05: 5580.00")
	second := strings.Index(out, "2024-02-01: 5600.00")
	require.Greater(t, first, 0)
	require.Greater(t, second, 0)
	assert.Less(t, first, second)
}

func TestFormatter_SwingPoints_NoSwings(t *testing.T) {
	snap := testSnapshot()
	snap.Result.Swings = nil

	out := NewFormatter(8).SwingPoints(snap)
	assert.Contains(t, out, "No significant swing points identified")
}

func TestWriter_SavesReports(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	path, err := w.SaveLevels("levels content", "^GSPC", date)
	require.NoError(t, err)
	assert.Contains(t, path, "GSPC_levels_2024-03-15.txt")
	assert.NotContains(t, path, "^")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "levels content", string(data))

	swingPath, err := w.SaveSwingPoints("swings content", "SPX", date)
	require.NoError(t, err)
	assert.Contains(t, swingPath, "SPX_swing_points_2024-03-15.txt")
}

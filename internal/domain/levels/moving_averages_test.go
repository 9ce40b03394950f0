package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACandidates_NearbyMAEmitted(t *testing.T) {
	series := flatSeries(60, 100)

	out := maCandidates(series, []int{50, 200}, 100, 0.05)
	require.Len(t, out, 1) // 200-period window exceeds the series

	assert.Equal(t, SourceMovingAverage, out[0].Source.Kind)
	assert.Equal(t, 50, out[0].Source.Period)
	assert.InDelta(t, 100, out[0].Price, 1e-9)
	assert.Equal(t, "MA_50 support/resistance", out[0].Source.Describe())
}

func TestMACandidates_FarMAOmitted(t *testing.T) {
	series := flatSeries(60, 100)

	// MA sits at 100 but price has run to 120: not an actionable level
	out := maCandidates(series, []int{50}, 120, 0.05)
	assert.Empty(t, out)
}

func TestMACandidates_EmptySeries(t *testing.T) {
	assert.Empty(t, maCandidates(nil, []int{50}, 100, 0.05))
}

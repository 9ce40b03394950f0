package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/domain/market_data"
)

func TestBuildVolumeProfile_FlatSeriesDegenerate(t *testing.T) {
	assert.Nil(t, BuildVolumeProfile(flatSeries(50, 100), 20))
	assert.Nil(t, BuildVolumeProfile(nil, 20))
	assert.Nil(t, BuildVolumeProfile(flatSeries(50, 100), 0))
}

func TestBuildVolumeProfile_DeterministicBins(t *testing.T) {
	series := waveSeries(100, 5000, 50, 20)

	first := BuildVolumeProfile(series, 25)
	second := BuildVolumeProfile(series, 25)

	require.Len(t, first, 25)
	assert.Equal(t, first, second)
}

func TestBuildVolumeProfile_ConservesVolume(t *testing.T) {
	series := waveSeries(100, 5000, 50, 20)

	total := 0.0
	for _, b := range series {
		total += b.Volume
	}

	binned := 0.0
	for _, bin := range BuildVolumeProfile(series, 25) {
		binned += bin.Volume
	}
	assert.InDelta(t, total, binned, 1e-6)
}

func TestVolumeCandidates_TopBinWinsWithFullWeight(t *testing.T) {
	// Most volume traded around 100, a little around 110
	series := []market_data.OHLCV{
		bar(0, 100, 1, 9000),
		bar(1, 100, 1, 9000),
		bar(2, 110, 1, 500),
		bar(3, 100, 1, 9000),
		bar(4, 110, 1, 500),
	}

	out := volumeCandidates(series, 10, 3)
	require.NotEmpty(t, out)

	assert.InDelta(t, 100, out[0].Price, 2)
	assert.InDelta(t, 1.0, out[0].Weight, 1e-9) // busiest bin normalizes to 1
	assert.Equal(t, SourceVolumeCluster, out[0].Source.Kind)
	assert.Greater(t, out[0].Source.VolumeShare, 0.9)
	assert.Equal(t, "Volume cluster", out[0].Source.Describe())

	// Weights stay proportional to volume share
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i].Weight, out[i-1].Weight)
	}
}

func TestVolumeCandidates_BoundedByTopN(t *testing.T) {
	series := waveSeries(200, 5000, 80, 25)

	out := volumeCandidates(series, 40, 5)
	assert.LessOrEqual(t, len(out), 5)
}

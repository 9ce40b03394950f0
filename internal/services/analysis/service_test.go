package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/adapters/config"
	"strata/internal/domain/market_data"
	"strata/pkg/errors"
)

// fakeRepository serves canned candle series per symbol
type fakeRepository struct {
	series map[string][]market_data.OHLCV
	err    error
}

func (f *fakeRepository) InsertOHLCV(ctx context.Context, candles []market_data.OHLCV) error {
	return nil
}

func (f *fakeRepository) GetOHLCV(ctx context.Context, query market_data.OHLCVQuery) ([]market_data.OHLCV, error) {
	return f.series[query.Symbol], f.err
}

func (f *fakeRepository) GetLatestOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market_data.OHLCV, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.series[symbol]
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s, nil
}

func testCandles(symbol string, n int, center, amplitude float64, period int) []market_data.OHLCV {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]market_data.OHLCV, n)
	half := period / 2
	for i := range out {
		phase := i % period
		var price float64
		if phase < half {
			price = center - amplitude + 2*amplitude*float64(phase)/float64(half)
		} else {
			price = center + amplitude - 2*amplitude*float64(phase-half)/float64(half)
		}
		out[i] = market_data.OHLCV{
			Symbol:    symbol,
			Timeframe: "1d",
			OpenTime:  base.AddDate(0, 0, i),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000,
		}
	}
	return out
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		Symbol:              "SPX",
		VixSymbol:           "VIX",
		Timeframe:           "1d",
		Lookback:            252,
		SwingWindow:         5,
		MaxSwingPairs:       3,
		VolumeBinCount:      40,
		VolumeTopN:          10,
		ClusterTolerancePct: 0.002,
		PsychProximityPct:   0.02,
		MAProximityPct:      0.05,
		PriceActionLookback: 90,
	}
}

func TestService_Analyze(t *testing.T) {
	repo := &fakeRepository{series: map[string][]market_data.OHLCV{
		"SPX": testCandles("SPX", 120, 100, 10, 20),
	}}

	svc, err := NewService(repo, nil, testAnalysisConfig())
	require.NoError(t, err)

	snap, err := svc.Analyze(context.Background(), "SPX")
	require.NoError(t, err)

	assert.NotEmpty(t, snap.RunID)
	assert.Equal(t, "SPX", snap.Symbol)
	assert.Equal(t, "1d", snap.Timeframe)
	assert.Equal(t, 120, snap.CandleCount)
	assert.InDelta(t, 120*1000.0, snap.TotalVolume, 1e-9)
	assert.False(t, snap.FromCache)
	require.NotNil(t, snap.Result)
	assert.NotEmpty(t, snap.Result.Support)
	assert.NotEmpty(t, snap.Result.Resistance)
	assert.Nil(t, snap.Volatility) // no IncludeVix
}

func TestService_Analyze_NoCandles(t *testing.T) {
	repo := &fakeRepository{series: map[string][]market_data.OHLCV{}}

	svc, err := NewService(repo, nil, testAnalysisConfig())
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), "SPX")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoCandles))
}

func TestService_Analyze_RepositoryError(t *testing.T) {
	repo := &fakeRepository{err: errors.ErrStoreUnavailable}

	svc, err := NewService(repo, nil, testAnalysisConfig())
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), "SPX")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStoreUnavailable))
}

func TestService_Analyze_IncludesVolatilityBias(t *testing.T) {
	repo := &fakeRepository{series: map[string][]market_data.OHLCV{
		"SPX": testCandles("SPX", 120, 100, 10, 20),
		"VIX": testCandles("VIX", 40, 15, 2, 10),
	}}

	cfg := testAnalysisConfig()
	cfg.IncludeVix = true

	svc, err := NewService(repo, nil, cfg)
	require.NoError(t, err)

	snap, err := svc.Analyze(context.Background(), "SPX")
	require.NoError(t, err)

	require.NotNil(t, snap.Volatility)
	assert.NotEmpty(t, snap.Volatility.Text)
	assert.Greater(t, snap.Volatility.VixSMA, 0.0)
}

func TestService_NonPositiveKnobsKeepDefaults(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.SwingWindow = -1
	cfg.ClusterTolerancePct = -0.5

	repo := &fakeRepository{}
	_, err := NewService(repo, nil, cfg)
	require.NoError(t, err)
}

func TestVolatilityBias(t *testing.T) {
	t.Run("ElevatedWhenAboveBaseline", func(t *testing.T) {
		series := testCandles("VIX", 30, 15, 0, 10)
		for i := range series {
			series[i].Close = 15
		}
		series[len(series)-1].Close = 20

		bias := volatilityBias(series)
		require.NotNil(t, bias)
		assert.True(t, bias.Elevated)
		assert.InDelta(t, 20.0, bias.VixClose, 1e-9)
		assert.Contains(t, bias.Text, "elevated volatility")
	})

	t.Run("SubduedWhenBelowBaseline", func(t *testing.T) {
		series := testCandles("VIX", 30, 15, 0, 10)
		for i := range series {
			series[i].Close = 15
		}
		series[len(series)-1].Close = 12

		bias := volatilityBias(series)
		require.NotNil(t, bias)
		assert.False(t, bias.Elevated)
		assert.Contains(t, bias.Text, "subdued volatility")
	})

	t.Run("NilWhenTooShort", func(t *testing.T) {
		assert.Nil(t, volatilityBias(testCandles("VIX", 10, 15, 2, 5)))
	})
}

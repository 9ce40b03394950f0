package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"strata/internal/adapters/config"
	"strata/internal/domain/levels"
	"strata/internal/domain/market_data"
	"strata/internal/metrics"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

// Snapshot is the unit of output: one symbol's level set at a point in
// time, plus the optional volatility context
type Snapshot struct {
	RunID       string          `json:"run_id"`
	Symbol      string          `json:"symbol"`
	Timeframe   string          `json:"timeframe"`
	GeneratedAt time.Time       `json:"generated_at"`
	CandleCount int             `json:"candle_count"`
	TotalVolume float64         `json:"total_volume"`
	Result      *levels.Result  `json:"result"`
	Volatility  *VolatilityBias `json:"volatility,omitempty"`
	FromCache   bool            `json:"from_cache"`
}

// Service orchestrates one analysis run: load candles, check the cache,
// run the level engine, attach the volatility bias, store the result
type Service struct {
	marketData market_data.Repository
	engine     *levels.Engine
	cache      *LevelsCache
	cfg        config.AnalysisConfig
	log        *logger.Logger
}

// NewService builds the analysis service. cache may be nil to disable caching.
func NewService(marketData market_data.Repository, cache *LevelsCache, cfg config.AnalysisConfig) (*Service, error) {
	engine, err := levels.NewEngine(engineConfig(cfg))
	if err != nil {
		return nil, err
	}

	return &Service{
		marketData: marketData,
		engine:     engine,
		cache:      cache,
		cfg:        cfg,
		log:        logger.Get().With("component", "analysis_service"),
	}, nil
}

// engineConfig maps the environment surface onto the engine configuration
func engineConfig(cfg config.AnalysisConfig) levels.Config {
	ec := levels.DefaultConfig()
	if cfg.SwingWindow > 0 {
		ec.SwingWindow = cfg.SwingWindow
	}
	if cfg.MaxSwingPairs > 0 {
		ec.MaxSwingPairs = cfg.MaxSwingPairs
	}
	if cfg.VolumeBinCount > 0 {
		ec.VolumeBinCount = cfg.VolumeBinCount
	}
	if cfg.VolumeTopN > 0 {
		ec.VolumeTopN = cfg.VolumeTopN
	}
	if cfg.ClusterTolerancePct > 0 {
		ec.ClusterTolerancePct = cfg.ClusterTolerancePct
	}
	if cfg.PsychProximityPct > 0 {
		ec.PsychProximityPct = cfg.PsychProximityPct
	}
	if cfg.MAProximityPct > 0 {
		ec.MAProximityPct = cfg.MAProximityPct
	}
	if cfg.PriceActionLookback > 0 {
		ec.PriceActionLookback = cfg.PriceActionLookback
	}
	return ec
}

// Analyze computes the level set for one symbol from its latest candles.
// A valid cached result short-circuits the computation.
func (s *Service) Analyze(ctx context.Context, symbol string) (*Snapshot, error) {
	start := time.Now()

	candles, err := s.marketData.GetLatestOHLCV(ctx, symbol, s.cfg.Timeframe, s.cfg.Lookback)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load candles for %s", symbol)
	}
	if len(candles) == 0 {
		return nil, errors.Wrapf(errors.ErrNoCandles, "no %s candles stored for %s", s.cfg.Timeframe, symbol)
	}

	currentPrice := candles[len(candles)-1].Close
	totalVolume := 0.0
	for _, c := range candles {
		totalVolume += c.Volume
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, symbol, s.cfg.Timeframe, currentPrice)
		if err != nil {
			s.log.Warn("Cache lookup failed, computing fresh", "symbol", symbol, "error", err)
		} else if cached != nil {
			metrics.RecordCachedAnalysis(symbol)
			return &Snapshot{
				RunID:       uuid.NewString(),
				Symbol:      symbol,
				Timeframe:   s.cfg.Timeframe,
				GeneratedAt: cached.Timestamp,
				CandleCount: len(candles),
				TotalVolume: totalVolume,
				Result:      cached.Result,
				Volatility:  s.loadVolatility(ctx),
				FromCache:   true,
			}, nil
		}
	}

	result, err := s.engine.Compute(candles, currentPrice)
	supportCount, resistanceCount, swingCount := resultCounts(result)
	metrics.RecordAnalysisRun(symbol, time.Since(start), supportCount, resistanceCount, swingCount, err)
	if err != nil {
		return nil, errors.Wrapf(err, "level computation failed for %s", symbol)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, symbol, s.cfg.Timeframe, currentPrice, result); err != nil {
			s.log.Warn("Failed to cache analysis result", "symbol", symbol, "error", err)
		}
	}

	snapshot := &Snapshot{
		RunID:       uuid.NewString(),
		Symbol:      symbol,
		Timeframe:   s.cfg.Timeframe,
		GeneratedAt: time.Now(),
		CandleCount: len(candles),
		TotalVolume: totalVolume,
		Result:      result,
		Volatility:  s.loadVolatility(ctx),
	}

	s.log.Infow("Analysis complete",
		"run_id", snapshot.RunID,
		"symbol", symbol,
		"price", currentPrice,
		"support", len(result.Support),
		"resistance", len(result.Resistance),
		"duration", time.Since(start),
	)

	return snapshot, nil
}

// loadVolatility fetches the volatility index series and derives the
// bias. Failures degrade to a nil bias rather than failing the run.
func (s *Service) loadVolatility(ctx context.Context) *VolatilityBias {
	if !s.cfg.IncludeVix || s.cfg.VixSymbol == "" {
		return nil
	}

	vix, err := s.marketData.GetLatestOHLCV(ctx, s.cfg.VixSymbol, s.cfg.Timeframe, vixSMAWindow*2)
	if err != nil {
		s.log.Warn("Failed to load volatility index candles", "symbol", s.cfg.VixSymbol, "error", err)
		return nil
	}

	bias := volatilityBias(vix)
	if bias == nil {
		s.log.Debug("Volatility series too short for baseline", "symbol", s.cfg.VixSymbol, "bars", len(vix))
	}
	return bias
}

func resultCounts(r *levels.Result) (support, resistance, swings int) {
	if r == nil {
		return 0, 0, 0
	}
	return len(r.Support), len(r.Resistance), len(r.Swings)
}

package analysis

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"time"

	"strata/internal/adapters/redis"
	"strata/internal/domain/levels"
	"strata/internal/metrics"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

// CacheConfig contains configuration for level result caching
type CacheConfig struct {
	Enabled                  bool
	TTL                      time.Duration
	PriceBucketPct           float64 // Price bucket size for key building
	InvalidationPriceMovePct float64 // Invalidate on price move beyond this
}

// DefaultCacheConfig returns default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:                  true,
		TTL:                      10 * time.Minute,
		PriceBucketPct:           0.001, // 0.1%
		InvalidationPriceMovePct: 0.005, // 0.5%
	}
}

// CachedLevels is the stored form of one completed analysis
type CachedLevels struct {
	Symbol    string         `json:"symbol"`
	Timeframe string         `json:"timeframe"`
	Price     float64        `json:"price"`
	Result    *levels.Result `json:"result"`
	Timestamp time.Time      `json:"timestamp"`
}

// LevelsCache caches computed level sets in Redis, keyed by symbol,
// timeframe and a price bucket. Nearby prices share a bucket so small
// ticks between runs reuse the same entry; a larger move invalidates it.
type LevelsCache struct {
	config      CacheConfig
	redisClient *redis.Client
	log         *logger.Logger
}

// NewLevelsCache creates a new levels cache
func NewLevelsCache(config CacheConfig, redisClient *redis.Client) *LevelsCache {
	return &LevelsCache{
		config:      config,
		redisClient: redisClient,
		log:         logger.Get().With("component", "levels_cache"),
	}
}

// Get retrieves a cached level set, or nil on miss
func (lc *LevelsCache) Get(ctx context.Context, symbol, timeframe string, currentPrice float64) (*CachedLevels, error) {
	if !lc.config.Enabled || lc.redisClient == nil {
		return nil, nil
	}

	key := lc.buildCacheKey(symbol, timeframe, currentPrice)

	var cached CachedLevels
	start := time.Now()
	err := lc.redisClient.Get(ctx, key, &cached)
	if err != nil {
		if err.Error() == "redis: nil" {
			metrics.RecordDBQuery("redis", "get", time.Since(start), nil)
			metrics.RecordCacheOperation("miss")
			return nil, nil
		}
		metrics.RecordDBQuery("redis", "get", time.Since(start), err)
		return nil, errors.Wrap(err, "failed to get from cache")
	}
	metrics.RecordDBQuery("redis", "get", time.Since(start), nil)

	if !lc.isEntryValid(&cached, currentPrice) {
		_ = lc.redisClient.Delete(ctx, key)
		metrics.RecordCacheOperation("evict")
		metrics.RecordCacheOperation("miss")
		return nil, nil
	}

	metrics.RecordCacheOperation("hit")
	lc.log.Debug("Cache hit",
		"symbol", symbol,
		"timeframe", timeframe,
		"age", time.Since(cached.Timestamp),
	)

	return &cached, nil
}

// Set stores a computed level set
func (lc *LevelsCache) Set(ctx context.Context, symbol, timeframe string, price float64, result *levels.Result) error {
	if !lc.config.Enabled || lc.redisClient == nil {
		return nil
	}

	cached := CachedLevels{
		Symbol:    symbol,
		Timeframe: timeframe,
		Price:     price,
		Result:    result,
		Timestamp: time.Now(),
	}

	key := lc.buildCacheKey(symbol, timeframe, price)
	start := time.Now()
	err := lc.redisClient.Set(ctx, key, cached, lc.config.TTL)
	metrics.RecordDBQuery("redis", "set", time.Since(start), err)
	if err != nil {
		return errors.Wrap(err, "failed to set cache")
	}

	metrics.RecordCacheOperation("set")
	lc.log.Debug("Cache set",
		"symbol", symbol,
		"timeframe", timeframe,
		"ttl", lc.config.TTL,
	)

	return nil
}

// Invalidate removes the cached entry for a symbol at the given price bucket
func (lc *LevelsCache) Invalidate(ctx context.Context, symbol, timeframe string, price float64) error {
	if !lc.config.Enabled || lc.redisClient == nil {
		return nil
	}

	key := lc.buildCacheKey(symbol, timeframe, price)
	start := time.Now()
	err := lc.redisClient.Delete(ctx, key)
	metrics.RecordDBQuery("redis", "delete", time.Since(start), err)
	if err != nil {
		return errors.Wrap(err, "failed to invalidate cache")
	}

	metrics.RecordCacheOperation("evict")
	return nil
}

// buildCacheKey generates a cache key with price bucketing
func (lc *LevelsCache) buildCacheKey(symbol, timeframe string, price float64) string {
	priceBucket := lc.roundToBucket(price)

	keyData := fmt.Sprintf("%s:%s:%.8f", symbol, timeframe, priceBucket)
	hash := sha256.Sum256([]byte(keyData))
	hashStr := fmt.Sprintf("%x", hash[:8])

	return fmt.Sprintf("levels:%s:%s:%s", symbol, timeframe, hashStr)
}

// roundToBucket rounds price to the nearest bucket
func (lc *LevelsCache) roundToBucket(price float64) float64 {
	if price == 0 {
		return 0
	}

	bucketSize := price * lc.config.PriceBucketPct
	return math.Round(price/bucketSize) * bucketSize
}

// isEntryValid checks if a cached entry is still relevant at the current price
func (lc *LevelsCache) isEntryValid(cached *CachedLevels, currentPrice float64) bool {
	if time.Since(cached.Timestamp) > lc.config.TTL*2 {
		return false
	}

	if cached.Price > 0 && currentPrice > 0 {
		priceChange := math.Abs(currentPrice-cached.Price) / cached.Price
		if priceChange > lc.config.InvalidationPriceMovePct {
			lc.log.Debug("Cache entry invalidated by price move",
				"symbol", cached.Symbol,
				"cached_price", cached.Price,
				"current_price", currentPrice,
				"change_pct", priceChange*100,
			)
			return false
		}
	}

	return true
}

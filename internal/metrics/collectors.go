package metrics

import (
	"context"
	"time"

	"strata/pkg/logger"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// CustomCollector collects candle store statistics on scrape
type CustomCollector struct {
	log        *logger.Logger
	clickhouse driver.Conn
	redis      *redis.Client

	// Descriptors
	totalCandles    *prometheus.Desc
	trackedSymbols  *prometheus.Desc
	candleFreshness *prometheus.Desc
	redisKeys       *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, clickhouse driver.Conn, redis *redis.Client) *CustomCollector {
	return &CustomCollector{
		log:        log,
		clickhouse: clickhouse,
		redis:      redis,

		totalCandles: prometheus.NewDesc(
			"strata_ohlcv_rows",
			"Total number of OHLCV rows stored",
			nil, nil,
		),
		trackedSymbols: prometheus.NewDesc(
			"strata_ohlcv_symbols",
			"Number of distinct symbols with stored candles",
			nil, nil,
		),
		candleFreshness: prometheus.NewDesc(
			"strata_ohlcv_last_candle_timestamp",
			"Unix timestamp of the newest candle per symbol",
			[]string{"symbol"}, nil,
		),
		redisKeys: prometheus.NewDesc(
			"strata_redis_keys",
			"Number of keys in the cache database",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalCandles
	ch <- c.trackedSymbols
	ch <- c.candleFreshness
	ch <- c.redisKeys
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectCandleStats(ctx, ch)
	c.collectCandleFreshness(ctx, ch)
	c.collectRedisStats(ctx, ch)
}

func (c *CustomCollector) collectCandleStats(ctx context.Context, ch chan<- prometheus.Metric) {
	var rows, symbols uint64
	row := c.clickhouse.QueryRow(ctx, `SELECT count(), uniqExact(symbol) FROM ohlcv`)
	if err := row.Scan(&rows, &symbols); err != nil {
		c.log.Error("Failed to collect candle stats", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.totalCandles, prometheus.GaugeValue, float64(rows))
	ch <- prometheus.MustNewConstMetric(c.trackedSymbols, prometheus.GaugeValue, float64(symbols))
}

func (c *CustomCollector) collectCandleFreshness(ctx context.Context, ch chan<- prometheus.Metric) {
	type freshness struct {
		Symbol   string    `ch:"symbol"`
		LastOpen time.Time `ch:"last_open"`
	}

	var stats []freshness
	err := c.clickhouse.Select(ctx, &stats, `
		SELECT symbol, max(open_time) AS last_open
		FROM ohlcv
		GROUP BY symbol
	`)
	if err != nil {
		c.log.Error("Failed to collect candle freshness", "error", err)
		return
	}

	for _, stat := range stats {
		ch <- prometheus.MustNewConstMetric(
			c.candleFreshness,
			prometheus.GaugeValue,
			float64(stat.LastOpen.Unix()),
			stat.Symbol,
		)
	}
}

func (c *CustomCollector) collectRedisStats(ctx context.Context, ch chan<- prometheus.Metric) {
	size, err := c.redis.DBSize(ctx).Result()
	if err != nil {
		c.log.Error("Failed to collect redis stats", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.redisKeys, prometheus.GaugeValue, float64(size))
}

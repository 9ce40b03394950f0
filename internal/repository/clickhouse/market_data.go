package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"strata/internal/domain/market_data"
	"strata/internal/metrics"
	"strata/pkg/errors"
)

// Compile-time check
var _ market_data.Repository = (*MarketDataRepository)(nil)

// MarketDataRepository implements market_data.Repository using ClickHouse
type MarketDataRepository struct {
	conn driver.Conn
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(conn driver.Conn) *MarketDataRepository {
	return &MarketDataRepository{conn: conn}
}

// InsertOHLCV inserts OHLCV candles in batch
func (r *MarketDataRepository) InsertOHLCV(ctx context.Context, candles []market_data.OHLCV) error {
	if len(candles) == 0 {
		return nil
	}

	start := time.Now()
	err := r.insertOHLCV(ctx, candles)
	metrics.RecordDBQuery("clickhouse", "insert_ohlcv", time.Since(start), err)
	return err
}

func (r *MarketDataRepository) insertOHLCV(ctx context.Context, candles []market_data.OHLCV) error {
	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO ohlcv (
			symbol, timeframe, open_time, open, high, low, close, volume
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, candle := range candles {
		err := batch.Append(
			candle.Symbol, candle.Timeframe, candle.OpenTime,
			candle.Open, candle.High, candle.Low, candle.Close,
			candle.Volume,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append candle")
		}
	}

	return batch.Send()
}

// GetOHLCV retrieves OHLCV candles with query parameters, oldest first
func (r *MarketDataRepository) GetOHLCV(ctx context.Context, query market_data.OHLCVQuery) ([]market_data.OHLCV, error) {
	var candles []market_data.OHLCV

	sql := `
		SELECT symbol, timeframe, open_time, open, high, low, close, volume
		FROM ohlcv
		WHERE symbol = $1 AND timeframe = $2`

	args := []interface{}{query.Symbol, query.Timeframe}

	if !query.StartTime.IsZero() {
		sql += fmt.Sprintf(` AND open_time >= $%d`, len(args)+1)
		args = append(args, query.StartTime)
	}

	if !query.EndTime.IsZero() {
		sql += fmt.Sprintf(` AND open_time <= $%d`, len(args)+1)
		args = append(args, query.EndTime)
	}

	sql += ` ORDER BY open_time ASC`

	if query.Limit > 0 {
		sql += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, query.Limit)
	}

	start := time.Now()
	err := r.conn.Select(ctx, &candles, sql, args...)
	metrics.RecordDBQuery("clickhouse", "select_ohlcv", time.Since(start), err)
	return candles, err
}

// GetLatestOHLCV retrieves the latest N candles in chronological order,
// which is what the level engine expects as input.
func (r *MarketDataRepository) GetLatestOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market_data.OHLCV, error) {
	var candles []market_data.OHLCV

	sql := `
		SELECT symbol, timeframe, open_time, open, high, low, close, volume
		FROM (
			SELECT symbol, timeframe, open_time, open, high, low, close, volume
			FROM ohlcv
			WHERE symbol = $1 AND timeframe = $2
			ORDER BY open_time DESC
			LIMIT $3
		)
		ORDER BY open_time ASC`

	start := time.Now()
	err := r.conn.Select(ctx, &candles, sql, symbol, timeframe, limit)
	metrics.RecordDBQuery("clickhouse", "select_latest_ohlcv", time.Since(start), err)
	return candles, err
}

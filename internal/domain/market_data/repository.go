package market_data

import (
	"context"
)

// Repository defines the interface for market data access (ClickHouse)
type Repository interface {
	InsertOHLCV(ctx context.Context, candles []OHLCV) error
	GetOHLCV(ctx context.Context, query OHLCVQuery) ([]OHLCV, error)
	GetLatestOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]OHLCV, error)
}

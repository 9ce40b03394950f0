package market_data

import "time"

// OHLCV represents one bar of candlestick data
type OHLCV struct {
	Symbol    string    `ch:"symbol"`
	Timeframe string    `ch:"timeframe"` // 1h, 4h, 1d
	OpenTime  time.Time `ch:"open_time"`
	Open      float64   `ch:"open"`
	High      float64   `ch:"high"`
	Low       float64   `ch:"low"`
	Close     float64   `ch:"close"`
	Volume    float64   `ch:"volume"`
}

// MidPrice returns the bar midpoint, used for volume attribution
func (c OHLCV) MidPrice() float64 {
	return (c.High + c.Low) / 2
}

// OHLCVQuery represents query parameters for OHLCV data
type OHLCVQuery struct {
	Symbol    string
	Timeframe string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

package levels

import (
	"time"

	"strata/internal/domain/market_data"
)

var testBase = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func testDay(n int) time.Time {
	return testBase.AddDate(0, 0, n)
}

// bar builds one daily candle with symmetric high/low around the close
func bar(day int, close, spread, volume float64) market_data.OHLCV {
	return market_data.OHLCV{
		Symbol:    "SPX",
		Timeframe: "1d",
		OpenTime:  testDay(day),
		Open:      close,
		High:      close + spread,
		Low:       close - spread,
		Close:     close,
		Volume:    volume,
	}
}

// flatSeries builds n identical bars
func flatSeries(n int, price float64) []market_data.OHLCV {
	out := make([]market_data.OHLCV, n)
	for i := range out {
		out[i] = bar(i, price, 0, 1000)
	}
	return out
}

// waveSeries builds n bars oscillating around center with the given
// amplitude and period, producing clean swing highs and lows
func waveSeries(n int, center, amplitude float64, period int) []market_data.OHLCV {
	out := make([]market_data.OHLCV, n)
	for i := range out {
		phase := i % period
		var price float64
		half := period / 2
		if phase < half {
			price = center - amplitude + 2*amplitude*float64(phase)/float64(half)
		} else {
			price = center + amplitude - 2*amplitude*float64(phase-half)/float64(half)
		}
		out[i] = bar(i, price, 1, 1000+float64(i%7)*100)
	}
	return out
}

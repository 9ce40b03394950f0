package levels

import (
	"strata/internal/domain/market_data"
)

// DetectSwings extracts swing highs and lows from a chronological price
// series. A bar is a swing high when its high is strictly greater than
// every high in the preceding window bars and at least as great as every
// high in the following window bars; the asymmetry means the earliest
// bar of a tie wins, so adjacent equal extremes never produce duplicate
// swings. Lows mirror this.
//
// A series shorter than 2*window+1 yields no swings; that is a valid
// empty result, not an error.
func DetectSwings(series []market_data.OHLCV, window int) []SwingPoint {
	if window <= 0 || len(series) < 2*window+1 {
		return nil
	}

	swings := make([]SwingPoint, 0)
	for i := window; i < len(series)-window; i++ {
		if isSwingHigh(series, i, window) {
			swings = append(swings, SwingPoint{
				Time:  series[i].OpenTime,
				Price: series[i].High,
				Kind:  SwingHigh,
			})
		}
		if isSwingLow(series, i, window) {
			swings = append(swings, SwingPoint{
				Time:  series[i].OpenTime,
				Price: series[i].Low,
				Kind:  SwingLow,
			})
		}
	}
	return swings
}

func isSwingHigh(series []market_data.OHLCV, i, window int) bool {
	h := series[i].High
	for j := i - window; j < i; j++ {
		if series[j].High >= h {
			return false
		}
	}
	for j := i + 1; j <= i+window; j++ {
		if series[j].High > h {
			return false
		}
	}
	return true
}

func isSwingLow(series []market_data.OHLCV, i, window int) bool {
	l := series[i].Low
	for j := i - window; j < i; j++ {
		if series[j].Low <= l {
			return false
		}
	}
	for j := i + 1; j <= i+window; j++ {
		if series[j].Low < l {
			return false
		}
	}
	return true
}

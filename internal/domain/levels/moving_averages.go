package levels

import (
	"math"

	"github.com/markcheno/go-talib"

	"strata/internal/domain/market_data"
)

// maCandidates computes trailing simple moving averages and emits the
// final value of each as a candidate when it sits within proximityPct
// of the current price. An MA far from price is not an actionable level
// and is omitted; a window longer than the series is skipped.
func maCandidates(series []market_data.OHLCV, windows []int, currentPrice, proximityPct float64) []Candidate {
	if len(series) == 0 || currentPrice <= 0 {
		return nil
	}

	closes := make([]float64, len(series))
	for i, bar := range series {
		closes[i] = bar.Close
	}

	var out []Candidate
	for _, window := range windows {
		if window > len(closes) {
			continue
		}
		sma := talib.Sma(closes, window)
		value := sma[len(sma)-1]
		if math.IsNaN(value) || value <= 0 {
			continue
		}
		if math.Abs(currentPrice-value)/currentPrice > proximityPct {
			continue
		}
		out = append(out, Candidate{
			Price:  value,
			Weight: 1,
			Source: Source{
				Kind:   SourceMovingAverage,
				Period: window,
			},
		})
	}
	return out
}

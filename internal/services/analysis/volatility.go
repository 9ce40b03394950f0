package analysis

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"strata/internal/domain/market_data"
)

// vixSMAWindow is the averaging window for the volatility baseline
const vixSMAWindow = 20

// VolatilityBias summarizes where the volatility index sits relative to
// its recent average. It does not affect level computation; it only
// colors the report so a reader knows how much respect to give the
// nearest levels.
type VolatilityBias struct {
	VixClose float64 `json:"vix_close"`
	VixSMA   float64 `json:"vix_sma"`
	Elevated bool    `json:"elevated"`
	Text     string  `json:"text"`
}

// volatilityBias derives the bias from a chronological VIX series.
// Returns nil when the series is too short for the baseline.
func volatilityBias(vix []market_data.OHLCV) *VolatilityBias {
	if len(vix) < vixSMAWindow {
		return nil
	}

	closes := make([]float64, len(vix))
	for i, c := range vix {
		closes[i] = c.Close
	}

	sma := talib.Sma(closes, vixSMAWindow)
	baseline := sma[len(sma)-1]
	last := closes[len(closes)-1]
	if math.IsNaN(baseline) || baseline <= 0 {
		return nil
	}

	elevated := last > baseline
	var text string
	if elevated {
		text = fmt.Sprintf(
			"VIX %.2f above its %d-day average %.2f: elevated volatility, expect wider swings and deeper tests of support",
			last, vixSMAWindow, baseline,
		)
	} else {
		text = fmt.Sprintf(
			"VIX %.2f at or below its %d-day average %.2f: subdued volatility, levels more likely to hold on first touch",
			last, vixSMAWindow, baseline,
		)
	}

	return &VolatilityBias{
		VixClose: last,
		VixSMA:   baseline,
		Elevated: elevated,
		Text:     text,
	}
}

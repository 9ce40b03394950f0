package levels

import (
	"fmt"
	"sort"
)

// swingPair couples a swing high with a swing low for retracement math
type swingPair struct {
	high  SwingPoint
	low   SwingPoint
	score float64
}

// direction reports whether the pair describes a down move: the high
// came first, price travelled down to the low.
func (p swingPair) downMove() bool {
	return p.high.Time.Before(p.low.Time)
}

// fibCandidates computes retracement candidates for the highest-ranked
// swing pairs. Ratios are measured down from the swing high: ratio r
// maps to high - r*(high-low), so 0% is the high and 100% the low.
// Each pair contributes one candidate per configured ratio strictly
// between 0 and 1; the 0%/100% ratios coincide with the swing points
// themselves and are skipped. Pair direction (whether the high or the
// low came first) only shapes the tag, never the arithmetic. A pair
// with zero price range is degenerate and contributes nothing.
func fibCandidates(swings []SwingPoint, ratios []float64, maxPairs int) []Candidate {
	pairs := rankSwingPairs(swings, maxPairs)

	var out []Candidate
	up, down := 0, 0
	for _, p := range pairs {
		diff := p.high.Price - p.low.Price
		if diff <= 0 {
			continue
		}

		var pairID string
		if p.downMove() {
			down++
			pairID = fmt.Sprintf("Fib_Down_%d", down)
		} else {
			up++
			pairID = fmt.Sprintf("Fib_Up_%d", up)
		}

		for _, ratio := range ratios {
			if ratio <= 0 || ratio >= 1 {
				continue
			}
			out = append(out, Candidate{
				Price:  p.high.Price - ratio*diff,
				Weight: 1,
				Source: Source{
					Kind:   SourceFibonacci,
					Ratio:  ratio,
					PairID: pairID,
				},
			})
		}
	}
	return out
}

// rankSwingPairs selects up to maxPairs swing high/low pairs, preferring
// recent and wide-ranged swings. Each of the most recent maxPairs highs
// is paired with each of the most recent maxPairs lows; pairs are scored
// by recency x range and the top maxPairs win. The explicit score keeps
// the selection policy tunable and testable.
func rankSwingPairs(swings []SwingPoint, maxPairs int) []swingPair {
	var highs, lows []SwingPoint
	for _, s := range swings {
		switch s.Kind {
		case SwingHigh:
			highs = append(highs, s)
		case SwingLow:
			lows = append(lows, s)
		}
	}
	if len(highs) == 0 || len(lows) == 0 {
		return nil
	}

	// Most recent first
	sort.SliceStable(highs, func(i, j int) bool { return highs[i].Time.After(highs[j].Time) })
	sort.SliceStable(lows, func(i, j int) bool { return lows[i].Time.After(lows[j].Time) })

	if len(highs) > maxPairs {
		highs = highs[:maxPairs]
	}
	if len(lows) > maxPairs {
		lows = lows[:maxPairs]
	}

	maxRange := 0.0
	for _, h := range highs {
		for _, l := range lows {
			if r := h.Price - l.Price; r > maxRange {
				maxRange = r
			}
		}
	}
	if maxRange <= 0 {
		return nil
	}

	var pairs []swingPair
	for hi, h := range highs {
		for li, l := range lows {
			if h.Price <= l.Price {
				continue
			}
			p := swingPair{high: h, low: l}
			p.score = pairScore(hi, li, h.Price-l.Price, maxRange)
			pairs = append(pairs, p)
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}
	return pairs
}

// pairScore is the ranking policy: recency weight times range weight.
// highRank/lowRank are 0 for the most recent swing of each kind.
func pairScore(highRank, lowRank int, priceRange, maxRange float64) float64 {
	recency := 1.0 / float64(1+highRank+lowRank)
	return recency * (priceRange / maxRange)
}

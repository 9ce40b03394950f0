package levels

import (
	"sort"
	"time"
)

// priceActionCandidates mines recent swing points for local support and
// resistance. Swings inside the trailing window are grouped by price
// proximity (same tolerance as consolidation); a group touched more than
// once is a consolidation zone and weighs as many touches as it has,
// a single swing is still a remembered high or low with weight one.
func priceActionCandidates(swings []SwingPoint, since time.Time, tolerancePct float64) []Candidate {
	var recent []SwingPoint
	for _, s := range swings {
		if !s.Time.Before(since) {
			recent = append(recent, s)
		}
	}
	if len(recent) == 0 {
		return nil
	}

	var out []Candidate
	for _, kind := range []SwingKind{SwingHigh, SwingLow} {
		var prices []float64
		for _, s := range recent {
			if s.Kind == kind {
				prices = append(prices, s.Price)
			}
		}
		out = append(out, clusterSwings(prices, kind, tolerancePct)...)
	}
	return out
}

// clusterSwings greedily groups sorted swing prices of one kind and
// emits one candidate per group at its mean price.
func clusterSwings(prices []float64, kind SwingKind, tolerancePct float64) []Candidate {
	if len(prices) == 0 {
		return nil
	}
	sort.Float64s(prices)

	var out []Candidate
	sum, count := prices[0], 1

	flush := func() {
		mean := sum / float64(count)
		out = append(out, Candidate{
			Price:  mean,
			Weight: float64(count),
			Source: Source{
				Kind:    SourcePriceAction,
				Touches: count,
				Swing:   kind,
			},
		})
	}

	for _, p := range prices[1:] {
		mean := sum / float64(count)
		if p-mean <= tolerancePct*mean {
			sum += p
			count++
			continue
		}
		flush()
		sum, count = p, 1
	}
	flush()
	return out
}

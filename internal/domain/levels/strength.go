package levels

import (
	"sort"
)

// Factor weights for strength scoring. Volume and price-action evidence
// counts double: those levels were actually traded against, while a
// lone Fibonacci ratio or round number is only a hypothesis.
var sourceKindWeight = map[SourceKind]int{
	SourceFibonacci:     1,
	SourceRoundNumber:   1,
	SourceMovingAverage: 1,
	SourceVolumeCluster: 2,
	SourcePriceAction:   2,
}

// strengthScore computes the weighted factor count of a level: the sum
// of per-kind weights over all member candidates, plus one extra point
// for every confluent Fibonacci ratio beyond the first. Adding any
// candidate can only increase the score.
func strengthScore(l *Level) int {
	score := 0
	fibCount := 0
	for _, c := range l.Candidates {
		w, ok := sourceKindWeight[c.Source.Kind]
		if !ok {
			w = 1
		}
		score += w
		if c.Source.Kind == SourceFibonacci {
			fibCount++
		}
	}
	if fibCount > 1 {
		score += fibCount - 1
	}
	return score
}

// Star thresholds mapping the weighted factor count onto 1..5. The exact
// cut points are a policy choice; the map is strictly monotonic, so more
// confluence never yields fewer stars.
//
//	score >= 8  -> 5
//	score >= 6  -> 4
//	score >= 4  -> 3
//	score >= 2  -> 2
//	otherwise   -> 1
func starsForScore(score int) int {
	switch {
	case score >= 8:
		return 5
	case score >= 6:
		return 4
	case score >= 4:
		return 3
	case score >= 2:
		return 2
	default:
		return 1
	}
}

// scoreAndClassify assigns strength and classification to every level
// and splits them into support and resistance sets. A level strictly
// above the current price is resistance; a level at or below it is
// support (ties go to support). Resistance is ordered nearest-first
// ascending, support nearest-first descending.
func scoreAndClassify(all []Level, currentPrice float64) (support, resistance []Level) {
	for i := range all {
		all[i].Strength = starsForScore(strengthScore(&all[i]))
		if all[i].Price > currentPrice {
			all[i].Classification = Resistance
			resistance = append(resistance, all[i])
		} else {
			all[i].Classification = Support
			support = append(support, all[i])
		}
	}

	sort.SliceStable(resistance, func(i, j int) bool { return resistance[i].Price < resistance[j].Price })
	sort.SliceStable(support, func(i, j int) bool { return support[i].Price > support[j].Price })
	return support, resistance
}

package levels

import (
	"math"
)

// psychCandidates enumerates round-number levels near the current price.
// Steps are price-unit granularities, coarsest first (100, 50, 25); a
// price that is a multiple of a coarser step is claimed by that step
// only, so 5500 is a 100s level, never also a 50s or 25s one.
func psychCandidates(currentPrice float64, steps []int, proximityPct float64) []Candidate {
	if currentPrice <= 0 || len(steps) == 0 {
		return nil
	}

	minPrice := currentPrice * (1 - proximityPct)
	maxPrice := currentPrice * (1 + proximityPct)

	var out []Candidate
	seen := make(map[float64]bool)

	for _, step := range steps {
		fs := float64(step)
		for level := math.Ceil(minPrice/fs) * fs; level <= maxPrice; level += fs {
			if seen[level] {
				continue
			}
			seen[level] = true
			out = append(out, Candidate{
				Price:  level,
				Weight: 1,
				Source: Source{
					Kind: SourceRoundNumber,
					Step: step,
				},
			})
		}
	}
	return out
}

package levels

import (
	"sort"

	"strata/internal/domain/market_data"
)

// VolumeBin is one price bucket of the volume profile
type VolumeBin struct {
	Price  float64 // bin center
	Volume float64
}

// BuildVolumeProfile bins traded volume by price across the observed
// range [min low, max high]. Each bar's full volume is attributed to the
// bin containing its (high+low)/2 midpoint; this is a documented
// simplification of range apportionment, matching how daily bars are
// usually profiled without tick data. Bin boundaries are fully
// determined by the price range and bin count.
//
// A flat series (zero price range) has no meaningful bins; the result
// is nil, which callers treat as "no candidates", not a failure.
func BuildVolumeProfile(series []market_data.OHLCV, binCount int) []VolumeBin {
	if len(series) == 0 || binCount <= 0 {
		return nil
	}

	minPrice := series[0].Low
	maxPrice := series[0].High
	for _, bar := range series {
		if bar.Low < minPrice {
			minPrice = bar.Low
		}
		if bar.High > maxPrice {
			maxPrice = bar.High
		}
	}

	priceRange := maxPrice - minPrice
	if priceRange <= 0 {
		return nil
	}
	binSize := priceRange / float64(binCount)

	volumes := make([]float64, binCount)
	for _, bar := range series {
		idx := int((bar.MidPrice() - minPrice) / binSize)
		if idx < 0 {
			idx = 0
		}
		if idx >= binCount {
			idx = binCount - 1
		}
		volumes[idx] += bar.Volume
	}

	bins := make([]VolumeBin, binCount)
	for i, v := range volumes {
		bins[i] = VolumeBin{
			Price:  minPrice + (float64(i)+0.5)*binSize,
			Volume: v,
		}
	}
	return bins
}

// volumeCandidates selects the topN highest-volume bins as candidates.
// Candidate weight is proportional to the bin's share of total traded
// volume, normalized so the busiest possible bin weighs 1.
func volumeCandidates(series []market_data.OHLCV, binCount, topN int) []Candidate {
	bins := BuildVolumeProfile(series, binCount)
	if bins == nil {
		return nil
	}

	total := 0.0
	for _, b := range bins {
		total += b.Volume
	}
	if total <= 0 {
		return nil
	}

	// Highest volume first; equal bins break ties by price so the
	// selection is deterministic.
	sort.SliceStable(bins, func(i, j int) bool {
		if bins[i].Volume != bins[j].Volume {
			return bins[i].Volume > bins[j].Volume
		}
		return bins[i].Price < bins[j].Price
	})

	if len(bins) > topN {
		bins = bins[:topN]
	}

	maxShare := bins[0].Volume / total

	var out []Candidate
	for _, b := range bins {
		if b.Volume <= 0 {
			continue
		}
		share := b.Volume / total
		out = append(out, Candidate{
			Price:  b.Price,
			Weight: share / maxShare,
			Source: Source{
				Kind:        SourceVolumeCluster,
				VolumeShare: share,
			},
		})
	}
	return out
}

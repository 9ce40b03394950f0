package levels

import (
	"sort"
)

// Consolidate merges candidates into levels by price proximity.
// Candidates are sorted ascending and clustered greedily: a candidate
// joins the current cluster while its price is within tolerancePct of
// the cluster's representative price (inclusive, so two candidates
// exactly tolerance apart share a cluster); otherwise it starts a new
// one. The representative price is the weight-weighted mean of the
// members, updated incrementally as each member joins.
//
// Every candidate lands in exactly one level by construction. Each
// member is within tolerance of the representative AS OF the moment it
// joined; a chain of candidates can pull the mean far enough that the
// final representative ends up more than tolerance away from the
// earliest members. The cluster span is bounded by the chain, not the
// tolerance.
func Consolidate(candidates []Candidate, tolerancePct float64) []Level {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	var out []Level
	cur := newCluster(sorted[0])
	for _, c := range sorted[1:] {
		if c.Price-cur.Price <= tolerancePct*cur.Price {
			cur.add(c)
			continue
		}
		out = append(out, cur)
		cur = newCluster(c)
	}
	out = append(out, cur)
	return out
}

func newCluster(c Candidate) Level {
	return Level{
		Price:      c.Price,
		Weight:     c.Weight,
		Candidates: []Candidate{c},
	}
}

// add folds one more candidate into the cluster without rescanning the
// existing members: the weighted mean is carried forward incrementally.
func (l *Level) add(c Candidate) {
	total := l.Weight + c.Weight
	if total > 0 {
		l.Price = (l.Price*l.Weight + c.Price*c.Weight) / total
	}
	l.Weight = total
	l.Candidates = append(l.Candidates, c)
}

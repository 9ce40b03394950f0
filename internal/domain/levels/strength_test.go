package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelOf(price float64, kinds ...SourceKind) Level {
	l := Level{Price: price}
	for _, k := range kinds {
		l.Candidates = append(l.Candidates, Candidate{Price: price, Weight: 1, Source: Source{Kind: k}})
	}
	return l
}

func TestStrengthScore_KindWeights(t *testing.T) {
	assert.Equal(t, 1, strengthScore(&Level{Candidates: []Candidate{cand(100, 1, SourceFibonacci)}}))
	assert.Equal(t, 1, strengthScore(&Level{Candidates: []Candidate{cand(100, 1, SourceRoundNumber)}}))
	assert.Equal(t, 1, strengthScore(&Level{Candidates: []Candidate{cand(100, 1, SourceMovingAverage)}}))
	assert.Equal(t, 2, strengthScore(&Level{Candidates: []Candidate{cand(100, 1, SourceVolumeCluster)}}))
	assert.Equal(t, 2, strengthScore(&Level{Candidates: []Candidate{cand(100, 1, SourcePriceAction)}}))
}

func TestStrengthScore_FibConfluenceBonus(t *testing.T) {
	// Three confluent ratios: 3 base points plus 2 bonus
	l := levelOf(100, SourceFibonacci, SourceFibonacci, SourceFibonacci)
	assert.Equal(t, 5, strengthScore(&l))

	// A single ratio earns no bonus
	single := levelOf(100, SourceFibonacci)
	assert.Equal(t, 1, strengthScore(&single))
}

func TestStrengthScore_AddingCandidateNeverLowersScore(t *testing.T) {
	l := levelOf(100, SourceVolumeCluster, SourceFibonacci)
	before := strengthScore(&l)

	for _, k := range []SourceKind{SourceFibonacci, SourceRoundNumber, SourceMovingAverage, SourceVolumeCluster, SourcePriceAction} {
		grown := l
		grown.Candidates = append(append([]Candidate{}, l.Candidates...), cand(100, 1, k))
		assert.Greater(t, strengthScore(&grown), before)
	}
}

func TestStarsForScore_Thresholds(t *testing.T) {
	cases := map[int]int{
		0: 1, 1: 1,
		2: 2, 3: 2,
		4: 3, 5: 3,
		6: 4, 7: 4,
		8: 5, 12: 5,
	}
	for score, want := range cases {
		assert.Equal(t, want, starsForScore(score), "score %d", score)
	}
}

func TestStarsForScore_Monotonic(t *testing.T) {
	prev := starsForScore(0)
	for score := 1; score <= 20; score++ {
		cur := starsForScore(score)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestScoreAndClassify_Partition(t *testing.T) {
	all := []Level{
		levelOf(95, SourceFibonacci),
		levelOf(100, SourceRoundNumber), // tie with current price
		levelOf(105, SourceVolumeCluster),
		levelOf(110, SourcePriceAction),
	}

	support, resistance := scoreAndClassify(all, 100)

	require.Len(t, support, 2)
	require.Len(t, resistance, 2)

	// Ties go to support
	assert.InDelta(t, 100.0, support[0].Price, 1e-9)
	assert.Equal(t, Support, support[0].Classification)
	assert.Equal(t, Support, support[1].Classification)
	assert.Equal(t, Resistance, resistance[0].Classification)

	// Support nearest-first descending, resistance nearest-first ascending
	assert.Greater(t, support[0].Price, support[1].Price)
	assert.Less(t, resistance[0].Price, resistance[1].Price)
}

func TestScoreAndClassify_AssignsStrength(t *testing.T) {
	all := []Level{
		levelOf(95, SourceFibonacci),                                        // score 1 -> 1 star
		levelOf(105, SourceVolumeCluster, SourcePriceAction, SourceFibonacci, SourceRoundNumber), // score 6 -> 4 stars
	}

	support, resistance := scoreAndClassify(all, 100)

	require.Len(t, support, 1)
	require.Len(t, resistance, 1)
	assert.Equal(t, 1, support[0].Strength)
	assert.Equal(t, 4, resistance[0].Strength)
}

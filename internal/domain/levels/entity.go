package levels

import (
	"fmt"
	"time"
)

// SwingKind identifies the type of a price-action extremum
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// SwingPoint is a local price extremum over a window of surrounding bars
type SwingPoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Kind  SwingKind `json:"kind"`
}

// SourceKind identifies which generator produced a candidate
type SourceKind string

const (
	SourceFibonacci     SourceKind = "fibonacci"
	SourceVolumeCluster SourceKind = "volume_cluster"
	SourceMovingAverage SourceKind = "moving_average"
	SourceRoundNumber   SourceKind = "round_number"
	SourcePriceAction   SourceKind = "price_action"
)

// Source describes the origin of a candidate level. It is a closed
// tagged variant: Kind selects which payload fields are meaningful.
type Source struct {
	Kind SourceKind `json:"kind"`

	// Fibonacci payload
	Ratio  float64 `json:"ratio,omitempty"`   // 0.382, 0.5, 0.618, ...
	PairID string  `json:"pair_id,omitempty"` // "Fib_Up_1", "Fib_Down_2"

	// MovingAverage payload
	Period int `json:"period,omitempty"`

	// RoundNumber payload
	Step int `json:"step,omitempty"` // 100, 50, 25

	// PriceAction payload
	Touches int       `json:"touches,omitempty"`
	Swing   SwingKind `json:"swing,omitempty"`

	// VolumeCluster payload
	VolumeShare float64 `json:"volume_share,omitempty"` // bin volume / total volume
}

// Describe renders the source as a human-readable tag. Rendering happens
// here, at the presentation boundary; nothing downstream parses these.
func (s Source) Describe() string {
	switch s.Kind {
	case SourceFibonacci:
		return fmt.Sprintf("Fibonacci %.1f%% (%s)", s.Ratio*100, s.PairID)
	case SourceVolumeCluster:
		return "Volume cluster"
	case SourceMovingAverage:
		return fmt.Sprintf("MA_%d support/resistance", s.Period)
	case SourceRoundNumber:
		return fmt.Sprintf("Round number (%ds)", s.Step)
	case SourcePriceAction:
		if s.Touches > 1 {
			return fmt.Sprintf("Previous consolidation (%d touches)", s.Touches)
		}
		if s.Swing == SwingHigh {
			return "Previous swing high"
		}
		return "Previous swing low"
	default:
		return string(s.Kind)
	}
}

// Candidate is a raw level proposal from one generator. Candidates are
// ephemeral: they exist only between generation and consolidation.
type Candidate struct {
	Price  float64 `json:"price"`
	Weight float64 `json:"weight"`
	Source Source  `json:"source"`
}

// Classification splits levels relative to the current price
type Classification string

const (
	Support    Classification = "support"
	Resistance Classification = "resistance"
)

// Level is a consolidated support/resistance level formed by merging
// nearby candidates. Price is the weight-weighted mean of its members.
type Level struct {
	Price          float64        `json:"price"`
	Weight         float64        `json:"weight"`
	Strength       int            `json:"strength"` // 1..5
	Classification Classification `json:"classification"`
	Candidates     []Candidate    `json:"candidates"`
}

// SourceDescriptions returns the deduplicated human-readable tags of
// every contributing candidate, in first-seen order.
func (l *Level) SourceDescriptions() []string {
	seen := make(map[string]bool, len(l.Candidates))
	out := make([]string, 0, len(l.Candidates))
	for _, c := range l.Candidates {
		desc := c.Source.Describe()
		if !seen[desc] {
			seen[desc] = true
			out = append(out, desc)
		}
	}
	return out
}

// Result is the output of one analysis run
type Result struct {
	CurrentPrice float64      `json:"current_price"`
	Resistance   []Level      `json:"resistance"` // ascending, nearest to price first
	Support      []Level      `json:"support"`    // descending, nearest to price first
	Swings       []SwingPoint `json:"swings"`     // chronological, both kinds interleaved
}

// AllLevels returns support and resistance as one slice.
// Every consolidated level appears in exactly one of the two sets.
func (r *Result) AllLevels() []Level {
	out := make([]Level, 0, len(r.Support)+len(r.Resistance))
	out = append(out, r.Support...)
	out = append(out, r.Resistance...)
	return out
}

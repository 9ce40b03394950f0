package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"strata/internal/domain/levels"
	"strata/internal/services/analysis"
)

const defaultMaxLevels = 8

// Formatter renders analysis snapshots as plain-text reports
type Formatter struct {
	maxLevels int
}

// NewFormatter creates a formatter that prints at most maxLevels levels
// per side. Non-positive maxLevels falls back to the default.
func NewFormatter(maxLevels int) *Formatter {
	if maxLevels <= 0 {
		maxLevels = defaultMaxLevels
	}
	return &Formatter{maxLevels: maxLevels}
}

// Levels renders the technical levels report
func (f *Formatter) Levels(snap *analysis.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Technical Levels Report - %s\n", snap.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Symbol: %s (%s)\n", snap.Symbol, snap.Timeframe)
	fmt.Fprintf(&b, "Current Price: %.2f\n", snap.Result.CurrentPrice)
	fmt.Fprintf(&b, "Data: %d candles, total volume %s\n",
		snap.CandleCount, humanize.SIWithDigits(snap.TotalVolume, 1, ""))
	b.WriteString("\n")

	if snap.Volatility != nil {
		fmt.Fprintf(&b, "Volatility: %s\n\n", snap.Volatility.Text)
	}

	b.WriteString("Resistance Levels:\n")
	f.writeLevels(&b, snap.Result.Resistance)
	b.WriteString("\n")

	b.WriteString("Support Levels:\n")
	f.writeLevels(&b, snap.Result.Support)

	b.WriteString("\nStrength Indicator: * (weak) to ***** (very strong)\n")
	return b.String()
}

func (f *Formatter) writeLevels(b *strings.Builder, lvls []levels.Level) {
	if len(lvls) == 0 {
		b.WriteString("(none)\n")
		return
	}

	for i, l := range lvls {
		if i >= f.maxLevels {
			break
		}
		fmt.Fprintf(b, "%.2f %s - %s\n",
			l.Price,
			strings.Repeat("*", l.Strength),
			strings.Join(l.SourceDescriptions(), ", "),
		)
	}
}

// SwingPoints renders the swing points report: the raw extrema behind
// the Fibonacci and price-action candidates, most recent first
func (f *Formatter) SwingPoints(snap *analysis.Snapshot) string {
	var b strings.Builder
	rule := strings.Repeat("-", 60)

	fmt.Fprintf(&b, "Swing Points Analysis - %s\n", snap.GeneratedAt.Format("2006-01-02"))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	highs, lows := splitSwings(snap.Result.Swings)

	b.WriteString("SWING HIGHS (used for Fibonacci calculations)\n")
	b.WriteString(rule + "\n")
	writeSwings(&b, highs)
	b.WriteString("\n")

	b.WriteString("SWING LOWS (used for Fibonacci calculations)\n")
	b.WriteString(rule + "\n")
	writeSwings(&b, lows)

	b.WriteString("\nNote: Fibonacci retracements are calculated using combinations\n")
	b.WriteString("of these swing highs and lows, prioritizing recent swings.\n")
	return b.String()
}

func splitSwings(swings []levels.SwingPoint) (highs, lows []levels.SwingPoint) {
	for _, s := range swings {
		if s.Kind == levels.SwingHigh {
			highs = append(highs, s)
		} else {
			lows = append(lows, s)
		}
	}

	// Most recent first
	sort.SliceStable(highs, func(i, j int) bool { return highs[i].Time.After(highs[j].Time) })
	sort.SliceStable(lows, func(i, j int) bool { return lows[i].Time.After(lows[j].Time) })
	return highs, lows
}

func writeSwings(b *strings.Builder, swings []levels.SwingPoint) {
	if len(swings) == 0 {
		b.WriteString("No significant swing points identified in the current data\n")
		return
	}
	for _, s := range swings {
		fmt.Fprintf(b, "%s: %.2f\n", s.Time.Format("2006-01-02"), s.Price)
	}
}

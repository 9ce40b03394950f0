package events

import (
	"time"

	"strata/internal/domain/levels"
)

// LevelsComputedEvent is emitted after every successful analysis run
type LevelsComputedEvent struct {
	RunID        string         `json:"run_id"`
	Symbol       string         `json:"symbol"`
	Timeframe    string         `json:"timeframe"`
	GeneratedAt  time.Time      `json:"generated_at"`
	CurrentPrice float64        `json:"current_price"`
	Support      []levels.Level `json:"support"`
	Resistance   []levels.Level `json:"resistance"`
	FromCache    bool           `json:"from_cache"`
}

// AnalysisFailedEvent is emitted when a run cannot produce levels
type AnalysisFailedEvent struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	FailedAt  time.Time `json:"failed_at"`
	Error     string    `json:"error"`
}

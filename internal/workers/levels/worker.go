package levels

import (
	"context"
	"time"

	"strata/internal/events"
	"strata/internal/services/analysis"
	"strata/internal/services/report"
	"strata/internal/workers"
	"strata/pkg/errors"
)

// Worker periodically recomputes level sets for the configured symbols,
// writes the text reports and publishes the results
type Worker struct {
	*workers.BaseWorker
	service   *analysis.Service
	formatter *report.Formatter
	writer    *report.Writer
	publisher *events.Publisher
	symbols   []string
}

// NewWorker creates the levels worker. publisher may be nil when Kafka
// is disabled; writer may be nil to skip report files.
func NewWorker(
	service *analysis.Service,
	formatter *report.Formatter,
	writer *report.Writer,
	publisher *events.Publisher,
	symbols []string,
	interval time.Duration,
	enabled bool,
) *Worker {
	return &Worker{
		BaseWorker: workers.NewBaseWorker("levels", interval, enabled),
		service:    service,
		formatter:  formatter,
		writer:     writer,
		publisher:  publisher,
		symbols:    symbols,
	}
}

// Run executes one iteration: analyze every configured symbol. One
// symbol failing does not stop the rest; the first error is returned
// after all symbols have been attempted.
func (w *Worker) Run(ctx context.Context) error {
	w.Log().Debug("Levels worker: starting iteration", "symbols", len(w.symbols))

	var firstErr error
	for _, symbol := range w.symbols {
		if err := w.analyzeSymbol(ctx, symbol); err != nil {
			w.Log().Error("Failed to analyze symbol", "symbol", symbol, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	w.Log().Debug("Levels worker: iteration complete")
	return firstErr
}

func (w *Worker) analyzeSymbol(ctx context.Context, symbol string) error {
	snap, err := w.service.Analyze(ctx, symbol)
	if err != nil {
		w.publishFailure(ctx, symbol, err)
		return errors.Wrapf(err, "analysis failed for %s", symbol)
	}

	if w.writer != nil && !snap.FromCache {
		if _, err := w.writer.SaveLevels(w.formatter.Levels(snap), symbol, snap.GeneratedAt); err != nil {
			w.Log().Error("Failed to save levels report", "symbol", symbol, "error", err)
		}
		if _, err := w.writer.SaveSwingPoints(w.formatter.SwingPoints(snap), symbol, snap.GeneratedAt); err != nil {
			w.Log().Error("Failed to save swing points report", "symbol", symbol, "error", err)
		}
	}

	return w.publisher.PublishLevelsComputed(ctx, &events.LevelsComputedEvent{
		RunID:        snap.RunID,
		Symbol:       snap.Symbol,
		Timeframe:    snap.Timeframe,
		GeneratedAt:  snap.GeneratedAt,
		CurrentPrice: snap.Result.CurrentPrice,
		Support:      snap.Result.Support,
		Resistance:   snap.Result.Resistance,
		FromCache:    snap.FromCache,
	})
}

func (w *Worker) publishFailure(ctx context.Context, symbol string, cause error) {
	err := w.publisher.PublishAnalysisFailed(ctx, &events.AnalysisFailedEvent{
		Symbol:   symbol,
		FailedAt: time.Now(),
		Error:    cause.Error(),
	})
	if err != nil {
		w.Log().Error("Failed to publish analysis failure", "symbol", symbol, "error", err)
	}
}

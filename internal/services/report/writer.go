package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"strata/internal/metrics"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

// Writer saves rendered reports to the output directory
type Writer struct {
	dir string
	log *logger.Logger
}

// NewWriter creates a report writer rooted at dir, creating it if needed
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "outputs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
	}

	return &Writer{
		dir: dir,
		log: logger.Get().With("component", "report_writer"),
	}, nil
}

// SaveLevels writes the levels report for a symbol, returning the file path
func (w *Writer) SaveLevels(content, symbol string, date time.Time) (string, error) {
	path, err := w.save(content, symbol, "levels", date)
	metrics.RecordReportWritten("levels", err)
	return path, err
}

// SaveSwingPoints writes the swing points report for a symbol
func (w *Writer) SaveSwingPoints(content, symbol string, date time.Time) (string, error) {
	path, err := w.save(content, symbol, "swing_points", date)
	metrics.RecordReportWritten("swings", err)
	return path, err
}

func (w *Writer) save(content, symbol, name string, date time.Time) (string, error) {
	// Index tickers carry a leading caret that has no place in a filename
	clean := strings.ReplaceAll(symbol, "^", "")
	filename := fmt.Sprintf("%s_%s_%s.txt", clean, name, date.Format("2006-01-02"))
	path := filepath.Join(w.dir, filename)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", path)
	}

	w.log.Info("Report saved", "path", path)
	return path, nil
}

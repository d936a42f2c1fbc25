package writer

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

var csvHeader = []string{"time", "symbol", "open", "high", "low", "close", "volume"}

// CSVWriter streams bars into a CSV file with a fixed header row.
type CSVWriter struct {
	file       *os.File
	writer     *csv.Writer
	outputPath string
}

// NewCSVWriter creates a writer that exports to the given CSV path.
func NewCSVWriter(outputPath string) MarketDataWriter {
	return &CSVWriter{
		outputPath: outputPath,
	}
}

// Initialize creates the output file and writes the header row.
func (w *CSVWriter) Initialize() error {
	f, err := os.Create(w.outputPath)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create CSV file %s", w.outputPath)
	}

	w.file = f
	w.writer = csv.NewWriter(f)

	if err := w.writer.Write(csvHeader); err != nil {
		f.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to write CSV header")
	}

	return nil
}

// Write appends a single bar as a CSV row.
func (w *CSVWriter) Write(data types.MarketData) error {
	if w.writer == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	record := []string{
		data.Time.UTC().Format(time.RFC3339),
		data.Symbol,
		strconv.FormatFloat(data.Open, 'f', -1, 64),
		strconv.FormatFloat(data.High, 'f', -1, 64),
		strconv.FormatFloat(data.Low, 'f', -1, 64),
		strconv.FormatFloat(data.Close, 'f', -1, 64),
		strconv.FormatFloat(data.Volume, 'f', -1, 64),
	}

	if err := w.writer.Write(record); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to write CSV row")
	}

	return nil
}

// Finalize flushes buffered rows to disk.
func (w *CSVWriter) Finalize() (string, error) {
	if w.writer == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	w.writer.Flush()

	if err := w.writer.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to flush CSV")
	}

	return w.outputPath, nil
}

// Close flushes and closes the output file.
func (w *CSVWriter) Close() error {
	if w.writer != nil {
		w.writer.Flush()
		w.writer = nil
	}

	if w.file != nil {
		err := w.file.Close()
		w.file = nil

		if err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to close CSV file")
		}
	}

	return nil
}

// GetOutputPath returns the configured CSV output path.
func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}

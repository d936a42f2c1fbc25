package writer

import (
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

// DuckDBWriter buffers bars in an in-memory DuckDB table inside one
// transaction and exports them as a Parquet file on Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a writer that exports to the given Parquet path.
func NewDuckDBWriter(outputPath string) MarketDataWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens the in-memory database, creates the staging table, and
// prepares the insert statement inside a transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to open DuckDB connection")
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to create staging table")
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to begin transaction")
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to prepare insert statement")
	}

	return nil
}

// Write stages a single bar inside the open transaction.
func (w *DuckDBWriter) Write(data types.MarketData) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(
		uuid.New().String(),
		data.Time,
		data.Symbol,
		data.Open,
		data.High,
		data.Low,
		data.Close,
		data.Volume,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to insert bar")
	}

	return nil
}

// Finalize commits the transaction and exports the staged bars to Parquet.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to commit transaction")
	}

	w.tx = nil

	_, err = w.db.Exec(`COPY market_data TO '` + w.outputPath + `' (FORMAT PARQUET)`)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to export Parquet to %s", w.outputPath)
	}

	return w.outputPath, nil
}

// Close releases the statement, rolls back any open transaction, and closes
// the database.
func (w *DuckDBWriter) Close() error {
	var firstErr error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			firstErr = errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to close statement")
		}

		w.stmt = nil
	}

	if w.tx != nil {
		// Finalize was not reached, discard the staged rows
		_ = w.tx.Rollback()
		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to close database")
		}

		w.db = nil
	}

	return firstErr
}

// GetOutputPath returns the configured Parquet output path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

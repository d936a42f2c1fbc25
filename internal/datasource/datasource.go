package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

type Interval string

const (
	Interval1d Interval = "1d"
	Interval1w Interval = "1wk"
	Interval1M Interval = "1mo"
)

// SQLResult represents a row of data from a SQL query
type SQLResult struct {
	Values map[string]interface{}
}

type DataSource interface {
	// Initialize initializes the data source with the given data path in parquet format.
	// The path may contain a glob so multiple downloaded files can be combined.
	Initialize(path string) error
	// ReadAll reads all the data from the data source and yields it to the caller
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool)
	// GetRange reads all bars for a symbol inside [start, end], oldest first
	GetRange(symbol string, start time.Time, end time.Time) ([]types.MarketData, error)
	// GetPreviousNumberOfDataPoints reads up to count bars for a symbol at or
	// before end, oldest first. Returns an InsufficientDataError when fewer
	// than count bars exist.
	GetPreviousNumberOfDataPoints(end time.Time, symbol string, count int) ([]types.MarketData, error)
	// ReadLastData reads the last bar from the data source for a specific symbol
	ReadLastData(symbol string) (types.MarketData, error)
	// Symbols lists the distinct symbols present in the data source
	Symbols() ([]string, error)
	// Count returns the number of rows in the data source
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// ExecuteSQL executes a raw SQL query and returns the results as SQLResult
	ExecuteSQL(query string, params ...interface{}) ([]SQLResult, error)
	// Close closes the data source and releases any resources
	Close() error
}

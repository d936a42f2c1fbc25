package datasource

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/tadawul-lab/tasi-analyzer/internal/logger"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBDataSource creates a new DuckDB data source instance backed by the
// database at path. Use ":memory:" for an in-process database. This is
// distinct from Initialize() which attaches downloaded market data.
func NewDuckDBDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource. The path may contain a glob such as
// "data/*.parquet" so that every downloaded file is visible as one table.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`)
	if err != nil {
		return fmt.Errorf("failed to drop existing view: %w", err)
	}

	// Squirrel doesn't support CREATE VIEW, use raw SQL
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM read_parquet('%s');
	`, path)

	_, err = d.db.Exec(query)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to attach parquet data at %s", path)
	}

	return nil
}

// ReadAll implements DataSource. Bars are yielded oldest first across all symbols.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		builder := d.sq.
			Select("time", "symbol", "open", "high", "low", "close", "volume").
			From("market_data").
			OrderBy("time ASC", "symbol ASC")

		if start.IsSome() {
			builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
		}

		if end.IsSome() {
			builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
		}

		query, args, err := builder.ToSql()
		if err != nil {
			yield(types.MarketData{}, fmt.Errorf("failed to build query: %w", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, err, "failed to read market data"))

			return
		}
		defer rows.Close()

		for rows.Next() {
			data, err := scanMarketData(rows)
			if err != nil {
				yield(types.MarketData{}, err)

				return
			}

			if !yield(data, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, fmt.Errorf("error iterating rows: %w", err))
		}
	}
}

// GetRange implements DataSource.
func (d *DuckDBDataSource) GetRange(symbol string, start time.Time, end time.Time) ([]types.MarketData, error) {
	d.logger.Debug("Getting range",
		zap.String("symbol", symbol),
		zap.Time("start", start),
		zap.Time("end", end))

	query, args, err := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.And{
			squirrel.Eq{"symbol": symbol},
			squirrel.GtOrEq{"time": start},
			squirrel.LtOrEq{"time": end},
		}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return d.queryMarketData(query, args...)
}

// GetPreviousNumberOfDataPoints implements DataSource.
func (d *DuckDBDataSource) GetPreviousNumberOfDataPoints(end time.Time, symbol string, count int) ([]types.MarketData, error) {
	d.logger.Debug("Getting previous data points",
		zap.Time("end", end),
		zap.String("symbol", symbol),
		zap.Int("count", count))

	query, args, err := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.And{
			squirrel.Eq{"symbol": symbol},
			squirrel.LtOrEq{"time": end},
		}).
		OrderBy("time DESC").
		Limit(uint64(count)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := d.queryMarketData(query, args...)
	if err != nil {
		return nil, err
	}

	// Reverse the slice to get chronological order (oldest to newest)
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	if len(result) < count {
		return result, errors.NewInsufficientDataErrorf(count, len(result), symbol,
			"insufficient data points for symbol %s: requested %d, got %d", symbol, count, len(result))
	}

	return result, nil
}

// ReadLastData implements DataSource.
func (d *DuckDBDataSource) ReadLastData(symbol string) (types.MarketData, error) {
	query, args, err := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return types.MarketData{}, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := d.queryMarketData(query, args...)
	if err != nil {
		return types.MarketData{}, err
	}

	if len(result) == 0 {
		return types.MarketData{}, errors.Newf(errors.ErrCodeDataNotFound, "no market data found for symbol %s", symbol)
	}

	return result[0], nil
}

// Symbols implements DataSource.
func (d *DuckDBDataSource) Symbols() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT symbol FROM market_data ORDER BY symbol`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, err, "failed to list symbols")
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From("market_data")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// ExecuteSQL implements DataSource.
func (d *DuckDBDataSource) ExecuteSQL(query string, params ...interface{}) ([]SQLResult, error) {
	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, err, "failed to execute query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []SQLResult

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowValues := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			rowValues[column] = values[i]
		}

		results = append(results, SQLResult{Values: rowValues})
	}

	return results, rows.Err()
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func (d *DuckDBDataSource) queryMarketData(query string, args ...interface{}) ([]types.MarketData, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, err, "failed to query market data")
	}
	defer rows.Close()

	var result []types.MarketData

	for rows.Next() {
		data, err := scanMarketData(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, data)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func scanMarketData(rows *sql.Rows) (types.MarketData, error) {
	var (
		timestamp                      time.Time
		symbol                         string
		open, high, low, close, volume float64
	)

	if err := rows.Scan(&timestamp, &symbol, &open, &high, &low, &close, &volume); err != nil {
		return types.MarketData{}, fmt.Errorf("failed to scan row: %w", err)
	}

	return types.MarketData{
		Id:     "",
		Symbol: symbol,
		Time:   timestamp,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}, nil
}

package datasource

import (
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

// MemoryDataSource keeps all bars in memory, indexed by symbol. It serves
// analysis runs that fetch straight from a provider without touching disk,
// and doubles as the test double for the DuckDB data source.
type MemoryDataSource struct {
	data map[string][]types.MarketData
	mu   sync.RWMutex
}

// NewMemoryDataSource creates an empty in-memory data source.
func NewMemoryDataSource() *MemoryDataSource {
	return &MemoryDataSource{
		data: make(map[string][]types.MarketData),
		mu:   sync.RWMutex{},
	}
}

// Add stores bars, keeping each symbol's series sorted by time ascending.
func (m *MemoryDataSource) Add(bars ...types.MarketData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, bar := range bars {
		m.data[bar.Symbol] = append(m.data[bar.Symbol], bar)
	}

	for symbol := range m.data {
		series := m.data[symbol]
		sort.Slice(series, func(i, j int) bool {
			return series[i].Time.Before(series[j].Time)
		})
	}
}

// Initialize implements DataSource. The in-memory source has no backing file.
func (m *MemoryDataSource) Initialize(path string) error {
	return nil
}

// ReadAll implements DataSource.
func (m *MemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	m.mu.RLock()

	var all []types.MarketData
	for _, series := range m.data {
		all = append(all, series...)
	}

	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Time.Equal(all[j].Time) {
			return all[i].Symbol < all[j].Symbol
		}

		return all[i].Time.Before(all[j].Time)
	})

	return func(yield func(types.MarketData, error) bool) {
		for _, bar := range all {
			if !inRange(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// GetRange implements DataSource.
func (m *MemoryDataSource) GetRange(symbol string, start time.Time, end time.Time) ([]types.MarketData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []types.MarketData

	for _, bar := range m.data[symbol] {
		if bar.Time.Before(start) || bar.Time.After(end) {
			continue
		}

		result = append(result, bar)
	}

	return result, nil
}

// GetPreviousNumberOfDataPoints implements DataSource.
func (m *MemoryDataSource) GetPreviousNumberOfDataPoints(end time.Time, symbol string, count int) ([]types.MarketData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series := m.data[symbol]

	var eligible []types.MarketData

	for _, bar := range series {
		if !bar.Time.After(end) {
			eligible = append(eligible, bar)
		}
	}

	if len(eligible) > count {
		eligible = eligible[len(eligible)-count:]
	}

	if len(eligible) < count {
		return eligible, errors.NewInsufficientDataErrorf(count, len(eligible), symbol,
			"insufficient data points for symbol %s: requested %d, got %d", symbol, count, len(eligible))
	}

	return eligible, nil
}

// ReadLastData implements DataSource.
func (m *MemoryDataSource) ReadLastData(symbol string) (types.MarketData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series := m.data[symbol]
	if len(series) == 0 {
		return types.MarketData{}, errors.Newf(errors.ErrCodeDataNotFound, "no market data found for symbol %s", symbol)
	}

	return series[len(series)-1], nil
}

// Symbols implements DataSource.
func (m *MemoryDataSource) Symbols() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.data))
	for symbol := range m.data {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols, nil
}

// Count implements DataSource.
func (m *MemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0

	for _, series := range m.data {
		for _, bar := range series {
			if inRange(bar.Time, start, end) {
				count++
			}
		}
	}

	return count, nil
}

// ExecuteSQL implements DataSource. The in-memory source has no SQL engine.
func (m *MemoryDataSource) ExecuteSQL(query string, params ...interface{}) ([]SQLResult, error) {
	return nil, errors.New(errors.ErrCodeQueryFailed, "memory data source does not support SQL queries")
}

// Close implements DataSource.
func (m *MemoryDataSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]types.MarketData)

	return nil
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}

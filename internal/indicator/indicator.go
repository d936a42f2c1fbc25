package indicator

import (
	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

type IndicatorContext struct {
	DataSource        datasource.DataSource
	IndicatorRegistry IndicatorRegistry
}

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// GetSignal evaluates the indicator against the latest bar and returns a trading signal
	GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error)
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// RawValue returns the raw value of the indicator
	RawValue(params ...any) (float64, error)
	Config(params ...any) error
}

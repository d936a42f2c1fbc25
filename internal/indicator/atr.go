package indicator

import (
	"fmt"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

// ATR implements the Average True Range volatility indicator.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with default configuration.
func NewATR() Indicator {
	return &ATR{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	a.period = period

	return nil
}

// GetSignal reports the current volatility reading. ATR measures range, not
// direction, so the signal type is always no-action.
func (a *ATR) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	atrValue, err := a.RawValue(marketData.Symbol, marketData.Time, ctx)
	if err != nil {
		return types.Signal{}, err
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   types.SignalTypeNoAction,
		Name:   string(a.Name()),
		Reason: fmt.Sprintf("ATR volatility reading (value=%.4f)", atrValue),
		RawValue: map[string]float64{
			"atr": atrValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: a.Name(),
	}, nil
}

// RawValue returns the latest ATR value.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext).
func (a *ATR) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, a.period+1)
	if err != nil {
		return 0, fmt.Errorf("failed to get historical data: %w", err)
	}

	points, err := ATRSeries(historicalData, a.period)
	if err != nil {
		return 0, err
	}

	return points[len(points)-1].Value, nil
}

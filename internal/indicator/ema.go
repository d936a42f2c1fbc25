package indicator

import (
	"fmt"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

// EMA indicator implements Exponential Moving Average calculation.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
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

	e.period = period

	return nil
}

// GetSignal calculates the EMA for the latest bar. Like the SMA, a single
// EMA value carries no entry or exit rule on its own.
func (e *EMA) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	emaValue, err := e.RawValue(marketData.Symbol, marketData.Time, ctx, e.period)
	if err != nil {
		return types.Signal{}, fmt.Errorf("failed to calculate EMA: %w", err)
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   types.SignalTypeNoAction,
		Name:   string(e.Name()),
		Reason: "EMA indicator calculated",
		RawValue: map[string]float64{
			"ema": emaValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: e.Name(),
	}, nil
}

// RawValue calculates the EMA value for a given symbol and time.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext), period (int, optional).
func (e *EMA) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	period := e.period

	if len(params) >= 4 {
		p, ok := params[3].(int)
		if !ok {
			return 0, fmt.Errorf("invalid type for period parameter, expected int")
		}

		period = p
	}

	// Fetch extra history so the smoothing has bars to converge over
	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, period*2)
	if err != nil && len(historicalData) < period {
		return 0, fmt.Errorf("failed to get historical data: %w", err)
	}

	points, err := EMASeries(historicalData, period)
	if err != nil {
		return 0, err
	}

	return points[len(points)-1].Value, nil
}

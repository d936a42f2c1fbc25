package indicator

import (
	"fmt"
	"time"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

// SMA indicator implements Simple Moving Average calculation.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with default configuration.
func NewSMA() Indicator {
	return &SMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (m *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Expected parameters: period (int).
func (m *SMA) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		// Try to convert from float first
		periodFloat, ok := params[0].(float64)
		if !ok {
			return fmt.Errorf("invalid type for period parameter, expected int or float")
		}

		period = int(periodFloat)
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	m.period = period

	return nil
}

// GetSignal calculates the SMA for the latest bar. The SMA alone carries no
// entry or exit rule, so the signal type is always no-action.
func (m *SMA) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	smaValue, err := m.RawValue(marketData.Symbol, marketData.Time, ctx, m.period)
	if err != nil {
		return types.Signal{}, fmt.Errorf("failed to calculate SMA: %w", err)
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   types.SignalTypeNoAction,
		Name:   string(m.Name()),
		Reason: "SMA indicator calculated",
		RawValue: map[string]float64{
			"sma": smaValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: m.Name(),
	}, nil
}

// RawValue calculates the SMA value for a given symbol and time.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext), period (int, optional).
func (m *SMA) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	period := m.period

	if len(params) >= 4 {
		p, ok := params[3].(int)
		if !ok {
			return 0, fmt.Errorf("invalid type for period parameter, expected int")
		}

		period = p
	}

	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, period)
	if err != nil {
		return 0, fmt.Errorf("failed to get historical data: %w", err)
	}

	points, err := SMASeries(historicalData, period)
	if err != nil {
		return 0, err
	}

	return points[len(points)-1].Value, nil
}

// parseRawValueParams extracts the common leading RawValue parameters shared
// by all indicators: symbol, current time, and the indicator context.
func parseRawValueParams(params ...any) (string, time.Time, IndicatorContext, error) {
	if len(params) < 3 {
		return "", time.Time{}, IndicatorContext{}, fmt.Errorf("RawValue requires at least 3 parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext)")
	}

	symbol, ok := params[0].(string)
	if !ok {
		return "", time.Time{}, IndicatorContext{}, fmt.Errorf("invalid type for symbol parameter, expected string")
	}

	currentTime, ok := params[1].(time.Time)
	if !ok {
		return "", time.Time{}, IndicatorContext{}, fmt.Errorf("invalid type for currentTime parameter, expected time.Time")
	}

	ctx, ok := params[2].(IndicatorContext)
	if !ok {
		return "", time.Time{}, IndicatorContext{}, fmt.Errorf("invalid type for ctx parameter, expected IndicatorContext")
	}

	return symbol, currentTime, ctx, nil
}

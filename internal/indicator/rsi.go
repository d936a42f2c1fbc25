package indicator

import (
	"fmt"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period            int
	rsiLowerThreshold float64
	rsiUpperThreshold float64
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period:            14, // Default period
		rsiLowerThreshold: 30,
		rsiUpperThreshold: 70,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int),
// optionally followed by lower and upper thresholds (float64).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return fmt.Errorf("Config expects at least 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	r.period = period

	if len(params) >= 2 {
		threshold, ok := params[1].(float64)
		if !ok {
			return fmt.Errorf("invalid type for threshold parameter, expected float64")
		}

		r.rsiLowerThreshold = threshold
	}

	if len(params) >= 3 {
		threshold, ok := params[2].(float64)
		if !ok {
			return fmt.Errorf("invalid type for threshold parameter, expected float64")
		}

		r.rsiUpperThreshold = threshold
	}

	return nil
}

// GetSignal calculates the RSI signal: oversold below the lower threshold
// produces a buy, overbought above the upper threshold produces a sell.
func (r *RSI) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	rsiValue, err := r.RawValue(marketData.Symbol, marketData.Time, ctx, r.period)
	if err != nil {
		return types.Signal{}, err
	}

	signalType := types.SignalTypeNoAction
	reason := "No signal"

	if rsiValue < r.rsiLowerThreshold {
		signalType = types.SignalTypeBuy
		reason = fmt.Sprintf("RSI oversold (value=%.2f)", rsiValue)
	} else if rsiValue > r.rsiUpperThreshold {
		signalType = types.SignalTypeSell
		reason = fmt.Sprintf("RSI overbought (value=%.2f)", rsiValue)
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   signalType,
		Name:   string(r.Name()),
		Reason: reason,
		RawValue: map[string]float64{
			"rsi": rsiValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: r.Name(),
	}, nil
}

// RawValue implements the Indicator interface.
func (r *RSI) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	period := r.period

	if len(params) >= 4 {
		p, ok := params[3].(int)
		if !ok {
			return 0, fmt.Errorf("invalid type for period parameter, expected int")
		}

		period = p
	}

	// Fetch extra history so Wilder's smoothing has bars to converge over
	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, period*2+1)
	if err != nil && len(historicalData) < period+1 {
		return 0, fmt.Errorf("failed to get historical data for symbol %s: %w", symbol, err)
	}

	points, err := RSISeries(historicalData, period)
	if err != nil {
		return 0, err
	}

	return points[len(points)-1].Value, nil
}

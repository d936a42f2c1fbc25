package indicator

import (
	"fmt"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

// Momentum implements the price momentum indicator: the difference between
// the current close and the close period bars earlier.
type Momentum struct {
	period int
}

// NewMomentum creates a new Momentum indicator with default configuration.
func NewMomentum() Indicator {
	return &Momentum{
		period: 10, // Default period
	}
}

// Name returns the name of the indicator.
func (m *Momentum) Name() types.IndicatorType {
	return types.IndicatorTypeMomentum
}

// Config configures the Momentum indicator. Expected parameters: period (int).
func (m *Momentum) Config(params ...any) error {
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

	m.period = period

	return nil
}

// GetSignal reports the current momentum reading without an entry rule.
func (m *Momentum) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	momValue, err := m.RawValue(marketData.Symbol, marketData.Time, ctx)
	if err != nil {
		return types.Signal{}, err
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   types.SignalTypeNoAction,
		Name:   string(m.Name()),
		Reason: fmt.Sprintf("Momentum reading (value=%.4f)", momValue),
		RawValue: map[string]float64{
			"momentum": momValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: m.Name(),
	}, nil
}

// RawValue returns the latest momentum value.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext).
func (m *Momentum) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, m.period+1)
	if err != nil {
		return 0, fmt.Errorf("failed to get historical data: %w", err)
	}

	points, err := MomentumSeries(historicalData, m.period)
	if err != nil {
		return 0, err
	}

	return points[len(points)-1].Value, nil
}

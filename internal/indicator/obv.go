package indicator

import (
	"fmt"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

// OBV implements the On-Balance Volume indicator, a cumulative measure of
// volume flowing into or out of a security.
type OBV struct {
	lookback int
}

// NewOBV creates a new OBV indicator with default configuration.
func NewOBV() Indicator {
	return &OBV{
		lookback: 50, // Bars of history to accumulate over
	}
}

// Name returns the name of the indicator.
func (o *OBV) Name() types.IndicatorType {
	return types.IndicatorTypeOBV
}

// Config configures the OBV indicator. Expected parameters: lookback (int).
func (o *OBV) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: lookback (int)")
	}

	lookback, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for lookback parameter, expected int")
	}

	if lookback <= 0 {
		return fmt.Errorf("lookback must be a positive integer, got %d", lookback)
	}

	o.lookback = lookback

	return nil
}

// GetSignal reports the current OBV reading. OBV is interpreted relative to
// its own trend, so the signal type is always no-action.
func (o *OBV) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	obvValue, err := o.RawValue(marketData.Symbol, marketData.Time, ctx)
	if err != nil {
		return types.Signal{}, err
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   types.SignalTypeNoAction,
		Name:   string(o.Name()),
		Reason: fmt.Sprintf("OBV reading (value=%.0f)", obvValue),
		RawValue: map[string]float64{
			"obv": obvValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: o.Name(),
	}, nil
}

// RawValue returns the OBV accumulated over the lookback window.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext).
func (o *OBV) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, o.lookback)
	if err != nil && len(historicalData) == 0 {
		return 0, fmt.Errorf("failed to get historical data: %w", err)
	}

	points, err := OBVSeries(historicalData)
	if err != nil {
		return 0, err
	}

	return points[len(points)-1].Value, nil
}

package indicator

import (
	"fmt"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 1 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be greater than 1, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidStdDev, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// GetSignal generates trading signals based on Bollinger Bands: a close
// below the lower band produces a buy, a close above the upper band a sell.
func (bb *BollingerBands) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(marketData.Time, marketData.Symbol, bb.period)
	if err != nil {
		return types.Signal{}, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to get historical data for symbol %s", marketData.Symbol)
	}

	middle, upper, lower, err := BollingerSeries(historicalData, bb.period, bb.stdDev)
	if err != nil {
		return types.Signal{}, err
	}

	upperValue := upper[len(upper)-1].Value
	lowerValue := lower[len(lower)-1].Value
	middleValue := middle[len(middle)-1].Value

	signalType := types.SignalTypeNoAction
	reason := "Price within bands"

	if marketData.Close < lowerValue {
		signalType = types.SignalTypeBuy
		reason = fmt.Sprintf("Close below lower band (close=%.2f, lower=%.2f)", marketData.Close, lowerValue)
	} else if marketData.Close > upperValue {
		signalType = types.SignalTypeSell
		reason = fmt.Sprintf("Close above upper band (close=%.2f, upper=%.2f)", marketData.Close, upperValue)
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   signalType,
		Name:   string(bb.Name()),
		Reason: reason,
		RawValue: map[string]float64{
			"middle": middleValue,
			"upper":  upperValue,
			"lower":  lowerValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: bb.Name(),
	}, nil
}

// RawValue returns the middle band (SMA) for the given symbol and time.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext).
func (bb *BollingerBands) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, bb.period)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to get historical data for symbol %s", symbol)
	}

	middle, _, _, err := BollingerSeries(historicalData, bb.period, bb.stdDev)
	if err != nil {
		return 0, err
	}

	return middle[len(middle)-1].Value, nil
}

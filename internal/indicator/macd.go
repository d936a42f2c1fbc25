package indicator

import (
	"fmt"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12, // Default fast period
		slowPeriod:   26, // Default slow period
		signalPeriod: 9,  // Default signal period
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fastPeriod, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for fastPeriod parameter, expected int")
	}

	if fastPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod must be a positive integer, got %d", fastPeriod)
	}

	slowPeriod, ok := params[1].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for slowPeriod parameter, expected int")
	}

	if slowPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "slowPeriod must be a positive integer, got %d", slowPeriod)
	}

	signalPeriod, ok := params[2].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for signalPeriod parameter, expected int")
	}

	if signalPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "signalPeriod must be a positive integer, got %d", signalPeriod)
	}

	if fastPeriod >= slowPeriod {
		return errors.Newf(errors.ErrCodeInvalidParameter, "fastPeriod (%d) must be smaller than slowPeriod (%d)", fastPeriod, slowPeriod)
	}

	m.fastPeriod = fastPeriod
	m.slowPeriod = slowPeriod
	m.signalPeriod = signalPeriod

	return nil
}

// GetSignal evaluates a MACD crossover: the MACD line crossing above its
// signal line produces a buy, crossing below produces a sell.
func (m *MACD) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	// Two extra windows of history so there is a previous point to compare
	// against for the crossover test.
	count := (m.slowPeriod + m.signalPeriod) * 2
	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(marketData.Time, marketData.Symbol, count)
	if err != nil && len(historicalData) < m.slowPeriod+m.signalPeriod {
		return types.Signal{}, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to get historical data for symbol %s", marketData.Symbol)
	}

	macdLine, signalLine, _, err := MACDSeries(historicalData, m.fastPeriod, m.slowPeriod, m.signalPeriod)
	if err != nil {
		return types.Signal{}, err
	}

	// Align: the signal line starts signalPeriod-1 points into the MACD line
	offset := len(macdLine) - len(signalLine)

	signalType := types.SignalTypeNoAction
	reason := "No signal"

	if len(signalLine) >= 2 {
		curr := macdLine[offset+len(signalLine)-1].Value
		prev := macdLine[offset+len(signalLine)-2].Value
		currSig := signalLine[len(signalLine)-1].Value
		prevSig := signalLine[len(signalLine)-2].Value

		if curr > currSig && prev <= prevSig {
			signalType = types.SignalTypeBuy
			reason = fmt.Sprintf("MACD crossed above signal line (macd=%.4f, signal=%.4f)", curr, currSig)
		} else if curr < currSig && prev >= prevSig {
			signalType = types.SignalTypeSell
			reason = fmt.Sprintf("MACD crossed below signal line (macd=%.4f, signal=%.4f)", curr, currSig)
		}
	}

	macdValue := macdLine[len(macdLine)-1].Value
	signalValue := signalLine[len(signalLine)-1].Value

	return types.Signal{
		Time:   marketData.Time,
		Type:   signalType,
		Name:   string(m.Name()),
		Reason: reason,
		RawValue: map[string]float64{
			"macd":      macdValue,
			"signal":    signalValue,
			"histogram": macdValue - signalValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: m.Name(),
	}, nil
}

// RawValue returns the latest MACD line value.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext).
func (m *MACD) RawValue(params ...any) (float64, error) {
	symbol, currentTime, ctx, err := parseRawValueParams(params...)
	if err != nil {
		return 0, err
	}

	count := (m.slowPeriod + m.signalPeriod) * 2
	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, count)
	if err != nil && len(historicalData) < m.slowPeriod+m.signalPeriod {
		return 0, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to get historical data for symbol %s", symbol)
	}

	macdLine, _, _, err := MACDSeries(historicalData, m.fastPeriod, m.slowPeriod, m.signalPeriod)
	if err != nil {
		return 0, err
	}

	return macdLine[len(macdLine)-1].Value, nil
}

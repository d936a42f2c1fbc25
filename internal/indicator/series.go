package indicator

import (
	"math"

	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

// The series functions below are the pure computational core of the toolkit.
// Each takes a price series sorted by time ascending and returns points whose
// timestamp is the time of the last bar inside the trailing window, so a
// window of N over L bars yields L-N+1 points.

// SMASeries computes a simple moving average of close prices over period.
func SMASeries(data []types.MarketData, period int) ([]types.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(data) < period {
		return nil, insufficientData(data, period)
	}

	points := make([]types.IndicatorPoint, 0, len(data)-period+1)

	sum := 0.0
	for i, bar := range data {
		sum += bar.Close
		if i >= period {
			sum -= data[i-period].Close
		}

		if i >= period-1 {
			points = append(points, types.IndicatorPoint{
				Time:  bar.Time,
				Value: sum / float64(period),
			})
		}
	}

	return points, nil
}

// EMASeries computes an exponential moving average of close prices. The first
// value is seeded with the SMA of the first period bars, then smoothed with
// alpha = 2/(period+1), matching the pandas ewm(adjust=False) recursion.
func EMASeries(data []types.MarketData, period int) ([]types.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(data) < period {
		return nil, insufficientData(data, period)
	}

	values := emaValues(data, period)
	points := make([]types.IndicatorPoint, 0, len(data)-period+1)

	for i := period - 1; i < len(data); i++ {
		points = append(points, types.IndicatorPoint{
			Time:  data[i].Time,
			Value: values[i],
		})
	}

	return points, nil
}

// RSISeries computes the Relative Strength Index using Wilder's smoothing.
// The first value appears at the (period+1)-th bar; values are bounded
// within [0, 100].
func RSISeries(data []types.MarketData, period int) ([]types.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(data) < period+1 {
		return nil, insufficientData(data, period+1)
	}

	// Seed the averages with the mean gain/loss over the first window
	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= period; i++ {
		change := data[i].Close - data[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	points := make([]types.IndicatorPoint, 0, len(data)-period)
	points = append(points, types.IndicatorPoint{
		Time:  data[period].Time,
		Value: rsiFromAverages(avgGain, avgLoss),
	})

	// Wilder's recursive smoothing for the rest of the series
	for i := period + 1; i < len(data); i++ {
		change := data[i].Close - data[i-1].Close

		gain := 0.0
		loss := 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)

		points = append(points, types.IndicatorPoint{
			Time:  data[i].Time,
			Value: rsiFromAverages(avgGain, avgLoss),
		})
	}

	return points, nil
}

// MACDSeries computes the MACD line (fast EMA minus slow EMA), its signal
// line (EMA of the MACD line) and the histogram (MACD minus signal).
// The MACD line starts at the slow-th bar, the signal line and histogram
// signalPeriod-1 bars later.
func MACDSeries(data []types.MarketData, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []types.IndicatorPoint, err error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return nil, nil, nil, errors.New(errors.ErrCodeInvalidPeriod, "all MACD periods must be positive integers")
	}

	if fastPeriod >= slowPeriod {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"fastPeriod (%d) must be smaller than slowPeriod (%d)", fastPeriod, slowPeriod)
	}

	required := slowPeriod + signalPeriod - 1
	if len(data) < required {
		return nil, nil, nil, insufficientData(data, required)
	}

	fast := emaValues(data, fastPeriod)
	slow := emaValues(data, slowPeriod)

	macd = make([]types.IndicatorPoint, 0, len(data)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(data); i++ {
		macd = append(macd, types.IndicatorPoint{
			Time:  data[i].Time,
			Value: fast[i] - slow[i],
		})
	}

	// Signal line: EMA of the MACD line, seeded with the SMA of its first window
	seed := 0.0
	for i := 0; i < signalPeriod; i++ {
		seed += macd[i].Value
	}

	seed /= float64(signalPeriod)
	alpha := 2.0 / float64(signalPeriod+1)

	signal = make([]types.IndicatorPoint, 0, len(macd)-signalPeriod+1)
	histogram = make([]types.IndicatorPoint, 0, len(macd)-signalPeriod+1)

	value := seed
	for i := signalPeriod - 1; i < len(macd); i++ {
		if i >= signalPeriod {
			value = macd[i].Value*alpha + value*(1-alpha)
		}

		signal = append(signal, types.IndicatorPoint{Time: macd[i].Time, Value: value})
		histogram = append(histogram, types.IndicatorPoint{Time: macd[i].Time, Value: macd[i].Value - value})
	}

	return macd, signal, histogram, nil
}

// BollingerSeries computes the middle band (SMA), and the upper and lower
// bands offset by stdDev sample standard deviations.
func BollingerSeries(data []types.MarketData, period int, stdDev float64) (middle, upper, lower []types.IndicatorPoint, err error) {
	if period <= 1 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be greater than 1, got %d", period)
	}

	if stdDev <= 0 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidStdDev, "stdDev must be a positive number, got %f", stdDev)
	}

	if len(data) < period {
		return nil, nil, nil, insufficientData(data, period)
	}

	count := len(data) - period + 1
	middle = make([]types.IndicatorPoint, 0, count)
	upper = make([]types.IndicatorPoint, 0, count)
	lower = make([]types.IndicatorPoint, 0, count)

	for i := period - 1; i < len(data); i++ {
		window := data[i-period+1 : i+1]

		mean := 0.0
		for _, bar := range window {
			mean += bar.Close
		}

		mean /= float64(period)

		// Sample standard deviation, matching pandas rolling().std()
		variance := 0.0
		for _, bar := range window {
			diff := bar.Close - mean
			variance += diff * diff
		}

		sd := math.Sqrt(variance / float64(period-1))

		middle = append(middle, types.IndicatorPoint{Time: data[i].Time, Value: mean})
		upper = append(upper, types.IndicatorPoint{Time: data[i].Time, Value: mean + stdDev*sd})
		lower = append(lower, types.IndicatorPoint{Time: data[i].Time, Value: mean - stdDev*sd})
	}

	return middle, upper, lower, nil
}

// ATRSeries computes the Average True Range as a simple moving average of the
// true range over period. The first value appears at the (period+1)-th bar.
func ATRSeries(data []types.MarketData, period int) ([]types.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(data) < period+1 {
		return nil, insufficientData(data, period+1)
	}

	trueRanges := make([]float64, len(data)-1)
	for i := 1; i < len(data); i++ {
		highLow := data[i].High - data[i].Low
		highClose := math.Abs(data[i].High - data[i-1].Close)
		lowClose := math.Abs(data[i].Low - data[i-1].Close)

		trueRanges[i-1] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	points := make([]types.IndicatorPoint, 0, len(trueRanges)-period+1)

	sum := 0.0
	for i, tr := range trueRanges {
		sum += tr
		if i >= period {
			sum -= trueRanges[i-period]
		}

		if i >= period-1 {
			points = append(points, types.IndicatorPoint{
				Time:  data[i+1].Time,
				Value: sum / float64(period),
			})
		}
	}

	return points, nil
}

// OBVSeries computes On-Balance Volume, a cumulative volume flow starting at
// zero on the first bar.
func OBVSeries(data []types.MarketData) ([]types.IndicatorPoint, error) {
	if len(data) == 0 {
		return nil, insufficientData(data, 1)
	}

	points := make([]types.IndicatorPoint, 0, len(data))

	obv := 0.0
	points = append(points, types.IndicatorPoint{Time: data[0].Time, Value: obv})

	for i := 1; i < len(data); i++ {
		switch {
		case data[i].Close > data[i-1].Close:
			obv += data[i].Volume
		case data[i].Close < data[i-1].Close:
			obv -= data[i].Volume
		}

		points = append(points, types.IndicatorPoint{Time: data[i].Time, Value: obv})
	}

	return points, nil
}

// MomentumSeries computes the difference between the close and the close
// period bars earlier.
func MomentumSeries(data []types.MarketData, period int) ([]types.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(data) < period+1 {
		return nil, insufficientData(data, period+1)
	}

	points := make([]types.IndicatorPoint, 0, len(data)-period)
	for i := period; i < len(data); i++ {
		points = append(points, types.IndicatorPoint{
			Time:  data[i].Time,
			Value: data[i].Close - data[i-period].Close,
		})
	}

	return points, nil
}

// emaValues returns the EMA of close prices aligned to the input indices.
// Entries before period-1 are NaN. The first defined value is the SMA of the
// first period closes; later values follow the alpha = 2/(period+1) recursion.
func emaValues(data []types.MarketData, period int) []float64 {
	values := make([]float64, len(data))
	for i := range values {
		values[i] = math.NaN()
	}

	if len(data) < period {
		return values
	}

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += data[i].Close
	}

	sma /= float64(period)
	values[period-1] = sma

	alpha := 2.0 / float64(period+1)

	ema := sma
	for i := period; i < len(data); i++ {
		ema = data[i].Close*alpha + ema*(1-alpha)
		values[i] = ema
	}

	return values
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}

func insufficientData(data []types.MarketData, required int) *errors.InsufficientDataError {
	symbol := ""
	if len(data) > 0 {
		symbol = data[0].Symbol
	}

	return errors.NewInsufficientDataErrorf(required, len(data), symbol,
		"insufficient data: need %d bars, have %d", required, len(data))
}

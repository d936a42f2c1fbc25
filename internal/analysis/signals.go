package analysis

import (
	"fmt"
	"time"

	"github.com/tadawul-lab/tasi-analyzer/internal/indicator"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

// Trading signal thresholds.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// TradingSignals evaluates the rule set over every bar with enough history:
//
//	buy:  RSI below 30, close below the lower Bollinger band, or the MACD
//	      line crossing above its signal line
//	sell: RSI above 70, close above the upper Bollinger band, or the MACD
//	      line crossing below its signal line
//
// Each triggered rule produces its own Signal so a single bar can carry
// several. Indicators without enough history contribute nothing.
func TradingSignals(bars []types.MarketData, params Params) []types.Signal {
	if len(bars) == 0 {
		return nil
	}

	var signals []types.Signal

	signals = append(signals, rsiSignals(bars, params.RSIPeriod)...)
	signals = append(signals, bollingerSignals(bars, params.BollingerPeriod, params.BollingerStdDev)...)
	signals = append(signals, macdSignals(bars, params.MACDFastPeriod, params.MACDSlowPeriod, params.MACDSignal)...)

	return signals
}

func rsiSignals(bars []types.MarketData, period int) []types.Signal {
	points, err := indicator.RSISeries(bars, period)
	if err != nil {
		return nil
	}

	var signals []types.Signal

	for _, p := range points {
		switch {
		case p.Value < rsiOversold:
			signals = append(signals, newSignal(bars[0].Symbol, p.Time, types.SignalTypeBuy,
				types.IndicatorTypeRSI, p.Value,
				fmt.Sprintf("RSI oversold (value=%.2f)", p.Value)))
		case p.Value > rsiOverbought:
			signals = append(signals, newSignal(bars[0].Symbol, p.Time, types.SignalTypeSell,
				types.IndicatorTypeRSI, p.Value,
				fmt.Sprintf("RSI overbought (value=%.2f)", p.Value)))
		}
	}

	return signals
}

func bollingerSignals(bars []types.MarketData, period int, stdDev float64) []types.Signal {
	_, upper, lower, err := indicator.BollingerSeries(bars, period, stdDev)
	if err != nil {
		return nil
	}

	var signals []types.Signal

	// Band points align with bars starting at the period-th bar
	offset := len(bars) - len(upper)
	for i := range upper {
		bar := bars[offset+i]

		switch {
		case bar.Close < lower[i].Value:
			signals = append(signals, newSignal(bar.Symbol, bar.Time, types.SignalTypeBuy,
				types.IndicatorTypeBollingerBands, bar.Close,
				fmt.Sprintf("Close below lower band (close=%.2f, lower=%.2f)", bar.Close, lower[i].Value)))
		case bar.Close > upper[i].Value:
			signals = append(signals, newSignal(bar.Symbol, bar.Time, types.SignalTypeSell,
				types.IndicatorTypeBollingerBands, bar.Close,
				fmt.Sprintf("Close above upper band (close=%.2f, upper=%.2f)", bar.Close, upper[i].Value)))
		}
	}

	return signals
}

func macdSignals(bars []types.MarketData, fastPeriod, slowPeriod, signalPeriod int) []types.Signal {
	macdLine, signalLine, _, err := indicator.MACDSeries(bars, fastPeriod, slowPeriod, signalPeriod)
	if err != nil {
		return nil
	}

	var signals []types.Signal

	offset := len(macdLine) - len(signalLine)
	for i := 1; i < len(signalLine); i++ {
		curr := macdLine[offset+i].Value
		prev := macdLine[offset+i-1].Value
		currSig := signalLine[i].Value
		prevSig := signalLine[i-1].Value

		switch {
		case curr > currSig && prev <= prevSig:
			signals = append(signals, newSignal(bars[0].Symbol, signalLine[i].Time, types.SignalTypeBuy,
				types.IndicatorTypeMACD, curr,
				fmt.Sprintf("MACD crossed above signal line (macd=%.4f, signal=%.4f)", curr, currSig)))
		case curr < currSig && prev >= prevSig:
			signals = append(signals, newSignal(bars[0].Symbol, signalLine[i].Time, types.SignalTypeSell,
				types.IndicatorTypeMACD, curr,
				fmt.Sprintf("MACD crossed below signal line (macd=%.4f, signal=%.4f)", curr, currSig)))
		}
	}

	return signals
}

func newSignal(symbol string, t time.Time, signalType types.SignalType, ind types.IndicatorType, value float64, reason string) types.Signal {
	return types.Signal{
		Time:      t,
		Type:      signalType,
		Name:      string(ind),
		Reason:    reason,
		RawValue:  value,
		Symbol:    symbol,
		Indicator: ind,
	}
}

package analysis

import (
	"fmt"
	"time"

	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/internal/indicator"
	"github.com/tadawul-lab/tasi-analyzer/internal/logger"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"go.uber.org/zap"
)

// Params holds the window sizes used for an analysis run.
type Params struct {
	SMAPeriods      []int   `yaml:"sma_periods" validate:"omitempty,dive,gt=0"`
	EMAPeriods      []int   `yaml:"ema_periods" validate:"omitempty,dive,gt=0"`
	RSIPeriod       int     `yaml:"rsi_period" validate:"omitempty,gt=0"`
	MACDFastPeriod  int     `yaml:"macd_fast_period" validate:"omitempty,gt=0"`
	MACDSlowPeriod  int     `yaml:"macd_slow_period" validate:"omitempty,gt=0"`
	MACDSignal      int     `yaml:"macd_signal_period" validate:"omitempty,gt=0"`
	BollingerPeriod int     `yaml:"bollinger_period" validate:"omitempty,gt=1"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev" validate:"omitempty,gt=0"`
	ATRPeriod       int     `yaml:"atr_period" validate:"omitempty,gt=0"`
	MomentumPeriod  int     `yaml:"momentum_period" validate:"omitempty,gt=0"`
}

// DefaultParams returns the window sizes the original feature set uses.
func DefaultParams() Params {
	return Params{
		SMAPeriods:      []int{14, 50, 200},
		EMAPeriods:      []int{12, 26},
		RSIPeriod:       14,
		MACDFastPeriod:  12,
		MACDSlowPeriod:  26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
		ATRPeriod:       14,
		MomentumPeriod:  10,
	}
}

// Summary aggregates statistics over one analysis run.
type Summary struct {
	Bars        int     `json:"bars"`
	RSIMin      float64 `json:"rsi_min"`
	RSIMax      float64 `json:"rsi_max"`
	BuySignals  int     `json:"buy_signals"`
	SellSignals int     `json:"sell_signals"`
}

// Report is the full result of analyzing one symbol: the underlying bars,
// every computed indicator series, the trading signals, and a summary.
type Report struct {
	Symbol  string                  `json:"symbol"`
	Bars    []types.MarketData      `json:"bars"`
	Series  []types.IndicatorSeries `json:"series"`
	Signals []types.Signal          `json:"signals"`
	Summary Summary                 `json:"summary"`
}

// SeriesByLabel returns the series with the given label, or false when the
// run produced none (for example on short histories).
func (r *Report) SeriesByLabel(label string) (types.IndicatorSeries, bool) {
	for _, s := range r.Series {
		if s.Label == label {
			return s, true
		}
	}

	return types.IndicatorSeries{}, false
}

// Analyzer computes indicator series and trading signals for symbols held in
// a datasource.
type Analyzer struct {
	dataSource datasource.DataSource
	params     Params
	registry   indicator.IndicatorRegistry
	logger     *logger.Logger
}

// NewAnalyzer creates an Analyzer reading from the given datasource.
func NewAnalyzer(ds datasource.DataSource, params Params, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	a := &Analyzer{
		dataSource: ds,
		params:     params,
		logger:     log,
	}
	a.registry = a.configuredRegistry()

	return a
}

// configuredRegistry builds the built-in indicator registry with the run's
// window sizes applied. A window the indicator rejects keeps its default and
// is reported when the indicator is computed.
func (a *Analyzer) configuredRegistry() indicator.IndicatorRegistry {
	registry := indicator.DefaultRegistry()

	configure := func(name types.IndicatorType, args ...any) {
		ind, err := registry.GetIndicator(name)
		if err != nil {
			return
		}

		if err := ind.Config(args...); err != nil {
			a.logger.Warn("keeping default indicator configuration",
				zap.String("indicator", string(name)),
				zap.Error(err),
			)
		}
	}

	if len(a.params.SMAPeriods) > 0 {
		configure(types.IndicatorTypeSMA, a.params.SMAPeriods[0])
	}

	if len(a.params.EMAPeriods) > 0 {
		configure(types.IndicatorTypeEMA, a.params.EMAPeriods[0])
	}

	configure(types.IndicatorTypeRSI, a.params.RSIPeriod)
	configure(types.IndicatorTypeMACD, a.params.MACDFastPeriod, a.params.MACDSlowPeriod, a.params.MACDSignal)
	configure(types.IndicatorTypeBollingerBands, a.params.BollingerPeriod, a.params.BollingerStdDev)
	configure(types.IndicatorTypeATR, a.params.ATRPeriod)
	configure(types.IndicatorTypeMomentum, a.params.MomentumPeriod)

	return registry
}

// Analyze loads the symbol's bars in [start, end] and computes every
// configured indicator over them. Indicators whose window exceeds the
// available history are skipped and logged rather than failing the run; an
// empty price series is an error.
func (a *Analyzer) Analyze(symbol string, start, end time.Time) (*Report, error) {
	bars, err := a.dataSource.GetRange(symbol, start, end)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load bars for %s", symbol)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no data for symbol %s in the requested range", symbol)
	}

	report := &Report{
		Symbol: symbol,
		Bars:   bars,
	}

	if err := a.appendSingleLineSeries(report, bars); err != nil {
		return nil, err
	}

	if err := a.appendMACDSeries(report, bars); err != nil {
		return nil, err
	}

	if err := a.appendBollingerSeries(report, bars); err != nil {
		return nil, err
	}

	report.Signals = TradingSignals(bars, a.params)
	report.Summary = a.summarize(report)

	return report, nil
}

// appendSingleLineSeries computes the indicators that produce one line each.
func (a *Analyzer) appendSingleLineSeries(report *Report, bars []types.MarketData) error {
	for _, period := range a.params.SMAPeriods {
		points, err := indicator.SMASeries(bars, period)
		if err := a.appendLine(report, types.IndicatorTypeSMA, fmt.Sprintf("sma_%d", period), points, err); err != nil {
			return err
		}
	}

	for _, period := range a.params.EMAPeriods {
		points, err := indicator.EMASeries(bars, period)
		if err := a.appendLine(report, types.IndicatorTypeEMA, fmt.Sprintf("ema_%d", period), points, err); err != nil {
			return err
		}
	}

	var (
		points []types.IndicatorPoint
		err    error
	)

	points, err = indicator.RSISeries(bars, a.params.RSIPeriod)
	if err := a.appendLine(report, types.IndicatorTypeRSI, "rsi", points, err); err != nil {
		return err
	}

	points, err = indicator.ATRSeries(bars, a.params.ATRPeriod)
	if err := a.appendLine(report, types.IndicatorTypeATR, "atr", points, err); err != nil {
		return err
	}

	points, err = indicator.OBVSeries(bars)
	if err := a.appendLine(report, types.IndicatorTypeOBV, "obv", points, err); err != nil {
		return err
	}

	points, err = indicator.MomentumSeries(bars, a.params.MomentumPeriod)
	if err := a.appendLine(report, types.IndicatorTypeMomentum, "momentum", points, err); err != nil {
		return err
	}

	return nil
}

// appendLine records a computed single-line series, or handles its failure
// through skip.
func (a *Analyzer) appendLine(report *Report, kind types.IndicatorType, label string, points []types.IndicatorPoint, err error) error {
	if err != nil {
		return a.skip(report.Symbol, label, err)
	}

	report.Series = append(report.Series, types.IndicatorSeries{
		Symbol:    report.Symbol,
		Indicator: kind,
		Label:     label,
		Points:    points,
	})

	return nil
}

func (a *Analyzer) appendMACDSeries(report *Report, bars []types.MarketData) error {
	macdLine, signalLine, histogram, err := indicator.MACDSeries(bars,
		a.params.MACDFastPeriod, a.params.MACDSlowPeriod, a.params.MACDSignal)
	if err != nil {
		return a.skip(report.Symbol, "macd", err)
	}

	for label, points := range map[string][]types.IndicatorPoint{
		"macd":           macdLine,
		"macd_signal":    signalLine,
		"macd_histogram": histogram,
	} {
		report.Series = append(report.Series, types.IndicatorSeries{
			Symbol:    report.Symbol,
			Indicator: types.IndicatorTypeMACD,
			Label:     label,
			Points:    points,
		})
	}

	return nil
}

func (a *Analyzer) appendBollingerSeries(report *Report, bars []types.MarketData) error {
	middle, upper, lower, err := indicator.BollingerSeries(bars,
		a.params.BollingerPeriod, a.params.BollingerStdDev)
	if err != nil {
		return a.skip(report.Symbol, "bollinger", err)
	}

	// Band width and %B, the position of the close inside the bands
	width := make([]types.IndicatorPoint, len(middle))
	pctB := make([]types.IndicatorPoint, len(middle))
	offset := len(bars) - len(middle)

	for i := range middle {
		span := upper[i].Value - lower[i].Value

		width[i] = types.IndicatorPoint{Time: middle[i].Time, Value: span}

		position := 0.5
		if span != 0 {
			position = (bars[offset+i].Close - lower[i].Value) / span
		}

		pctB[i] = types.IndicatorPoint{Time: middle[i].Time, Value: position}
	}

	for label, points := range map[string][]types.IndicatorPoint{
		"bb_middle": middle,
		"bb_upper":  upper,
		"bb_lower":  lower,
		"bb_width":  width,
		"bb_pct_b":  pctB,
	} {
		report.Series = append(report.Series, types.IndicatorSeries{
			Symbol:    report.Symbol,
			Indicator: types.IndicatorTypeBollingerBands,
			Label:     label,
			Points:    points,
		})
	}

	return nil
}

// skip handles a failed indicator computation. Insufficient-data failures
// are logged and swallowed so the run continues with the remaining
// indicators; any other failure, such as a rejected window size, fails the
// run.
func (a *Analyzer) skip(symbol, label string, err error) error {
	if !errors.IsInsufficientDataError(err) {
		return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to compute %s for %s", label, symbol)
	}

	a.logger.Warn("skipping indicator",
		zap.String("symbol", symbol),
		zap.String("indicator", label),
		zap.Error(err),
	)

	return nil
}

func (a *Analyzer) summarize(report *Report) Summary {
	summary := Summary{Bars: len(report.Bars)}

	if rsi, ok := report.SeriesByLabel("rsi"); ok && len(rsi.Points) > 0 {
		summary.RSIMin = rsi.Points[0].Value
		summary.RSIMax = rsi.Points[0].Value

		for _, p := range rsi.Points {
			if p.Value < summary.RSIMin {
				summary.RSIMin = p.Value
			}

			if p.Value > summary.RSIMax {
				summary.RSIMax = p.Value
			}
		}
	}

	for _, s := range report.Signals {
		switch s.Type {
		case types.SignalTypeBuy:
			summary.BuySignals++
		case types.SignalTypeSell:
			summary.SellSignals++
		}
	}

	return summary
}

// Package chart renders an analysis report as an interactive HTML page: a
// candlestick chart with moving-average and Bollinger overlays, plus RSI,
// MACD and volume sub-charts.
package chart

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/tadawul-lab/tasi-analyzer/internal/analysis"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

const dateLayout = "2006-01-02"

// Bollinger series drawn as sub-chart data rather than price overlays.
var nonOverlayBollinger = map[string]bool{
	"bb_width": true,
	"bb_pct_b": true,
}

// Builder assembles the chart page for one analysis report.
type Builder struct {
	report *analysis.Report
}

// NewBuilder creates a chart builder for the given report.
func NewBuilder(report *analysis.Report) *Builder {
	return &Builder{report: report}
}

// Render writes the full chart page as HTML.
func (b *Builder) Render(w io.Writer) error {
	if len(b.report.Bars) == 0 {
		return errors.Newf(errors.ErrCodeRenderFailed, "no bars to render for symbol %s", b.report.Symbol)
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s analysis", b.report.Symbol)
	page.AddCharts(
		b.priceChart(),
		b.volumeChart(),
		b.rsiChart(),
		b.macdChart(),
	)

	if err := page.Render(w); err != nil {
		return errors.Wrapf(errors.ErrCodeRenderFailed, err, "failed to render chart for symbol %s", b.report.Symbol)
	}

	return nil
}

// WriteFile renders the chart page into an HTML file at path.
func (b *Builder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeRenderFailed, err, "failed to create chart file %s", path)
	}
	defer f.Close()

	return b.Render(f)
}

func (b *Builder) xAxis() []string {
	x := make([]string, len(b.report.Bars))
	for i, bar := range b.report.Bars {
		x[i] = bar.Time.Format(dateLayout)
	}

	return x
}

func (b *Builder) priceChart() components.Charter {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s price", b.report.Symbol)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	klineData := make([]opts.KlineData, len(b.report.Bars))
	for i, bar := range b.report.Bars {
		klineData[i] = opts.KlineData{Value: [4]float64{bar.Open, bar.Close, bar.Low, bar.High}}
	}

	kline.SetXAxis(b.xAxis()).AddSeries(b.report.Symbol, klineData)

	// Moving averages and Bollinger bands share the price axis
	for _, series := range b.report.Series {
		switch series.Indicator {
		case types.IndicatorTypeSMA, types.IndicatorTypeEMA:
			kline.Overlap(b.lineFor(series))
		case types.IndicatorTypeBollingerBands:
			if !nonOverlayBollinger[series.Label] {
				kline.Overlap(b.lineFor(series))
			}
		}
	}

	return kline
}

func (b *Builder) volumeChart() components.Charter {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "200px"}),
		charts.WithTitleOpts(opts.Title{Title: "Volume"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	volumes := make([]opts.BarData, len(b.report.Bars))
	for i, marketBar := range b.report.Bars {
		volumes[i] = opts.BarData{Value: marketBar.Volume}
	}

	bar.SetXAxis(b.xAxis()).AddSeries("volume", volumes)

	return bar
}

func (b *Builder) rsiChart() components.Charter {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "200px"}),
		charts.WithTitleOpts(opts.Title{Title: "RSI"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
	)

	line.SetXAxis(b.xAxis())

	if series, ok := b.report.SeriesByLabel("rsi"); ok {
		line.AddSeries("rsi", b.alignedLineData(series))
	}

	return line
}

func (b *Builder) macdChart() components.Charter {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "200px"}),
		charts.WithTitleOpts(opts.Title{Title: "MACD"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	line.SetXAxis(b.xAxis())

	if series, ok := b.report.SeriesByLabel("macd"); ok {
		line.AddSeries("macd", b.alignedLineData(series))
	}

	if series, ok := b.report.SeriesByLabel("macd_signal"); ok {
		line.AddSeries("macd_signal", b.alignedLineData(series))
	}

	if series, ok := b.report.SeriesByLabel("macd_histogram"); ok {
		histogram := charts.NewBar()
		histogram.SetXAxis(b.xAxis())

		data := make([]opts.BarData, len(b.report.Bars))
		values := b.valuesByTime(series)

		for i, bar := range b.report.Bars {
			if v, ok := values[bar.Time]; ok {
				data[i] = opts.BarData{Value: v}
			} else {
				data[i] = opts.BarData{Value: "-"}
			}
		}

		histogram.AddSeries("macd_histogram", data)
		line.Overlap(histogram)
	}

	return line
}

// lineFor builds an overlay line aligned to the full bar axis, padding the
// warmup window with echarts null markers.
func (b *Builder) lineFor(series types.IndicatorSeries) *charts.Line {
	line := charts.NewLine()
	line.SetXAxis(b.xAxis()).AddSeries(series.Label, b.alignedLineData(series))

	return line
}

func (b *Builder) alignedLineData(series types.IndicatorSeries) []opts.LineData {
	values := b.valuesByTime(series)

	data := make([]opts.LineData, len(b.report.Bars))
	for i, bar := range b.report.Bars {
		if v, ok := values[bar.Time]; ok {
			data[i] = opts.LineData{Value: v}
		} else {
			data[i] = opts.LineData{Value: "-"}
		}
	}

	return data
}

func (b *Builder) valuesByTime(series types.IndicatorSeries) map[time.Time]float64 {
	values := make(map[time.Time]float64, len(series.Points))
	for _, p := range series.Points {
		values[p.Time] = p.Value
	}

	return values
}

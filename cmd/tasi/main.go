package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tadawul-lab/tasi-analyzer/internal/analysis"
	"github.com/tadawul-lab/tasi-analyzer/internal/chart"
	"github.com/tadawul-lab/tasi-analyzer/internal/config"
	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/internal/logger"
	"github.com/tadawul-lab/tasi-analyzer/internal/server"
	"github.com/tadawul-lab/tasi-analyzer/internal/symbols"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
)

const dateLayout = "2006-01-02"

var dateConfig = cli.TimestampConfig{
	Layouts: []string{dateLayout},
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.TimestampFlag{
			Name:    "start",
			Aliases: []string{"s"},
			Usage:   "Start date in `YYYY-MM-DD` format. Defaults to one year ago.",
			Value:   time.Now().AddDate(-1, 0, 0),
			Config:  dateConfig,
		},
		&cli.TimestampFlag{
			Name:    "end",
			Aliases: []string{"e"},
			Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
			Value:   time.Now(),
			Config:  dateConfig,
		},
	}
}

func dataFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   "Path to the data directory",
		Value:   "data",
	}
}

// openDataSource attaches every Parquet file under the data directory.
func openDataSource(dataDir string, l *logger.Logger) (datasource.DataSource, error) {
	ds, err := datasource.NewDuckDBDataSource(":memory:", l)
	if err != nil {
		return nil, fmt.Errorf("failed to open datasource: %w", err)
	}

	if err := ds.Initialize(dataDir + "/*.parquet"); err != nil {
		ds.Close()

		return nil, fmt.Errorf("failed to attach data under %s: %w", dataDir, err)
	}

	return ds, nil
}

// resolveTickers maps company names to Tadawul codes. An empty list means
// the whole built-in registry.
func resolveTickers(args []string) ([]string, error) {
	if len(args) == 0 {
		listings := symbols.All()
		tickers := make([]string, len(listings))

		for i, listing := range listings {
			tickers[i] = listing.Code
		}

		return tickers, nil
	}

	tickers := make([]string, len(args))

	for i, arg := range args {
		code, err := symbols.Resolve(arg)
		if err != nil {
			return nil, err
		}

		tickers[i] = code
	}

	return tickers, nil
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	tickers, err := resolveTickers(cmd.Args().Slice())
	if err != nil {
		return err
	}

	clientConfig := marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(cmd.String("provider")),
		WriterType:    marketdata.WriterType(cmd.String("writer")),
		DataPath:      cmd.String("data"),
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
	}

	client, err := marketdata.NewClient(clientConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	result := client.DownloadBatch(ctx, tickers,
		cmd.Timestamp("start"), cmd.Timestamp("end"),
		datasource.Interval(cmd.String("interval")))

	fmt.Printf("Downloaded %d/%d tickers\n", len(result.Successful), result.TotalRequests)

	for ticker, tickerErr := range result.Failed {
		fmt.Printf("  failed %s: %v\n", ticker, tickerErr)
	}

	if len(result.Successful) == 0 && result.TotalRequests > 0 {
		return fmt.Errorf("all %d downloads failed", result.TotalRequests)
	}

	return nil
}

// resolveSymbolArg maps the command's first argument to a Tadawul code.
func resolveSymbolArg(cmd *cli.Command) (string, error) {
	key := cmd.Args().First()
	if key == "" {
		return "", fmt.Errorf("a ticker symbol or company name is required")
	}

	return symbols.Resolve(key)
}

// openAnalyzer builds an analyzer over the command's data directory. The
// returned datasource must be closed by the caller.
func openAnalyzer(cmd *cli.Command, l *logger.Logger) (*analysis.Analyzer, datasource.DataSource, error) {
	ds, err := openDataSource(cmd.String("data"), l)
	if err != nil {
		return nil, nil, err
	}

	params := analysis.DefaultParams()

	if path := cmd.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			ds.Close()

			return nil, nil, err
		}

		params = cfg.Indicators
	}

	return analysis.NewAnalyzer(ds, params, l), ds, nil
}

// buildReport runs the analyzer for the symbol argument of a command.
func buildReport(cmd *cli.Command, l *logger.Logger) (*analysis.Report, error) {
	symbol, err := resolveSymbolArg(cmd)
	if err != nil {
		return nil, err
	}

	analyzer, ds, err := openAnalyzer(cmd, l)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	return analyzer.Analyze(symbol, cmd.Timestamp("start"), cmd.Timestamp("end"))
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	l, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer l.Sync()

	report, err := buildReport(cmd, l)
	if err != nil {
		return err
	}

	fmt.Printf("Symbol: %s\n", report.Symbol)
	fmt.Printf("Bars: %d\n", report.Summary.Bars)
	fmt.Printf("RSI range: %.2f - %.2f\n", report.Summary.RSIMin, report.Summary.RSIMax)
	fmt.Printf("Signals: %d buy, %d sell\n", report.Summary.BuySignals, report.Summary.SellSignals)

	for _, series := range report.Series {
		if last, ok := series.Last(); ok {
			fmt.Printf("  %-15s %10.4f  (%s)\n", series.Label, last.Value, last.Time.Format(dateLayout))
		}
	}

	return nil
}

func chartAction(ctx context.Context, cmd *cli.Command) error {
	l, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer l.Sync()

	report, err := buildReport(cmd, l)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = report.Symbol + ".html"
	}

	if err := chart.NewBuilder(report).WriteFile(output); err != nil {
		return err
	}

	fmt.Printf("Chart written to %s\n", output)

	return nil
}

func signalsAction(ctx context.Context, cmd *cli.Command) error {
	l, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer l.Sync()

	report, err := buildReport(cmd, l)
	if err != nil {
		return err
	}

	if len(report.Signals) == 0 {
		fmt.Println("No signals in the requested range")

		return nil
	}

	for _, signal := range report.Signals {
		marker := " "
		if signal.Type == types.SignalTypeBuy {
			marker = "+"
		} else if signal.Type == types.SignalTypeSell {
			marker = "-"
		}

		fmt.Printf("%s %s  %-10s %s\n", marker, signal.Time.Format(dateLayout), signal.Type, signal.Reason)
	}

	return nil
}

func latestAction(ctx context.Context, cmd *cli.Command) error {
	l, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer l.Sync()

	symbol, err := resolveSymbolArg(cmd)
	if err != nil {
		return err
	}

	analyzer, ds, err := openAnalyzer(cmd, l)
	if err != nil {
		return err
	}
	defer ds.Close()

	snapshot, err := analyzer.Latest(symbol)
	if err != nil {
		return err
	}

	fmt.Printf("%s  close %.2f  (%s)\n", snapshot.Symbol, snapshot.Close, snapshot.Time.Format(dateLayout))

	for _, signal := range snapshot.Signals {
		marker := " "
		if signal.Type == types.SignalTypeBuy {
			marker = "+"
		} else if signal.Type == types.SignalTypeSell {
			marker = "-"
		}

		fmt.Printf("%s %-16s %-10s %s\n", marker, signal.Indicator, signal.Type, signal.Reason)
	}

	return nil
}

func symbolsAction(ctx context.Context, cmd *cli.Command) error {
	for _, listing := range symbols.All() {
		fmt.Printf("%-10s %s\n", listing.Code, listing.Name)
	}

	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	l, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer l.Sync()

	ds, err := openDataSource(cmd.String("data"), l)
	if err != nil {
		return err
	}
	defer ds.Close()

	params := analysis.DefaultParams()

	if path := cmd.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		params = cfg.Indicators
	}

	analyzer := analysis.NewAnalyzer(ds, params, l)
	srv := server.NewServer(cmd.String("addr"), analyzer, l)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	// Optional .env for POLYGON_API_KEY
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "tasi",
		Usage: "Download, analyze and chart Tadawul stock data",
		Commands: []*cli.Command{
			{
				Name:      "download",
				Usage:     "Download historical OHLCV data. With no arguments, downloads the whole built-in ticker set.",
				ArgsUsage: "[ticker or company name ...]",
				Flags: append(rangeFlags(),
					dataFlag(),
					&cli.StringFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   "Bar interval: 1d, 1wk or 1mo",
						Value:   string(datasource.Interval1d),
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   fmt.Sprintf("Data provider to use (%s, %s)", provider.ProviderYahoo, provider.ProviderPolygon),
						Value:   string(provider.ProviderYahoo),
					},
					&cli.StringFlag{
						Name:    "writer",
						Aliases: []string{"w"},
						Usage:   fmt.Sprintf("Data writer format (%s, %s)", marketdata.WriterDuckDB, marketdata.WriterCSV),
						Value:   string(marketdata.WriterDuckDB),
					},
				),
				Action: downloadAction,
			},
			{
				Name:      "analyze",
				Usage:     "Compute indicators and print a summary for one symbol",
				ArgsUsage: "<ticker or company name>",
				Flags: append(rangeFlags(),
					dataFlag(),
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML config with indicator parameters",
					},
				),
				Action: analyzeAction,
			},
			{
				Name:      "chart",
				Usage:     "Render an interactive HTML chart for one symbol",
				ArgsUsage: "<ticker or company name>",
				Flags: append(rangeFlags(),
					dataFlag(),
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML config with indicator parameters",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output HTML file. Defaults to <symbol>.html",
					},
				),
				Action: chartAction,
			},
			{
				Name:      "signals",
				Usage:     "Print trading signals for one symbol",
				ArgsUsage: "<ticker or company name>",
				Flags: append(rangeFlags(),
					dataFlag(),
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML config with indicator parameters",
					},
				),
				Action: signalsAction,
			},
			{
				Name:      "latest",
				Usage:     "Evaluate every indicator against the most recent bar of one symbol",
				ArgsUsage: "<ticker or company name>",
				Flags: []cli.Flag{
					dataFlag(),
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML config with indicator parameters",
					},
				},
				Action: latestAction,
			},
			{
				Name:   "symbols",
				Usage:  "List the built-in Tadawul ticker registry",
				Action: symbolsAction,
			},
			{
				Name:  "serve",
				Usage: "Serve charts and JSON series over HTTP",
				Flags: []cli.Flag{
					dataFlag(),
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						Value:   ":8080",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML config with indicator parameters",
					},
				},
				Action: serveAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// Package marketdata downloads historical OHLCV data from a provider and
// persists it through a pluggable writer.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/provider"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/writer"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
	WriterCSV    WriterType = "csv"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=yahoo polygon"`
	WriterType    WriterType            `validate:"required,oneof=duckdb csv"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string              `validate:"required"`
	StartDate time.Time           `validate:"required"`
	EndDate   time.Time           `validate:"required,gtfield=StartDate"`
	Interval  datasource.Interval `validate:"required,oneof=1d 1wk 1mo"`
}

// BatchResult summarizes a multi-ticker download. Failed tickers are skipped,
// not fatal.
type BatchResult struct {
	Successful    []string
	Failed        map[string]error
	OutputPaths   []string
	TotalRequests int
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err, "invalid client configuration")
	}

	var providerConfig any
	if config.ProviderType == provider.ProviderPolygon {
		providerConfig = config.PolygonApiKey
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, providerConfig)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// NewClientWithProvider creates a client around an existing provider. Used by
// tests and the HTTP server.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress) *Client {
	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validator.New(),
		onProgress: onProgress,
	}
}

// Download fetches one ticker and returns the path of the written file.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, err, "invalid download parameters")
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to setup writer")
	}

	c.provider.ConfigWriter(marketWriter)

	outputPath, err := c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Interval,
		c.onProgress,
	)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeFetchFailed, err, "download failed for %s", params.Ticker)
	}

	return outputPath, nil
}

// DownloadBatch fetches every ticker in turn. A failing ticker is recorded
// and skipped; the remaining tickers still download.
func (c *Client) DownloadBatch(ctx context.Context, tickers []string, startDate, endDate time.Time, interval datasource.Interval) *BatchResult {
	result := &BatchResult{
		Failed:        make(map[string]error),
		TotalRequests: len(tickers),
	}

	for _, ticker := range tickers {
		path, err := c.Download(ctx, DownloadParams{
			Ticker:    ticker,
			StartDate: startDate,
			EndDate:   endDate,
			Interval:  interval,
		})
		if err != nil {
			result.Failed[ticker] = err

			continue
		}

		result.Successful = append(result.Successful, ticker)
		result.OutputPaths = append(result.OutputPaths, path)
	}

	return result
}

// setupWriter initializes the appropriate market data writer based on configuration.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	if _, err := os.Stat(c.config.DataPath); os.IsNotExist(err) {
		if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create data directory %s", c.config.DataPath)
		}
	}

	// Filename: TICKER_START_END_INTERVAL.<ext>
	baseName := fmt.Sprintf("%s_%s_%s_%s",
		params.Ticker,
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
		params.Interval)

	switch c.config.WriterType {
	case WriterDuckDB:
		return writer.NewDuckDBWriter(filepath.Join(c.config.DataPath, baseName+".parquet")), nil
	case WriterCSV:
		return writer.NewCSVWriter(filepath.Join(c.config.DataPath, baseName+".csv")), nil
	default:
		return nil, errors.Newf(errors.ErrCodeWriteFailed, "unsupported writer type: %s", c.config.WriterType)
	}
}

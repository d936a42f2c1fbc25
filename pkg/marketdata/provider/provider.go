package provider

import (
	"context"
	"time"

	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
)

type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter configures the writer for the provider.
	// Writer is used to persist the downloaded market data.
	// It could be a file, a database, etc.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download downloads the bars for the given ticker and date range at the
	// given interval and streams them into the configured writer.
	// The context can be used to cancel the download operation.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, interval datasource.Interval, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
// Yahoo needs no config; Polygon expects its API key as a string.
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderYahoo:
		return NewYahooClient(), nil
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"
	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/writer"
)

// PolygonClient downloads bars from Polygon.io. Polygon covers US listings
// only; it exists for cross-market comparison alongside Tadawul data.
type PolygonClient struct {
	client *polygon.Client
	writer writer.MarketDataWriter
}

// NewPolygonClient creates a Polygon provider with the given API key.
func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "apiKey is required")
	}

	return &PolygonClient{
		client: polygon.New(apiKey),
		writer: nil,
	}, nil
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download streams aggregates for the range into the configured writer.
func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, interval datasource.Interval, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeFetchFailed, "no writer configured for PolygonClient. Call ConfigWriter first")
	}

	timespan, err := timespanFor(interval)
	if err != nil {
		return "", err
	}

	if err = c.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to initialize writer")
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	totalIterations := int(endDate.Sub(startDate).Hours()/24) + 1

	bar := progressbar.NewOptions(totalIterations,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
		progressbar.OptionShowCount())

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	iter := c.client.ListAggs(ctx, params)

	processedCount := 0

	for iter.Next() {
		agg := iter.Item()

		if onProgress != nil {
			onProgress(float64(processedCount), float64(totalIterations), fmt.Sprintf("Downloading %s", ticker))
		}

		marketData := types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		}

		if err = c.writer.Write(marketData); err != nil {
			return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write bar for %s", ticker)
		}

		processedCount++
		if processedCount%1000 == 0 {
			daysElapsed := int(time.Time(agg.Timestamp).Sub(startDate).Hours() / 24)
			bar.Set(daysElapsed)
		}
	}

	if iter.Err() != nil {
		return "", errors.Wrapf(errors.ErrCodeFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", ticker)
	}

	bar.Finish()

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to finalize writer")
	}

	return outputPath, nil
}

func timespanFor(interval datasource.Interval) (models.Timespan, error) {
	switch interval {
	case datasource.Interval1d:
		return models.Day, nil
	case datasource.Interval1w:
		return models.Week, nil
	case datasource.Interval1M:
		return models.Month, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval: %s", interval)
	}
}

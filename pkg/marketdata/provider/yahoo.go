package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/writer"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient downloads daily bars from the Yahoo Finance chart API. Tadawul
// tickers use the NNNN.SR suffix and need no API key.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	writer     writer.MarketDataWriter
}

// chartResponse mirrors the subset of the v8 chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahooClient creates a Yahoo Finance provider.
func NewYahooClient() Provider {
	return &YahooClient{
		baseURL: defaultYahooBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewYahooClientWithBaseURL creates a Yahoo Finance provider against a custom
// endpoint. Used by tests.
func NewYahooClientWithBaseURL(baseURL string) Provider {
	client := NewYahooClient().(*YahooClient)
	client.baseURL = baseURL

	return client
}

func (c *YahooClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download fetches the full range in one chart request, retrying transient
// failures, and writes every complete bar oldest first.
func (c *YahooClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, interval datasource.Interval, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeFetchFailed, "no writer configured for YahooClient. Call ConfigWriter first")
	}

	if err = c.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to initialize writer")
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bars, err := c.fetch(ctx, ticker, startDate, endDate, interval)
	if err != nil {
		return "", err
	}

	bar := progressbar.NewOptions(len(bars),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
		progressbar.OptionShowCount())

	for i, marketData := range bars {
		if onProgress != nil {
			onProgress(float64(i), float64(len(bars)), fmt.Sprintf("Downloading %s", ticker))
		}

		if err = c.writer.Write(marketData); err != nil {
			return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write bar for %s", ticker)
		}

		bar.Add(1)
	}

	bar.Finish()

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, err, "failed to finalize writer")
	}

	return outputPath, nil
}

// fetch performs the chart API request with exponential backoff on transient
// failures and decodes the bars.
func (c *YahooClient) fetch(ctx context.Context, ticker string, startDate, endDate time.Time, interval datasource.Interval) ([]types.MarketData, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker))

	query := url.Values{}
	query.Set("period1", fmt.Sprintf("%d", startDate.Unix()))
	query.Set("period2", fmt.Sprintf("%d", endDate.Unix()))
	query.Set("interval", string(interval))
	query.Set("events", "history")

	var payload chartResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("User-Agent", "tasi-analyzer/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errors.Newf(errors.ErrCodeUnknownTicker, "ticker %s not found", ticker))
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return errors.Newf(errors.ErrCodeFetchFailed, "yahoo returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(errors.Newf(errors.ErrCodeFetchFailed, "yahoo returned status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return backoff.Permanent(errors.Wrap(errors.ErrCodeParseFailed, err, "failed to decode chart response"))
		}

		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.GetCode(err) != errors.ErrCodeUnknown {
			return nil, err
		}

		return nil, errors.Wrapf(errors.ErrCodeFetchFailed, err, "failed to fetch %s", ticker)
	}

	return decodeChart(ticker, payload)
}

// decodeChart flattens the chart payload into bars, skipping entries where
// Yahoo reports nulls (halted sessions, missing quotes).
func decodeChart(ticker string, payload chartResponse) ([]types.MarketData, error) {
	if payload.Chart.Error != nil {
		return nil, errors.Newf(errors.ErrCodeFetchFailed, "yahoo error for %s: %s (%s)",
			ticker, payload.Chart.Error.Description, payload.Chart.Error.Code)
	}

	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no data returned for %s", ticker)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]types.MarketData, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		// Quote arrays can be shorter than the timestamp list, each on its own
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}

		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}

		volume := 0.0
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		bars = append(bars, types.MarketData{
			Symbol: ticker,
			Time:   time.Unix(ts, 0).UTC(),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no usable bars returned for %s", ticker)
	}

	return bars, nil
}

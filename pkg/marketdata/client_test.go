package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/provider"
	"github.com/tadawul-lab/tasi-analyzer/pkg/marketdata/writer"
)

// fakeProvider records download requests and fails for configured tickers.
type fakeProvider struct {
	failing map[string]bool
	calls   []string
}

func (p *fakeProvider) ConfigWriter(w writer.MarketDataWriter) {}

func (p *fakeProvider) Download(ctx context.Context, ticker string, startDate, endDate time.Time, interval datasource.Interval, onProgress provider.OnDownloadProgress) (string, error) {
	p.calls = append(p.calls, ticker)

	if p.failing[ticker] {
		return "", errors.Newf(errors.ErrCodeFetchFailed, "simulated failure for %s", ticker)
	}

	return "/data/" + ticker + ".parquet", nil
}

type ClientTestSuite struct {
	suite.Suite
	config ClientConfig
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.config = ClientConfig{
		ProviderType: provider.ProviderYahoo,
		WriterType:   WriterCSV,
		DataPath:     suite.T().TempDir(),
	}
}

func (suite *ClientTestSuite) TestNewClientValidConfig() {
	client, err := NewClient(suite.config, nil)
	suite.NoError(err)
	suite.NotNil(client)
}

func (suite *ClientTestSuite) TestNewClientPolygonRequiresKey() {
	config := suite.config
	config.ProviderType = provider.ProviderPolygon

	_, err := NewClient(config, nil)
	suite.Error(err)

	config.PolygonApiKey = "key"
	client, err := NewClient(config, nil)
	suite.NoError(err)
	suite.NotNil(client)
}

func (suite *ClientTestSuite) TestNewClientUnknownProvider() {
	config := suite.config
	config.ProviderType = "bloomberg"

	_, err := NewClient(config, nil)
	suite.Error(err)
}

func (suite *ClientTestSuite) TestDownloadValidatesParams() {
	client := NewClientWithProvider(suite.config, &fakeProvider{}, nil)

	// End date before start date
	_, err := client.Download(context.Background(), DownloadParams{
		Ticker:    "2222.SR",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:  datasource.Interval1d,
	})
	suite.Error(err)

	// Missing ticker
	_, err = client.Download(context.Background(), DownloadParams{
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:  datasource.Interval1d,
	})
	suite.Error(err)
}

func (suite *ClientTestSuite) TestDownloadBatchSkipsFailures() {
	fake := &fakeProvider{failing: map[string]bool{"1120.SR": true}}
	client := NewClientWithProvider(suite.config, fake, nil)

	result := client.DownloadBatch(
		context.Background(),
		[]string{"2222.SR", "1120.SR", "7010.SR"},
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		datasource.Interval1d,
	)

	suite.Equal(3, result.TotalRequests)
	suite.Equal([]string{"2222.SR", "7010.SR"}, result.Successful)
	suite.Len(result.Failed, 1)
	suite.Contains(result.Failed, "1120.SR")

	// Every ticker was attempted despite the failure in the middle
	suite.Equal([]string{"2222.SR", "1120.SR", "7010.SR"}, fake.calls)
}

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/analysis"
	"github.com/tadawul-lab/tasi-analyzer/internal/datasource"
	"github.com/tadawul-lab/tasi-analyzer/internal/logger"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

type ServerTestSuite struct {
	suite.Suite
	testServer *httptest.Server
	start      time.Time
	end        time.Time
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.start = base
	suite.end = base.AddDate(0, 0, 60)

	ds := datasource.NewMemoryDataSource()

	bars := make([]types.MarketData, 40)
	for i := range bars {
		c := 30 + float64(i%6)*0.5
		bars[i] = types.MarketData{
			Symbol: "2222.SR",
			Time:   base.AddDate(0, 0, i),
			Open:   c - 0.2,
			High:   c + 0.6,
			Low:    c - 0.6,
			Close:  c,
			Volume: 1000,
		}
	}

	ds.Add(bars...)

	params := analysis.DefaultParams()
	params.SMAPeriods = []int{14}
	params.EMAPeriods = []int{12}

	analyzer := analysis.NewAnalyzer(ds, params, logger.NewNopLogger())
	suite.testServer = httptest.NewServer(NewServer(":0", analyzer, logger.NewNopLogger()).Handler())
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.testServer.Close()
}

func (suite *ServerTestSuite) get(path string) (*http.Response, []byte) {
	resp, err := http.Get(suite.testServer.URL + path)
	suite.Require().NoError(err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	return resp, body
}

func (suite *ServerTestSuite) rangeQuery() string {
	return fmt.Sprintf("?start=%s&end=%s",
		suite.start.Format("2006-01-02"), suite.end.Format("2006-01-02"))
}

func (suite *ServerTestSuite) TestHealth() {
	resp, body := suite.get("/health")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"status": "ok"}`, string(body))
}

func (suite *ServerTestSuite) TestSymbols() {
	resp, body := suite.get("/api/symbols")
	suite.Equal(http.StatusOK, resp.StatusCode)

	var listings []map[string]string
	suite.NoError(json.Unmarshal(body, &listings))
	suite.NotEmpty(listings)
}

func (suite *ServerTestSuite) TestSeries() {
	resp, body := suite.get("/api/2222.SR/series" + suite.rangeQuery())
	suite.Equal(http.StatusOK, resp.StatusCode)

	var payload struct {
		Symbol  string                  `json:"symbol"`
		Series  []types.IndicatorSeries `json:"series"`
		Summary analysis.Summary        `json:"summary"`
	}
	suite.NoError(json.Unmarshal(body, &payload))
	suite.Equal("2222.SR", payload.Symbol)
	suite.NotEmpty(payload.Series)
	suite.Equal(40, payload.Summary.Bars)
}

func (suite *ServerTestSuite) TestSeriesByCompanyName() {
	resp, _ := suite.get("/api/Saudi%20Aramco/series" + suite.rangeQuery())
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *ServerTestSuite) TestSignals() {
	resp, body := suite.get("/api/2222.SR/signals" + suite.rangeQuery())
	suite.Equal(http.StatusOK, resp.StatusCode)

	var payload struct {
		Symbol  string         `json:"symbol"`
		Signals []types.Signal `json:"signals"`
	}
	suite.NoError(json.Unmarshal(body, &payload))
	suite.Equal("2222.SR", payload.Symbol)
}

func (suite *ServerTestSuite) TestLatest() {
	resp, body := suite.get("/api/2222.SR/latest")
	suite.Equal(http.StatusOK, resp.StatusCode)

	var snapshot analysis.Snapshot
	suite.NoError(json.Unmarshal(body, &snapshot))
	suite.Equal("2222.SR", snapshot.Symbol)
	suite.Len(snapshot.Signals, 8)

	_, ok := snapshot.SignalByIndicator(types.IndicatorTypeRSI)
	suite.True(ok)
}

func (suite *ServerTestSuite) TestLatestUnknownSymbol() {
	resp, _ := suite.get("/api/XXXX/latest")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *ServerTestSuite) TestLatestNoData() {
	resp, _ := suite.get("/api/1120.SR/latest")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *ServerTestSuite) TestChart() {
	resp, body := suite.get("/charts/2222.SR" + suite.rangeQuery())
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Type"), "text/html")
	suite.Contains(string(body), "candlestick")
}

func (suite *ServerTestSuite) TestUnknownSymbol() {
	resp, _ := suite.get("/api/XXXX/series" + suite.rangeQuery())
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *ServerTestSuite) TestNoDataInRange() {
	resp, _ := suite.get("/api/1120.SR/series" + suite.rangeQuery())
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *ServerTestSuite) TestBadDateRange() {
	resp, _ := suite.get("/api/2222.SR/series?start=2024-06-01&end=2024-01-01")
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

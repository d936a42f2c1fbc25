package datasource

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

type MemoryDataSourceTestSuite struct {
	suite.Suite
	ds *MemoryDataSource
}

func TestMemoryDataSourceSuite(t *testing.T) {
	suite.Run(t, new(MemoryDataSourceTestSuite))
}

func (suite *MemoryDataSourceTestSuite) SetupTest() {
	suite.ds = NewMemoryDataSource()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		suite.ds.Add(types.MarketData{
			Symbol: "2222.SR",
			Time:   base.AddDate(0, 0, i),
			Open:   27.0 + float64(i),
			High:   28.0 + float64(i),
			Low:    26.5 + float64(i),
			Close:  27.5 + float64(i),
			Volume: 1000,
		})
	}

	suite.ds.Add(types.MarketData{
		Symbol: "1120.SR",
		Time:   base,
		Open:   78, High: 79, Low: 77, Close: 78.5, Volume: 500,
	})
}

func (suite *MemoryDataSourceTestSuite) TestGetRange() {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	bars, err := suite.ds.GetRange("2222.SR", start, end)
	suite.NoError(err)
	suite.Len(bars, 3)
	suite.True(bars[0].Time.Before(bars[1].Time))
	suite.True(bars[1].Time.Before(bars[2].Time))
}

func (suite *MemoryDataSourceTestSuite) TestGetPreviousNumberOfDataPoints() {
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	bars, err := suite.ds.GetPreviousNumberOfDataPoints(end, "2222.SR", 3)
	suite.NoError(err)
	suite.Len(bars, 3)

	// Chronological order, ending at the requested time
	suite.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[0].Time)
	suite.Equal(end, bars[2].Time)
}

func (suite *MemoryDataSourceTestSuite) TestGetPreviousNumberOfDataPointsInsufficient() {
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	bars, err := suite.ds.GetPreviousNumberOfDataPoints(end, "2222.SR", 10)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
	suite.Len(bars, 5)
}

func (suite *MemoryDataSourceTestSuite) TestReadLastData() {
	last, err := suite.ds.ReadLastData("2222.SR")
	suite.NoError(err)
	suite.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), last.Time)

	_, err = suite.ds.ReadLastData("9999.SR")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *MemoryDataSourceTestSuite) TestSymbols() {
	symbols, err := suite.ds.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"1120.SR", "2222.SR"}, symbols)
}

func (suite *MemoryDataSourceTestSuite) TestCountWithRange() {
	count, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(6, count)

	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	count, err = suite.ds.Count(optional.Some(start), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(3, count)
}

func (suite *MemoryDataSourceTestSuite) TestReadAllOrdered() {
	var bars []types.MarketData
	for bar, err := range suite.ds.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.NoError(err)

		bars = append(bars, bar)
	}

	suite.Len(bars, 6)

	for i := 1; i < len(bars); i++ {
		suite.False(bars[i].Time.Before(bars[i-1].Time))
	}
}

func (suite *MemoryDataSourceTestSuite) TestExecuteSQLUnsupported() {
	_, err := suite.ds.ExecuteSQL("SELECT 1")
	suite.Error(err)
}

package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

var seriesBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// barsFromCloses builds a day-spaced price series where high/low bracket the close.
func barsFromCloses(closes ...float64) []types.MarketData {
	bars := make([]types.MarketData, len(closes))
	for i, c := range closes {
		bars[i] = types.MarketData{
			Symbol: "2222.SR",
			Time:   seriesBase.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *SeriesTestSuite) TestSMAWorkedExample() {
	data := barsFromCloses(10, 11, 12, 13, 14)

	points, err := SMASeries(data, 3)
	suite.NoError(err)
	suite.Len(points, 3)

	suite.InDelta(11.0, points[0].Value, 1e-9)
	suite.InDelta(12.0, points[1].Value, 1e-9)
	suite.InDelta(13.0, points[2].Value, 1e-9)

	// Aligned to the 3rd, 4th and 5th bars
	suite.Equal(data[2].Time, points[0].Time)
	suite.Equal(data[4].Time, points[2].Time)
}

func (suite *SeriesTestSuite) TestSMALengthProperty() {
	data := barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	for _, period := range []int{1, 2, 5, 10} {
		points, err := SMASeries(data, period)
		suite.NoError(err)
		suite.Len(points, len(data)-period+1, "period %d", period)
	}
}

func (suite *SeriesTestSuite) TestSMAInsufficientData() {
	data := barsFromCloses(10, 11)

	_, err := SMASeries(data, 3)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))

	_, err = SMASeries(nil, 3)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *SeriesTestSuite) TestSMAInvalidPeriod() {
	_, err := SMASeries(barsFromCloses(1, 2, 3), 0)
	suite.Error(err)
	suite.False(errors.IsInsufficientDataError(err))
}

func (suite *SeriesTestSuite) TestEMARecursion() {
	data := barsFromCloses(1, 2, 3, 4)

	points, err := EMASeries(data, 2)
	suite.NoError(err)
	suite.Len(points, 3)

	// Seed is the SMA of the first two closes, then alpha = 2/3 recursion
	suite.InDelta(1.5, points[0].Value, 1e-9)
	suite.InDelta(2.5, points[1].Value, 1e-9)
	suite.InDelta(3.5, points[2].Value, 1e-9)
}

func (suite *SeriesTestSuite) TestEMAPeriodEqualsLength() {
	data := barsFromCloses(10, 20, 30)

	points, err := EMASeries(data, 3)
	suite.NoError(err)
	suite.Len(points, 1)
	suite.InDelta(20.0, points[0].Value, 1e-9)
}

func (suite *SeriesTestSuite) TestRSIBounds() {
	up := barsFromCloses(10, 11, 12, 13, 14, 15, 16, 17)
	down := barsFromCloses(17, 16, 15, 14, 13, 12, 11, 10)
	mixed := barsFromCloses(10, 12, 11, 13, 12, 14, 13, 15)

	for _, data := range [][]types.MarketData{up, down, mixed} {
		points, err := RSISeries(data, 5)
		suite.NoError(err)

		for _, p := range points {
			suite.GreaterOrEqual(p.Value, 0.0)
			suite.LessOrEqual(p.Value, 100.0)
		}
	}
}

func (suite *SeriesTestSuite) TestRSIPerfectTrends() {
	up := barsFromCloses(10, 11, 12, 13, 14, 15)

	points, err := RSISeries(up, 5)
	suite.NoError(err)
	suite.InDelta(100.0, points[0].Value, 1e-9)

	down := barsFromCloses(15, 14, 13, 12, 11, 10)

	points, err = RSISeries(down, 5)
	suite.NoError(err)
	suite.InDelta(0.0, points[0].Value, 1e-9)
}

func (suite *SeriesTestSuite) TestRSIInsufficientData() {
	_, err := RSISeries(barsFromCloses(10, 11, 12), 14)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *SeriesTestSuite) TestMACDEqualsEMADifference() {
	closes := []float64{
		27.1, 27.4, 27.2, 27.8, 28.1, 27.9, 28.4, 28.7, 28.2, 28.9,
		29.1, 28.8, 29.4, 29.2, 29.8, 30.1, 29.7, 30.4, 30.2, 30.8,
	}
	data := barsFromCloses(closes...)

	fast, slow, signalPeriod := 3, 6, 4

	macd, signal, histogram, err := MACDSeries(data, fast, slow, signalPeriod)
	suite.NoError(err)
	suite.Len(macd, len(data)-slow+1)
	suite.Len(signal, len(macd)-signalPeriod+1)
	suite.Len(histogram, len(signal))

	// MACD must equal the difference of the two EMAs at every shared timestamp
	fastEMA, err := EMASeries(data, fast)
	suite.NoError(err)
	slowEMA, err := EMASeries(data, slow)
	suite.NoError(err)

	fastByTime := make(map[time.Time]float64, len(fastEMA))
	for _, p := range fastEMA {
		fastByTime[p.Time] = p.Value
	}

	for i, p := range slowEMA {
		suite.Equal(macd[i].Time, p.Time)
		suite.InDelta(fastByTime[p.Time]-p.Value, macd[i].Value, 1e-9)
	}

	// Histogram is MACD minus signal
	offset := len(macd) - len(signal)
	for i := range signal {
		suite.InDelta(macd[offset+i].Value-signal[i].Value, histogram[i].Value, 1e-9)
	}
}

func (suite *SeriesTestSuite) TestMACDValidation() {
	data := barsFromCloses(1, 2, 3, 4, 5)

	_, _, _, err := MACDSeries(data, 12, 26, 9)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))

	_, _, _, err = MACDSeries(data, 26, 12, 9)
	suite.Error(err)
	suite.False(errors.IsInsufficientDataError(err))
}

func (suite *SeriesTestSuite) TestBollingerBandsOrdering() {
	data := barsFromCloses(10, 12, 11, 13, 12, 14, 13, 15, 14, 16)

	middle, upper, lower, err := BollingerSeries(data, 5, 2.0)
	suite.NoError(err)
	suite.Len(middle, 6)
	suite.Len(upper, 6)
	suite.Len(lower, 6)

	for i := range middle {
		suite.GreaterOrEqual(upper[i].Value, middle[i].Value)
		suite.LessOrEqual(lower[i].Value, middle[i].Value)
		suite.Equal(middle[i].Time, upper[i].Time)
		suite.Equal(middle[i].Time, lower[i].Time)
	}
}

func (suite *SeriesTestSuite) TestBollingerBandsConstantSeries() {
	data := barsFromCloses(20, 20, 20, 20, 20)

	middle, upper, lower, err := BollingerSeries(data, 5, 2.0)
	suite.NoError(err)
	suite.InDelta(20.0, middle[0].Value, 1e-9)
	suite.InDelta(20.0, upper[0].Value, 1e-9)
	suite.InDelta(20.0, lower[0].Value, 1e-9)
}

func (suite *SeriesTestSuite) TestATRSeries() {
	data := barsFromCloses(10, 11, 12, 13, 14, 15)

	points, err := ATRSeries(data, 3)
	suite.NoError(err)
	suite.Len(points, 3)

	// Consecutive closes step by 1 with high/low bracketing by 0.5, so the
	// true range is constant: max(1.0, |c+0.5 - prev|, |c-0.5 - prev|) = 1.5
	for _, p := range points {
		suite.InDelta(1.5, p.Value, 1e-9)
	}
}

func (suite *SeriesTestSuite) TestOBVSeries() {
	data := barsFromCloses(10, 11, 10, 10)

	points, err := OBVSeries(data)
	suite.NoError(err)
	suite.Len(points, 4)

	suite.InDelta(0.0, points[0].Value, 1e-9)
	suite.InDelta(1000.0, points[1].Value, 1e-9)
	suite.InDelta(0.0, points[2].Value, 1e-9)
	suite.InDelta(0.0, points[3].Value, 1e-9)
}

func (suite *SeriesTestSuite) TestOBVEmptySeries() {
	_, err := OBVSeries(nil)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *SeriesTestSuite) TestMomentumSeries() {
	data := barsFromCloses(10, 11, 12, 13, 14)

	points, err := MomentumSeries(data, 2)
	suite.NoError(err)
	suite.Len(points, 3)

	for _, p := range points {
		suite.InDelta(2.0, p.Value, 1e-9)
	}
}

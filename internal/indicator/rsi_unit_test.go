package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

type RSIUnitTestSuite struct {
	suite.Suite
}

func TestRSIUnitSuite(t *testing.T) {
	suite.Run(t, new(RSIUnitTestSuite))
}

func (suite *RSIUnitTestSuite) TestNewRSI() {
	rsi := NewRSI()
	suite.NotNil(rsi)

	// Cast to *RSI to check default values
	rsiImpl := rsi.(*RSI)
	suite.Equal(14, rsiImpl.period)
	suite.Equal(30.0, rsiImpl.rsiLowerThreshold)
	suite.Equal(70.0, rsiImpl.rsiUpperThreshold)
}

func (suite *RSIUnitTestSuite) TestName() {
	rsi := NewRSI()
	suite.Equal(types.IndicatorTypeRSI, rsi.Name())
}

func (suite *RSIUnitTestSuite) TestConfigValidPeriodOnly() {
	rsi := NewRSI()
	rsiImpl := rsi.(*RSI)

	err := rsi.Config(21)
	suite.NoError(err)
	suite.Equal(21, rsiImpl.period)
	// Thresholds should remain default
	suite.Equal(30.0, rsiImpl.rsiLowerThreshold)
	suite.Equal(70.0, rsiImpl.rsiUpperThreshold)
}

func (suite *RSIUnitTestSuite) TestConfigWithThresholds() {
	rsi := NewRSI()
	rsiImpl := rsi.(*RSI)

	err := rsi.Config(14, 25.0, 75.0)
	suite.NoError(err)
	suite.Equal(14, rsiImpl.period)
	suite.Equal(25.0, rsiImpl.rsiLowerThreshold)
	suite.Equal(75.0, rsiImpl.rsiUpperThreshold)
}

func (suite *RSIUnitTestSuite) TestConfigNoParams() {
	rsi := NewRSI()
	err := rsi.Config()
	suite.Error(err)
	suite.Contains(err.Error(), "expects at least 1 parameter")
}

func (suite *RSIUnitTestSuite) TestConfigInvalidPeriodType() {
	rsi := NewRSI()
	err := rsi.Config("invalid")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid type for period")
}

func (suite *RSIUnitTestSuite) TestConfigInvalidPeriodValue() {
	rsi := NewRSI()
	err := rsi.Config(0)
	suite.Error(err)
	suite.Contains(err.Error(), "period must be a positive integer")

	err = rsi.Config(-5)
	suite.Error(err)
}

func (suite *RSIUnitTestSuite) TestConfigInvalidThresholdType() {
	rsi := NewRSI()
	err := rsi.Config(14, "invalid")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid type for threshold")
}

func (suite *RSIUnitTestSuite) TestRawValueMissingParams() {
	rsi := NewRSI()
	_, err := rsi.RawValue("2222.SR")
	suite.Error(err)
}

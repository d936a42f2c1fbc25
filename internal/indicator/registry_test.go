package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

type RegistryTestSuite struct {
	suite.Suite
	registry IndicatorRegistry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewIndicatorRegistry()
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	err := suite.registry.RegisterIndicator(NewRSI())
	suite.NoError(err)

	ind, err := suite.registry.GetIndicator(types.IndicatorTypeRSI)
	suite.NoError(err)
	suite.Equal(types.IndicatorTypeRSI, ind.Name())
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	suite.NoError(suite.registry.RegisterIndicator(NewSMA()))

	err := suite.registry.RegisterIndicator(NewSMA())
	suite.Error(err)
	suite.Contains(err.Error(), "already registered")
}

func (suite *RegistryTestSuite) TestGetUnknown() {
	_, err := suite.registry.GetIndicator(types.IndicatorTypeMACD)
	suite.Error(err)
	suite.Contains(err.Error(), "not found")
}

func (suite *RegistryTestSuite) TestListIndicators() {
	suite.NoError(suite.registry.RegisterIndicator(NewSMA()))
	suite.NoError(suite.registry.RegisterIndicator(NewEMA()))

	names := suite.registry.ListIndicators()
	suite.Len(names, 2)
	suite.Contains(names, types.IndicatorTypeSMA)
	suite.Contains(names, types.IndicatorTypeEMA)
}

func (suite *RegistryTestSuite) TestRemoveIndicator() {
	suite.NoError(suite.registry.RegisterIndicator(NewOBV()))
	suite.NoError(suite.registry.RemoveIndicator(types.IndicatorTypeOBV))

	_, err := suite.registry.GetIndicator(types.IndicatorTypeOBV)
	suite.Error(err)

	err = suite.registry.RemoveIndicator(types.IndicatorTypeOBV)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestDefaultRegistryHasAllBuiltins() {
	registry := DefaultRegistry()

	for _, name := range []types.IndicatorType{
		types.IndicatorTypeSMA,
		types.IndicatorTypeEMA,
		types.IndicatorTypeRSI,
		types.IndicatorTypeMACD,
		types.IndicatorTypeBollingerBands,
		types.IndicatorTypeATR,
		types.IndicatorTypeOBV,
		types.IndicatorTypeMomentum,
	} {
		ind, err := registry.GetIndicator(name)
		suite.NoError(err)
		suite.Equal(name, ind.Name())
	}

	suite.Len(registry.ListIndicators(), 8)
}

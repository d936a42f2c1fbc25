package symbols

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
)

type SymbolsTestSuite struct {
	suite.Suite
}

func TestSymbolsSuite(t *testing.T) {
	suite.Run(t, new(SymbolsTestSuite))
}

func (suite *SymbolsTestSuite) TestAllSortedAndCopied() {
	listings := All()
	suite.Len(listings, 10)

	for i := 1; i < len(listings); i++ {
		suite.Less(listings[i-1].Code, listings[i].Code)
	}

	// Mutating the returned slice must not affect the registry
	listings[0].Code = "0000.SR"
	again := All()
	suite.NotEqual("0000.SR", again[0].Code)
}

func (suite *SymbolsTestSuite) TestLookupByCode() {
	l, ok := Lookup("2222.SR")
	suite.True(ok)
	suite.Equal("Saudi Aramco", l.Name)
}

func (suite *SymbolsTestSuite) TestLookupByNameCaseInsensitive() {
	l, ok := Lookup("al rajhi bank")
	suite.True(ok)
	suite.Equal("1120.SR", l.Code)
}

func (suite *SymbolsTestSuite) TestLookupUnknown() {
	_, ok := Lookup("No Such Company")
	suite.False(ok)
}

func (suite *SymbolsTestSuite) TestResolveName() {
	code, err := Resolve("SABIC")
	suite.NoError(err)
	suite.Equal("2010.SR", code)
}

func (suite *SymbolsTestSuite) TestResolvePassThroughForeignTicker() {
	code, err := Resolve("AAPL")
	suite.NoError(err)
	suite.Equal("AAPL", code)
}

func (suite *SymbolsTestSuite) TestResolveUnknown() {
	_, err := Resolve("not a ticker")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownTicker))
}

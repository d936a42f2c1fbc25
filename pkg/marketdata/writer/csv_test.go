package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

type CSVWriterTestSuite struct {
	suite.Suite
	path   string
	writer MarketDataWriter
}

func TestCSVWriterSuite(t *testing.T) {
	suite.Run(t, new(CSVWriterTestSuite))
}

func (suite *CSVWriterTestSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "2222.SR.csv")
	suite.writer = NewCSVWriter(suite.path)
}

func (suite *CSVWriterTestSuite) TearDownTest() {
	suite.writer.Close()
}

func (suite *CSVWriterTestSuite) TestWriteAndFinalize() {
	suite.Require().NoError(suite.writer.Initialize())

	bar := types.MarketData{
		Symbol: "2222.SR",
		Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:   32.5,
		High:   33.1,
		Low:    32.2,
		Close:  32.9,
		Volume: 1500000,
	}
	suite.NoError(suite.writer.Write(bar))

	outputPath, err := suite.writer.Finalize()
	suite.NoError(err)
	suite.Equal(suite.path, outputPath)
	suite.NoError(suite.writer.Close())

	f, err := os.Open(suite.path)
	suite.Require().NoError(err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	suite.Require().NoError(err)
	suite.Len(records, 2)
	suite.Equal([]string{"time", "symbol", "open", "high", "low", "close", "volume"}, records[0])
	suite.Equal("2222.SR", records[1][1])
	suite.Equal("32.9", records[1][5])
}

func (suite *CSVWriterTestSuite) TestWriteBeforeInitialize() {
	err := suite.writer.Write(types.MarketData{Symbol: "1120.SR"})
	suite.Error(err)
}

func (suite *CSVWriterTestSuite) TestGetOutputPath() {
	suite.Equal(suite.path, suite.writer.GetOutputPath())
}

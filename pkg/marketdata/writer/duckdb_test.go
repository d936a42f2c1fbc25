package writer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	path   string
	writer MarketDataWriter
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "2222.SR.parquet")
	suite.writer = NewDuckDBWriter(suite.path)
}

func (suite *DuckDBWriterTestSuite) TearDownTest() {
	suite.writer.Close()
}

func (suite *DuckDBWriterTestSuite) TestWriteAndFinalize() {
	suite.Require().NoError(suite.writer.Initialize())

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		suite.NoError(suite.writer.Write(types.MarketData{
			Symbol: "2222.SR",
			Time:   base.AddDate(0, 0, i),
			Open:   32.5,
			High:   33.1,
			Low:    32.2,
			Close:  32.9,
			Volume: 1500000,
		}))
	}

	outputPath, err := suite.writer.Finalize()
	suite.NoError(err)
	suite.Equal(suite.path, outputPath)

	info, err := os.Stat(suite.path)
	suite.Require().NoError(err)
	suite.Greater(info.Size(), int64(0))
}

func (suite *DuckDBWriterTestSuite) TestWriteBeforeInitialize() {
	err := suite.writer.Write(types.MarketData{Symbol: "1120.SR"})
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestFinalizeBeforeInitialize() {
	_, err := suite.writer.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestGetOutputPath() {
	suite.Equal(suite.path, suite.writer.GetOutputPath())
}

package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/chaofengh/tradescan/internal/logger"
	"github.com/chaofengh/tradescan/pkg/errors"
)

type DuckDBSourceTestSuite struct {
	suite.Suite
	source  *DuckDBSource
	csvPath string
}

func TestDuckDBSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBSourceTestSuite))
}

func (suite *DuckDBSourceTestSuite) SetupTest() {
	source, err := NewDuckDBSource(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.source = source

	// Rows are written out of time order on purpose; Load must sort.
	csv := `time,open,high,low,close,volume
2024-01-02 14:40:00,101,101.5,100.5,101.2,1200
2024-01-02 14:30:00,100,100.5,99.5,100.2,1000
2024-01-02 14:35:00,100.2,101,100,100.8,1100
2024-01-03 14:30:00,101.2,102,101,101.8,1300
`

	suite.csvPath = filepath.Join(suite.T().TempDir(), "bars.csv")
	suite.Require().NoError(os.WriteFile(suite.csvPath, []byte(csv), 0o644))
}

func (suite *DuckDBSourceTestSuite) TearDownTest() {
	if suite.source != nil {
		suite.NoError(suite.source.Close())
	}
}

func (suite *DuckDBSourceTestSuite) TestInitializeRejectsUnknownExtension() {
	err := suite.source.Initialize("bars.xlsx", optional.None[string]())
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedDataFormat))
}

func (suite *DuckDBSourceTestSuite) TestLoadOrdersByTime() {
	suite.Require().NoError(suite.source.Initialize(suite.csvPath, optional.None[string]()))

	series, err := suite.source.Load(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(series, 4)

	suite.NoError(series.Validate())
	suite.Equal(100.2, series[0].Close)
	suite.Equal(101.8, series[3].Close)
	suite.Equal(1000.0, series[0].Volume)
}

func (suite *DuckDBSourceTestSuite) TestLoadAppliesTimeWindow() {
	suite.Require().NoError(suite.source.Initialize(suite.csvPath, optional.None[string]()))

	start := time.Date(2024, 1, 2, 14, 35, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 14, 40, 0, 0, time.UTC)

	series, err := suite.source.Load(optional.Some(start), optional.Some(end))
	suite.Require().NoError(err)
	suite.Require().Len(series, 2)
	suite.Equal(100.8, series[0].Close)
	suite.Equal(101.2, series[1].Close)
}

func (suite *DuckDBSourceTestSuite) TestLoadEmptyWindow() {
	suite.Require().NoError(suite.source.Initialize(suite.csvPath, optional.None[string]()))

	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.source.Load(optional.Some(start), optional.None[time.Time]())
	suite.True(errors.HasCode(err, errors.ErrCodeNoDataFound))
}

func (suite *DuckDBSourceTestSuite) TestInitializeWithSymbolFilter() {
	csv := `symbol,time,open,high,low,close,volume
SPY,2024-01-02 14:30:00,100,100.5,99.5,100.2,1000
QQQ,2024-01-02 14:30:00,400,401,399,400.5,2000
SPY,2024-01-02 14:35:00,100.2,101,100,100.8,1100
`

	path := filepath.Join(suite.T().TempDir(), "multi.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(csv), 0o644))

	suite.Require().NoError(suite.source.Initialize(path, optional.Some("SPY")))

	series, err := suite.source.Load(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(series, 2)
	suite.Equal(100.2, series[0].Close)
	suite.Equal(100.8, series[1].Close)
}

func (suite *DuckDBSourceTestSuite) TestCount() {
	suite.Require().NoError(suite.source.Initialize(suite.csvPath, optional.None[string]()))

	count, err := suite.source.Count()
	suite.Require().NoError(err)
	suite.Equal(4, count)
}

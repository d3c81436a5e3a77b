// Package datasource loads OHLCV bar series from CSV or Parquet files through
// an embedded DuckDB instance. It is command-level glue: the core packages
// only ever consume the in-memory types.Series it produces.
package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/chaofengh/tradescan/internal/logger"
	"github.com/chaofengh/tradescan/internal/types"
	"github.com/chaofengh/tradescan/pkg/errors"
)

// DuckDBSource reads bars from a file-backed DuckDB view.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBSource opens an in-memory DuckDB instance.
func NewDuckDBSource(log *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize creates the bars view over the given data file. The reader
// function is selected from the file extension (.csv or .parquet). A Some
// symbol narrows the view to that symbol's rows; the data file must then
// carry a symbol column.
func (d *DuckDBSource) Initialize(path string, symbol optional.Option[string]) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		reader = "read_csv_auto"
	case ".parquet":
		reader = "read_parquet"
	default:
		return errors.Newf(errors.ErrCodeUnsupportedDataFormat, "unsupported data file extension: %s", filepath.Ext(path))
	}

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// CREATE VIEW cannot be parameterized; squirrel builds the reads below.
	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s('%s')`, reader, path)
	if sym, err := symbol.Take(); err == nil {
		query += fmt.Sprintf(` WHERE symbol = '%s'`, strings.ReplaceAll(sym, "'", "''"))
	}

	if _, err := d.db.Exec(query + `;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create bars view", err)
	}

	return nil
}

// Load reads the bar series ordered by time, optionally bounded by the
// inclusive [start, end] range.
func (d *DuckDBSource) Load(start, end optional.Option[time.Time]) (types.Series, error) {
	builder := d.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		OrderBy("time ASC")

	if startTime, err := start.Take(); err == nil {
		builder = builder.Where(squirrel.GtOrEq{"time": startTime})
	}

	if endTime, err := end.Take(); err == nil {
		builder = builder.Where(squirrel.LtOrEq{"time": endTime})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	var series types.Series

	for rows.Next() {
		var bar types.Bar

		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		series = append(series, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed while iterating bars", err)
	}

	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "no bars found in data file")
	}

	d.logger.Debug("Loaded bar series", zap.Int("bars", len(series)))

	return series, nil
}

// Count returns the number of bars in the view.
func (d *DuckDBSource) Count() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM bars").Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// Close releases the underlying database handle.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}

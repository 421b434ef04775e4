package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/logger"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a new DuckDB data source. An empty path opens an
// in-memory database, which is sufficient since the bars view reads straight
// from the data file.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource. The file format is chosen by extension:
// parquet via read_parquet, anything else via read_csv_auto.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to drop existing view", err)
	}

	reader := "read_csv_auto"
	if filepath.Ext(path) == ".parquet" {
		reader = "read_parquet"
	}

	// CREATE VIEW is not expressible with squirrel; raw SQL here.
	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s('%s');`, reader, path)
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create bars view", err)
	}

	return nil
}

// LoadSeries implements DataSource.
func (d *DuckDBDataSource) LoadSeries(start optional.Option[time.Time], end optional.Option[time.Time]) (types.BarSeries, error) {
	builder := d.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		OrderBy("time ASC")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
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

	var series types.BarSeries

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		series = append(series, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read bars", err)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	d.logger.Debug("Loaded bar series", zap.Int("bars", len(series)))

	return series, nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From("bars")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

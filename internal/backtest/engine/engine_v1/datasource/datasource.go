// Package datasource loads historical bar series for the backtest engine.
// Validation of the raw series (column presence, monotonic time, positive
// prices) happens here, before the engine ever sees the data.
package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/types"
)

// DataSource loads bar series from historical data files.
type DataSource interface {
	// Initialize points the data source at a data file (CSV or parquet).
	Initialize(path string) error
	// LoadSeries reads bars ordered by time, optionally bounded by a range,
	// and returns a validated series.
	LoadSeries(start optional.Option[time.Time], end optional.Option[time.Time]) (types.BarSeries, error)
	// Count returns the number of bars within the optional range.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources.
	Close() error
}

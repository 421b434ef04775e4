// Package engine defines the backtest engine interface: a synchronous,
// deterministic evaluation of a declarative strategy over a bar series.
package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/types"
)

// OnProcessDataCallback is called for each bar processed. Returning an error
// aborts the run.
type OnProcessDataCallback func(current int, total int) error

// Engine runs backtests. A single run is strictly sequential; parallelism is
// at the granularity of independent runs, which share no mutable state.
type Engine interface {
	// Initialize configures the engine from a YAML configuration string.
	Initialize(config string) error
	// Run executes the strategy over the series and returns the result.
	// Deterministic for identical inputs. The bar series and strategy are
	// treated as read-only for the duration of the run.
	Run(series types.BarSeries, strategy types.StrategyDefinition, onProcessData optional.Option[OnProcessDataCallback]) (types.BacktestResult, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}

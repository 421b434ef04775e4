package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/strategy-lab/pkg/errors"
)

// Bar represents a single OHLCV observation for a fixed time interval.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// BarSeries is an ordered sequence of bars with strictly ascending timestamps.
// Ordering is load-bearing: indicator warm-up and crossover detection depend
// on index adjacency. The series is never mutated after load.
type BarSeries []Bar

// Validate checks the structural invariants of the series: non-empty,
// strictly ascending unique timestamps, positive finite prices and
// non-negative finite volume on every bar.
func (s BarSeries) Validate() error {
	if len(s) == 0 {
		return errors.New(errors.ErrCodeEmptySeries, "bar series is empty")
	}

	for i, bar := range s {
		if i > 0 && !bar.Time.After(s[i-1].Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicTimestamps,
				"timestamp at index %d (%s) is not after index %d (%s)",
				i, bar.Time.Format(time.RFC3339), i-1, s[i-1].Time.Format(time.RFC3339))
		}

		for _, price := range []float64{bar.Open, bar.High, bar.Low, bar.Close} {
			if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
				return errors.Newf(errors.ErrCodeInvalidBar,
					"bar at index %d has non-positive or non-finite price", i)
			}
		}

		if math.IsNaN(bar.Volume) || math.IsInf(bar.Volume, 0) || bar.Volume < 0 {
			return errors.Newf(errors.ErrCodeInvalidBar,
				"bar at index %d has negative or non-finite volume", i)
		}
	}

	return nil
}

// Closes returns the close price of every bar, aligned by index.
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}

	return closes
}

// Highs returns the high price of every bar, aligned by index.
func (s BarSeries) Highs() []float64 {
	highs := make([]float64, len(s))
	for i, bar := range s {
		highs[i] = bar.High
	}

	return highs
}

// Lows returns the low price of every bar, aligned by index.
func (s BarSeries) Lows() []float64 {
	lows := make([]float64, len(s))
	for i, bar := range s {
		lows[i] = bar.Low
	}

	return lows
}

// Package indicator provides the technical indicator series library: pure
// transforms mapping a price series to derived series of equal length, with
// NaN marking the warm-up window where a value is mathematically undefined.
package indicator

import "math"

// Series is one float64 value per bar, aligned by index to the bar series.
// Leading NaNs during an indicator's warm-up window are expected, not errors.
type Series []float64

// nanSeries returns a series of the given length filled with NaN.
func nanSeries(length int) Series {
	series := make(Series, length)
	for i := range series {
		series[i] = math.NaN()
	}

	return series
}

// rollingMean computes the trailing arithmetic mean over the given window.
// A window containing any NaN produces NaN, so warm-up propagates through
// chained transforms the same way pandas rolling means do.
func rollingMean(src Series, period int) Series {
	out := nanSeries(len(src))

	for i := period - 1; i < len(src); i++ {
		sum := 0.0
		valid := true

		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(src[j]) {
				valid = false

				break
			}

			sum += src[j]
		}

		if valid {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// rollingStd computes the trailing sample standard deviation (ddof=1) over
// the given window. Undefined for period < 2.
func rollingStd(src Series, period int) Series {
	out := nanSeries(len(src))
	if period < 2 {
		return out
	}

	for i := period - 1; i < len(src); i++ {
		sum := 0.0
		valid := true

		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(src[j]) {
				valid = false

				break
			}

			sum += src[j]
		}

		if !valid {
			continue
		}

		mean := sum / float64(period)
		sumSq := 0.0

		for j := i - period + 1; j <= i; j++ {
			diff := src[j] - mean
			sumSq += diff * diff
		}

		out[i] = math.Sqrt(sumSq / float64(period-1))
	}

	return out
}

// rollingMin computes the trailing minimum over the given window.
func rollingMin(src Series, period int) Series {
	out := nanSeries(len(src))

	for i := period - 1; i < len(src); i++ {
		minimum := math.Inf(1)
		valid := true

		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(src[j]) {
				valid = false

				break
			}

			if src[j] < minimum {
				minimum = src[j]
			}
		}

		if valid {
			out[i] = minimum
		}
	}

	return out
}

// rollingMax computes the trailing maximum over the given window.
func rollingMax(src Series, period int) Series {
	out := nanSeries(len(src))

	for i := period - 1; i < len(src); i++ {
		maximum := math.Inf(-1)
		valid := true

		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(src[j]) {
				valid = false

				break
			}

			if src[j] > maximum {
				maximum = src[j]
			}
		}

		if valid {
			out[i] = maximum
		}
	}

	return out
}

// deltas returns the bar-to-bar difference series. The first element has no
// predecessor and is NaN.
func deltas(src Series) Series {
	out := nanSeries(len(src))
	for i := 1; i < len(src); i++ {
		out[i] = src[i] - src[i-1]
	}

	return out
}

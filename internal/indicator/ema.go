package indicator

import "math"

// EMA computes the exponential moving average with smoothing factor
// 2/(period+1), using the non-adjusted recursive definition. The series is
// seeded by the first available (non-NaN) value and is defined from that bar
// onward; over a clean price series it contains no NaN at all.
func EMA(src Series, period int) Series {
	out := nanSeries(len(src))
	alpha := 2.0 / (float64(period) + 1.0)

	seeded := false
	prev := 0.0

	for i, value := range src {
		if math.IsNaN(value) {
			continue
		}

		if !seeded {
			prev = value
			seeded = true
		} else {
			prev = alpha*value + (1-alpha)*prev
		}

		out[i] = prev
	}

	return out
}

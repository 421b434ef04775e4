package indicator

import "math"

// RSI computes the Relative Strength Index: the period-window rolling mean of
// positive price deltas over the rolling mean of negative deltas, mapped
// through 100 - 100/(1+RS). The delta series starts one bar late, so RSI is
// NaN for the first period bars.
//
// When the rolling loss mean is exactly zero the ratio is undefined; RSI is
// defined as 100 in that case (pure upward or flat movement saturates the
// oscillator).
func RSI(src Series, period int) Series {
	delta := deltas(src)

	gains := nanSeries(len(src))
	losses := nanSeries(len(src))

	for i := 1; i < len(delta); i++ {
		if math.IsNaN(delta[i]) {
			continue
		}

		gains[i] = math.Max(delta[i], 0)
		losses[i] = math.Max(-delta[i], 0)
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)

	out := nanSeries(len(src))

	for i := range src {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}

		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}

		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}

	return out
}

package indicator

import "math"

// Stochastic computes the stochastic oscillator. Raw %K is
// 100*(close - lowestLow) / (highestHigh - lowestLow) over the look-back
// period; %K is the smoothK rolling mean of the raw line and %D is the
// smoothD rolling mean of %K. A zero-range window leaves the raw value NaN,
// which downstream condition evaluation treats as "not ready".
func Stochastic(highs, lows, closes Series, period, smoothK, smoothD int) (k, d Series) {
	lowestLow := rollingMin(lows, period)
	highestHigh := rollingMax(highs, period)

	raw := nanSeries(len(closes))

	for i := range closes {
		if math.IsNaN(lowestLow[i]) || math.IsNaN(highestHigh[i]) {
			continue
		}

		span := highestHigh[i] - lowestLow[i]
		if span == 0 {
			continue
		}

		raw[i] = 100 * (closes[i] - lowestLow[i]) / span
	}

	k = rollingMean(raw, smoothK)
	d = rollingMean(k, smoothD)

	return k, d
}

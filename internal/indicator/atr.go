package indicator

import "math"

// ATR computes the Average True Range: the rolling mean of the True Range,
// where TR = max(high-low, |high-prevClose|, |low-prevClose|). The first bar
// has no previous close, so its TR degrades to high-low; ATR is therefore
// defined from index period-1 like every other rolling mean here.
func ATR(highs, lows, closes Series, period int) Series {
	trueRange := make(Series, len(closes))

	for i := range closes {
		highLow := highs[i] - lows[i]
		if i == 0 {
			trueRange[i] = highLow
			continue
		}

		highClose := math.Abs(highs[i] - closes[i-1])
		lowClose := math.Abs(lows[i] - closes[i-1])
		trueRange[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	return rollingMean(trueRange, period)
}

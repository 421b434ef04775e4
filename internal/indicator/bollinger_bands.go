package indicator

// BollingerBands computes the middle band as SMA(period) and the upper/lower
// bands at stdDev sample standard deviations above and below it. All three
// series share the SMA's warm-up window.
func BollingerBands(src Series, period int, stdDev float64) (upper, middle, lower Series) {
	middle = SMA(src, period)
	deviation := rollingStd(src, period)

	upper = make(Series, len(src))
	lower = make(Series, len(src))

	for i := range src {
		upper[i] = middle[i] + deviation[i]*stdDev
		lower[i] = middle[i] - deviation[i]*stdDev
	}

	return upper, middle, lower
}

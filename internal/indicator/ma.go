package indicator

// SMA computes the simple moving average: the arithmetic mean of the trailing
// period values. Undefined (NaN) for the first period-1 bars.
func SMA(src Series, period int) Series {
	return rollingMean(src, period)
}

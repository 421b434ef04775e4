package indicator

// MACD computes Moving Average Convergence Divergence: the fast EMA minus the
// slow EMA, the EMA of that difference as the signal line, and their
// difference as the histogram. Returns three aligned series.
func MACD(src Series, fast, slow, signal int) (line, signalLine, histogram Series) {
	emaFast := EMA(src, fast)
	emaSlow := EMA(src, slow)

	line = make(Series, len(src))
	for i := range src {
		line[i] = emaFast[i] - emaSlow[i]
	}

	signalLine = EMA(line, signal)

	histogram = make(Series, len(src))
	for i := range src {
		histogram[i] = line[i] - signalLine[i]
	}

	return line, signalLine, histogram
}

package engine

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/types"
)

// CalculateMetrics derives the aggregate performance statistics from a
// completed equity curve and trade ledger. It is a pure function: same
// inputs, same output. Metrics that cannot be computed (zero-volatility
// Sharpe, profit factor with no losing trades) are reported as absent, never
// as zero, NaN or infinity.
func CalculateMetrics(equityCurve []types.EquityPoint, trades []types.Trade, initialCapital float64, periodsPerYear int) types.Metrics {
	metrics := types.Metrics{
		FinalValue:   initialCapital,
		SharpeRatio:  optional.None[float64](),
		ProfitFactor: optional.None[float64](),
	}

	if len(equityCurve) > 0 {
		metrics.FinalValue = equityCurve[len(equityCurve)-1].Equity
	}

	metrics.TotalReturnPct = (metrics.FinalValue/initialCapital - 1) * 100
	metrics.MaxDrawdownPct = maxDrawdownPct(equityCurve)
	metrics.SharpeRatio = sharpeRatio(equityCurve, periodsPerYear)

	var winSum, lossSum float64

	for _, trade := range trades {
		metrics.TotalFees += trade.Fee

		switch {
		case trade.PnL > 0:
			metrics.WinningTrades++
			winSum += trade.PnL
		case trade.PnL < 0:
			metrics.LosingTrades++
			lossSum += -trade.PnL
		}
	}

	metrics.TotalTrades = len(trades)

	if metrics.TotalTrades > 0 {
		metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades) * 100
	}

	if metrics.WinningTrades > 0 {
		metrics.AvgWin = winSum / float64(metrics.WinningTrades)
	}

	// AvgLoss is reported as a positive magnitude.
	if metrics.LosingTrades > 0 {
		metrics.AvgLoss = lossSum / float64(metrics.LosingTrades)
		metrics.ProfitFactor = optional.Some(winSum / lossSum)
	}

	return metrics
}

// maxDrawdownPct is the largest peak-to-trough decline of the equity curve
// relative to the running peak, in percent. Zero for a monotonically
// non-decreasing curve.
func maxDrawdownPct(equityCurve []types.EquityPoint) float64 {
	maxDrawdown := 0.0
	peak := math.Inf(-1)

	for _, point := range equityCurve {
		if point.Equity > peak {
			peak = point.Equity
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - point.Equity) / peak * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// sharpeRatio is the mean per-bar return over its sample standard deviation,
// annualized by sqrt(periodsPerYear). Absent when fewer than two returns
// exist or the deviation is zero.
func sharpeRatio(equityCurve []types.EquityPoint, periodsPerYear int) optional.Option[float64] {
	if len(equityCurve) < 3 {
		return optional.None[float64]()
	}

	returns := make([]float64, 0, len(equityCurve)-1)

	for i := 1; i < len(equityCurve); i++ {
		previous := equityCurve[i-1].Equity
		if previous == 0 {
			return optional.None[float64]()
		}

		returns = append(returns, equityCurve[i].Equity/previous-1)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}

	variance /= float64(len(returns) - 1)

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return optional.None[float64]()
	}

	return optional.Some(mean / stdDev * math.Sqrt(float64(periodsPerYear)))
}

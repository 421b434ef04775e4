package types

import (
	"fmt"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

const (
	// TradeReasonStrategy marks a trade closed by the exit rule set.
	TradeReasonStrategy string = "strategy"
	// TradeReasonStopLoss marks a trade closed by the stop-loss threshold.
	TradeReasonStopLoss string = "stop_loss"
	// TradeReasonTakeProfit marks a trade closed by the take-profit threshold.
	TradeReasonTakeProfit string = "take_profit"
)

// Trade is the immutable record of one closed round trip. Trades accumulate
// in an append-only ledger for the lifetime of a run.
type Trade struct {
	EntryTime  time.Time `yaml:"entry_time" json:"entry_time" csv:"entry_time"`
	ExitTime   time.Time `yaml:"exit_time" json:"exit_time" csv:"exit_time"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice  float64   `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	Size       float64   `yaml:"size" json:"size" csv:"size"`
	// PnL is realized profit and loss net of commission on both legs.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
	// ReturnPct is the net return relative to the entry cost, in percent.
	ReturnPct float64 `yaml:"return_pct" json:"return_pct" csv:"return_pct"`
	// Fee is the total commission paid across both legs.
	Fee float64 `yaml:"fee" json:"fee" csv:"fee"`
	// Reason records what closed the trade: "strategy", "stop_loss" or "take_profit".
	Reason string `yaml:"reason" json:"reason" csv:"reason"`
}

// EquityPoint is the account value at the end of one bar, after that bar's
// orders are resolved.
type EquityPoint struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Equity float64   `yaml:"equity" json:"equity" csv:"equity"`
}

// Metrics holds the aggregate performance statistics derived from the equity
// curve and trade ledger. SharpeRatio and ProfitFactor are absent (not zero)
// when mathematically undefined.
type Metrics struct {
	FinalValue           float64                  `json:"final_value"`
	TotalReturnPct       float64                  `json:"total_return_pct"`
	MaxDrawdownPct       float64                  `json:"max_drawdown_pct"`
	SharpeRatio          optional.Option[float64] `json:"sharpe_ratio"`
	TotalTrades          int                      `json:"total_trades"`
	WinningTrades        int                      `json:"winning_trades"`
	LosingTrades         int                      `json:"losing_trades"`
	WinRate              float64                  `json:"win_rate"`
	AvgWin               float64                  `json:"avg_win"`
	AvgLoss              float64                  `json:"avg_loss"`
	ProfitFactor         optional.Option[float64] `json:"profit_factor"`
	TotalFees            float64                  `json:"total_fees"`
	BuyAndHoldReturnPct  float64                  `json:"buy_and_hold_return_pct"`
}

type rawMetrics struct {
	FinalValue          float64  `yaml:"final_value"`
	TotalReturnPct      float64  `yaml:"total_return_pct"`
	MaxDrawdownPct      float64  `yaml:"max_drawdown_pct"`
	SharpeRatio         *float64 `yaml:"sharpe_ratio"`
	TotalTrades         int      `yaml:"total_trades"`
	WinningTrades       int      `yaml:"winning_trades"`
	LosingTrades        int      `yaml:"losing_trades"`
	WinRate             float64  `yaml:"win_rate"`
	AvgWin              float64  `yaml:"avg_win"`
	AvgLoss             float64  `yaml:"avg_loss"`
	ProfitFactor        *float64 `yaml:"profit_factor"`
	TotalFees           float64  `yaml:"total_fees"`
	BuyAndHoldReturnPct float64  `yaml:"buy_and_hold_return_pct"`
}

// MarshalYAML implements custom marshaling so that absent metrics serialize
// as null instead of the Option internal representation.
func (m Metrics) MarshalYAML() (interface{}, error) {
	raw := rawMetrics{
		FinalValue:          m.FinalValue,
		TotalReturnPct:      m.TotalReturnPct,
		MaxDrawdownPct:      m.MaxDrawdownPct,
		TotalTrades:         m.TotalTrades,
		WinningTrades:       m.WinningTrades,
		LosingTrades:        m.LosingTrades,
		WinRate:             m.WinRate,
		AvgWin:              m.AvgWin,
		AvgLoss:             m.AvgLoss,
		TotalFees:           m.TotalFees,
		BuyAndHoldReturnPct: m.BuyAndHoldReturnPct,
	}

	if m.SharpeRatio.IsSome() {
		sharpe := m.SharpeRatio.Unwrap()
		raw.SharpeRatio = &sharpe
	}

	if m.ProfitFactor.IsSome() {
		profitFactor := m.ProfitFactor.Unwrap()
		raw.ProfitFactor = &profitFactor
	}

	return raw, nil
}

// UnmarshalYAML implements custom unmarshaling for Metrics.
func (m *Metrics) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw rawMetrics
	if err := unmarshal(&raw); err != nil {
		return err
	}

	m.FinalValue = raw.FinalValue
	m.TotalReturnPct = raw.TotalReturnPct
	m.MaxDrawdownPct = raw.MaxDrawdownPct
	m.TotalTrades = raw.TotalTrades
	m.WinningTrades = raw.WinningTrades
	m.LosingTrades = raw.LosingTrades
	m.WinRate = raw.WinRate
	m.AvgWin = raw.AvgWin
	m.AvgLoss = raw.AvgLoss
	m.TotalFees = raw.TotalFees
	m.BuyAndHoldReturnPct = raw.BuyAndHoldReturnPct
	m.SharpeRatio = optional.None[float64]()
	m.ProfitFactor = optional.None[float64]()

	if raw.SharpeRatio != nil {
		m.SharpeRatio = optional.Some(*raw.SharpeRatio)
	}

	if raw.ProfitFactor != nil {
		m.ProfitFactor = optional.Some(*raw.ProfitFactor)
	}

	return nil
}

// BacktestResult is the final aggregate of one run: the equity curve, the
// trade ledger and the derived metrics. Immutable once produced.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// StrategyName is the name of the strategy that produced this result.
	StrategyName string `yaml:"strategy_name" json:"strategy_name"`
	// InitialCapital is the starting cash balance of the run.
	InitialCapital float64       `yaml:"initial_capital" json:"initial_capital"`
	EquityCurve    []EquityPoint `yaml:"equity_curve" json:"equity_curve"`
	Trades         []Trade       `yaml:"trades" json:"trades"`
	Metrics        Metrics       `yaml:"metrics" json:"metrics"`
}

// WriteBacktestResult writes the result to the given path as YAML.
func WriteBacktestResult(path string, result BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}

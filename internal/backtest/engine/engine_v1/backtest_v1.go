package engine

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	baseengine "github.com/rxtech-lab/strategy-lab/internal/backtest/engine"
	"github.com/rxtech-lab/strategy-lab/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/strategy-lab/internal/indicator"
	"github.com/rxtech-lab/strategy-lab/internal/logger"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/rxtech-lab/strategy-lab/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// BacktestEngineV1 evaluates a declarative strategy against a bar series in a
// single forward pass. Decisions are made on bar close with fills at the
// same close; at most one position is open at any bar.
type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	log           *logger.Logger
	commissionFee commission_fee.CommissionFee
	initialized   bool
}

// NewBacktestEngineV1 creates an uninitialized engine.
func NewBacktestEngineV1() baseengine.Engine {
	return &BacktestEngineV1{
		config:        EmptyConfig(),
		log:           nil,
		commissionFee: nil,
		initialized:   false,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse engine config", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	var loggerError error

	b.log, loggerError = logger.NewLogger()
	if loggerError != nil {
		return loggerError
	}

	b.commissionFee = commission_fee.GetCommissionFeeHandler(b.config.Broker, b.config.CommissionRate)
	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", b.config.InitialCapital),
		zap.String("broker", string(b.config.Broker)),
	)

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// Run implements engine.Engine. The series and strategy are validated fail
// fast before any simulation starts; warm-up and degenerate numeric cases
// are absorbed locally (conditions stay false, metrics go absent).
func (b *BacktestEngineV1) Run(series types.BarSeries, strategy types.StrategyDefinition, onProcessData optional.Option[baseengine.OnProcessDataCallback]) (types.BacktestResult, error) {
	if !b.initialized {
		return types.BacktestResult{}, errors.New(errors.ErrCodeBacktestNotReady, "engine is not initialized")
	}

	if err := series.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	if err := strategy.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	// Precompute every unique indicator once; the per-bar hot path only
	// performs map lookups.
	precomputed, err := indicator.ComputeAll(strategy, series)
	if err != nil {
		return types.BacktestResult{}, err
	}

	evaluator := newConditionEvaluator(precomputed)

	cash := b.config.InitialCapital

	var position *Position

	trades := make([]types.Trade, 0)
	equityCurve := make([]types.EquityPoint, 0, len(series))

	for i, bar := range series {
		riskExited := false

		// Stop-loss/take-profit are checked before rule evaluation, using
		// intrabar extremes against thresholds fixed at entry. A triggered
		// exit bypasses the exit rule set entirely.
		if position != nil {
			if trade, exited := b.checkRiskExit(position, bar); exited {
				exitFee := trade.Fee - position.EntryFee
				cash += trade.ExitPrice*trade.Size - exitFee
				trades = append(trades, trade)
				position = nil
				riskExited = true

				b.log.Debug("Risk exit",
					zap.String("reason", trade.Reason),
					zap.Float64("pnl", trade.PnL),
					zap.Time("time", bar.Time),
				)
			}
		}

		// Entry and exit are mutually exclusive within one bar: a newly
		// opened position is never evaluated for exit on the same bar, and
		// a bar that triggered a risk exit takes no further action.
		if !riskExited {
			if position == nil {
				enter, err := evaluator.evaluateRules(strategy.EntryRules, i)
				if err != nil {
					return types.BacktestResult{}, err
				}

				if enter {
					position, cash = b.openPosition(strategy, bar, i, cash)
				}
			} else {
				exit, err := evaluator.evaluateRules(strategy.ExitRules, i)
				if err != nil {
					return types.BacktestResult{}, err
				}

				if exit {
					exitFee := b.commissionFee.Calculate(position.Size, bar.Close)
					trade := position.close(bar.Time, bar.Close, exitFee, types.TradeReasonStrategy)
					cash += bar.Close*position.Size - exitFee
					trades = append(trades, trade)
					position = nil

					b.log.Debug("Closed position",
						zap.Float64("pnl", trade.PnL),
						zap.Time("time", bar.Time),
					)
				}
			}
		}

		// Bar-end equity: cash plus the open position marked to this close.
		equity := cash
		if position != nil {
			equity += position.Size * bar.Close
		}

		equityCurve = append(equityCurve, types.EquityPoint{Time: bar.Time, Equity: equity})

		if onProcessData.IsSome() {
			if err := onProcessData.Unwrap()(i+1, len(series)); err != nil {
				return types.BacktestResult{}, err
			}
		}
	}

	// An open position at the final bar stays open: equity is marked to the
	// last close and no closing trade is synthesized.
	metrics := CalculateMetrics(equityCurve, trades, b.config.InitialCapital, b.config.PeriodsPerYear)
	metrics.BuyAndHoldReturnPct = (series[len(series)-1].Close/series[0].Close - 1) * 100

	return types.BacktestResult{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		StrategyName:   strategy.Name,
		InitialCapital: b.config.InitialCapital,
		EquityCurve:    equityCurve,
		Trades:         trades,
		Metrics:        metrics,
	}, nil
}

// openPosition sizes and fills an entry at the bar's close. Size is
// floor(cash * position_size / fill) for a fractional position size; a
// position size of 1.0 buys the maximum quantity affordable including the
// entry commission. If the total cost is unaffordable, no position opens.
func (b *BacktestEngineV1) openPosition(strategy types.StrategyDefinition, bar types.Bar, index int, cash float64) (*Position, float64) {
	fill := bar.Close

	var size float64
	if strategy.PositionSize >= 1.0 {
		size = math.Floor(cash / fill)
		// Shrink until the entry commission fits; converges in a step or
		// two for any sane fee model.
		for size > 0 {
			fee := b.commissionFee.Calculate(size, fill)
			if size*fill+fee <= cash {
				break
			}

			next := math.Floor((cash - fee) / fill)
			if next >= size {
				next = size - 1
			}

			size = next
		}
	} else {
		size = math.Floor(cash * strategy.PositionSize / fill)
	}

	if size <= 0 {
		return nil, cash
	}

	fee := b.commissionFee.Calculate(size, fill)

	cost := size*fill + fee
	if cost > cash {
		return nil, cash
	}

	position := &Position{
		EntryIndex:  index,
		EntryTime:   bar.Time,
		EntryPrice:  fill,
		Size:        size,
		EntryFee:    fee,
		StopPrice:   optional.None[float64](),
		TargetPrice: optional.None[float64](),
	}

	if strategy.StopLoss.IsSome() {
		position.StopPrice = optional.Some(fill * (1 - strategy.StopLoss.Unwrap()))
	}

	if strategy.TakeProfit.IsSome() {
		position.TargetPrice = optional.Some(fill * (1 + strategy.TakeProfit.Unwrap()))
	}

	b.log.Debug("Opened position",
		zap.Float64("size", size),
		zap.Float64("price", fill),
		zap.Float64("fee", fee),
		zap.Time("time", bar.Time),
	)

	return position, cash - cost
}

// checkRiskExit tests the bar's intrabar extremes against the position's
// stop and target prices. The stop is checked first: when both thresholds
// fall inside one bar the conservative assumption is that the stop hit.
func (b *BacktestEngineV1) checkRiskExit(position *Position, bar types.Bar) (types.Trade, bool) {
	if position.StopPrice.IsSome() && bar.Low <= position.StopPrice.Unwrap() {
		stopPrice := position.StopPrice.Unwrap()
		exitFee := b.commissionFee.Calculate(position.Size, stopPrice)

		return position.close(bar.Time, stopPrice, exitFee, types.TradeReasonStopLoss), true
	}

	if position.TargetPrice.IsSome() && bar.High >= position.TargetPrice.Unwrap() {
		targetPrice := position.TargetPrice.Unwrap()
		exitFee := b.commissionFee.Calculate(position.Size, targetPrice)

		return position.close(bar.Time, targetPrice, exitFee, types.TradeReasonTakeProfit), true
	}

	return types.Trade{}, false
}

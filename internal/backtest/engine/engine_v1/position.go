package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/strategy-lab/internal/types"
	"github.com/shopspring/decimal"
)

// Position is the engine's record of the single open holding. It is owned
// exclusively by the simulation loop and never escapes it; closing a
// position produces an immutable types.Trade.
type Position struct {
	EntryIndex int
	EntryTime  time.Time
	EntryPrice float64
	Size       float64
	EntryFee   float64
	// StopPrice and TargetPrice are fixed at entry from the strategy's
	// stop-loss/take-profit fractions.
	StopPrice   optional.Option[float64]
	TargetPrice optional.Option[float64]
}

// close settles the position at the given exit price and returns the trade
// record. P&L is (exit - entry) * size minus commission on both legs,
// settled through decimal arithmetic to keep the ledger consistent with the
// equity accounting.
func (p *Position) close(exitTime time.Time, exitPrice float64, exitFee float64, reason string) types.Trade {
	sizeDec := decimal.NewFromFloat(p.Size)
	grossDec := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(p.EntryPrice)).Mul(sizeDec)
	feeDec := decimal.NewFromFloat(p.EntryFee).Add(decimal.NewFromFloat(exitFee))

	pnl, _ := grossDec.Sub(feeDec).Float64()
	fee, _ := feeDec.Float64()

	entryCost := p.EntryPrice*p.Size + p.EntryFee

	returnPct := 0.0
	if entryCost > 0 {
		returnPct = pnl / entryCost * 100
	}

	return types.Trade{
		EntryTime:  p.EntryTime,
		ExitTime:   exitTime,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		Size:       p.Size,
		PnL:        pnl,
		ReturnPct:  returnPct,
		Fee:        fee,
		Reason:     reason,
	}
}

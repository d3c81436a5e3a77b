// Package metrics reduces a closed-trade log into standardized performance
// metrics. Compute is pure and idempotent; degenerate inputs (no trades, no
// losers, zero variance) map to well-defined sentinel values and never error.
package metrics

import (
	"math"

	"github.com/chaofengh/tradescan/internal/types"
)

// Metrics summarizes a trade log.
//
// Sentinels: ProfitFactor is +Inf when there are no losing trades (including
// the empty log); SharpeRatio is NaN when the PnL variance is zero or the log
// is empty; MaxDrawdown is always <= 0 and exactly 0 only when the equity
// curve never declines from its running peak.
type Metrics struct {
	WinRate      float64 `yaml:"win_rate" json:"win_rate"`
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	SharpeRatio  float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdown  float64 `yaml:"max_drawdown" json:"max_drawdown"`
	NumTrades    int     `yaml:"num_trades" json:"num_trades"`
}

// Compute aggregates the trade log. Break-even trades (pnl == 0) count in
// NumTrades but toward neither the win count nor the loss sum.
func Compute(trades []types.Trade) Metrics {
	if len(trades) == 0 {
		return Metrics{
			WinRate:      0.0,
			ProfitFactor: math.Inf(1),
			SharpeRatio:  math.NaN(),
			MaxDrawdown:  0.0,
			NumTrades:    0,
		}
	}

	var (
		wins      int
		grossWin  float64
		grossLoss float64
		sum       float64
	)

	for _, t := range trades {
		sum += t.PnL

		switch {
		case t.PnL > 0:
			wins++
			grossWin += t.PnL
		case t.PnL < 0:
			grossLoss += -t.PnL
		}
	}

	n := float64(len(trades))
	winRate := float64(wins) / n

	profitFactor := math.Inf(1)
	if grossLoss != 0 {
		profitFactor = grossWin / grossLoss
	}

	mean := sum / n

	var sqSum float64

	for _, t := range trades {
		d := t.PnL - mean
		sqSum += d * d
	}

	stddev := math.Sqrt(sqSum / n)

	sharpe := math.NaN()
	if stddev != 0 {
		sharpe = mean / stddev
	}

	var (
		equity      float64
		peak        float64
		maxDrawdown float64
	)

	for i, t := range trades {
		equity += t.PnL
		if i == 0 || equity > peak {
			peak = equity
		}

		if dd := equity - peak; dd < maxDrawdown {
			maxDrawdown = dd
		}
	}

	return Metrics{
		WinRate:      winRate,
		ProfitFactor: profitFactor,
		SharpeRatio:  sharpe,
		MaxDrawdown:  maxDrawdown,
		NumTrades:    len(trades),
	}
}

// NetPnL sums the trade log's profit and loss.
func NetPnL(trades []types.Trade) float64 {
	var sum float64
	for _, t := range trades {
		sum += t.PnL
	}

	return sum
}

package grid

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/chaofengh/tradescan/internal/engine"
	"github.com/chaofengh/tradescan/internal/metrics"
	"github.com/chaofengh/tradescan/internal/types"
)

// Scenario is the evaluation of one parameter combination over the whole
// historical window: the config, its aggregated metrics and the full trade
// log. Scenarios are immutable once produced.
type Scenario struct {
	Config  engine.StrategyConfig
	Metrics metrics.Metrics
	NetPnL  float64
	Trades  []types.Trade
}

// MetricsRecord is the JSON-serializable form of the metrics. The +Inf and
// NaN sentinels cannot be encoded in JSON, so non-finite profit factors and
// Sharpe ratios serialize as null.
type MetricsRecord struct {
	WinRate      float64  `json:"win_rate"`
	ProfitFactor *float64 `json:"profit_factor"`
	SharpeRatio  *float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	NumTrades    int      `json:"num_trades"`
}

// ScenarioRecord is the presentation form of a Scenario: a strategy tag
// string, display-rounded numbers and ISO-8601 trade timestamps.
type ScenarioRecord struct {
	Strategy string                `json:"strategy"`
	Filters  string                `json:"filters"`
	Config   engine.StrategyConfig `json:"config"`
	MetricsRecord
	NetPnL float64             `json:"net_pnl"`
	Trades []types.TradeRecord `json:"daily_trades"`
}

// Record converts the scenario to its display form. Rounding is cosmetic;
// ranking always happens on the unrounded Scenario values.
func (s Scenario) Record() ScenarioRecord {
	netPnL, _ := decimal.NewFromFloat(s.NetPnL).Round(2).Float64()

	return ScenarioRecord{
		Strategy: string(s.Config.Family),
		Filters:  s.Config.Label(),
		Config:   s.Config,
		MetricsRecord: MetricsRecord{
			WinRate:      round3(s.Metrics.WinRate),
			ProfitFactor: finiteOrNil(s.Metrics.ProfitFactor),
			SharpeRatio:  finiteOrNil(s.Metrics.SharpeRatio),
			MaxDrawdown:  round3(s.Metrics.MaxDrawdown),
			NumTrades:    s.Metrics.NumTrades,
		},
		NetPnL: netPnL,
		Trades: types.Records(s.Trades),
	}
}

// Rank returns a copy of the scenarios sorted by win rate, profit factor
// breaking ties, truncated to at most topN entries. topN <= 0 means no
// truncation. The input slice keeps its enumeration order.
func Rank(scenarios []Scenario, topN int) []Scenario {
	ranked := make([]Scenario, len(scenarios))
	copy(ranked, scenarios)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Metrics.WinRate != ranked[j].Metrics.WinRate {
			return ranked[i].Metrics.WinRate > ranked[j].Metrics.WinRate
		}

		return ranked[i].Metrics.ProfitFactor > ranked[j].Metrics.ProfitFactor
	})

	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}

	return ranked
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}

	rounded := round3(v)

	return &rounded
}

func round3(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(3).Float64()

	return rounded
}

package grid

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaofengh/tradescan/internal/engine"
	"github.com/chaofengh/tradescan/internal/metrics"
	"github.com/chaofengh/tradescan/internal/types"
)

func TestScenarioRecordRounding(t *testing.T) {
	entry := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

	s := Scenario{
		Config: engine.StrategyConfig{
			Family:           engine.FamilyBreakout,
			OpenRangeMinutes: 30,
			MaxEntries:       1,
		},
		Metrics: metrics.Metrics{
			WinRate:      0.6666666,
			ProfitFactor: 1.23456,
			SharpeRatio:  0.98765,
			MaxDrawdown:  -12.3456,
			NumTrades:    3,
		},
		NetPnL: 150.456,
		Trades: []types.Trade{{
			SessionKey: "2024-01-02",
			Direction:  types.DirectionLong,
			EntryPrice: 100.123456,
			EntryTime:  entry,
			ExitPrice:  101,
			ExitTime:   entry.Add(30 * time.Minute),
			PnL:        0.876544,
		}},
	}

	rec := s.Record()

	assert.Equal(t, "breakout", rec.Strategy)
	assert.Equal(t, s.Config.Label(), rec.Filters)
	assert.Equal(t, 0.667, rec.WinRate)
	require.NotNil(t, rec.ProfitFactor)
	assert.Equal(t, 1.235, *rec.ProfitFactor)
	require.NotNil(t, rec.SharpeRatio)
	assert.Equal(t, 0.988, *rec.SharpeRatio)
	assert.Equal(t, -12.346, rec.MaxDrawdown)
	assert.Equal(t, 150.46, rec.NetPnL)
	require.Len(t, rec.Trades, 1)
	assert.Equal(t, "2024-01-02", rec.Trades[0].Date)
}

func TestScenarioRecordNonFiniteSentinels(t *testing.T) {
	s := Scenario{
		Config:  engine.StrategyConfig{Family: engine.FamilyMeanReversion, MaxEntries: 1},
		Metrics: metrics.Compute(nil),
	}

	rec := s.Record()

	assert.Nil(t, rec.ProfitFactor)
	assert.Nil(t, rec.SharpeRatio)

	// The record must stay JSON-encodable despite the sentinel metrics.
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"profit_factor":null`)
	assert.Contains(t, string(raw), `"sharpe_ratio":null`)
}

func TestRank(t *testing.T) {
	mk := func(winRate, profitFactor float64) Scenario {
		return Scenario{Metrics: metrics.Metrics{WinRate: winRate, ProfitFactor: profitFactor}}
	}

	scenarios := []Scenario{
		mk(0.4, 2.0),
		mk(0.6, 1.0),
		mk(0.6, math.Inf(1)),
		mk(0.5, 3.0),
	}

	ranked := Rank(scenarios, 3)
	require.Len(t, ranked, 3)

	assert.Equal(t, 0.6, ranked[0].Metrics.WinRate)
	assert.True(t, math.IsInf(ranked[0].Metrics.ProfitFactor, 1))
	assert.Equal(t, 0.6, ranked[1].Metrics.WinRate)
	assert.Equal(t, 1.0, ranked[1].Metrics.ProfitFactor)
	assert.Equal(t, 0.5, ranked[2].Metrics.WinRate)

	// The input keeps its enumeration order.
	assert.Equal(t, 0.4, scenarios[0].Metrics.WinRate)
}

func TestRankNoTruncation(t *testing.T) {
	scenarios := []Scenario{
		{Metrics: metrics.Metrics{WinRate: 0.1}},
		{Metrics: metrics.Metrics{WinRate: 0.9}},
	}

	assert.Len(t, Rank(scenarios, 0), 2)
	assert.Len(t, Rank(scenarios, 10), 2)
}

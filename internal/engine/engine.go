// Package engine implements the per-bar, per-session trade state machine.
// Given one trading day's bars and a strategy configuration it walks bars in
// time order, opens at most one position at a time (up to the configured
// entry cap) and emits closed trades. The four strategy families share this
// engine and differ only in their entry predicate and enabled exit rules.
package engine

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
	"github.com/chaofengh/tradescan/pkg/errors"
)

// position is the engine's open-trade state, scoped to one session.
type position struct {
	direction  types.Direction
	entryPrice float64
	entryTime  time.Time
	atrAtEntry optional.Option[float64]
	stopLine   optional.Option[float64]
}

type options struct {
	keyFn  types.SessionKeyFunc
	ranges RangeLookup
}

// Option customizes an engine run.
type Option func(*options)

// WithSessionKey overrides the session boundary function (default: calendar
// date of the bar timestamp in UTC).
func WithSessionKey(fn types.SessionKeyFunc) Option {
	return func(o *options) {
		o.keyFn = fn
	}
}

// WithRangeLookup supplies precomputed opening ranges. The lookup is treated
// as read-only; the grid runner shares one lookup across all workers.
func WithRangeLookup(lookup RangeLookup) Option {
	return func(o *options) {
		o.ranges = lookup
	}
}

// Run walks the whole historical series session by session and returns the
// closed-trade log for the given configuration. Sessions with insufficient
// data for the configured reference range are skipped silently; malformed
// series are rejected with an error.
func Run(series types.Series, cfg StrategyConfig, opts ...Option) ([]types.Trade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid strategy config", err)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pred := entryFor(cfg.Family)
	ladder := exitLadder(cfg)

	var trades []types.Trade

	for _, session := range types.SplitSessions(series, o.keyFn) {
		trades = append(trades, simulateSession(session, cfg, pred, ladder, o.ranges)...)
	}

	return trades, nil
}

// sessionContext carries the per-session reference levels consumed by entry
// predicates.
type sessionContext struct {
	rangeHigh float64
	rangeLow  float64
}

// simulateSession runs the FLAT → OPEN → FLAT state machine over one
// session. It never returns an open trade: a position still open at the last
// bar is closed by the flush rule, and an unflushed position is a programming
// error worth a panic rather than a corrupt trade.
func simulateSession(session types.Session, cfg StrategyConfig, pred entryPredicate, ladder []exitRule, ranges RangeLookup) []types.Trade {
	bars := session.Bars
	if len(bars) == 0 {
		return nil
	}

	var sctx sessionContext

	firstEntry := 0

	if cfg.Family.UsesOpeningRange() {
		n := rangeBarCount(bars, cfg.OpenRangeMinutes)

		r, ok := lookupRange(session, cfg.OpenRangeMinutes, n, ranges)
		if !ok {
			// Expected data sparsity, not a fault.
			return nil
		}

		sctx.rangeHigh = r.High
		sctx.rangeLow = r.Low
		firstEntry = n

		if cfg.UseVolumeFilter && !passesVolumeFilter(bars, n) {
			return nil
		}
	}

	var (
		open       *position
		trades     []types.Trade
		tradeCount int
		lastDir    types.Direction
		lastLoss   bool
	)

	for i := range bars {
		bar := &bars[i]
		isLastBar := i == len(bars)-1

		if open == nil {
			if tradeCount >= cfg.MaxEntries || i < firstEntry || isLastBar {
				continue
			}

			sig, err := pred(bar, &sctx).Take()
			if err != nil {
				continue
			}

			if cfg.UseVWAPFilter && !passesVWAPFilter(bar, sig.direction) {
				continue
			}

			if cfg.LimitSameDirection && lastLoss && sig.direction == lastDir {
				continue
			}

			open = &position{
				direction:  sig.direction,
				entryPrice: bar.Close,
				entryTime:  bar.Time,
				atrAtEntry: bar.ATR,
				stopLine:   sig.stopLine,
			}

			// The entry bar is never evaluated for exit.
			continue
		}

		for _, rule := range ladder {
			exitPrice, err := rule.evaluate(bar, open, isLastBar).Take()
			if err != nil {
				continue
			}

			pnl := exitPrice - open.entryPrice
			if open.direction == types.DirectionShort {
				pnl = open.entryPrice - exitPrice
			}

			trades = append(trades, types.Trade{
				SessionKey: session.Key,
				Direction:  open.direction,
				EntryPrice: open.entryPrice,
				EntryTime:  open.entryTime,
				ExitPrice:  exitPrice,
				ExitTime:   bar.Time,
				PnL:        pnl,
			})

			tradeCount++
			lastDir = open.direction
			lastLoss = pnl < 0
			open = nil

			break
		}
	}

	if open != nil {
		panic(fmt.Sprintf("session %s: open trade not flushed at session end", session.Key))
	}

	return trades
}

// lookupRange resolves the opening range from the precomputed lookup when one
// is supplied, falling back to an on-the-fly computation. A missing entry
// means the session is too short for the configured range length.
func lookupRange(session types.Session, rangeMinutes, n int, ranges RangeLookup) (OpeningRange, bool) {
	if ranges != nil {
		byKey, ok := ranges[rangeMinutes]
		if !ok {
			return OpeningRange{}, false
		}

		r, ok := byKey[session.Key]

		return r, ok
	}

	return openingRange(session.Bars, n)
}

// passesVolumeFilter requires the opening range's cumulative volume to exceed
// the session's mean per-bar volume. A failing filter gates the whole session.
func passesVolumeFilter(bars types.Series, n int) bool {
	var rangeVol, totalVol float64

	for i := range bars {
		totalVol += bars[i].Volume
		if i < n {
			rangeVol += bars[i].Volume
		}
	}

	return rangeVol > totalVol/float64(len(bars))
}

// passesVWAPFilter requires long entries to close at or above the session
// VWAP and short entries at or below it. A failing (or undefined) VWAP
// cancels this direction for this bar only.
func passesVWAPFilter(bar *types.Bar, direction types.Direction) bool {
	vwap, err := bar.VWAP.Take()
	if err != nil {
		return false
	}

	if direction == types.DirectionLong {
		return bar.Close >= vwap
	}

	return bar.Close <= vwap
}

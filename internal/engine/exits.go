package engine

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
)

// exitRule is one evaluator in the engine's exit ladder. It returns the exit
// price when its condition fires on the given bar, or None. The engine
// applies rules in ladder order and takes the first non-None result, so the
// exit priority is an explicit list rather than implicit code order.
type exitRule interface {
	name() string
	evaluate(bar *types.Bar, pos *position, isLastBar bool) optional.Option[float64]
}

// bandProfitTake closes a mean-reversion trade when the close touches the
// band opposite the entry band.
type bandProfitTake struct{}

func (bandProfitTake) name() string { return "band_profit_take" }

func (bandProfitTake) evaluate(bar *types.Bar, pos *position, _ bool) optional.Option[float64] {
	switch pos.direction {
	case types.DirectionLong:
		if upper, err := bar.BandUpper.Take(); err == nil && bar.Close >= upper {
			return optional.Some(bar.Close)
		}
	case types.DirectionShort:
		if lower, err := bar.BandLower.Take(); err == nil && bar.Close <= lower {
			return optional.Some(bar.Close)
		}
	}

	return optional.None[float64]()
}

// stopLineFlip closes a support/resistance trade when the close crosses back
// through the paired level captured at entry.
type stopLineFlip struct{}

func (stopLineFlip) name() string { return "stop_line_flip" }

func (stopLineFlip) evaluate(bar *types.Bar, pos *position, _ bool) optional.Option[float64] {
	stop, err := pos.stopLine.Take()
	if err != nil {
		return optional.None[float64]()
	}

	if (pos.direction == types.DirectionLong && bar.Close < stop) ||
		(pos.direction == types.DirectionShort && bar.Close > stop) {
		return optional.Some(bar.Close)
	}

	return optional.None[float64]()
}

// percentStop is a fixed percentage stop from the entry price, checked
// against the bar's intrabar high/low. The exit fills at the trigger price.
type percentStop struct {
	pct float64
}

func (percentStop) name() string { return "percent_stop" }

func (r percentStop) evaluate(bar *types.Bar, pos *position, _ bool) optional.Option[float64] {
	var trigger float64

	switch pos.direction {
	case types.DirectionLong:
		trigger = pos.entryPrice * (1 - r.pct)
		if bar.Low <= trigger {
			return optional.Some(trigger)
		}
	case types.DirectionShort:
		trigger = pos.entryPrice * (1 + r.pct)
		if bar.High >= trigger {
			return optional.Some(trigger)
		}
	}

	return optional.None[float64]()
}

// atrStop is an ATR-multiple stop from the entry price using the ATR value
// captured at entry time, checked against the intrabar high/low. A trade
// entered before the ATR warm-up carries no ATR and the rule never fires.
type atrStop struct {
	multiplier float64
}

func (atrStop) name() string { return "atr_stop" }

func (r atrStop) evaluate(bar *types.Bar, pos *position, _ bool) optional.Option[float64] {
	atr, err := pos.atrAtEntry.Take()
	if err != nil {
		return optional.None[float64]()
	}

	var trigger float64

	switch pos.direction {
	case types.DirectionLong:
		trigger = pos.entryPrice - r.multiplier*atr
		if bar.Low <= trigger {
			return optional.Some(trigger)
		}
	case types.DirectionShort:
		trigger = pos.entryPrice + r.multiplier*atr
		if bar.High >= trigger {
			return optional.Some(trigger)
		}
	}

	return optional.None[float64]()
}

// timeExit closes the trade at the close of the first bar whose elapsed time
// since entry reaches the configured minutes.
type timeExit struct {
	minutes int
}

func (timeExit) name() string { return "time_exit" }

func (r timeExit) evaluate(bar *types.Bar, pos *position, _ bool) optional.Option[float64] {
	if bar.Time.Sub(pos.entryTime) >= time.Duration(r.minutes)*time.Minute {
		return optional.Some(bar.Close)
	}

	return optional.None[float64]()
}

// sessionFlush force-closes at the session's final bar regardless of other
// conditions. It is always the last rule of the ladder.
type sessionFlush struct{}

func (sessionFlush) name() string { return "session_flush" }

func (sessionFlush) evaluate(bar *types.Bar, _ *position, isLastBar bool) optional.Option[float64] {
	if isLastBar {
		return optional.Some(bar.Close)
	}

	return optional.None[float64]()
}

// exitLadder assembles the ordered exit evaluators for one config. The
// ladder order is fixed: band profit-take, stop-line flip, percentage stop,
// ATR stop, time exit, then the unconditional session flush.
func exitLadder(cfg StrategyConfig) []exitRule {
	var ladder []exitRule

	if cfg.Family == FamilyMeanReversion {
		ladder = append(ladder, bandProfitTake{})
	}

	if cfg.Family == FamilySupportResistance {
		ladder = append(ladder, stopLineFlip{})
	}

	if pct, err := cfg.StopLossPct.Take(); err == nil {
		ladder = append(ladder, percentStop{pct: pct})
	}

	if mult, err := cfg.ATRStopMultiplier.Take(); err == nil {
		ladder = append(ladder, atrStop{multiplier: mult})
	}

	if minutes, err := cfg.TimeExitMinutes.Take(); err == nil {
		ladder = append(ladder, timeExit{minutes: minutes})
	}

	ladder = append(ladder, sessionFlush{})

	return ladder
}

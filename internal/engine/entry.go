package engine

import (
	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
)

// entrySignal is the outcome of an entry predicate: a direction plus, for the
// support/resistance family, the paired level that becomes the trade's stop
// line.
type entrySignal struct {
	direction types.Direction
	stopLine  optional.Option[float64]
}

// entryPredicate inspects one bar while the engine is flat and proposes an
// entry, or None. Predicates are pure; the entry filters (VWAP, volume,
// repeat-direction suppression) are applied by the engine afterwards.
type entryPredicate func(bar *types.Bar, sctx *sessionContext) optional.Option[entrySignal]

// entryFor returns the entry predicate of a strategy family.
func entryFor(family Family) entryPredicate {
	switch family {
	case FamilyBreakout:
		return breakoutEntry(false)
	case FamilyReverseBreakout:
		return breakoutEntry(true)
	case FamilyMeanReversion:
		return meanReversionEntry
	case FamilySupportResistance:
		return supportResistanceEntry
	default:
		panic("unknown strategy family: " + string(family))
	}
}

// breakoutEntry goes long when the close breaks above the opening range high
// and short when it breaks below the range low. The reverse variant flips the
// direction of both breaks.
func breakoutEntry(reverse bool) entryPredicate {
	return func(bar *types.Bar, sctx *sessionContext) optional.Option[entrySignal] {
		var direction types.Direction

		switch {
		case bar.Close > sctx.rangeHigh:
			direction = types.DirectionLong
		case bar.Close < sctx.rangeLow:
			direction = types.DirectionShort
		default:
			return optional.None[entrySignal]()
		}

		if reverse {
			direction = opposite(direction)
		}

		return optional.Some(entrySignal{direction: direction, stopLine: optional.None[float64]()})
	}
}

// meanReversionEntry fades a band excursion: long when the close or open is
// at or below the lower band, short when at or above the upper band.
func meanReversionEntry(bar *types.Bar, _ *sessionContext) optional.Option[entrySignal] {
	if lower, err := bar.BandLower.Take(); err == nil && (bar.Close <= lower || bar.Open <= lower) {
		return optional.Some(entrySignal{direction: types.DirectionLong, stopLine: optional.None[float64]()})
	}

	if upper, err := bar.BandUpper.Take(); err == nil && (bar.Close >= upper || bar.Open >= upper) {
		return optional.Some(entrySignal{direction: types.DirectionShort, stopLine: optional.None[float64]()})
	}

	return optional.None[entrySignal]()
}

// supportResistanceEntry goes long on a close above the resistance level and
// short on a close below support. The opposite level becomes the trade's stop
// line for the stop-line-flip exit.
func supportResistanceEntry(bar *types.Bar, _ *sessionContext) optional.Option[entrySignal] {
	if resistance, err := bar.Resistance.Take(); err == nil && bar.Close > resistance {
		return optional.Some(entrySignal{direction: types.DirectionLong, stopLine: bar.Support})
	}

	if support, err := bar.Support.Take(); err == nil && bar.Close < support {
		return optional.Some(entrySignal{direction: types.DirectionShort, stopLine: bar.Resistance})
	}

	return optional.None[entrySignal]()
}

func opposite(d types.Direction) types.Direction {
	if d == types.DirectionLong {
		return types.DirectionShort
	}

	return types.DirectionLong
}

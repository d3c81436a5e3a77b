// Package grid enumerates the strategy parameter space and evaluates every
// combination with the session trade engine, producing ranked scenarios.
package grid

import (
	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/engine"
	"github.com/chaofengh/tradescan/pkg/errors"
)

// Axes defines one slice of parameter values per StrategyConfig field. The
// grid is the Cartesian product of all axes.
type Axes struct {
	Families           []engine.Family
	OpenRangeMinutes   []int
	UseVolumeFilter    []bool
	UseVWAPFilter      []bool
	StopLossPcts       []optional.Option[float64]
	ATRStopMultipliers []optional.Option[float64]
	TimeExitMinutes    []optional.Option[int]
	LimitSameDirection []bool
	MaxEntries         []int
}

// DefaultAxes is the conventional breakout sweep: five opening-range lengths,
// optional percentage and ATR stops, a spread of time exits, filter toggles
// and one or two entries per session.
func DefaultAxes() Axes {
	return Axes{
		Families:         []engine.Family{engine.FamilyBreakout, engine.FamilyReverseBreakout},
		OpenRangeMinutes: []int{5, 10, 15, 30, 45},
		UseVolumeFilter:  []bool{false, true},
		UseVWAPFilter:    []bool{false, true},
		StopLossPcts: []optional.Option[float64]{
			optional.None[float64](),
			optional.Some(0.003),
			optional.Some(0.005),
			optional.Some(0.01),
		},
		ATRStopMultipliers: []optional.Option[float64]{
			optional.None[float64](),
			optional.Some(1.0),
			optional.Some(1.5),
			optional.Some(2.0),
		},
		TimeExitMinutes: []optional.Option[int]{
			optional.Some(5),
			optional.Some(10),
			optional.Some(15),
			optional.Some(30),
			optional.Some(60),
			optional.Some(90),
			optional.Some(120),
			optional.Some(180),
			optional.Some(240),
			optional.None[int](),
		},
		LimitSameDirection: []bool{false, true},
		MaxEntries:         []int{1, 2},
	}
}

// SinglePassConfigs returns the two non-ranged strategy families with their
// pass-through defaults: hold to the session flush, one entry, no filters.
func SinglePassConfigs() []engine.StrategyConfig {
	configs := make([]engine.StrategyConfig, 0, 2)

	for _, family := range []engine.Family{engine.FamilyMeanReversion, engine.FamilySupportResistance} {
		configs = append(configs, engine.StrategyConfig{
			Family:             family,
			OpenRangeMinutes:   0,
			StopLossPct:        optional.None[float64](),
			ATRStopMultiplier:  optional.None[float64](),
			TimeExitMinutes:    optional.None[int](),
			LimitSameDirection: false,
			MaxEntries:         1,
		})
	}

	return configs
}

// Validate rejects axes with an empty dimension; an empty axis would silently
// collapse the whole product to nothing.
func (a Axes) Validate() error {
	switch {
	case len(a.Families) == 0,
		len(a.OpenRangeMinutes) == 0,
		len(a.UseVolumeFilter) == 0,
		len(a.UseVWAPFilter) == 0,
		len(a.StopLossPcts) == 0,
		len(a.ATRStopMultipliers) == 0,
		len(a.TimeExitMinutes) == 0,
		len(a.LimitSameDirection) == 0,
		len(a.MaxEntries) == 0:
		return errors.New(errors.ErrCodeInvalidAxes, "every axis must contain at least one value")
	}

	return nil
}

// Size is the number of combinations Enumerate will produce.
func (a Axes) Size() int {
	return len(a.Families) * len(a.OpenRangeMinutes) * len(a.UseVolumeFilter) *
		len(a.UseVWAPFilter) * len(a.StopLossPcts) * len(a.ATRStopMultipliers) *
		len(a.TimeExitMinutes) * len(a.LimitSameDirection) * len(a.MaxEntries)
}

// Enumerate produces the full Cartesian product in a fixed, deterministic
// order. No pruning happens here; see PruneRedundant.
func (a Axes) Enumerate() ([]engine.StrategyConfig, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	configs := make([]engine.StrategyConfig, 0, a.Size())

	for _, family := range a.Families {
		for _, rangeMinutes := range a.OpenRangeMinutes {
			for _, volumeFilter := range a.UseVolumeFilter {
				for _, vwapFilter := range a.UseVWAPFilter {
					for _, stopLoss := range a.StopLossPcts {
						for _, atrMult := range a.ATRStopMultipliers {
							for _, timeExit := range a.TimeExitMinutes {
								for _, limitSameDir := range a.LimitSameDirection {
									for _, maxEntries := range a.MaxEntries {
										configs = append(configs, engine.StrategyConfig{
											Family:             family,
											OpenRangeMinutes:   rangeMinutes,
											UseVolumeFilter:    volumeFilter,
											UseVWAPFilter:      vwapFilter,
											StopLossPct:        stopLoss,
											ATRStopMultiplier:  atrMult,
											TimeExitMinutes:    timeExit,
											LimitSameDirection: limitSameDir,
											MaxEntries:         maxEntries,
										})
									}
								}
							}
						}
					}
				}
			}
		}
	}

	return configs, nil
}

// PruneRedundant drops combinations that cannot differ from cheaper ones: a
// time exit shorter than the opening range can never fire before the range is
// even established, and combos with no protective stop at all duplicate the
// hold-to-close behavior already covered elsewhere in the sweep.
func PruneRedundant(configs []engine.StrategyConfig) []engine.StrategyConfig {
	kept := make([]engine.StrategyConfig, 0, len(configs))

	for _, cfg := range configs {
		if minutes, err := cfg.TimeExitMinutes.Take(); err == nil && minutes < cfg.OpenRangeMinutes {
			continue
		}

		if cfg.StopLossPct.IsNone() && cfg.ATRStopMultiplier.IsNone() {
			continue
		}

		kept = append(kept, cfg)
	}

	return kept
}

// DistinctRangeMinutes collects the distinct opening-range lengths used by
// configs whose family consumes a range, preserving first-seen order.
func DistinctRangeMinutes(configs []engine.StrategyConfig) []int {
	seen := make(map[int]bool)

	var distinct []int

	for _, cfg := range configs {
		if !cfg.Family.UsesOpeningRange() || seen[cfg.OpenRangeMinutes] {
			continue
		}

		seen[cfg.OpenRangeMinutes] = true
		distinct = append(distinct, cfg.OpenRangeMinutes)
	}

	return distinct
}

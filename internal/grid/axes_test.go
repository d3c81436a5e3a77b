package grid

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaofengh/tradescan/internal/engine"
	"github.com/chaofengh/tradescan/pkg/errors"
)

// sweepAxes is a small grid: 5 range lengths x 4 stop losses x 2 entry caps,
// every other axis a singleton.
func sweepAxes() Axes {
	return Axes{
		Families:         []engine.Family{engine.FamilyBreakout},
		OpenRangeMinutes: []int{5, 10, 15, 30, 45},
		UseVolumeFilter:  []bool{false},
		UseVWAPFilter:    []bool{false},
		StopLossPcts: []optional.Option[float64]{
			optional.None[float64](),
			optional.Some(0.003),
			optional.Some(0.005),
			optional.Some(0.01),
		},
		ATRStopMultipliers: []optional.Option[float64]{optional.None[float64]()},
		TimeExitMinutes:    []optional.Option[int]{optional.None[int]()},
		LimitSameDirection: []bool{false},
		MaxEntries:         []int{1, 2},
	}
}

func TestAxesSizeAndEnumerate(t *testing.T) {
	axes := sweepAxes()

	assert.Equal(t, 40, axes.Size())

	configs, err := axes.Enumerate()
	require.NoError(t, err)
	require.Len(t, configs, 40)

	// Every combination is distinct.
	seen := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		label := cfg.Label()
		assert.False(t, seen[label], "duplicate combination %s", label)
		seen[label] = true
	}
}

func TestAxesEnumerateIsDeterministic(t *testing.T) {
	first, err := sweepAxes().Enumerate()
	require.NoError(t, err)

	second, err := sweepAxes().Enumerate()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAxesValidateRejectsEmptyAxis(t *testing.T) {
	axes := sweepAxes()
	axes.TimeExitMinutes = nil

	err := axes.Validate()
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidAxes))

	_, err = axes.Enumerate()
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidAxes))
}

func TestDefaultAxesSize(t *testing.T) {
	// 2 families x 5 ranges x 2 x 2 filters x 4 stops x 4 ATR x 10 exits x 2 x 2.
	assert.Equal(t, 25600, DefaultAxes().Size())
}

func TestPruneRedundant(t *testing.T) {
	base := engine.StrategyConfig{
		Family:           engine.FamilyBreakout,
		OpenRangeMinutes: 30,
		StopLossPct:      optional.Some(0.005),
		MaxEntries:       1,
	}

	shortExit := base
	shortExit.TimeExitMinutes = optional.Some(15) // shorter than the range

	unprotected := base
	unprotected.StopLossPct = optional.None[float64]()

	longExit := base
	longExit.TimeExitMinutes = optional.Some(60)

	kept := PruneRedundant([]engine.StrategyConfig{base, shortExit, unprotected, longExit})

	require.Len(t, kept, 2)
	assert.Equal(t, base, kept[0])
	assert.Equal(t, longExit, kept[1])
}

func TestSinglePassConfigs(t *testing.T) {
	configs := SinglePassConfigs()

	require.Len(t, configs, 2)
	assert.Equal(t, engine.FamilyMeanReversion, configs[0].Family)
	assert.Equal(t, engine.FamilySupportResistance, configs[1].Family)

	for _, cfg := range configs {
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, 1, cfg.MaxEntries)
		assert.True(t, cfg.TimeExitMinutes.IsNone())
	}
}

func TestDistinctRangeMinutes(t *testing.T) {
	configs, err := sweepAxes().Enumerate()
	require.NoError(t, err)

	configs = append(configs, SinglePassConfigs()...)

	assert.Equal(t, []int{5, 10, 15, 30, 45}, DistinctRangeMinutes(configs))
}

package grid

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaofengh/tradescan/internal/engine"
	"github.com/chaofengh/tradescan/mocks"
	"github.com/chaofengh/tradescan/pkg/errors"
)

func runnerConfigs() []engine.StrategyConfig {
	return []engine.StrategyConfig{
		{Family: engine.FamilyBreakout, OpenRangeMinutes: 15, MaxEntries: 1},
		{Family: engine.FamilyBreakout, OpenRangeMinutes: 30, MaxEntries: 2},
		{Family: engine.FamilyReverseBreakout, OpenRangeMinutes: 30, StopLossPct: optional.Some(0.005), MaxEntries: 1},
		{Family: engine.FamilyMeanReversion, MaxEntries: 1},
	}
}

func TestRunnerRun(t *testing.T) {
	series := mocks.GenerateWeek()
	configs := runnerConfigs()

	runner := NewRunner(nil, nil, 4)

	result, err := runner.Run(context.Background(), series, configs, optional.None[OnScenarioCallback]())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Series, len(series))
	require.Len(t, result.Scenarios, len(configs))

	// Scenario slots follow config order regardless of worker scheduling.
	for i, scenario := range result.Scenarios {
		assert.Equal(t, configs[i], scenario.Config)
		assert.Equal(t, len(scenario.Trades), scenario.Metrics.NumTrades)
	}
}

func TestRunnerRunIsDeterministic(t *testing.T) {
	series := mocks.GenerateWeek()
	configs := runnerConfigs()

	first, err := NewRunner(nil, nil, 1).Run(context.Background(), series, configs, optional.None[OnScenarioCallback]())
	require.NoError(t, err)

	second, err := NewRunner(nil, nil, 8).Run(context.Background(), series, configs, optional.None[OnScenarioCallback]())
	require.NoError(t, err)

	require.Len(t, second.Scenarios, len(first.Scenarios))

	// Trade logs determine the metrics, so identical logs mean identical runs.
	for i := range first.Scenarios {
		assert.Equal(t, first.Scenarios[i].Trades, second.Scenarios[i].Trades)
		assert.Equal(t, first.Scenarios[i].NetPnL, second.Scenarios[i].NetPnL)
		assert.Equal(t, first.Scenarios[i].Metrics.NumTrades, second.Scenarios[i].Metrics.NumTrades)
	}
}

func TestRunnerReportsProgress(t *testing.T) {
	series := mocks.GenerateWeek()
	configs := runnerConfigs()

	var calls atomic.Int64
	var lastTotal atomic.Int64

	cb := OnScenarioCallback(func(done, total int) {
		calls.Add(1)
		lastTotal.Store(int64(total))
	})

	_, err := NewRunner(nil, nil, 2).Run(context.Background(), series, configs, optional.Some(cb))
	require.NoError(t, err)

	assert.Equal(t, int64(len(configs)), calls.Load())
	assert.Equal(t, int64(len(configs)), lastTotal.Load())
}

func TestRunnerRejectsEmptyConfigSet(t *testing.T) {
	_, err := NewRunner(nil, nil, 1).Run(context.Background(), mocks.GenerateWeek(), nil, optional.None[OnScenarioCallback]())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidAxes))
}

func TestRunnerRejectsMalformedSeries(t *testing.T) {
	series := mocks.GenerateWeek()
	series[5].Time = series[4].Time

	_, err := NewRunner(nil, nil, 1).Run(context.Background(), series, runnerConfigs(), optional.None[OnScenarioCallback]())
	assert.Error(t, err)
}

func TestRunnerAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, 1).Run(ctx, mocks.GenerateWeek(), runnerConfigs(), optional.None[OnScenarioCallback]())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeGridAborted))
}

func TestRunnerSurfacesEngineErrors(t *testing.T) {
	bad := []engine.StrategyConfig{
		{Family: engine.FamilyBreakout, OpenRangeMinutes: 0, MaxEntries: 1},
	}

	_, err := NewRunner(nil, nil, 1).Run(context.Background(), mocks.GenerateWeek(), bad, optional.None[OnScenarioCallback]())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeGridRunFailed))
}

package grid

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chaofengh/tradescan/internal/engine"
	"github.com/chaofengh/tradescan/internal/logger"
	"github.com/chaofengh/tradescan/internal/metrics"
	"github.com/chaofengh/tradescan/internal/types"
	"github.com/chaofengh/tradescan/pkg/errors"
)

// OnScenarioCallback reports grid progress after each completed combination.
type OnScenarioCallback func(done, total int)

// Result is the full, enumeration-ordered scenario set plus the raw series
// for downstream charting. Callers sort and truncate via Rank.
type Result struct {
	RunID     string
	Scenarios []Scenario
	Series    types.Series
}

// Runner evaluates parameter combinations against one indicator-augmented
// series. Combinations are independent, so they fan out across a bounded
// worker pool; the series and the precomputed range lookup are shared
// read-only.
type Runner struct {
	log     *logger.Logger
	keyFn   types.SessionKeyFunc
	workers int
}

// NewRunner creates a grid runner. workers <= 0 means GOMAXPROCS.
func NewRunner(log *logger.Logger, keyFn types.SessionKeyFunc, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Runner{
		log:     log,
		keyFn:   keyFn,
		workers: workers,
	}
}

// Run evaluates every config over the whole series and returns one scenario
// per config, in config order. The series is validated once up front;
// per-session derived values shared across combinations (the opening ranges)
// are computed exactly once before fan-out. Context cancellation aborts at
// combination granularity — a combination already running completes its
// sessions, so no partially-simulated session can leak out.
func (r *Runner) Run(ctx context.Context, series types.Series, configs []engine.StrategyConfig, onProgress optional.Option[OnScenarioCallback]) (*Result, error) {
	if len(configs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidAxes, "no configurations to evaluate")
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	rangeLookup := engine.BuildRangeLookup(series, r.keyFn, DistinctRangeMinutes(configs))

	r.log.Debug("Grid run starting",
		zap.Int("combinations", len(configs)),
		zap.Int("workers", r.workers),
		zap.Int("bars", len(series)),
	)

	scenarios := make([]Scenario, len(configs))

	var done atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for i, cfg := range configs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return errors.Wrap(errors.ErrCodeGridAborted, "grid run aborted", err)
			}

			trades, err := engine.Run(series, cfg,
				engine.WithSessionKey(r.keyFn),
				engine.WithRangeLookup(rangeLookup),
			)
			if err != nil {
				return errors.Wrapf(errors.ErrCodeGridRunFailed, err, "combination %d (%s)", i, cfg.Label())
			}

			scenarios[i] = Scenario{
				Config:  cfg,
				Metrics: metrics.Compute(trades),
				NetPnL:  metrics.NetPnL(trades),
				Trades:  trades,
			}

			if cb, err := onProgress.Take(); err == nil {
				cb(int(done.Add(1)), len(configs))
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	r.log.Debug("Grid run finished", zap.Int("combinations", len(configs)))

	return &Result{
		RunID:     uuid.NewString(),
		Scenarios: scenarios,
		Series:    series,
	}, nil
}

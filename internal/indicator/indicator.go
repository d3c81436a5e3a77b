// Package indicator augments a bar series with rolling statistical bands and
// derived levels. Every function here is a pure transform: the input series is
// never mutated and no state survives across calls. Values before an
// indicator's warm-up window has filled are None, not zero — downstream code
// must treat them as "insufficient data", never as non-events.
package indicator

import (
	"github.com/chaofengh/tradescan/internal/types"
	"github.com/chaofengh/tradescan/pkg/errors"
)

// Config bundles the indicator windows used by Enrich.
type Config struct {
	// BandPeriod is the rolling window for the envelope mean and stddev.
	BandPeriod int `yaml:"band_period" validate:"gt=0"`
	// BandStdDev is the envelope width in population standard deviations.
	BandStdDev float64 `yaml:"band_std_dev" validate:"gt=0"`
	// ATRPeriod is the true-range averaging window.
	ATRPeriod int `yaml:"atr_period" validate:"gt=0"`
}

// DefaultConfig returns the conventional 20-period, 2-sigma envelope with a
// 14-period ATR.
func DefaultConfig() Config {
	return Config{
		BandPeriod: 20,
		BandStdDev: 2.0,
		ATRPeriod:  14,
	}
}

// Enrich returns a copy of the series with bands, ATR, session VWAP and
// prior-session support/resistance attached. keyFn defines the session
// boundary for VWAP resets and the support/resistance pair; nil means
// types.UTCDateKey.
func Enrich(series types.Series, cfg Config, keyFn types.SessionKeyFunc) (types.Series, error) {
	if cfg.BandPeriod <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "band period must be positive, got %d", cfg.BandPeriod)
	}

	if cfg.BandStdDev <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "band stddev must be positive, got %f", cfg.BandStdDev)
	}

	if cfg.ATRPeriod <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "atr period must be positive, got %d", cfg.ATRPeriod)
	}

	enriched := make(types.Series, len(series))
	copy(enriched, series)

	attachBands(enriched, cfg.BandPeriod, cfg.BandStdDev)
	attachATR(enriched, cfg.ATRPeriod)

	sessions := types.SplitSessions(enriched, keyFn)
	attachVWAP(sessions)
	attachSessionLevels(sessions)

	return enriched, nil
}

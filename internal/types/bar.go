package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/pkg/errors"
)

// Bar is one sampled time unit of a price series. OHLCV fields come from the
// data layer; the indicator fields are attached by indicator.Enrich and are
// None until the corresponding warm-up window has filled. A Bar is never
// mutated after it has been produced.
type Bar struct {
	Time   time.Time `csv:"time" json:"time"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`

	BandUpper  optional.Option[float64] `json:"band_upper,omitempty"`
	BandMiddle optional.Option[float64] `json:"band_middle,omitempty"`
	BandLower  optional.Option[float64] `json:"band_lower,omitempty"`
	ATR        optional.Option[float64] `json:"atr,omitempty"`
	VWAP       optional.Option[float64] `json:"vwap,omitempty"`
	Support    optional.Option[float64] `json:"support,omitempty"`
	Resistance optional.Option[float64] `json:"resistance,omitempty"`
}

// Series is an ordered single-symbol bar sequence.
type Series []Bar

// Validate rejects malformed input before it can reach the engine:
// timestamps must be strictly increasing and OHLC values finite. The upstream
// data layer is responsible for cleaning, but bad input must fail loudly
// rather than produce nonsense trades.
func (s Series) Validate() error {
	for i := range s {
		bar := &s[i]

		if i > 0 {
			prev := s[i-1].Time
			if bar.Time.Equal(prev) {
				return errors.Newf(errors.ErrCodeDuplicateTimestamp, "duplicate timestamp %s at index %d", bar.Time.Format(time.RFC3339), i)
			}

			if bar.Time.Before(prev) {
				return errors.Newf(errors.ErrCodeSeriesNotMonotonic, "timestamp %s at index %d precedes previous bar", bar.Time.Format(time.RFC3339), i)
			}
		}

		for _, v := range []float64{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf(errors.ErrCodeNonFinitePrice, "non-finite OHLCV value at index %d (%s)", i, bar.Time.Format(time.RFC3339))
			}
		}
	}

	return nil
}

// Interval returns the spacing between the first two bars. Zero when the
// series has fewer than two bars.
func (s Series) Interval() time.Duration {
	if len(s) < 2 {
		return 0
	}

	return s[1].Time.Sub(s[0].Time)
}

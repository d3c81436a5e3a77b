package engine

import (
	"math"
	"time"

	"github.com/chaofengh/tradescan/internal/types"
)

// OpeningRange holds the high/low extremes of the first N bars of a session.
type OpeningRange struct {
	High float64
	Low  float64
}

// RangeLookup maps range length (minutes) → session key → opening range. The
// grid runner builds one lookup before fan-out since the same range length
// recurs across many combinations; after construction it is read-only and
// safe to share across workers.
type RangeLookup map[int]map[string]OpeningRange

// rangeBarCount converts a range length in minutes to a bar count for the
// session's sampling interval. Zero when the interval cannot be determined
// (fewer than two bars) or is non-positive.
func rangeBarCount(bars types.Series, rangeMinutes int) int {
	interval := bars.Interval()
	if interval <= 0 {
		return 0
	}

	return int(math.Ceil(float64(rangeMinutes) * float64(time.Minute) / float64(interval)))
}

// openingRange computes the high/low of the first n bars. False when the
// session is too short.
func openingRange(bars types.Series, n int) (OpeningRange, bool) {
	if n <= 0 || len(bars) < n {
		return OpeningRange{}, false
	}

	r := OpeningRange{High: bars[0].High, Low: bars[0].Low}

	for i := 1; i < n; i++ {
		if bars[i].High > r.High {
			r.High = bars[i].High
		}

		if bars[i].Low < r.Low {
			r.Low = bars[i].Low
		}
	}

	return r, true
}

// BuildRangeLookup precomputes the opening range of every session for every
// distinct range length. Sessions too short for a given length are simply
// absent from that length's map, which the engine treats as "skip session".
func BuildRangeLookup(series types.Series, keyFn types.SessionKeyFunc, rangeMinutes []int) RangeLookup {
	lookup := make(RangeLookup, len(rangeMinutes))
	for _, m := range rangeMinutes {
		lookup[m] = make(map[string]OpeningRange)
	}

	for _, session := range types.SplitSessions(series, keyFn) {
		for _, m := range rangeMinutes {
			n := rangeBarCount(session.Bars, m)
			if r, ok := openingRange(session.Bars, n); ok {
				lookup[m][session.Key] = r
			}
		}
	}

	return lookup
}

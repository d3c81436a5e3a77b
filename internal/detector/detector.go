// Package detector scans an indicator-augmented series for discrete band
// events: single-bar touches and multi-bar hugs. Both scans are stateless
// given their input and run in a single forward pass.
package detector

import (
	"math"

	"github.com/chaofengh/tradescan/internal/types"
	"github.com/chaofengh/tradescan/pkg/errors"
)

// DetectTouches reports every bar whose high reaches the upper band or whose
// low reaches the lower band. A bar with missing band values never produces a
// touch. One bar can produce both an upper and a lower touch only when the
// bands invert; callers should guard against zero-width bands upstream.
func DetectTouches(series types.Series) []types.TouchEvent {
	var touches []types.TouchEvent

	for i := range series {
		bar := &series[i]

		if upper, err := bar.BandUpper.Take(); err == nil && bar.High >= upper {
			touches = append(touches, types.TouchEvent{
				Time:  bar.Time,
				Index: i,
				Band:  types.BandUpper,
				Price: bar.Close,
			})
		}

		if lower, err := bar.BandLower.Take(); err == nil && bar.Low <= lower {
			touches = append(touches, types.TouchEvent{
				Time:  bar.Time,
				Index: i,
				Band:  types.BandLower,
				Price: bar.Close,
			})
		}
	}

	return touches
}

// DetectHugs groups touches into hug events: runs of consecutive bars whose
// close stays within tolerancePct of the touched band. A run shorter than
// minRun is discarded (the underlying touches still exist on their own).
// After a hug closes, the scan resumes immediately past its end index, so
// hugs never overlap or restart mid-run. Returns the upper-band and
// lower-band hugs separately.
func DetectHugs(series types.Series, touches []types.TouchEvent, tolerancePct float64, minRun int) (upper, lower []types.HugEvent, err error) {
	if tolerancePct < 0 {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidTolerance, "tolerance must be non-negative, got %f", tolerancePct)
	}

	if minRun < 2 {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidRunLength, "minimum run length must be at least 2, got %d", minRun)
	}

	touchAt := make(map[int]map[types.Band]bool, len(touches))

	for _, t := range touches {
		if touchAt[t.Index] == nil {
			touchAt[t.Index] = make(map[types.Band]bool, 2)
		}

		touchAt[t.Index][t.Band] = true
	}

	n := len(series)

	for i := 0; i < n; {
		advanced := false

		for _, band := range []types.Band{types.BandUpper, types.BandLower} {
			if !touchAt[i][band] {
				continue
			}

			end := i
			for j := i + 1; j < n && nearBand(&series[j], band, tolerancePct); j++ {
				end = j
			}

			if end-i+1 < minRun {
				continue
			}

			hug := types.NewHugEvent(series, band, i, end)

			switch band {
			case types.BandUpper:
				upper = append(upper, hug)
			case types.BandLower:
				lower = append(lower, hug)
			}

			i = end + 1
			advanced = true

			break
		}

		if !advanced {
			i++
		}
	}

	return upper, lower, nil
}

// nearBand reports whether the bar's close is within tolerancePct (percent)
// of the band value. Inclusion at the exact threshold counts as near.
func nearBand(bar *types.Bar, band types.Band, tolerancePct float64) bool {
	bandValue := bar.BandUpper
	if band == types.BandLower {
		bandValue = bar.BandLower
	}

	value, err := bandValue.Take()
	if err != nil || value == 0 {
		return false
	}

	diffPct := math.Abs(bar.Close-value) / value * 100

	return diffPct <= tolerancePct
}

package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
)

// trueRange for bar i. The first bar has no previous close, so its true range
// degenerates to the high-low span.
func trueRange(series types.Series, i int) float64 {
	hl := series[i].High - series[i].Low
	if i == 0 {
		return hl
	}

	prevClose := series[i-1].Close
	hc := math.Abs(series[i].High - prevClose)
	lc := math.Abs(series[i].Low - prevClose)

	return math.Max(hl, math.Max(hc, lc))
}

// attachATR computes the simple moving average of the true range over the
// trailing window. Bars before the window fills keep a None ATR.
func attachATR(series types.Series, period int) {
	if len(series) < period {
		return
	}

	tr := make([]float64, len(series))
	for i := range series {
		tr[i] = trueRange(series, i)
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}

	series[period-1].ATR = optional.Some(sum / float64(period))

	for i := period; i < len(series); i++ {
		sum += tr[i] - tr[i-period]
		series[i].ATR = optional.Some(sum / float64(period))
	}
}

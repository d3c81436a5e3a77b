package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
)

// attachBands computes the rolling envelope: mean ± k·stddev of close over
// the trailing window ending at each bar. The stddev is the population
// standard deviation. Bars before the window fills keep None bands.
func attachBands(series types.Series, period int, stdDev float64) {
	for i := period - 1; i < len(series); i++ {
		window := series[i-period+1 : i+1]

		var sum float64
		for j := range window {
			sum += window[j].Close
		}

		mean := sum / float64(period)

		var sqSum float64

		for j := range window {
			d := window[j].Close - mean
			sqSum += d * d
		}

		sigma := math.Sqrt(sqSum / float64(period))

		series[i].BandMiddle = optional.Some(mean)
		series[i].BandUpper = optional.Some(mean + stdDev*sigma)
		series[i].BandLower = optional.Some(mean - stdDev*sigma)
	}
}

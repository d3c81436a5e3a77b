package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
)

// attachVWAP computes the session-cumulative volume-weighted average price.
// The accumulators reset at every session boundary. Bars with zero cumulative
// volume keep a None VWAP.
func attachVWAP(sessions []types.Session) {
	for _, session := range sessions {
		var cumPxVol, cumVol float64

		for i := range session.Bars {
			bar := &session.Bars[i]
			cumPxVol += bar.Close * bar.Volume
			cumVol += bar.Volume

			if cumVol > 0 {
				bar.VWAP = optional.Some(cumPxVol / cumVol)
			}
		}
	}
}

package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
)

// attachSessionLevels derives the support/resistance pair from the previous
// completed session's extremes: resistance is that session's highest high,
// support its lowest low. Every bar of the first session keeps None levels.
func attachSessionLevels(sessions []types.Session) {
	for s := 1; s < len(sessions); s++ {
		prev := sessions[s-1].Bars
		if len(prev) == 0 {
			continue
		}

		resistance := prev[0].High
		support := prev[0].Low

		for i := 1; i < len(prev); i++ {
			if prev[i].High > resistance {
				resistance = prev[i].High
			}

			if prev[i].Low < support {
				support = prev[i].Low
			}
		}

		for i := range sessions[s].Bars {
			sessions[s].Bars[i].Resistance = optional.Some(resistance)
			sessions[s].Bars[i].Support = optional.Some(support)
		}
	}
}

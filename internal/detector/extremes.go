package detector

import (
	"github.com/moznion/go-optional"

	"github.com/chaofengh/tradescan/internal/types"
)

// Extreme is a closing-price extreme found inside a fixed lookahead window.
type Extreme struct {
	Index int
	Price float64
}

// ShortTermHigh finds the highest close within the next window bars starting
// at startIndex (inclusive). Returns None when the slice is empty.
func ShortTermHigh(series types.Series, startIndex, window int) optional.Option[Extreme] {
	return scanExtreme(series, startIndex, window, func(candidate, best float64) bool {
		return candidate > best
	})
}

// ShortTermLow finds the lowest close within the next window bars starting at
// startIndex (inclusive). Returns None when the slice is empty.
func ShortTermLow(series types.Series, startIndex, window int) optional.Option[Extreme] {
	return scanExtreme(series, startIndex, window, func(candidate, best float64) bool {
		return candidate < best
	})
}

func scanExtreme(series types.Series, startIndex, window int, better func(candidate, best float64) bool) optional.Option[Extreme] {
	if startIndex < 0 || startIndex >= len(series) || window <= 0 {
		return optional.None[Extreme]()
	}

	end := startIndex + window
	if end > len(series) {
		end = len(series)
	}

	best := Extreme{Index: startIndex, Price: series[startIndex].Close}

	for i := startIndex + 1; i < end; i++ {
		if better(series[i].Close, best.Price) {
			best = Extreme{Index: i, Price: series[i].Close}
		}
	}

	return optional.Some(best)
}

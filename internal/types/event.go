package types

import (
	"fmt"
	"time"
)

// Band identifies which envelope band an event refers to.
type Band string

const (
	BandUpper Band = "upper"
	BandLower Band = "lower"
)

// TouchEvent is a single bar whose high/low crossed a band value.
type TouchEvent struct {
	Time  time.Time `json:"time"`
	Index int       `json:"index"`
	Band  Band      `json:"band"`
	Price float64   `json:"price"`
}

// HugEvent is a contiguous run of at least two bars whose closes stay within
// a percentage tolerance of a band, beginning at a touch. Hugs are
// non-overlapping by construction: the detector resumes past a hug's end
// before looking for the next one.
type HugEvent struct {
	Band       Band      `json:"band"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	StartPrice float64   `json:"start_price"`
	EndPrice   float64   `json:"end_price"`
}

// NewHugEvent builds a HugEvent from series offsets and panics when the run
// is not strictly increasing. That is a detector bug, not a data condition.
func NewHugEvent(series Series, band Band, startIndex, endIndex int) HugEvent {
	if endIndex <= startIndex {
		panic(fmt.Sprintf("hug event with non-increasing indices: start=%d end=%d", startIndex, endIndex))
	}

	return HugEvent{
		Band:       band,
		StartIndex: startIndex,
		EndIndex:   endIndex,
		StartTime:  series[startIndex].Time,
		EndTime:    series[endIndex].Time,
		StartPrice: series[startIndex].Close,
		EndPrice:   series[endIndex].Close,
	}
}

// Length returns the number of bars spanned by the hug, inclusive.
func (h HugEvent) Length() int {
	return h.EndIndex - h.StartIndex + 1
}

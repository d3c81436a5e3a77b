package types

import "time"

// SessionKeyFunc maps a bar timestamp to its session key. The engine does not
// resolve daylight-saving or exchange-calendar rules itself; callers that need
// an exchange-local convention supply their own key function.
type SessionKeyFunc func(time.Time) string

// UTCDateKey is the default session boundary: the calendar date of the bar
// timestamp in UTC. It is applied uniformly across all strategy families.
func UTCDateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Session is the subsequence of bars sharing one session key. Bars is a view
// into the parent series; StartIndex is the offset of Bars[0] in that series.
// Each session is processed independently and engine state never crosses a
// session boundary.
type Session struct {
	Key        string
	Bars       Series
	StartIndex int
}

// SplitSessions groups a series into contiguous runs sharing a session key.
// The series must already be time-ordered (see Series.Validate).
func SplitSessions(series Series, keyFn SessionKeyFunc) []Session {
	if keyFn == nil {
		keyFn = UTCDateKey
	}

	var sessions []Session

	start := 0

	for i := 1; i <= len(series); i++ {
		if i == len(series) || keyFn(series[i].Time) != keyFn(series[start].Time) {
			sessions = append(sessions, Session{
				Key:        keyFn(series[start].Time),
				Bars:       series[start:i],
				StartIndex: start,
			})
			start = i
		}
	}

	return sessions
}

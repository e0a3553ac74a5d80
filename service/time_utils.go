package service

import (
	"time"
)

// dateOf truncates a moment to its calendar date. Daily limits roll
// over at local midnight, matching the clock the dispatch layer reports
// event times in.
func dateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

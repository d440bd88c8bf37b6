package billing

import "time"

// calendarDay drops the clock so comparisons happen on calendar days
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayAfter reports whether t falls on a later calendar day than ref
func dayAfter(t, ref time.Time) bool {
	return calendarDay(t).After(calendarDay(ref))
}

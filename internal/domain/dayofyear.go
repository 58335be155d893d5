package domain

import "time"

// DayOfYear returns the 1-based ordinal day of t within its calendar year
// (1 for January 1st, up to 366 in leap years).
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// CurrentDayOfYear returns the day-of-year for the package clock's notion of
// now, in UTC. Used to default forecast windows to "starting today".
func CurrentDayOfYear() int {
	return DayOfYear(clock.Now().UTC())
}

package timeutil

import "time"

// All metering runs in UTC. A period is a calendar month identified
// by its first-of-month date, which is the usage counter key.

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// PeriodStart returns the first day of the calendar month containing t
func PeriodStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CurrentPeriodStart returns the first day of the current calendar month
func CurrentPeriodStart() time.Time {
	return PeriodStart(Now())
}

// SamePeriod reports whether a and b fall in the same calendar month
func SamePeriod(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month()
}

// StartOfDay returns the start of day (00:00:00 UTC) for the given time
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006"
)

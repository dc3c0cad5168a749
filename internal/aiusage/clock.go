package aiusage

import "time"

// source of wall-clock time
type Clock interface {
	Now() time.Time
}

// adapts a plain function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// returns a clock backed by time.Now
func SystemClock() Clock {
	return systemClock{}
}

// returns the calendar date containing t in loc, as midnight UTC.
// the UTC form keeps store keys independent of the server's zone.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// returns midnight at the start of the day after t, in loc
func nextMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// formats a calendar day as a store key component
func dayKey(day time.Time) string {
	return day.Format(time.DateOnly)
}

// returns the calendar date containing t in loc, as midnight UTC
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	return calendarDay(t, loc)
}

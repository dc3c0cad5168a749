package aiusage

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarDay(t *testing.T) {
	zone := time.FixedZone("UTC-8", -8*60*60)
	instant := time.Date(2026, time.January, 1, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), calendarDay(instant, time.UTC))
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), calendarDay(instant, zone))
	assert.Equal(t, "2025-12-31", dayKey(calendarDay(instant, zone)))
}

func TestNextMidnight(t *testing.T) {
	instant := time.Date(2026, time.February, 28, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), nextMidnight(instant, time.UTC))

	endOfYear := time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), nextMidnight(endOfYear, time.UTC))
}

func TestNextMidnight_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// clocks spring forward on 2026-03-08; that day is 23 hours long
	instant := time.Date(2026, time.March, 8, 1, 0, 0, 0, ny)
	next := nextMidnight(instant, ny)

	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, ny), next)
	assert.Equal(t, 22*time.Hour, next.Sub(instant))
}

func TestClockFunc(t *testing.T) {
	fixed := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	clock := ClockFunc(func() time.Time { return fixed })

	assert.Equal(t, fixed, clock.Now())
	assert.WithinDuration(t, time.Now(), SystemClock().Now(), time.Second)
}

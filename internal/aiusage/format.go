package aiusage

import (
	"fmt"
	"time"
)

// renders the countdown from now until nextResetAt as HH:MM:SS.
// returns 00:00:00 once the reset time has passed.
func FormatTimeRemaining(nextResetAt time.Time) string {
	return FormatDuration(time.Until(nextResetAt).Round(time.Second))
}

// renders a duration as HH:MM:SS, clamping negative durations to zero
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}

	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

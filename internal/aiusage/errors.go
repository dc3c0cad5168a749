package aiusage

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrLimitReached     = errors.New("daily AI usage limit reached")
	ErrStoreUnavailable = errors.New("usage store unavailable")
	ErrInvalidFeature   = errors.New("invalid AI feature type")
	ErrInvalidUser      = errors.New("invalid user id")
)

// user-facing messages; never include the underlying store error
const (
	msgCheckFailed     = "Failed to check usage limits"
	msgIncrementFailed = "Failed to increment usage"
	msgInvalidFeature  = "Unknown AI feature"
	msgInvalidUser     = "A valid user is required"
)

const resetTimeLayout = "Jan 2, 2006 15:04 MST"

// builds the denial message naming the ceiling and the reset time
func limitMessage(limit int, nextResetAt time.Time) string {
	return fmt.Sprintf(
		"Daily AI usage limit of %d reached. Your limit resets at %s.",
		limit,
		nextResetAt.Format(resetTimeLayout),
	)
}

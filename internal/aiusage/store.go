package aiusage

import (
	"context"
	"time"
)

// persists usage records keyed by (user id, calendar day).
// day is always midnight UTC of the calendar date.
type Store interface {
	// returns the record for the key, creating a zeroed one if absent.
	// concurrent first access must still produce a single record.
	GetOrCreate(ctx context.Context, userID string, day time.Time) (*UsageRecord, error)

	// adds one to the feature counter and the total in a single atomic
	// step, only if the total is below limit. returns the updated record
	// and true, or the current record and false when the guard rejected it.
	IncrementIfBelow(ctx context.Context, userID string, day time.Time, feature FeatureType, limit int) (*UsageRecord, bool, error)

	// releases any underlying connections
	Close() error
}

// implemented by stores that keep records until explicitly deleted.
// redis records expire through their TTL instead.
type Pruner interface {
	// deletes records for calendar days strictly before day
	PruneBefore(ctx context.Context, day time.Time) (int64, error)
}

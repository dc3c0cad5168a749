package aiusage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// implements Store using in-memory storage
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*UsageRecord
}

// creates a new in-memory usage store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*UsageRecord),
	}
}

func memoryKey(userID string, day time.Time) string {
	return userID + "|" + dayKey(day)
}

// returns the record for the key, creating a zeroed one if absent
func (s *MemoryStore) GetOrCreate(ctx context.Context, userID string, day time.Time) (*UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.getOrCreateLocked(userID, day)
	copied := *record
	return &copied, nil
}

// adds one to the feature counter and total if the total is below limit
func (s *MemoryStore) IncrementIfBelow(
	ctx context.Context,
	userID string,
	day time.Time,
	feature FeatureType,
	limit int,
) (*UsageRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	if !feature.IsValid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidFeature, feature)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.getOrCreateLocked(userID, day)
	if record.TotalUsed >= limit {
		copied := *record
		return &copied, false, nil
	}

	record.increment(feature)
	copied := *record
	return &copied, true, nil
}

// stores a record as-is; used to seed state
func (s *MemoryStore) Put(_ context.Context, record *UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	s.records[memoryKey(record.UserID, record.UsageDate)] = &copied
	return nil
}

// returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// nothing to release
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) getOrCreateLocked(userID string, day time.Time) *UsageRecord {
	key := memoryKey(userID, day)

	record, exists := s.records[key]
	if !exists {
		record = &UsageRecord{UserID: userID, UsageDate: day}
		s.records[key] = record
	}

	return record
}

// deletes records for days before day
func (s *MemoryStore) PruneBefore(ctx context.Context, day time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, record := range s.records {
		if record.UsageDate.Before(day) {
			delete(s.records, key)
			deleted++
		}
	}

	return deleted, nil
}

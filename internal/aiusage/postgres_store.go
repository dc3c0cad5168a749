package aiusage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// implements Store using PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new PostgreSQL usage store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the ai_usage table if it doesn't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create ai_usage table: %w", err)
	}

	return nil
}

// returns the record for the key, inserting a zeroed row if absent
func (s *PostgresStore) GetOrCreate(ctx context.Context, userID string, day time.Time) (*UsageRecord, error) {
	record, err := scanRecord(s.db.QueryRow(ctx, queryGetOrCreate, userID, dayKey(day)))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create usage record: %w", err)
	}

	return record, nil
}

// increments the feature counter and total in one guarded upsert
func (s *PostgresStore) IncrementIfBelow(
	ctx context.Context,
	userID string,
	day time.Time,
	feature FeatureType,
	limit int,
) (*UsageRecord, bool, error) {
	query, ok := queryIncrement[feature]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidFeature, feature)
	}

	if limit <= 0 {
		record, err := s.GetOrCreate(ctx, userID, day)
		return record, false, err
	}

	record, err := scanRecord(s.db.QueryRow(ctx, query, userID, dayKey(day), limit))
	if errors.Is(err, pgx.ErrNoRows) {
		// guard rejected the update
		current, err := s.GetOrCreate(ctx, userID, day)
		return current, false, err
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to increment usage record: %w", err)
	}

	return record, true, nil
}

// deletes rows for days before day
func (s *PostgresStore) PruneBefore(ctx context.Context, day time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, queryPruneBefore, dayKey(day))
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage records: %w", err)
	}

	return tag.RowsAffected(), nil
}

// the pool is owned by the caller
func (s *PostgresStore) Close() error {
	return nil
}

func scanRecord(row pgx.Row) (*UsageRecord, error) {
	var record UsageRecord

	err := row.Scan(
		&record.UserID,
		&record.UsageDate,
		&record.PredictionsUsed,
		&record.InsightsUsed,
		&record.ChatbotUsed,
		&record.TotalUsed,
	)
	if err != nil {
		return nil, err
	}

	record.UsageDate = time.Date(
		record.UsageDate.Year(), record.UsageDate.Month(), record.UsageDate.Day(),
		0, 0, 0, 0, time.UTC,
	)

	return &record, nil
}

package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/finpal/server/internal/aiusage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPruner struct{}

func (failingPruner) PruneBefore(context.Context, time.Time) (int64, error) {
	return 0, errors.New("connection reset")
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCutoff(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		days int
		want string
	}{
		{"utc", time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC), time.UTC, 30, "2026-02-12"},
		{"zero keeps only today", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), time.UTC, 0, "2026-03-14"},
		{"zone ahead of utc", time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC), tokyo, 1, "2026-03-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(aiusage.NewMemoryStore(), Config{RetentionDays: tt.days, Location: tt.loc})
			s.now = fixedNow(tt.now)

			assert.Equal(t, tt.want, s.Cutoff().Format(time.DateOnly))
		})
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	store := aiusage.NewMemoryStore()
	now := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	today := aiusage.CalendarDay(now, time.UTC)

	for _, ageDays := range []int{0, 7, 8, 90} {
		_, err := store.GetOrCreate(ctx, "user-1", today.AddDate(0, 0, -ageDays))
		require.NoError(t, err)
	}

	s := NewScheduler(store, Config{Schedule: "0 3 * * *", RetentionDays: 7})
	s.now = fixedNow(now)

	deleted, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 2, store.Len())
}

func TestPrune_Error(t *testing.T) {
	s := NewScheduler(failingPruner{}, Config{RetentionDays: 7})

	_, err := s.Prune(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prune usage before")
}

func TestStart(t *testing.T) {
	t.Run("disabled without schedule", func(t *testing.T) {
		s := NewScheduler(aiusage.NewMemoryStore(), Config{RetentionDays: 30})

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.NextRun())
	})

	t.Run("disabled without retention", func(t *testing.T) {
		s := NewScheduler(aiusage.NewMemoryStore(), Config{Schedule: "0 3 * * *"})

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		s := NewScheduler(aiusage.NewMemoryStore(), Config{Schedule: "every day", RetentionDays: 30})

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cron schedule")
	})

	t.Run("runs until stopped", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s := NewScheduler(aiusage.NewMemoryStore(), Config{Schedule: "0 3 * * *", RetentionDays: 30})

		require.NoError(t, s.Start(ctx))
		assert.True(t, s.IsRunning())
		require.NotNil(t, s.NextRun())
		assert.True(t, s.NextRun().After(time.Now()))

		s.Stop()
		assert.False(t, s.IsRunning())
	})
}

package aiusage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetOrCreateIsIdempotentUnderConcurrency(t *testing.T) {
	store := NewMemoryStore()
	day := calendarDay(testNow, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.GetOrCreate(context.Background(), testUser, day)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_IncrementIfBelow(t *testing.T) {
	store := NewMemoryStore()
	day := calendarDay(testNow, time.UTC)
	ctx := context.Background()

	record, applied, err := store.IncrementIfBelow(ctx, testUser, day, FeatureInsights, 2)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, record.InsightsUsed)
	assert.Equal(t, 1, record.TotalUsed)

	_, applied, err = store.IncrementIfBelow(ctx, testUser, day, FeatureChatbot, 2)
	require.NoError(t, err)
	assert.True(t, applied)

	record, applied, err = store.IncrementIfBelow(ctx, testUser, day, FeatureChatbot, 2)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 2, record.TotalUsed)
	assert.Equal(t, 1, record.ChatbotUsed)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	day := calendarDay(testNow, time.UTC)
	ctx := context.Background()

	record, err := store.GetOrCreate(ctx, testUser, day)
	require.NoError(t, err)
	record.TotalUsed = 99

	fresh, err := store.GetOrCreate(ctx, testUser, day)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.TotalUsed)
}

func TestMemoryStore_KeysByUserAndDay(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	day := calendarDay(testNow, time.UTC)

	_, _, err := store.IncrementIfBelow(ctx, testUser, day, FeatureChatbot, 10)
	require.NoError(t, err)
	_, err = store.GetOrCreate(ctx, "another-user", day)
	require.NoError(t, err)
	_, err = store.GetOrCreate(ctx, testUser, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	other, err := store.GetOrCreate(ctx, "another-user", day)
	require.NoError(t, err)
	assert.Equal(t, 0, other.TotalUsed)
	assert.Equal(t, 3, store.Len())
}

func TestRecordFromValues(t *testing.T) {
	day := calendarDay(testNow, time.UTC)

	record, err := recordFromValues(testUser, day, []any{"1", "2", int64(3), "6"})
	require.NoError(t, err)
	assert.Equal(t, 1, record.PredictionsUsed)
	assert.Equal(t, 2, record.InsightsUsed)
	assert.Equal(t, 3, record.ChatbotUsed)
	assert.Equal(t, 6, record.TotalUsed)

	record, err = recordFromValues(testUser, day, []any{nil, nil, nil, nil})
	require.NoError(t, err)
	assert.Equal(t, 0, record.TotalUsed)

	_, err = recordFromValues(testUser, day, []any{"1", "2"})
	assert.Error(t, err)

	_, err = recordFromValues(testUser, day, []any{"x", "0", "0", "0"})
	assert.Error(t, err)
}

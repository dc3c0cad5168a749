package aiusage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// behaviour every Store implementation must share
func runStoreContract(t *testing.T, store Store) {
	t.Helper()

	day := calendarDay(testNow, time.UTC)

	t.Run("get or create zero-fills", func(t *testing.T) {
		userID := uuid.NewString()

		record, err := store.GetOrCreate(context.Background(), userID, day)
		require.NoError(t, err)
		assert.Equal(t, userID, record.UserID)
		assert.Equal(t, dayKey(day), dayKey(record.UsageDate))
		assert.Equal(t, 0, record.TotalUsed)
		assert.True(t, record.IsConsistent())
	})

	t.Run("increment stops at limit", func(t *testing.T) {
		userID := uuid.NewString()
		ctx := context.Background()

		for i, f := range []FeatureType{FeaturePredictions, FeatureInsights, FeatureChatbot} {
			record, applied, err := store.IncrementIfBelow(ctx, userID, day, f, 3)
			require.NoError(t, err)
			assert.True(t, applied)
			assert.Equal(t, i+1, record.TotalUsed)
			assert.Equal(t, 1, record.Used(f))
		}

		record, applied, err := store.IncrementIfBelow(ctx, userID, day, FeatureChatbot, 3)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 3, record.TotalUsed)
		assert.Equal(t, 1, record.ChatbotUsed)
		assert.True(t, record.IsConsistent())
	})

	t.Run("zero limit never writes", func(t *testing.T) {
		userID := uuid.NewString()

		record, applied, err := store.IncrementIfBelow(context.Background(), userID, day, FeatureInsights, 0)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 0, record.TotalUsed)
	})

	t.Run("days are independent", func(t *testing.T) {
		userID := uuid.NewString()
		ctx := context.Background()

		_, applied, err := store.IncrementIfBelow(ctx, userID, day, FeatureChatbot, 1)
		require.NoError(t, err)
		require.True(t, applied)

		next := day.AddDate(0, 0, 1)
		record, applied, err := store.IncrementIfBelow(ctx, userID, next, FeatureChatbot, 1)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 1, record.TotalUsed)
	})

	t.Run("concurrent increments respect limit", func(t *testing.T) {
		userID := uuid.NewString()
		const limit = 5

		var (
			wg      sync.WaitGroup
			applied atomic.Int32
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := store.IncrementIfBelow(context.Background(), userID, day, FeaturePredictions, limit)
				assert.NoError(t, err)
				if ok {
					applied.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(limit), applied.Load())

		record, err := store.GetOrCreate(context.Background(), userID, day)
		require.NoError(t, err)
		assert.Equal(t, limit, record.TotalUsed)
		assert.Equal(t, limit, record.PredictionsUsed)
	})

	if pruner, ok := store.(Pruner); ok {
		t.Run("prune drops earlier days only", func(t *testing.T) {
			userID := uuid.NewString()
			ctx := context.Background()
			old := day.AddDate(0, 0, -40)

			_, err := store.GetOrCreate(ctx, userID, old)
			require.NoError(t, err)
			_, _, err = store.IncrementIfBelow(ctx, userID, day, FeatureInsights, 5)
			require.NoError(t, err)

			deleted, err := pruner.PruneBefore(ctx, day.AddDate(0, 0, -30))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, deleted, int64(1))

			record, err := store.GetOrCreate(ctx, userID, day)
			require.NoError(t, err)
			assert.Equal(t, 1, record.InsightsUsed)

			record, err = store.GetOrCreate(ctx, userID, old)
			require.NoError(t, err)
			assert.Equal(t, 0, record.TotalUsed)
		})
	}

	t.Run("unknown feature rejected", func(t *testing.T) {
		_, _, err := store.IncrementIfBelow(context.Background(), uuid.NewString(), day, FeatureType("reports"), 5)
		assert.ErrorIs(t, err, ErrInvalidFeature)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestRedisStore_Contract(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set (skip if no redis available)")
	}

	store, err := NewRedisStoreFromURL(redisURL, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	runStoreContract(t, store)
}

func TestPostgresStore_Contract(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set (skip if no postgres available)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	require.NoError(t, err)
	defer pool.Close()

	store := NewPostgresStore(pool)
	require.NoError(t, store.Initialize(ctx))

	runStoreContract(t, store)
}

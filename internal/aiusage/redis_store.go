package aiusage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyUsageRecord = "aiusage:%s:%s"

var counterFields = []string{"predictions_used", "insights_used", "chatbot_used", "total_used"}

// zero-fills the hash, applies the guarded increment and returns the
// flag followed by the four counters
var incrementScript = redis.NewScript(`
local key = KEYS[1]
local field = ARGV[1]
local limit = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

redis.call('HSETNX', key, 'predictions_used', 0)
redis.call('HSETNX', key, 'insights_used', 0)
redis.call('HSETNX', key, 'chatbot_used', 0)
redis.call('HSETNX', key, 'total_used', 0)

local ok = 0
local total = tonumber(redis.call('HGET', key, 'total_used'))
if total < limit then
	redis.call('HINCRBY', key, field, 1)
	redis.call('HINCRBY', key, 'total_used', 1)
	ok = 1
end

if ttl > 0 and redis.call('TTL', key) < 0 then
	redis.call('EXPIRE', key, ttl)
end

local v = redis.call('HMGET', key, 'predictions_used', 'insights_used', 'chatbot_used', 'total_used')
return {ok, v[1], v[2], v[3], v[4]}
`)

// implements Store using Redis hashes, one per user per day
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// creates a new Redis-backed usage store. a zero ttl keeps records forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// creates a new Redis-backed usage store from a URL
func NewRedisStoreFromURL(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// returns the record for the key, zero-filling the hash if absent
func (s *RedisStore) GetOrCreate(ctx context.Context, userID string, day time.Time) (*UsageRecord, error) {
	key := fmt.Sprintf(keyUsageRecord, userID, dayKey(day))

	var values *redis.SliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, field := range counterFields {
			pipe.HSetNX(ctx, key, field, 0)
		}

		if s.ttl > 0 {
			pipe.ExpireNX(ctx, key, s.ttl)
		}

		values = pipe.HMGet(ctx, key, counterFields...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create usage record in redis: %w", err)
	}

	record, err := recordFromValues(userID, day, values.Val())
	if err != nil {
		return nil, fmt.Errorf("failed to parse usage record from redis: %w", err)
	}

	return record, nil
}

// runs the guarded increment script
func (s *RedisStore) IncrementIfBelow(
	ctx context.Context,
	userID string,
	day time.Time,
	feature FeatureType,
	limit int,
) (*UsageRecord, bool, error) {
	field, ok := featureColumns[feature]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidFeature, feature)
	}

	key := fmt.Sprintf(keyUsageRecord, userID, dayKey(day))

	result, err := incrementScript.Run(ctx, s.client, []string{key}, field, limit, int64(s.ttl/time.Second)).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("failed to increment usage in redis: %w", err)
	}

	if len(result) != 1+len(counterFields) {
		return nil, false, fmt.Errorf("unexpected increment script reply length %d", len(result))
	}

	applied, err := toInt(result[0])
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse increment flag: %w", err)
	}

	record, err := recordFromValues(userID, day, result[1:])
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse usage record from redis: %w", err)
	}

	return record, applied == 1, nil
}

// checks that redis answers
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// closes the redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func recordFromValues(userID string, day time.Time, values []any) (*UsageRecord, error) {
	if len(values) != len(counterFields) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(counterFields), len(values))
	}

	counters := make([]int, len(values))
	for i, v := range values {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", counterFields[i], err)
		}
		counters[i] = n
	}

	return &UsageRecord{
		UserID:          userID,
		UsageDate:       day,
		PredictionsUsed: counters[0],
		InsightsUsed:    counters[1],
		ChatbotUsed:     counters[2],
		TotalUsed:       counters[3],
	}, nil
}

func toInt(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int(val), nil
	case string:
		return strconv.Atoi(val)
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}

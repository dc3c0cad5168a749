package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDailyLimit    = 25
	defaultThrottleRPS   = 2.0
	defaultThrottleBurst = 5
	defaultPort          = "8080"
	defaultRetentionDays = 90
	defaultPruneSchedule = "0 3 * * *"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv(os.Getenv)
}

// builds configuration from a lookup function so tests can avoid the process env
func FromEnv(getenv func(string) string) (*Config, error) {
	jwtSecret := getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	backend := strings.ToLower(getenv("USAGE_STORE"))
	if backend == "" {
		backend = StorePostgres
	}

	databaseURL := getenv("DATABASE_URL")
	redisURL := getenv("REDIS_URL")

	switch backend {
	case StorePostgres:
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres usage store")
		}
	case StoreRedis:
		if redisURL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required for the redis usage store")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("USAGE_STORE must be one of %s, %s, %s; got %q", StorePostgres, StoreRedis, StoreMemory, backend)
	}

	dailyLimit, err := intOrDefault(getenv("AI_DAILY_LIMIT"), defaultDailyLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid AI_DAILY_LIMIT: %w", err)
	}

	if dailyLimit < 0 {
		return nil, fmt.Errorf("AI_DAILY_LIMIT must not be negative")
	}

	tz := getenv("USAGE_TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}

	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid USAGE_TIMEZONE: %w", err)
	}

	var redisTTL time.Duration
	if raw := getenv("REDIS_USAGE_TTL"); raw != "" {
		redisTTL, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_USAGE_TTL: %w", err)
		}
	}

	retentionDays, err := intOrDefault(getenv("USAGE_RETENTION_DAYS"), defaultRetentionDays)
	if err != nil {
		return nil, fmt.Errorf("invalid USAGE_RETENTION_DAYS: %w", err)
	}

	pruneSchedule := getenv("USAGE_PRUNE_SCHEDULE")
	if pruneSchedule == "" {
		pruneSchedule = defaultPruneSchedule
	}

	throttleRPS := defaultThrottleRPS
	if raw := getenv("THROTTLE_RPS"); raw != "" {
		throttleRPS, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid THROTTLE_RPS: %w", err)
		}
	}

	throttleBurst, err := intOrDefault(getenv("THROTTLE_BURST"), defaultThrottleBurst)
	if err != nil {
		return nil, fmt.Errorf("invalid THROTTLE_BURST: %w", err)
	}

	environment := getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	port := getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	return &Config{
		JWTSecret:      jwtSecret,
		StoreBackend:   backend,
		DatabaseURL:    databaseURL,
		RedisURL:       redisURL,
		RedisUsageTTL:  redisTTL,
		RetentionDays:  retentionDays,
		PruneSchedule:  pruneSchedule,
		DailyLimit:     dailyLimit,
		Location:       location,
		ThrottleRPS:    throttleRPS,
		ThrottleBurst:  throttleBurst,
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS")),
		Environment:    environment,
		Port:           port,
	}, nil
}

func intOrDefault(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

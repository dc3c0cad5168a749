package config

import "time"

// usage store backends
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	JWTSecret      string
	StoreBackend   string
	DatabaseURL    string
	RedisURL       string
	RedisUsageTTL  time.Duration
	RetentionDays  int
	PruneSchedule  string
	DailyLimit     int
	Location       *time.Location
	ThrottleRPS    float64
	ThrottleBurst  int
	AllowedOrigins []string
	Environment    string
	Port           string
}

type Flags struct {
	InitSchema bool
	Port       string
}

package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/config"
	"codeberg.org/finpal/server/internal/errors"
	"codeberg.org/finpal/server/internal/logger"
	"codeberg.org/finpal/server/internal/retention"
	"codeberg.org/finpal/server/internal/storage"
	"codeberg.org/finpal/server/internal/throttle"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// how often idle throttle buckets are evicted
const throttleEvictInterval = 5 * time.Minute

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config, flags config.Flags) (*Server, error) {
	store, err := storage.Open(ctx, cfg, flags.InitSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	limiter := aiusage.NewLimiter(
		store.Store,
		aiusage.Config{
			DailyLimit: cfg.DailyLimit,
			Location:   cfg.Location,
		},
		aiusage.WithMetrics(aiusage.NewMetrics(registry)),
	)

	burst := throttle.New(cfg.ThrottleRPS, cfg.ThrottleBurst)
	burst.StartEvictor(ctx, throttleEvictInterval)

	var pruning *retention.Scheduler
	if pruner, ok := store.Pruner(); ok {
		pruning = retention.NewScheduler(pruner, retention.Config{
			Schedule:      cfg.PruneSchedule,
			RetentionDays: cfg.RetentionDays,
			Location:      cfg.Location,
		})

		if err := pruning.Start(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to start usage retention: %w", err)
		}
	}

	logger.Info("ai usage limiter initialized",
		"store", store.Backend,
		"daily_limit", cfg.DailyLimit,
		"timezone", cfg.Location.String(),
		"throttle_rps", cfg.ThrottleRPS,
		"throttle_burst", cfg.ThrottleBurst,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		errors.InternalError(c, "an unexpected error occurred", fmt.Errorf("panic: %v", recovered))
		c.Abort()
	}))

	server := &Server{
		config:    cfg,
		store:     store,
		limiter:   limiter,
		throttle:  burst,
		retention: pruning,
		registry:  registry,
		router:    router,
	}

	RegisterRoutes(router, server)

	return server, nil
}

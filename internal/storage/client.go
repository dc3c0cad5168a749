// package storage opens the usage store selected by configuration and owns
// its connections.
package storage

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/config"
	"codeberg.org/finpal/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// an opened usage store plus what callers need to probe and close it
type Client struct {
	Store   aiusage.Store
	Backend string
	close   func()
	ping    func(ctx context.Context) error
}

// opens the usage store selected by cfg
func Open(ctx context.Context, cfg *config.Config, initSchema bool) (*Client, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, initSchema)
	case config.StoreRedis:
		return openRedis(cfg)
	case config.StoreMemory:
		logger.Warn("using in-memory usage store; counters are lost on restart")
		return &Client{Store: aiusage.NewMemoryStore(), Backend: config.StoreMemory}, nil
	default:
		return nil, fmt.Errorf("unknown usage store %q", cfg.StoreBackend)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, initSchema bool) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// the hosted pooler only grants a handful of connections
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgBouncer in transaction mode doesn't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := aiusage.NewPostgresStore(db)

	if initSchema {
		if err := store.Initialize(ctx); err != nil {
			db.Close()
			return nil, err
		}

		logger.Info("ai_usage schema initialized")
	}

	logger.Info("connected to postgres usage store")

	return &Client{
		Store:   store,
		Backend: config.StorePostgres,
		ping:    db.Ping,
		close:   db.Close,
	}, nil
}

func openRedis(cfg *config.Config) (*Client, error) {
	store, err := aiusage.NewRedisStoreFromURL(cfg.RedisURL, cfg.RedisUsageTTL)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to redis usage store", "ttl", cfg.RedisUsageTTL.String())

	return &Client{
		Store:   store,
		Backend: config.StoreRedis,
		ping:    store.Ping,
		close: func() {
			store.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
		},
	}, nil
}

// checks that the backing store answers. the memory store always does.
func (c *Client) Ping(ctx context.Context) error {
	if c.ping == nil {
		return nil
	}

	return c.ping(ctx)
}

// returns the store's pruner, or false when records expire on their own
func (c *Client) Pruner() (aiusage.Pruner, bool) {
	pruner, ok := c.Store.(aiusage.Pruner)
	return pruner, ok
}

// releases the store's connections
func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

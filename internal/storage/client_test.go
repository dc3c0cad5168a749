package storage

import (
	"context"
	"testing"

	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	client, err := Open(context.Background(), &config.Config{StoreBackend: config.StoreMemory}, false)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, config.StoreMemory, client.Backend)
	assert.IsType(t, &aiusage.MemoryStore{}, client.Store)
	assert.NoError(t, client.Ping(context.Background()))

	_, ok := client.Pruner()
	assert.True(t, ok)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreBackend: "mongo"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown usage store")
}

func TestOpen_BadURLs(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"postgres", &config.Config{StoreBackend: config.StorePostgres, DatabaseURL: "://not a url"}},
		{"redis", &config.Config{StoreBackend: config.StoreRedis, RedisURL: "://not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.cfg, false)
			assert.Error(t, err)
		})
	}
}

func TestPruner_Redis(t *testing.T) {
	client := &Client{Store: &aiusage.RedisStore{}, Backend: config.StoreRedis}

	_, ok := client.Pruner()
	assert.False(t, ok)
}

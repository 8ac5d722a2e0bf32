package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "sha256", cfg.Hasher)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.IsDevelopment())
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"BACKEND":    "Mongo",
		"TOKEN_TTL":  "90m",
		"REDIS_ADDR": "redis:6379",
		"S3_BUCKET":  "images",
		"ENV":        "production",
	}))
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.Backend)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "images", cfg.S3.Bucket)
	assert.False(t, cfg.IsDevelopment())
}

func TestProcess_UnknownBackend(t *testing.T) {
	_, err := process(context.Background(), envconfig.MapLookuper(map[string]string{"BACKEND": "firebase"}))
	assert.Error(t, err)
}

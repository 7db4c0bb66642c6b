package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"QA_API_BASE_URL", "HTTP_PORT", "LOG_LEVEL", "MAX_UPLOAD_MB", "SESSION_STORE", "SESSION_TTL", "REDIS_PORT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5.0, cfg.MaxUploadMB)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.False(t, cfg.Debug())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("QA_API_BASE_URL", "http://qa:9000")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_UPLOAD_MB", "2.5")
	t.Setenv("SESSION_STORE", "REDIS")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("RENDER_CACHE_SIZE", "10")

	cfg := FromEnv()

	assert.Equal(t, "http://qa:9000", cfg.APIBaseURL)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.True(t, cfg.Debug())
	assert.Equal(t, 2.5, cfg.MaxUploadMB)
	assert.Equal(t, int64(2.5*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "cache", cfg.RedisHost)
	assert.Equal(t, 6380, cfg.RedisPort)
	assert.Equal(t, 10, cfg.RenderCacheSize)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("SESSION_STORE", "postgres")
	t.Setenv("MAX_UPLOAD_MB", "-3")
	t.Setenv("SESSION_TTL", "forever")

	cfg := FromEnv()

	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, 0.0, cfg.MaxUploadMB)
	assert.Equal(t, int64(0), cfg.MaxUploadBytes())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

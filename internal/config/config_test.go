package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-very-secret-key-for-testing-!"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("SURREAL_URL", "")
	t.Setenv("AVATAR_MAX_BYTES", "")
	t.Setenv("AVATAR_ALLOWED_TYPES", "")
	t.Setenv("DB_QUERY_TIMEOUT", "")
	t.Setenv("APP_ADDR", "")
	t.Setenv("PUBSUB_TRACING_ENABLED", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetAppAddr())
	assert.Equal(t, int64(5<<20), cfg.GetAvatarMaxBytes())
	assert.Equal(t, []string{"image/png", "image/jpeg", "image/jpg"}, cfg.GetAvatarAllowedTypes())
	assert.Equal(t, 5*time.Second, cfg.GetDBQueryTimeout())
	assert.Empty(t, cfg.GetDBURL())
	assert.False(t, cfg.GetTracingEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("SURREAL_URL", "ws://localhost:8000/rpc")
	t.Setenv("SURREAL_NS", "app")
	t.Setenv("SURREAL_DB", "accounts")
	t.Setenv("AVATAR_MAX_BYTES", "1024")
	t.Setenv("AVATAR_ALLOWED_TYPES", "image/png, image/webp ,")
	t.Setenv("DB_QUERY_TIMEOUT", "250ms")
	t.Setenv("PUBSUB_TRACING_ENABLED", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:8000/rpc", cfg.GetDBURL())
	assert.Equal(t, int64(1024), cfg.GetAvatarMaxBytes())
	assert.Equal(t, []string{"image/png", "image/webp"}, cfg.GetAvatarAllowedTypes())
	assert.Equal(t, 250*time.Millisecond, cfg.GetDBQueryTimeout())
	assert.True(t, cfg.GetTracingEnabled())
}

func TestFromEnv_Errors(t *testing.T) {
	t.Run("short session secret", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "short")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("surreal url without namespace", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", testSecret)
		t.Setenv("SURREAL_URL", "ws://localhost:8000/rpc")
		t.Setenv("SURREAL_NS", "")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("bad tracing flag", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", testSecret)
		t.Setenv("SURREAL_URL", "")
		t.Setenv("PUBSUB_TRACING_ENABLED", "maybe")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("bad avatar size", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", testSecret)
		t.Setenv("SURREAL_URL", "")
		t.Setenv("AVATAR_MAX_BYTES", "-3")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

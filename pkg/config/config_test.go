package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/config"
)

type testConfig struct {
	RedisURL string        `env:"TEST_REDIS_URL,required"`
	Reload   time.Duration `env:"TEST_RELOAD_INTERVAL" envDefault:"30s"`
	CacheTTL time.Duration `env:"TEST_CACHE_TTL" envDefault:"5s"`
}

func TestLoad(t *testing.T) {
	t.Run("ParsesEnvironment", func(t *testing.T) {
		t.Setenv("TEST_REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("TEST_RELOAD_INTERVAL", "10s")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
		assert.Equal(t, 10*time.Second, cfg.Reload)
		assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	})

	t.Run("MissingRequiredFails", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("NilTargetFails", func(t *testing.T) {
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("PanicsOnMissingRequired", func(t *testing.T) {
		var cfg testConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("ReturnsOnSuccess", func(t *testing.T) {
		t.Setenv("TEST_REDIS_URL", "redis://localhost:6379/0")
		var cfg testConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	})
}

package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Predefined errors for the config package.
var (
	ErrNilPointer    = errors.New("config target cannot be nil")
	ErrParsingConfig = errors.New("failed to parse config from environment")
)

var loadDotenv sync.Once

// Load populates the configuration struct from environment variables using
// `env` and `envDefault` field tags. A .env file, if present, is loaded
// once per process before the first parse; a missing file is not an error.
//
//	type Config struct {
//		RedisURL string        `env:"REDIS_URL,required"`
//		Reload   time.Duration `env:"FLAG_RELOAD_INTERVAL" envDefault:"30s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotenv.Do(func() {
		_ = godotenv.Load()
	})
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Use it for configuration
// the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

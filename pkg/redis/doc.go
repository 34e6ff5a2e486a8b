// Package redis bootstraps the go-redis client used by the Redis store and
// change-bus adapters: environment-driven configuration, connection retry,
// and a readiness probe.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
package redis

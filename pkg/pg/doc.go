// Package pg bootstraps the pgx connection pool used by the Postgres store
// adapter: environment-driven configuration, connection retry with linear
// backoff, and a readiness probe.
package pg

// Package mongo bootstraps the MongoDB client used by the Mongo store
// adapter: environment-driven configuration, connection retry, and a
// readiness probe.
package mongo

// Package store provides the durable-store adapters behind the engine: the
// shared source of truth for flag records, keyed by flag key with
// last-write-wins semantics.
//
// Four implementations ship with the package:
//
//   - MemoryStore: in-process map, for tests and single-process setups
//   - RedisStore: one Redis hash, JSON record per field
//   - MongoStore: one collection, flag key as document id
//   - PostgresStore: one jsonb table, flag key as primary key
//
// Adapters validate records before writing and report infrastructure
// failures wrapped in ErrStoreUnavailable so the engine can distinguish
// them from ErrNotFound. An adapter owns the client it was constructed
// with; Close releases it.
package store

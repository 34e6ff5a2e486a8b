// Package bus propagates flag change notifications between evaluating
// processes.
//
// The Bus contract is deliberately weak: at-most-once delivery, no ordering
// across processes, events lost while a subscriber is down. Subscribers
// apply events idempotently (last-write-wins per flag key) and rely on the
// engine's periodic full reload as the consistency backstop, so the bus
// only ever buys propagation latency, never correctness.
//
// MemoryBus delivers in-process over buffered channels, dropping events for
// slow consumers instead of blocking publishers. RedisBus carries JSON
// events on a single pub/sub channel and drops malformed payloads with a
// logged warning.
package bus

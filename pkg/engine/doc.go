// Package engine composes the flagkit components into the per-process
// feature-evaluation handle.
//
// Each process constructs one Engine over a durable store and a change
// bus. The engine bulk-loads every record into a local snapshot at
// startup, then keeps it fresh two ways: change-bus events merge single
// records with low latency, and a periodic full reload rebuilds the
// snapshot as the consistency backstop for lost events. Readers never
// block on either: the snapshot is swapped atomically, so evaluation
// always sees a complete, consistent set of records.
//
//	st := store.NewRedisStore(client)
//	b := bus.NewRedisBus(busClient)
//	eng, err := engine.New(ctx, st, b,
//		engine.WithReloadInterval(30*time.Second),
//		engine.WithEvalCacheTTL(5*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	result := eng.Evaluate("new-dashboard", flag.Context{Identifier: userID})
//
// Evaluation is pure against the snapshot, performs no network I/O, and
// never returns an error; infrastructure trouble degrades reads to the
// last-known state while mutations surface failures to their caller.
// Results are memoized for a short TTL and the whole memo is cleared on
// any flag mutation.
//
// Mutations (CreateFlag, UpdateFlag, DeleteFlag) write through to the
// store, apply locally, and publish an event so every other process
// converges. OnChange exposes the applied events to in-process
// subscribers.
//
// The engine owns its store and bus: Close (and every constructor error
// path) stops the reload loop, removes the subscription, and releases
// both.
package engine

// Package counter owns the visit counters: their identity, their count and
// their immutable style options.
//
// # Store
//
// [Store] keeps every counter in memory and writes the full [Snapshot] through
// a [Persister] before a mutation is reported as successful. If the save fails
// the mutation is discarded and a PERSISTENCE error is returned, so the
// in-memory view never runs ahead of what is durable.
//
//	store := counter.Open(ctx, persister, counter.WithLogger(logger))
//	id, _ := store.Create(ctx, "my-site", 0, style.Options{})
//	c, _ := store.IncrementAndGet(ctx, id)
//
// Increments on the same id are serialized; different ids only contend for the
// short commit step that writes the snapshot.
//
// # Identifiers
//
// [IDGenerator] produces 16 hex characters from 8 bytes of entropy. The store
// retries on the (astronomically unlikely) collision with an existing id.
//
// # Snapshots
//
// A snapshot is a versioned JSON document:
//
//	{"version": 1, "counters": {"<id>": {...}}}
//
// [DecodeSnapshot] also accepts the legacy flat page → visits object and
// migrates each entry into a counter with default options.
// Persister implementations live in the snapshot subpackage.
package counter

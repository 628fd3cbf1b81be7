// Package snapshot provides [counter.Persister] backends.
//
//   - [File]: a JSON file replaced atomically (temp file, fsync, rename)
//   - [Redis]: a single string key holding the JSON snapshot
//   - [Mongo]: a single upserted document in a collection
//   - [Memory]: an in-process copy, for tests and ephemeral servers
//
// Every backend stores the whole snapshot in one write, so a failed Save
// leaves the previous snapshot intact.
package snapshot

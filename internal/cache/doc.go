// Package cache is the read-through, write-invalidate layer in front of the
// record store.
//
// Three scopes are cached: single records by id, the superset of records
// addressed to an identity, and the superset of records sent by an inviter.
// The aggregate supersets are stored unfiltered; callers narrow them in
// memory with queryir.Apply, so a change of filter never misses.
//
// Backends implement Cache and are swappable: Noop for tests and
// deployments without a cache, Memory (fastcache) for a single process,
// Redis for a shared cache. Backend failures degrade to a miss; the cache
// never changes what a read returns.
//
// Invalidator subscribes to store mutations. It captures the affected keys
// from the pre-mutation match set and the post-mutation rows and evicts
// them once the mutation has committed.
package cache

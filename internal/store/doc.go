// Package store provides the SQLite-backed record store for invitations and
// requests.
//
// Invitations and requests live in one table, discriminated by type. All
// reads and writes go through queryir filters compiled by querysql, so the
// set a caller previews with Query is the set Update or Delete will touch.
//
// # Guarantees
//
//   - Dedup at the storage layer: a partial UNIQUE index over
//     (user_id, invitee_email, inviter_id, component_name, component_action,
//     item_id, secondary_item_id, type) WHERE accepted = 0. Create reports a
//     conflict as invite.ErrDuplicate.
//   - Atomic bulk writes: Update and Delete resolve their match set and
//     mutate it with a single UPDATE/DELETE ... RETURNING inside one
//     IMMEDIATE transaction.
//   - Notifications: every mutation emits a before event (inside the
//     transaction, carrying the resolved match set) and an after event
//     (after commit, carrying the affected rows). Observers must not call
//     back into the store.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - _txlock=immediate: Writers take the lock when the transaction begins
//
// Timestamps are stored as unix nanoseconds so that ordering by
// date_modified in SQL and in memory agree.
package store

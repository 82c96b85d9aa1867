// Package engine is the reconciliation engine and service facade of the
// invitation core.
//
// An invitation and a request for the same key (identity, component name
// and action, item, secondary item) resolve each other:
//
//   - Adding a request while a sent, pending invitation exists accepts
//     every pending record for the key and stores the request as accepted.
//   - Sending an invitation while a pending request exists accepts every
//     pending record for the key instead of flipping the sent flag.
//   - An unsent invitation never triggers acceptance.
//
// Duplicate and policy checks always run before matching, so a rejected
// create never reaches reconciliation.
//
// Reads of the aggregate views go through the cache layer: the superset of
// records for an identity (or inviter) is cached unfiltered and the
// caller's filter is applied in memory. Writes go to the store, whose
// mutation events drive cache invalidation.
//
// Thread-safety: Engine holds no mutable state of its own and is safe for
// concurrent use. Uniqueness is enforced by the store, and bulk accepts are
// a single atomic store update.
package engine

// Package queryir is the filter language shared by the record store and the
// cache layer.
//
// A Filter is an explicit option struct: every recognised option is a field,
// and Normalize fills the documented defaults. Callers never pass partial
// argument bags.
//
// A normalised Filter lowers to a small predicate IR:
//
//	[Filter] → [Predicate IR] → querysql (WHERE/ORDER/LIMIT for SQLite)
//	                          → Eval/Apply (in-memory over []invite.Record)
//
// Both backends consume the same predicate nodes, so a filter applied to an
// already-materialised slice yields exactly what the store would return for
// the same filter. The cache layer relies on this: it stores the unfiltered
// superset for an identity and narrows it in process.
//
// # Predicates
//
//   - In: column value is one of a set (a single value is a set of one)
//   - Equals: column equals one value (booleans and the type discriminant)
//   - Search: term is a substring of any listed column
//   - And: all predicates hold
//
// Absent options produce no predicate. There is no OR between options and
// no NULL handling; every column is NOT NULL in the store.
//
// # Ordering
//
// Results are ordered by OrderBy/SortOrder with "id ASC" as the final
// tiebreaker in both backends. Text columns compare bytewise.
package queryir

package queryir

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/invitations/internal/invite"
)

// Eval reports whether r satisfies p.
func Eval(p Predicate, r invite.Record) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case And:
		for _, sub := range pred.Predicates {
			if !Eval(sub, r) {
				return false
			}
		}
		return true
	case *And:
		return Eval(*pred, r)
	case In:
		v := pred.Column.Value(r)
		for _, want := range pred.Values {
			if v == want {
				return true
			}
		}
		return false
	case *In:
		return Eval(*pred, r)
	case Equals:
		return pred.Column.Value(r) == pred.Value
	case *Equals:
		return Eval(*pred, r)
	case Search:
		for _, col := range pred.Columns {
			if s, ok := col.Value(r).(string); ok && strings.Contains(s, pred.Term) {
				return true
			}
		}
		return false
	case *Search:
		return Eval(*pred, r)
	}
	return false
}

// Match reports whether r satisfies the filter's predicates. Ordering and
// paging options are ignored.
func Match(f Filter, r invite.Record) bool {
	return Eval(f.Normalize().Predicate(), r)
}

// Apply filters, orders and paginates recs in memory with the same
// semantics the store uses for the same filter. recs is not modified.
func Apply(f Filter, recs []invite.Record) []invite.Record {
	f = f.Normalize()
	pred := f.Predicate()

	out := make([]invite.Record, 0, len(recs))
	for _, r := range recs {
		if Eval(pred, r) {
			out = append(out, r)
		}
	}

	Sort(out, f.OrderBy, f.SortOrder)

	if f.Paginated() {
		off := f.Offset()
		if off < 0 || off >= len(out) {
			return []invite.Record{}
		}
		out = out[off : off+min(f.PerPage, len(out)-off)]
	}
	return out
}

// Sort orders recs by col in the given direction, breaking ties by id
// ascending.
func Sort(recs []invite.Record, col Column, order SortOrder) {
	slices.SortStableFunc(recs, func(a, b invite.Record) int {
		c := compareValues(col.Value(a), col.Value(b))
		if order == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// compareValues compares two storage values of the same column.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case int64:
		return cmp.Compare(av, b.(int64))
	case string:
		return strings.Compare(av, b.(string))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	}
	return 0
}

package harness

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/invitations/internal/invite"
)

// AssertionError reports a query whose result differs from the expected
// set.
type AssertionError struct {
	Name     string
	Query    string
	Expected []string
	Actual   []string
	Err      error
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion %q (%s) failed\n", e.Name, e.Query)
	if e.Err != nil {
		fmt.Fprintf(&buf, "  error: %v\n", e.Err)
		return buf.String()
	}
	fmt.Fprintf(&buf, "  expected: [%s]\n", strings.Join(e.Expected, ", "))
	fmt.Fprintf(&buf, "  actual:   [%s]\n", strings.Join(e.Actual, ", "))
	return buf.String()
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// evaluate runs a's query and compares the result with a.Expect.
func (h *Harness) evaluate(ctx context.Context, a Assertion) error {
	actual, err := h.query(ctx, a)
	if err != nil {
		return &AssertionError{Name: a.Name, Query: a.Query, Err: err}
	}

	expected := slices.Clone(a.Expect)
	if expected == nil {
		expected = []string{}
	}
	if !a.Ordered {
		slices.Sort(expected)
		slices.Sort(actual)
	}
	if !slices.Equal(expected, actual) {
		return &AssertionError{Name: a.Name, Query: a.Query, Expected: expected, Actual: actual}
	}
	return nil
}

// query returns the refs of the records a's query yields, or the
// component names for registered_components.
func (h *Harness) query(ctx context.Context, a Assertion) ([]string, error) {
	e := h.engine
	var (
		recs []invite.Record
		err  error
	)
	switch a.Query {
	case QueryRegisteredComponents:
		return e.RegisteredComponents(ctx), nil
	case QueryGetInvitations:
		recs, err = e.GetInvitations(ctx, a.Filter)
	case QueryGetRequests:
		recs, err = e.GetRequests(ctx, a.Filter)
	case QueryUserInvitations:
		recs, err = e.UserInvitations(ctx, assertionIdentity(a), a.Filter)
	case QueryUserRequests:
		recs, err = e.UserRequests(ctx, a.UserID, a.Filter)
	case QueryInvitationsFromUser:
		recs, err = e.InvitationsFromUser(ctx, a.InviterID, a.Filter)
	default:
		return nil, fmt.Errorf("unknown query %q", a.Query)
	}
	if err != nil {
		return nil, err
	}

	refs := make([]string, len(recs))
	for i, r := range recs {
		refs[i] = h.result.ref(r.ID)
	}
	return refs, nil
}

func assertionIdentity(a Assertion) invite.Identity {
	if a.UserID != 0 {
		return invite.UserIdentity(a.UserID)
	}
	return invite.EmailIdentity(a.InviteeEmail)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

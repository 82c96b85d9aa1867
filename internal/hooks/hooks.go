// Package hooks holds the extension points callers register against the
// invitation core: allow checks that can veto an operation, lifecycle
// listeners, and filters that post-process query results.
//
// Registration is expected at startup; dispatch takes a read lock and is
// safe for concurrent use afterwards. Unregistered points default to
// allow, no-op or identity.
package hooks

import (
	"context"
	"sync"

	"github.com/roach88/invitations/internal/invite"
)

// Point names an allow check. Denials report the point that vetoed.
type Point string

const (
	PointAllowInvitation       Point = "allow_invitation"
	PointAllowRequest          Point = "allow_request"
	PointAllowSend             Point = "allow_send"
	PointAllowAcceptInvitation Point = "allow_accept_invitation"
	PointAllowAcceptRequest    Point = "allow_accept_request"
)

// View names a query whose results can be filtered.
type View string

const (
	ViewUserInvitations     View = "user_invitations"
	ViewUserRequests        View = "user_requests"
	ViewInvitationsFromUser View = "invitations_from_user"
)

// RecordCheck decides whether an operation on a proposed or stored record
// may proceed.
type RecordCheck func(ctx context.Context, r invite.Record) bool

// KeyCheck decides whether an accept over key may proceed.
type KeyCheck func(ctx context.Context, key invite.Key) bool

// RecordListener observes a record at a lifecycle step.
type RecordListener func(ctx context.Context, r invite.Record)

// ResultFilter rewrites a query result. It must not mutate the store.
type ResultFilter func(ctx context.Context, recs []invite.Record) []invite.Record

// ComponentFilter rewrites the registered component list.
type ComponentFilter func(ctx context.Context, names []string) []string

// Registry holds every registered extension.
type Registry struct {
	mu sync.RWMutex

	recordChecks map[Point][]RecordCheck
	keyChecks    map[Point][]KeyCheck

	beforeSend []RecordListener
	saved      []RecordListener
	mutation   []invite.MutationObserver

	results    map[View][]ResultFilter
	components []ComponentFilter
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		recordChecks: make(map[Point][]RecordCheck),
		keyChecks:    make(map[Point][]KeyCheck),
		results:      make(map[View][]ResultFilter),
	}
}

// OnAllowInvitation registers a check run before an invitation is created.
func (r *Registry) OnAllowInvitation(fn RecordCheck) { r.addRecordCheck(PointAllowInvitation, fn) }

// OnAllowRequest registers a check run before a request is created.
func (r *Registry) OnAllowRequest(fn RecordCheck) { r.addRecordCheck(PointAllowRequest, fn) }

// OnAllowSend registers a check run before an invitation is sent.
func (r *Registry) OnAllowSend(fn RecordCheck) { r.addRecordCheck(PointAllowSend, fn) }

// OnAllowAcceptInvitation registers a check run before an
// invitation-triggered accept.
func (r *Registry) OnAllowAcceptInvitation(fn KeyCheck) {
	r.addKeyCheck(PointAllowAcceptInvitation, fn)
}

// OnAllowAcceptRequest registers a check run before a request-triggered
// accept.
func (r *Registry) OnAllowAcceptRequest(fn KeyCheck) {
	r.addKeyCheck(PointAllowAcceptRequest, fn)
}

// OnBeforeSend registers a listener called with the invitation about to be
// sent, before the send is allowed. Delivery systems hook in here.
func (r *Registry) OnBeforeSend(fn RecordListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeSend = append(r.beforeSend, fn)
}

// OnSaved registers a listener called with each newly created record.
func (r *Registry) OnSaved(fn RecordListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, fn)
}

// OnMutation registers an observer of store mutations. It runs under the
// same rules as any store observer: no store calls during the before phase,
// reads are fine once the after event arrives.
func (r *Registry) OnMutation(o invite.MutationObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutation = append(r.mutation, o)
}

// OnResults registers a filter for a view's results.
func (r *Registry) OnResults(view View, fn ResultFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[view] = append(r.results[view], fn)
}

// OnRegisteredComponents registers a filter for the component list.
func (r *Registry) OnRegisteredComponents(fn ComponentFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = append(r.components, fn)
}

func (r *Registry) addRecordCheck(p Point, fn RecordCheck) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordChecks[p] = append(r.recordChecks[p], fn)
}

func (r *Registry) addKeyCheck(p Point, fn KeyCheck) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keyChecks[p] = append(r.keyChecks[p], fn)
}

// AllowRecord runs every check registered at p. The first denial wins.
func (r *Registry) AllowRecord(ctx context.Context, p Point, rec invite.Record) bool {
	r.mu.RLock()
	checks := r.recordChecks[p]
	r.mu.RUnlock()

	for _, check := range checks {
		if !check(ctx, rec) {
			return false
		}
	}
	return true
}

// AllowKey runs every key check registered at p.
func (r *Registry) AllowKey(ctx context.Context, p Point, key invite.Key) bool {
	r.mu.RLock()
	checks := r.keyChecks[p]
	r.mu.RUnlock()

	for _, check := range checks {
		if !check(ctx, key) {
			return false
		}
	}
	return true
}

// BeforeSend notifies send listeners.
func (r *Registry) BeforeSend(ctx context.Context, rec invite.Record) {
	r.mu.RLock()
	listeners := r.beforeSend
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, rec)
	}
}

// Saved notifies save listeners.
func (r *Registry) Saved(ctx context.Context, rec invite.Record) {
	r.mu.RLock()
	listeners := r.saved
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, rec)
	}
}

func (r *Registry) dispatchMutation(ctx context.Context, ev invite.MutationEvent) {
	r.mu.RLock()
	observers := r.mutation
	r.mu.RUnlock()

	for _, o := range observers {
		o.OnMutation(ctx, ev)
	}
}

// Observer returns the store observer that fans mutations out to the
// observers registered with OnMutation.
func (r *Registry) Observer() invite.MutationObserver {
	return invite.MutationObserverFunc(r.dispatchMutation)
}

// FilterResults passes recs through the filters registered for view in
// registration order.
func (r *Registry) FilterResults(ctx context.Context, view View, recs []invite.Record) []invite.Record {
	r.mu.RLock()
	filters := r.results[view]
	r.mu.RUnlock()

	for _, fn := range filters {
		recs = fn(ctx, recs)
	}
	return recs
}

// FilterComponents passes names through the component filters.
func (r *Registry) FilterComponents(ctx context.Context, names []string) []string {
	r.mu.RLock()
	filters := r.components
	r.mu.RUnlock()

	for _, fn := range filters {
		names = fn(ctx, names)
	}
	return names
}

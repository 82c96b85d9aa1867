package invite

import (
	"context"

	"github.com/google/uuid"
)

// Op names a mutating store operation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Phase distinguishes the notification sent before a mutation from the one
// sent after it.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// MutationEvent describes one store mutation. The before and after events of
// a mutation share the same ID.
type MutationEvent struct {
	ID    uuid.UUID
	Op    Op
	Phase Phase

	// Matches is the resolved match set at the time of the before event. For
	// creates it holds the proposed record.
	Matches []Record

	// Records holds the affected rows as they are after the mutation
	// (deleted rows for deletes). Only set on after events.
	Records []Record

	// Err is set on the after event when the mutation did not commit.
	Err error
}

// NewMutationEvent starts a before event for op.
func NewMutationEvent(op Op, matches []Record) MutationEvent {
	return MutationEvent{ID: uuid.New(), Op: op, Phase: PhaseBefore, Matches: matches}
}

// After derives the after event of e.
func (e MutationEvent) After(records []Record, err error) MutationEvent {
	e.Phase = PhaseAfter
	e.Records = records
	e.Err = err
	return e
}

// Committed reports whether an after event describes a committed mutation.
func (e MutationEvent) Committed() bool {
	return e.Phase == PhaseAfter && e.Err == nil
}

// MutationObserver receives store notifications on the mutating goroutine.
//
// Before events are sent inside the store transaction, which holds the
// store's only connection: a before-phase observer must not call back into
// the store. After events are sent once the transaction has committed or
// rolled back, so after-phase observers may read and write the store.
type MutationObserver interface {
	OnMutation(ctx context.Context, ev MutationEvent)
}

// MutationObserverFunc adapts a function to MutationObserver.
type MutationObserverFunc func(ctx context.Context, ev MutationEvent)

// OnMutation calls f.
func (f MutationObserverFunc) OnMutation(ctx context.Context, ev MutationEvent) {
	f(ctx, ev)
}

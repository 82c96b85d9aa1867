package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/store"
)

// UpdateInvitations applies changes to the pending records matching f.
// Accepted records are never rewritten through this path.
func (e *Engine) UpdateInvitations(ctx context.Context, changes store.Changes, f queryir.Filter) (int, error) {
	const op = "update_invitations"
	f.Accepted = queryir.AcceptedPending
	n, err := e.store.Update(ctx, changes, f)
	if err != nil {
		return 0, e.fail(op, err)
	}
	e.log.Debug("invitations updated", zap.Int("records", n))
	return n, nil
}

// MarkSentByID marks one pending record sent.
func (e *Engine) MarkSentByID(ctx context.Context, id int64) (int, error) {
	if id <= 0 {
		return 0, e.fail("mark_sent", invite.InvalidArgument("mark_sent", "id must be positive"))
	}
	return e.MarkSent(ctx, queryir.Filter{IDs: []int64{id}})
}

// MarkSent marks the pending records matching f sent.
func (e *Engine) MarkSent(ctx context.Context, f queryir.Filter) (int, error) {
	return e.UpdateInvitations(ctx, store.MarkSent(), f)
}

// MarkAcceptedByID accepts one pending record. Unlike AcceptInvitation it
// does not cascade over the key.
func (e *Engine) MarkAcceptedByID(ctx context.Context, id int64) (int, error) {
	if id <= 0 {
		return 0, e.fail("mark_accepted", invite.InvalidArgument("mark_accepted", "id must be positive"))
	}
	return e.MarkAccepted(ctx, queryir.Filter{IDs: []int64{id}})
}

// MarkAccepted accepts the pending records matching f.
func (e *Engine) MarkAccepted(ctx context.Context, f queryir.Filter) (int, error) {
	const op = "mark_accepted"
	f.Accepted = queryir.AcceptedPending
	n, err := e.store.Update(ctx, store.MarkAccepted(), f)
	if err != nil {
		return 0, e.fail(op, err)
	}
	return n, nil
}

// DeleteInvitationByID removes one record in any state. A missing id is
// (0, nil).
func (e *Engine) DeleteInvitationByID(ctx context.Context, id int64) (int, error) {
	const op = "delete_invitation"
	n, err := e.store.DeleteByID(ctx, id)
	if err != nil {
		return 0, e.fail(op, err, zap.Int64("invitation_id", id))
	}
	e.log.Debug("invitation deleted", zap.Int64("invitation_id", id), zap.Int("records", n))
	return n, nil
}

// DeleteInvitations removes the records matching f. Type defaults to
// invite; accepted follows the filter default of pending.
func (e *Engine) DeleteInvitations(ctx context.Context, f queryir.Filter) (int, error) {
	if f.Type == "" {
		f.Type = invite.TypeInvite
	}
	return e.delete(ctx, "delete_invitations", f)
}

// DeleteRequests removes the requests matching f.
func (e *Engine) DeleteRequests(ctx context.Context, f queryir.Filter) (int, error) {
	f.Type = invite.TypeRequest
	f.InviterIDs = nil
	return e.delete(ctx, "delete_requests", f)
}

// DeleteAllByComponent removes every record of a component, in any state
// and of either type. An empty action matches every action.
func (e *Engine) DeleteAllByComponent(ctx context.Context, name, action string) (int, error) {
	const op = "delete_all_by_component"
	if name == "" {
		return 0, e.fail(op, invite.InvalidArgument(op, "component_name is required"))
	}
	f := queryir.Filter{
		ComponentNames: []string{name},
		InviteSent:     queryir.SentAll,
		Accepted:       queryir.AcceptedAll,
	}
	if action != "" {
		f.ComponentActions = []string{action}
	}
	return e.delete(ctx, op, f)
}

func (e *Engine) delete(ctx context.Context, op string, f queryir.Filter) (int, error) {
	n, err := e.store.Delete(ctx, f)
	if err != nil {
		return 0, e.fail(op, err)
	}
	e.log.Debug("invitations deleted", zap.String("op", op), zap.Int("records", n))
	return n, nil
}

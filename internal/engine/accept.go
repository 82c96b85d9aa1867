package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/hooks"
	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/store"
)

// AcceptInvitation accepts every pending invitation and request for the
// key and returns how many records were accepted. The key needs an
// identity, component name and action, and item.
func (e *Engine) AcceptInvitation(ctx context.Context, args AcceptArgs) (int, error) {
	const op = "accept_invitation"
	key := args.Key()
	if !key.Complete() {
		return 0, e.fail(op, invite.InvalidArgument(op, "accept requires identity, component_name, component_action and item_id"))
	}
	return e.accept(ctx, op, hooks.PointAllowAcceptInvitation, key)
}

// AcceptRequest is AcceptInvitation triggered from the request side. The
// identity must be a user.
func (e *Engine) AcceptRequest(ctx context.Context, args AcceptArgs) (int, error) {
	const op = "accept_request"
	key := args.Key()
	if key.Identity.UserID == 0 || !key.Complete() {
		return 0, e.fail(op, invite.InvalidArgument(op, "accept requires user_id, component_name, component_action and item_id"))
	}
	return e.accept(ctx, op, hooks.PointAllowAcceptRequest, key)
}

// accept marks every pending record for key accepted in one store update.
func (e *Engine) accept(ctx context.Context, op string, point hooks.Point, key invite.Key) (int, error) {
	if !e.hooks.AllowKey(ctx, point, key) {
		return 0, e.fail(op, invite.PolicyDenied(op, string(point)), zap.Stringer("key", key))
	}

	f := queryir.ForKey(key)
	f.Accepted = queryir.AcceptedPending
	n, err := e.store.Update(ctx, store.MarkAccepted(), f)
	if err != nil {
		return 0, e.fail(op, err, zap.Stringer("key", key))
	}
	e.log.Info("key accepted", zap.String("op", op), zap.Stringer("key", key), zap.Int("records", n))
	return n, nil
}

package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/hooks"
	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
)

// AddInvitation creates a draft invitation. With args.Send it then sends
// it; a failed send fails the call but leaves the draft in place.
func (e *Engine) AddInvitation(ctx context.Context, args InvitationArgs) (invite.Record, error) {
	const op = "add_invitation"
	rec := args.record()
	if err := validateInvitee(op, rec); err != nil {
		return invite.Record{}, e.fail(op, err)
	}
	if err := rec.Validate(); err != nil {
		return invite.Record{}, e.fail(op, withOp(op, err))
	}
	key := rec.Key()

	if !e.hooks.AllowRecord(ctx, hooks.PointAllowInvitation, rec) {
		return invite.Record{}, e.fail(op, invite.PolicyDenied(op, string(hooks.PointAllowInvitation)), zap.Stringer("key", key))
	}

	dup := queryir.ForKey(key)
	dup.Type = invite.TypeInvite
	dup.InviterIDs = []int64{rec.InviterID}
	dup.Accepted = queryir.AcceptedPending
	if err := e.rejectExisting(ctx, op, key, dup); err != nil {
		return invite.Record{}, err
	}

	created, err := e.store.Create(ctx, rec)
	if err != nil {
		return invite.Record{}, e.fail(op, err, zap.Stringer("key", key))
	}
	e.log.Debug("invitation added", zap.Int64("invitation_id", created.ID), zap.Stringer("key", key))
	e.hooks.Saved(ctx, created)

	if !args.Send {
		return created, nil
	}
	if _, err := e.SendInvitationByID(ctx, created.ID); err != nil {
		return invite.Record{}, err
	}
	return e.GetInvitationByID(ctx, created.ID)
}

// AddRequest creates a pending request. If a sent, pending invitation
// exists for the key, the key is accepted and the request is stored as
// accepted.
func (e *Engine) AddRequest(ctx context.Context, args RequestArgs) (invite.Record, error) {
	const op = "add_request"
	rec := args.record()
	if err := rec.Validate(); err != nil {
		return invite.Record{}, e.fail(op, withOp(op, err))
	}
	key := rec.Key()

	if !e.hooks.AllowRecord(ctx, hooks.PointAllowRequest, rec) {
		return invite.Record{}, e.fail(op, invite.PolicyDenied(op, string(hooks.PointAllowRequest)), zap.Stringer("key", key))
	}

	dup := queryir.ForKey(key)
	dup.Type = invite.TypeRequest
	dup.Accepted = queryir.AcceptedPending
	if err := e.rejectExisting(ctx, op, key, dup); err != nil {
		return invite.Record{}, err
	}

	sent := queryir.ForKey(key)
	sent.Type = invite.TypeInvite
	sent.InviteSent = queryir.SentSent
	sent.Accepted = queryir.AcceptedPending
	n, err := e.store.Count(ctx, sent)
	if err != nil {
		return invite.Record{}, e.fail(op, err)
	}

	if n > 0 {
		accepted, err := e.accept(ctx, op, hooks.PointAllowAcceptInvitation, key)
		if err != nil {
			return invite.Record{}, err
		}
		e.log.Info("request reconciled with sent invitation",
			zap.Stringer("key", key), zap.Int("accepted", accepted))
		rec.Accepted = true
	}

	created, err := e.store.Create(ctx, rec)
	if err != nil {
		return invite.Record{}, e.fail(op, err, zap.Stringer("key", key))
	}
	e.log.Debug("request added", zap.Int64("invitation_id", created.ID), zap.Bool("accepted", created.Accepted))
	e.hooks.Saved(ctx, created)
	return created, nil
}

// SendInvitationByID sends a pending invitation and returns the number of
// records changed. If a pending request exists for its key, the key is
// accepted instead and the count is the number of records accepted.
func (e *Engine) SendInvitationByID(ctx context.Context, id int64) (int, error) {
	const op = "send_invitation"
	rec, err := e.GetInvitationByID(ctx, id)
	if err != nil {
		return 0, e.fail(op, err, zap.Int64("invitation_id", id))
	}
	if rec.Type != invite.TypeInvite {
		return 0, e.fail(op, invite.InvalidArgument(op, fmt.Sprintf("record %d is a %s", id, rec.Type)))
	}

	e.hooks.BeforeSend(ctx, rec)
	if !e.hooks.AllowRecord(ctx, hooks.PointAllowSend, rec) {
		return 0, e.fail(op, invite.PolicyDenied(op, string(hooks.PointAllowSend)), zap.Int64("invitation_id", id))
	}

	key := rec.Key()
	pending := queryir.ForKey(key)
	pending.Type = invite.TypeRequest
	pending.Accepted = queryir.AcceptedPending
	n, err := e.store.Count(ctx, pending)
	if err != nil {
		return 0, e.fail(op, err)
	}
	if n > 0 {
		accepted, err := e.AcceptRequest(ctx, AcceptArgsFor(key))
		if err != nil {
			return 0, err
		}
		e.log.Info("invitation reconciled with pending request",
			zap.Int64("invitation_id", id), zap.Stringer("key", key), zap.Int("accepted", accepted))
		return accepted, nil
	}

	return e.MarkSentByID(ctx, id)
}

// rejectExisting fails with Duplicate when f matches a record. The store's
// unique index backs this check under concurrency.
func (e *Engine) rejectExisting(ctx context.Context, op string, key invite.Key, f queryir.Filter) error {
	n, err := e.store.Count(ctx, f)
	if err != nil {
		return e.fail(op, err)
	}
	if n > 0 {
		return e.fail(op, invite.Duplicate(op, key))
	}
	return nil
}

// validateInvitee rejects e-mail only invitations whose address is not
// shaped like one.
func validateInvitee(op string, r invite.Record) error {
	if r.UserID == 0 && r.InviteeEmail != "" && !invite.LooksLikeEmail(r.InviteeEmail) {
		return invite.InvalidArgument(op, fmt.Sprintf("invalid invitee email %q", r.InviteeEmail))
	}
	return nil
}

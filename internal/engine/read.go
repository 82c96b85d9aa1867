package engine

import (
	"context"
	"fmt"

	"github.com/roach88/invitations/internal/hooks"
	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
)

// GetInvitationByID returns one record in any state, through the per-id
// cache.
func (e *Engine) GetInvitationByID(ctx context.Context, id int64) (invite.Record, error) {
	if id <= 0 {
		return invite.Record{}, invite.InvalidArgument("get_invitation", "id must be positive")
	}
	return e.cache.Record(ctx, id, func(ctx context.Context) (invite.Record, error) {
		return e.store.Get(ctx, id)
	})
}

// GetInvitations queries the store directly with f.
func (e *Engine) GetInvitations(ctx context.Context, f queryir.Filter) ([]invite.Record, error) {
	recs, err := e.store.Query(ctx, f)
	if err != nil {
		return nil, e.fail("get_invitations", err)
	}
	return recs, nil
}

// GetRequests queries requests: type, inviter and sent status are forced.
func (e *Engine) GetRequests(ctx context.Context, f queryir.Filter) ([]invite.Record, error) {
	f.Type = invite.TypeRequest
	f.InviterIDs = []int64{0}
	f.InviteSent = queryir.SentAll
	return e.GetInvitations(ctx, f)
}

// UserInvitationDefaults are the options UserInvitations applies before
// the caller's filter: sent, pending invitations in id order.
func UserInvitationDefaults() queryir.Filter {
	return queryir.Filter{
		Type:       invite.TypeInvite,
		InviteSent: queryir.SentSent,
		Accepted:   queryir.AcceptedPending,
		OrderBy:    queryir.ColID,
		SortOrder:  queryir.Asc,
	}
}

// UserInvitations returns the records addressed to identity that match
// the defaults overlaid with f. The unfiltered superset for identity is
// cached, so only a change of identity reaches the store.
func (e *Engine) UserInvitations(ctx context.Context, identity invite.Identity, f queryir.Filter) ([]invite.Record, error) {
	f = UserInvitationDefaults().Merge(f)
	view := hooks.ViewUserInvitations
	if f.Type == invite.TypeRequest {
		view = hooks.ViewUserRequests
	}
	return e.userView(ctx, "user_invitations", view, identity, f)
}

// UserRequests returns the requests made by userID, in any sent state.
func (e *Engine) UserRequests(ctx context.Context, userID int64, f queryir.Filter) ([]invite.Record, error) {
	f.Type = invite.TypeRequest
	f.InviteSent = queryir.SentAll
	f = UserInvitationDefaults().Merge(f)
	return e.userView(ctx, "user_requests", hooks.ViewUserRequests, invite.UserIdentity(userID), f)
}

func (e *Engine) userView(ctx context.Context, op string, view hooks.View, identity invite.Identity, f queryir.Filter) ([]invite.Record, error) {
	if err := validIdentity(op, identity); err != nil {
		return nil, e.fail(op, err)
	}
	if err := f.Normalize().Validate(); err != nil {
		return nil, e.fail(op, withOp(op, err))
	}

	all, err := e.cache.ToIdentity(ctx, identity, func(ctx context.Context) ([]invite.Record, error) {
		return e.store.Query(ctx, identitySuperset(identity))
	})
	if err != nil {
		return nil, e.fail(op, err)
	}
	return e.hooks.FilterResults(ctx, view, queryir.Apply(f, all)), nil
}

// InvitationsFromUser returns the invitations sent by inviterID that match
// the defaults (invitations in any sent state, pending) overlaid with f.
func (e *Engine) InvitationsFromUser(ctx context.Context, inviterID int64, f queryir.Filter) ([]invite.Record, error) {
	const op = "invitations_from_user"
	if inviterID <= 0 {
		return nil, e.fail(op, invite.InvalidArgument(op, "inviter_id must be positive"))
	}
	defaults := UserInvitationDefaults()
	defaults.InviteSent = queryir.SentAll
	f = defaults.Merge(f)
	if err := f.Normalize().Validate(); err != nil {
		return nil, e.fail(op, withOp(op, err))
	}

	all, err := e.cache.FromInviter(ctx, inviterID, func(ctx context.Context) ([]invite.Record, error) {
		return e.store.Query(ctx, queryir.Filter{
			InviterIDs: []int64{inviterID},
			InviteSent: queryir.SentAll,
			Accepted:   queryir.AcceptedAll,
		})
	})
	if err != nil {
		return nil, e.fail(op, err)
	}
	return e.hooks.FilterResults(ctx, hooks.ViewInvitationsFromUser, queryir.Apply(f, all)), nil
}

// RegisteredComponents lists the active components with an invitation
// callback.
func (e *Engine) RegisteredComponents(ctx context.Context) []string {
	return e.hooks.FilterComponents(ctx, e.components.WithInvitationCallback())
}

// identitySuperset matches every record addressed to identity in any
// state. It is the content of the identity's aggregate cache entry.
func identitySuperset(identity invite.Identity) queryir.Filter {
	f := queryir.Filter{InviteSent: queryir.SentAll, Accepted: queryir.AcceptedAll}
	if identity.UserID != 0 {
		f.UserIDs = []int64{identity.UserID}
	} else {
		f.UserIDs = []int64{0}
		f.InviteeEmails = []string{identity.Email}
	}
	return f
}

func validIdentity(op string, identity invite.Identity) error {
	switch {
	case identity.UserID < 0:
		return invite.InvalidArgument(op, "user_id must not be negative")
	case identity.UserID > 0:
		return nil
	case identity.Email == "":
		return invite.InvalidArgument(op, "user_id or invitee_email is required")
	case !invite.LooksLikeEmail(identity.Email):
		return invite.InvalidArgument(op, fmt.Sprintf("invalid invitee email %q", identity.Email))
	}
	return nil
}

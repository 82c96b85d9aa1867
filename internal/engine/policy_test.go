package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invitations/internal/hooks"
	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/registry"
)

func deny[T any](context.Context, T) bool { return false }

func TestPolicy_DeniedAddCreatesNothing(t *testing.T) {
	h := hooks.New()
	h.OnAllowInvitation(deny[invite.Record])
	h.OnAllowRequest(deny[invite.Record])
	e := newTestEngine(t, WithHooks(h))
	ctx := context.Background()

	_, err := e.AddInvitation(ctx, cakes(u3, u1, true))
	assert.ErrorIs(t, err, invite.ErrPolicyDenied)
	_, err = e.AddRequest(ctx, cakesRequest(u3))
	assert.ErrorIs(t, err, invite.ErrPolicyDenied)

	n, err := e.Store().Count(ctx, queryir.Filter{Accepted: queryir.AcceptedAll})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPolicy_DeniedSendLeavesDraft(t *testing.T) {
	h := hooks.New()
	var before []int64
	h.OnBeforeSend(func(_ context.Context, r invite.Record) { before = append(before, r.ID) })
	h.OnAllowSend(deny[invite.Record])
	e := newTestEngine(t, WithHooks(h))
	ctx := context.Background()

	_, err := e.AddInvitation(ctx, cakes(u3, u1, true))
	require.ErrorIs(t, err, invite.ErrPolicyDenied)

	recs, err := e.GetInvitations(ctx, queryir.Filter{UserIDs: []int64{u3}})
	require.NoError(t, err)
	require.Len(t, recs, 1, "the draft survives a denied send")
	assert.False(t, recs[0].InviteSent)
	assert.Equal(t, []int64{recs[0].ID}, before, "before-send runs ahead of the check")
}

func TestPolicy_DeniedAcceptLeavesRecordsPending(t *testing.T) {
	h := hooks.New()
	h.OnAllowAcceptInvitation(deny[invite.Key])
	e := newTestEngine(t, WithHooks(h))
	ctx := context.Background()

	i1 := mustAddInvitation(t, e, cakes(u3, u1, true))
	_, err := e.AddRequest(ctx, cakesRequest(u3))
	require.ErrorIs(t, err, invite.ErrPolicyDenied)

	got, err := e.GetInvitationByID(ctx, i1.ID)
	require.NoError(t, err)
	assert.False(t, got.Accepted)

	_, err = e.AcceptInvitation(ctx, AcceptArgsFor(i1.Key()))
	assert.ErrorIs(t, err, invite.ErrPolicyDenied)
}

func TestPolicy_DeniedAcceptRequestBlocksSendReconciliation(t *testing.T) {
	h := hooks.New()
	h.OnAllowAcceptRequest(deny[invite.Key])
	e := newTestEngine(t, WithHooks(h))
	ctx := context.Background()

	i1 := mustAddInvitation(t, e, cakes(u3, u1, false))
	mustAddRequest(t, e, cakesRequest(u3))

	_, err := e.SendInvitationByID(ctx, i1.ID)
	assert.ErrorIs(t, err, invite.ErrPolicyDenied)
	assert.Empty(t, acceptedIDs(t, e, u3, ""))
}

func TestHooks_SavedAndMutationObservers(t *testing.T) {
	h := hooks.New()
	var saved []int64
	var phases []invite.Phase
	h.OnSaved(func(_ context.Context, r invite.Record) { saved = append(saved, r.ID) })
	h.OnMutation(invite.MutationObserverFunc(func(_ context.Context, ev invite.MutationEvent) {
		phases = append(phases, ev.Phase)
	}))
	e := newTestEngine(t, WithHooks(h))

	i1 := mustAddInvitation(t, e, cakes(u3, u1, false))
	r1 := mustAddRequest(t, e, cakesRequest(u3))

	assert.Equal(t, []int64{i1.ID, r1.ID}, saved)
	assert.Equal(t, []invite.Phase{invite.PhaseBefore, invite.PhaseAfter, invite.PhaseBefore, invite.PhaseAfter}, phases)
}

func TestHooks_ResultFilter(t *testing.T) {
	h := hooks.New()
	h.OnResults(hooks.ViewUserInvitations, func(_ context.Context, recs []invite.Record) []invite.Record {
		var out []invite.Record
		for _, r := range recs {
			if r.InviterID != u2 {
				out = append(out, r)
			}
		}
		return out
	})
	e := newTestEngine(t, WithHooks(h))
	ctx := context.Background()

	i1 := mustAddInvitation(t, e, cakes(u3, u1, true))
	mustAddInvitation(t, e, cakes(u3, u2, true))

	recs, err := e.UserInvitations(ctx, invite.UserIdentity(u3), queryir.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{i1.ID}, invite.IDs(recs))
}

func TestRegisteredComponents(t *testing.T) {
	comps := registry.New(
		registry.Component{Name: "groups", Active: true, InvitationCallback: "groups_invitations"},
		registry.Component{Name: "members", Active: true},
		registry.Component{Name: "friends", Active: false, InvitationCallback: "friends_invitations"},
		registry.Component{Name: "activity", Active: true, InvitationCallback: "activity_invitations"},
	)
	h := hooks.New()
	e := newTestEngine(t, WithHooks(h), WithComponents(comps))
	ctx := context.Background()

	assert.Equal(t, []string{"groups", "activity"}, e.RegisteredComponents(ctx))

	h.OnRegisteredComponents(func(_ context.Context, names []string) []string {
		return append(names, "blogs")
	})
	assert.Equal(t, []string{"groups", "activity", "blogs"}, e.RegisteredComponents(ctx))
}

package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/invitations/internal/cache"
	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/queryir"
	"github.com/roach88/invitations/internal/store"
	"github.com/roach88/invitations/internal/testutil"
)

const (
	u1 int64 = 1
	u2 int64 = 2
	u3 int64 = 3
)

// newTestEngine wires an engine over a temp-dir store and a memory cache.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	clock := testutil.NewDeterministicClock()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), store.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	opts = append([]Option{WithCache(cache.NewLayer(cache.NewMemory(0)))}, opts...)
	return New(st, opts...)
}

func cakes(userID, inviterID int64, send bool) InvitationArgs {
	return InvitationArgs{
		UserID:          userID,
		InviterID:       inviterID,
		ComponentName:   "cakes",
		ComponentAction: "cupcakes",
		ItemID:          1,
		Send:            send,
	}
}

func cakesRequest(userID int64) RequestArgs {
	return RequestArgs{
		UserID:          userID,
		ComponentName:   "cakes",
		ComponentAction: "cupcakes",
		ItemID:          1,
	}
}

func mustAddInvitation(t *testing.T, e *Engine, args InvitationArgs) invite.Record {
	t.Helper()
	r, err := e.AddInvitation(context.Background(), args)
	require.NoError(t, err)
	return r
}

func mustAddRequest(t *testing.T, e *Engine, args RequestArgs) invite.Record {
	t.Helper()
	r, err := e.AddRequest(context.Background(), args)
	require.NoError(t, err)
	return r
}

// acceptedIDs returns the ids of accepted cakes/cupcakes records of typ
// ("" for both) addressed to user.
func acceptedIDs(t *testing.T, e *Engine, user int64, typ invite.Type) []int64 {
	t.Helper()
	recs, err := e.GetInvitations(context.Background(), queryir.Filter{
		UserIDs:          []int64{user},
		ComponentNames:   []string{"cakes"},
		ComponentActions: []string{"cupcakes"},
		Type:             typ,
		Accepted:         queryir.AcceptedAccepted,
	})
	require.NoError(t, err)
	return invite.IDs(recs)
}

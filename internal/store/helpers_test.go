package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/testutil"
)

// createTestStore opens a store in a temp dir with a deterministic clock.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	clock := testutil.NewDeterministicClock()
	st, err := Open(dbPath, append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func invitation(userID, inviterID int64, name, action string, item int64) invite.Record {
	return invite.Record{
		UserID:          userID,
		InviterID:       inviterID,
		ComponentName:   name,
		ComponentAction: action,
		ItemID:          item,
		Type:            invite.TypeInvite,
	}
}

func request(userID int64, name, action string, item int64) invite.Record {
	return invite.Record{
		UserID:          userID,
		ComponentName:   name,
		ComponentAction: action,
		ItemID:          item,
		Type:            invite.TypeRequest,
	}
}

func mustCreate(t *testing.T, st *Store, r invite.Record) invite.Record {
	t.Helper()
	created, err := st.Create(context.Background(), r)
	require.NoError(t, err)
	return created
}

// recorder collects mutation events.
type recorder struct {
	mu     sync.Mutex
	events []invite.MutationEvent
}

func (r *recorder) OnMutation(_ context.Context, ev invite.MutationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []invite.MutationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]invite.MutationEvent(nil), r.events...)
}

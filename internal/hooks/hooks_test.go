package hooks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invitations/internal/invite"
)

var sample = invite.Record{
	ID: 1, UserID: 3, InviterID: 1, ComponentName: "cakes", ComponentAction: "cupcakes", ItemID: 1, Type: invite.TypeInvite,
}

func TestRegistry_DefaultsAllow(t *testing.T) {
	r := New()
	ctx := context.Background()

	for _, p := range []Point{PointAllowInvitation, PointAllowRequest, PointAllowSend} {
		assert.True(t, r.AllowRecord(ctx, p, sample), p)
	}
	for _, p := range []Point{PointAllowAcceptInvitation, PointAllowAcceptRequest} {
		assert.True(t, r.AllowKey(ctx, p, sample.Key()), p)
	}

	recs := []invite.Record{sample}
	assert.Equal(t, recs, r.FilterResults(ctx, ViewUserInvitations, recs))
	assert.Equal(t, []string{"groups"}, r.FilterComponents(ctx, []string{"groups"}))
}

func TestRegistry_FirstDenialWins(t *testing.T) {
	r := New()
	ctx := context.Background()

	var ran []string
	r.OnAllowInvitation(func(context.Context, invite.Record) bool {
		ran = append(ran, "first")
		return false
	})
	r.OnAllowInvitation(func(context.Context, invite.Record) bool {
		ran = append(ran, "second")
		return true
	})

	assert.False(t, r.AllowRecord(ctx, PointAllowInvitation, sample))
	assert.Equal(t, []string{"first"}, ran)
	assert.True(t, r.AllowRecord(ctx, PointAllowRequest, sample), "points are independent")
}

func TestRegistry_KeyChecksSeeKey(t *testing.T) {
	r := New()

	var got invite.Key
	r.OnAllowAcceptRequest(func(_ context.Context, k invite.Key) bool {
		got = k
		return k.ItemID != 1
	})

	assert.False(t, r.AllowKey(context.Background(), PointAllowAcceptRequest, sample.Key()))
	assert.Equal(t, sample.Key(), got)
	assert.True(t, r.AllowKey(context.Background(), PointAllowAcceptInvitation, sample.Key()))
}

func TestRegistry_Listeners(t *testing.T) {
	r := New()
	ctx := context.Background()

	var sent, saved []int64
	r.OnBeforeSend(func(_ context.Context, rec invite.Record) { sent = append(sent, rec.ID) })
	r.OnSaved(func(_ context.Context, rec invite.Record) { saved = append(saved, rec.ID) })

	r.BeforeSend(ctx, sample)
	r.Saved(ctx, sample)
	r.Saved(ctx, sample)

	assert.Equal(t, []int64{1}, sent)
	assert.Equal(t, []int64{1, 1}, saved)
}

func TestRegistry_MutationObserver(t *testing.T) {
	r := New()

	var phases []invite.Phase
	r.OnMutation(invite.MutationObserverFunc(func(_ context.Context, ev invite.MutationEvent) {
		phases = append(phases, ev.Phase)
	}))

	obs := r.Observer()
	ev := invite.NewMutationEvent(invite.OpDelete, []invite.Record{sample})
	obs.OnMutation(context.Background(), ev)
	obs.OnMutation(context.Background(), ev.After([]invite.Record{sample}, nil))

	assert.Equal(t, []invite.Phase{invite.PhaseBefore, invite.PhaseAfter}, phases)
}

func TestRegistry_ResultFiltersChain(t *testing.T) {
	r := New()
	ctx := context.Background()

	r.OnResults(ViewUserInvitations, func(_ context.Context, recs []invite.Record) []invite.Record {
		out := make([]invite.Record, len(recs))
		for i, rec := range recs {
			rec.Content = "[" + rec.Content + "]"
			out[i] = rec
		}
		return out
	})
	r.OnResults(ViewUserInvitations, func(_ context.Context, recs []invite.Record) []invite.Record {
		return recs[:1]
	})

	in := []invite.Record{{ID: 1, Content: "a"}, {ID: 2, Content: "b"}}
	out := r.FilterResults(ctx, ViewUserInvitations, in)
	require.Len(t, out, 1)
	assert.Equal(t, "[a]", out[0].Content)
	assert.Equal(t, "a", in[0].Content, "input is untouched")

	assert.Len(t, r.FilterResults(ctx, ViewUserRequests, in), 2, "views are independent")
}

func TestRegistry_ConcurrentDispatch(t *testing.T) {
	r := New()
	r.OnAllowSend(func(context.Context, invite.Record) bool { return true })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.AllowRecord(context.Background(), PointAllowSend, sample)
			}
		}()
	}
	wg.Wait()
}

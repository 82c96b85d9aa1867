package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invitations/internal/invite"
)

var modified = time.Date(2024, time.January, 1, 0, 0, 1, 0, time.UTC)

func sampleRecords() []invite.Record {
	return []invite.Record{
		{ID: 1, UserID: 3, InviterID: 1, ComponentName: "cakes", ComponentAction: "cupcakes", ItemID: 1, Type: invite.TypeInvite, DateModified: modified, InviteSent: true},
		{ID: 2, UserID: 3, ComponentName: "cakes", ComponentAction: "cupcakes", ItemID: 1, Type: invite.TypeRequest, DateModified: modified},
	}
}

// countingLoader returns recs and counts how often it ran.
func countingLoader(recs []invite.Record, calls *int) Loader[[]invite.Record] {
	return func(context.Context) ([]invite.Record, error) {
		*calls++
		return recs, nil
	}
}

func TestLayer_ReadThrough(t *testing.T) {
	l := NewLayer(NewMemory(0))
	ctx := context.Background()
	id := invite.UserIdentity(3)

	calls := 0
	first, err := l.ToIdentity(ctx, id, countingLoader(sampleRecords(), &calls))
	require.NoError(t, err)
	second, err := l.ToIdentity(ctx, id, countingLoader(sampleRecords(), &calls))
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second read is served from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, sampleRecords(), second, "records survive the codec")

	m := l.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses.WithLabelValues("to_user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues("to_user")))
}

func TestLayer_ScopesAreIndependent(t *testing.T) {
	l := NewLayer(NewMemory(0))
	ctx := context.Background()

	calls := 0
	_, err := l.ToIdentity(ctx, invite.UserIdentity(1), countingLoader(sampleRecords(), &calls))
	require.NoError(t, err)
	_, err = l.FromInviter(ctx, 1, countingLoader(sampleRecords(), &calls))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestLayer_Record(t *testing.T) {
	l := NewLayer(NewMemory(0))
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (invite.Record, error) {
		calls++
		return sampleRecords()[0], nil
	}
	for i := 0; i < 3; i++ {
		r, err := l.Record(ctx, 1, load)
		require.NoError(t, err)
		assert.Equal(t, int64(1), r.ID)
	}
	assert.Equal(t, 1, calls)
}

func TestLayer_LoadErrorIsNotCached(t *testing.T) {
	l := NewLayer(NewMemory(0))
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (invite.Record, error) {
		calls++
		return invite.Record{}, invite.NotFound("get", 5)
	}
	_, err := l.Record(ctx, 5, load)
	assert.ErrorIs(t, err, invite.ErrNotFound)
	_, err = l.Record(ctx, 5, load)
	assert.ErrorIs(t, err, invite.ErrNotFound)
	assert.Equal(t, 2, calls)
}

func TestLayer_NoopAlwaysLoads(t *testing.T) {
	l := NewLayer(nil)
	ctx := context.Background()

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := l.ToIdentity(ctx, invite.UserIdentity(3), countingLoader(sampleRecords(), &calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestLayer_CorruptEntryIsMiss(t *testing.T) {
	mem := NewMemory(0)
	l := NewLayer(mem)
	ctx := context.Background()
	id := invite.UserIdentity(3)

	require.NoError(t, mem.Set(ctx, ToUserKey(id), []byte("not json")))

	calls := 0
	recs, err := l.ToIdentity(ctx, id, countingLoader(sampleRecords(), &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, recs, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(l.Metrics().Errors.WithLabelValues("decode")))

	_, err = l.ToIdentity(ctx, id, countingLoader(sampleRecords(), &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "the reload repaired the entry")
}

// failingCache fails every operation.
type failingCache struct{}

var errBackend = errors.New("backend down")

func (failingCache) Get(context.Context, Key) ([]byte, bool, error) { return nil, false, errBackend }
func (failingCache) Set(context.Context, Key, []byte) error         { return errBackend }
func (failingCache) Delete(context.Context, ...Key) error           { return errBackend }

func TestLayer_BackendFailureDegradesToStore(t *testing.T) {
	l := NewLayer(failingCache{})
	ctx := context.Background()

	calls := 0
	recs, err := l.ToIdentity(ctx, invite.UserIdentity(3), countingLoader(sampleRecords(), &calls))
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	l.Evict(ctx, ToUserKey(invite.UserIdentity(3)))

	m := l.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("set")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("delete")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Evictions.WithLabelValues("to_user")))
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.Hits.WithLabelValues("record").Inc()
	n, err := testutil.GatherAndCount(reg, "invitations_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = NewMetrics(reg)
	assert.Error(t, err, "double registration fails")
}

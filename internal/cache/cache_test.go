package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invitations/internal/invite"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "record:7", RecordKey(7).String())
	assert.Equal(t, "to_user:3", ToUserKey(invite.UserIdentity(3)).String())
	assert.Equal(t, "to_user:a%2Bb%40example.com", ToUserKey(invite.EmailIdentity("A+b@example.com")).String())
	assert.Equal(t, "from_user:1", FromUserKey(1).String())

	assert.NotEqual(t, ToUserKey(invite.UserIdentity(1)), FromUserKey(1), "scopes never collide")
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Noop

	require.NoError(t, c.Set(ctx, RecordKey(1), []byte("x")))
	_, ok, err := c.Get(ctx, RecordKey(1))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, RecordKey(1)))
}

// conformance runs the behaviour every backend shares.
func conformance(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := ToUserKey(invite.UserIdentity(3))
	other := FromUserKey(3)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "fresh cache misses")

	require.NoError(t, c.Set(ctx, key, []byte(`[{"id":1}]`)))
	require.NoError(t, c.Set(ctx, other, []byte(`[]`)))

	v, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(v))

	require.NoError(t, c.Set(ctx, key, []byte(`[{"id":2}]`)))
	v, _, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, string(v), "set overwrites")

	require.NoError(t, c.Delete(ctx, key, RecordKey(404)))
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Get(ctx, other)
	require.NoError(t, err)
	assert.True(t, ok, "delete leaves other keys")

	big := []byte(`"` + strings.Repeat("x", 200*1024) + `"`)
	require.NoError(t, c.Set(ctx, RecordKey(9), big))
	v, ok, err = c.Get(ctx, RecordKey(9))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big, v, "values above 64KB survive")

	require.NoError(t, c.Delete(ctx, other, RecordKey(9)))
}

func TestMemory(t *testing.T) {
	conformance(t, NewMemory(0))
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(1024 * 1024)
	require.NoError(t, m.Set(ctx, RecordKey(1), []byte("x")))

	m.Reset()
	_, ok, err := m.Get(ctx, RecordKey(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestRedis needs a live server; set INVITATIONS_TEST_REDIS_ADDR to run it.
func TestRedis(t *testing.T) {
	addr := os.Getenv("INVITATIONS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INVITATIONS_TEST_REDIS_ADDR not set")
	}

	cfg := RedisConfig{
		Address:     addr,
		Prefix:      "invitations-test:" + t.Name() + ":",
		TTL:         time.Minute,
		DialTimeout: 2 * time.Second,
	}
	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)

	r := NewRedis(client, cfg)
	t.Cleanup(func() { r.Close() })

	conformance(t, r)
}

func TestNewRedisClient_UnknownMode(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{Mode: "cluster"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown redis mode")
}

package cache

import (
	"context"
	"strconv"

	"github.com/roach88/invitations/internal/invite"
)

// Scope partitions the key space.
type Scope string

const (
	// ScopeRecord caches one record by id.
	ScopeRecord Scope = "record"

	// ScopeToUser caches every record addressed to an identity.
	ScopeToUser Scope = "to_user"

	// ScopeFromUser caches every record sent by an inviter.
	ScopeFromUser Scope = "from_user"
)

// Key addresses one cache entry. Identity is a decimal id or a URL-escaped
// e-mail, so keys of different scopes and identities never collide.
type Key struct {
	Scope    Scope
	Identity string
}

func (k Key) String() string {
	return string(k.Scope) + ":" + k.Identity
}

// RecordKey addresses the per-id entry.
func RecordKey(id int64) Key {
	return Key{Scope: ScopeRecord, Identity: strconv.FormatInt(id, 10)}
}

// ToUserKey addresses the superset addressed to identity.
func ToUserKey(identity invite.Identity) Key {
	return Key{Scope: ScopeToUser, Identity: identity.CacheKey()}
}

// FromUserKey addresses the superset sent by inviterID.
func FromUserKey(inviterID int64) Key {
	return Key{Scope: ScopeFromUser, Identity: strconv.FormatInt(inviterID, 10)}
}

// Cache is a byte-valued key-value store.
//
// Get reports a miss as (nil, false, nil). Delete of an absent key is not
// an error.
type Cache interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, keys ...Key) error
}

// Noop caches nothing. Every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, Key) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, Key, []byte) error         { return nil }
func (Noop) Delete(context.Context, ...Key) error           { return nil }

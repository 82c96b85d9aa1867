package cache

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/invite"
)

// Invalidator evicts the cache entries a store mutation affects.
//
// The before event's match set is captured, so rows that an update moves
// to another identity or inviter are evicted under both their old and new
// keys. Eviction runs on the after event of a committed mutation, which the
// store emits after commit and before returning to its caller.
type Invalidator struct {
	layer *Layer

	mu      sync.Mutex
	pending map[uuid.UUID][]Key
}

// NewInvalidator creates an Invalidator evicting through layer.
func NewInvalidator(layer *Layer) *Invalidator {
	return &Invalidator{layer: layer, pending: make(map[uuid.UUID][]Key)}
}

// OnMutation implements invite.MutationObserver.
func (inv *Invalidator) OnMutation(ctx context.Context, ev invite.MutationEvent) {
	switch ev.Phase {
	case invite.PhaseBefore:
		inv.mu.Lock()
		inv.pending[ev.ID] = affectedKeys(ev.Op, ev.Matches)
		inv.mu.Unlock()

	case invite.PhaseAfter:
		inv.mu.Lock()
		keys := inv.pending[ev.ID]
		delete(inv.pending, ev.ID)
		inv.mu.Unlock()

		if !ev.Committed() {
			return
		}
		keys = dedupKeys(append(keys, affectedKeys(ev.Op, ev.Records)...))
		inv.layer.log.Debug("invalidating after mutation",
			zap.String("op", string(ev.Op)),
			zap.Int("records", len(ev.Records)))
		inv.layer.Evict(context.WithoutCancel(ctx), keys...)
	}
}

// Pending returns the number of mutations awaiting their after event.
func (inv *Invalidator) Pending() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.pending)
}

// affectedKeys lists the entries recs appear in. Creates have no cached
// record entry yet.
func affectedKeys(op invite.Op, recs []invite.Record) []Key {
	keys := make([]Key, 0, len(recs)*3)
	for _, r := range recs {
		if op != invite.OpCreate && r.ID != 0 {
			keys = append(keys, RecordKey(r.ID))
		}
		if id := r.Identity(); !id.IsZero() {
			keys = append(keys, ToUserKey(id))
		}
		if r.InviterID != 0 {
			keys = append(keys, FromUserKey(r.InviterID))
		}
	}
	return keys
}

// dedupKeys sorts keys by scope and identity and drops repeats.
func dedupKeys(keys []Key) []Key {
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Scope, b.Scope), cmp.Compare(a.Identity, b.Identity))
	})
	return slices.Compact(keys)
}

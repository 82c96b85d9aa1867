package cache

import (
	"context"

	"github.com/VictoriaMetrics/fastcache"
)

// DefaultMemoryBytes is the fastcache size used when none is configured.
const DefaultMemoryBytes = 32 * 1024 * 1024

// Memory is an in-process cache backed by fastcache.
//
// fastcache evicts the oldest buckets when full; a dropped entry is only a
// miss. Aggregate views can exceed the 64KB limit of fastcache.Set, so every
// value goes through SetBig/GetBig.
type Memory struct {
	cache *fastcache.Cache
}

// NewMemory creates a Memory cache of maxBytes. Values of zero or less use
// DefaultMemoryBytes.
func NewMemory(maxBytes int) *Memory {
	if maxBytes <= 0 {
		maxBytes = DefaultMemoryBytes
	}
	return &Memory{cache: fastcache.New(maxBytes)}
}

// Get returns the value for the given key.
func (m *Memory) Get(_ context.Context, key Key) ([]byte, bool, error) {
	v := m.cache.GetBig(nil, []byte(key.String()))
	if len(v) == 0 {
		return nil, false, nil
	}
	return v, true, nil
}

// Set stores value under key. Empty values are not stored.
func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	if len(value) == 0 {
		return nil
	}
	m.cache.SetBig([]byte(key.String()), value)
	return nil
}

// Delete removes keys.
func (m *Memory) Delete(_ context.Context, keys ...Key) error {
	for _, key := range keys {
		m.cache.Del([]byte(key.String()))
	}
	return nil
}

// Reset drops every entry.
func (m *Memory) Reset() {
	m.cache.Reset()
}

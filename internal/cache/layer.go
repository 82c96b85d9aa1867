package cache

import (
	"context"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/invite"
)

// Loader fetches a value from the store on a miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Layer is the read-through front of the record store.
type Layer struct {
	cache   Cache
	log     *zap.Logger
	metrics *Metrics
}

// Option configures a Layer.
type Option func(*Layer)

// WithLogger sets the logger. The default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(l *Layer) { l.log = log }
}

// WithMetrics sets the counters. The default is an unregistered set.
func WithMetrics(m *Metrics) Option {
	return func(l *Layer) { l.metrics = m }
}

// NewLayer wraps c. A nil c behaves like Noop.
func NewLayer(c Cache, opts ...Option) *Layer {
	if c == nil {
		c = Noop{}
	}
	l := &Layer{cache: c, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics == nil {
		l.metrics, _ = NewMetrics(nil)
	}
	return l
}

// Metrics returns the layer's counters.
func (l *Layer) Metrics() *Metrics {
	return l.metrics
}

// Record returns the record with id, loading it on a miss. Load errors
// (including NotFound) are returned and nothing is cached.
func (l *Layer) Record(ctx context.Context, id int64, load Loader[invite.Record]) (invite.Record, error) {
	return readThrough(ctx, l, RecordKey(id), load)
}

// ToIdentity returns every record addressed to identity, in any state.
func (l *Layer) ToIdentity(ctx context.Context, identity invite.Identity, load Loader[[]invite.Record]) ([]invite.Record, error) {
	return readThrough(ctx, l, ToUserKey(identity), load)
}

// FromInviter returns every record sent by inviterID, in any state.
func (l *Layer) FromInviter(ctx context.Context, inviterID int64, load Loader[[]invite.Record]) ([]invite.Record, error) {
	return readThrough(ctx, l, FromUserKey(inviterID), load)
}

// Evict removes keys. Failures are logged and counted, never returned.
func (l *Layer) Evict(ctx context.Context, keys ...Key) {
	if len(keys) == 0 {
		return
	}
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.metrics.Errors.WithLabelValues("delete").Inc()
		l.log.Warn("cache evict failed", zap.Int("keys", len(keys)), zap.Error(err))
		return
	}
	for _, k := range keys {
		l.metrics.Evictions.WithLabelValues(string(k.Scope)).Inc()
	}
	l.log.Debug("cache evicted", zap.Stringers("keys", keys))
}

// readThrough serves key from the cache or loads and stores it. A backend
// or decode failure is a miss.
func readThrough[T any](ctx context.Context, l *Layer, key Key, load Loader[T]) (T, error) {
	scope := string(key.Scope)

	data, ok, err := l.cache.Get(ctx, key)
	switch {
	case err != nil:
		l.metrics.Errors.WithLabelValues("get").Inc()
		l.log.Warn("cache get failed", zap.Stringer("key", key), zap.Error(err))
	case ok:
		var v T
		if err := sonic.Unmarshal(data, &v); err == nil {
			l.metrics.Hits.WithLabelValues(scope).Inc()
			return v, nil
		}
		l.metrics.Errors.WithLabelValues("decode").Inc()
		l.log.Warn("cache entry undecodable", zap.Stringer("key", key))
	}
	l.metrics.Misses.WithLabelValues(scope).Inc()

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	data, err = sonic.Marshal(v)
	if err != nil {
		l.metrics.Errors.WithLabelValues("encode").Inc()
		l.log.Warn("cache entry unencodable", zap.Stringer("key", key), zap.Error(err))
		return v, nil
	}
	if err := l.cache.Set(ctx, key, data); err != nil {
		l.metrics.Errors.WithLabelValues("set").Inc()
		l.log.Warn("cache set failed", zap.Stringer("key", key), zap.Error(err))
	}
	return v, nil
}

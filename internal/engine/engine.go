package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/cache"
	"github.com/roach88/invitations/internal/hooks"
	"github.com/roach88/invitations/internal/invite"
	"github.com/roach88/invitations/internal/registry"
	"github.com/roach88/invitations/internal/store"
)

// Engine runs the high-level invitation operations.
type Engine struct {
	store      *store.Store
	cache      *cache.Layer
	hooks      *hooks.Registry
	components *registry.Registry
	log        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the cache layer. The default caches nothing.
func WithCache(l *cache.Layer) Option {
	return func(e *Engine) { e.cache = l }
}

// WithHooks sets the extension registry. The default allows everything.
func WithHooks(h *hooks.Registry) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithComponents sets the component registry.
func WithComponents(r *registry.Registry) Option {
	return func(e *Engine) { e.components = r }
}

// WithLogger sets the logger. The default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine over st and subscribes cache invalidation and the
// hook registry's mutation observers to it. Create one Engine per Store.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{store: st, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.NewLayer(cache.Noop{})
	}
	if e.hooks == nil {
		e.hooks = hooks.New()
	}
	if e.components == nil {
		e.components = registry.New()
	}

	st.Subscribe(cache.NewInvalidator(e.cache))
	st.Subscribe(e.hooks.Observer())
	return e
}

// Store returns the underlying record store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Hooks returns the extension registry.
func (e *Engine) Hooks() *hooks.Registry {
	return e.hooks
}

// fail logs err at a level matching its code and returns it.
func (e *Engine) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	switch invite.CodeOf(err) {
	case invite.CodePolicyDenied:
		e.log.Info("operation denied", fields...)
	case invite.CodeStorage, "":
		e.log.Error("operation failed", fields...)
	default:
		e.log.Debug("operation rejected", fields...)
	}
	return err
}

// withOp attributes a typed error to op.
func withOp(op string, err error) error {
	var ie *invite.Error
	if errors.As(err, &ie) {
		return ie.WithOp(op)
	}
	return err
}

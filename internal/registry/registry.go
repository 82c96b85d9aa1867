// Package registry tracks the components that participate in invitations.
//
// A component is active when it is enabled in the deployment, and it
// handles invitations when it names an invitation callback. The registry is
// built once at startup, either in code or from a CUE file, and read
// concurrently afterwards.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// Component describes one subsystem.
type Component struct {
	Name               string `json:"name" yaml:"name"`
	Active             bool   `json:"active" yaml:"active"`
	InvitationCallback string `json:"invitation_callback,omitempty" yaml:"invitation_callback,omitempty"`
}

// HandlesInvitations reports whether the component is active and has
// registered an invitation callback.
func (c Component) HandlesInvitations() bool {
	return c.Active && c.InvitationCallback != ""
}

// Registry is an ordered set of components keyed by name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
	order      []string
}

// New creates a registry holding components. It panics on an invalid or
// repeated component, which is a programming error at startup.
func New(components ...Component) *Registry {
	r := &Registry{components: make(map[string]Component)}
	for _, c := range components {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// ErrDuplicateComponent is returned when a name is registered twice.
var ErrDuplicateComponent = errors.New("component already registered")

// Register adds c. Names are unique.
func (r *Registry) Register(c Component) error {
	if c.Name == "" {
		return errors.New("component name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.components[c.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, c.Name)
	}
	r.components[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

// Get returns the component named name.
func (r *Registry) Get(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Components returns every component in registration order.
func (r *Registry) Components() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Component, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.components[name])
	}
	return out
}

// Active returns the names of active components in registration order.
func (r *Registry) Active() []string {
	return r.names(func(c Component) bool { return c.Active })
}

// WithInvitationCallback returns the names of active components that
// handle invitations, in registration order.
func (r *Registry) WithInvitationCallback() []string {
	return r.names(Component.HandlesInvitations)
}

func (r *Registry) names(keep func(Component) bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := []string{}
	for _, name := range r.order {
		if keep(r.components[name]) {
			names = append(names, name)
		}
	}
	return names
}

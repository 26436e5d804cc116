package resource

import (
	"fmt"
	"maps"
	"sync"

	"github.com/c360/resourcekit/errors"
)

// Key identifies a registered resource by name and version.
type Key struct {
	Name    string
	Version int
}

// String returns the canonical "Name/vN" form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s/v%d", k.Name, k.Version)
}

// Registry is a thread-safe table of in-process resource handlers. It backs
// local discovery: a resource registered here is reachable without any
// network hop.
type Registry struct {
	handlers map[Key]Handler
	mu       sync.RWMutex
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]Handler)}
}

// Register adds a handler for the named resource version. Registering an
// empty name, a nil handler, or a duplicate name/version pair is an error.
func (r *Registry) Register(name string, version int, handler Handler) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "resource name validation")
	}
	if version < 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "resource version validation")
	}
	if handler == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "handler validation")
	}

	key := Key{Name: name, Version: version}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[key]; exists {
		msg := fmt.Errorf("resource %s is already registered", key)
		return errors.WrapInvalid(msg, "Registry", "Register", "duplicate resource check")
	}

	r.handlers[key] = handler
	return nil
}

// Deregister removes a handler. Removing an unknown resource is a no-op.
func (r *Registry) Deregister(name string, version int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, Key{Name: name, Version: version})
}

// Find returns the handler for the named resource version, or nil.
func (r *Registry) Find(name string, version int) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[Key{Name: name, Version: version}]
}

// List returns a copy of the registration table.
func (r *Registry) List() map[Key]Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Key]Handler, len(r.handlers))
	maps.Copy(out, r.handlers)
	return out
}

// Package handler implements the opaque handler-ID indirection called for
// in the design notes: the original source resolves subscribers as
// first-class callables passed across a foreign-runtime boundary. Here a
// Handler is invoked only through its ID, and the Registry that owns the
// underlying callables is a plain value with a lifetime the caller
// controls — never a raw pointer smuggled across the bus boundary.
package handler

import "sync"

// ID is an opaque token referring to a registered Handler. Two IDs are
// equal iff they refer to the same registration.
type ID string

// Handler is the capability invoked by the bus or clock dispatch loop.
// Implementations must be fast and non-blocking; a panic is recovered by
// the caller and converted into a KindHandler error.
type Handler interface {
	Invoke(msg any)
}

// Func adapts a plain function to the Handler interface.
type Func func(msg any)

func (f Func) Invoke(msg any) { f(msg) }

// Registry owns handler registrations independently of any single bus or
// clock instance, so components can hold a non-owning reference to it
// (per the design notes: "bus holds handler IDs, not components").
type Registry struct {
	mu       sync.RWMutex
	handlers map[ID]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[ID]Handler)}
}

// Register associates id with h, overwriting any previous registration
// for id. Registries are a pure lookup table; ID collision policy for a
// given use (endpoints, subscriptions) is enforced by the caller, not
// here.
func (r *Registry) Register(id ID, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = h
}

// Deregister removes the registration for id, if any.
func (r *Registry) Deregister(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, id)
}

// Lookup returns the Handler registered for id, if any.
func (r *Registry) Lookup(id ID) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[id]
	return h, ok
}

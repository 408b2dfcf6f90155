package param

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds a plugin's parameters in registration order. Parameters are
// registered while the plugin is built; after that the registry is only
// read, and each Parameter carries its own atomic value.
type Registry struct {
	mu    sync.RWMutex
	list  []*Parameter
	index map[uint32]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[uint32]int)}
}

// Add registers params in order. Nothing is registered if any of them is
// nil or reuses an ID.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[uint32]struct{}, len(params))
	for i, p := range params {
		if p == nil {
			return fmt.Errorf("parameter %d of %d is nil", i+1, len(params))
		}
		_, taken := r.index[p.ID]
		_, repeated := pending[p.ID]
		if taken || repeated {
			return fmt.Errorf("duplicate parameter id %d (%s)", p.ID, p.Name)
		}
		pending[p.ID] = struct{}{}
	}
	for _, p := range params {
		r.index[p.ID] = len(r.list)
		r.list = append(r.list, p)
	}
	return nil
}

// Get returns the parameter with id, or nil.
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.index[id]; ok {
		return r.list[i]
	}
	return nil
}

// ByName returns the parameter whose name or short name matches name,
// ignoring case, or nil.
func (r *Registry) ByName(name string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.list {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.ShortName, name) {
			return p
		}
	}
	return nil
}

// At returns the i-th registered parameter, or nil when i is out of range.
// Hosts enumerate parameters this way.
func (r *Registry) At(i int) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.list) {
		return nil
	}
	return r.list[i]
}

// Len returns the number of parameters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

// All returns a copy of the parameters in registration order.
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Parameter(nil), r.list...)
}

// Each calls fn for every parameter in registration order without copying
// the list. fn must not call Add.
func (r *Registry) Each(fn func(p *Parameter)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.list {
		fn(p)
	}
}

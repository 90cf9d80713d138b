package engine

import "sync"

// Registry manages the available codec engines so hosts can select an
// implementation by name.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

var defaultRegistry = &Registry{
	engines: make(map[string]Engine),
}

// Register registers an engine in the default registry under its name.
func Register(e Engine) {
	defaultRegistry.Register(e)
}

// Get retrieves an engine from the default registry by name.
func Get(name string) (Engine, bool) {
	return defaultRegistry.Get(name)
}

// List returns all engines registered in the default registry.
func List() []Engine {
	return defaultRegistry.List()
}

// Register registers an engine under its name.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.engines[e.Name()] = e
}

// Get retrieves an engine by name.
func (r *Registry) Get(name string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[name]
	return e, ok
}

// List returns all registered engines.
func (r *Registry) List() []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engines := make([]Engine, 0, len(r.engines))
	for _, e := range r.engines {
		engines = append(engines, e)
	}
	return engines
}

package gamemap

import "sync"

// Registry holds loaded map plans keyed by map name.
type Registry struct {
	maps map[string]*MapConfig
	mu   sync.RWMutex
}

// NewRegistry creates a new empty map registry.
func NewRegistry() *Registry {
	return &Registry{
		maps: make(map[string]*MapConfig),
	}
}

// Register adds a map plan to the registry, replacing any existing entry
// with the same name.
func (r *Registry) Register(m *MapConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps[m.Name] = m
}

// Get retrieves a map plan by name. Returns nil if not found.
func (r *Registry) Get(name string) *MapConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maps[name]
}

// List returns all registered map names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.maps))
	for name := range r.maps {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered maps.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.maps)
}

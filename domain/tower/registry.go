package tower

import "sync"

// Registry holds loaded tower definitions keyed by canonical display name.
type Registry struct {
	towers map[string]*Tower
	mu     sync.RWMutex
}

// NewRegistry creates a new empty tower registry.
func NewRegistry() *Registry {
	return &Registry{
		towers: make(map[string]*Tower),
	}
}

// Register adds a tower to the registry, replacing any existing entry with
// the same name.
func (r *Registry) Register(t *Tower) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.towers[t.Name] = t
}

// Get retrieves a tower by display name. The name may carry a numeric
// disambiguator suffix ("Dart Monkey 01"); lookup is by canonical name.
// Returns nil if not found.
func (r *Registry) Get(name string) *Tower {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.towers[name]; ok {
		return t
	}
	return r.towers[NormalizeName(name)]
}

// Hotkey returns the selection hotkey for a tower, or the given default
// when the tower is unknown or has no hotkey configured.
func (r *Registry) Hotkey(name, fallback string) string {
	t := r.Get(name)
	if t == nil || t.Hotkey == "" {
		return fallback
	}
	return t.Hotkey
}

// List returns all registered tower names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.towers))
	for name := range r.towers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered towers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.towers)
}

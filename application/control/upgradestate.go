package control

import (
	"sync"

	"popbot/domain/gamemap"
)

// UpgradeState tracks the committed upgrade tier of every placed
// entity. A tier is committed only after visual verification, advances
// by exactly one per commit and never regresses.
type UpgradeState struct {
	mu       sync.Mutex
	entities map[string]map[string]int
}

// NewUpgradeState creates an empty upgrade state.
func NewUpgradeState() *UpgradeState {
	return &UpgradeState{
		entities: make(map[string]map[string]int),
	}
}

// Tier returns the committed tier for an entity's path. Unknown
// entities and paths are tier 0.
func (s *UpgradeState) Tier(target, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities[target][path]
}

// Tiers returns the committed tier of every path for an entity, with
// all path keys present.
func (s *UpgradeState) Tiers(target string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(gamemap.PathKeys))
	for _, key := range gamemap.PathKeys {
		out[key] = s.entities[target][key]
	}
	return out
}

// Commit advances an entity's path by exactly one tier and returns the
// new tier.
func (s *UpgradeState) Commit(target, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := s.entities[target]
	if paths == nil {
		paths = make(map[string]int)
		s.entities[target] = paths
	}
	paths[path]++
	return paths[path]
}

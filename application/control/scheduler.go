package control

import (
	"sort"
	"sync"

	"popbot/domain/gamemap"
	"popbot/domain/tower"
	"popbot/infrastructure/logging"
)

// Scheduler walks a map's plan in step order, tracking which steps are
// done and gating each on affordability.
type Scheduler struct {
	mu         sync.Mutex
	plan       []gamemap.Action
	completed  map[int]bool
	towers     *tower.Registry
	difficulty string
	mode       string
}

// NewScheduler creates a scheduler over a copy of the plan, sorted by
// step.
func NewScheduler(plan []gamemap.Action, towers *tower.Registry, difficulty, mode string) *Scheduler {
	sorted := make([]gamemap.Action, len(plan))
	copy(sorted, plan)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Step < sorted[j].Step
	})

	return &Scheduler{
		plan:       sorted,
		completed:  make(map[int]bool),
		towers:     towers,
		difficulty: difficulty,
		mode:       mode,
	}
}

// NextAction returns the incomplete action with the lowest step. The
// second return is false when the plan is finished.
func (s *Scheduler) NextAction() (gamemap.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.plan {
		if !s.completed[a.Step] {
			return a, true
		}
	}
	return gamemap.Action{}, false
}

// MarkCompleted records a step as done. Also used to retire steps that
// failed validation and must never be retried.
func (s *Scheduler) MarkCompleted(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[step] = true
}

// StepsRemaining returns the number of incomplete steps.
func (s *Scheduler) StepsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := 0
	for _, a := range s.plan {
		if !s.completed[a.Step] {
			remaining++
		}
	}
	return remaining
}

// StepsCompleted returns the number of completed steps.
func (s *Scheduler) StepsCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}

// StepsPlanned returns the total number of plan steps.
func (s *Scheduler) StepsPlanned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.plan)
}

// Cost resolves the action's price from the tower data. The second
// return is false when the tower or its cost entry is missing; such an
// action can never pass the affordability gate and must be retired by
// the caller. Missing data is logged so a stuck plan is visible.
func (s *Scheduler) Cost(a gamemap.Action) (int, bool) {
	t := s.towers.Get(a.Target)
	if t == nil {
		logging.L().Warn("No tower data for target, failing closed",
			"target", a.Target, "step", a.Step)
		return 0, false
	}

	var cost int
	var ok bool
	switch a.Kind {
	case gamemap.ActionBuy:
		cost, ok = t.PlacementCost(s.difficulty, s.mode)
	case gamemap.ActionUpgrade:
		cost, ok = t.UpgradeCost(a.Path, a.Tier, s.difficulty, s.mode)
	default:
		logging.L().Warn("No cost rule for action kind, failing closed",
			"kind", string(a.Kind), "step", a.Step)
		return 0, false
	}
	if !ok {
		logging.L().Warn("No cost entry for action, failing closed",
			"target", a.Target, "kind", string(a.Kind), "path", a.Path,
			"tier", a.Tier, "difficulty", s.difficulty, "mode", s.mode)
		return 0, false
	}

	return cost, true
}

// CanAfford reports whether the action's cost is covered by the given
// cash. Missing tower or cost data fails closed: an action whose price
// is unknown is never affordable.
func (s *Scheduler) CanAfford(a gamemap.Action, cash int) bool {
	cost, ok := s.Cost(a)
	return ok && cash >= cost
}

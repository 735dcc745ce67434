package control

import (
	"testing"

	"popbot/domain/gamemap"
)

func testPlan() []gamemap.Action {
	pos := &gamemap.Position{X: 400, Y: 300}
	return []gamemap.Action{
		{Step: 3, Kind: gamemap.ActionUpgrade, Target: "Dart Monkey 01", Path: "path_3", Tier: 1},
		{Step: 1, Kind: gamemap.ActionBuy, Target: "Dart Monkey 01", Position: pos},
		{Step: 2, Kind: gamemap.ActionBuy, Target: "Dart Monkey 02", Position: pos},
	}
}

func TestScheduler_NextActionLowestStep(t *testing.T) {
	s := NewScheduler(testPlan(), dartRegistry(), "easy", "standard")

	a, ok := s.NextAction()
	if !ok || a.Step != 1 {
		t.Fatalf("expected step 1 first, got step %d ok=%v", a.Step, ok)
	}

	s.MarkCompleted(1)
	a, ok = s.NextAction()
	if !ok || a.Step != 2 {
		t.Fatalf("expected step 2 after completing 1, got step %d ok=%v", a.Step, ok)
	}

	s.MarkCompleted(2)
	s.MarkCompleted(3)
	if _, ok := s.NextAction(); ok {
		t.Error("expected no action once all steps are complete")
	}
}

func TestScheduler_Progress(t *testing.T) {
	s := NewScheduler(testPlan(), dartRegistry(), "easy", "standard")

	if s.StepsPlanned() != 3 {
		t.Errorf("StepsPlanned = %d, want 3", s.StepsPlanned())
	}
	if s.StepsRemaining() != 3 {
		t.Errorf("StepsRemaining = %d, want 3", s.StepsRemaining())
	}

	s.MarkCompleted(2)
	if s.StepsCompleted() != 1 {
		t.Errorf("StepsCompleted = %d, want 1", s.StepsCompleted())
	}
	if s.StepsRemaining() != 2 {
		t.Errorf("StepsRemaining = %d, want 2", s.StepsRemaining())
	}
}

func TestScheduler_CanAfford(t *testing.T) {
	pos := &gamemap.Position{X: 400, Y: 300}
	buy := gamemap.Action{Step: 1, Kind: gamemap.ActionBuy, Target: "Dart Monkey 01", Position: pos}
	upgrade := gamemap.Action{Step: 2, Kind: gamemap.ActionUpgrade, Target: "Dart Monkey 01", Path: "path_3", Tier: 1}

	tests := []struct {
		name       string
		difficulty string
		mode       string
		action     gamemap.Action
		cash       int
		want       bool
	}{
		{"easy buy covered", "easy", "standard", buy, 200, true},
		{"easy buy exact", "easy", "standard", buy, 170, true},
		{"easy buy short", "easy", "standard", buy, 100, false},
		{"impoppable on hard uses dedicated column", "hard", "impoppable", buy, 240, true},
		{"impoppable on hard short by one", "hard", "impoppable", buy, 239, false},
		{"upgrade covered", "easy", "standard", upgrade, 75, true},
		{"upgrade short", "easy", "standard", upgrade, 74, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(nil, dartRegistry(), tt.difficulty, tt.mode)
			if got := s.CanAfford(tt.action, tt.cash); got != tt.want {
				t.Errorf("CanAfford(%s, %d) = %v, want %v", tt.action.Target, tt.cash, got, tt.want)
			}
		})
	}
}

func TestScheduler_CostResolution(t *testing.T) {
	s := NewScheduler(nil, dartRegistry(), "easy", "standard")
	pos := &gamemap.Position{X: 400, Y: 300}

	buy := gamemap.Action{Step: 1, Kind: gamemap.ActionBuy, Target: "Dart Monkey 01", Position: pos}
	if cost, ok := s.Cost(buy); !ok || cost != 170 {
		t.Errorf("Cost(buy) = %d,%v, want 170,true", cost, ok)
	}

	upgrade := gamemap.Action{Step: 2, Kind: gamemap.ActionUpgrade, Target: "Dart Monkey 01", Path: "path_3", Tier: 2}
	if cost, ok := s.Cost(upgrade); !ok || cost != 170 {
		t.Errorf("Cost(upgrade tier 2) = %d,%v, want 170,true", cost, ok)
	}

	unknown := gamemap.Action{Step: 3, Kind: gamemap.ActionBuy, Target: "Glue Gunner", Position: pos}
	if _, ok := s.Cost(unknown); ok {
		t.Error("unknown tower should not resolve a cost")
	}
}

func TestScheduler_CanAffordFailsClosed(t *testing.T) {
	s := NewScheduler(nil, dartRegistry(), "easy", "standard")
	pos := &gamemap.Position{X: 400, Y: 300}

	unknown := gamemap.Action{Step: 1, Kind: gamemap.ActionBuy, Target: "Glue Gunner", Position: pos}
	if s.CanAfford(unknown, 1_000_000) {
		t.Error("unknown tower should never be affordable")
	}

	missingPath := gamemap.Action{Step: 2, Kind: gamemap.ActionUpgrade, Target: "Dart Monkey 01", Path: "path_1", Tier: 1}
	if s.CanAfford(missingPath, 1_000_000) {
		t.Error("upgrade without cost data should never be affordable")
	}

	badTier := gamemap.Action{Step: 3, Kind: gamemap.ActionUpgrade, Target: "Dart Monkey 01", Path: "path_3", Tier: 5}
	if s.CanAfford(badTier, 1_000_000) {
		t.Error("upgrade beyond the cost table should never be affordable")
	}
}

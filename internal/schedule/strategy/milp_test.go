package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
	"github.com/pharmasched/fillsched/internal/schedule/solver"
)

func TestMILP_BuildProblem_SortsLotsByID(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{
		{ID: "C", Type: "X", Vials: 1000},
		{ID: "A", Type: "X", Vials: 2000},
		{ID: "B", Type: "Y", Vials: 3000},
	}}
	cfg := schedule.DefaultConfig()

	p := buildProblem(lots, cfg)
	want := []string{"A", "B", "C"}
	for i, id := range want {
		if p.Lots[i] != id {
			t.Errorf("Lots[%d] = %s, want %s", i, p.Lots[i], id)
		}
	}
	if p.ChangeoverSame != schedule.ChangeoverCost("X", "X", cfg) {
		t.Errorf("ChangeoverSame = %d, want %d", p.ChangeoverSame, schedule.ChangeoverCost("X", "X", cfg))
	}
}

func TestMILP_Run_UsesSolverAndProducesValidSchedule(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{
		{ID: "A", Type: "X", Vials: 300000},
		{ID: "B", Type: "Y", Vials: 450000},
		{ID: "C", Type: "X", Vials: 120000},
	}}
	cfg := schedule.DefaultConfig()
	cfg.NumLines = 2

	m := &milp{solve: &solver.BranchAndBound{}}
	result := m.Run(context.Background(), lots, cfg, time.Now().Add(5*time.Second))
	if result.Err != nil {
		t.Fatalf("Run failed: %v", result.Err)
	}
	if result.Tag != schedule.TagMILP {
		t.Errorf("Tag = %s, want milp", result.Tag)
	}
	violations := schedule.Validate(lots, result.Schedule, cfg)
	if len(violations) != 0 {
		t.Errorf("produced violations: %+v", violations)
	}
	if result.Metrics.LotsPlaced != len(lots.Lots) {
		t.Errorf("placed %d lots, want %d", result.Metrics.LotsPlaced, len(lots.Lots))
	}
}

type stubSolver struct {
	solution *solver.Solution
	err      error
}

func (s *stubSolver) Solve(ctx context.Context, p *solver.Problem, timeLimit time.Duration) (*solver.Solution, error) {
	return s.solution, s.err
}

func TestMILP_Run_TimeoutWithoutIncumbentIsEngineError(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{{ID: "A", Type: "X", Vials: 1000}}}
	cfg := schedule.DefaultConfig()

	m := &milp{solve: &stubSolver{solution: &solver.Solution{Status: solver.StatusTimeout}}}
	result := m.Run(context.Background(), lots, cfg, time.Time{})
	if result.Err == nil {
		t.Fatal("expected an error when the solver times out with no incumbent")
	}
}

func TestMILP_Run_InfeasibleIsEngineError(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{{ID: "A", Type: "X", Vials: 1000}}}
	cfg := schedule.DefaultConfig()

	m := &milp{solve: &stubSolver{solution: &solver.Solution{Status: solver.StatusInfeasible}}}
	result := m.Run(context.Background(), lots, cfg, time.Time{})
	if result.Err == nil {
		t.Fatal("expected an error when the solver reports infeasible")
	}
}

package solver

import (
	"context"
	"testing"
	"time"
)

func smallProblem() *Problem {
	lots := []string{"A", "B", "C"}
	proc := map[string]int64{"A": 10000, "B": 20000, "C": 15000}
	types := map[string]string{"A": "X", "B": "X", "C": "Y"}
	p := &Problem{
		Lots:           lots,
		Lines:          []int{1, 2},
		ProcessingTime: proc,
		Types:          types,
		ChangeoverSame: 500,
		ChangeoverDiff: 1000,
		CleanDuration:  86400,
		WindowCeiling:  432000,
	}
	p.A = NewConstraintMatrix(len(lots), len(p.Lines))
	return p
}

func TestBranchAndBound_SolvesSmallProblem(t *testing.T) {
	p := smallProblem()
	b := &BranchAndBound{}

	sol, err := b.Solve(context.Background(), p, 5*time.Second)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want Optimal", sol.Status)
	}
	if sol.Assignment == nil {
		t.Fatal("expected a non-nil assignment")
	}
	for _, id := range p.Lots {
		if _, ok := sol.Assignment.LineOf[id]; !ok {
			t.Errorf("lot %s missing from assignment", id)
		}
	}
}

func TestBranchAndBound_NoLinesIsInfeasible(t *testing.T) {
	p := smallProblem()
	p.Lines = nil
	b := &BranchAndBound{}

	sol, err := b.Solve(context.Background(), p, time.Second)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Errorf("status = %v, want Infeasible", sol.Status)
	}
}

func TestBranchAndBound_RespectsContextCancellation(t *testing.T) {
	p := smallProblem()
	// widen the problem so the search can't exhaust immediately
	for i := 0; i < 8; i++ {
		id := string(rune('D' + i))
		p.Lots = append(p.Lots, id)
		p.ProcessingTime[id] = int64(5000 + i*777)
		p.Types[id] = "X"
	}
	p.A = NewConstraintMatrix(len(p.Lots), len(p.Lines))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &BranchAndBound{}

	sol, err := b.Solve(ctx, p, time.Second)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Assignment == nil {
		t.Fatal("expected a feasible incumbent even when cancelled immediately")
	}
}

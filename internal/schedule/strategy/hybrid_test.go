package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
)

func TestHybrid_PicksBestCandidateKey(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{
		{ID: "A", Type: "VialE", Vials: 300000},
		{ID: "B", Type: "VialH", Vials: 450000},
		{ID: "C", Type: "VialE", Vials: 120000},
		{ID: "D", Type: "VialX", Vials: 900000},
	}}
	cfg := schedule.DefaultConfig()
	cfg.NumLines = 2

	h := newHybrid()
	result := h.Run(context.Background(), lots, cfg, time.Time{})
	if result.Err != nil {
		t.Fatalf("Run failed: %v", result.Err)
	}
	if result.Tag != schedule.TagHybrid {
		t.Errorf("Tag = %s, want hybrid", result.Tag)
	}
	if violations := schedule.Validate(lots, result.Schedule, cfg); len(violations) != 0 {
		t.Errorf("expected zero violations, got %+v", violations)
	}

	candidates := []schedule.StrategyResult{
		newSmartPack().Run(context.Background(), lots, cfg, time.Time{}),
		newGreedy(schedule.TagLPT, orderLPT).Run(context.Background(), lots, cfg, time.Time{}),
		newGreedy(schedule.TagSPT, orderSPT).Run(context.Background(), lots, cfg, time.Time{}),
	}
	var bestMakespan int64 = -1
	for _, c := range candidates {
		if bestMakespan == -1 || c.Schedule.Makespan < bestMakespan {
			bestMakespan = c.Schedule.Makespan
		}
	}
	if result.Schedule.Makespan > bestMakespan {
		t.Errorf("hybrid makespan %d worse than best candidate makespan %d", result.Schedule.Makespan, bestMakespan)
	}
}

func TestPickBest_SkipsFailedCandidates(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{{ID: "A", Type: "t", Vials: 1000}}}
	cfg := schedule.DefaultConfig()

	good := newGreedy(schedule.TagLPT, orderLPT).Run(context.Background(), lots, cfg, time.Time{})
	bad := schedule.StrategyResult{Tag: schedule.TagSPT, Err: &schedule.EngineError{Kind: schedule.EngineErrSolverUnavailable}}

	best, ok := pickBest([]schedule.StrategyResult{bad, good}, lots, cfg)
	if !ok {
		t.Fatal("expected pickBest to find the non-failed candidate")
	}
	if best.Tag != schedule.TagLPT {
		t.Errorf("best.Tag = %s, want lpt", best.Tag)
	}
}

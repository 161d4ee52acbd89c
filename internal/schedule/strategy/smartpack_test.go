package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
)

func TestSmartPack_GroupsByTypeBeforeDispatch(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{
		{ID: "A", Type: "X", Vials: 100000},
		{ID: "B", Type: "Y", Vials: 900000},
		{ID: "C", Type: "X", Vials: 200000},
	}}
	cfg := schedule.DefaultConfig()

	ordered := groupedOrder(lots.Lots, cfg)
	// Y's single lot (900000) outweighs X's total (300000), so Y goes first.
	if ordered[0].Type != "Y" {
		t.Fatalf("first group = %s, want Y (largest total processing time)", ordered[0].Type)
	}
	if ordered[1].Type != "X" || ordered[2].Type != "X" {
		t.Fatalf("expected both X lots after Y, got %+v", ordered[1:])
	}
	// within the X group, larger lot (C) should be dispatched before A.
	if ordered[1].ID != "C" {
		t.Errorf("within-group order = %s first, want C (larger vials)", ordered[1].ID)
	}
}

func TestSmartPack_Run_NoViolations(t *testing.T) {
	lots := schedule.LotSet{Lots: []schedule.Lot{
		{ID: "A", Type: "X", Vials: 600000},
		{ID: "B", Type: "X", Vials: 600000},
		{ID: "C", Type: "Y", Vials: 1100000},
	}}
	cfg := schedule.DefaultConfig()

	s := newSmartPack()
	result := s.Run(context.Background(), lots, cfg, time.Time{})
	if result.Err != nil {
		t.Fatalf("Run failed: %v", result.Err)
	}
	if violations := schedule.Validate(lots, result.Schedule, cfg); len(violations) != 0 {
		t.Errorf("expected zero violations, got %+v", violations)
	}
}

package schedule

import "fmt"

// ViolationKind names one of the independent checks the Validator performs.
type ViolationKind string

const (
	VKMissingLot       ViolationKind = "missing_lot"
	VKDuplicateLot     ViolationKind = "duplicate_lot_fill"
	VKOrderOrGap       ViolationKind = "order_or_gap"
	VKMissingLeadClean ViolationKind = "line_missing_leading_clean"
	VKBadCleanDuration ViolationKind = "bad_clean_duration"
	VKWindowCeiling    ViolationKind = "window_ceiling_exceeded"
	VKBadChangeover    ViolationKind = "bad_changeover_duration"
)

// Violation is one failure a schedule has against the invariants in
// spec §8. A schedule with violations is still returned to the caller,
// flagged, rather than discarded.
type Violation struct {
	Kind      ViolationKind
	LineID    int
	AtSeconds int64
	Detail    string
}

// Validate independently re-checks sch against lots and cfg. It does not
// rely on any bookkeeping the strategy that produced sch may have kept --
// it re-derives window occupancy and changeover correctness purely from
// the event sequence, the way a caller outside the engine would.
func Validate(lots LotSet, sch *Schedule, cfg Config) []Violation {
	var violations []Violation

	expected := make(map[string]bool, len(lots.Lots))
	for _, l := range lots.Lots {
		expected[l.ID] = true
	}
	unplaced := make(map[string]bool, len(sch.Unplaced))
	for _, u := range sch.Unplaced {
		unplaced[u.LotID] = true
	}
	seenFill := make(map[string]bool)

	cleanDuration := CleanDurationSeconds(cfg)
	ceiling := WindowCeilingSeconds(cfg)

	for _, id := range sch.lineOrder {
		events := sch.Lines[id].Events
		if len(events) == 0 {
			continue
		}
		if events[0].Kind != EventClean {
			violations = append(violations, Violation{
				Kind: VKMissingLeadClean, LineID: id, AtSeconds: events[0].Start,
				Detail: "line does not begin with a clean event",
			})
		}

		var prevEnd int64 = -1
		var windowUsed int64
		windowOpen := false

		for _, e := range events {
			if e.Start >= e.End {
				violations = append(violations, Violation{
					Kind: VKOrderOrGap, LineID: id, AtSeconds: e.Start,
					Detail: "event start is not strictly before end",
				})
			}
			if prevEnd >= 0 && e.Start != prevEnd {
				violations = append(violations, Violation{
					Kind: VKOrderOrGap, LineID: id, AtSeconds: e.Start,
					Detail: fmt.Sprintf("gap or overlap: previous event ended %ds, this one starts %ds", prevEnd, e.Start),
				})
			}
			prevEnd = e.End

			switch e.Kind {
			case EventClean:
				if windowOpen && windowUsed > ceiling {
					violations = append(violations, Violation{
						Kind: VKWindowCeiling, LineID: id, AtSeconds: e.Start,
						Detail: fmt.Sprintf("window used %ds exceeds ceiling %ds", windowUsed, ceiling),
					})
				}
				if e.End-e.Start != cleanDuration {
					violations = append(violations, Violation{
						Kind: VKBadCleanDuration, LineID: id, AtSeconds: e.Start,
						Detail: fmt.Sprintf("clean duration %ds, want %ds", e.End-e.Start, cleanDuration),
					})
				}
				windowOpen = true
				windowUsed = 0
			case EventChangeover:
				want := ChangeoverCost(e.FromType, e.ToType, cfg)
				if e.End-e.Start != want {
					violations = append(violations, Violation{
						Kind: VKBadChangeover, LineID: id, AtSeconds: e.Start,
						Detail: fmt.Sprintf("changeover %s->%s duration %ds, want %ds", e.FromType, e.ToType, e.End-e.Start, want),
					})
				}
				windowUsed += e.End - e.Start
			case EventFill:
				if e.LotID == "" {
					violations = append(violations, Violation{
						Kind: VKMissingLot, LineID: id, AtSeconds: e.Start,
						Detail: "fill event carries no lot id",
					})
				} else {
					if seenFill[e.LotID] {
						violations = append(violations, Violation{
							Kind: VKDuplicateLot, LineID: id, AtSeconds: e.Start,
							Detail: fmt.Sprintf("lot %s filled more than once", e.LotID),
						})
					}
					seenFill[e.LotID] = true
				}
				windowUsed += e.End - e.Start
			}
		}
		if windowOpen && windowUsed > ceiling {
			violations = append(violations, Violation{
				Kind: VKWindowCeiling, LineID: id, AtSeconds: prevEnd,
				Detail: fmt.Sprintf("final window used %ds exceeds ceiling %ds", windowUsed, ceiling),
			})
		}
	}

	for id := range expected {
		if !seenFill[id] && !unplaced[id] {
			violations = append(violations, Violation{
				Kind: VKMissingLot, Detail: fmt.Sprintf("lot %s missing from schedule", id),
			})
		}
	}
	for id := range seenFill {
		if !expected[id] {
			violations = append(violations, Violation{
				Kind: VKMissingLot, Detail: fmt.Sprintf("lot %s filled but absent from the input lot set", id),
			})
		}
	}

	return violations
}

package schedule

import "math"

// ProcessingTime is the deterministic fill duration for a lot: the vial
// count divided by the configured fill rate, rounded up to the nearest
// second.
func ProcessingTime(lot Lot, cfg Config) int64 {
	vialsPerSecond := cfg.FillRateVialsPerMin / 60.0
	return int64(math.Ceil(float64(lot.Vials) / vialsPerSecond))
}

// ChangeoverCost is the unproductive time between two consecutive fills on
// the same line. Zero if prevType is absent (the first lot in a fresh
// window never incurs a changeover).
func ChangeoverCost(prevType, nextType string, cfg Config) int64 {
	if prevType == "" {
		return 0
	}
	if prevType == nextType {
		return changeoverSameSeconds(cfg)
	}
	return changeoverDiffSeconds(cfg)
}

// windowState tracks the currently open clean window on a line as an
// object, not a recomputation over the event list: open/closed, the
// instant it opened, the type of the last lot filled in it, and the
// cumulative changeover+fill time consumed so far.
type windowState struct {
	open     bool
	start    int64
	lastType string
	used     int64
}

// FitsInWindow reports whether candidate can be appended to the window
// described by ws without exceeding the clean window ceiling. The first
// lot in a window incurs no changeover.
func FitsInWindow(ws windowState, candidate Lot, cfg Config) bool {
	cost := ChangeoverCost(ws.lastType, candidate.Type, cfg)
	proc := ProcessingTime(candidate, cfg)
	return ws.used+cost+proc <= WindowCeilingSeconds(cfg)
}

// DecisionKind enumerates the outcomes Admit can return.
type DecisionKind int

const (
	DecisionAppend DecisionKind = iota
	DecisionCloseAndReopen
	DecisionReject
)

// InsertionDecision is the outcome of deciding how to place a candidate
// lot given the currently open window on a line.
type InsertionDecision struct {
	Kind               DecisionKind
	ChangeoverDuration int64  // AppendInWindow only
	CleanDuration      int64  // CloseAndReopen only
	Reason             string // Reject only
}

// Admit decides how candidate should be inserted given the window state
// ws. Reject is raised only for a lot whose own processing time exceeds
// the window ceiling -- the validation pre-pass is expected to have
// already rejected such a lot before any strategy runs, so Admit returning
// Reject at runtime signals an invariant breach upstream.
func Admit(ws windowState, candidate Lot, cfg Config) InsertionDecision {
	proc := ProcessingTime(candidate, cfg)
	if proc > WindowCeilingSeconds(cfg) {
		return InsertionDecision{Kind: DecisionReject, Reason: "lot processing time exceeds clean window ceiling"}
	}
	if ws.open && FitsInWindow(ws, candidate, cfg) {
		return InsertionDecision{
			Kind:               DecisionAppend,
			ChangeoverDuration: ChangeoverCost(ws.lastType, candidate.Type, cfg),
		}
	}
	return InsertionDecision{Kind: DecisionCloseAndReopen, CleanDuration: CleanDurationSeconds(cfg)}
}

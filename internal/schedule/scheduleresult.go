package schedule

import (
	"fmt"
	"math"
	"time"
)

// StrategyTag identifies one of the six interchangeable scheduling
// strategies. A closed set by design: a new strategy is a new tag plus a
// branch in the strategy registry, not an open inheritance hierarchy.
type StrategyTag string

const (
	TagLPT    StrategyTag = "lpt"
	TagSPT    StrategyTag = "spt"
	TagCFS    StrategyTag = "cfs"
	TagSmart  StrategyTag = "smart"
	TagHybrid StrategyTag = "hybrid"
	TagMILP   StrategyTag = "milp"
)

// Reason explains why a strategy left a lot unscheduled.
type Reason int

const (
	ReasonOversized Reason = iota
	ReasonTimeout
	ReasonCapacity
)

func (r Reason) String() string {
	switch r {
	case ReasonOversized:
		return "oversized"
	case ReasonTimeout:
		return "timeout"
	case ReasonCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// UnplacedLot records a lot a strategy could not place, and why.
type UnplacedLot struct {
	LotID  string
	Reason Reason
}

// lineState is one line's append-only event sequence plus the window
// bookkeeping needed to place the next lot without rescanning the events.
type lineState struct {
	ID         int
	Events     []Event
	window     windowState
	currentEnd int64
}

// Schedule is the time-annotated output of a single strategy run: one
// event sequence per line, the set of lots placed, and the makespan. Built
// append-only per line while a strategy runs, then frozen.
type Schedule struct {
	StrategyTag StrategyTag
	Lines       map[int]*lineState
	lineOrder   []int
	LotsPlaced  map[string]bool
	Unplaced    []UnplacedLot
	Makespan    int64
	// CreatedAt mirrors config.StartTime, not wall-clock time: the spec's
	// determinism requirement (identical inputs -> byte-identical output)
	// would otherwise be broken by a real timestamp.
	CreatedAt time.Time

	nextSeq uint64
	frozen  bool
}

// NewSchedule allocates an empty Schedule with cfg.NumLines lines, none of
// which have been cleaned yet.
func NewSchedule(tag StrategyTag, cfg Config) *Schedule {
	s := &Schedule{
		StrategyTag: tag,
		Lines:       make(map[int]*lineState, cfg.NumLines),
		LotsPlaced:  make(map[string]bool),
		CreatedAt:   cfg.StartTime,
	}
	for i := 1; i <= cfg.NumLines; i++ {
		s.Lines[i] = &lineState{ID: i}
		s.lineOrder = append(s.lineOrder, i)
	}
	return s
}

func (s *Schedule) nextSeqNum() uint64 {
	s.nextSeq++
	return s.nextSeq
}

// LineIDs returns every line id in ascending order.
func (s *Schedule) LineIDs() []int {
	return append([]int(nil), s.lineOrder...)
}

// CurrentEnd is the instant, in seconds since config.StartTime, at which
// lineID's last event ends. Zero for a line with no events yet.
func (s *Schedule) CurrentEnd(lineID int) int64 {
	if l, ok := s.Lines[lineID]; ok {
		return l.currentEnd
	}
	return 0
}

// WindowOpen reports whether lineID currently has an open clean window.
func (s *Schedule) WindowOpen(lineID int) bool {
	l, ok := s.Lines[lineID]
	return ok && l.window.open
}

// PlacementCost returns the additional duration placing lot on lineID
// right now would add to that line's current end time (changeover+fill if
// the open window accepts it, otherwise clean+fill), without
// mutating the schedule. Used by greedy dispatchers to pick a target line.
func (s *Schedule) PlacementCost(lineID int, lot Lot, cfg Config) int64 {
	line, ok := s.Lines[lineID]
	if !ok {
		return math.MaxInt64
	}
	proc := ProcessingTime(lot, cfg)
	decision := Admit(line.window, lot, cfg)
	switch decision.Kind {
	case DecisionAppend:
		return decision.ChangeoverDuration + proc
	case DecisionCloseAndReopen:
		return decision.CleanDuration + proc
	default:
		return math.MaxInt64
	}
}

// ResidualInOpenWindow returns the clean-window capacity that would remain
// after inserting lot into lineID's currently open window, considering
// only the in-window append case (never a close-and-reopen). ok is false
// if lineID has no open window or the window cannot accept lot without
// closing.
func (s *Schedule) ResidualInOpenWindow(lineID int, lot Lot, cfg Config) (residual int64, ok bool) {
	line, found := s.Lines[lineID]
	if !found || !line.window.open || !FitsInWindow(line.window, lot, cfg) {
		return 0, false
	}
	changeover := ChangeoverCost(line.window.lastType, lot.Type, cfg)
	proc := ProcessingTime(lot, cfg)
	used := line.window.used + changeover + proc
	return WindowCeilingSeconds(cfg) - used, true
}

// PlaceLot appends whatever events are required (a Clean, a Changeover, a
// Fill) to admit lot onto lineID, applying Admit's decision. Returns an
// error if the schedule is frozen, if lineID is unknown, or if lot is
// itself oversized -- an invariant breach the validation pre-pass should
// already have prevented.
func (s *Schedule) PlaceLot(lineID int, lot Lot, cfg Config) error {
	if s.frozen {
		return fmt.Errorf("cannot place lot %s: schedule is frozen", lot.ID)
	}
	line, ok := s.Lines[lineID]
	if !ok {
		return fmt.Errorf("unknown line %d", lineID)
	}
	decision := Admit(line.window, lot, cfg)
	if decision.Kind == DecisionReject {
		return fmt.Errorf("lot %s: %s", lot.ID, decision.Reason)
	}
	if decision.Kind == DecisionCloseAndReopen {
		cleanStart := line.currentEnd
		cleanEnd := cleanStart + decision.CleanDuration
		s.appendEvent(line, EventClean, cleanStart, cleanEnd, "", "", "")
		line.currentEnd = cleanEnd
		line.window = windowState{open: true, start: cleanEnd}
	}
	changeover := ChangeoverCost(line.window.lastType, lot.Type, cfg)
	if changeover > 0 {
		coStart := line.currentEnd
		coEnd := coStart + changeover
		s.appendEvent(line, EventChangeover, coStart, coEnd, "", line.window.lastType, lot.Type)
		line.currentEnd = coEnd
		line.window.used += changeover
	}
	proc := ProcessingTime(lot, cfg)
	fillStart := line.currentEnd
	fillEnd := fillStart + proc
	s.appendEvent(line, EventFill, fillStart, fillEnd, lot.ID, "", "")
	line.currentEnd = fillEnd
	line.window.used += proc
	line.window.lastType = lot.Type

	s.LotsPlaced[lot.ID] = true
	return nil
}

func (s *Schedule) appendEvent(line *lineState, kind EventKind, start, end int64, lotID, fromType, toType string) {
	line.Events = append(line.Events, Event{
		Kind:     kind,
		LineID:   line.ID,
		Start:    start,
		End:      end,
		LotID:    lotID,
		FromType: fromType,
		ToType:   toType,
		Seq:      s.nextSeqNum(),
	})
}

// MarkUnplaced records that lot could not be scheduled, with a reason.
func (s *Schedule) MarkUnplaced(lotID string, reason Reason) {
	s.Unplaced = append(s.Unplaced, UnplacedLot{LotID: lotID, Reason: reason})
}

// Events returns lineID's event sequence in placement order.
func (s *Schedule) Events(lineID int) []Event {
	if l, ok := s.Lines[lineID]; ok {
		return l.Events
	}
	return nil
}

// Freeze computes the makespan and marks the schedule read-only. Strategies
// must call Freeze before returning their StrategyResult.
func (s *Schedule) Freeze(cfg Config) {
	var makespan int64
	for _, id := range s.lineOrder {
		if end := s.Lines[id].currentEnd; end > makespan {
			makespan = end
		}
	}
	s.Makespan = makespan
	s.frozen = true
}

// StrategyResult is the frozen outcome of one strategy run: either Schedule
// is present and valid, or Err is present -- never both.
type StrategyResult struct {
	Tag        StrategyTag
	Schedule   *Schedule
	Metrics    Metrics
	Wallclock  time.Duration
	Err        error
	Suboptimal bool // true only for a MILP result returned on solver timeout with an incumbent
}

// Snapshot bundles a Schedule with the Config and LotSet that produced it,
// so a caller can persist and later re-validate it without rerunning a
// strategy.
type Snapshot struct {
	Lots     LotSet
	Config   Config
	Schedule *Schedule
}

// NewSnapshot builds a Snapshot from a completed schedule run.
func NewSnapshot(lots LotSet, cfg Config, sch *Schedule) Snapshot {
	return Snapshot{Lots: lots, Config: cfg, Schedule: sch}
}

// Wire renders the snapshot's schedule in the stable external wire format.
func (s Snapshot) Wire() ScheduleWire {
	metrics := ComputeMetrics(s.Schedule, s.Config)
	violations := Validate(s.Lots, s.Schedule, s.Config)
	return ToWire(s.Schedule, metrics, violations)
}

package strategy

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
	"github.com/pharmasched/fillsched/internal/schedule/solver"
)

// milp runs the exact MILP formulation via a pluggable solver.Solver. The
// core owns building the formulation and translating the solver's
// assignment back into an Event sequence; it does not own the solver
// itself.
type milp struct {
	solve solver.Solver
}

func newMILP() *milp {
	return &milp{solve: &solver.BranchAndBound{}}
}

func (m *milp) Tag() schedule.StrategyTag { return schedule.TagMILP }

func (m *milp) Run(ctx context.Context, lots schedule.LotSet, cfg schedule.Config, deadline time.Time) schedule.StrategyResult {
	start := time.Now()

	problem := buildProblem(lots, cfg)

	var timeLimit time.Duration
	if !deadline.IsZero() {
		timeLimit = time.Until(deadline)
	} else {
		timeLimit = time.Duration(cfg.StrategyTimeoutSeconds) * time.Second
	}

	solution, err := m.solve.Solve(ctx, problem, timeLimit)
	if err != nil {
		return schedule.StrategyResult{
			Tag:       schedule.TagMILP,
			Err:       &schedule.EngineError{Kind: schedule.EngineErrSolverUnavailable, Detail: err.Error()},
			Wallclock: time.Since(start),
		}
	}

	switch solution.Status {
	case solver.StatusInfeasible:
		// Input was validated up front; an infeasible result here is an
		// invariant breach the engine should never produce.
		return schedule.StrategyResult{
			Tag:       schedule.TagMILP,
			Err:       &schedule.EngineError{Kind: schedule.EngineErrSolverInfeasible, Detail: "solver reported infeasible on validated input"},
			Wallclock: time.Since(start),
		}
	case solver.StatusTimeout:
		if solution.Assignment == nil {
			return schedule.StrategyResult{
				Tag:       schedule.TagMILP,
				Err:       &schedule.EngineError{Kind: schedule.EngineErrTimeoutNoIncumbent, Detail: "solver timed out with no feasible incumbent"},
				Wallclock: time.Since(start),
			}
		}
	}

	sch, err := translateAssignment(solution.Assignment, lots, cfg)
	if err != nil {
		return schedule.StrategyResult{Tag: schedule.TagMILP, Err: err, Wallclock: time.Since(start)}
	}
	sch.Freeze(cfg)
	metrics := schedule.ComputeMetrics(sch, cfg)

	return schedule.StrategyResult{
		Tag:        schedule.TagMILP,
		Schedule:   sch,
		Metrics:    metrics,
		Wallclock:  time.Since(start),
		Suboptimal: solution.Status == solver.StatusTimeout,
	}
}

// buildProblem translates lots and cfg into the solver's structured
// description: plain data, no engine logic.
func buildProblem(lots schedule.LotSet, cfg schedule.Config) *solver.Problem {
	ordered := append([]schedule.Lot(nil), lots.Lots...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	ids := make([]string, len(ordered))
	procTime := make(map[string]int64, len(ordered))
	types := make(map[string]string, len(ordered))
	for i, l := range ordered {
		ids[i] = l.ID
		procTime[l.ID] = schedule.ProcessingTime(l, cfg)
		types[l.ID] = l.Type
	}

	lines := make([]int, cfg.NumLines)
	for i := range lines {
		lines[i] = i + 1
	}

	p := &solver.Problem{
		Lots:           ids,
		Lines:          lines,
		ProcessingTime: procTime,
		Types:          types,
		ChangeoverSame: secondsFromHoursLocal(cfg.ChangeoverSameTypeHours),
		ChangeoverDiff: secondsFromHoursLocal(cfg.ChangeoverDiffTypeHours),
		CleanDuration:  schedule.CleanDurationSeconds(cfg),
		WindowCeiling:  schedule.WindowCeilingSeconds(cfg),
	}
	p.A = solver.NewConstraintMatrix(len(ids), len(lines))
	return p
}

// secondsFromHoursLocal mirrors schedule's private hour-to-second
// conversion; kept local since solver.Problem must not import the domain
// package.
func secondsFromHoursLocal(hours float64) int64 {
	return int64(math.Round(hours * 3600))
}

// translateAssignment rebuilds a Schedule by replaying each line's lots, in
// slot order, through the same Schedule.PlaceLot path every other strategy
// uses -- the engine owns turning a solver's assignment into real events.
func translateAssignment(a *solver.Assignment, lots schedule.LotSet, cfg schedule.Config) (*schedule.Schedule, error) {
	byID := make(map[string]schedule.Lot, len(lots.Lots))
	for _, l := range lots.Lots {
		byID[l.ID] = l
	}

	perLine := make(map[int][]schedule.Lot)
	for lotID, lineID := range a.LineOf {
		perLine[lineID] = append(perLine[lineID], byID[lotID])
	}
	for lineID := range perLine {
		lots := perLine[lineID]
		sort.Slice(lots, func(i, j int) bool {
			return a.SlotOf[lots[i].ID] < a.SlotOf[lots[j].ID]
		})
		perLine[lineID] = lots
	}

	sch := schedule.NewSchedule(schedule.TagMILP, cfg)
	for _, lineID := range sch.LineIDs() {
		for _, lot := range perLine[lineID] {
			if err := sch.PlaceLot(lineID, lot, cfg); err != nil {
				return nil, err
			}
		}
	}
	return sch, nil
}

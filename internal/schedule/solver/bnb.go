package solver

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// maxSearchNodes bounds the branch-and-bound exploration so a pathological
// input (many lots, many lines) cannot run unbounded -- past this many
// nodes the search reports its best incumbent with StatusTimeout rather
// than StatusOptimal, same as hitting the wallclock deadline.
const maxSearchNodes = 200000

// BranchAndBound is the reference Solver: an exact branch-and-bound search
// over which line each lot is assigned to, in Problem.Lots order, pruned
// by the running incumbent's makespan. It needs no external process, which
// is the point -- the engine is testable without a real solver, per the
// spec's design note that the solver is a pluggable capability.
type BranchAndBound struct{}

// simWindow mirrors the domain package's window bookkeeping using only
// Problem's own primitive fields, so this package stays independent of the
// scheduling domain types (a real external solver would need its own
// equivalent translation).
type simWindow struct {
	open     bool
	lastType string
	used     int64
}

func changeoverCost(prevType, nextType string, p *Problem) int64 {
	if prevType == "" {
		return 0
	}
	if prevType == nextType {
		return p.ChangeoverSame
	}
	return p.ChangeoverDiff
}

// simulatePlacement returns the new line end time and window state that
// would result from placing lotID on a line currently at lineEnd with
// window w, or ok=false if the lot cannot fit in any window at all.
func simulatePlacement(lineEnd int64, w simWindow, lotID string, p *Problem) (newEnd int64, newWindow simWindow, ok bool) {
	proc := p.ProcessingTime[lotID]
	if proc > p.WindowCeiling {
		return 0, simWindow{}, false
	}
	typ := p.Types[lotID]
	if w.open {
		changeover := changeoverCost(w.lastType, typ, p)
		if w.used+changeover+proc <= p.WindowCeiling {
			end := lineEnd + changeover + proc
			return end, simWindow{open: true, lastType: typ, used: w.used + changeover + proc}, true
		}
	}
	end := lineEnd + p.CleanDuration + proc
	return end, simWindow{open: true, lastType: typ, used: proc}, true
}

// lowerBoundMakespan is a classic scheduling lower bound for the LP
// relaxation: total processing time spread evenly across every line. Used
// to seed an early-exit when a fast initial incumbent already matches it.
func lowerBoundMakespan(p *Problem) int64 {
	if len(p.Lines) == 0 {
		return 0
	}
	times := make([]float64, 0, len(p.Lots))
	for _, id := range p.Lots {
		times = append(times, float64(p.ProcessingTime[id]))
	}
	total := floats.Sum(times)
	return int64(math.Ceil(total / float64(len(p.Lines))))
}

// greedyIncumbent assigns each lot, in Problem.Lots order, to whichever
// line would finish it earliest (lowest line on ties). Used to seed the branch-and-bound search
// with a starting incumbent so early branches can be pruned immediately.
func greedyIncumbent(p *Problem) (assign []int, makespan int64, ok bool) {
	n, m := len(p.Lots), len(p.Lines)
	lineEnd := make([]int64, m)
	windows := make([]simWindow, m)
	assign = make([]int, n)

	for i, lotID := range p.Lots {
		best := -1
		var bestEnd int64
		var bestWindow simWindow
		for line := 0; line < m; line++ {
			end, w, feasible := simulatePlacement(lineEnd[line], windows[line], lotID, p)
			if !feasible {
				continue
			}
			if best == -1 || end < bestEnd {
				best, bestEnd, bestWindow = line, end, w
			}
		}
		if best == -1 {
			return nil, 0, false
		}
		lineEnd[best] = bestEnd
		windows[best] = bestWindow
		assign[i] = best
	}

	var ms int64
	for _, e := range lineEnd {
		if e > ms {
			ms = e
		}
	}
	return assign, ms, true
}

func assignmentFrom(p *Problem, assign []int) *Assignment {
	lineOf := make(map[string]int, len(assign))
	slotOf := make(map[string]int, len(assign))
	slotCounters := make(map[int]int, len(p.Lines))
	for i, line := range assign {
		lotID := p.Lots[i]
		lineID := p.Lines[line]
		lineOf[lotID] = lineID
		slotOf[lotID] = slotCounters[line]
		slotCounters[line]++
	}
	return &Assignment{LineOf: lineOf, SlotOf: slotOf}
}

// Solve runs the branch-and-bound search until it either exhausts the tree
// (Optimal), exceeds the node budget or timeLimit with a feasible
// incumbent (Timeout, caller treats as "feasible, suboptimal"), or finds no
// feasible assignment at all (Infeasible).
func (b *BranchAndBound) Solve(ctx context.Context, p *Problem, timeLimit time.Duration) (*Solution, error) {
	deadline := time.Now().Add(timeLimit)
	n, m := len(p.Lots), len(p.Lines)
	if n == 0 || m == 0 {
		return &Solution{Status: StatusInfeasible}, nil
	}

	bestAssign, bestMakespan, ok := greedyIncumbent(p)
	if !ok {
		return &Solution{Status: StatusInfeasible}, nil
	}
	bound := lowerBoundMakespan(p)
	if bestMakespan <= bound {
		return &Solution{Status: StatusOptimal, Assignment: assignmentFrom(p, bestAssign)}, nil
	}

	exhausted := true
	nodes := 0

	lineEnd := make([]int64, m)
	windows := make([]simWindow, m)
	assign := make([]int, n)

	var dfs func(idx int)
	dfs = func(idx int) {
		nodes++
		if nodes > maxSearchNodes || ctx.Err() != nil || time.Now().After(deadline) {
			exhausted = false
			return
		}
		if idx == n {
			var ms int64
			for _, e := range lineEnd {
				if e > ms {
					ms = e
				}
			}
			if ms < bestMakespan {
				bestMakespan = ms
				bestAssign = append([]int(nil), assign...)
			}
			return
		}
		var curMax int64
		for _, e := range lineEnd {
			if e > curMax {
				curMax = e
			}
		}
		if curMax >= bestMakespan {
			return // prune: remaining work can only grow the makespan
		}

		lotID := p.Lots[idx]
		for line := 0; line < m; line++ {
			end, w, feasible := simulatePlacement(lineEnd[line], windows[line], lotID, p)
			if !feasible {
				continue
			}
			savedEnd, savedWindow := lineEnd[line], windows[line]
			lineEnd[line], windows[line], assign[idx] = end, w, line
			dfs(idx + 1)
			lineEnd[line], windows[line] = savedEnd, savedWindow
			if !exhausted {
				return
			}
		}
	}
	dfs(0)

	status := StatusOptimal
	if !exhausted {
		status = StatusTimeout
	}
	return &Solution{Status: status, Assignment: assignmentFrom(p, bestAssign)}, nil
}

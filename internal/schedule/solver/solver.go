// Package solver defines the MILP optimizer's exact formulation as a
// structured description -- variables, constraints, an objective -- and an
// abstract Solver capability that consumes it. The engine owns translating
// a solver's assignment back into an event sequence; it does not own the
// solver itself, so Problem and Solution are plain data, independent of the
// scheduling domain package.
package solver

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Status is the outcome of a solve attempt.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Problem is the MILP formulation over binary assignment variables
// x[lot,line,slot] and continuous slot start times, encoded as flat data:
// each lot assigned exactly once, slot ordering per line, changeover cost
// from neighbor types, the window ceiling, and mandatory cleans between
// windows. Lots is the canonical order lots are offered to the solver in --
// determinism requires the caller to have already sorted it.
type Problem struct {
	Lots           []string
	Lines          []int
	ProcessingTime map[string]int64
	Types          map[string]string
	ChangeoverSame int64
	ChangeoverDiff int64
	CleanDuration  int64
	WindowCeiling  int64

	// A is the "each lot assigned exactly once" constraint matrix of the
	// LP relaxation: one row per lot, one column per line, every entry 1
	// (every lot may go on every line). Kept as data alongside Problem's
	// other fields per the spec's design note that the formulation is a
	// structured description, not code woven into the engine.
	A *mat.Dense
}

// NewConstraintMatrix builds the row-per-lot, column-per-line assignment
// matrix described by Problem.A.
func NewConstraintMatrix(numLots, numLines int) *mat.Dense {
	a := mat.NewDense(numLots, numLines, nil)
	for i := 0; i < numLots; i++ {
		for j := 0; j < numLines; j++ {
			a.Set(i, j, 1)
		}
	}
	return a
}

// Assignment is a solver's proposed placement: which line each lot goes
// on, and its slot (insertion order) within that line.
type Assignment struct {
	LineOf map[string]int
	SlotOf map[string]int
}

// Solution is what a Solver returns.
type Solution struct {
	Status     Status
	Assignment *Assignment
}

// Solver is the abstract capability the MILP strategy hands its formulated
// Problem to. Implementations may wrap an external optimizer process; the
// reference implementation in this package (BranchAndBound) needs none.
type Solver interface {
	Solve(ctx context.Context, p *Problem, timeLimit time.Duration) (*Solution, error)
}

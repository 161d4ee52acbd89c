// Package strategy implements the family of interchangeable scheduling
// strategies named in the spec: LPT, SPT, CFS, SmartPack, Hybrid, and the
// MILP optimizer. Each is modeled as a variant behind a single Strategy
// interface rather than an open inheritance hierarchy -- a new strategy is
// a new constructor plus a registry entry, not a new base class.
package strategy

import (
	"context"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
)

// Strategy produces a candidate Schedule from a LotSet and Config. Pure and
// synchronous: a strategy does not suspend except the MILP optimizer, which
// blocks on its solver and must honor deadline.
type Strategy interface {
	Tag() schedule.StrategyTag
	Run(ctx context.Context, lots schedule.LotSet, cfg schedule.Config, deadline time.Time) schedule.StrategyResult
}

// Registry maps a StrategyTag to a constructor for the strategy that
// implements it. A map-based registry, rather than a type switch at every
// call site, since the set of tags is expected to grow (see spec's Open
// Questions on future strategies).
type Registry map[schedule.StrategyTag]func() Strategy

// NewRegistry builds the registry covering every tag named in the spec.
func NewRegistry() Registry {
	return Registry{
		schedule.TagLPT:    func() Strategy { return newGreedy(schedule.TagLPT, orderLPT) },
		schedule.TagSPT:    func() Strategy { return newGreedy(schedule.TagSPT, orderSPT) },
		schedule.TagCFS:    func() Strategy { return newGreedy(schedule.TagCFS, orderCFS) },
		schedule.TagSmart:  func() Strategy { return newSmartPack() },
		schedule.TagHybrid: func() Strategy { return newHybrid() },
		schedule.TagMILP:   func() Strategy { return newMILP() },
	}
}

// Get constructs the strategy registered under tag.
func (r Registry) Get(tag schedule.StrategyTag) (Strategy, error) {
	ctor, ok := r[tag]
	if !ok {
		return nil, &schedule.ValidationError{Field: "strategy", Value: tag, Message: "unknown strategy tag"}
	}
	return ctor(), nil
}

// deadlineExceeded reports whether deadline has passed. A zero deadline
// means no deadline was set.
func deadlineExceeded(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

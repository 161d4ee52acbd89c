package strategy

import (
	"context"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
)

// hybrid runs SmartPack, LPT, and SPT and returns whichever produces the
// best schedule under the lexicographic key (fewest violations, lowest
// makespan, fewest changeovers). This meta-selection is internal; the
// caller sees one schedule tagged hybrid.
type hybrid struct{}

func newHybrid() *hybrid { return &hybrid{} }

func (h *hybrid) Tag() schedule.StrategyTag { return schedule.TagHybrid }

func (h *hybrid) Run(ctx context.Context, lots schedule.LotSet, cfg schedule.Config, deadline time.Time) schedule.StrategyResult {
	start := time.Now()

	candidates := []schedule.StrategyResult{
		newSmartPack().Run(ctx, lots, cfg, deadline),
		newGreedy(schedule.TagLPT, orderLPT).Run(ctx, lots, cfg, deadline),
		newGreedy(schedule.TagSPT, orderSPT).Run(ctx, lots, cfg, deadline),
	}

	best, ok := pickBest(candidates, lots, cfg)
	if !ok {
		return schedule.StrategyResult{
			Tag:       schedule.TagHybrid,
			Err:       &schedule.EngineError{Kind: schedule.EngineErrTimeoutNoIncumbent, Detail: "no hybrid candidate produced a schedule"},
			Wallclock: time.Since(start),
		}
	}
	best.Tag = schedule.TagHybrid
	best.Wallclock = time.Since(start)
	return best
}

type hybridKey struct {
	violations  int
	makespan    int64
	changeovers int
}

func lessHybridKey(a, b hybridKey) bool {
	if a.violations != b.violations {
		return a.violations < b.violations
	}
	if a.makespan != b.makespan {
		return a.makespan < b.makespan
	}
	return a.changeovers < b.changeovers
}

// pickBest selects the candidate with the lexicographically smallest
// (violations, makespan, changeovers) key, skipping failed candidates.
func pickBest(candidates []schedule.StrategyResult, lots schedule.LotSet, cfg schedule.Config) (schedule.StrategyResult, bool) {
	var best schedule.StrategyResult
	var bestKey hybridKey
	found := false

	for _, c := range candidates {
		if c.Err != nil || c.Schedule == nil {
			continue
		}
		key := hybridKey{
			violations:  len(schedule.Validate(lots, c.Schedule, cfg)),
			makespan:    c.Schedule.Makespan,
			changeovers: c.Metrics.Changeovers,
		}
		if !found || lessHybridKey(key, bestKey) {
			found = true
			bestKey = key
			best = c
		}
	}
	return best, found
}

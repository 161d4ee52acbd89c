// Package compare runs every requested strategy concurrently over the same
// input and ranks the resulting schedules, so a caller can pick the best
// one without committing to a single strategy up front.
package compare

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pharmasched/fillsched/internal/schedule"
	"github.com/pharmasched/fillsched/internal/schedule/strategy"
)

// Comparator fans a LotSet out across a set of strategies and ranks the
// results. Kept separate from the schedule package itself: schedule must
// not depend on strategy, since strategy depends on schedule.
type Comparator struct {
	registry strategy.Registry
	log      *logrus.Logger
}

// New builds a Comparator over registry. A nil logger falls back to
// logrus's standard logger.
func New(registry strategy.Registry, log *logrus.Logger) *Comparator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Comparator{registry: registry, log: log}
}

// Report is the outcome of comparing several strategies: every result that
// ran, and which tag ranked best.
type Report struct {
	Results []schedule.StrategyResult
	BestTag schedule.StrategyTag
}

// Compare runs every tag concurrently against lots and cfg, bounded to
// runtime.NumCPU() workers, and ranks the results by (fewest violations,
// lowest makespan, fewest changeovers, highest utilization, fastest
// wallclock). A strategy that errors is still reported, just never ranked
// best.
func (c *Comparator) Compare(ctx context.Context, lots schedule.LotSet, cfg schedule.Config, tags []schedule.StrategyTag, deadline time.Time) (*Report, error) {
	results := make([]schedule.StrategyResult, len(tags))

	g, gctx := errgroup.WithContext(ctx)
	limit := runtime.NumCPU()
	if limit > len(tags) {
		limit = len(tags)
	}
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, tag := range tags {
		i, tag := i, tag
		g.Go(func() error {
			strat, err := c.registry.Get(tag)
			if err != nil {
				results[i] = schedule.StrategyResult{Tag: tag, Err: err}
				return nil
			}
			c.log.WithField("strategy", tag).Debug("comparator: strategy starting")
			start := time.Now()
			results[i] = strat.Run(gctx, lots, cfg, deadline)
			c.log.WithFields(logrus.Fields{
				"strategy":  tag,
				"wallclock": time.Since(start),
				"failed":    results[i].Err != nil,
			}).Debug("comparator: strategy finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := bestOf(results, lots, cfg)
	return &Report{Results: results, BestTag: best}, nil
}

type rankKey struct {
	violations  int
	makespan    int64
	changeovers int
	utilization float64
	wallclock   time.Duration
}

func keyFor(r schedule.StrategyResult, lots schedule.LotSet, cfg schedule.Config) (rankKey, bool) {
	if r.Err != nil || r.Schedule == nil {
		return rankKey{}, false
	}
	return rankKey{
		violations:  len(schedule.Validate(lots, r.Schedule, cfg)),
		makespan:    r.Schedule.Makespan,
		changeovers: r.Metrics.Changeovers,
		utilization: r.Metrics.Utilization,
		wallclock:   r.Wallclock,
	}, true
}

// less reports whether a ranks strictly better than b under the
// lexicographic key (fewest violations, lowest makespan, fewest
// changeovers, highest utilization, fastest wallclock).
func less(a, b rankKey) bool {
	if a.violations != b.violations {
		return a.violations < b.violations
	}
	if a.makespan != b.makespan {
		return a.makespan < b.makespan
	}
	if a.changeovers != b.changeovers {
		return a.changeovers < b.changeovers
	}
	if a.utilization != b.utilization {
		return a.utilization > b.utilization
	}
	return a.wallclock < b.wallclock
}

func bestOf(results []schedule.StrategyResult, lots schedule.LotSet, cfg schedule.Config) schedule.StrategyTag {
	var bestTag schedule.StrategyTag
	var bestKey rankKey
	found := false

	for _, r := range results {
		key, ok := keyFor(r, lots, cfg)
		if !ok {
			continue
		}
		if !found || less(key, bestKey) {
			found = true
			bestKey = key
			bestTag = r.Tag
		}
	}
	return bestTag
}

// Ranked returns report.Results sorted best-first under the same
// lexicographic key Compare uses to pick BestTag. Results that errored sort
// last, in input order among themselves.
func Ranked(report *Report, lots schedule.LotSet, cfg schedule.Config) []schedule.StrategyResult {
	ranked := append([]schedule.StrategyResult(nil), report.Results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ki, oki := keyFor(ranked[i], lots, cfg)
		kj, okj := keyFor(ranked[j], lots, cfg)
		if oki != okj {
			return oki // ok (no error) sorts before error
		}
		if !oki {
			return false
		}
		return less(ki, kj)
	})
	return ranked
}

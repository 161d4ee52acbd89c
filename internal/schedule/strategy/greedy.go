package strategy

import (
	"context"
	"sort"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
)

// orderFunc produces the dispatch order for a greedy strategy's pending
// lots. LPT, SPT, and CFS differ only in this sort key.
type orderFunc func(lots []schedule.Lot) []schedule.Lot

// greedy is the shared skeleton for LPT, SPT, and CFS: sort pending lots by
// a key, then for each lot in order select a target line and admit it.
type greedy struct {
	tag   schedule.StrategyTag
	order orderFunc
}

func newGreedy(tag schedule.StrategyTag, order orderFunc) *greedy {
	return &greedy{tag: tag, order: order}
}

func (g *greedy) Tag() schedule.StrategyTag { return g.tag }

func (g *greedy) Run(ctx context.Context, lots schedule.LotSet, cfg schedule.Config, deadline time.Time) schedule.StrategyResult {
	start := time.Now()
	sch := schedule.NewSchedule(g.tag, cfg)
	ordered := g.order(lots.Lots)

	for i, lot := range ordered {
		if ctx.Err() != nil || deadlineExceeded(deadline) {
			markRestUnplaced(sch, ordered[i:], schedule.ReasonTimeout)
			break
		}
		lineID := selectLine(sch, lot, cfg)
		if err := sch.PlaceLot(lineID, lot, cfg); err != nil {
			return schedule.StrategyResult{Tag: g.tag, Err: err, Wallclock: time.Since(start)}
		}
	}

	sch.Freeze(cfg)
	metrics := schedule.ComputeMetrics(sch, cfg)
	return schedule.StrategyResult{Tag: g.tag, Schedule: sch, Metrics: metrics, Wallclock: time.Since(start)}
}

// selectLine picks the line that minimizes current end time plus the cost
// of admitting lot, breaking ties by lowest line id.
func selectLine(sch *schedule.Schedule, lot schedule.Lot, cfg schedule.Config) int {
	best := -1
	var bestCost int64
	for _, id := range sch.LineIDs() {
		cost := sch.CurrentEnd(id) + sch.PlacementCost(id, lot, cfg)
		if best == -1 || cost < bestCost {
			best, bestCost = id, cost
		}
	}
	return best
}

func markRestUnplaced(sch *schedule.Schedule, rest []schedule.Lot, reason schedule.Reason) {
	for _, lot := range rest {
		sch.MarkUnplaced(lot.ID, reason)
	}
}

// lessByTypeThenID is the shared tie-break for LPT and SPT: lexicographic
// by type, then by id.
func lessByTypeThenID(a, b schedule.Lot) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID < b.ID
}

func orderLPT(lots []schedule.Lot) []schedule.Lot {
	ordered := append([]schedule.Lot(nil), lots...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Vials != ordered[j].Vials {
			return ordered[i].Vials > ordered[j].Vials // descending
		}
		return lessByTypeThenID(ordered[i], ordered[j])
	})
	return ordered
}

func orderSPT(lots []schedule.Lot) []schedule.Lot {
	ordered := append([]schedule.Lot(nil), lots...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Vials != ordered[j].Vials {
			return ordered[i].Vials < ordered[j].Vials // ascending
		}
		return lessByTypeThenID(ordered[i], ordered[j])
	})
	return ordered
}

// orderCFS sorts descending by criticality = vials * type_rarity, where
// type_rarity = 1 / count of lots sharing that type. Schedules the
// scarcest-type large lots first so later windows can group the remaining
// lots of that type without a wasted clean.
func orderCFS(lots []schedule.Lot) []schedule.Lot {
	counts := make(map[string]int, len(lots))
	for _, l := range lots {
		counts[l.Type]++
	}
	criticality := make(map[string]float64, len(lots))
	for _, l := range lots {
		criticality[l.ID] = float64(l.Vials) / float64(counts[l.Type])
	}

	ordered := append([]schedule.Lot(nil), lots...)
	sort.Slice(ordered, func(i, j int) bool {
		ci, cj := criticality[ordered[i].ID], criticality[ordered[j].ID]
		if ci != cj {
			return ci > cj // descending
		}
		return lessByTypeThenID(ordered[i], ordered[j])
	})
	return ordered
}

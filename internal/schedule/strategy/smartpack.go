package strategy

import (
	"context"
	"sort"
	"time"

	"github.com/pharmasched/fillsched/internal/schedule"
)

// smartPack treats each clean window as a bin of capacity clean_window_hours
// and packs lots so that same-type runs minimize cumulative changeover
// time: group pending lots by type, order groups by total processing time
// descending, then best-fit each lot into the open window (across every
// line) with the smallest non-negative residual after insertion.
type smartPack struct{}

func newSmartPack() *smartPack { return &smartPack{} }

func (s *smartPack) Tag() schedule.StrategyTag { return schedule.TagSmart }

func (s *smartPack) Run(ctx context.Context, lots schedule.LotSet, cfg schedule.Config, deadline time.Time) schedule.StrategyResult {
	start := time.Now()
	sch := schedule.NewSchedule(schedule.TagSmart, cfg)
	ordered := groupedOrder(lots.Lots, cfg)

	for i, lot := range ordered {
		if ctx.Err() != nil || deadlineExceeded(deadline) {
			markRestUnplaced(sch, ordered[i:], schedule.ReasonTimeout)
			break
		}
		lineID := bestFitLine(sch, lot, cfg)
		if err := sch.PlaceLot(lineID, lot, cfg); err != nil {
			return schedule.StrategyResult{Tag: schedule.TagSmart, Err: err, Wallclock: time.Since(start)}
		}
	}

	sch.Freeze(cfg)
	metrics := schedule.ComputeMetrics(sch, cfg)
	return schedule.StrategyResult{Tag: schedule.TagSmart, Schedule: sch, Metrics: metrics, Wallclock: time.Since(start)}
}

// groupedOrder groups lots by type, orders groups by total processing time
// descending (ties by type name ascending for determinism), and within
// each group orders lots by vials descending (ties by id ascending).
func groupedOrder(lots []schedule.Lot, cfg schedule.Config) []schedule.Lot {
	groups := make(map[string][]schedule.Lot)
	for _, l := range lots {
		groups[l.Type] = append(groups[l.Type], l)
	}

	type groupTotal struct {
		typ   string
		total int64
	}
	totals := make([]groupTotal, 0, len(groups))
	for typ, ls := range groups {
		var sum int64
		for _, l := range ls {
			sum += schedule.ProcessingTime(l, cfg)
		}
		totals = append(totals, groupTotal{typ: typ, total: sum})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].total != totals[j].total {
			return totals[i].total > totals[j].total
		}
		return totals[i].typ < totals[j].typ
	})

	var ordered []schedule.Lot
	for _, gt := range totals {
		group := append([]schedule.Lot(nil), groups[gt.typ]...)
		sort.Slice(group, func(i, j int) bool {
			if group[i].Vials != group[j].Vials {
				return group[i].Vials > group[j].Vials
			}
			return group[i].ID < group[j].ID
		})
		ordered = append(ordered, group...)
	}
	return ordered
}

// bestFitLine picks the line whose currently open window accepts lot with
// the smallest non-negative residual. If no open window accepts it, opens
// a new window on the least-loaded line (smallest current end time).
func bestFitLine(sch *schedule.Schedule, lot schedule.Lot, cfg schedule.Config) int {
	best := -1
	var bestResidual int64
	for _, id := range sch.LineIDs() {
		residual, ok := sch.ResidualInOpenWindow(id, lot, cfg)
		if !ok {
			continue
		}
		if best == -1 || residual < bestResidual {
			best, bestResidual = id, residual
		}
	}
	if best != -1 {
		return best
	}
	return leastLoadedLine(sch)
}

func leastLoadedLine(sch *schedule.Schedule) int {
	best := -1
	var bestEnd int64
	for _, id := range sch.LineIDs() {
		end := sch.CurrentEnd(id)
		if best == -1 || end < bestEnd {
			best, bestEnd = id, end
		}
	}
	return best
}

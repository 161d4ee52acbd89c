package schedule

// ScheduleWire is the stable, externally-facing serialization of a
// Schedule, matching §6's output contract field-for-field so the façade
// (out of scope here) can consume it without translation.
type ScheduleWire struct {
	Strategy        string          `json:"strategy"`
	MakespanSeconds int64           `json:"makespan_seconds"`
	Lines           []LineWire      `json:"lines"`
	Metrics         MetricsWire     `json:"metrics"`
	Violations      []ViolationWire `json:"violations"`
}

type LineWire struct {
	LineID int         `json:"line_id"`
	Events []EventWire `json:"events"`
}

type EventWire struct {
	Kind         string  `json:"kind"`
	StartSeconds int64   `json:"start_seconds"`
	EndSeconds   int64   `json:"end_seconds"`
	LotID        *string `json:"lot_id,omitempty"`
	FromType     *string `json:"from_type,omitempty"`
	ToType       *string `json:"to_type,omitempty"`
}

type MetricsWire struct {
	Utilization      float64 `json:"utilization"`
	Changeovers      int     `json:"changeovers"`
	WindowViolations int     `json:"window_violations"`
	LotsPlaced       int     `json:"lots_placed"`
}

type ViolationWire struct {
	Kind      string `json:"kind"`
	LineID    int    `json:"line_id"`
	AtSeconds int64  `json:"at_seconds"`
	Detail    string `json:"detail"`
}

// ToWire renders sch, its metrics, and a set of violations in the stable
// external format.
func ToWire(sch *Schedule, metrics Metrics, violations []Violation) ScheduleWire {
	w := ScheduleWire{
		Strategy:        string(sch.StrategyTag),
		MakespanSeconds: sch.Makespan,
		Metrics: MetricsWire{
			Utilization:      metrics.Utilization,
			Changeovers:      metrics.Changeovers,
			WindowViolations: metrics.WindowViolations,
			LotsPlaced:       metrics.LotsPlaced,
		},
	}
	for _, id := range sch.lineOrder {
		lw := LineWire{LineID: id}
		for _, e := range sch.Lines[id].Events {
			ew := EventWire{Kind: e.Kind.String(), StartSeconds: e.Start, EndSeconds: e.End}
			switch e.Kind {
			case EventFill:
				lotID := e.LotID
				ew.LotID = &lotID
			case EventChangeover:
				from, to := e.FromType, e.ToType
				ew.FromType = &from
				ew.ToType = &to
			}
			lw.Events = append(lw.Events, ew)
		}
		w.Lines = append(w.Lines, lw)
	}
	for _, v := range violations {
		w.Violations = append(w.Violations, ViolationWire{
			Kind: string(v.Kind), LineID: v.LineID, AtSeconds: v.AtSeconds, Detail: v.Detail,
		})
	}
	return w
}

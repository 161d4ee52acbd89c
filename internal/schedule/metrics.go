package schedule

// LineMetrics breaks utilization down per line.
type LineMetrics struct {
	LineID            int
	BusyFillSeconds   int64
	ChangeoverSeconds int64
	CleanSeconds      int64
	Windows           int
}

// Metrics aggregates the quality measures reported alongside a Schedule:
// makespan lives on Schedule itself, everything else lives here.
type Metrics struct {
	Utilization      float64 // average across lines of fill time / makespan
	Changeovers      int
	WindowViolations int
	LotsPlaced       int
	PerLine          []LineMetrics
}

// ComputeMetrics derives aggregate quality metrics from a frozen Schedule.
// Must be called after Schedule.Freeze, since utilization is measured
// against the overall makespan shared by every line.
func ComputeMetrics(sch *Schedule, cfg Config) Metrics {
	ceiling := WindowCeilingSeconds(cfg)
	perLine := make([]LineMetrics, 0, len(sch.lineOrder))

	var changeovers, windowViolations int
	var utilSum float64

	for _, id := range sch.lineOrder {
		line := sch.Lines[id]
		lm := LineMetrics{LineID: id}

		var windowUsed int64
		windowOpen := false
		for _, e := range line.Events {
			switch e.Kind {
			case EventFill:
				lm.BusyFillSeconds += e.End - e.Start
				windowUsed += e.End - e.Start
			case EventChangeover:
				changeovers++
				lm.ChangeoverSeconds += e.End - e.Start
				windowUsed += e.End - e.Start
			case EventClean:
				if windowOpen {
					lm.Windows++
					if windowUsed > ceiling {
						windowViolations++
					}
				}
				lm.CleanSeconds += e.End - e.Start
				windowOpen = true
				windowUsed = 0
			}
		}
		if windowOpen {
			lm.Windows++
			if windowUsed > ceiling {
				windowViolations++
			}
		}

		if sch.Makespan > 0 {
			utilSum += float64(lm.BusyFillSeconds) / float64(sch.Makespan)
		}
		perLine = append(perLine, lm)
	}

	var utilization float64
	if len(sch.lineOrder) > 0 {
		utilization = utilSum / float64(len(sch.lineOrder))
	}

	return Metrics{
		Utilization:      utilization,
		Changeovers:      changeovers,
		WindowViolations: windowViolations,
		LotsPlaced:       len(sch.LotsPlaced),
		PerLine:          perLine,
	}
}

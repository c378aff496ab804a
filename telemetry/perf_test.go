package telemetry

import (
	"testing"
	"time"
)

func timeSteps(pc *PerfCollector, n int, phases map[Phase]time.Duration) {
	for i := 0; i < n; i++ {
		pc.StartStep()
		for ph := Phase(0); ph < phaseCount; ph++ {
			d, ok := phases[ph]
			if !ok {
				continue
			}
			pc.StartPhase(ph)
			time.Sleep(d)
		}
		pc.EndStep()
	}
}

func TestPerfCollector_FlushCoversOneWindow(t *testing.T) {
	pc := NewPerfCollector(4)
	timeSteps(pc, 5, map[Phase]time.Duration{PhaseCompute: 100 * time.Microsecond})

	stats := pc.Flush()
	if stats.Steps != 5 {
		t.Errorf("Steps = %d, want 5", stats.Steps)
	}
	if stats.StepUS.Mean < 100 || stats.StepUS.Max < stats.StepUS.P90 || stats.StepUS.P90 < stats.StepUS.Min {
		t.Errorf("step summary = %+v", stats.StepUS)
	}
	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}

	timeSteps(pc, 2, map[Phase]time.Duration{PhaseCompute: 10 * time.Microsecond})
	if next := pc.Flush(); next.Steps != 2 {
		t.Errorf("second window Steps = %d, want 2", next.Steps)
	}
}

func TestPerfCollector_PhaseShares(t *testing.T) {
	pc := NewPerfCollector(10)
	timeSteps(pc, 5, map[Phase]time.Duration{
		PhaseSchedule: 10 * time.Microsecond,
		PhaseCompute:  500 * time.Microsecond,
		PhaseApply:    50 * time.Microsecond,
	})

	stats := pc.Flush()
	if stats.Pct(PhaseCompute) <= stats.Pct(PhaseSchedule) || stats.Pct(PhaseCompute) <= stats.Pct(PhaseApply) {
		t.Errorf("compute share %v should dominate schedule %v and apply %v",
			stats.Pct(PhaseCompute), stats.Pct(PhaseSchedule), stats.Pct(PhaseApply))
	}
	if stats.Pct(PhaseTelemetry) != 0 || stats.Pct(PhaseSnapshot) != 0 {
		t.Error("untimed phases should have no share")
	}
	var sum float64
	for _, pct := range stats.PhasePct {
		sum += pct
	}
	if sum > 100.0001 {
		t.Errorf("phase shares sum to %v%%", sum)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.Steps != 5 || row.ComputePct != stats.Pct(PhaseCompute) || row.ApplyPct != stats.Pct(PhaseApply) {
		t.Errorf("ToCSV = %+v", row)
	}
}

func TestPerfCollector_EmptyAndReset(t *testing.T) {
	pc := NewPerfCollector(0)
	if stats := pc.Flush(); stats.Steps != 0 || stats.StepsPerSecond != 0 || stats.StepUS.Mean != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	timeSteps(pc, 3, map[Phase]time.Duration{PhaseSchedule: time.Microsecond})
	pc.Reset()
	if stats := pc.Flush(); stats.Steps != 0 || stats.Pct(PhaseSchedule) != 0 {
		t.Errorf("stats after Reset = %+v", stats)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseCompute.String() != "compute" || Phase(99).String() != "unknown" {
		t.Errorf("names = %q, %q", PhaseCompute, Phase(99))
	}
}

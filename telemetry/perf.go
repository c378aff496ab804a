package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one timed section of a scenario step.
type Phase uint8

const (
	PhaseSchedule  Phase = iota // scheduled changes and dose events
	PhaseSnapshot               // copying arm state out of the world
	PhaseCompute                // integrating every arm
	PhaseApply                  // writing next states back
	PhaseTelemetry              // recording samples
	phaseCount
)

var phaseNames = [phaseCount]string{"schedule", "snapshot", "compute", "apply", "telemetry"}

// String implements fmt.Stringer.
func (p Phase) String() string {
	if p < phaseCount {
		return phaseNames[p]
	}
	return "unknown"
}

// PerfCollector accumulates wall-clock step timings until the next Flush, so
// each flushed record covers exactly one telemetry window.
type PerfCollector struct {
	stepUS []float64
	phases [phaseCount]time.Duration
	total  time.Duration

	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector sized for sizeHint steps per window.
func NewPerfCollector(sizeHint int) *PerfCollector {
	if sizeHint < 1 {
		sizeHint = 60
	}
	return &PerfCollector{stepUS: make([]float64, 0, sizeHint)}
}

// StartStep begins timing a step.
func (p *PerfCollector) StartStep() {
	p.stepStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = ph, now, true
}

// EndStep closes the running phase and records the step.
func (p *PerfCollector) EndStep() {
	now := time.Now()
	p.closePhase(now)
	d := now.Sub(p.stepStart)
	p.total += d
	p.stepUS = append(p.stepUS, float64(d)/float64(time.Microsecond))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < phaseCount {
		p.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// Reset discards every step recorded since the last Flush.
func (p *PerfCollector) Reset() {
	p.stepUS = p.stepUS[:0]
	p.phases = [phaseCount]time.Duration{}
	p.total = 0
	p.inPhase = false
}

// Flush summarizes the steps since the last Flush and starts a new window.
func (p *PerfCollector) Flush() PerfStats {
	s := PerfStats{Steps: len(p.stepUS), StepUS: ComputeSummary(p.stepUS)}
	if s.StepUS.Mean > 0 {
		s.StepsPerSecond = 1e6 / s.StepUS.Mean
	}
	if p.total > 0 {
		for i, d := range p.phases {
			s.PhasePct[i] = 100 * float64(d) / float64(p.total)
		}
	}
	p.Reset()
	return s
}

// PerfStats is the timing of one telemetry window. Durations are in
// microseconds.
type PerfStats struct {
	Steps          int
	StepUS         Summary
	StepsPerSecond float64
	PhasePct       [phaseCount]float64 // share of total step time, indexed by Phase
}

// Pct returns the share of step time spent in ph.
func (s PerfStats) Pct(ph Phase) float64 {
	if ph < phaseCount {
		return s.PhasePct[ph]
	}
	return 0
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Float64("mean_step_us", s.StepUS.Mean),
		slog.Float64("p90_step_us", s.StepUS.P90),
		slog.Float64("max_step_us", s.StepUS.Max),
		slog.Int("steps_per_sec", int(s.StepsPerSecond)),
	}
	for ph := Phase(0); ph < phaseCount; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats(windowEnd int) {
	slog.Info("perf", "window_end", windowEnd, "timing", s)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	Steps        int     `csv:"steps"`
	MeanStepUS   float64 `csv:"mean_step_us"`
	P90StepUS    float64 `csv:"p90_step_us"`
	MaxStepUS    float64 `csv:"max_step_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	SchedulePct  float64 `csv:"schedule_pct"`
	SnapshotPct  float64 `csv:"snapshot_pct"`
	ComputePct   float64 `csv:"compute_pct"`
	ApplyPct     float64 `csv:"apply_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the window for CSV export.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		Steps:        s.Steps,
		MeanStepUS:   s.StepUS.Mean,
		P90StepUS:    s.StepUS.P90,
		MaxStepUS:    s.StepUS.Max,
		StepsPerSec:  s.StepsPerSecond,
		SchedulePct:  s.PhasePct[PhaseSchedule],
		SnapshotPct:  s.PhasePct[PhaseSnapshot],
		ComputePct:   s.PhasePct[PhaseCompute],
		ApplyPct:     s.PhasePct[PhaseApply],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}

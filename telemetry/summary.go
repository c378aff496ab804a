package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/physim/components"
)

// SummaryRow is the whole-run distribution of one signal in one arm.
type SummaryRow struct {
	Arm    string  `csv:"arm"`
	Signal string  `csv:"signal"`
	Mean   float64 `csv:"mean"`
	Std    float64 `csv:"std"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
	P50    float64 `csv:"p50"`
	Clamps int     `csv:"clamps"`

	// Difference from the baseline arm's mean; 0 when there is no baseline.
	DeltaMean float64 `csv:"delta_mean"`
}

// RunTracker keeps every sample of every arm for end-of-run summaries.
type RunTracker struct {
	signals []string
	arms    []string
	samples map[string]map[string][]float64
	clamps  map[string]map[string]int
}

// NewRunTracker creates a tracker for the given signal keys.
func NewRunTracker(signals []string) *RunTracker {
	keys := make([]string, len(signals))
	copy(keys, signals)
	return &RunTracker{
		signals: keys,
		samples: make(map[string]map[string][]float64),
		clamps:  make(map[string]map[string]int),
	}
}

// Record appends one state of arm.
func (rt *RunTracker) Record(arm string, st components.State) {
	bySignal, ok := rt.samples[arm]
	if !ok {
		bySignal = make(map[string][]float64, len(rt.signals))
		rt.samples[arm] = bySignal
		rt.clamps[arm] = make(map[string]int)
		rt.arms = append(rt.arms, arm)
	}
	for _, key := range rt.signals {
		if v, ok := st.Signals[key]; ok {
			bySignal[key] = append(bySignal[key], v)
		}
	}
	if st.Debug != nil {
		for _, key := range st.Debug.Clamped {
			rt.clamps[arm][key]++
		}
	}
}

// Rows summarizes every recorded arm and signal. When baseline names a
// recorded arm, DeltaMean is each mean minus the baseline's mean.
func (rt *RunTracker) Rows(baseline string) []SummaryRow {
	ref := make(map[string]float64, len(rt.signals))
	_, hasBaseline := rt.samples[baseline]

	var rows []SummaryRow
	for _, arm := range rt.arms {
		for _, key := range rt.signals {
			values := rt.samples[arm][key]
			if len(values) == 0 {
				continue
			}
			s := ComputeSummary(values)
			if arm == baseline {
				ref[key] = s.Mean
			}
			rows = append(rows, SummaryRow{
				Arm:    arm,
				Signal: key,
				Mean:   s.Mean,
				Std:    s.Std,
				Min:    s.Min,
				Max:    s.Max,
				P50:    s.P50,
				Clamps: rt.clamps[arm][key],
			})
		}
	}
	if !hasBaseline {
		return rows
	}
	for i := range rows {
		if m, ok := ref[rows[i].Signal]; ok {
			rows[i].DeltaMean = rows[i].Mean - m
		}
	}
	return rows
}

// LogSummary logs one line per row.
func LogSummary(rows []SummaryRow) {
	for _, r := range rows {
		slog.Info("summary",
			"arm", r.Arm,
			"signal", r.Signal,
			"mean", r.Mean,
			"min", r.Min,
			"max", r.Max,
			"delta_mean", r.DeltaMean,
			"clamps", r.Clamps,
		)
	}
}

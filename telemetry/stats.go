package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SignalWindowStats holds aggregated statistics for one signal of one arm
// over a time window.
type SignalWindowStats struct {
	Arm             string  `csv:"arm"`
	Signal          string  `csv:"signal"`
	WindowStartStep int     `csv:"-"`
	WindowEndStep   int     `csv:"window_end"`
	SimMinute       float64 `csv:"sim_minute"`
	Samples         int     `csv:"samples"`

	Mean float64 `csv:"mean"`
	Std  float64 `csv:"std"`
	Min  float64 `csv:"min"`
	Max  float64 `csv:"max"`
	P10  float64 `csv:"p10"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`

	// Steps in the window on which the raw value left its bounds
	Clamps int `csv:"clamps"`
}

// Percentile returns the p-th quantile of a sorted slice using gonum's
// linear interpolation. p is clamped to [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// Summary is the distribution of a sample.
type Summary struct {
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// ComputeSummary calculates mean, sample standard deviation, range and
// percentiles. values is not modified.
func ComputeSummary(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var s Summary
	if n > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s SignalWindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("arm", s.Arm),
		slog.String("signal", s.Signal),
		slog.Int("window_start", s.WindowStartStep),
		slog.Int("window_end", s.WindowEndStep),
		slog.Float64("sim_minute", s.SimMinute),
		slog.Int("samples", s.Samples),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Int("clamps", s.Clamps),
	)
}

// LogStats logs the window stats using slog.
func (s SignalWindowStats) LogStats() {
	slog.Info("stats",
		"arm", s.Arm,
		"signal", s.Signal,
		"window_end", s.WindowEndStep,
		"sim_minute", s.SimMinute,
		"mean", s.Mean,
		"std", s.Std,
		"min", s.Min,
		"max", s.Max,
		"p50", s.P50,
		"clamps", s.Clamps,
	)
}

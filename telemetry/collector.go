package telemetry

import "github.com/pthm-cable/physim/components"

// Collector accumulates per-arm signal samples within time windows and
// produces SignalWindowStats.
type Collector struct {
	windowDurationMin   float64
	windowDurationSteps int
	dt                  float64
	signals             []string

	// Current window tracking
	windowStartStep int

	arms    []string // first-recorded order
	samples map[string]map[string][]float64
	clamps  map[string]map[string]int
}

// NewCollector creates a new stats collector.
// windowDurationMin: how long each stats window lasts in simulated minutes
// dt: minutes per step
// signals: keys to summarize, in output order
func NewCollector(windowDurationMin, dt float64, signals []string) *Collector {
	stepsPerWindow := 1
	if dt > 0 {
		stepsPerWindow = int(windowDurationMin / dt)
	}
	if stepsPerWindow < 1 {
		stepsPerWindow = 1
	}

	keys := make([]string, len(signals))
	copy(keys, signals)

	return &Collector{
		windowDurationMin:   windowDurationMin,
		windowDurationSteps: stepsPerWindow,
		dt:                  dt,
		signals:             keys,
		samples:             make(map[string]map[string][]float64),
		clamps:              make(map[string]map[string]int),
	}
}

// Record samples every tracked signal of st for arm. Keys listed in
// st.Debug.Clamped count toward the window's clamps.
func (c *Collector) Record(arm string, st components.State) {
	bySignal, ok := c.samples[arm]
	if !ok {
		bySignal = make(map[string][]float64, len(c.signals))
		c.samples[arm] = bySignal
		c.clamps[arm] = make(map[string]int)
		c.arms = append(c.arms, arm)
	}
	for _, key := range c.signals {
		if v, ok := st.Signals[key]; ok {
			bySignal[key] = append(bySignal[key], v)
		}
	}
	if st.Debug != nil {
		for _, key := range st.Debug.Clamped {
			c.clamps[arm][key]++
		}
	}
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int) bool {
	return currentStep-c.windowStartStep >= c.windowDurationSteps
}

// Flush produces one SignalWindowStats per arm and signal, ordered by arm
// then signal, and resets the samples for the next window. Signals with no
// samples in the window are skipped.
func (c *Collector) Flush(currentStep int) []SignalWindowStats {
	var out []SignalWindowStats
	for _, arm := range c.arms {
		for _, key := range c.signals {
			values := c.samples[arm][key]
			if len(values) == 0 {
				continue
			}
			s := ComputeSummary(values)
			out = append(out, SignalWindowStats{
				Arm:             arm,
				Signal:          key,
				WindowStartStep: c.windowStartStep,
				WindowEndStep:   currentStep,
				SimMinute:       float64(currentStep) * c.dt,
				Samples:         len(values),
				Mean:            s.Mean,
				Std:             s.Std,
				Min:             s.Min,
				Max:             s.Max,
				P10:             s.P10,
				P50:             s.P50,
				P90:             s.P90,
				Clamps:          c.clamps[arm][key],
			})
		}
	}

	c.Reset(currentStep)
	return out
}

// WindowDurationSteps returns the number of steps per window.
func (c *Collector) WindowDurationSteps() int {
	return c.windowDurationSteps
}

// Pending reports whether samples were recorded since the last flush.
func (c *Collector) Pending(currentStep int) bool {
	return currentStep > c.windowStartStep
}

// Reset discards buffered samples and starts a new window at currentStep.
func (c *Collector) Reset(currentStep int) {
	c.windowStartStep = currentStep
	for _, arm := range c.arms {
		for key, values := range c.samples[arm] {
			c.samples[arm][key] = values[:0]
		}
		c.clamps[arm] = make(map[string]int)
	}
}

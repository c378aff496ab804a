package scenario

import (
	"math"

	"github.com/pthm-cable/physim/components"
)

// contextAt builds the engine context for simulated minute t. Every arm
// shares the subject, so one context serves the whole step.
func (r *Runner) contextAt(t float64) components.Context {
	sim := r.cfg.Simulation
	clock := sim.StartMinute + t
	minute := components.WrapMinute(clock)
	return components.Context{
		MinuteOfDay:          minute,
		CircadianMinuteOfDay: minute,
		DayOfYear:            sim.DayOfYear + int(math.Floor(clock/components.MinutesPerDay)),
		IsAsleep:             sim.Asleep(minute),
		Subject:              r.cfg.Derived.Subject,
		Physiology:           r.cfg.Derived.Physiology,
	}
}

// Time returns the simulated minute of the next step.
func (r *Runner) Time() float64 {
	return float64(r.step) * r.cfg.Simulation.DT
}

// StepCount returns the number of completed steps.
func (r *Runner) StepCount() int {
	return r.step
}

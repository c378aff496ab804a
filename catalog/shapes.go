package catalog

import (
	"math"

	"github.com/pthm-cable/physim/components"
)

// cosinor returns a 24-hour cosine setpoint peaking at peakMin on the
// circadian clock.
func cosinor(mesor, amplitude, peakMin float64) components.SetpointFunc {
	return func(ctx components.Context, _ components.State) float64 {
		return cosinorAt(ctx.CircadianMinuteOfDay, mesor, amplitude, peakMin)
	}
}

func cosinorAt(minute, mesor, amplitude, peakMin float64) float64 {
	phase := 2 * math.Pi * (minute - peakMin) / components.MinutesPerDay
	return mesor + amplitude*math.Cos(phase)
}

// nightBump is a squared-cosine pulse centered on peakMin that is zero for
// half of the day.
func nightBump(minute, peakMin float64) float64 {
	c := math.Cos(2 * math.Pi * (minute - peakMin) / components.MinutesPerDay)
	if c <= 0 {
		return 0
	}
	return c * c
}

func constantSetpoint(v float64) components.SetpointFunc {
	return func(components.Context, components.State) float64 { return v }
}

// whileAwake gates a term to waking minutes.
func whileAwake(_ float64, _ components.State, ctx components.Context) float64 {
	if ctx.IsAsleep {
		return 0
	}
	return 1
}

// sleepBoost multiplies a term by factor during sleep.
func sleepBoost(factor float64) components.Transform {
	return func(_ float64, _ components.State, ctx components.Context) float64 {
		if ctx.IsAsleep {
			return factor
		}
		return 1
	}
}

// above returns the positive excess of a source over threshold.
func above(threshold float64) components.Transform {
	return func(v float64, _ components.State, _ components.Context) float64 {
		return math.Max(0, v-threshold)
	}
}

// relativeTo scales a term by the ratio of key to its reference value.
func relativeTo(key string, reference float64) components.Transform {
	return func(_ float64, st components.State, _ components.Context) float64 {
		return st.Value(key) / reference
	}
}

// fromBloodwork seeds a signal from the subject's labs, else fallback.
func fromBloodwork(key string, fallback float64) components.InitialValue {
	return components.InitialValue{
		Value: fallback,
		FromContext: func(ctx components.Context) float64 {
			return ctx.Bloodwork(key, fallback)
		},
	}
}

// fromRhythm seeds a signal at its rhythm's value for the starting minute,
// unless the subject's labs carry a measurement.
func fromRhythm(key string, mesor, amplitude, peakMin float64) components.InitialValue {
	return components.InitialValue{
		Value: mesor,
		FromContext: func(ctx components.Context) float64 {
			return ctx.Bloodwork(key, cosinorAt(ctx.CircadianMinuteOfDay, mesor, amplitude, peakMin))
		},
	}
}

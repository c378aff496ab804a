package systems

import (
	"math"

	"github.com/pthm-cable/physim/components"
)

// evaluator interprets flux terms against the previous state.
type evaluator struct {
	st  components.State
	ctx components.Context
	adj *components.Adjustments
	eff *Effects
}

// source resolves a production or coupling source. Unknown keys read as 0.
func (ev *evaluator) source(key string) float64 {
	if key == components.SourceConstant {
		return 1
	}
	if iv, ok := components.ParseInterventionSource(key); ok {
		return ev.eff.Exposure[iv]
	}
	return ev.st.Value(key)
}

// relax fills the setpoint and relaxation terms. A nil setpoint leaves both
// at zero. amplitude scales the setpoint as a fractional gain.
func (ev *evaluator) relax(terms *components.TermBreakdown, dyn components.Dynamics, cur float64, ctx components.Context, amplitude, dt float64) {
	if dyn.Setpoint == nil {
		return
	}
	tau := dyn.Tau
	if tau <= 0 {
		tau = dt
	}
	terms.Setpoint = dyn.Setpoint(ctx, ev.st) * (1 + amplitude)
	terms.Relaxation = (terms.Setpoint - cur) / tau
}

func (ev *evaluator) production(terms []components.ProductionTerm) float64 {
	var sum float64
	for _, p := range terms {
		v := ev.source(p.Source)
		if p.Transform != nil {
			v = p.Transform(v, ev.st, ev.ctx)
		}
		sum += p.Coefficient * v
	}
	return sum
}

// clearance returns the positive removal rate for a key currently at cur.
func (ev *evaluator) clearance(terms []components.ClearanceTerm, cur float64) float64 {
	var sum float64
	for _, c := range terms {
		rate := c.Rate
		if c.Kind == components.ClearanceEnzymeDependent {
			rate *= activity(c.Enzyme, ev.st, ev.adj)
		}
		scale := 1.0
		if c.Transform != nil {
			scale = c.Transform(cur, ev.st, ev.ctx)
		}
		sum += rate * cur * scale
	}
	return sum
}

func (ev *evaluator) couplings(cs []components.Coupling) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.Effect.Sign() * c.Strength * ev.source(c.Source)
	}
	return sum
}

func (ev *evaluator) injected(cs []components.CouplingAdjustment) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.Effect.Sign() * c.Strength * ev.source(c.Source)
	}
	return sum
}

// activity returns the current index of an enzyme, transporter or receptor.
// Keys missing from the state fall back to a baseline of 1 shifted by the
// condition deltas.
func activity(key string, st components.State, adj *components.Adjustments) float64 {
	if v, ok := st.Auxiliary[key]; ok {
		return v
	}
	return 1 + adj.TargetDelta(components.TargetReceptor, key) + adj.Activity(key)
}

// interventionFlux composes the contributions on one target and applies the
// flux cap.
func interventionFlux(cs []Contribution, opts Options) float64 {
	if len(cs) == 0 {
		return 0
	}
	var flux float64
	if opts.Composition == CompositionSaturating {
		flux = saturating(cs, 1) - saturating(cs, -1)
	} else {
		for _, c := range cs {
			flux += c.Sign * c.Gain * c.Response
		}
	}
	if m := opts.MaxInterventionFlux; m > 0 {
		flux = math.Max(-m, math.Min(m, flux))
	}
	return flux
}

// saturating returns gMax·(1 − Π(1 − gᵢ·rᵢ/gMax)) over contributions of one
// sign, where gMax is the largest gain among them.
func saturating(cs []Contribution, sign float64) float64 {
	var gMax float64
	for _, c := range cs {
		if c.Sign == sign && c.Gain > gMax {
			gMax = c.Gain
		}
	}
	if gMax == 0 {
		return 0
	}
	remaining := 1.0
	for _, c := range cs {
		if c.Sign != sign {
			continue
		}
		frac := math.Max(0, math.Min(1, c.Gain*c.Response/gMax))
		remaining *= 1 - frac
	}
	return gMax * (1 - remaining)
}

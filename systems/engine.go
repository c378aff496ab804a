// Package systems advances a simulation state by one timestep.
//
// Step is a pure function of its arguments: it reads only the previous state
// (Jacobi-style update), never writes to it, and returns a fresh State. All
// definitions are read-only, so independent runs may step concurrently.
package systems

import (
	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/receptors"
)

// Composition selects how simultaneous interventions on one target combine.
type Composition uint8

const (
	// CompositionAdditive sums every contribution.
	CompositionAdditive Composition = iota
	// CompositionSaturating unions fractional effects per target and sign,
	// so stacking doses approaches the largest single gain.
	CompositionSaturating
)

// ParseComposition maps "saturating" to CompositionSaturating and anything
// else to CompositionAdditive.
func ParseComposition(s string) Composition {
	if s == "saturating" {
		return CompositionSaturating
	}
	return CompositionAdditive
}

// String implements fmt.Stringer.
func (c Composition) String() string {
	if c == CompositionSaturating {
		return "saturating"
	}
	return "additive"
}

// Options configures a Step call.
type Options struct {
	Adjustments         *components.Adjustments
	Composition         Composition
	MaxInterventionFlux float64 // |flux| cap per target; 0 disables
	Debug               bool    // fill State.Debug
}

// Step advances st from t to t+dt.
//
// A non-positive tau is replaced by dt, which relaxes the key onto its
// setpoint in a single step. Keys present in st but absent from the catalog
// are carried over unchanged.
func Step(
	st components.State,
	t, dt float64,
	ctx components.Context,
	signals []components.SignalDefinition,
	aux []components.AuxiliaryDefinition,
	resolver EffectResolver,
	interventions []components.Intervention,
	opts Options,
) components.State {
	adj := opts.Adjustments

	var eff Effects
	if resolver != nil {
		eff = resolver.Resolve(t, ctx, interventions, st, adj)
	}

	next := components.NewState(len(st.Signals), len(st.Auxiliary))
	for k, v := range st.Signals {
		next.Signals[k] = v
	}
	for k, v := range st.Auxiliary {
		next.Auxiliary[k] = v
	}

	var dbg *components.StepDebug
	if opts.Debug {
		dbg = &components.StepDebug{Terms: make(map[string]components.TermBreakdown, len(signals)+len(aux))}
	}

	ev := evaluator{st: st, ctx: ctx, adj: adj, eff: &eff}

	for i := range signals {
		d := &signals[i]
		cur := st.Signals[d.Key]
		bl := adj.Baseline(d.Key)

		var terms components.TermBreakdown
		ev.relax(&terms, d.Dynamics, cur, ctx.WithPhaseShift(bl.PhaseShiftMin), bl.Amplitude, dt)
		terms.Production = ev.production(d.Dynamics.Production)
		terms.Clearance = ev.clearance(d.Dynamics.Clearance, cur)
		terms.Coupling = ev.couplings(d.Dynamics.Couplings) + ev.injected(adj.CouplingsFor(d.Key))
		terms.Intervention = interventionFlux(eff.Contributions[d.Key], opts)
		terms.Derivative = terms.Relaxation + terms.Production - terms.Clearance + terms.Coupling + terms.Intervention

		v, clamped := d.Bounds.Clamp(cur + terms.Derivative*dt)
		next.Signals[d.Key] = v
		record(dbg, d.Key, terms, clamped)
	}

	for i := range aux {
		d := &aux[i]
		cur := st.Auxiliary[d.Key]

		var terms components.TermBreakdown
		var raw float64
		switch {
		case d.Static:
			raw = d.Initial.Resolve(ctx) + adj.TargetDelta(d.Kind, d.Key)
			terms.Setpoint = raw
		case d.Adaptation != nil:
			r0 := d.Initial.Resolve(ctx) + adj.TargetDelta(d.Kind, d.Key)
			terms.Setpoint = r0
			terms.Derivative = receptors.Adapt(cur, eff.Occupancy[d.Key], d.Adaptation.KUp, d.Adaptation.KDown, r0)
			raw = cur + terms.Derivative*dt
		default:
			ev.relax(&terms, d.Dynamics, cur, ctx, 0, dt)
			terms.Production = ev.production(d.Dynamics.Production)
			terms.Clearance = ev.clearance(d.Dynamics.Clearance, cur)
			terms.Derivative = terms.Relaxation + terms.Production - terms.Clearance
			raw = cur + terms.Derivative*dt
		}

		v, clamped := d.Bounds.Clamp(raw)
		next.Auxiliary[d.Key] = v
		record(dbg, d.Key, terms, clamped)
	}

	next.Debug = dbg
	return next
}

func record(dbg *components.StepDebug, key string, terms components.TermBreakdown, clamped bool) {
	if dbg == nil {
		return
	}
	terms.Clamped = clamped
	dbg.Terms[key] = terms
	if clamped {
		dbg.Clamped = append(dbg.Clamped, key)
	}
}

// InitializeZeroState returns a state with every catalog key set to 0.
func InitializeZeroState(signals []components.SignalDefinition, aux []components.AuxiliaryDefinition) components.State {
	st := components.NewState(len(signals), len(aux))
	for _, d := range signals {
		st.Signals[d.Key] = 0
	}
	for _, d := range aux {
		st.Auxiliary[d.Key] = 0
	}
	return st
}

// CreateInitialState seeds every key from its declared initial value, clamped
// to its bounds, without evaluating any flux. Static and adaptive binding sites start at their
// baseline shifted by adj, so the first step already sees condition effects.
func CreateInitialState(
	ctx components.Context,
	signals []components.SignalDefinition,
	aux []components.AuxiliaryDefinition,
	adj *components.Adjustments,
) components.State {
	st := components.NewState(len(signals), len(aux))
	for _, d := range signals {
		st.Signals[d.Key], _ = d.Bounds.Clamp(d.Initial.Resolve(ctx))
	}
	for _, d := range aux {
		v := d.Initial.Resolve(ctx)
		if d.Static || d.Adaptation != nil {
			v += adj.TargetDelta(d.Kind, d.Key)
		}
		st.Auxiliary[d.Key], _ = d.Bounds.Clamp(v)
	}
	return st
}

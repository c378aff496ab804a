// Package conditions folds enabled chronic conditions into one Adjustments
// value.
package conditions

import (
	"sort"

	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/receptors"
)

// defaultIntensity is used when no parameter value can be resolved.
const defaultIntensity = 1.0

// BuildAdjustments aggregates every enabled condition in snapshot.
// Contributions from different conditions are summed. Definitions are visited
// in slice order, so the result is deterministic for a fixed catalog.
func BuildAdjustments(defs []components.ConditionDef, snapshot components.ConditionState) *components.Adjustments {
	adj := components.NewAdjustments()
	for i := range defs {
		def := &defs[i]
		entry, ok := snapshot[def.Key]
		if !ok || !entry.Enabled {
			continue
		}
		apply(adj, def, entry)
	}
	return adj
}

// Intensity resolves the scale for a modifier declaring paramKey. It falls
// back to the condition's primary parameter and then to 1.
func Intensity(def *components.ConditionDef, entry components.ConditionEntry, paramKey string) float64 {
	if paramKey != "" {
		if v, ok := entry.Params[paramKey]; ok {
			return v
		}
	}
	if primary := def.PrimaryParam(); primary != "" {
		if v, ok := entry.Params[primary]; ok {
			return v
		}
	}
	return defaultIntensity
}

func apply(adj *components.Adjustments, def *components.ConditionDef, entry components.ConditionEntry) {
	for _, m := range def.ReceptorModifiers {
		s := Intensity(def, entry, m.ParamKey)
		if m.Density != 0 {
			delta := m.Density * s
			adj.ReceptorDensities[m.Receptor] += delta
			for _, g := range receptors.DensityGains(m.Receptor) {
				addAmplitude(adj, g.Signal, g.Gain*delta)
			}
		}
		if m.Sensitivity != 0 {
			delta := m.Sensitivity * s
			adj.ReceptorSensitivities[m.Receptor] += delta
			for _, g := range receptors.SensitivityGains(m.Receptor) {
				addAmplitude(adj, g.Signal, g.Gain*delta)
			}
		}
	}

	for _, m := range def.TransporterModifiers {
		adj.TransporterActivities[m.Target] += m.Activity * Intensity(def, entry, m.ParamKey)
	}
	for _, m := range def.EnzymeModifiers {
		adj.EnzymeActivities[m.Target] += m.Activity * Intensity(def, entry, m.ParamKey)
	}

	// The coarse amplitude term is skipped when the same effect is already
	// expressed mechanistically. Genetic mechanistic modifiers are
	// informational, so genetic conditions keep it.
	coarseAmplitude := !def.HasMechanisticModifiers() || def.Category == components.CategoryGenetic

	for _, m := range def.SignalModifiers {
		s := Intensity(def, entry, m.ParamKey)
		if m.AmplitudeGain != 0 && coarseAmplitude {
			addAmplitude(adj, m.Signal, m.AmplitudeGain*s)
		}
		if m.PhaseShiftMin != 0 {
			b := adj.Baselines[m.Signal]
			b.PhaseShiftMin += m.PhaseShiftMin * s
			adj.Baselines[m.Signal] = b
		}
		for _, source := range sortedKeys(m.CouplingGains) {
			gain := m.CouplingGains[source] * s
			c := components.CouplingAdjustment{
				Coupling:  components.Coupling{Source: source, Effect: components.Stimulate, Strength: gain},
				Condition: def.Key,
			}
			if gain < 0 {
				c.Effect = components.Inhibit
				c.Strength = -gain
			}
			c.Description = def.Key + ": " + source + " " + effectVerb(c.Effect) + " " + m.Signal
			adj.Couplings[m.Signal] = append(adj.Couplings[m.Signal], c)
		}
	}
}

func addAmplitude(adj *components.Adjustments, signal string, delta float64) {
	b := adj.Baselines[signal]
	b.Amplitude += delta
	adj.Baselines[signal] = b
}

func effectVerb(e components.CouplingEffect) string {
	if e == components.Inhibit {
		return "inhibits"
	}
	return "stimulates"
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package catalog holds the signal, auxiliary, condition and intervention
// definitions the engine interprets. A Registry is built once and treated as
// read-only afterwards; it is safe to share between goroutines.
package catalog

import (
	"github.com/google/uuid"

	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/kinetics"
)

// Registry indexes definitions by key while preserving catalog order.
type Registry struct {
	Signals       []components.SignalDefinition
	Auxiliary     []components.AuxiliaryDefinition
	Conditions    []components.ConditionDef
	Interventions []InterventionDef

	signalIdx       map[string]int
	auxIdx          map[string]int
	conditionIdx    map[string]int
	interventionIdx map[string]int
}

// New builds a Registry from explicit definitions. Later duplicates of a key
// shadow earlier ones in lookups.
func New(signals []components.SignalDefinition, aux []components.AuxiliaryDefinition,
	conditions []components.ConditionDef, interventions []InterventionDef) *Registry {
	r := &Registry{
		Signals:         signals,
		Auxiliary:       aux,
		Conditions:      conditions,
		Interventions:   interventions,
		signalIdx:       make(map[string]int, len(signals)),
		auxIdx:          make(map[string]int, len(aux)),
		conditionIdx:    make(map[string]int, len(conditions)),
		interventionIdx: make(map[string]int, len(interventions)),
	}
	for i, d := range signals {
		r.signalIdx[d.Key] = i
	}
	for i, d := range aux {
		r.auxIdx[d.Key] = i
	}
	for i, d := range conditions {
		r.conditionIdx[d.Key] = i
	}
	for i, d := range interventions {
		r.interventionIdx[d.Key] = i
	}
	return r
}

// Default returns the built-in catalog.
func Default() *Registry {
	return New(defaultSignals(), defaultAuxiliary(), defaultConditions(), defaultInterventions())
}

// Signal looks up a signal definition.
func (r *Registry) Signal(key string) (*components.SignalDefinition, bool) {
	i, ok := r.signalIdx[key]
	if !ok {
		return nil, false
	}
	return &r.Signals[i], true
}

// Aux looks up an auxiliary definition.
func (r *Registry) Aux(key string) (*components.AuxiliaryDefinition, bool) {
	i, ok := r.auxIdx[key]
	if !ok {
		return nil, false
	}
	return &r.Auxiliary[i], true
}

// Condition looks up a condition definition.
func (r *Registry) Condition(key string) (*components.ConditionDef, bool) {
	i, ok := r.conditionIdx[key]
	if !ok {
		return nil, false
	}
	return &r.Conditions[i], true
}

// Intervention looks up an intervention template.
func (r *Registry) Intervention(key string) (*InterventionDef, bool) {
	i, ok := r.interventionIdx[key]
	if !ok {
		return nil, false
	}
	return &r.Interventions[i], true
}

// SignalKeys returns signal keys in catalog order.
func (r *Registry) SignalKeys() []string {
	keys := make([]string, len(r.Signals))
	for i, d := range r.Signals {
		keys[i] = d.Key
	}
	return keys
}

// DefaultConditionState returns every condition disabled at its default parameters.
func (r *Registry) DefaultConditionState() components.ConditionState {
	s := make(components.ConditionState, len(r.Conditions))
	for _, d := range r.Conditions {
		s[d.Key] = components.ConditionEntry{Params: d.DefaultParams()}
	}
	return s
}

// Dose describes one requested intervention.
type Dose struct {
	ID        string
	Key       string
	Start     float64
	Duration  float64 // 0 selects the template default
	Intensity float64 // 0 selects the template default
	Params    map[string]float64
}

// Meal parameters that override the template meal.
const (
	ParamSugar         = "sugar_g"
	ParamStarch        = "starch_g"
	ParamFat           = "fat_g"
	ParamFiber         = "fiber_g"
	ParamProtein       = "protein_g"
	ParamGlycemicIndex = "glycemic_index"
)

// Instantiate builds an Intervention from its template. The second result is
// false when key is not in the catalog. A missing ID is filled with a random UUID.
func (r *Registry) Instantiate(d Dose) (components.Intervention, bool) {
	def, ok := r.Intervention(d.Key)
	if !ok {
		return components.Intervention{}, false
	}

	iv := components.Intervention{
		ID:           d.ID,
		Key:          d.Key,
		Start:        d.Start,
		Duration:     d.Duration,
		Intensity:    d.Intensity,
		Params:       make(map[string]float64, len(d.Params)),
		Pharmacology: clonePharmacology(def.Pharmacology),
	}
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.Duration <= 0 {
		iv.Duration = def.DefaultDuration
	}
	if iv.Intensity <= 0 {
		iv.Intensity = def.DefaultIntensity
	}
	for k, v := range d.Params {
		iv.Params[k] = v
	}
	if def.Meal != nil {
		iv.Meal = mealWithOverrides(*def.Meal, iv.Params)
	}
	return iv, true
}

func mealWithOverrides(m kinetics.MealProfile, params map[string]float64) *kinetics.MealProfile {
	fields := []struct {
		key string
		dst *float64
	}{
		{ParamSugar, &m.SugarGrams},
		{ParamStarch, &m.StarchGrams},
		{ParamFat, &m.FatGrams},
		{ParamFiber, &m.FiberGrams},
		{ParamProtein, &m.ProteinGrams},
		{ParamGlycemicIndex, &m.GlycemicIndex},
	}
	for _, f := range fields {
		if v, ok := params[f.key]; ok {
			*f.dst = v
		}
	}
	return &m
}

func clonePharmacology(p components.PharmacologyDef) components.PharmacologyDef {
	effects := make([]components.PDEffect, len(p.Effects))
	copy(effects, p.Effects)
	p.Effects = effects
	return p
}

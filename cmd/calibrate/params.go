package main

import (
	"github.com/pthm-cable/physim/components"
)

// ParamSpec defines a single fitted parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting value
}

// ParamVector holds the fitted PK parameters in a fixed order:
// absorption half-life, elimination half-life, lag. All in minutes.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector seeds the search from an intervention's catalog PK.
func NewParamVector(pk components.PKSpec) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "absorption_half_life_min", Min: 1, Max: 240, Default: pk.AbsorptionHalfLifeMin},
			{Name: "half_life_min", Min: 5, Max: 4320, Default: pk.HalfLifeMin},
			{Name: "lag_min", Min: 0, Max: 120, Default: pk.LagMin},
		},
	}
	// Catalog values outside the search box start from its midpoint.
	for i, spec := range pv.Specs {
		if spec.Default < spec.Min || spec.Default > spec.Max {
			pv.Specs[i].Default = (spec.Min + spec.Max) / 2
		}
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the starting parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToPK returns pk with the clamped parameter values substituted.
func (pv *ParamVector) ApplyToPK(pk components.PKSpec, values []float64) components.PKSpec {
	clamped := pv.Clamp(values)
	pk.AbsorptionHalfLifeMin = clamped[0]
	pk.HalfLifeMin = clamped[1]
	pk.LagMin = clamped[2]
	return pk
}

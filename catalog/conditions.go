package catalog

import "github.com/pthm-cable/physim/components"

// Condition keys of the default catalog.
const (
	ConditionADHD       = "adhd"
	ConditionCOMT       = "comt"
	ConditionMAOA       = "maoa"
	ConditionDepression = "depression"
	ConditionInsomnia   = "insomnia"
)

// Condition parameter keys.
const (
	ParamSeverity = "severity"
	ParamGenotype = "genotype"
)

var severityParam = components.ConditionParam{Key: ParamSeverity, Label: "Severity", Min: 0, Max: 1, Default: 0.5}

// genotypeParam runs from -1 (low-activity alleles) to +1 (high-activity alleles).
var genotypeParam = components.ConditionParam{Key: ParamGenotype, Label: "Genotype", Min: -1, Max: 1, Default: 0}

func defaultConditions() []components.ConditionDef {
	return []components.ConditionDef{
		{
			Key:      ConditionADHD,
			Label:    "ADHD",
			Category: components.CategoryClinical,
			Params:   []components.ConditionParam{severityParam},
			ReceptorModifiers: []components.ReceptorModifier{
				{Receptor: D2, Density: -0.2, ParamKey: ParamSeverity},
			},
			TransporterModifiers: []components.ActivityModifier{
				{Target: DAT, Activity: 0.3, ParamKey: ParamSeverity},
				{Target: NET, Activity: 0.2, ParamKey: ParamSeverity},
			},
			SignalModifiers: []components.SignalModifier{
				{Signal: Dopamine, AmplitudeGain: -0.2, ParamKey: ParamSeverity},
				{Signal: Melatonin, PhaseShiftMin: 60, ParamKey: ParamSeverity},
			},
		},
		{
			// Val158Met: negative genotype is Met/Met (slow COMT), positive
			// is Val/Val (fast COMT).
			Key:      ConditionCOMT,
			Label:    "COMT Val158Met",
			Category: components.CategoryGenetic,
			Params:   []components.ConditionParam{genotypeParam},
			EnzymeModifiers: []components.ActivityModifier{
				{Target: COMT, Activity: 1.0, ParamKey: ParamGenotype},
			},
			SignalModifiers: []components.SignalModifier{
				{Signal: Dopamine, AmplitudeGain: -0.25, ParamKey: ParamGenotype},
			},
		},
		{
			Key:      ConditionMAOA,
			Label:    "MAOA activity variant",
			Category: components.CategoryGenetic,
			Params:   []components.ConditionParam{genotypeParam},
			EnzymeModifiers: []components.ActivityModifier{
				{Target: MAOA, Activity: 0.8, ParamKey: ParamGenotype},
			},
			SignalModifiers: []components.SignalModifier{
				{Signal: Serotonin, AmplitudeGain: -0.2, ParamKey: ParamGenotype},
				{Signal: Norepinephrine, AmplitudeGain: -0.1, ParamKey: ParamGenotype},
			},
		},
		{
			Key:      ConditionDepression,
			Label:    "Major depression",
			Category: components.CategoryClinical,
			Params:   []components.ConditionParam{severityParam},
			ReceptorModifiers: []components.ReceptorModifier{
				{Receptor: HT1A, Density: 0.2, Sensitivity: 0.1, ParamKey: ParamSeverity},
			},
			TransporterModifiers: []components.ActivityModifier{
				{Target: SERT, Activity: 0.2, ParamKey: ParamSeverity},
			},
			SignalModifiers: []components.SignalModifier{
				{Signal: Serotonin, AmplitudeGain: -0.2, ParamKey: ParamSeverity},
				{
					Signal:        Cortisol,
					PhaseShiftMin: -30,
					CouplingGains: map[string]float64{Norepinephrine: 0.0002},
					ParamKey:      ParamSeverity,
				},
			},
		},
		{
			Key:      ConditionInsomnia,
			Label:    "Insomnia",
			Category: components.CategoryClinical,
			Params:   []components.ConditionParam{severityParam},
			SignalModifiers: []components.SignalModifier{
				{Signal: Melatonin, AmplitudeGain: -0.3, PhaseShiftMin: 45, ParamKey: ParamSeverity},
				{Signal: Cortisol, AmplitudeGain: 0.1, ParamKey: ParamSeverity},
				{Signal: Adenosine, CouplingGains: map[string]float64{Cortisol: -0.0005}, ParamKey: ParamSeverity},
			},
		},
	}
}

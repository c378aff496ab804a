package catalog

import (
	"github.com/pthm-cable/physim/components"
)

// Signal keys of the default catalog.
const (
	Dopamine       = "dopamine"
	Serotonin      = "serotonin"
	Norepinephrine = "norepinephrine"
	GABA           = "gaba"
	Glutamate      = "glutamate"
	Cortisol       = "cortisol"
	Melatonin      = "melatonin"
	Adenosine      = "adenosine"
	Glucose        = "glucose"
	Insulin        = "insulin"
	Ethanol        = "ethanol"
	HeartRate      = "heartRate"
)

// Rhythm parameters shared by setpoints and initial values.
const (
	cortisolMesor     = 10.0
	cortisolAmplitude = 6.0
	cortisolPeak      = 480.0

	melatoninBase = 5.0
	melatoninPeak = 180.0
	melatoninRise = 60.0
)

// defaultSignals is the displayed signal set. Every production and clearance
// pair is balanced so each signal rests at its setpoint mesor with all
// activity indices at 1.
func defaultSignals() []components.SignalDefinition {
	return []components.SignalDefinition{
		{
			Key:     Dopamine,
			Label:   "Dopamine",
			Unit:    "nM",
			Bounds:  components.Bounds{Min: 0, Max: 500},
			Initial: components.Constant(50),
			Dynamics: components.Dynamics{
				Setpoint:   cosinor(50, 5, 600),
				Tau:        20,
				Production: []components.ProductionTerm{{Source: components.SourceConstant, Coefficient: 1.0}},
				Clearance: []components.ClearanceTerm{
					components.EnzymeClearance(0.01, COMT),
					components.EnzymeClearance(0.01, DAT),
				},
			},
		},
		{
			Key:     Serotonin,
			Label:   "Serotonin",
			Unit:    "nM",
			Bounds:  components.Bounds{Min: 0, Max: 400},
			Initial: components.Constant(100),
			Dynamics: components.Dynamics{
				Setpoint:   cosinor(100, 10, 720),
				Tau:        30,
				Production: []components.ProductionTerm{{Source: components.SourceConstant, Coefficient: 2.0}},
				Clearance: []components.ClearanceTerm{
					components.EnzymeClearance(0.01, MAOA),
					components.EnzymeClearance(0.01, SERT),
				},
			},
		},
		{
			Key:     Norepinephrine,
			Label:   "Norepinephrine",
			Unit:    "pg/mL",
			Bounds:  components.Bounds{Min: 0, Max: 1500},
			Initial: components.Constant(300),
			Dynamics: components.Dynamics{
				Setpoint: cosinor(300, 60, 540),
				Tau:      30,
				Production: []components.ProductionTerm{
					{Source: Dopamine, Coefficient: 0.06},
					{Source: components.SourceConstant, Coefficient: -0.2},
				},
				Clearance: []components.ClearanceTerm{
					components.EnzymeClearance(0.005, NET),
					components.EnzymeClearance(0.005, MAOA),
				},
				Couplings: []components.Coupling{
					{Source: Cortisol, Effect: components.Stimulate, Strength: 0.02},
				},
			},
		},
		{
			Key:     GABA,
			Label:   "GABA",
			Unit:    "µM",
			Bounds:  components.Bounds{Min: 0, Max: 5},
			Initial: components.Constant(1),
			Dynamics: components.Dynamics{
				Setpoint: func(ctx components.Context, _ components.State) float64 {
					if ctx.IsAsleep {
						return 1.2
					}
					return 1
				},
				Tau: 30,
			},
		},
		{
			Key:     Glutamate,
			Label:   "Glutamate",
			Unit:    "µM",
			Bounds:  components.Bounds{Min: 0, Max: 30},
			Initial: components.Constant(8),
			Dynamics: components.Dynamics{
				Setpoint:   cosinor(8, 1, 720),
				Tau:        30,
				Production: []components.ProductionTerm{{Source: components.SourceConstant, Coefficient: 0.05}},
				Couplings: []components.Coupling{
					{Source: GABA, Effect: components.Inhibit, Strength: 0.05},
				},
			},
		},
		{
			Key:     Cortisol,
			Label:   "Cortisol",
			Unit:    "µg/dL",
			Bounds:  components.Bounds{Min: 0, Max: 60},
			Initial: fromRhythm(Cortisol, cortisolMesor, cortisolAmplitude, cortisolPeak),
			Dynamics: components.Dynamics{
				Setpoint: cosinor(cortisolMesor, cortisolAmplitude, cortisolPeak),
				Tau:      60,
			},
		},
		{
			Key:    Melatonin,
			Label:  "Melatonin",
			Unit:   "pg/mL",
			Bounds: components.Bounds{Min: 0, Max: 300},
			Initial: components.InitialValue{
				Value: melatoninBase,
				FromContext: func(ctx components.Context) float64 {
					return melatoninBase + melatoninRise*nightBump(ctx.CircadianMinuteOfDay, melatoninPeak)
				},
			},
			Dynamics: components.Dynamics{
				Setpoint: func(ctx components.Context, _ components.State) float64 {
					return melatoninBase + melatoninRise*nightBump(ctx.CircadianMinuteOfDay, melatoninPeak)
				},
				Tau:        30,
				Production: []components.ProductionTerm{{Source: components.InterventionSource(InterventionMelatonin), Coefficient: 3}},
			},
		},
		{
			// Sleep pressure builds while awake and clears during sleep.
			Key:     Adenosine,
			Label:   "Adenosine",
			Unit:    "rel",
			Bounds:  components.Bounds{Min: 0, Max: 3},
			Initial: components.Constant(1),
			Dynamics: components.Dynamics{
				Tau:        1,
				Production: []components.ProductionTerm{{Source: components.SourceConstant, Coefficient: 0.0015, Transform: whileAwake}},
				Clearance: []components.ClearanceTerm{
					{Kind: components.ClearanceLinear, Rate: 0.001, Transform: sleepBoost(4)},
				},
			},
		},
		{
			Key:     Glucose,
			Label:   "Glucose",
			Unit:    "mg/dL",
			Bounds:  components.Bounds{Min: 20, Max: 600},
			Initial: fromBloodwork(Glucose, 90),
			Dynamics: components.Dynamics{
				Setpoint: constantSetpoint(90),
				Tau:      60,
				Production: []components.ProductionTerm{
					{Source: components.SourceConstant, Coefficient: 0.27},
					{Source: components.InterventionSource(InterventionMeal), Coefficient: 1},
				},
				Clearance: []components.ClearanceTerm{
					{Kind: components.ClearanceLinear, Rate: 0.003, Transform: relativeTo(Insulin, 10)},
				},
				Couplings: []components.Coupling{
					{Source: Ethanol, Effect: components.Inhibit, Strength: 5},
				},
			},
		},
		{
			Key:     Insulin,
			Label:   "Insulin",
			Unit:    "µU/mL",
			Bounds:  components.Bounds{Min: 0, Max: 300},
			Initial: fromBloodwork(Insulin, 10),
			Dynamics: components.Dynamics{
				Setpoint:   constantSetpoint(10),
				Tau:        20,
				Production: []components.ProductionTerm{{Source: Glucose, Coefficient: 0.01, Transform: above(90)}},
			},
		},
		{
			// Tracks the blood alcohol curve with a short lag.
			Key:     Ethanol,
			Label:   "Blood alcohol",
			Unit:    "g/dL",
			Bounds:  components.Bounds{Min: 0, Max: 0.5},
			Initial: components.Constant(0),
			Dynamics: components.Dynamics{
				Setpoint:   constantSetpoint(0),
				Tau:        2,
				Production: []components.ProductionTerm{{Source: components.InterventionSource(InterventionAlcohol), Coefficient: 0.5}},
			},
		},
		{
			Key:     HeartRate,
			Label:   "Heart rate",
			Unit:    "bpm",
			Bounds:  components.Bounds{Min: 30, Max: 200},
			Initial: components.Constant(65),
			Dynamics: components.Dynamics{
				Setpoint: func(ctx components.Context, _ components.State) float64 {
					hr := cosinorAt(ctx.CircadianMinuteOfDay, 65, 5, 900)
					if ctx.IsAsleep {
						hr -= 8
					}
					return hr
				},
				Tau:        10,
				Production: []components.ProductionTerm{{Source: components.SourceConstant, Coefficient: -1.5}},
				Couplings: []components.Coupling{
					{Source: Norepinephrine, Effect: components.Stimulate, Strength: 0.005},
				},
			},
		},
	}
}

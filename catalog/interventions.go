package catalog

import (
	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/kinetics"
)

// Intervention keys of the default catalog.
const (
	InterventionCaffeine        = "caffeine"
	InterventionMethylphenidate = "methylphenidate"
	InterventionSertraline      = "sertraline"
	InterventionMelatonin       = "melatonin"
	InterventionAlcohol         = "alcohol"
	InterventionMeal            = "meal"
)

// InterventionDef is the template an Intervention is instantiated from.
type InterventionDef struct {
	Key              string
	Label            string
	DefaultDuration  float64 // minutes the dose stays active
	DefaultIntensity float64
	Meal             *kinetics.MealProfile
	Pharmacology     components.PharmacologyDef
}

func defaultInterventions() []InterventionDef {
	return []InterventionDef{
		{
			Key:              InterventionCaffeine,
			Label:            "Caffeine 100 mg",
			DefaultDuration:  1440,
			DefaultIntensity: 1,
			Pharmacology: components.PharmacologyDef{
				PK: components.PKSpec{
					Model:                 components.PKOneCompartment,
					Bioavailability:       0.99,
					HalfLifeMin:           300,
					AbsorptionHalfLifeMin: 10,
					Vd:                    0.6,
					DoseMg:                100,
					MetabolizingEnzyme:    CYP1A2,
				},
				Effects: []components.PDEffect{
					{Target: Adenosine, Receptor: AdenosineA1, Mechanism: components.Antagonist, Kd: 2, Gain: 0.002},
					{Target: Dopamine, Mechanism: components.Agonist, EC50: 3, HillN: 1, IntrinsicEfficacy: 0.5, Gain: 0.3},
					{Target: HeartRate, Mechanism: components.Agonist, EC50: 4, HillN: 1, Gain: 0.4},
				},
			},
		},
		{
			Key:              InterventionMethylphenidate,
			Label:            "Methylphenidate IR 10 mg",
			DefaultDuration:  720,
			DefaultIntensity: 1,
			Pharmacology: components.PharmacologyDef{
				PK: components.PKSpec{
					Model:                 components.PKOneCompartment,
					Bioavailability:       0.3,
					HalfLifeMin:           180,
					AbsorptionHalfLifeMin: 30,
					LagMin:                10,
					Vd:                    2.0,
					DoseMg:                10,
				},
				Effects: []components.PDEffect{
					{Target: Dopamine, Receptor: DAT, Mechanism: components.Agonist, EC50: 0.008, HillN: 1.5, Gain: 1.5},
					{Target: Norepinephrine, Receptor: NET, Mechanism: components.Agonist, EC50: 0.01, HillN: 1.5, Gain: 4},
					{Target: Dopamine, Receptor: D2, Mechanism: components.Antagonist, Kd: 0.01, Gain: 0.3},
				},
			},
		},
		{
			Key:              InterventionSertraline,
			Label:            "Sertraline 50 mg",
			DefaultDuration:  2880,
			DefaultIntensity: 1,
			Pharmacology: components.PharmacologyDef{
				PK: components.PKSpec{
					Model:                 components.PKTwoCompartment,
					Bioavailability:       0.44,
					HalfLifeMin:           1560,
					AbsorptionHalfLifeMin: 120,
					Vd:                    20,
					DoseMg:                50,
					K12:                   0.002,
					K21:                   0.001,
				},
				Effects: []components.PDEffect{
					{Target: Serotonin, Receptor: SERT, Mechanism: components.Agonist, Kd: 0.01, Tau: 3, Gain: 2},
					// Somatodendritic autoreceptor feedback.
					{Target: Serotonin, Receptor: HT1A, Mechanism: components.Antagonist, Kd: 0.02, Gain: 0.8},
				},
			},
		},
		{
			Key:              InterventionMelatonin,
			Label:            "Melatonin 3 mg",
			DefaultDuration:  480,
			DefaultIntensity: 1,
			Pharmacology: components.PharmacologyDef{
				PK: components.PKSpec{
					Model:                 components.PKOneCompartment,
					HalfLifeMin:           45,
					AbsorptionHalfLifeMin: 15,
					DoseMg:                3,
				},
				Effects: []components.PDEffect{
					{Target: HeartRate, Receptor: MT1, Mechanism: components.Antagonist, EC50: 0.5, HillN: 1, Gain: 0.3},
				},
			},
		},
		{
			Key:              InterventionAlcohol,
			Label:            "Alcohol, two standard drinks",
			DefaultDuration:  720,
			DefaultIntensity: 1,
			Pharmacology: components.PharmacologyDef{
				PK: components.PKSpec{
					Model:  components.PKEthanol,
					DoseMg: 28, // grams of ethanol
				},
				Effects: []components.PDEffect{
					{Target: GABA, Receptor: GABAA, Mechanism: components.Agonist, EC50: 0.05, HillN: 2, Gain: 0.02},
					{Target: Glutamate, Mechanism: components.Antagonist, EC50: 0.08, HillN: 2, Gain: 0.2},
					{Target: HeartRate, Mechanism: components.Agonist, EC50: 0.08, HillN: 1, Gain: 0.5},
				},
			},
		},
		{
			Key:              InterventionMeal,
			Label:            "Mixed meal",
			DefaultDuration:  360,
			DefaultIntensity: 1,
			Meal: &kinetics.MealProfile{
				SugarGrams:    20,
				StarchGrams:   40,
				FatGrams:      15,
				FiberGrams:    5,
				ProteinGrams:  25,
				GlycemicIndex: 70,
			},
			Pharmacology: components.PharmacologyDef{
				PK: components.PKSpec{Model: components.PKCarbohydrate},
			},
		},
	}
}

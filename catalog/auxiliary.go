package catalog

import "github.com/pthm-cable/physim/components"

// Binding-site and pool keys of the default catalog.
const (
	COMT   = "COMT"
	MAOA   = "MAOA"
	CYP1A2 = "CYP1A2"

	DAT  = "DAT"
	NET  = "NET"
	SERT = "SERT"

	D1          = "D1"
	D2          = "D2"
	HT1A        = "5HT1A"
	GABAA       = "GABAA"
	MT1         = "MT1"
	AdenosineA1 = "A1"

	DopamineVesicles = "dopamineVesicles"
	CaffeineExposure = "caffeineExposure"
)

func defaultAuxiliary() []components.AuxiliaryDefinition {
	return []components.AuxiliaryDefinition{
		components.CreateStaticAux(COMT, components.TargetEnzyme),
		components.CreateStaticAux(MAOA, components.TargetEnzyme),
		components.CreateStaticAux(CYP1A2, components.TargetEnzyme),

		components.CreateStaticAux(DAT, components.TargetTransporter),
		components.CreateStaticAux(NET, components.TargetTransporter),
		components.CreateStaticAux(SERT, components.TargetTransporter),

		components.CreateStaticAux(D1, components.TargetReceptor),
		components.CreateAdaptiveReceptor(D2, 0.002, 0.004),
		components.CreateAdaptiveReceptor(HT1A, 0.0005, 0.002),
		components.CreateStaticAux(GABAA, components.TargetReceptor),
		components.CreateStaticAux(MT1, components.TargetReceptor),
		components.CreateAdaptiveReceptor(AdenosineA1, 0.001, 0.001),

		{
			// Releasable dopamine store, drawn down when dopamine runs high.
			Key:     DopamineVesicles,
			Kind:    components.TargetPool,
			Bounds:  components.Bounds{Min: 0, Max: 2},
			Initial: components.Constant(1),
			Dynamics: components.Dynamics{
				Setpoint:   constantSetpoint(1),
				Tau:        120,
				Production: []components.ProductionTerm{{Source: components.SourceConstant, Coefficient: 0.002}},
				Clearance: []components.ClearanceTerm{
					{Kind: components.ClearanceLinear, Rate: 0.002, Transform: relativeTo(Dopamine, 50)},
				},
			},
		},
		{
			// Cumulative caffeine exposure, mg·min/L.
			Key:     CaffeineExposure,
			Kind:    components.TargetPool,
			Bounds:  components.Bounds{Min: 0, Max: 1e6},
			Initial: components.Constant(0),
			Dynamics: components.Dynamics{
				Tau:        1,
				Production: []components.ProductionTerm{{Source: components.InterventionSource(InterventionCaffeine), Coefficient: 1}},
			},
		},
	}
}

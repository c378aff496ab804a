package components

import "github.com/pthm-cable/physim/kinetics"

// Mechanism is the direction of a pharmacodynamic effect.
type Mechanism uint8

const (
	Agonist Mechanism = iota
	Antagonist
)

// String implements fmt.Stringer.
func (m Mechanism) String() string {
	if m == Antagonist {
		return "antagonist"
	}
	return "agonist"
}

// Sign returns +1 for agonists and -1 for antagonists.
func (m Mechanism) Sign() float64 {
	if m == Antagonist {
		return -1
	}
	return 1
}

// PKModel selects the time-course used for an intervention.
type PKModel uint8

const (
	PKOneCompartment PKModel = iota
	PKTwoCompartment
	PKMichaelisMenten
	PKEthanol
	PKCarbohydrate
)

var pkModelNames = map[PKModel]string{
	PKOneCompartment:  "one-compartment",
	PKTwoCompartment:  "two-compartment",
	PKMichaelisMenten: "michaelis-menten",
	PKEthanol:         "ethanol",
	PKCarbohydrate:    "carbohydrate",
}

// String implements fmt.Stringer.
func (m PKModel) String() string {
	if s, ok := pkModelNames[m]; ok {
		return s
	}
	return "unknown"
}

// PKSpec parameterizes the absorption and elimination of one intervention.
// Rates are per minute, volumes in L/kg, doses in mg (grams for ethanol).
type PKSpec struct {
	Model                 PKModel
	Bioavailability       float64 // F, 0..1; 0 is read as 1
	HalfLifeMin           float64
	AbsorptionHalfLifeMin float64
	LagMin                float64
	Vd                    float64 // 0 selects the peak-normalized curve
	DoseMg                float64

	// Two-compartment distribution rates.
	K12, K21 float64

	// Saturable elimination, mg/L/min and mg/L.
	Vmax, Km float64

	// MetabolizingEnzyme scales the elimination rate by that enzyme's activity.
	MetabolizingEnzyme string
}

// PDEffect is one receptor-mediated action of an intervention on a signal.
type PDEffect struct {
	Target            string // signal or auxiliary key receiving the flux
	Receptor          string // binding-site auxiliary; empty if none is modeled
	Mechanism         Mechanism
	EC50              float64
	Kd                float64
	HillN             float64
	IntrinsicEfficacy float64 // 0 is read as 1
	Tau               float64 // operational efficacy; 0 selects the Hill curve
	Gain              float64 // flux per minute at full response

	// BlockedBy attenuates this effect by another intervention's exposure.
	BlockedBy *Blockade
}

// BlockadeMode selects how an antagonist reduces an effect.
type BlockadeMode uint8

const (
	// Competitive raises the apparent Kd, so enough agonist overcomes it.
	Competitive BlockadeMode = iota
	// NonCompetitive lowers the maximal response regardless of agonist level.
	NonCompetitive
)

// Blockade names the intervention whose summed exposure antagonizes an
// effect, with its inhibition constant in the same units as that exposure.
type Blockade struct {
	Key  string
	Ki   float64
	Mode BlockadeMode
}

// PharmacologyDef bundles the PK spec with its PD effects.
type PharmacologyDef struct {
	PK      PKSpec
	Effects []PDEffect
}

// Intervention is one applied dose. Instances are immutable once created and
// are active on [Start, Start+Duration).
type Intervention struct {
	ID           string
	Key          string
	Start        float64
	Duration     float64
	Intensity    float64
	Params       map[string]float64
	Meal         *kinetics.MealProfile // carbohydrate model only
	Pharmacology PharmacologyDef
}

// Active reports whether the intervention applies at t.
func (iv Intervention) Active(t float64) bool {
	return t >= iv.Start && t < iv.Start+iv.Duration
}

// Elapsed returns minutes since the start.
func (iv Intervention) Elapsed(t float64) float64 {
	return t - iv.Start
}

// Param returns a named parameter, or def when it is not set.
func (iv Intervention) Param(key string, def float64) float64 {
	if v, ok := iv.Params[key]; ok {
		return v
	}
	return def
}

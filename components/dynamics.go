package components

import "strings"

// SourceConstant is the production source that always reads as 1.
const SourceConstant = "constant"

// interventionSourcePrefix marks a source that reads the summed PK exposure
// of the active interventions with the given key.
const interventionSourcePrefix = "intervention:"

// InterventionSource returns the source key for an intervention's exposure.
func InterventionSource(key string) string {
	return interventionSourcePrefix + key
}

// ParseInterventionSource reports whether source names an intervention
// exposure and returns the intervention key.
func ParseInterventionSource(source string) (string, bool) {
	if !strings.HasPrefix(source, interventionSourcePrefix) {
		return "", false
	}
	return source[len(interventionSourcePrefix):], true
}

// SetpointFunc evaluates the target value of a key absent any flux.
type SetpointFunc func(ctx Context, st State) float64

// Transform reshapes a source value before it is scaled by a coefficient or rate.
type Transform func(value float64, st State, ctx Context) float64

// InitialValue seeds a key at time zero: FromContext wins when set.
type InitialValue struct {
	Value       float64
	FromContext func(ctx Context) float64
}

// Constant is an InitialValue that ignores the context.
func Constant(v float64) InitialValue {
	return InitialValue{Value: v}
}

// Resolve returns the seed value for ctx.
func (iv InitialValue) Resolve(ctx Context) float64 {
	if iv.FromContext != nil {
		return iv.FromContext(ctx)
	}
	return iv.Value
}

// ProductionTerm contributes Coefficient × Transform(source) to the derivative.
type ProductionTerm struct {
	Source      string
	Coefficient float64
	Transform   Transform
}

// ClearanceKind tags the clearance variants.
type ClearanceKind uint8

const (
	ClearanceLinear ClearanceKind = iota
	// ClearanceEnzymeDependent scales Rate by the current activity of Enzyme,
	// which may name any enzyme or transporter auxiliary.
	ClearanceEnzymeDependent
)

// ClearanceTerm removes Rate × value × Transform(value) per minute.
type ClearanceTerm struct {
	Kind      ClearanceKind
	Rate      float64
	Enzyme    string
	Transform Transform
}

// LinearClearance builds a ClearanceLinear term.
func LinearClearance(rate float64) ClearanceTerm {
	return ClearanceTerm{Kind: ClearanceLinear, Rate: rate}
}

// EnzymeClearance builds a ClearanceEnzymeDependent term.
func EnzymeClearance(rate float64, enzyme string) ClearanceTerm {
	return ClearanceTerm{Kind: ClearanceEnzymeDependent, Rate: rate, Enzyme: enzyme}
}

// CouplingEffect is the sign of a coupling.
type CouplingEffect uint8

const (
	Stimulate CouplingEffect = iota
	Inhibit
)

// Sign returns +1 for Stimulate and -1 for Inhibit.
func (e CouplingEffect) Sign() float64 {
	if e == Inhibit {
		return -1
	}
	return 1
}

// Coupling contributes ±Strength × value(Source).
type Coupling struct {
	Source   string
	Effect   CouplingEffect
	Strength float64
}

// Dynamics is the declarative evolution law of one key.
type Dynamics struct {
	Setpoint   SetpointFunc // nil = no relaxation term
	Tau        float64      // minutes, must be > 0
	Production []ProductionTerm
	Clearance  []ClearanceTerm
	Couplings  []Coupling // ignored on auxiliaries
}

// Bounds is the closed interval a value is clamped to after each step.
type Bounds struct {
	Min, Max float64
}

// Clamp returns v limited to [Min, Max] and whether it had to be limited.
func (b Bounds) Clamp(v float64) (float64, bool) {
	if v < b.Min {
		return b.Min, true
	}
	if v > b.Max {
		return b.Max, true
	}
	return v, false
}

// SignalDefinition is the immutable description of a displayed signal.
type SignalDefinition struct {
	Key      string
	Label    string
	Unit     string
	Bounds   Bounds
	Initial  InitialValue
	Dynamics Dynamics
}

// TargetKind classifies auxiliaries.
type TargetKind uint8

const (
	TargetPool TargetKind = iota
	TargetReceptor
	TargetTransporter
	TargetEnzyme
)

// String implements fmt.Stringer.
func (k TargetKind) String() string {
	switch k {
	case TargetReceptor:
		return "receptor"
	case TargetTransporter:
		return "transporter"
	case TargetEnzyme:
		return "enzyme"
	default:
		return "pool"
	}
}

// AdaptationSpec opts a binding-site auxiliary into slow density adaptation.
type AdaptationSpec struct {
	KUp   float64 // recovery rate toward baseline, 1/min
	KDown float64 // occupancy-driven down-regulation rate, 1/min
}

// AuxiliaryDefinition is the immutable description of a hidden pool.
// Receptor, transporter and enzyme auxiliaries are Static (baseline plus the
// condition delta) unless Adaptation is set.
type AuxiliaryDefinition struct {
	Key        string
	Kind       TargetKind
	Static     bool
	Bounds     Bounds
	Initial    InitialValue
	Dynamics   Dynamics
	Adaptation *AdaptationSpec
}

// defaultActivityBounds limits activity indices to a non-negative range.
var defaultActivityBounds = Bounds{Min: 0, Max: 5}

// CreateStaticAux builds a non-adapting activity index with baseline 1.0.
func CreateStaticAux(key string, kind TargetKind) AuxiliaryDefinition {
	return AuxiliaryDefinition{
		Key:     key,
		Kind:    kind,
		Static:  true,
		Bounds:  defaultActivityBounds,
		Initial: Constant(1),
	}
}

// CreateAdaptiveReceptor builds a receptor density index with baseline 1.0
// that follows the adaptation law.
func CreateAdaptiveReceptor(key string, kUp, kDown float64) AuxiliaryDefinition {
	return AuxiliaryDefinition{
		Key:        key,
		Kind:       TargetReceptor,
		Bounds:     defaultActivityBounds,
		Initial:    Constant(1),
		Adaptation: &AdaptationSpec{KUp: kUp, KDown: kDown},
	}
}

package components

// ConditionCategory groups conditions by origin. Genetic conditions always
// apply their coarse amplitude gains.
type ConditionCategory uint8

const (
	CategoryClinical ConditionCategory = iota
	CategoryGenetic
	CategoryLifestyle
)

// String implements fmt.Stringer.
func (c ConditionCategory) String() string {
	switch c {
	case CategoryGenetic:
		return "genetic"
	case CategoryLifestyle:
		return "lifestyle"
	default:
		return "clinical"
	}
}

// ConditionParam is a user-adjustable parameter of a condition.
type ConditionParam struct {
	Key     string
	Label   string
	Min     float64
	Max     float64
	Default float64
}

// ReceptorModifier shifts a receptor's density and sensitivity by the
// declared magnitude times the value of ParamKey.
type ReceptorModifier struct {
	Receptor    string
	Density     float64
	Sensitivity float64
	ParamKey    string
}

// ActivityModifier shifts a transporter or enzyme activity index.
type ActivityModifier struct {
	Target   string
	Activity float64
	ParamKey string
}

// SignalModifier is the coarse per-signal path.
type SignalModifier struct {
	Signal        string
	AmplitudeGain float64
	PhaseShiftMin float64
	CouplingGains map[string]float64 // source signal -> signed strength
	ParamKey      string
}

// ConditionDef declares the chronic effects of one condition.
type ConditionDef struct {
	Key      string
	Label    string
	Category ConditionCategory
	Params   []ConditionParam

	ReceptorModifiers    []ReceptorModifier
	TransporterModifiers []ActivityModifier
	EnzymeModifiers      []ActivityModifier
	SignalModifiers      []SignalModifier
}

// HasMechanisticModifiers reports whether any receptor, transporter or enzyme
// modifier is declared.
func (d ConditionDef) HasMechanisticModifiers() bool {
	return len(d.ReceptorModifiers) > 0 || len(d.TransporterModifiers) > 0 || len(d.EnzymeModifiers) > 0
}

// PrimaryParam returns the key of the first declared parameter, or "".
func (d ConditionDef) PrimaryParam() string {
	if len(d.Params) == 0 {
		return ""
	}
	return d.Params[0].Key
}

// DefaultParams returns each declared parameter at its default value.
func (d ConditionDef) DefaultParams() map[string]float64 {
	out := make(map[string]float64, len(d.Params))
	for _, p := range d.Params {
		out[p.Key] = p.Default
	}
	return out
}

// ConditionEntry is the user-facing state of one condition.
type ConditionEntry struct {
	Enabled bool               `json:"enabled"`
	Params  map[string]float64 `json:"params,omitempty"`
}

// ConditionState is a snapshot of every condition's entry keyed by condition key.
type ConditionState map[string]ConditionEntry

// Clone returns a deep copy.
func (s ConditionState) Clone() ConditionState {
	out := make(ConditionState, len(s))
	for k, e := range s {
		params := make(map[string]float64, len(e.Params))
		for pk, pv := range e.Params {
			params[pk] = pv
		}
		out[k] = ConditionEntry{Enabled: e.Enabled, Params: params}
	}
	return out
}

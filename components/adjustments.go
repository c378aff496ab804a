package components

// BaselineAdjustment changes a signal's setpoint. Amplitude is a fractional
// gain on the setpoint (0.1 raises it by 10%); PhaseShiftMin delays the
// circadian clock the setpoint is evaluated on.
type BaselineAdjustment struct {
	Amplitude     float64
	PhaseShiftMin float64
}

// CouplingAdjustment is an extra coupling injected by a condition.
type CouplingAdjustment struct {
	Coupling
	Condition   string
	Description string
}

// Adjustments is the aggregated effect of every enabled condition.
// All maps are partial; missing entries read as zero deltas.
type Adjustments struct {
	Baselines             map[string]BaselineAdjustment
	Couplings             map[string][]CouplingAdjustment
	ReceptorDensities     map[string]float64
	ReceptorSensitivities map[string]float64
	TransporterActivities map[string]float64
	EnzymeActivities      map[string]float64
}

// NewAdjustments returns an empty, writable Adjustments.
func NewAdjustments() *Adjustments {
	return &Adjustments{
		Baselines:             make(map[string]BaselineAdjustment),
		Couplings:             make(map[string][]CouplingAdjustment),
		ReceptorDensities:     make(map[string]float64),
		ReceptorSensitivities: make(map[string]float64),
		TransporterActivities: make(map[string]float64),
		EnzymeActivities:      make(map[string]float64),
	}
}

// Baseline returns the baseline adjustment for a signal. Safe on nil.
func (a *Adjustments) Baseline(signal string) BaselineAdjustment {
	if a == nil {
		return BaselineAdjustment{}
	}
	return a.Baselines[signal]
}

// CouplingsFor returns the injected couplings for a signal. Safe on nil.
func (a *Adjustments) CouplingsFor(signal string) []CouplingAdjustment {
	if a == nil {
		return nil
	}
	return a.Couplings[signal]
}

// Sensitivity returns the receptor sensitivity delta. Safe on nil.
func (a *Adjustments) Sensitivity(receptor string) float64 {
	if a == nil {
		return 0
	}
	return a.ReceptorSensitivities[receptor]
}

// TargetDelta returns the density or activity delta for a binding-site
// auxiliary of the given kind. Pools have no delta. Safe on nil.
func (a *Adjustments) TargetDelta(kind TargetKind, key string) float64 {
	if a == nil {
		return 0
	}
	switch kind {
	case TargetReceptor:
		return a.ReceptorDensities[key]
	case TargetTransporter:
		return a.TransporterActivities[key]
	case TargetEnzyme:
		return a.EnzymeActivities[key]
	default:
		return 0
	}
}

// Activity returns the delta for an enzyme or transporter key, whichever map
// holds it. Safe on nil.
func (a *Adjustments) Activity(key string) float64 {
	if a == nil {
		return 0
	}
	if v, ok := a.EnzymeActivities[key]; ok {
		return v
	}
	return a.TransporterActivities[key]
}

// Package components defines the data model shared by the engine, the
// catalog and the scenario runner. Definitions are plain data read by one
// generic interpreter in package systems.
package components

// State is the complete simulated state at one instant.
// Signals are displayed quantities; Auxiliary holds hidden pools and
// receptor/transporter/enzyme activity indices.
type State struct {
	Signals   map[string]float64
	Auxiliary map[string]float64

	// Debug is filled only when the step was asked for a breakdown.
	Debug *StepDebug
}

// NewState allocates an empty state sized for the given key counts.
func NewState(numSignals, numAux int) State {
	return State{
		Signals:   make(map[string]float64, numSignals),
		Auxiliary: make(map[string]float64, numAux),
	}
}

// Clone returns a deep copy of the value maps. Debug is not copied.
func (s State) Clone() State {
	c := NewState(len(s.Signals), len(s.Auxiliary))
	for k, v := range s.Signals {
		c.Signals[k] = v
	}
	for k, v := range s.Auxiliary {
		c.Auxiliary[k] = v
	}
	return c
}

// Value resolves a key against signals, then auxiliaries.
// Unknown keys read as 0.
func (s State) Value(key string) float64 {
	if v, ok := s.Signals[key]; ok {
		return v
	}
	return s.Auxiliary[key]
}

// Lookup is Value with a presence flag.
func (s State) Lookup(key string) (float64, bool) {
	if v, ok := s.Signals[key]; ok {
		return v, true
	}
	v, ok := s.Auxiliary[key]
	return v, ok
}

// TermBreakdown holds the derivative contributions of one key for one step.
type TermBreakdown struct {
	Setpoint     float64
	Relaxation   float64
	Production   float64
	Clearance    float64
	Coupling     float64
	Intervention float64
	Derivative   float64
	Clamped      bool
}

// StepDebug is the per-step diagnostic breakdown. It is never read back by
// the engine.
type StepDebug struct {
	Terms   map[string]TermBreakdown
	Clamped []string // keys whose raw next value fell outside their bounds
}

package components

// Arm identifies one scenario arm. Arms are entities in the scenario world;
// each carries an Arm, a State and a Regimen.
type Arm struct {
	Index    int
	Name     string
	Baseline bool // reference arm for summary deltas
}

// Regimen is the chronic and acute setup of one arm.
// Adjustments is rebuilt whenever Conditions changes.
type Regimen struct {
	Conditions    ConditionState
	Interventions []Intervention
	Adjustments   *Adjustments
}

// ArmCounters accumulates per-arm diagnostics across a run.
type ArmCounters struct {
	Steps  int
	Clamps map[string]int // key -> steps on which the raw value left its bounds
}

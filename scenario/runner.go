// Package scenario runs several arms of one subject side by side. Each arm
// is an entity in an ECS world carrying its own state, conditions and
// interventions; arms never share writable state, so they step concurrently.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physim/catalog"
	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/conditions"
	"github.com/pthm-cable/physim/config"
	"github.com/pthm-cable/physim/systems"
	"github.com/pthm-cable/physim/telemetry"
)

var (
	ErrUnknownArm          = errors.New("unknown arm")
	ErrUnknownCondition    = errors.New("unknown condition")
	ErrUnknownIntervention = errors.New("unknown intervention")
)

// Runner owns the arms of one scenario and advances them in lockstep.
type Runner struct {
	cfg  *config.Config
	reg  *catalog.Registry
	opts systems.Options // Adjustments is filled per arm

	world     *ecs.World
	armMapper *ecs.Map4[
		components.Arm,
		components.State,
		components.Regimen,
		components.ArmCounters,
	]
	armFilter *ecs.Filter4[
		components.Arm,
		components.State,
		components.Regimen,
		components.ArmCounters,
	]
	armMap     *ecs.Map1[components.Arm]
	stateMap   *ecs.Map1[components.State]
	regimenMap *ecs.Map1[components.Regimen]
	counterMap *ecs.Map1[components.ArmCounters]

	arms    []ecs.Entity // config order
	byName  map[string]ecs.Entity
	pending map[string][]config.ConditionChange // sorted by At

	step     int
	parallel *parallelState
	tel      *telemetryState
}

// NewRunner validates the arms of cfg against reg and seeds every arm's
// initial state.
func NewRunner(cfg *config.Config, reg *catalog.Registry) (*Runner, error) {
	world := ecs.NewWorld()
	r := &Runner{
		cfg: cfg,
		reg: reg,
		opts: systems.Options{
			Composition:         systems.ParseComposition(cfg.Engine.Composition),
			MaxInterventionFlux: cfg.Engine.MaxInterventionFlux,
			Debug:               cfg.Engine.Debug || cfg.Telemetry.TraceInterval > 0,
		},
		world: world,
		armMapper: ecs.NewMap4[
			components.Arm,
			components.State,
			components.Regimen,
			components.ArmCounters,
		](world),
		armFilter: ecs.NewFilter4[
			components.Arm,
			components.State,
			components.Regimen,
			components.ArmCounters,
		](world),
		armMap:     ecs.NewMap1[components.Arm](world),
		stateMap:   ecs.NewMap1[components.State](world),
		regimenMap: ecs.NewMap1[components.Regimen](world),
		counterMap: ecs.NewMap1[components.ArmCounters](world),
		byName:     make(map[string]ecs.Entity, len(cfg.Arms)),
		pending:    make(map[string][]config.ConditionChange),
		parallel:   newParallelState(cfg.Engine.Workers),
	}

	ctx := r.contextAt(0)
	for i, ac := range cfg.Arms {
		regimen, err := r.buildRegimen(ac)
		if err != nil {
			return nil, fmt.Errorf("arm %q: %w", ac.Name, err)
		}

		arm := components.Arm{Index: i, Name: ac.Name, Baseline: ac.Baseline}
		st := systems.CreateInitialState(ctx, reg.Signals, reg.Auxiliary, regimen.Adjustments)
		counters := components.ArmCounters{Clamps: make(map[string]int)}

		e := r.armMapper.NewEntity(&arm, &st, &regimen, &counters)
		r.arms = append(r.arms, e)
		r.byName[ac.Name] = e
	}

	r.tel = newTelemetryState(cfg, reg)
	return r, nil
}

// buildRegimen resolves an arm's conditions, doses and scheduled changes.
func (r *Runner) buildRegimen(ac config.ArmConfig) (components.Regimen, error) {
	state, unknown := ac.ConditionState(r.reg.DefaultConditionState())
	if len(unknown) > 0 {
		return components.Regimen{}, fmt.Errorf("%w: %s", ErrUnknownCondition, unknown[0])
	}

	var ivs []components.Intervention
	for _, d := range ac.Interventions {
		iv, err := r.instantiate(d)
		if err != nil {
			return components.Regimen{}, err
		}
		ivs = append(ivs, iv)
	}

	changes := make([]config.ConditionChange, len(ac.Changes))
	copy(changes, ac.Changes)
	for _, ch := range changes {
		if _, ok := r.reg.Condition(ch.Condition); !ok {
			return components.Regimen{}, fmt.Errorf("%w: %s", ErrUnknownCondition, ch.Condition)
		}
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].At < changes[j].At })
	if len(changes) > 0 {
		r.pending[ac.Name] = changes
	}

	return components.Regimen{
		Conditions:    state,
		Interventions: ivs,
		Adjustments:   conditions.BuildAdjustments(r.reg.Conditions, state),
	}, nil
}

func (r *Runner) instantiate(d config.DoseConfig) (components.Intervention, error) {
	iv, ok := r.reg.Instantiate(catalog.Dose{
		ID:        d.ID,
		Key:       d.Key,
		Start:     d.Start,
		Duration:  d.Duration,
		Intensity: d.Intensity,
		Params:    d.Params,
	})
	if !ok {
		return components.Intervention{}, fmt.Errorf("%w: %s", ErrUnknownIntervention, d.Key)
	}
	return iv, nil
}

func (r *Runner) entity(arm string) (ecs.Entity, error) {
	e, ok := r.byName[arm]
	if !ok {
		return ecs.Entity{}, fmt.Errorf("%w: %s", ErrUnknownArm, arm)
	}
	return e, nil
}

// Arms returns arm names in config order.
func (r *Runner) Arms() []string {
	names := make([]string, len(r.arms))
	for i, e := range r.arms {
		names[i] = r.armMap.Get(e).Name
	}
	return names
}

// State returns a copy of an arm's current state.
func (r *Runner) State(arm string) (components.State, error) {
	e, err := r.entity(arm)
	if err != nil {
		return components.State{}, err
	}
	return r.stateMap.Get(e).Clone(), nil
}

// Counters returns a copy of an arm's step and clamp counters.
func (r *Runner) Counters(arm string) (components.ArmCounters, error) {
	e, err := r.entity(arm)
	if err != nil {
		return components.ArmCounters{}, err
	}
	c := r.counterMap.Get(e)
	out := components.ArmCounters{Steps: c.Steps, Clamps: make(map[string]int, len(c.Clamps))}
	for k, v := range c.Clamps {
		out.Clamps[k] = v
	}
	return out, nil
}

// Conditions returns a copy of an arm's condition state.
func (r *Runner) Conditions(arm string) (components.ConditionState, error) {
	e, err := r.entity(arm)
	if err != nil {
		return nil, err
	}
	return r.regimenMap.Get(e).Conditions.Clone(), nil
}

// SetCondition enables or disables a condition on one arm and rebuilds that
// arm's adjustments. params are merged into the condition's current
// parameters; nil keeps them. Other arms are unaffected.
func (r *Runner) SetCondition(arm, key string, enabled bool, params map[string]float64) error {
	e, err := r.entity(arm)
	if err != nil {
		return err
	}
	regimen := r.regimenMap.Get(e)
	if _, ok := regimen.Conditions[key]; !ok {
		return fmt.Errorf("arm %q: %w: %s", arm, ErrUnknownCondition, key)
	}

	conds := regimen.Conditions.Clone()
	entry := conds[key]
	entry.Enabled = enabled
	if entry.Params == nil {
		entry.Params = make(map[string]float64, len(params))
	}
	for k, v := range params {
		entry.Params[k] = v
	}
	conds[key] = entry

	regimen.Conditions = conds
	regimen.Adjustments = conditions.BuildAdjustments(r.reg.Conditions, conds)

	r.tel.event(telemetry.NewConditionEvent(arm, r.step, r.Time(), key, enabled))
	return nil
}

// AddIntervention schedules a dose on one arm and returns its instance ID.
func (r *Runner) AddIntervention(arm string, d config.DoseConfig) (string, error) {
	e, err := r.entity(arm)
	if err != nil {
		return "", err
	}
	iv, err := r.instantiate(d)
	if err != nil {
		return "", fmt.Errorf("arm %q: %w", arm, err)
	}
	regimen := r.regimenMap.Get(e)
	ivs := make([]components.Intervention, len(regimen.Interventions), len(regimen.Interventions)+1)
	copy(ivs, regimen.Interventions)
	regimen.Interventions = append(ivs, iv)
	return iv.ID, nil
}

// Step advances every arm by one timestep.
func (r *Runner) Step() {
	t := r.Time()
	dt := r.cfg.Simulation.DT

	r.tel.perf.StartStep()

	r.tel.perf.StartPhase(telemetry.PhaseSchedule)
	r.applyPendingChanges(t)
	r.emitDoseEvents(t, dt)

	r.stepArms(t, r.contextAt(t))
	r.step++

	r.tel.perf.StartPhase(telemetry.PhaseTelemetry)
	r.recordTelemetry()

	r.tel.perf.EndStep()
	r.flushTelemetry()
}

// Run steps until the configured duration or until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	for r.step < r.cfg.Derived.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run stopped at step %d: %w", r.step, err)
		}
		r.Step()
	}
	return nil
}

// applyPendingChanges fires scheduled condition changes due at or before t.
func (r *Runner) applyPendingChanges(t float64) {
	for _, e := range r.arms {
		name := r.armMap.Get(e).Name
		changes := r.pending[name]
		n := 0
		for n < len(changes) && changes[n].At <= t {
			ch := changes[n]
			// Keys were validated when the arm was built.
			_ = r.SetCondition(name, ch.Condition, ch.Enabled, ch.Params)
			n++
		}
		if n > 0 {
			r.pending[name] = changes[n:]
		}
	}
}

// emitDoseEvents reports interventions entering or leaving their window.
func (r *Runner) emitDoseEvents(t, dt float64) {
	for _, e := range r.arms {
		name := r.armMap.Get(e).Name
		for _, iv := range r.regimenMap.Get(e).Interventions {
			now, before := iv.Active(t), iv.Active(t-dt)
			switch {
			case now && !before:
				r.tel.event(telemetry.NewDoseStartEvent(name, r.step, t, iv.Key, iv.ID))
			case !now && before:
				r.tel.event(telemetry.NewDoseEndEvent(name, r.step, t, iv.Key, iv.ID))
			}
		}
	}
}

// Restore replaces arm states and conditions with a snapshot's and resumes
// at its step.
func (r *Runner) Restore(s *telemetry.Snapshot) error {
	for _, as := range s.Arms {
		e, err := r.entity(as.Name)
		if err != nil {
			return fmt.Errorf("restoring snapshot: %w", err)
		}
		for key := range as.Conditions {
			if _, ok := r.reg.Condition(key); !ok {
				return fmt.Errorf("restoring snapshot: arm %q: %w: %s", as.Name, ErrUnknownCondition, key)
			}
		}
		*r.stateMap.Get(e) = as.State()
		if len(as.Conditions) > 0 {
			regimen := r.regimenMap.Get(e)
			conds := regimen.Conditions.Clone()
			for key, entry := range as.Conditions {
				conds[key] = entry
			}
			regimen.Conditions = conds
			regimen.Adjustments = conditions.BuildAdjustments(r.reg.Conditions, conds)
		}
	}
	r.step = s.Step

	// Changes that fired before the snapshot are already in its conditions.
	cutoff := float64(s.Step-1) * r.cfg.Simulation.DT
	for name, changes := range r.pending {
		n := 0
		for n < len(changes) && changes[n].At <= cutoff {
			n++
		}
		r.pending[name] = changes[n:]
	}

	r.tel.collector.Reset(r.step)
	r.tel.perf.Reset()
	return nil
}

// Close stops the worker pool.
func (r *Runner) Close() {
	r.parallel.stopWorkers()
}

package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/physim/catalog"
	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/config"
	"github.com/pthm-cable/physim/telemetry"
)

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newRunner(t *testing.T, body string) *Runner {
	t.Helper()
	r, err := NewRunner(loadConfig(t, body), catalog.Default())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func meanOf(rows []telemetry.SummaryRow, arm, signal string) (float64, bool) {
	for _, row := range rows {
		if row.Arm == arm && row.Signal == signal {
			return row.Mean, true
		}
	}
	return 0, false
}

func assertStatesClose(t *testing.T, label string, got, want components.State) {
	t.Helper()
	for key, w := range want.Signals {
		if g := got.Signals[key]; math.Abs(g-w) > 1e-9*math.Max(1, math.Abs(w)) {
			t.Errorf("%s: signal %s = %v, want %v", label, key, g, w)
		}
	}
	for key, w := range want.Auxiliary {
		if g := got.Auxiliary[key]; math.Abs(g-w) > 1e-9*math.Max(1, math.Abs(w)) {
			t.Errorf("%s: auxiliary %s = %v, want %v", label, key, g, w)
		}
	}
}

func TestGenotypeOrdersDopamine(t *testing.T) {
	r := newRunner(t, `
simulation: {duration: 240}
arms:
  - name: slow
    conditions:
      comt: {enabled: true, params: {genotype: -1}}
  - name: typical
    baseline: true
  - name: fast
    conditions:
      comt: {enabled: true, params: {genotype: 1}}
`)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rows := r.Finish()

	slow, _ := meanOf(rows, "slow", catalog.Dopamine)
	typical, _ := meanOf(rows, "typical", catalog.Dopamine)
	fast, ok := meanOf(rows, "fast", catalog.Dopamine)
	if !ok {
		t.Fatal("summary has no dopamine row for the fast arm")
	}
	if !(slow > typical && typical > fast) {
		t.Errorf("dopamine means slow=%v typical=%v fast=%v, want slow > typical > fast", slow, typical, fast)
	}

	for _, row := range rows {
		if row.Arm == "typical" && row.DeltaMean != 0 {
			t.Errorf("baseline delta for %s = %v, want 0", row.Signal, row.DeltaMean)
		}
	}
}

func TestNewRunnerRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		arms string
		want error
	}{
		{"condition", "arms: [{name: a, conditions: {gout: {enabled: true}}}]", ErrUnknownCondition},
		{"intervention", "arms: [{name: a, interventions: [{key: aspirin}]}]", ErrUnknownIntervention},
		{"scheduled change", "arms: [{name: a, changes: [{at: 5, condition: gout, enabled: true}]}]", ErrUnknownCondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(loadConfig(t, tt.arms), catalog.Default())
			if !errors.Is(err, tt.want) {
				t.Errorf("NewRunner error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewRunnerAppliesArmConditions(t *testing.T) {
	r := newRunner(t, "arms: [{name: a, conditions: {adhd: {enabled: true, params: {severity: 0.9}}}}, {name: b}]")

	a, _ := r.Conditions("a")
	if e := a[catalog.ConditionADHD]; !e.Enabled || e.Params[catalog.ParamSeverity] != 0.9 {
		t.Errorf("arm a adhd = %+v", e)
	}
	b, _ := r.Conditions("b")
	want := catalog.Default().DefaultConditionState()
	if len(b) != len(want) {
		t.Fatalf("arm b has %d conditions, want %d", len(b), len(want))
	}
	for key, e := range b {
		if e.Enabled || e.Params[catalog.ParamSeverity] != want[key].Params[catalog.ParamSeverity] {
			t.Errorf("arm b %s = %+v, want the default", key, e)
		}
	}
}

func TestSetConditionAffectsOneArm(t *testing.T) {
	r := newRunner(t, "arms: [{name: a}, {name: b}]")

	if err := r.SetCondition("a", catalog.ConditionADHD, true, map[string]float64{catalog.ParamSeverity: 0.9}); err != nil {
		t.Fatalf("SetCondition: %v", err)
	}
	a, _ := r.Conditions("a")
	b, _ := r.Conditions("b")
	if e := a[catalog.ConditionADHD]; !e.Enabled || e.Params[catalog.ParamSeverity] != 0.9 {
		t.Errorf("arm a adhd = %+v", e)
	}
	if b[catalog.ConditionADHD].Enabled {
		t.Error("arm b should be unaffected")
	}

	for i := 0; i < 30; i++ {
		r.Step()
	}
	sa, _ := r.State("a")
	sb, _ := r.State("b")
	if sa.Signals[catalog.Dopamine] == sb.Signals[catalog.Dopamine] {
		t.Error("enabling adhd should move arm a away from arm b")
	}

	if err := r.SetCondition("c", catalog.ConditionADHD, true, nil); !errors.Is(err, ErrUnknownArm) {
		t.Errorf("unknown arm error = %v", err)
	}
	if err := r.SetCondition("a", "gout", true, nil); !errors.Is(err, ErrUnknownCondition) {
		t.Errorf("unknown condition error = %v", err)
	}
	if _, err := r.State("c"); !errors.Is(err, ErrUnknownArm) {
		t.Errorf("State error = %v", err)
	}
}

func TestScheduledChangesFire(t *testing.T) {
	r := newRunner(t, `
arms:
  - name: a
    changes:
      - {at: 20, condition: insomnia, enabled: true}
      - {at: 10, condition: adhd, enabled: true}
`)
	for i := 0; i < 15; i++ {
		r.Step()
	}
	conds, _ := r.Conditions("a")
	if !conds[catalog.ConditionADHD].Enabled {
		t.Error("adhd should be enabled at minute 10")
	}
	if conds[catalog.ConditionInsomnia].Enabled {
		t.Error("insomnia should not be enabled before minute 20")
	}

	for i := 0; i < 10; i++ {
		r.Step()
	}
	conds, _ = r.Conditions("a")
	if !conds[catalog.ConditionInsomnia].Enabled {
		t.Error("insomnia should be enabled at minute 20")
	}
}

func TestAddIntervention(t *testing.T) {
	r := newRunner(t, "arms: [{name: a}, {name: b}]")

	id, err := r.AddIntervention("a", config.DoseConfig{Key: catalog.InterventionCaffeine, Start: 0})
	if err != nil {
		t.Fatalf("AddIntervention: %v", err)
	}
	if id == "" {
		t.Error("instance ID should be assigned")
	}
	if _, err := r.AddIntervention("a", config.DoseConfig{Key: "aspirin"}); !errors.Is(err, ErrUnknownIntervention) {
		t.Errorf("unknown intervention error = %v", err)
	}

	for i := 0; i < 120; i++ {
		r.Step()
	}
	sa, _ := r.State("a")
	sb, _ := r.State("b")
	if !(sa.Signals[catalog.HeartRate] > sb.Signals[catalog.HeartRate]) {
		t.Errorf("heart rate with caffeine = %v, without = %v", sa.Signals[catalog.HeartRate], sb.Signals[catalog.HeartRate])
	}
}

const fiveArms = `
simulation: {duration: 120}
engine: {workers: %d, debug: true}
arms:
  - {name: baseline, baseline: true}
  - {name: coffee, interventions: [{key: caffeine, start: 10}]}
  - {name: adhd, conditions: {adhd: {enabled: true}}, interventions: [{key: methylphenidate, start: 5}]}
  - {name: drinks, interventions: [{key: alcohol, start: 30}, {key: meal, start: 0}]}
  - {name: low_mood, conditions: {depression: {enabled: true}}, interventions: [{key: sertraline, start: 0}]}
`

func TestParallelMatchesSequential(t *testing.T) {
	seq := newRunner(t, fmt.Sprintf(fiveArms, 1))
	par := newRunner(t, fmt.Sprintf(fiveArms, 4))

	for _, r := range []*Runner{seq, par} {
		if err := r.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	if !par.parallel.running {
		t.Error("five arms with four workers should use the worker pool")
	}
	for _, arm := range seq.Arms() {
		want, _ := seq.State(arm)
		got, _ := par.State(arm)
		assertStatesClose(t, arm, got, want)

		cs, _ := seq.Counters(arm)
		cp, _ := par.Counters(arm)
		if cs.Steps != 120 || cp.Steps != 120 {
			t.Errorf("%s steps = %d/%d, want 120", arm, cs.Steps, cp.Steps)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRunner(t, "arms: [{name: a}]")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
	if r.StepCount() != 0 {
		t.Errorf("StepCount = %d, want 0", r.StepCount())
	}
}

func TestRestoreResumesRun(t *testing.T) {
	const body = `
simulation: {duration: 60}
arms:
  - {name: a, interventions: [{key: caffeine, start: 5}]}
  - {name: b, conditions: {maoa: {enabled: true, params: {genotype: 0.5}}}}
`
	orig := newRunner(t, body)
	for i := 0; i < 30; i++ {
		orig.Step()
	}
	snap := orig.Snapshot(nil)

	path, err := telemetry.SaveSnapshot(snap, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	resumed := newRunner(t, body)
	if err := resumed.Restore(loaded); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if resumed.StepCount() != 30 {
		t.Errorf("StepCount = %d, want 30", resumed.StepCount())
	}
	if c, _ := resumed.Conditions("b"); !c[catalog.ConditionMAOA].Enabled {
		t.Error("restored conditions should carry over")
	}

	for i := 0; i < 10; i++ {
		orig.Step()
		resumed.Step()
	}
	for _, arm := range orig.Arms() {
		want, _ := orig.State(arm)
		got, _ := resumed.State(arm)
		assertStatesClose(t, arm, got, want)
	}

	bad := *loaded
	bad.Arms = []telemetry.ArmState{{Name: "missing"}}
	if err := resumed.Restore(&bad); !errors.Is(err, ErrUnknownArm) {
		t.Errorf("Restore error = %v, want ErrUnknownArm", err)
	}
}

func TestOutputFiles(t *testing.T) {
	r := newRunner(t, `
simulation: {duration: 90}
telemetry: {stats_window: 30, trace_interval: 15, trace_keys: [dopamine]}
arms:
  - {name: baseline, baseline: true}
  - {name: coffee, interventions: [{key: caffeine, start: 10, duration: 40}]}
`)
	dir := t.TempDir()
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	r.SetOutput(om)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rows := r.Finish()
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("Finish returned no summary rows")
	}

	var stats []telemetry.SignalWindowStats
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "telemetry.csv")), &stats); err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	// three windows, two arms, every signal
	if want := 3 * 2 * len(catalog.Default().SignalKeys()); len(stats) != want {
		t.Errorf("telemetry rows = %d, want %d", len(stats), want)
	}

	var perf []telemetry.PerfStatsCSV
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "perf.csv")), &perf); err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if len(perf) != 3 {
		t.Fatalf("perf rows = %d, want one per window", len(perf))
	}
	for i, row := range perf {
		if row.Steps != 30 || row.WindowEnd != 30*(i+1) {
			t.Errorf("perf row %d = %+v, want 30 steps ending at %d", i, row, 30*(i+1))
		}
	}

	var events []telemetry.Event
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "events.csv")), &events); err != nil {
		t.Fatalf("reading events.csv: %v", err)
	}
	var names []string
	for _, e := range events {
		names = append(names, e.Name)
	}
	if len(events) != 2 || names[0] != "dose_start" || names[1] != "dose_end" {
		t.Errorf("events = %v", names)
	}
	if events[0].Step != 10 || events[1].Step != 50 {
		t.Errorf("event steps = %d, %d; want 10, 50", events[0].Step, events[1].Step)
	}

	var trace []telemetry.TraceRecord
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "trace.csv")), &trace); err != nil {
		t.Fatalf("reading trace.csv: %v", err)
	}
	// steps 15..90 every 15, two arms, one key
	if len(trace) != 12 {
		t.Errorf("trace rows = %d, want 12", len(trace))
	}

	snaps, err := filepath.Glob(filepath.Join(dir, "snapshots", "snapshot_90*.json"))
	if err != nil || len(snaps) == 0 {
		t.Errorf("final snapshot missing: %v", err)
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/physim/catalog"
	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/kinetics"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector(components.PKSpec{AbsorptionHalfLifeMin: 10, HalfLifeMin: 300, LagMin: 0})
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("param %s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}

	pk := pv.ApplyToPK(components.PKSpec{DoseMg: 100}, []float64{-5, 10000, 30})
	if pk.AbsorptionHalfLifeMin != 1 || pk.HalfLifeMin != 4320 || pk.LagMin != 30 || pk.DoseMg != 100 {
		t.Errorf("ApplyToPK = %+v", pk)
	}
}

func TestNewParamVectorOutOfRangeDefault(t *testing.T) {
	pv := NewParamVector(components.PKSpec{AbsorptionHalfLifeMin: 0, HalfLifeMin: 9000})
	d := pv.DefaultVector()
	if d[0] != (1+240)/2.0 || d[1] != (5+4320)/2.0 {
		t.Errorf("defaults = %v, want box midpoints", d)
	}
}

func TestNormalizeSamples(t *testing.T) {
	got, err := NormalizeSamples([]Sample{{60, 4}, {-10, 9}, {0, 0}, {30, 8}})
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{{0, 0}, {30, 1}, {60, 0.5}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := NormalizeSamples(nil); !errors.Is(err, errNoSamples) {
		t.Errorf("empty input error = %v", err)
	}
	if _, err := NormalizeSamples([]Sample{{0, 0}, {10, 0}}); !errors.Is(err, errNoSamples) {
		t.Errorf("flat input error = %v", err)
	}
}

func TestLoadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	if err := os.WriteFile(path, []byte("minute,value\n0,0\n30,2.5\n60,1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	samples, err := LoadSamples(path)
	if err != nil {
		t.Fatalf("LoadSamples: %v", err)
	}
	if len(samples) != 3 || samples[1] != (Sample{30, 2.5}) {
		t.Errorf("samples = %v", samples)
	}

	if _, err := LoadSamples(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestFitRecoversSyntheticCurve(t *testing.T) {
	const absorb, halfLife, lag = 25.0, 200.0, 10.0
	ka, ke := kinetics.HalfLife(absorb), kinetics.HalfLife(halfLife)

	var raw []Sample
	for m := 0.0; m <= 1200; m += 5 {
		raw = append(raw, Sample{Minute: m, Value: 3.7 * kinetics.PK1(m, ka, ke, lag)})
	}
	samples, err := NormalizeSamples(raw)
	if err != nil {
		t.Fatal(err)
	}

	def, _ := catalog.Default().Intervention(catalog.InterventionCaffeine)
	res, err := Fit(catalog.InterventionCaffeine, def.Pharmacology.PK, samples, 5000)
	if err != nil {
		t.Logf("optimizer stopped: %v", err)
	}

	if res.MSE > 1e-4 {
		t.Errorf("MSE = %v, want < 1e-4", res.MSE)
	}
	// PK1 is symmetric in ka and ke, so only the pair is identifiable.
	fast := math.Min(res.AbsorptionHalfLifeMin, res.HalfLifeMin)
	slow := math.Max(res.AbsorptionHalfLifeMin, res.HalfLifeMin)
	if math.Abs(slow-halfLife)/halfLife > 0.1 {
		t.Errorf("slow half-life = %v, want ~%v", slow, halfLife)
	}
	if math.Abs(fast-absorb)/absorb > 0.2 {
		t.Errorf("fast half-life = %v, want ~%v", fast, absorb)
	}
	if res.Evaluations == 0 || res.Samples != len(samples) {
		t.Errorf("result = %+v", res)
	}
}

func TestEvaluatePenalizesOutOfBounds(t *testing.T) {
	pv := NewParamVector(components.PKSpec{AbsorptionHalfLifeMin: 10, HalfLifeMin: 300})
	fe := NewFitnessEvaluator(pv, []Sample{{0, 0}, {60, 1}})
	inside := fe.Evaluate([]float64{1, 300, 0})
	outside := fe.Evaluate([]float64{-100, 300, 0})
	if !(outside > inside) {
		t.Errorf("out-of-bounds fitness %v should exceed clamped %v", outside, inside)
	}
}

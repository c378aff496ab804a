package kinetics

import (
	"math"
	"testing"
)

// sampleCurve evaluates f on [0, end] at a fixed step.
func sampleCurve(f func(t float64) float64, end, step float64) []float64 {
	var out []float64
	for t := 0.0; t <= end; t += step {
		out = append(out, f(t))
	}
	return out
}

// assertSinglePeak checks that samples are non-negative, rise to one interior
// peak, and never rise again after it.
func assertSinglePeak(t *testing.T, name string, samples []float64) {
	t.Helper()
	peakIdx := 0
	for i, v := range samples {
		if v < 0 {
			t.Fatalf("%s: negative value %v at sample %d", name, v, i)
		}
		if v > samples[peakIdx] {
			peakIdx = i
		}
	}
	if peakIdx == 0 || peakIdx == len(samples)-1 {
		t.Fatalf("%s: peak at boundary sample %d", name, peakIdx)
	}
	for i := 1; i <= peakIdx; i++ {
		if samples[i] < samples[i-1]-1e-12 {
			t.Fatalf("%s: dips before peak at sample %d", name, i)
		}
	}
	for i := peakIdx + 1; i < len(samples); i++ {
		if samples[i] > samples[i-1]+1e-12 {
			t.Fatalf("%s: rises after peak at sample %d", name, i)
		}
	}
}

func TestHalfLife(t *testing.T) {
	if got := HalfLife(60); math.Abs(got-math.Ln2/60) > 1e-12 {
		t.Errorf("HalfLife(60) = %v, want %v", got, math.Ln2/60)
	}
	if got := HalfLife(0); math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("HalfLife(0) should be finite, got %v", got)
	}
}

func TestPK1_ZeroBeforeLag(t *testing.T) {
	for _, tt := range []float64{-10, 0, 5, 10} {
		if got := PK1(tt, 0.05, 0.01, 10); got != 0 {
			t.Errorf("PK1(%v) before lag = %v, want 0", tt, got)
		}
	}
}

func TestPK1_PeakIsOneAtTmax(t *testing.T) {
	tests := []struct {
		name        string
		ka, ke, lag float64
	}{
		{"fast absorption", 0.1, 0.01, 0},
		{"slow absorption", 0.02, 0.005, 15},
		{"flip-flop", 0.005, 0.02, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmax := math.Log(tt.ka/tt.ke) / (tt.ka - tt.ke)
			got := PK1(tt.lag+tmax, tt.ka, tt.ke, tt.lag)
			if math.Abs(got-1) > 1e-9 {
				t.Errorf("PK1 at tmax = %v, want 1", got)
			}
			if math.Abs(PKTmax(tt.ka, tt.ke)-tmax) > 1e-9 {
				t.Errorf("PKTmax = %v, want %v", PKTmax(tt.ka, tt.ke), tmax)
			}
			if PK1(tt.lag+tmax*0.5, tt.ka, tt.ke, tt.lag) >= got {
				t.Error("value before tmax should be below the peak")
			}
			if PK1(tt.lag+tmax*2, tt.ka, tt.ke, tt.lag) >= got {
				t.Error("value after tmax should be below the peak")
			}
		})
	}
}

func TestPK1_DegenerateRates(t *testing.T) {
	k := 0.03
	got := PK1(1/k, k, k+1e-8, 0)
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("degenerate PK1 peak = %v, want 1", got)
	}
	if math.IsNaN(PK1(50, k, k, 0)) {
		t.Error("degenerate PK1 returned NaN")
	}
}

func TestPK1_SinglePeak(t *testing.T) {
	samples := sampleCurve(func(x float64) float64 { return PK1(x, 0.04, 0.008, 20) }, 1200, 1)
	assertSinglePeak(t, "PK1", samples)
}

func TestPK1_Continuous(t *testing.T) {
	prev := PK1(0, 0.05, 0.01, 10)
	for x := 0.01; x < 600; x += 0.01 {
		v := PK1(x, 0.05, 0.01, 10)
		if math.Abs(v-prev) > 0.01 {
			t.Fatalf("jump of %v at t=%v", v-prev, x)
		}
		prev = v
	}
}

func TestPK2_ShapeAndNormalization(t *testing.T) {
	ka, k10, k12, k21, lag := 0.05, 0.01, 0.02, 0.015, 10.0

	if got := PK2(lag, ka, k10, k12, k21, lag); got != 0 {
		t.Errorf("PK2 at lag = %v, want 0", got)
	}

	samples := sampleCurve(func(x float64) float64 { return PK2(x, ka, k10, k12, k21, lag) }, 2400, 1)
	assertSinglePeak(t, "PK2", samples)

	peak := 0.0
	for _, v := range samples {
		peak = math.Max(peak, v)
		if v > 1.1 {
			t.Fatalf("PK2 exceeds ceiling: %v", v)
		}
	}
	if math.Abs(peak-1) > 1e-3 {
		t.Errorf("PK2 peak = %v, want ~1", peak)
	}
}

func TestPK2_FallsBackToPK1(t *testing.T) {
	// A negative intercompartmental rate has no valid disposition.
	for _, x := range []float64{20, 60, 180} {
		got := PK2(x, 0.05, 0.01, -0.02, 0.015, 0)
		want := PK1(x, 0.05, 0.01, 0)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("PK2 fallback at t=%v = %v, want %v", x, got, want)
		}
	}
	// Absorption equal to a disposition rate is singular.
	got := PK2(60, 0.01, 0.01, 0, 0, 0)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("singular PK2 returned %v", got)
	}
}

func TestPKConc(t *testing.T) {
	ka, ke := HalfLife(20), HalfLife(240)
	if got := PKConc(5, ka, ke, 0.7, 70, 100, 10, 1); got != 0 {
		t.Errorf("PKConc before lag = %v, want 0", got)
	}
	if got := PKConc(60, ka, ka, 0.7, 70, 100, 0, 1); got != 0 {
		t.Errorf("PKConc with ka == ke = %v, want 0", got)
	}

	tmax := PKTmax(ka, ke)
	peak := PKConc(tmax, ka, ke, 0.7, 70, 100, 0, 1)
	if peak <= 0 {
		t.Fatalf("expected positive peak, got %v", peak)
	}
	// Scaling dose scales concentration linearly.
	double := PKConc(tmax, ka, ke, 0.7, 70, 200, 0, 1)
	if math.Abs(double-2*peak) > 1e-9 {
		t.Errorf("doubling dose gave %v, want %v", double, 2*peak)
	}
	// Normalized shape matches PK1.
	for _, x := range []float64{30, 120, 600} {
		if math.Abs(PKConc(x, ka, ke, 0.7, 70, 100, 0, 1)/peak-PK1(x, ka, ke, 0)) > 1e-9 {
			t.Errorf("PKConc shape differs from PK1 at t=%v", x)
		}
	}
}

func TestPK2Conc(t *testing.T) {
	ka, k10 := HalfLife(30), HalfLife(180)

	// Without distribution the central compartment is the one-compartment model.
	for _, x := range []float64{10, 45, 120, 600, 1440} {
		got := PK2Conc(x, ka, k10, 0, 0.01, 2, 70, 10, 0, 0.3)
		want := PKConc(x, ka, k10, 2, 70, 10, 0, 0.3)
		if math.Abs(got-want) > 1e-12*math.Max(1, want) {
			t.Errorf("PK2Conc(k12=0) at t=%v = %v, want %v", x, got, want)
		}
	}

	// Distribution moves drug out of the central compartment but leaves the
	// area under the curve at F·dose/(V·k10).
	var auc float64
	const step = 0.5
	for x := 0.0; x < 20000; x += step {
		auc += 0.5 * step * (PK2Conc(x, ka, k10, 0.005, 0.01, 2, 70, 10, 0, 0.3) +
			PK2Conc(x+step, ka, k10, 0.005, 0.01, 2, 70, 10, 0, 0.3))
	}
	want := 0.3 * 10 / (2 * 70 * k10)
	if math.Abs(auc-want)/want > 0.01 {
		t.Errorf("PK2Conc AUC = %v, want %v", auc, want)
	}

	peak1 := PKConc(PKTmax(ka, k10), ka, k10, 2, 70, 10, 0, 0.3)
	for x := 0.0; x < 600; x += 5 {
		if c := PK2Conc(x, ka, k10, 0.005, 0.01, 2, 70, 10, 0, 0.3); c > peak1 {
			t.Fatalf("PK2Conc at t=%v = %v exceeds the one-compartment peak %v", x, c, peak1)
		}
	}

	if got := PK2Conc(5, ka, k10, 0.005, 0.01, 2, 70, 10, 10, 0.3); got != 0 {
		t.Errorf("PK2Conc before lag = %v, want 0", got)
	}
	if got, want := PK2Conc(60, ka, k10, -1, 0.01, 2, 70, 10, 0, 0.3), PKConc(60, ka, k10, 2, 70, 10, 0, 0.3); got != want {
		t.Errorf("invalid disposition = %v, want PKConc fallback %v", got, want)
	}
}

func TestGammaPulse(t *testing.T) {
	if got := GammaPulse(10, 5, 30, 10); got != 0 {
		t.Errorf("GammaPulse at lag = %v, want 0", got)
	}
	samples := sampleCurve(func(x float64) float64 { return GammaPulse(x, 8, 40, 5) }, 600, 1)
	assertSinglePeak(t, "GammaPulse", samples)

	// Riemann sum approximates the closed-form area.
	var area float64
	for x := 0.0; x < 2000; x += 0.1 {
		area += GammaPulse(x, 8, 40, 0) * 0.1
	}
	if want := GammaPulseArea(8, 40); math.Abs(area-want)/want > 0.01 {
		t.Errorf("area = %v, want ~%v", area, want)
	}
}

func TestMichaelisMentenPK(t *testing.T) {
	if got := MichaelisMentenPK(3, 0.001, 0.01, 0.05, 10, 5); got != 0 {
		t.Errorf("before lag = %v, want 0", got)
	}
	samples := sampleCurve(func(x float64) float64 { return MichaelisMentenPK(x, 0.0005, 0.005, 0.05, 10, 5) }, 600, 1)
	assertSinglePeak(t, "MichaelisMentenPK", samples)

	// Near-linear decline at high concentration (zero-order regime).
	c1 := MichaelisMentenPK(200, 0.0002, 0.0005, 0.2, 5, 0)
	c2 := MichaelisMentenPK(260, 0.0002, 0.0005, 0.2, 5, 0)
	c3 := MichaelisMentenPK(320, 0.0002, 0.0005, 0.2, 5, 0)
	d1, d2 := c1-c2, c2-c3
	if d1 <= 0 || math.Abs(d1-d2)/d1 > 0.05 {
		t.Errorf("expected near-constant elimination, got drops %v and %v", d1, d2)
	}
}

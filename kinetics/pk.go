// Package kinetics provides the pharmacokinetic and pharmacodynamic curves used
// to turn a dose and an elapsed time into an instantaneous effect.
//
// Every function is pure and total: invalid or degenerate inputs fall back to a
// closed form or return 0, nothing panics. Times are in minutes.
package kinetics

import "math"

// degenerateRateEps is the tolerance under which two rate constants are treated
// as equal and the bi-exponential solution is replaced by its limit.
const degenerateRateEps = 1e-6

// minHalfLife floors half-lives passed to HalfLife.
const minHalfLife = 1e-9

// pk2Ceiling absorbs normalization error of the numerically located peak.
const pk2Ceiling = 1.1

// HalfLife converts a half-life into a first-order rate constant.
func HalfLife(tHalf float64) float64 {
	return math.Ln2 / math.Max(minHalfLife, tHalf)
}

// PK1 is the one-compartment absorption/elimination curve normalized to a peak
// of 1.0. Returns 0 for t <= tlag.
func PK1(t, ka, ke, tlag float64) float64 {
	tau := t - tlag
	if tau <= 0 || ka <= 0 || ke <= 0 {
		return 0
	}

	if math.Abs(ka-ke) < degenerateRateEps {
		// Limit ka -> ke: k·τ·e^{-kτ} peaks at 1/e when τ = 1/k.
		k := ka
		return k * tau * math.Exp(-k*tau) * math.E
	}

	tmax := math.Log(ka/ke) / (ka - ke)
	peak := math.Exp(-ke*tmax) - math.Exp(-ka*tmax)
	if peak == 0 {
		return 0
	}
	v := (math.Exp(-ke*tau) - math.Exp(-ka*tau)) / peak
	if v < 0 {
		return 0
	}
	return v
}

// PKTmax returns the time after the lag at which PK1 peaks.
func PKTmax(ka, ke float64) float64 {
	if ka <= 0 || ke <= 0 {
		return 0
	}
	if math.Abs(ka-ke) < degenerateRateEps {
		return 1 / ka
	}
	return math.Log(ka/ke) / (ka - ke)
}

// PKConc is the absolute one-compartment concentration for a dose in mg,
// a volume of distribution in L/kg and a body weight in kg. The result is in
// mg/L. Returns 0 when ka ≈ ke.
func PKConc(t, ka, ke, vd, weight, dose, tlag, f float64) float64 {
	tau := t - tlag
	if tau <= 0 {
		return 0
	}
	if math.Abs(ka-ke) < degenerateRateEps {
		return 0
	}
	volume := vd * weight
	if volume <= 0 {
		return 0
	}
	c := f * dose * ka / (volume * (ka - ke)) * (math.Exp(-ke*tau) - math.Exp(-ka*tau))
	if c < 0 {
		return 0
	}
	return c
}

// twoCompartment holds the macro-constants of the central-compartment amount
// after a unit oral dose: A·e^{-αt} + B·e^{-βt} + C·e^{-ka·t}.
type twoCompartment struct {
	alpha, beta, ka float64
	a, b, c         float64
}

func (m twoCompartment) at(t float64) float64 {
	return m.a*math.Exp(-m.alpha*t) + m.b*math.Exp(-m.beta*t) + m.c*math.Exp(-m.ka*t)
}

func (m twoCompartment) slope(t float64) float64 {
	return -m.alpha*m.a*math.Exp(-m.alpha*t) - m.beta*m.b*math.Exp(-m.beta*t) - m.ka*m.c*math.Exp(-m.ka*t)
}

// peakTime brackets the single root of the slope and bisects it.
func (m twoCompartment) peakTime() float64 {
	hi := 1 / (m.ka + m.alpha)
	for i := 0; i < 64 && m.slope(hi) > 0; i++ {
		hi *= 2
	}
	lo := 0.0
	for i := 0; i < 80; i++ {
		mid := 0.5 * (lo + hi)
		if m.slope(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// newTwoCompartment solves the disposition rates from the eigenvalues of the
// 2×2 rate matrix. ok is false when they are not real, when a rate is
// invalid, or when the macro-constants are singular.
func newTwoCompartment(ka, k10, k12, k21 float64) (m twoCompartment, ok bool) {
	if ka <= 0 || k10 <= 0 || k12 < 0 || k21 < 0 {
		return m, false
	}
	sum := k10 + k12 + k21
	prod := k10 * k21
	disc := sum*sum - 4*prod
	if disc < 0 {
		return m, false
	}
	root := math.Sqrt(disc)
	alpha := 0.5 * (sum + root)
	beta := 0.5 * (sum - root)
	if beta <= 0 ||
		math.Abs(alpha-beta) < degenerateRateEps ||
		math.Abs(ka-alpha) < degenerateRateEps ||
		math.Abs(ka-beta) < degenerateRateEps {
		return m, false
	}
	return twoCompartment{
		alpha: alpha,
		beta:  beta,
		ka:    ka,
		a:     ka * (k21 - alpha) / ((ka - alpha) * (beta - alpha)),
		b:     ka * (k21 - beta) / ((ka - beta) * (alpha - beta)),
		c:     ka * (k21 - ka) / ((alpha - ka) * (beta - ka)),
	}, true
}

// PK2 is the two-compartment curve with first-order absorption, normalized to
// a peak of roughly 1.0 and clamped to [0, 1.1]. When the disposition has no
// valid solution the curve falls back to PK1 with k10.
func PK2(t, ka, k10, k12, k21, tlag float64) float64 {
	tau := t - tlag
	if tau <= 0 || ka <= 0 || k10 <= 0 {
		return 0
	}
	m, ok := newTwoCompartment(ka, k10, k12, k21)
	if !ok {
		return PK1(t, ka, k10, tlag)
	}
	peak := m.at(m.peakTime())
	if peak <= 0 {
		return PK1(t, ka, k10, tlag)
	}

	v := m.at(tau) / peak
	if v < 0 {
		return 0
	}
	if v > pk2Ceiling {
		return pk2Ceiling
	}
	return v
}

// PK2Conc is the absolute central-compartment concentration in mg/L of the
// two-compartment model, in the units of PKConc. With k12 = 0 it equals
// PKConc. Invalid dispositions fall back to PKConc with k10.
func PK2Conc(t, ka, k10, k12, k21, vd, weight, dose, tlag, f float64) float64 {
	tau := t - tlag
	if tau <= 0 {
		return 0
	}
	volume := vd * weight
	if volume <= 0 {
		return 0
	}
	m, ok := newTwoCompartment(ka, k10, k12, k21)
	if !ok {
		return PKConc(t, ka, k10, vd, weight, dose, tlag, f)
	}
	c := f * dose * m.at(tau) / volume
	if c < 0 {
		return 0
	}
	return c
}

// GammaPulse is a generic rise-then-decay shape, (1−e^{-τ/kRise})·e^{-τ/kFall},
// with kRise and kFall as time constants in minutes.
func GammaPulse(t, kRise, kFall, tlag float64) float64 {
	tau := t - tlag
	if tau <= 0 {
		return 0
	}
	kRise = math.Max(kRise, minHalfLife)
	kFall = math.Max(kFall, minHalfLife)
	return (1 - math.Exp(-tau/kRise)) * math.Exp(-tau/kFall)
}

// GammaPulseArea is the integral of GammaPulse over τ in [0, ∞).
func GammaPulseArea(kRise, kFall float64) float64 {
	kRise = math.Max(kRise, minHalfLife)
	kFall = math.Max(kFall, minHalfLife)
	return kFall * kFall / (kRise + kFall)
}

// MichaelisMentenPK integrates dC/dt = absorption(t) − Vmax·C/(Km+C) with fixed
// one-minute Euler steps from tlag to t. c0 is the concentration reached if the
// whole dose were absorbed instantly; absorption is first order with the given
// half-life. Elimination is zero order when C ≫ Km and first order when C ≪ Km.
func MichaelisMentenPK(t, vmax, km, c0, absorptionHalfLife, tlag float64) float64 {
	tau := t - tlag
	if tau <= 0 || c0 <= 0 {
		return 0
	}
	ka := HalfLife(absorptionHalfLife)
	km = math.Max(km, minHalfLife)

	deriv := func(elapsed, c float64) float64 {
		return c0*ka*math.Exp(-ka*elapsed) - vmax*c/(km+c)
	}

	c := 0.0
	elapsed := 0.0
	for elapsed+1 <= tau {
		c = math.Max(0, c+deriv(elapsed, c))
		elapsed++
	}
	if rem := tau - elapsed; rem > 0 {
		c = math.Max(0, c+deriv(elapsed, c)*rem)
	}
	return c
}

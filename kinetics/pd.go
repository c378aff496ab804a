package kinetics

import "math"

// hillSaturation is the multiple of EC50 above which Hill returns exactly 1.
const hillSaturation = 100.0

// minAffinity floors Kd/Ki/EC50 so ratios stay finite.
const minAffinity = 1e-12

// Hill is the saturating dose-response xⁿ/(ec50ⁿ+xⁿ). It is 0 for x <= 0 and 1
// above 100×ec50.
func Hill(x, ec50, n float64) float64 {
	if x <= 0 {
		return 0
	}
	if ec50 <= 0 {
		return 1
	}
	if x > hillSaturation*ec50 {
		return 1
	}
	if n <= 0 {
		n = 1
	}
	r := math.Pow(x/ec50, n)
	return r / (1 + r)
}

// ReceptorOccupancy is the fraction of sites bound at equilibrium, conc/(conc+Kd).
func ReceptorOccupancy(conc, kd float64) float64 {
	if conc <= 0 {
		return 0
	}
	kd = math.Max(kd, minAffinity)
	return conc / (conc + kd)
}

// OperationalAgonism is the Black–Leff operational model,
// Emax·τ·conc / ((τ+1)·conc + Kd). τ is the efficacy: small τ gives a partial
// agonist, large τ approaches Emax.
func OperationalAgonism(conc, kd, tau, emax float64) float64 {
	if conc <= 0 || tau <= 0 {
		return 0
	}
	kd = math.Max(kd, minAffinity)
	return emax * tau * conc / ((tau+1)*conc + kd)
}

// CompetitiveAntagonism is the agonist occupancy in presence of a competitive
// antagonist: the apparent Kd grows by 1 + antagonistConc/Ki.
func CompetitiveAntagonism(agonistConc, kd, antagonistConc, ki float64) float64 {
	ki = math.Max(ki, minAffinity)
	apparent := kd * (1 + math.Max(0, antagonistConc)/ki)
	return ReceptorOccupancy(agonistConc, apparent)
}

// NonCompetitiveAntagonism returns Emax reduced by 1/(1 + antagonistConc/Ki).
func NonCompetitiveAntagonism(emax, antagonistConc, ki float64) float64 {
	ki = math.Max(ki, minAffinity)
	return emax / (1 + math.Max(0, antagonistConc)/ki)
}

package systems

import (
	"math"

	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/kinetics"
)

// Contribution is one intervention effect on one target.
type Contribution struct {
	Intervention string  // instance ID
	Sign         float64 // +1 raises the target, -1 lowers it
	Gain         float64 // flux per minute at full response, >= 0
	Response     float64 // 0..1
}

// Effects is everything the engine needs from the active interventions for
// one step.
type Effects struct {
	Contributions map[string][]Contribution // target key -> contributions
	Occupancy     map[string]float64        // binding-site key -> occupancy in [0, 1]
	Exposure      map[string]float64        // intervention key -> summed concentration
}

// EffectResolver turns the active interventions into per-step effects.
type EffectResolver interface {
	Resolve(t float64, ctx components.Context, interventions []components.Intervention, st components.State, adj *components.Adjustments) Effects
}

// Defaults used when a PK spec leaves a rate unset.
const (
	defaultHalfLife           = 60.0
	defaultAbsorptionHalfLife = 15.0
	defaultWeightKg           = 70.0
)

// Pharmacology resolves interventions through their PK time-course and PD
// response curves.
type Pharmacology struct{}

// Resolve implements EffectResolver. Interventions are visited in slice
// order, so contribution order is deterministic. Exposure is summed before
// any response so a blockade sees every active antagonist.
func (Pharmacology) Resolve(t float64, ctx components.Context, interventions []components.Intervention, st components.State, adj *components.Adjustments) Effects {
	eff := Effects{
		Contributions: make(map[string][]Contribution),
		Occupancy:     make(map[string]float64),
		Exposure:      make(map[string]float64),
	}
	conc := make([]float64, len(interventions))
	for i := range interventions {
		iv := &interventions[i]
		if !iv.Active(t) {
			continue
		}
		conc[i] = Concentration(iv, iv.Elapsed(t), ctx, st, adj)
		eff.Exposure[iv.Key] += conc[i]
	}

	for i := range interventions {
		iv := &interventions[i]
		if !iv.Active(t) {
			continue
		}
		for _, e := range iv.Pharmacology.Effects {
			r := BlockedResponse(e, conc[i], eff.Exposure)
			if e.Receptor != "" {
				occ := r
				if e.Kd > 0 {
					occ = kinetics.ReceptorOccupancy(conc[i], e.Kd)
				}
				eff.Occupancy[e.Receptor] = math.Min(1, eff.Occupancy[e.Receptor]+occ)
			}

			efficacy := e.IntrinsicEfficacy
			if efficacy == 0 {
				efficacy = 1
			}
			c := Contribution{
				Intervention: iv.ID,
				Sign:         e.Mechanism.Sign(),
				Gain:         efficacy * e.Gain * receptorScale(e.Receptor, st, adj),
				Response:     r,
			}
			if c.Gain < 0 {
				c.Gain, c.Sign = -c.Gain, -c.Sign
			}
			eff.Contributions[e.Target] = append(eff.Contributions[e.Target], c)
		}
	}
	return eff
}

// Response maps a concentration to a 0..1 response for one PD effect.
// Agonists with an operational efficacy use the operational model, others
// the Hill curve. Antagonists with a Kd use occupancy.
func Response(e components.PDEffect, conc float64) float64 {
	switch e.Mechanism {
	case components.Antagonist:
		if e.Kd > 0 {
			return kinetics.ReceptorOccupancy(conc, e.Kd)
		}
	default:
		if e.Tau > 0 {
			kd := e.Kd
			if kd <= 0 {
				kd = e.EC50
			}
			return kinetics.OperationalAgonism(conc, kd, e.Tau, 1)
		}
	}
	return kinetics.Hill(conc, e.EC50, e.HillN)
}

// BlockedResponse is Response attenuated by the effect's blockade, if any.
// exposure maps intervention keys to summed concentration. A competitive
// blocker scales the response by the drop in agonist occupancy at the
// raised apparent Kd; a non-competitive one divides it by 1 + [B]/Ki.
func BlockedResponse(e components.PDEffect, conc float64, exposure map[string]float64) float64 {
	r := Response(e, conc)
	b := e.BlockedBy
	if b == nil || r <= 0 {
		return r
	}
	blocker := exposure[b.Key]
	if blocker <= 0 {
		return r
	}

	switch b.Mode {
	case components.NonCompetitive:
		return kinetics.NonCompetitiveAntagonism(r, blocker, b.Ki)
	default:
		kd := e.Kd
		if kd <= 0 {
			kd = e.EC50
		}
		free := kinetics.ReceptorOccupancy(conc, kd)
		if free <= 0 {
			return r
		}
		return r * kinetics.CompetitiveAntagonism(conc, kd, blocker, b.Ki) / free
	}
}

// receptorScale is the binding-site density times its sensitivity. Effects
// without a receptor are unscaled.
func receptorScale(receptor string, st components.State, adj *components.Adjustments) float64 {
	if receptor == "" {
		return 1
	}
	return math.Max(0, activity(receptor, st, adj)*(1+adj.Sensitivity(receptor)))
}

// Concentration returns the intervention's exposure elapsed minutes after
// its start. Specs with a volume of distribution yield mg/L; without one the
// peak-normalized curve is scaled by intensity and by the dose relative to
// DoseMg. Ethanol yields g/dL and
// carbohydrate an appearance rate in mg/dL per minute.
func Concentration(iv *components.Intervention, elapsed float64, ctx components.Context, st components.State, adj *components.Adjustments) float64 {
	pk := iv.Pharmacology.PK

	weight := ctx.Subject.WeightKg
	if weight <= 0 {
		weight = defaultWeightKg
	}
	f := pk.Bioavailability
	if f <= 0 {
		f = 1
	}
	dose := iv.Param("dose", pk.DoseMg) * iv.Intensity

	enzyme := 1.0
	if pk.MetabolizingEnzyme != "" {
		enzyme = math.Max(0, activity(pk.MetabolizingEnzyme, st, adj))
	}
	halfLife := pk.HalfLifeMin
	if halfLife <= 0 {
		halfLife = defaultHalfLife
	}
	absHalfLife := pk.AbsorptionHalfLifeMin
	if absHalfLife <= 0 {
		absHalfLife = defaultAbsorptionHalfLife
	}
	ka := kinetics.HalfLife(absHalfLife)
	ke := kinetics.HalfLife(halfLife) * enzyme

	// c0 is the concentration if the whole bioavailable dose were in plasma.
	// Without a volume it scales the normalized curve by the dose relative to
	// the reference dose.
	c0 := iv.Intensity
	switch {
	case pk.Vd > 0:
		c0 = f * dose / (pk.Vd * weight)
	case pk.DoseMg > 0:
		c0 = dose / pk.DoseMg
	}

	switch pk.Model {
	case components.PKOneCompartment:
		if pk.Vd > 0 {
			return kinetics.PKConc(elapsed, ka, ke, pk.Vd, weight, dose, pk.LagMin, f)
		}
		return kinetics.PK1(elapsed, ka, ke, pk.LagMin) * c0
	case components.PKTwoCompartment:
		if pk.Vd > 0 {
			return kinetics.PK2Conc(elapsed, ka, ke, pk.K12, pk.K21, pk.Vd, weight, dose, pk.LagMin, f)
		}
		return kinetics.PK2(elapsed, ka, ke, pk.K12, pk.K21, pk.LagMin) * c0
	case components.PKMichaelisMenten:
		return kinetics.MichaelisMentenPK(elapsed, pk.Vmax*enzyme, pk.Km, c0, absHalfLife, pk.LagMin)
	case components.PKEthanol:
		return kinetics.AlcoholBAC(elapsed, dose, weight, ctx.Subject.Sex == components.SexFemale)
	case components.PKCarbohydrate:
		if iv.Meal == nil {
			return 0
		}
		meal := *iv.Meal
		meal.WeightKg = weight
		return kinetics.CarbAppearance(elapsed, meal) * iv.Intensity
	default:
		return 0
	}
}

package kinetics

import "math"

// Ethanol distribution (Widmark r) and elimination constants.
const (
	WidmarkMale   = 0.68
	WidmarkFemale = 0.55

	// AlcoholLag is the gastric lag before ethanol appears in blood (min).
	AlcoholLag = 5.0
	// AlcoholAbsorptionHalfLife is the first-order absorption half-life (min).
	AlcoholAbsorptionHalfLife = 12.0
	// AlcoholVmax is the saturated elimination rate in g/dL per minute
	// (≈0.015 g/dL per hour).
	AlcoholVmax = 0.015 / 60.0
	// AlcoholKm is the half-saturation BAC in g/dL.
	AlcoholKm = 0.005
)

// AlcoholVd returns the ethanol distribution volume in liters.
func AlcoholVd(weightKg float64, female bool) float64 {
	r := WidmarkMale
	if female {
		r = WidmarkFemale
	}
	return r * weightKg
}

// AlcoholBAC returns the blood alcohol concentration (g/dL) t minutes after
// drinking grams of ethanol.
func AlcoholBAC(t, grams, weightKg float64, female bool) float64 {
	vd := AlcoholVd(weightKg, female)
	if grams <= 0 || vd <= 0 {
		return 0
	}
	// grams per liter -> grams per deciliter
	c0 := grams / vd / 10
	return MichaelisMentenPK(t, AlcoholVmax, AlcoholKm, c0, AlcoholAbsorptionHalfLife, AlcoholLag)
}

// MealProfile describes the macronutrient content of a meal.
type MealProfile struct {
	SugarGrams    float64 `yaml:"sugar_g"`
	StarchGrams   float64 `yaml:"starch_g"`
	FatGrams      float64 `yaml:"fat_g"`
	FiberGrams    float64 `yaml:"fiber_g"`
	ProteinGrams  float64 `yaml:"protein_g"`
	GlycemicIndex float64 `yaml:"glycemic_index"` // 0-100, applies to starch
	WeightKg      float64 `yaml:"weight_kg"`      // 0 = 70 kg
}

// Glucose appearance constants.
const (
	glucoseVdDLPerKg  = 1.9 // glucose distribution volume, dL/kg
	defaultMealWeight = 70.0
	baseGastricDelay  = 5.0
	maxGastricDelay   = 60.0
	sugarRise         = 8.0
	sugarFall         = 30.0
	starchRise        = 15.0
	starchFall        = 55.0
	minGlycemicScale  = 0.2
	fatSlowing        = 0.02
	fiberSlowing      = 0.03
	proteinSlowing    = 0.005
)

// GastricDelay is the emptying lag (min) before carbohydrate appears in blood.
// Fat, fiber and protein delay emptying.
func GastricDelay(p MealProfile) float64 {
	d := baseGastricDelay + 0.5*math.Max(0, p.FatGrams) + 0.3*math.Max(0, p.FiberGrams) + 0.1*math.Max(0, p.ProteinGrams)
	return math.Min(d, maxGastricDelay)
}

// blunting stretches absorption time constants for fat and fiber content.
func blunting(p MealProfile) float64 {
	return 1 + fatSlowing*math.Max(0, p.FatGrams) + fiberSlowing*math.Max(0, p.FiberGrams) + proteinSlowing*math.Max(0, p.ProteinGrams)
}

// CarbAppearance returns the rate of glucose appearance in mg/dL per minute t
// minutes after the meal. Sugar and glycemic-index-scaled starch each follow a
// GammaPulse normalized so its integral equals the absorbed grams.
func CarbAppearance(t float64, p MealProfile) float64 {
	lag := GastricDelay(p)
	if t <= lag {
		return 0
	}
	slow := blunting(p)

	weight := p.WeightKg
	if weight <= 0 {
		weight = defaultMealWeight
	}
	mgPerDL := 1000 / (glucoseVdDLPerKg * weight)

	var grams float64
	if p.SugarGrams > 0 {
		rise, fall := sugarRise*slow, sugarFall*slow
		grams += p.SugarGrams * GammaPulse(t, rise, fall, lag) / GammaPulseArea(rise, fall)
	}
	if p.StarchGrams > 0 {
		gi := math.Max(minGlycemicScale, p.GlycemicIndex/100)
		rise, fall := starchRise*slow/gi, starchFall*slow/gi
		grams += p.StarchGrams * gi * GammaPulse(t, rise, fall, lag) / GammaPulseArea(rise, fall)
	}
	return grams * mgPerDL
}

package components

import "math"

// MinutesPerDay is the length of the circadian cycle.
const MinutesPerDay = 1440.0

// Sex of the simulated subject.
type Sex uint8

const (
	SexMale Sex = iota
	SexFemale
)

// ParseSex maps "female"/"f" to SexFemale and everything else to SexMale.
func ParseSex(s string) Sex {
	switch s {
	case "female", "f", "F", "Female":
		return SexFemale
	default:
		return SexMale
	}
}

// String implements fmt.Stringer.
func (s Sex) String() string {
	if s == SexFemale {
		return "female"
	}
	return "male"
}

// Subject is the simulated person.
type Subject struct {
	AgeYears  float64
	Sex       Sex
	WeightKg  float64
	HeightCm  float64
	Bloodwork map[string]float64 // lab values keyed by signal key
}

// Physiology holds values derived once from the Subject.
type Physiology struct {
	BMI               float64
	BMR               float64 // kcal/day
	MetabolicCapacity float64 // BMR relative to a 1700 kcal/day reference
}

// referenceBMR is the BMR at which MetabolicCapacity equals 1.
const referenceBMR = 1700.0

// DerivePhysiology computes BMI and the Mifflin–St Jeor BMR.
func DerivePhysiology(s Subject) Physiology {
	var p Physiology
	if s.HeightCm > 0 {
		m := s.HeightCm / 100
		p.BMI = s.WeightKg / (m * m)
	}
	bmr := 10*s.WeightKg + 6.25*s.HeightCm - 5*s.AgeYears
	if s.Sex == SexFemale {
		bmr -= 161
	} else {
		bmr += 5
	}
	p.BMR = math.Max(0, bmr)
	p.MetabolicCapacity = p.BMR / referenceBMR
	return p
}

// Context is the per-step time and subject context handed to setpoints and
// transforms.
type Context struct {
	MinuteOfDay          float64
	CircadianMinuteOfDay float64
	DayOfYear            int
	IsAsleep             bool
	Subject              Subject
	Physiology           Physiology
}

// WrapMinute maps any minute value into [0, MinutesPerDay).
func WrapMinute(m float64) float64 {
	m = math.Mod(m, MinutesPerDay)
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

// WithPhaseShift returns a copy whose circadian clock is delayed by shiftMin
// minutes; a positive shift moves every circadian feature later in the day.
func (c Context) WithPhaseShift(shiftMin float64) Context {
	if shiftMin == 0 {
		return c
	}
	c.CircadianMinuteOfDay = WrapMinute(c.CircadianMinuteOfDay - shiftMin)
	return c
}

// Bloodwork returns the subject's lab value for key, or def when absent.
func (c Context) Bloodwork(key string, def float64) float64 {
	if v, ok := c.Subject.Bloodwork[key]; ok {
		return v
	}
	return def
}

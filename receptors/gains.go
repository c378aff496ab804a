// Package receptors holds the receptor-to-signal gain tables and the
// binding-site adaptation law.
package receptors

import "sort"

// SignalGain is the amplitude change of Signal per unit receptor delta.
type SignalGain struct {
	Signal string
	Gain   float64
}

// Gain tables are keyed by receptor. A receptor may influence several
// signals, each with its own gain.
var (
	densityGains = map[string][]SignalGain{
		"D1":    {{Signal: "dopamine", Gain: 0.1}},
		"D2":    {{Signal: "dopamine", Gain: 0.3}, {Signal: "norepinephrine", Gain: 0.1}},
		"5HT1A": {{Signal: "serotonin", Gain: -0.2}},
		"5HT2A": {{Signal: "serotonin", Gain: 0.1}, {Signal: "cortisol", Gain: 0.05}},
		"GABAA": {{Signal: "gaba", Gain: 0.2}},
		"NMDA":  {{Signal: "glutamate", Gain: 0.15}},
		"MT1":   {{Signal: "melatonin", Gain: 0.1}},
	}
	sensitivityGains = map[string][]SignalGain{
		"D2":    {{Signal: "dopamine", Gain: 0.2}},
		"5HT1A": {{Signal: "serotonin", Gain: -0.15}},
		"GABAA": {{Signal: "gaba", Gain: 0.25}},
		"NMDA":  {{Signal: "glutamate", Gain: 0.1}},
	}
)

// DensityGains returns the signal gains for a density delta of receptor.
// Unknown receptors yield an empty slice.
func DensityGains(receptor string) []SignalGain {
	return lookup(densityGains, receptor)
}

// SensitivityGains returns the signal gains for a sensitivity delta of receptor.
// Unknown receptors yield an empty slice.
func SensitivityGains(receptor string) []SignalGain {
	return lookup(sensitivityGains, receptor)
}

func lookup(table map[string][]SignalGain, receptor string) []SignalGain {
	gains, ok := table[receptor]
	if !ok {
		return []SignalGain{}
	}
	out := make([]SignalGain, len(gains))
	copy(out, gains)
	return out
}

// Receptors lists every receptor present in either table.
func Receptors() []string {
	seen := make(map[string]bool, len(densityGains))
	var out []string
	for _, table := range []map[string][]SignalGain{densityGains, sensitivityGains} {
		for r := range table {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	sort.Strings(out)
	return out
}

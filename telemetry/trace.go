package telemetry

import "github.com/pthm-cable/physim/components"

// TraceRecord is one key of one arm at one step, with its term breakdown
// when the step ran in debug mode.
type TraceRecord struct {
	Arm          string  `csv:"arm"`
	Step         int     `csv:"step"`
	SimMinute    float64 `csv:"sim_minute"`
	Key          string  `csv:"key"`
	Value        float64 `csv:"value"`
	Setpoint     float64 `csv:"setpoint"`
	Relaxation   float64 `csv:"relaxation"`
	Production   float64 `csv:"production"`
	Clearance    float64 `csv:"clearance"`
	Coupling     float64 `csv:"coupling"`
	Intervention float64 `csv:"intervention"`
	Derivative   float64 `csv:"derivative"`
	Clamped      bool    `csv:"clamped"`
}

// TraceRecords flattens st into one record per key, in the order given.
// Keys absent from st are skipped.
func TraceRecords(arm string, step int, minute float64, st components.State, keys []string) []TraceRecord {
	out := make([]TraceRecord, 0, len(keys))
	for _, key := range keys {
		v, ok := st.Lookup(key)
		if !ok {
			continue
		}
		r := TraceRecord{Arm: arm, Step: step, SimMinute: minute, Key: key, Value: v}
		if st.Debug != nil {
			if terms, ok := st.Debug.Terms[key]; ok {
				r.Setpoint = terms.Setpoint
				r.Relaxation = terms.Relaxation
				r.Production = terms.Production
				r.Clearance = terms.Clearance
				r.Coupling = terms.Coupling
				r.Intervention = terms.Intervention
				r.Derivative = terms.Derivative
				r.Clamped = terms.Clamped
			}
		}
		out = append(out, r)
	}
	return out
}

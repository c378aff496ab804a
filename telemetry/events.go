// Package telemetry provides windowed signal statistics, traces, bookmarks,
// snapshots and CSV output for scenario runs.
package telemetry

import "log/slog"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventDoseStart EventType = iota
	EventDoseEnd
	EventConditionEnabled
	EventConditionDisabled
)

var eventNames = [...]string{
	EventDoseStart:         "dose_start",
	EventDoseEnd:           "dose_end",
	EventConditionEnabled:  "condition_enabled",
	EventConditionDisabled: "condition_disabled",
}

// String implements fmt.Stringer.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event is a discrete change in one arm's regimen.
type Event struct {
	Type      EventType `csv:"-"`
	Name      string    `csv:"event"`
	Arm       string    `csv:"arm"`
	Step      int       `csv:"step"`
	SimMinute float64   `csv:"sim_minute"`
	Key       string    `csv:"key"`      // intervention or condition key
	Instance  string    `csv:"instance"` // intervention instance ID, if any
}

// NewDoseStartEvent creates an event for an intervention entering its active window.
func NewDoseStartEvent(arm string, step int, minute float64, key, id string) Event {
	return Event{Type: EventDoseStart, Name: EventDoseStart.String(), Arm: arm, Step: step, SimMinute: minute, Key: key, Instance: id}
}

// NewDoseEndEvent creates an event for an intervention leaving its active window.
func NewDoseEndEvent(arm string, step int, minute float64, key, id string) Event {
	return Event{Type: EventDoseEnd, Name: EventDoseEnd.String(), Arm: arm, Step: step, SimMinute: minute, Key: key, Instance: id}
}

// NewConditionEvent creates an event for a condition toggle.
func NewConditionEvent(arm string, step int, minute float64, key string, enabled bool) Event {
	typ := EventConditionDisabled
	if enabled {
		typ = EventConditionEnabled
	}
	return Event{Type: typ, Name: typ.String(), Arm: arm, Step: step, SimMinute: minute, Key: key}
}

// LogEvent logs the event at debug level.
func (e Event) LogEvent() {
	slog.Debug("event",
		"type", e.Name,
		"arm", e.Arm,
		"step", e.Step,
		"sim_minute", e.SimMinute,
		"key", e.Key,
		"instance", e.Instance,
	)
}

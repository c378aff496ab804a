// Package config provides configuration loading and access for scenario runs.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/physim/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all run configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Subject    SubjectConfig    `yaml:"subject"`
	Engine     EngineConfig     `yaml:"engine"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
	Arms       []ArmConfig      `yaml:"arms"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds clock parameters. All times are minutes.
type SimulationConfig struct {
	DT          float64 `yaml:"dt"`           // Minutes per step
	Duration    float64 `yaml:"duration"`     // Run length
	StartMinute float64 `yaml:"start_minute"` // Clock minute of day at t=0
	DayOfYear   int     `yaml:"day_of_year"`
	SleepStart  float64 `yaml:"sleep_start"` // Minute of day the subject falls asleep
	SleepEnd    float64 `yaml:"sleep_end"`   // Minute of day the subject wakes
}

// Asleep reports whether minuteOfDay falls in the sleep window. The window
// may wrap midnight. Equal start and end means the subject never sleeps.
func (s SimulationConfig) Asleep(minuteOfDay float64) bool {
	if s.SleepStart == s.SleepEnd {
		return false
	}
	if s.SleepStart < s.SleepEnd {
		return minuteOfDay >= s.SleepStart && minuteOfDay < s.SleepEnd
	}
	return minuteOfDay >= s.SleepStart || minuteOfDay < s.SleepEnd
}

// SubjectConfig describes the simulated person.
type SubjectConfig struct {
	AgeYears  float64            `yaml:"age_years"`
	Sex       string             `yaml:"sex"` // male or female
	WeightKg  float64            `yaml:"weight_kg"`
	HeightCm  float64            `yaml:"height_cm"`
	Bloodwork map[string]float64 `yaml:"bloodwork"` // Lab values keyed by signal
}

// EngineConfig holds integration options.
type EngineConfig struct {
	Composition         string  `yaml:"composition"`           // additive or saturating
	MaxInterventionFlux float64 `yaml:"max_intervention_flux"` // 0 disables the cap
	Debug               bool    `yaml:"debug"`                 // Record per-term breakdowns
	Workers             int     `yaml:"workers"`               // Parallel arm workers (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64  `yaml:"stats_window"` // Minutes per stats window
	BookmarkHistorySize int      `yaml:"bookmark_history_size"`
	TraceInterval       int      `yaml:"trace_interval"` // Steps between trace rows (0 disables)
	TraceKeys           []string `yaml:"trace_keys"`     // Empty means every signal
	SnapshotAtEnd       bool     `yaml:"snapshot_at_end"`
	LogStats            bool     `yaml:"log_stats"` // Log each window, not only write it
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: logging.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// ArmConfig is one scenario arm.
type ArmConfig struct {
	Name          string                     `yaml:"name"`
	Baseline      bool                       `yaml:"baseline,omitempty"`
	Conditions    map[string]ConditionConfig `yaml:"conditions,omitempty"`
	Interventions []DoseConfig               `yaml:"interventions,omitempty"`
	Changes       []ConditionChange          `yaml:"changes,omitempty"`
}

// ConditionConfig is the initial state of one condition.
type ConditionConfig struct {
	Enabled bool               `yaml:"enabled"`
	Params  map[string]float64 `yaml:"params,omitempty"`
}

// DoseConfig schedules one intervention instance. Zero duration and
// intensity fall back to the catalog defaults.
type DoseConfig struct {
	ID        string             `yaml:"id,omitempty"`
	Key       string             `yaml:"key"`
	Start     float64            `yaml:"start"`
	Duration  float64            `yaml:"duration,omitempty"`
	Intensity float64            `yaml:"intensity,omitempty"`
	Params    map[string]float64 `yaml:"params,omitempty"`
}

// ConditionChange toggles a condition at a simulated minute.
type ConditionChange struct {
	At        float64            `yaml:"at"`
	Condition string             `yaml:"condition"`
	Enabled   bool               `yaml:"enabled"`
	Params    map[string]float64 `yaml:"params,omitempty"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Steps      int                   // Steps per run
	Baseline   string                // name of the baseline arm, if any
	Subject    components.Subject    // Subject section as engine input
	Physiology components.Physiology // derived from Subject
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. A user file that lists
// arms replaces the default arms.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks value ranges and arm names. Catalog keys are checked by
// the scenario runner.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	sim := c.Simulation
	if !(sim.DT > 0) || math.IsInf(sim.DT, 0) {
		return invalid("simulation.dt must be positive, got %v", sim.DT)
	}
	if !(sim.Duration > 0) {
		return invalid("simulation.duration must be positive, got %v", sim.Duration)
	}
	for _, m := range []struct {
		name  string
		value float64
	}{
		{"start_minute", sim.StartMinute},
		{"sleep_start", sim.SleepStart},
		{"sleep_end", sim.SleepEnd},
	} {
		if m.value < 0 || m.value >= components.MinutesPerDay {
			return invalid("simulation.%s must be in [0, 1440), got %v", m.name, m.value)
		}
	}
	if c.Subject.WeightKg <= 0 || c.Subject.HeightCm <= 0 {
		return invalid("subject weight and height must be positive")
	}
	switch c.Engine.Composition {
	case "", "additive", "saturating":
	default:
		return invalid("engine.composition %q", c.Engine.Composition)
	}
	if c.Engine.MaxInterventionFlux < 0 {
		return invalid("engine.max_intervention_flux must not be negative")
	}
	if !(c.Telemetry.StatsWindow > 0) {
		return invalid("telemetry.stats_window must be positive, got %v", c.Telemetry.StatsWindow)
	}
	if c.Telemetry.TraceInterval < 0 {
		return invalid("telemetry.trace_interval must not be negative")
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if len(c.Arms) == 0 {
		return invalid("at least one arm is required")
	}
	seen := make(map[string]bool, len(c.Arms))
	baselines := 0
	for i, arm := range c.Arms {
		if arm.Name == "" {
			return invalid("arms[%d] has no name", i)
		}
		if seen[arm.Name] {
			return invalid("duplicate arm %q", arm.Name)
		}
		seen[arm.Name] = true
		if arm.Baseline {
			baselines++
		}
		for j, d := range arm.Interventions {
			if d.Key == "" {
				return invalid("arm %q intervention %d has no key", arm.Name, j)
			}
			if d.Duration < 0 || d.Intensity < 0 {
				return invalid("arm %q intervention %q: negative duration or intensity", arm.Name, d.Key)
			}
		}
	}
	if baselines > 1 {
		return invalid("%d baseline arms, want at most one", baselines)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Steps = int(math.Ceil(c.Simulation.Duration/c.Simulation.DT - 1e-9))

	c.Derived.Baseline = ""
	for _, arm := range c.Arms {
		if arm.Baseline {
			c.Derived.Baseline = arm.Name
		}
	}

	c.Derived.Subject = components.Subject{
		AgeYears:  c.Subject.AgeYears,
		Sex:       components.ParseSex(c.Subject.Sex),
		WeightKg:  c.Subject.WeightKg,
		HeightCm:  c.Subject.HeightCm,
		Bloodwork: c.Subject.Bloodwork,
	}
	c.Derived.Physiology = components.DerivePhysiology(c.Derived.Subject)
}

// ConditionState overlays the arm's condition section onto defaults and
// returns the merged copy; defaults is not modified. Params are merged per
// key. Conditions missing from defaults are returned sorted in unknown.
func (a ArmConfig) ConditionState(defaults components.ConditionState) (state components.ConditionState, unknown []string) {
	state = defaults.Clone()
	for key, cc := range a.Conditions {
		entry, ok := state[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		entry.Enabled = cc.Enabled
		for k, v := range cc.Params {
			entry.Params[k] = v
		}
		state[key] = entry
	}
	sort.Strings(unknown)
	return state, unknown
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

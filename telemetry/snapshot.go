package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/physim/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds every arm's state at one step, enough to resume a run.
type Snapshot struct {
	Version   int     `json:"version"`
	Step      int     `json:"step"`
	SimMinute float64 `json:"sim_minute"`

	Arms []ArmState `json:"arms"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ArmState holds one arm's complete state.
type ArmState struct {
	Name       string                    `json:"name"`
	Baseline   bool                      `json:"baseline,omitempty"`
	Signals    map[string]float64        `json:"signals"`
	Auxiliary  map[string]float64        `json:"auxiliary"`
	Conditions components.ConditionState `json:"conditions,omitempty"`
}

// NewArmState copies st and conditions into an ArmState.
func NewArmState(arm components.Arm, st components.State, conditions components.ConditionState) ArmState {
	c := st.Clone()
	return ArmState{
		Name:       arm.Name,
		Baseline:   arm.Baseline,
		Signals:    c.Signals,
		Auxiliary:  c.Auxiliary,
		Conditions: conditions.Clone(),
	}
}

// State returns a fresh components.State built from the snapshot values.
func (a ArmState) State() components.State {
	return components.State{Signals: a.Signals, Auxiliary: a.Auxiliary}.Clone()
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Step)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Step, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}

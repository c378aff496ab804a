package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/physim/components"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	st := components.NewState(1, 1)
	st.Signals["dopamine"] = 51.5
	st.Auxiliary["D2"] = 0.93
	conditions := components.ConditionState{
		"comt": {Enabled: true, Params: map[string]float64{"genotype": -0.4}},
	}

	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		Step:      1000,
		SimMinute: 1000,
		Arms:      []ArmState{NewArmState(components.Arm{Name: "met", Baseline: true}, st, conditions)},
		Bookmark:  &Bookmark{Type: BookmarkSteady, Arm: "met", Signal: "dopamine", Step: 1000},
	}

	// The arm state is a copy.
	st.Signals["dopamine"] = 0

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_1000_steady.json" {
		t.Errorf("snapshot name = %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Step != 1000 || len(loaded.Arms) != 1 {
		t.Fatalf("loaded = %+v", loaded)
	}
	arm := loaded.Arms[0]
	if arm.Name != "met" || !arm.Baseline {
		t.Errorf("arm = %+v", arm)
	}
	restored := arm.State()
	if restored.Signals["dopamine"] != 51.5 || restored.Auxiliary["D2"] != 0.93 {
		t.Errorf("restored state = %+v", restored)
	}
	if e := arm.Conditions["comt"]; !e.Enabled || e.Params["genotype"] != -0.4 {
		t.Errorf("conditions = %+v", arm.Conditions)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkSteady {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}
}

func TestLoadSnapshot_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for a missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}

	old := filepath.Join(dir, "old.json")
	if err := os.WriteFile(old, []byte(`{"version": 99, "arms": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(old); err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("expected version error, got %v", err)
	}
}

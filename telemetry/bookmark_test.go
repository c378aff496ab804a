package telemetry

import "testing"

func window(arm, signal string, step int, mean float64) SignalWindowStats {
	return SignalWindowStats{Arm: arm, Signal: signal, WindowEndStep: step, Mean: mean, Samples: 60}
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, b := range bookmarks {
		if b.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_SurgeAndTrough(t *testing.T) {
	tests := []struct {
		name string
		mean float64
		want BookmarkType
	}{
		{"surge", 20, BookmarkSurge},
		{"trough", 5, BookmarkTrough},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBookmarkDetector(10)
			for i := 0; i < 3; i++ {
				if got := bd.Check(window("x", "dopamine", i*60, 10)); len(got) != 0 {
					t.Fatalf("unexpected bookmarks in flat history: %+v", got)
				}
			}
			got := bd.Check(window("x", "dopamine", 180, tt.mean))
			if !hasBookmark(got, tt.want) {
				t.Errorf("expected %s bookmark, got %+v", tt.want, got)
			}
		})
	}
}

func TestBookmarkDetector_NeedsHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(window("x", "s", 60, 10))
	if got := bd.Check(window("x", "s", 120, 100)); hasBookmark(got, BookmarkSurge) {
		t.Error("surge should need at least three windows of history")
	}
}

func TestBookmarkDetector_ClampOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)
	w := window("x", "glucose", 60, 90)
	w.Clamps = 3

	if got := bd.Check(w); !hasBookmark(got, BookmarkClamp) {
		t.Fatalf("expected clamp bookmark, got %+v", got)
	}
	w.WindowEndStep = 120
	if got := bd.Check(w); hasBookmark(got, BookmarkClamp) {
		t.Error("clamp bookmark should fire once per arm and signal")
	}

	other := w
	other.Arm = "y"
	if got := bd.Check(other); !hasBookmark(got, BookmarkClamp) {
		t.Error("each arm should be tracked separately")
	}
}

func TestBookmarkDetector_Steady(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	firedAt := -1
	for i := 0; i < 12; i++ {
		if hasBookmark(bd.Check(window("x", "cortisol", i, 10)), BookmarkSteady) {
			fired++
			firedAt = i
		}
	}
	if fired != 1 {
		t.Fatalf("steady fired %d times, want exactly once", fired)
	}
	// Four windows fill the comparison, then five consecutive steady checks.
	if firedAt != 7 {
		t.Errorf("steady fired at window %d, want 7", firedAt)
	}
}

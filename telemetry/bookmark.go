package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSurge  BookmarkType = "surge"
	BookmarkTrough BookmarkType = "trough"
	BookmarkClamp  BookmarkType = "clamp"
	BookmarkSteady BookmarkType = "steady"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Arm         string       `csv:"arm"`
	Signal      string       `csv:"signal"`
	Step        int          `csv:"step"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"arm", b.Arm,
		"signal", b.Signal,
		"step", b.Step,
		"description", b.Description,
	)
}

const (
	surgeFactor     = 1.5
	steadyCV        = 0.02 // coefficient of variation of recent window means
	steadyWindows   = 5
	minHistoryCheck = 3
)

// signalTrack is the rolling history of one arm and signal.
type signalTrack struct {
	history     []float64 // window means, circular
	idx         int
	full        bool
	clamped     bool
	steadyCount int
}

func (st *signalTrack) means() []float64 {
	if st.full {
		return st.history
	}
	return st.history[:st.idx]
}

func (st *signalTrack) add(mean float64) {
	st.history[st.idx] = mean
	st.idx = (st.idx + 1) % len(st.history)
	if st.idx == 0 {
		st.full = true
	}
}

// BookmarkDetector detects interesting moments in per-signal window stats.
type BookmarkDetector struct {
	historySize int
	tracks      map[string]*signalTrack
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		historySize: historySize,
		tracks:      make(map[string]*signalTrack),
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats SignalWindowStats) []Bookmark {
	key := stats.Arm + "/" + stats.Signal
	track, ok := bd.tracks[key]
	if !ok {
		track = &signalTrack{history: make([]float64, bd.historySize)}
		bd.tracks[key] = track
	}

	var bookmarks []Bookmark

	if b := checkSurge(track, stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := checkClamp(track, stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	track.add(stats.Mean)

	if b := checkSteady(track, stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	return bookmarks
}

// checkSurge fires when the window mean leaves the band around the rolling
// average by more than surgeFactor.
func checkSurge(track *signalTrack, stats SignalWindowStats) *Bookmark {
	history := track.means()
	if len(history) < minHistoryCheck {
		return nil
	}
	var sum float64
	for _, m := range history {
		sum += m
	}
	avg := sum / float64(len(history))
	if avg <= 0 {
		return nil
	}

	ratio := stats.Mean / avg
	var typ BookmarkType
	switch {
	case ratio > surgeFactor:
		typ = BookmarkSurge
	case ratio < 1/surgeFactor:
		typ = BookmarkTrough
	default:
		return nil
	}
	return &Bookmark{
		Type:        typ,
		Arm:         stats.Arm,
		Signal:      stats.Signal,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("Mean %.3g is %.2fx rolling average (%.3g)", stats.Mean, ratio, avg),
	}
}

// checkClamp fires on the first window in which the signal hit its bounds.
func checkClamp(track *signalTrack, stats SignalWindowStats) *Bookmark {
	if track.clamped || stats.Clamps == 0 {
		return nil
	}
	track.clamped = true
	return &Bookmark{
		Type:        BookmarkClamp,
		Arm:         stats.Arm,
		Signal:      stats.Signal,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("Clamped on %d of %d steps", stats.Clamps, stats.Samples),
	}
}

// checkSteady fires once after steadyWindows consecutive windows whose recent
// means vary by less than steadyCV.
func checkSteady(track *signalTrack, stats SignalWindowStats) *Bookmark {
	history := track.means()
	if len(history) < 4 {
		return nil
	}
	recent := make([]float64, 0, 4)
	for i := 1; i <= 4; i++ {
		j := (track.idx - i + len(track.history)) % len(track.history)
		recent = append(recent, track.history[j])
	}

	s := ComputeSummary(recent)
	cv := math.Inf(1)
	if s.Mean != 0 {
		cv = s.Std / math.Abs(s.Mean)
	}
	if cv < steadyCV {
		track.steadyCount++
	} else {
		track.steadyCount = 0
	}

	if track.steadyCount == steadyWindows {
		return &Bookmark{
			Type:        BookmarkSteady,
			Arm:         stats.Arm,
			Signal:      stats.Signal,
			Step:        stats.WindowEndStep,
			Description: fmt.Sprintf("Steady at %.3g over %d windows", s.Mean, steadyWindows),
		}
	}
	return nil
}

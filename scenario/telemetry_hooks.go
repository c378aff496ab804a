package scenario

import (
	"log/slog"

	"github.com/pthm-cable/physim/catalog"
	"github.com/pthm-cable/physim/config"
	"github.com/pthm-cable/physim/telemetry"
)

// telemetryState groups the per-run collectors. output may be nil.
type telemetryState struct {
	collector *telemetry.Collector
	tracker   *telemetry.RunTracker
	bookmarks *telemetry.BookmarkDetector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	traceInterval int
	traceKeys     []string
	logStats      bool
	snapshotAtEnd bool
	baseline      string

	events []telemetry.Event // buffered until the next flush of the step
}

func newTelemetryState(cfg *config.Config, reg *catalog.Registry) *telemetryState {
	keys := reg.SignalKeys()
	traceKeys := cfg.Telemetry.TraceKeys
	if len(traceKeys) == 0 {
		traceKeys = keys
	}
	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Simulation.DT, keys)
	return &telemetryState{
		collector:     collector,
		tracker:       telemetry.NewRunTracker(keys),
		bookmarks:     telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		perf:          telemetry.NewPerfCollector(collector.WindowDurationSteps()),
		traceInterval: cfg.Telemetry.TraceInterval,
		traceKeys:     traceKeys,
		logStats:      cfg.Telemetry.LogStats,
		snapshotAtEnd: cfg.Telemetry.SnapshotAtEnd,
		baseline:      cfg.Derived.Baseline,
	}
}

// SetOutput directs CSV, config and snapshot output to om. A nil om
// disables file output.
func (r *Runner) SetOutput(om *telemetry.OutputManager) {
	r.tel.output = om
}

// event buffers one regimen event for the next telemetry write.
func (t *telemetryState) event(e telemetry.Event) {
	e.LogEvent()
	t.events = append(t.events, e)
}

// recordTelemetry samples every arm after a step.
func (r *Runner) recordTelemetry() {
	tel := r.tel
	trace := tel.traceInterval > 0 && r.step%tel.traceInterval == 0
	minute := r.Time()

	for _, e := range r.arms {
		name := r.armMap.Get(e).Name
		st := r.stateMap.Get(e)
		tel.collector.Record(name, *st)
		tel.tracker.Record(name, *st)
		if trace {
			if err := tel.output.WriteTrace(telemetry.TraceRecords(name, r.step, minute, *st, tel.traceKeys)); err != nil {
				slog.Error("failed to write trace", "error", err)
			}
		}
	}

	if len(tel.events) > 0 {
		if err := tel.output.WriteEvents(tel.events); err != nil {
			slog.Error("failed to write events", "error", err)
		}
		tel.events = tel.events[:0]
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (r *Runner) flushTelemetry() {
	if !r.tel.collector.ShouldFlush(r.step) {
		return
	}
	r.flushWindow()
}

func (r *Runner) flushWindow() {
	tel := r.tel
	stats := tel.collector.Flush(r.step)
	perfStats := tel.perf.Flush()

	if tel.logStats {
		for _, s := range stats {
			s.LogStats()
		}
		perfStats.LogStats(r.step)
	}

	if err := tel.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := tel.output.WritePerf(perfStats, r.step); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, s := range stats {
		for _, bm := range tel.bookmarks.Check(s) {
			if tel.logStats {
				bm.LogBookmark()
			}
			if err := tel.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			r.saveSnapshot(&bm)
		}
	}
}

// Finish flushes the partial stats window, writes the run summary and the
// final snapshot, and returns the summary rows.
func (r *Runner) Finish() []telemetry.SummaryRow {
	tel := r.tel
	if tel.collector.Pending(r.step) {
		r.flushWindow()
	}

	rows := tel.tracker.Rows(tel.baseline)
	if tel.logStats {
		telemetry.LogSummary(rows)
	}
	if err := tel.output.WriteSummary(rows); err != nil {
		slog.Error("failed to write summary", "error", err)
	}

	if tel.snapshotAtEnd {
		r.saveSnapshot(nil)
	}
	return rows
}

// saveSnapshot writes the current state to the output directory, if any.
func (r *Runner) saveSnapshot(bookmark *telemetry.Bookmark) {
	if r.tel.output == nil {
		return
	}
	path, err := r.tel.output.WriteSnapshot(r.Snapshot(bookmark))
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "step", r.step)
}

// Snapshot captures every arm's current state.
func (r *Runner) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	s := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		Step:      r.step,
		SimMinute: r.Time(),
		Bookmark:  bookmark,
	}
	for _, e := range r.arms {
		s.Arms = append(s.Arms, telemetry.NewArmState(*r.armMap.Get(e), *r.stateMap.Get(e), r.regimenMap.Get(e).Conditions))
	}
	return s
}

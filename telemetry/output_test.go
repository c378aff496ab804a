package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Every method is nil-safe.
	if err := om.WriteTelemetry([]SignalWindowStats{{}}); err != nil {
		t.Error(err)
	}
	if err := om.WriteSummary([]SummaryRow{{}}); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager should report an empty dir")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_HeaderWrittenOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteTelemetry([]SignalWindowStats{{Arm: "x", Signal: "a", Mean: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTelemetry([]SignalWindowStats{{Arm: "x", Signal: "a", Mean: 2}, {Arm: "x", Signal: "b", Mean: 3}}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteSummary([]SummaryRow{{Arm: "x", Signal: "a", DeltaMean: 0.5}}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var rows []SignalWindowStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	if len(rows) != 3 || rows[2].Signal != "b" || rows[2].Mean != 3 {
		t.Errorf("telemetry rows = %+v", rows)
	}

	sf, err := os.Open(filepath.Join(dir, "summary.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer sf.Close()
	var summary []SummaryRow
	if err := gocsv.UnmarshalFile(sf, &summary); err != nil {
		t.Fatalf("reading summary.csv: %v", err)
	}
	if len(summary) != 1 || summary[0].DeltaMean != 0.5 {
		t.Errorf("summary rows = %+v", summary)
	}
}

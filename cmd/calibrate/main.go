// Package main fits the one-compartment PK constants of a catalog
// intervention to observed concentration samples.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/physim/catalog"
)

// Result is the fitted parameter set written as YAML.
type Result struct {
	Intervention          string  `yaml:"intervention"`
	AbsorptionHalfLifeMin float64 `yaml:"absorption_half_life_min"`
	HalfLifeMin           float64 `yaml:"half_life_min"`
	LagMin                float64 `yaml:"lag_min"`
	MSE                   float64 `yaml:"mse"`
	Samples               int     `yaml:"samples"`
	Evaluations           int     `yaml:"evaluations"`
}

func main() {
	// CLI flags
	samplesPath := flag.String("samples", "", "CSV file with minute,value columns")
	key := flag.String("intervention", catalog.InterventionCaffeine, "Catalog intervention to start from")
	maxEvals := flag.Int("max-evals", 2000, "Maximum number of evaluations")
	outputPath := flag.String("output", "", "YAML file for the fitted parameters (empty = stdout)")
	flag.Parse()

	if *samplesPath == "" {
		log.Fatal("--samples is required")
	}

	def, ok := catalog.Default().Intervention(*key)
	if !ok {
		log.Fatalf("unknown intervention %q", *key)
	}

	raw, err := LoadSamples(*samplesPath)
	if err != nil {
		log.Fatal(err)
	}
	samples, err := NormalizeSamples(raw)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	res, err := Fit(*key, def.Pharmacology.PK, samples, *maxEvals)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Fit complete after %d evaluations in %s, mse=%.6g\n",
		res.Evaluations, time.Since(start).Round(time.Millisecond), res.MSE)

	out, err := yaml.Marshal(res)
	if err != nil {
		log.Fatalf("failed to marshal result: %v", err)
	}
	if *outputPath == "" {
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(*outputPath, out, 0644); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Result saved to: %s\n", *outputPath)
}

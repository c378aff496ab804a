package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/kinetics"
)

// Sample is one observed level, minutes after the dose.
type Sample struct {
	Minute float64 `csv:"minute"`
	Value  float64 `csv:"value"`
}

var errNoSamples = errors.New("no usable samples")

// LoadSamples reads minute,value rows from a CSV file.
func LoadSamples(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening samples: %w", err)
	}
	defer f.Close()

	var samples []Sample
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		return nil, fmt.Errorf("parsing samples: %w", err)
	}
	return samples, nil
}

// NormalizeSamples drops negative times and scales values so the peak is 1,
// matching the peak-normalized PK1 curve. Output is sorted by minute.
func NormalizeSamples(samples []Sample) ([]Sample, error) {
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.Minute >= 0 {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, errNoSamples
	}

	values := make([]float64, len(out))
	for i, s := range out {
		values[i] = s.Value
	}
	peak := floats.Max(values)
	if peak <= 0 {
		return nil, fmt.Errorf("%w: peak value %v", errNoSamples, peak)
	}
	for i := range out {
		out[i].Value /= peak
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	return out, nil
}

// FitnessEvaluator scores a PK parameter vector against normalized samples.
type FitnessEvaluator struct {
	params  *ParamVector
	samples []Sample
}

// NewFitnessEvaluator creates a new evaluator. samples must be normalized.
func NewFitnessEvaluator(params *ParamVector, samples []Sample) *FitnessEvaluator {
	return &FitnessEvaluator{params: params, samples: samples}
}

// Curve returns the fitted curve at each sample minute.
func (fe *FitnessEvaluator) Curve(raw []float64) []float64 {
	v := fe.params.Clamp(raw)
	ka, ke, lag := kinetics.HalfLife(v[0]), kinetics.HalfLife(v[1]), v[2]
	out := make([]float64, len(fe.samples))
	for i, s := range fe.samples {
		out[i] = kinetics.PK1(s.Minute, ka, ke, lag)
	}
	return out
}

// Evaluate returns the mean squared error of the curve (lower = better).
// Values outside the bounds are penalized by their distance from the box so
// the simplex is pushed back inside.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	curve := fe.Curve(raw)
	observed := make([]float64, len(fe.samples))
	for i, s := range fe.samples {
		observed[i] = s.Value
	}
	mse := floats.Distance(curve, observed, 2)
	mse = mse * mse / float64(len(observed))

	clamped := fe.params.Clamp(raw)
	var penalty float64
	for i := range raw {
		span := fe.params.Specs[i].Max - fe.params.Specs[i].Min
		d := (raw[i] - clamped[i]) / span
		penalty += d * d
	}
	return mse + penalty
}

// Fit runs Nelder-Mead over the normalized parameter space, starting from
// pk's catalog values. The best evaluation seen is returned even when the
// optimizer stops with an error.
func Fit(key string, pk components.PKSpec, samples []Sample, maxEvals int) (Result, error) {
	params := NewParamVector(pk)
	evaluator := NewFitnessEvaluator(params, samples)

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = params.Clamp(raw)
			}
			return fitness
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 200,
		},
	}

	initX := params.Normalize(params.DefaultVector())
	_, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{})
	if bestParams == nil {
		bestParams = params.DefaultVector()
		bestFitness = evaluator.Evaluate(bestParams)
	}

	return Result{
		Intervention:          key,
		AbsorptionHalfLifeMin: bestParams[0],
		HalfLifeMin:           bestParams[1],
		LagMin:                bestParams[2],
		MSE:                   bestFitness,
		Samples:               len(samples),
		Evaluations:           evalCount,
	}, err
}

// Package htest implements the hypothesis tests behind group comparisons:
// contingency tests, parametric and rank-based location tests, and the
// normality and variance-homogeneity checks that choose between them.
// P-values come from gonum distributions.
package htest

import (
	"math"

	"epistack/domain/core"
	"epistack/domain/stats"
	"epistack/ports"

	gstat "gonum.org/v1/gonum/stat"
)

// Battery is the default TestBatteryPort implementation
type Battery struct{}

// NewBattery creates a new test battery
func NewBattery() *Battery {
	return &Battery{}
}

var _ ports.TestBatteryPort = (*Battery)(nil)

func (b *Battery) ChiSquare(table [][]float64) (stats.TestResult, error) {
	return ChiSquare(table)
}

func (b *Battery) FisherExact(table [][]float64) (stats.TestResult, error) {
	return FisherExact(table)
}

func (b *Battery) OneWayANOVA(groups [][]float64) (stats.TestResult, error) {
	return OneWayANOVA(groups)
}

func (b *Battery) TTest(x, y []float64) (stats.TestResult, error) {
	return TTest(x, y)
}

func (b *Battery) MannWhitney(x, y []float64) (stats.TestResult, error) {
	return MannWhitney(x, y)
}

func (b *Battery) KruskalWallis(groups [][]float64) (stats.TestResult, error) {
	return KruskalWallis(groups)
}

func (b *Battery) ShapiroWilk(x []float64) (stats.TestResult, error) {
	return ShapiroWilk(x)
}

func (b *Battery) Bartlett(groups [][]float64) (stats.TestResult, error) {
	return Bartlett(groups)
}

// meanVar returns the mean and unbiased sample variance
func meanVar(x []float64) (float64, float64) {
	if len(x) < 2 {
		if len(x) == 1 {
			return x[0], math.NaN()
		}
		return math.NaN(), math.NaN()
	}
	return gstat.MeanVariance(x, nil)
}

func requireGroups(test string, groups [][]float64, minGroups, minSize int) error {
	if len(groups) < minGroups {
		return core.NewInsufficientDataError(test+" groups", minGroups, len(groups))
	}
	for _, g := range groups {
		if len(g) < minSize {
			return core.NewInsufficientDataError(test, minSize, len(g))
		}
	}
	return nil
}

func clampP(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return p
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

package ports

import (
	"epistack/domain/stats"
)

// TestBatteryPort runs the statistical primitives behind a group comparison.
// Tables are indexed [row][column]; groups are the per-level value subsets
// with missing observations already removed.
type TestBatteryPort interface {
	ChiSquare(table [][]float64) (stats.TestResult, error)
	FisherExact(table [][]float64) (stats.TestResult, error)
	OneWayANOVA(groups [][]float64) (stats.TestResult, error)
	TTest(a, b []float64) (stats.TestResult, error)
	MannWhitney(a, b []float64) (stats.TestResult, error)
	KruskalWallis(groups [][]float64) (stats.TestResult, error)

	// Assumption checks
	ShapiroWilk(x []float64) (stats.TestResult, error)
	Bartlett(groups [][]float64) (stats.TestResult, error)
}

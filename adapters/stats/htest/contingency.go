package htest

import (
	"fmt"
	"math"

	"epistack/domain/core"
	"epistack/domain/stats"

	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"
)

// fisherTolerance matches R's relative tolerance when collecting tables at
// least as extreme as the observed one
const fisherTolerance = 1 + 1e-7

// ChiSquare performs Pearson's chi-square test of independence without
// continuity correction. Rows and columns with zero margins must be removed
// beforehand (see stats.CompactTable).
func ChiSquare(table [][]float64) (stats.TestResult, error) {
	if err := checkTable(table); err != nil {
		return stats.NotApplicable(), err
	}
	expected := stats.ExpectedCounts(table)

	chiSq := 0.0
	for i, row := range table {
		for j, observed := range row {
			e := expected[i][j]
			if e <= 0 {
				return stats.NotApplicable(), fmt.Errorf("%w: zero expected count at cell (%d,%d)", core.ErrDegenerate, i, j)
			}
			chiSq += (observed - e) * (observed - e) / e
		}
	}

	df := float64((len(table) - 1) * (len(table[0]) - 1))
	chiDist := distuv.ChiSquared{K: df}
	return stats.TestResult{
		Statistic: chiSq,
		DF:        df,
		PValue:    clampP(chiDist.Survival(chiSq)),
	}, nil
}

// FisherExact performs the two-sided Fisher exact test on a 2x2 table. The
// statistic is the sample odds ratio. Larger tables are rejected.
func FisherExact(table [][]float64) (stats.TestResult, error) {
	if len(table) != 2 || len(table[0]) != 2 || len(table[1]) != 2 {
		rows, cols := len(table), 0
		if rows > 0 {
			cols = len(table[0])
		}
		return stats.NotApplicable(), fmt.Errorf("%w: exact test requires a 2x2 table, got %dx%d", core.ErrDegenerate, rows, cols)
	}
	a, b := table[0][0], table[0][1]
	c, d := table[1][0], table[1][1]
	for _, v := range []float64{a, b, c, d} {
		if v < 0 || v != math.Trunc(v) {
			return stats.NotApplicable(), fmt.Errorf("%w: exact test requires non-negative integer counts", core.ErrDegenerate)
		}
	}

	n := a + b + c + d
	row1 := a + b
	col1 := a + c
	lo := math.Max(0, row1+col1-n)
	hi := math.Min(row1, col1)

	logDenom := combin.LogGeneralizedBinomial(n, row1)
	prob := func(x float64) float64 {
		return math.Exp(combin.LogGeneralizedBinomial(col1, x) + combin.LogGeneralizedBinomial(n-col1, row1-x) - logDenom)
	}

	observed := prob(a)
	p := 0.0
	for x := lo; x <= hi; x++ {
		if px := prob(x); px <= observed*fisherTolerance {
			p += px
		}
	}

	oddsRatio := math.Inf(1)
	switch {
	case b*c > 0:
		oddsRatio = (a * d) / (b * c)
	case a*d == 0:
		oddsRatio = math.NaN()
	}

	return stats.TestResult{Statistic: oddsRatio, PValue: clampP(p)}, nil
}

func checkTable(table [][]float64) error {
	if len(table) < 2 || len(table[0]) < 2 {
		return fmt.Errorf("%w: contingency table needs at least 2x2 cells", core.ErrDegenerate)
	}
	cols := len(table[0])
	for i, row := range table {
		if len(row) != cols {
			return fmt.Errorf("%w: ragged contingency table at row %d", core.ErrDegenerate, i)
		}
	}
	return nil
}

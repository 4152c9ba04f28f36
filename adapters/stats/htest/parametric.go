package htest

import (
	"fmt"
	"math"

	"epistack/domain/core"
	"epistack/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// OneWayANOVA compares group means with the F statistic
// (between-group mean square over within-group mean square).
func OneWayANOVA(groups [][]float64) (stats.TestResult, error) {
	if err := requireGroups("one-way ANOVA", groups, 2, 1); err != nil {
		return stats.NotApplicable(), err
	}

	total, n := 0.0, 0
	for _, g := range groups {
		for _, v := range g {
			total += v
		}
		n += len(g)
	}
	k := len(groups)
	if n <= k {
		return stats.NotApplicable(), core.NewInsufficientDataError("one-way ANOVA", k+1, n)
	}
	grand := total / float64(n)

	ssBetween, ssWithin := 0.0, 0.0
	for _, g := range groups {
		mean := 0.0
		for _, v := range g {
			mean += v
		}
		mean /= float64(len(g))
		ssBetween += float64(len(g)) * (mean - grand) * (mean - grand)
		for _, v := range g {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	df1 := float64(k - 1)
	df2 := float64(n - k)
	if ssWithin == 0 {
		return stats.NotApplicable(), fmt.Errorf("%w: zero within-group variance", core.ErrDegenerate)
	}
	f := (ssBetween / df1) / (ssWithin / df2)

	fDist := distuv.F{D1: df1, D2: df2}
	return stats.TestResult{
		Statistic: f,
		DF:        df1,
		DF2:       df2,
		PValue:    clampP(fDist.Survival(f)),
	}, nil
}

// TTest performs the two-sided two-sample t-test assuming equal variances
func TTest(x, y []float64) (stats.TestResult, error) {
	if err := requireGroups("t-test", [][]float64{x, y}, 2, 1); err != nil {
		return stats.NotApplicable(), err
	}
	n1, n2 := float64(len(x)), float64(len(y))
	df := n1 + n2 - 2
	if df < 1 {
		return stats.NotApplicable(), core.NewInsufficientDataError("t-test", 3, len(x)+len(y))
	}

	m1, v1 := meanVar(x)
	m2, v2 := meanVar(y)
	if len(x) == 1 {
		v1 = 0
	}
	if len(y) == 1 {
		v2 = 0
	}

	pooled := ((n1-1)*v1 + (n2-1)*v2) / df
	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	if se == 0 || math.IsNaN(se) {
		return stats.NotApplicable(), fmt.Errorf("%w: zero pooled variance", core.ErrDegenerate)
	}
	t := (m1 - m2) / se

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return stats.TestResult{
		Statistic: t,
		DF:        df,
		PValue:    clampP(2 * tDist.Survival(math.Abs(t))),
	}, nil
}

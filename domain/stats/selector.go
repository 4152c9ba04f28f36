package stats

import (
	"fmt"
	"math"
)

// Fisher's exact test replaces chi-square when more than this share of
// expected cells fall below MinExpectedCount, for datasets with fewer than
// ExactTestMaxTotal rows
const (
	SparseCellFraction = 0.2
	MinExpectedCount   = 5.0
	ExactTestMaxTotal  = 1000
	MinGroupSize       = 3
	DefaultAssumptionP = 0.01
)

// RankMode decides how a numeric variable chooses between parametric and
// rank-based summaries.
type RankMode int

const (
	// RankAuto follows the normality and variance-homogeneity checks
	RankAuto RankMode = iota
	// RankForced always uses median (IQR) and the rank tests
	RankForced
	// RankNever always uses mean (SD) and the parametric tests
	RankNever
)

// Assumptions carries the p-values of the normality and
// variance-homogeneity checks for one numeric variable.
type Assumptions struct {
	Checked      bool    `json:"checked"`
	NormalityP   float64 `json:"normality_p"`
	HomogeneityP float64 `json:"homogeneity_p"`
}

// Violated reports whether either check fell below the threshold. NaN
// p-values never count as violations.
func (a Assumptions) Violated(threshold float64) bool {
	if !a.Checked {
		return false
	}
	return a.NormalityP < threshold || a.HomogeneityP < threshold
}

// SelectorInput is everything the test choice depends on
type SelectorInput struct {
	Role           Role
	TestingEnabled bool
	GroupSizes     []int

	// Categorical variables: shape and sparsity of the testable table.
	// SampleSize is the dataset row count, missing values included.
	TableRows      int
	TableCols      int
	SampleSize     int
	SparseFraction float64

	// Numeric variables
	Rank        RankMode
	Assumptions Assumptions
	Threshold   float64
}

// Decision is the selector's answer for one variable
type Decision struct {
	Test          TestKind `json:"test"`
	Summary       Summary  `json:"summary"`
	NotApplicable bool     `json:"not_applicable,omitempty"`
	Reason        string   `json:"reason"`
}

type rule func(in SelectorInput) Decision

// rules is the role dispatch table. Grouping presence is folded into
// TestingEnabled by the caller.
var rules = map[Role]rule{
	RoleCategorical: selectCategorical,
	RoleNumeric:     selectNumeric,
}

// Select chooses the comparison test and cell summary for one variable. It is
// a pure function of its input.
func Select(in SelectorInput) Decision {
	r, ok := rules[in.Role]
	if !ok {
		return Decision{Test: TestNone, Summary: SummaryCounts, NotApplicable: true, Reason: fmt.Sprintf("unknown role %q", in.Role)}
	}
	return r(in)
}

// ExpectedSparseFraction returns the share of expected counts below MinExpectedCount
func ExpectedSparseFraction(expected [][]float64) float64 {
	cells, sparse := 0, 0
	for _, row := range expected {
		for _, e := range row {
			cells++
			if e < MinExpectedCount {
				sparse++
			}
		}
	}
	if cells == 0 {
		return 0
	}
	return float64(sparse) / float64(cells)
}

func selectCategorical(in SelectorInput) Decision {
	d := Decision{Summary: SummaryCounts}
	switch {
	case !in.TestingEnabled:
		d.Test = TestNone
		d.Reason = "testing disabled"
	case in.SparseFraction > SparseCellFraction && in.SampleSize < ExactTestMaxTotal:
		d.Test = TestFisherExact
		if in.TableRows == 2 && in.TableCols == 2 {
			d.Reason = fmt.Sprintf("%.0f%% of expected counts below %.0f", in.SparseFraction*100, MinExpectedCount)
		} else {
			d.NotApplicable = true
			d.Reason = fmt.Sprintf("exact test limited to 2x2 tables, got %dx%d", in.TableRows, in.TableCols)
		}
	case in.TableRows < 2 || in.TableCols < 2:
		d.Test = TestChiSquare
		d.NotApplicable = true
		d.Reason = fmt.Sprintf("table has %dx%d non-empty cells", in.TableRows, in.TableCols)
	default:
		d.Test = TestChiSquare
		d.Reason = "expected counts large enough for chi-square"
	}
	return d
}

func selectNumeric(in SelectorInput) Decision {
	ranked := false
	switch in.Rank {
	case RankForced:
		ranked = true
	case RankAuto:
		threshold := in.Threshold
		if threshold <= 0 || math.IsNaN(threshold) {
			threshold = DefaultAssumptionP
		}
		ranked = in.Assumptions.Violated(threshold)
	}

	d := Decision{Summary: SummaryMeanSD}
	if ranked {
		d.Summary = SummaryMedianIQR
	}

	if !in.TestingEnabled {
		d.Test = TestNone
		d.Reason = "testing disabled"
		return d
	}
	for _, n := range in.GroupSizes {
		if n < MinGroupSize {
			d.Test = TestSampleTooSmall
			d.NotApplicable = true
			d.Reason = fmt.Sprintf("a group has %d valid observations, need %d", n, MinGroupSize)
			return d
		}
	}

	groups := len(in.GroupSizes)
	switch {
	case ranked && groups == 2:
		d.Test = TestMannWhitney
	case ranked:
		d.Test = TestKruskalWallis
	case groups == 2:
		d.Test = TestTTest
	default:
		d.Test = TestANOVA
	}
	switch {
	case in.Rank == RankForced:
		d.Reason = "rank summary requested"
	case ranked:
		d.Reason = fmt.Sprintf("assumption check failed (normality p=%.4g, homogeneity p=%.4g)", in.Assumptions.NormalityP, in.Assumptions.HomogeneityP)
	default:
		d.Reason = "parametric assumptions hold"
	}
	return d
}

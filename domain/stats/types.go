package stats

import "math"

// Role is how a variable takes part in a group comparison. Boolean columns
// are tabulated as categorical.
type Role string

const (
	RoleNumeric     Role = "numeric"
	RoleCategorical Role = "categorical"
)

// TestKind names the comparison test chosen for a variable
type TestKind string

const (
	TestNone           TestKind = "none"
	TestSampleTooSmall TestKind = "sample_too_small"
	TestChiSquare      TestKind = "chi_square"
	TestFisherExact    TestKind = "fisher_exact"
	TestTTest          TestKind = "t_test"
	TestANOVA          TestKind = "anova"
	TestMannWhitney    TestKind = "mann_whitney"
	TestKruskalWallis  TestKind = "kruskal_wallis"
)

// Ranked reports whether the test works on ranks rather than raw values
func (k TestKind) Ranked() bool {
	return k == TestMannWhitney || k == TestKruskalWallis
}

// Summary names the descriptive cell format of a variable's data rows
type Summary string

const (
	SummaryCounts    Summary = "counts"
	SummaryMeanSD    Summary = "mean_sd"
	SummaryMedianIQR Summary = "median_iqr"
)

// TestResult is the outcome of a statistical primitive. DF2 is only set for
// tests with two degrees-of-freedom parameters (ANOVA).
type TestResult struct {
	Statistic float64 `json:"statistic"`
	DF        float64 `json:"df,omitempty"`
	DF2       float64 `json:"df2,omitempty"`
	PValue    float64 `json:"p_value"`
}

// NotApplicable is the result recorded when no p-value can be computed
func NotApplicable() TestResult {
	return TestResult{Statistic: math.NaN(), DF: math.NaN(), PValue: math.NaN()}
}

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningNearDuplicateItems   WarningCode = "NEAR_DUPLICATE_ITEMS"
	WarningFactorExtraction     WarningCode = "FACTOR_EXTRACTION_FAILED"
	WarningZeroCellCount        WarningCode = "ZERO_CELL_COUNT"
	WarningSampleTooSmall       WarningCode = "SAMPLE_TOO_SMALL"
	WarningExactTestUnavailable WarningCode = "EXACT_TEST_NOT_APPLICABLE"
	WarningTableTooSmall        WarningCode = "TABLE_TOO_SMALL"
	WarningSingleLevelGrouping  WarningCode = "SINGLE_LEVEL_GROUPING"
	WarningReverseOutsideItems  WarningCode = "REVERSE_ITEM_NOT_SELECTED"
	WarningAssumptionCheck      WarningCode = "ASSUMPTION_CHECK_FAILED"
	WarningSimulatedPValue      WarningCode = "SIMULATED_P_VALUE_UNSUPPORTED"
)

// Warning is a non-fatal statistical issue surfaced alongside a result
type Warning struct {
	Code     WarningCode `json:"code"`
	Variable string      `json:"variable,omitempty"`
	Message  string      `json:"message"`
}

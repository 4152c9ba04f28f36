package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect_Numeric(t *testing.T) {
	passing := Assumptions{Checked: true, NormalityP: 0.4, HomogeneityP: 0.7}
	nonNormal := Assumptions{Checked: true, NormalityP: 0.002, HomogeneityP: 0.7}
	unequalVar := Assumptions{Checked: true, NormalityP: 0.3, HomogeneityP: 0.0001}

	tests := []struct {
		name    string
		in      SelectorInput
		test    TestKind
		summary Summary
	}{
		{"two groups parametric", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{10, 12}, Assumptions: passing}, TestTTest, SummaryMeanSD},
		{"three groups parametric", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{10, 12, 9}, Assumptions: passing}, TestANOVA, SummaryMeanSD},
		{"two groups non-normal", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{10, 12}, Assumptions: nonNormal}, TestMannWhitney, SummaryMedianIQR},
		{"three groups unequal variance", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{10, 12, 9}, Assumptions: unequalVar}, TestKruskalWallis, SummaryMedianIQR},
		{"forced rank", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{10, 12}, Rank: RankForced, Assumptions: passing}, TestMannWhitney, SummaryMedianIQR},
		{"never rank", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{10, 12}, Rank: RankNever, Assumptions: nonNormal}, TestTTest, SummaryMeanSD},
		{"sample too small", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{10, 2}, Assumptions: passing}, TestSampleTooSmall, SummaryMeanSD},
		{"testing disabled keeps summary", SelectorInput{Role: RoleNumeric, GroupSizes: []int{10}, Rank: RankForced}, TestNone, SummaryMedianIQR},
		{"unchecked assumptions", SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{5, 5}}, TestTTest, SummaryMeanSD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Select(tt.in)
			assert.Equal(t, tt.test, d.Test)
			assert.Equal(t, tt.summary, d.Summary)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestSelect_SampleTooSmallIsNotApplicable(t *testing.T) {
	d := Select(SelectorInput{Role: RoleNumeric, TestingEnabled: true, GroupSizes: []int{3, 0, 4}})
	assert.Equal(t, TestSampleTooSmall, d.Test)
	assert.True(t, d.NotApplicable)
}

func TestSelect_Categorical(t *testing.T) {
	tests := []struct {
		name          string
		in            SelectorInput
		test          TestKind
		notApplicable bool
	}{
		{"dense table", SelectorInput{Role: RoleCategorical, TestingEnabled: true, TableRows: 2, TableCols: 2, SampleSize: 400, SparseFraction: 0}, TestChiSquare, false},
		{"sparse 2x2", SelectorInput{Role: RoleCategorical, TestingEnabled: true, TableRows: 2, TableCols: 2, SampleSize: 30, SparseFraction: 0.5}, TestFisherExact, false},
		{"sparse 3x2", SelectorInput{Role: RoleCategorical, TestingEnabled: true, TableRows: 3, TableCols: 2, SampleSize: 30, SparseFraction: 0.5}, TestFisherExact, true},
		{"sparse but large", SelectorInput{Role: RoleCategorical, TestingEnabled: true, TableRows: 2, TableCols: 2, SampleSize: 1500, SparseFraction: 0.5}, TestChiSquare, false},
		{"exactly twenty percent", SelectorInput{Role: RoleCategorical, TestingEnabled: true, TableRows: 5, TableCols: 2, SampleSize: 100, SparseFraction: 0.2}, TestChiSquare, false},
		{"sparse table in a large dataset", SelectorInput{Role: RoleCategorical, TestingEnabled: true, TableRows: 2, TableCols: 2, SampleSize: ExactTestMaxTotal, SparseFraction: 0.5}, TestChiSquare, false},
		{"degenerate table", SelectorInput{Role: RoleCategorical, TestingEnabled: true, TableRows: 1, TableCols: 2, SampleSize: 100}, TestChiSquare, true},
		{"disabled", SelectorInput{Role: RoleCategorical, TableRows: 2, TableCols: 2}, TestNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Select(tt.in)
			assert.Equal(t, tt.test, d.Test)
			assert.Equal(t, tt.notApplicable, d.NotApplicable)
			assert.Equal(t, SummaryCounts, d.Summary)
		})
	}
}

func TestSelect_Deterministic(t *testing.T) {
	in := SelectorInput{
		Role:           RoleNumeric,
		TestingEnabled: true,
		GroupSizes:     []int{8, 9, 11},
		Assumptions:    Assumptions{Checked: true, NormalityP: 0.009, HomogeneityP: 0.5},
		Threshold:      0.01,
	}
	first := Select(in)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Select(in))
	}
}

func TestSelect_UnknownRole(t *testing.T) {
	d := Select(SelectorInput{Role: Role("date")})
	assert.Equal(t, TestNone, d.Test)
	assert.True(t, d.NotApplicable)
}

func TestAssumptions_Violated(t *testing.T) {
	assert.False(t, Assumptions{}.Violated(0.01))
	assert.False(t, Assumptions{Checked: true, NormalityP: math.NaN(), HomogeneityP: math.NaN()}.Violated(0.01))
	assert.True(t, Assumptions{Checked: true, NormalityP: 0.5, HomogeneityP: 0.001}.Violated(0.01))
	assert.False(t, Assumptions{Checked: true, NormalityP: 0.01, HomogeneityP: 0.01}.Violated(0.01))
}

func TestExpectedSparseFraction(t *testing.T) {
	assert.Equal(t, 0.0, ExpectedSparseFraction(nil))
	assert.InDelta(t, 0.25, ExpectedSparseFraction([][]float64{{4.9, 10}, {12, 30}}), 1e-12)
}

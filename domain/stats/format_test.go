package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPValue(t *testing.T) {
	tests := []struct {
		p       float64
		decimal int
		want    string
	}{
		{0.0009999, 1, "< 0.001"},
		{1e-12, 3, "< 0.001"},
		{0.001, 1, "0.001"},
		{0.04567, 1, "0.046"},
		{0.5, 2, "0.5000"},
		{math.NaN(), 1, "NA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPValue(tt.p, tt.decimal), "p=%v decimal=%d", tt.p, tt.decimal)
	}
}

func TestFormatFixed(t *testing.T) {
	assert.Equal(t, "2.5", FormatFixed(2.45, 1))
	assert.Equal(t, "0.0", FormatFixed(-0.01, 1))
	assert.Equal(t, "NA", FormatFixed(math.Inf(1), 1))
	assert.Equal(t, "3", FormatFixed(3.2, 0))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Chi-sq(1df)=3.84", Label(TestChiSquare, TestResult{Statistic: 3.8415, DF: 1}, 1))
	assert.Equal(t, "t-test(28df)=2.05", Label(TestTTest, TestResult{Statistic: -2.048, DF: 28}, 1))
	assert.Equal(t, "ANOVA F(2,57df)=4.10", Label(TestANOVA, TestResult{Statistic: 4.1, DF: 2, DF2: 57}, 1))
	assert.Equal(t, "Fisher's exact", Label(TestFisherExact, NotApplicable(), 1))
	assert.Equal(t, "Sample too small", Label(TestSampleTooSmall, NotApplicable(), 1))
	assert.Equal(t, "", Label(TestNone, NotApplicable(), 1))
	assert.Equal(t, "t-test", Label(TestTTest, NotApplicable(), 1))
	assert.Equal(t, "ANOVA", Label(TestANOVA, NotApplicable(), 1))
}

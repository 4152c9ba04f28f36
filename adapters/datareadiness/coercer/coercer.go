package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"epistack/domain/dataset"
)

// TypeCoercer infers column kinds from raw text cells and converts them to
// typed dataset columns
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]bool
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of non-missing cells that must parse as numbers
	BooleanThreshold float64  `json:"boolean_threshold"` // share of non-missing cells that must parse as booleans
	MissingTokens    []string `json:"missing_tokens"`    // cell texts read as missing, after trimming
}

// DefaultCoercionConfig returns the default thresholds and missing tokens
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		BooleanThreshold: 0.9,
		MissingTokens:    []string{"", "NA", "NaN", "null", "."},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]bool, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[strings.TrimSpace(tok)] = true
	}
	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether a raw cell is one of the missing tokens
func (c *TypeCoercer) IsMissing(raw string) bool {
	return c.missing[strings.TrimSpace(raw)]
}

// Column infers the kind of raw and builds the typed column. Cells that do
// not parse under the inferred kind become missing.
func (c *TypeCoercer) Column(name string, raw []string) (*dataset.Column, error) {
	analysis := c.AnalyzeTypeDistribution(raw)
	values := make([]dataset.Value, len(raw))
	for i, s := range raw {
		values[i] = c.CoerceValue(s, analysis.RecommendedType)
	}
	col, err := dataset.NewColumn(name, analysis.RecommendedType, values)
	if err != nil {
		return nil, fmt.Errorf("coerce column %s: %w", name, err)
	}
	return col, nil
}

// CoerceValue converts one raw cell under the given kind
func (c *TypeCoercer) CoerceValue(raw string, kind dataset.Kind) dataset.Value {
	if c.IsMissing(raw) {
		return dataset.MissingValue()
	}
	switch kind {
	case dataset.KindNumeric:
		if n, ok := tryParseNumeric(raw); ok {
			return dataset.NumberValue(n)
		}
		return dataset.MissingValue()
	case dataset.KindBoolean:
		if b, ok := tryParseBoolean(raw); ok {
			return dataset.BoolValue(b)
		}
		return dataset.MissingValue()
	default:
		return dataset.TextValue(normalizeString(raw))
	}
}

// AnalyzeTypeDistribution counts how many non-missing cells parse as each
// kind and recommends one
func (c *TypeCoercer) AnalyzeTypeDistribution(raw []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(raw)}
	for _, s := range raw {
		if c.IsMissing(s) {
			continue
		}
		analysis.ValidCount++
		if _, ok := tryParseNumeric(s); ok {
			analysis.NumericCount++
		}
		if _, ok := tryParseBoolean(s); ok {
			analysis.BooleanCount++
		}
	}
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.BooleanRatio = float64(analysis.BooleanCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

// tryParseNumeric parses plain and scientific notation plus a few
// spreadsheet habits: parentheses for negatives, thousands separators and a
// decimal comma
func tryParseNumeric(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	hasComma := strings.Contains(clean, ",")
	hasPeriod := strings.Contains(clean, ".")
	switch {
	case hasComma && hasPeriod:
		if strings.LastIndex(clean, ",") > strings.LastIndex(clean, ".") {
			// 1.234,5
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			// 1,234.5
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	}
	if negative {
		clean = "-" + clean
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// tryParseBoolean accepts logical spellings only. Yes/no answers stay
// categorical so their labels survive.
func tryParseBoolean(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t":
		return true, true
	case "false", "f":
		return false, true
	}
	return false, false
}

// normalizeString trims surrounding whitespace and drops control characters
func normalizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// determineRecommendedType checks the thresholds, most restrictive first. A
// column without observations is categorical.
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) dataset.Kind {
	if analysis.ValidCount == 0 {
		return dataset.KindCategorical
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.KindNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.KindBoolean
	}
	return dataset.KindCategorical
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int          `json:"total_count"`
	ValidCount      int          `json:"valid_count"`
	NumericCount    int          `json:"numeric_count"`
	BooleanCount    int          `json:"boolean_count"`
	NumericRatio    float64      `json:"numeric_ratio"`
	BooleanRatio    float64      `json:"boolean_ratio"`
	RecommendedType dataset.Kind `json:"recommended_type"`
}

package dataset

import (
	"math"
	"strconv"
)

// Kind is the declared storage type of a column
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindBoolean     Kind = "boolean"
	KindCategorical Kind = "categorical"
)

// Boolean level labels, in level order
const (
	LevelFalse = "FALSE"
	LevelTrue  = "TRUE"
)

// Value is one cell of a column. Numeric and boolean cells use Number
// (booleans as 0/1); categorical cells use Text.
type Value struct {
	Missing bool    `json:"missing,omitempty"`
	Number  float64 `json:"number,omitempty"`
	Text    string  `json:"text,omitempty"`
}

// MissingValue creates a missing cell
func MissingValue() Value {
	return Value{Missing: true}
}

// NumberValue creates a numeric cell; NaN is treated as missing
func NumberValue(n float64) Value {
	if math.IsNaN(n) {
		return MissingValue()
	}
	return Value{Number: n}
}

// BoolValue creates a boolean cell
func BoolValue(b bool) Value {
	if b {
		return Value{Number: 1}
	}
	return Value{Number: 0}
}

// TextValue creates a categorical cell; the empty string is treated as missing
func TextValue(s string) Value {
	if s == "" {
		return MissingValue()
	}
	return Value{Text: s}
}

// FormatNumber renders a numeric level without trailing zeros
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Factor is a categorical view over a column: ordered levels plus one code
// per observation (-1 for missing).
type Factor struct {
	Levels []string
	Codes  []int
}

// Counts tabulates observations per level
func (f Factor) Counts() []int {
	counts := make([]int, len(f.Levels))
	for _, c := range f.Codes {
		if c >= 0 {
			counts[c]++
		}
	}
	return counts
}

// Len returns the number of observations
func (f Factor) Len() int {
	return len(f.Codes)
}

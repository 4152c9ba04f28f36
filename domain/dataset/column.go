package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Column is an immutable, named sequence of values. Accessors return copies so
// callers can never mutate the backing data.
type Column struct {
	name   string
	label  string
	kind   Kind
	values []Value
	levels []string // categorical only
}

// NewColumn creates a column of the given kind. Categorical levels are the
// sorted distinct texts unless declared explicitly with NewCategoricalWithLevels.
func NewColumn(name string, kind Kind, values []Value) (*Column, error) {
	if name == "" {
		return nil, fmt.Errorf("column name cannot be empty")
	}
	c := &Column{name: name, kind: kind, values: append([]Value(nil), values...)}
	switch kind {
	case KindNumeric:
		for i := range c.values {
			if !c.values[i].Missing && math.IsNaN(c.values[i].Number) {
				c.values[i] = MissingValue()
			}
		}
	case KindBoolean:
		for i, v := range c.values {
			if !v.Missing && v.Number != 0 && v.Number != 1 {
				return nil, fmt.Errorf("column %s: boolean value %v at row %d", name, v.Number, i)
			}
		}
	case KindCategorical:
		seen := make(map[string]bool)
		for i, v := range c.values {
			if !v.Missing && v.Text == "" {
				c.values[i] = MissingValue()
				continue
			}
			if !v.Missing && !seen[v.Text] {
				seen[v.Text] = true
				c.levels = append(c.levels, v.Text)
			}
		}
		sortLevels(c.levels)
	default:
		return nil, fmt.Errorf("column %s: unknown kind %q", name, kind)
	}
	return c, nil
}

// NewCategoricalWithLevels creates a categorical column with a declared level
// order. Every non-missing value must be one of the levels.
func NewCategoricalWithLevels(name string, values []string, levels []string) (*Column, error) {
	known := make(map[string]bool, len(levels))
	for _, l := range levels {
		if known[l] {
			return nil, fmt.Errorf("column %s: duplicate level %q", name, l)
		}
		known[l] = true
	}
	vals := make([]Value, len(values))
	for i, s := range values {
		if s != "" && !known[s] {
			return nil, fmt.Errorf("column %s: value %q at row %d is not a declared level", name, s, i)
		}
		vals[i] = TextValue(s)
	}
	return &Column{
		name:   name,
		kind:   KindCategorical,
		values: vals,
		levels: append([]string(nil), levels...),
	}, nil
}

// Numeric builds a numeric column; NaN marks missing observations
func Numeric(name string, values []float64) *Column {
	vals := make([]Value, len(values))
	for i, v := range values {
		vals[i] = NumberValue(v)
	}
	return &Column{name: name, kind: KindNumeric, values: vals}
}

// Boolean builds a boolean column without missing observations
func Boolean(name string, values []bool) *Column {
	vals := make([]Value, len(values))
	for i, v := range values {
		vals[i] = BoolValue(v)
	}
	return &Column{name: name, kind: KindBoolean, values: vals}
}

// Categorical builds a categorical column; the empty string marks missing
func Categorical(name string, values []string) *Column {
	vals := make([]Value, len(values))
	for i, v := range values {
		vals[i] = TextValue(v)
	}
	// NewColumn only fails on empty names or unknown kinds
	c, err := NewColumn(name, KindCategorical, vals)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the column identifier
func (c *Column) Name() string { return c.name }

// Label returns the display label, defaulting to the name
func (c *Column) Label() string {
	if c.label == "" {
		return c.name
	}
	return c.label
}

// Kind returns the declared storage type
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of observations
func (c *Column) Len() int { return len(c.values) }

// Value returns the cell at row i
func (c *Column) Value(i int) Value { return c.values[i] }

// IsMissing reports whether row i is missing
func (c *Column) IsMissing(i int) bool { return c.values[i].Missing }

// WithLabel returns a copy of the column carrying a display label
func (c *Column) WithLabel(label string) *Column {
	cp := *c
	cp.label = label
	return &cp
}

// ValidCount returns the number of non-missing observations
func (c *Column) ValidCount() int {
	n := 0
	for _, v := range c.values {
		if !v.Missing {
			n++
		}
	}
	return n
}

// Floats returns a private numeric view of the column. Missing cells and
// categorical texts that do not parse as numbers become NaN.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.values))
	for i, v := range c.values {
		switch {
		case v.Missing:
			out[i] = math.NaN()
		case c.kind == KindCategorical:
			f, err := strconv.ParseFloat(v.Text, 64)
			if err != nil {
				f = math.NaN()
			}
			out[i] = f
		default:
			out[i] = v.Number
		}
	}
	return out
}

// Levels returns the declared categorical levels (FALSE/TRUE for booleans,
// sorted distinct values for numeric columns).
func (c *Column) Levels() []string {
	return c.Factor().Levels
}

// Factor returns a categorical view of the column without modifying it
func (c *Column) Factor() Factor {
	codes := make([]int, len(c.values))
	switch c.kind {
	case KindBoolean:
		for i, v := range c.values {
			codes[i] = -1
			if !v.Missing {
				codes[i] = int(v.Number)
			}
		}
		return Factor{Levels: []string{LevelFalse, LevelTrue}, Codes: codes}
	case KindNumeric:
		distinct := make(map[float64]bool)
		var nums []float64
		for _, v := range c.values {
			if !v.Missing && !distinct[v.Number] {
				distinct[v.Number] = true
				nums = append(nums, v.Number)
			}
		}
		sort.Float64s(nums)
		index := make(map[float64]int, len(nums))
		levels := make([]string, len(nums))
		for i, n := range nums {
			index[n] = i
			levels[i] = FormatNumber(n)
		}
		for i, v := range c.values {
			codes[i] = -1
			if !v.Missing {
				codes[i] = index[v.Number]
			}
		}
		return Factor{Levels: levels, Codes: codes}
	default:
		index := make(map[string]int, len(c.levels))
		for i, l := range c.levels {
			index[l] = i
		}
		for i, v := range c.values {
			codes[i] = -1
			if !v.Missing {
				codes[i] = index[v.Text]
			}
		}
		return Factor{Levels: append([]string(nil), c.levels...), Codes: codes}
	}
}

// sortLevels orders levels numerically when every level parses as a number,
// lexically otherwise.
func sortLevels(levels []string) {
	nums := make(map[string]float64, len(levels))
	for _, l := range levels {
		f, err := strconv.ParseFloat(l, 64)
		if err != nil {
			sort.Strings(levels)
			return
		}
		nums[l] = f
	}
	sort.Slice(levels, func(i, j int) bool { return nums[levels[i]] < nums[levels[j]] })
}

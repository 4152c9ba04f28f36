package dataset

import (
	"fmt"
)

// Frame is a read-only tabular dataset: equal-length columns addressable by
// name or 0-based position.
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewFrame assembles columns into a frame. Names must be unique and all
// columns must have the same length.
func NewFrame(columns ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := f.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name())
		}
		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name(), c.Len(), f.rows)
		}
		f.index[c.Name()] = i
		f.columns = append(f.columns, c)
	}
	return f, nil
}

// MustFrame is NewFrame that panics on error; intended for fixtures
func MustFrame(columns ...*Column) *Frame {
	f, err := NewFrame(columns...)
	if err != nil {
		panic(err)
	}
	return f
}

// NumRows returns the number of observations
func (f *Frame) NumRows() int { return f.rows }

// NumCols returns the number of columns
func (f *Frame) NumCols() int { return len(f.columns) }

// Column returns the column at position i
func (f *Frame) Column(i int) *Column { return f.columns[i] }

// Lookup returns the position of a named column
func (f *Frame) Lookup(name string) (int, bool) {
	i, ok := f.index[name]
	return i, ok
}

// ColumnByName returns a named column or nil
func (f *Frame) ColumnByName(name string) *Column {
	if i, ok := f.index[name]; ok {
		return f.columns[i]
	}
	return nil
}

// Names returns the column names in position order
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name()
	}
	return names
}

// WithLabels returns a new frame whose columns carry the given display labels.
// Unknown names are reported as errors.
func (f *Frame) WithLabels(labels map[string]string) (*Frame, error) {
	cols := append([]*Column(nil), f.columns...)
	for name, label := range labels {
		i, ok := f.index[name]
		if !ok {
			return nil, fmt.Errorf("label for unknown column %q", name)
		}
		cols[i] = cols[i].WithLabel(label)
	}
	return NewFrame(cols...)
}

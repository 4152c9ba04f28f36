package app

import (
	"fmt"
	"strconv"
	"strings"

	"epistack/domain/core"
	"epistack/domain/dataset"
)

// TotalGroup is the grouping reference that yields a single synthetic level
// when no column carries that name
const TotalGroup = "Total"

type refKind int

const (
	refName refKind = iota
	refPosition
	refRange
	refNameRange
)

// Ref is a reference to one or more dataset columns
type Ref struct {
	kind     refKind
	name     string
	pos      int
	from, to int
	fromName string
	toName   string
}

// Name references a column by name
func Name(name string) Ref { return Ref{kind: refName, name: name} }

// Position references a column by 0-based position
func Position(i int) Ref { return Ref{kind: refPosition, pos: i} }

// Range references the columns at positions from..to inclusive
func Range(from, to int) Ref { return Ref{kind: refRange, from: from, to: to} }

// NameRange references the columns between two names inclusive, in frame order
func NameRange(from, to string) Ref { return Ref{kind: refNameRange, fromName: from, toName: to} }

func (r Ref) String() string {
	switch r.kind {
	case refPosition:
		return strconv.Itoa(r.pos)
	case refRange:
		return fmt.Sprintf("%d:%d", r.from, r.to)
	case refNameRange:
		return r.fromName + ":" + r.toName
	}
	return r.name
}

// Selection is an ordered list of references
type Selection []Ref

// Names builds a selection of named columns
func Names(names ...string) Selection {
	sel := make(Selection, len(names))
	for i, n := range names {
		sel[i] = Name(n)
	}
	return sel
}

// Positions builds a selection of positional references
func Positions(positions ...int) Selection {
	sel := make(Selection, len(positions))
	for i, p := range positions {
		sel[i] = Position(p)
	}
	return sel
}

// ParseRef reads "name", "3", "2:5" or "a:c". Integers are positions; a
// colon joins two positions or two names into an inclusive range.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty variable reference")
	}
	if from, to, ok := strings.Cut(s, ":"); ok {
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if from == "" || to == "" {
			return Ref{}, fmt.Errorf("incomplete range %q", s)
		}
		fi, ferr := strconv.Atoi(from)
		ti, terr := strconv.Atoi(to)
		if ferr == nil && terr == nil {
			return Range(fi, ti), nil
		}
		return NameRange(from, to), nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return Position(i), nil
	}
	return Name(s), nil
}

// ParseSelection parses a comma-separated list of references
func ParseSelection(s string) (Selection, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var sel Selection
	for _, part := range strings.Split(s, ",") {
		ref, err := ParseRef(part)
		if err != nil {
			return nil, err
		}
		sel = append(sel, ref)
	}
	return sel, nil
}

// Resolve maps references to column positions in order of first mention.
// Unknown names, out-of-range positions and duplicates are reference errors.
func Resolve(frame *dataset.Frame, sel Selection) ([]int, error) {
	seen := make(map[int]string)
	var out []int
	add := func(i int, ref Ref) error {
		if prev, dup := seen[i]; dup {
			return core.NewReferenceError(frame.Column(i).Name(), fmt.Sprintf("selected more than once (%s and %s)", prev, ref))
		}
		seen[i] = ref.String()
		out = append(out, i)
		return nil
	}

	for _, ref := range sel {
		positions, err := expand(frame, ref)
		if err != nil {
			return nil, err
		}
		for _, i := range positions {
			if err := add(i, ref); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func expand(frame *dataset.Frame, ref Ref) ([]int, error) {
	n := frame.NumCols()
	inBounds := func(i int) error {
		if i < 0 || i >= n {
			return core.NewReferenceError(ref.String(), fmt.Sprintf("position out of range [0, %d)", n))
		}
		return nil
	}
	lookup := func(name string) (int, error) {
		i, ok := frame.Lookup(name)
		if !ok {
			return 0, core.NewReferenceError(name, "not found in dataset")
		}
		return i, nil
	}

	switch ref.kind {
	case refPosition:
		if err := inBounds(ref.pos); err != nil {
			return nil, err
		}
		return []int{ref.pos}, nil
	case refRange:
		if err := inBounds(ref.from); err != nil {
			return nil, err
		}
		if err := inBounds(ref.to); err != nil {
			return nil, err
		}
		return span(ref.from, ref.to), nil
	case refNameRange:
		from, err := lookup(ref.fromName)
		if err != nil {
			return nil, err
		}
		to, err := lookup(ref.toName)
		if err != nil {
			return nil, err
		}
		return span(from, to), nil
	}
	i, err := lookup(ref.name)
	if err != nil {
		return nil, err
	}
	return []int{i}, nil
}

// span lists from..to inclusive, descending when from > to
func span(from, to int) []int {
	step := 1
	if from > to {
		step = -1
	}
	var out []int
	for i := from; ; i += step {
		out = append(out, i)
		if i == to {
			break
		}
	}
	return out
}

// grouping is the resolved grouping variable
type grouping struct {
	name   string
	label  string
	levels []string
	codes  []int
	column int // -1 for the synthetic Total level
}

func (g *grouping) sizes() []int {
	sizes := make([]int, len(g.levels))
	for _, c := range g.codes {
		if c >= 0 {
			sizes[c]++
		}
	}
	return sizes
}

func resolveGrouping(frame *dataset.Frame, ref Ref) (*grouping, error) {
	if ref.kind == refName && ref.name == TotalGroup {
		if _, ok := frame.Lookup(TotalGroup); !ok {
			codes := make([]int, frame.NumRows())
			return &grouping{name: TotalGroup, label: TotalGroup, levels: []string{TotalGroup}, codes: codes, column: -1}, nil
		}
	}
	if ref.kind == refRange || ref.kind == refNameRange {
		return nil, core.NewReferenceError(ref.String(), "grouping must be a single variable")
	}
	positions, err := expand(frame, ref)
	if err != nil {
		return nil, err
	}
	col := frame.Column(positions[0])
	f := col.Factor()
	return &grouping{name: col.Name(), label: col.Label(), levels: f.Levels, codes: f.Codes, column: positions[0]}, nil
}

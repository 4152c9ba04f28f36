package stats

// CompactTable drops rows and columns whose margins are zero and returns the
// remaining counts as float64 cells. A testable table needs at least 2x2.
func CompactTable(counts [][]int) [][]float64 {
	if len(counts) == 0 {
		return nil
	}
	cols := len(counts[0])
	colTotals := make([]int, cols)
	var keepRows []int
	for i, row := range counts {
		total := 0
		for j, c := range row {
			total += c
			colTotals[j] += c
		}
		if total > 0 {
			keepRows = append(keepRows, i)
		}
	}
	var keepCols []int
	for j, t := range colTotals {
		if t > 0 {
			keepCols = append(keepCols, j)
		}
	}

	out := make([][]float64, len(keepRows))
	for i, r := range keepRows {
		out[i] = make([]float64, len(keepCols))
		for j, c := range keepCols {
			out[i][j] = float64(counts[r][c])
		}
	}
	return out
}

// ExpectedCounts returns the expected cell counts under independence
func ExpectedCounts(table [][]float64) [][]float64 {
	if len(table) == 0 {
		return nil
	}
	rowTotals := make([]float64, len(table))
	colTotals := make([]float64, len(table[0]))
	total := 0.0
	for i, row := range table {
		for j, c := range row {
			rowTotals[i] += c
			colTotals[j] += c
			total += c
		}
	}
	expected := make([][]float64, len(table))
	for i := range table {
		expected[i] = make([]float64, len(colTotals))
		if total == 0 {
			continue
		}
		for j := range colTotals {
			expected[i][j] = rowTotals[i] * colTotals[j] / total
		}
	}
	return expected
}

package excel

// RawTable is a sheet as read: trimmed headers and rows padded to the header width
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Column returns the raw cells of column j
func (t *RawTable) Column(j int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

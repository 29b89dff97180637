package tabular

// RawTable is an uploaded table before canonicalization: ordered column
// headings plus rows of untyped cells.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Len returns the data row count.
func (t *RawTable) Len() int { return len(t.Rows) }

// Column extracts one column by heading, padding short rows with "".
func (t *RawTable) Column(header string) []string {
	idx := -1
	for i, h := range t.Headers {
		if h == header {
			idx = i
			break
		}
	}
	out := make([]string, len(t.Rows))
	if idx < 0 {
		return out
	}
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

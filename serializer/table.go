package serializer

// Table is the intermediate tabular form shared by all serializers: an
// ordered header list and rows of optional string cells. A nil cell means
// the value was absent in the source; typed coercion happens later when the
// canonical series is built.
type Table struct {
	Columns []string
	Rows    [][]*string
}

// Rename replaces column headers using the provided map. Matching is by
// exact string comparison; headers without a mapping pass through unchanged.
func (t *Table) Rename(renames map[string]string) {
	for i, c := range t.Columns {
		if canonical, ok := renames[c]; ok {
			t.Columns[i] = canonical
		}
	}
}

// Column returns the cells of the named column aligned with t.Rows, or nil
// when the column does not exist.
func (t *Table) Column(name string) []*string {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	cells := make([]*string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			cells[i] = row[idx]
		}
	}
	return cells
}

package constraint

// Table is an in-memory meta-feature table keyed by dataset ID.
// Rows keep their file order; the first row of a repeated ID wins.
type Table struct {
	rows  []MetaFeatures
	index map[string]int
}

// NewTable builds a Table from rows in file order.
func NewTable(rows []MetaFeatures) *Table {
	t := &Table{index: make(map[string]int, len(rows))}
	for _, mf := range rows {
		if _, dup := t.index[mf.ID]; dup {
			continue
		}
		t.index[mf.ID] = len(t.rows)
		t.rows = append(t.rows, mf)
	}
	return t
}

// Get returns the meta-features of a dataset. An absent ID is not an error.
func (t *Table) Get(id string) (MetaFeatures, bool) {
	if t == nil {
		return MetaFeatures{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return MetaFeatures{}, false
	}
	return t.rows[i], true
}

// List returns every row in file order.
func (t *Table) List() []MetaFeatures {
	if t == nil {
		return nil
	}
	return append([]MetaFeatures(nil), t.rows...)
}

// Len returns the number of datasets in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

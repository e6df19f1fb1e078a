package query

// ColumnMap is an insertion-ordered mapping from column name to value.
// Setting a column that is already present replaces its value in place.
type ColumnMap struct {
	keys   []string
	values map[string]any
}

// NewColumnMap returns an empty map.
func NewColumnMap() *ColumnMap {
	return &ColumnMap{values: make(map[string]any)}
}

// Set assigns v to col and returns m for chaining.
func (m *ColumnMap) Set(col string, v any) *ColumnMap {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[col]; !ok {
		m.keys = append(m.keys, col)
	}
	m.values[col] = v
	return m
}

// Get returns the value stored for col.
func (m *ColumnMap) Get(col string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[col]
	return v, ok
}

// Delete removes col, keeping the order of the remaining columns.
func (m *ColumnMap) Delete(col string) {
	if m == nil {
		return
	}
	if _, ok := m.values[col]; !ok {
		return
	}
	delete(m.values, col)
	for i, k := range m.keys {
		if k == col {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of columns. A nil map is empty.
func (m *ColumnMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Columns returns the column names in insertion order.
func (m *ColumnMap) Columns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Values returns the values in insertion order.
func (m *ColumnMap) Values() []any {
	if m == nil {
		return nil
	}
	values := make([]any, len(m.keys))
	for i, k := range m.keys {
		values[i] = m.values[k]
	}
	return values
}

// Clone returns an independent copy of m.
func (m *ColumnMap) Clone() *ColumnMap {
	c := NewColumnMap()
	if m == nil {
		return c
	}
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

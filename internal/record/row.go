package record

// Row maps column name to cell value. A column that was never set is
// simply absent; there is no separate NULL.
type Row map[string]Value

// Get looks a column up by exact name.
func (r Row) Get(col string) (Value, bool) {
	v, ok := r[col]
	return v, ok
}

// Copy returns a shallow copy; Values are plain data so this is a full copy.
func (r Row) Copy() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether both rows hold the same keys with identical values.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// CopyRows deep-copies a row slice so callers cannot alias stored rows.
func CopyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Copy()
	}
	return out
}

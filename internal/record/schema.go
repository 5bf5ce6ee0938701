package record

import "strings"

// Column is derived once from CREATE TABLE text and never changes afterwards.
type Column struct {
	Name      string `json:"name"`
	Type      string `json:"type"` // uppercased type token, e.g. "INT", "VARCHAR(50)"
	Nullable  bool   `json:"nullable"`
	IsPrimary bool   `json:"is_primary"`
}

// TableDefinition describes one table of a store.
type TableDefinition struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Definition string   `json:"definition"` // original CREATE TABLE text
	Columns    []Column `json:"columns"`
}

func (d TableDefinition) NumCols() int { return len(d.Columns) }

// ColumnNames returns the declared column names in order.
func (d TableDefinition) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// ColPos returns the index of a column (case-insensitive) or -1.
func (d TableDefinition) ColPos(name string) int {
	for i := range d.Columns {
		if strings.EqualFold(d.Columns[i].Name, name) {
			return i
		}
	}
	return -1
}

package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tuannm99/sqllab/internal/record"
)

var (
	ErrTableNotFound  = errors.New("no such table")
	ErrDuplicateTable = errors.New("table already exists")
)

// Store maps lowercase table name to Table. It performs no schema
// validation on rows: a row may carry undeclared keys or miss declared ones.
//
// Store is not safe for concurrent use; the owning engine serializes access.
type Store struct {
	tables map[string]*Table
	order  []string // keys in creation order

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		tables: make(map[string]*Table),
		now:    time.Now,
	}
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// CreateTable inserts a table with no rows.
func (s *Store) CreateTable(def record.TableDefinition) error {
	k := key(def.Name)
	if _, exists := s.tables[k]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, def.Name)
	}
	now := s.now()
	def.Columns = append([]record.Column(nil), def.Columns...)
	s.tables[k] = &Table{Def: def, Rows: []record.Row{}, CreatedAt: now, UpdatedAt: now}
	s.order = append(s.order, k)
	return nil
}

func (s *Store) get(name string) (*Table, error) {
	t, ok := s.tables[key(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// Lookup returns a detached copy of the table; changing it does not touch
// the store.
func (s *Store) Lookup(name string) (*Table, error) {
	t, err := s.get(name)
	if err != nil {
		return nil, err
	}
	return t.clone(), nil
}

// Has reports whether a table exists (case-insensitive).
func (s *Store) Has(name string) bool {
	_, ok := s.tables[key(name)]
	return ok
}

// AppendRows adds rows at the end of a table.
func (s *Store) AppendRows(name string, rows ...record.Row) error {
	t, err := s.get(name)
	if err != nil {
		return err
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.Copy())
	}
	t.UpdatedAt = s.now()
	return nil
}

// ReplaceRows swaps the whole row sequence of a table. The column list is
// left untouched.
func (s *Store) ReplaceRows(name string, rows []record.Row) error {
	t, err := s.get(name)
	if err != nil {
		return err
	}
	t.Rows = record.CopyRows(rows)
	t.UpdatedAt = s.now()
	return nil
}

func (s *Store) DropTable(name string) error {
	k := key(name)
	if _, ok := s.tables[k]; !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	delete(s.tables, k)
	for i, o := range s.order {
		if o == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns the definitions in creation order.
func (s *Store) List() []record.TableDefinition {
	out := make([]record.TableDefinition, 0, len(s.order))
	for _, k := range s.order {
		d := s.tables[k].Def
		d.Columns = append([]record.Column(nil), d.Columns...)
		out = append(out, d)
	}
	return out
}

// Rows returns a copy of a table's rows.
func (s *Store) Rows(name string) ([]record.Row, error) {
	t, err := s.get(name)
	if err != nil {
		return nil, err
	}
	return record.CopyRows(t.Rows), nil
}

func (s *Store) Len() int { return len(s.order) }

// Reset drops every table.
func (s *Store) Reset() {
	s.tables = make(map[string]*Table)
	s.order = nil
}

// Snapshot deep-copies the store into its serializable form.
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{Version: SnapshotVersion, Tables: make([]*Table, 0, len(s.order))}
	for _, k := range s.order {
		snap.Tables = append(snap.Tables, s.tables[k].clone())
	}
	return snap
}

// Restore replaces the store content with a snapshot. On error the store
// is left unchanged.
func (s *Store) Restore(snap *Snapshot) error {
	if snap == nil {
		s.Reset()
		return nil
	}
	tables := make(map[string]*Table, len(snap.Tables))
	order := make([]string, 0, len(snap.Tables))
	for _, t := range snap.Tables {
		if t == nil || strings.TrimSpace(t.Def.Name) == "" {
			return fmt.Errorf("catalog: snapshot contains an unnamed table")
		}
		k := key(t.Def.Name)
		if _, dup := tables[k]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTable, t.Def.Name)
		}
		c := t.clone()
		if c.Rows == nil {
			c.Rows = []record.Row{}
		}
		tables[k] = c
		order = append(order, k)
	}
	s.tables = tables
	s.order = order
	return nil
}

func (t *Table) clone() *Table {
	c := *t
	c.Def.Columns = append([]record.Column(nil), t.Def.Columns...)
	c.Rows = record.CopyRows(t.Rows)
	return &c
}

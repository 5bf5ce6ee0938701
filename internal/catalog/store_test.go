package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqllab/internal/record"
)

func usersDef(name string) record.TableDefinition {
	return record.TableDefinition{
		ID:   "id-" + name,
		Name: name,
		Columns: []record.Column{
			{Name: "id", Type: "INT", Nullable: true, IsPrimary: true},
			{Name: "name", Type: "TEXT", Nullable: true},
		},
	}
}

func TestStore_CreateTable_DuplicateIsCaseInsensitive(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateTable(usersDef("Users")))

	err := s.CreateTable(usersDef("users"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateTable))
	assert.Equal(t, 1, s.Len())
}

func TestStore_Lookup(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateTable(usersDef("Users")))

	tbl, err := s.Lookup("USERS")
	require.NoError(t, err)
	assert.Equal(t, "Users", tbl.Def.Name)
	assert.Empty(t, tbl.Rows)

	_, err = s.Lookup("orders")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestStore_LookupIsDetached(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateTable(usersDef("users")))
	require.NoError(t, s.AppendRows("users", record.Row{"id": record.String("1")}))

	tbl, err := s.Lookup("users")
	require.NoError(t, err)
	tbl.Rows[0]["id"] = record.String("99")
	tbl.Rows = append(tbl.Rows, record.Row{})

	rows, err := s.Rows("users")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0]["id"].Text())
}

func TestStore_AppendAndReplaceRows(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateTable(usersDef("users")))

	// lenient: undeclared keys and missing columns are accepted
	require.NoError(t, s.AppendRows("users",
		record.Row{"id": record.String("1"), "extra": record.String("x")},
		record.Row{"name": record.String("no id")},
	))
	rows, err := s.Rows("users")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "x", rows[0]["extra"].Text())

	require.NoError(t, s.ReplaceRows("users", rows[1:]))
	rows, err = s.Rows("users")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "no id", rows[0]["name"].Text())

	tbl, err := s.Lookup("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, tbl.Def.ColumnNames())

	assert.True(t, errors.Is(s.AppendRows("nope", record.Row{}), ErrTableNotFound))
	assert.True(t, errors.Is(s.ReplaceRows("nope", nil), ErrTableNotFound))
}

func TestStore_ListKeepsCreationOrder(t *testing.T) {
	s := NewStore()
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, s.CreateTable(usersDef(n)))
	}
	require.NoError(t, s.DropTable("A"))

	var names []string
	for _, d := range s.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"c", "b"}, names)
	assert.True(t, errors.Is(s.DropTable("a"), ErrTableNotFound))
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateTable(usersDef("users")))
	require.NoError(t, s.CreateTable(usersDef("orders")))
	require.NoError(t, s.AppendRows("users", record.Row{"id": record.String("1"), "name": record.String("Alice")}))

	snap := s.Snapshot()
	require.Len(t, snap.Tables, 2)
	assert.Equal(t, SnapshotVersion, snap.Version)

	other := NewStore()
	require.NoError(t, other.Restore(snap))
	assert.Equal(t, s.List(), other.List())
	rows, err := other.Rows("users")
	require.NoError(t, err)
	assert.Equal(t, "Alice", rows[0]["name"].Text())

	// snapshot is a copy
	snap.Tables[0].Rows[0]["name"] = record.String("changed")
	rows, _ = s.Rows("users")
	assert.Equal(t, "Alice", rows[0]["name"].Text())
}

func TestStore_RestoreRejectsDuplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateTable(usersDef("keep")))

	bad := &Snapshot{Tables: []*Table{{Def: usersDef("x")}, {Def: usersDef("X")}}}
	err := s.Restore(bad)
	require.Error(t, err)
	assert.True(t, s.Has("keep"), "store unchanged on failed restore")
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreateTable(usersDef("users")))
	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("users"))
}

package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqllab/internal/catalog"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sql/parser"
)

func newStore(t *testing.T) *catalog.Store {
	t.Helper()
	s := catalog.NewStore()
	for _, ddl := range []string{
		"CREATE TABLE employees (id INT PRIMARY KEY, name TEXT, dept_id INT)",
		"CREATE TABLE departments (id INT PRIMARY KEY, dept_name TEXT)",
	} {
		def, err := parser.ParseTableDefinition(ddl)
		require.NoError(t, err)
		require.NoError(t, s.CreateTable(*def))
	}
	return s
}

func plan(t *testing.T, s *catalog.Store, sql string) (Plan, error) {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	return BuildPlan(stmt, s)
}

func TestBuildPlan_CreateAndDropTable(t *testing.T) {
	s := newStore(t)

	p, err := plan(t, s, "CREATE TABLE t (a INT)")
	require.NoError(t, err)
	ct, ok := p.(*CreateTablePlan)
	require.True(t, ok)
	require.Equal(t, "t", ct.Def.Name)

	p, err = plan(t, s, "DROP TABLE Employees")
	require.NoError(t, err)
	dp, ok := p.(*DropTablePlan)
	require.True(t, ok)
	require.Equal(t, "Employees", dp.TableName)

	_, err = plan(t, s, "DROP TABLE missing")
	require.True(t, errors.Is(err, catalog.ErrTableNotFound))
}

func TestBuildPlan_Insert_DefaultsToDeclaredColumns(t *testing.T) {
	s := newStore(t)

	p, err := plan(t, s, "INSERT INTO departments VALUES (1, 'Sales'), (2, 'IT')")
	require.NoError(t, err)
	ip, ok := p.(*InsertPlan)
	require.True(t, ok)
	require.Equal(t, []string{"id", "dept_name"}, ip.Columns)
	require.Len(t, ip.Rows, 2)
	require.Equal(t, record.String("IT"), ip.Rows[1]["dept_name"])
	require.Equal(t, record.KindString, ip.Rows[0]["id"].Kind)
}

func TestBuildPlan_Insert_ArityMismatch(t *testing.T) {
	s := newStore(t)

	_, err := plan(t, s, "INSERT INTO departments (id, dept_name) VALUES (1)")
	require.True(t, errors.Is(err, parser.ErrInvalidSyntax))

	_, err = plan(t, s, "INSERT INTO nope (a) VALUES (1)")
	require.True(t, errors.Is(err, catalog.ErrTableNotFound))
}

func TestBuildPlan_SelectStar(t *testing.T) {
	s := newStore(t)

	p, err := plan(t, s, "SELECT * FROM employees WHERE id > 1")
	require.NoError(t, err)
	sp, ok := p.(*SelectPlan)
	require.True(t, ok)
	require.Nil(t, sp.Join)
	require.NotNil(t, sp.Where)
	require.Equal(t, []string{"id", "name", "dept_id"}, sp.Columns)
}

func TestBuildPlan_SelectJoin_OrientsCondition(t *testing.T) {
	s := newStore(t)

	// ON sides written in reverse order
	p, err := plan(t, s, "SELECT * FROM employees JOIN departments ON departments.id = employees.dept_id")
	require.NoError(t, err)
	sp := p.(*SelectPlan)
	require.NotNil(t, sp.Join)
	require.Equal(t, "dept_id", sp.Join.BaseColumn)
	require.Equal(t, "id", sp.Join.JoinColumn)
	require.Equal(t, parser.JoinLeft, sp.Join.Kind)

	// id is already named by the base table
	require.Equal(t, []string{"id", "name", "dept_id", "dept_name"}, sp.Columns)
}

func TestBuildPlan_SelectJoin_Errors(t *testing.T) {
	s := newStore(t)

	_, err := plan(t, s, "SELECT * FROM employees JOIN teams ON employees.id = teams.id")
	require.True(t, errors.Is(err, catalog.ErrTableNotFound))

	_, err = plan(t, s, "SELECT * FROM employees JOIN departments ON x.id = y.id")
	require.True(t, errors.Is(err, parser.ErrInvalidSyntax))
}

func TestBuildPlan_UpdateDeleteResolveTable(t *testing.T) {
	s := newStore(t)

	p, err := plan(t, s, "UPDATE employees SET name = 'x' WHERE id = 1")
	require.NoError(t, err)
	up := p.(*UpdatePlan)
	require.Len(t, up.Assignments, 1)
	require.Equal(t, "employees", up.Table.Def.Name)

	p, err = plan(t, s, "DELETE FROM departments WHERE id = 1")
	require.NoError(t, err)
	require.IsType(t, &DeletePlan{}, p)

	_, err = plan(t, s, "DELETE FROM nope WHERE id = 1")
	require.True(t, errors.Is(err, catalog.ErrTableNotFound))
}

type bogusStmt struct{ parser.Statement }

func TestBuildPlan_UnknownStatement(t *testing.T) {
	_, err := BuildPlan(bogusStmt{}, catalog.NewStore())
	require.True(t, errors.Is(err, parser.ErrUnsupported))
}

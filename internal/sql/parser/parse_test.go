package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqllab/internal/record"
)

func TestParse_SemicolonOptional(t *testing.T) {
	for _, sql := range []string{"SELECT * FROM users", "SELECT * FROM users;", "  select * from users ;; "} {
		stmt, err := Parse(sql)
		require.NoError(t, err, sql)
		s, ok := stmt.(*SelectStmt)
		require.True(t, ok, "want *SelectStmt, got %T", stmt)
		assert.True(t, s.Star)
		assert.Equal(t, "users", s.TableName)
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   ;")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSyntax))
}

func TestParse_Unsupported(t *testing.T) {
	for _, sql := range []string{"GRANT SELECT ON t TO bob", "CREATE VIEW v AS SELECT * FROM t", "ALTER TABLE t ADD c INT"} {
		_, err := Parse(sql)
		require.Error(t, err, sql)
		assert.True(t, errors.Is(err, ErrUnsupported), sql)
	}
}

func TestParseTableDefinition(t *testing.T) {
	def, err := ParseTableDefinition("create table Students ( id INT PRIMARY KEY,\n name varchar(50) NOT NULL, age int )")
	require.NoError(t, err)

	assert.Equal(t, "Students", def.Name)
	assert.NotEmpty(t, def.ID)
	require.Len(t, def.Columns, 3)
	assert.Equal(t, record.Column{Name: "id", Type: "INT", Nullable: true, IsPrimary: true}, def.Columns[0])
	assert.Equal(t, record.Column{Name: "name", Type: "VARCHAR(50)", Nullable: false}, def.Columns[1])
	assert.Equal(t, record.Column{Name: "age", Type: "INT", Nullable: true}, def.Columns[2])
}

func TestParseTableDefinition_UniqueIDs(t *testing.T) {
	a, err := ParseTableDefinition("CREATE TABLE t (a INT)")
	require.NoError(t, err)
	b, err := ParseTableDefinition("CREATE TABLE t (a INT)")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseTableDefinition_CompoundTypeKeepsComma(t *testing.T) {
	def, err := ParseTableDefinition("CREATE TABLE emp (id INT, salary DECIMAL(10,2), name TEXT);")
	require.NoError(t, err)
	require.Len(t, def.Columns, 3)
	assert.Equal(t, "DECIMAL(10,2)", def.Columns[1].Type)
	assert.Equal(t, "name", def.Columns[2].Name)
}

func TestParseTableDefinition_TableConstraints(t *testing.T) {
	def, err := ParseTableDefinition(`CREATE TABLE employees (
  id INTEGER,
  dept_id INTEGER NOT NULL,
  email VARCHAR(255) UNIQUE NOT NULL,
  PRIMARY KEY (id),
  FOREIGN KEY (dept_id) REFERENCES departments (id)
)`)
	require.NoError(t, err)
	require.Len(t, def.Columns, 3)
	assert.True(t, def.Columns[0].IsPrimary)
	assert.False(t, def.Columns[1].Nullable)
	assert.Equal(t, []string{"id", "dept_id", "email"}, def.ColumnNames())
}

func TestParseTableDefinition_Invalid(t *testing.T) {
	cases := []string{
		"CREATE TABLE users id INT, name TEXT",
		"CREATE TABLE (id INT)",
		"CREATE TABLE users ()",
		"CREATE TABLE users (id INT",
		"CREATE TABLE users (PRIMARY KEY (id))",
	}
	for _, sql := range cases {
		_, err := ParseTableDefinition(sql)
		require.Error(t, err, sql)
		assert.True(t, errors.Is(err, ErrInvalidSyntax), sql)
	}
}

func TestParse_CreateTableStmt(t *testing.T) {
	stmt, err := Parse("CREATE TABLE users (id INT, name TEXT);")
	require.NoError(t, err)
	s, ok := stmt.(*CreateTableStmt)
	require.True(t, ok, "want *CreateTableStmt, got %T", stmt)
	assert.Equal(t, "users", s.Def.Name)
	assert.Equal(t, "CREATE TABLE users (id INT, name TEXT);", s.Def.Definition)
}

func TestParse_CreateTableIfNotExists(t *testing.T) {
	stmt, err := Parse("create table if not exists users (id INT)")
	require.NoError(t, err)
	s, ok := stmt.(*CreateTableStmt)
	require.True(t, ok, "want *CreateTableStmt, got %T", stmt)
	assert.True(t, s.IfNotExists)
	assert.Equal(t, "users", s.Def.Name)

	stmt, err = Parse("CREATE TABLE users (id INT)")
	require.NoError(t, err)
	assert.False(t, stmt.(*CreateTableStmt).IfNotExists)
}

func TestParse_DropTable(t *testing.T) {
	stmt, err := Parse("DROP TABLE users;")
	require.NoError(t, err)
	s, ok := stmt.(*DropTableStmt)
	require.True(t, ok, "want *DropTableStmt, got %T", stmt)
	assert.Equal(t, "users", s.TableName)
}

func TestParse_Insert(t *testing.T) {
	stmt, err := Parse("INSERT INTO students (id, name, age) VALUES (1, 'Alice', 20)")
	require.NoError(t, err)

	s, ok := stmt.(*InsertStmt)
	require.True(t, ok, "want *InsertStmt, got %T", stmt)
	assert.Equal(t, "students", s.TableName)
	assert.Equal(t, []string{"id", "name", "age"}, s.Columns)
	assert.Equal(t, [][]string{{"1", "Alice", "20"}}, s.Rows)
}

func TestParse_InsertQuotedCommasAndMultipleRows(t *testing.T) {
	stmt, err := Parse("insert into t (a, b) values ('x, y', 'it''s'), (2 , raw text);")
	require.NoError(t, err)
	s := stmt.(*InsertStmt)
	assert.Equal(t, [][]string{{"x, y", "it's"}, {"2", "raw text"}}, s.Rows)
}

func TestParse_InsertWithoutColumnList(t *testing.T) {
	stmt, err := Parse("INSERT INTO t VALUES (1, 'a')")
	require.NoError(t, err)
	s := stmt.(*InsertStmt)
	assert.Nil(t, s.Columns)
	assert.Equal(t, [][]string{{"1", "a"}}, s.Rows)
}

func TestParse_InsertInvalid(t *testing.T) {
	cases := []string{
		"INSERT INTO t (a, b)",
		"INSERT INTO t (a, b) VALUES 1, 2",
		"INSERT INTO t (a, b) VALUES (1, 2",
		"INSERT INTO t (a, b) VALUES (1, 2) garbage",
		"INSERT t (a) VALUES (1)",
		"INSERT INTO t (a) VALUES ()",
	}
	for _, sql := range cases {
		_, err := Parse(sql)
		require.Error(t, err, sql)
		assert.True(t, errors.Is(err, ErrInvalidSyntax), sql)
	}
}

func TestParse_SelectColumnsWhere(t *testing.T) {
	stmt, err := Parse("SELECT name, age FROM students WHERE age > 18 AND name != 'Bob' OR id = 3")
	require.NoError(t, err)

	s := stmt.(*SelectStmt)
	assert.False(t, s.Star)
	assert.Equal(t, []string{"name", "age"}, s.Columns)
	assert.Equal(t, "students", s.TableName)
	assert.Nil(t, s.Join)
	require.NotNil(t, s.Where)
	assert.Equal(t, []Term{
		{Conn: ConnAnd, Column: "age", Op: OpGt, Value: Literal{Raw: "18"}},
		{Conn: ConnAnd, Column: "name", Op: OpNe, Value: Literal{Raw: "Bob", Quoted: true}},
		{Conn: ConnOr, Column: "id", Op: OpEq, Value: Literal{Raw: "3"}},
	}, s.Where.Terms)
}

func TestParse_SelectOperators(t *testing.T) {
	ops := map[string]Op{"=": OpEq, "==": OpEq, "!=": OpNe, "<>": OpNe, ">": OpGt, "<": OpLt, ">=": OpGe, "<=": OpLe}
	for sym, want := range ops {
		stmt, err := Parse("SELECT * FROM t WHERE a " + sym + " -1.5")
		require.NoError(t, err, sym)
		term := stmt.(*SelectStmt).Where.Terms[0]
		assert.Equal(t, want, term.Op, sym)
		assert.Equal(t, "-1.5", term.Value.Raw)
	}
}

func TestParse_SelectJoin(t *testing.T) {
	stmt, err := Parse("SELECT * FROM employees JOIN departments ON employees.dept_id = departments.id WHERE departments.name = 'IT'")
	require.NoError(t, err)

	s := stmt.(*SelectStmt)
	require.NotNil(t, s.Join)
	assert.Equal(t, JoinLeft, s.Join.Kind)
	assert.Equal(t, "departments", s.Join.TableName)
	assert.Equal(t, ColumnRef{Table: "employees", Column: "dept_id"}, s.Join.Left)
	assert.Equal(t, ColumnRef{Table: "departments", Column: "id"}, s.Join.Right)
	assert.Equal(t, "departments.name", s.Where.Terms[0].Column)

	stmt, err = Parse("SELECT * FROM a LEFT OUTER JOIN b ON a.x = b.y")
	require.NoError(t, err)
	assert.Equal(t, JoinLeft, stmt.(*SelectStmt).Join.Kind)

	stmt, err = Parse("SELECT * FROM a INNER JOIN b ON a.x = b.y")
	require.NoError(t, err)
	assert.Equal(t, JoinInner, stmt.(*SelectStmt).Join.Kind)
}

func TestParse_SelectInvalid(t *testing.T) {
	cases := []string{
		"SELECT FROM t",
		"SELECT * t",
		"SELECT * FROM",
		"SELECT * FROM t WHERE",
		"SELECT * FROM t WHERE a",
		"SELECT * FROM t WHERE a = ",
		"SELECT * FROM t ORDER BY a",
		"SELECT * FROM a JOIN b ON x = y",
		"SELECT * FROM a JOIN b ON a.x > b.y",
		"SELECT * FROM t WHERE a = 'open",
		"SELECT * FROM t WHERE a # 1",
	}
	for _, sql := range cases {
		_, err := Parse(sql)
		require.Error(t, err, sql)
		assert.True(t, errors.Is(err, ErrInvalidSyntax), sql)
	}
}

func TestParse_Update(t *testing.T) {
	stmt, err := Parse("UPDATE employees SET salary = 90000, department = 'Support' WHERE id = 1 AND name = 'John'")
	require.NoError(t, err)

	s, ok := stmt.(*UpdateStmt)
	require.True(t, ok, "want *UpdateStmt, got %T", stmt)
	assert.Equal(t, "employees", s.TableName)
	assert.Equal(t, []Assignment{
		{Column: "salary", Value: Literal{Raw: "90000"}},
		{Column: "department", Value: Literal{Raw: "Support", Quoted: true}},
	}, s.Assignments)
	assert.Equal(t, []Match{
		{Column: "id", Value: Literal{Raw: "1"}},
		{Column: "name", Value: Literal{Raw: "John", Quoted: true}},
	}, s.Where)
}

func TestParse_UpdateAssignmentsJoinedByAnd(t *testing.T) {
	stmt, err := Parse("UPDATE t SET a = 1 AND b = 2 WHERE id = 1")
	require.NoError(t, err)
	assert.Len(t, stmt.(*UpdateStmt).Assignments, 2)
}

func TestParse_UpdateRestrictedWhere(t *testing.T) {
	cases := []string{
		"UPDATE t SET a = 1",
		"UPDATE t SET a = 1 WHERE id > 1",
		"UPDATE t SET a = 1 WHERE id = 1 OR id = 2",
		"UPDATE t a = 1 WHERE id = 1",
	}
	for _, sql := range cases {
		_, err := Parse(sql)
		require.Error(t, err, sql)
		assert.True(t, errors.Is(err, ErrInvalidSyntax), sql)
	}
}

func TestParse_Delete(t *testing.T) {
	stmt, err := Parse("DELETE FROM students WHERE id = 1;")
	require.NoError(t, err)

	s, ok := stmt.(*DeleteStmt)
	require.True(t, ok, "want *DeleteStmt, got %T", stmt)
	assert.Equal(t, "students", s.TableName)
	assert.Equal(t, []Match{{Column: "id", Value: Literal{Raw: "1"}}}, s.Where)

	_, err = Parse("DELETE FROM students")
	require.Error(t, err)
	_, err = Parse("DELETE FROM students WHERE id < 3")
	require.Error(t, err)
}

func TestSplitStatements(t *testing.T) {
	script := `
-- seed
CREATE TABLE t (a TEXT);
INSERT INTO t (a) VALUES ('x;y');

INSERT INTO t (a) VALUES ('z')
`
	got := SplitStatements(script)
	assert.Equal(t, []string{
		"CREATE TABLE t (a TEXT)",
		"INSERT INTO t (a) VALUES ('x;y')",
		"INSERT INTO t (a) VALUES ('z')",
	}, got)
}

func TestTokenize_ExponentsAndComments(t *testing.T) {
	toks, err := tokenize("SELECT a FROM t WHERE x >= 1e1 AND y < 2.5E-3 -- trailing note; ignored\n")
	require.NoError(t, err)
	var nums []string
	for _, tk := range toks {
		if tk.kind == tokNumber {
			nums = append(nums, tk.text)
		}
	}
	assert.Equal(t, []string{"1e1", "2.5E-3"}, nums)
	assert.Equal(t, tokEOF, toks[len(toks)-1].kind)
	assert.Equal(t, "<", toks[len(toks)-3].text)

	// "e" without digits is not part of the number
	toks, err = tokenize("1e")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "1", toks[0].text)
	assert.Equal(t, tokIdent, toks[1].kind)

	toks, err = tokenize("x = 'a--b'")
	require.NoError(t, err)
	assert.Equal(t, "a--b", toks[2].text)
}

func TestParse_SelectWithLineComment(t *testing.T) {
	stmt, err := Parse("-- list adults\nSELECT name FROM students -- only names\nWHERE age >= 1e1")
	require.NoError(t, err)
	s := stmt.(*SelectStmt)
	assert.Equal(t, []string{"name"}, s.Columns)
	require.NotNil(t, s.Where)
	assert.Equal(t, Literal{Raw: "1e1"}, s.Where.Terms[0].Value)
}

package parser

import "github.com/tuannm99/sqllab/internal/record"

// Statement is the root interface for all SQL statements.
type Statement interface {
	stmtNode()
}

// ----- CREATE / DROP TABLE -----
type CreateTableStmt struct {
	Def         record.TableDefinition
	IfNotExists bool
}

func (*CreateTableStmt) stmtNode() {}

type DropTableStmt struct {
	TableName string
}

func (*DropTableStmt) stmtNode() {}

// ----- INSERT -----

// InsertStmt holds raw, quote-stripped value text. Columns is nil when the
// statement omitted the column list.
type InsertStmt struct {
	TableName string
	Columns   []string
	Rows      [][]string
}

func (*InsertStmt) stmtNode() {}

// ----- SELECT -----
type SelectStmt struct {
	Star      bool
	Columns   []string // as written, possibly qualified
	TableName string
	Join      *JoinClause
	Where     *Condition
}

func (*SelectStmt) stmtNode() {}

type JoinKind uint8

const (
	JoinLeft JoinKind = iota // plain JOIN behaves as LEFT JOIN
	JoinInner
)

type ColumnRef struct {
	Table  string
	Column string
}

type JoinClause struct {
	Kind      JoinKind
	TableName string
	Left      ColumnRef
	Right     ColumnRef
}

// ----- UPDATE / DELETE -----

// Match is a "col = value" term; UPDATE/DELETE only accept these joined by AND.
type Match struct {
	Column string
	Value  Literal
}

type Assignment struct {
	Column string
	Value  Literal
}

type UpdateStmt struct {
	TableName   string
	Assignments []Assignment
	Where       []Match
}

func (*UpdateStmt) stmtNode() {}

type DeleteStmt struct {
	TableName string
	Where     []Match
}

func (*DeleteStmt) stmtNode() {}

// ----- WHERE -----

type Op uint8

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpLt
	OpGe
	OpLe
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGe:
		return ">="
	case OpLe:
		return "<="
	default:
		return "?"
	}
}

type Connective uint8

const (
	ConnAnd Connective = iota
	ConnOr
)

// Term is one comparison; Conn joins it to everything on its left.
type Term struct {
	Conn   Connective
	Column string
	Op     Op
	Value  Literal
}

// Condition is a flat term list folded left to right, no precedence.
type Condition struct {
	Terms []Term
}

// Literal keeps the text of a value as written. Quoted literals have their
// quotes already stripped.
type Literal struct {
	Raw    string
	Quoted bool
}

func (l Literal) Value() record.Value { return record.String(l.Raw) }

package planner

import (
	"github.com/tuannm99/sqllab/internal/catalog"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sql/parser"
)

// Plan is the interface for executable plans.
type Plan interface {
	planNode()
}

// ----- Plan nodes -----

// CreateTablePlan with Exists set is a no-op: IF NOT EXISTS named a table
// the store already has.
type CreateTablePlan struct {
	Def    record.TableDefinition
	Exists bool
}

func (*CreateTablePlan) planNode() {}

type DropTablePlan struct {
	TableName string
}

func (*DropTablePlan) planNode() {}

// InsertPlan carries fully built rows; every value is a String.
type InsertPlan struct {
	Table   *catalog.Table
	Columns []string
	Rows    []record.Row
}

func (*InsertPlan) planNode() {}

// JoinPlan is oriented so BaseColumn belongs to the FROM table and
// JoinColumn to the joined one.
type JoinPlan struct {
	Kind       parser.JoinKind
	Table      *catalog.Table
	BaseColumn string
	JoinColumn string
}

type SelectPlan struct {
	Table   *catalog.Table
	Join    *JoinPlan
	Where   *parser.Condition
	Columns []string // already expanded when the query used *
}

func (*SelectPlan) planNode() {}

type UpdatePlan struct {
	Table       *catalog.Table
	Assignments []parser.Assignment
	Where       []parser.Match
}

func (*UpdatePlan) planNode() {}

type DeletePlan struct {
	Table *catalog.Table
	Where []parser.Match
}

func (*DeletePlan) planNode() {}

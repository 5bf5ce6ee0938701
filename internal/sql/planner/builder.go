package planner

import (
	"fmt"
	"strings"

	"github.com/tuannm99/sqllab/internal/catalog"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sql/parser"
)

// BuildPlan binds a parsed statement to the tables of a store.
// Tables in the returned plan are detached copies, so executing a plan
// never mutates the store until the executor commits.
func BuildPlan(stmt parser.Statement, store *catalog.Store) (Plan, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return &CreateTablePlan{Def: s.Def, Exists: s.IfNotExists && store.Has(s.Def.Name)}, nil
	case *parser.DropTableStmt:
		if !store.Has(s.TableName) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrTableNotFound, s.TableName)
		}
		return &DropTablePlan{TableName: s.TableName}, nil
	case *parser.InsertStmt:
		return buildInsertPlan(s, store)
	case *parser.SelectStmt:
		return buildSelectPlan(s, store)
	case *parser.UpdateStmt:
		tbl, err := store.Lookup(s.TableName)
		if err != nil {
			return nil, err
		}
		return &UpdatePlan{Table: tbl, Assignments: s.Assignments, Where: s.Where}, nil
	case *parser.DeleteStmt:
		tbl, err := store.Lookup(s.TableName)
		if err != nil {
			return nil, err
		}
		return &DeletePlan{Table: tbl, Where: s.Where}, nil
	default:
		return nil, fmt.Errorf("%w: planner cannot handle %T", parser.ErrUnsupported, stmt)
	}
}

func buildInsertPlan(s *parser.InsertStmt, store *catalog.Store) (Plan, error) {
	tbl, err := store.Lookup(s.TableName)
	if err != nil {
		return nil, err
	}

	cols := s.Columns
	if cols == nil {
		cols = tbl.Def.ColumnNames()
	}

	rows := make([]record.Row, 0, len(s.Rows))
	for i, vals := range s.Rows {
		if len(vals) != len(cols) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns",
				parser.ErrInvalidSyntax, i+1, len(vals), len(cols))
		}
		row := make(record.Row, len(cols))
		for k, c := range cols {
			row[c] = record.String(vals[k])
		}
		rows = append(rows, row)
	}
	return &InsertPlan{Table: tbl, Columns: cols, Rows: rows}, nil
}

func buildSelectPlan(s *parser.SelectStmt, store *catalog.Store) (Plan, error) {
	base, err := store.Lookup(s.TableName)
	if err != nil {
		return nil, err
	}
	p := &SelectPlan{Table: base, Where: s.Where}

	if s.Join != nil {
		joined, err := store.Lookup(s.Join.TableName)
		if err != nil {
			return nil, err
		}
		jp, err := orientJoin(s.Join, base, joined)
		if err != nil {
			return nil, err
		}
		p.Join = jp
	}

	if s.Star {
		p.Columns = expandStar(base, p.Join)
	} else {
		p.Columns = append([]string(nil), s.Columns...)
	}
	return p, nil
}

// orientJoin accepts the ON sides in either order.
func orientJoin(j *parser.JoinClause, base, joined *catalog.Table) (*JoinPlan, error) {
	jp := &JoinPlan{Kind: j.Kind, Table: joined}
	switch {
	case sameName(j.Left.Table, base.Def.Name) && sameName(j.Right.Table, joined.Def.Name):
		jp.BaseColumn, jp.JoinColumn = j.Left.Column, j.Right.Column
	case sameName(j.Right.Table, base.Def.Name) && sameName(j.Left.Table, joined.Def.Name):
		jp.BaseColumn, jp.JoinColumn = j.Right.Column, j.Left.Column
	default:
		return nil, fmt.Errorf("%w: join condition must reference %s and %s",
			parser.ErrInvalidSyntax, base.Def.Name, joined.Def.Name)
	}
	return jp, nil
}

// expandStar lists the base table's declared columns, then the joined
// table's columns that are not already named.
func expandStar(base *catalog.Table, j *JoinPlan) []string {
	cols := base.Def.ColumnNames()
	if j == nil {
		return cols
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[strings.ToLower(c)] = true
	}
	for _, c := range j.Table.Def.ColumnNames() {
		if !seen[strings.ToLower(c)] {
			seen[strings.ToLower(c)] = true
			cols = append(cols, c)
		}
	}
	return cols
}

func sameName(a, b string) bool { return strings.EqualFold(a, b) }

package executor

import (
	"fmt"
	"log/slog"

	"github.com/tuannm99/sqllab/internal/catalog"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sql/parser"
	"github.com/tuannm99/sqllab/internal/sql/planner"
)

// tableStore is the mutation seam; *catalog.Store implements it and tests
// substitute a fake to observe commits.
type tableStore interface {
	CreateTable(def record.TableDefinition) error
	DropTable(name string) error
	AppendRows(name string, rows ...record.Row) error
	ReplaceRows(name string, rows []record.Row) error
}

// Executor executes plans against one store. Every handler computes its
// result on detached copies and commits with a single store call.
type Executor struct {
	Store tableStore

	// raw is what planner.BuildPlan reads from.
	raw *catalog.Store
}

func NewExecutor(store *catalog.Store) *Executor {
	return &Executor{Store: store, raw: store}
}

// NewExecutorForTest keeps planning on raw while routing commits to s.
func NewExecutorForTest(s tableStore, raw *catalog.Store) *Executor {
	return &Executor{Store: s, raw: raw}
}

// ExecSQL is the top-level entry: SQL string -> Result.
func (e *Executor) ExecSQL(sql string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return e.Exec(stmt)
}

// Exec runs an already parsed statement.
func (e *Executor) Exec(stmt parser.Statement) (*Result, error) {
	if e.raw == nil {
		return nil, fmt.Errorf("executor: store is nil")
	}
	plan, err := planner.BuildPlan(stmt, e.raw)
	if err != nil {
		return nil, err
	}
	return e.execPlan(plan)
}

func (e *Executor) execPlan(p planner.Plan) (*Result, error) {
	switch plan := p.(type) {
	case *planner.CreateTablePlan:
		return e.execCreateTable(plan)
	case *planner.DropTablePlan:
		return e.execDropTable(plan)
	case *planner.InsertPlan:
		return e.execInsert(plan)
	case *planner.SelectPlan:
		return e.execSelect(plan)
	case *planner.UpdatePlan:
		return e.execUpdate(plan)
	case *planner.DeletePlan:
		return e.execDelete(plan)
	default:
		return nil, fmt.Errorf("%w: executor cannot run %T", parser.ErrUnsupported, p)
	}
}

func (e *Executor) execCreateTable(p *planner.CreateTablePlan) (*Result, error) {
	if p.Exists {
		return &Result{Columns: []string{}, Rows: []record.Row{}}, nil
	}
	if err := e.Store.CreateTable(p.Def); err != nil {
		return nil, err
	}
	return &Result{Columns: p.Def.ColumnNames(), Rows: []record.Row{}, Mutated: true}, nil
}

func (e *Executor) execDropTable(p *planner.DropTablePlan) (*Result, error) {
	if err := e.Store.DropTable(p.TableName); err != nil {
		return nil, err
	}
	return &Result{Columns: []string{}, Rows: []record.Row{}, Mutated: true}, nil
}

func (e *Executor) execInsert(p *planner.InsertPlan) (*Result, error) {
	if err := e.Store.AppendRows(p.Table.Def.Name, p.Rows...); err != nil {
		return nil, err
	}
	slog.Debug("executor: insert", "table", p.Table.Def.Name, "rows", len(p.Rows))
	return &Result{Columns: p.Columns, Rows: record.CopyRows(p.Rows), Mutated: true}, nil
}

func (e *Executor) execSelect(p *planner.SelectPlan) (*Result, error) {
	res := &Result{Columns: p.Columns, Rows: []record.Row{}}

	for _, base := range p.Table.Rows {
		row, keep := joinRow(p, base)
		if !keep {
			continue
		}
		if !EvalCondition(p.Where, row) {
			continue
		}
		res.Rows = append(res.Rows, project(row, p.Columns))
	}
	return res, nil
}

// joinRow builds the working row for one base row. Without a join it is the
// base row plus qualified keys. keep is false only for an unmatched row of
// an INNER JOIN.
func joinRow(p *planner.SelectPlan, base record.Row) (record.Row, bool) {
	row := make(record.Row, len(base)*2)
	for k, v := range base {
		row[k] = v
		row[p.Table.Def.Name+"."+k] = v
	}
	j := p.Join
	if j == nil {
		return row, true
	}

	key, ok := lookup(base, j.BaseColumn)
	var match record.Row
	if ok {
		for _, cand := range j.Table.Rows {
			if v, ok := lookup(cand, j.JoinColumn); ok && record.LooseEqual(key, v) {
				match = cand
				break // first match in iteration order
			}
		}
	}
	if match == nil {
		return row, j.Kind != parser.JoinInner
	}

	for k, v := range match {
		row[j.Table.Def.Name+"."+k] = v
		if _, taken := row[k]; !taken {
			row[k] = v
		}
	}
	return row, true
}

// project keeps the requested columns in order; absent ones are omitted.
func project(row record.Row, cols []string) record.Row {
	out := make(record.Row, len(cols))
	for _, c := range cols {
		if v, ok := lookup(row, c); ok {
			out[c] = v
		}
	}
	return out
}

func (e *Executor) execUpdate(p *planner.UpdatePlan) (*Result, error) {
	rows := p.Table.Rows // already a detached copy
	updated := []record.Row{}

	for _, row := range rows {
		if !MatchAll(p.Where, row) {
			continue
		}
		for _, a := range p.Assignments {
			row[assignKey(p.Table.Def, row, a.Column)] = a.Value.Value()
		}
		updated = append(updated, row.Copy())
	}

	if err := e.Store.ReplaceRows(p.Table.Def.Name, rows); err != nil {
		return nil, err
	}
	slog.Debug("executor: update", "table", p.Table.Def.Name, "rows", len(updated))
	return &Result{Columns: p.Table.Def.ColumnNames(), Rows: updated, Mutated: true}, nil
}

// assignKey picks the key an assignment writes: an existing key that folds
// equal, else the declared column name, else the name as written.
func assignKey(def record.TableDefinition, row record.Row, col string) string {
	if k, ok := findKey(row, col); ok {
		return k
	}
	if i := def.ColPos(col); i >= 0 {
		return def.Columns[i].Name
	}
	return col
}

func (e *Executor) execDelete(p *planner.DeletePlan) (*Result, error) {
	survivors := make([]record.Row, 0, len(p.Table.Rows))
	for _, row := range p.Table.Rows {
		if !MatchAll(p.Where, row) {
			survivors = append(survivors, row)
		}
	}

	if err := e.Store.ReplaceRows(p.Table.Def.Name, survivors); err != nil {
		return nil, err
	}
	slog.Debug("executor: delete", "table", p.Table.Def.Name,
		"removed", len(p.Table.Rows)-len(survivors))
	return &Result{Columns: p.Table.Def.ColumnNames(), Rows: []record.Row{}, Mutated: true}, nil
}

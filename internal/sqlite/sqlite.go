// Package sqlite runs the playground contract on a real embedded SQL
// engine. It is the reference the in-memory engine is graded against.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sql/parser"
)

// Engine wraps one private in-memory SQLite database.
type Engine struct {
	mu      sync.Mutex
	db      *sql.DB
	history []string
}

var _ engine.Querier = (*Engine)(nil)

// Open creates an empty in-memory database. The pool is pinned to a single
// connection because every :memory: connection is its own database.
func Open(ctx context.Context) (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Engine{db: db}, nil
}

func (e *Engine) Close() error { return e.db.Close() }

// Execute runs one statement. Statements that produce no result set return
// empty data and fields, the way the browser playground reported them.
func (e *Engine) Execute(ctx context.Context, query string) *engine.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, query)

	if !returnsRows(query) {
		if _, err := e.db.ExecContext(ctx, query); err != nil {
			return engine.Failed(classify(err))
		}
		return engine.Succeeded(nil, nil)
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return engine.Failed(classify(err))
	}
	defer rows.Close()

	cols, data, err := scanRows(rows)
	if err != nil {
		return engine.Failed(classify(err))
	}
	return engine.Succeeded(data, cols)
}

func (e *Engine) CreateTable(ctx context.Context, query string) bool {
	if _, err := parser.ParseTableDefinition(query); err != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		slog.Debug("sqlite: create table rejected", "err", err)
		return false
	}
	return true
}

// ListTables reads sqlite_master and PRAGMA table_info. IDs are derived from
// the table name so they stay stable across calls.
func (e *Engine) ListTables() []record.TableDefinition {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := context.Background()

	rows, err := e.db.QueryContext(ctx,
		"SELECT name, sql FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid")
	if err != nil {
		slog.Warn("sqlite: list tables", "err", err)
		return nil
	}
	var defs []record.TableDefinition
	for rows.Next() {
		var d record.TableDefinition
		if err := rows.Scan(&d.Name, &d.Definition); err != nil {
			slog.Warn("sqlite: scan table", "err", err)
			continue
		}
		d.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(d.Name))).String()
		defs = append(defs, d)
	}
	_ = rows.Close()

	out := make([]record.TableDefinition, 0, len(defs))
	for _, d := range defs {
		cols, err := e.tableInfo(ctx, d.Name)
		if err != nil {
			slog.Warn("sqlite: table info", "table", d.Name, "err", err)
			continue
		}
		d.Columns = cols
		out = append(out, d)
	}
	return out
}

func (e *Engine) tableInfo(ctx context.Context, table string) ([]record.Column, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT name, type, \"notnull\", pk FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []record.Column
	for rows.Next() {
		var (
			name, typ   string
			notNull, pk int
		)
		if err := rows.Scan(&name, &typ, &notNull, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, record.Column{
			Name:      name,
			Type:      strings.ToUpper(typ),
			Nullable:  notNull == 0,
			IsPrimary: pk > 0,
		})
	}
	return cols, rows.Err()
}

func (e *Engine) GetTableRows(name string) []record.Row {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.db.QueryContext(context.Background(), "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return []record.Row{}
	}
	defer rows.Close()
	_, data, err := scanRows(rows)
	if err != nil {
		return []record.Row{}
	}
	return data
}

func (e *Engine) GetHistory() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.history...)
}

// Reset drops every user table and clears history.
func (e *Engine) Reset(ctx context.Context) error {
	defs := e.ListTables()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range defs {
		if _, err := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(d.Name)); err != nil {
			return fmt.Errorf("sqlite: drop %s: %w", d.Name, err)
		}
	}
	e.history = nil
	return nil
}

func scanRows(rows *sql.Rows) ([]string, []record.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	cols = uniqueNames(cols)
	data := []record.Row{}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(record.Row, len(cols))
		for i, c := range cols {
			if v, ok := toValue(cells[i]); ok {
				row[c] = v
			}
		}
		data = append(data, row)
	}
	return cols, data, rows.Err()
}

// uniqueNames suffixes repeated result column names (name, name_1, ...)
// so each cell keeps its own key in the row map.
func uniqueNames(cols []string) []string {
	out := make([]string, len(cols))
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		name := c
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", c, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// toValue converts a driver value. NULL has no Value form and is dropped.
func toValue(v any) (record.Value, bool) {
	switch x := v.(type) {
	case nil:
		return record.Value{}, false
	case int64:
		return record.Number(float64(x)), true
	case float64:
		return record.Number(x), true
	case []byte:
		return record.String(string(x)), true
	case string:
		return record.String(x), true
	case bool:
		if x {
			return record.Number(1), true
		}
		return record.Number(0), true
	default:
		return record.String(fmt.Sprint(x)), true
	}
}

func returnsRows(query string) bool {
	f := strings.Fields(strings.ToUpper(strings.TrimSpace(query)))
	if len(f) == 0 {
		return false
	}
	switch f[0] {
	case "SELECT", "WITH", "PRAGMA", "EXPLAIN", "VALUES":
		return true
	}
	return false
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// classify maps SQLite messages onto the engine's error kinds.
func classify(err error) error {
	msg := err.Error()
	low := strings.ToLower(msg)
	switch {
	case strings.Contains(low, "no such table"):
		return fmt.Errorf("%w: %s", engine.ErrTableNotFound, msg)
	case strings.Contains(low, "already exists"):
		return fmt.Errorf("%w: %s", engine.ErrDuplicateTable, msg)
	case strings.Contains(low, "syntax error"), strings.Contains(low, "incomplete input"):
		return fmt.Errorf("%w: %s", engine.ErrInvalidSyntax, msg)
	default:
		return fmt.Errorf("%w: %s", engine.ErrEvaluation, msg)
	}
}

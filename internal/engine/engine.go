package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tuannm99/sqllab/internal/catalog"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sql/executor"
	"github.com/tuannm99/sqllab/internal/sql/parser"
	"github.com/tuannm99/sqllab/internal/storage"
)

// Querier is the call surface shared by every backend.
type Querier interface {
	Execute(ctx context.Context, sql string) *Result
	CreateTable(ctx context.Context, sql string) bool
	ListTables() []record.TableDefinition
	GetTableRows(name string) []record.Row
	GetHistory() []string
	Reset(ctx context.Context) error
}

var _ Querier = (*Engine)(nil)

// Options configures an Engine. A nil Snapshots disables persistence.
type Options struct {
	Snapshots   storage.SnapshotStore
	SnapshotKey string
	Logger      *slog.Logger
}

// Engine owns one table store and its query history. All methods are safe
// for concurrent use; calls are serialized.
type Engine struct {
	mu sync.Mutex

	store   *catalog.Store
	exec    *executor.Executor
	history []string

	snaps storage.SnapshotStore
	key   string
	log   *slog.Logger

	// for unit-test: replaces statement execution
	execFn func(sql string) (*executor.Result, error)
}

// New returns an in-memory engine with an empty store.
func New() *Engine {
	e, _ := Open(context.Background(), Options{})
	return e
}

// Open builds an engine and restores its snapshot, if any. A snapshot that
// cannot be loaded is logged and the engine starts empty; the returned
// error only reports that fallback and the engine is always usable.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	e := &Engine{
		store: catalog.NewStore(),
		snaps: opts.Snapshots,
		key:   opts.SnapshotKey,
		log:   opts.Logger,
	}
	if e.key == "" {
		e.key = storage.DefaultSnapshotKey
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	e.exec = executor.NewExecutor(e.store)
	e.execFn = e.exec.ExecSQL

	if e.snaps == nil {
		return e, nil
	}

	snap, err := e.snaps.Load(ctx, e.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return e, nil
	case err != nil:
		e.log.Warn("engine: load snapshot failed, starting empty", "key", e.key, "err", err)
		return e, fmt.Errorf("engine: load snapshot %s: %w", e.key, err)
	}
	if err := e.store.Restore(snap); err != nil {
		e.log.Warn("engine: restore snapshot failed, starting empty", "key", e.key, "err", err)
		return e, fmt.Errorf("engine: restore snapshot %s: %w", e.key, err)
	}
	e.log.Debug("engine: snapshot restored", "key", e.key, "tables", e.store.Len())
	return e, nil
}

// SnapshotKey reports the key this engine persists under.
func (e *Engine) SnapshotKey() string { return e.key }

// Execute runs one statement. It never returns a Go error: every failure,
// including a panic inside evaluation, becomes a failed Result.
func (e *Engine) Execute(ctx context.Context, sql string) (res *Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, sql)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("engine: panic during execution", "sql", sql, "panic", r)
			res = Failed(fmt.Errorf("%w: %v", ErrEvaluation, r))
		}
	}()

	out, err := e.execFn(sql)
	if err != nil {
		e.log.Debug("engine: statement failed", "sql", sql, "err", err)
		return Failed(classify(err))
	}
	if out.Mutated {
		e.persist(ctx)
	}
	e.log.Debug("engine: statement done", "sql", sql, "rows", len(out.Rows))
	return Succeeded(out.Rows, out.Columns)
}

// CreateTable parses a CREATE TABLE statement and adds the table. It
// reports false, leaving the store unchanged, on any failure.
func (e *Engine) CreateTable(ctx context.Context, sql string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	stmt, err := parser.ParseCreateTable(sql)
	if err != nil {
		e.log.Debug("engine: create table rejected", "err", err)
		return false
	}
	def := stmt.Def
	if stmt.IfNotExists && e.store.Has(def.Name) {
		return true
	}
	if err := e.store.CreateTable(def); err != nil {
		e.log.Debug("engine: create table rejected", "table", def.Name, "err", err)
		return false
	}
	e.persist(ctx)
	return true
}

// ListTables returns every table definition in creation order.
func (e *Engine) ListTables() []record.TableDefinition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.List()
}

// GetTableRows returns a copy of a table's rows; unknown tables yield an
// empty slice.
func (e *Engine) GetTableRows(name string) []record.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, err := e.store.Rows(name)
	if err != nil {
		return []record.Row{}
	}
	return rows
}

// GetHistory returns every SQL string passed to Execute, oldest first.
func (e *Engine) GetHistory() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.history...)
}

// Reset drops every table, clears history and removes the saved snapshot.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Reset()
	e.history = nil
	if e.snaps == nil {
		return nil
	}
	if err := e.snaps.Delete(ctx, e.key); err != nil {
		return fmt.Errorf("engine: delete snapshot %s: %w", e.key, err)
	}
	return nil
}

// persist writes the whole store. Failures are logged, never surfaced:
// the in-memory store is the source of truth.
func (e *Engine) persist(ctx context.Context) {
	if e.snaps == nil {
		return
	}
	if err := e.snaps.Save(ctx, e.key, e.store.Snapshot()); err != nil {
		e.log.Warn("engine: save snapshot failed", "key", e.key, "err", err)
	}
}

// Package sqllab is the top-level facade for the sqllab playground engine.
package sqllab

import (
	"context"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/storage"
)

type (
	Engine          = engine.Engine
	Options         = engine.Options
	Querier         = engine.Querier
	Result          = engine.Result
	Row             = record.Row
	Value           = record.Value
	Column          = record.Column
	TableDefinition = record.TableDefinition
	SnapshotStore   = storage.SnapshotStore
)

var (
	ErrInvalidSyntax        = engine.ErrInvalidSyntax
	ErrTableNotFound        = engine.ErrTableNotFound
	ErrDuplicateTable       = engine.ErrDuplicateTable
	ErrUnsupportedStatement = engine.ErrUnsupportedStatement
	ErrEvaluation           = engine.ErrEvaluation
)

// DefaultSnapshotKey is the key a session persists under unless Options
// names another.
const DefaultSnapshotKey = storage.DefaultSnapshotKey

// New returns an engine with an empty in-memory store and no persistence.
func New() *Engine { return engine.New() }

// Open returns an engine restored from opts.Snapshots. See engine.Open for
// the fallback rules.
func Open(ctx context.Context, opts Options) (*Engine, error) { return engine.Open(ctx, opts) }

// FileSnapshots stores snapshots as <dir>/<key>.json.
func FileSnapshots(dir string) SnapshotStore { return storage.NewFileStore(dir) }

// MemorySnapshots keeps snapshots in process memory.
func MemorySnapshots() SnapshotStore { return storage.NewMemoryStore() }

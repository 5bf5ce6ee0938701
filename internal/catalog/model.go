package catalog

import (
	"time"

	"github.com/tuannm99/sqllab/internal/record"
)

// Table owns a definition and its rows in insertion order.
type Table struct {
	Def       record.TableDefinition `json:"definition"`
	Rows      []record.Row           `json:"rows"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Snapshot is the serialized form of a whole store. Tables are kept in
// creation order so a restored store lists them the same way.
type Snapshot struct {
	Version int      `json:"version"`
	Tables  []*Table `json:"tables"`
}

const SnapshotVersion = 1

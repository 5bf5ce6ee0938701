package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tuannm99/sqllab/internal/catalog"
)

// DefaultSnapshotKey is the key a playground session persists under.
const DefaultSnapshotKey = "sql_playground_db"

var (
	ErrNotFound   = errors.New("sqllab: snapshot not found")
	ErrInvalidKey = errors.New("sqllab: invalid snapshot key")
)

// SnapshotStore keeps whole-store snapshots by key.
// Load returns ErrNotFound when nothing was saved under the key.
type SnapshotStore interface {
	Load(ctx context.Context, key string) (*catalog.Snapshot, error)
	Save(ctx context.Context, key string, snap *catalog.Snapshot) error
	Delete(ctx context.Context, key string) error
}

type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// New builds a SnapshotStore for a backend name. dir is only used by the
// file backend.
func New(backend Backend, dir string) (SnapshotStore, error) {
	switch Backend(strings.ToLower(string(backend))) {
	case BackendFile, "":
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("storage: file backend needs a directory")
		}
		return NewFileStore(dir), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", backend)
	}
}

// ValidateKey rejects keys that would escape the store directory.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

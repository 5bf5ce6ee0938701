package executor

import "github.com/tuannm99/sqllab/internal/record"

// Result is the generic statement result returned to the caller.
type Result struct {
	Columns []string
	Rows    []record.Row

	// Mutated is set when the statement changed the store.
	Mutated bool
}

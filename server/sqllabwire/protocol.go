package sqllabwire

import (
	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
)

// Op names one engine call.
type Op string

const (
	OpExec        Op = "exec"
	OpCreateTable Op = "create_table"
	OpTables      Op = "tables"
	OpRows        Op = "rows"
	OpHistory     Op = "history"
	OpReset       Op = "reset"
)

// Request is a single engine call. Session selects the snapshot key the
// connection's engine persists under; it binds on first use and switching
// it mid-connection reopens the engine.
type Request struct {
	ID      uint64 `json:"id"`
	Op      Op     `json:"op"`
	Session string `json:"session,omitempty"`
	SQL     string `json:"sql,omitempty"`
	Table   string `json:"table,omitempty"`
}

// Response is the response for a request ID. Only the field matching the
// request's op is set.
type Response struct {
	ID      uint64                   `json:"id"`
	Session string                   `json:"session,omitempty"`
	Result  *engine.Result           `json:"result,omitempty"`
	Tables  []record.TableDefinition `json:"tables,omitempty"`
	Rows    []record.Row             `json:"rows,omitempty"`
	History []string                 `json:"history,omitempty"`
	OK      bool                     `json:"ok,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

package engine

import (
	"encoding/json"

	"github.com/tuannm99/sqllab/internal/record"
)

// Result is the uniform outcome of Execute. On success Data and Fields are
// set (possibly empty); on failure only Error is.
type Result struct {
	Success bool
	Data    []record.Row
	Fields  []string
	Error   string

	// Err keeps the classified error for errors.Is checks.
	Err error
}

func Succeeded(data []record.Row, fields []string) *Result {
	if data == nil {
		data = []record.Row{}
	}
	if fields == nil {
		fields = []string{}
	}
	return &Result{Success: true, Data: data, Fields: fields}
}

func Failed(err error) *Result {
	return &Result{Success: false, Error: err.Error(), Err: err}
}

type resultJSON struct {
	Success bool         `json:"success"`
	Data    []record.Row `json:"data,omitempty"`
	Fields  []string     `json:"fields,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// MarshalJSON writes {success, data, fields} or {success, error}. Empty
// data on success is kept as [].
func (r *Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(resultJSON{Error: r.Error})
	}
	type success struct {
		Success bool         `json:"success"`
		Data    []record.Row `json:"data"`
		Fields  []string     `json:"fields"`
	}
	s := success{Success: true, Data: r.Data, Fields: r.Fields}
	if s.Data == nil {
		s.Data = []record.Row{}
	}
	if s.Fields == nil {
		s.Fields = []string{}
	}
	return json.Marshal(s)
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Result{Success: raw.Success, Data: raw.Data, Fields: raw.Fields, Error: raw.Error}
	if !r.Success {
		r.Err = errorFromMessage(raw.Error)
	} else {
		if r.Data == nil {
			r.Data = []record.Row{}
		}
		if r.Fields == nil {
			r.Fields = []string{}
		}
	}
	return nil
}

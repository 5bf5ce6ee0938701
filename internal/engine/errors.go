package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tuannm99/sqllab/internal/catalog"
	"github.com/tuannm99/sqllab/internal/sql/parser"
)

// Error kinds surfaced to callers. The message of a failed Result always
// starts with one of these names.
var (
	ErrInvalidSyntax        = errors.New("InvalidSyntax")
	ErrTableNotFound        = errors.New("TableNotFound")
	ErrDuplicateTable       = errors.New("DuplicateTable")
	ErrUnsupportedStatement = errors.New("UnsupportedStatement")
	ErrEvaluation           = errors.New("EvaluationError")
)

var kinds = []struct {
	lower error
	kind  error
}{
	{parser.ErrInvalidSyntax, ErrInvalidSyntax},
	{parser.ErrUnsupported, ErrUnsupportedStatement},
	{catalog.ErrTableNotFound, ErrTableNotFound},
	{catalog.ErrDuplicateTable, ErrDuplicateTable},
}

// classify maps a package-level error onto an error kind, dropping the
// lower sentinel's own prefix from the detail.
func classify(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k.lower) {
			detail := strings.TrimPrefix(err.Error(), k.lower.Error()+": ")
			if detail == k.lower.Error() {
				return k.kind
			}
			return fmt.Errorf("%w: %s", k.kind, detail)
		}
	}
	return fmt.Errorf("%w: %s", ErrEvaluation, err.Error())
}

// errorFromMessage rebuilds a classified error from its text, e.g. after a
// Result crossed the wire.
func errorFromMessage(msg string) error {
	for _, kind := range []error{
		ErrInvalidSyntax, ErrTableNotFound, ErrDuplicateTable,
		ErrUnsupportedStatement, ErrEvaluation,
	} {
		if rest, ok := strings.CutPrefix(msg, kind.Error()); ok {
			return fmt.Errorf("%w%s", kind, rest)
		}
	}
	return errors.New(msg)
}

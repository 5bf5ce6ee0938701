package executor

import (
	"strings"

	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sql/parser"
)

// EvalCondition folds the terms strictly left to right with no precedence:
// acc starts at true and each term combines with its own connective.
// "a = 1 OR b = 2 AND c = 3" therefore reads ((a=1 OR b=2) AND c=3).
func EvalCondition(c *parser.Condition, row record.Row) bool {
	if c == nil {
		return true
	}
	acc := true
	for _, t := range c.Terms {
		v := evalTerm(t, row)
		if t.Conn == parser.ConnOr {
			acc = acc || v
		} else {
			acc = acc && v
		}
	}
	return acc
}

// MatchAll is the restricted UPDATE/DELETE predicate: every equality holds.
func MatchAll(ms []parser.Match, row record.Row) bool {
	for _, m := range ms {
		if !evalTerm(parser.Term{Column: m.Column, Op: parser.OpEq, Value: m.Value}, row) {
			return false
		}
	}
	return true
}

func evalTerm(t parser.Term, row record.Row) bool {
	cell, ok := lookup(row, t.Column)
	if !ok {
		return false
	}

	// unquoted numbers compare numerically
	if !t.Value.Quoted {
		if want, isNum := record.ParseNumber(t.Value.Raw); isNum {
			got, ok := cell.Float()
			if !ok {
				return t.Op == parser.OpNe
			}
			return compareFloat(t.Op, got, want)
		}
	}

	lit := t.Value.Value()
	switch t.Op {
	case parser.OpEq:
		return record.LooseEqual(cell, lit)
	case parser.OpNe:
		return !record.LooseEqual(cell, lit)
	default:
		return compareInt(t.Op, strings.Compare(cell.Text(), lit.S))
	}
}

func compareFloat(op parser.Op, a, b float64) bool {
	switch {
	case a < b:
		return compareInt(op, -1)
	case a > b:
		return compareInt(op, 1)
	default:
		return compareInt(op, 0)
	}
}

func compareInt(op parser.Op, c int) bool {
	switch op {
	case parser.OpEq:
		return c == 0
	case parser.OpNe:
		return c != 0
	case parser.OpGt:
		return c > 0
	case parser.OpLt:
		return c < 0
	case parser.OpGe:
		return c >= 0
	case parser.OpLe:
		return c <= 0
	default:
		return false
	}
}

// lookup finds a column by exact key first, then case-insensitively.
func lookup(row record.Row, col string) (record.Value, bool) {
	if k, ok := findKey(row, col); ok {
		return row[k], true
	}
	return record.Value{}, false
}

func findKey(row record.Row, col string) (string, bool) {
	if _, ok := row[col]; ok {
		return col, true
	}
	best := ""
	for k := range row {
		// several keys may fold equal; pick the smallest
		if strings.EqualFold(k, col) && (best == "" || k < best) {
			best = k
		}
	}
	return best, best != ""
}

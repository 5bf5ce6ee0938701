package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/tuannm99/sqllab/internal/record"
)

var (
	createTableRe = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	ifNotExistsRe = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+IF\s+NOT\s+EXISTS\s`)
)

// ParseCreateTable is ParseTableDefinition plus the IF NOT EXISTS flag.
func ParseCreateTable(sql string) (*CreateTableStmt, error) {
	def, err := ParseTableDefinition(sql)
	if err != nil {
		return nil, err
	}
	return &CreateTableStmt{Def: *def, IfNotExists: ifNotExistsRe.MatchString(trimStatement(sql))}, nil
}

// ParseTableDefinition turns "CREATE TABLE name (col TYPE ..., ...)" into a
// definition with a fresh id. It has no side effects.
//
// The body is split on commas at parenthesis depth 0, so DECIMAL(10,2)
// stays a single column. Table-level constraints are not columns; a
// PRIMARY KEY (a, b) constraint marks those columns as primary.
func ParseTableDefinition(sql string) (*record.TableDefinition, error) {
	src := trimStatement(sql)
	m := createTableRe.FindStringSubmatchIndex(src)
	if m == nil {
		return nil, fmt.Errorf("%w: expected CREATE TABLE <name> (...)", ErrInvalidSyntax)
	}
	name := src[m[2]:m[3]]
	open := m[1] - 1

	end := matchParen(src, open)
	if end < 0 {
		return nil, fmt.Errorf("%w: missing ')' in CREATE TABLE %s", ErrInvalidSyntax, name)
	}
	body := strings.TrimSpace(src[open+1 : end])
	if body == "" {
		return nil, fmt.Errorf("%w: empty column list in CREATE TABLE %s", ErrInvalidSyntax, name)
	}

	var cols []record.Column
	var pkNames []string
	for _, frag := range splitTopLevel(body) {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		if kind, ok := tableConstraint(frag); ok {
			if kind == "PRIMARY" {
				pkNames = append(pkNames, constraintColumns(frag)...)
			}
			continue
		}

		toks := strings.Fields(frag)
		col := record.Column{Name: unquoteIdent(toks[0])}
		if len(toks) > 1 {
			col.Type = strings.ToUpper(toks[1])
		}
		low := strings.ToLower(frag)
		col.Nullable = !strings.Contains(low, "not null")
		col.IsPrimary = strings.Contains(low, "primary key")
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: CREATE TABLE %s declares no columns", ErrInvalidSyntax, name)
	}

	for _, pk := range pkNames {
		for i := range cols {
			if strings.EqualFold(cols[i].Name, pk) {
				cols[i].IsPrimary = true
			}
		}
	}

	return &record.TableDefinition{
		ID:         uuid.NewString(),
		Name:       name,
		Definition: strings.TrimSpace(sql),
		Columns:    cols,
	}, nil
}

// matchParen returns the index of the ')' closing the '(' at open, or -1.
func matchParen(s string, open int) int {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas outside quotes and parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	parts = append(parts, cur.String())
	return parts
}

// tableConstraint recognizes fragments such as "PRIMARY KEY (id)" or
// "FOREIGN KEY (a) REFERENCES b (id)".
func tableConstraint(frag string) (string, bool) {
	f := strings.Fields(strings.ToUpper(frag))
	if len(f) == 0 {
		return "", false
	}
	rest := strings.TrimSpace(strings.Join(f[1:], " "))
	switch f[0] {
	case "CONSTRAINT":
		return "CONSTRAINT", true
	case "PRIMARY", "FOREIGN":
		if strings.HasPrefix(rest, "KEY") {
			return f[0], true
		}
	case "UNIQUE", "CHECK":
		if strings.HasPrefix(rest, "(") {
			return f[0], true
		}
	}
	if strings.HasPrefix(f[0], "UNIQUE(") || strings.HasPrefix(f[0], "CHECK(") {
		return "CONSTRAINT", true
	}
	return "", false
}

func constraintColumns(frag string) []string {
	open := strings.IndexByte(frag, '(')
	if open < 0 {
		return nil
	}
	end := matchParen(frag, open)
	if end < 0 {
		return nil
	}
	var out []string
	for _, p := range strings.Split(frag[open+1:end], ",") {
		if p = unquoteIdent(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func unquoteIdent(s string) string {
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"',
			s[0] == '`' && s[len(s)-1] == '`',
			s[0] == '[' && s[len(s)-1] == ']':
			return s[1 : len(s)-1]
		}
	}
	return s
}

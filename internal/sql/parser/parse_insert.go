package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var valuesRe = regexp.MustCompile(`(?i)\bVALUES\b`)

func parseInsert(sql string) (Statement, error) {
	// INSERT INTO t [(a, b)] VALUES (1, 'x')[, (2, 'y')]
	// Values are kept as raw text, so only the head is tokenized.
	loc := valuesRe.FindStringIndex(sql)
	if loc == nil {
		return nil, fmt.Errorf("%w: expected VALUES", ErrInvalidSyntax)
	}
	c, err := newCursor(sql[:loc[0]])
	if err != nil {
		return nil, err
	}
	if err := c.expect("INSERT"); err != nil {
		return nil, err
	}
	if err := c.expect("INTO"); err != nil {
		return nil, err
	}
	st := &InsertStmt{}
	if st.TableName, err = c.ident(); err != nil {
		return nil, err
	}

	if c.acceptSym("(") {
		st.Columns = []string{}
		for {
			col, err := c.ident()
			if err != nil {
				return nil, err
			}
			st.Columns = append(st.Columns, col)
			if !c.acceptSym(",") {
				break
			}
		}
		if err := c.expectSym(")"); err != nil {
			return nil, err
		}
	}

	if !c.atEOF() {
		return nil, c.errorf("expected VALUES")
	}

	rows, err := parseValueTuples(sql[loc[1]:])
	if err != nil {
		return nil, err
	}
	st.Rows = rows
	return st, nil
}

// parseValueTuples reads "(v, v), (v, v)". Each value is trimmed and has
// surrounding single quotes stripped.
func parseValueTuples(s string) ([][]string, error) {
	s = trimStatement(s)
	var rows [][]string
	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) || s[i] != '(' {
			return nil, fmt.Errorf("%w: expected '(' in VALUES", ErrInvalidSyntax)
		}
		end := matchParen(s, i)
		if end < 0 {
			return nil, fmt.Errorf("%w: missing ')' in VALUES", ErrInvalidSyntax)
		}
		inner := s[i+1 : end]
		if strings.TrimSpace(inner) == "" {
			return nil, fmt.Errorf("%w: empty VALUES tuple", ErrInvalidSyntax)
		}

		parts := splitComma(inner)
		vals := make([]string, len(parts))
		for k, p := range parts {
			vals[k] = stripQuotes(strings.TrimSpace(p))
		}
		rows = append(rows, vals)

		i = end + 1
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return rows, nil
		}
		if s[i] != ',' {
			return nil, fmt.Errorf("%w: unexpected %q after VALUES tuple", ErrInvalidSyntax, s[i:])
		}
		i++
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

// splitComma splits a comma-separated list, ignoring commas inside quotes
// and parentheses.
func splitComma(s string) []string {
	parts := []string{}
	cur := strings.Builder{}
	inQuote := false
	depth := 0
	for _, r := range s {
		switch r {
		case '\'':
			inQuote = !inQuote
			cur.WriteRune(r)
		case '(':
			if !inQuote {
				depth++
			}
			cur.WriteRune(r)
		case ')':
			if !inQuote {
				depth--
			}
			cur.WriteRune(r)
		case ',':
			if inQuote || depth > 0 {
				cur.WriteRune(r)
			} else {
				parts = append(parts, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// stripQuotes removes one pair of surrounding single quotes and unescapes ''.
func stripQuotes(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return strings.ReplaceAll(v[1:len(v)-1], "''", "'")
	}
	return v
}

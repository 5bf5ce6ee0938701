package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSyntax = errors.New("invalid syntax")
	ErrUnsupported   = errors.New("unsupported statement")
)

// Parse parses a single SQL statement into an AST.
// A trailing ';' is optional.
func Parse(sql string) (Statement, error) {
	s := trimStatement(sql)
	if s == "" {
		return nil, fmt.Errorf("%w: empty statement", ErrInvalidSyntax)
	}

	words := strings.Fields(strings.ToUpper(s))
	second := ""
	if len(words) > 1 {
		second = words[1]
	}

	switch words[0] {
	case "SELECT":
		return parseSelect(s)
	case "INSERT":
		return parseInsert(s)
	case "UPDATE":
		return parseUpdate(s)
	case "DELETE":
		return parseDelete(s)
	case "CREATE":
		if second == "TABLE" {
			return ParseCreateTable(sql)
		}
	case "DROP":
		if second == "TABLE" {
			return parseDropTable(s)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, firstWords(s, 2))
}

// trimStatement strips surrounding whitespace, leading "--" comment lines
// and trailing semicolons.
func trimStatement(sql string) string {
	s := strings.TrimSpace(sql)
	for strings.HasPrefix(s, "--") {
		_, rest, _ := strings.Cut(s, "\n")
		s = strings.TrimSpace(rest)
	}
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s
}

func firstWords(s string, n int) string {
	f := strings.Fields(s)
	if len(f) > n {
		f = f[:n]
	}
	return strings.Join(f, " ")
}

func newCursor(s string) (*cursor, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	return &cursor{toks: toks}, nil
}

func parseSelect(sql string) (Statement, error) {
	// SELECT <cols|*> FROM t [[LEFT [OUTER]|INNER] JOIN t2 ON a.x = b.y] [WHERE ...]
	c, err := newCursor(sql)
	if err != nil {
		return nil, err
	}
	if err := c.expect("SELECT"); err != nil {
		return nil, err
	}

	st := &SelectStmt{}
	if c.acceptSym("*") {
		st.Star = true
	} else {
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
	}

	if err := c.expect("FROM"); err != nil {
		return nil, err
	}
	if st.TableName, err = c.ident(); err != nil {
		return nil, err
	}

	if j, err := parseJoin(c); err != nil {
		return nil, err
	} else if j != nil {
		st.Join = j
	}

	if c.accept("WHERE") {
		cond, err := parseCondition(c)
		if err != nil {
			return nil, err
		}
		st.Where = cond
	}

	if !c.atEOF() {
		return nil, c.errorf("unexpected trailing input")
	}
	return st, nil
}

// parseJoin returns nil when no JOIN follows.
func parseJoin(c *cursor) (*JoinClause, error) {
	j := &JoinClause{Kind: JoinLeft}
	switch {
	case c.accept("LEFT"):
		c.accept("OUTER")
		if err := c.expect("JOIN"); err != nil {
			return nil, err
		}
	case c.accept("INNER"):
		j.Kind = JoinInner
		if err := c.expect("JOIN"); err != nil {
			return nil, err
		}
	case c.accept("JOIN"):
	default:
		return nil, nil
	}

	var err error
	if j.TableName, err = c.ident(); err != nil {
		return nil, err
	}
	if err := c.expect("ON"); err != nil {
		return nil, err
	}
	if j.Left, err = qualifiedRef(c); err != nil {
		return nil, err
	}
	if !c.acceptSym("=") && !c.acceptSym("==") {
		return nil, c.errorf("join condition must be an equality")
	}
	if j.Right, err = qualifiedRef(c); err != nil {
		return nil, err
	}
	return j, nil
}

func qualifiedRef(c *cursor) (ColumnRef, error) {
	name, err := c.ident()
	if err != nil {
		return ColumnRef{}, err
	}
	tbl, col, ok := strings.Cut(name, ".")
	if !ok || tbl == "" || col == "" {
		return ColumnRef{}, fmt.Errorf("%w: join column %q must be written as table.column", ErrInvalidSyntax, name)
	}
	return ColumnRef{Table: tbl, Column: col}, nil
}

// parseCondition reads "col op value { (AND|OR) col op value }".
func parseCondition(c *cursor) (*Condition, error) {
	cond := &Condition{}
	conn := ConnAnd
	for {
		col, err := c.ident()
		if err != nil {
			return nil, err
		}
		op, err := parseOp(c)
		if err != nil {
			return nil, err
		}
		lit, err := parseLiteral(c)
		if err != nil {
			return nil, err
		}
		cond.Terms = append(cond.Terms, Term{Conn: conn, Column: col, Op: op, Value: lit})

		switch {
		case c.accept("AND"):
			conn = ConnAnd
		case c.accept("OR"):
			conn = ConnOr
		default:
			return cond, nil
		}
	}
}

func parseOp(c *cursor) (Op, error) {
	t := c.peek()
	if t.kind != tokSymbol {
		return 0, c.errorf("expected comparison operator")
	}
	var op Op
	switch t.text {
	case "=", "==":
		op = OpEq
	case "!=", "<>":
		op = OpNe
	case ">":
		op = OpGt
	case "<":
		op = OpLt
	case ">=":
		op = OpGe
	case "<=":
		op = OpLe
	default:
		return 0, c.errorf("expected comparison operator")
	}
	c.next()
	return op, nil
}

func parseLiteral(c *cursor) (Literal, error) {
	t := c.peek()
	switch t.kind {
	case tokNumber, tokIdent:
		c.next()
		return Literal{Raw: t.text}, nil
	case tokString:
		c.next()
		return Literal{Raw: t.text, Quoted: true}, nil
	default:
		return Literal{}, c.errorf("expected value")
	}
}

// parseMatches reads the restricted "col = value { AND col = value }" form.
func parseMatches(c *cursor) ([]Match, error) {
	var out []Match
	for {
		col, err := c.ident()
		if err != nil {
			return nil, err
		}
		if !c.acceptSym("=") && !c.acceptSym("==") {
			return nil, c.errorf("only col = value is supported here")
		}
		lit, err := parseLiteral(c)
		if err != nil {
			return nil, err
		}
		out = append(out, Match{Column: col, Value: lit})

		if c.accept("AND") {
			continue
		}
		if c.peek().is("OR") {
			return nil, c.errorf("only AND may join conditions here")
		}
		return out, nil
	}
}

func parseUpdate(sql string) (Statement, error) {
	// UPDATE t SET a = 1, b = 'x' WHERE id = 1 [AND ...]
	c, err := newCursor(sql)
	if err != nil {
		return nil, err
	}
	if err := c.expect("UPDATE"); err != nil {
		return nil, err
	}
	st := &UpdateStmt{}
	if st.TableName, err = c.ident(); err != nil {
		return nil, err
	}
	if err := c.expect("SET"); err != nil {
		return nil, err
	}

	for {
		col, err := c.ident()
		if err != nil {
			return nil, err
		}
		if !c.acceptSym("=") {
			return nil, c.errorf("expected '=' in assignment")
		}
		lit, err := parseLiteral(c)
		if err != nil {
			return nil, err
		}
		st.Assignments = append(st.Assignments, Assignment{Column: col, Value: lit})
		if c.acceptSym(",") || c.accept("AND") {
			continue
		}
		break
	}

	if !c.accept("WHERE") {
		return nil, c.errorf("UPDATE requires a WHERE clause")
	}
	if st.Where, err = parseMatches(c); err != nil {
		return nil, err
	}
	if !c.atEOF() {
		return nil, c.errorf("unexpected trailing input")
	}
	return st, nil
}

func parseDelete(sql string) (Statement, error) {
	// DELETE FROM t WHERE col = value [AND ...]
	c, err := newCursor(sql)
	if err != nil {
		return nil, err
	}
	if err := c.expect("DELETE"); err != nil {
		return nil, err
	}
	if err := c.expect("FROM"); err != nil {
		return nil, err
	}
	st := &DeleteStmt{}
	if st.TableName, err = c.ident(); err != nil {
		return nil, err
	}
	if !c.accept("WHERE") {
		return nil, c.errorf("DELETE requires a WHERE clause")
	}
	if st.Where, err = parseMatches(c); err != nil {
		return nil, err
	}
	if !c.atEOF() {
		return nil, c.errorf("unexpected trailing input")
	}
	return st, nil
}

func parseDropTable(sql string) (Statement, error) {
	c, err := newCursor(sql)
	if err != nil {
		return nil, err
	}
	if err := c.expect("DROP"); err != nil {
		return nil, err
	}
	if err := c.expect("TABLE"); err != nil {
		return nil, err
	}
	st := &DropTableStmt{}
	if st.TableName, err = c.ident(); err != nil {
		return nil, err
	}
	if !c.atEOF() {
		return nil, c.errorf("unexpected trailing input")
	}
	return st, nil
}

// SplitStatements splits a script on ';' outside single quotes.
// Blank statements and "--" comment lines are dropped.
func SplitStatements(script string) []string {
	var lines []string
	for _, ln := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(ln), "--") {
			continue
		}
		lines = append(lines, ln)
	}
	script = strings.Join(lines, "\n")

	var out []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range script {
		switch {
		case r == '\'':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ';' && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

package parser

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokSymbol
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	default:
		return "symbol"
	}
}

// token is one lexeme. For strings text holds the unquoted content.
// pos is the byte offset of the token in the source.
type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) is(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (t token) isSym(s string) bool {
	return t.kind == tokSymbol && t.text == s
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

// tokenize splits a statement into tokens. Qualified names ("t.col") are
// a single identifier token. '' inside a string is an escaped quote.
// "--" starts a comment that runs to the end of the line.
func tokenize(src string) ([]token, error) {
	rs := []rune(src)
	// byte offsets for each rune, plus the end
	offs := make([]int, len(rs)+1)
	{
		o := 0
		for i, r := range rs {
			offs[i] = o
			o += len(string(r))
		}
		offs[len(rs)] = o
	}

	var out []token
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}

		case isIdentStart(r):
			start := i
			for i < len(rs) && (isIdentPart(rs[i]) ||
				(rs[i] == '.' && i+1 < len(rs) && isIdentStart(rs[i+1]))) {
				i++
			}
			out = append(out, token{kind: tokIdent, text: string(rs[start:i]), pos: offs[start]})

		case unicode.IsDigit(r) || ((r == '-' || r == '.') && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			i++
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			i = scanExponent(rs, i)
			out = append(out, token{kind: tokNumber, text: string(rs[start:i]), pos: offs[start]})

		case r == '\'':
			start := i
			i++
			var b strings.Builder
			closed := false
			for i < len(rs) {
				if rs[i] == '\'' {
					if i+1 < len(rs) && rs[i+1] == '\'' {
						b.WriteRune('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				b.WriteRune(rs[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrInvalidSyntax, offs[start])
			}
			out = append(out, token{kind: tokString, text: b.String(), pos: offs[start]})

		case r == '"' || r == '`':
			// quoted identifier
			start := i
			q := r
			i++
			for i < len(rs) && rs[i] != q {
				i++
			}
			if i >= len(rs) {
				return nil, fmt.Errorf("%w: unterminated identifier at offset %d", ErrInvalidSyntax, offs[start])
			}
			out = append(out, token{kind: tokIdent, text: string(rs[start+1 : i]), pos: offs[start]})
			i++

		default:
			start := i
			two := ""
			if i+1 < len(rs) {
				two = string(rs[i : i+2])
			}
			switch two {
			case "!=", "<>", ">=", "<=", "==":
				out = append(out, token{kind: tokSymbol, text: two, pos: offs[start]})
				i += 2
				continue
			}
			if strings.ContainsRune("(),;*=<>", r) {
				out = append(out, token{kind: tokSymbol, text: string(r), pos: offs[start]})
				i++
				continue
			}
			return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrInvalidSyntax, r, offs[start])
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(src)})
	return out, nil
}

// scanExponent extends a number ending at i over "e[+-]digits", if present.
func scanExponent(rs []rune, i int) int {
	if i >= len(rs) || (rs[i] != 'e' && rs[i] != 'E') {
		return i
	}
	j := i + 1
	if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
		j++
	}
	if j >= len(rs) || !unicode.IsDigit(rs[j]) {
		return i
	}
	for j < len(rs) && unicode.IsDigit(rs[j]) {
		j++
	}
	return j
}

// cursor walks a token slice for the recursive-descent parsers.
type cursor struct {
	toks []token
	i    int
}

func (c *cursor) peek() token { return c.toks[c.i] }

func (c *cursor) next() token {
	t := c.toks[c.i]
	if t.kind != tokEOF {
		c.i++
	}
	return t
}

func (c *cursor) atEOF() bool { return c.peek().kind == tokEOF }

// accept consumes the keyword if present.
func (c *cursor) accept(kw string) bool {
	if c.peek().is(kw) {
		c.i++
		return true
	}
	return false
}

func (c *cursor) acceptSym(s string) bool {
	if c.peek().isSym(s) {
		c.i++
		return true
	}
	return false
}

func (c *cursor) expect(kw string) error {
	if !c.accept(kw) {
		return c.errorf("expected %s", strings.ToUpper(kw))
	}
	return nil
}

func (c *cursor) expectSym(s string) error {
	if !c.acceptSym(s) {
		return c.errorf("expected %q", s)
	}
	return nil
}

func (c *cursor) ident() (string, error) {
	t := c.peek()
	if t.kind != tokIdent {
		return "", c.errorf("expected identifier")
	}
	c.i++
	return t.text, nil
}

func (c *cursor) errorf(format string, args ...any) error {
	t := c.peek()
	got := t.text
	if t.kind == tokEOF {
		got = t.kind.String()
	}
	return fmt.Errorf("%w: %s, got %q", ErrInvalidSyntax, fmt.Sprintf(format, args...), got)
}

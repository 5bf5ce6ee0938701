package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags which field of a Value is meaningful.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "STRING"
	case KindNumber:
		return "NUMBER"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a single cell. Only the field matching Kind should be read.
type Value struct {
	Kind Kind

	S string  // for KindString
	N float64 // for KindNumber
}

func String(s string) Value  { return Value{Kind: KindString, S: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, N: n} }

// Text renders the value the way it is shown to users and compared by graders.
// Whole numbers print without a fractional part.
func (v Value) Text() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.N, 'f', -1, 64)
	}
	return v.S
}

func (v Value) String() string { return v.Text() }

// Float returns the numeric reading of the value. Strings are parsed
// opportunistically; ok is false when the text is not a number.
func (v Value) Float() (float64, bool) {
	if v.Kind == KindNumber {
		return v.N, true
	}
	return ParseNumber(v.S)
}

// ParseNumber parses a decimal literal. Surrounding whitespace is ignored;
// the empty string is not a number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// LooseEqual compares two values the way a playground user expects:
// two strings compare as text, anything involving a number compares
// numerically, so "50000" equals 50000.
func LooseEqual(a, b Value) bool {
	if a.Kind == KindString && b.Kind == KindString {
		return a.S == b.S
	}
	af, ok1 := a.Float()
	bf, ok2 := b.Float()
	if !ok1 || !ok2 {
		return false
	}
	return af == bf
}

// MarshalJSON writes strings as JSON strings and numbers as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber {
		return []byte(strconv.FormatFloat(v.N, 'f', -1, 64)), nil
	}
	return json.Marshal(v.S)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("record: empty value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 'n':
		// null has no representation of its own
		*v = String("")
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = String(strconv.FormatBool(b))
		return nil
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("record: bad number %q: %w", data, err)
		}
		*v = Number(f)
		return nil
	}
}

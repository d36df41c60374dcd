package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindTemporal
	KindFlag
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTemporal:
		return "temporal"
	case KindFlag:
		return "flag"
	default:
		return "missing"
	}
}

// Value is a single cell: Number, Text, Temporal, Flag or Missing.
// The zero Value is Missing.
type Value struct {
	kind Kind
	num  float64
	text string
	when time.Time
	flag bool
}

// Number creates a numeric value. NaN and infinities are stored as Missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{kind: KindNumber, num: f}
}

// Text creates a string value. Empty or whitespace-only text is Missing.
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Missing()
	}
	return Value{kind: KindText, text: s}
}

// Temporal creates a date value. The zero time is Missing.
func Temporal(t time.Time) Value {
	if t.IsZero() {
		return Missing()
	}
	return Value{kind: KindTemporal, when: t}
}

// Flag creates a boolean value
func Flag(b bool) Value {
	return Value{kind: KindFlag, flag: b}
}

// Missing returns the missing value
func Missing() Value {
	return Value{}
}

// Kind reports which variant v holds
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v carries no data
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the text payload
func (v Value) Str() (string, bool) {
	return v.text, v.kind == KindText
}

// Time returns the temporal payload
func (v Value) Time() (time.Time, bool) {
	return v.when, v.kind == KindTemporal
}

// Bool returns the flag payload
func (v Value) Bool() (bool, bool) {
	return v.flag, v.kind == KindFlag
}

// String renders the value as it would appear in a table cell.
// Missing renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	case KindTemporal:
		return v.when.Format(time.RFC3339)
	case KindFlag:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Interface converts v to a plain JSON scalar (float64, string, bool or nil)
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindTemporal:
		return v.when.Format(time.RFC3339)
	case KindFlag:
		return v.flag
	default:
		return nil
	}
}

// Equal reports whether two values hold the same variant and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	case KindTemporal:
		return v.when.Equal(o.when)
	case KindFlag:
		return v.flag == o.flag
	default:
		return true
	}
}

package harmony

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Strings are immutable sequences of UTF-16 code units. ASCII-only strings,
// the overwhelmingly common case, are stored as Go strings; anything else is
// stored as the code-unit slice.

type valueString interface {
	Value
	length() int
	charAt(idx int) uint16
	substring(start, end int) valueString
	concat(other valueString) valueString
	compareTo(other valueString) int
}

type asciiString string

type unicodeString []uint16

var (
	stringEmpty     = asciiString("")
	stringUndefined = asciiString("undefined")
	stringNull      = asciiString("null")
	stringTrue      = asciiString("true")
	stringFalse     = asciiString("false")
)

func newStringValue(s string) valueString {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return unicodeString(utf16.Encode([]rune(s)))
		}
	}
	return asciiString(s)
}

func stringValueFromUnits(units []uint16) valueString {
	for _, u := range units {
		if u >= utf8.RuneSelf {
			return unicodeString(units)
		}
	}
	b := make([]byte, len(units))
	for i, u := range units {
		b[i] = byte(u)
	}
	return asciiString(b)
}

// ---------- asciiString ----------

func (s asciiString) Kind() ValueKind { return KindString }

func (s asciiString) ToBoolean() bool { return len(s) > 0 }

func (s asciiString) String() string { return string(s) }

func (s asciiString) SameAs(other Value) bool {
	switch o := other.(type) {
	case asciiString:
		return s == o
	case unicodeString:
		return s.compareTo(o) == 0
	}
	return false
}

func (s asciiString) StrictEquals(other Value) bool { return s.SameAs(other) }

func (s asciiString) Export() interface{} { return string(s) }

func (s asciiString) baseObject(r *Realm) *Object {
	return r.intrinsic(intrStringPrototype)
}

func (s asciiString) length() int { return len(s) }

func (s asciiString) charAt(idx int) uint16 { return uint16(s[idx]) }

func (s asciiString) substring(start, end int) valueString {
	return s[start:end]
}

func (s asciiString) concat(other valueString) valueString {
	switch o := other.(type) {
	case asciiString:
		return s + o
	default:
		units := make([]uint16, 0, len(s)+other.length())
		for i := 0; i < len(s); i++ {
			units = append(units, uint16(s[i]))
		}
		for i := 0; i < other.length(); i++ {
			units = append(units, other.charAt(i))
		}
		return unicodeString(units)
	}
}

func (s asciiString) compareTo(other valueString) int {
	if o, ok := other.(asciiString); ok {
		return strings.Compare(string(s), string(o))
	}
	return compareUnits(s, other)
}

// ---------- unicodeString ----------

func (s unicodeString) Kind() ValueKind { return KindString }

func (s unicodeString) ToBoolean() bool { return len(s) > 0 }

func (s unicodeString) String() string {
	return string(utf16.Decode(s))
}

func (s unicodeString) SameAs(other Value) bool {
	o, ok := other.(valueString)
	return ok && s.compareTo(o) == 0
}

func (s unicodeString) StrictEquals(other Value) bool { return s.SameAs(other) }

func (s unicodeString) Export() interface{} { return s.String() }

func (s unicodeString) baseObject(r *Realm) *Object {
	return r.intrinsic(intrStringPrototype)
}

func (s unicodeString) length() int { return len(s) }

func (s unicodeString) charAt(idx int) uint16 { return s[idx] }

func (s unicodeString) substring(start, end int) valueString {
	return stringValueFromUnits(s[start:end])
}

func (s unicodeString) concat(other valueString) valueString {
	units := make([]uint16, len(s), len(s)+other.length())
	copy(units, s)
	for i := 0; i < other.length(); i++ {
		units = append(units, other.charAt(i))
	}
	return unicodeString(units)
}

func (s unicodeString) compareTo(other valueString) int {
	return compareUnits(s, other)
}

func compareUnits(a, b valueString) int {
	la, lb := a.length(), b.length()
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		ca, cb := a.charAt(i), b.charAt(i)
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	}
	return 0
}

func isString(v Value) bool {
	_, ok := v.(valueString)
	return ok
}

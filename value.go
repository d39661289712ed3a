package harmony

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
)

var (
	valueFalse    Value = valueBool(false)
	valueTrue     Value = valueBool(true)
	_null         Value = valueNull{}
	_undefined    Value = valueUndefined{}
	_NaN          Value = valueFloat(math.NaN())
	_positiveInf  Value = valueFloat(math.Inf(+1))
	_negativeInf  Value = valueFloat(math.Inf(-1))
	negativeZero        = math.Float64frombits(1 << 63)
	_negativeZero Value = valueFloat(negativeZero)
)

var intCache [256]Value

func init() {
	for i := 0; i < 256; i++ {
		intCache[i] = valueInt(i - 128)
	}
}

// ValueKind enumerates the language types of the value universe.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBoolean
	KindString
	KindNumber
	KindBigInt
	KindSymbol
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindUndefined:
		return "Undefined"
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBigInt:
		return "BigInt"
	case KindSymbol:
		return "Symbol"
	case KindObject:
		return "Object"
	}
	return "Invalid"
}

// Value is a language value. Methods on Value never run user code and never
// throw; conversions that can observe user behaviour (ToNumber and ToString
// on objects, ToPrimitive, ...) are abstract operations on *Realm and return
// Completions.
type Value interface {
	Kind() ValueKind
	ToBoolean() bool
	// String renders the value for diagnostics. For objects it produces a
	// class-based placeholder rather than invoking user toString.
	String() string
	// SameAs implements SameValue.
	SameAs(Value) bool
	StrictEquals(Value) bool
	Export() interface{}

	// baseObject returns the prototype holder used for member access on
	// primitive bases, nil for undefined and null.
	baseObject(r *Realm) *Object
}

// TypeOf returns the language type of v. It is part of the embedder surface.
func TypeOf(v Value) ValueKind {
	return v.Kind()
}

type valueInt int64
type valueFloat float64
type valueBool bool
type valueNull struct{}
type valueUndefined struct{}

type valueBigInt struct {
	b *big.Int
}

type valueSymbol struct {
	desc        string
	hasDesc     bool
	registryKey string
}

func intToValue(i int64) Value {
	if i >= -128 && i <= 127 {
		return intCache[i+128]
	}
	return valueInt(i)
}

func floatToValue(f float64) Value {
	if i := int64(f); float64(i) == f && !(i == 0 && math.Signbit(f)) {
		return intToValue(i)
	}
	if math.IsNaN(f) {
		return _NaN
	}
	return valueFloat(f)
}

func boolToValue(b bool) Value {
	if b {
		return valueTrue
	}
	return valueFalse
}

// ---------- valueInt ----------

func (i valueInt) Kind() ValueKind { return KindNumber }

func (i valueInt) ToBoolean() bool { return i != 0 }

func (i valueInt) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i valueInt) SameAs(other Value) bool {
	switch o := other.(type) {
	case valueInt:
		return i == o
	case valueFloat:
		f := float64(o)
		return float64(i) == f && !(f == 0 && math.Signbit(f))
	}
	return false
}

func (i valueInt) StrictEquals(other Value) bool {
	switch o := other.(type) {
	case valueInt:
		return i == o
	case valueFloat:
		return float64(i) == float64(o)
	}
	return false
}

func (i valueInt) Export() interface{} { return int64(i) }

func (i valueInt) baseObject(r *Realm) *Object {
	return r.intrinsic(intrNumberPrototype)
}

// ---------- valueFloat ----------

var matchLeading0Exponent = regexp.MustCompile(`([eE][+\-])0+([1-9])`) // 1e-07 => 1e-7

func (f valueFloat) Kind() ValueKind { return KindNumber }

func (f valueFloat) ToBoolean() bool {
	return float64(f) != 0 && !math.IsNaN(float64(f))
}

func (f valueFloat) String() string {
	value := float64(f)
	if math.IsNaN(value) {
		return "NaN"
	} else if math.IsInf(value, 0) {
		if math.Signbit(value) {
			return "-Infinity"
		}
		return "Infinity"
	} else if value == 0 {
		return "0"
	}
	exponent := math.Log10(math.Abs(value))
	if exponent >= 21 || exponent < -6 {
		return matchLeading0Exponent.ReplaceAllString(strconv.FormatFloat(value, 'g', -1, 64), "$1$2")
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func (f valueFloat) SameAs(other Value) bool {
	switch o := other.(type) {
	case valueFloat:
		a, b := float64(f), float64(o)
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		if a == b {
			if a == 0 {
				return math.Signbit(a) == math.Signbit(b)
			}
			return true
		}
		return false
	case valueInt:
		a := float64(f)
		return a == float64(o) && !(a == 0 && math.Signbit(a))
	}
	return false
}

func (f valueFloat) StrictEquals(other Value) bool {
	switch o := other.(type) {
	case valueFloat:
		return f == o
	case valueInt:
		return float64(f) == float64(o)
	}
	return false
}

func (f valueFloat) Export() interface{} { return float64(f) }

func (f valueFloat) baseObject(r *Realm) *Object {
	return r.intrinsic(intrNumberPrototype)
}

// ---------- valueBool ----------

func (b valueBool) Kind() ValueKind { return KindBoolean }

func (b valueBool) ToBoolean() bool { return bool(b) }

func (b valueBool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b valueBool) SameAs(other Value) bool {
	o, ok := other.(valueBool)
	return ok && b == o
}

func (b valueBool) StrictEquals(other Value) bool { return b.SameAs(other) }

func (b valueBool) Export() interface{} { return bool(b) }

func (b valueBool) baseObject(r *Realm) *Object {
	return r.intrinsic(intrBooleanPrototype)
}

// ---------- valueNull ----------

func (valueNull) Kind() ValueKind { return KindNull }

func (valueNull) ToBoolean() bool { return false }

func (valueNull) String() string { return "null" }

func (valueNull) SameAs(other Value) bool {
	_, ok := other.(valueNull)
	return ok
}

func (n valueNull) StrictEquals(other Value) bool { return n.SameAs(other) }

func (valueNull) Export() interface{} { return nil }

func (valueNull) baseObject(*Realm) *Object { return nil }

// ---------- valueUndefined ----------

func (valueUndefined) Kind() ValueKind { return KindUndefined }

func (valueUndefined) ToBoolean() bool { return false }

func (valueUndefined) String() string { return "undefined" }

func (valueUndefined) SameAs(other Value) bool {
	_, ok := other.(valueUndefined)
	return ok
}

func (u valueUndefined) StrictEquals(other Value) bool { return u.SameAs(other) }

func (valueUndefined) Export() interface{} { return nil }

func (valueUndefined) baseObject(*Realm) *Object { return nil }

// ---------- valueBigInt ----------

func bigIntToValue(b *big.Int) Value {
	return &valueBigInt{b: b}
}

func (b *valueBigInt) Kind() ValueKind { return KindBigInt }

func (b *valueBigInt) ToBoolean() bool { return b.b.Sign() != 0 }

func (b *valueBigInt) String() string { return b.b.String() }

func (b *valueBigInt) SameAs(other Value) bool {
	if o, ok := other.(*valueBigInt); ok {
		return b.b.Cmp(o.b) == 0
	}
	return false
}

func (b *valueBigInt) StrictEquals(other Value) bool { return b.SameAs(other) }

func (b *valueBigInt) Export() interface{} { return new(big.Int).Set(b.b) }

func (b *valueBigInt) baseObject(r *Realm) *Object {
	return r.intrinsic(intrBigIntPrototype)
}

// ---------- valueSymbol ----------

func newSymbol(desc string, hasDesc bool) *valueSymbol {
	return &valueSymbol{desc: desc, hasDesc: hasDesc}
}

func (s *valueSymbol) Kind() ValueKind { return KindSymbol }

func (s *valueSymbol) ToBoolean() bool { return true }

func (s *valueSymbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.desc)
}

func (s *valueSymbol) SameAs(other Value) bool {
	o, ok := other.(*valueSymbol)
	return ok && s == o
}

func (s *valueSymbol) StrictEquals(other Value) bool { return s.SameAs(other) }

func (s *valueSymbol) Export() interface{} { return s.String() }

func (s *valueSymbol) baseObject(r *Realm) *Object {
	return r.intrinsic(intrSymbolPrototype)
}

func (s *valueSymbol) descValue() Value {
	if !s.hasDesc {
		return _undefined
	}
	return newStringValue(s.desc)
}

// ---------- numeric helpers that never run user code ----------

// isCanonicalIntegerIndex reports whether s is the canonical decimal form of
// an array index.
func isCanonicalIntegerIndex(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' || s[0] == '+' {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func toIntegerOrInfinity(v Value) float64 {
	f := numberVal(v)
	if math.IsNaN(f) {
		return 0
	}
	if f == 0 || math.IsInf(f, 0) {
		return f
	}
	return math.Trunc(f)
}

// numberVal extracts the float of a Number value. Callers must have coerced
// to Number first.
func numberVal(v Value) float64 {
	switch n := v.(type) {
	case valueInt:
		return float64(n)
	case valueFloat:
		return float64(n)
	}
	panic(fmt.Sprintf("not a number: %T", v))
}

func isNumber(v Value) bool {
	switch v.(type) {
	case valueInt, valueFloat:
		return true
	}
	return false
}

// stringToNumber implements the StringToNumber lexical grammar.
func stringToNumber(s string) float64 {
	t := trimJSWhitespace(s)
	if t == "" {
		return 0
	}
	if len(t) > 2 && t[0] == '0' {
		var base int
		switch t[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			i, ok := new(big.Int).SetString(t[2:], base)
			if !ok || t[2] == '+' || t[2] == '-' {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(i).Float64()
			return f
		}
	}
	body := t
	sign := 1.0
	switch body[0] {
	case '+':
		body = body[1:]
	case '-':
		sign = -1
		body = body[1:]
	}
	if body == "Infinity" {
		return sign * math.Inf(1)
	}
	for i := 0; i < len(body); i++ {
		if c := body[i]; !(c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func trimJSWhitespace(s string) string {
	start := 0
	for start < len(s) && isJSWhitespaceByte(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isJSWhitespaceByte(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isJSWhitespaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

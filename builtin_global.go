package harmony

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// initGlobalObject creates the global object, the global environment, and
// installs the global bindings.
func (r *Realm) initGlobalObject() {
	global := r.NewObject()
	r.globalObject = global
	r.globalEnv = newGlobalEnv(r, global)

	impl := global.self.(*baseObject)
	impl._putProp("undefined", _undefined, false, false, false)
	impl._putProp("NaN", _NaN, false, false, false)
	impl._putProp("Infinity", _positiveInf, false, false, false)
	impl._putProp("globalThis", global, true, false, true)

	bind := func(name string, id intrinsicID) {
		impl._putProp(name, r.intrinsic(id), true, false, true)
	}
	bind("Object", intrObject)
	bind("Function", intrFunction)
	bind("Array", intrArray)
	bind("String", intrString)
	bind("Number", intrNumber)
	bind("Boolean", intrBoolean)
	bind("Symbol", intrSymbol)
	bind("BigInt", intrBigInt)
	bind("Math", intrMath)
	bind("JSON", intrJSON)
	bind("Reflect", intrReflect)
	bind("Error", intrError)
	bind("TypeError", intrTypeError)
	bind("RangeError", intrRangeError)
	bind("ReferenceError", intrReferenceError)
	bind("SyntaxError", intrSyntaxError)
	bind("URIError", intrURIError)
	bind("EvalError", intrEvalError)
	bind("RegExp", intrRegExp)
	bind("Promise", intrPromise)
	impl._putProp("Proxy", r.proxyCtor, true, false, true)

	parseIntFn := r.newNativeFunc("parseInt", 2, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		s := trimJSWhitespace(sc.Value.String())
		radix := 0
		if rx := call.Argument(1); rx != _undefined {
			i, c := r.toInt32(rx)
			if c.Abrupt() {
				return c
			}
			radix = int(i)
		}
		return normalCompletion(floatToValue(parseIntString(s, radix)))
	})
	r.intrinsics[intrParseInt] = parseIntFn
	impl._putProp("parseInt", parseIntFn, true, false, true)

	parseFloatFn := r.newNativeFunc("parseFloat", 1, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		s := trimJSWhitespace(sc.Value.String())
		end := len(s)
		for end > 0 {
			if _, err := strconv.ParseFloat(s[:end], 64); err == nil {
				break
			}
			end--
		}
		if end == 0 {
			if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
				return normalCompletion(_positiveInf)
			}
			if strings.HasPrefix(s, "-Infinity") {
				return normalCompletion(_negativeInf)
			}
			return normalCompletion(_NaN)
		}
		f, _ := strconv.ParseFloat(s[:end], 64)
		return normalCompletion(floatToValue(f))
	})
	r.intrinsics[intrParseFloat] = parseFloatFn
	impl._putProp("parseFloat", parseFloatFn, true, false, true)

	numberCtor := r.intrinsic(intrNumber)
	targetPut(numberCtor, "parseInt", parseIntFn)
	targetPut(numberCtor, "parseFloat", parseFloatFn)

	r.putFunc(global, "isNaN", 1, func(call FunctionCall) Completion {
		nc := r.toNumber(call.Argument(0))
		if nc.Abrupt() {
			return nc
		}
		return booleanCompletion(math.IsNaN(numberVal(nc.Value)))
	})
	r.putFunc(global, "isFinite", 1, func(call FunctionCall) Completion {
		nc := r.toNumber(call.Argument(0))
		if nc.Abrupt() {
			return nc
		}
		f := numberVal(nc.Value)
		return booleanCompletion(!math.IsNaN(f) && !math.IsInf(f, 0))
	})
	r.putFunc(global, "encodeURIComponent", 1, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		s := sc.Value.String()
		if !validSurrogates(sc.Value.(valueString)) {
			return r.throwURIError("URI malformed")
		}
		out := url.QueryEscape(s)
		out = strings.ReplaceAll(out, "+", "%20")
		for _, unescape := range []string{"%21", "%27", "%28", "%29", "%2A", "%7E", "%2D", "%2E", "%5F"} {
			out = strings.ReplaceAll(out, unescape, uriUnescapeChar(unescape))
		}
		return normalCompletion(newStringValue(out))
	})
	r.putFunc(global, "decodeURIComponent", 1, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		out, err := url.QueryUnescape(strings.ReplaceAll(sc.Value.String(), "+", "%2B"))
		if err != nil {
			return r.throwURIError("URI malformed")
		}
		return normalCompletion(newStringValue(out))
	})
	r.putFunc(global, "encodeURI", 1, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		if !validSurrogates(sc.Value.(valueString)) {
			return r.throwURIError("URI malformed")
		}
		return normalCompletion(newStringValue(uriEncodePreserving(sc.Value.String())))
	})
	r.putFunc(global, "decodeURI", 1, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		out, err := url.PathUnescape(sc.Value.String())
		if err != nil {
			return r.throwURIError("URI malformed")
		}
		return normalCompletion(newStringValue(out))
	})
}

// parseIntString implements the parseInt grammar over a pre-trimmed string.
func parseIntString(s string, radix int) float64 {
	sign := 1.0
	if s != "" {
		switch s[0] {
		case '+':
			s = s[1:]
		case '-':
			sign = -1
			s = s[1:]
		}
	}
	stripPrefix := radix == 0 || radix == 16
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		radix = 16
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) {
		if digitValue(s[end]) < 0 || digitValue(s[end]) >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	out := 0.0
	for i := 0; i < end; i++ {
		out = out*float64(radix) + float64(digitValue(s[i]))
	}
	return sign * out
}

func digitValue(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'z':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 10
	}
	return -1
}

// validSurrogates rejects lone surrogate code units, which encodeURI must
// treat as malformed.
func validSurrogates(s valueString) bool {
	for i := 0; i < s.length(); i++ {
		u := s.charAt(i)
		if u >= 0xD800 && u <= 0xDBFF {
			if i+1 >= s.length() {
				return false
			}
			next := s.charAt(i + 1)
			if next < 0xDC00 || next > 0xDFFF {
				return false
			}
			i++
		} else if u >= 0xDC00 && u <= 0xDFFF {
			return false
		}
	}
	return true
}

const uriReserved = ";/?:@&=+$,#-_.!~*'()"

func uriEncodePreserving(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || strings.IndexByte(uriReserved, c) >= 0 {
			b.WriteByte(c)
		} else {
			hex := strings.ToUpper(strconv.FormatInt(int64(c), 16))
			if len(hex) < 2 {
				hex = "0" + hex
			}
			b.WriteString("%")
			b.WriteString(hex)
		}
	}
	return b.String()
}

func uriUnescapeChar(escape string) string {
	v, _ := strconv.ParseInt(escape[1:], 16, 32)
	return string(rune(v))
}

package harmony

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

func (r *Realm) initStringBuiltins() {
	proto := r.intrinsic(intrStringPrototype)

	ctor := r.newNativeCtor("String", 1,
		func(call FunctionCall) Completion {
			if len(call.Arguments) == 0 {
				return normalCompletion(stringEmpty)
			}
			if s, ok := call.Argument(0).(*valueSymbol); ok {
				return normalCompletion(newStringValue(s.String()))
			}
			return r.toString(call.Argument(0))
		},
		func(args []Value, newTarget *Object) Completion {
			var s valueString = stringEmpty
			if len(args) > 0 {
				sc := r.toString(args[0])
				if sc.Abrupt() {
					return sc
				}
				s = sc.Value.(valueString)
			}
			return normalCompletion(r.newStringExotic(s))
		})
	r.wireConstructor(ctor, proto, intrString, intrStringPrototype)

	r.putFunc(ctor, "fromCharCode", 1, func(call FunctionCall) Completion {
		units := make([]uint16, len(call.Arguments))
		for i, arg := range call.Arguments {
			u, c := r.toUint32(arg)
			if c.Abrupt() {
				return c
			}
			units[i] = uint16(u)
		}
		return normalCompletion(stringValueFromUnits(units))
	})

	thisString := func(call FunctionCall, method string) (valueString, Completion) {
		switch t := call.This.(type) {
		case valueString:
			return t, emptyCompletion
		case *Object:
			if so, ok := t.self.(*stringObject); ok {
				return so.value, emptyCompletion
			}
		case valueUndefined, valueNull:
			return nil, r.throwTypeError("String.prototype.%s called on null or undefined", method)
		}
		sc := r.toString(call.This)
		if sc.Abrupt() {
			return nil, sc
		}
		return sc.Value.(valueString), emptyCompletion
	}

	r.putFunc(proto, "charAt", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "charAt")
		if c.Abrupt() {
			return c
		}
		nc := r.toNumber(call.Argument(0))
		if nc.Abrupt() {
			return nc
		}
		idx := int(toIntegerOrInfinity(nc.Value))
		if idx < 0 || idx >= s.length() {
			return normalCompletion(stringEmpty)
		}
		return normalCompletion(s.substring(idx, idx+1))
	})
	r.putFunc(proto, "charCodeAt", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "charCodeAt")
		if c.Abrupt() {
			return c
		}
		nc := r.toNumber(call.Argument(0))
		if nc.Abrupt() {
			return nc
		}
		idx := int(toIntegerOrInfinity(nc.Value))
		if idx < 0 || idx >= s.length() {
			return normalCompletion(_NaN)
		}
		return normalCompletion(intToValue(int64(s.charAt(idx))))
	})
	r.putFunc(proto, "indexOf", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "indexOf")
		if c.Abrupt() {
			return c
		}
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		return normalCompletion(intToValue(int64(strings.Index(s.String(), sc.Value.String()))))
	})
	r.putFunc(proto, "includes", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "includes")
		if c.Abrupt() {
			return c
		}
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		return booleanCompletion(strings.Contains(s.String(), sc.Value.String()))
	})
	r.putFunc(proto, "startsWith", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "startsWith")
		if c.Abrupt() {
			return c
		}
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		return booleanCompletion(strings.HasPrefix(s.String(), sc.Value.String()))
	})
	r.putFunc(proto, "endsWith", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "endsWith")
		if c.Abrupt() {
			return c
		}
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		return booleanCompletion(strings.HasSuffix(s.String(), sc.Value.String()))
	})
	r.putFunc(proto, "slice", 2, func(call FunctionCall) Completion {
		s, c := thisString(call, "slice")
		if c.Abrupt() {
			return c
		}
		length := int64(s.length())
		start, sc := r.relativeIndex(call.Argument(0), length, 0)
		if sc.Abrupt() {
			return sc
		}
		end, ec := r.relativeIndex(call.Argument(1), length, length)
		if ec.Abrupt() {
			return ec
		}
		if end < start {
			end = start
		}
		return normalCompletion(s.substring(int(start), int(end)))
	})
	r.putFunc(proto, "substring", 2, func(call FunctionCall) Completion {
		s, c := thisString(call, "substring")
		if c.Abrupt() {
			return c
		}
		length := int64(s.length())
		clamp := func(v Value, dflt int64) (int64, Completion) {
			if v == _undefined {
				return dflt, emptyCompletion
			}
			nc := r.toNumber(v)
			if nc.Abrupt() {
				return 0, nc
			}
			i := int64(toIntegerOrInfinity(nc.Value))
			if i < 0 {
				i = 0
			}
			if i > length {
				i = length
			}
			return i, emptyCompletion
		}
		start, sc := clamp(call.Argument(0), 0)
		if sc.Abrupt() {
			return sc
		}
		end, ec := clamp(call.Argument(1), length)
		if ec.Abrupt() {
			return ec
		}
		if start > end {
			start, end = end, start
		}
		return normalCompletion(s.substring(int(start), int(end)))
	})
	r.putFunc(proto, "split", 2, func(call FunctionCall) Completion {
		s, c := thisString(call, "split")
		if c.Abrupt() {
			return c
		}
		sep := call.Argument(0)
		if sep == _undefined {
			return normalCompletion(r.createArrayFromList([]Value{s}))
		}
		sc := r.toString(sep)
		if sc.Abrupt() {
			return sc
		}
		parts := strings.Split(s.String(), sc.Value.String())
		out := make([]Value, len(parts))
		for i, part := range parts {
			out[i] = newStringValue(part)
		}
		return normalCompletion(r.createArrayFromList(out))
	})
	r.putFunc(proto, "repeat", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "repeat")
		if c.Abrupt() {
			return c
		}
		nc := r.toNumber(call.Argument(0))
		if nc.Abrupt() {
			return nc
		}
		count := toIntegerOrInfinity(nc.Value)
		if count < 0 || count > float64(maxSafeInteger) {
			return r.throwRangeError("Invalid count value: %v", nc.Value.String())
		}
		return normalCompletion(newStringValue(strings.Repeat(s.String(), int(count))))
	})
	r.putFunc(proto, "concat", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "concat")
		if c.Abrupt() {
			return c
		}
		out := s
		for _, arg := range call.Arguments {
			sc := r.toString(arg)
			if sc.Abrupt() {
				return sc
			}
			out = out.concat(sc.Value.(valueString))
		}
		return normalCompletion(out)
	})
	r.putFunc(proto, "toUpperCase", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "toUpperCase")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(newStringValue(strings.ToUpper(s.String())))
	})
	r.putFunc(proto, "toLowerCase", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "toLowerCase")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(newStringValue(strings.ToLower(s.String())))
	})
	r.putFunc(proto, "trim", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "trim")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(newStringValue(strings.TrimSpace(s.String())))
	})
	r.putFunc(proto, "trimStart", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "trimStart")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(newStringValue(strings.TrimLeft(s.String(), " \t\n\r\v\f \ufeff")))
	})
	r.putFunc(proto, "trimEnd", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "trimEnd")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(newStringValue(strings.TrimRight(s.String(), " \t\n\r\v\f \ufeff")))
	})
	r.putFunc(proto, "normalize", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "normalize")
		if c.Abrupt() {
			return c
		}
		form := "NFC"
		if f := call.Argument(0); f != _undefined {
			sc := r.toString(f)
			if sc.Abrupt() {
				return sc
			}
			form = sc.Value.String()
		}
		var n norm.Form
		switch form {
		case "NFC":
			n = norm.NFC
		case "NFD":
			n = norm.NFD
		case "NFKC":
			n = norm.NFKC
		case "NFKD":
			n = norm.NFKD
		default:
			return r.throwRangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD.")
		}
		return normalCompletion(newStringValue(n.String(s.String())))
	})
	r.putFunc(proto, "localeCompare", 1, func(call FunctionCall) Completion {
		s, c := thisString(call, "localeCompare")
		if c.Abrupt() {
			return c
		}
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		col := collate.New(language.Und)
		return normalCompletion(intToValue(int64(col.CompareString(s.String(), sc.Value.String()))))
	})
	r.putFunc(proto, "padStart", 1, func(call FunctionCall) Completion {
		return r.stringPad(call, true)
	})
	r.putFunc(proto, "padEnd", 1, func(call FunctionCall) Completion {
		return r.stringPad(call, false)
	})
	r.putFunc(proto, "toString", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "toString")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(s)
	})
	r.putFunc(proto, "valueOf", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "valueOf")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(s)
	})
	r.putSymFunc(proto, symIterator, "[Symbol.iterator]", 0, func(call FunctionCall) Completion {
		s, c := thisString(call, "[Symbol.iterator]")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(r.newStringIterator(s))
	})
}

func (r *Realm) stringPad(call FunctionCall, atStart bool) Completion {
	sc := r.toString(call.This)
	if sc.Abrupt() {
		return sc
	}
	s := sc.Value.(valueString)
	nc := r.toNumber(call.Argument(0))
	if nc.Abrupt() {
		return nc
	}
	maxLength := int(toIntegerOrInfinity(nc.Value))
	if maxLength <= s.length() {
		return normalCompletion(s)
	}
	filler := " "
	if f := call.Argument(1); f != _undefined {
		fc := r.toString(f)
		if fc.Abrupt() {
			return fc
		}
		filler = fc.Value.String()
	}
	if filler == "" {
		return normalCompletion(s)
	}
	need := maxLength - s.length()
	pad := strings.Repeat(filler, need/len(filler)+1)[:need]
	if atStart {
		return normalCompletion(newStringValue(pad).concat(s))
	}
	return normalCompletion(s.concat(newStringValue(pad)))
}

package harmony

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// regexpObject is a RegExp instance: the compiled regexp2 pattern plus the
// original source and flags.
type regexpObject struct {
	baseObject

	pattern *regexp2.Regexp
	source  string
	flags   string
}

func (r *Realm) newRegExpObject(source, flags string) Completion {
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
			opts &^= regexp2.ECMAScript
		case 'u':
			opts |= regexp2.Unicode
			opts &^= regexp2.ECMAScript
		case 'g', 'y':
		default:
			return r.throwSyntaxError("Invalid regular expression flags")
		}
	}
	pattern, err := regexp2.Compile(source, opts)
	if err != nil {
		return r.throwSyntaxError("Invalid regular expression: /%s/: %s", source, err.Error())
	}
	v := &Object{realm: r}
	re := &regexpObject{pattern: pattern, source: source, flags: flags}
	re.class = classRegExp
	re.val = v
	re.prototype = r.intrinsic(intrRegExpPrototype)
	re.extensible = true
	re.init()
	v.self = re
	re._putProp("lastIndex", intToValue(0), true, false, false)
	return normalCompletion(v)
}

func (re *regexpObject) global() bool {
	return strings.ContainsRune(re.flags, 'g')
}

func (r *Realm) initRegExpBuiltins() {
	proto := r.intrinsic(intrRegExpPrototype)

	ctor := r.newNativeCtor("RegExp", 2,
		func(call FunctionCall) Completion {
			return r.regExpConstruct(call.Arguments)
		},
		func(args []Value, newTarget *Object) Completion {
			return r.regExpConstruct(args)
		})
	r.wireConstructor(ctor, proto, intrRegExp, intrRegExpPrototype)
	r.putSymAccessorSpecies(ctor)

	thisRegExp := func(call FunctionCall, method string) (*regexpObject, Completion) {
		obj, ok := call.This.(*Object)
		if !ok {
			return nil, r.throwTypeError("RegExp.prototype.%s called on incompatible receiver %s", method, call.This.String())
		}
		re, ok := obj.self.(*regexpObject)
		if !ok {
			return nil, r.throwTypeError("RegExp.prototype.%s called on incompatible receiver %s", method, call.This.String())
		}
		return re, emptyCompletion
	}

	r.putFunc(proto, "test", 1, func(call FunctionCall) Completion {
		re, c := thisRegExp(call, "test")
		if c.Abrupt() {
			return c
		}
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		ec := r.regExpExec(re, sc.Value.(valueString))
		if ec.Abrupt() {
			return ec
		}
		return booleanCompletion(ec.Value != _null)
	})
	r.putFunc(proto, "exec", 1, func(call FunctionCall) Completion {
		re, c := thisRegExp(call, "exec")
		if c.Abrupt() {
			return c
		}
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		return r.regExpExec(re, sc.Value.(valueString))
	})
	r.putFunc(proto, "toString", 0, func(call FunctionCall) Completion {
		obj, ok := call.This.(*Object)
		if !ok {
			return r.throwTypeError("RegExp.prototype.toString called on incompatible receiver")
		}
		srcC := obj.self.get(strKey("source"), obj)
		if srcC.Abrupt() {
			return srcC
		}
		flagsC := obj.self.get(strKey("flags"), obj)
		if flagsC.Abrupt() {
			return flagsC
		}
		src, c := r.ToString(srcC.Value)
		if c.Abrupt() {
			return c
		}
		flags, fc := r.ToString(flagsC.Value)
		if fc.Abrupt() {
			return fc
		}
		return normalCompletion(newStringValue("/" + src + "/" + flags))
	})
	r.putGetter(proto, "source", func(call FunctionCall) Completion {
		re, c := thisRegExp(call, "source")
		if c.Abrupt() {
			if call.This == r.intrinsic(intrRegExpPrototype) {
				return normalCompletion(newStringValue("(?:)"))
			}
			return c
		}
		if re.source == "" {
			return normalCompletion(newStringValue("(?:)"))
		}
		return normalCompletion(newStringValue(re.source))
	})
	r.putGetter(proto, "flags", func(call FunctionCall) Completion {
		re, c := thisRegExp(call, "flags")
		if c.Abrupt() {
			if call.This == r.intrinsic(intrRegExpPrototype) {
				return normalCompletion(stringEmpty)
			}
			return c
		}
		return normalCompletion(newStringValue(re.flags))
	})
	r.putGetter(proto, "global", func(call FunctionCall) Completion {
		re, c := thisRegExp(call, "global")
		if c.Abrupt() {
			return c
		}
		return booleanCompletion(re.global())
	})
}

func (r *Realm) regExpConstruct(args []Value) Completion {
	source := ""
	flags := ""
	if len(args) > 0 {
		switch p := args[0].(type) {
		case *Object:
			if re, ok := p.self.(*regexpObject); ok {
				source = re.source
				flags = re.flags
			} else {
				sc := r.toString(p)
				if sc.Abrupt() {
					return sc
				}
				source = sc.Value.String()
			}
		case valueUndefined:
		default:
			sc := r.toString(args[0])
			if sc.Abrupt() {
				return sc
			}
			source = sc.Value.String()
		}
	}
	if len(args) > 1 && args[1] != _undefined {
		sc := r.toString(args[1])
		if sc.Abrupt() {
			return sc
		}
		flags = sc.Value.String()
	}
	return r.newRegExpObject(source, flags)
}

// regExpExec runs the match at lastIndex, honouring the global flag, and
// builds the match-result array.
func (r *Realm) regExpExec(re *regexpObject, s valueString) Completion {
	input := s.String()
	start := 0
	if re.global() {
		liC := re.val.self.get(strKey("lastIndex"), re.val)
		if liC.Abrupt() {
			return liC
		}
		li, lc := r.toLength(liC.Value)
		if lc.Abrupt() {
			return lc
		}
		start = int(li)
	}
	if start > len(input) {
		if re.global() {
			r.setOrThrow(re.val, strKey("lastIndex"), intToValue(0))
		}
		return normalCompletion(_null)
	}
	m, err := re.pattern.FindStringMatchStartingAt(input, start)
	if err != nil || m == nil {
		if re.global() {
			r.setOrThrow(re.val, strKey("lastIndex"), intToValue(0))
		}
		return normalCompletion(_null)
	}
	if re.global() {
		r.setOrThrow(re.val, strKey("lastIndex"), intToValue(int64(m.Index+m.Length)))
	}
	groups := m.Groups()
	items := make([]Value, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 && i > 0 {
			items[i] = _undefined
		} else {
			items[i] = newStringValue(g.String())
		}
	}
	result := r.createArrayFromList(items)
	impl := result.self.(*arrayObject)
	impl._putProp("index", intToValue(int64(m.Index)), true, true, true)
	impl._putProp("input", s, true, true, true)
	return normalCompletion(result)
}

package harmony

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

func (r *Realm) initJSONBuiltins() {
	obj := r.newBaseObject(r.intrinsic(intrObjectPrototype), classJSON).val
	r.intrinsics[intrJSON] = obj
	if bp, ok := obj.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("JSON"), false, false, true)
	}

	r.putFunc(obj, "parse", 2, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		src := sc.Value.String()
		dec := json.NewDecoder(strings.NewReader(src))
		dec.UseNumber()
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return r.throwSyntaxError("Unexpected token in JSON: %s", err.Error())
		}
		// Trailing garbage is a syntax error.
		if strings.TrimLeft(src[dec.InputOffset():], " \t\n\r") != "" {
			return r.throwSyntaxError("Unexpected non-whitespace character after JSON data")
		}
		value := r.jsonToValue(raw)
		if reviver, ok := call.Argument(1).(*Object); ok && reviver.isCallable() {
			holder := r.NewObject()
			if c := r.createDataPropertyOrThrow(holder, strKey(""), value); c.Abrupt() {
				return c
			}
			return r.internalizeJSONProperty(holder, strKey(""), reviver)
		}
		return normalCompletion(value)
	})

	r.putFunc(obj, "stringify", 3, func(call FunctionCall) Completion {
		return r.jsonStringify(call.Argument(0), call.Argument(1), call.Argument(2))
	})
}

func (r *Realm) jsonToValue(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return _null
	case bool:
		return boolToValue(v)
	case string:
		return newStringValue(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return _NaN
		}
		return floatToValue(f)
	case []interface{}:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = r.jsonToValue(item)
		}
		return r.createArrayFromList(items)
	case map[string]interface{}:
		obj := r.NewObject()
		impl := obj.self.(*baseObject)
		for key, item := range v {
			impl._putProp(key, r.jsonToValue(item), true, true, true)
		}
		return obj
	}
	return _undefined
}

func (r *Realm) internalizeJSONProperty(holder *Object, key propertyKey, reviver *Object) Completion {
	vc := holder.self.get(key, holder)
	if vc.Abrupt() {
		return vc
	}
	if obj, ok := vc.Value.(*Object); ok {
		isArr, ac := r.isArray(obj)
		if ac.Abrupt() {
			return ac
		}
		if isArr {
			length, lc := r.lengthOfArrayLike(obj)
			if lc.Abrupt() {
				return lc
			}
			for i := int64(0); i < length; i++ {
				ik := strKey(intToValue(i).String())
				ec := r.internalizeJSONProperty(obj, ik, reviver)
				if ec.Abrupt() {
					return ec
				}
				if ec.Value == _undefined {
					obj.self.deleteProperty(ik)
				} else {
					r.createDataProperty(obj, ik, ec.Value)
				}
			}
		} else {
			keys, kc := obj.self.ownPropertyKeys()
			if kc.Abrupt() {
				return kc
			}
			for _, k := range keys {
				if k.isSymbol() {
					continue
				}
				ec := r.internalizeJSONProperty(obj, k, reviver)
				if ec.Abrupt() {
					return ec
				}
				if ec.Value == _undefined {
					obj.self.deleteProperty(k)
				} else {
					r.createDataProperty(obj, k, ec.Value)
				}
			}
		}
	}
	return r.call(reviver, holder, []Value{key.toValue(), vc.Value})
}

type jsonStringifyState struct {
	realm      *Realm
	buf        bytes.Buffer
	stack      []*Object
	indent     string
	gap        string
	replacer   *Object
	keepKeys   map[string]bool
	keyFilter  bool
	properties []string
}

func (r *Realm) jsonStringify(value, replacer, space Value) Completion {
	st := &jsonStringifyState{realm: r}
	if ro, ok := replacer.(*Object); ok {
		if ro.isCallable() {
			st.replacer = ro
		} else {
			isArr, c := r.isArray(ro)
			if c.Abrupt() {
				return c
			}
			if isArr {
				st.keyFilter = true
				st.keepKeys = make(map[string]bool)
				length, lc := r.lengthOfArrayLike(ro)
				if lc.Abrupt() {
					return lc
				}
				for i := int64(0); i < length; i++ {
					vc := ro.self.get(strKey(intToValue(i).String()), ro)
					if vc.Abrupt() {
						return vc
					}
					var item string
					switch v := vc.Value.(type) {
					case valueString:
						item = v.String()
					case valueInt, valueFloat:
						item = v.String()
					default:
						continue
					}
					if !st.keepKeys[item] {
						st.keepKeys[item] = true
						st.properties = append(st.properties, item)
					}
				}
			}
		}
	}
	if so, ok := space.(*Object); ok {
		if po, isPrim := so.self.(*primitiveValueObject); isPrim {
			space = po.pValue
		}
	}
	switch sv := space.(type) {
	case valueInt, valueFloat:
		n := int(toIntegerOrInfinity(sv))
		if n > 10 {
			n = 10
		}
		if n > 0 {
			st.gap = strings.Repeat(" ", n)
		}
	case valueString:
		s := sv.String()
		if len(s) > 10 {
			s = s[:10]
		}
		st.gap = s
	}

	holder := r.NewObject()
	if c := r.createDataPropertyOrThrow(holder, strKey(""), value); c.Abrupt() {
		return c
	}
	ok, c := st.serializeProperty(strKey(""), holder)
	if c.Abrupt() {
		return c
	}
	if !ok {
		return normalCompletion(_undefined)
	}
	return normalCompletion(newStringValue(st.buf.String()))
}

// serializeProperty implements SerializeJSONProperty; it reports whether
// anything was written.
func (st *jsonStringifyState) serializeProperty(key propertyKey, holder *Object) (bool, Completion) {
	r := st.realm
	vc := holder.self.get(key, holder)
	if vc.Abrupt() {
		return false, vc
	}
	value := vc.Value
	if obj, ok := value.(*Object); ok {
		toJSONc := obj.self.get(strKey("toJSON"), obj)
		if toJSONc.Abrupt() {
			return false, toJSONc
		}
		if fn, ok := toJSONc.Value.(*Object); ok && fn.isCallable() {
			cc := r.call(fn, value, []Value{key.toValue()})
			if cc.Abrupt() {
				return false, cc
			}
			value = cc.Value
		}
	}
	if st.replacer != nil {
		cc := r.call(st.replacer, holder, []Value{key.toValue(), value})
		if cc.Abrupt() {
			return false, cc
		}
		value = cc.Value
	}
	if obj, ok := value.(*Object); ok {
		if po, isPrim := obj.self.(*primitiveValueObject); isPrim {
			value = po.pValue
		}
	}
	switch v := value.(type) {
	case valueNull:
		st.buf.WriteString("null")
		return true, emptyCompletion
	case valueBool:
		st.buf.WriteString(v.String())
		return true, emptyCompletion
	case valueString:
		st.writeQuoted(v.String())
		return true, emptyCompletion
	case valueInt:
		st.buf.WriteString(v.String())
		return true, emptyCompletion
	case valueFloat:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			st.buf.WriteString("null")
		} else {
			st.buf.WriteString(v.String())
		}
		return true, emptyCompletion
	case *valueBigInt:
		return false, r.throwTypeError("Do not know how to serialize a BigInt")
	case *Object:
		if v.isCallable() {
			return false, emptyCompletion
		}
		for _, seen := range st.stack {
			if seen == v {
				return false, r.throwTypeError("Converting circular structure to JSON")
			}
		}
		isArr, c := r.isArray(v)
		if c.Abrupt() {
			return false, c
		}
		st.stack = append(st.stack, v)
		defer func() { st.stack = st.stack[:len(st.stack)-1] }()
		if isArr {
			return st.serializeArray(v)
		}
		return st.serializeObject(v)
	}
	return false, emptyCompletion
}

func (st *jsonStringifyState) serializeArray(obj *Object) (bool, Completion) {
	r := st.realm
	length, c := r.lengthOfArrayLike(obj)
	if c.Abrupt() {
		return false, c
	}
	st.buf.WriteByte('[')
	stepBack := st.indent
	st.indent += st.gap
	for i := int64(0); i < length; i++ {
		if i > 0 {
			st.buf.WriteByte(',')
		}
		st.newline()
		wrote, pc := st.serializeProperty(strKey(intToValue(i).String()), obj)
		if pc.Abrupt() {
			return false, pc
		}
		if !wrote {
			st.buf.WriteString("null")
		}
	}
	st.indent = stepBack
	if length > 0 {
		st.newline()
	}
	st.buf.WriteByte(']')
	return true, emptyCompletion
}

func (st *jsonStringifyState) serializeObject(obj *Object) (bool, Completion) {
	var keys []propertyKey
	if st.keyFilter {
		for _, name := range st.properties {
			keys = append(keys, strKey(name))
		}
	} else {
		allKeys, c := obj.self.ownPropertyKeys()
		if c.Abrupt() {
			return false, c
		}
		for _, k := range allKeys {
			if k.isSymbol() {
				continue
			}
			desc, dc := obj.self.getOwnProperty(k)
			if dc.Abrupt() {
				return false, dc
			}
			if desc != nil && desc.Enumerable == FLAG_TRUE {
				keys = append(keys, k)
			}
		}
	}
	st.buf.WriteByte('{')
	stepBack := st.indent
	st.indent += st.gap
	wroteAny := false
	for _, key := range keys {
		mark := st.buf.Len()
		if wroteAny {
			st.buf.WriteByte(',')
		}
		st.newline()
		st.writeQuoted(key.s)
		st.buf.WriteByte(':')
		if st.gap != "" {
			st.buf.WriteByte(' ')
		}
		wrote, pc := st.serializeProperty(key, obj)
		if pc.Abrupt() {
			return false, pc
		}
		if !wrote {
			st.buf.Truncate(mark)
		} else {
			wroteAny = true
		}
	}
	st.indent = stepBack
	if wroteAny {
		st.newline()
	}
	st.buf.WriteByte('}')
	return true, emptyCompletion
}

func (st *jsonStringifyState) newline() {
	if st.gap != "" {
		st.buf.WriteByte('\n')
		st.buf.WriteString(st.indent)
	}
}

func (st *jsonStringifyState) writeQuoted(s string) {
	st.buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			st.buf.WriteString(`\"`)
		case '\\':
			st.buf.WriteString(`\\`)
		case '\n':
			st.buf.WriteString(`\n`)
		case '\r':
			st.buf.WriteString(`\r`)
		case '\t':
			st.buf.WriteString(`\t`)
		case '\b':
			st.buf.WriteString(`\b`)
		case '\f':
			st.buf.WriteString(`\f`)
		default:
			if r < 0x20 {
				hex := strconv.FormatInt(int64(r), 16)
				st.buf.WriteString(`\u`)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				st.buf.WriteString(hex)
			} else {
				st.buf.WriteRune(r)
			}
		}
	}
	st.buf.WriteByte('"')
}

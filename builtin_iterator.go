package harmony

func (r *Realm) initIteratorBuiltins() {
	iterProto := r.intrinsic(intrIteratorPrototype)
	r.putSymFunc(iterProto, symIterator, "[Symbol.iterator]", 0, func(call FunctionCall) Completion {
		return normalCompletion(call.This)
	})

	arrIterProto := r.intrinsic(intrArrayIteratorPrototype)
	r.putFunc(arrIterProto, "next", 0, func(call FunctionCall) Completion {
		obj, ok := call.This.(*Object)
		if !ok {
			return r.throwTypeError("next method called on incompatible receiver")
		}
		it, ok := obj.self.(*arrayIteratorObject)
		if !ok {
			return r.throwTypeError("next method called on incompatible receiver %s", call.This.String())
		}
		return it.next()
	})
	if bp, ok := arrIterProto.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("Array Iterator"), false, false, true)
	}

	strIterProto := r.intrinsic(intrStringIteratorPrototype)
	r.putFunc(strIterProto, "next", 0, func(call FunctionCall) Completion {
		obj, ok := call.This.(*Object)
		if !ok {
			return r.throwTypeError("next method called on incompatible receiver")
		}
		it, ok := obj.self.(*stringIteratorObject)
		if !ok {
			return r.throwTypeError("next method called on incompatible receiver %s", call.This.String())
		}
		return it.next()
	})
	if bp, ok := strIterProto.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("String Iterator"), false, false, true)
	}
}

// arrayIteratorObject walks an array-like by index. kind is "key", "value"
// or "key+value".
type arrayIteratorObject struct {
	baseObject
	target *Object
	index  int64
	kind   string
	done   bool
}

func (r *Realm) newArrayIterator(target *Object, kind string) *Object {
	v := &Object{realm: r}
	it := &arrayIteratorObject{target: target, kind: kind}
	it.class = classObject
	it.val = v
	it.prototype = r.intrinsic(intrArrayIteratorPrototype)
	it.extensible = true
	it.init()
	v.self = it
	return v
}

func (it *arrayIteratorObject) next() Completion {
	r := it.val.realm
	if it.done {
		return normalCompletion(r.createIterResultObject(_undefined, true))
	}
	length, c := r.lengthOfArrayLike(it.target)
	if c.Abrupt() {
		return c
	}
	if it.index >= length {
		it.done = true
		return normalCompletion(r.createIterResultObject(_undefined, true))
	}
	idx := it.index
	it.index++
	switch it.kind {
	case "key":
		return normalCompletion(r.createIterResultObject(intToValue(idx), false))
	case "value":
		vc := it.target.self.get(strKey(intToValue(idx).String()), it.target)
		if vc.Abrupt() {
			return vc
		}
		return normalCompletion(r.createIterResultObject(vc.Value, false))
	default:
		vc := it.target.self.get(strKey(intToValue(idx).String()), it.target)
		if vc.Abrupt() {
			return vc
		}
		pair := r.newArrayValues([]Value{intToValue(idx), vc.Value})
		return normalCompletion(r.createIterResultObject(pair, false))
	}
}

// stringIteratorObject walks a string by code point.
type stringIteratorObject struct {
	baseObject
	value valueString
	index int
}

func (r *Realm) newStringIterator(s valueString) *Object {
	v := &Object{realm: r}
	it := &stringIteratorObject{value: s}
	it.class = classObject
	it.val = v
	it.prototype = r.intrinsic(intrStringIteratorPrototype)
	it.extensible = true
	it.init()
	v.self = it
	return v
}

func (it *stringIteratorObject) next() Completion {
	r := it.val.realm
	if it.index >= it.value.length() {
		return normalCompletion(r.createIterResultObject(_undefined, true))
	}
	start := it.index
	end := start + 1
	first := it.value.charAt(start)
	if first >= 0xD800 && first <= 0xDBFF && end < it.value.length() {
		second := it.value.charAt(end)
		if second >= 0xDC00 && second <= 0xDFFF {
			end++
		}
	}
	it.index = end
	return normalCompletion(r.createIterResultObject(it.value.substring(start, end), false))
}

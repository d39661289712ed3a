package harmony

import (
	"math"
	"strings"
)

func (r *Realm) initArrayBuiltins() {
	proto := r.intrinsic(intrArrayPrototype)

	ctor := r.newNativeCtor("Array", 1,
		func(call FunctionCall) Completion {
			return r.arrayConstruct(call.Arguments)
		},
		func(args []Value, newTarget *Object) Completion {
			return r.arrayConstruct(args)
		})
	r.wireConstructor(ctor, proto, intrArray, intrArrayPrototype)
	r.putSymAccessorSpecies(ctor)

	r.putFunc(ctor, "isArray", 1, func(call FunctionCall) Completion {
		isArr, c := r.isArray(call.Argument(0))
		if c.Abrupt() {
			return c
		}
		return booleanCompletion(isArr)
	})
	r.putFunc(ctor, "of", 0, func(call FunctionCall) Completion {
		return normalCompletion(r.createArrayFromList(call.Arguments))
	})
	r.putFunc(ctor, "from", 1, func(call FunctionCall) Completion {
		items := call.Argument(0)
		var mapFn *Object
		if mf := call.Argument(1); mf != _undefined {
			obj, ok := mf.(*Object)
			if !ok || !obj.isCallable() {
				return r.throwTypeError("%s is not a function", mf.String())
			}
			mapFn = obj
		}
		method, c := r.getMethod(items, symKey(symIterator))
		if c.Abrupt() {
			return c
		}
		if method != nil {
			list, lc := r.iterableToList(items)
			if lc.Abrupt() {
				return lc
			}
			if mapFn == nil {
				return normalCompletion(r.createArrayFromList(list))
			}
			out := make([]Value, len(list))
			for i, item := range list {
				mc := r.call(mapFn, call.Argument(2), []Value{item, intToValue(int64(i))})
				if mc.Abrupt() {
					return mc
				}
				out[i] = mc.Value
			}
			return normalCompletion(r.createArrayFromList(out))
		}
		oc := r.toObject(items)
		if oc.Abrupt() {
			return oc
		}
		list, lc := r.createListFromArrayLike(oc.Value)
		if lc.Abrupt() {
			return lc
		}
		if mapFn == nil {
			return normalCompletion(r.createArrayFromList(list))
		}
		out := make([]Value, len(list))
		for i, item := range list {
			mc := r.call(mapFn, call.Argument(2), []Value{item, intToValue(int64(i))})
			if mc.Abrupt() {
				return mc
			}
			out[i] = mc.Value
		}
		return normalCompletion(r.createArrayFromList(out))
	})

	r.putFunc(proto, "push", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		if length+int64(len(call.Arguments)) > maxSafeInteger {
			return r.throwTypeError("Pushing %d elements on an array-like of length %d is disallowed, as the total surpasses 2**53-1", len(call.Arguments), length)
		}
		for _, arg := range call.Arguments {
			if sc := r.setOrThrow(obj, strKey(intToValue(length).String()), arg); sc.Abrupt() {
				return sc
			}
			length++
		}
		lv := intToValue(length)
		if sc := r.setOrThrow(obj, strKey("length"), lv); sc.Abrupt() {
			return sc
		}
		return normalCompletion(lv)
	})
	r.putFunc(proto, "pop", 0, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		if length == 0 {
			if sc := r.setOrThrow(obj, strKey("length"), intToValue(0)); sc.Abrupt() {
				return sc
			}
			return normalCompletion(_undefined)
		}
		idx := strKey(intToValue(length - 1).String())
		vc := obj.self.get(idx, obj)
		if vc.Abrupt() {
			return vc
		}
		if dc := r.deletePropertyOrThrow(obj, idx); dc.Abrupt() {
			return dc
		}
		if sc := r.setOrThrow(obj, strKey("length"), intToValue(length-1)); sc.Abrupt() {
			return sc
		}
		return normalCompletion(vc.Value)
	})
	r.putFunc(proto, "shift", 0, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		if length == 0 {
			if sc := r.setOrThrow(obj, strKey("length"), intToValue(0)); sc.Abrupt() {
				return sc
			}
			return normalCompletion(_undefined)
		}
		firstC := obj.self.get(strKey("0"), obj)
		if firstC.Abrupt() {
			return firstC
		}
		for i := int64(1); i < length; i++ {
			from := strKey(intToValue(i).String())
			to := strKey(intToValue(i - 1).String())
			has := obj.self.hasProperty(from)
			if has.Abrupt() {
				return has
			}
			if has.Value == valueTrue {
				vc := obj.self.get(from, obj)
				if vc.Abrupt() {
					return vc
				}
				if sc := r.setOrThrow(obj, to, vc.Value); sc.Abrupt() {
					return sc
				}
			} else {
				if dc := r.deletePropertyOrThrow(obj, to); dc.Abrupt() {
					return dc
				}
			}
		}
		if dc := r.deletePropertyOrThrow(obj, strKey(intToValue(length-1).String())); dc.Abrupt() {
			return dc
		}
		if sc := r.setOrThrow(obj, strKey("length"), intToValue(length-1)); sc.Abrupt() {
			return sc
		}
		return normalCompletion(firstC.Value)
	})
	r.putFunc(proto, "unshift", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		argc := int64(len(call.Arguments))
		if argc > 0 {
			for k := length; k > 0; k-- {
				from := strKey(intToValue(k - 1).String())
				to := strKey(intToValue(k + argc - 1).String())
				has := obj.self.hasProperty(from)
				if has.Abrupt() {
					return has
				}
				if has.Value == valueTrue {
					vc := obj.self.get(from, obj)
					if vc.Abrupt() {
						return vc
					}
					if sc := r.setOrThrow(obj, to, vc.Value); sc.Abrupt() {
						return sc
					}
				} else if dc := r.deletePropertyOrThrow(obj, to); dc.Abrupt() {
					return dc
				}
			}
			for i, arg := range call.Arguments {
				if sc := r.setOrThrow(obj, strKey(intToValue(int64(i)).String()), arg); sc.Abrupt() {
					return sc
				}
			}
		}
		lv := intToValue(length + argc)
		if sc := r.setOrThrow(obj, strKey("length"), lv); sc.Abrupt() {
			return sc
		}
		return normalCompletion(lv)
	})
	r.putFunc(proto, "join", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		sep := ","
		if s := call.Argument(0); s != _undefined {
			sc := r.toString(s)
			if sc.Abrupt() {
				return sc
			}
			sep = sc.Value.String()
		}
		var b strings.Builder
		for i := int64(0); i < length; i++ {
			if i > 0 {
				b.WriteString(sep)
			}
			vc := obj.self.get(strKey(intToValue(i).String()), obj)
			if vc.Abrupt() {
				return vc
			}
			switch vc.Value.(type) {
			case valueUndefined, valueNull:
				continue
			}
			sc := r.toString(vc.Value)
			if sc.Abrupt() {
				return sc
			}
			b.WriteString(sc.Value.String())
		}
		return normalCompletion(newStringValue(b.String()))
	})
	r.putFunc(proto, "toString", 0, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		joinC := obj.self.get(strKey("join"), obj)
		if joinC.Abrupt() {
			return joinC
		}
		if fn, ok := joinC.Value.(*Object); ok && fn.isCallable() {
			return r.call(fn, obj, nil)
		}
		return r.invoke(r.intrinsic(intrObjectPrototype), strKey("toString"), nil)
	})
	r.putFunc(proto, "slice", 2, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		start, sc := r.relativeIndex(call.Argument(0), length, 0)
		if sc.Abrupt() {
			return sc
		}
		end, ec := r.relativeIndex(call.Argument(1), length, length)
		if ec.Abrupt() {
			return ec
		}
		count := end - start
		if count < 0 {
			count = 0
		}
		ac := r.arraySpeciesCreate(obj, count)
		if ac.Abrupt() {
			return ac
		}
		out := ac.Value.(*Object)
		n := int64(0)
		for k := start; k < end; k++ {
			from := strKey(intToValue(k).String())
			has := obj.self.hasProperty(from)
			if has.Abrupt() {
				return has
			}
			if has.Value == valueTrue {
				vc := obj.self.get(from, obj)
				if vc.Abrupt() {
					return vc
				}
				if cc := r.createDataPropertyOrThrow(out, strKey(intToValue(n).String()), vc.Value); cc.Abrupt() {
					return cc
				}
			}
			n++
		}
		if sc := r.setOrThrow(out, strKey("length"), intToValue(n)); sc.Abrupt() {
			return sc
		}
		return normalCompletion(out)
	})
	r.putFunc(proto, "indexOf", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		target := call.Argument(0)
		for i := int64(0); i < length; i++ {
			key := strKey(intToValue(i).String())
			has := obj.self.hasProperty(key)
			if has.Abrupt() {
				return has
			}
			if has.Value != valueTrue {
				continue
			}
			vc := obj.self.get(key, obj)
			if vc.Abrupt() {
				return vc
			}
			if vc.Value.StrictEquals(target) {
				return normalCompletion(intToValue(i))
			}
		}
		return normalCompletion(intToValue(-1))
	})
	r.putFunc(proto, "includes", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		target := call.Argument(0)
		for i := int64(0); i < length; i++ {
			vc := obj.self.get(strKey(intToValue(i).String()), obj)
			if vc.Abrupt() {
				return vc
			}
			if sameValueZero(vc.Value, target) {
				return completionTrue
			}
		}
		return completionFalse
	})
	r.putFunc(proto, "forEach", 1, func(call FunctionCall) Completion {
		return r.arrayIterate(call, func(v Value, i int64, obj *Object, fn *Object, thisArg Value) (Value, Completion) {
			c := r.call(fn, thisArg, []Value{v, intToValue(i), obj})
			if c.Abrupt() {
				return nil, c
			}
			return nil, emptyCompletion
		}, func(obj *Object, length int64) Completion {
			return normalCompletion(_undefined)
		})
	})
	r.putFunc(proto, "map", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		fn, ok := call.Argument(0).(*Object)
		if !ok || !fn.isCallable() {
			return r.throwTypeError("%s is not a function", call.Argument(0).String())
		}
		ac := r.arraySpeciesCreate(obj, length)
		if ac.Abrupt() {
			return ac
		}
		out := ac.Value.(*Object)
		for i := int64(0); i < length; i++ {
			key := strKey(intToValue(i).String())
			has := obj.self.hasProperty(key)
			if has.Abrupt() {
				return has
			}
			if has.Value != valueTrue {
				continue
			}
			vc := obj.self.get(key, obj)
			if vc.Abrupt() {
				return vc
			}
			mc := r.call(fn, call.Argument(1), []Value{vc.Value, intToValue(i), obj})
			if mc.Abrupt() {
				return mc
			}
			if cc := r.createDataPropertyOrThrow(out, key, mc.Value); cc.Abrupt() {
				return cc
			}
		}
		return normalCompletion(out)
	})
	r.putFunc(proto, "filter", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		fn, ok := call.Argument(0).(*Object)
		if !ok || !fn.isCallable() {
			return r.throwTypeError("%s is not a function", call.Argument(0).String())
		}
		ac := r.arraySpeciesCreate(obj, 0)
		if ac.Abrupt() {
			return ac
		}
		out := ac.Value.(*Object)
		n := int64(0)
		for i := int64(0); i < length; i++ {
			key := strKey(intToValue(i).String())
			has := obj.self.hasProperty(key)
			if has.Abrupt() {
				return has
			}
			if has.Value != valueTrue {
				continue
			}
			vc := obj.self.get(key, obj)
			if vc.Abrupt() {
				return vc
			}
			mc := r.call(fn, call.Argument(1), []Value{vc.Value, intToValue(i), obj})
			if mc.Abrupt() {
				return mc
			}
			if mc.Value.ToBoolean() {
				if cc := r.createDataPropertyOrThrow(out, strKey(intToValue(n).String()), vc.Value); cc.Abrupt() {
					return cc
				}
				n++
			}
		}
		return normalCompletion(out)
	})
	r.putFunc(proto, "reduce", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		fn, ok := call.Argument(0).(*Object)
		if !ok || !fn.isCallable() {
			return r.throwTypeError("%s is not a function", call.Argument(0).String())
		}
		var acc Value
		k := int64(0)
		if len(call.Arguments) > 1 {
			acc = call.Arguments[1]
		} else {
			for ; k < length; k++ {
				key := strKey(intToValue(k).String())
				has := obj.self.hasProperty(key)
				if has.Abrupt() {
					return has
				}
				if has.Value == valueTrue {
					vc := obj.self.get(key, obj)
					if vc.Abrupt() {
						return vc
					}
					acc = vc.Value
					k++
					break
				}
			}
			if acc == nil {
				return r.throwTypeError("Reduce of empty array with no initial value")
			}
		}
		for ; k < length; k++ {
			key := strKey(intToValue(k).String())
			has := obj.self.hasProperty(key)
			if has.Abrupt() {
				return has
			}
			if has.Value != valueTrue {
				continue
			}
			vc := obj.self.get(key, obj)
			if vc.Abrupt() {
				return vc
			}
			mc := r.call(fn, _undefined, []Value{acc, vc.Value, intToValue(k), obj})
			if mc.Abrupt() {
				return mc
			}
			acc = mc.Value
		}
		return normalCompletion(acc)
	})
	r.putFunc(proto, "concat", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		ac := r.arraySpeciesCreate(obj, 0)
		if ac.Abrupt() {
			return ac
		}
		out := ac.Value.(*Object)
		n := int64(0)
		items := append([]Value{obj}, call.Arguments...)
		for _, item := range items {
			spreadable, spc := r.isConcatSpreadable(item)
			if spc.Abrupt() {
				return spc
			}
			if spreadable {
				src := item.(*Object)
				length, lc := r.lengthOfArrayLike(src)
				if lc.Abrupt() {
					return lc
				}
				for k := int64(0); k < length; k++ {
					key := strKey(intToValue(k).String())
					has := src.self.hasProperty(key)
					if has.Abrupt() {
						return has
					}
					if has.Value == valueTrue {
						vc := src.self.get(key, src)
						if vc.Abrupt() {
							return vc
						}
						if cc := r.createDataPropertyOrThrow(out, strKey(intToValue(n).String()), vc.Value); cc.Abrupt() {
							return cc
						}
					}
					n++
				}
			} else {
				if cc := r.createDataPropertyOrThrow(out, strKey(intToValue(n).String()), item); cc.Abrupt() {
					return cc
				}
				n++
			}
		}
		if sc := r.setOrThrow(out, strKey("length"), intToValue(n)); sc.Abrupt() {
			return sc
		}
		return normalCompletion(out)
	})
	r.putFunc(proto, "flat", 0, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		depth := 1.0
		if d := call.Argument(0); d != _undefined {
			nc := r.toNumber(d)
			if nc.Abrupt() {
				return nc
			}
			depth = toIntegerOrInfinity(nc.Value)
		}
		ac := r.arraySpeciesCreate(obj, 0)
		if ac.Abrupt() {
			return ac
		}
		out := ac.Value.(*Object)
		n, fc := r.flattenIntoArray(out, obj, length, 0, depth, nil, nil)
		if fc.Abrupt() {
			return fc
		}
		_ = n
		return normalCompletion(out)
	})
	r.putFunc(proto, "flatMap", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		length, c := r.lengthOfArrayLike(obj)
		if c.Abrupt() {
			return c
		}
		fn, ok := call.Argument(0).(*Object)
		if !ok || !fn.isCallable() {
			return r.throwTypeError("%s is not a function", call.Argument(0).String())
		}
		ac := r.arraySpeciesCreate(obj, 0)
		if ac.Abrupt() {
			return ac
		}
		out := ac.Value.(*Object)
		_, fc := r.flattenIntoArray(out, obj, length, 0, 1, fn, call.Argument(1))
		if fc.Abrupt() {
			return fc
		}
		return normalCompletion(out)
	})
	r.putFunc(proto, "keys", 0, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		return normalCompletion(r.newArrayIterator(oc.Value.(*Object), "key"))
	})
	r.putFunc(proto, "entries", 0, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		return normalCompletion(r.newArrayIterator(oc.Value.(*Object), "key+value"))
	})
	valuesFn := r.newNativeFunc("values", 0, func(call FunctionCall) Completion {
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		return normalCompletion(r.newArrayIterator(oc.Value.(*Object), "value"))
	})
	targetPut(proto, "values", valuesFn)
	r.arrayProtoValues = valuesFn
	if bp, ok := proto.self.(interface {
		_putSym(*valueSymbol, Value, bool, bool, bool)
	}); ok {
		bp._putSym(symIterator, valuesFn, true, false, true)
	}
}

func (r *Realm) arrayConstruct(args []Value) Completion {
	if len(args) == 1 {
		if isNumber(args[0]) {
			lenU, c := r.toUint32(args[0])
			if c.Abrupt() {
				return c
			}
			if float64(lenU) != numberVal(args[0]) {
				return r.throwRangeError("Invalid array length")
			}
			return normalCompletion(r.newArrayLength(int64(lenU)))
		}
		return normalCompletion(r.createArrayFromList(args))
	}
	return normalCompletion(r.createArrayFromList(args))
}

// relativeIndex resolves a possibly-negative index argument against length.
func (r *Realm) relativeIndex(v Value, length, whenUndefined int64) (int64, Completion) {
	if v == _undefined {
		return whenUndefined, emptyCompletion
	}
	nc := r.toNumber(v)
	if nc.Abrupt() {
		return 0, nc
	}
	f := toIntegerOrInfinity(nc.Value)
	if math.IsInf(f, 1) {
		return length, emptyCompletion
	}
	if math.IsInf(f, -1) {
		return 0, emptyCompletion
	}
	idx := int64(f)
	if idx < 0 {
		idx += length
		if idx < 0 {
			idx = 0
		}
	} else if idx > length {
		idx = length
	}
	return idx, emptyCompletion
}

func sameValueZero(a, b Value) bool {
	if a.SameAs(b) {
		return true
	}
	// +0 and -0 compare equal here; NaN equals NaN via SameAs already.
	if isNumber(a) && isNumber(b) {
		return numberVal(a) == numberVal(b)
	}
	return false
}

func (r *Realm) isConcatSpreadable(v Value) (bool, Completion) {
	obj, ok := v.(*Object)
	if !ok {
		return false, emptyCompletion
	}
	sc := obj.self.get(symKey(symIsConcatSpreadable), obj)
	if sc.Abrupt() {
		return false, sc
	}
	if sc.Value != _undefined {
		return sc.Value.ToBoolean(), emptyCompletion
	}
	return r.isArray(obj)
}

// flattenIntoArray appends source elements into target, recursing while
// depth allows; mapper is non-nil for flatMap.
func (r *Realm) flattenIntoArray(target, source *Object, sourceLen, start int64, depth float64, mapper *Object, thisArg Value) (int64, Completion) {
	targetIndex := start
	for sourceIndex := int64(0); sourceIndex < sourceLen; sourceIndex++ {
		key := strKey(intToValue(sourceIndex).String())
		has := source.self.hasProperty(key)
		if has.Abrupt() {
			return 0, has
		}
		if has.Value != valueTrue {
			continue
		}
		vc := source.self.get(key, source)
		if vc.Abrupt() {
			return 0, vc
		}
		element := vc.Value
		if mapper != nil {
			mc := r.call(mapper, thisArg, []Value{element, intToValue(sourceIndex), source})
			if mc.Abrupt() {
				return 0, mc
			}
			element = mc.Value
		}
		shouldFlatten := false
		if depth > 0 {
			isArr, ac := r.isArray(element)
			if ac.Abrupt() {
				return 0, ac
			}
			shouldFlatten = isArr
		}
		if shouldFlatten {
			elObj := element.(*Object)
			elLen, lc := r.lengthOfArrayLike(elObj)
			if lc.Abrupt() {
				return 0, lc
			}
			var fc Completion
			targetIndex, fc = r.flattenIntoArray(target, elObj, elLen, targetIndex, depth-1, nil, nil)
			if fc.Abrupt() {
				return 0, fc
			}
		} else {
			if targetIndex >= maxSafeInteger {
				return 0, r.throwTypeError("Flattening results in an array exceeding the maximum length")
			}
			if cc := r.createDataPropertyOrThrow(target, strKey(intToValue(targetIndex).String()), element); cc.Abrupt() {
				return 0, cc
			}
			targetIndex++
		}
	}
	return targetIndex, emptyCompletion
}

// arrayIterate is a small driver shared by the simple iteration methods.
func (r *Realm) arrayIterate(call FunctionCall,
	visit func(v Value, i int64, obj, fn *Object, thisArg Value) (Value, Completion),
	finish func(obj *Object, length int64) Completion) Completion {
	oc := r.toObject(call.This)
	if oc.Abrupt() {
		return oc
	}
	obj := oc.Value.(*Object)
	length, c := r.lengthOfArrayLike(obj)
	if c.Abrupt() {
		return c
	}
	fn, ok := call.Argument(0).(*Object)
	if !ok || !fn.isCallable() {
		return r.throwTypeError("%s is not a function", call.Argument(0).String())
	}
	for i := int64(0); i < length; i++ {
		key := strKey(intToValue(i).String())
		has := obj.self.hasProperty(key)
		if has.Abrupt() {
			return has
		}
		if has.Value != valueTrue {
			continue
		}
		vc := obj.self.get(key, obj)
		if vc.Abrupt() {
			return vc
		}
		if _, pc := visit(vc.Value, i, obj, fn, call.Argument(1)); pc.Abrupt() {
			return pc
		}
	}
	return finish(obj, length)
}

// putSymAccessorSpecies installs get [Symbol.species] returning this.
func (r *Realm) putSymAccessorSpecies(ctor *Object) {
	getter := r.newNativeFunc("get [Symbol.species]", 0, func(call FunctionCall) Completion {
		return normalCompletion(call.This)
	})
	if bp, ok := ctor.self.(interface {
		putProp(propertyKey, *property)
	}); ok {
		bp.putProp(symKey(symSpecies), &property{
			getterFunc:   getter,
			accessor:     true,
			configurable: true,
		})
	}
}

package harmony

func (r *Realm) initObjectBuiltins() {
	objProto := r.intrinsic(intrObjectPrototype)

	ctor := r.newNativeCtor("Object", 1,
		func(call FunctionCall) Completion {
			arg := call.Argument(0)
			switch arg.(type) {
			case valueUndefined, valueNull:
				return normalCompletion(r.NewObject())
			}
			return r.toObject(arg)
		},
		func(args []Value, newTarget *Object) Completion {
			var arg Value = _undefined
			if len(args) > 0 {
				arg = args[0]
			}
			switch arg.(type) {
			case valueUndefined, valueNull:
				if newTarget != nil && newTarget != r.intrinsic(intrObject) {
					return r.ordinaryCreateFromConstructor(newTarget, intrObjectPrototype)
				}
				return normalCompletion(r.NewObject())
			}
			return r.toObject(arg)
		})
	r.wireConstructor(ctor, objProto, intrObject, intrObjectPrototype)

	r.putFunc(ctor, "keys", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		names, c := r.enumerableOwnPropertyNames(oc.Value.(*Object), "key")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(r.createArrayFromList(names))
	})
	r.putFunc(ctor, "values", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		values, c := r.enumerableOwnPropertyNames(oc.Value.(*Object), "value")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(r.createArrayFromList(values))
	})
	r.putFunc(ctor, "entries", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		entries, c := r.enumerableOwnPropertyNames(oc.Value.(*Object), "key+value")
		if c.Abrupt() {
			return c
		}
		return normalCompletion(r.createArrayFromList(entries))
	})
	r.putFunc(ctor, "fromEntries", 1, func(call FunctionCall) Completion {
		obj := r.NewObject()
		items, c := r.iterableToList(call.Argument(0))
		if c.Abrupt() {
			return c
		}
		for _, item := range items {
			entry, ok := item.(*Object)
			if !ok {
				return r.throwTypeError("Iterator value %s is not an entry object", item.String())
			}
			kc := entry.self.get(strKey("0"), entry)
			if kc.Abrupt() {
				return kc
			}
			vc := entry.self.get(strKey("1"), entry)
			if vc.Abrupt() {
				return vc
			}
			key, pc := r.toPropertyKey(kc.Value)
			if pc.Abrupt() {
				return pc
			}
			if cc := r.createDataPropertyOrThrow(obj, key, vc.Value); cc.Abrupt() {
				return cc
			}
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "assign", 2, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		target := oc.Value.(*Object)
		for _, src := range call.Arguments[1:] {
			switch src.(type) {
			case valueUndefined, valueNull:
				continue
			}
			fc := r.toObject(src)
			if fc.Abrupt() {
				return fc
			}
			from := fc.Value.(*Object)
			keys, c := from.self.ownPropertyKeys()
			if c.Abrupt() {
				return c
			}
			for _, key := range keys {
				desc, dc := from.self.getOwnProperty(key)
				if dc.Abrupt() {
					return dc
				}
				if desc == nil || desc.Enumerable != FLAG_TRUE {
					continue
				}
				vc := from.self.get(key, from)
				if vc.Abrupt() {
					return vc
				}
				if sc := r.setOrThrow(target, key, vc.Value); sc.Abrupt() {
					return sc
				}
			}
		}
		return normalCompletion(target)
	})
	r.putFunc(ctor, "defineProperty", 3, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return r.throwTypeError("Object.defineProperty called on non-object")
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		desc, dc := r.toPropertyDescriptor(call.Argument(2))
		if dc.Abrupt() {
			return dc
		}
		if c := r.definePropertyOrThrow(obj, key, *desc); c.Abrupt() {
			return c
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "defineProperties", 2, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return r.throwTypeError("Object.defineProperties called on non-object")
		}
		pc := r.toObject(call.Argument(1))
		if pc.Abrupt() {
			return pc
		}
		props := pc.Value.(*Object)
		keys, c := props.self.ownPropertyKeys()
		if c.Abrupt() {
			return c
		}
		for _, key := range keys {
			pd, dc := props.self.getOwnProperty(key)
			if dc.Abrupt() {
				return dc
			}
			if pd == nil || pd.Enumerable != FLAG_TRUE {
				continue
			}
			vc := props.self.get(key, props)
			if vc.Abrupt() {
				return vc
			}
			desc, ddc := r.toPropertyDescriptor(vc.Value)
			if ddc.Abrupt() {
				return ddc
			}
			if cc := r.definePropertyOrThrow(obj, key, *desc); cc.Abrupt() {
				return cc
			}
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "getOwnPropertyDescriptor", 2, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		desc, dc := oc.Value.(*Object).self.getOwnProperty(key)
		if dc.Abrupt() {
			return dc
		}
		if desc == nil {
			return normalCompletion(_undefined)
		}
		return normalCompletion(r.fromPropertyDescriptor(*desc))
	})
	r.putFunc(ctor, "getOwnPropertyNames", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		keys, c := oc.Value.(*Object).self.ownPropertyKeys()
		if c.Abrupt() {
			return c
		}
		var out []Value
		for _, key := range keys {
			if !key.isSymbol() {
				out = append(out, newStringValue(key.s))
			}
		}
		return normalCompletion(r.createArrayFromList(out))
	})
	r.putFunc(ctor, "getOwnPropertySymbols", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		keys, c := oc.Value.(*Object).self.ownPropertyKeys()
		if c.Abrupt() {
			return c
		}
		var out []Value
		for _, key := range keys {
			if key.isSymbol() {
				out = append(out, key.sym)
			}
		}
		return normalCompletion(r.createArrayFromList(out))
	})
	r.putFunc(ctor, "getPrototypeOf", 1, func(call FunctionCall) Completion {
		oc := r.toObject(call.Argument(0))
		if oc.Abrupt() {
			return oc
		}
		return oc.Value.(*Object).self.getPrototypeOf()
	})
	r.putFunc(ctor, "setPrototypeOf", 2, func(call FunctionCall) Completion {
		target := call.Argument(0)
		proto := call.Argument(1)
		if _, ok := proto.(*Object); !ok && proto != _null {
			return r.throwTypeError("Object prototype may only be an Object or null: %s", proto.String())
		}
		obj, ok := target.(*Object)
		if !ok {
			switch target.(type) {
			case valueUndefined, valueNull:
				return r.throwTypeError("Object.setPrototypeOf called on null or undefined")
			}
			return normalCompletion(target)
		}
		c := obj.self.setPrototypeOf(proto)
		if c.Abrupt() {
			return c
		}
		if c.Value == valueFalse {
			return r.throwTypeError("#<Object> is not extensible")
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "create", 2, func(call FunctionCall) Completion {
		protoArg := call.Argument(0)
		var proto *Object
		switch p := protoArg.(type) {
		case valueNull:
		case *Object:
			proto = p
		default:
			return r.throwTypeError("Object prototype may only be an Object or null: %s", protoArg.String())
		}
		obj := r.newObjectWithProto(proto)
		if props := call.Argument(1); props != _undefined {
			return r.invoke(r.intrinsic(intrObject), strKey("defineProperties"), []Value{obj, props})
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "freeze", 1, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return normalCompletion(call.Argument(0))
		}
		if c := r.setIntegrityLevel(obj, true); c.Abrupt() {
			return c
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "seal", 1, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return normalCompletion(call.Argument(0))
		}
		if c := r.setIntegrityLevel(obj, false); c.Abrupt() {
			return c
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "isFrozen", 1, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return completionTrue
		}
		return r.testIntegrityLevel(obj, true)
	})
	r.putFunc(ctor, "isSealed", 1, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return completionTrue
		}
		return r.testIntegrityLevel(obj, false)
	})
	r.putFunc(ctor, "preventExtensions", 1, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return normalCompletion(call.Argument(0))
		}
		c := obj.self.preventExtensions()
		if c.Abrupt() {
			return c
		}
		if c.Value == valueFalse {
			return r.throwTypeError("Object.preventExtensions failed")
		}
		return normalCompletion(obj)
	})
	r.putFunc(ctor, "isExtensible", 1, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return completionFalse
		}
		return obj.self.isExtensible()
	})
	r.putFunc(ctor, "is", 2, func(call FunctionCall) Completion {
		return booleanCompletion(call.Argument(0).SameAs(call.Argument(1)))
	})

	r.putFunc(objProto, "hasOwnProperty", 1, func(call FunctionCall) Completion {
		key, kc := r.toPropertyKey(call.Argument(0))
		if kc.Abrupt() {
			return kc
		}
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		has, c := hasOwnProperty(oc.Value.(*Object), key)
		if c.Abrupt() {
			return c
		}
		return booleanCompletion(has)
	})
	r.putFunc(objProto, "isPrototypeOf", 1, func(call FunctionCall) Completion {
		obj, ok := call.Argument(0).(*Object)
		if !ok {
			return completionFalse
		}
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		self := oc.Value.(*Object)
		for {
			pc := obj.self.getPrototypeOf()
			if pc.Abrupt() {
				return pc
			}
			p, ok := pc.Value.(*Object)
			if !ok {
				return completionFalse
			}
			if p == self {
				return completionTrue
			}
			obj = p
		}
	})
	r.putFunc(objProto, "propertyIsEnumerable", 1, func(call FunctionCall) Completion {
		key, kc := r.toPropertyKey(call.Argument(0))
		if kc.Abrupt() {
			return kc
		}
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		desc, dc := oc.Value.(*Object).self.getOwnProperty(key)
		if dc.Abrupt() {
			return dc
		}
		return booleanCompletion(desc != nil && desc.Enumerable == FLAG_TRUE)
	})
	r.putFunc(objProto, "toString", 0, func(call FunctionCall) Completion {
		switch call.This.(type) {
		case valueUndefined:
			return normalCompletion(asciiString("[object Undefined]"))
		case valueNull:
			return normalCompletion(asciiString("[object Null]"))
		}
		oc := r.toObject(call.This)
		if oc.Abrupt() {
			return oc
		}
		obj := oc.Value.(*Object)
		tag := obj.self.className()
		tc := obj.self.get(symKey(symToStringTag), obj)
		if tc.Abrupt() {
			return tc
		}
		if s, ok := tc.Value.(valueString); ok {
			tag = s.String()
		}
		return normalCompletion(newStringValue("[object " + tag + "]"))
	})
	r.putFunc(objProto, "toLocaleString", 0, func(call FunctionCall) Completion {
		return r.invoke(call.This, strKey("toString"), nil)
	})
	r.putFunc(objProto, "valueOf", 0, func(call FunctionCall) Completion {
		return r.toObject(call.This)
	})
}

// setIntegrityLevel implements SetIntegrityLevel(O, frozen|sealed).
func (r *Realm) setIntegrityLevel(obj *Object, frozen bool) Completion {
	c := obj.self.preventExtensions()
	if c.Abrupt() {
		return c
	}
	if c.Value == valueFalse {
		return r.throwTypeError("Cannot prevent extensions")
	}
	keys, kc := obj.self.ownPropertyKeys()
	if kc.Abrupt() {
		return kc
	}
	for _, key := range keys {
		var desc PropertyDescriptor
		if frozen {
			current, dc := obj.self.getOwnProperty(key)
			if dc.Abrupt() {
				return dc
			}
			if current == nil {
				continue
			}
			if current.isAccessor() {
				desc = PropertyDescriptor{Configurable: FLAG_FALSE}
			} else {
				desc = PropertyDescriptor{Configurable: FLAG_FALSE, Writable: FLAG_FALSE}
			}
		} else {
			desc = PropertyDescriptor{Configurable: FLAG_FALSE}
		}
		if cc := r.definePropertyOrThrow(obj, key, desc); cc.Abrupt() {
			return cc
		}
	}
	return emptyCompletion
}

// testIntegrityLevel implements TestIntegrityLevel.
func (r *Realm) testIntegrityLevel(obj *Object, frozen bool) Completion {
	ext := obj.self.isExtensible()
	if ext.Abrupt() {
		return ext
	}
	if ext.Value == valueTrue {
		return completionFalse
	}
	keys, kc := obj.self.ownPropertyKeys()
	if kc.Abrupt() {
		return kc
	}
	for _, key := range keys {
		desc, dc := obj.self.getOwnProperty(key)
		if dc.Abrupt() {
			return dc
		}
		if desc == nil {
			continue
		}
		if desc.Configurable == FLAG_TRUE {
			return completionFalse
		}
		if frozen && desc.isData() && desc.Writable == FLAG_TRUE {
			return completionFalse
		}
	}
	return completionTrue
}

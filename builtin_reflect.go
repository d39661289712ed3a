package harmony

func (r *Realm) initReflectBuiltins() {
	obj := r.newBaseObject(r.intrinsic(intrObjectPrototype), classObject).val
	r.intrinsics[intrReflect] = obj
	if bp, ok := obj.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("Reflect"), false, false, true)
	}

	reflectTarget := func(v Value, method string) (*Object, Completion) {
		obj, ok := v.(*Object)
		if !ok {
			return nil, r.throwTypeError("Reflect.%s called on non-object", method)
		}
		return obj, emptyCompletion
	}

	r.putFunc(obj, "get", 2, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "get")
		if c.Abrupt() {
			return c
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		receiver := call.Argument(2)
		if receiver == _undefined {
			receiver = target
		}
		return target.self.get(key, receiver)
	})
	r.putFunc(obj, "set", 3, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "set")
		if c.Abrupt() {
			return c
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		receiver := call.Argument(3)
		if receiver == _undefined {
			receiver = target
		}
		return target.self.set(key, call.Argument(2), receiver)
	})
	r.putFunc(obj, "has", 2, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "has")
		if c.Abrupt() {
			return c
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		return target.self.hasProperty(key)
	})
	r.putFunc(obj, "deleteProperty", 2, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "deleteProperty")
		if c.Abrupt() {
			return c
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		return target.self.deleteProperty(key)
	})
	r.putFunc(obj, "defineProperty", 3, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "defineProperty")
		if c.Abrupt() {
			return c
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		desc, dc := r.toPropertyDescriptor(call.Argument(2))
		if dc.Abrupt() {
			return dc
		}
		return target.self.defineOwnProperty(key, *desc)
	})
	r.putFunc(obj, "getOwnPropertyDescriptor", 2, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "getOwnPropertyDescriptor")
		if c.Abrupt() {
			return c
		}
		key, kc := r.toPropertyKey(call.Argument(1))
		if kc.Abrupt() {
			return kc
		}
		desc, dc := target.self.getOwnProperty(key)
		if dc.Abrupt() {
			return dc
		}
		if desc == nil {
			return normalCompletion(_undefined)
		}
		return normalCompletion(r.fromPropertyDescriptor(*desc))
	})
	r.putFunc(obj, "ownKeys", 1, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "ownKeys")
		if c.Abrupt() {
			return c
		}
		keys, kc := target.self.ownPropertyKeys()
		if kc.Abrupt() {
			return kc
		}
		out := make([]Value, len(keys))
		for i, k := range keys {
			out[i] = k.toValue()
		}
		return normalCompletion(r.createArrayFromList(out))
	})
	r.putFunc(obj, "getPrototypeOf", 1, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "getPrototypeOf")
		if c.Abrupt() {
			return c
		}
		return target.self.getPrototypeOf()
	})
	r.putFunc(obj, "setPrototypeOf", 2, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "setPrototypeOf")
		if c.Abrupt() {
			return c
		}
		return target.self.setPrototypeOf(call.Argument(1))
	})
	r.putFunc(obj, "isExtensible", 1, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "isExtensible")
		if c.Abrupt() {
			return c
		}
		return target.self.isExtensible()
	})
	r.putFunc(obj, "preventExtensions", 1, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "preventExtensions")
		if c.Abrupt() {
			return c
		}
		return target.self.preventExtensions()
	})
	r.putFunc(obj, "apply", 3, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "apply")
		if c.Abrupt() {
			return c
		}
		args, ac := r.createListFromArrayLike(call.Argument(2))
		if ac.Abrupt() {
			return ac
		}
		return r.call(target, call.Argument(1), args)
	})
	r.putFunc(obj, "construct", 2, func(call FunctionCall) Completion {
		target, c := reflectTarget(call.Argument(0), "construct")
		if c.Abrupt() {
			return c
		}
		args, ac := r.createListFromArrayLike(call.Argument(1))
		if ac.Abrupt() {
			return ac
		}
		newTarget := target
		if nt := call.Argument(2); nt != _undefined {
			obj, ok := nt.(*Object)
			if !ok || !obj.isConstructor() {
				return r.throwTypeError("Reflect.construct: newTarget is not a constructor")
			}
			newTarget = obj
		}
		return r.construct(target, args, newTarget)
	})

	// Proxy is wired alongside Reflect: both exist to surface the internal
	// method table at the language level.
	proxyCtor := r.newNativeCtor("Proxy", 2,
		func(call FunctionCall) Completion {
			return r.throwTypeError("Constructor Proxy requires 'new'")
		},
		func(args []Value, newTarget *Object) Completion {
			var target, handler Value = _undefined, _undefined
			if len(args) > 0 {
				target = args[0]
			}
			if len(args) > 1 {
				handler = args[1]
			}
			return r.proxyCreate(target, handler)
		})
	r.putFunc(proxyCtor, "revocable", 2, func(call FunctionCall) Completion {
		pc := r.proxyCreate(call.Argument(0), call.Argument(1))
		if pc.Abrupt() {
			return pc
		}
		proxy := pc.Value.(*Object)
		revoke := r.newNativeFunc("", 0, func(FunctionCall) Completion {
			switch impl := proxy.self.(type) {
			case *proxyObject:
				impl.revoke()
			case *callableProxyObject:
				impl.revoke()
			case *ctorProxyObject:
				impl.revoke()
			}
			return normalCompletion(_undefined)
		})
		result := r.NewObject()
		result.self.(*baseObject)._putProp("proxy", proxy, true, true, true)
		result.self.(*baseObject)._putProp("revoke", revoke, true, true, true)
		return normalCompletion(result)
	})
	r.proxyCtor = proxyCtor
}

package harmony

func (r *Realm) initFunctionBuiltins() {
	fnProto := r.intrinsic(intrFunctionPrototype)

	ctor := r.newNativeCtor("Function", 1,
		func(call FunctionCall) Completion {
			return r.throwTypeError("Function constructor from source text is not supported by this host")
		},
		func(args []Value, newTarget *Object) Completion {
			return r.throwTypeError("Function constructor from source text is not supported by this host")
		})
	r.wireConstructor(ctor, fnProto, intrFunction, intrFunctionPrototype)

	r.putFunc(fnProto, "call", 1, func(call FunctionCall) Completion {
		fn, ok := call.This.(*Object)
		if !ok || !fn.isCallable() {
			return r.throwTypeError("Function.prototype.call called on non-callable")
		}
		var args []Value
		if len(call.Arguments) > 1 {
			args = call.Arguments[1:]
		}
		return r.call(fn, call.Argument(0), args)
	})
	r.putFunc(fnProto, "apply", 2, func(call FunctionCall) Completion {
		fn, ok := call.This.(*Object)
		if !ok || !fn.isCallable() {
			return r.throwTypeError("Function.prototype.apply called on non-callable")
		}
		argArray := call.Argument(1)
		switch argArray.(type) {
		case valueUndefined, valueNull:
			return r.call(fn, call.Argument(0), nil)
		}
		list, c := r.createListFromArrayLike(argArray)
		if c.Abrupt() {
			return c
		}
		return r.call(fn, call.Argument(0), list)
	})
	r.putFunc(fnProto, "bind", 1, func(call FunctionCall) Completion {
		fn, ok := call.This.(*Object)
		if !ok {
			return r.throwTypeError("Bind must be called on a function")
		}
		var boundArgs []Value
		if len(call.Arguments) > 1 {
			boundArgs = append(boundArgs, call.Arguments[1:]...)
		}
		return r.boundFunctionCreate(fn, call.Argument(0), boundArgs)
	})
	r.putFunc(fnProto, "toString", 0, func(call FunctionCall) Completion {
		fn, ok := call.This.(*Object)
		if !ok || !fn.isCallable() {
			return r.throwTypeError("Function.prototype.toString requires that 'this' be a Function")
		}
		if f, ok := fn.self.(*funcObject); ok && f.source != "" {
			return normalCompletion(newStringValue(f.source))
		}
		name := ""
		nc := fn.self.get(strKey("name"), fn)
		if nc.Abrupt() {
			return nc
		}
		if s, ok := nc.Value.(valueString); ok {
			name = s.String()
		}
		return normalCompletion(newStringValue("function " + name + "() { [native code] }"))
	})
	r.putSymFunc(fnProto, symHasInstance, "[Symbol.hasInstance]", 1, func(call FunctionCall) Completion {
		fn, ok := call.This.(*Object)
		if !ok {
			return completionFalse
		}
		return r.ordinaryHasInstance(fn, call.Argument(0))
	})
}

// createListFromArrayLike materialises an array-like into a value list.
func (r *Realm) createListFromArrayLike(v Value) ([]Value, Completion) {
	obj, ok := v.(*Object)
	if !ok {
		return nil, r.throwTypeError("CreateListFromArrayLike called on non-object")
	}
	length, c := r.lengthOfArrayLike(obj)
	if c.Abrupt() {
		return nil, c
	}
	list := make([]Value, 0, length)
	for i := int64(0); i < length; i++ {
		vc := obj.self.get(strKey(intToValue(i).String()), obj)
		if vc.Abrupt() {
			return nil, vc
		}
		list = append(list, vc.Value)
	}
	return list, emptyCompletion
}

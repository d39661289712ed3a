package harmony

func (r *Realm) initPromiseBuiltins() {
	proto := r.intrinsic(intrPromisePrototype)

	ctor := r.newNativeCtor("Promise", 1,
		func(call FunctionCall) Completion {
			return r.throwTypeError("Promise constructor cannot be invoked without 'new'")
		},
		func(args []Value, newTarget *Object) Completion {
			var executor *Object
			if len(args) > 0 {
				if f, ok := args[0].(*Object); ok && f.isCallable() {
					executor = f
				}
			}
			if executor == nil {
				return r.throwTypeError("Promise resolver %s is not a function", argString(args, 0))
			}
			protoObj := r.intrinsic(intrPromisePrototype)
			if newTarget != nil {
				pc := newTarget.self.get(strKey("prototype"), newTarget)
				if pc.Abrupt() {
					return pc
				}
				if p, ok := pc.Value.(*Object); ok {
					protoObj = p
				}
			}
			promise := r.newPromiseObject(protoObj)
			resolve, reject := r.createResolvingFunctions(promise)
			c := r.call(executor, _undefined, []Value{resolve, reject})
			if c.Throw() {
				if rc := r.CallValue(reject, _undefined, c.ValueOrUndefined()); rc.Abrupt() {
					return rc
				}
			} else if c.Abrupt() {
				return c
			}
			return normalCompletion(promise)
		})
	r.wireConstructor(ctor, proto, intrPromise, intrPromisePrototype)
	r.putSymAccessorSpecies(ctor)
	if bp, ok := proto.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("Promise"), false, false, true)
	}

	r.putFunc(ctor, "resolve", 1, func(call FunctionCall) Completion {
		return r.promiseResolveValue(call.Argument(0))
	})
	r.putFunc(ctor, "reject", 1, func(call FunctionCall) Completion {
		capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
		if cc.Abrupt() {
			return cc
		}
		if c := r.CallValue(capability.reject, _undefined, call.Argument(0)); c.Abrupt() {
			return c
		}
		return normalCompletion(capability.promise)
	})
	r.putFunc(ctor, "all", 1, func(call FunctionCall) Completion {
		capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
		if cc.Abrupt() {
			return cc
		}
		items, lc := r.iterableToList(call.Argument(0))
		if lc.Abrupt() {
			r.CallValue(capability.reject, _undefined, lc.ValueOrUndefined())
			return normalCompletion(capability.promise)
		}
		results := make([]Value, len(items))
		remaining := len(items) + 1
		maybeSettle := func() {
			remaining--
			if remaining == 0 {
				r.CallValue(capability.resolve, _undefined, r.createArrayFromList(results))
			}
		}
		for i, item := range items {
			idx := i
			results[idx] = _undefined
			pc := r.promiseResolveValue(item)
			if pc.Abrupt() {
				return pc
			}
			onFulfilled := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
				results[idx] = call.Argument(0)
				maybeSettle()
				return normalCompletion(_undefined)
			})
			onRejected := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
				r.CallValue(capability.reject, _undefined, call.Argument(0))
				return normalCompletion(_undefined)
			})
			r.performPromiseThen(pc.Value.(*Object), onFulfilled, onRejected, nil)
		}
		maybeSettle()
		return normalCompletion(capability.promise)
	})
	r.putFunc(ctor, "race", 1, func(call FunctionCall) Completion {
		capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
		if cc.Abrupt() {
			return cc
		}
		items, lc := r.iterableToList(call.Argument(0))
		if lc.Abrupt() {
			r.CallValue(capability.reject, _undefined, lc.ValueOrUndefined())
			return normalCompletion(capability.promise)
		}
		for _, item := range items {
			pc := r.promiseResolveValue(item)
			if pc.Abrupt() {
				return pc
			}
			onFulfilled := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
				return r.CallValue(capability.resolve, _undefined, call.Argument(0))
			})
			onRejected := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
				return r.CallValue(capability.reject, _undefined, call.Argument(0))
			})
			r.performPromiseThen(pc.Value.(*Object), onFulfilled, onRejected, nil)
		}
		return normalCompletion(capability.promise)
	})

	r.putFunc(proto, "then", 2, func(call FunctionCall) Completion {
		promise, ok := call.This.(*Object)
		if !ok {
			return r.throwTypeError("Promise.prototype.then called on non-object")
		}
		if _, isPromise := promise.self.(*promiseObject); !isPromise {
			return r.throwTypeError("Method Promise.prototype.then called on incompatible receiver %s", call.This.String())
		}
		ctorObj, sc := r.speciesConstructor(promise, r.intrinsic(intrPromise))
		if sc.Abrupt() {
			return sc
		}
		capability, cc := r.newPromiseCapability(ctorObj)
		if cc.Abrupt() {
			return cc
		}
		var onFulfilled, onRejected *Object
		if f, ok := call.Argument(0).(*Object); ok && f.isCallable() {
			onFulfilled = f
		}
		if f, ok := call.Argument(1).(*Object); ok && f.isCallable() {
			onRejected = f
		}
		return normalCompletion(r.performPromiseThen(promise, onFulfilled, onRejected, capability))
	})
	r.putFunc(proto, "catch", 1, func(call FunctionCall) Completion {
		return r.invoke(call.This, strKey("then"), []Value{_undefined, call.Argument(0)})
	})
	r.putFunc(proto, "finally", 1, func(call FunctionCall) Completion {
		promise, ok := call.This.(*Object)
		if !ok {
			return r.throwTypeError("Promise.prototype.finally called on non-object")
		}
		onFinally := call.Argument(0)
		fin, isFn := onFinally.(*Object)
		if !isFn || !fin.isCallable() {
			return r.invoke(promise, strKey("then"), []Value{onFinally, onFinally})
		}
		thenFinally := r.newNativeFunc("", 1, func(inner FunctionCall) Completion {
			value := inner.Argument(0)
			rc := r.call(fin, _undefined, nil)
			if rc.Abrupt() {
				return rc
			}
			pc := r.promiseResolveValue(rc.Value)
			if pc.Abrupt() {
				return pc
			}
			passthrough := r.newNativeFunc("", 0, func(FunctionCall) Completion {
				return normalCompletion(value)
			})
			return r.invoke(pc.Value, strKey("then"), []Value{passthrough})
		})
		catchFinally := r.newNativeFunc("", 1, func(inner FunctionCall) Completion {
			reason := inner.Argument(0)
			rc := r.call(fin, _undefined, nil)
			if rc.Abrupt() {
				return rc
			}
			pc := r.promiseResolveValue(rc.Value)
			if pc.Abrupt() {
				return pc
			}
			rethrow := r.newNativeFunc("", 0, func(FunctionCall) Completion {
				return throwCompletion(reason)
			})
			return r.invoke(pc.Value, strKey("then"), []Value{rethrow})
		})
		return r.invoke(promise, strKey("then"), []Value{thenFinally, catchFinally})
	})
}

func argString(args []Value, idx int) string {
	if idx < len(args) {
		return args[idx].String()
	}
	return "undefined"
}

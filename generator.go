package harmony

type generatorState uint8

const (
	genSuspendedStart generatorState = iota
	genSuspendedYield
	genExecuting
	genCompleted
)

// generatorObject reifies a suspended function body. Resumption hands a
// completion into the body at its save point; the body hands back the next
// yielded value or its final completion.
type generatorObject struct {
	baseObject

	state generatorState
	co    *coroutine

	fn   *funcObject
	this Value
	args []Value
}

func (r *Realm) generatorFunctionCall(f *funcObject, this Value, args []Value) Completion {
	protoC := f.val.self.get(strKey("prototype"), f.val)
	if protoC.Abrupt() {
		return protoC
	}
	proto, ok := protoC.Value.(*Object)
	if !ok {
		proto = r.intrinsic(intrGeneratorPrototype)
	}
	v := &Object{realm: r}
	gen := &generatorObject{
		state: genSuspendedStart,
		co:    newCoroutine(),
		fn:    f,
		this:  this,
		args:  args,
	}
	gen.class = classGenerator
	gen.val = v
	gen.prototype = proto
	gen.extensible = true
	gen.init()
	v.self = gen
	return normalCompletion(v)
}

func (r *Realm) generatorBody(gen *generatorObject) func() Completion {
	f := gen.fn
	return func() Completion {
		ctx, env := r.prepareForOrdinaryCall(f, _undefined)
		ctx.generator = gen.co
		defer r.agent.popContext()
		r.ordinaryCallBindThis(f, env, gen.this)
		return r.evaluateFunctionBody(f, ctx, gen.args)
	}
}

// generatorResume drives one resumption. mode is "next", "throw" or
// "return"; injected is the completion delivered at the save point.
func (r *Realm) generatorResume(v Value, mode string, injected Completion) Completion {
	obj, ok := v.(*Object)
	if !ok {
		return r.throwTypeError("Generator method called on non-generator")
	}
	gen, ok := obj.self.(*generatorObject)
	if !ok {
		return r.throwTypeError("Generator method called on incompatible receiver %s", v.String())
	}
	switch gen.state {
	case genExecuting:
		return r.throwTypeError("Generator is already running")
	case genCompleted:
		switch mode {
		case "throw":
			return throwCompletion(injected.ValueOrUndefined())
		case "return":
			return normalCompletion(r.createIterResultObject(injected.ValueOrUndefined(), true))
		}
		return normalCompletion(r.createIterResultObject(_undefined, true))
	}

	var msg coroutineMsg
	if gen.state == genSuspendedStart {
		if mode != "next" {
			gen.state = genCompleted
			gen.co.abandon()
			if mode == "throw" {
				return throwCompletion(injected.ValueOrUndefined())
			}
			return normalCompletion(r.createIterResultObject(injected.ValueOrUndefined(), true))
		}
		gen.state = genExecuting
		msg = gen.co.start(r.generatorBody(gen))
	} else {
		gen.state = genExecuting
		msg = gen.co.resume(injected)
	}

	if msg.done {
		gen.state = genCompleted
		c := msg.completion
		switch c.Type {
		case CompletionThrow:
			return c
		case CompletionReturn, CompletionNormal:
			return normalCompletion(r.createIterResultObject(c.ValueOrUndefined(), true))
		}
		return normalCompletion(r.createIterResultObject(_undefined, true))
	}
	gen.state = genSuspendedYield
	return normalCompletion(r.createIterResultObject(msg.completion.ValueOrUndefined(), false))
}

// ---------- async functions ----------

func (r *Realm) asyncFunctionCall(f *funcObject, this Value, args []Value) Completion {
	capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
	if cc.Abrupt() {
		return cc
	}
	co := newCoroutine()
	body := func() Completion {
		ctx, env := r.prepareForOrdinaryCall(f, _undefined)
		ctx.generator = co
		defer r.agent.popContext()
		r.ordinaryCallBindThis(f, env, this)
		return r.evaluateFunctionBody(f, ctx, args)
	}
	msg := co.start(body)
	r.asyncStep(co, capability, msg)
	return normalCompletion(capability.promise)
}

// asyncStep settles the capability when the body finished, or arranges the
// next resumption through the job queue when the body awaits. An await on an
// already-settled promise still defers by one job.
func (r *Realm) asyncStep(co *coroutine, capability *promiseCapability, msg coroutineMsg) {
	if msg.done {
		c := msg.completion
		switch c.Type {
		case CompletionThrow:
			r.CallValue(capability.reject, _undefined, c.ValueOrUndefined())
		default:
			r.CallValue(capability.resolve, _undefined, c.ValueOrUndefined())
		}
		return
	}
	inner := r.promiseResolveValue(msg.completion.ValueOrUndefined())
	if inner.Abrupt() {
		next := co.resume(inner)
		r.asyncStep(co, capability, next)
		return
	}
	onFulfilled := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
		next := co.resume(normalCompletion(call.Argument(0)))
		r.asyncStep(co, capability, next)
		return normalCompletion(_undefined)
	})
	onRejected := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
		next := co.resume(throwCompletion(call.Argument(0)))
		r.asyncStep(co, capability, next)
		return normalCompletion(_undefined)
	})
	r.performPromiseThen(inner.Value.(*Object), onFulfilled, onRejected, nil)
}

// ---------- async generators ----------

// asyncGeneratorObject resumes like a generator but surfaces every step as a
// promise of an iterator result.
type asyncGeneratorObject struct {
	baseObject

	state generatorState
	co    *coroutine

	fn   *funcObject
	this Value
	args []Value
}

func (r *Realm) asyncGeneratorFunctionCall(f *funcObject, this Value, args []Value) Completion {
	v := &Object{realm: r}
	gen := &asyncGeneratorObject{
		state: genSuspendedStart,
		co:    newCoroutine(),
		fn:    f,
		this:  this,
		args:  args,
	}
	gen.class = classGenerator
	gen.val = v
	gen.prototype = r.intrinsic(intrObjectPrototype)
	gen.extensible = true
	gen.init()
	v.self = gen

	next := r.newNativeFunc("next", 1, func(call FunctionCall) Completion {
		return r.asyncGeneratorResume(gen, normalCompletion(call.Argument(0)), "next")
	})
	gen._putProp("next", next, true, false, true)
	ret := r.newNativeFunc("return", 1, func(call FunctionCall) Completion {
		return r.asyncGeneratorResume(gen, returnCompletion(call.Argument(0)), "return")
	})
	gen._putProp("return", ret, true, false, true)
	throwFn := r.newNativeFunc("throw", 1, func(call FunctionCall) Completion {
		return r.asyncGeneratorResume(gen, throwCompletion(call.Argument(0)), "throw")
	})
	gen._putProp("throw", throwFn, true, false, true)
	gen._putSym(symAsyncIterator, r.newNativeFunc("[Symbol.asyncIterator]", 0, func(call FunctionCall) Completion {
		return normalCompletion(v)
	}), true, false, true)
	return normalCompletion(v)
}

func (r *Realm) asyncGeneratorResume(gen *asyncGeneratorObject, injected Completion, mode string) Completion {
	capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
	if cc.Abrupt() {
		return cc
	}
	if gen.state == genCompleted {
		switch mode {
		case "throw":
			r.CallValue(capability.reject, _undefined, injected.ValueOrUndefined())
		default:
			r.CallValue(capability.resolve, _undefined, r.createIterResultObject(injected.ValueOrUndefined(), true))
		}
		return normalCompletion(capability.promise)
	}

	var msg coroutineMsg
	if gen.state == genSuspendedStart {
		if mode != "next" {
			gen.state = genCompleted
			gen.co.abandon()
			if mode == "throw" {
				r.CallValue(capability.reject, _undefined, injected.ValueOrUndefined())
			} else {
				r.CallValue(capability.resolve, _undefined, r.createIterResultObject(injected.ValueOrUndefined(), true))
			}
			return normalCompletion(capability.promise)
		}
		gen.state = genExecuting
		f := gen.fn
		msg = gen.co.start(func() Completion {
			ctx, env := r.prepareForOrdinaryCall(f, _undefined)
			ctx.generator = gen.co
			defer r.agent.popContext()
			r.ordinaryCallBindThis(f, env, gen.this)
			return r.evaluateFunctionBody(f, ctx, gen.args)
		})
	} else {
		gen.state = genExecuting
		msg = gen.co.resume(injected)
	}
	r.asyncGeneratorStep(gen, capability, msg)
	return normalCompletion(capability.promise)
}

func (r *Realm) asyncGeneratorStep(gen *asyncGeneratorObject, capability *promiseCapability, msg coroutineMsg) {
	if msg.done {
		gen.state = genCompleted
		c := msg.completion
		if c.Type == CompletionThrow {
			r.CallValue(capability.reject, _undefined, c.ValueOrUndefined())
		} else {
			r.CallValue(capability.resolve, _undefined, r.createIterResultObject(c.ValueOrUndefined(), true))
		}
		return
	}
	if msg.await {
		inner := r.promiseResolveValue(msg.completion.ValueOrUndefined())
		if inner.Abrupt() {
			next := gen.co.resume(inner)
			r.asyncGeneratorStep(gen, capability, next)
			return
		}
		onFulfilled := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
			next := gen.co.resume(normalCompletion(call.Argument(0)))
			r.asyncGeneratorStep(gen, capability, next)
			return normalCompletion(_undefined)
		})
		onRejected := r.newNativeFunc("", 1, func(call FunctionCall) Completion {
			next := gen.co.resume(throwCompletion(call.Argument(0)))
			r.asyncGeneratorStep(gen, capability, next)
			return normalCompletion(_undefined)
		})
		r.performPromiseThen(inner.Value.(*Object), onFulfilled, onRejected, nil)
		return
	}
	gen.state = genSuspendedYield
	r.CallValue(capability.resolve, _undefined, r.createIterResultObject(msg.completion.ValueOrUndefined(), false))
}

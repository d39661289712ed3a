package harmony

type promiseState uint8

const (
	promisePending promiseState = iota
	promiseFulfilled
	promiseRejected
)

func (s promiseState) String() string {
	switch s {
	case promiseFulfilled:
		return "fulfilled"
	case promiseRejected:
		return "rejected"
	}
	return "pending"
}

// promiseObject holds the promise state machine: result slot, reaction
// queues and the already-resolved latch shared with its resolving functions.
type promiseObject struct {
	baseObject

	state            promiseState
	result           Value
	fulfillReactions []*promiseReaction
	rejectReactions  []*promiseReaction
	isHandled        bool
}

type promiseReaction struct {
	capability *promiseCapability
	handler    *Object // nil means identity/thrower per reaction type
	typ        promiseState
}

// promiseCapability is the {promise, resolve, reject} triple.
type promiseCapability struct {
	promise Value
	resolve Value
	reject  Value
}

func (r *Realm) newPromiseObject(proto *Object) *Object {
	v := &Object{realm: r}
	p := &promiseObject{}
	p.class = classPromise
	p.val = v
	p.prototype = proto
	p.extensible = true
	p.init()
	v.self = p
	return v
}

// newPromiseCapability runs NewPromiseCapability(C).
func (r *Realm) newPromiseCapability(ctor *Object) (*promiseCapability, Completion) {
	if !ctor.isConstructor() {
		return nil, r.throwTypeError("Promise capability requires a constructor")
	}
	capability := &promiseCapability{}
	executor := r.newNativeFunc("", 2, func(call FunctionCall) Completion {
		if capability.resolve != nil || capability.reject != nil {
			return r.throwTypeError("Promise executor has already been invoked with non-undefined arguments")
		}
		capability.resolve = call.Argument(0)
		capability.reject = call.Argument(1)
		return normalCompletion(_undefined)
	})
	pc := r.construct(ctor, []Value{executor}, nil)
	if pc.Abrupt() {
		return nil, pc
	}
	if f, ok := capability.resolve.(*Object); !ok || !f.isCallable() {
		return nil, r.throwTypeError("Promise resolve function is not callable")
	}
	if f, ok := capability.reject.(*Object); !ok || !f.isCallable() {
		return nil, r.throwTypeError("Promise reject function is not callable")
	}
	capability.promise = pc.Value
	return capability, emptyCompletion
}

// createResolvingFunctions builds the paired resolve/reject functions with a
// shared already-resolved latch.
func (r *Realm) createResolvingFunctions(promise *Object) (resolve, reject *Object) {
	alreadyResolved := false
	resolve = r.newNativeFunc("", 1, func(call FunctionCall) Completion {
		if alreadyResolved {
			return normalCompletion(_undefined)
		}
		alreadyResolved = true
		resolution := call.Argument(0)
		if resolution == promise {
			r.rejectPromise(promise, r.NewTypeError("Chaining cycle detected for promise"))
			return normalCompletion(_undefined)
		}
		resObj, ok := resolution.(*Object)
		if !ok {
			r.fulfillPromise(promise, resolution)
			return normalCompletion(_undefined)
		}
		thenC := resObj.self.get(strKey("then"), resObj)
		if thenC.Abrupt() {
			r.rejectPromise(promise, thenC.ValueOrUndefined())
			return normalCompletion(_undefined)
		}
		thenFn, ok := thenC.Value.(*Object)
		if !ok || !thenFn.isCallable() {
			r.fulfillPromise(promise, resolution)
			return normalCompletion(_undefined)
		}
		r.agent.enqueueJob(r, r.promiseResolveThenableJob(promise, resObj, thenFn))
		return normalCompletion(_undefined)
	})
	reject = r.newNativeFunc("", 1, func(call FunctionCall) Completion {
		if alreadyResolved {
			return normalCompletion(_undefined)
		}
		alreadyResolved = true
		r.rejectPromise(promise, call.Argument(0))
		return normalCompletion(_undefined)
	})
	return resolve, reject
}

func (r *Realm) fulfillPromise(promise *Object, value Value) {
	p := promise.self.(*promiseObject)
	reactions := p.fulfillReactions
	p.result = value
	p.fulfillReactions = nil
	p.rejectReactions = nil
	p.state = promiseFulfilled
	r.triggerPromiseReactions(reactions, value)
}

func (r *Realm) rejectPromise(promise *Object, reason Value) {
	p := promise.self.(*promiseObject)
	reactions := p.rejectReactions
	p.result = reason
	p.fulfillReactions = nil
	p.rejectReactions = nil
	p.state = promiseRejected
	if !p.isHandled && r.agent.hooks.PromiseRejectionTracker != nil {
		r.agent.hooks.PromiseRejectionTracker(promise, "reject")
	}
	r.triggerPromiseReactions(reactions, reason)
}

func (r *Realm) triggerPromiseReactions(reactions []*promiseReaction, argument Value) {
	for _, reaction := range reactions {
		r.agent.enqueueJob(r, r.promiseReactionJob(reaction, argument))
	}
}

// promiseReactionJob is the PromiseReactionJob kind.
func (r *Realm) promiseReactionJob(reaction *promiseReaction, argument Value) func() {
	return func() {
		var handlerResult Completion
		if reaction.handler == nil {
			if reaction.typ == promiseFulfilled {
				handlerResult = normalCompletion(argument)
			} else {
				handlerResult = throwCompletion(argument)
			}
		} else {
			handlerResult = r.call(reaction.handler, _undefined, []Value{argument})
		}
		if reaction.capability == nil {
			return
		}
		if handlerResult.Throw() {
			r.CallValue(reaction.capability.reject, _undefined, handlerResult.ValueOrUndefined())
		} else {
			r.CallValue(reaction.capability.resolve, _undefined, handlerResult.ValueOrUndefined())
		}
	}
}

// promiseResolveThenableJob is the PromiseResolveThenableJob kind.
func (r *Realm) promiseResolveThenableJob(promise, thenable *Object, then *Object) func() {
	return func() {
		resolve, reject := r.createResolvingFunctions(promise)
		c := r.call(then, thenable, []Value{resolve, reject})
		if c.Throw() {
			r.CallValue(reject, _undefined, c.ValueOrUndefined())
		}
	}
}

// performPromiseThen registers reactions on a promise object. resultCapability
// may be nil for internal registrations (await) whose result is unobservable.
func (r *Realm) performPromiseThen(promise *Object, onFulfilled, onRejected *Object, resultCapability *promiseCapability) Value {
	p, ok := promise.self.(*promiseObject)
	if !ok {
		return _undefined
	}
	fulfillReaction := &promiseReaction{capability: resultCapability, handler: onFulfilled, typ: promiseFulfilled}
	rejectReaction := &promiseReaction{capability: resultCapability, handler: onRejected, typ: promiseRejected}
	switch p.state {
	case promisePending:
		p.fulfillReactions = append(p.fulfillReactions, fulfillReaction)
		p.rejectReactions = append(p.rejectReactions, rejectReaction)
	case promiseFulfilled:
		r.agent.enqueueJob(r, r.promiseReactionJob(fulfillReaction, p.result))
	case promiseRejected:
		if !p.isHandled && r.agent.hooks.PromiseRejectionTracker != nil {
			r.agent.hooks.PromiseRejectionTracker(promise, "handle")
		}
		r.agent.enqueueJob(r, r.promiseReactionJob(rejectReaction, p.result))
	}
	p.isHandled = true
	if resultCapability == nil {
		return _undefined
	}
	return resultCapability.promise
}

// promiseResolveValue is PromiseResolve with the %Promise% constructor.
func (r *Realm) promiseResolveValue(v Value) Completion {
	if obj, ok := v.(*Object); ok {
		if _, isPromise := obj.self.(*promiseObject); isPromise {
			ctorC := obj.self.get(strKey("constructor"), obj)
			if ctorC.Abrupt() {
				return ctorC
			}
			if ctorC.Value == r.intrinsic(intrPromise) {
				return normalCompletion(obj)
			}
		}
	}
	capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
	if cc.Abrupt() {
		return cc
	}
	if c := r.CallValue(capability.resolve, _undefined, v); c.Abrupt() {
		return c
	}
	return normalCompletion(capability.promise)
}

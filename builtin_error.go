package harmony

func (r *Realm) initErrorBuiltins() {
	errProto := r.intrinsic(intrErrorPrototype)

	makeErrorCtor := func(name string, protoID intrinsicID, ctorID intrinsicID) {
		proto := r.intrinsic(protoID)
		targetPut(proto, "name", newStringValue(name))
		targetPut(proto, "message", stringEmpty)
		ctor := r.newNativeCtor(name, 1,
			func(call FunctionCall) Completion {
				return r.constructError(protoID, name, call.Arguments, nil)
			},
			func(args []Value, newTarget *Object) Completion {
				return r.constructError(protoID, name, args, newTarget)
			})
		r.wireConstructor(ctor, proto, ctorID, protoID)
	}

	makeErrorCtor("Error", intrErrorPrototype, intrError)
	makeErrorCtor("TypeError", intrTypeErrorPrototype, intrTypeError)
	makeErrorCtor("RangeError", intrRangeErrorPrototype, intrRangeError)
	makeErrorCtor("ReferenceError", intrReferenceErrorPrototype, intrReferenceError)
	makeErrorCtor("SyntaxError", intrSyntaxErrorPrototype, intrSyntaxError)
	makeErrorCtor("URIError", intrURIErrorPrototype, intrURIError)
	makeErrorCtor("EvalError", intrEvalErrorPrototype, intrEvalError)

	// The derived error prototypes chain to %Error.prototype%, which carries
	// toString.
	r.putFunc(errProto, "toString", 0, func(call FunctionCall) Completion {
		obj, ok := call.This.(*Object)
		if !ok {
			return r.throwTypeError("Error.prototype.toString called on non-object")
		}
		nameC := obj.self.get(strKey("name"), obj)
		if nameC.Abrupt() {
			return nameC
		}
		name := "Error"
		if nameC.Value != _undefined {
			sc := r.toString(nameC.Value)
			if sc.Abrupt() {
				return sc
			}
			name = sc.Value.String()
		}
		msgC := obj.self.get(strKey("message"), obj)
		if msgC.Abrupt() {
			return msgC
		}
		msg := ""
		if msgC.Value != _undefined {
			sc := r.toString(msgC.Value)
			if sc.Abrupt() {
				return sc
			}
			msg = sc.Value.String()
		}
		if msg == "" {
			return normalCompletion(newStringValue(name))
		}
		if name == "" {
			return normalCompletion(newStringValue(msg))
		}
		return normalCompletion(newStringValue(name + ": " + msg))
	})
}

func (r *Realm) constructError(protoID intrinsicID, name string, args []Value, newTarget *Object) Completion {
	var message string
	haveMessage := false
	if len(args) > 0 && args[0] != _undefined {
		sc := r.toString(args[0])
		if sc.Abrupt() {
			return sc
		}
		message = sc.Value.String()
		haveMessage = true
	}
	obj := r.newErrorObject(protoID, name, message)
	if !haveMessage {
		// No own message property when the argument was absent.
		obj.self.(*errorObject).removeProp(strKey("message"))
	}
	if newTarget != nil {
		pc := newTarget.self.get(strKey("prototype"), newTarget)
		if pc.Abrupt() {
			return pc
		}
		if p, ok := pc.Value.(*Object); ok {
			obj.self.(*errorObject).prototype = p
		}
	}
	return normalCompletion(obj)
}

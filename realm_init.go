package harmony

// initIntrinsics builds the realm's intrinsics in topological order:
// %Object.prototype% first, then %Function.prototype%, then everything that
// hangs off them, wiring constructor/prototype cross-links as it goes.
func (r *Realm) initIntrinsics() {
	// Root of the prototype chain.
	objProto := &Object{realm: r}
	op := &baseObject{class: classObject, val: objProto, extensible: true}
	op.init()
	objProto.self = op
	r.intrinsics[intrObjectPrototype] = objProto

	// %Function.prototype% is callable and returns undefined.
	fnProto := &Object{realm: r}
	fp := &nativeFuncObject{f: func(FunctionCall) Completion {
		return normalCompletion(_undefined)
	}}
	fp.class = classFunction
	fp.val = fnProto
	fp.prototype = objProto
	fp.extensible = true
	fp.init()
	fnProto.self = fp
	r.intrinsics[intrFunctionPrototype] = fnProto

	// %ThrowTypeError%
	thrower := r.newNativeFunc("", 0, func(FunctionCall) Completion {
		return r.throwTypeError("'caller', 'callee', and 'arguments' properties may not be accessed on strict mode functions or the arguments objects for calls to them")
	})
	thrower.self.preventExtensions()
	r.intrinsics[intrThrowTypeError] = thrower

	// Prototype objects for the remaining intrinsics, created before their
	// constructors so cross-links can be installed in one pass.
	r.intrinsics[intrIteratorPrototype] = r.newObjectWithProto(objProto)
	r.intrinsics[intrArrayIteratorPrototype] = r.newObjectWithProto(r.intrinsics[intrIteratorPrototype])
	r.intrinsics[intrStringIteratorPrototype] = r.newObjectWithProto(r.intrinsics[intrIteratorPrototype])
	r.intrinsics[intrGeneratorPrototype] = r.newObjectWithProto(r.intrinsics[intrIteratorPrototype])
	r.intrinsics[intrNumberPrototype] = r.newPrimitiveObject(intToValue(0), objProto, classNumber)
	r.intrinsics[intrBooleanPrototype] = r.newPrimitiveObject(valueFalse, objProto, classBoolean)
	stringProto := r.newStringExotic(stringEmpty)
	stringProto.self.(*stringObject).prototype = objProto
	r.intrinsics[intrStringPrototype] = stringProto
	r.intrinsics[intrSymbolPrototype] = r.newObjectWithProto(objProto)
	r.intrinsics[intrBigIntPrototype] = r.newObjectWithProto(objProto)
	r.intrinsics[intrErrorPrototype] = r.newObjectWithProto(objProto)
	r.intrinsics[intrTypeErrorPrototype] = r.newObjectWithProto(r.intrinsics[intrErrorPrototype])
	r.intrinsics[intrRangeErrorPrototype] = r.newObjectWithProto(r.intrinsics[intrErrorPrototype])
	r.intrinsics[intrReferenceErrorPrototype] = r.newObjectWithProto(r.intrinsics[intrErrorPrototype])
	r.intrinsics[intrSyntaxErrorPrototype] = r.newObjectWithProto(r.intrinsics[intrErrorPrototype])
	r.intrinsics[intrURIErrorPrototype] = r.newObjectWithProto(r.intrinsics[intrErrorPrototype])
	r.intrinsics[intrEvalErrorPrototype] = r.newObjectWithProto(r.intrinsics[intrErrorPrototype])
	r.intrinsics[intrRegExpPrototype] = r.newObjectWithProto(objProto)
	r.intrinsics[intrPromisePrototype] = r.newObjectWithProto(objProto)

	// %Array.prototype% is itself an array exotic object.
	arrProtoVal := &Object{realm: r}
	arrProto := &arrayObject{lengthWritable: true}
	arrProto.class = classArray
	arrProto.val = arrProtoVal
	arrProto.prototype = objProto
	arrProto.extensible = true
	arrProto.init()
	arrProtoVal.self = arrProto
	r.intrinsics[intrArrayPrototype] = arrProtoVal

	r.initObjectBuiltins()
	r.initFunctionBuiltins()
	r.initIteratorBuiltins()
	r.initArrayBuiltins()
	r.initStringBuiltins()
	r.initNumberBuiltins()
	r.initBooleanBuiltins()
	r.initSymbolBuiltins()
	r.initBigIntBuiltins()
	r.initErrorBuiltins()
	r.initMathBuiltins()
	r.initJSONBuiltins()
	r.initRegExpBuiltins()
	r.initPromiseBuiltins()
	r.initGeneratorBuiltins()
	r.initReflectBuiltins()

	r.initGlobalObject()
}

// putFunc installs a built-in method with the given arity.
func (r *Realm) putFunc(target *Object, name string, length int, fn func(FunctionCall) Completion) {
	f := r.newNativeFunc(name, length, fn)
	targetPut(target, name, f)
}

func targetPut(target *Object, name string, v Value) {
	switch impl := target.self.(type) {
	case *baseObject:
		impl._putProp(name, v, true, false, true)
	default:
		if bp, ok := target.self.(interface {
			_putProp(string, Value, bool, bool, bool)
		}); ok {
			bp._putProp(name, v, true, false, true)
		}
	}
}

// putSymFunc installs a well-known-symbol method.
func (r *Realm) putSymFunc(target *Object, sym *valueSymbol, name string, length int, fn func(FunctionCall) Completion) {
	f := r.newNativeFunc(name, length, fn)
	if bp, ok := target.self.(interface {
		_putSym(*valueSymbol, Value, bool, bool, bool)
	}); ok {
		bp._putSym(sym, f, true, false, true)
	}
}

// putGetter installs a built-in getter.
func (r *Realm) putGetter(target *Object, name string, fn func(FunctionCall) Completion) {
	getter := r.newNativeFunc("get "+name, 0, fn)
	if bp, ok := target.self.(interface {
		_putAccessor(string, *Object, *Object, bool, bool)
	}); ok {
		bp._putAccessor(name, getter, nil, false, true)
	}
}

// wireConstructor installs the constructor<->prototype cross links and
// records both objects in the intrinsics table.
func (r *Realm) wireConstructor(ctor, proto *Object, ctorID, protoID intrinsicID) {
	if f, ok := ctor.self.(interface {
		putProp(propertyKey, *property)
	}); ok {
		f.putProp(strKey("prototype"), &property{value: proto})
	}
	targetPut(proto, "constructor", ctor)
	r.intrinsics[ctorID] = ctor
	r.intrinsics[protoID] = proto
}

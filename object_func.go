package harmony

import (
	"github.com/joeyhub/harmony/ast"
)

type thisMode uint8

const (
	thisModeLexical thisMode = iota
	thisModeStrict
	thisModeGlobal
)

type funcKind uint8

const (
	funcNormal funcKind = iota
	funcClassConstructor
	funcGenerator
	funcAsync
	funcAsyncGenerator
)

type ctorKind uint8

const (
	ctorNone ctorKind = iota
	ctorBase
	ctorDerived
)

type baseFuncObject struct {
	baseObject
}

func (f *baseFuncObject) export() interface{} {
	return nil
}

func (f *baseFuncObject) initFunc(name string, length int) {
	f._putProp("length", intToValue(int64(length)), false, false, true)
	f._putProp("name", newStringValue(name), false, false, true)
}

// funcObject is a function defined in source text: parsed parameters and
// body, the captured environment, and the calling convention slots.
type funcObject struct {
	baseFuncObject

	params   []ast.Pattern
	body     []ast.Statement
	exprBody ast.Expression
	source   string

	env        environmentRecord
	realm      *Realm
	srcFile    *SrcFile
	strict     bool
	thisMode   thisMode
	kind       funcKind
	ctorKind   ctorKind
	homeObject *Object

	scriptOrModule interface{}
}

func (f *funcObject) call(call FunctionCall) Completion {
	if f.kind == funcClassConstructor {
		return f.realm.throwTypeError("Class constructor cannot be invoked without 'new'")
	}
	return f.realm.ordinaryCallEvaluateFunction(f, call.This, call.Arguments, nil)
}

func (f *funcObject) construct(args []Value, newTarget *Object) Completion {
	if f.ctorKind == ctorNone {
		return f.realm.throwTypeError("%s is not a constructor", f.val.String())
	}
	r := f.realm

	var thisArgument Value
	if f.ctorKind == ctorBase {
		protoC := r.ordinaryCreateFromConstructor(newTarget, intrObjectPrototype)
		if protoC.Abrupt() {
			return protoC
		}
		thisArgument = protoC.Value
	}

	return r.ordinaryConstructEvaluate(f, thisArgument, args, newTarget)
}

// ordinaryCreateFromConstructor allocates an ordinary object whose prototype
// is newTarget.prototype falling back to the given intrinsic.
func (r *Realm) ordinaryCreateFromConstructor(newTarget *Object, fallback intrinsicID) Completion {
	proto := r.intrinsic(fallback)
	if newTarget != nil {
		pc := newTarget.self.get(strKey("prototype"), newTarget)
		if pc.Abrupt() {
			return pc
		}
		if p, ok := pc.Value.(*Object); ok {
			proto = p
		} else if newTarget.realm != r {
			proto = newTarget.realm.intrinsic(fallback)
		}
	}
	return normalCompletion(r.newObjectWithProto(proto))
}

// makeConstructor installs the prototype property and the back link.
func (r *Realm) makeConstructor(f *funcObject, writableProto bool, proto *Object) {
	f.ctorKind = ctorBase
	if proto == nil {
		proto = r.NewObject()
		proto.self.(*baseObject)._putProp("constructor", f.val, true, false, true)
	}
	f._putProp("prototype", proto, writableProto, false, false)
}

// nativeFuncObject wraps a Go function as a callable.
type nativeFuncObject struct {
	baseFuncObject

	f         func(FunctionCall) Completion
	construct func(args []Value, newTarget *Object) Completion
}

func (f *nativeFuncObject) call(call FunctionCall) Completion {
	return f.f(call)
}

// nativeCtorObject additionally implements [[Construct]].
type nativeCtorObject struct {
	nativeFuncObject
}

func (f *nativeCtorObject) construct(args []Value, newTarget *Object) Completion {
	return f.nativeFuncObject.construct(args, newTarget)
}

func (r *Realm) newNativeFunc(name string, length int, fn func(FunctionCall) Completion) *Object {
	v := &Object{realm: r}
	f := &nativeFuncObject{f: fn}
	f.class = classFunction
	f.val = v
	f.prototype = r.intrinsic(intrFunctionPrototype)
	f.extensible = true
	f.init()
	v.self = f
	f.initFunc(name, length)
	return v
}

func (r *Realm) newNativeCtor(name string, length int, fn func(FunctionCall) Completion, construct func(args []Value, newTarget *Object) Completion) *Object {
	v := &Object{realm: r}
	f := &nativeCtorObject{}
	f.f = fn
	f.nativeFuncObject.construct = construct
	f.class = classFunction
	f.val = v
	f.prototype = r.intrinsic(intrFunctionPrototype)
	f.extensible = true
	f.init()
	v.self = f
	f.initFunc(name, length)
	return v
}

// boundFuncObject prepends the bound this and arguments.
type boundFuncObject struct {
	baseFuncObject

	target    *Object
	boundThis Value
	boundArgs []Value
}

func (f *boundFuncObject) boundTarget() *Object { return f.target }

func (f *boundFuncObject) call(call FunctionCall) Completion {
	args := make([]Value, 0, len(f.boundArgs)+len(call.Arguments))
	args = append(args, f.boundArgs...)
	args = append(args, call.Arguments...)
	return f.val.realm.call(f.target, f.boundThis, args)
}

// boundCtorObject adds [[Construct]] when the bound target has one.
type boundCtorObject struct {
	*boundFuncObject
}

func (f *boundCtorObject) construct(args []Value, newTarget *Object) Completion {
	all := make([]Value, 0, len(f.boundArgs)+len(args))
	all = append(all, f.boundArgs...)
	all = append(all, args...)
	if newTarget == f.val {
		newTarget = f.target
	}
	return f.val.realm.construct(f.target, all, newTarget)
}

// boundFunctionCreate builds the bound-function exotic object.
func (r *Realm) boundFunctionCreate(target *Object, boundThis Value, boundArgs []Value) Completion {
	if !target.isCallable() {
		return r.throwTypeError("Bind must be called on a function")
	}
	protoC := target.self.getPrototypeOf()
	if protoC.Abrupt() {
		return protoC
	}
	v := &Object{realm: r}
	f := &boundFuncObject{
		target:    target,
		boundThis: boundThis,
		boundArgs: boundArgs,
	}
	f.class = classFunction
	f.val = v
	if p, ok := protoC.Value.(*Object); ok {
		f.prototype = p
	}
	f.extensible = true
	f.init()
	if _, ok := target.self.(constructible); ok {
		v.self = &boundCtorObject{f}
	} else {
		v.self = f
	}

	lengthC := target.self.get(strKey("length"), target)
	if lengthC.Abrupt() {
		return lengthC
	}
	length := int64(0)
	if isNumber(lengthC.Value) {
		length = int64(toIntegerOrInfinity(lengthC.Value)) - int64(len(boundArgs))
		if length < 0 {
			length = 0
		}
	}
	f._putProp("length", intToValue(length), false, false, true)

	nameC := target.self.get(strKey("name"), target)
	if nameC.Abrupt() {
		return nameC
	}
	name := ""
	if s, ok := nameC.Value.(valueString); ok {
		name = s.String()
	}
	f._putProp("name", newStringValue("bound "+name), false, false, true)
	return normalCompletion(v)
}

// instantiateFunctionObject creates a function object from a literal in the
// given scope.
func (r *Realm) instantiateFunctionObject(lit *ast.FunctionLiteral, scope environmentRecord, srcFile *SrcFile, scriptOrModule interface{}, strictCtx bool) *Object {
	strict := strictCtx || lit.Strict
	f := &funcObject{
		params:         lit.Params,
		body:           lit.Body,
		exprBody:       lit.ExprBody,
		source:         lit.Source,
		env:            scope,
		realm:          r,
		srcFile:        srcFile,
		strict:         strict,
		scriptOrModule: scriptOrModule,
	}
	v := &Object{realm: r}
	f.class = classFunction
	f.val = v
	f.prototype = r.intrinsic(intrFunctionPrototype)
	f.extensible = true
	f.init()
	v.self = f

	switch {
	case lit.Arrow:
		f.thisMode = thisModeLexical
	case strict:
		f.thisMode = thisModeStrict
	default:
		f.thisMode = thisModeGlobal
	}
	switch {
	case lit.Generator && lit.Async:
		f.kind = funcAsyncGenerator
	case lit.Generator:
		f.kind = funcGenerator
	case lit.Async:
		f.kind = funcAsync
	}

	f.initFunc(lit.Name, countExpectedArgs(lit.Params))

	if !lit.Arrow && !lit.Async && lit.Generator {
		proto := r.newObjectWithProto(r.intrinsic(intrGeneratorPrototype))
		f._putProp("prototype", proto, true, false, false)
	} else if !lit.Arrow && !lit.Async && f.kind == funcNormal {
		r.makeConstructor(f, true, nil)
	}
	return v
}

// countExpectedArgs computes the declared arity: formal parameters before the
// first default or rest pattern.
func countExpectedArgs(params []ast.Pattern) int {
	n := 0
	for _, p := range params {
		switch p.(type) {
		case *ast.DefaultPattern, *ast.RestPattern:
			return n
		}
		n++
	}
	return n
}

// makeMethod assigns the home object for super references.
func makeMethod(f *funcObject, home *Object) {
	f.homeObject = home
}

package harmony

import (
	"github.com/joeyhub/harmony/ast"
)

// prepareForOrdinaryCall pushes a fresh execution context whose lexical and
// variable environments are a new function environment over the callee's
// captured scope. The caller must pop the context on every exit path.
func (r *Realm) prepareForOrdinaryCall(f *funcObject, newTarget Value) (*executionContext, *functionEnv) {
	if newTarget == nil {
		newTarget = _undefined
	}
	env := newFunctionEnv(f.realm, f, newTarget, f.env)
	ctx := &executionContext{
		function:       f.val,
		realm:          f.realm,
		lexicalEnv:     env,
		variableEnv:    env,
		scriptOrModule: f.scriptOrModule,
	}
	r.agent.pushContext(ctx)
	return ctx, env
}

// ordinaryCallBindThis applies the this-mode rules.
func (r *Realm) ordinaryCallBindThis(f *funcObject, env *functionEnv, this Value) {
	if f.thisMode == thisModeLexical {
		return
	}
	var thisValue Value
	if f.thisMode == thisModeStrict {
		if this == nil {
			thisValue = _undefined
		} else {
			thisValue = this
		}
	} else {
		if this == nil || this == _undefined || this == _null {
			thisValue = f.realm.globalObject
		} else if obj, ok := this.(*Object); ok {
			thisValue = obj
		} else {
			oc := f.realm.toObject(this)
			// Primitive this conversion cannot fail for non-nullish values.
			thisValue = oc.Value
		}
	}
	env.bindThisValue(thisValue)
}

// ordinaryCallEvaluateFunction runs a [[Call]] on a source-text function:
// fresh context, this binding, declaration instantiation, body.
func (r *Realm) ordinaryCallEvaluateFunction(f *funcObject, this Value, args []Value, newTarget Value) Completion {
	switch f.kind {
	case funcGenerator:
		return r.generatorFunctionCall(f, this, args)
	case funcAsync:
		return r.asyncFunctionCall(f, this, args)
	case funcAsyncGenerator:
		return r.asyncGeneratorFunctionCall(f, this, args)
	}

	ctx, env := r.prepareForOrdinaryCall(f, newTarget)
	defer r.agent.popContext()
	r.ordinaryCallBindThis(f, env, this)

	c := r.evaluateFunctionBody(f, ctx, args)
	switch c.Type {
	case CompletionReturn:
		return normalCompletion(c.ValueOrUndefined())
	case CompletionThrow:
		return c
	}
	return normalCompletion(_undefined)
}

// evaluateFunctionBody performs declaration instantiation then evaluates the
// body statements (or the arrow expression body).
func (r *Realm) evaluateFunctionBody(f *funcObject, ctx *executionContext, args []Value) Completion {
	ev := &evaluator{realm: r, ctx: ctx, strict: f.strict, srcFile: f.srcFile, co: ctx.generator}
	if c := ev.functionDeclarationInstantiation(f, args); c.Abrupt() {
		return c
	}
	if f.exprBody != nil {
		c := ev.evalExpr(f.exprBody)
		if c.Abrupt() {
			return c
		}
		return returnCompletion(c.Value)
	}
	return ev.evalStatements(f.body)
}

// ordinaryConstructEvaluate implements the body of [[Construct]] for
// source-text functions: base constructors get a fresh this, derived ones
// leave it uninitialised until super().
func (r *Realm) ordinaryConstructEvaluate(f *funcObject, thisArgument Value, args []Value, newTarget *Object) Completion {
	ctx, env := r.prepareForOrdinaryCall(f, newTarget)
	defer r.agent.popContext()
	if f.ctorKind == ctorBase {
		r.ordinaryCallBindThis(f, env, thisArgument)
	}

	c := r.evaluateFunctionBody(f, ctx, args)
	if c.Type == CompletionReturn {
		if obj, ok := c.Value.(*Object); ok {
			return normalCompletion(obj)
		}
		if f.ctorKind == ctorDerived && c.Value != nil && c.Value != _undefined {
			return r.throwTypeError("Derived constructors may only return object or undefined")
		}
		return env.getThisBinding()
	}
	if c.Abrupt() {
		return c
	}
	return env.getThisBinding()
}

// ---------- class evaluation support ----------

// defineMethod creates the function for a class or object-literal method and
// ties its home object.
func (r *Realm) defineMethod(lit *ast.FunctionLiteral, scope environmentRecord, srcFile *SrcFile, scriptOrModule interface{}, home *Object, strict bool) *Object {
	fn := r.instantiateFunctionObject(lit, scope, srcFile, scriptOrModule, strict)
	if f, ok := fn.self.(*funcObject); ok {
		makeMethod(f, home)
	}
	return fn
}

package harmony

import (
	"github.com/joeyhub/harmony/ast"
)

// evalClassLiteral runs ClassDefinitionEvaluation. Class bodies are always
// strict.
func (e *evaluator) evalClassLiteral(t *ast.ClassLiteral) Completion {
	r := e.realm
	outerEnv := e.ctx.lexicalEnv
	classEnv := newDeclarativeEnv(r, outerEnv)
	if t.Name != "" {
		classEnv.createImmutableBinding(t.Name, true)
	}

	protoParent := r.intrinsic(intrObjectPrototype)
	ctorParent := r.intrinsic(intrFunctionPrototype)
	derived := false
	if t.SuperClass != nil {
		derived = true
		e.ctx.lexicalEnv = classEnv
		sc := e.evalExpr(t.SuperClass)
		e.ctx.lexicalEnv = outerEnv
		if sc.Abrupt() {
			return sc
		}
		switch super := sc.Value.(type) {
		case valueNull:
			protoParent = nil
		case *Object:
			if !super.isConstructor() {
				return r.throwTypeError("Class extends value %s is not a constructor or null", sc.Value.String())
			}
			protoC := super.self.get(strKey("prototype"), super)
			if protoC.Abrupt() {
				return protoC
			}
			switch pp := protoC.Value.(type) {
			case valueNull:
				protoParent = nil
			case *Object:
				protoParent = pp
			default:
				return r.throwTypeError("Class extends value does not have valid prototype property %s", protoC.Value.String())
			}
			ctorParent = super
		default:
			return r.throwTypeError("Class extends value %s is not a constructor or null", sc.Value.String())
		}
	}

	proto := r.newObjectWithProto(protoParent)

	var ctorLit *ast.FunctionLiteral
	ctorIndex := -1
	for i, el := range t.Body {
		if el.Static || el.Computed || el.Kind != ast.PropertyKindMethod {
			continue
		}
		if id, ok := el.Key.(*ast.Identifier); ok && id.Name == "constructor" {
			ctorLit = el.Value
			ctorIndex = i
		}
	}
	if ctorLit == nil {
		body := []ast.Statement{}
		if derived {
			// The default derived constructor forwards its arguments to
			// super.
			body = []ast.Statement{&ast.ExpressionStatement{
				Expression: &ast.CallExpression{
					Callee: &ast.SuperExpression{},
					Arguments: []ast.Expression{&ast.SpreadElement{
						Argument: &ast.Identifier{Name: "args"},
					}},
				},
			}}
			ctorLit = &ast.FunctionLiteral{
				Name:   t.Name,
				Params: []ast.Pattern{&ast.RestPattern{Target: &ast.IdentifierPattern{Name: "args"}}},
				Body:   body,
				Strict: true,
			}
		} else {
			ctorLit = &ast.FunctionLiteral{Name: t.Name, Body: body, Strict: true}
		}
	}

	fn := r.instantiateFunctionObject(&ast.FunctionLiteral{
		Idx:    ctorLit.Idx,
		Name:   t.Name,
		Params: ctorLit.Params,
		Body:   ctorLit.Body,
		Strict: true,
		Source: ctorLit.Source,
	}, classEnv, e.srcFile, e.ctx.scriptOrModule, true)
	f := fn.self.(*funcObject)
	f.kind = funcClassConstructor
	if derived {
		f.ctorKind = ctorDerived
	} else {
		f.ctorKind = ctorBase
	}
	makeMethod(f, proto)
	f.removeProp(strKey("prototype"))
	f._putProp("prototype", proto, false, false, false)
	f.prototype = ctorParent
	proto.self.(*baseObject)._putProp("constructor", fn, true, false, true)

	e.ctx.lexicalEnv = classEnv
	defer func() { e.ctx.lexicalEnv = outerEnv }()
	for i, el := range t.Body {
		if i == ctorIndex {
			continue
		}
		home := proto
		if el.Static {
			home = fn
		}
		key, kc := e.evalPropertyKey(el.Key, el.Computed)
		if kc.Abrupt() {
			return kc
		}
		method := r.defineMethod(el.Value, classEnv, e.srcFile, e.ctx.scriptOrModule, home, true)
		switch el.Kind {
		case ast.PropertyKindGet:
			if c := r.definePropertyOrThrow(home, key, PropertyDescriptor{
				Getter:       method,
				Enumerable:   FLAG_FALSE,
				Configurable: FLAG_TRUE,
			}); c.Abrupt() {
				return c
			}
		case ast.PropertyKindSet:
			if c := r.definePropertyOrThrow(home, key, PropertyDescriptor{
				Setter:       method,
				Enumerable:   FLAG_FALSE,
				Configurable: FLAG_TRUE,
			}); c.Abrupt() {
				return c
			}
		default:
			if c := r.definePropertyOrThrow(home, key, PropertyDescriptor{
				Value:        method,
				Writable:     FLAG_TRUE,
				Enumerable:   FLAG_FALSE,
				Configurable: FLAG_TRUE,
			}); c.Abrupt() {
				return c
			}
		}
	}

	if t.Name != "" {
		classEnv.initializeBinding(t.Name, fn)
	}
	return normalCompletion(fn)
}

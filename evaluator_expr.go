package harmony

import (
	"math"
	"math/big"

	"github.com/joeyhub/harmony/ast"
)

func (e *evaluator) evalExpr(expr ast.Expression) Completion {
	switch t := expr.(type) {
	case *ast.NullLiteral:
		return normalCompletion(_null)
	case *ast.BooleanLiteral:
		return normalCompletion(boolToValue(t.Value))
	case *ast.NumberLiteral:
		return normalCompletion(floatToValue(t.Value))
	case *ast.BigIntLiteral:
		b, _ := new(big.Int).SetString(t.Literal, 10)
		return normalCompletion(bigIntToValue(b))
	case *ast.StringLiteral:
		return normalCompletion(newStringValue(t.Value))
	case *ast.RegExpLiteral:
		return e.realm.newRegExpObject(t.Pattern, t.Flags)
	case *ast.TemplateLiteral:
		return e.evalTemplate(t)
	case *ast.Identifier:
		ref, c := getIdentifierReference(e.ctx.lexicalEnv, t.Name, e.strict)
		if c.Abrupt() {
			return c
		}
		return e.realm.getValue(ref)
	case *ast.ThisExpression:
		return e.resolveThisBinding()
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(t)
	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(t)
	case *ast.FunctionLiteral:
		return normalCompletion(e.realm.instantiateFunctionObject(t, e.ctx.lexicalEnv, e.srcFile, e.ctx.scriptOrModule, e.strict))
	case *ast.ClassLiteral:
		return e.evalClassLiteral(t)
	case *ast.MemberExpression:
		ref, c := e.evalRefExpr(t)
		if c.Abrupt() {
			return c
		}
		return e.realm.getValue(ref)
	case *ast.CallExpression:
		return e.evalCall(t)
	case *ast.NewExpression:
		return e.evalNew(t)
	case *ast.NewTargetExpression:
		env := getThisEnvironment(e.ctx.lexicalEnv)
		if fe, ok := env.(*functionEnv); ok && fe.newTarget != nil {
			return normalCompletion(fe.newTarget)
		}
		return normalCompletion(_undefined)
	case *ast.ImportCallExpression:
		return e.evalDynamicImport(t)
	case *ast.UnaryExpression:
		return e.evalUnary(t)
	case *ast.UpdateExpression:
		return e.evalUpdate(t)
	case *ast.BinaryExpression:
		return e.evalBinary(t)
	case *ast.LogicalExpression:
		return e.evalLogical(t)
	case *ast.ConditionalExpression:
		tc := e.evalExpr(t.Test)
		if tc.Abrupt() {
			return tc
		}
		if tc.Value.ToBoolean() {
			return e.evalExpr(t.Consequent)
		}
		return e.evalExpr(t.Alternate)
	case *ast.AssignExpression:
		return e.evalAssign(t)
	case *ast.SequenceExpression:
		var last Completion
		for _, sub := range t.Expressions {
			last = e.evalExpr(sub)
			if last.Abrupt() {
				return last
			}
		}
		return last
	case *ast.YieldExpression:
		return e.evalYield(t)
	case *ast.AwaitExpression:
		return e.evalAwait(t)
	case *ast.SpreadElement:
		return e.realm.throwSyntaxError("Unexpected token '...'")
	case *ast.SuperExpression:
		return e.realm.throwSyntaxError("'super' keyword unexpected here")
	}
	panic("unknown expression")
}

func (e *evaluator) resolveThisBinding() Completion {
	env := getThisEnvironment(e.ctx.lexicalEnv)
	switch t := env.(type) {
	case *functionEnv:
		return t.getThisBinding()
	case *globalEnv:
		return t.getThisBinding()
	case *moduleEnv:
		return t.getThisBinding()
	}
	return normalCompletion(_undefined)
}

// evalRefExpr produces a Reference for identifier and member expressions.
func (e *evaluator) evalRefExpr(expr ast.Expression) (*reference, Completion) {
	switch t := expr.(type) {
	case *ast.Identifier:
		return getIdentifierReference(e.ctx.lexicalEnv, t.Name, e.strict)
	case *ast.MemberExpression:
		if _, isSuper := t.Object.(*ast.SuperExpression); isSuper {
			return e.makeSuperPropertyReference(t)
		}
		bc := e.evalExpr(t.Object)
		if bc.Abrupt() {
			return nil, bc
		}
		key, kc := e.memberKey(t)
		if kc.Abrupt() {
			return nil, kc
		}
		switch bc.Value.(type) {
		case valueUndefined, valueNull:
			return nil, e.realm.throwTypeError("Cannot read properties of %s (reading '%s')", bc.Value.String(), key.String())
		}
		return &reference{base: bc.Value, name: key, strict: e.strict}, emptyCompletion
	}
	return nil, e.realm.throwReferenceError("Invalid left-hand side in assignment")
}

func (e *evaluator) memberKey(t *ast.MemberExpression) (propertyKey, Completion) {
	if !t.Computed {
		return strKey(t.Property.(*ast.Identifier).Name), emptyCompletion
	}
	kc := e.evalExpr(t.Property)
	if kc.Abrupt() {
		return propertyKey{}, kc
	}
	return e.realm.toPropertyKey(kc.Value)
}

func (e *evaluator) makeSuperPropertyReference(t *ast.MemberExpression) (*reference, Completion) {
	env := getThisEnvironment(e.ctx.lexicalEnv)
	fe, ok := env.(*functionEnv)
	if !ok || !fe.hasSuperBinding() {
		return nil, e.realm.throwSyntaxError("'super' keyword unexpected here")
	}
	thisC := fe.getThisBinding()
	if thisC.Abrupt() {
		return nil, thisC
	}
	baseC := fe.getSuperBase()
	if baseC.Abrupt() {
		return nil, baseC
	}
	key, kc := e.memberKey(t)
	if kc.Abrupt() {
		return nil, kc
	}
	return &reference{base: baseC.Value, name: key, strict: e.strict, thisVal: thisC.Value}, emptyCompletion
}

func (e *evaluator) evalPropertyKey(key ast.Expression, computed bool) (propertyKey, Completion) {
	if !computed {
		switch k := key.(type) {
		case *ast.Identifier:
			return strKey(k.Name), emptyCompletion
		case *ast.StringLiteral:
			return strKey(k.Value), emptyCompletion
		case *ast.NumberLiteral:
			return strKey(floatToValue(k.Value).String()), emptyCompletion
		}
	}
	kc := e.evalExpr(key)
	if kc.Abrupt() {
		return propertyKey{}, kc
	}
	return e.realm.toPropertyKey(kc.Value)
}

// namedEvaluation evaluates an anonymous function or class expression with
// an inferred name.
func (e *evaluator) namedEvaluation(expr ast.Expression, name string) Completion {
	switch t := expr.(type) {
	case *ast.FunctionLiteral:
		if t.Name == "" && name != "" {
			fn := e.realm.instantiateFunctionObject(t, e.ctx.lexicalEnv, e.srcFile, e.ctx.scriptOrModule, e.strict)
			if f, ok := fn.self.(*funcObject); ok {
				f.removeProp(strKey("name"))
				f._putProp("name", newStringValue(name), false, false, true)
			}
			return normalCompletion(fn)
		}
	case *ast.ClassLiteral:
		if t.Name == "" && name != "" {
			c := e.evalClassLiteral(t)
			if c.Abrupt() {
				return c
			}
			if obj, ok := c.Value.(*Object); ok {
				if f, ok := obj.self.(*funcObject); ok {
					f.removeProp(strKey("name"))
					f._putProp("name", newStringValue(name), false, false, true)
				}
			}
			return c
		}
	}
	return e.evalExpr(expr)
}

func (e *evaluator) evalArrayLiteral(t *ast.ArrayLiteral) Completion {
	r := e.realm
	arr := r.newArrayLength(0)
	n := int64(0)
	for _, el := range t.Elements {
		if el == nil {
			n++
			arr.self.(*arrayObject).length = n
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			sc := e.evalExpr(spread.Argument)
			if sc.Abrupt() {
				return sc
			}
			items, ic := r.iterableToList(sc.Value)
			if ic.Abrupt() {
				return ic
			}
			for _, item := range items {
				if c := r.createDataPropertyOrThrow(arr, strKey(intToValue(n).String()), item); c.Abrupt() {
					return c
				}
				n++
			}
			continue
		}
		vc := e.evalExpr(el)
		if vc.Abrupt() {
			return vc
		}
		if c := r.createDataPropertyOrThrow(arr, strKey(intToValue(n).String()), vc.Value); c.Abrupt() {
			return c
		}
		n++
	}
	arr.self.(*arrayObject).length = n
	return normalCompletion(arr)
}

func (e *evaluator) evalObjectLiteral(t *ast.ObjectLiteral) Completion {
	r := e.realm
	obj := r.NewObject()
	for _, prop := range t.Properties {
		switch prop.Kind {
		case ast.PropertyKindSpread:
			vc := e.evalExpr(prop.Value)
			if vc.Abrupt() {
				return vc
			}
			if c := r.copyDataProperties(obj, vc.Value, nil); c.Abrupt() {
				return c
			}
		case ast.PropertyKindGet, ast.PropertyKindSet:
			key, kc := e.evalPropertyKey(prop.Key, prop.Computed)
			if kc.Abrupt() {
				return kc
			}
			fn := r.defineMethod(prop.Value.(*ast.FunctionLiteral), e.ctx.lexicalEnv, e.srcFile, e.ctx.scriptOrModule, obj, e.strict)
			desc := PropertyDescriptor{Enumerable: FLAG_TRUE, Configurable: FLAG_TRUE}
			if prop.Kind == ast.PropertyKindGet {
				desc.Getter = fn
			} else {
				desc.Setter = fn
			}
			if c := r.definePropertyOrThrow(obj, key, desc); c.Abrupt() {
				return c
			}
		case ast.PropertyKindMethod:
			key, kc := e.evalPropertyKey(prop.Key, prop.Computed)
			if kc.Abrupt() {
				return kc
			}
			fn := r.defineMethod(prop.Value.(*ast.FunctionLiteral), e.ctx.lexicalEnv, e.srcFile, e.ctx.scriptOrModule, obj, e.strict)
			if c := r.createDataPropertyOrThrow(obj, key, fn); c.Abrupt() {
				return c
			}
		default:
			key, kc := e.evalPropertyKey(prop.Key, prop.Computed)
			if kc.Abrupt() {
				return kc
			}
			var vc Completion
			if !key.isSymbol() {
				vc = e.namedEvaluation(prop.Value, key.s)
			} else {
				vc = e.evalExpr(prop.Value)
			}
			if vc.Abrupt() {
				return vc
			}
			if c := r.createDataPropertyOrThrow(obj, key, vc.Value); c.Abrupt() {
				return c
			}
		}
	}
	return normalCompletion(obj)
}

// evalArguments evaluates an argument list, expanding spreads.
func (e *evaluator) evalArguments(exprs []ast.Expression) ([]Value, Completion) {
	var args []Value
	for _, a := range exprs {
		if spread, ok := a.(*ast.SpreadElement); ok {
			sc := e.evalExpr(spread.Argument)
			if sc.Abrupt() {
				return nil, sc
			}
			items, ic := e.realm.iterableToList(sc.Value)
			if ic.Abrupt() {
				return nil, ic
			}
			args = append(args, items...)
			continue
		}
		c := e.evalExpr(a)
		if c.Abrupt() {
			return nil, c
		}
		args = append(args, c.Value)
	}
	return args, emptyCompletion
}

func (e *evaluator) evalCall(t *ast.CallExpression) Completion {
	r := e.realm
	if _, isSuper := t.Callee.(*ast.SuperExpression); isSuper {
		return e.evalSuperCall(t)
	}

	var thisValue Value = _undefined
	var fnC Completion
	switch callee := t.Callee.(type) {
	case *ast.MemberExpression:
		ref, c := e.evalRefExpr(callee)
		if c.Abrupt() {
			return c
		}
		thisValue = ref.thisValue()
		fnC = r.getValue(ref)
	case *ast.Identifier:
		ref, c := getIdentifierReference(e.ctx.lexicalEnv, callee.Name, e.strict)
		if c.Abrupt() {
			return c
		}
		if base := ref.env; base != nil {
			if wbo := base.withBaseObject(); wbo != nil {
				thisValue = wbo
			}
		}
		fnC = r.getValue(ref)
	default:
		fnC = e.evalExpr(callee)
	}
	if fnC.Abrupt() {
		return fnC
	}
	args, ac := e.evalArguments(t.Arguments)
	if ac.Abrupt() {
		return ac
	}
	fnObj, ok := fnC.Value.(*Object)
	if !ok || !fnObj.isCallable() {
		return r.throwTypeError("%s is not a function", calleeName(t.Callee, fnC.Value))
	}
	return r.call(fnObj, thisValue, args)
}

func calleeName(callee ast.Expression, v Value) string {
	switch t := callee.(type) {
	case *ast.Identifier:
		return t.Name
	case *ast.MemberExpression:
		if !t.Computed {
			if id, ok := t.Property.(*ast.Identifier); ok {
				return objName(t.Object) + "." + id.Name
			}
		}
	}
	return v.String()
}

func objName(e ast.Expression) string {
	if id, ok := e.(*ast.Identifier); ok {
		return id.Name
	}
	return "(intermediate value)"
}

func (e *evaluator) evalSuperCall(t *ast.CallExpression) Completion {
	r := e.realm
	env := getThisEnvironment(e.ctx.lexicalEnv)
	fe, ok := env.(*functionEnv)
	if !ok {
		return r.throwSyntaxError("'super' keyword unexpected here")
	}
	active := fe.functionObject
	protoC := active.self.getPrototypeOf()
	if protoC.Abrupt() {
		return protoC
	}
	superCtor, ok := protoC.Value.(*Object)
	if !ok || !superCtor.isConstructor() {
		return r.throwTypeError("Super constructor is not a constructor")
	}
	args, ac := e.evalArguments(t.Arguments)
	if ac.Abrupt() {
		return ac
	}
	nt, _ := fe.newTarget.(*Object)
	resC := r.construct(superCtor, args, nt)
	if resC.Abrupt() {
		return resC
	}
	return fe.bindThisValue(resC.Value)
}

func (e *evaluator) evalNew(t *ast.NewExpression) Completion {
	r := e.realm
	fnC := e.evalExpr(t.Callee)
	if fnC.Abrupt() {
		return fnC
	}
	args, ac := e.evalArguments(t.Arguments)
	if ac.Abrupt() {
		return ac
	}
	ctor, ok := fnC.Value.(*Object)
	if !ok || !ctor.isConstructor() {
		return r.throwTypeError("%s is not a constructor", calleeName(t.Callee, fnC.Value))
	}
	return r.construct(ctor, args, nil)
}

func (e *evaluator) evalUnary(t *ast.UnaryExpression) Completion {
	r := e.realm
	switch t.Operator {
	case "typeof":
		if id, ok := t.Operand.(*ast.Identifier); ok {
			ref, c := getIdentifierReference(e.ctx.lexicalEnv, id.Name, e.strict)
			if c.Abrupt() {
				return c
			}
			if ref.unresolvable {
				return normalCompletion(stringUndefined)
			}
			vc := r.getValue(ref)
			if vc.Abrupt() {
				return vc
			}
			return normalCompletion(typeofOperator(vc.Value))
		}
		vc := e.evalExpr(t.Operand)
		if vc.Abrupt() {
			return vc
		}
		return normalCompletion(typeofOperator(vc.Value))
	case "delete":
		switch target := t.Operand.(type) {
		case *ast.MemberExpression:
			ref, c := e.evalRefExpr(target)
			if c.Abrupt() {
				return c
			}
			oc := r.toObject(ref.base)
			if oc.Abrupt() {
				return oc
			}
			dc := oc.Value.(*Object).self.deleteProperty(ref.name)
			if dc.Abrupt() {
				return dc
			}
			if dc.Value == valueFalse && e.strict {
				return r.throwTypeError("Cannot delete property '%s' of %s", ref.name.String(), ref.base.String())
			}
			return dc
		case *ast.Identifier:
			if e.strict {
				return r.throwSyntaxError("Delete of an unqualified identifier in strict mode.")
			}
			ref, c := getIdentifierReference(e.ctx.lexicalEnv, target.Name, false)
			if c.Abrupt() {
				return c
			}
			if ref.unresolvable {
				return completionTrue
			}
			return ref.env.deleteBinding(target.Name)
		}
		if c := e.evalExpr(t.Operand); c.Abrupt() {
			return c
		}
		return completionTrue
	case "void":
		if c := e.evalExpr(t.Operand); c.Abrupt() {
			return c
		}
		return normalCompletion(_undefined)
	}

	vc := e.evalExpr(t.Operand)
	if vc.Abrupt() {
		return vc
	}
	switch t.Operator {
	case "!":
		return normalCompletion(boolToValue(!vc.Value.ToBoolean()))
	case "-":
		nc := r.toNumeric(vc.Value)
		if nc.Abrupt() {
			return nc
		}
		if b, ok := nc.Value.(*valueBigInt); ok {
			return normalCompletion(bigIntToValue(new(big.Int).Neg(b.b)))
		}
		return normalCompletion(floatToValue(-numberVal(nc.Value)))
	case "+":
		nc := r.toNumber(vc.Value)
		if nc.Abrupt() {
			return nc
		}
		return nc
	case "~":
		nc := r.toNumeric(vc.Value)
		if nc.Abrupt() {
			return nc
		}
		if b, ok := nc.Value.(*valueBigInt); ok {
			return normalCompletion(bigIntToValue(new(big.Int).Not(b.b)))
		}
		i, c := r.toInt32(nc.Value)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(intToValue(int64(^i)))
	}
	panic("unknown unary operator")
}

func (e *evaluator) evalUpdate(t *ast.UpdateExpression) Completion {
	r := e.realm
	ref, c := e.evalRefExpr(t.Operand)
	if c.Abrupt() {
		return c
	}
	oldC := r.getValue(ref)
	if oldC.Abrupt() {
		return oldC
	}
	nc := r.toNumeric(oldC.Value)
	if nc.Abrupt() {
		return nc
	}
	oldValue := nc.Value
	var newValue Value
	if b, ok := oldValue.(*valueBigInt); ok {
		delta := big.NewInt(1)
		if t.Operator == "--" {
			delta = big.NewInt(-1)
		}
		newValue = bigIntToValue(new(big.Int).Add(b.b, delta))
	} else {
		delta := 1.0
		if t.Operator == "--" {
			delta = -1
		}
		newValue = floatToValue(numberVal(oldValue) + delta)
	}
	if pc := r.putValue(ref, newValue); pc.Abrupt() {
		return pc
	}
	if t.Prefix {
		return normalCompletion(newValue)
	}
	return normalCompletion(oldValue)
}

func (e *evaluator) evalBinary(t *ast.BinaryExpression) Completion {
	lc := e.evalExpr(t.Left)
	if lc.Abrupt() {
		return lc
	}
	rc := e.evalExpr(t.Right)
	if rc.Abrupt() {
		return rc
	}
	return e.applyBinary(t.Operator, lc.Value, rc.Value)
}

func (e *evaluator) applyBinary(op string, left, right Value) Completion {
	r := e.realm
	switch op {
	case "+":
		lp := r.toPrimitive(left, hintDefault)
		if lp.Abrupt() {
			return lp
		}
		rp := r.toPrimitive(right, hintDefault)
		if rp.Abrupt() {
			return rp
		}
		_, lIsStr := lp.Value.(valueString)
		_, rIsStr := rp.Value.(valueString)
		if lIsStr || rIsStr {
			ls := r.toString(lp.Value)
			if ls.Abrupt() {
				return ls
			}
			rs := r.toString(rp.Value)
			if rs.Abrupt() {
				return rs
			}
			return normalCompletion(ls.Value.(valueString).concat(rs.Value.(valueString)))
		}
		ln := r.toNumeric(lp.Value)
		if ln.Abrupt() {
			return ln
		}
		rn := r.toNumeric(rp.Value)
		if rn.Abrupt() {
			return rn
		}
		return r.numericBinary("+", ln.Value, rn.Value)
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		ln := r.toNumeric(left)
		if ln.Abrupt() {
			return ln
		}
		rn := r.toNumeric(right)
		if rn.Abrupt() {
			return rn
		}
		return r.numericBinary(op, ln.Value, rn.Value)
	case "<":
		c := r.lessThan(left, right, true)
		if c.Abrupt() {
			return c
		}
		if c.Value == _undefined {
			return completionFalse
		}
		return c
	case ">":
		c := r.lessThan(right, left, false)
		if c.Abrupt() {
			return c
		}
		if c.Value == _undefined {
			return completionFalse
		}
		return c
	case "<=":
		c := r.lessThan(right, left, false)
		if c.Abrupt() {
			return c
		}
		if c.Value == _undefined || c.Value == valueTrue {
			return completionFalse
		}
		return completionTrue
	case ">=":
		c := r.lessThan(left, right, true)
		if c.Abrupt() {
			return c
		}
		if c.Value == _undefined || c.Value == valueTrue {
			return completionFalse
		}
		return completionTrue
	case "==":
		return r.abstractEquals(left, right)
	case "!=":
		c := r.abstractEquals(left, right)
		if c.Abrupt() {
			return c
		}
		return booleanCompletion(c.Value == valueFalse)
	case "===":
		return booleanCompletion(left.StrictEquals(right))
	case "!==":
		return booleanCompletion(!left.StrictEquals(right))
	case "in":
		obj, ok := right.(*Object)
		if !ok {
			return r.throwTypeError("Cannot use 'in' operator to search for '%s' in %s", left.String(), right.String())
		}
		key, kc := r.toPropertyKey(left)
		if kc.Abrupt() {
			return kc
		}
		return obj.self.hasProperty(key)
	case "instanceof":
		return r.instanceOfOperator(left, right)
	}
	panic("unknown binary operator " + op)
}

// numericBinary applies an arithmetic or bitwise operator to two numeric
// values of the same type; mixing Number and BigInt throws.
func (r *Realm) numericBinary(op string, left, right Value) Completion {
	lb, lBig := left.(*valueBigInt)
	rb, rBig := right.(*valueBigInt)
	if lBig != rBig {
		return r.throwTypeError("Cannot mix BigInt and other types, use explicit conversions")
	}
	if lBig {
		out := new(big.Int)
		switch op {
		case "+":
			out.Add(lb.b, rb.b)
		case "-":
			out.Sub(lb.b, rb.b)
		case "*":
			out.Mul(lb.b, rb.b)
		case "/":
			if rb.b.Sign() == 0 {
				return r.throwRangeError("Division by zero")
			}
			out.Quo(lb.b, rb.b)
		case "%":
			if rb.b.Sign() == 0 {
				return r.throwRangeError("Division by zero")
			}
			out.Rem(lb.b, rb.b)
		case "**":
			if rb.b.Sign() < 0 {
				return r.throwRangeError("Exponent must be non-negative")
			}
			out.Exp(lb.b, rb.b, nil)
		case "&":
			out.And(lb.b, rb.b)
		case "|":
			out.Or(lb.b, rb.b)
		case "^":
			out.Xor(lb.b, rb.b)
		case "<<":
			out.Lsh(lb.b, uint(rb.b.Int64()))
		case ">>":
			out.Rsh(lb.b, uint(rb.b.Int64()))
		case ">>>":
			return r.throwTypeError("BigInts have no unsigned right shift, use >> instead")
		}
		return normalCompletion(bigIntToValue(out))
	}
	lf, rf := numberVal(left), numberVal(right)
	switch op {
	case "+":
		return normalCompletion(floatToValue(lf + rf))
	case "-":
		return normalCompletion(floatToValue(lf - rf))
	case "*":
		return normalCompletion(floatToValue(lf * rf))
	case "/":
		return normalCompletion(floatToValue(lf / rf))
	case "%":
		return normalCompletion(floatToValue(math.Mod(lf, rf)))
	case "**":
		return normalCompletion(floatToValue(math.Pow(lf, rf)))
	case "&":
		li, _ := r.toInt32(left)
		ri, _ := r.toInt32(right)
		return normalCompletion(intToValue(int64(li & ri)))
	case "|":
		li, _ := r.toInt32(left)
		ri, _ := r.toInt32(right)
		return normalCompletion(intToValue(int64(li | ri)))
	case "^":
		li, _ := r.toInt32(left)
		ri, _ := r.toInt32(right)
		return normalCompletion(intToValue(int64(li ^ ri)))
	case "<<":
		li, _ := r.toInt32(left)
		ru, _ := r.toUint32(right)
		return normalCompletion(intToValue(int64(li << (ru & 31))))
	case ">>":
		li, _ := r.toInt32(left)
		ru, _ := r.toUint32(right)
		return normalCompletion(intToValue(int64(li >> (ru & 31))))
	case ">>>":
		lu, _ := r.toUint32(left)
		ru, _ := r.toUint32(right)
		return normalCompletion(floatToValue(float64(lu >> (ru & 31))))
	}
	panic("unknown numeric operator " + op)
}

func (e *evaluator) evalLogical(t *ast.LogicalExpression) Completion {
	lc := e.evalExpr(t.Left)
	if lc.Abrupt() {
		return lc
	}
	switch t.Operator {
	case "&&":
		if !lc.Value.ToBoolean() {
			return lc
		}
	case "||":
		if lc.Value.ToBoolean() {
			return lc
		}
	case "??":
		if lc.Value != _undefined && lc.Value != _null {
			return lc
		}
	}
	return e.evalExpr(t.Right)
}

func (e *evaluator) evalAssign(t *ast.AssignExpression) Completion {
	r := e.realm
	if t.Operator == "=" {
		switch t.Target.(type) {
		case *ast.ArrayLiteral, *ast.ObjectLiteral:
			pattern, err := exprToPattern(t.Target)
			if err != "" {
				return r.throwSyntaxError("%s", err)
			}
			vc := e.evalExpr(t.Value)
			if vc.Abrupt() {
				return vc
			}
			if c := e.bindingInitialization(pattern, vc.Value, nil); c.Abrupt() {
				return c
			}
			return normalCompletion(vc.Value)
		}
		ref, c := e.evalRefExpr(t.Target)
		if c.Abrupt() {
			return c
		}
		var vc Completion
		if id, ok := t.Target.(*ast.Identifier); ok {
			vc = e.namedEvaluation(t.Value, id.Name)
		} else {
			vc = e.evalExpr(t.Value)
		}
		if vc.Abrupt() {
			return vc
		}
		if pc := r.putValue(ref, vc.Value); pc.Abrupt() {
			return pc
		}
		return normalCompletion(vc.Value)
	}

	op := t.Operator[:len(t.Operator)-1] // "+=" -> "+"
	if op == "&&" || op == "||" || op == "??" {
		return e.evalLogicalAssign(t, op)
	}
	ref, c := e.evalRefExpr(t.Target)
	if c.Abrupt() {
		return c
	}
	oldC := r.getValue(ref)
	if oldC.Abrupt() {
		return oldC
	}
	vc := e.evalExpr(t.Value)
	if vc.Abrupt() {
		return vc
	}
	res := e.applyBinary(op, oldC.Value, vc.Value)
	if res.Abrupt() {
		return res
	}
	if pc := r.putValue(ref, res.Value); pc.Abrupt() {
		return pc
	}
	return res
}

func (e *evaluator) evalLogicalAssign(t *ast.AssignExpression, op string) Completion {
	r := e.realm
	ref, c := e.evalRefExpr(t.Target)
	if c.Abrupt() {
		return c
	}
	oldC := r.getValue(ref)
	if oldC.Abrupt() {
		return oldC
	}
	old := oldC.Value
	switch op {
	case "&&":
		if !old.ToBoolean() {
			return normalCompletion(old)
		}
	case "||":
		if old.ToBoolean() {
			return normalCompletion(old)
		}
	case "??":
		if old != _undefined && old != _null {
			return normalCompletion(old)
		}
	}
	vc := e.evalExpr(t.Value)
	if vc.Abrupt() {
		return vc
	}
	if pc := r.putValue(ref, vc.Value); pc.Abrupt() {
		return pc
	}
	return normalCompletion(vc.Value)
}

// exprToPattern reinterprets an expression as an assignment pattern.
func exprToPattern(expr ast.Expression) (ast.Pattern, string) {
	switch t := expr.(type) {
	case *ast.Identifier:
		return &ast.AssignTargetPattern{Target: t}, ""
	case *ast.MemberExpression:
		return &ast.AssignTargetPattern{Target: t}, ""
	case *ast.ArrayLiteral:
		out := &ast.ArrayPattern{Idx: t.Idx}
		for i, el := range t.Elements {
			if el == nil {
				out.Elements = append(out.Elements, nil)
				continue
			}
			if spread, ok := el.(*ast.SpreadElement); ok {
				if i != len(t.Elements)-1 {
					return nil, "Rest element must be last element"
				}
				rest, err := exprToPattern(spread.Argument)
				if err != "" {
					return nil, err
				}
				out.Rest = rest
				continue
			}
			p, err := exprToPattern(el)
			if err != "" {
				return nil, err
			}
			out.Elements = append(out.Elements, p)
		}
		return out, ""
	case *ast.ObjectLiteral:
		out := &ast.ObjectPattern{Idx: t.Idx}
		for i, prop := range t.Properties {
			if prop.Kind == ast.PropertyKindSpread {
				if i != len(t.Properties)-1 {
					return nil, "Rest element must be last element"
				}
				rest, err := exprToPattern(prop.Value)
				if err != "" {
					return nil, err
				}
				out.Rest = rest
				continue
			}
			p, err := exprToPattern(prop.Value)
			if err != "" {
				return nil, err
			}
			out.Properties = append(out.Properties, ast.PropertyPattern{
				Key:      prop.Key,
				Computed: prop.Computed,
				Value:    p,
			})
		}
		return out, ""
	case *ast.AssignExpression:
		if t.Operator != "=" {
			return nil, "Invalid destructuring assignment target"
		}
		target, err := exprToPattern(t.Target)
		if err != "" {
			return nil, err
		}
		return &ast.DefaultPattern{Target: target, Default: t.Value}, ""
	}
	return nil, "Invalid destructuring assignment target"
}

func (e *evaluator) evalYield(t *ast.YieldExpression) Completion {
	if e.co == nil {
		return e.realm.throwSyntaxError("yield is only valid inside a generator")
	}
	if t.Delegate {
		return e.evalYieldDelegate(t)
	}
	var v Value = _undefined
	if t.Argument != nil {
		c := e.evalExpr(t.Argument)
		if c.Abrupt() {
			return c
		}
		v = c.Value
	}
	return e.suspendYield(normalCompletion(v))
}

// suspendYield hands a value out of the running coroutine, keeping the
// context stack balanced across the suspension.
func (e *evaluator) suspendYield(out Completion) Completion {
	r := e.realm
	r.agent.popContext()
	injected := e.co.yield(coroutineMsg{completion: out})
	r.agent.pushContext(e.ctx)
	return injected
}

func (e *evaluator) evalYieldDelegate(t *ast.YieldExpression) Completion {
	r := e.realm
	ac := e.evalExpr(t.Argument)
	if ac.Abrupt() {
		return ac
	}
	ir, ic := r.getIterator(ac.Value, false)
	if ic.Abrupt() {
		return ic
	}
	received := normalCompletion(_undefined)
	for {
		switch received.Type {
		case CompletionNormal:
			res, sc := r.iteratorNext(ir, received.ValueOrUndefined())
			if sc.Abrupt() {
				return sc
			}
			dc := res.self.get(strKey("done"), res)
			if dc.Abrupt() {
				return dc
			}
			if dc.Value.ToBoolean() {
				return r.iteratorValue(res)
			}
			vc := r.iteratorValue(res)
			if vc.Abrupt() {
				return vc
			}
			received = e.suspendYield(normalCompletion(vc.Value))
		case CompletionThrow:
			throwMethod, tc := r.getMethod(ir.iterator, strKey("throw"))
			if tc.Abrupt() {
				return tc
			}
			if throwMethod == nil {
				closeC := r.iteratorClose(ir, emptyCompletion)
				if closeC.Abrupt() {
					return closeC
				}
				return r.throwTypeError("The iterator does not provide a 'throw' method")
			}
			resC := r.call(throwMethod, ir.iterator, []Value{received.ValueOrUndefined()})
			if resC.Abrupt() {
				return resC
			}
			res, ok := resC.Value.(*Object)
			if !ok {
				return r.throwTypeError("Iterator result %s is not an object", resC.Value.String())
			}
			dc := res.self.get(strKey("done"), res)
			if dc.Abrupt() {
				return dc
			}
			if dc.Value.ToBoolean() {
				return r.iteratorValue(res)
			}
			vc := r.iteratorValue(res)
			if vc.Abrupt() {
				return vc
			}
			received = e.suspendYield(normalCompletion(vc.Value))
		case CompletionReturn:
			returnMethod, tc := r.getMethod(ir.iterator, strKey("return"))
			if tc.Abrupt() {
				return tc
			}
			if returnMethod == nil {
				return received
			}
			resC := r.call(returnMethod, ir.iterator, []Value{received.ValueOrUndefined()})
			if resC.Abrupt() {
				return resC
			}
			res, ok := resC.Value.(*Object)
			if !ok {
				return r.throwTypeError("Iterator result %s is not an object", resC.Value.String())
			}
			dc := res.self.get(strKey("done"), res)
			if dc.Abrupt() {
				return dc
			}
			if dc.Value.ToBoolean() {
				vc := r.iteratorValue(res)
				if vc.Abrupt() {
					return vc
				}
				return returnCompletion(vc.Value)
			}
			vc := r.iteratorValue(res)
			if vc.Abrupt() {
				return vc
			}
			received = e.suspendYield(normalCompletion(vc.Value))
		}
	}
}

func (e *evaluator) evalAwait(t *ast.AwaitExpression) Completion {
	if e.co == nil {
		return e.realm.throwSyntaxError("await is only valid in async functions")
	}
	c := e.evalExpr(t.Argument)
	if c.Abrupt() {
		return c
	}
	r := e.realm
	r.agent.popContext()
	injected := e.co.yield(coroutineMsg{completion: normalCompletion(c.Value), await: true})
	r.agent.pushContext(e.ctx)
	return injected
}

func (e *evaluator) evalDynamicImport(t *ast.ImportCallExpression) Completion {
	r := e.realm
	sc := e.evalExpr(t.Specifier)
	if sc.Abrupt() {
		return sc
	}
	strC := r.toString(sc.Value)
	if strC.Abrupt() {
		return strC
	}
	var referencing *SourceTextModule
	if m, ok := e.ctx.scriptOrModule.(*SourceTextModule); ok {
		referencing = m
	}
	return r.importModuleDynamically(referencing, strC.Value.String())
}

func (e *evaluator) evalTemplate(t *ast.TemplateLiteral) Completion {
	r := e.realm
	if t.Tag != nil {
		return e.evalTaggedTemplate(t)
	}
	var out valueString = stringEmpty
	for i, q := range t.Quasis {
		out = out.concat(newStringValue(q.Cooked))
		if i < len(t.Expressions) {
			c := e.evalExpr(t.Expressions[i])
			if c.Abrupt() {
				return c
			}
			sc := r.toString(c.Value)
			if sc.Abrupt() {
				return sc
			}
			out = out.concat(sc.Value.(valueString))
		}
	}
	return normalCompletion(out)
}

// evalTaggedTemplate calls the tag with the cached template object.
func (e *evaluator) evalTaggedTemplate(t *ast.TemplateLiteral) Completion {
	r := e.realm
	strings := r.templateCache[t]
	if strings == nil {
		cooked := make([]Value, len(t.Quasis))
		raw := make([]Value, len(t.Quasis))
		for i, q := range t.Quasis {
			if q.Valid {
				cooked[i] = newStringValue(q.Cooked)
			} else {
				cooked[i] = _undefined
			}
			raw[i] = newStringValue(q.Raw)
		}
		strings = r.createArrayFromList(cooked)
		rawArr := r.createArrayFromList(raw)
		rawArr.self.preventExtensions()
		strings.self.defineOwnProperty(strKey("raw"), PropertyDescriptor{
			Value:        rawArr,
			Writable:     FLAG_FALSE,
			Enumerable:   FLAG_FALSE,
			Configurable: FLAG_FALSE,
		})
		strings.self.preventExtensions()
		r.templateCache[t] = strings
	}

	var thisValue Value = _undefined
	var fnC Completion
	if member, ok := t.Tag.(*ast.MemberExpression); ok {
		ref, c := e.evalRefExpr(member)
		if c.Abrupt() {
			return c
		}
		thisValue = ref.thisValue()
		fnC = r.getValue(ref)
	} else {
		fnC = e.evalExpr(t.Tag)
	}
	if fnC.Abrupt() {
		return fnC
	}
	fn, ok := fnC.Value.(*Object)
	if !ok || !fn.isCallable() {
		return r.throwTypeError("%s is not a function", fnC.Value.String())
	}
	args := []Value{strings}
	for _, sub := range t.Expressions {
		c := e.evalExpr(sub)
		if c.Abrupt() {
			return c
		}
		args = append(args, c.Value)
	}
	return r.call(fn, thisValue, args)
}

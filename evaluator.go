package harmony

import (
	"github.com/joeyhub/harmony/ast"
)

// evaluator walks an AST under the running execution context. Every
// evaluation contract returns a Completion; statement kinds produce
// normal/empty on success.
type evaluator struct {
	realm   *Realm
	ctx     *executionContext
	strict  bool
	srcFile *SrcFile
	co      *coroutine

	// pendingLabels holds the label set of an enclosing labelled statement,
	// consumed by the next iteration statement.
	pendingLabels []string
}

func (e *evaluator) evalStatements(stmts []ast.Statement) Completion {
	var v Value
	for _, s := range stmts {
		c := e.evalStatement(s)
		if c.Abrupt() {
			return c.UpdateEmpty(v)
		}
		if c.Value != nil {
			v = c.Value
		}
	}
	return Completion{Type: CompletionNormal, Value: v}
}

func (e *evaluator) evalStatement(s ast.Statement) Completion {
	switch t := s.(type) {
	case *ast.ExpressionStatement:
		c := e.evalExpr(t.Expression)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(c.Value)
	case *ast.VariableDeclaration:
		return e.evalVariableDeclaration(t)
	case *ast.FunctionDeclaration:
		return emptyCompletion
	case *ast.ClassDeclaration:
		return e.evalClassDeclaration(t)
	case *ast.BlockStatement:
		return e.evalBlock(t)
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return emptyCompletion
	case *ast.IfStatement:
		return e.evalIf(t)
	case *ast.WhileStatement:
		return e.evalWhile(t)
	case *ast.DoWhileStatement:
		return e.evalDoWhile(t)
	case *ast.ForStatement:
		return e.evalFor(t)
	case *ast.ForInStatement:
		return e.evalForIn(t)
	case *ast.ForOfStatement:
		return e.evalForOf(t)
	case *ast.SwitchStatement:
		return e.evalSwitch(t)
	case *ast.ReturnStatement:
		if t.Argument == nil {
			return returnCompletion(_undefined)
		}
		c := e.evalExpr(t.Argument)
		if c.Abrupt() {
			return c
		}
		return returnCompletion(c.Value)
	case *ast.ThrowStatement:
		c := e.evalExpr(t.Argument)
		if c.Abrupt() {
			return c
		}
		return throwCompletion(c.Value)
	case *ast.BreakStatement:
		return breakCompletion(t.Label)
	case *ast.ContinueStatement:
		return continueCompletion(t.Label)
	case *ast.LabelledStatement:
		return e.evalLabelled(t)
	case *ast.TryStatement:
		return e.evalTry(t)
	case *ast.WithStatement:
		return e.evalWith(t)
	case *ast.ImportDeclaration:
		return emptyCompletion
	case *ast.ExportDeclaration:
		if t.Declaration != nil {
			return e.evalStatement(t.Declaration)
		}
		if t.Expression != nil {
			c := e.namedEvaluation(t.Expression, "default")
			if c.Abrupt() {
				return c
			}
			return e.ctx.lexicalEnv.initializeBinding("*default*", c.Value)
		}
		return emptyCompletion
	}
	panic("unknown statement")
}

func (e *evaluator) evalVariableDeclaration(t *ast.VariableDeclaration) Completion {
	for _, d := range t.List {
		if t.Kind == "var" {
			if d.Init == nil {
				continue
			}
			if id, ok := d.Target.(*ast.IdentifierPattern); ok {
				ref, c := getIdentifierReference(e.ctx.lexicalEnv, id.Name, e.strict)
				if c.Abrupt() {
					return c
				}
				vc := e.namedEvaluation(d.Init, id.Name)
				if vc.Abrupt() {
					return vc
				}
				if pc := e.realm.putValue(ref, vc.Value); pc.Abrupt() {
					return pc
				}
				continue
			}
			vc := e.evalExpr(d.Init)
			if vc.Abrupt() {
				return vc
			}
			if c := e.bindingInitialization(d.Target, vc.Value, nil); c.Abrupt() {
				return c
			}
			continue
		}
		// let / const
		if id, ok := d.Target.(*ast.IdentifierPattern); ok {
			var val Value = _undefined
			if d.Init != nil {
				vc := e.namedEvaluation(d.Init, id.Name)
				if vc.Abrupt() {
					return vc
				}
				val = vc.Value
			}
			if c := e.ctx.lexicalEnv.initializeBinding(id.Name, val); c.Abrupt() {
				return c
			}
			continue
		}
		var value Value = _undefined
		if d.Init != nil {
			vc := e.evalExpr(d.Init)
			if vc.Abrupt() {
				return vc
			}
			value = vc.Value
		}
		if c := e.bindingInitialization(d.Target, value, e.ctx.lexicalEnv); c.Abrupt() {
			return c
		}
	}
	return emptyCompletion
}

func (e *evaluator) evalBlock(t *ast.BlockStatement) Completion {
	oldEnv := e.ctx.lexicalEnv
	env := newDeclarativeEnv(e.realm, oldEnv)
	e.ctx.lexicalEnv = env
	defer func() { e.ctx.lexicalEnv = oldEnv }()
	if c := e.blockDeclarationInstantiation(t.Body, env); c.Abrupt() {
		return c
	}
	return e.evalStatements(t.Body)
}

func (e *evaluator) evalIf(t *ast.IfStatement) Completion {
	tc := e.evalExpr(t.Test)
	if tc.Abrupt() {
		return tc
	}
	var c Completion
	if tc.Value.ToBoolean() {
		c = e.evalStatement(t.Consequent)
	} else if t.Alternate != nil {
		c = e.evalStatement(t.Alternate)
	} else {
		return normalCompletion(_undefined)
	}
	return c.UpdateEmpty(_undefined)
}

func (e *evaluator) takeLabels() []string {
	labels := e.pendingLabels
	e.pendingLabels = nil
	return labels
}

func inLabelSet(target string, labels []string) bool {
	if target == "" {
		return true
	}
	for _, l := range labels {
		if l == target {
			return true
		}
	}
	return false
}

// loopContinues implements the LoopContinues check; break handling happens
// at the loop exit.
func loopContinues(c Completion, labels []string) bool {
	if c.Type == CompletionNormal {
		return true
	}
	if c.Type != CompletionContinue {
		return false
	}
	return inLabelSet(c.Target, labels)
}

func loopExit(c Completion, labels []string, v Value) Completion {
	if c.Type == CompletionBreak && inLabelSet(c.Target, labels) {
		return Completion{Type: CompletionNormal, Value: c.UpdateEmpty(v).Value}
	}
	return c.UpdateEmpty(v)
}

func (e *evaluator) evalWhile(t *ast.WhileStatement) Completion {
	labels := e.takeLabels()
	var v Value = _undefined
	for {
		tc := e.evalExpr(t.Test)
		if tc.Abrupt() {
			return tc
		}
		if !tc.Value.ToBoolean() {
			return normalCompletion(v)
		}
		c := e.evalStatement(t.Body)
		if c.Value != nil {
			v = c.Value
		}
		if !loopContinues(c, labels) {
			return loopExit(c, labels, v)
		}
	}
}

func (e *evaluator) evalDoWhile(t *ast.DoWhileStatement) Completion {
	labels := e.takeLabels()
	var v Value = _undefined
	for {
		c := e.evalStatement(t.Body)
		if c.Value != nil {
			v = c.Value
		}
		if !loopContinues(c, labels) {
			return loopExit(c, labels, v)
		}
		tc := e.evalExpr(t.Test)
		if tc.Abrupt() {
			return tc
		}
		if !tc.Value.ToBoolean() {
			return normalCompletion(v)
		}
	}
}

func (e *evaluator) evalFor(t *ast.ForStatement) Completion {
	labels := e.takeLabels()
	r := e.realm
	oldEnv := e.ctx.lexicalEnv
	defer func() { e.ctx.lexicalEnv = oldEnv }()

	var perIteration []string
	switch init := t.Init.(type) {
	case *ast.VariableDeclaration:
		if init.Kind == "let" || init.Kind == "const" {
			loopEnv := newDeclarativeEnv(r, oldEnv)
			for _, d := range init.List {
				for _, n := range boundNames(d.Target, nil) {
					if init.Kind == "const" {
						loopEnv.createImmutableBinding(n, true)
					} else {
						loopEnv.createMutableBinding(n, false)
						perIteration = append(perIteration, n)
					}
				}
			}
			e.ctx.lexicalEnv = loopEnv
		}
		if c := e.evalStatement(init); c.Abrupt() {
			return c
		}
	case ast.Expression:
		if c := e.evalExpr(init); c.Abrupt() {
			return c
		}
	}

	// Per-iteration bindings: each iteration sees a fresh copy of the let
	// bindings, observable through closures.
	copyEnv := func() Completion {
		if len(perIteration) == 0 {
			return emptyCompletion
		}
		lastEnv := e.ctx.lexicalEnv
		fresh := newDeclarativeEnv(r, oldEnv)
		for _, n := range perIteration {
			vc := lastEnv.getBindingValue(n, true)
			if vc.Abrupt() {
				return vc
			}
			fresh.createMutableBinding(n, false)
			fresh.initializeBinding(n, vc.Value)
		}
		e.ctx.lexicalEnv = fresh
		return emptyCompletion
	}
	if c := copyEnv(); c.Abrupt() {
		return c
	}

	var v Value = _undefined
	for {
		if t.Test != nil {
			tc := e.evalExpr(t.Test)
			if tc.Abrupt() {
				return tc
			}
			if !tc.Value.ToBoolean() {
				return normalCompletion(v)
			}
		}
		c := e.evalStatement(t.Body)
		if c.Value != nil {
			v = c.Value
		}
		if !loopContinues(c, labels) {
			return loopExit(c, labels, v)
		}
		if c := copyEnv(); c.Abrupt() {
			return c
		}
		if t.Update != nil {
			uc := e.evalExpr(t.Update)
			if uc.Abrupt() {
				return uc
			}
		}
	}
}

// forInOfBind prepares the per-iteration binding of a for-in/of head.
func (e *evaluator) forInOfBind(left ast.Node, value Value, oldEnv environmentRecord) Completion {
	switch head := left.(type) {
	case *ast.VariableDeclaration:
		d := head.List[0]
		if head.Kind == "var" {
			e.ctx.lexicalEnv = oldEnv
			return e.bindingInitialization(d.Target, value, nil)
		}
		iterEnv := newDeclarativeEnv(e.realm, oldEnv)
		for _, n := range boundNames(d.Target, nil) {
			if head.Kind == "const" {
				iterEnv.createImmutableBinding(n, true)
			} else {
				iterEnv.createMutableBinding(n, false)
			}
		}
		e.ctx.lexicalEnv = iterEnv
		return e.bindingInitialization(d.Target, value, iterEnv)
	case ast.Pattern:
		e.ctx.lexicalEnv = oldEnv
		return e.bindingInitialization(head, value, nil)
	}
	panic("bad for-in/of head")
}

func (e *evaluator) evalForIn(t *ast.ForInStatement) Completion {
	labels := e.takeLabels()
	r := e.realm
	oc := e.evalExpr(t.Object)
	if oc.Abrupt() {
		return oc
	}
	switch oc.Value.(type) {
	case valueUndefined, valueNull:
		return normalCompletion(_undefined)
	}
	objC := r.toObject(oc.Value)
	if objC.Abrupt() {
		return objC
	}
	keys, kc := r.enumerateObjectProperties(objC.Value.(*Object))
	if kc.Abrupt() {
		return kc
	}

	oldEnv := e.ctx.lexicalEnv
	defer func() { e.ctx.lexicalEnv = oldEnv }()
	var v Value = _undefined
	for _, key := range keys {
		if c := e.forInOfBind(t.Left, key, oldEnv); c.Abrupt() {
			return c
		}
		c := e.evalStatement(t.Body)
		e.ctx.lexicalEnv = oldEnv
		if c.Value != nil {
			v = c.Value
		}
		if !loopContinues(c, labels) {
			return loopExit(c, labels, v)
		}
	}
	return normalCompletion(v)
}

// enumerateObjectProperties walks own and inherited enumerable string keys,
// skipping shadowed and deleted ones, own keys first.
func (r *Realm) enumerateObjectProperties(obj *Object) ([]Value, Completion) {
	var out []Value
	visited := make(map[string]bool)
	for o := obj; o != nil; {
		keys, c := o.self.ownPropertyKeys()
		if c.Abrupt() {
			return nil, c
		}
		for _, key := range keys {
			if key.isSymbol() || visited[key.s] {
				continue
			}
			desc, dc := o.self.getOwnProperty(key)
			if dc.Abrupt() {
				return nil, dc
			}
			if desc == nil {
				continue
			}
			visited[key.s] = true
			if desc.Enumerable == FLAG_TRUE {
				out = append(out, newStringValue(key.s))
			}
		}
		protoC := o.self.getPrototypeOf()
		if protoC.Abrupt() {
			return nil, protoC
		}
		if p, ok := protoC.Value.(*Object); ok {
			o = p
		} else {
			o = nil
		}
	}
	return out, emptyCompletion
}

func (e *evaluator) evalForOf(t *ast.ForOfStatement) Completion {
	labels := e.takeLabels()
	r := e.realm
	oc := e.evalExpr(t.Object)
	if oc.Abrupt() {
		return oc
	}
	ir, ic := r.getIterator(oc.Value, false)
	if ic.Abrupt() {
		return ic
	}

	oldEnv := e.ctx.lexicalEnv
	defer func() { e.ctx.lexicalEnv = oldEnv }()
	var v Value = _undefined
	for {
		res, sc := r.iteratorStep(ir)
		if sc.Abrupt() {
			return sc
		}
		if res == nil {
			return normalCompletion(v)
		}
		vc := r.iteratorValue(res)
		if vc.Abrupt() {
			return r.iteratorClose(ir, vc)
		}
		if c := e.forInOfBind(t.Left, vc.Value, oldEnv); c.Abrupt() {
			e.ctx.lexicalEnv = oldEnv
			return r.iteratorClose(ir, c)
		}
		c := e.evalStatement(t.Body)
		e.ctx.lexicalEnv = oldEnv
		if c.Value != nil {
			v = c.Value
		}
		if !loopContinues(c, labels) {
			exit := loopExit(c, labels, v)
			if c.Abrupt() && !(c.Type == CompletionContinue && inLabelSet(c.Target, labels)) {
				return r.iteratorClose(ir, exit)
			}
			return exit
		}
	}
}

func (e *evaluator) evalSwitch(t *ast.SwitchStatement) Completion {
	labels := e.takeLabels()
	dc := e.evalExpr(t.Discriminant)
	if dc.Abrupt() {
		return dc
	}
	input := dc.Value

	oldEnv := e.ctx.lexicalEnv
	env := newDeclarativeEnv(e.realm, oldEnv)
	e.ctx.lexicalEnv = env
	defer func() { e.ctx.lexicalEnv = oldEnv }()
	var caseBody []ast.Statement
	for _, cs := range t.Cases {
		caseBody = append(caseBody, cs.Body...)
	}
	if c := e.blockDeclarationInstantiation(caseBody, env); c.Abrupt() {
		return c
	}

	matched := -1
	for i, cs := range t.Cases {
		if cs.Test == nil {
			continue
		}
		tc := e.evalExpr(cs.Test)
		if tc.Abrupt() {
			return tc
		}
		if input.StrictEquals(tc.Value) {
			matched = i
			break
		}
	}
	if matched < 0 {
		for i, cs := range t.Cases {
			if cs.Test == nil {
				matched = i
				break
			}
		}
	}
	if matched < 0 {
		return normalCompletion(_undefined)
	}
	var v Value = _undefined
	for _, cs := range t.Cases[matched:] {
		c := e.evalStatements(cs.Body)
		if c.Value != nil {
			v = c.Value
		}
		if c.Abrupt() {
			if c.Type == CompletionBreak && inLabelSet(c.Target, labels) {
				return normalCompletion(v)
			}
			return c.UpdateEmpty(v)
		}
	}
	return normalCompletion(v)
}

func (e *evaluator) evalLabelled(t *ast.LabelledStatement) Completion {
	e.pendingLabels = append(e.pendingLabels, t.Label)
	c := e.evalStatement(t.Body)
	e.pendingLabels = nil
	if c.Type == CompletionBreak && c.Target == t.Label {
		return Completion{Type: CompletionNormal, Value: c.Value}
	}
	return c
}

func (e *evaluator) evalTry(t *ast.TryStatement) Completion {
	b := e.evalBlock(t.Block)
	if b.Throw() && t.Catch != nil {
		b = e.evalCatch(t.Catch, b.ValueOrUndefined())
	}
	if t.Finally != nil {
		f := e.evalBlock(t.Finally)
		// The finally clause's abrupt completion wins over the protected
		// completion.
		if f.Type != CompletionNormal {
			return f
		}
	}
	return b.UpdateEmpty(_undefined)
}

func (e *evaluator) evalCatch(clause *ast.CatchClause, thrown Value) Completion {
	oldEnv := e.ctx.lexicalEnv
	defer func() { e.ctx.lexicalEnv = oldEnv }()
	if clause.Param != nil {
		env := newDeclarativeEnv(e.realm, oldEnv)
		for _, n := range boundNames(clause.Param, nil) {
			env.createMutableBinding(n, false)
		}
		e.ctx.lexicalEnv = env
		if c := e.bindingInitialization(clause.Param, thrown, env); c.Abrupt() {
			return c
		}
	}
	return e.evalBlock(clause.Body)
}

func (e *evaluator) evalWith(t *ast.WithStatement) Completion {
	if e.strict {
		return e.realm.throwSyntaxError("Strict mode code may not include a with statement")
	}
	oc := e.evalExpr(t.Object)
	if oc.Abrupt() {
		return oc
	}
	objC := e.realm.toObject(oc.Value)
	if objC.Abrupt() {
		return objC
	}
	oldEnv := e.ctx.lexicalEnv
	e.ctx.lexicalEnv = newObjectEnv(e.realm, objC.Value.(*Object), true, oldEnv)
	defer func() { e.ctx.lexicalEnv = oldEnv }()
	c := e.evalStatement(t.Body)
	return c.UpdateEmpty(_undefined)
}

func (e *evaluator) evalClassDeclaration(t *ast.ClassDeclaration) Completion {
	c := e.evalClassLiteral(t.Class)
	if c.Abrupt() {
		return c
	}
	return e.ctx.lexicalEnv.initializeBinding(t.Class.Name, c.Value)
}

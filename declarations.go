package harmony

import (
	"github.com/joeyhub/harmony/ast"
)

// ---------- static scans over statement lists ----------

// boundNames appends the names bound by a pattern.
func boundNames(p ast.Pattern, into []string) []string {
	switch t := p.(type) {
	case *ast.IdentifierPattern:
		return append(into, t.Name)
	case *ast.DefaultPattern:
		return boundNames(t.Target, into)
	case *ast.RestPattern:
		return boundNames(t.Target, into)
	case *ast.ArrayPattern:
		for _, el := range t.Elements {
			if el != nil {
				into = boundNames(el, into)
			}
		}
		if t.Rest != nil {
			into = boundNames(t.Rest, into)
		}
		return into
	case *ast.ObjectPattern:
		for _, prop := range t.Properties {
			into = boundNames(prop.Value, into)
		}
		if t.Rest != nil {
			into = boundNames(t.Rest, into)
		}
		return into
	}
	return into
}

// varDeclaredNames collects var-scoped names, descending into nested
// statements but never into function bodies.
func varDeclaredNames(stmts []ast.Statement, into []string) []string {
	for _, s := range stmts {
		into = varDeclaredNamesStmt(s, into)
	}
	return into
}

func varDeclaredNamesStmt(s ast.Statement, into []string) []string {
	switch t := s.(type) {
	case *ast.VariableDeclaration:
		if t.Kind == "var" {
			for _, d := range t.List {
				into = boundNames(d.Target, into)
			}
		}
	case *ast.BlockStatement:
		into = varDeclaredNames(t.Body, into)
	case *ast.IfStatement:
		into = varDeclaredNamesStmt(t.Consequent, into)
		if t.Alternate != nil {
			into = varDeclaredNamesStmt(t.Alternate, into)
		}
	case *ast.ForStatement:
		if decl, ok := t.Init.(*ast.VariableDeclaration); ok && decl.Kind == "var" {
			for _, d := range decl.List {
				into = boundNames(d.Target, into)
			}
		}
		into = varDeclaredNamesStmt(t.Body, into)
	case *ast.ForInStatement:
		if decl, ok := t.Left.(*ast.VariableDeclaration); ok && decl.Kind == "var" {
			for _, d := range decl.List {
				into = boundNames(d.Target, into)
			}
		}
		into = varDeclaredNamesStmt(t.Body, into)
	case *ast.ForOfStatement:
		if decl, ok := t.Left.(*ast.VariableDeclaration); ok && decl.Kind == "var" {
			for _, d := range decl.List {
				into = boundNames(d.Target, into)
			}
		}
		into = varDeclaredNamesStmt(t.Body, into)
	case *ast.WhileStatement:
		into = varDeclaredNamesStmt(t.Body, into)
	case *ast.DoWhileStatement:
		into = varDeclaredNamesStmt(t.Body, into)
	case *ast.WithStatement:
		into = varDeclaredNamesStmt(t.Body, into)
	case *ast.LabelledStatement:
		into = varDeclaredNamesStmt(t.Body, into)
	case *ast.SwitchStatement:
		for _, cs := range t.Cases {
			into = varDeclaredNames(cs.Body, into)
		}
	case *ast.TryStatement:
		into = varDeclaredNames(t.Block.Body, into)
		if t.Catch != nil {
			into = varDeclaredNames(t.Catch.Body.Body, into)
		}
		if t.Finally != nil {
			into = varDeclaredNames(t.Finally.Body, into)
		}
	case *ast.ExportDeclaration:
		if t.Declaration != nil {
			into = varDeclaredNamesStmt(t.Declaration, into)
		}
	}
	return into
}

// topLevelFunctionDeclarations yields the function declarations treated as
// var-scoped at the top level of a script, module or function body.
func topLevelFunctionDeclarations(stmts []ast.Statement) []*ast.FunctionDeclaration {
	var out []*ast.FunctionDeclaration
	for _, s := range stmts {
		switch t := s.(type) {
		case *ast.FunctionDeclaration:
			out = append(out, t)
		case *ast.LabelledStatement:
			if fd, ok := t.Body.(*ast.FunctionDeclaration); ok {
				out = append(out, fd)
			}
		case *ast.ExportDeclaration:
			if fd, ok := t.Declaration.(*ast.FunctionDeclaration); ok {
				out = append(out, fd)
			}
		}
	}
	return out
}

type lexicalDecl struct {
	names   []string
	isConst bool
	fn      *ast.FunctionDeclaration
	class   *ast.ClassDeclaration
}

// lexicallyScopedDeclarations yields the let/const/class declarations of a
// statement list, plus function declarations when atBlockLevel.
func lexicallyScopedDeclarations(stmts []ast.Statement, atBlockLevel bool) []lexicalDecl {
	var out []lexicalDecl
	for _, s := range stmts {
		switch t := s.(type) {
		case *ast.VariableDeclaration:
			if t.Kind == "let" || t.Kind == "const" {
				var names []string
				for _, d := range t.List {
					names = boundNames(d.Target, names)
				}
				out = append(out, lexicalDecl{names: names, isConst: t.Kind == "const"})
			}
		case *ast.ClassDeclaration:
			out = append(out, lexicalDecl{names: []string{t.Class.Name}, class: t})
		case *ast.FunctionDeclaration:
			if atBlockLevel {
				out = append(out, lexicalDecl{names: []string{t.Function.Name}, fn: t})
			}
		case *ast.ExportDeclaration:
			if t.Declaration != nil {
				inner := lexicallyScopedDeclarations([]ast.Statement{t.Declaration}, atBlockLevel)
				out = append(out, inner...)
			}
		}
	}
	return out
}

// ---------- binding initialization ----------

// bindingInitialization binds value through pattern. A nil env means
// destructuring assignment semantics: targets are resolved as references in
// the running context instead of initialised bindings.
func (e *evaluator) bindingInitialization(p ast.Pattern, value Value, env environmentRecord) Completion {
	r := e.realm
	switch t := p.(type) {
	case *ast.IdentifierPattern:
		if env != nil {
			return env.initializeBinding(t.Name, value)
		}
		ref, c := getIdentifierReference(e.ctx.lexicalEnv, t.Name, e.strict)
		if c.Abrupt() {
			return c
		}
		return r.putValue(ref, value)
	case *ast.AssignTargetPattern:
		ref, c := e.evalRefExpr(t.Target)
		if c.Abrupt() {
			return c
		}
		return r.putValue(ref, value)
	case *ast.DefaultPattern:
		if value == _undefined {
			dc := e.namedEvaluation(t.Default, patternAnonName(t.Target))
			if dc.Abrupt() {
				return dc
			}
			value = dc.Value
		}
		return e.bindingInitialization(t.Target, value, env)
	case *ast.ArrayPattern:
		return e.iteratorBindingInitialization(t, value, env)
	case *ast.ObjectPattern:
		return e.objectBindingInitialization(t, value, env)
	case *ast.RestPattern:
		return e.bindingInitialization(t.Target, value, env)
	}
	panic("unknown pattern")
}

func patternAnonName(p ast.Pattern) string {
	if id, ok := p.(*ast.IdentifierPattern); ok {
		return id.Name
	}
	return ""
}

// iteratorBindingInitialization destructures an iterable. The iterator is
// closed on every abrupt exit.
func (e *evaluator) iteratorBindingInitialization(p *ast.ArrayPattern, value Value, env environmentRecord) Completion {
	r := e.realm
	ir, c := r.getIterator(value, false)
	if c.Abrupt() {
		return c
	}
	status := e.iteratorDestructure(p, ir, env)
	if !ir.done {
		return r.iteratorClose(ir, status)
	}
	return status
}

func (e *evaluator) iteratorDestructure(p *ast.ArrayPattern, ir *iteratorRecord, env environmentRecord) Completion {
	r := e.realm
	for _, el := range p.Elements {
		var item Value = _undefined
		if !ir.done {
			res, sc := r.iteratorStep(ir)
			if sc.Abrupt() {
				ir.done = true
				return sc
			}
			if res != nil {
				vc := r.iteratorValue(res)
				if vc.Abrupt() {
					ir.done = true
					return vc
				}
				item = vc.Value
			}
		}
		if el == nil {
			continue
		}
		if c := e.bindingInitialization(el, item, env); c.Abrupt() {
			return c
		}
	}
	if p.Rest != nil {
		rest := r.newArrayLength(0)
		n := int64(0)
		for !ir.done {
			res, sc := r.iteratorStep(ir)
			if sc.Abrupt() {
				ir.done = true
				return sc
			}
			if res == nil {
				break
			}
			vc := r.iteratorValue(res)
			if vc.Abrupt() {
				ir.done = true
				return vc
			}
			if cc := r.createDataPropertyOrThrow(rest, strKey(intToValue(n).String()), vc.Value); cc.Abrupt() {
				return cc
			}
			n++
		}
		if c := e.bindingInitialization(p.Rest, rest, env); c.Abrupt() {
			return c
		}
	}
	return emptyCompletion
}

func (e *evaluator) objectBindingInitialization(p *ast.ObjectPattern, value Value, env environmentRecord) Completion {
	r := e.realm
	switch value.(type) {
	case valueUndefined, valueNull:
		return r.throwTypeError("Cannot destructure '%s' as it is %s.", value.String(), value.String())
	}
	excluded := make(map[string]bool, len(p.Properties))
	for _, prop := range p.Properties {
		key, kc := e.evalPropertyKey(prop.Key, prop.Computed)
		if kc.Abrupt() {
			return kc
		}
		if !key.isSymbol() {
			excluded[key.s] = true
		}
		vc := r.getV(value, key)
		if vc.Abrupt() {
			return vc
		}
		if c := e.bindingInitialization(prop.Value, vc.Value, env); c.Abrupt() {
			return c
		}
	}
	if p.Rest != nil {
		rest := r.NewObject()
		if c := r.copyDataProperties(rest, value, excluded); c.Abrupt() {
			return c
		}
		return e.bindingInitialization(p.Rest, rest, env)
	}
	return emptyCompletion
}

// ---------- declaration instantiation ----------

// globalDeclarationInstantiation hoists a script's declarations into the
// global environment.
func (e *evaluator) globalDeclarationInstantiation(prog *ast.Program, env *globalEnv) Completion {
	r := e.realm

	lexDecls := lexicallyScopedDeclarations(prog.Body, false)
	varNames := varDeclaredNames(prog.Body, nil)
	for _, d := range lexDecls {
		for _, name := range d.names {
			if env.hasVarDeclaration(name) || env.hasLexicalDeclaration(name) {
				return r.throwSyntaxError("Identifier '%s' has already been declared", name)
			}
		}
	}
	for _, name := range varNames {
		if env.hasLexicalDeclaration(name) {
			return r.throwSyntaxError("Identifier '%s' has already been declared", name)
		}
	}

	fnDecls := topLevelFunctionDeclarations(prog.Body)
	declaredFns := make(map[string]bool)
	var fnsToInit []*ast.FunctionDeclaration
	for i := len(fnDecls) - 1; i >= 0; i-- {
		fd := fnDecls[i]
		name := fd.Function.Name
		if declaredFns[name] {
			continue
		}
		ok, c := env.canDeclareGlobalFunction(name)
		if c.Abrupt() {
			return c
		}
		if !ok {
			return r.throwTypeError("Cannot declare global function '%s'", name)
		}
		declaredFns[name] = true
		fnsToInit = append([]*ast.FunctionDeclaration{fd}, fnsToInit...)
	}
	declaredVars := make(map[string]bool)
	for _, name := range varNames {
		if declaredFns[name] || declaredVars[name] {
			continue
		}
		ok, c := env.canDeclareGlobalVar(name)
		if c.Abrupt() {
			return c
		}
		if !ok {
			return r.throwTypeError("Cannot declare global variable '%s'", name)
		}
		declaredVars[name] = true
	}
	for _, d := range lexDecls {
		for _, name := range d.names {
			var c Completion
			if d.isConst {
				c = env.createImmutableBinding(name, true)
			} else {
				c = env.createMutableBinding(name, false)
			}
			if c.Abrupt() {
				return c
			}
		}
	}
	for _, fd := range fnsToInit {
		fn := r.instantiateFunctionObject(fd.Function, env, e.srcFile, e.ctx.scriptOrModule, prog.Strict)
		if c := env.createGlobalFunctionBinding(fd.Function.Name, fn, false); c.Abrupt() {
			return c
		}
	}
	for _, name := range varNames {
		if declaredVars[name] {
			if c := env.createGlobalVarBinding(name, false); c.Abrupt() {
				return c
			}
		}
	}
	return emptyCompletion
}

// functionDeclarationInstantiation prepares a function body's scope: formal
// parameter bindings, the arguments object, hoisted vars, lexical bindings
// and nested function declarations, in the specified observable order.
func (e *evaluator) functionDeclarationInstantiation(f *funcObject, args []Value) Completion {
	r := e.realm
	env := e.ctx.lexicalEnv

	var paramNames []string
	for _, p := range f.params {
		paramNames = boundNames(p, paramNames)
	}
	hasDuplicates := false
	seen := make(map[string]bool, len(paramNames))
	for _, n := range paramNames {
		if seen[n] {
			hasDuplicates = true
		}
		seen[n] = true
	}
	simpleParameterList := true
	hasParameterExpressions := false
	for _, p := range f.params {
		switch p.(type) {
		case *ast.IdentifierPattern:
		case *ast.DefaultPattern:
			simpleParameterList = false
			hasParameterExpressions = true
		default:
			simpleParameterList = false
		}
	}

	varNames := varDeclaredNames(f.body, nil)
	fnDecls := topLevelFunctionDeclarations(f.body)

	argumentsObjectNeeded := f.thisMode != thisModeLexical
	if seen["arguments"] {
		argumentsObjectNeeded = false
	}
	if argumentsObjectNeeded {
		for _, d := range lexicallyScopedDeclarations(f.body, false) {
			for _, n := range d.names {
				if n == "arguments" {
					argumentsObjectNeeded = false
				}
			}
		}
		for _, fd := range fnDecls {
			if fd.Function.Name == "arguments" {
				argumentsObjectNeeded = false
			}
		}
	}

	for _, n := range paramNames {
		hasC := env.hasBinding(n)
		if hasC.Value == valueTrue {
			continue
		}
		if c := env.createMutableBinding(n, false); c.Abrupt() {
			return c
		}
		if hasDuplicates {
			if c := env.initializeBinding(n, _undefined); c.Abrupt() {
				return c
			}
		}
	}

	if argumentsObjectNeeded {
		var argsObj *Object
		if f.strict || !simpleParameterList {
			argsObj = r.createUnmappedArguments(args)
		} else {
			simpleNames := make([]string, 0, len(f.params))
			for _, p := range f.params {
				if id, ok := p.(*ast.IdentifierPattern); ok {
					simpleNames = append(simpleNames, id.Name)
				}
			}
			argsObj = r.createMappedArguments(f.val, simpleNames, args, env)
		}
		if f.strict {
			if c := env.createImmutableBinding("arguments", false); c.Abrupt() {
				return c
			}
		} else {
			if c := env.createMutableBinding("arguments", false); c.Abrupt() {
				return c
			}
		}
		if c := env.initializeBinding("arguments", argsObj); c.Abrupt() {
			return c
		}
	}

	// Formal parameter binding, observable through default-value side
	// effects running left to right.
	argIdx := 0
	for _, p := range f.params {
		if rest, ok := p.(*ast.RestPattern); ok {
			restArr := r.newArrayLength(0)
			n := int64(0)
			for ; argIdx < len(args); argIdx++ {
				r.createDataPropertyOrThrow(restArr, strKey(intToValue(n).String()), args[argIdx])
				n++
			}
			if c := e.bindingInitializationMaybeInit(rest.Target, restArr, env, hasDuplicates); c.Abrupt() {
				return c
			}
			continue
		}
		var arg Value = _undefined
		if argIdx < len(args) {
			arg = args[argIdx]
		}
		argIdx++
		if c := e.bindingInitializationMaybeInit(p, arg, env, hasDuplicates); c.Abrupt() {
			return c
		}
	}

	// Var environment: separate when parameter expressions could capture.
	varEnv := env
	if hasParameterExpressions {
		varEnv = newDeclarativeEnv(r, env)
		e.ctx.variableEnv = varEnv
		e.ctx.lexicalEnv = varEnv
	} else {
		e.ctx.variableEnv = env
	}
	instantiated := make(map[string]bool)
	for _, n := range varNames {
		if instantiated[n] {
			continue
		}
		instantiated[n] = true
		hasC := varEnv.hasBinding(n)
		if hasC.Value == valueTrue {
			continue
		}
		if c := varEnv.createMutableBinding(n, false); c.Abrupt() {
			return c
		}
		var initial Value = _undefined
		if hasParameterExpressions && seen[n] {
			vc := env.getBindingValue(n, false)
			if !vc.Abrupt() {
				initial = vc.Value
			}
		}
		if c := varEnv.initializeBinding(n, initial); c.Abrupt() {
			return c
		}
	}

	lexEnv := varEnv
	if !f.strict {
		lexEnv = newDeclarativeEnv(r, varEnv)
	}
	e.ctx.lexicalEnv = lexEnv

	for _, d := range lexicallyScopedDeclarations(f.body, false) {
		for _, n := range d.names {
			var c Completion
			if d.isConst {
				c = lexEnv.createImmutableBinding(n, true)
			} else {
				c = lexEnv.createMutableBinding(n, false)
			}
			if c.Abrupt() {
				return c
			}
		}
	}

	declared := make(map[string]bool)
	for i := len(fnDecls) - 1; i >= 0; i-- {
		fd := fnDecls[i]
		if declared[fd.Function.Name] {
			continue
		}
		declared[fd.Function.Name] = true
		fn := r.instantiateFunctionObject(fd.Function, lexEnv, e.srcFile, e.ctx.scriptOrModule, f.strict)
		if c := varEnv.setMutableBinding(fd.Function.Name, fn, false); c.Abrupt() {
			return c
		}
	}
	return emptyCompletion
}

// bindingInitializationMaybeInit initialises parameter bindings: when the
// parameter list has duplicates the bindings were pre-initialised, so plain
// set semantics apply.
func (e *evaluator) bindingInitializationMaybeInit(p ast.Pattern, value Value, env environmentRecord, hasDuplicates bool) Completion {
	if hasDuplicates {
		if id, ok := p.(*ast.IdentifierPattern); ok {
			return env.setMutableBinding(id.Name, value, false)
		}
	}
	return e.bindingInitialization(p, value, env)
}

// blockDeclarationInstantiation creates the TDZ bindings of a block scope and
// initialises block-level function declarations.
func (e *evaluator) blockDeclarationInstantiation(stmts []ast.Statement, env environmentRecord) Completion {
	r := e.realm
	for _, d := range lexicallyScopedDeclarations(stmts, true) {
		for _, n := range d.names {
			var c Completion
			if d.isConst {
				c = env.createImmutableBinding(n, true)
			} else {
				c = env.createMutableBinding(n, false)
			}
			if c.Abrupt() {
				return c
			}
		}
		if d.fn != nil {
			fn := r.instantiateFunctionObject(d.fn.Function, env, e.srcFile, e.ctx.scriptOrModule, e.strict)
			if c := env.initializeBinding(d.fn.Function.Name, fn); c.Abrupt() {
				return c
			}
		}
	}
	return emptyCompletion
}

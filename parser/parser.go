package parser

import (
	"github.com/joeyhub/harmony/ast"
)

type parser struct {
	lx   *lexer
	tok  token
	prev token

	// noIn suppresses the `in` operator while parsing a for-statement head.
	noIn bool
}

// ParseScript parses source in the script goal.
func ParseScript(name, src string) (prog *ast.Program, err error) {
	return parse(name, src, false)
}

// ParseModule parses source in the module goal. Module code is strict.
func ParseModule(name, src string) (prog *ast.Program, err error) {
	return parse(name, src, true)
}

func parse(name, src string, module bool) (prog *ast.Program, err error) {
	p := &parser{lx: &lexer{src: src, name: name}}
	defer func() {
		if x := recover(); x != nil {
			if pe, ok := x.(*parseError); ok {
				err = pe
				return
			}
			panic(x)
		}
	}()
	p.advance()
	prog = &ast.Program{Module: module, Strict: module}
	if !module && p.tok.kind == tkString && (p.tok.str == "use strict") {
		prog.Strict = true
	}
	for p.tok.kind != tkEOF {
		s := p.parseStatement()
		prog.Body = append(prog.Body, s)
		switch t := s.(type) {
		case *ast.ImportDeclaration:
			prog.ImportEntries = append(prog.ImportEntries, t)
		case *ast.ExportDeclaration:
			prog.ExportEntries = append(prog.ExportEntries, t)
		}
	}
	return prog, nil
}

func (p *parser) fail(format string, args ...interface{}) {
	panic(p.lx.errorf(int(p.tok.idx), format, args...))
}

// regexAllowed reports whether a '/' at this point starts a regexp.
func (p *parser) regexAllowed() bool {
	switch p.prev.kind {
	case tkIdent, tkNumber, tkBigInt, tkString, tkTemplate, tkRegExp:
		return false
	case tkKeyword:
		switch p.prev.literal {
		case "this", "true", "false", "null", "super":
			return false
		}
		return true
	case tkPunct:
		switch p.prev.literal {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return true
}

func (p *parser) advance() {
	p.prev = p.tok
	tok, err := p.lx.next(p.regexAllowed())
	if err != nil {
		panic(err)
	}
	p.tok = tok
}

func (p *parser) is(lit string) bool {
	return (p.tok.kind == tkPunct || p.tok.kind == tkKeyword) && p.tok.literal == lit
}

func (p *parser) accept(lit string) bool {
	if p.is(lit) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(lit string) {
	if !p.accept(lit) {
		p.fail("Unexpected token %q, expected %q", p.tok.literal, lit)
	}
}

// expectSemicolon applies automatic semicolon insertion.
func (p *parser) expectSemicolon() {
	if p.accept(";") {
		return
	}
	if p.is("}") || p.tok.kind == tkEOF || p.tok.newlineBefore {
		return
	}
	p.fail("Unexpected token %q", p.tok.literal)
}

func (p *parser) identName() string {
	if p.tok.kind != tkIdent && !(p.tok.kind == tkKeyword && contextualKeyword(p.tok.literal)) {
		p.fail("Unexpected token %q, expected identifier", p.tok.literal)
	}
	name := p.tok.literal
	p.advance()
	return name
}

func contextualKeyword(name string) bool {
	switch name {
	case "of", "let", "static", "async", "get", "set", "await", "yield":
		return true
	}
	return false
}

// ---------- statements ----------

func (p *parser) parseStatement() ast.Statement {
	idx := p.tok.idx
	if p.tok.kind == tkKeyword {
		switch p.tok.literal {
		case "var", "const":
			return p.parseVariableDeclaration()
		case "let":
			// `let` is a declaration only when followed by a binding form.
			st := p.lx.state()
			save := p.tok
			p.advance()
			isDecl := p.tok.kind == tkIdent || p.is("[") || p.is("{") ||
				(p.tok.kind == tkKeyword && contextualKeyword(p.tok.literal))
			p.lx.restore(st)
			p.tok = save
			if isDecl {
				return p.parseVariableDeclaration()
			}
		case "function":
			p.advance()
			return &ast.FunctionDeclaration{Function: p.parseFunctionLiteral(idx, false, false)}
		case "async":
			st := p.lx.state()
			save := p.tok
			p.advance()
			if p.is("function") && !p.tok.newlineBefore {
				p.advance()
				return &ast.FunctionDeclaration{Function: p.parseFunctionLiteral(idx, true, false)}
			}
			p.lx.restore(st)
			p.tok = save
		case "class":
			p.advance()
			return &ast.ClassDeclaration{Class: p.parseClassLiteral(idx)}
		case "if":
			return p.parseIf()
		case "for":
			return p.parseFor()
		case "while":
			p.advance()
			p.expect("(")
			test := p.parseExpression()
			p.expect(")")
			body := p.parseStatement()
			return &ast.WhileStatement{Idx: idx, Test: test, Body: body}
		case "do":
			p.advance()
			body := p.parseStatement()
			p.expect("while")
			p.expect("(")
			test := p.parseExpression()
			p.expect(")")
			p.accept(";")
			return &ast.DoWhileStatement{Idx: idx, Body: body, Test: test}
		case "switch":
			return p.parseSwitch()
		case "return":
			p.advance()
			var arg ast.Expression
			if !p.is(";") && !p.is("}") && p.tok.kind != tkEOF && !p.tok.newlineBefore {
				arg = p.parseExpression()
			}
			p.expectSemicolon()
			return &ast.ReturnStatement{Idx: idx, Argument: arg}
		case "throw":
			p.advance()
			if p.tok.newlineBefore {
				p.fail("Illegal newline after throw")
			}
			arg := p.parseExpression()
			p.expectSemicolon()
			return &ast.ThrowStatement{Idx: idx, Argument: arg}
		case "break":
			p.advance()
			label := ""
			if p.tok.kind == tkIdent && !p.tok.newlineBefore {
				label = p.identName()
			}
			p.expectSemicolon()
			return &ast.BreakStatement{Idx: idx, Label: label}
		case "continue":
			p.advance()
			label := ""
			if p.tok.kind == tkIdent && !p.tok.newlineBefore {
				label = p.identName()
			}
			p.expectSemicolon()
			return &ast.ContinueStatement{Idx: idx, Label: label}
		case "try":
			return p.parseTry()
		case "with":
			p.advance()
			p.expect("(")
			obj := p.parseExpression()
			p.expect(")")
			body := p.parseStatement()
			return &ast.WithStatement{Idx: idx, Object: obj, Body: body}
		case "debugger":
			p.advance()
			p.expectSemicolon()
			return &ast.DebuggerStatement{Idx: idx}
		case "import":
			st := p.lx.state()
			save := p.tok
			p.advance()
			if p.is("(") || p.is(".") {
				p.lx.restore(st)
				p.tok = save
				break
			}
			return p.parseImportDeclaration(idx)
		case "export":
			return p.parseExportDeclaration(idx)
		}
	}
	if p.is("{") {
		return p.parseBlock()
	}
	if p.accept(";") {
		return &ast.EmptyStatement{Idx: idx}
	}
	// Labelled statement: identifier ':'
	if p.tok.kind == tkIdent {
		st := p.lx.state()
		save := p.tok
		name := p.tok.literal
		p.advance()
		if p.accept(":") {
			body := p.parseStatement()
			return &ast.LabelledStatement{Idx: idx, Label: name, Body: body}
		}
		p.lx.restore(st)
		p.tok = save
	}
	expr := p.parseExpression()
	p.expectSemicolon()
	return &ast.ExpressionStatement{Expression: expr}
}

func (p *parser) parseBlock() *ast.BlockStatement {
	idx := p.tok.idx
	p.expect("{")
	var body []ast.Statement
	for !p.is("}") && p.tok.kind != tkEOF {
		body = append(body, p.parseStatement())
	}
	p.expect("}")
	return &ast.BlockStatement{Idx: idx, Body: body}
}

func (p *parser) parseVariableDeclaration() *ast.VariableDeclaration {
	idx := p.tok.idx
	kind := p.tok.literal
	p.advance()
	decl := &ast.VariableDeclaration{Idx: idx, Kind: kind}
	for {
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.accept("=") {
			init = p.parseAssignExpr()
		}
		decl.List = append(decl.List, ast.VariableDeclarator{Target: target, Init: init})
		if !p.accept(",") {
			break
		}
	}
	p.expectSemicolon()
	return decl
}

func (p *parser) parseBindingTarget() ast.Pattern {
	idx := p.tok.idx
	switch {
	case p.is("["):
		p.advance()
		out := &ast.ArrayPattern{Idx: idx}
		for !p.is("]") {
			if p.accept(",") {
				out.Elements = append(out.Elements, nil)
				continue
			}
			if p.accept("...") {
				out.Rest = p.parseBindingTarget()
				break
			}
			el := p.parseBindingTarget()
			if p.accept("=") {
				el = &ast.DefaultPattern{Target: el, Default: p.parseAssignExpr()}
			}
			out.Elements = append(out.Elements, el)
			if !p.is("]") {
				p.expect(",")
			}
		}
		p.expect("]")
		return out
	case p.is("{"):
		p.advance()
		out := &ast.ObjectPattern{Idx: idx}
		for !p.is("}") {
			if p.accept("...") {
				out.Rest = p.parseBindingTarget()
				break
			}
			computed := false
			var key ast.Expression
			if p.accept("[") {
				computed = true
				key = p.parseAssignExpr()
				p.expect("]")
			} else if p.tok.kind == tkString {
				key = &ast.StringLiteral{Idx: p.tok.idx, Value: p.tok.str}
				p.advance()
			} else if p.tok.kind == tkNumber {
				key = &ast.NumberLiteral{Idx: p.tok.idx, Value: p.tok.num}
				p.advance()
			} else {
				key = &ast.Identifier{Idx: p.tok.idx, Name: p.identName()}
			}
			var value ast.Pattern
			if p.accept(":") {
				value = p.parseBindingTarget()
			} else {
				id, ok := key.(*ast.Identifier)
				if !ok {
					p.fail("Invalid shorthand property pattern")
				}
				value = &ast.IdentifierPattern{Idx: id.Idx, Name: id.Name}
			}
			if p.accept("=") {
				value = &ast.DefaultPattern{Target: value, Default: p.parseAssignExpr()}
			}
			out.Properties = append(out.Properties, ast.PropertyPattern{Key: key, Computed: computed, Value: value})
			if !p.is("}") {
				p.expect(",")
			}
		}
		p.expect("}")
		return out
	default:
		return &ast.IdentifierPattern{Idx: idx, Name: p.identName()}
	}
}

func (p *parser) parseIf() ast.Statement {
	idx := p.tok.idx
	p.expect("if")
	p.expect("(")
	test := p.parseExpression()
	p.expect(")")
	consequent := p.parseStatement()
	var alternate ast.Statement
	if p.accept("else") {
		alternate = p.parseStatement()
	}
	return &ast.IfStatement{Idx: idx, Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *parser) parseFor() ast.Statement {
	idx := p.tok.idx
	p.expect("for")
	p.expect("(")

	var init ast.Node
	if p.is(";") {
		// no init
	} else if p.is("var") || p.is("let") || p.is("const") {
		declIdx := p.tok.idx
		kind := p.tok.literal
		p.advance()
		target := p.parseBindingTarget()
		if p.is("of") || p.is("in") {
			isOf := p.is("of")
			p.advance()
			var obj ast.Expression
			if isOf {
				obj = p.parseAssignExpr()
			} else {
				obj = p.parseExpression()
			}
			p.expect(")")
			body := p.parseStatement()
			head := &ast.VariableDeclaration{Idx: declIdx, Kind: kind, List: []ast.VariableDeclarator{{Target: target}}}
			if isOf {
				return &ast.ForOfStatement{Idx: idx, Left: head, Object: obj, Body: body}
			}
			return &ast.ForInStatement{Idx: idx, Left: head, Object: obj, Body: body}
		}
		decl := &ast.VariableDeclaration{Idx: declIdx, Kind: kind}
		var firstInit ast.Expression
		if p.accept("=") {
			firstInit = p.parseAssignExpr()
		}
		decl.List = append(decl.List, ast.VariableDeclarator{Target: target, Init: firstInit})
		for p.accept(",") {
			t := p.parseBindingTarget()
			var ini ast.Expression
			if p.accept("=") {
				ini = p.parseAssignExpr()
			}
			decl.List = append(decl.List, ast.VariableDeclarator{Target: t, Init: ini})
		}
		init = decl
	} else {
		p.noIn = true
		expr := p.parseExpression()
		p.noIn = false
		if p.is("of") || p.is("in") {
			isOf := p.is("of")
			p.advance()
			pattern, errMsg := exprToForPattern(expr)
			if errMsg != "" {
				p.fail("%s", errMsg)
			}
			var obj ast.Expression
			if isOf {
				obj = p.parseAssignExpr()
			} else {
				obj = p.parseExpression()
			}
			p.expect(")")
			body := p.parseStatement()
			if isOf {
				return &ast.ForOfStatement{Idx: idx, Left: pattern, Object: obj, Body: body}
			}
			return &ast.ForInStatement{Idx: idx, Left: pattern, Object: obj, Body: body}
		}
		init = expr
	}
	p.expect(";")
	var test, update ast.Expression
	if !p.is(";") {
		test = p.parseExpression()
	}
	p.expect(";")
	if !p.is(")") {
		update = p.parseExpression()
	}
	p.expect(")")
	body := p.parseStatement()
	return &ast.ForStatement{Idx: idx, Init: init, Test: test, Update: update, Body: body}
}

// exprToForPattern converts a for-in/of head expression into a pattern.
func exprToForPattern(expr ast.Expression) (ast.Pattern, string) {
	switch t := expr.(type) {
	case *ast.Identifier:
		return &ast.AssignTargetPattern{Target: t}, ""
	case *ast.MemberExpression:
		return &ast.AssignTargetPattern{Target: t}, ""
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		return &ast.AssignTargetPattern{Target: t.(ast.Expression)}, ""
	}
	return nil, "Invalid left-hand side in for-in/of loop"
}

func (p *parser) parseSwitch() ast.Statement {
	idx := p.tok.idx
	p.expect("switch")
	p.expect("(")
	disc := p.parseExpression()
	p.expect(")")
	p.expect("{")
	out := &ast.SwitchStatement{Idx: idx, Discriminant: disc}
	sawDefault := false
	for !p.is("}") {
		var cs ast.SwitchCase
		if p.accept("case") {
			cs.Test = p.parseExpression()
		} else {
			p.expect("default")
			if sawDefault {
				p.fail("More than one default clause in switch statement")
			}
			sawDefault = true
		}
		p.expect(":")
		for !p.is("case") && !p.is("default") && !p.is("}") {
			cs.Body = append(cs.Body, p.parseStatement())
		}
		out.Cases = append(out.Cases, cs)
	}
	p.expect("}")
	return out
}

func (p *parser) parseTry() ast.Statement {
	idx := p.tok.idx
	p.expect("try")
	block := p.parseBlock()
	out := &ast.TryStatement{Idx: idx, Block: block}
	if p.accept("catch") {
		clause := &ast.CatchClause{}
		if p.accept("(") {
			clause.Param = p.parseBindingTarget()
			p.expect(")")
		}
		clause.Body = p.parseBlock()
		out.Catch = clause
	}
	if p.accept("finally") {
		out.Finally = p.parseBlock()
	}
	if out.Catch == nil && out.Finally == nil {
		p.fail("Missing catch or finally after try")
	}
	return out
}

// ---------- modules ----------

func (p *parser) parseImportDeclaration(idx ast.Idx) ast.Statement {
	out := &ast.ImportDeclaration{Idx: idx}
	if p.tok.kind == tkString {
		out.Specifier = p.tok.str
		p.advance()
		p.expectSemicolon()
		return out
	}
	if p.tok.kind == tkIdent {
		out.Imports = append(out.Imports, ast.ImportSpecifier{ImportName: "default", LocalName: p.identName()})
		if p.accept(",") {
			p.parseImportClauseRest(out)
		}
	} else {
		p.parseImportClauseRest(out)
	}
	if p.tok.literal != "from" {
		p.fail("Unexpected token %q, expected \"from\"", p.tok.literal)
	}
	p.advance()
	if p.tok.kind != tkString {
		p.fail("Module specifier must be a string literal")
	}
	out.Specifier = p.tok.str
	p.advance()
	p.expectSemicolon()
	return out
}

func (p *parser) parseImportClauseRest(out *ast.ImportDeclaration) {
	if p.accept("*") {
		if !p.is("as") && p.tok.literal != "as" {
			p.fail("Unexpected token %q, expected \"as\"", p.tok.literal)
		}
		p.advance()
		out.Imports = append(out.Imports, ast.ImportSpecifier{ImportName: "*", LocalName: p.identName()})
		return
	}
	p.expect("{")
	for !p.is("}") {
		importName := p.importExportName()
		localName := importName
		if p.tok.literal == "as" {
			p.advance()
			localName = p.identName()
		}
		out.Imports = append(out.Imports, ast.ImportSpecifier{ImportName: importName, LocalName: localName})
		if !p.is("}") {
			p.expect(",")
		}
	}
	p.expect("}")
}

func (p *parser) importExportName() string {
	if p.tok.kind == tkIdent || p.tok.kind == tkKeyword {
		name := p.tok.literal
		p.advance()
		return name
	}
	p.fail("Unexpected token %q in import/export clause", p.tok.literal)
	return ""
}

func (p *parser) parseExportDeclaration(idx ast.Idx) ast.Statement {
	p.expect("export")
	out := &ast.ExportDeclaration{Idx: idx}
	switch {
	case p.accept("*"):
		out.Wildcard = true
		if p.tok.literal != "from" {
			p.fail("Unexpected token %q, expected \"from\"", p.tok.literal)
		}
		p.advance()
		if p.tok.kind != tkString {
			p.fail("Module specifier must be a string literal")
		}
		out.Specifier = p.tok.str
		p.advance()
		p.expectSemicolon()
	case p.accept("default"):
		out.Default = true
		switch {
		case p.is("function"):
			fnIdx := p.tok.idx
			p.advance()
			out.Declaration = &ast.FunctionDeclaration{Function: p.parseFunctionLiteral(fnIdx, false, true)}
		case p.is("class"):
			clsIdx := p.tok.idx
			p.advance()
			out.Declaration = &ast.ClassDeclaration{Class: p.parseClassLiteral(clsIdx)}
		default:
			out.Expression = p.parseAssignExpr()
			p.expectSemicolon()
		}
	case p.is("{"):
		p.advance()
		for !p.is("}") {
			localName := p.importExportName()
			exportName := localName
			if p.tok.literal == "as" {
				p.advance()
				exportName = p.importExportName()
			}
			out.Specs = append(out.Specs, ast.ExportSpecifier{LocalName: localName, ExportName: exportName})
			if !p.is("}") {
				p.expect(",")
			}
		}
		p.expect("}")
		if p.tok.literal == "from" {
			p.advance()
			if p.tok.kind != tkString {
				p.fail("Module specifier must be a string literal")
			}
			out.Specifier = p.tok.str
			p.advance()
		}
		p.expectSemicolon()
	default:
		out.Declaration = p.parseStatement()
	}
	return out
}

// ---------- functions and classes ----------

// parseFunctionLiteral parses from after the function keyword. anonymousOK
// permits a missing name (export default / expressions).
func (p *parser) parseFunctionLiteral(idx ast.Idx, async, anonymousOK bool) *ast.FunctionLiteral {
	srcStart := int(idx)
	generator := p.accept("*")
	name := ""
	if p.tok.kind == tkIdent {
		name = p.identName()
	} else if !anonymousOK && !p.is("(") {
		name = p.identName()
	}
	lit := &ast.FunctionLiteral{
		Idx:       idx,
		Name:      name,
		Async:     async,
		Generator: generator,
	}
	lit.Params = p.parseParams()
	lit.Body, lit.Strict = p.parseFunctionBody()
	lit.Source = p.lx.src[srcStart:p.lx.pos]
	return lit
}

func (p *parser) parseParams() []ast.Pattern {
	p.expect("(")
	var params []ast.Pattern
	for !p.is(")") {
		if p.accept("...") {
			params = append(params, &ast.RestPattern{Idx: p.tok.idx, Target: p.parseBindingTarget()})
			break
		}
		param := p.parseBindingTarget()
		if p.accept("=") {
			param = &ast.DefaultPattern{Target: param, Default: p.parseAssignExpr()}
		}
		params = append(params, param)
		if !p.is(")") {
			p.expect(",")
		}
	}
	p.expect(")")
	return params
}

func (p *parser) parseFunctionBody() ([]ast.Statement, bool) {
	p.expect("{")
	strict := false
	if p.tok.kind == tkString && p.tok.str == "use strict" {
		strict = true
	}
	var body []ast.Statement
	for !p.is("}") && p.tok.kind != tkEOF {
		body = append(body, p.parseStatement())
	}
	p.expect("}")
	return body, strict
}

func (p *parser) parseClassLiteral(idx ast.Idx) *ast.ClassLiteral {
	lit := &ast.ClassLiteral{Idx: idx}
	if p.tok.kind == tkIdent {
		lit.Name = p.identName()
	}
	if p.accept("extends") {
		lit.SuperClass = p.parseUnaryPostfix()
	}
	p.expect("{")
	for !p.is("}") {
		if p.accept(";") {
			continue
		}
		el := ast.ClassElement{Kind: ast.PropertyKindMethod}
		if p.is("static") {
			st := p.lx.state()
			save := p.tok
			p.advance()
			if p.is("(") {
				p.lx.restore(st)
				p.tok = save
			} else {
				el.Static = true
			}
		}
		async := false
		generator := false
		if p.is("get") || p.is("set") {
			kind := p.tok.literal
			st := p.lx.state()
			save := p.tok
			p.advance()
			if p.is("(") {
				p.lx.restore(st)
				p.tok = save
			} else {
				if kind == "get" {
					el.Kind = ast.PropertyKindGet
				} else {
					el.Kind = ast.PropertyKindSet
				}
			}
		} else if p.is("async") {
			st := p.lx.state()
			save := p.tok
			p.advance()
			if p.is("(") {
				p.lx.restore(st)
				p.tok = save
			} else {
				async = true
			}
		}
		if p.accept("*") {
			generator = true
		}
		methodIdx := p.tok.idx
		if p.accept("[") {
			el.Computed = true
			el.Key = p.parseAssignExpr()
			p.expect("]")
		} else if p.tok.kind == tkString {
			el.Key = &ast.StringLiteral{Idx: p.tok.idx, Value: p.tok.str}
			p.advance()
		} else if p.tok.kind == tkNumber {
			el.Key = &ast.NumberLiteral{Idx: p.tok.idx, Value: p.tok.num}
			p.advance()
		} else {
			el.Key = &ast.Identifier{Idx: p.tok.idx, Name: p.importExportName()}
		}
		fn := &ast.FunctionLiteral{
			Idx:       methodIdx,
			Async:     async,
			Generator: generator,
			Strict:    true,
		}
		fn.Params = p.parseParams()
		fn.Body, _ = p.parseFunctionBody()
		el.Value = fn
		lit.Body = append(lit.Body, el)
	}
	p.expect("}")
	return lit
}

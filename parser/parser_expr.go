package parser

import (
	"github.com/joeyhub/harmony/ast"
)

func (p *parser) parseExpression() ast.Expression {
	expr := p.parseAssignExpr()
	if !p.is(",") {
		return expr
	}
	seq := &ast.SequenceExpression{Idx: expr.Idx0(), Expressions: []ast.Expression{expr}}
	for p.accept(",") {
		seq.Expressions = append(seq.Expressions, p.parseAssignExpr())
	}
	return seq
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true,
	"|=": true, "^=": true, "&&=": true, "||=": true, "??=": true,
}

func (p *parser) parseAssignExpr() ast.Expression {
	idx := p.tok.idx

	if p.is("yield") {
		p.advance()
		out := &ast.YieldExpression{Idx: idx}
		if p.accept("*") {
			out.Delegate = true
			out.Argument = p.parseAssignExpr()
			return out
		}
		if !p.is(")") && !p.is("]") && !p.is("}") && !p.is(",") && !p.is(";") && !p.is(":") && p.tok.kind != tkEOF && !p.tok.newlineBefore {
			out.Argument = p.parseAssignExpr()
		}
		return out
	}
	if p.is("async") {
		// Possible async arrow function.
		st := p.lx.state()
		save := p.tok
		p.advance()
		if !p.tok.newlineBefore && (p.tok.kind == tkIdent || p.is("(")) {
			if arrow := p.tryParseArrow(idx, true); arrow != nil {
				return arrow
			}
		}
		p.lx.restore(st)
		p.tok = save
	}
	if p.tok.kind == tkIdent || p.is("(") {
		if arrow := p.tryParseArrow(idx, false); arrow != nil {
			return arrow
		}
	}

	left := p.parseConditional()
	if (p.tok.kind == tkPunct) && assignOps[p.tok.literal] {
		op := p.tok.literal
		p.advance()
		value := p.parseAssignExpr()
		return &ast.AssignExpression{Idx: idx, Operator: op, Target: left, Value: value}
	}
	return left
}

// tryParseArrow attempts to parse an arrow function at the current position,
// returning nil (with the position restored) when the lookahead does not end
// in "=>".
func (p *parser) tryParseArrow(idx ast.Idx, async bool) ast.Expression {
	st := p.lx.state()
	save := p.tok

	var params []ast.Pattern
	ok := func() (ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		if p.tok.kind == tkIdent {
			params = []ast.Pattern{&ast.IdentifierPattern{Idx: p.tok.idx, Name: p.tok.literal}}
			p.advance()
		} else {
			params = p.parseParams()
		}
		return p.is("=>") && !p.tok.newlineBefore
	}()
	if !ok {
		p.lx.restore(st)
		p.tok = save
		return nil
	}
	p.expect("=>")
	lit := &ast.FunctionLiteral{
		Idx:    idx,
		Params: params,
		Arrow:  true,
		Async:  async,
	}
	if p.is("{") {
		lit.Body, lit.Strict = p.parseFunctionBody()
	} else {
		lit.ExprBody = p.parseAssignExpr()
	}
	lit.Source = p.lx.src[int(idx):p.lx.pos]
	return lit
}

func (p *parser) parseConditional() ast.Expression {
	idx := p.tok.idx
	test := p.parseNullish()
	if p.accept("?") {
		consequent := p.parseAssignExpr()
		p.expect(":")
		alternate := p.parseAssignExpr()
		return &ast.ConditionalExpression{Idx: idx, Test: test, Consequent: consequent, Alternate: alternate}
	}
	return test
}

func (p *parser) parseNullish() ast.Expression {
	idx := p.tok.idx
	left := p.parseLogicalOr()
	for p.is("??") {
		p.advance()
		right := p.parseLogicalOr()
		left = &ast.LogicalExpression{Idx: idx, Operator: "??", Left: left, Right: right}
	}
	return left
}

func (p *parser) parseLogicalOr() ast.Expression {
	idx := p.tok.idx
	left := p.parseLogicalAnd()
	for p.is("||") {
		p.advance()
		right := p.parseLogicalAnd()
		left = &ast.LogicalExpression{Idx: idx, Operator: "||", Left: left, Right: right}
	}
	return left
}

func (p *parser) parseLogicalAnd() ast.Expression {
	idx := p.tok.idx
	left := p.parseBinary(0)
	for p.is("&&") {
		p.advance()
		right := p.parseBinary(0)
		left = &ast.LogicalExpression{Idx: idx, Operator: "&&", Left: left, Right: right}
	}
	return left
}

// binaryPrecedence, higher binds tighter.
var binaryPrecedence = map[string]int{
	"|": 1, "^": 2, "&": 3,
	"==": 4, "!=": 4, "===": 4, "!==": 4,
	"<": 5, ">": 5, "<=": 5, ">=": 5, "in": 5, "instanceof": 5,
	"<<": 6, ">>": 6, ">>>": 6,
	"+": 7, "-": 7,
	"*": 8, "/": 8, "%": 8,
	"**": 9,
}

func (p *parser) parseBinary(minPrec int) ast.Expression {
	idx := p.tok.idx
	left := p.parseUnaryPrefix()
	for {
		op := p.tok.literal
		if p.tok.kind != tkPunct && p.tok.kind != tkKeyword {
			return left
		}
		prec, isBinary := binaryPrecedence[op]
		if !isBinary || prec < minPrec {
			return left
		}
		if op == "in" && p.noIn {
			return left
		}
		p.advance()
		var right ast.Expression
		if op == "**" {
			// Exponentiation is right-associative.
			right = p.parseBinary(prec)
		} else {
			right = p.parseBinary(prec + 1)
		}
		left = &ast.BinaryExpression{Idx: idx, Operator: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnaryPrefix() ast.Expression {
	idx := p.tok.idx
	switch p.tok.literal {
	case "!", "~", "+", "-":
		if p.tok.kind == tkPunct {
			op := p.tok.literal
			p.advance()
			return &ast.UnaryExpression{Idx: idx, Operator: op, Operand: p.parseUnaryPrefix()}
		}
	case "typeof", "void", "delete":
		p.advance()
		return &ast.UnaryExpression{Idx: idx, Operator: p.prev.literal, Operand: p.parseUnaryPrefix()}
	case "await":
		p.advance()
		return &ast.AwaitExpression{Idx: idx, Argument: p.parseUnaryPrefix()}
	case "++", "--":
		op := p.tok.literal
		p.advance()
		return &ast.UpdateExpression{Idx: idx, Operator: op, Operand: p.parseUnaryPrefix(), Prefix: true}
	}
	return p.parseUnaryPostfix()
}

func (p *parser) parseUnaryPostfix() ast.Expression {
	idx := p.tok.idx
	expr := p.parseCallOrMember()
	if (p.is("++") || p.is("--")) && !p.tok.newlineBefore {
		op := p.tok.literal
		p.advance()
		return &ast.UpdateExpression{Idx: idx, Operator: op, Operand: expr}
	}
	return expr
}

func (p *parser) parseCallOrMember() ast.Expression {
	expr := p.parseNewExpr()
	return p.parseCallTail(expr)
}

func (p *parser) parseCallTail(expr ast.Expression) ast.Expression {
	for {
		switch {
		case p.is("."):
			p.advance()
			name := p.memberName()
			expr = &ast.MemberExpression{Idx: expr.Idx0(), Object: expr, Property: name}
		case p.is("["):
			p.advance()
			prop := p.parseExpression()
			p.expect("]")
			expr = &ast.MemberExpression{Idx: expr.Idx0(), Object: expr, Property: prop, Computed: true}
		case p.is("("):
			args := p.parseArguments()
			expr = &ast.CallExpression{Idx: expr.Idx0(), Callee: expr, Arguments: args}
		case p.tok.kind == tkTemplate:
			expr = p.parseTemplateLiteral(expr)
		default:
			return expr
		}
	}
}

func (p *parser) memberName() *ast.Identifier {
	if p.tok.kind != tkIdent && p.tok.kind != tkKeyword {
		p.fail("Unexpected token %q, expected property name", p.tok.literal)
	}
	name := &ast.Identifier{Idx: p.tok.idx, Name: p.tok.literal}
	p.advance()
	return name
}

func (p *parser) parseArguments() []ast.Expression {
	p.expect("(")
	var args []ast.Expression
	for !p.is(")") {
		if p.accept("...") {
			args = append(args, &ast.SpreadElement{Idx: p.prev.idx, Argument: p.parseAssignExpr()})
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if !p.is(")") {
			p.expect(",")
		}
	}
	p.expect(")")
	return args
}

func (p *parser) parseNewExpr() ast.Expression {
	idx := p.tok.idx
	if p.is("new") {
		p.advance()
		if p.accept(".") {
			if p.tok.literal != "target" {
				p.fail("Unexpected token %q, expected \"target\"", p.tok.literal)
			}
			p.advance()
			return &ast.NewTargetExpression{Idx: idx}
		}
		callee := p.parseNewExpr()
		// Member accesses bind tighter than the new call itself.
		for {
			if p.is(".") {
				p.advance()
				callee = &ast.MemberExpression{Idx: callee.Idx0(), Object: callee, Property: p.memberName()}
				continue
			}
			if p.is("[") {
				p.advance()
				prop := p.parseExpression()
				p.expect("]")
				callee = &ast.MemberExpression{Idx: callee.Idx0(), Object: callee, Property: prop, Computed: true}
				continue
			}
			break
		}
		var args []ast.Expression
		if p.is("(") {
			args = p.parseArguments()
		}
		return &ast.NewExpression{Idx: idx, Callee: callee, Arguments: args}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expression {
	idx := p.tok.idx
	switch p.tok.kind {
	case tkNumber:
		v := p.tok.num
		p.advance()
		return &ast.NumberLiteral{Idx: idx, Value: v}
	case tkBigInt:
		digits := p.tok.str
		p.advance()
		return &ast.BigIntLiteral{Idx: idx, Literal: digits}
	case tkString:
		s := p.tok.str
		p.advance()
		return &ast.StringLiteral{Idx: idx, Value: s}
	case tkRegExp:
		body, flags := p.tok.str, p.tok.flags
		p.advance()
		return &ast.RegExpLiteral{Idx: idx, Pattern: body, Flags: flags}
	case tkTemplate:
		return p.parseTemplateLiteral(nil)
	case tkIdent:
		name := p.tok.literal
		p.advance()
		return &ast.Identifier{Idx: idx, Name: name}
	case tkKeyword:
		switch p.tok.literal {
		case "this":
			p.advance()
			return &ast.ThisExpression{Idx: idx}
		case "super":
			p.advance()
			return &ast.SuperExpression{Idx: idx}
		case "null":
			p.advance()
			return &ast.NullLiteral{Idx: idx}
		case "true":
			p.advance()
			return &ast.BooleanLiteral{Idx: idx, Value: true}
		case "false":
			p.advance()
			return &ast.BooleanLiteral{Idx: idx, Value: false}
		case "function":
			p.advance()
			return p.parseFunctionLiteral(idx, false, true)
		case "async":
			st := p.lx.state()
			save := p.tok
			p.advance()
			if p.is("function") && !p.tok.newlineBefore {
				p.advance()
				return p.parseFunctionLiteral(idx, true, true)
			}
			p.lx.restore(st)
			p.tok = save
			name := p.identName()
			return &ast.Identifier{Idx: idx, Name: name}
		case "class":
			p.advance()
			return p.parseClassLiteral(idx)
		case "import":
			p.advance()
			p.expect("(")
			spec := p.parseAssignExpr()
			p.expect(")")
			return &ast.ImportCallExpression{Idx: idx, Specifier: spec}
		case "of", "let", "get", "set", "static", "await", "yield":
			name := p.tok.literal
			p.advance()
			return &ast.Identifier{Idx: idx, Name: name}
		}
	case tkPunct:
		switch p.tok.literal {
		case "(":
			p.advance()
			expr := p.parseExpression()
			p.expect(")")
			return expr
		case "[":
			return p.parseArrayLiteral()
		case "{":
			return p.parseObjectLiteral()
		}
	}
	p.fail("Unexpected token %q", p.tok.literal)
	return nil
}

func (p *parser) parseArrayLiteral() ast.Expression {
	idx := p.tok.idx
	p.expect("[")
	out := &ast.ArrayLiteral{Idx: idx}
	for !p.is("]") {
		if p.accept(",") {
			out.Elements = append(out.Elements, nil)
			continue
		}
		if p.accept("...") {
			out.Elements = append(out.Elements, &ast.SpreadElement{Idx: p.prev.idx, Argument: p.parseAssignExpr()})
		} else {
			out.Elements = append(out.Elements, p.parseAssignExpr())
		}
		if !p.is("]") {
			p.expect(",")
		}
	}
	p.expect("]")
	return out
}

func (p *parser) parseObjectLiteral() ast.Expression {
	idx := p.tok.idx
	p.expect("{")
	out := &ast.ObjectLiteral{Idx: idx}
	for !p.is("}") {
		prop := p.parseObjectProperty()
		out.Properties = append(out.Properties, prop)
		if !p.is("}") {
			p.expect(",")
		}
	}
	p.expect("}")
	return out
}

func (p *parser) parseObjectProperty() ast.Property {
	if p.accept("...") {
		return ast.Property{Kind: ast.PropertyKindSpread, Value: p.parseAssignExpr()}
	}

	async := false
	generator := false
	kind := ast.PropertyKindValue

	if p.is("get") || p.is("set") {
		accessor := p.tok.literal
		st := p.lx.state()
		save := p.tok
		p.advance()
		if p.is(",") || p.is("}") || p.is(":") || p.is("(") {
			p.lx.restore(st)
			p.tok = save
		} else {
			if accessor == "get" {
				kind = ast.PropertyKindGet
			} else {
				kind = ast.PropertyKindSet
			}
		}
	} else if p.is("async") {
		st := p.lx.state()
		save := p.tok
		p.advance()
		if p.is(",") || p.is("}") || p.is(":") || p.is("(") {
			p.lx.restore(st)
			p.tok = save
		} else {
			async = true
		}
	}
	if p.accept("*") {
		generator = true
	}

	computed := false
	var key ast.Expression
	keyIdx := p.tok.idx
	switch {
	case p.accept("["):
		computed = true
		key = p.parseAssignExpr()
		p.expect("]")
	case p.tok.kind == tkString:
		key = &ast.StringLiteral{Idx: keyIdx, Value: p.tok.str}
		p.advance()
	case p.tok.kind == tkNumber:
		key = &ast.NumberLiteral{Idx: keyIdx, Value: p.tok.num}
		p.advance()
	default:
		if p.tok.kind != tkIdent && p.tok.kind != tkKeyword {
			p.fail("Unexpected token %q in object literal", p.tok.literal)
		}
		key = &ast.Identifier{Idx: keyIdx, Name: p.tok.literal}
		p.advance()
	}

	if kind == ast.PropertyKindGet || kind == ast.PropertyKindSet || async || generator || p.is("(") {
		fn := &ast.FunctionLiteral{Idx: keyIdx, Async: async, Generator: generator}
		fn.Params = p.parseParams()
		fn.Body, fn.Strict = p.parseFunctionBody()
		if kind == ast.PropertyKindValue {
			kind = ast.PropertyKindMethod
		}
		return ast.Property{Kind: kind, Key: key, Computed: computed, Value: fn}
	}
	if p.accept(":") {
		return ast.Property{Kind: ast.PropertyKindValue, Key: key, Computed: computed, Value: p.parseAssignExpr()}
	}
	// Shorthand, possibly with a default (inside destructuring targets).
	id, ok := key.(*ast.Identifier)
	if !ok {
		p.fail("Unexpected token, expected \":\"")
	}
	if p.accept("=") {
		return ast.Property{Kind: ast.PropertyKindValue, Key: key, Value: &ast.AssignExpression{
			Idx:      id.Idx,
			Operator: "=",
			Target:   &ast.Identifier{Idx: id.Idx, Name: id.Name},
			Value:    p.parseAssignExpr(),
		}}
	}
	return ast.Property{Kind: ast.PropertyKindShorthand, Key: key, Value: &ast.Identifier{Idx: id.Idx, Name: id.Name}}
}

// parseTemplateLiteral consumes the current template token, parsing the
// recorded substitution sources with sub-parsers.
func (p *parser) parseTemplateLiteral(tag ast.Expression) ast.Expression {
	idx := p.tok.idx
	out := &ast.TemplateLiteral{Idx: idx, Tag: tag}
	for _, part := range p.tok.parts {
		out.Quasis = append(out.Quasis, ast.TemplateElement{Raw: part.raw, Cooked: part.cooked, Valid: part.valid})
	}
	for _, src := range p.tok.exprs {
		sub := &parser{lx: &lexer{src: src, name: p.lx.name}}
		sub.advance()
		expr := sub.parseExpression()
		if sub.tok.kind != tkEOF {
			p.fail("Unexpected token in template substitution")
		}
		out.Expressions = append(out.Expressions, expr)
	}
	p.advance()
	return out
}

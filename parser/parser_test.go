package parser

import (
	"testing"

	"github.com/joeyhub/harmony/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseScript("test.js", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParseStatements(t *testing.T) {
	cases := []string{
		`var a = 1, b = [1,2], {c} = {c: 3};`,
		`let x = y ? 1 : 2;`,
		`const f = (a, b = 2, ...rest) => a + b;`,
		`function* gen() { yield 1; yield* other(); }`,
		`async function f() { await g(); }`,
		`class A extends B { constructor() { super(); } static m() {} get x() { return 1 } }`,
		`for (let i = 0; i < 10; i++) ;`,
		`for (const x of xs) {}`,
		`for (const k in o) {}`,
		`l: for (;;) { break l; }`,
		`try {} catch {} finally {}`,
		`switch (x) { case 1: break; default: }`,
		"tag`a${1}b`;",
		`const re = /a[/]b/g;`,
		`a?.b;`,
	}
	for _, src := range cases {
		if src == `a?.b;` {
			// Optional chaining is not part of the supported grammar.
			if _, err := ParseScript("test.js", src); err == nil {
				t.Errorf("expected parse error for %q", src)
			}
			continue
		}
		parseOK(t, src)
	}
}

func TestParseNumberLiterals(t *testing.T) {
	prog := parseOK(t, `0x10 + 0b101 + 0o17 + 1.5e3;`)
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	sum := 0.0
	var walk func(e ast.Expression)
	walk = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.BinaryExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.NumberLiteral:
			sum += n.Value
		}
	}
	walk(stmt.Expression)
	if sum != 16+5+15+1500 {
		t.Fatalf("unexpected literal sum %v", sum)
	}
}

func TestParseASI(t *testing.T) {
	prog := parseOK(t, "let a = 1\nlet b = 2\na + b")
	if len(prog.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Body))
	}
	prog = parseOK(t, "function f() { return\n42 }")
	fd := prog.Body[0].(*ast.FunctionDeclaration)
	ret := fd.Function.Body[0].(*ast.ReturnStatement)
	if ret.Argument != nil {
		t.Fatal("return argument must be cut off by the newline")
	}
}

func TestParseModuleEntries(t *testing.T) {
	prog, err := ParseModule("m.js", `
		import def, { a, b as c } from "x.js";
		import * as ns from "y.js";
		export const q = 1;
		export { q as r };
		export * from "z.js";
		export default function named() {}
	`)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.ImportEntries) != 2 {
		t.Fatalf("import entries = %d", len(prog.ImportEntries))
	}
	first := prog.ImportEntries[0]
	if first.Specifier != "x.js" || len(first.Imports) != 3 {
		t.Fatalf("unexpected first import: %+v", first)
	}
	if first.Imports[0].ImportName != "default" || first.Imports[0].LocalName != "def" {
		t.Fatalf("default import mis-parsed: %+v", first.Imports[0])
	}
	if first.Imports[2].ImportName != "b" || first.Imports[2].LocalName != "c" {
		t.Fatalf("renamed import mis-parsed: %+v", first.Imports[2])
	}
	if len(prog.ExportEntries) != 4 {
		t.Fatalf("export entries = %d", len(prog.ExportEntries))
	}
	if !prog.ExportEntries[2].Wildcard || prog.ExportEntries[2].Specifier != "z.js" {
		t.Fatalf("star export mis-parsed: %+v", prog.ExportEntries[2])
	}
	if !prog.ExportEntries[3].Default {
		t.Fatal("default export not flagged")
	}
}

func TestParseStrictDirective(t *testing.T) {
	prog := parseOK(t, `"use strict"; var x = 1;`)
	if !prog.Strict {
		t.Fatal("strict directive not recognised")
	}
	prog = parseOK(t, `var x = 1;`)
	if prog.Strict {
		t.Fatal("script should not be strict")
	}
}

func TestParseTemplateSubstitutions(t *testing.T) {
	prog := parseOK(t, "`a${x + 1}b${y}c`;")
	tl := prog.Body[0].(*ast.ExpressionStatement).Expression.(*ast.TemplateLiteral)
	if len(tl.Quasis) != 3 || len(tl.Expressions) != 2 {
		t.Fatalf("quasis=%d exprs=%d", len(tl.Quasis), len(tl.Expressions))
	}
	if tl.Quasis[0].Cooked != "a" || tl.Quasis[1].Cooked != "b" || tl.Quasis[2].Cooked != "c" {
		t.Fatalf("unexpected quasis: %+v", tl.Quasis)
	}
}

func TestParseErrorPositions(t *testing.T) {
	_, err := ParseScript("broken.js", "let = ;")
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

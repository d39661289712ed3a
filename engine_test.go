package harmony

import (
	"testing"
)

func newTestRealm(t *testing.T) *Realm {
	t.Helper()
	agent, err := NewAgent(AgentOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return agent.NewRealm(RealmOptions{})
}

func testScript(t *testing.T, src string) Completion {
	t.Helper()
	r := newTestRealm(t)
	c := r.EvaluateScript(src, "test.js")
	if r.agent.contextDepth() != 0 {
		t.Fatalf("context stack not balanced after script: depth %d", r.agent.contextDepth())
	}
	return c
}

func testScriptValue(t *testing.T, src string, expected Value) {
	t.Helper()
	c := testScript(t, src)
	if c.Abrupt() {
		t.Fatalf("unexpected %s completion: %s", c.Type, c.ValueOrUndefined().String())
	}
	if !c.ValueOrUndefined().StrictEquals(expected) {
		t.Fatalf("unexpected value: got %s, expected %s", c.ValueOrUndefined().String(), expected.String())
	}
}

func TestArithmetic(t *testing.T) {
	testScriptValue(t, `1 + 2 * 3`, intToValue(7))
	testScriptValue(t, `"1" + 2`, asciiString("12"))
	testScriptValue(t, `10 % 3`, intToValue(1))
	testScriptValue(t, `2 ** 10`, intToValue(1024))
	testScriptValue(t, `1 / 0`, _positiveInf)
	testScriptValue(t, `"5" - 2`, intToValue(3))
}

func TestVarHoisting(t *testing.T) {
	testScriptValue(t, `
		var result = f();
		function f() { return x === undefined ? "hoisted" : "nope" }
		var x = 1;
		result;
	`, asciiString("hoisted"))
}

func TestLetTDZ(t *testing.T) {
	c := testScript(t, `
		try {
			tdz;
			let tdz = 1;
			"no throw";
		} catch (e) {
			e instanceof ReferenceError ? "reference error" : "wrong error";
		}
	`)
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	if c.Value.String() != "reference error" {
		t.Fatalf("expected a ReferenceError, got %s", c.Value.String())
	}
}

func TestConstAssignmentThrows(t *testing.T) {
	testScriptValue(t, `
		let r;
		try { const c = 1; c = 2; r = "no throw" } catch (e) { r = e instanceof TypeError }
		r;
	`, valueTrue)
}

func TestArrayPushPop(t *testing.T) {
	testScriptValue(t, `let a = [1,2,3]; a.push(4); a.length`, intToValue(4))
	testScriptValue(t, `let a = [1,2,3]; a.push(4); a.pop()`, intToValue(4))
	testScriptValue(t, `let a = [1,2,3]; a.push(4); a.pop(); a.length`, intToValue(3))
}

func TestArrayFlat(t *testing.T) {
	testScriptValue(t, `[[1,2],[3,[4]]].flat().join(",")`, asciiString("1,2,3,4"))
	testScriptValue(t, `[[1,2],[3,[4]]].flat().length`, intToValue(4))
	testScriptValue(t, `Array.isArray([[1,2],[3,[4]]].flat()[3])`, valueTrue)
	testScriptValue(t, `[[1,2],[3,[4]]].flat(Infinity).join(",")`, asciiString("1,2,3,4"))
	testScriptValue(t, `[[1,2],[3,[4]]].flat(Infinity)[3]`, intToValue(4))
}

func TestNullMemberAccessThrows(t *testing.T) {
	testScriptValue(t, `
		let r;
		try { null.x } catch(e) { r = e instanceof TypeError }
		r;
	`, valueTrue)
}

func TestArrayLengthTruncationAbortsOnNonConfigurable(t *testing.T) {
	testScriptValue(t, `
		const a = [];
		Object.defineProperty(a, '0', {value: 1, configurable: false});
		let threw = false;
		try { a.length = 0 } catch (e) { threw = e instanceof TypeError }
		threw && a.length === 1 && a[0] === 1;
	`, valueTrue)
}

func TestToStringIdempotence(t *testing.T) {
	for _, src := range []string{
		`String(String(42)) === String(42)`,
		`String(String(-0)) === String(-0)`,
		`String(String(NaN)) === String(NaN)`,
		`String(String("x")) === String("x")`,
		`String(String(true)) === String(true)`,
		`String(String(null)) === String(null)`,
		`String(String(undefined)) === String(undefined)`,
	} {
		testScriptValue(t, src, valueTrue)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	testScriptValue(t, `
		const v = {a: [1, 2.5, "three"], b: {c: null, d: false}, e: "s"};
		const w = JSON.parse(JSON.stringify(v));
		w.a.length === 3 && w.a[1] === 2.5 && w.a[2] === "three" &&
			w.b.c === null && w.b.d === false && w.e === "s";
	`, valueTrue)
}

func TestClosuresCaptureLoopLet(t *testing.T) {
	testScriptValue(t, `
		const fns = [];
		for (let i = 0; i < 3; i++) fns.push(() => i);
		fns[0]() + "," + fns[1]() + "," + fns[2]();
	`, asciiString("0,1,2"))
}

func TestTryFinallyInterleaving(t *testing.T) {
	// finally's abrupt completion wins.
	testScriptValue(t, `
		function f() {
			try { return "try" } finally { return "finally" }
		}
		f();
	`, asciiString("finally"))
	testScriptValue(t, `
		let log = "";
		function f() {
			try { throw new Error("x") } finally { log += "finally" }
		}
		try { f() } catch (e) { log += ",caught" }
		log;
	`, asciiString("finally,caught"))
}

func TestLabelledBreakContinue(t *testing.T) {
	testScriptValue(t, `
		let out = "";
		outer:
		for (let i = 0; i < 3; i++) {
			for (let j = 0; j < 3; j++) {
				if (j === 1) continue outer;
				if (i === 2) break outer;
				out += i + "" + j + " ";
			}
		}
		out;
	`, asciiString("00 10 "))
}

func TestSwitchFallthrough(t *testing.T) {
	testScriptValue(t, `
		let out = "";
		switch (2) {
			case 1: out += "1";
			case 2: out += "2";
			case 3: out += "3"; break;
			case 4: out += "4";
		}
		out;
	`, asciiString("23"))
}

func TestDestructuring(t *testing.T) {
	testScriptValue(t, `const [a, , b = 9, ...rest] = [1, 2, undefined, 4, 5]; a + b + rest.length`, intToValue(12))
	testScriptValue(t, `const {x, y: z, w = 3, ...others} = {x: 1, y: 2, q: 9}; x + z + w + others.q`, intToValue(15))
	testScriptValue(t, `let a, b; [a, b] = [b, a] = [1, 2]; a + "" + b`, asciiString("12"))
}

func TestSpread(t *testing.T) {
	testScriptValue(t, `Math.max(...[1, 9, 3])`, intToValue(9))
	testScriptValue(t, `[0, ...[1, 2], 3].join("")`, asciiString("0123"))
	testScriptValue(t, `({...{a: 1}, b: 2}).a`, intToValue(1))
}

func TestGenerators(t *testing.T) {
	testScriptValue(t, `
		function* gen() { yield 1; yield 2; return 3; }
		const g = gen();
		const a = g.next(), b = g.next(), c = g.next(), d = g.next();
		a.value === 1 && !a.done && b.value === 2 && c.value === 3 && c.done && d.value === undefined && d.done;
	`, valueTrue)
	testScriptValue(t, `
		function* inner() { yield "a"; yield "b"; }
		function* outer() { yield 1; yield* inner(); yield 2; }
		[...outer()].join(",");
	`, asciiString("1,a,b,2"))
	testScriptValue(t, `
		function* gen() { const got = yield 1; yield got * 2; }
		const g = gen();
		g.next();
		g.next(21).value;
	`, intToValue(42))
}

func TestGeneratorReturnRunsFinally(t *testing.T) {
	testScriptValue(t, `
		let log = "";
		function* gen() {
			try { yield 1; yield 2; } finally { log += "cleanup"; }
		}
		const g = gen();
		g.next();
		const r = g.return(99);
		log + ":" + r.value + ":" + r.done;
	`, asciiString("cleanup:99:true"))
}

func TestForOfClosesIteratorOnBreak(t *testing.T) {
	testScriptValue(t, `
		let closed = false;
		const iterable = {
			[Symbol.iterator]() {
				let i = 0;
				return {
					next() { return {value: i++, done: i > 5} },
					return() { closed = true; return {done: true} },
				};
			}
		};
		for (const x of iterable) { if (x === 1) break; }
		closed;
	`, valueTrue)
}

func TestClassesAndSuper(t *testing.T) {
	testScriptValue(t, `
		class Animal {
			constructor(name) { this.name = name; }
			speak() { return this.name + " makes a sound"; }
		}
		class Dog extends Animal {
			speak() { return super.speak() + ": woof"; }
		}
		new Dog("rex").speak();
	`, asciiString("rex makes a sound: woof"))
	testScriptValue(t, `
		class A {}
		class B extends A {}
		const b = new B();
		b instanceof B && b instanceof A;
	`, valueTrue)
	testScriptValue(t, `
		let r;
		class A { constructor() { r = typeof this; } }
		class B extends A { constructor() { try { this } catch (e) { r = "tdz" } super(); } }
		new B();
		r;
	`, asciiString("object"))
}

func TestGetterSetter(t *testing.T) {
	testScriptValue(t, `
		const o = {
			_x: 1,
			get x() { return this._x },
			set x(v) { this._x = v * 2 },
		};
		o.x = 21;
		o.x;
	`, intToValue(42))
}

func TestAccessorForwardsReceiver(t *testing.T) {
	// The getter runs with the original receiver, not the holder.
	testScriptValue(t, `
		const proto = { get who() { return this.name } };
		const obj = Object.create(proto);
		obj.name = "receiver";
		obj.who;
	`, asciiString("receiver"))
}

func TestOwnKeysOrder(t *testing.T) {
	testScriptValue(t, `
		const o = {b: 1, 2: 1, a: 1, 0: 1, 1: 1};
		Object.keys(o).join(",");
	`, asciiString("0,1,2,b,a"))
}

func TestTypeofUndeclared(t *testing.T) {
	testScriptValue(t, `typeof notDeclaredAnywhere`, stringUndefined)
	testScriptValue(t, `typeof (() => {})`, asciiString("function"))
	testScriptValue(t, `typeof Symbol()`, asciiString("symbol"))
	testScriptValue(t, `typeof 1n`, asciiString("bigint"))
	testScriptValue(t, `typeof null`, asciiString("object"))
}

func TestAbstractEquality(t *testing.T) {
	testScriptValue(t, `null == undefined`, valueTrue)
	testScriptValue(t, `null === undefined`, valueFalse)
	testScriptValue(t, `"1" == 1`, valueTrue)
	testScriptValue(t, `NaN === NaN`, valueFalse)
	testScriptValue(t, `[] == ""`, valueTrue)
	testScriptValue(t, `1n == 1`, valueTrue)
}

func TestTemplateLiterals(t *testing.T) {
	testScriptValue(t, "`a${1 + 1}b${\"c\"}`", asciiString("a2bc"))
	testScriptValue(t, `
		function tag(strings, ...subs) { return strings.raw.join("|") + ":" + subs.join(","); }
		tag`+"`x${1}y${2}z`"+`;
	`, asciiString("x|y|z:1,2"))
	// The template object is cached per site.
	testScriptValue(t, `
		function tag(strings) { return strings; }
		function mk() { return tag`+"`same`"+` }
		mk() === mk();
	`, valueTrue)
}

func TestWithStatement(t *testing.T) {
	testScriptValue(t, `
		const o = {x: 41};
		let r;
		with (o) { r = x + 1; }
		r;
	`, intToValue(42))
}

func TestBigIntArithmetic(t *testing.T) {
	testScriptValue(t, `(2n ** 64n).toString()`, asciiString("18446744073709551616"))
	testScriptValue(t, `
		let r;
		try { 1n + 1 } catch (e) { r = e instanceof TypeError }
		r;
	`, valueTrue)
}

func TestStrictModeAssignment(t *testing.T) {
	testScriptValue(t, `
		"use strict";
		let r;
		try { undeclaredStrict = 1 } catch (e) { r = e instanceof ReferenceError }
		r;
	`, valueTrue)
}

func TestMappedArguments(t *testing.T) {
	testScriptValue(t, `
		function f(a) { arguments[0] = 42; return a; }
		f(1);
	`, intToValue(42))
	testScriptValue(t, `
		function f(a) { "use strict"; arguments[0] = 42; return a; }
		f(1);
	`, intToValue(1))
}

func TestDefaultParamOrderObservable(t *testing.T) {
	testScriptValue(t, `
		let log = "";
		function mark(x) { log += x; return x; }
		function f(a = mark("a"), b = mark("b")) {}
		f();
		log;
	`, asciiString("ab"))
	testScriptValue(t, `
		let log = "";
		function mark(x) { log += x; return x; }
		function f(a = mark("a"), b = mark("b")) {}
		f(1);
		log;
	`, asciiString("b"))
}

func TestUncaughtBecomesHostException(t *testing.T) {
	r := newTestRealm(t)
	c := r.EvaluateScript(`throw new TypeError("boom")`, "test.js")
	err := r.HostException(c)
	if err == nil {
		t.Fatal("expected a host exception")
	}
	if err.Error() != "TypeError: boom" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestContextStackBalancedOnThrow(t *testing.T) {
	r := newTestRealm(t)
	r.EvaluateScript(`
		function f() { g() }
		function g() { throw new Error("deep") }
		try { f() } catch (e) {}
		f;
	`, "test.js")
	if r.agent.contextDepth() != 0 {
		t.Fatalf("context stack not balanced: depth %d", r.agent.contextDepth())
	}
	c := r.EvaluateScript(`(function h() { throw 1 })()`, "test.js")
	if !c.Throw() {
		t.Fatal("expected throw completion")
	}
	if r.agent.contextDepth() != 0 {
		t.Fatalf("context stack not balanced after uncaught throw: depth %d", r.agent.contextDepth())
	}
}

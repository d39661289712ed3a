package harmony

import "testing"

func TestOrdinaryDefineOwnProperty(t *testing.T) {
	r := newTestRealm(t)
	o := r.NewObject()

	c := o.self.defineOwnProperty(strKey("x"), PropertyDescriptor{
		Value:        intToValue(1),
		Writable:     FLAG_TRUE,
		Enumerable:   FLAG_TRUE,
		Configurable: FLAG_FALSE,
	})
	if c.Value != valueTrue {
		t.Fatal("initial define failed")
	}
	// Tightening writability on a non-configurable data property is allowed.
	c = o.self.defineOwnProperty(strKey("x"), PropertyDescriptor{Writable: FLAG_FALSE})
	if c.Value != valueTrue {
		t.Fatal("tightening writable rejected")
	}
	// Loosening it back is not.
	c = o.self.defineOwnProperty(strKey("x"), PropertyDescriptor{Writable: FLAG_TRUE})
	if c.Value != valueFalse {
		t.Fatal("loosening writable accepted")
	}
	// Converting non-configurable data to accessor is not.
	getter := r.newNativeFunc("", 0, func(FunctionCall) Completion { return normalCompletion(_undefined) })
	c = o.self.defineOwnProperty(strKey("x"), PropertyDescriptor{Getter: getter})
	if c.Value != valueFalse {
		t.Fatal("data->accessor interconversion accepted on non-configurable property")
	}
}

func TestDescriptorWellFormed(t *testing.T) {
	r := newTestRealm(t)
	o := r.NewObject()
	getter := r.newNativeFunc("", 0, func(FunctionCall) Completion { return normalCompletion(intToValue(7)) })
	o.self.defineOwnProperty(strKey("acc"), PropertyDescriptor{Getter: getter, Configurable: FLAG_TRUE})
	o.self.defineOwnProperty(strKey("data"), PropertyDescriptor{Value: intToValue(1), Writable: FLAG_TRUE})

	for _, key := range []string{"acc", "data"} {
		desc, c := o.self.getOwnProperty(strKey(key))
		if c.Abrupt() || desc == nil {
			t.Fatalf("missing descriptor for %s", key)
		}
		if desc.isAccessor() == desc.isData() {
			t.Fatalf("descriptor for %s is neither purely data nor purely accessor", key)
		}
	}
}

func TestOwnPropertyKeysOrdering(t *testing.T) {
	r := newTestRealm(t)
	o := r.NewObject()
	impl := o.self.(*baseObject)
	impl._putProp("zeta", intToValue(0), true, true, true)
	impl._putProp("10", intToValue(0), true, true, true)
	impl._putProp("alpha", intToValue(0), true, true, true)
	impl._putProp("2", intToValue(0), true, true, true)
	s1 := newSymbol("s1", true)
	s2 := newSymbol("s2", true)
	impl._putSym(s2, intToValue(0), true, true, true)
	impl._putSym(s1, intToValue(0), true, true, true)

	keys, c := o.self.ownPropertyKeys()
	if c.Abrupt() {
		t.Fatal("ownPropertyKeys failed")
	}
	got := make([]string, 0, len(keys))
	for _, k := range keys {
		got = append(got, k.String())
	}
	expected := []string{"2", "10", "zeta", "alpha", "Symbol(s2)", "Symbol(s1)"}
	if len(got) != len(expected) {
		t.Fatalf("keys = %v", got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("keys[%d] = %s, expected %s (full %v)", i, got[i], expected[i], got)
		}
	}
}

func TestArrayIndexInvariant(t *testing.T) {
	r := newTestRealm(t)
	c := r.EvaluateScript(`const a = []; a[10] = 1; a`, "test.js")
	arr := c.Value.(*Object).self.(*arrayObject)
	if arr.length != 11 {
		t.Fatalf("length = %d after writing index 10", arr.length)
	}
	for _, name := range arr.propNames {
		if idx, ok := isCanonicalIntegerIndex(name); ok && idx >= arr.length {
			t.Fatalf("index %d >= length %d", idx, arr.length)
		}
	}
}

func TestProxyGetInvariant(t *testing.T) {
	testScriptValue(t, `
		const target = {};
		Object.defineProperty(target, 'x', {value: 1, writable: false, configurable: false});
		const p = new Proxy(target, { get() { return 2 } });
		let r;
		try { p.x } catch (e) { r = e instanceof TypeError }
		r;
	`, valueTrue)
}

func TestProxyGetPrototypeOfInvariant(t *testing.T) {
	testScriptValue(t, `
		const target = Object.preventExtensions(Object.create(Array.prototype));
		const p = new Proxy(target, { getPrototypeOf() { return Object.prototype } });
		let r;
		try { Object.getPrototypeOf(p) } catch (e) { r = e instanceof TypeError }
		r;
	`, valueTrue)
}

func TestProxyForwarding(t *testing.T) {
	testScriptValue(t, `
		const log = [];
		const p = new Proxy({a: 1}, {
			get(target, key, receiver) { log.push("get:" + String(key)); return target[key]; },
			has(target, key) { log.push("has:" + String(key)); return key in target; },
			deleteProperty(target, key) { log.push("del:" + String(key)); delete target[key]; return true; },
		});
		p.a;
		"a" in p;
		delete p.a;
		log.join(",");
	`, asciiString("get:a,has:a,del:a"))
}

func TestProxyRevocation(t *testing.T) {
	testScriptValue(t, `
		const { proxy, revoke } = Proxy.revocable({a: 1}, {});
		const before = proxy.a;
		revoke();
		let threw;
		try { proxy.a } catch (e) { threw = e instanceof TypeError }
		before === 1 && threw;
	`, valueTrue)
}

func TestBoundFunctions(t *testing.T) {
	testScriptValue(t, `
		function add(a, b) { return this.base + a + b }
		const bound = add.bind({base: 100}, 20);
		bound(3);
	`, intToValue(123))
	testScriptValue(t, `
		function Point(x, y) { this.x = x; this.y = y; }
		const Bound = Point.bind(null, 1);
		const p = new Bound(2);
		p instanceof Point && p.x === 1 && p.y === 2;
	`, valueTrue)
	testScriptValue(t, `
		function f(a, b, c) {}
		f.bind(null, 1).length + ":" + f.bind(null, 1).name;
	`, asciiString("2:bound f"))
}

func TestSymbolRegistry(t *testing.T) {
	testScriptValue(t, `Symbol.for("k") === Symbol.for("k")`, valueTrue)
	testScriptValue(t, `Symbol.keyFor(Symbol.for("k"))`, asciiString("k"))
	testScriptValue(t, `Symbol.keyFor(Symbol("loose"))`, _undefined)
	testScriptValue(t, `Symbol("a") === Symbol("a")`, valueFalse)
}

func TestToPrimitiveOrdering(t *testing.T) {
	testScriptValue(t, `
		const log = [];
		const o = {
			valueOf() { log.push("valueOf"); return 1 },
			toString() { log.push("toString"); return "s" },
		};
		o + 0;
		` + "`${o}`" + `;
		log.join(",");
	`, asciiString("valueOf,toString"))
	testScriptValue(t, `
		const o = { [Symbol.toPrimitive](hint) { return hint } };
		(o + "") + ":" + ` + "`${o}`" + ` + ":" + (+o === +o ? "number" : "number");
	`, asciiString("default:string:number"))
}

func TestIntegerIndexedKind(t *testing.T) {
	r := newTestRealm(t)
	obj := r.NewIntegerIndexed(3)
	c := obj.self.set(strKey("1"), floatToValue(2.5), obj)
	if c.Abrupt() || c.Value != valueTrue {
		t.Fatal("indexed write failed")
	}
	vc := obj.self.get(strKey("1"), obj)
	if !vc.Value.StrictEquals(floatToValue(2.5)) {
		t.Fatalf("indexed read = %s", vc.Value.String())
	}
	// Out of bounds reads are undefined, deletes of in-bounds indices fail.
	if oc := obj.self.get(strKey("9"), obj); oc.Value != _undefined {
		t.Fatal("out-of-bounds read not undefined")
	}
	if dc := obj.self.deleteProperty(strKey("1")); dc.Value != valueFalse {
		t.Fatal("in-bounds delete succeeded")
	}
}

package harmony

import (
	"testing"
)

// installLog wires a global log(x) function appending to the returned slice.
func installLog(r *Realm) *[]string {
	var lines []string
	r.SetGlobal("log", r.NewNativeFunction("log", 1, func(call FunctionCall) Completion {
		lines = append(lines, Inspect(call.Argument(0), r))
		return normalCompletion(_undefined)
	}))
	return &lines
}

func TestPromiseThenChain(t *testing.T) {
	r := newTestRealm(t)
	c := r.EvaluateScript(`
		let result;
		Promise.resolve(1).then(x => x + 1).then(x => x * 2).then(x => { result = x });
		result === undefined;
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	// The queue drained before EvaluateScript returned, so the chain has
	// settled by now even though result was still undefined synchronously.
	if c.Value != valueTrue {
		t.Fatal("reactions ran synchronously")
	}
	rc := r.EvaluateScript(`result`, "test.js")
	if !rc.ValueOrUndefined().StrictEquals(intToValue(4)) {
		t.Fatalf("chain settled to %s, expected 4", rc.ValueOrUndefined().String())
	}
}

func TestSyncRunsBeforeReactions(t *testing.T) {
	r := newTestRealm(t)
	lines := installLog(r)
	c := r.EvaluateScript(`
		Promise.resolve("reaction1").then(x => log(x)).then(() => log("reaction2"));
		log("sync");
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	expected := []string{"sync", "reaction1", "reaction2"}
	if len(*lines) != len(expected) {
		t.Fatalf("unexpected log: %v", *lines)
	}
	for i, want := range expected {
		if (*lines)[i] != want {
			t.Fatalf("log[%d] = %q, want %q (full: %v)", i, (*lines)[i], want, *lines)
		}
	}
}

func TestAwaitDefersByOneJob(t *testing.T) {
	r := newTestRealm(t)
	lines := installLog(r)
	c := r.EvaluateScript(`
		async function f() {
			log("async start");
			await Promise.resolve();
			log("after await");
		}
		f();
		log("sync");
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	expected := []string{"async start", "sync", "after await"}
	for i, want := range expected {
		if i >= len(*lines) || (*lines)[i] != want {
			t.Fatalf("log = %v, want %v", *lines, expected)
		}
	}
}

func TestAsyncFunctionResult(t *testing.T) {
	r := newTestRealm(t)
	c := r.EvaluateScript(`
		let result;
		async function f() {
			const a = await Promise.resolve(20);
			const b = await 22;
			return a + b;
		}
		f().then(v => { result = v });
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	rc := r.EvaluateScript(`result`, "test.js")
	if !rc.ValueOrUndefined().StrictEquals(intToValue(42)) {
		t.Fatalf("async function settled to %s, expected 42", rc.ValueOrUndefined().String())
	}
}

func TestAsyncRejectionPropagates(t *testing.T) {
	r := newTestRealm(t)
	c := r.EvaluateScript(`
		let kind;
		async function f() { throw new RangeError("nope") }
		f().catch(e => { kind = e instanceof RangeError });
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	rc := r.EvaluateScript(`kind`, "test.js")
	if rc.ValueOrUndefined() != valueTrue {
		t.Fatal("rejection did not reach the catch handler")
	}
}

func TestPromiseAll(t *testing.T) {
	r := newTestRealm(t)
	c := r.EvaluateScript(`
		let result;
		Promise.all([1, Promise.resolve(2), 3]).then(vs => { result = vs.join(",") });
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	rc := r.EvaluateScript(`result`, "test.js")
	if rc.ValueOrUndefined().String() != "1,2,3" {
		t.Fatalf("Promise.all settled to %s", rc.ValueOrUndefined().String())
	}
}

func TestReactionsRunFIFO(t *testing.T) {
	r := newTestRealm(t)
	lines := installLog(r)
	c := r.EvaluateScript(`
		const p = Promise.resolve();
		p.then(() => log("first"));
		p.then(() => log("second"));
		p.then(() => log("third"));
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	expected := []string{"first", "second", "third"}
	for i, want := range expected {
		if i >= len(*lines) || (*lines)[i] != want {
			t.Fatalf("log = %v, want %v", *lines, expected)
		}
	}
}

func TestThenableResolution(t *testing.T) {
	r := newTestRealm(t)
	c := r.EvaluateScript(`
		let result;
		const thenable = { then(resolve) { resolve(42) } };
		Promise.resolve(thenable).then(v => { result = v });
	`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	rc := r.EvaluateScript(`result`, "test.js")
	if !rc.ValueOrUndefined().StrictEquals(intToValue(42)) {
		t.Fatalf("thenable resolved to %s", rc.ValueOrUndefined().String())
	}
}

func TestRejectionTrackerHook(t *testing.T) {
	var ops []string
	agent, err := NewAgent(AgentOptions{Hooks: HostHooks{
		PromiseRejectionTracker: func(promise *Object, operation string) {
			ops = append(ops, operation)
		},
	}})
	if err != nil {
		t.Fatal(err)
	}
	r := agent.NewRealm(RealmOptions{})
	c := r.EvaluateScript(`Promise.reject(new Error("lonely"));`, "test.js")
	if c.Abrupt() {
		t.Fatalf("unexpected abrupt completion: %s", c.ValueOrUndefined().String())
	}
	if len(ops) == 0 || ops[0] != "reject" {
		t.Fatalf("expected a reject notification, got %v", ops)
	}
}

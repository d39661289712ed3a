package harmony

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// moduleHost is a test resolver over an in-memory specifier->source map.
type moduleHost struct {
	sources map[string]string
	records map[string]*SourceTextModule
	realm   *Realm
}

func newModuleHost(t *testing.T, sources map[string]string) *moduleHost {
	t.Helper()
	agent, err := NewAgent(AgentOptions{})
	require.NoError(t, err)
	host := &moduleHost{
		sources: sources,
		records: make(map[string]*SourceTextModule),
	}
	host.realm = agent.NewRealm(RealmOptions{ResolveImportedModule: host.resolve})
	return host
}

func (h *moduleHost) resolve(referencing *SourceTextModule, specifier string) (*SourceTextModule, error) {
	if m, ok := h.records[specifier]; ok {
		return m, nil
	}
	src, ok := h.sources[specifier]
	if !ok {
		return nil, &SyntaxErrorHost{Specifier: specifier, Message: "module not found"}
	}
	m, err := h.realm.CreateSourceTextModule(specifier, src)
	if err != nil {
		return nil, err
	}
	h.records[specifier] = m
	return m, nil
}

func (h *moduleHost) load(t *testing.T, specifier string) *SourceTextModule {
	t.Helper()
	m, err := h.resolve(nil, specifier)
	require.NoError(t, err)
	return m
}

func TestModuleLinkAndEvaluate(t *testing.T) {
	host := newModuleHost(t, map[string]string{
		"main.js": `
			import { double } from "lib.js";
			export const result = double(21);
		`,
		"lib.js": `export function double(x) { return x * 2 }`,
	})
	m := host.load(t, "main.js")
	c := m.Link()
	require.False(t, c.Abrupt(), "link failed: %v", c.ValueOrUndefined())
	promise := m.Evaluate()
	state, _, ok := PromiseState(promise)
	require.True(t, ok)
	assert.Equal(t, "fulfilled", state)
	assert.Equal(t, ModuleEvaluated, m.Status())

	ns, nc := host.realm.getModuleNamespace(m)
	require.False(t, nc.Abrupt())
	vc := ns.self.get(strKey("result"), ns)
	require.False(t, vc.Abrupt())
	assert.True(t, vc.Value.StrictEquals(intToValue(42)))
}

func TestModuleCycle(t *testing.T) {
	// a imports b, b imports a back. Hoisted functions of a are visible in b
	// during evaluation; a's let bindings are still in the TDZ.
	host := newModuleHost(t, map[string]string{
		"a.js": `
			import { fromB } from "b.js";
			export function hoisted() { return "hoisted from a" }
			export let late = "late from a";
			export const viaB = fromB;
		`,
		"b.js": `
			import { hoisted, late } from "a.js";
			export const fromB = hoisted();
			export let sawTDZ;
			try { late; sawTDZ = false } catch (e) { sawTDZ = e instanceof ReferenceError }
		`,
	})
	a := host.load(t, "a.js")
	c := a.Link()
	require.False(t, c.Abrupt(), "linking a cycle must succeed")

	promise := a.Evaluate()
	state, result, ok := PromiseState(promise)
	require.True(t, ok)
	require.Equal(t, "fulfilled", state, "evaluation error: %v", Inspect(result, host.realm))

	b := host.records["b.js"]
	require.NotNil(t, b)
	assert.Equal(t, ModuleEvaluated, a.Status())
	assert.Equal(t, ModuleEvaluated, b.Status())

	// b evaluated before a: hoisted functions were callable, let was TDZ.
	nsB, nc := host.realm.getModuleNamespace(b)
	require.False(t, nc.Abrupt())
	fromB := nsB.self.get(strKey("fromB"), nsB)
	require.False(t, fromB.Abrupt())
	assert.Equal(t, "hoisted from a", fromB.Value.String())
	sawTDZ := nsB.self.get(strKey("sawTDZ"), nsB)
	require.False(t, sawTDZ.Abrupt())
	assert.Equal(t, valueTrue, sawTDZ.Value)
}

func TestModuleEvaluationErrorShared(t *testing.T) {
	host := newModuleHost(t, map[string]string{
		"a.js": `import "b.js"; export const x = 1;`,
		"b.js": `throw new Error("b failed")`,
	})
	a := host.load(t, "a.js")
	require.False(t, a.Link().Abrupt())
	promise := a.Evaluate()
	state, result, ok := PromiseState(promise)
	require.True(t, ok)
	assert.Equal(t, "rejected", state)
	assert.Contains(t, Inspect(result, host.realm), "b failed")
	assert.Equal(t, ModuleEvaluated, a.Status())
	require.NotNil(t, a.evaluationError)
}

func TestModuleMissingExportIsLinkError(t *testing.T) {
	host := newModuleHost(t, map[string]string{
		"main.js": `import { nope } from "lib.js";`,
		"lib.js":  `export const yep = 1;`,
	})
	m := host.load(t, "main.js")
	c := m.Link()
	require.True(t, c.Throw())
	assert.Contains(t, Inspect(c.ValueOrUndefined(), host.realm), "does not provide an export named 'nope'")
	assert.Equal(t, ModuleUnlinked, m.Status())
}

func TestAmbiguousStarExport(t *testing.T) {
	host := newModuleHost(t, map[string]string{
		"main.js": `import { dup } from "both.js"; export const x = dup;`,
		"both.js": `export * from "a.js"; export * from "b.js";`,
		"a.js":    `export const dup = 1;`,
		"b.js":    `export const dup = 2;`,
	})
	m := host.load(t, "main.js")
	c := m.Link()
	require.True(t, c.Throw(), "ambiguous star export must fail at link time")
}

func TestStarExportNamespace(t *testing.T) {
	host := newModuleHost(t, map[string]string{
		"main.js": `
			import * as lib from "lib.js";
			export const keys = Object.keys(lib).join(",");
			export const sum = lib.a + lib.b;
		`,
		"lib.js": `export const b = 2; export const a = 1;`,
	})
	m := host.load(t, "main.js")
	require.False(t, m.Link().Abrupt())
	state, _, _ := PromiseState(m.Evaluate())
	require.Equal(t, "fulfilled", state)
	ns, _ := host.realm.getModuleNamespace(m)
	keys := ns.self.get(strKey("keys"), ns)
	// Namespace keys are sorted.
	assert.Equal(t, "a,b", keys.Value.String())
	sum := ns.self.get(strKey("sum"), ns)
	assert.True(t, sum.Value.StrictEquals(intToValue(3)))
}

func TestDefaultExport(t *testing.T) {
	host := newModuleHost(t, map[string]string{
		"main.js": `import d from "lib.js"; export const got = d();`,
		"lib.js":  `export default function () { return "default result" }`,
	})
	m := host.load(t, "main.js")
	require.False(t, m.Link().Abrupt())
	state, _, _ := PromiseState(m.Evaluate())
	require.Equal(t, "fulfilled", state)
	ns, _ := host.realm.getModuleNamespace(m)
	got := ns.self.get(strKey("got"), ns)
	assert.Equal(t, "default result", got.Value.String())
}

func TestDynamicImport(t *testing.T) {
	host := newModuleHost(t, map[string]string{
		"main.js": `
			export let got;
			import("lib.js").then(ns => { got = ns.answer });
		`,
		"lib.js": `export const answer = 42;`,
	})
	m := host.load(t, "main.js")
	require.False(t, m.Link().Abrupt())
	state, _, _ := PromiseState(m.Evaluate())
	require.Equal(t, "fulfilled", state)
	ns, _ := host.realm.getModuleNamespace(m)
	got := ns.self.get(strKey("got"), ns)
	require.False(t, got.Abrupt())
	assert.True(t, got.Value.StrictEquals(intToValue(42)), "got = %s", got.Value.String())
}

func TestResolverMemoisation(t *testing.T) {
	calls := 0
	agent, err := NewAgent(AgentOptions{})
	require.NoError(t, err)
	var realm *Realm
	var lib *SourceTextModule
	realm = agent.NewRealm(RealmOptions{
		ResolveImportedModule: func(referencing *SourceTextModule, specifier string) (*SourceTextModule, error) {
			calls++
			if lib == nil {
				var err error
				lib, err = realm.CreateSourceTextModule(specifier, `export const x = 1;`)
				if err != nil {
					return nil, err
				}
			}
			return lib, nil
		},
	})
	main, err := realm.CreateSourceTextModule("main.js", `
		import { x } from "lib.js";
		import { x as y } from "lib.js";
		export const sum = x + y;
	`)
	require.NoError(t, err)
	require.False(t, main.Link().Abrupt())
	state, _, _ := PromiseState(main.Evaluate())
	require.Equal(t, "fulfilled", state)
	// One underlying hook call per distinct (referencing, specifier) pair.
	assert.Equal(t, 1, calls)
}

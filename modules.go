package harmony

import (
	"sort"

	"github.com/joeyhub/harmony/ast"
	"github.com/joeyhub/harmony/parser"
)

// ModuleStatus is the linking/evaluation state machine of a module record.
type ModuleStatus uint8

const (
	ModuleUnlinked ModuleStatus = iota
	ModuleLinking
	ModuleLinked
	ModuleEvaluating
	ModuleEvaluated
)

func (s ModuleStatus) String() string {
	switch s {
	case ModuleUnlinked:
		return "unlinked"
	case ModuleLinking:
		return "linking"
	case ModuleLinked:
		return "linked"
	case ModuleEvaluating:
		return "evaluating"
	case ModuleEvaluated:
		return "evaluated"
	}
	return "invalid"
}

type importEntry struct {
	moduleRequest string
	importName    string
	localName     string
}

type exportEntry struct {
	exportName    string
	moduleRequest string
	importName    string
	localName     string
}

// SourceTextModule is the source text module record: the parse result, the
// classified import/export entries and the cyclic-record slots driving the
// Tarjan DFS over the import graph.
type SourceTextModule struct {
	specifier string
	realm     *Realm

	program *ast.Program
	srcFile *SrcFile

	environment *moduleEnv
	namespace   *Object

	requestedModules      []string
	importEntries         []importEntry
	localExportEntries    []exportEntry
	indirectExportEntries []exportEntry
	starExportEntries     []exportEntry

	status           ModuleStatus
	evaluationError  *Completion
	dfsIndex         uint
	dfsAncestorIndex uint
}

// Specifier returns the module's specifier.
func (m *SourceTextModule) Specifier() string { return m.specifier }

// Status returns the module's state.
func (m *SourceTextModule) Status() ModuleStatus { return m.status }

// CreateSourceTextModule parses source in the module goal and classifies its
// import and export entries. Duplicate exports are a SyntaxError.
func (r *Realm) CreateSourceTextModule(specifier, source string) (*SourceTextModule, error) {
	prog, err := parser.ParseModule(specifier, source)
	if err != nil {
		return nil, &SyntaxErrorHost{Specifier: specifier, Message: err.Error()}
	}
	m := &SourceTextModule{
		specifier: specifier,
		realm:     r,
		program:   prog,
		srcFile:   NewSrcFile(specifier, source),
		status:    ModuleUnlinked,
	}

	seenRequests := make(map[string]bool)
	addRequest := func(req string) {
		if req != "" && !seenRequests[req] {
			seenRequests[req] = true
			m.requestedModules = append(m.requestedModules, req)
		}
	}
	for _, imp := range prog.ImportEntries {
		addRequest(imp.Specifier)
		for _, spec := range imp.Imports {
			m.importEntries = append(m.importEntries, importEntry{
				moduleRequest: imp.Specifier,
				importName:    spec.ImportName,
				localName:     spec.LocalName,
			})
		}
	}

	var exportEntries []exportEntry
	for _, exp := range prog.ExportEntries {
		addRequest(exp.Specifier)
		switch {
		case exp.Wildcard:
			exportEntries = append(exportEntries, exportEntry{
				moduleRequest: exp.Specifier,
				importName:    "*",
			})
		case exp.Declaration != nil:
			if exp.Default {
				name := defaultDeclName(exp.Declaration)
				exportEntries = append(exportEntries, exportEntry{
					exportName: "default",
					localName:  name,
				})
			} else {
				for _, name := range varDeclaredNamesStmt(exp.Declaration, nil) {
					exportEntries = append(exportEntries, exportEntry{exportName: name, localName: name})
				}
				for _, d := range lexicallyScopedDeclarations([]ast.Statement{exp.Declaration}, true) {
					for _, name := range d.names {
						exportEntries = append(exportEntries, exportEntry{exportName: name, localName: name})
					}
				}
			}
		case exp.Expression != nil:
			exportEntries = append(exportEntries, exportEntry{
				exportName: "default",
				localName:  "*default*",
			})
		default:
			for _, spec := range exp.Specs {
				if exp.Specifier != "" {
					exportEntries = append(exportEntries, exportEntry{
						exportName:    spec.ExportName,
						importName:    spec.LocalName,
						moduleRequest: exp.Specifier,
					})
				} else {
					exportEntries = append(exportEntries, exportEntry{
						exportName: spec.ExportName,
						localName:  spec.LocalName,
					})
				}
			}
		}
	}
	for _, ee := range exportEntries {
		if ee.moduleRequest == "" {
			if ie, ok := findImportByLocalName(m.importEntries, ee.localName); ok && ie.importName != "*" {
				m.indirectExportEntries = append(m.indirectExportEntries, exportEntry{
					moduleRequest: ie.moduleRequest,
					importName:    ie.importName,
					exportName:    ee.exportName,
				})
			} else {
				m.localExportEntries = append(m.localExportEntries, ee)
			}
		} else if ee.importName == "*" && ee.exportName == "" {
			m.starExportEntries = append(m.starExportEntries, ee)
		} else {
			m.indirectExportEntries = append(m.indirectExportEntries, ee)
		}
	}

	names := make([]string, 0, len(m.localExportEntries)+len(m.indirectExportEntries))
	for _, e := range m.localExportEntries {
		names = append(names, e.exportName)
	}
	for _, e := range m.indirectExportEntries {
		names = append(names, e.exportName)
	}
	sort.Strings(names)
	for i := 1; i < len(names); i++ {
		if names[i] == names[i-1] {
			return nil, &SyntaxErrorHost{Specifier: specifier, Message: "Duplicate export of '" + names[i] + "'"}
		}
	}
	return m, nil
}

func defaultDeclName(s ast.Statement) string {
	switch t := s.(type) {
	case *ast.FunctionDeclaration:
		if t.Function.Name != "" {
			return t.Function.Name
		}
	case *ast.ClassDeclaration:
		if t.Class.Name != "" {
			return t.Class.Name
		}
	}
	return "*default*"
}

func findImportByLocalName(entries []importEntry, name string) (importEntry, bool) {
	for _, ie := range entries {
		if ie.localName == name {
			return ie, true
		}
	}
	return importEntry{}, false
}

// hostResolveImportedModule calls the host hook, memoising per
// (referencingModule, specifier) so resolution is idempotent.
func (r *Realm) hostResolveImportedModule(referencing *SourceTextModule, specifier string) (*SourceTextModule, Completion) {
	key := resolveKey{referencing: referencing, specifier: specifier}
	if m, ok := r.resolveMemo[key]; ok {
		return m, emptyCompletion
	}
	if r.resolveHook == nil {
		return nil, r.throwTypeError("Module resolution is not supported by this realm")
	}
	m, err := r.resolveHook(referencing, specifier)
	if err != nil {
		if ex, ok := err.(*Exception); ok {
			return nil, throwCompletion(ex.val)
		}
		return nil, throwCompletion(r.NewTypeError("%s", err.Error()))
	}
	r.resolveMemo[key] = m
	return m, emptyCompletion
}

// ---------- export resolution ----------

type resolvedBinding struct {
	module      *SourceTextModule
	bindingName string
}

type resolveSetElement struct {
	module     *SourceTextModule
	exportName string
}

// resolveExport walks local, indirect and star exports. The boolean result
// reports ambiguity.
func (m *SourceTextModule) resolveExport(exportName string, resolveSet []resolveSetElement) (*resolvedBinding, bool, Completion) {
	for _, rs := range resolveSet {
		if rs.module == m && rs.exportName == exportName {
			return nil, false, emptyCompletion
		}
	}
	resolveSet = append(resolveSet, resolveSetElement{module: m, exportName: exportName})
	for _, e := range m.localExportEntries {
		if e.exportName == exportName {
			return &resolvedBinding{module: m, bindingName: e.localName}, false, emptyCompletion
		}
	}
	for _, e := range m.indirectExportEntries {
		if e.exportName == exportName {
			imported, c := m.realm.hostResolveImportedModule(m, e.moduleRequest)
			if c.Abrupt() {
				return nil, false, c
			}
			if e.importName == "*" {
				return &resolvedBinding{module: imported, bindingName: "*namespace*"}, false, emptyCompletion
			}
			return imported.resolveExport(e.importName, resolveSet)
		}
	}
	if exportName == "default" {
		return nil, false, emptyCompletion
	}
	var starResolution *resolvedBinding
	for _, e := range m.starExportEntries {
		imported, c := m.realm.hostResolveImportedModule(m, e.moduleRequest)
		if c.Abrupt() {
			return nil, false, c
		}
		resolution, ambiguous, rc := imported.resolveExport(exportName, resolveSet)
		if rc.Abrupt() {
			return nil, false, rc
		}
		if ambiguous {
			return nil, true, emptyCompletion
		}
		if resolution != nil {
			if starResolution == nil {
				starResolution = resolution
			} else if resolution.module != starResolution.module || resolution.bindingName != starResolution.bindingName {
				return nil, true, emptyCompletion
			}
		}
	}
	return starResolution, false, emptyCompletion
}

// getExportedNames accumulates export names through star exports, guarding
// against cycles via exportStarSet.
func (m *SourceTextModule) getExportedNames(exportStarSet []*SourceTextModule) ([]string, Completion) {
	for _, seen := range exportStarSet {
		if seen == m {
			return nil, emptyCompletion
		}
	}
	exportStarSet = append(exportStarSet, m)
	var names []string
	for _, e := range m.localExportEntries {
		names = append(names, e.exportName)
	}
	for _, e := range m.indirectExportEntries {
		names = append(names, e.exportName)
	}
	for _, e := range m.starExportEntries {
		imported, c := m.realm.hostResolveImportedModule(m, e.moduleRequest)
		if c.Abrupt() {
			return nil, c
		}
		starNames, sc := imported.getExportedNames(exportStarSet)
		if sc.Abrupt() {
			return nil, sc
		}
		for _, n := range starNames {
			if n != "default" {
				names = append(names, n)
			}
		}
	}
	return names, emptyCompletion
}

// ---------- linking ----------

// Link runs the Tarjan-SCC DFS over the import graph, creating each module's
// environment and resolving every import binding.
func (m *SourceTextModule) Link() Completion {
	if m.status == ModuleLinking || m.status == ModuleEvaluating {
		return m.realm.throwSyntaxError("Module %s is already being linked", m.specifier)
	}
	var stack []*SourceTextModule
	if _, c := m.innerModuleLinking(&stack, 0); c.Abrupt() {
		for _, sm := range stack {
			sm.status = ModuleUnlinked
		}
		m.status = ModuleUnlinked
		return c
	}
	return emptyCompletion
}

func (m *SourceTextModule) innerModuleLinking(stack *[]*SourceTextModule, index uint) (uint, Completion) {
	switch m.status {
	case ModuleLinking, ModuleLinked, ModuleEvaluating, ModuleEvaluated:
		return index, emptyCompletion
	}
	m.status = ModuleLinking
	m.dfsIndex = index
	m.dfsAncestorIndex = index
	index++
	*stack = append(*stack, m)
	for _, request := range m.requestedModules {
		required, c := m.realm.hostResolveImportedModule(m, request)
		if c.Abrupt() {
			return 0, c
		}
		var lc Completion
		index, lc = required.innerModuleLinking(stack, index)
		if lc.Abrupt() {
			return 0, lc
		}
		if required.status == ModuleLinking {
			if required.dfsAncestorIndex < m.dfsAncestorIndex {
				m.dfsAncestorIndex = required.dfsAncestorIndex
			}
		}
	}
	if c := m.initializeEnvironment(); c.Abrupt() {
		return 0, c
	}
	if m.dfsAncestorIndex == m.dfsIndex {
		for i := len(*stack) - 1; i >= 0; i-- {
			required := (*stack)[i]
			required.status = ModuleLinked
			*stack = (*stack)[:i]
			if required == m {
				break
			}
		}
	}
	return index, emptyCompletion
}

// initializeEnvironment creates the module environment: import indirections,
// hoisted var and function bindings, and TDZ slots for lexical declarations.
func (m *SourceTextModule) initializeEnvironment() Completion {
	r := m.realm
	for _, e := range m.indirectExportEntries {
		imported, c := r.hostResolveImportedModule(m, e.moduleRequest)
		if c.Abrupt() {
			return c
		}
		resolution, ambiguous, rc := imported.resolveExport(e.exportName, nil)
		if rc.Abrupt() {
			return rc
		}
		if resolution == nil || ambiguous {
			return r.throwSyntaxError("The requested module '%s' does not provide an export named '%s'", e.moduleRequest, e.exportName)
		}
	}

	env := newModuleEnv(r, r.globalEnv)
	m.environment = env

	for _, ie := range m.importEntries {
		imported, c := r.hostResolveImportedModule(m, ie.moduleRequest)
		if c.Abrupt() {
			return c
		}
		if ie.importName == "*" {
			ns, nc := r.getModuleNamespace(imported)
			if nc.Abrupt() {
				return nc
			}
			env.createImmutableBinding(ie.localName, true)
			env.initializeBinding(ie.localName, ns)
			continue
		}
		resolution, ambiguous, rc := imported.resolveExport(ie.importName, nil)
		if rc.Abrupt() {
			return rc
		}
		if resolution == nil || ambiguous {
			return r.throwSyntaxError("The requested module '%s' does not provide an export named '%s'", ie.moduleRequest, ie.importName)
		}
		if resolution.bindingName == "*namespace*" {
			ns, nc := r.getModuleNamespace(resolution.module)
			if nc.Abrupt() {
				return nc
			}
			env.createImmutableBinding(ie.localName, true)
			env.initializeBinding(ie.localName, ns)
			continue
		}
		env.createImportBinding(ie.localName, resolution.module, resolution.bindingName)
	}

	// Hoisting: vars initialise to undefined, lexical names stay in the TDZ,
	// function declarations are instantiated now.
	declared := make(map[string]bool)
	for _, name := range varDeclaredNames(m.program.Body, nil) {
		if declared[name] {
			continue
		}
		declared[name] = true
		env.createMutableBinding(name, false)
		env.initializeBinding(name, _undefined)
	}
	for _, d := range lexicallyScopedDeclarations(m.program.Body, false) {
		for _, name := range d.names {
			if d.isConst {
				env.createImmutableBinding(name, true)
			} else {
				env.createMutableBinding(name, false)
			}
		}
	}
	for _, e := range m.program.ExportEntries {
		if e.Expression != nil {
			env.createMutableBinding("*default*", false)
		}
	}
	for _, fd := range topLevelFunctionDeclarations(m.program.Body) {
		name := fd.Function.Name
		if name == "" {
			name = "*default*"
		}
		fn := r.instantiateFunctionObject(fd.Function, env, m.srcFile, m, true)
		hasC := env.hasBinding(name)
		if hasC.Value != valueTrue {
			env.createMutableBinding(name, false)
		}
		env.initializeBinding(name, fn)
	}
	return emptyCompletion
}

// ---------- evaluation ----------

// Evaluate runs the module graph and returns a promise value that settles
// with undefined or the evaluation error. The job queue is drained before
// returning.
func (m *SourceTextModule) Evaluate() Value {
	r := m.realm
	capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
	if cc.Abrupt() {
		panic("promise capability construction failed during module evaluation")
	}
	var stack []*SourceTextModule
	_, c := m.innerModuleEvaluation(&stack, 0)
	if c.Abrupt() {
		for _, sm := range stack {
			sm.status = ModuleEvaluated
			errC := c
			sm.evaluationError = &errC
		}
		r.CallValue(capability.reject, _undefined, c.ValueOrUndefined())
	} else {
		r.CallValue(capability.resolve, _undefined, _undefined)
	}
	r.agent.drainJobs()
	return capability.promise
}

func (m *SourceTextModule) innerModuleEvaluation(stack *[]*SourceTextModule, index uint) (uint, Completion) {
	switch m.status {
	case ModuleEvaluated:
		if m.evaluationError != nil {
			return index, *m.evaluationError
		}
		return index, emptyCompletion
	case ModuleEvaluating:
		return index, emptyCompletion
	case ModuleLinked:
	default:
		return 0, m.realm.throwSyntaxError("Module %s is not linked", m.specifier)
	}
	m.status = ModuleEvaluating
	m.dfsIndex = index
	m.dfsAncestorIndex = index
	index++
	*stack = append(*stack, m)
	for _, request := range m.requestedModules {
		required, c := m.realm.hostResolveImportedModule(m, request)
		if c.Abrupt() {
			return 0, c
		}
		var ec Completion
		index, ec = required.innerModuleEvaluation(stack, index)
		if ec.Abrupt() {
			return 0, ec
		}
		if required.status == ModuleEvaluating {
			if required.dfsAncestorIndex < m.dfsAncestorIndex {
				m.dfsAncestorIndex = required.dfsAncestorIndex
			}
		}
	}
	if c := m.executeModule(); c.Abrupt() {
		return 0, c
	}
	if m.dfsAncestorIndex == m.dfsIndex {
		for i := len(*stack) - 1; i >= 0; i-- {
			required := (*stack)[i]
			required.status = ModuleEvaluated
			*stack = (*stack)[:i]
			if required == m {
				break
			}
		}
	}
	return index, emptyCompletion
}

// executeModule runs the module body under a fresh execution context.
func (m *SourceTextModule) executeModule() Completion {
	r := m.realm
	ctx := &executionContext{
		realm:          r,
		lexicalEnv:     m.environment,
		variableEnv:    m.environment,
		scriptOrModule: m,
	}
	r.agent.pushContext(ctx)
	defer r.agent.popContext()
	ev := &evaluator{realm: r, ctx: ctx, strict: true, srcFile: m.srcFile}
	c := ev.evalStatements(m.program.Body)
	if c.Abrupt() {
		return c
	}
	return emptyCompletion
}

// ---------- dynamic import ----------

// importModuleDynamically resolves, links and evaluates specifier through a
// job, fulfilling the returned promise with the module namespace.
func (r *Realm) importModuleDynamically(referencing *SourceTextModule, specifier string) Completion {
	capability, cc := r.newPromiseCapability(r.intrinsic(intrPromise))
	if cc.Abrupt() {
		return cc
	}
	r.agent.enqueueJob(r, func() {
		m, c := r.hostResolveImportedModule(referencing, specifier)
		if c.Abrupt() {
			r.CallValue(capability.reject, _undefined, c.ValueOrUndefined())
			return
		}
		if m.status == ModuleUnlinked {
			if lc := m.Link(); lc.Abrupt() {
				r.CallValue(capability.reject, _undefined, lc.ValueOrUndefined())
				return
			}
		}
		if m.status == ModuleLinked {
			var stack []*SourceTextModule
			if _, ec := m.innerModuleEvaluation(&stack, 0); ec.Abrupt() {
				for _, sm := range stack {
					sm.status = ModuleEvaluated
					errC := ec
					sm.evaluationError = &errC
				}
				r.CallValue(capability.reject, _undefined, ec.ValueOrUndefined())
				return
			}
		}
		if m.evaluationError != nil {
			r.CallValue(capability.reject, _undefined, m.evaluationError.ValueOrUndefined())
			return
		}
		ns, nc := r.getModuleNamespace(m)
		if nc.Abrupt() {
			r.CallValue(capability.reject, _undefined, nc.ValueOrUndefined())
			return
		}
		r.CallValue(capability.resolve, _undefined, ns)
	})
	return normalCompletion(capability.promise)
}

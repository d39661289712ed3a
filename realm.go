package harmony

import (
	"fmt"

	"github.com/joeyhub/harmony/ast"
	"github.com/joeyhub/harmony/parser"
)

// ResolveImportedModuleFunc is the single host hook of the module loader. It
// must return the same module identity for the same (referencingModule,
// specifier) pair or throw (return an error).
type ResolveImportedModuleFunc func(referencingModule *SourceTextModule, specifier string) (*SourceTextModule, error)

// RealmOptions configures NewRealm.
type RealmOptions struct {
	ResolveImportedModule ResolveImportedModuleFunc
}

// Realm is a self-contained universe: an intrinsics table, a global object
// and its environment, and the template parse cache. Objects are associated
// with exactly one realm at creation; cross-realm references are legal.
type Realm struct {
	agent *Agent

	intrinsics [intrinsicCount]*Object

	globalObject *Object
	globalEnv    *globalEnv

	templateCache map[*ast.TemplateLiteral]*Object

	// arrayProtoValues caches %Array.prototype.values% for the arguments
	// objects' @@iterator.
	arrayProtoValues *Object
	proxyCtor        *Object

	resolveHook ResolveImportedModuleFunc
	resolveMemo map[resolveKey]*SourceTextModule
}

type resolveKey struct {
	referencing *SourceTextModule
	specifier   string
}

// NewRealm allocates a realm under the agent and bootstraps its intrinsics.
func (a *Agent) NewRealm(opts RealmOptions) *Realm {
	r := &Realm{
		agent:         a,
		templateCache: make(map[*ast.TemplateLiteral]*Object),
		resolveHook:   opts.ResolveImportedModule,
		resolveMemo:   make(map[resolveKey]*SourceTextModule),
	}
	r.initIntrinsics()
	return r
}

// Agent returns the owning agent.
func (r *Realm) Agent() *Agent { return r.agent }

// GlobalObject returns the realm's global object handle.
func (r *Realm) GlobalObject() *Object { return r.globalObject }

func (r *Realm) intrinsic(id intrinsicID) *Object {
	return r.intrinsics[id]
}

// Intrinsic returns a named intrinsic ("%Array.prototype%" style) for
// diagnostics, nil when unknown.
func (r *Realm) Intrinsic(name string) *Object {
	for id, n := range intrinsicNames {
		if n == name {
			return r.intrinsics[id]
		}
	}
	return nil
}

// ---------- object allocation ----------

func (r *Realm) newBaseObject(proto *Object, class string) *baseObject {
	v := &Object{realm: r}
	b := &baseObject{
		class:      class,
		val:        v,
		prototype:  proto,
		extensible: true,
	}
	b.init()
	v.self = b
	return b
}

// NewObject creates an ordinary object with %Object.prototype%.
func (r *Realm) NewObject() *Object {
	return r.newBaseObject(r.intrinsic(intrObjectPrototype), classObject).val
}

func (r *Realm) newObjectWithProto(proto *Object) *Object {
	return r.newBaseObject(proto, classObject).val
}

func (r *Realm) newPrimitiveObject(value Value, proto *Object, class string) *Object {
	v := &Object{realm: r}
	p := &primitiveValueObject{pValue: value}
	p.class = class
	p.val = v
	p.prototype = proto
	p.extensible = true
	p.init()
	v.self = p
	return v
}

// ---------- error construction and throwing ----------

type errorObject struct {
	baseObject
	name    string
	message string
}

func (r *Realm) newErrorObject(protoID intrinsicID, name, message string) *Object {
	v := &Object{realm: r}
	e := &errorObject{name: name, message: message}
	e.class = classError
	e.val = v
	e.prototype = r.intrinsic(protoID)
	e.extensible = true
	e.init()
	v.self = e
	if message != "" {
		e._putProp("message", newStringValue(message), true, false, true)
	}
	return v
}

func (r *Realm) NewTypeError(format string, args ...interface{}) *Object {
	return r.newErrorObject(intrTypeErrorPrototype, "TypeError", fmt.Sprintf(format, args...))
}

func (r *Realm) NewRangeError(format string, args ...interface{}) *Object {
	return r.newErrorObject(intrRangeErrorPrototype, "RangeError", fmt.Sprintf(format, args...))
}

func (r *Realm) NewReferenceError(format string, args ...interface{}) *Object {
	return r.newErrorObject(intrReferenceErrorPrototype, "ReferenceError", fmt.Sprintf(format, args...))
}

func (r *Realm) NewSyntaxError(format string, args ...interface{}) *Object {
	return r.newErrorObject(intrSyntaxErrorPrototype, "SyntaxError", fmt.Sprintf(format, args...))
}

func (r *Realm) NewURIError(format string, args ...interface{}) *Object {
	return r.newErrorObject(intrURIErrorPrototype, "URIError", fmt.Sprintf(format, args...))
}

func (r *Realm) throwTypeError(format string, args ...interface{}) Completion {
	return throwCompletion(r.NewTypeError(format, args...))
}

func (r *Realm) throwRangeError(format string, args ...interface{}) Completion {
	return throwCompletion(r.NewRangeError(format, args...))
}

func (r *Realm) throwReferenceError(format string, args ...interface{}) Completion {
	return throwCompletion(r.NewReferenceError(format, args...))
}

func (r *Realm) throwSyntaxError(format string, args ...interface{}) Completion {
	return throwCompletion(r.NewSyntaxError(format, args...))
}

func (r *Realm) throwURIError(format string, args ...interface{}) Completion {
	return throwCompletion(r.NewURIError(format, args...))
}

// Throw constructs a throw completion of the named error kind. Part of the
// embedder surface.
func (r *Realm) Throw(kind, message string) Completion {
	switch kind {
	case "TypeError":
		return r.throwTypeError("%s", message)
	case "RangeError":
		return r.throwRangeError("%s", message)
	case "ReferenceError":
		return r.throwReferenceError("%s", message)
	case "SyntaxError":
		return r.throwSyntaxError("%s", message)
	case "URIError":
		return r.throwURIError("%s", message)
	}
	return r.throwTypeError("%s", message)
}

// ---------- script entry points ----------

// EvaluateScript parses source as a script and runs it to completion,
// draining the job queue before returning.
func (r *Realm) EvaluateScript(source, specifier string) Completion {
	prog, err := parser.ParseScript(specifier, source)
	if err != nil {
		return throwCompletion(r.NewSyntaxError("%s", err.Error()))
	}
	c := r.runScript(prog, specifier, source)
	r.agent.drainJobs()
	return c
}

func (r *Realm) runScript(prog *ast.Program, specifier, source string) Completion {
	script := &scriptRecord{realm: r, program: prog, srcFile: NewSrcFile(specifier, source)}

	ctx := &executionContext{
		realm:          r,
		lexicalEnv:     r.globalEnv,
		variableEnv:    r.globalEnv,
		scriptOrModule: script,
	}
	r.agent.pushContext(ctx)
	defer r.agent.popContext()

	ev := &evaluator{realm: r, ctx: ctx, strict: prog.Strict, srcFile: script.srcFile}
	if c := ev.globalDeclarationInstantiation(prog, r.globalEnv); c.Abrupt() {
		return c
	}
	c := ev.evalStatements(prog.Body)
	if c.Type == CompletionNormal && c.Value == nil {
		c.Value = _undefined
	}
	return c
}

type scriptRecord struct {
	realm   *Realm
	program *ast.Program
	srcFile *SrcFile
}

// HostException converts an uncaught throw completion into a host error.
func (r *Realm) HostException(c Completion) error {
	if c.Type != CompletionThrow {
		return nil
	}
	return &Exception{val: c.ValueOrUndefined()}
}

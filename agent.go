package harmony

import (
	"fmt"
	"sort"
)

// Feature describes a guarded extension toggled at Agent construction.
type Feature struct {
	Name string
	URL  string
}

var featureTable = []Feature{
	{Name: "globalThis", URL: "https://github.com/tc39/proposal-global"},
	{Name: "Symbol.prototype.description", URL: "https://github.com/tc39/proposal-Symbol-description"},
	{Name: "Object.fromEntries", URL: "https://github.com/tc39/proposal-object-from-entries"},
	{Name: "String.prototype.trimStart,String.prototype.trimEnd", URL: "https://github.com/tc39/proposal-string-left-right-trim"},
	{Name: "Array.prototype.{flat,flatMap}", URL: "https://github.com/tc39/proposal-flatMap"},
	{Name: "BigInt", URL: "https://github.com/tc39/proposal-bigint"},
	{Name: "import()", URL: "https://github.com/tc39/proposal-dynamic-import"},
}

// Features enumerates the known feature flags.
func Features() []Feature {
	out := make([]Feature, len(featureTable))
	copy(out, featureTable)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// HostHooks lets the embedder observe agent-level events. All methods are
// optional; the zero value is inert.
type HostHooks struct {
	// PromiseRejectionTracker is called with operation "reject" when a
	// promise is rejected without handlers and "handle" when a handler is
	// later attached.
	PromiseRejectionTracker func(promise *Object, operation string)
}

// AgentOptions configures NewAgent.
type AgentOptions struct {
	Features []string
	Hooks    HostHooks
}

// Agent owns the execution-context stack and the job queue. Exactly one
// execution context runs at any moment; jobs run after the stack empties.
type Agent struct {
	contexts []*executionContext
	jobs     []queuedJob
	features map[string]bool
	hooks    HostHooks

	symbolRegistry map[string]*valueSymbol

	entered bool
}

type queuedJob struct {
	realm *Realm
	job   func()
}

// executionContext is {Function, Realm, LexicalEnv, VariableEnv,
// ScriptOrModule} plus the feature-specific slots.
type executionContext struct {
	function       *Object
	realm          *Realm
	lexicalEnv     environmentRecord
	variableEnv    environmentRecord
	scriptOrModule interface{}

	generator *coroutine
}

// NewAgent constructs an agent with the given feature flags enabled. Unknown
// flags are an error.
func NewAgent(opts AgentOptions) (*Agent, error) {
	features := make(map[string]bool, len(opts.Features))
	for _, name := range opts.Features {
		found := false
		for _, f := range featureTable {
			if f.Name == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		features[name] = true
	}
	return &Agent{
		features:       features,
		hooks:          opts.Hooks,
		symbolRegistry: make(map[string]*valueSymbol),
	}, nil
}

// Enter makes the agent current on the calling goroutine. Agents are not
// safe for concurrent use; Enter asserts exclusive ownership.
func (a *Agent) Enter() {
	if a.entered {
		panic("agent entered twice")
	}
	a.entered = true
}

// Leave releases the agent.
func (a *Agent) Leave() {
	a.entered = false
}

func (a *Agent) Feature(name string) bool {
	return a.features[name]
}

func (a *Agent) runningContext() *executionContext {
	if len(a.contexts) == 0 {
		return nil
	}
	return a.contexts[len(a.contexts)-1]
}

func (a *Agent) pushContext(ctx *executionContext) {
	a.contexts = append(a.contexts, ctx)
}

func (a *Agent) popContext() {
	a.contexts[len(a.contexts)-1] = nil
	a.contexts = a.contexts[:len(a.contexts)-1]
}

func (a *Agent) contextDepth() int {
	return len(a.contexts)
}

// enqueueJob appends a job to the FIFO queue.
func (a *Agent) enqueueJob(realm *Realm, job func()) {
	a.jobs = append(a.jobs, queuedJob{realm: realm, job: job})
}

// drainJobs runs queued jobs in FIFO order until the queue is empty. Each
// job runs under a fresh execution context recorded for its realm. Jobs may
// enqueue further jobs.
func (a *Agent) drainJobs() {
	for len(a.jobs) > 0 {
		next := a.jobs[0]
		copy(a.jobs, a.jobs[1:])
		a.jobs[len(a.jobs)-1] = queuedJob{}
		a.jobs = a.jobs[:len(a.jobs)-1]

		ctx := &executionContext{realm: next.realm}
		a.pushContext(ctx)
		next.job()
		a.popContext()
	}
}

func (a *Agent) symbolFor(key string) *valueSymbol {
	if s, ok := a.symbolRegistry[key]; ok {
		return s
	}
	s := newSymbol(key, true)
	s.registryKey = key
	a.symbolRegistry[key] = s
	return s
}

func (a *Agent) symbolKeyFor(s *valueSymbol) (string, bool) {
	if s.registryKey != "" {
		if a.symbolRegistry[s.registryKey] == s {
			return s.registryKey, true
		}
	}
	return "", false
}

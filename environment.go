package harmony

// environmentRecord is the binding table interface shared by all record
// variants. Boolean-valued operations carry valueTrue/valueFalse.
type environmentRecord interface {
	hasBinding(name string) Completion
	createMutableBinding(name string, deletable bool) Completion
	createImmutableBinding(name string, strict bool) Completion
	initializeBinding(name string, v Value) Completion
	setMutableBinding(name string, v Value, strict bool) Completion
	getBindingValue(name string, strict bool) Completion
	deleteBinding(name string) Completion
	hasThisBinding() bool
	hasSuperBinding() bool
	withBaseObject() *Object
	outer() environmentRecord
}

type binding struct {
	value       Value
	mutable     bool
	deletable   bool
	strict      bool
	initialized bool
}

// ---------- declarative environment ----------

type declarativeEnv struct {
	realm    *Realm
	bindings map[string]*binding
	outerEnv environmentRecord
}

func newDeclarativeEnv(realm *Realm, outer environmentRecord) *declarativeEnv {
	return &declarativeEnv{
		realm:    realm,
		bindings: make(map[string]*binding),
		outerEnv: outer,
	}
}

func (e *declarativeEnv) hasBinding(name string) Completion {
	_, exists := e.bindings[name]
	return booleanCompletion(exists)
}

func (e *declarativeEnv) createMutableBinding(name string, deletable bool) Completion {
	e.bindings[name] = &binding{mutable: true, deletable: deletable}
	return emptyCompletion
}

func (e *declarativeEnv) createImmutableBinding(name string, strict bool) Completion {
	e.bindings[name] = &binding{strict: strict}
	return emptyCompletion
}

func (e *declarativeEnv) initializeBinding(name string, v Value) Completion {
	b := e.bindings[name]
	b.value = v
	b.initialized = true
	return emptyCompletion
}

func (e *declarativeEnv) setMutableBinding(name string, v Value, strict bool) Completion {
	b, exists := e.bindings[name]
	if !exists {
		if strict {
			return e.realm.throwReferenceError("%s is not defined", name)
		}
		e.createMutableBinding(name, true)
		return e.initializeBinding(name, v)
	}
	if b.strict {
		strict = true
	}
	if !b.initialized {
		return e.realm.throwReferenceError("Cannot access '%s' before initialization", name)
	}
	if b.mutable {
		b.value = v
		return emptyCompletion
	}
	if strict {
		return e.realm.throwTypeError("Assignment to constant variable.")
	}
	return emptyCompletion
}

func (e *declarativeEnv) getBindingValue(name string, strict bool) Completion {
	b := e.bindings[name]
	if !b.initialized {
		return e.realm.throwReferenceError("Cannot access '%s' before initialization", name)
	}
	return normalCompletion(b.value)
}

func (e *declarativeEnv) deleteBinding(name string) Completion {
	b := e.bindings[name]
	if !b.deletable {
		return completionFalse
	}
	delete(e.bindings, name)
	return completionTrue
}

func (e *declarativeEnv) hasThisBinding() bool { return false }

func (e *declarativeEnv) hasSuperBinding() bool { return false }

func (e *declarativeEnv) withBaseObject() *Object { return nil }

func (e *declarativeEnv) outer() environmentRecord { return e.outerEnv }

// ---------- object environment ----------

type objectEnv struct {
	realm           *Realm
	bindingObject   *Object
	withEnvironment bool
	outerEnv        environmentRecord
}

func newObjectEnv(realm *Realm, obj *Object, isWith bool, outer environmentRecord) *objectEnv {
	return &objectEnv{
		realm:           realm,
		bindingObject:   obj,
		withEnvironment: isWith,
		outerEnv:        outer,
	}
}

func (e *objectEnv) hasBinding(name string) Completion {
	c := e.bindingObject.self.hasProperty(strKey(name))
	if c.Abrupt() || c.Value == valueFalse {
		return c
	}
	if e.withEnvironment {
		uc := e.bindingObject.self.get(symKey(symUnscopables), e.bindingObject)
		if uc.Abrupt() {
			return uc
		}
		if unscopables, ok := uc.Value.(*Object); ok {
			bc := unscopables.self.get(strKey(name), unscopables)
			if bc.Abrupt() {
				return bc
			}
			if bc.Value.ToBoolean() {
				return completionFalse
			}
		}
	}
	return completionTrue
}

func (e *objectEnv) createMutableBinding(name string, deletable bool) Completion {
	c := e.bindingObject.self.defineOwnProperty(strKey(name), PropertyDescriptor{
		Value:        _undefined,
		Writable:     FLAG_TRUE,
		Enumerable:   FLAG_TRUE,
		Configurable: flagOf(deletable),
	})
	if c.Abrupt() {
		return c
	}
	return emptyCompletion
}

func (e *objectEnv) createImmutableBinding(string, bool) Completion {
	panic("createImmutableBinding on an object environment")
}

func (e *objectEnv) initializeBinding(name string, v Value) Completion {
	return e.setMutableBinding(name, v, false)
}

func (e *objectEnv) setMutableBinding(name string, v Value, strict bool) Completion {
	stillExists := e.bindingObject.self.hasProperty(strKey(name))
	if stillExists.Abrupt() {
		return stillExists
	}
	if stillExists.Value == valueFalse && strict {
		return e.realm.throwReferenceError("%s is not defined", name)
	}
	c := e.bindingObject.self.set(strKey(name), v, e.bindingObject)
	if c.Abrupt() {
		return c
	}
	if c.Value == valueFalse && strict {
		return e.realm.throwTypeError("Cannot assign to read only property '%s'", name)
	}
	return emptyCompletion
}

func (e *objectEnv) getBindingValue(name string, strict bool) Completion {
	has := e.bindingObject.self.hasProperty(strKey(name))
	if has.Abrupt() {
		return has
	}
	if has.Value == valueFalse {
		if !strict {
			return normalCompletion(_undefined)
		}
		return e.realm.throwReferenceError("%s is not defined", name)
	}
	return e.bindingObject.self.get(strKey(name), e.bindingObject)
}

func (e *objectEnv) deleteBinding(name string) Completion {
	return e.bindingObject.self.deleteProperty(strKey(name))
}

func (e *objectEnv) hasThisBinding() bool { return false }

func (e *objectEnv) hasSuperBinding() bool { return false }

func (e *objectEnv) withBaseObject() *Object {
	if e.withEnvironment {
		return e.bindingObject
	}
	return nil
}

func (e *objectEnv) outer() environmentRecord { return e.outerEnv }

// ---------- function environment ----------

type thisBindingStatus uint8

const (
	thisLexical thisBindingStatus = iota
	thisUninitialized
	thisInitialized
)

type functionEnv struct {
	declarativeEnv

	thisValue      Value
	thisStatus     thisBindingStatus
	functionObject *Object
	homeObject     *Object
	newTarget      Value
}

func newFunctionEnv(realm *Realm, fn *funcObject, newTarget Value, outer environmentRecord) *functionEnv {
	env := &functionEnv{
		declarativeEnv: declarativeEnv{
			realm:    realm,
			bindings: make(map[string]*binding),
			outerEnv: outer,
		},
		functionObject: fn.val,
		homeObject:     fn.homeObject,
		newTarget:      newTarget,
	}
	if fn.thisMode == thisModeLexical {
		env.thisStatus = thisLexical
	} else {
		env.thisStatus = thisUninitialized
	}
	return env
}

func (e *functionEnv) hasThisBinding() bool {
	return e.thisStatus != thisLexical
}

func (e *functionEnv) hasSuperBinding() bool {
	return e.thisStatus != thisLexical && e.homeObject != nil
}

func (e *functionEnv) bindThisValue(v Value) Completion {
	if e.thisStatus == thisInitialized {
		return e.realm.throwReferenceError("Super constructor may only be called once")
	}
	e.thisValue = v
	e.thisStatus = thisInitialized
	return normalCompletion(v)
}

func (e *functionEnv) getThisBinding() Completion {
	if e.thisStatus == thisUninitialized {
		return e.realm.throwReferenceError("Must call super constructor before accessing 'this'")
	}
	return normalCompletion(e.thisValue)
}

func (e *functionEnv) getSuperBase() Completion {
	if e.homeObject == nil {
		return normalCompletion(_undefined)
	}
	return e.homeObject.self.getPrototypeOf()
}

// ---------- global environment ----------

type globalEnv struct {
	realm     *Realm
	objRecord *objectEnv
	declRec   *declarativeEnv
	varNames  map[string]bool
}

func newGlobalEnv(realm *Realm, globalObject *Object) *globalEnv {
	return &globalEnv{
		realm:     realm,
		objRecord: newObjectEnv(realm, globalObject, false, nil),
		declRec:   newDeclarativeEnv(realm, nil),
		varNames:  make(map[string]bool),
	}
}

func (e *globalEnv) hasBinding(name string) Completion {
	if c := e.declRec.hasBinding(name); c.Value == valueTrue {
		return c
	}
	return e.objRecord.hasBinding(name)
}

func (e *globalEnv) createMutableBinding(name string, deletable bool) Completion {
	if c := e.declRec.hasBinding(name); c.Value == valueTrue {
		return e.realm.throwTypeError("Identifier '%s' has already been declared", name)
	}
	return e.declRec.createMutableBinding(name, deletable)
}

func (e *globalEnv) createImmutableBinding(name string, strict bool) Completion {
	if c := e.declRec.hasBinding(name); c.Value == valueTrue {
		return e.realm.throwTypeError("Identifier '%s' has already been declared", name)
	}
	return e.declRec.createImmutableBinding(name, strict)
}

func (e *globalEnv) initializeBinding(name string, v Value) Completion {
	if c := e.declRec.hasBinding(name); c.Value == valueTrue {
		return e.declRec.initializeBinding(name, v)
	}
	return e.objRecord.initializeBinding(name, v)
}

func (e *globalEnv) setMutableBinding(name string, v Value, strict bool) Completion {
	if c := e.declRec.hasBinding(name); c.Value == valueTrue {
		return e.declRec.setMutableBinding(name, v, strict)
	}
	return e.objRecord.setMutableBinding(name, v, strict)
}

func (e *globalEnv) getBindingValue(name string, strict bool) Completion {
	if c := e.declRec.hasBinding(name); c.Value == valueTrue {
		return e.declRec.getBindingValue(name, strict)
	}
	return e.objRecord.getBindingValue(name, strict)
}

func (e *globalEnv) deleteBinding(name string) Completion {
	if c := e.declRec.hasBinding(name); c.Value == valueTrue {
		return e.declRec.deleteBinding(name)
	}
	has, c := hasOwnProperty(e.objRecord.bindingObject, strKey(name))
	if c.Abrupt() {
		return c
	}
	if has {
		status := e.objRecord.deleteBinding(name)
		if status.Abrupt() {
			return status
		}
		if status.Value == valueTrue {
			delete(e.varNames, name)
		}
		return status
	}
	return completionTrue
}

func (e *globalEnv) hasThisBinding() bool { return true }

func (e *globalEnv) hasSuperBinding() bool { return false }

func (e *globalEnv) withBaseObject() *Object { return nil }

func (e *globalEnv) outer() environmentRecord { return nil }

func (e *globalEnv) getThisBinding() Completion {
	return normalCompletion(e.objRecord.bindingObject)
}

func (e *globalEnv) hasVarDeclaration(name string) bool {
	return e.varNames[name]
}

func (e *globalEnv) hasLexicalDeclaration(name string) bool {
	c := e.declRec.hasBinding(name)
	return c.Value == valueTrue
}

func (e *globalEnv) canDeclareGlobalVar(name string) (bool, Completion) {
	global := e.objRecord.bindingObject
	has, c := hasOwnProperty(global, strKey(name))
	if c.Abrupt() {
		return false, c
	}
	if has {
		return true, emptyCompletion
	}
	ext := global.self.isExtensible()
	if ext.Abrupt() {
		return false, ext
	}
	return ext.Value == valueTrue, emptyCompletion
}

func (e *globalEnv) canDeclareGlobalFunction(name string) (bool, Completion) {
	global := e.objRecord.bindingObject
	existing, c := global.self.getOwnProperty(strKey(name))
	if c.Abrupt() {
		return false, c
	}
	if existing == nil {
		ext := global.self.isExtensible()
		if ext.Abrupt() {
			return false, ext
		}
		return ext.Value == valueTrue, emptyCompletion
	}
	if existing.Configurable == FLAG_TRUE {
		return true, emptyCompletion
	}
	if existing.isData() && existing.Writable == FLAG_TRUE && existing.Enumerable == FLAG_TRUE {
		return true, emptyCompletion
	}
	return false, emptyCompletion
}

func (e *globalEnv) createGlobalVarBinding(name string, deletable bool) Completion {
	global := e.objRecord.bindingObject
	has, c := hasOwnProperty(global, strKey(name))
	if c.Abrupt() {
		return c
	}
	ext := global.self.isExtensible()
	if ext.Abrupt() {
		return ext
	}
	if !has && ext.Value == valueTrue {
		if c := e.objRecord.createMutableBinding(name, deletable); c.Abrupt() {
			return c
		}
		if c := e.objRecord.initializeBinding(name, _undefined); c.Abrupt() {
			return c
		}
	}
	e.varNames[name] = true
	return emptyCompletion
}

func (e *globalEnv) createGlobalFunctionBinding(name string, fn Value, deletable bool) Completion {
	global := e.objRecord.bindingObject
	existing, c := global.self.getOwnProperty(strKey(name))
	if c.Abrupt() {
		return c
	}
	var desc PropertyDescriptor
	if existing == nil || existing.Configurable == FLAG_TRUE {
		desc = PropertyDescriptor{
			Value:        fn,
			Writable:     FLAG_TRUE,
			Enumerable:   FLAG_TRUE,
			Configurable: flagOf(deletable),
		}
	} else {
		desc = PropertyDescriptor{Value: fn}
	}
	dc := global.self.defineOwnProperty(strKey(name), desc)
	if dc.Abrupt() {
		return dc
	}
	if dc.Value == valueFalse {
		return e.realm.throwTypeError("Cannot declare global function '%s'", name)
	}
	sc := global.self.set(strKey(name), fn, global)
	if sc.Abrupt() {
		return sc
	}
	e.varNames[name] = true
	return emptyCompletion
}

// ---------- module environment ----------

type moduleBindingRef struct {
	module *SourceTextModule
	name   string
}

type moduleEnv struct {
	declarativeEnv
	indirect map[string]moduleBindingRef
}

func newModuleEnv(realm *Realm, outer environmentRecord) *moduleEnv {
	return &moduleEnv{
		declarativeEnv: declarativeEnv{
			realm:    realm,
			bindings: make(map[string]*binding),
			outerEnv: outer,
		},
		indirect: make(map[string]moduleBindingRef),
	}
}

func (e *moduleEnv) createImportBinding(name string, module *SourceTextModule, bindingName string) {
	e.indirect[name] = moduleBindingRef{module: module, name: bindingName}
}

func (e *moduleEnv) hasBinding(name string) Completion {
	if _, ok := e.indirect[name]; ok {
		return completionTrue
	}
	return e.declarativeEnv.hasBinding(name)
}

func (e *moduleEnv) getBindingValue(name string, strict bool) Completion {
	if ref, ok := e.indirect[name]; ok {
		targetEnv := ref.module.environment
		if targetEnv == nil {
			return e.realm.throwReferenceError("Cannot access '%s' before initialization", name)
		}
		return targetEnv.getBindingValue(ref.name, true)
	}
	return e.declarativeEnv.getBindingValue(name, strict)
}

func (e *moduleEnv) deleteBinding(string) Completion {
	panic("deleteBinding on a module environment")
}

func (e *moduleEnv) hasThisBinding() bool { return true }

func (e *moduleEnv) getThisBinding() Completion {
	return normalCompletion(_undefined)
}

// getIdentifierReference walks the environment chain for name.
func getIdentifierReference(env environmentRecord, name string, strict bool) (*reference, Completion) {
	for env != nil {
		c := env.hasBinding(name)
		if c.Abrupt() {
			return nil, c
		}
		if c.Value == valueTrue {
			return &reference{env: env, name: strKey(name), strict: strict}, emptyCompletion
		}
		env = env.outer()
	}
	return &reference{name: strKey(name), strict: strict, unresolvable: true}, emptyCompletion
}

// getThisEnvironment finds the nearest environment with a this binding.
func getThisEnvironment(env environmentRecord) environmentRecord {
	for {
		if env.hasThisBinding() {
			return env
		}
		env = env.outer()
	}
}

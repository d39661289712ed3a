package harmony

import "sort"

// namespaceObject is the module-namespace exotic kind: an immutable view
// over a module's exports with a null prototype.
type namespaceObject struct {
	baseObject
	module  *SourceTextModule
	exports []string
}

// getModuleNamespace builds (and caches) the namespace object of a module.
func (r *Realm) getModuleNamespace(m *SourceTextModule) (*Object, Completion) {
	if m.namespace != nil {
		return m.namespace, emptyCompletion
	}
	names, c := m.getExportedNames(nil)
	if c.Abrupt() {
		return nil, c
	}
	var unambiguous []string
	for _, name := range names {
		resolution, ambiguous, rc := m.resolveExport(name, nil)
		if rc.Abrupt() {
			return nil, rc
		}
		if resolution != nil && !ambiguous {
			unambiguous = append(unambiguous, name)
		}
	}
	sort.Strings(unambiguous)

	v := &Object{realm: r}
	ns := &namespaceObject{module: m, exports: unambiguous}
	ns.class = classModule
	ns.val = v
	ns.prototype = nil
	ns.extensible = false
	ns.init()
	v.self = ns
	ns._putSym(symToStringTag, newStringValue("Module"), false, false, false)
	m.namespace = v
	return v, emptyCompletion
}

func (ns *namespaceObject) hasExport(name string) bool {
	for _, e := range ns.exports {
		if e == name {
			return true
		}
	}
	return false
}

func (ns *namespaceObject) setPrototypeOf(v Value) Completion {
	return booleanCompletion(v == _null)
}

func (ns *namespaceObject) isExtensible() Completion {
	return completionFalse
}

func (ns *namespaceObject) preventExtensions() Completion {
	return completionTrue
}

func (ns *namespaceObject) resolveBinding(name string) Completion {
	r := ns.val.realm
	resolution, ambiguous, c := ns.module.resolveExport(name, nil)
	if c.Abrupt() {
		return c
	}
	if resolution == nil || ambiguous {
		return r.throwReferenceError("%s is not defined", name)
	}
	if resolution.bindingName == "*namespace*" {
		nsObj, nc := r.getModuleNamespace(resolution.module)
		if nc.Abrupt() {
			return nc
		}
		return normalCompletion(nsObj)
	}
	target := resolution.module
	if target.environment == nil {
		return r.throwReferenceError("Cannot access '%s' before initialization", name)
	}
	return target.environment.getBindingValue(resolution.bindingName, true)
}

func (ns *namespaceObject) getOwnProperty(p propertyKey) (*PropertyDescriptor, Completion) {
	if p.isSymbol() {
		return ns.baseObject.getOwnProperty(p)
	}
	if !ns.hasExport(p.s) {
		return nil, emptyCompletion
	}
	vc := ns.resolveBinding(p.s)
	if vc.Abrupt() {
		return nil, vc
	}
	return &PropertyDescriptor{
		Value:        vc.Value,
		Writable:     FLAG_TRUE,
		Enumerable:   FLAG_TRUE,
		Configurable: FLAG_FALSE,
	}, emptyCompletion
}

func (ns *namespaceObject) defineOwnProperty(p propertyKey, desc PropertyDescriptor) Completion {
	if p.isSymbol() {
		return ns.baseObject.defineOwnProperty(p, desc)
	}
	current, c := ns.getOwnProperty(p)
	if c.Abrupt() {
		return c
	}
	if current == nil {
		return completionFalse
	}
	if desc.Configurable == FLAG_TRUE || desc.Enumerable == FLAG_FALSE || desc.isAccessor() || desc.Writable == FLAG_FALSE {
		return completionFalse
	}
	if desc.Value != nil {
		return booleanCompletion(desc.Value.SameAs(current.Value))
	}
	return completionTrue
}

func (ns *namespaceObject) hasProperty(p propertyKey) Completion {
	if p.isSymbol() {
		return ns.baseObject.hasProperty(p)
	}
	return booleanCompletion(ns.hasExport(p.s))
}

func (ns *namespaceObject) get(p propertyKey, receiver Value) Completion {
	if p.isSymbol() {
		return ns.baseObject.get(p, receiver)
	}
	if !ns.hasExport(p.s) {
		return normalCompletion(_undefined)
	}
	return ns.resolveBinding(p.s)
}

func (ns *namespaceObject) set(propertyKey, Value, Value) Completion {
	return completionFalse
}

func (ns *namespaceObject) deleteProperty(p propertyKey) Completion {
	if p.isSymbol() {
		return ns.baseObject.deleteProperty(p)
	}
	return booleanCompletion(!ns.hasExport(p.s))
}

func (ns *namespaceObject) ownPropertyKeys() ([]propertyKey, Completion) {
	keys := make([]propertyKey, 0, len(ns.exports)+len(ns.symNames))
	for _, name := range ns.exports {
		keys = append(keys, strKey(name))
	}
	for _, s := range ns.symNames {
		keys = append(keys, symKey(s))
	}
	return keys, emptyCompletion
}

func (ns *namespaceObject) export() interface{} {
	out := make(map[string]interface{}, len(ns.exports))
	for _, name := range ns.exports {
		if vc := ns.resolveBinding(name); !vc.Abrupt() {
			out[name] = vc.Value.Export()
		}
	}
	return out
}

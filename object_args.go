package harmony

import "strconv"

// argumentsObject is the mapped-arguments exotic kind: index properties alias
// the parameter bindings of the calling function's environment until the
// alias is broken by redefinition.
type argumentsObject struct {
	baseObject

	paramMap map[string]*mappedParam
}

type mappedParam struct {
	env  environmentRecord
	name string
}

// createUnmappedArguments builds the strict-mode arguments object.
func (r *Realm) createUnmappedArguments(args []Value) *Object {
	obj := r.NewObject()
	impl := obj.self.(*baseObject)
	impl.class = classArguments
	impl._putProp("length", intToValue(int64(len(args))), true, false, true)
	for i, arg := range args {
		impl._putProp(strconv.Itoa(i), arg, true, true, true)
	}
	impl._putSym(symIterator, r.arrayProtoValues, true, false, true)
	thrower := r.intrinsic(intrThrowTypeError)
	impl._putAccessor("callee", thrower, thrower, false, false)
	return obj
}

// createMappedArguments builds the sloppy-mode arguments object whose index
// properties alias the named parameters bound in env.
func (r *Realm) createMappedArguments(fn *Object, paramNames []string, args []Value, env environmentRecord) *Object {
	v := &Object{realm: r}
	a := &argumentsObject{paramMap: make(map[string]*mappedParam)}
	a.class = classArguments
	a.val = v
	a.prototype = r.intrinsic(intrObjectPrototype)
	a.extensible = true
	a.init()
	v.self = a

	a._putProp("length", intToValue(int64(len(args))), true, false, true)
	for i, arg := range args {
		name := strconv.Itoa(i)
		a._putProp(name, arg, true, true, true)
		if i < len(paramNames) && paramNames[i] != "" {
			a.paramMap[name] = &mappedParam{env: env, name: paramNames[i]}
		}
	}
	a._putSym(symIterator, r.arrayProtoValues, true, false, true)
	a._putProp("callee", fn, true, false, true)
	return v
}

func (a *argumentsObject) getOwnProperty(p propertyKey) (*PropertyDescriptor, Completion) {
	desc, c := a.baseObject.getOwnProperty(p)
	if c.Abrupt() || desc == nil {
		return desc, c
	}
	if m := a.mapped(p); m != nil {
		vc := m.env.getBindingValue(m.name, false)
		if vc.Abrupt() {
			return nil, vc
		}
		desc.Value = vc.Value
	}
	return desc, emptyCompletion
}

func (a *argumentsObject) mapped(p propertyKey) *mappedParam {
	if p.isSymbol() {
		return nil
	}
	return a.paramMap[p.s]
}

func (a *argumentsObject) get(p propertyKey, receiver Value) Completion {
	if m := a.mapped(p); m != nil {
		return m.env.getBindingValue(m.name, false)
	}
	return a.baseObject.get(p, receiver)
}

func (a *argumentsObject) set(p propertyKey, v, receiver Value) Completion {
	if receiver == a.val {
		if m := a.mapped(p); m != nil {
			if c := m.env.setMutableBinding(m.name, v, false); c.Abrupt() {
				return c
			}
		}
	}
	return a.baseObject.set(p, v, receiver)
}

func (a *argumentsObject) defineOwnProperty(p propertyKey, desc PropertyDescriptor) Completion {
	m := a.mapped(p)
	newDesc := desc
	if m != nil && desc.isData() && desc.Value == nil && desc.Writable == FLAG_FALSE {
		vc := m.env.getBindingValue(m.name, false)
		if vc.Abrupt() {
			return vc
		}
		newDesc.Value = vc.Value
	}
	c := a.baseObject.defineOwnProperty(p, newDesc)
	if c.Abrupt() || c.Value == valueFalse {
		return c
	}
	if m != nil {
		if desc.isAccessor() {
			delete(a.paramMap, p.s)
		} else {
			if desc.Value != nil {
				if sc := m.env.setMutableBinding(m.name, desc.Value, false); sc.Abrupt() {
					return sc
				}
			}
			if desc.Writable == FLAG_FALSE {
				delete(a.paramMap, p.s)
			}
		}
	}
	return completionTrue
}

func (a *argumentsObject) deleteProperty(p propertyKey) Completion {
	c := a.baseObject.deleteProperty(p)
	if c.Abrupt() {
		return c
	}
	if c.Value == valueTrue && a.mapped(p) != nil {
		delete(a.paramMap, p.s)
	}
	return c
}

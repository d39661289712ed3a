package harmony

// reference is the internal lvalue carrier produced by identifier and member
// expressions. It never escapes the evaluator.
type reference struct {
	// Property references carry a base value; environment references carry
	// the record instead.
	base Value
	env  environmentRecord

	name         propertyKey
	strict       bool
	thisVal      Value // super references
	unresolvable bool
}

func (ref *reference) isProperty() bool {
	return ref.base != nil
}

func (ref *reference) thisValue() Value {
	if ref.thisVal != nil {
		return ref.thisVal
	}
	return ref.base
}

// getValue dereferences a reference.
func (r *Realm) getValue(ref *reference) Completion {
	if ref.unresolvable {
		return r.throwReferenceError("%s is not defined", ref.name.String())
	}
	if ref.isProperty() {
		return r.getV(ref.base, ref.name)
	}
	return ref.env.getBindingValue(ref.name.s, ref.strict)
}

// putValue stores through a reference.
func (r *Realm) putValue(ref *reference, v Value) Completion {
	if ref.unresolvable {
		if ref.strict {
			return r.throwReferenceError("%s is not defined", ref.name.String())
		}
		global := r.globalObject
		c := global.self.set(ref.name, v, global)
		if c.Abrupt() {
			return c
		}
		return emptyCompletion
	}
	if ref.isProperty() {
		switch ref.base.(type) {
		case valueUndefined, valueNull:
			return r.throwTypeError("Cannot set properties of %s (setting '%s')", ref.base.String(), ref.name.String())
		}
		if obj, ok := ref.base.(*Object); ok {
			c := obj.self.set(ref.name, v, ref.thisValue())
			if c.Abrupt() {
				return c
			}
			if c.Value == valueFalse && ref.strict {
				return r.throwTypeError("Cannot assign to read only property '%s' of %s", ref.name.String(), ref.base.String())
			}
			return emptyCompletion
		}
		// Primitive base: the write is observable only through strictness.
		if ref.strict {
			return r.throwTypeError("Cannot create property '%s' on %s", ref.name.String(), ref.base.String())
		}
		return emptyCompletion
	}
	return ref.env.setMutableBinding(ref.name.s, v, ref.strict)
}

// initializeReferencedBinding initialises a binding reference.
func (r *Realm) initializeReferencedBinding(ref *reference, v Value) Completion {
	return ref.env.initializeBinding(ref.name.s, v)
}

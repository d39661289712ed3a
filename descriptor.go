package harmony

// toPropertyDescriptor reads a descriptor object into the record form.
func (r *Realm) toPropertyDescriptor(v Value) (*PropertyDescriptor, Completion) {
	obj, ok := v.(*Object)
	if !ok {
		return nil, r.throwTypeError("Property description must be an object: %s", v.String())
	}
	desc := &PropertyDescriptor{}

	read := func(name string) (Value, bool, Completion) {
		has := obj.self.hasProperty(strKey(name))
		if has.Abrupt() {
			return nil, false, has
		}
		if has.Value == valueFalse {
			return nil, false, emptyCompletion
		}
		vc := obj.self.get(strKey(name), obj)
		if vc.Abrupt() {
			return nil, false, vc
		}
		return vc.Value, true, emptyCompletion
	}

	if v, ok, c := read("enumerable"); c.Abrupt() {
		return nil, c
	} else if ok {
		desc.Enumerable = flagOf(v.ToBoolean())
	}
	if v, ok, c := read("configurable"); c.Abrupt() {
		return nil, c
	} else if ok {
		desc.Configurable = flagOf(v.ToBoolean())
	}
	if v, ok, c := read("value"); c.Abrupt() {
		return nil, c
	} else if ok {
		desc.Value = v
	}
	if v, ok, c := read("writable"); c.Abrupt() {
		return nil, c
	} else if ok {
		desc.Writable = flagOf(v.ToBoolean())
	}
	if v, ok, c := read("get"); c.Abrupt() {
		return nil, c
	} else if ok {
		if v != _undefined {
			if f, isObj := v.(*Object); !isObj || !f.isCallable() {
				return nil, r.throwTypeError("Getter must be a function: %s", v.String())
			}
		}
		desc.Getter = v
	}
	if v, ok, c := read("set"); c.Abrupt() {
		return nil, c
	} else if ok {
		if v != _undefined {
			if f, isObj := v.(*Object); !isObj || !f.isCallable() {
				return nil, r.throwTypeError("Setter must be a function: %s", v.String())
			}
		}
		desc.Setter = v
	}
	if desc.isAccessor() && (desc.Value != nil || desc.Writable != FLAG_NOT_SET) {
		return nil, r.throwTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return desc, emptyCompletion
}

// fromPropertyDescriptor reifies a descriptor record as an ordinary object.
func (r *Realm) fromPropertyDescriptor(desc PropertyDescriptor) Value {
	obj := r.NewObject()
	impl := obj.self.(*baseObject)
	if desc.Value != nil {
		impl._putProp("value", desc.Value, true, true, true)
	}
	if desc.Writable != FLAG_NOT_SET {
		impl._putProp("writable", boolToValue(desc.Writable.Bool()), true, true, true)
	}
	if desc.Getter != nil {
		impl._putProp("get", desc.Getter, true, true, true)
	}
	if desc.Setter != nil {
		impl._putProp("set", desc.Setter, true, true, true)
	}
	if desc.Enumerable != FLAG_NOT_SET {
		impl._putProp("enumerable", boolToValue(desc.Enumerable.Bool()), true, true, true)
	}
	if desc.Configurable != FLAG_NOT_SET {
		impl._putProp("configurable", boolToValue(desc.Configurable.Bool()), true, true, true)
	}
	return obj
}

package harmony

// proxyObject forwards every internal method through the handler's trap
// table, verifying the essential invariants against the target after each
// trap. A nil handler means the proxy has been revoked.
type proxyObject struct {
	val     *Object
	target  *Object
	handler *Object
}

func (p *proxyObject) className() string {
	if p.target != nil && p.target.isCallable() {
		return classFunction
	}
	return classProxy
}

func (p *proxyObject) export() interface{} {
	return p.val
}

func (p *proxyObject) realm() *Realm {
	return p.val.realm
}

// getTrap fetches the named trap, throwing when the proxy is revoked.
func (p *proxyObject) getTrap(name string) (*Object, Completion) {
	r := p.realm()
	if p.handler == nil {
		return nil, r.throwTypeError("Cannot perform '%s' on a proxy that has been revoked", name)
	}
	return r.getMethod(p.handler, strKey(name))
}

func (p *proxyObject) getPrototypeOf() Completion {
	trap, c := p.getTrap("getPrototypeOf")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.getPrototypeOf()
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target})
	if tc.Abrupt() {
		return tc
	}
	if _, isObj := tc.Value.(*Object); !isObj && tc.Value != _null {
		return r.throwTypeError("'getPrototypeOf' on proxy: trap returned neither object nor null")
	}
	ext := p.target.self.isExtensible()
	if ext.Abrupt() {
		return ext
	}
	if ext.Value == valueTrue {
		return tc
	}
	targetProto := p.target.self.getPrototypeOf()
	if targetProto.Abrupt() {
		return targetProto
	}
	if !tc.Value.SameAs(targetProto.Value) {
		return r.throwTypeError("'getPrototypeOf' on proxy: proxy target is non-extensible but the trap did not return its actual prototype")
	}
	return tc
}

func (p *proxyObject) setPrototypeOf(v Value) Completion {
	trap, c := p.getTrap("setPrototypeOf")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.setPrototypeOf(v)
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target, v})
	if tc.Abrupt() {
		return tc
	}
	if !tc.Value.ToBoolean() {
		return completionFalse
	}
	ext := p.target.self.isExtensible()
	if ext.Abrupt() {
		return ext
	}
	if ext.Value == valueFalse {
		targetProto := p.target.self.getPrototypeOf()
		if targetProto.Abrupt() {
			return targetProto
		}
		if !v.SameAs(targetProto.Value) {
			return r.throwTypeError("'setPrototypeOf' on proxy: trap returned truish for setting a new prototype on the non-extensible proxy target")
		}
	}
	return completionTrue
}

func (p *proxyObject) isExtensible() Completion {
	trap, c := p.getTrap("isExtensible")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.isExtensible()
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target})
	if tc.Abrupt() {
		return tc
	}
	booleanTrapResult := tc.Value.ToBoolean()
	ext := p.target.self.isExtensible()
	if ext.Abrupt() {
		return ext
	}
	if booleanTrapResult != ext.Value.ToBoolean() {
		return r.throwTypeError("'isExtensible' on proxy: trap result does not reflect extensibility of proxy target")
	}
	return booleanCompletion(booleanTrapResult)
}

func (p *proxyObject) preventExtensions() Completion {
	trap, c := p.getTrap("preventExtensions")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.preventExtensions()
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target})
	if tc.Abrupt() {
		return tc
	}
	if !tc.Value.ToBoolean() {
		return completionFalse
	}
	ext := p.target.self.isExtensible()
	if ext.Abrupt() {
		return ext
	}
	if ext.Value == valueTrue {
		return r.throwTypeError("'preventExtensions' on proxy: trap returned truish but the proxy target is extensible")
	}
	return completionTrue
}

func (p *proxyObject) getOwnProperty(key propertyKey) (*PropertyDescriptor, Completion) {
	trap, c := p.getTrap("getOwnPropertyDescriptor")
	if c.Abrupt() {
		return nil, c
	}
	if trap == nil {
		return p.target.self.getOwnProperty(key)
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target, key.toValue()})
	if tc.Abrupt() {
		return nil, tc
	}
	if _, isObj := tc.Value.(*Object); !isObj && tc.Value != _undefined {
		return nil, r.throwTypeError("'getOwnPropertyDescriptor' on proxy: trap returned neither object nor undefined for property '%s'", key.String())
	}
	targetDesc, dc := p.target.self.getOwnProperty(key)
	if dc.Abrupt() {
		return nil, dc
	}
	if tc.Value == _undefined {
		if targetDesc == nil {
			return nil, emptyCompletion
		}
		if targetDesc.Configurable == FLAG_FALSE {
			return nil, r.throwTypeError("'getOwnPropertyDescriptor' on proxy: trap returned undefined for property '%s' which is non-configurable in the proxy target", key.String())
		}
		ext := p.target.self.isExtensible()
		if ext.Abrupt() {
			return nil, ext
		}
		if ext.Value == valueFalse {
			return nil, r.throwTypeError("'getOwnPropertyDescriptor' on proxy: trap returned undefined for property '%s' which exists in the non-extensible proxy target", key.String())
		}
		return nil, emptyCompletion
	}
	resultDesc, dc2 := r.toPropertyDescriptor(tc.Value)
	if dc2.Abrupt() {
		return nil, dc2
	}
	completeDescriptor(resultDesc)
	if !isCompatiblePropertyDescriptor(p.target.self, *resultDesc, targetDesc) {
		return nil, r.throwTypeError("'getOwnPropertyDescriptor' on proxy: trap returned descriptor for property '%s' that is incompatible with the existing property in the proxy target", key.String())
	}
	if resultDesc.Configurable == FLAG_FALSE {
		if targetDesc == nil || targetDesc.Configurable == FLAG_TRUE {
			return nil, r.throwTypeError("'getOwnPropertyDescriptor' on proxy: trap reported non-configurability for property '%s' which is either non-existent or configurable in the proxy target", key.String())
		}
	}
	return resultDesc, emptyCompletion
}

func (p *proxyObject) defineOwnProperty(key propertyKey, desc PropertyDescriptor) Completion {
	trap, c := p.getTrap("defineProperty")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.defineOwnProperty(key, desc)
	}
	r := p.realm()
	descObj := r.fromPropertyDescriptor(desc)
	tc := r.call(trap, p.handler, []Value{p.target, key.toValue(), descObj})
	if tc.Abrupt() {
		return tc
	}
	if !tc.Value.ToBoolean() {
		return completionFalse
	}
	targetDesc, dc := p.target.self.getOwnProperty(key)
	if dc.Abrupt() {
		return dc
	}
	ext := p.target.self.isExtensible()
	if ext.Abrupt() {
		return ext
	}
	settingConfigFalse := desc.Configurable == FLAG_FALSE
	if targetDesc == nil {
		if ext.Value == valueFalse {
			return r.throwTypeError("'defineProperty' on proxy: trap returned truish for adding property '%s' to the non-extensible proxy target", key.String())
		}
		if settingConfigFalse {
			return r.throwTypeError("'defineProperty' on proxy: trap returned truish for defining non-configurable property '%s' which is non-existent in the proxy target", key.String())
		}
	} else {
		if !isCompatiblePropertyDescriptor(p.target.self, desc, targetDesc) {
			return r.throwTypeError("'defineProperty' on proxy: trap returned truish for adding property '%s' that is incompatible with the existing property in the proxy target", key.String())
		}
		if settingConfigFalse && targetDesc.Configurable == FLAG_TRUE {
			return r.throwTypeError("'defineProperty' on proxy: trap returned truish for defining non-configurable property '%s' which is configurable in the proxy target", key.String())
		}
	}
	return completionTrue
}

func (p *proxyObject) hasProperty(key propertyKey) Completion {
	trap, c := p.getTrap("has")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.hasProperty(key)
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target, key.toValue()})
	if tc.Abrupt() {
		return tc
	}
	if !tc.Value.ToBoolean() {
		targetDesc, dc := p.target.self.getOwnProperty(key)
		if dc.Abrupt() {
			return dc
		}
		if targetDesc != nil {
			if targetDesc.Configurable == FLAG_FALSE {
				return r.throwTypeError("'has' on proxy: trap returned falsish for property '%s' which exists in the proxy target as non-configurable", key.String())
			}
			ext := p.target.self.isExtensible()
			if ext.Abrupt() {
				return ext
			}
			if ext.Value == valueFalse {
				return r.throwTypeError("'has' on proxy: trap returned falsish for property '%s' but the proxy target is not extensible", key.String())
			}
		}
		return completionFalse
	}
	return completionTrue
}

func (p *proxyObject) get(key propertyKey, receiver Value) Completion {
	trap, c := p.getTrap("get")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.get(key, receiver)
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target, key.toValue(), receiver})
	if tc.Abrupt() {
		return tc
	}
	targetDesc, dc := p.target.self.getOwnProperty(key)
	if dc.Abrupt() {
		return dc
	}
	if targetDesc != nil && targetDesc.Configurable == FLAG_FALSE {
		if targetDesc.isData() && targetDesc.Writable == FLAG_FALSE {
			if !tc.Value.SameAs(targetDesc.Value) {
				return r.throwTypeError("'get' on proxy: property '%s' is a read-only and non-configurable data property on the proxy target but the proxy did not return its actual value", key.String())
			}
		}
		if targetDesc.isAccessor() && targetDesc.Getter == _undefined {
			if tc.Value != _undefined {
				return r.throwTypeError("'get' on proxy: property '%s' is a non-configurable accessor property on the proxy target and does not have a getter function, but the trap did not return 'undefined'", key.String())
			}
		}
	}
	return tc
}

func (p *proxyObject) set(key propertyKey, v, receiver Value) Completion {
	trap, c := p.getTrap("set")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.set(key, v, receiver)
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target, key.toValue(), v, receiver})
	if tc.Abrupt() {
		return tc
	}
	if !tc.Value.ToBoolean() {
		return completionFalse
	}
	targetDesc, dc := p.target.self.getOwnProperty(key)
	if dc.Abrupt() {
		return dc
	}
	if targetDesc != nil && targetDesc.Configurable == FLAG_FALSE {
		if targetDesc.isData() && targetDesc.Writable == FLAG_FALSE {
			if !v.SameAs(targetDesc.Value) {
				return r.throwTypeError("'set' on proxy: trap returned truish for property '%s' which exists in the proxy target as a non-configurable and non-writable data property with a different value", key.String())
			}
		}
		if targetDesc.isAccessor() && targetDesc.Setter == _undefined {
			return r.throwTypeError("'set' on proxy: trap returned truish for property '%s' which exists in the proxy target as a non-configurable and non-writable accessor property without a setter", key.String())
		}
	}
	return completionTrue
}

func (p *proxyObject) deleteProperty(key propertyKey) Completion {
	trap, c := p.getTrap("deleteProperty")
	if c.Abrupt() {
		return c
	}
	if trap == nil {
		return p.target.self.deleteProperty(key)
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target, key.toValue()})
	if tc.Abrupt() {
		return tc
	}
	if !tc.Value.ToBoolean() {
		return completionFalse
	}
	targetDesc, dc := p.target.self.getOwnProperty(key)
	if dc.Abrupt() {
		return dc
	}
	if targetDesc == nil {
		return completionTrue
	}
	if targetDesc.Configurable == FLAG_FALSE {
		return r.throwTypeError("'deleteProperty' on proxy: trap returned truish for property '%s' which is non-configurable in the proxy target", key.String())
	}
	return completionTrue
}

func (p *proxyObject) ownPropertyKeys() ([]propertyKey, Completion) {
	trap, c := p.getTrap("ownKeys")
	if c.Abrupt() {
		return nil, c
	}
	if trap == nil {
		return p.target.self.ownPropertyKeys()
	}
	r := p.realm()
	tc := r.call(trap, p.handler, []Value{p.target})
	if tc.Abrupt() {
		return nil, tc
	}
	listObj, ok := tc.Value.(*Object)
	if !ok {
		return nil, r.throwTypeError("'ownKeys' on proxy: trap result is not an object")
	}
	length, lc := r.lengthOfArrayLike(listObj)
	if lc.Abrupt() {
		return nil, lc
	}
	trapResult := make([]propertyKey, 0, length)
	seen := make(map[propertyKey]bool, length)
	for i := int64(0); i < length; i++ {
		ec := listObj.self.get(strKey(intToValue(i).String()), listObj)
		if ec.Abrupt() {
			return nil, ec
		}
		var key propertyKey
		switch e := ec.Value.(type) {
		case valueString:
			key = strKey(e.String())
		case *valueSymbol:
			key = symKey(e)
		default:
			return nil, r.throwTypeError("'ownKeys' on proxy: trap result element is neither string nor symbol")
		}
		if seen[key] {
			return nil, r.throwTypeError("'ownKeys' on proxy: trap returned duplicate entries")
		}
		seen[key] = true
		trapResult = append(trapResult, key)
	}
	ext := p.target.self.isExtensible()
	if ext.Abrupt() {
		return nil, ext
	}
	targetKeys, kc := p.target.self.ownPropertyKeys()
	if kc.Abrupt() {
		return nil, kc
	}
	var targetConfigurable, targetNonconfigurable []propertyKey
	for _, key := range targetKeys {
		desc, dc := p.target.self.getOwnProperty(key)
		if dc.Abrupt() {
			return nil, dc
		}
		if desc != nil && desc.Configurable == FLAG_FALSE {
			targetNonconfigurable = append(targetNonconfigurable, key)
		} else {
			targetConfigurable = append(targetConfigurable, key)
		}
	}
	if ext.Value == valueTrue && len(targetNonconfigurable) == 0 {
		return trapResult, emptyCompletion
	}
	for _, key := range targetNonconfigurable {
		if !seen[key] {
			return nil, r.throwTypeError("'ownKeys' on proxy: trap result did not include non-configurable property '%s'", key.String())
		}
	}
	if ext.Value == valueTrue {
		return trapResult, emptyCompletion
	}
	remaining := make(map[propertyKey]bool, len(seen))
	for k := range seen {
		remaining[k] = true
	}
	for _, key := range targetNonconfigurable {
		delete(remaining, key)
	}
	for _, key := range targetConfigurable {
		if !remaining[key] {
			return nil, r.throwTypeError("'ownKeys' on proxy: trap result must include property '%s' of the non-extensible proxy target", key.String())
		}
		delete(remaining, key)
	}
	if len(remaining) > 0 {
		return nil, r.throwTypeError("'ownKeys' on proxy: trap returned extra keys but the proxy target is non-extensible")
	}
	return trapResult, emptyCompletion
}

// callableProxyObject adds [[Call]] for proxies over callable targets.
type callableProxyObject struct {
	proxyObject
}

func (p *callableProxyObject) call(call FunctionCall) Completion {
	trap, c := p.getTrap("apply")
	if c.Abrupt() {
		return c
	}
	r := p.realm()
	if trap == nil {
		return r.call(p.target, call.This, call.Arguments)
	}
	argArray := r.createArrayFromList(call.Arguments)
	return r.call(trap, p.handler, []Value{p.target, call.This, argArray})
}

// ctorProxyObject adds [[Construct]] for proxies over constructors.
type ctorProxyObject struct {
	callableProxyObject
}

func (p *ctorProxyObject) construct(args []Value, newTarget *Object) Completion {
	trap, c := p.getTrap("construct")
	if c.Abrupt() {
		return c
	}
	r := p.realm()
	if trap == nil {
		return r.construct(p.target, args, newTarget)
	}
	argArray := r.createArrayFromList(args)
	tc := r.call(trap, p.handler, []Value{p.target, argArray, newTarget})
	if tc.Abrupt() {
		return tc
	}
	if _, ok := tc.Value.(*Object); !ok {
		return r.throwTypeError("'construct' on proxy: trap returned non-object")
	}
	return tc
}

// proxyCreate builds the proxy exotic object.
func (r *Realm) proxyCreate(target, handler Value) Completion {
	targetObj, ok := target.(*Object)
	if !ok {
		return r.throwTypeError("Cannot create proxy with a non-object as target")
	}
	handlerObj, ok := handler.(*Object)
	if !ok {
		return r.throwTypeError("Cannot create proxy with a non-object as handler")
	}
	v := &Object{realm: r}
	base := proxyObject{val: v, target: targetObj, handler: handlerObj}
	if targetObj.isConstructor() {
		v.self = &ctorProxyObject{callableProxyObject{base}}
	} else if targetObj.isCallable() {
		v.self = &callableProxyObject{base}
	} else {
		pb := base
		v.self = &pb
	}
	return normalCompletion(v)
}

func (p *proxyObject) revoke() {
	p.target = nil
	p.handler = nil
}

// isCompatiblePropertyDescriptor checks descriptor compatibility against an
// extensible pseudo-target, mirroring ValidateAndApplyPropertyDescriptor
// without applying.
func isCompatiblePropertyDescriptor(_ objectImpl, desc PropertyDescriptor, current *PropertyDescriptor) bool {
	var cur *property
	if current != nil {
		cur = &property{
			enumerable:   current.Enumerable.Bool(),
			configurable: current.Configurable.Bool(),
		}
		if current.isAccessor() {
			cur.accessor = true
			cur.getterFunc = descFunc(current.Getter)
			cur.setterFunc = descFunc(current.Setter)
		} else {
			cur.writable = current.Writable.Bool()
			cur.value = current.Value
		}
	}
	ok, _ := validateAndApplyPropertyDescriptor(true, desc, cur)
	return ok
}

// completeDescriptor fills absent fields with defaults.
func completeDescriptor(d *PropertyDescriptor) {
	if d.isGeneric() || d.isData() {
		if d.Value == nil {
			d.Value = _undefined
		}
		if d.Writable == FLAG_NOT_SET {
			d.Writable = FLAG_FALSE
		}
	} else {
		if d.Getter == nil {
			d.Getter = _undefined
		}
		if d.Setter == nil {
			d.Setter = _undefined
		}
	}
	if d.Enumerable == FLAG_NOT_SET {
		d.Enumerable = FLAG_FALSE
	}
	if d.Configurable == FLAG_NOT_SET {
		d.Configurable = FLAG_FALSE
	}
}

package harmony

import (
	"sort"
)

const (
	classObject    = "Object"
	classArray     = "Array"
	classFunction  = "Function"
	classNumber    = "Number"
	classString    = "String"
	classBoolean   = "Boolean"
	classSymbol    = "Symbol"
	classBigInt    = "BigInt"
	classError     = "Error"
	classRegExp    = "RegExp"
	classArguments = "Arguments"
	classMath      = "Math"
	classJSON      = "JSON"
	classProxy     = "Proxy"
	classPromise   = "Promise"
	classModule    = "Module"
	classGenerator = "Generator"
)

// Object is a heap entity: a realm association plus an objectImpl carrying
// the internal-method table. Exotic kinds swap the impl, never subclass.
type Object struct {
	realm *Realm
	self  objectImpl
}

func (o *Object) Kind() ValueKind { return KindObject }

func (o *Object) ToBoolean() bool { return true }

func (o *Object) String() string {
	return "[object " + o.self.className() + "]"
}

func (o *Object) SameAs(other Value) bool {
	v, ok := other.(*Object)
	return ok && o == v
}

func (o *Object) StrictEquals(other Value) bool { return o.SameAs(other) }

func (o *Object) Export() interface{} { return o.self.export() }

func (o *Object) baseObject(*Realm) *Object { return o }

// propertyKey is a string or a symbol.
type propertyKey struct {
	s   string
	sym *valueSymbol
}

func strKey(s string) propertyKey {
	return propertyKey{s: s}
}

func symKey(s *valueSymbol) propertyKey {
	return propertyKey{sym: s}
}

func (k propertyKey) isSymbol() bool { return k.sym != nil }

func (k propertyKey) String() string {
	if k.sym != nil {
		return k.sym.String()
	}
	return k.s
}

func (k propertyKey) toValue() Value {
	if k.sym != nil {
		return k.sym
	}
	return newStringValue(k.s)
}

// Flag is a tri-state boolean used for absent descriptor fields.
type Flag int

const (
	FLAG_NOT_SET Flag = iota
	FLAG_FALSE
	FLAG_TRUE
)

func (f Flag) Bool() bool { return f == FLAG_TRUE }

func flagOf(b bool) Flag {
	if b {
		return FLAG_TRUE
	}
	return FLAG_FALSE
}

// PropertyDescriptor is the descriptor record. nil Value/Getter/Setter and
// FLAG_NOT_SET flags mean the field is absent, which composes differently
// from a present undefined.
type PropertyDescriptor struct {
	Value Value

	Writable, Configurable, Enumerable Flag

	Getter, Setter Value
}

func (d *PropertyDescriptor) isAccessor() bool {
	return d.Getter != nil || d.Setter != nil
}

func (d *PropertyDescriptor) isData() bool {
	return d.Value != nil || d.Writable != FLAG_NOT_SET
}

func (d *PropertyDescriptor) isGeneric() bool {
	return !d.isAccessor() && !d.isData()
}

// property is the stored shape of an own property: always a well-formed data
// or accessor record, never a mixed one.
type property struct {
	value                  Value
	getterFunc, setterFunc *Object

	writable, enumerable, configurable bool
	accessor                           bool
}

func (p *property) toDescriptor() PropertyDescriptor {
	d := PropertyDescriptor{
		Enumerable:   flagOf(p.enumerable),
		Configurable: flagOf(p.configurable),
	}
	if p.accessor {
		if p.getterFunc != nil {
			d.Getter = p.getterFunc
		} else {
			d.Getter = _undefined
		}
		if p.setterFunc != nil {
			d.Setter = p.setterFunc
		} else {
			d.Setter = _undefined
		}
	} else {
		d.Value = p.value
		d.Writable = flagOf(p.writable)
	}
	return d
}

// objectImpl is the internal-method table. One implementation per object
// kind; exotic kinds replace entries rather than inheriting.
//
// Boolean-valued essential methods carry their result as valueTrue/valueFalse
// in a normal completion.
type objectImpl interface {
	className() string

	getPrototypeOf() Completion
	setPrototypeOf(v Value) Completion
	isExtensible() Completion
	preventExtensions() Completion
	getOwnProperty(p propertyKey) (*PropertyDescriptor, Completion)
	defineOwnProperty(p propertyKey, desc PropertyDescriptor) Completion
	hasProperty(p propertyKey) Completion
	get(p propertyKey, receiver Value) Completion
	set(p propertyKey, v, receiver Value) Completion
	deleteProperty(p propertyKey) Completion
	ownPropertyKeys() ([]propertyKey, Completion)

	export() interface{}
}

// FunctionCall carries the arguments of a [[Call]].
type FunctionCall struct {
	This      Value
	Arguments []Value
}

func (f FunctionCall) Argument(idx int) Value {
	if idx < len(f.Arguments) {
		return f.Arguments[idx]
	}
	return _undefined
}

// callable is implemented by impls that have [[Call]].
type callable interface {
	call(call FunctionCall) Completion
}

// constructible is implemented by impls that have [[Construct]].
type constructible interface {
	construct(args []Value, newTarget *Object) Completion
}

func (o *Object) isCallable() bool {
	_, ok := o.self.(callable)
	return ok
}

func (o *Object) isConstructor() bool {
	_, ok := o.self.(constructible)
	return ok
}

// baseObject implements the ordinary object algorithms.
type baseObject struct {
	class      string
	val        *Object
	prototype  *Object
	extensible bool

	values    map[string]*property
	propNames []string

	symValues map[*valueSymbol]*property
	symNames  []*valueSymbol
}

func (o *baseObject) init() {
	o.values = make(map[string]*property)
}

func (o *baseObject) className() string { return o.class }

func (o *baseObject) export() interface{} {
	m := make(map[string]interface{})
	for _, name := range o.propNames {
		if prop := o.values[name]; prop != nil && !prop.accessor && prop.value != nil {
			m[name] = prop.value.Export()
		}
	}
	return m
}

func (o *baseObject) getProp(p propertyKey) *property {
	if p.sym != nil {
		return o.symValues[p.sym]
	}
	return o.values[p.s]
}

func (o *baseObject) putProp(p propertyKey, prop *property) {
	if p.sym != nil {
		if o.symValues == nil {
			o.symValues = make(map[*valueSymbol]*property, 1)
		}
		if _, exists := o.symValues[p.sym]; !exists {
			o.symNames = append(o.symNames, p.sym)
		}
		o.symValues[p.sym] = prop
	} else {
		if _, exists := o.values[p.s]; !exists {
			o.propNames = append(o.propNames, p.s)
		}
		o.values[p.s] = prop
	}
}

func (o *baseObject) removeProp(p propertyKey) {
	if p.sym != nil {
		delete(o.symValues, p.sym)
		for i, s := range o.symNames {
			if s == p.sym {
				copy(o.symNames[i:], o.symNames[i+1:])
				o.symNames = o.symNames[:len(o.symNames)-1]
				break
			}
		}
		return
	}
	delete(o.values, p.s)
	for i, n := range o.propNames {
		if n == p.s {
			copy(o.propNames[i:], o.propNames[i+1:])
			o.propNames = o.propNames[:len(o.propNames)-1]
			break
		}
	}
}

// _putProp installs a property directly, bypassing [[DefineOwnProperty]].
// Used during intrinsic setup.
func (o *baseObject) _putProp(name string, value Value, writable, enumerable, configurable bool) {
	o.putProp(strKey(name), &property{
		value:        value,
		writable:     writable,
		enumerable:   enumerable,
		configurable: configurable,
	})
}

func (o *baseObject) _putSym(s *valueSymbol, value Value, writable, enumerable, configurable bool) {
	o.putProp(symKey(s), &property{
		value:        value,
		writable:     writable,
		enumerable:   enumerable,
		configurable: configurable,
	})
}

func (o *baseObject) _putAccessor(name string, getter, setter *Object, enumerable, configurable bool) {
	o.putProp(strKey(name), &property{
		getterFunc:   getter,
		setterFunc:   setter,
		accessor:     true,
		enumerable:   enumerable,
		configurable: configurable,
	})
}

// ---------- ordinary internal methods ----------

func (o *baseObject) getPrototypeOf() Completion {
	if o.prototype == nil {
		return normalCompletion(_null)
	}
	return normalCompletion(o.prototype)
}

func (o *baseObject) setPrototypeOf(v Value) Completion {
	var proto *Object
	if p, ok := v.(*Object); ok {
		proto = p
	} else if v != _null {
		return o.val.realm.throwTypeError("Object prototype may only be an Object or null")
	}
	if proto == o.prototype {
		return completionTrue
	}
	if !o.extensible {
		return completionFalse
	}
	// The cycle check walks only ordinary prototypes; a proxy in the chain
	// ends the walk.
	for p := proto; p != nil; {
		if p == o.val {
			return completionFalse
		}
		base, ok := p.self.(interface{ ordinaryProto() *Object })
		if !ok {
			break
		}
		p = base.ordinaryProto()
	}
	o.prototype = proto
	return completionTrue
}

func (o *baseObject) ordinaryProto() *Object { return o.prototype }

func (o *baseObject) isExtensible() Completion {
	return booleanCompletion(o.extensible)
}

func (o *baseObject) preventExtensions() Completion {
	o.extensible = false
	return completionTrue
}

func (o *baseObject) getOwnProperty(p propertyKey) (*PropertyDescriptor, Completion) {
	prop := o.getProp(p)
	if prop == nil {
		return nil, emptyCompletion
	}
	d := prop.toDescriptor()
	return &d, emptyCompletion
}

func (o *baseObject) defineOwnProperty(p propertyKey, desc PropertyDescriptor) Completion {
	current := o.getProp(p)
	ok, prop := validateAndApplyPropertyDescriptor(o.extensible, desc, current)
	if !ok {
		return completionFalse
	}
	if prop != nil {
		o.putProp(p, prop)
	}
	return completionTrue
}

// validateAndApplyPropertyDescriptor merges desc into current under the
// extensibility and configurability rules. It returns the updated property
// record to store, or nil when current was mutated in place.
func validateAndApplyPropertyDescriptor(extensible bool, desc PropertyDescriptor, current *property) (bool, *property) {
	if current == nil {
		if !extensible {
			return false, nil
		}
		prop := &property{
			enumerable:   desc.Enumerable.Bool(),
			configurable: desc.Configurable.Bool(),
		}
		if desc.isAccessor() {
			prop.accessor = true
			prop.getterFunc = descFunc(desc.Getter)
			prop.setterFunc = descFunc(desc.Setter)
		} else {
			prop.writable = desc.Writable.Bool()
			if desc.Value != nil {
				prop.value = desc.Value
			} else {
				prop.value = _undefined
			}
		}
		return true, prop
	}

	if !current.configurable {
		if desc.Configurable == FLAG_TRUE {
			return false, nil
		}
		if desc.Enumerable != FLAG_NOT_SET && desc.Enumerable.Bool() != current.enumerable {
			return false, nil
		}
		if !desc.isGeneric() && desc.isAccessor() != current.accessor {
			return false, nil
		}
		if current.accessor {
			if desc.Getter != nil && descFunc(desc.Getter) != current.getterFunc {
				return false, nil
			}
			if desc.Setter != nil && descFunc(desc.Setter) != current.setterFunc {
				return false, nil
			}
		} else if !current.writable {
			if desc.Writable == FLAG_TRUE {
				return false, nil
			}
			if desc.Value != nil && !desc.Value.SameAs(current.value) {
				return false, nil
			}
		}
	}

	if desc.isAccessor() {
		if !current.accessor {
			current.accessor = true
			current.value = nil
			current.writable = false
		}
		if desc.Getter != nil {
			current.getterFunc = descFunc(desc.Getter)
		}
		if desc.Setter != nil {
			current.setterFunc = descFunc(desc.Setter)
		}
	} else if desc.isData() {
		if current.accessor {
			current.accessor = false
			current.getterFunc = nil
			current.setterFunc = nil
			current.value = _undefined
		}
		if desc.Value != nil {
			current.value = desc.Value
		}
		if desc.Writable != FLAG_NOT_SET {
			current.writable = desc.Writable.Bool()
		}
	}
	if desc.Enumerable != FLAG_NOT_SET {
		current.enumerable = desc.Enumerable.Bool()
	}
	if desc.Configurable != FLAG_NOT_SET {
		current.configurable = desc.Configurable.Bool()
	}
	return true, nil
}

func descFunc(v Value) *Object {
	if o, ok := v.(*Object); ok {
		return o
	}
	return nil
}

func (o *baseObject) hasProperty(p propertyKey) Completion {
	if prop := o.getProp(p); prop != nil {
		return completionTrue
	}
	if o.prototype != nil {
		return o.prototype.self.hasProperty(p)
	}
	return completionFalse
}

func (o *baseObject) get(p propertyKey, receiver Value) Completion {
	prop := o.getProp(p)
	if prop == nil {
		if o.prototype == nil {
			return normalCompletion(_undefined)
		}
		return o.prototype.self.get(p, receiver)
	}
	if prop.accessor {
		if prop.getterFunc == nil {
			return normalCompletion(_undefined)
		}
		return o.val.realm.call(prop.getterFunc, receiver, nil)
	}
	return normalCompletion(prop.value)
}

func (o *baseObject) set(p propertyKey, v, receiver Value) Completion {
	ownDesc, c := o.val.self.getOwnProperty(p)
	if c.Abrupt() {
		return c
	}
	return ordinarySetWithOwnDescriptor(o.val, p, v, receiver, ownDesc)
}

func ordinarySetWithOwnDescriptor(obj *Object, p propertyKey, v, receiver Value, ownDesc *PropertyDescriptor) Completion {
	if ownDesc == nil {
		protoC := obj.self.getPrototypeOf()
		if protoC.Abrupt() {
			return protoC
		}
		if parent, ok := protoC.Value.(*Object); ok {
			return parent.self.set(p, v, receiver)
		}
		ownDesc = &PropertyDescriptor{
			Value:        _undefined,
			Writable:     FLAG_TRUE,
			Enumerable:   FLAG_TRUE,
			Configurable: FLAG_TRUE,
		}
	}
	if ownDesc.isAccessor() {
		setter := descFunc(ownDesc.Setter)
		if setter == nil {
			return completionFalse
		}
		c := obj.realm.call(setter, receiver, []Value{v})
		if c.Abrupt() {
			return c
		}
		return completionTrue
	}
	if ownDesc.Writable == FLAG_FALSE {
		return completionFalse
	}
	robj, ok := receiver.(*Object)
	if !ok {
		return completionFalse
	}
	existing, c := robj.self.getOwnProperty(p)
	if c.Abrupt() {
		return c
	}
	if existing != nil {
		if existing.isAccessor() {
			return completionFalse
		}
		if existing.Writable == FLAG_FALSE {
			return completionFalse
		}
		return robj.self.defineOwnProperty(p, PropertyDescriptor{Value: v})
	}
	return robj.self.defineOwnProperty(p, PropertyDescriptor{
		Value:        v,
		Writable:     FLAG_TRUE,
		Enumerable:   FLAG_TRUE,
		Configurable: FLAG_TRUE,
	})
}

func (o *baseObject) deleteProperty(p propertyKey) Completion {
	prop := o.getProp(p)
	if prop == nil {
		return completionTrue
	}
	if !prop.configurable {
		return completionFalse
	}
	o.removeProp(p)
	return completionTrue
}

// ownPropertyKeys yields integer indices in ascending numeric order, then
// string keys in insertion order, then symbols in insertion order.
func (o *baseObject) ownPropertyKeys() ([]propertyKey, Completion) {
	var indices []int64
	var strs []string
	for _, name := range o.propNames {
		if idx, ok := isCanonicalIntegerIndex(name); ok {
			indices = append(indices, idx)
		} else {
			strs = append(strs, name)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	keys := make([]propertyKey, 0, len(indices)+len(strs)+len(o.symNames))
	for _, idx := range indices {
		keys = append(keys, strKey(intToValue(idx).String()))
	}
	for _, s := range strs {
		keys = append(keys, strKey(s))
	}
	for _, s := range o.symNames {
		keys = append(keys, symKey(s))
	}
	return keys, emptyCompletion
}

// primitiveValueObject is a wrapper object around a Boolean, Number, String,
// Symbol or BigInt value.
type primitiveValueObject struct {
	baseObject
	pValue Value
}

func (o *primitiveValueObject) export() interface{} {
	return o.pValue.Export()
}

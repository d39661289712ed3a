package harmony

import (
	"math"
	"math/big"
)

// ---------- calling ----------

// call dispatches [[Call]] after asserting callability.
func (r *Realm) call(fn *Object, this Value, args []Value) Completion {
	c, ok := fn.self.(callable)
	if !ok {
		return r.throwTypeError("%s is not a function", fn.String())
	}
	return c.call(FunctionCall{This: this, Arguments: args})
}

// CallValue is the exported helper form taking an arbitrary value.
func (r *Realm) CallValue(f Value, this Value, args ...Value) Completion {
	obj, ok := f.(*Object)
	if !ok {
		return r.throwTypeError("%s is not a function", f.String())
	}
	return r.call(obj, this, args)
}

func (r *Realm) construct(ctor *Object, args []Value, newTarget *Object) Completion {
	c, ok := ctor.self.(constructible)
	if !ok {
		return r.throwTypeError("%s is not a constructor", ctor.String())
	}
	if newTarget == nil {
		newTarget = ctor
	}
	return c.construct(args, newTarget)
}

// invoke gets p on v and calls it with v as this.
func (r *Realm) invoke(v Value, p propertyKey, args []Value) Completion {
	fc := r.getV(v, p)
	if fc.Abrupt() {
		return fc
	}
	return r.CallValue(fc.Value, v, args...)
}

// getV reads a property from any value, wrapping primitives.
func (r *Realm) getV(v Value, p propertyKey) Completion {
	switch v.(type) {
	case valueUndefined, valueNull:
		return r.throwTypeError("Cannot read properties of %s (reading '%s')", v.String(), p.String())
	}
	if obj, ok := v.(*Object); ok {
		return obj.self.get(p, v)
	}
	base := v.baseObject(r)
	if so, ok := v.(valueString); ok && !p.isSymbol() {
		if idx, ok := isCanonicalIntegerIndex(p.s); ok {
			if idx < int64(so.length()) {
				return normalCompletion(so.substring(int(idx), int(idx)+1))
			}
			return normalCompletion(_undefined)
		}
		if p.s == "length" {
			return normalCompletion(intToValue(int64(so.length())))
		}
	}
	return base.self.get(p, v)
}

// getMethod returns the callable at p, nil when undefined/null, TypeError
// otherwise.
func (r *Realm) getMethod(v Value, p propertyKey) (*Object, Completion) {
	fc := r.getV(v, p)
	if fc.Abrupt() {
		return nil, fc
	}
	switch fc.Value.(type) {
	case valueUndefined, valueNull:
		return nil, emptyCompletion
	}
	if obj, ok := fc.Value.(*Object); ok && obj.isCallable() {
		return obj, emptyCompletion
	}
	return nil, r.throwTypeError("%s is not a function", fc.Value.String())
}

// ---------- property helpers ----------

func hasOwnProperty(o *Object, p propertyKey) (bool, Completion) {
	desc, c := o.self.getOwnProperty(p)
	if c.Abrupt() {
		return false, c
	}
	return desc != nil, emptyCompletion
}

// CreateDataProperty is the exported helper of the same abstract operation.
func (r *Realm) CreateDataProperty(o *Object, name string, v Value) Completion {
	return r.createDataProperty(o, strKey(name), v)
}

func (r *Realm) createDataProperty(o *Object, p propertyKey, v Value) Completion {
	return o.self.defineOwnProperty(p, PropertyDescriptor{
		Value:        v,
		Writable:     FLAG_TRUE,
		Enumerable:   FLAG_TRUE,
		Configurable: FLAG_TRUE,
	})
}

func (r *Realm) createDataPropertyOrThrow(o *Object, p propertyKey, v Value) Completion {
	c := r.createDataProperty(o, p, v)
	if c.Abrupt() {
		return c
	}
	if c.Value == valueFalse {
		return r.throwTypeError("Cannot create property '%s'", p.String())
	}
	return c
}

func (r *Realm) definePropertyOrThrow(o *Object, p propertyKey, desc PropertyDescriptor) Completion {
	c := o.self.defineOwnProperty(p, desc)
	if c.Abrupt() {
		return c
	}
	if c.Value == valueFalse {
		return r.throwTypeError("Cannot redefine property: %s", p.String())
	}
	return c
}

func (r *Realm) deletePropertyOrThrow(o *Object, p propertyKey) Completion {
	c := o.self.deleteProperty(p)
	if c.Abrupt() {
		return c
	}
	if c.Value == valueFalse {
		return r.throwTypeError("Cannot delete property '%s' of %s", p.String(), o.String())
	}
	return c
}

func (r *Realm) setOrThrow(o *Object, p propertyKey, v Value) Completion {
	c := o.self.set(p, v, o)
	if c.Abrupt() {
		return c
	}
	if c.Value == valueFalse {
		return r.throwTypeError("Cannot assign to read only property '%s' of %s", p.String(), o.String())
	}
	return emptyCompletion
}

// setProp writes with the strict flag deciding whether failure throws.
func (r *Realm) setProp(o *Object, p propertyKey, v Value, strict bool) Completion {
	if strict {
		return r.setOrThrow(o, p, v)
	}
	c := o.self.set(p, v, o)
	if c.Abrupt() {
		return c
	}
	return emptyCompletion
}

// ---------- type conversion ----------

const (
	hintDefault = "default"
	hintNumber  = "number"
	hintString  = "string"
)

func (r *Realm) toPrimitive(v Value, hint string) Completion {
	obj, ok := v.(*Object)
	if !ok {
		return normalCompletion(v)
	}
	exotic, c := r.getMethod(obj, symKey(symToPrimitive))
	if c.Abrupt() {
		return c
	}
	if exotic != nil {
		rc := r.call(exotic, obj, []Value{newStringValue(hint)})
		if rc.Abrupt() {
			return rc
		}
		if _, isObj := rc.Value.(*Object); !isObj {
			return rc
		}
		return r.throwTypeError("Cannot convert object to primitive value")
	}
	if hint == hintDefault {
		hint = hintNumber
	}
	return r.ordinaryToPrimitive(obj, hint)
}

func (r *Realm) ordinaryToPrimitive(obj *Object, hint string) Completion {
	methods := [2]string{"valueOf", "toString"}
	if hint == hintString {
		methods = [2]string{"toString", "valueOf"}
	}
	for _, name := range methods {
		mc := obj.self.get(strKey(name), obj)
		if mc.Abrupt() {
			return mc
		}
		if m, ok := mc.Value.(*Object); ok && m.isCallable() {
			rc := r.call(m, obj, nil)
			if rc.Abrupt() {
				return rc
			}
			if _, isObj := rc.Value.(*Object); !isObj {
				return rc
			}
		}
	}
	return r.throwTypeError("Cannot convert object to primitive value")
}

func (r *Realm) toNumber(v Value) Completion {
	switch n := v.(type) {
	case valueInt, valueFloat:
		return normalCompletion(v)
	case valueUndefined:
		return normalCompletion(_NaN)
	case valueNull:
		return normalCompletion(intToValue(0))
	case valueBool:
		if n {
			return normalCompletion(intToValue(1))
		}
		return normalCompletion(intToValue(0))
	case valueString:
		return normalCompletion(floatToValue(stringToNumber(n.String())))
	case *valueSymbol:
		return r.throwTypeError("Cannot convert a Symbol value to a number")
	case *valueBigInt:
		return r.throwTypeError("Cannot convert a BigInt value to a number")
	case *Object:
		pc := r.toPrimitive(v, hintNumber)
		if pc.Abrupt() {
			return pc
		}
		return r.toNumber(pc.Value)
	}
	panic("unreachable")
}

// toNumeric yields a Number or BigInt.
func (r *Realm) toNumeric(v Value) Completion {
	pc := r.toPrimitive(v, hintNumber)
	if pc.Abrupt() {
		return pc
	}
	if _, ok := pc.Value.(*valueBigInt); ok {
		return pc
	}
	return r.toNumber(pc.Value)
}

func (r *Realm) toString(v Value) Completion {
	switch s := v.(type) {
	case valueString:
		return normalCompletion(v)
	case valueUndefined:
		return normalCompletion(stringUndefined)
	case valueNull:
		return normalCompletion(stringNull)
	case valueBool:
		if s {
			return normalCompletion(stringTrue)
		}
		return normalCompletion(stringFalse)
	case valueInt, valueFloat, *valueBigInt:
		return normalCompletion(newStringValue(v.String()))
	case *valueSymbol:
		return r.throwTypeError("Cannot convert a Symbol value to a string")
	case *Object:
		pc := r.toPrimitive(v, hintString)
		if pc.Abrupt() {
			return pc
		}
		return r.toString(pc.Value)
	}
	panic("unreachable")
}

// ToString is the exported helper; it returns the Go string or the abrupt
// completion.
func (r *Realm) ToString(v Value) (string, Completion) {
	c := r.toString(v)
	if c.Abrupt() {
		return "", c
	}
	return c.Value.String(), emptyCompletion
}

func (r *Realm) toObject(v Value) Completion {
	switch p := v.(type) {
	case *Object:
		return normalCompletion(v)
	case valueUndefined, valueNull:
		return r.throwTypeError("Cannot convert undefined or null to object")
	case valueString:
		return normalCompletion(r.newStringExotic(p))
	default:
		return normalCompletion(r.newPrimitiveObject(v, v.baseObject(r), primClass(v)))
	}
}

func primClass(v Value) string {
	switch v.(type) {
	case valueBool:
		return classBoolean
	case valueInt, valueFloat:
		return classNumber
	case *valueSymbol:
		return classSymbol
	case *valueBigInt:
		return classBigInt
	}
	return classObject
}

func (r *Realm) toPropertyKey(v Value) (propertyKey, Completion) {
	pc := r.toPrimitive(v, hintString)
	if pc.Abrupt() {
		return propertyKey{}, pc
	}
	if s, ok := pc.Value.(*valueSymbol); ok {
		return symKey(s), emptyCompletion
	}
	sc := r.toString(pc.Value)
	if sc.Abrupt() {
		return propertyKey{}, sc
	}
	return strKey(sc.Value.String()), emptyCompletion
}

const maxSafeInteger = 1<<53 - 1

func (r *Realm) toLength(v Value) (int64, Completion) {
	nc := r.toNumber(v)
	if nc.Abrupt() {
		return 0, nc
	}
	f := toIntegerOrInfinity(nc.Value)
	if f <= 0 {
		return 0, emptyCompletion
	}
	if f > maxSafeInteger {
		return maxSafeInteger, emptyCompletion
	}
	return int64(f), emptyCompletion
}

func (r *Realm) toIndex(v Value) (int64, Completion) {
	nc := r.toNumber(v)
	if nc.Abrupt() {
		return 0, nc
	}
	f := toIntegerOrInfinity(nc.Value)
	if f < 0 || f > maxSafeInteger {
		return 0, r.throwRangeError("Invalid index")
	}
	return int64(f), emptyCompletion
}

func (r *Realm) toInt32(v Value) (int32, Completion) {
	nc := r.toNumber(v)
	if nc.Abrupt() {
		return 0, nc
	}
	f := numberVal(nc.Value)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, emptyCompletion
	}
	return int32(uint32(int64(math.Trunc(f)))), emptyCompletion
}

func (r *Realm) toUint32(v Value) (uint32, Completion) {
	nc := r.toNumber(v)
	if nc.Abrupt() {
		return 0, nc
	}
	f := numberVal(nc.Value)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, emptyCompletion
	}
	return uint32(int64(math.Trunc(f))), emptyCompletion
}

// ---------- comparison ----------

// abstractEquals implements the == algorithm.
func (r *Realm) abstractEquals(x, y Value) Completion {
	if x.Kind() == y.Kind() || (isNumber(x) && isNumber(y)) {
		return booleanCompletion(x.StrictEquals(y))
	}
	switch {
	case x.Kind() == KindNull && y.Kind() == KindUndefined,
		x.Kind() == KindUndefined && y.Kind() == KindNull:
		return completionTrue
	case isNumber(x) && isString(y):
		return booleanCompletion(x.StrictEquals(floatToValue(stringToNumber(y.String()))))
	case isString(x) && isNumber(y):
		return booleanCompletion(floatToValue(stringToNumber(x.String())).StrictEquals(y))
	case x.Kind() == KindBigInt && isString(y):
		if b, ok := new(big.Int).SetString(trimJSWhitespace(y.String()), 10); ok {
			return booleanCompletion(x.(*valueBigInt).b.Cmp(b) == 0)
		}
		return completionFalse
	case isString(x) && y.Kind() == KindBigInt:
		return r.abstractEquals(y, x)
	case x.Kind() == KindBoolean:
		nc := r.toNumber(x)
		if nc.Abrupt() {
			return nc
		}
		return r.abstractEquals(nc.Value, y)
	case y.Kind() == KindBoolean:
		nc := r.toNumber(y)
		if nc.Abrupt() {
			return nc
		}
		return r.abstractEquals(x, nc.Value)
	case x.Kind() == KindBigInt && isNumber(y):
		f := numberVal(y)
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
			return completionFalse
		}
		return booleanCompletion(x.(*valueBigInt).b.Cmp(big.NewInt(int64(f))) == 0)
	case isNumber(x) && y.Kind() == KindBigInt:
		return r.abstractEquals(y, x)
	case y.Kind() == KindObject && x.Kind() != KindObject && x.Kind() != KindNull && x.Kind() != KindUndefined:
		pc := r.toPrimitive(y, hintDefault)
		if pc.Abrupt() {
			return pc
		}
		return r.abstractEquals(x, pc.Value)
	case x.Kind() == KindObject && y.Kind() != KindObject && y.Kind() != KindNull && y.Kind() != KindUndefined:
		pc := r.toPrimitive(x, hintDefault)
		if pc.Abrupt() {
			return pc
		}
		return r.abstractEquals(pc.Value, y)
	}
	return completionFalse
}

// lessThan implements the abstract relational comparison. leftFirst controls
// evaluation order of the ToPrimitive coercions. The carried value is
// true/false/undefined (undefined when either side is NaN).
func (r *Realm) lessThan(x, y Value, leftFirst bool) Completion {
	var px, py Value
	if leftFirst {
		pc := r.toPrimitive(x, hintNumber)
		if pc.Abrupt() {
			return pc
		}
		px = pc.Value
		pc = r.toPrimitive(y, hintNumber)
		if pc.Abrupt() {
			return pc
		}
		py = pc.Value
	} else {
		pc := r.toPrimitive(y, hintNumber)
		if pc.Abrupt() {
			return pc
		}
		py = pc.Value
		pc = r.toPrimitive(x, hintNumber)
		if pc.Abrupt() {
			return pc
		}
		px = pc.Value
	}
	if sx, ok := px.(valueString); ok {
		if sy, ok := py.(valueString); ok {
			return booleanCompletion(sx.compareTo(sy) < 0)
		}
	}
	bx, xIsBig := px.(*valueBigInt)
	by, yIsBig := py.(*valueBigInt)
	if xIsBig && yIsBig {
		return booleanCompletion(bx.b.Cmp(by.b) < 0)
	}
	if xIsBig || yIsBig {
		// Mixed BigInt/Number comparison goes through exact big.Float values.
		var bf *big.Float
		var other float64
		var bigOnLeft bool
		if xIsBig {
			nc := r.toNumber(py)
			if nc.Abrupt() {
				return nc
			}
			other = numberVal(nc.Value)
			bf = new(big.Float).SetInt(bx.b)
			bigOnLeft = true
		} else {
			nc := r.toNumber(px)
			if nc.Abrupt() {
				return nc
			}
			other = numberVal(nc.Value)
			bf = new(big.Float).SetInt(by.b)
		}
		if math.IsNaN(other) {
			return normalCompletion(_undefined)
		}
		cmp := bf.Cmp(big.NewFloat(other))
		if bigOnLeft {
			return booleanCompletion(cmp < 0)
		}
		return booleanCompletion(cmp > 0)
	}
	ncx := r.toNumber(px)
	if ncx.Abrupt() {
		return ncx
	}
	ncy := r.toNumber(py)
	if ncy.Abrupt() {
		return ncy
	}
	fx, fy := numberVal(ncx.Value), numberVal(ncy.Value)
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return normalCompletion(_undefined)
	}
	return booleanCompletion(fx < fy)
}

// ---------- object classification ----------

func (r *Realm) isArray(v Value) (bool, Completion) {
	obj, ok := v.(*Object)
	if !ok {
		return false, emptyCompletion
	}
	switch impl := obj.self.(type) {
	case *arrayObject:
		return true, emptyCompletion
	case *proxyObject:
		if impl.handler == nil {
			return false, r.throwTypeError("Cannot perform 'IsArray' on a proxy that has been revoked")
		}
		return r.isArray(impl.target)
	case *callableProxyObject:
		if impl.handler == nil {
			return false, r.throwTypeError("Cannot perform 'IsArray' on a proxy that has been revoked")
		}
		return r.isArray(impl.target)
	case *ctorProxyObject:
		if impl.handler == nil {
			return false, r.throwTypeError("Cannot perform 'IsArray' on a proxy that has been revoked")
		}
		return r.isArray(impl.target)
	}
	return false, emptyCompletion
}

func (r *Realm) speciesConstructor(o *Object, defaultCtor *Object) (*Object, Completion) {
	cc := o.self.get(strKey("constructor"), o)
	if cc.Abrupt() {
		return nil, cc
	}
	if cc.Value == _undefined {
		return defaultCtor, emptyCompletion
	}
	ctorObj, ok := cc.Value.(*Object)
	if !ok {
		return nil, r.throwTypeError("object.constructor is not an object")
	}
	sc := ctorObj.self.get(symKey(symSpecies), ctorObj)
	if sc.Abrupt() {
		return nil, sc
	}
	switch sc.Value.(type) {
	case valueUndefined, valueNull:
		return defaultCtor, emptyCompletion
	}
	if s, ok := sc.Value.(*Object); ok && s.isConstructor() {
		return s, emptyCompletion
	}
	return nil, r.throwTypeError("object species is not a constructor")
}

func (r *Realm) arraySpeciesCreate(original *Object, length int64) Completion {
	isArr, c := r.isArray(original)
	if c.Abrupt() {
		return c
	}
	if !isArr {
		return normalCompletion(r.newArrayLength(length))
	}
	cc := original.self.get(strKey("constructor"), original)
	if cc.Abrupt() {
		return cc
	}
	ctor := cc.Value
	if ctorObj, ok := ctor.(*Object); ok {
		sc := ctorObj.self.get(symKey(symSpecies), ctorObj)
		if sc.Abrupt() {
			return sc
		}
		ctor = sc.Value
		if ctor == _null {
			ctor = _undefined
		}
	}
	if ctor == _undefined {
		return normalCompletion(r.newArrayLength(length))
	}
	ctorObj, ok := ctor.(*Object)
	if !ok || !ctorObj.isConstructor() {
		return r.throwTypeError("Array species constructor is not a constructor")
	}
	return r.construct(ctorObj, []Value{intToValue(length)}, nil)
}

// ---------- instanceof ----------

func (r *Realm) instanceOfOperator(v Value, target Value) Completion {
	ctor, ok := target.(*Object)
	if !ok {
		return r.throwTypeError("Right-hand side of 'instanceof' is not an object")
	}
	handler, c := r.getMethod(ctor, symKey(symHasInstance))
	if c.Abrupt() {
		return c
	}
	if handler != nil {
		rc := r.call(handler, ctor, []Value{v})
		if rc.Abrupt() {
			return rc
		}
		return booleanCompletion(rc.Value.ToBoolean())
	}
	if !ctor.isCallable() {
		return r.throwTypeError("Right-hand side of 'instanceof' is not callable")
	}
	return r.ordinaryHasInstance(ctor, v)
}

func (r *Realm) ordinaryHasInstance(ctor *Object, v Value) Completion {
	if bf, ok := ctor.self.(interface{ boundTarget() *Object }); ok {
		return r.instanceOfOperator(v, bf.boundTarget())
	}
	obj, ok := v.(*Object)
	if !ok {
		return completionFalse
	}
	pc := ctor.self.get(strKey("prototype"), ctor)
	if pc.Abrupt() {
		return pc
	}
	proto, ok := pc.Value.(*Object)
	if !ok {
		return r.throwTypeError("Function has non-object prototype in instanceof check")
	}
	for {
		parentC := obj.self.getPrototypeOf()
		if parentC.Abrupt() {
			return parentC
		}
		parent, ok := parentC.Value.(*Object)
		if !ok {
			return completionFalse
		}
		if parent == proto {
			return completionTrue
		}
		obj = parent
	}
}

// typeofOperator yields the typeof string.
func typeofOperator(v Value) valueString {
	switch t := v.(type) {
	case valueUndefined:
		return stringUndefined
	case valueNull:
		return asciiString("object")
	case valueBool:
		return asciiString("boolean")
	case valueInt, valueFloat:
		return asciiString("number")
	case valueString:
		return asciiString("string")
	case *valueSymbol:
		return asciiString("symbol")
	case *valueBigInt:
		return asciiString("bigint")
	case *Object:
		if t.isCallable() {
			return asciiString("function")
		}
		return asciiString("object")
	}
	return asciiString("object")
}

// ---------- enumeration ----------

// enumerableOwnPropertyNames with kind "key", "value" or "key+value".
func (r *Realm) enumerableOwnPropertyNames(o *Object, kind string) ([]Value, Completion) {
	keys, c := o.self.ownPropertyKeys()
	if c.Abrupt() {
		return nil, c
	}
	var out []Value
	for _, key := range keys {
		if key.isSymbol() {
			continue
		}
		desc, dc := o.self.getOwnProperty(key)
		if dc.Abrupt() {
			return nil, dc
		}
		if desc == nil || desc.Enumerable != FLAG_TRUE {
			continue
		}
		switch kind {
		case "key":
			out = append(out, newStringValue(key.s))
		case "value":
			vc := o.self.get(key, o)
			if vc.Abrupt() {
				return nil, vc
			}
			out = append(out, vc.Value)
		default:
			vc := o.self.get(key, o)
			if vc.Abrupt() {
				return nil, vc
			}
			entry := r.newArrayValues([]Value{newStringValue(key.s), vc.Value})
			out = append(out, entry)
		}
	}
	return out, emptyCompletion
}

// copyDataProperties copies enumerable own properties of source onto target,
// skipping excluded keys. Used by object spread and rest patterns.
func (r *Realm) copyDataProperties(target *Object, source Value, excluded map[string]bool) Completion {
	switch source.(type) {
	case valueUndefined, valueNull:
		return emptyCompletion
	}
	oc := r.toObject(source)
	if oc.Abrupt() {
		return oc
	}
	from := oc.Value.(*Object)
	keys, c := from.self.ownPropertyKeys()
	if c.Abrupt() {
		return c
	}
	for _, key := range keys {
		if !key.isSymbol() && excluded[key.s] {
			continue
		}
		desc, dc := from.self.getOwnProperty(key)
		if dc.Abrupt() {
			return dc
		}
		if desc == nil || desc.Enumerable != FLAG_TRUE {
			continue
		}
		vc := from.self.get(key, from)
		if vc.Abrupt() {
			return vc
		}
		if cc := r.createDataPropertyOrThrow(target, key, vc.Value); cc.Abrupt() {
			return cc
		}
	}
	return emptyCompletion
}

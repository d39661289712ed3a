package harmony

import (
	"math"
	"sort"
	"strconv"
)

const maxArrayLength = math.MaxUint32 - 1

// arrayObject is the array exotic kind: [[DefineOwnProperty]] keeps the
// length property coherent with the integer-indexed own properties.
type arrayObject struct {
	baseObject

	length         int64
	lengthWritable bool
}

func (r *Realm) newArrayLength(length int64) *Object {
	v := &Object{realm: r}
	a := &arrayObject{length: length, lengthWritable: true}
	a.class = classArray
	a.val = v
	a.prototype = r.intrinsic(intrArrayPrototype)
	a.extensible = true
	a.init()
	v.self = a
	return v
}

func (r *Realm) newArrayValues(values []Value) *Object {
	v := r.newArrayLength(int64(len(values)))
	a := v.self.(*arrayObject)
	for i, item := range values {
		if item == nil {
			continue
		}
		a._putProp(strconv.Itoa(i), item, true, true, true)
	}
	return v
}

func (a *arrayObject) export() interface{} {
	out := make([]interface{}, a.length)
	for i := int64(0); i < a.length; i++ {
		if prop := a.values[strconv.FormatInt(i, 10)]; prop != nil && !prop.accessor && prop.value != nil {
			out[i] = prop.value.Export()
		}
	}
	return out
}

func (a *arrayObject) lengthDescriptor() *PropertyDescriptor {
	return &PropertyDescriptor{
		Value:        intToValue(a.length),
		Writable:     flagOf(a.lengthWritable),
		Enumerable:   FLAG_FALSE,
		Configurable: FLAG_FALSE,
	}
}

func (a *arrayObject) getOwnProperty(p propertyKey) (*PropertyDescriptor, Completion) {
	if !p.isSymbol() && p.s == "length" {
		return a.lengthDescriptor(), emptyCompletion
	}
	return a.baseObject.getOwnProperty(p)
}

func (a *arrayObject) hasProperty(p propertyKey) Completion {
	if !p.isSymbol() && p.s == "length" {
		return completionTrue
	}
	return a.baseObject.hasProperty(p)
}

func (a *arrayObject) get(p propertyKey, receiver Value) Completion {
	if !p.isSymbol() && p.s == "length" {
		return normalCompletion(intToValue(a.length))
	}
	return a.baseObject.get(p, receiver)
}

func (a *arrayObject) set(p propertyKey, v, receiver Value) Completion {
	ownDesc, c := a.val.self.getOwnProperty(p)
	if c.Abrupt() {
		return c
	}
	return ordinarySetWithOwnDescriptor(a.val, p, v, receiver, ownDesc)
}

func (a *arrayObject) deleteProperty(p propertyKey) Completion {
	if !p.isSymbol() && p.s == "length" {
		return completionFalse
	}
	return a.baseObject.deleteProperty(p)
}

func (a *arrayObject) defineOwnProperty(p propertyKey, desc PropertyDescriptor) Completion {
	if p.isSymbol() {
		return a.baseObject.defineOwnProperty(p, desc)
	}
	if p.s == "length" {
		return a.setLength(desc)
	}
	if idx, ok := isCanonicalIntegerIndex(p.s); ok && idx < maxArrayLength+1 {
		if idx >= a.length && !a.lengthWritable {
			return completionFalse
		}
		c := a.baseObject.defineOwnProperty(p, desc)
		if c.Abrupt() || c.Value == valueFalse {
			return c
		}
		if idx >= a.length {
			a.length = idx + 1
		}
		return completionTrue
	}
	return a.baseObject.defineOwnProperty(p, desc)
}

// setLength implements ArraySetLength. Shrinking deletes indices in
// descending order and stops at the first non-configurable one, truncating
// length to just above it.
func (a *arrayObject) setLength(desc PropertyDescriptor) Completion {
	r := a.val.realm
	if desc.Value == nil {
		if desc.Configurable == FLAG_TRUE || desc.Enumerable == FLAG_TRUE || desc.isAccessor() {
			return completionFalse
		}
		if !a.lengthWritable && desc.Writable == FLAG_TRUE {
			return completionFalse
		}
		if desc.Writable == FLAG_FALSE {
			a.lengthWritable = false
		}
		return completionTrue
	}

	newLenU, c := r.toUint32(desc.Value)
	if c.Abrupt() {
		return c
	}
	numC := r.toNumber(desc.Value)
	if numC.Abrupt() {
		return numC
	}
	if float64(newLenU) != numberVal(numC.Value) {
		return r.throwRangeError("Invalid array length")
	}
	newLen := int64(newLenU)

	if desc.Configurable == FLAG_TRUE || desc.Enumerable == FLAG_TRUE {
		return completionFalse
	}
	if newLen >= a.length {
		if !a.lengthWritable {
			return completionFalse
		}
		a.length = newLen
		if desc.Writable == FLAG_FALSE {
			a.lengthWritable = false
		}
		return completionTrue
	}
	if !a.lengthWritable {
		return completionFalse
	}

	var doomed []int64
	for _, name := range a.propNames {
		if idx, ok := isCanonicalIntegerIndex(name); ok && idx >= newLen {
			doomed = append(doomed, idx)
		}
	}
	sort.Slice(doomed, func(i, j int) bool { return doomed[i] > doomed[j] })
	for _, idx := range doomed {
		name := strconv.FormatInt(idx, 10)
		if prop := a.values[name]; prop != nil && !prop.configurable {
			a.length = idx + 1
			if desc.Writable == FLAG_FALSE {
				a.lengthWritable = false
			}
			return completionFalse
		}
		a.removeProp(strKey(name))
	}
	a.length = newLen
	if desc.Writable == FLAG_FALSE {
		a.lengthWritable = false
	}
	return completionTrue
}

func (a *arrayObject) ownPropertyKeys() ([]propertyKey, Completion) {
	keys, c := a.baseObject.ownPropertyKeys()
	if c.Abrupt() {
		return nil, c
	}
	// "length" is an own property created before any string key.
	n := 0
	for _, k := range keys {
		if k.isSymbol() {
			break
		}
		if _, ok := isCanonicalIntegerIndex(k.s); !ok {
			break
		}
		n++
	}
	out := make([]propertyKey, 0, len(keys)+1)
	out = append(out, keys[:n]...)
	out = append(out, strKey("length"))
	out = append(out, keys[n:]...)
	return out, emptyCompletion
}

// createArrayFromList is CreateArrayFromList.
func (r *Realm) createArrayFromList(values []Value) *Object {
	return r.newArrayValues(values)
}

// lengthOfArrayLike reads and clamps the length property.
func (r *Realm) lengthOfArrayLike(o *Object) (int64, Completion) {
	lc := o.self.get(strKey("length"), o)
	if lc.Abrupt() {
		return 0, lc
	}
	return r.toLength(lc.Value)
}

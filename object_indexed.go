package harmony

// integerIndexedObject is the integer-indexed exotic kind: numeric own
// properties are views over a fixed-length element buffer, in the manner of
// typed arrays. The element type is always a double here; the kind carries
// the access semantics, not a binary layout.
type integerIndexedObject struct {
	baseObject
	buffer []float64
}

// NewIntegerIndexed allocates an integer-indexed object of the given length.
func (r *Realm) NewIntegerIndexed(length int) *Object {
	v := &Object{realm: r}
	io := &integerIndexedObject{buffer: make([]float64, length)}
	io.class = classObject
	io.val = v
	io.prototype = r.intrinsic(intrObjectPrototype)
	io.extensible = true
	io.init()
	v.self = io
	return v
}

func (io *integerIndexedObject) index(p propertyKey) (int64, bool) {
	if p.isSymbol() {
		return 0, false
	}
	idx, ok := isCanonicalIntegerIndex(p.s)
	if !ok {
		return 0, false
	}
	return idx, true
}

func (io *integerIndexedObject) inBounds(idx int64) bool {
	return idx >= 0 && idx < int64(len(io.buffer))
}

func (io *integerIndexedObject) getOwnProperty(p propertyKey) (*PropertyDescriptor, Completion) {
	if idx, ok := io.index(p); ok {
		if !io.inBounds(idx) {
			return nil, emptyCompletion
		}
		return &PropertyDescriptor{
			Value:        floatToValue(io.buffer[idx]),
			Writable:     FLAG_TRUE,
			Enumerable:   FLAG_TRUE,
			Configurable: FLAG_TRUE,
		}, emptyCompletion
	}
	return io.baseObject.getOwnProperty(p)
}

func (io *integerIndexedObject) hasProperty(p propertyKey) Completion {
	if idx, ok := io.index(p); ok {
		return booleanCompletion(io.inBounds(idx))
	}
	return io.baseObject.hasProperty(p)
}

func (io *integerIndexedObject) get(p propertyKey, receiver Value) Completion {
	if idx, ok := io.index(p); ok {
		if !io.inBounds(idx) {
			return normalCompletion(_undefined)
		}
		return normalCompletion(floatToValue(io.buffer[idx]))
	}
	if !p.isSymbol() && p.s == "length" {
		return normalCompletion(intToValue(int64(len(io.buffer))))
	}
	return io.baseObject.get(p, receiver)
}

func (io *integerIndexedObject) set(p propertyKey, v, receiver Value) Completion {
	if idx, ok := io.index(p); ok {
		nc := io.val.realm.toNumber(v)
		if nc.Abrupt() {
			return nc
		}
		if io.inBounds(idx) {
			io.buffer[idx] = numberVal(nc.Value)
		}
		return completionTrue
	}
	return io.baseObject.set(p, v, receiver)
}

func (io *integerIndexedObject) defineOwnProperty(p propertyKey, desc PropertyDescriptor) Completion {
	if idx, ok := io.index(p); ok {
		if !io.inBounds(idx) {
			return completionFalse
		}
		if desc.isAccessor() {
			return completionFalse
		}
		if desc.Configurable == FLAG_FALSE && desc.Configurable != FLAG_NOT_SET {
			return completionFalse
		}
		if desc.Enumerable == FLAG_FALSE || desc.Writable == FLAG_FALSE {
			return completionFalse
		}
		if desc.Value != nil {
			nc := io.val.realm.toNumber(desc.Value)
			if nc.Abrupt() {
				return nc
			}
			io.buffer[idx] = numberVal(nc.Value)
		}
		return completionTrue
	}
	return io.baseObject.defineOwnProperty(p, desc)
}

func (io *integerIndexedObject) deleteProperty(p propertyKey) Completion {
	if idx, ok := io.index(p); ok {
		return booleanCompletion(!io.inBounds(idx))
	}
	return io.baseObject.deleteProperty(p)
}

func (io *integerIndexedObject) ownPropertyKeys() ([]propertyKey, Completion) {
	base, c := io.baseObject.ownPropertyKeys()
	if c.Abrupt() {
		return nil, c
	}
	keys := make([]propertyKey, 0, len(io.buffer)+len(base))
	for i := range io.buffer {
		keys = append(keys, strKey(intToValue(int64(i)).String()))
	}
	keys = append(keys, base...)
	return keys, emptyCompletion
}

func (io *integerIndexedObject) export() interface{} {
	out := make([]float64, len(io.buffer))
	copy(out, io.buffer)
	return out
}

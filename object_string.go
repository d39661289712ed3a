package harmony

import "strconv"

// stringObject is the string exotic kind: code-unit indices are exposed as
// non-writable own properties.
type stringObject struct {
	baseObject
	value valueString
}

func (r *Realm) newStringExotic(s valueString) *Object {
	v := &Object{realm: r}
	so := &stringObject{value: s}
	so.class = classString
	so.val = v
	so.prototype = r.intrinsic(intrStringPrototype)
	so.extensible = true
	so.init()
	v.self = so
	return v
}

func (s *stringObject) export() interface{} {
	return s.value.String()
}

func (s *stringObject) indexDescriptor(p propertyKey) *PropertyDescriptor {
	if p.isSymbol() {
		return nil
	}
	if p.s == "length" {
		return &PropertyDescriptor{
			Value:        intToValue(int64(s.value.length())),
			Writable:     FLAG_FALSE,
			Enumerable:   FLAG_FALSE,
			Configurable: FLAG_FALSE,
		}
	}
	idx, ok := isCanonicalIntegerIndex(p.s)
	if !ok || idx >= int64(s.value.length()) {
		return nil
	}
	return &PropertyDescriptor{
		Value:        s.value.substring(int(idx), int(idx)+1),
		Writable:     FLAG_FALSE,
		Enumerable:   FLAG_TRUE,
		Configurable: FLAG_FALSE,
	}
}

func (s *stringObject) getOwnProperty(p propertyKey) (*PropertyDescriptor, Completion) {
	desc, c := s.baseObject.getOwnProperty(p)
	if c.Abrupt() || desc != nil {
		return desc, c
	}
	return s.indexDescriptor(p), emptyCompletion
}

func (s *stringObject) hasProperty(p propertyKey) Completion {
	if s.indexDescriptor(p) != nil {
		return completionTrue
	}
	return s.baseObject.hasProperty(p)
}

func (s *stringObject) get(p propertyKey, receiver Value) Completion {
	if d := s.indexDescriptor(p); d != nil {
		return normalCompletion(d.Value)
	}
	return s.baseObject.get(p, receiver)
}

func (s *stringObject) defineOwnProperty(p propertyKey, desc PropertyDescriptor) Completion {
	if d := s.indexDescriptor(p); d != nil {
		// String indices and length reject every change of substance.
		if desc.Configurable == FLAG_TRUE || desc.Writable == FLAG_TRUE || desc.isAccessor() {
			return completionFalse
		}
		if desc.Value != nil && !desc.Value.SameAs(d.Value) {
			return completionFalse
		}
		if desc.Enumerable != FLAG_NOT_SET && desc.Enumerable != d.Enumerable {
			return completionFalse
		}
		return completionTrue
	}
	return s.baseObject.defineOwnProperty(p, desc)
}

func (s *stringObject) deleteProperty(p propertyKey) Completion {
	if d := s.indexDescriptor(p); d != nil {
		return completionFalse
	}
	return s.baseObject.deleteProperty(p)
}

func (s *stringObject) ownPropertyKeys() ([]propertyKey, Completion) {
	base, c := s.baseObject.ownPropertyKeys()
	if c.Abrupt() {
		return nil, c
	}
	keys := make([]propertyKey, 0, s.value.length()+1+len(base))
	for i := 0; i < s.value.length(); i++ {
		keys = append(keys, strKey(strconv.Itoa(i)))
	}
	keys = append(keys, strKey("length"))
	keys = append(keys, base...)
	return keys, emptyCompletion
}

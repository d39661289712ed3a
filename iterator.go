package harmony

// iteratorRecord is {iterator, nextMethod, done}.
type iteratorRecord struct {
	iterator   *Object
	nextMethod Value
	done       bool
}

func (r *Realm) getIterator(v Value, async bool) (*iteratorRecord, Completion) {
	var method *Object
	var c Completion
	if async {
		method, c = r.getMethod(v, symKey(symAsyncIterator))
		if c.Abrupt() {
			return nil, c
		}
		if method == nil {
			sync, sc := r.getIterator(v, false)
			if sc.Abrupt() {
				return nil, sc
			}
			return sync, emptyCompletion
		}
	} else {
		method, c = r.getMethod(v, symKey(symIterator))
		if c.Abrupt() {
			return nil, c
		}
	}
	if method == nil {
		return nil, r.throwTypeError("%s is not iterable", v.String())
	}
	ic := r.call(method, v, nil)
	if ic.Abrupt() {
		return nil, ic
	}
	iter, ok := ic.Value.(*Object)
	if !ok {
		return nil, r.throwTypeError("Result of the Symbol.iterator method is not an object")
	}
	nc := iter.self.get(strKey("next"), iter)
	if nc.Abrupt() {
		return nil, nc
	}
	return &iteratorRecord{iterator: iter, nextMethod: nc.Value}, emptyCompletion
}

func (r *Realm) iteratorNext(ir *iteratorRecord, arg Value) (*Object, Completion) {
	var args []Value
	if arg != nil {
		args = []Value{arg}
	}
	c := r.CallValue(ir.nextMethod, ir.iterator, args...)
	if c.Abrupt() {
		return nil, c
	}
	res, ok := c.Value.(*Object)
	if !ok {
		return nil, r.throwTypeError("Iterator result %s is not an object", c.Value.String())
	}
	return res, emptyCompletion
}

// iteratorStep advances the iterator; it returns nil when exhausted.
func (r *Realm) iteratorStep(ir *iteratorRecord) (*Object, Completion) {
	res, c := r.iteratorNext(ir, nil)
	if c.Abrupt() {
		return nil, c
	}
	dc := res.self.get(strKey("done"), res)
	if dc.Abrupt() {
		return nil, dc
	}
	if dc.Value.ToBoolean() {
		ir.done = true
		return nil, emptyCompletion
	}
	return res, emptyCompletion
}

func (r *Realm) iteratorValue(result *Object) Completion {
	return result.self.get(strKey("value"), result)
}

// iteratorClose runs on every abrupt exit from iteration. The completion of
// the return method is interleaved with the outer completion per the
// standard: an outer throw completion wins, otherwise a throwing or
// ill-typed return surfaces.
func (r *Realm) iteratorClose(ir *iteratorRecord, completion Completion) Completion {
	if ir.done {
		return completion
	}
	retC := ir.iterator.self.get(strKey("return"), ir.iterator)
	if retC.Abrupt() {
		if completion.Throw() {
			return completion
		}
		return retC
	}
	switch retC.Value.(type) {
	case valueUndefined, valueNull:
		return completion
	}
	ret, ok := retC.Value.(*Object)
	if !ok || !ret.isCallable() {
		if completion.Throw() {
			return completion
		}
		return r.throwTypeError("iterator.return is not a function")
	}
	innerC := r.call(ret, ir.iterator, nil)
	if completion.Throw() {
		return completion
	}
	if innerC.Abrupt() {
		return innerC
	}
	if _, ok := innerC.Value.(*Object); !ok {
		return r.throwTypeError("Iterator result %s is not an object", innerC.Value.String())
	}
	return completion
}

// createIterResultObject builds {value, done}.
func (r *Realm) createIterResultObject(value Value, done bool) *Object {
	obj := r.NewObject()
	impl := obj.self.(*baseObject)
	impl._putProp("value", value, true, true, true)
	impl._putProp("done", boolToValue(done), true, true, true)
	return obj
}

// iterableToList collects an iterable into a slice, closing on abrupt steps.
func (r *Realm) iterableToList(v Value) ([]Value, Completion) {
	ir, c := r.getIterator(v, false)
	if c.Abrupt() {
		return nil, c
	}
	var out []Value
	for {
		res, sc := r.iteratorStep(ir)
		if sc.Abrupt() {
			return nil, sc
		}
		if res == nil {
			return out, emptyCompletion
		}
		vc := r.iteratorValue(res)
		if vc.Abrupt() {
			return nil, r.iteratorClose(ir, vc)
		}
		out = append(out, vc.Value)
	}
}

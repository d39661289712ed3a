package harmony

import "math/big"

func (r *Realm) initSymbolBuiltins() {
	proto := r.intrinsic(intrSymbolPrototype)

	ctor := r.newNativeCtor("Symbol", 0,
		func(call FunctionCall) Completion {
			desc := ""
			hasDesc := false
			if d := call.Argument(0); d != _undefined {
				sc := r.toString(d)
				if sc.Abrupt() {
					return sc
				}
				desc = sc.Value.String()
				hasDesc = true
			}
			return normalCompletion(newSymbol(desc, hasDesc))
		},
		func(args []Value, newTarget *Object) Completion {
			return r.throwTypeError("Symbol is not a constructor")
		})
	r.wireConstructor(ctor, proto, intrSymbol, intrSymbolPrototype)

	targetPut(ctor, "iterator", symIterator)
	targetPut(ctor, "asyncIterator", symAsyncIterator)
	targetPut(ctor, "toPrimitive", symToPrimitive)
	targetPut(ctor, "toStringTag", symToStringTag)
	targetPut(ctor, "hasInstance", symHasInstance)
	targetPut(ctor, "species", symSpecies)
	targetPut(ctor, "unscopables", symUnscopables)
	targetPut(ctor, "isConcatSpreadable", symIsConcatSpreadable)
	targetPut(ctor, "match", symMatch)
	targetPut(ctor, "replace", symReplace)
	targetPut(ctor, "search", symSearch)
	targetPut(ctor, "split", symSplit)

	r.putFunc(ctor, "for", 1, func(call FunctionCall) Completion {
		sc := r.toString(call.Argument(0))
		if sc.Abrupt() {
			return sc
		}
		return normalCompletion(r.agent.symbolFor(sc.Value.String()))
	})
	r.putFunc(ctor, "keyFor", 1, func(call FunctionCall) Completion {
		s, ok := call.Argument(0).(*valueSymbol)
		if !ok {
			return r.throwTypeError("%s is not a symbol", call.Argument(0).String())
		}
		if key, found := r.agent.symbolKeyFor(s); found {
			return normalCompletion(newStringValue(key))
		}
		return normalCompletion(_undefined)
	})

	thisSymbol := func(call FunctionCall) (*valueSymbol, Completion) {
		switch t := call.This.(type) {
		case *valueSymbol:
			return t, emptyCompletion
		case *Object:
			if po, ok := t.self.(*primitiveValueObject); ok {
				if s, isSym := po.pValue.(*valueSymbol); isSym {
					return s, emptyCompletion
				}
			}
		}
		return nil, r.throwTypeError("Symbol.prototype method called on incompatible receiver %s", call.This.String())
	}

	r.putFunc(proto, "toString", 0, func(call FunctionCall) Completion {
		s, c := thisSymbol(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(newStringValue(s.String()))
	})
	r.putFunc(proto, "valueOf", 0, func(call FunctionCall) Completion {
		s, c := thisSymbol(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(s)
	})
	r.putGetter(proto, "description", func(call FunctionCall) Completion {
		s, c := thisSymbol(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(s.descValue())
	})
	r.putSymFunc(proto, symToPrimitive, "[Symbol.toPrimitive]", 1, func(call FunctionCall) Completion {
		s, c := thisSymbol(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(s)
	})
	if bp, ok := proto.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("Symbol"), false, false, true)
	}
}

func (r *Realm) initBigIntBuiltins() {
	proto := r.intrinsic(intrBigIntPrototype)

	ctor := r.newNativeCtor("BigInt", 1,
		func(call FunctionCall) Completion {
			pc := r.toPrimitive(call.Argument(0), hintNumber)
			if pc.Abrupt() {
				return pc
			}
			switch v := pc.Value.(type) {
			case *valueBigInt:
				return normalCompletion(v)
			case valueInt:
				return normalCompletion(bigIntToValue(big.NewInt(int64(v))))
			case valueFloat:
				f := float64(v)
				if f != float64(int64(f)) {
					return r.throwRangeError("The number %s cannot be converted to a BigInt because it is not an integer", v.String())
				}
				return normalCompletion(bigIntToValue(big.NewInt(int64(f))))
			case valueBool:
				if v {
					return normalCompletion(bigIntToValue(big.NewInt(1)))
				}
				return normalCompletion(bigIntToValue(big.NewInt(0)))
			case valueString:
				b, ok := new(big.Int).SetString(trimJSWhitespace(v.String()), 10)
				if !ok {
					return r.throwSyntaxError("Cannot convert %s to a BigInt", v.String())
				}
				return normalCompletion(bigIntToValue(b))
			}
			return r.throwTypeError("Cannot convert %s to a BigInt", pc.Value.String())
		},
		func(args []Value, newTarget *Object) Completion {
			return r.throwTypeError("BigInt is not a constructor")
		})
	r.wireConstructor(ctor, proto, intrBigInt, intrBigIntPrototype)

	thisBigInt := func(call FunctionCall) (*valueBigInt, Completion) {
		switch t := call.This.(type) {
		case *valueBigInt:
			return t, emptyCompletion
		case *Object:
			if po, ok := t.self.(*primitiveValueObject); ok {
				if b, isBig := po.pValue.(*valueBigInt); isBig {
					return b, emptyCompletion
				}
			}
		}
		return nil, r.throwTypeError("BigInt.prototype method called on incompatible receiver %s", call.This.String())
	}

	r.putFunc(proto, "toString", 0, func(call FunctionCall) Completion {
		b, c := thisBigInt(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(newStringValue(b.String()))
	})
	r.putFunc(proto, "valueOf", 0, func(call FunctionCall) Completion {
		b, c := thisBigInt(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(b)
	})
	if bp, ok := proto.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("BigInt"), false, false, true)
	}
}

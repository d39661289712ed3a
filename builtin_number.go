package harmony

import (
	"math"
	"strconv"
)

func (r *Realm) initNumberBuiltins() {
	proto := r.intrinsic(intrNumberPrototype)

	ctor := r.newNativeCtor("Number", 1,
		func(call FunctionCall) Completion {
			if len(call.Arguments) == 0 {
				return normalCompletion(intToValue(0))
			}
			return r.toNumber(call.Argument(0))
		},
		func(args []Value, newTarget *Object) Completion {
			var n Value = intToValue(0)
			if len(args) > 0 {
				nc := r.toNumber(args[0])
				if nc.Abrupt() {
					return nc
				}
				n = nc.Value
			}
			return normalCompletion(r.newPrimitiveObject(n, r.intrinsic(intrNumberPrototype), classNumber))
		})
	r.wireConstructor(ctor, proto, intrNumber, intrNumberPrototype)

	targetPut(ctor, "MAX_SAFE_INTEGER", intToValue(maxSafeInteger))
	targetPut(ctor, "MIN_SAFE_INTEGER", intToValue(-maxSafeInteger))
	targetPut(ctor, "MAX_VALUE", floatToValue(math.MaxFloat64))
	targetPut(ctor, "MIN_VALUE", floatToValue(5e-324))
	targetPut(ctor, "EPSILON", floatToValue(2.220446049250313e-16))
	targetPut(ctor, "POSITIVE_INFINITY", _positiveInf)
	targetPut(ctor, "NEGATIVE_INFINITY", _negativeInf)
	targetPut(ctor, "NaN", _NaN)

	r.putFunc(ctor, "isNaN", 1, func(call FunctionCall) Completion {
		if !isNumber(call.Argument(0)) {
			return completionFalse
		}
		return booleanCompletion(math.IsNaN(numberVal(call.Argument(0))))
	})
	r.putFunc(ctor, "isFinite", 1, func(call FunctionCall) Completion {
		if !isNumber(call.Argument(0)) {
			return completionFalse
		}
		f := numberVal(call.Argument(0))
		return booleanCompletion(!math.IsNaN(f) && !math.IsInf(f, 0))
	})
	r.putFunc(ctor, "isInteger", 1, func(call FunctionCall) Completion {
		if !isNumber(call.Argument(0)) {
			return completionFalse
		}
		f := numberVal(call.Argument(0))
		return booleanCompletion(!math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f)
	})
	r.putFunc(ctor, "isSafeInteger", 1, func(call FunctionCall) Completion {
		if !isNumber(call.Argument(0)) {
			return completionFalse
		}
		f := numberVal(call.Argument(0))
		return booleanCompletion(!math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f && math.Abs(f) <= maxSafeInteger)
	})
	// Number.parseInt / Number.parseFloat are installed by the global
	// bootstrap once the shared intrinsics exist.

	thisNumber := func(call FunctionCall) (float64, Completion) {
		switch t := call.This.(type) {
		case valueInt:
			return float64(t), emptyCompletion
		case valueFloat:
			return float64(t), emptyCompletion
		case *Object:
			if po, ok := t.self.(*primitiveValueObject); ok && isNumber(po.pValue) {
				return numberVal(po.pValue), emptyCompletion
			}
		}
		return 0, r.throwTypeError("Number.prototype method called on incompatible receiver %s", call.This.String())
	}

	r.putFunc(proto, "toString", 1, func(call FunctionCall) Completion {
		f, c := thisNumber(call)
		if c.Abrupt() {
			return c
		}
		radix := 10
		if rx := call.Argument(0); rx != _undefined {
			nc := r.toNumber(rx)
			if nc.Abrupt() {
				return nc
			}
			radix = int(toIntegerOrInfinity(nc.Value))
		}
		if radix < 2 || radix > 36 {
			return r.throwRangeError("toString() radix must be between 2 and 36")
		}
		if radix == 10 {
			return normalCompletion(newStringValue(floatToValue(f).String()))
		}
		if math.Trunc(f) == f && !math.IsInf(f, 0) {
			return normalCompletion(newStringValue(strconv.FormatInt(int64(f), radix)))
		}
		return normalCompletion(newStringValue(strconv.FormatFloat(f, 'g', -1, 64)))
	})
	r.putFunc(proto, "valueOf", 0, func(call FunctionCall) Completion {
		f, c := thisNumber(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(floatToValue(f))
	})
	r.putFunc(proto, "toFixed", 1, func(call FunctionCall) Completion {
		f, c := thisNumber(call)
		if c.Abrupt() {
			return c
		}
		nc := r.toNumber(call.Argument(0))
		if nc.Abrupt() {
			return nc
		}
		digits := int(toIntegerOrInfinity(nc.Value))
		if digits < 0 || digits > 100 {
			return r.throwRangeError("toFixed() digits argument must be between 0 and 100")
		}
		return normalCompletion(newStringValue(strconv.FormatFloat(f, 'f', digits, 64)))
	})
}

func (r *Realm) initBooleanBuiltins() {
	proto := r.intrinsic(intrBooleanPrototype)

	ctor := r.newNativeCtor("Boolean", 1,
		func(call FunctionCall) Completion {
			return booleanCompletion(call.Argument(0).ToBoolean())
		},
		func(args []Value, newTarget *Object) Completion {
			b := valueFalse
			if len(args) > 0 {
				b = boolToValue(args[0].ToBoolean())
			}
			return normalCompletion(r.newPrimitiveObject(b, r.intrinsic(intrBooleanPrototype), classBoolean))
		})
	r.wireConstructor(ctor, proto, intrBoolean, intrBooleanPrototype)

	thisBoolean := func(call FunctionCall) (Value, Completion) {
		switch t := call.This.(type) {
		case valueBool:
			return t, emptyCompletion
		case *Object:
			if po, ok := t.self.(*primitiveValueObject); ok {
				if _, isBool := po.pValue.(valueBool); isBool {
					return po.pValue, emptyCompletion
				}
			}
		}
		return nil, r.throwTypeError("Boolean.prototype method called on incompatible receiver %s", call.This.String())
	}

	r.putFunc(proto, "toString", 0, func(call FunctionCall) Completion {
		b, c := thisBoolean(call)
		if c.Abrupt() {
			return c
		}
		return r.toString(b)
	})
	r.putFunc(proto, "valueOf", 0, func(call FunctionCall) Completion {
		b, c := thisBoolean(call)
		if c.Abrupt() {
			return c
		}
		return normalCompletion(b)
	})
}

package harmony

import (
	"math"
	"math/rand"
)

func (r *Realm) initMathBuiltins() {
	obj := r.newBaseObject(r.intrinsic(intrObjectPrototype), classMath).val
	r.intrinsics[intrMath] = obj

	impl := obj.self.(*baseObject)
	impl._putProp("E", floatToValue(math.E), false, false, false)
	impl._putProp("LN10", floatToValue(math.Ln10), false, false, false)
	impl._putProp("LN2", floatToValue(math.Ln2), false, false, false)
	impl._putProp("LOG10E", floatToValue(math.Log10E), false, false, false)
	impl._putProp("LOG2E", floatToValue(math.Log2E), false, false, false)
	impl._putProp("PI", floatToValue(math.Pi), false, false, false)
	impl._putProp("SQRT1_2", floatToValue(math.Sqrt(0.5)), false, false, false)
	impl._putProp("SQRT2", floatToValue(math.Sqrt2), false, false, false)
	impl._putSym(symToStringTag, newStringValue("Math"), false, false, true)

	unary := func(name string, fn func(float64) float64) {
		r.putFunc(obj, name, 1, func(call FunctionCall) Completion {
			nc := r.toNumber(call.Argument(0))
			if nc.Abrupt() {
				return nc
			}
			return normalCompletion(floatToValue(fn(numberVal(nc.Value))))
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f) || f == 0:
			return f
		case f < 0:
			return -1
		}
		return 1
	})
	unary("round", func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.Floor(f + 0.5)
	})

	r.putFunc(obj, "pow", 2, func(call FunctionCall) Completion {
		xc := r.toNumber(call.Argument(0))
		if xc.Abrupt() {
			return xc
		}
		yc := r.toNumber(call.Argument(1))
		if yc.Abrupt() {
			return yc
		}
		return normalCompletion(floatToValue(math.Pow(numberVal(xc.Value), numberVal(yc.Value))))
	})
	r.putFunc(obj, "atan2", 2, func(call FunctionCall) Completion {
		yc := r.toNumber(call.Argument(0))
		if yc.Abrupt() {
			return yc
		}
		xc := r.toNumber(call.Argument(1))
		if xc.Abrupt() {
			return xc
		}
		return normalCompletion(floatToValue(math.Atan2(numberVal(yc.Value), numberVal(xc.Value))))
	})
	r.putFunc(obj, "max", 2, func(call FunctionCall) Completion {
		out := math.Inf(-1)
		for _, arg := range call.Arguments {
			nc := r.toNumber(arg)
			if nc.Abrupt() {
				return nc
			}
			f := numberVal(nc.Value)
			if math.IsNaN(f) {
				return normalCompletion(_NaN)
			}
			if f > out {
				out = f
			}
		}
		return normalCompletion(floatToValue(out))
	})
	r.putFunc(obj, "min", 2, func(call FunctionCall) Completion {
		out := math.Inf(1)
		for _, arg := range call.Arguments {
			nc := r.toNumber(arg)
			if nc.Abrupt() {
				return nc
			}
			f := numberVal(nc.Value)
			if math.IsNaN(f) {
				return normalCompletion(_NaN)
			}
			if f < out {
				out = f
			}
		}
		return normalCompletion(floatToValue(out))
	})
	r.putFunc(obj, "hypot", 2, func(call FunctionCall) Completion {
		sum := 0.0
		for _, arg := range call.Arguments {
			nc := r.toNumber(arg)
			if nc.Abrupt() {
				return nc
			}
			f := numberVal(nc.Value)
			sum += f * f
		}
		return normalCompletion(floatToValue(math.Sqrt(sum)))
	})
	r.putFunc(obj, "random", 0, func(call FunctionCall) Completion {
		return normalCompletion(floatToValue(rand.Float64()))
	})
}

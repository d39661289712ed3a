package harmony

// This file carries the remaining embedder-facing helpers: wrapping Go
// functions as callables and installing host globals.

// NativeFunc is the Go signature of a host-provided function.
type NativeFunc func(call FunctionCall) Completion

// NewNativeFunction wraps a Go function as a callable object.
func (r *Realm) NewNativeFunction(name string, length int, fn NativeFunc) *Object {
	return r.newNativeFunc(name, length, fn)
}

// SetGlobal installs a writable global binding.
func (r *Realm) SetGlobal(name string, v Value) Completion {
	return r.setOrThrow(r.globalObject, strKey(name), v)
}

// GetGlobal reads a global binding.
func (r *Realm) GetGlobal(name string) Completion {
	return r.globalObject.self.get(strKey(name), r.globalObject)
}

// Get reads a property from an object. Part of the embedder surface.
func (r *Realm) Get(o *Object, name string) Completion {
	return o.self.get(strKey(name), o)
}

// Undefined, Null, True and False expose the canonical singletons.
func Undefined() Value { return _undefined }
func Null() Value      { return _null }
func True() Value      { return valueTrue }
func False() Value     { return valueFalse }

// NewString, NewNumber, NewBool build primitive values.
func NewString(s string) Value  { return newStringValue(s) }
func NewNumber(f float64) Value { return floatToValue(f) }
func NewBool(b bool) Value      { return boolToValue(b) }

// NormalCompletion and ThrowCompletion are the completion constructors
// exposed to hosts writing native functions.
func NormalCompletion(v Value) Completion { return normalCompletion(v) }
func ThrowCompletion(v Value) Completion  { return throwCompletion(v) }

// PromiseState reports the state and settled value of a promise object, for
// host inspection after the job queue has drained.
func PromiseState(v Value) (state string, result Value, ok bool) {
	obj, isObj := v.(*Object)
	if !isObj {
		return "", nil, false
	}
	p, isPromise := obj.self.(*promiseObject)
	if !isPromise {
		return "", nil, false
	}
	return p.state.String(), p.result, true
}

// InstallConsole wires a minimal console object that forwards formatted
// lines to the host sink. The console is a host capability, not part of the
// core; the sink decides where the text goes.
func (r *Realm) InstallConsole(sink func(line string)) {
	console := r.NewObject()
	log := r.newNativeFunc("log", 0, func(call FunctionCall) Completion {
		line := ""
		for i, arg := range call.Arguments {
			if i > 0 {
				line += " "
			}
			line += Inspect(arg, r)
		}
		sink(line)
		return normalCompletion(_undefined)
	})
	impl := console.self.(*baseObject)
	impl._putProp("log", log, true, false, true)
	impl._putProp("error", log, true, false, true)
	impl._putProp("warn", log, true, false, true)
	impl._putProp("info", log, true, false, true)
	impl._putProp("debug", log, true, false, true)
	r.SetGlobal("console", console)
}

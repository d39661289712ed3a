package harmony

func (r *Realm) initGeneratorBuiltins() {
	genProto := r.intrinsic(intrGeneratorPrototype)

	r.putFunc(genProto, "next", 1, func(call FunctionCall) Completion {
		return r.generatorResume(call.This, "next", normalCompletion(call.Argument(0)))
	})
	r.putFunc(genProto, "return", 1, func(call FunctionCall) Completion {
		return r.generatorResume(call.This, "return", returnCompletion(call.Argument(0)))
	})
	r.putFunc(genProto, "throw", 1, func(call FunctionCall) Completion {
		return r.generatorResume(call.This, "throw", throwCompletion(call.Argument(0)))
	})
	if bp, ok := genProto.self.(*baseObject); ok {
		bp._putSym(symToStringTag, newStringValue("Generator"), false, false, true)
	}
}

package harmony

// CompletionType discriminates the five completion kinds of the runtime
// semantics. Every abstract operation and every evaluation contract in this
// package returns a Completion; values never escape the core without one.
type CompletionType uint8

const (
	CompletionNormal CompletionType = iota
	CompletionBreak
	CompletionContinue
	CompletionReturn
	CompletionThrow
)

func (t CompletionType) String() string {
	switch t {
	case CompletionNormal:
		return "normal"
	case CompletionBreak:
		return "break"
	case CompletionContinue:
		return "continue"
	case CompletionReturn:
		return "return"
	case CompletionThrow:
		return "throw"
	}
	return "invalid"
}

// Completion is the {Type, Value, Target} triple. A nil Value means the
// completion carries the empty value (spelled [empty] in the standard), which
// is distinct from undefined.
type Completion struct {
	Type   CompletionType
	Value  Value
	Target string
}

func (c Completion) Abrupt() bool {
	return c.Type != CompletionNormal
}

func (c Completion) Throw() bool {
	return c.Type == CompletionThrow
}

func (c Completion) Empty() bool {
	return c.Value == nil
}

// ValueOrUndefined replaces the empty value with undefined. Used at the edges
// where a carried value is consumed.
func (c Completion) ValueOrUndefined() Value {
	if c.Value == nil {
		return _undefined
	}
	return c.Value
}

func normalCompletion(v Value) Completion {
	return Completion{Type: CompletionNormal, Value: v}
}

func throwCompletion(v Value) Completion {
	return Completion{Type: CompletionThrow, Value: v}
}

func returnCompletion(v Value) Completion {
	return Completion{Type: CompletionReturn, Value: v}
}

func breakCompletion(target string) Completion {
	return Completion{Type: CompletionBreak, Target: target}
}

func continueCompletion(target string) Completion {
	return Completion{Type: CompletionContinue, Target: target}
}

var emptyCompletion = Completion{Type: CompletionNormal}

var (
	completionTrue  = normalCompletion(valueTrue)
	completionFalse = normalCompletion(valueFalse)
)

func booleanCompletion(b bool) Completion {
	if b {
		return completionTrue
	}
	return completionFalse
}

// UpdateEmpty implements the UpdateEmpty(completion, value) operation used by
// the statement-list and loop evaluation rules.
func (c Completion) UpdateEmpty(v Value) Completion {
	if c.Value == nil {
		c.Value = v
	}
	return c
}

package harmony

import (
	"fmt"
	"strings"
)

// StackFrame is one entry of a captured position stack.
type StackFrame struct {
	SrcName  string
	FuncName string
	Position Position
}

func (f StackFrame) String() string {
	var b strings.Builder
	b.WriteString("\tat ")
	if f.FuncName != "" {
		b.WriteString(f.FuncName)
		b.WriteString(" (")
	}
	b.WriteString(f.SrcName)
	fmt.Fprintf(&b, ":%d:%d", f.Position.Line, f.Position.Col)
	if f.FuncName != "" {
		b.WriteString(")")
	}
	return b.String()
}

// Exception is the host-level surface of an uncaught throw completion. It
// wraps the thrown language value.
type Exception struct {
	val   Value
	stack []StackFrame
}

func (e *Exception) Error() string {
	var b strings.Builder
	b.WriteString(errorMessage(e.val))
	for _, f := range e.stack {
		b.WriteString("\n")
		b.WriteString(f.String())
	}
	return b.String()
}

// Value returns the thrown language value.
func (e *Exception) Value() Value {
	return e.val
}

// errorMessage renders a thrown value without running user code: for error
// objects it reads the stored name/message slots, otherwise the diagnostic
// form.
func errorMessage(v Value) string {
	if obj, ok := v.(*Object); ok {
		if eo, ok := obj.self.(*errorObject); ok {
			if eo.message == "" {
				return eo.name
			}
			return eo.name + ": " + eo.message
		}
	}
	return v.String()
}

// SyntaxErrorHost is returned by parse-level API entry points when the source
// does not parse. Inside the engine parse failures are SyntaxError throw
// completions; this is the Go-error form for hosts that never enter the
// engine.
type SyntaxErrorHost struct {
	Specifier string
	Message   string
}

func (e *SyntaxErrorHost) Error() string {
	return fmt.Sprintf("SyntaxError: %s (%s)", e.Message, e.Specifier)
}

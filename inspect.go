package harmony

import (
	"fmt"
	"strings"
)

// Inspect renders a value for human consumption. It never calls toString or
// valueOf, but it reads a function's "name" with [[Get]] and an object's own
// properties through its internal methods, so a "name" getter or proxy traps
// can run.
// It is the embedder-facing introspection helper.
func Inspect(v Value, r *Realm) string {
	return inspect(v, r, make(map[*Object]bool), 0)
}

func inspect(v Value, r *Realm, seen map[*Object]bool, depth int) string {
	switch t := v.(type) {
	case valueString:
		if depth > 0 {
			return "'" + t.String() + "'"
		}
		return t.String()
	case *valueBigInt:
		return t.String() + "n"
	case *Object:
		return inspectObject(t, r, seen, depth)
	case nil:
		return "<empty>"
	}
	return v.String()
}

func inspectObject(o *Object, r *Realm, seen map[*Object]bool, depth int) string {
	if seen[o] {
		return "[Circular]"
	}
	if depth > 4 {
		return "[Object]"
	}
	seen[o] = true
	defer delete(seen, o)

	switch impl := o.self.(type) {
	case *errorObject:
		return errorMessage(o)
	case *arrayObject:
		var b strings.Builder
		b.WriteString("[ ")
		for i := int64(0); i < impl.length; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			if i > 16 {
				fmt.Fprintf(&b, "... %d more items", impl.length-i)
				break
			}
			if prop := impl.values[intToValue(i).String()]; prop != nil && !prop.accessor {
				b.WriteString(inspect(prop.value, r, seen, depth+1))
			} else {
				b.WriteString("<empty>")
			}
		}
		b.WriteString(" ]")
		return b.String()
	case *promiseObject:
		switch impl.state {
		case promisePending:
			return "Promise { <pending> }"
		case promiseRejected:
			return "Promise { <rejected> " + inspect(impl.result, r, seen, depth+1) + " }"
		}
		return "Promise { " + inspect(impl.result, r, seen, depth+1) + " }"
	case *regexpObject:
		return "/" + impl.source + "/" + impl.flags
	}
	if o.isCallable() {
		name := ""
		if nc := o.self.get(strKey("name"), o); !nc.Abrupt() {
			if s, ok := nc.Value.(valueString); ok {
				name = s.String()
			}
		}
		if name == "" {
			name = "(anonymous)"
		}
		return "[Function: " + name + "]"
	}
	if bo, ok := o.self.(interface {
		ownPropertyKeys() ([]propertyKey, Completion)
	}); ok {
		keys, c := bo.ownPropertyKeys()
		if c.Abrupt() {
			return "[" + o.self.className() + "]"
		}
		var parts []string
		for _, key := range keys {
			if key.isSymbol() {
				continue
			}
			desc, dc := o.self.getOwnProperty(key)
			if dc.Abrupt() || desc == nil || desc.Enumerable != FLAG_TRUE {
				continue
			}
			if desc.Value != nil {
				parts = append(parts, key.s+": "+inspect(desc.Value, r, seen, depth+1))
			} else {
				parts = append(parts, key.s+": [Getter/Setter]")
			}
			if len(parts) > 16 {
				parts = append(parts, "...")
				break
			}
		}
		if len(parts) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return "[" + o.self.className() + "]"
}

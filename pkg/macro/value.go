// Package macro evaluates parsed templates. Names resolve through a chain
// of scopes to one of three kinds of value: a string, a list of strings, or
// a callable macro. Evaluation is lazy; a chunk's macro is looked up only
// when the chunk is executed.
package macro

import (
	"strconv"
	"strings"
)

// Value is a scope binding. A nil Value means "no value": executing a
// chunk that yields nil writes nothing.
type Value interface {
	kind() string
}

// String is a literal value.
type String string

// List is an ordered list of literal values.
type List []string

// Func is a callable macro.
type Func func(c *Call) (Value, error)

func (String) kind() string { return "string" }
func (List) kind() string   { return "list" }
func (Func) kind() string   { return "macro" }

// Int returns the decimal String for n.
func Int(n int) String {
	return String(strconv.Itoa(n))
}

// Stringify formats v for output. Lists are joined with ", ".
func Stringify(v Value) string {
	switch v := v.(type) {
	case String:
		return string(v)
	case List:
		return strings.Join(v, ", ")
	case nil:
		return ""
	default:
		return "<" + v.kind() + ">"
	}
}

// kindOf names the kind of v for error messages.
func kindOf(v Value) string {
	if v == nil {
		return "no value"
	}
	return v.kind()
}

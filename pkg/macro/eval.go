package macro

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/LLNL/wrap/pkg/template"
)

// EvalError reports a failure while expanding a template.
type EvalError struct {
	Line     int    // template line of the failing chunk, if known
	Function string // catalog entry being expanded, if any
	Msg      string
}

func (e *EvalError) Error() string {
	msg := e.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Function != "" {
		msg += " (while handling " + e.Function + ")"
	}
	return msg
}

// Errorf returns an EvalError naming the function scope is expanding.
func Errorf(scope *Scope, format string, args ...any) error {
	return &EvalError{Function: scope.Function(), Msg: fmt.Sprintf(format, args...)}
}

// Macro is a named callable. Body macros own the chunks up to their
// end<name> marker.
type Macro struct {
	Name    string
	HasBody bool
	Fn      Func
}

// Table is a set of macros, keyed by name.
type Table map[string]*Macro

// Register adds or replaces a macro.
func (t Table) Register(name string, hasBody bool, fn Func) {
	t[name] = &Macro{Name: name, HasBody: hasBody, Fn: fn}
}

// IsBody reports whether name is a registered body macro.
func (t Table) IsBody(name string) bool {
	m, ok := t[name]
	return ok && m.HasBody
}

// Merge adds every macro of o to t.
func (t Table) Merge(o Table) {
	for k, v := range o {
		t[k] = v
	}
}

// Values returns the macros as scope bindings.
func (t Table) Values() map[string]Value {
	vals := make(map[string]Value, len(t))
	for name, m := range t {
		vals[name] = m.Fn
	}
	return vals
}

// Call is one invocation of a Func.
type Call struct {
	Name     string
	Out      io.Writer
	Scope    *Scope // fresh child of the invoking scope
	Args     []Value
	Children []*template.Chunk
}

// Errorf returns an EvalError naming the function being expanded.
func (c *Call) Errorf(format string, args ...any) error {
	return Errorf(c.Scope, format, args...)
}

// StringArg returns argument i, which must be a String.
func (c *Call) StringArg(i int) (string, error) {
	s, ok := c.Args[i].(String)
	if !ok {
		return "", c.Errorf("argument %d of '%s' must be a string, got %s", i+1, c.Name, kindOf(c.Args[i]))
	}
	return string(s), nil
}

// StringArgs returns every argument, each of which must be a String.
func (c *Call) StringArgs() ([]string, error) {
	strs := make([]string, len(c.Args))
	for i := range c.Args {
		s, err := c.StringArg(i)
		if err != nil {
			return nil, err
		}
		strs[i] = s
	}
	return strs, nil
}

// Execute runs chunk and returns its value. Text chunks write their text
// and yield no value. A macro chunk yields the result of calling its
// callable, an element of its list, or its bound value.
func Execute(out io.Writer, scope *Scope, chunk *template.Chunk) (Value, error) {
	v, err := execute(out, scope, chunk)
	var eerr *EvalError
	if errors.As(err, &eerr) && eerr.Line == 0 {
		eerr.Line = chunk.Line
	}
	return v, err
}

func execute(out io.Writer, scope *Scope, chunk *template.Chunk) (Value, error) {
	if chunk.IsText() {
		_, err := io.WriteString(out, chunk.Text)
		return nil, err
	}

	value, ok := scope.Get(chunk.Macro)
	if !ok {
		return nil, Errorf(scope, "invalid macro: '%s'", chunk.Macro)
	}

	switch v := value.(type) {
	case Func:
		args := make([]Value, len(chunk.Args))
		for i, arg := range chunk.Args {
			if arg.Chunk == nil {
				args[i] = String(arg.Literal)
				continue
			}
			av, err := Execute(out, scope, arg.Chunk)
			if err != nil {
				return nil, err
			}
			args[i] = av
		}
		return v(&Call{
			Name:     chunk.Macro,
			Out:      out,
			Scope:    NewScope(scope),
			Args:     args,
			Children: chunk.Children,
		})
	case List:
		return indexList(scope, chunk, v)
	default:
		return v, nil
	}
}

// indexList implements {{list}} and {{list N}}.
func indexList(scope *Scope, chunk *template.Chunk, list List) (Value, error) {
	args := make([]string, len(chunk.Args))
	for i, arg := range chunk.Args {
		if arg.Chunk != nil {
			return nil, Errorf(scope, "invalid index value: '%s'", arg.Chunk)
		}
		args[i] = arg.Literal
	}
	return IndexList(scope, chunk.Macro, list, args)
}

// IndexList returns list itself for no args, or the element at the single
// index in args. Negative indices count from the end.
func IndexList(scope *Scope, name string, list List, args []string) (Value, error) {
	switch len(args) {
	case 0:
		return list, nil
	case 1:
	default:
		return nil, Errorf(scope, "wrong number of args for list expression '%s'", name)
	}

	i, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, Errorf(scope, "invalid index value: '%s'", args[0])
	}
	n := i
	if n < 0 {
		n += len(list)
	}
	if n < 0 || n >= len(list) {
		return nil, Errorf(scope, "index out of range in '%s': %d", name, i)
	}
	return String(list[n]), nil
}

// Evaluate executes chunk and writes its value, if any, to out.
func Evaluate(out io.Writer, scope *Scope, chunk *template.Chunk) error {
	v, err := Execute(out, scope, chunk)
	if err != nil || v == nil {
		return err
	}
	_, err = io.WriteString(out, Stringify(v))
	return err
}

// EvaluateAll evaluates chunks in order, stopping at the first error.
func EvaluateAll(out io.Writer, scope *Scope, chunks []*template.Chunk) error {
	for _, c := range chunks {
		if err := Evaluate(out, scope, c); err != nil {
			return err
		}
	}
	return nil
}

package macro

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLNL/wrap/pkg/template"
)

// testTable returns the builtins plus "each", a body macro that evaluates
// its children once per argument after the first, binding the first
// argument's name to the item and "args" to every item.
func testTable() Table {
	t := Builtins()
	t.Register("each", true, func(c *Call) (Value, error) {
		if len(c.Args) < 1 {
			return nil, c.Errorf("'each' requires a variable name")
		}
		names, err := c.StringArgs()
		if err != nil {
			return nil, err
		}
		for _, item := range names[1:] {
			s := NewScope(c.Scope)
			s.SetFunction(item)
			s.Set(names[0], String(item))
			s.Set("args", List(names[1:]))
			if err := EvaluateAll(c.Out, s, c.Children); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return t
}

func run(t *testing.T, table Table, scope *Scope, src string) (string, error) {
	t.Helper()
	chunks, err := template.Parse(src, table.IsBody, true)
	require.NoError(t, err)
	var buf bytes.Buffer
	err = EvaluateAll(&buf, scope, chunks)
	return buf.String(), err
}

func rootScope(table Table) *Scope {
	s := NewScope(nil)
	s.Include(table.Values())
	return s
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Text", "int x;\n", "int x;\n"},
		{"Iteration", "{{each x a b}}[{{x}}]{{endeach}}", "[a][b]"},
		{"Numeric Index", "{{each x a b}}{{0}}{{endeach}}", "aa"},
		{"Negative Index", "{{each x a b c}}{{-1}}{{endeach}}", "ccc"},
		{"Whole List", "{{each x a b}}<{{args}}>{{endeach}}", "<a, b><a, b>"},
		{"Zero Is Printed", "{{zero}}", "0"},
		{"Plain Value", "{{greeting}}, world", "hello, world"},
		{"Nested Arguments", "{{list {{names}} c}}", "a, b, c"},
		{"Sub On String", `{{sub MPI_Send ^MPI_ PMPI_}}`, "PMPI_Send"},
		{"Sub On List", `{{sub {{names}} (.+) "\1_"}}`, "a_, b_"},
		{"Sub Named Group", `{{sub MPI_Send "MPI_(?P<rest>\w+)" "\g<rest>!"}}`, "Send!"},
		{"Filter", `{{filter ^MPI_W {{list MPI_Wait MPI_Send MPI_Waitall}}}}`, "MPI_Wait, MPI_Waitall"},
		{"Filter Nothing", `[{{filter ^x {{names}}}}]`, "[]"},
		{"Zip", `{{zip {{list int char}} {{names}}}}`, "int a, char b"},
		{"Def Persists In Body", "{{each x a b}}{{def y {{x}}}}{{y}}{{endeach}}", "ab"},
		{"Def At Top Level", "{{def y 1}}{{y}}", "1"},
		{"Counter", "{{fn_num}}{{fn_num}}{{fn_num}}", "012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := testTable()
			root := rootScope(table)
			root.Set("zero", Int(0))
			root.Set("greeting", String("hello"))
			root.Set("names", List{"a", "b"})

			got, err := run(t, table, NewScope(root), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDefDoesNotLeakAcrossIterations(t *testing.T) {
	table := testTable()
	root := rootScope(table)

	got, err := run(t, table, NewScope(root), "{{each x a b}}{{x}}{{endeach}}")
	require.NoError(t, err)
	require.Equal(t, "ab", got)

	_, err = run(t, table, NewScope(root), "{{each x a}}{{def seen yes}}{{endeach}}{{seen}}")
	var eerr *EvalError
	require.True(t, errors.As(err, &eerr))
	require.Contains(t, eerr.Msg, "invalid macro: 'seen'")
}

func TestEvaluateIdempotent(t *testing.T) {
	table := testTable()
	root := rootScope(table)
	root.Set("names", List{"a", "b"})

	chunks, err := template.Parse("{{each x p q}}{{def y {{sub {{x}} p P}}}}{{y}}:{{args}}:{{zip {{names}} {{args}}}};{{endeach}}", table.IsBody, true)
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, EvaluateAll(&first, NewScope(root), chunks))
	require.NoError(t, EvaluateAll(&second, NewScope(root), chunks))
	require.Equal(t, first.String(), second.String())
	require.Equal(t, "P:p, q:a p, b q;q:p, q:a p, b q;", first.String())
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		function string
		msg      string
	}{
		{"Invalid Macro", "{{nope}}", "", "invalid macro: 'nope'"},
		{"Invalid Macro In Function", "{{each f MPI_Send}}{{nope}}{{endeach}}", "MPI_Send", "invalid macro: 'nope'"},
		{"Index Out Of Range", "{{each f a}}{{3}}{{endeach}}", "a", "index out of range in 'args': 3"},
		{"Bad Index", "{{names x}}", "", "invalid index value: 'x'"},
		{"Too Many Indices", "{{names 0 1}}", "", "wrong number of args"},
		{"Sub Arity", "{{sub a b}}", "", "'sub' macro takes exactly 3 arguments"},
		{"Sub Bad Regex", "{{sub a ( b}}", "", "invalid regular expression"},
		{"Filter Needs List", "{{filter a b}}", "", "invalid list in 'filter' macro"},
		{"Zip Needs Lists", "{{zip a {{names}}}}", "", "must be lists"},
		{"Def Arity", "{{def a}}", "", "'def' macro takes exactly 2 arguments"},
		{"Def Name Must Be String", "{{def {{names}} a}}", "", "must be a string, got list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := testTable()
			root := rootScope(table)
			root.Set("names", List{"a", "b"})

			_, err := run(t, table, NewScope(root), tt.input)
			var eerr *EvalError
			require.True(t, errors.As(err, &eerr), "got %v", err)
			require.Equal(t, tt.function, eerr.Function)
			require.Contains(t, eerr.Msg, tt.msg)
			require.Equal(t, 1, eerr.Line)
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	err := &EvalError{Line: 3, Function: "MPI_Send", Msg: "invalid macro: 'x'"}
	require.Equal(t, "line 3: invalid macro: 'x' (while handling MPI_Send)", err.Error())
	require.Equal(t, "boom", (&EvalError{Msg: "boom"}).Error())
}

func TestScope(t *testing.T) {
	root := NewScope(nil)
	root.Set("a", String("root"))
	root.SetFunction("MPI_Send")

	child := NewScope(root)
	child.Set("b", String("child"))

	v, err := child.Lookup("a")
	require.NoError(t, err)
	require.Equal(t, String("root"), v)
	require.True(t, child.Contains("b"))
	require.False(t, root.Contains("b"))
	require.Equal(t, "MPI_Send", child.Function())
	require.Same(t, root, child.Parent())

	child.Set("a", String("shadow"))
	v, _ = child.Lookup("a")
	require.Equal(t, String("shadow"), v)
	v, _ = root.Lookup("a")
	require.Equal(t, String("root"), v)

	_, err = child.Lookup("missing")
	require.EqualError(t, err, "missing is not in scope")

	child.Include(map[string]Value{"c": List{"x"}})
	require.True(t, child.Contains("c"))
}

func TestReplacement(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`\1`, `${1}`},
		{`\12x`, `${12}x`},
		{`\g<name>-\g<2>`, `${name}-${2}`},
		{`$1`, `$$1`},
		{`a\\b`, `a\b`},
		{`a\nb`, "a\nb"},
		{`\q`, `\q`},
		{`end\`, `end\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Replacement(tt.input), tt.input)
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "a, b", Stringify(List{"a", "b"}))
	assert.Equal(t, "", Stringify(List{}))
	assert.Equal(t, "x", Stringify(String("x")))
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "<macro>", Stringify(Func(list)))
}

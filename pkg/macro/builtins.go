package macro

import (
	"regexp"
	"strings"
)

// Builtins returns the catalog-independent macros: sub, filter, zip, list,
// def and fn_num. Each call returns a table with its own fn_num counter,
// which counts up across every template expanded with that table.
func Builtins() Table {
	counter := 0
	t := Table{}
	t.Register("sub", false, sub)
	t.Register("filter", false, filter)
	t.Register("zip", false, zip)
	t.Register("list", false, list)
	t.Register("def", false, def)
	t.Register("fn_num", false, func(*Call) (Value, error) {
		n := counter
		counter++
		return Int(n), nil
	})
	return t
}

func compile(c *Call, expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, c.Errorf("invalid regular expression in '%s' macro: '%s': %v", c.Name, expr, err)
	}
	return re, nil
}

// sub implements {{sub <string-or-list> <regex> <replacement>}}.
func sub(c *Call) (Value, error) {
	if len(c.Args) != 3 {
		return nil, c.Errorf("'sub' macro takes exactly 3 arguments")
	}
	expr, err := c.StringArg(1)
	if err != nil {
		return nil, err
	}
	repl, err := c.StringArg(2)
	if err != nil {
		return nil, err
	}
	re, err := compile(c, expr)
	if err != nil {
		return nil, err
	}
	repl = Replacement(repl)

	switch s := c.Args[0].(type) {
	case List:
		out := make(List, len(s))
		for i, item := range s {
			out[i] = re.ReplaceAllString(item, repl)
		}
		return out, nil
	case String:
		return String(re.ReplaceAllString(string(s), repl)), nil
	default:
		return nil, c.Errorf("'sub' macro cannot substitute in %s", kindOf(s))
	}
}

// Replacement converts a replacement string written with backslash group
// references (\1, \g<1>, \g<name>) and escapes (\\, \n, \t) to the
// ${1} form regexp.Expand understands.
func Replacement(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '$' {
			b.WriteString("$$")
			continue
		}
		if ch != '\\' || i+1 == len(s) {
			b.WriteByte(ch)
			continue
		}

		next := s[i+1]
		switch {
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			b.WriteString("${" + s[i+1:j] + "}")
			i = j - 1
		case next == 'g' && i+2 < len(s) && s[i+2] == '<':
			end := strings.IndexByte(s[i+3:], '>')
			if end < 0 {
				b.WriteByte(ch)
				continue
			}
			b.WriteString("${" + s[i+3:i+3+end] + "}")
			i += 3 + end
		case next == '\\':
			b.WriteByte('\\')
			i++
		case next == 'n':
			b.WriteByte('\n')
			i++
		case next == 't':
			b.WriteByte('\t')
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// filter implements {{filter <regex> <list>}}: the items regex matches.
func filter(c *Call) (Value, error) {
	if len(c.Args) != 2 {
		return nil, c.Errorf("'filter' macro takes exactly 2 arguments")
	}
	expr, err := c.StringArg(0)
	if err != nil {
		return nil, err
	}
	items, ok := c.Args[1].(List)
	if !ok {
		return nil, c.Errorf("invalid list in 'filter' macro: %s", kindOf(c.Args[1]))
	}
	re, err := compile(c, expr)
	if err != nil {
		return nil, err
	}

	out := List{}
	for _, item := range items {
		if re.MatchString(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// zip implements {{zip <list> <list>}}: pairwise "a b" items.
func zip(c *Call) (Value, error) {
	if len(c.Args) != 2 {
		return nil, c.Errorf("'zip' macro takes exactly 2 arguments")
	}
	a, aok := c.Args[0].(List)
	b, bok := c.Args[1].(List)
	if !aok || !bok {
		return nil, c.Errorf("arguments to 'zip' macro must be lists")
	}

	out := List{}
	for i := 0; i < len(a) && i < len(b); i++ {
		out = append(out, a[i]+" "+b[i])
	}
	return out, nil
}

// list implements {{list ...}}: its arguments as one list, with list
// arguments spliced in.
func list(c *Call) (Value, error) {
	out := List{}
	for _, arg := range c.Args {
		switch v := arg.(type) {
		case List:
			out = append(out, v...)
		case String:
			out = append(out, string(v))
		case nil:
		default:
			return nil, c.Errorf("cannot put a %s in a list", kindOf(v))
		}
	}
	return out, nil
}

// def implements {{def <name> <value>}}. The binding is made in the
// invoking scope, so it is visible to the rest of the enclosing body.
func def(c *Call) (Value, error) {
	if len(c.Args) != 2 {
		return nil, c.Errorf("'def' macro takes exactly 2 arguments")
	}
	name, err := c.StringArg(0)
	if err != nil {
		return nil, err
	}
	target := c.Scope
	if p := c.Scope.Parent(); p != nil {
		target = p
	}
	target.Set(name, c.Args[1])
	return nil, nil
}

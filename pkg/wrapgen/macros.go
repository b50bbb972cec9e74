package wrapgen

import (
	"fmt"
	"io"
	"strings"

	"github.com/LLNL/wrap/pkg/catalog"
	"github.com/LLNL/wrap/pkg/logutil"
	"github.com/LLNL/wrap/pkg/macro"
)

// table returns the builtins plus the catalog macros.
func (g *Generator) table() macro.Table {
	t := macro.Builtins()
	t.Register("fn", true, g.fn)
	t.Register("fnall", true, g.fnall)
	t.Register("fntype", true, g.fntype)
	t.Register("foreachfn", true, g.foreachfn)
	t.Register("forallfn", true, g.forallfn)
	t.Register("decls", true, g.declsMacro)
	t.Register("sizein", false, g.sizeMacro("sizein"))
	t.Register("sizeout", false, g.sizeMacro("sizeout"))
	t.Register("size", false, g.sizeMacro("size"))
	t.Register("size_helpers", false, func(*macro.Call) (macro.Value, error) {
		return macro.String(g.sizer.Helpers()), nil
	})
	return t
}

// fnArgs splits the arguments of an iteration macro into the loop
// variable and the function names. List arguments are spliced in.
func fnArgs(c *macro.Call) (string, []string, error) {
	if len(c.Args) == 0 {
		return "", nil, c.Errorf("'%s' requires function name argument", c.Name)
	}
	fnVar, err := c.StringArg(0)
	if err != nil {
		return "", nil, err
	}

	var names []string
	for i, arg := range c.Args[1:] {
		switch v := arg.(type) {
		case macro.String:
			names = append(names, string(v))
		case macro.List:
			names = append(names, v...)
		default:
			return "", nil, c.Errorf("argument %d of '%s' must be a function name", i+2, c.Name)
		}
	}
	return fnVar, names, nil
}

func notInCatalog(name string) error {
	return &macro.EvalError{Function: name, Msg: name + " is not an MPI function"}
}

// includeDecl binds the signature of decl in scope.
func includeDecl(scope *macro.Scope, decl *catalog.Declaration) {
	args := macro.List(decl.ArgNames())
	scope.SetFunction(decl.Name)
	scope.Set("ret_type", macro.String(decl.RetType))
	scope.Set("args", args)
	scope.Set("nargs", macro.Int(len(args)))
	scope.Set("types", macro.List(decl.Types()))
	scope.Set("formals", macro.List(decl.Formals()))

	applyToType := macro.Func(func(c *macro.Call) (macro.Value, error) {
		if len(c.Args) != 2 {
			return nil, c.Errorf("wrong number of args in apply macro")
		}
		strs, err := c.StringArgs()
		if err != nil {
			return nil, err
		}
		ctype, name := strs[0], strs[1]
		e := newEmitter(c.Out)
		for _, p := range decl.Params {
			if p.CType() == ctype {
				e.printf("%s(%s);\n", name, p.Name)
			}
		}
		return nil, e.err
	})
	scope.Set("apply_to_type", applyToType)

	// Older templates use these names.
	scope.Set("get_arg", macro.Func(func(c *macro.Call) (macro.Value, error) {
		idx, err := c.StringArgs()
		if err != nil {
			return nil, err
		}
		return macro.IndexList(c.Scope, "args", args, idx)
	}))
	scope.Set("applyToType", applyToType)
	scope.Set("retType", macro.String(decl.RetType))
	scope.Set("argList", macro.String("("+strings.Join(args, ", ")+")"))
	scope.Set("argTypeList", macro.String("("+strings.Join(decl.Formals(), ", ")+")"))
}

// foreachfn iterates its body over the named functions without emitting
// wrappers.
func (g *Generator) foreachfn(c *macro.Call) (macro.Value, error) {
	fnVar, names, err := fnArgs(c)
	if err != nil {
		return nil, err
	}
	return nil, g.iterate(c, fnVar, names)
}

// forallfn is foreachfn over every function except the named ones.
func (g *Generator) forallfn(c *macro.Call) (macro.Value, error) {
	fnVar, names, err := fnArgs(c)
	if err != nil {
		return nil, err
	}
	return nil, g.iterate(c, fnVar, g.cat.AllBut(names))
}

func (g *Generator) iterate(c *macro.Call, fnVar string, names []string) error {
	for _, name := range names {
		decl, ok := g.cat.Lookup(name)
		if !ok {
			return notInCatalog(name)
		}
		scope := macro.NewScope(c.Scope)
		scope.Set(fnVar, macro.String(name))
		includeDecl(scope, decl)
		if err := macro.EvaluateAll(c.Out, scope, c.Children); err != nil {
			return err
		}
	}
	return nil
}

// fn emits a wrapper for each named function, with the body as the
// wrapper's statements. A name ending in '?' is skipped when the catalog
// does not have it.
func (g *Generator) fn(c *macro.Call) (macro.Value, error) {
	fnVar, names, err := fnArgs(c)
	if err != nil {
		return nil, err
	}
	return nil, g.wrap(c, fnVar, names)
}

// fnall is fn over every function except the named ones.
func (g *Generator) fnall(c *macro.Call) (macro.Value, error) {
	fnVar, names, err := fnArgs(c)
	if err != nil {
		return nil, err
	}
	return nil, g.wrap(c, fnVar, g.cat.AllBut(names))
}

// fntype is fn over every function having a parameter of the given type.
func (g *Generator) fntype(c *macro.Call) (macro.Value, error) {
	if len(c.Args) != 2 {
		return nil, c.Errorf("'fntype' requires function name argument and a type")
	}
	strs, err := c.StringArgs()
	if err != nil {
		return nil, err
	}
	return nil, g.wrap(c, strs[0], g.cat.WithType(strs[1]))
}

func (g *Generator) wrap(c *macro.Call, fnVar string, names []string) error {
	for _, name := range names {
		optional := strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")

		decl, ok := g.cat.Lookup(name)
		if !ok {
			if optional {
				continue
			}
			return notInCatalog(name)
		}
		if err := g.wrapOne(c, fnVar, decl); err != nil {
			return err
		}
	}
	return nil
}

// wrapOne emits the C wrapper of decl and, with Fortran enabled, its
// Fortran delegate and bindings.
func (g *Generator) wrapOne(c *macro.Call, fnVar string, decl *catalog.Declaration) error {
	logutil.Trace("expanding", "function", decl.Name)

	scope := macro.NewScope(c.Scope)
	scope.Set(fnVar, macro.String(decl.Name))
	includeDecl(scope, decl)
	scope.Set("ret_val", macro.String(retVal))
	scope.Set("returnVal", macro.String(retVal))

	out := c.Out
	if g.opts.StaticDir != "" {
		w, err := g.entry(decl.Name)
		if err != nil {
			return err
		}
		out = w
	}
	e := newEmitter(out)

	cCall := fmt.Sprintf("%s = P%s(%s);", retVal, decl.Name, strings.Join(decl.ArgNames(), ", "))
	if g.opts.IgnoreDeprecated {
		cCall = "WRAP_MPI_CALL_PREFIX\n" + cCall + "\nWRAP_MPI_CALL_POSTFIX"
	}

	v, isInit := lookupInit(decl.Name)
	isInit = isInit && g.opts.Fortran
	if isInit {
		scope.Set("callfn", g.initCallfn(v, decl, cCall))
		if err := g.writeInitFlag(e, v, decl); err != nil {
			return err
		}
	} else {
		scope.Set("callfn", macro.String(cCall))
	}

	e.printf("/* ================== C Wrappers for %s ================== */\n", decl.Name)
	err := g.writeCWrapper(e, decl, func(w io.Writer) error {
		return macro.EvaluateAll(w, scope, c.Children)
	})
	if err != nil {
		return err
	}

	if g.opts.Fortran {
		e.printf("/* =============== Fortran Wrappers for %s =============== */\n", decl.Name)
		if isInit {
			if err := g.writeInitFortranWrappers(e, v, decl); err != nil {
				return err
			}
		} else {
			g.writeFortranWrappers(e, decl)
		}
		e.printf("/* ================= End Wrappers for %s ================= */\n\n\n", decl.Name)
	}
	return e.err
}

// declsMacro writes its body once and repeats it at the head of every
// split-mode file opened afterwards.
func (g *Generator) declsMacro(c *macro.Call) (macro.Value, error) {
	var b strings.Builder
	for _, child := range c.Children {
		if !child.IsText() {
			return nil, c.Errorf("'decls' body must be plain text, found %s", child)
		}
		b.WriteString(child.Text)
	}
	g.decls = b.String()
	_, err := io.WriteString(c.Out, g.decls)
	return nil, err
}

// sizeMacro returns sizein, sizeout or size. Inside a function iteration
// they take no arguments and size the current call with its own argument
// names; elsewhere they take a function name and an argument list.
func (g *Generator) sizeMacro(name string) macro.Func {
	return func(c *macro.Call) (macro.Value, error) {
		var fn string
		var args macro.List
		switch len(c.Args) {
		case 0:
			fn = c.Scope.Function()
			if fn == "" {
				return nil, c.Errorf("'%s' outside a function iteration needs a function name and argument list", name)
			}
			v, err := c.Scope.Lookup("args")
			if err != nil {
				return nil, c.Errorf("%v", err)
			}
			list, ok := v.(macro.List)
			if !ok {
				return nil, c.Errorf("'args' of %s is not a list", fn)
			}
			args = list
		case 2:
			s, err := c.StringArg(0)
			if err != nil {
				return nil, err
			}
			list, ok := c.Args[1].(macro.List)
			if !ok {
				return nil, c.Errorf("argument 2 of '%s' must be a list", name)
			}
			fn, args = s, list
		default:
			return nil, c.Errorf("'%s' takes no arguments or a function name and argument list", name)
		}

		var text string
		var err error
		switch name {
		case "sizein":
			text, err = g.sizer.SizeIn(fn, args)
		case "sizeout":
			text, err = g.sizer.SizeOut(fn, args)
		default:
			text, err = g.sizer.Total(fn, args)
		}
		if err != nil {
			return nil, c.Errorf("%v", err)
		}
		return macro.String(text), nil
	}
}

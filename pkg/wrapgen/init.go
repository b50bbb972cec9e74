package wrapgen

import (
	"fmt"
	"strings"

	"github.com/LLNL/wrap/pkg/catalog"
	"github.com/LLNL/wrap/pkg/macro"
)

// initVariant describes one of MPI_Init and MPI_Init_thread. Fortran
// programs initialize through a different entry point than C programs, so
// the C wrapper must know which one the program called and forward to the
// matching Fortran PMPI binding instead of the C one.
type initVariant struct {
	flag     string   // C variable recording which Fortran binding was called
	bindings []string // Fortran PMPI manglings
	label    string   // name used in the generated diagnostics
	actuals  []string // actuals of the delegate's C call
}

var (
	initCall = initVariant{
		flag:     "fortran_init",
		bindings: InitBindings,
		label:    "pmpi_init",
		actuals:  []string{"&argc", "&argv"},
	}
	initThreadCall = initVariant{
		flag:     "fortran_init_thread",
		bindings: InitThreadBindings,
		label:    "pmpi_init_thread",
		actuals:  []string{"&argc", "&argv", "*required", "provided"},
	}
)

// lookupInit returns the variant for an init call.
func lookupInit(name string) (initVariant, bool) {
	switch name {
	case "MPI_Init":
		return initCall, true
	case "MPI_Init_thread":
		return initThreadCall, true
	}
	return initVariant{}, false
}

// pmpiArgs returns the arguments the C wrapper passes to a Fortran PMPI
// binding.
func (v initVariant) pmpiArgs(decl *catalog.Declaration) string {
	if v.flag == initThreadCall.flag {
		args := decl.ArgNames()
		return fmt.Sprintf("&%s, %s, &%s", args[2], args[3], retVal)
	}
	return "&" + retVal
}

// casePads keeps the break statements of the dispatch switch aligned.
var casePads = []string{"   ", "   ", "  ", " "}

// initCallfn returns the callfn macro for an init call: when a Fortran binding
// ran first, call the Fortran PMPI binding that was linked, otherwise cCall.
func (g *Generator) initCallfn(v initVariant, decl *catalog.Declaration, cCall string) macro.Func {
	static := g.opts.StaticDir != ""
	binding := g.opts.PMPIInitBinding
	if v.flag == initThreadCall.flag {
		binding = g.opts.InitThreadBinding()
	}

	return func(c *macro.Call) (macro.Value, error) {
		args := v.pmpiArgs(decl)
		prefix := ""
		if static {
			prefix = "real_"
		}
		names := make([]string, len(v.bindings))
		for i, b := range v.bindings {
			names[i] = "!" + prefix + b
		}

		e := newEmitter(c.Out)
		e.printf("    if (%s) {\n", v.flag)
		if !static {
			e.print("#if (defined(PIC) || defined(__PIC__)) && !defined(STATIC)\n")
		}
		e.printf("        if (%s) {\n", strings.Join(names, " && "))
		e.printf("            fprintf(stderr, \"ERROR: Couldn't find fortran %s function.  Link against static library instead.\\n\");\n", v.label)
		e.print("            exit(1);\n")
		e.print("        }")
		e.printf("        switch (%s) {\n", v.flag)
		for i, b := range v.bindings {
			e.printf("        case %d: %s%s(%s);%sbreak;\n", i+1, prefix, b, args, casePads[i])
		}
		e.print("        default:\n")
		e.printf("            fprintf(stderr, \"NO SUITABLE FORTRAN %s BINDING\\n\");\n", strings.ToUpper(v.label[1:]))
		e.print("            break;\n")
		e.print("        }\n")
		if !static {
			e.print("#else /* !PIC */\n")
			e.printf("        %s(%s);\n", binding, args)
			e.print("#endif /* !PIC */\n")
		}
		e.print("    } else {\n")
		e.printf("        %s\n", cCall)
		e.print("    }\n")
		return nil, e.err
	}
}

// writeInitFlag declares the init flag once per run. In split mode the
// flag lives in the main output and each entry file reaches it through an
// extern declaration; the real_ bindings are weak so a missing Fortran
// library leaves them null.
func (g *Generator) writeInitFlag(e *emitter, v initVariant, decl *catalog.Declaration) error {
	if !g.once[v.flag] {
		g.once[v.flag] = true
		main := newEmitter(g.out.Main())
		if g.opts.StaticDir != "" {
			main.printf("int %s = 0;\n", v.flag)
			for _, b := range v.bindings {
				e.print(decl.FortranPrototype("real_"+b, externC))
				e.print(";\n")
				e.printf("#pragma weak real_%s\n", b)
			}
		} else {
			main.printf("static int %s = 0;\n", v.flag)
		}
		if main.err != nil {
			return main.err
		}
	}
	if g.opts.StaticDir != "" {
		e.printf("extern int %s;\n", v.flag)
	}
	return e.err
}

// writeInitFortranWrappers emits the Fortran side of an init call: the
// delegate, which takes no argc/argv from Fortran, and the bindings, each
// recording itself in the init flag before delegating. In split mode every
// binding gets its own file holding a copy of the delegate and a real_
// forwarding function.
func (g *Generator) writeInitFortranWrappers(e *emitter, v initVariant, decl *catalog.Declaration) error {
	delegate := decl.Name + fortranSuffix
	d := newDelegation(decl, retVal)
	for _, a := range v.actuals {
		d.addActual(a)
	}

	writeDelegate := func(e *emitter) {
		e.print(decl.FortranPrototype(delegate, "static"))
		e.print(" { \n")
		e.print("    int argc = 0;\n")
		e.print("    char ** argv = NULL;\n")
		d.write(e, g.opts.IgnoreDeprecated)
		e.printf("    *ierr = %s;\n", retVal)
		e.print("}\n\n")
	}

	if g.opts.StaticDir == "" {
		writeDelegate(e)
		for i, b := range v.bindings {
			writeFortranBinding(e, decl, delegate, b[1:], fmt.Sprintf("%s = %d;", v.flag, i+1))
		}
		return e.err
	}

	files := make([]*emitter, len(v.bindings))
	for i, b := range v.bindings {
		w, err := g.entry(b)
		if err != nil {
			return err
		}
		files[i] = newEmitter(w)
		files[i].print(decl.Prototype(externC))
		files[i].print(";\n")
		writeDelegate(files[i])
	}
	for i, b := range v.bindings {
		f := files[i]
		f.printf("extern int %s;\n", v.flag)
		writeFortranBinding(f, decl, delegate, b[1:], fmt.Sprintf("%s = %d;", v.flag, i+1))
		writeFortranBinding(f, decl, b, "real_"+b)
		if f.err != nil {
			return f.err
		}
	}
	return e.err
}

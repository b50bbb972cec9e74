package wrapgen

import (
	"io"
	"strings"

	"github.com/LLNL/wrap/pkg/catalog"
)

const (
	// retVal names the variable holding the PMPI result in every wrapper.
	retVal = "_wrap_py_return_val"

	externC = "_EXTERN_C_"
)

// writeCWrapper emits the PMPI prototype and the C wrapper for decl, with
// body supplying the statements between the result declaration and the
// return.
func (g *Generator) writeCWrapper(e *emitter, decl *catalog.Declaration, body func(w io.Writer) error) error {
	// Some mpi.h headers do not declare the PMPI entry points.
	e.print(decl.PMPIPrototype(externC))
	e.print(";\n")

	e.print(decl.Prototype(externC))
	e.print(" { \n")
	e.printf("    %s %s = 0;\n", decl.RetType, retVal)

	if g.opts.Guards {
		e.printf("    if (in_wrapper) return P%s(%s);\n", decl.Name, strings.Join(decl.ArgNames(), ", "))
		e.print("    in_wrapper = 1;\n")
	}
	if e.err != nil {
		return e.err
	}
	if err := body(e.w); err != nil {
		return err
	}
	if g.opts.Guards {
		e.print("    in_wrapper = 0;\n")
	}

	e.printf("    return %s;\n", retVal)
	e.print("}\n\n")
	return e.err
}

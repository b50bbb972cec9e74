package wrapgen

import (
	"fmt"
	"strings"

	"github.com/LLNL/wrap/pkg/catalog"
)

const fortranSuffix = "_fortran_wrapper"

// fortranBindings returns the four manglings Fortran compilers use for name.
func fortranBindings(name string) []string {
	lower := strings.ToLower(name)
	return []string{strings.ToUpper(name), lower, lower + "_", lower + "__"}
}

// writeFortranBinding emits one mangled entry point that runs stmts and
// forwards its arguments to delegate.
func writeFortranBinding(e *emitter, decl *catalog.Declaration, delegate, binding string, stmts ...string) {
	e.print(decl.FortranPrototype(binding, externC))
	e.print(" { \n")
	for _, s := range stmts {
		e.print("    " + s + "\n")
	}
	call := fmt.Sprintf("%s(%s);\n", delegate, strings.Join(decl.FortranArgNames(), ", "))
	if decl.ReturnsErrorCode() {
		e.print("    " + call)
	} else {
		e.print("    return " + call)
	}
	e.print("}\n\n")
}

// writeFortranWrappers emits the static delegate that converts Fortran
// arguments and calls the C entry point, then the four bindings that
// forward to it.
func (g *Generator) writeFortranWrappers(e *emitter, decl *catalog.Declaration) {
	delegate := decl.Name + fortranSuffix
	d := newDelegation(decl, retVal)

	e.print(decl.FortranPrototype(delegate, "static"))
	e.print(" { \n")

	// After MPI_UNDEFINED there is nothing to convert back.
	undef, hasUndef := decl.ArrayIndexOutputParam()
	if hasUndef {
		d.addWriteback(fmt.Sprintf("if (*%s != MPI_UNDEFINED){", undef.Name))
	}
	for _, arg := range decl.Args() {
		marshal(d, decl, arg)
	}
	if hasUndef {
		d.addWriteback("}")
	}

	e.print("WRAP_MPI_CALL_PREFIX\n")
	d.write(e, g.opts.IgnoreDeprecated)
	e.print("WRAP_MPI_CALL_POSTFIX\n")

	if decl.ReturnsErrorCode() {
		e.printf("    *ierr = %s;\n", retVal)
	} else {
		e.printf("    return %s;\n", retVal)
	}
	e.print("}\n\n")

	for _, b := range fortranBindings(decl.Name) {
		writeFortranBinding(e, decl, delegate, b)
	}
}

// marshal adds the conversions arg needs to d.
func marshal(d *delegation, decl *catalog.Declaration, arg catalog.Param) {
	name := arg.Name

	if !arg.IsIndirect() {
		if !arg.IsHandle() {
			d.addActual("*" + name)
			return
		}
		// Handles passed by value are never statuses.
		d.addActualC2F(fmt.Sprintf("%s_f2c(*%s)", catalog.ConversionPrefix(arg.Type), name))
		d.addActualMPICH(fmt.Sprintf("(%s)(*%s)", arg.Type, name))
		return
	}

	switch {
	case arg.IsString():
		temp := "temp_" + name
		d.addActual(name)
		d.addTemp("char*", temp)
		d.addCopy(fmt.Sprintf("%s = (char*)malloc(sizeof(%s) * (%s_len+1));", temp, arg.Type, name))
		d.addFree(temp)
		d.addCopy(fmt.Sprintf("char_p_f2c(%s,%s_len,&%s);", name, name, temp))
		d.addWriteback(fmt.Sprintf("char_p_c2f(%s,%s,%s_len);", temp, name, name))

	case decl.IsArrayIndexOutput(arg):
		// C indices are 0-based, Fortran's 1-based.
		d.addActual(name)
		d.addWriteback(fmt.Sprintf("++(*%s);", name))

	case decl.IsArrayIndexArrayOutput(arg):
		d.addTemp("int", "i")
		d.addActual(name)
		d.addWriteback(fmt.Sprintf("    for (i=0; i < *%s; ++i)", decl.IndexCountParam(arg).Name))
		d.addWriteback(fmt.Sprintf("        ++%s[i];", name))

	case !arg.IsHandle():
		if arg.IsVoid() {
			d.addActual(fmt.Sprintf("BufferC2F((%s)%s)", arg.CastType(), name))
		} else {
			d.addActual(fmt.Sprintf("((%s)%s)", arg.CastType(), name))
		}

	case !decl.IsHandleArray(arg):
		marshalHandle(d, decl, arg)

	default:
		marshalHandleArray(d, decl, arg)
	}
}

// marshalHandle converts a pointer to one handle through a temporary.
func marshalHandle(d *delegation, decl *catalog.Declaration, arg catalog.Param) {
	name, conv, temp := arg.Name, catalog.ConversionPrefix(arg.Type), "temp_"+arg.Name

	d.addActualMPICH(fmt.Sprintf("(%s*)%s", arg.Type, name))
	d.addTemp(arg.Type, temp)

	if arg.IsStatus() {
		d.addActualMPI2(fmt.Sprintf("((%s == MPI_F_STATUS_IGNORE) ? MPI_STATUS_IGNORE : &%s)", name, temp))
		d.addActualMPICHC2F("&" + temp)
		d.addCopyMPI2(fmt.Sprintf("if (%s != MPI_F_STATUS_IGNORE) %s_f2c(%s, &%s);", name, conv, name, temp))
		d.addCopyMPICHC2F(fmt.Sprintf("%s_f2c(%s, &%s);", conv, name, temp))
		d.addWritebackMPI2(fmt.Sprintf("if (%s != MPI_F_STATUS_IGNORE) %s_c2f(&%s, %s);", name, conv, temp, name))
		d.addWritebackMPICHC2F(fmt.Sprintf("%s_c2f(&%s, %s);", conv, temp, name))
		return
	}

	d.addActualC2F("&" + temp)
	if decl.IsInout(arg) {
		d.addCopy(fmt.Sprintf("%s = %s_f2c(*%s);", temp, conv, name))
	}
	d.addWriteback(fmt.Sprintf("*%s = %s_c2f(%s);", name, conv, temp))
}

// marshalHandleArray converts an array of handles through a heap copy
// sized by the array's count parameter.
func marshalHandleArray(d *delegation, decl *catalog.Declaration, arg catalog.Param) {
	name, conv, temp := arg.Name, catalog.ConversionPrefix(arg.Type), "temp_"+arg.Name
	arrType := arg.Type + "*"
	count := "*" + decl.CountParam(arg).Name

	d.addActualMPICH(fmt.Sprintf("(%s*)%s", arg.Type, name))
	d.addTemp(arrType, temp)
	d.addTemp("int", "i")
	d.addCopy(fmt.Sprintf("%s = (%s)malloc(sizeof(%s) * %s);", temp, arrType, arg.Type, count))
	// Freed outside the MPI_UNDEFINED test.
	d.addFree(temp)

	if arg.IsStatus() {
		// Statuses are output only.
		d.addActualMPI2(fmt.Sprintf("((%s == MPI_F_STATUSES_IGNORE) ? MPI_STATUSES_IGNORE : %s)", name, temp))
		d.addActualMPICHC2F(temp)
		d.addWritebackMPI2(fmt.Sprintf("if (%s != MPI_F_STATUSES_IGNORE)", name))
		d.addWriteback(fmt.Sprintf("  for (i=0; i < %s; i++)", count))
		d.addWritebackMPI2(fmt.Sprintf("    %s_c2f(&%s[i], &%s[i * MPI_F_STATUS_SIZE]);", conv, temp, name))
		d.addWritebackMPICHC2F(fmt.Sprintf("    %s_c2f(&%s[i], &%s[i * MPI_F_STATUS_SIZE]);", conv, temp, name))
		return
	}

	d.addActualC2F(temp)
	d.addCopy(fmt.Sprintf("for (i=0; i < %s; i++)", count))
	d.addCopy(fmt.Sprintf("    %s[i] = %s_f2c(%s[i]);", temp, conv, name))
	if arg.Pointers != "" {
		d.addWriteback(fmt.Sprintf("for (i=0; i < %s; i++)", count))
		d.addWriteback(fmt.Sprintf("    %s[i] = %s_c2f(%s[i]);", name, conv, temp))
	}
}

package wrapgen

import (
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/LLNL/wrap/pkg/catalog"
)

// delegation accumulates the call a Fortran wrapper makes to the C entry
// point. Three variants of the call are built side by side: legacy MPICH,
// whose handles are plain ints and can be cast; MPICH with f2c/c2f; and
// the MPI-2 safe call, which also understands the Fortran status sentinels.
type delegation struct {
	decl   *catalog.Declaration
	retVal string

	temps *linkedhashset.Set
	frees *linkedhashset.Set

	copies, c2fCopies         []string
	writebacks, c2fWritebacks []string

	actuals, mpichActuals, c2fActuals []string
}

func newDelegation(decl *catalog.Declaration, retVal string) *delegation {
	return &delegation{
		decl:   decl,
		retVal: retVal,
		temps:  linkedhashset.New(),
		frees:  linkedhashset.New(),
	}
}

func (d *delegation) addTemp(ctype, name string) {
	d.temps.Add("    " + ctype + " " + name + ";")
}

func (d *delegation) addFree(name string) {
	d.frees.Add(" if(" + name + ") free(" + name + ");")
}

// addActual passes the same expression to every variant.
func (d *delegation) addActual(a string) {
	d.actuals = append(d.actuals, a)
	d.mpichActuals = append(d.mpichActuals, a)
	d.c2fActuals = append(d.c2fActuals, a)
}

func (d *delegation) addActualMPICH(a string) { d.mpichActuals = append(d.mpichActuals, a) }

func (d *delegation) addActualMPICHC2F(a string) { d.c2fActuals = append(d.c2fActuals, a) }

func (d *delegation) addActualMPI2(a string) { d.actuals = append(d.actuals, a) }

// addActualC2F passes a to both converting variants.
func (d *delegation) addActualC2F(a string) {
	d.actuals = append(d.actuals, a)
	d.c2fActuals = append(d.c2fActuals, a)
}

func (d *delegation) addCopy(stmt string) {
	d.copies = append(d.copies, "    "+stmt)
	d.c2fCopies = append(d.c2fCopies, "    "+stmt)
}

func (d *delegation) addWriteback(stmt string) {
	d.writebacks = append(d.writebacks, "    "+stmt)
	d.c2fWritebacks = append(d.c2fWritebacks, "    "+stmt)
}

func (d *delegation) addCopyMPI2(stmt string) { d.copies = append(d.copies, "    "+stmt) }

func (d *delegation) addWritebackMPI2(stmt string) { d.writebacks = append(d.writebacks, "    "+stmt) }

func (d *delegation) addCopyMPICHC2F(stmt string) { d.c2fCopies = append(d.c2fCopies, "    "+stmt) }

func (d *delegation) addWritebackMPICHC2F(stmt string) {
	d.c2fWritebacks = append(d.c2fWritebacks, "    "+stmt)
}

// lines joins items with a newline after each one.
func lines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}

func setLines(s *linkedhashset.Set) []string {
	items := make([]string, 0, s.Size())
	for _, v := range s.Values() {
		items = append(items, v.(string))
	}
	return items
}

func (d *delegation) call(actuals []string) string {
	return "    " + d.retVal + " = " + d.decl.Name + "(" + strings.Join(actuals, ", ") + ");\n"
}

// write emits the declaration of the result variable and the call. When
// every variant is the same plain call it is emitted alone; otherwise the
// variants are selected by preprocessor tests on the MPI implementation.
func (d *delegation) write(e *emitter, ignoreDeprecated bool) {
	mpichCall := d.call(d.mpichActuals)
	mpi2Call := d.call(d.actuals)
	c2fCall := d.call(d.c2fActuals)

	e.printf("    %s %s = 0;\n", d.decl.RetType, d.retVal)
	if ignoreDeprecated {
		e.print("    WRAP_MPI_CALL_PREFIX\n")
	}

	if mpichCall == mpi2Call && d.temps.Empty() && len(d.copies) == 0 && len(d.writebacks) == 0 {
		e.print(mpichCall)
	} else {
		e.print("#if (!defined(MPICH_HAS_C2F) && defined(MPICH_NAME) && (MPICH_NAME == 1)) /* MPICH test */\n")
		e.print("WRAP_MPI_CALL_PREFIX\n")
		e.print(mpichCall)
		e.print("WRAP_MPI_CALL_POSTFIX\n")
		e.print("#else /* MPI-2 safe call */\n")
		e.print(lines(setLines(d.temps)))
		if c2fCall != mpi2Call {
			e.print("# if defined(MPICH_NAME) && (MPICH_NAME == 1) /* MPICH test */\n")
			e.print(lines(d.c2fCopies))
			e.print("WRAP_MPI_CALL_PREFIX\n")
			e.print(c2fCall)
			e.print("WRAP_MPI_CALL_POSTFIX\n")
			e.print(lines(d.c2fWritebacks))
			e.print("# else /* MPI-2 safe call */\n")
		}
		e.print(lines(d.copies))
		e.print("WRAP_MPI_CALL_PREFIX\n")
		e.print(mpi2Call)
		e.print("WRAP_MPI_CALL_POSTFIX\n")
		e.print(lines(d.writebacks))
		if c2fCall != mpi2Call {
			e.print("# endif /* MPICH test */\n")
		}
		e.print(lines(setLines(d.frees)))
		e.print("#endif /* MPICH test */\n")
	}

	if ignoreDeprecated {
		e.print("    WRAP_MPI_CALL_POSTFIX\n")
	}
}

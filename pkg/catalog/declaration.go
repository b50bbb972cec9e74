package catalog

import (
	"fmt"
	"strings"
)

// Declaration is one catalog entry: a function's return type, name and
// ordered parameters. It is built once while reading the declaration text
// and not modified afterwards.
type Declaration struct {
	RetType string
	Name    string
	Params  []Param
}

// Args returns the parameters without a trailing ellipsis.
func (d *Declaration) Args() []Param {
	args := make([]Param, 0, len(d.Params))
	for _, p := range d.Params {
		if !p.IsEllipsis() {
			args = append(args, p)
		}
	}
	return args
}

// ArgNames returns the names of all non-variadic parameters.
func (d *Declaration) ArgNames() []string {
	var names []string
	for _, p := range d.Args() {
		names = append(names, p.Name)
	}
	return names
}

// Types returns the C type of every parameter, ellipsis included (as "").
func (d *Declaration) Types() []string {
	var types []string
	for _, p := range d.Params {
		types = append(types, p.CType())
	}
	return types
}

// Formals returns every parameter formatted as a C formal.
func (d *Declaration) Formals() []string {
	var formals []string
	for _, p := range d.Params {
		formals = append(formals, p.CFormal())
	}
	return formals
}

// HasType reports whether any parameter has exactly the given C type.
func (d *Declaration) HasType(ctype string) bool {
	for _, p := range d.Params {
		if p.CType() == ctype {
			return true
		}
	}
	return false
}

// ReturnsErrorCode is false only for the few calls (MPI_Wtime, MPI_Wtick,
// MPI_Aint_add, ...) that return a value instead of an int error code.
func (d *Declaration) ReturnsErrorCode() bool {
	return d.RetType == "int"
}

// IsHandleArray reports whether p is an array of handles whose length is
// given by another parameter of d.
func (d *Declaration) IsHandleArray(p Param) bool {
	_, ok := arrayCalls[d.Name][p.Pos]
	return ok
}

// CountParam returns the parameter holding the length of handle array p.
func (d *Declaration) CountParam(p Param) Param {
	return d.Params[arrayCalls[d.Name][p.Pos]]
}

// IsArrayIndexOutput reports whether p receives a single array index, or MPI_UNDEFINED.
func (d *Declaration) IsArrayIndexOutput(p Param) bool {
	pos, ok := indexOutputCalls[d.Name]
	return ok && pos == p.Pos
}

// IsArrayIndexArrayOutput reports whether p receives an array of array indices.
func (d *Declaration) IsArrayIndexArrayOutput(p Param) bool {
	_, ok := indexArrayOutputCalls[d.Name][p.Pos]
	return ok
}

// IndexCountParam returns the parameter holding the number of indices
// written to array-of-indices output p.
func (d *Declaration) IndexCountParam(p Param) Param {
	return d.Params[indexArrayOutputCalls[d.Name][p.Pos]]
}

// HasArrayIndexOutput reports whether d writes array indices that may be MPI_UNDEFINED.
func (d *Declaration) HasArrayIndexOutput() bool {
	_, single := indexOutputCalls[d.Name]
	_, multi := indexArrayOutputCalls[d.Name]
	return single || multi
}

// ArrayIndexOutputParam returns the parameter to test against MPI_UNDEFINED
// after the call: the index itself, or the count of an index array.
func (d *Declaration) ArrayIndexOutputParam() (Param, bool) {
	if pos, ok := indexOutputCalls[d.Name]; ok {
		return d.Params[pos], true
	}
	for _, countPos := range indexArrayOutputCalls[d.Name] {
		return d.Params[countPos], true
	}
	return Param{}, false
}

// IsInout reports whether handle p is read by the call as well as written,
// in which case its Fortran value must be converted before the call.
func (d *Declaration) IsInout(p Param) bool {
	return p.Type == "MPI_File" || inoutRE.MatchString(d.Name)
}

func modifierPrefix(modifiers []string) string {
	if len(modifiers) == 0 {
		return ""
	}
	return strings.Join(modifiers, " ") + " "
}

// Prototype returns the C prototype of d, without a trailing semicolon.
func (d *Declaration) Prototype(modifiers ...string) string {
	return fmt.Sprintf("%s%s %s(%s)", modifierPrefix(modifiers), d.RetType, d.Name, strings.Join(d.Formals(), ", "))
}

// PMPIPrototype returns the prototype of the profiling entry point P<name>.
func (d *Declaration) PMPIPrototype(modifiers ...string) string {
	return fmt.Sprintf("%s%s P%s(%s)", modifierPrefix(modifiers), d.RetType, d.Name, strings.Join(d.Formals(), ", "))
}

// stringLengths returns one suffix per char* parameter, in order. Fortran
// compilers pass the lengths of character arguments as trailing ints.
func (d *Declaration) stringLengths(format string) []string {
	var lens []string
	for _, p := range d.Params {
		if p.IsString() {
			lens = append(lens, fmt.Sprintf(format, p.Name))
		}
	}
	return lens
}

// FortranFormals returns the formals of a Fortran binding of d: the
// by-reference parameters, ierr for calls returning an error code, and one
// length per string parameter. MPI_Init takes no arguments from Fortran and
// MPI_Init_thread only required and provided.
func (d *Declaration) FortranFormals() []string {
	var formals []string
	switch d.Name {
	case "MPI_Init":
	case "MPI_Init_thread":
		formals = []string{"MPI_Fint *required", "MPI_Fint *provided"}
	default:
		for _, p := range d.Args() {
			formals = append(formals, p.FortranFormal())
		}
	}
	if d.ReturnsErrorCode() {
		formals = append(formals, "MPI_Fint *ierr")
	}
	return append(formals, d.stringLengths("int %s_len")...)
}

// FortranArgNames returns the actuals a Fortran binding passes to its delegate.
func (d *Declaration) FortranArgNames() []string {
	var names []string
	switch d.Name {
	case "MPI_Init":
	case "MPI_Init_thread":
		names = []string{"required", "provided"}
	default:
		names = d.ArgNames()
	}
	if d.ReturnsErrorCode() {
		names = append(names, "ierr")
	}
	return append(names, d.stringLengths("%s_len")...)
}

// FortranPrototype returns the prototype of a Fortran binding of d named
// name (d.Name when empty). Calls returning an error code return void and
// report through ierr instead.
func (d *Declaration) FortranPrototype(name string, modifiers ...string) string {
	if name == "" {
		name = d.Name
	}
	rtype := d.RetType
	if d.ReturnsErrorCode() {
		rtype = "void"
	}
	return fmt.Sprintf("%s%s %s(%s)", modifierPrefix(modifiers), rtype, name, strings.Join(d.FortranFormals(), ", "))
}

func (d *Declaration) String() string {
	return d.Prototype()
}

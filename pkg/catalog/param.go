package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Param describes one formal parameter of a Declaration. It is not a full C
// parse: the type, pointer markers, name and array suffix are kept as the
// strings they were written as, which is all the generator needs to print
// formals, casts and temporaries.
//
// A function-pointer parameter such as "void (*fn)(int)" is stored with
// Pointers "(*" and Array ")(int)", so that the formal prints back unchanged.
// A variadic "..." is a Param with an empty Type and Name "...".
type Param struct {
	Type     string // base type, may include a leading "const"
	Pointers string // "*", "**", "*const", ...
	Name     string // as declared, or arg_<Pos> when unnamed
	Array    string // "[]", "[][3]", ...
	Pos      int    // position in the declaration, counting the ellipsis
}

const ellipsis = "..."

var emptyBracketsRE = regexp.MustCompile(`\[\s*\]`)

// IsEllipsis reports whether p is the variadic tail of a declaration.
func (p Param) IsEllipsis() bool { return p.Name == ellipsis }

// IsHandle reports whether p has one of the builtin MPI handle types.
func (p Param) IsHandle() bool { return handleTypes[p.Type] }

// IsStatus reports whether p is an MPI_Status. Statuses convert through
// MPI_Status_f2c/c2f, which take pointers on both sides.
func (p Param) IsStatus() bool { return p.Type == "MPI_Status" }

// IsVoid reports whether p has base type void (buffers).
func (p Param) IsVoid() bool { return p.Type == "void" }

// IsString reports whether p is a plain char pointer. Deeper char pointers
// (MPI_Init's argv) are not strings.
func (p Param) IsString() bool { return p.Type == "char" && strings.Count(p.Pointers, "*") == 1 }

// IsIndirect reports whether p is passed through a pointer or as an array.
func (p Param) IsIndirect() bool { return p.Pointers != "" || p.Array != "" }

// IsFuncPointer reports whether p was declared with function-pointer syntax.
func (p Param) IsFuncPointer() bool { return strings.HasPrefix(p.Pointers, "(") }

// CType returns the parameter's type with its name removed, e.g. "int*" or "int[][3]".
func (p Param) CType() string {
	if p.Type == "" {
		return ""
	}
	return p.Type + p.Pointers + p.Array
}

// CFormal returns the parameter as it appears in a C prototype.
func (p Param) CFormal() string {
	if p.Type == "" {
		return p.Name
	}
	return fmt.Sprintf("%s %s%s%s", p.Type, p.Pointers, p.Name, p.Array)
}

// FortranFormal returns the parameter as it appears in a Fortran binding.
// Fortran passes everything by reference, so scalars become MPI_Fint
// pointers and arrays keep their array syntax.
func (p Param) FortranFormal() string {
	ftype := "MPI_Fint"
	if p.Type == "MPI_Aint" || p.Type == "char" || strings.HasSuffix(p.Type, "_function") || p.IsFuncPointer() {
		ftype = p.Type
	}

	pointers := "*"
	switch {
	case p.Pointers != "":
		pointers = p.Pointers
	case p.Array != "":
		pointers = ""
	}
	return fmt.Sprintf("%s %s%s%s", ftype, pointers, p.Name, p.Array)
}

// CastType returns a type p can be cast to from a Fortran pointer. Unsized
// leading array dimensions decay to pointers: int[] -> int*, int[][3] -> int(*)[3].
func (p Param) CastType() string {
	pointers, arr := p.Pointers, p.Array
	if emptyBracketsRE.MatchString(arr) {
		if strings.Count(arr, "[") > 1 {
			pointers += "(*)"
		} else {
			pointers += "*"
		}
		arr = emptyBracketsRE.ReplaceAllString(arr, "")
	}
	return p.Type + pointers + arr
}

func (p Param) String() string {
	return p.CFormal()
}

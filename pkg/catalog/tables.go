package catalog

import "regexp"

// returnTypes lists the return types a declaration must have to enter the
// catalog. MPI_Wtime/MPI_Wtick return double and MPI_Aint_add/MPI_Aint_diff
// return MPI_Aint; everything else of interest returns an int error code.
var returnTypes = []string{"int", "double", "MPI_Aint"}

// excludeStrings drops declarations mentioning any of these: handle
// conversion helpers, typedefs, the tools interface and spawn calls.
var excludeStrings = []string{"c2f", "f2c", "typedef", "MPI_T_", "MPI_Comm_spawn"}

// handleTypes are the opaque MPI handle types that need f2c/c2f conversion.
var handleTypes = map[string]bool{
	"MPI_Comm":       true,
	"MPI_Errhandler": true,
	"MPI_File":       true,
	"MPI_Group":      true,
	"MPI_Info":       true,
	"MPI_Op":         true,
	"MPI_Request":    true,
	"MPI_Status":     true,
	"MPI_Datatype":   true,
	"MPI_Win":        true,
}

// arrayCalls maps functions taking arrays of handles to a table of
// array parameter position -> position of the parameter holding its length.
var arrayCalls = map[string]map[int]int{
	"MPI_Startall":           {1: 0},
	"MPI_Testall":            {1: 0, 3: 0},
	"MPI_Testany":            {1: 0},
	"MPI_Testsome":           {1: 0, 4: 0},
	"MPI_Type_create_struct": {3: 0},
	"MPI_Type_get_contents":  {6: 1},
	"MPI_Type_struct":        {3: 0},
	"MPI_Waitall":            {1: 0, 2: 0},
	"MPI_Waitany":            {1: 0},
	"MPI_Waitsome":           {1: 0, 4: 0},
}

// indexOutputCalls maps functions that write a single array index (or
// MPI_UNDEFINED) through a pointer to that parameter's position.
var indexOutputCalls = map[string]int{
	"MPI_Testany": 2,
	"MPI_Waitany": 2,
}

// indexArrayOutputCalls maps functions that write an array of array indices
// to a table of array position -> position of the count it is sized by.
var indexArrayOutputCalls = map[string]map[int]int{
	"MPI_Testsome": {3: 2},
	"MPI_Waitsome": {3: 2},
}

// inoutRE matches function names whose handle pointer arguments are read as
// well as written, so the Fortran value must be converted before the call.
var inoutRE = regexp.MustCompile(`(commit|free|put|set_attr|delete_attr|set_name|_Wait|_Test|_Start)`)

// ConversionPrefix returns the MPI_<X> prefix of the f2c/c2f conversion
// functions for a handle type. MPI_Datatype converts through MPI_Type_f2c.
func ConversionPrefix(handleType string) string {
	if handleType == "MPI_Datatype" {
		return "MPI_Type"
	}
	return handleType
}

package wrapgen

import _ "embed"

// Front matter written at the head of generated C.
var (
	//go:embed prelude/includes.h
	wrapperIncludes string

	//go:embed prelude/fortran.h
	fortranIncludes string

	//go:embed prelude/pmpi_init.h
	pmpiInitDecls string

	//go:embed prelude/diagnostics.h
	diagnosticsMacros string
)

package wrapgen

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// InitBindings are the Fortran manglings of PMPI_Init a library may export.
var InitBindings = []string{"PMPI_INIT", "pmpi_init", "pmpi_init_", "pmpi_init__"}

// InitThreadBindings are the matching manglings of PMPI_Init_thread.
var InitThreadBindings = []string{"PMPI_INIT_THREAD", "pmpi_init_thread", "pmpi_init_thread_", "pmpi_init_thread__"}

// DefaultInitBinding is used when Options.PMPIInitBinding is empty.
const DefaultInitBinding = "pmpi_init_"

// Options configures what the generator emits.
type Options struct {
	Fortran          bool   // also emit Fortran bindings
	Guards           bool   // emit in_wrapper reentry guards
	SkipHeaders      bool   // no front matter; templates are not C
	IgnoreDeprecated bool   // bracket PMPI calls with WRAP_MPI_CALL_PREFIX/POSTFIX
	StaticDir        string // split output, one file per catalog entry
	PMPIInitBinding  string // Fortran PMPI_Init called from non-PIC code
}

// Validate checks the init binding and fills in its default.
func (o *Options) Validate() error {
	if o.PMPIInitBinding == "" {
		o.PMPIInitBinding = DefaultInitBinding
	}
	if !slices.Contains(InitBindings, o.PMPIInitBinding) {
		return fmt.Errorf("PMPI_Init binding must be one of: %s", strings.Join(InitBindings, " "))
	}
	return nil
}

// InitThreadBinding returns the PMPI_Init_thread mangling matching the
// configured PMPI_Init binding.
func (o *Options) InitThreadBinding() string {
	b := o.PMPIInitBinding
	if b == "" {
		b = DefaultInitBinding
	}
	b = strings.Replace(b, "mpi_init", "mpi_init_thread", 1)
	return strings.Replace(b, "MPI_INIT", "MPI_INIT_THREAD", 1)
}

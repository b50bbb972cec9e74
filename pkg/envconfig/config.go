package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LLNL/wrap/pkg/logutil"
)

var (
	// Set via WRAP_MPICC in the environment
	MPICC string
	// Set via WRAP_INCLUDES in the environment
	Includes []string
	// Set via WRAP_DEBUG in the environment
	LogLevel slog.Level
	// Set via WRAP_PMPI_INIT in the environment
	PMPIInitBinding string
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"WRAP_MPICC":     {"WRAP_MPICC", MPICC, "MPI compiler used to preprocess mpi.h (default \"mpicc\")"},
		"WRAP_INCLUDES":  {"WRAP_INCLUDES", Includes, "Extra include directories, separated like PATH"},
		"WRAP_DEBUG":     {"WRAP_DEBUG", LogLevel, "Show debug (1) or trace (2) logging"},
		"WRAP_PMPI_INIT": {"WRAP_PMPI_INIT", PMPIInitBinding, "Fortran pmpi_init binding for static libraries (default \"pmpi_init_\")"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// clean returns the value of key with surrounding quotes and spaces removed.
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	MPICC = clean("WRAP_MPICC")
	if MPICC == "" {
		MPICC = "mpicc"
	}

	Includes = nil
	if includes := clean("WRAP_INCLUDES"); includes != "" {
		for _, dir := range filepath.SplitList(includes) {
			if dir = strings.TrimSpace(dir); dir != "" {
				Includes = append(Includes, dir)
			}
		}
	}

	LogLevel = slog.LevelInfo
	if debug := clean("WRAP_DEBUG"); debug != "" {
		n, err := strconv.Atoi(debug)
		switch {
		case err != nil:
			if b, err := strconv.ParseBool(debug); err != nil || b {
				LogLevel = slog.LevelDebug
			}
		case n >= 2:
			LogLevel = logutil.LevelTrace
		case n == 1:
			LogLevel = slog.LevelDebug
		}
	}

	PMPIInitBinding = clean("WRAP_PMPI_INIT")
	if PMPIInitBinding == "" {
		PMPIInitBinding = "pmpi_init_"
	}
}

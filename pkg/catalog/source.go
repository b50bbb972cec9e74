package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultCompiler is the MPI compiler wrapper used to preprocess mpi.h.
const DefaultCompiler = "mpicc"

// Preprocessor runs an MPI compiler's C preprocessor over a translation
// unit containing only "#include <mpi.h>".
type Preprocessor struct {
	Compiler string   // may carry extra words, e.g. "mpicc -cc=clang"
	Includes []string // extra -I directories
}

func (p *Preprocessor) command(tmpName string) []string {
	compiler := p.Compiler
	if compiler == "" {
		compiler = DefaultCompiler
	}
	argv := strings.Fields(compiler)
	argv = append(argv, "-E")
	for _, dir := range p.Includes {
		if dir = strings.TrimSpace(dir); dir != "" {
			argv = append(argv, "-I"+dir)
		}
	}
	return append(argv, tmpName)
}

// Output runs the preprocessor to completion and returns what it printed.
// Any failure to run it is reported as ErrSourceUnavailable.
func (p *Preprocessor) Output(ctx context.Context) ([]byte, error) {
	tmp, err := os.CreateTemp("", "wrap-*.c")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString("#include <mpi.h>\n"); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	argv := p.command(tmp.Name())
	slog.Debug("running preprocessor", "command", strings.Join(argv, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: couldn't run '%s' for parsing mpi.h: %v: %s",
			ErrSourceUnavailable, strings.Join(argv[:len(argv)-1], " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Catalog preprocesses mpi.h and builds a catalog from the result.
func (p *Preprocessor) Catalog(ctx context.Context) (*Catalog, error) {
	out, err := p.Output(ctx)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(out))
}

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var declsPath = filepath.Join("..", "..", "pkg", "wrapgen", "testdata", "mpi_decls.h")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTemplate(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "wrap.w")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestGenerateToStdout(t *testing.T) {
	tmpl := writeTemplate(t, t.TempDir(), "{{fn func MPI_Send}}{{callfn}}{{endfn}}")

	got, err := execute(t, "-s", "--decls", declsPath, tmpl)
	require.NoError(t, err)
	assert.Contains(t, got, "_EXTERN_C_ int MPI_Send(void *buf, int count, MPI_Datatype datatype, int dest, int tag, MPI_Comm comm) { \n")
	assert.Contains(t, got, "_wrap_py_return_val = PMPI_Send(buf, count, datatype, dest, tag, comm);")
	assert.NotContains(t, got, "#include <mpi.h>")
}

func TestGenerateToFile(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeTemplate(t, dir, "{{fn func MPI_Comm_size}}{{callfn}}{{endfn}}")
	out := filepath.Join(dir, "wrap.c")

	stdout, err := execute(t, "-f", "-g", "--decls", declsPath, "-o", out, tmpl)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "static int in_wrapper = 0;")
	assert.Contains(t, string(data), "_EXTERN_C_ void MPI_COMM_SIZE(")
}

func TestGenerateFailureRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeTemplate(t, dir, "{{fn func MPI_Send}}{{callfn}}{{endfn}}\n{{fn func MPI_Nope}}{{endfn}}")
	out := filepath.Join(dir, "wrap.c")

	_, err := execute(t, "--decls", declsPath, "-o", out, tmpl)
	require.ErrorContains(t, err, "MPI_Nope is not an MPI function")
	require.True(t, strings.HasPrefix(err.Error(), tmpl+": "))

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "partial output left behind")
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeTemplate(t, dir, "{{fn func MPI_Send MPI_Comm_size}}{{callfn}}{{endfn}}")
	static := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(static, 0o755))

	_, err := execute(t, "--decls", declsPath, "-S", static, tmpl)
	require.NoError(t, err)
	for _, name := range []string{"wrap.c", "MPI_Send.c", "MPI_Comm_size.c"} {
		assert.FileExists(t, filepath.Join(static, name))
	}

	_, err = execute(t, "--decls", declsPath, "-S", filepath.Join(dir, "missing"), tmpl)
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	got, err := execute(t, "-d", "--decls", declsPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	assert.Len(t, lines, 11)
	assert.Equal(t, "int MPI_Send(void *buf, int count, MPI_Datatype datatype, int dest, int tag, MPI_Comm comm)", lines[0])
	assert.Contains(t, lines, "double MPI_Wtick()")

	got, err = execute(t, "-d", "--table", "--decls", declsPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "NAME"), got)
	assert.Contains(t, got, "MPI_Comm_size")
	assert.Contains(t, got, "MPI_Comm comm, int *size")
}

func TestUsageErrors(t *testing.T) {
	_, err := execute(t, "--decls", declsPath)
	assert.ErrorContains(t, err, "at least one template file is required")

	_, err = execute(t, "-i", "mpi_init", "--decls", declsPath, "x.w")
	assert.ErrorContains(t, err, "PMPI_Init binding must be one of")

	_, err = execute(t, "--decls", filepath.Join(t.TempDir(), "missing.h"), "x.w")
	assert.Error(t, err)

	_, err = execute(t, "--decls", declsPath, filepath.Join(t.TempDir(), "missing.w"))
	assert.Error(t, err)
}

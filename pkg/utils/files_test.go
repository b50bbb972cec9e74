package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathInfo(t *testing.T) {
	dir := t.TempDir()
	full, parent, err := GetPathInfo(filepath.Join(dir, "sub", "..", "wrap.w"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wrap.w"), full)
	assert.Equal(t, dir, parent)
}

func TestRequireDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.NoError(t, RequireDir(dir))
	assert.ErrorContains(t, RequireDir(file), "is not a directory")
	assert.Error(t, RequireDir(filepath.Join(dir, "missing")))
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.w")
	require.NoError(t, os.WriteFile(a, []byte("{{fn f MPI_Send}}{{endfn}}"), 0o644))

	got, err := ReadSources([]string{a})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{a: "{{fn f MPI_Send}}{{endfn}}"}, got)

	_, err = ReadSources([]string{a, filepath.Join(dir, "missing.w")})
	assert.Error(t, err)
}

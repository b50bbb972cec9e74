package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classificationHeader = `
int MPI_Send(void *buf, int count, MPI_Datatype datatype, int dest, int tag, MPI_Comm comm);
int MPI_Waitany(int count, MPI_Request array_of_requests[], int *indx, MPI_Status *status);
int MPI_Waitsome(int incount, MPI_Request array_of_requests[], int *outcount, int array_of_indices[], MPI_Status array_of_statuses[]);
int MPI_Comm_set_name(MPI_Comm comm, char *comm_name);
int MPI_Init(int *argc, char ***argv);
int MPI_Init_thread(int *argc, char ***argv, int required, int *provided);
double MPI_Wtick(void);
int MPI_Type_commit(MPI_Datatype *datatype);
int MPI_Comm_size(MPI_Comm comm, int *size);
`

func loadClassification(t *testing.T) *Catalog {
	t.Helper()
	c, err := Build(strings.NewReader(classificationHeader))
	require.NoError(t, err)
	return c
}

func lookup(t *testing.T, c *Catalog, name string) *Declaration {
	t.Helper()
	d, ok := c.Lookup(name)
	require.True(t, ok, "missing %s", name)
	return d
}

func TestPrototypes(t *testing.T) {
	c := loadClassification(t)
	send := lookup(t, c, "MPI_Send")

	assert.Equal(t,
		"_EXTERN_C_ int MPI_Send(void *buf, int count, MPI_Datatype datatype, int dest, int tag, MPI_Comm comm)",
		send.Prototype("_EXTERN_C_"))
	assert.Equal(t,
		"_EXTERN_C_ int PMPI_Send(void *buf, int count, MPI_Datatype datatype, int dest, int tag, MPI_Comm comm)",
		send.PMPIPrototype("_EXTERN_C_"))
	assert.Equal(t,
		"static void MPI_Send_fortran_wrapper(MPI_Fint *buf, MPI_Fint *count, MPI_Fint *datatype, MPI_Fint *dest, MPI_Fint *tag, MPI_Fint *comm, MPI_Fint *ierr)",
		send.FortranPrototype("MPI_Send_fortran_wrapper", "static"))
	assert.Equal(t, []string{"buf", "count", "datatype", "dest", "tag", "comm", "ierr"}, send.FortranArgNames())
	assert.Equal(t, []string{"void*", "int", "MPI_Datatype", "int", "int", "MPI_Comm"}, send.Types())
}

func TestFortranSpecialCases(t *testing.T) {
	c := loadClassification(t)

	setName := lookup(t, c, "MPI_Comm_set_name")
	assert.Equal(t, []string{"MPI_Fint *comm", "char *comm_name", "MPI_Fint *ierr", "int comm_name_len"}, setName.FortranFormals())
	assert.Equal(t, []string{"comm", "comm_name", "ierr", "comm_name_len"}, setName.FortranArgNames())

	initDecl := lookup(t, c, "MPI_Init")
	assert.Equal(t, "void MPI_INIT(MPI_Fint *ierr)", initDecl.FortranPrototype("MPI_INIT"))
	assert.Equal(t, []string{"ierr"}, initDecl.FortranArgNames())

	initThread := lookup(t, c, "MPI_Init_thread")
	assert.Equal(t, []string{"MPI_Fint *required", "MPI_Fint *provided", "MPI_Fint *ierr"}, initThread.FortranFormals())

	wtick := lookup(t, c, "MPI_Wtick")
	assert.False(t, wtick.ReturnsErrorCode())
	assert.Equal(t, "double mpi_wtick_()", wtick.FortranPrototype("mpi_wtick_"))
}

func TestClassification(t *testing.T) {
	c := loadClassification(t)

	waitany := lookup(t, c, "MPI_Waitany")
	assert.True(t, waitany.IsHandleArray(waitany.Params[1]))
	assert.Equal(t, "count", waitany.CountParam(waitany.Params[1]).Name)
	assert.True(t, waitany.IsArrayIndexOutput(waitany.Params[2]))
	assert.False(t, waitany.IsArrayIndexOutput(waitany.Params[3]))
	assert.True(t, waitany.HasArrayIndexOutput())
	idx, ok := waitany.ArrayIndexOutputParam()
	require.True(t, ok)
	assert.Equal(t, "indx", idx.Name)

	waitsome := lookup(t, c, "MPI_Waitsome")
	assert.True(t, waitsome.IsArrayIndexArrayOutput(waitsome.Params[3]))
	assert.Equal(t, "outcount", waitsome.IndexCountParam(waitsome.Params[3]).Name)
	assert.True(t, waitsome.IsHandleArray(waitsome.Params[4]))
	assert.Equal(t, "incount", waitsome.CountParam(waitsome.Params[4]).Name)
	cnt, ok := waitsome.ArrayIndexOutputParam()
	require.True(t, ok)
	assert.Equal(t, "outcount", cnt.Name)

	send := lookup(t, c, "MPI_Send")
	assert.False(t, send.HasArrayIndexOutput())
	_, ok = send.ArrayIndexOutputParam()
	assert.False(t, ok)
	assert.True(t, send.Params[5].IsHandle())
	assert.False(t, send.Params[0].IsHandle())
	assert.True(t, send.Params[0].IsVoid())

	commit := lookup(t, c, "MPI_Type_commit")
	assert.True(t, commit.IsInout(commit.Params[0]))
	size := lookup(t, c, "MPI_Comm_size")
	assert.False(t, size.IsInout(size.Params[0]))

	initDecl := lookup(t, c, "MPI_Init")
	assert.False(t, initDecl.Params[1].IsString())
	setName := lookup(t, c, "MPI_Comm_set_name")
	assert.True(t, setName.Params[1].IsString())
}

func TestCastType(t *testing.T) {
	tests := []struct {
		param    Param
		expected string
	}{
		{Param{Type: "int", Pointers: "*", Name: "x"}, "int*"},
		{Param{Type: "int", Name: "x", Array: "[]"}, "int*"},
		{Param{Type: "int", Name: "x", Array: "[][3]"}, "int(*)[3]"},
		{Param{Type: "const void", Pointers: "*", Name: "buf"}, "const void*"},
		{Param{Type: "MPI_Aint", Name: "x", Array: "[4]"}, "MPI_Aint[4]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.param.CastType(), tt.param.CFormal())
	}
}

func TestCatalogQueries(t *testing.T) {
	c := loadClassification(t)

	assert.Equal(t, []string{"MPI_Comm_set_name", "MPI_Comm_size", "MPI_Init", "MPI_Init_thread",
		"MPI_Type_commit", "MPI_Waitany", "MPI_Waitsome", "MPI_Wtick"}, c.AllBut([]string{"MPI_Send"}))
	assert.Equal(t, []string{"MPI_Send", "MPI_Comm_set_name", "MPI_Comm_size"}, c.WithType("MPI_Comm"))
	assert.Equal(t, 9, c.Len())
	assert.Len(t, c.Declarations(), 9)
	_, ok := c.Lookup("MPI_Nope")
	assert.False(t, ok)
}

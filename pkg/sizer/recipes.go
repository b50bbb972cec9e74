package sizer

import (
	"fmt"
	"strings"
)

// params holds the C expressions a recipe is filled with, keyed by recipe
// parameter name, plus "dir".
type params map[string]string

func (p params) has(key string) bool {
	_, ok := p[key]
	return ok
}

// recipe renders the C block that sets _size_<dir>.
type recipe func(p params) string

var recipes = map[string]recipe{
	"singleelem":  singleElem,
	"singlevalue": singleValue,
	"typecount":   typeCount,
	"withall":     withAll,
	"withallv":    withAllV,
	"withallw":    withAllW,
}

func header(dir string) string {
	return fmt.Sprintf("\n    size_t _size_%s = 0;\n    {\n", dir)
}

// rootGuard restricts the block to the root rank of a rooted collective.
func rootGuard(p params) string {
	if !p.has("root") {
		return ""
	}
	return fmt.Sprintf("\n    int _rank = 0;\n    PMPI_Comm_rank(%s, &_rank);\n    if( _rank == %s)\n", p["comm"], p["root"])
}

// commSize sets _csize to the number of peers: neighbors on a topology, or
// the communicator size.
func commSize(p params) string {
	if p.has("isneigh") {
		return fmt.Sprintf("    _csize = topo_neigh_count(%s);\n", p["comm"])
	}
	return fmt.Sprintf("    PMPI_Comm_size(%s, &_csize);\n", p["comm"])
}

func singleElem(p params) string {
	return fmt.Sprintf(`
    size_t _size_%[1]s = 0;
    {
        MPI_Count _tsize = 0;
        PMPI_Type_size_x(%[2]s, &_tsize);
        _size_%[1]s = _tsize;
    }
    `, p["dir"], p["type"])
}

func singleValue(p params) string {
	return fmt.Sprintf(`
    size_t _size_%[1]s = 0;
    {
        _size_%[1]s = %[2]s;
    }
    `, p["dir"], p["arg"])
}

func typeCount(p params) string {
	var b strings.Builder
	b.WriteString(header(p["dir"]))
	if p.has("root") {
		comp := "="
		if p.has("notroot") {
			comp = "!"
		}
		fmt.Fprintf(&b, "\n        int _rank = 0;\n        PMPI_Comm_rank(%s, &_rank);\n        if( _rank %s= %s)", p["comm"], comp, p["root"])
	}
	fmt.Fprintf(&b, `
        {
            MPI_Count _tsize = 0;
            PMPI_Type_size_x(%s, &_tsize);
            _size_%s = %s * _tsize;
        }
    }
    `, p["type"], p["dir"], p["count"])
	return b.String()
}

func withAll(p params) string {
	var b strings.Builder
	b.WriteString(header(p["dir"]))
	b.WriteString(rootGuard(p))
	fmt.Fprintf(&b, `
        {
            MPI_Count _tsize = 0;
            PMPI_Type_size_x(%s, &_tsize);
            int _csize = 0;
    `, p["type"])
	b.WriteString(commSize(p))
	fmt.Fprintf(&b, `
            _size_%s = %s * _tsize * _csize;
        }
    }
    `, p["dir"], p["count"])
	return b.String()
}

func withAllV(p params) string {
	var b strings.Builder
	b.WriteString(header(p["dir"]))
	b.WriteString(rootGuard(p))
	fmt.Fprintf(&b, `
        {
            MPI_Count _tsize = 0;
            PMPI_Type_size_x(%s, &_tsize);
            int _csize = 0;
        `, p["type"])
	b.WriteString(commSize(p))
	fmt.Fprintf(&b, `
            size_t _total_count = 0;
            int i;
            for(i = 0 ; i < _csize; i++)
            {
                _total_count += %s[i];
            }
            _size_%s = _total_count * _tsize;
        }
    }
    `, p["allcounts"], p["dir"])
	return b.String()
}

func withAllW(p params) string {
	var b strings.Builder
	b.WriteString(header(p["dir"]))
	b.WriteString(rootGuard(p))
	b.WriteString(`
        {
            int _csize = 0;
        `)
	b.WriteString(commSize(p))
	fmt.Fprintf(&b, `
            size_t _total_size = 0;
            int i;
            for(i = 0 ; i < _csize; i++)
            {
                MPI_Count _tsize = 0;
                PMPI_Type_size_x(%s[i], &_tsize);
                _total_size += %s[i] * _tsize;
            }
            _size_%s = _total_size;
        }
    }
    `, p["alltypes"], p["allcounts"], p["dir"])
	return b.String()
}

// Package catalog extracts MPI function signatures from preprocessed header
// text and answers the classification questions the wrapper generator asks
// about their parameters.
//
// Pipeline: mpicc -E → Build → Catalog (name → Declaration)
package catalog

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"golang.org/x/exp/slices"
)

// Catalog maps function names to declarations. Iteration follows the order
// the declarations appeared in the source text.
type Catalog struct {
	decls *linkedhashmap.Map
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{decls: linkedhashmap.New()}
}

// Add inserts d, replacing any earlier declaration of the same name in place.
func (c *Catalog) Add(d *Declaration) {
	c.decls.Put(d.Name, d)
}

// Lookup returns the declaration named name.
func (c *Catalog) Lookup(name string) (*Declaration, bool) {
	v, ok := c.decls.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Declaration), true
}

// Len returns the number of declarations.
func (c *Catalog) Len() int {
	return c.decls.Size()
}

// Names returns every function name in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, c.decls.Size())
	for _, k := range c.decls.Keys() {
		names = append(names, k.(string))
	}
	return names
}

// Declarations returns every declaration in declaration order.
func (c *Catalog) Declarations() []*Declaration {
	decls := make([]*Declaration, 0, c.decls.Size())
	for _, v := range c.decls.Values() {
		decls = append(decls, v.(*Declaration))
	}
	return decls
}

// AllBut returns the sorted names of every declaration not listed in exclude.
func (c *Catalog) AllBut(exclude []string) []string {
	var names []string
	for _, name := range c.Names() {
		if !slices.Contains(exclude, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// WithType returns, in declaration order, the names of declarations having a
// parameter of exactly the given C type.
func (c *Catalog) WithType(ctype string) []string {
	var names []string
	for _, d := range c.Declarations() {
		if d.HasType(ctype) {
			names = append(names, d.Name)
		}
	}
	return names
}

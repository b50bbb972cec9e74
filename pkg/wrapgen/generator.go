// Package wrapgen expands wrapper templates against a catalog of MPI
// declarations into C (and optionally Fortran) PMPI interposition code.
//
// Templates are parsed by package template and evaluated by package macro;
// wrapgen supplies the macros that iterate over catalog entries, emit the
// wrapper skeletons around each body and marshal Fortran arguments.
package wrapgen

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/LLNL/wrap/pkg/catalog"
	"github.com/LLNL/wrap/pkg/macro"
	"github.com/LLNL/wrap/pkg/outfs"
	"github.com/LLNL/wrap/pkg/sizer"
	"github.com/LLNL/wrap/pkg/template"
)

// Sizer renders C snippets computing the bytes an MPI call moves. fn is
// the call and args the C expressions of its arguments.
type Sizer interface {
	SizeIn(fn string, args []string) (string, error)
	SizeOut(fn string, args []string) (string, error)
	Total(fn string, args []string) (string, error)
	Helpers() string
}

// Template is one template file.
type Template struct {
	Name   string
	Source string
}

// Generator holds the state of one run. Templates are expanded in order
// into the same output set and share the fn_num counter, the decls text
// and the once-per-run declarations.
type Generator struct {
	opts   Options
	cat    *catalog.Catalog
	out    *outfs.Set
	sizer  Sizer
	macros macro.Table
	decls  string
	once   map[string]bool
}

// New returns a generator expanding templates against cat into out.
func New(cat *catalog.Catalog, out *outfs.Set, opts Options) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.StaticDir != "" && !out.Split() {
		return nil, errors.New("split output needs an output set with a directory")
	}

	sz, err := sizer.New()
	if err != nil {
		return nil, err
	}

	g := &Generator{
		opts:  opts,
		cat:   cat,
		out:   out,
		sizer: sz,
		once:  make(map[string]bool),
	}
	g.macros = g.table()
	return g, nil
}

// SetSizer replaces the size recipes used by the size macros.
func (g *Generator) SetSizer(s Sizer) {
	g.sizer = s
}

// Macros returns the macros available to templates.
func (g *Generator) Macros() macro.Table {
	return g.macros
}

// WriteFrontMatter writes the includes and global declarations generated
// code depends on.
func (g *Generator) WriteFrontMatter() error {
	e := newEmitter(g.out.Main())
	if !g.opts.SkipHeaders {
		e.print(wrapperIncludes)
		if g.opts.Guards {
			if g.opts.StaticDir != "" {
				e.print("int in_wrapper = 0;\n")
			} else {
				e.print("static int in_wrapper = 0;\n")
			}
		}
		if g.opts.Fortran {
			e.print(fortranIncludes)
		}
		if g.opts.StaticDir == "" {
			e.print(pmpiInitDecls)
		}
	}
	if g.opts.IgnoreDeprecated {
		e.print(diagnosticsMacros)
	}
	return e.err
}

// Run parses and expands one template. fileno is bound in its outer scope.
func (g *Generator) Run(t Template, fileno int) error {
	chunks, err := template.Parse(t.Source, g.macros.IsBody, !g.opts.SkipHeaders)
	if err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	slog.Debug("parsed template", "file", t.Name, "chunks", len(chunks))

	outer := macro.NewScope(nil)
	outer.Set("fileno", macro.Int(fileno))
	outer.Include(g.macros.Values())

	for _, c := range chunks {
		if err := macro.Evaluate(g.out.Main(), macro.NewScope(outer), c); err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
	}
	return nil
}

// Generate writes the front matter and expands every template in order.
func (g *Generator) Generate(templates []Template) error {
	if err := g.WriteFrontMatter(); err != nil {
		return err
	}
	for i, t := range templates {
		if err := g.Run(t, i); err != nil {
			return err
		}
	}
	return nil
}

// entry returns the split-mode file for name, seeding it on first use.
func (g *Generator) entry(name string) (io.Writer, error) {
	return g.out.Entry(name, g.entryHeader)
}

func (g *Generator) entryHeader() string {
	header := wrapperIncludes
	if g.opts.Fortran {
		header += fortranIncludes
	}
	header += g.decls
	if g.opts.Guards {
		header += "extern int in_wrapper;\n"
	}
	return header
}

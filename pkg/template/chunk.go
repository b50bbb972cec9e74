package template

import (
	"fmt"
	"io"
	"strings"
)

// Chunk is a node of a parsed template: literal text when Macro is empty,
// otherwise a macro invocation. Only body macros have Children, which hold
// everything up to but excluding the matching end marker.
type Chunk struct {
	Macro    string
	Args     []Arg
	Text     string
	Children []*Chunk
	Line     int
}

// Arg is one macro argument: a literal identifier, or a nested invocation
// whose value is computed at evaluation time.
type Arg struct {
	Literal string
	Chunk   *Chunk
}

// IsText reports whether c is a literal text leaf.
func (c *Chunk) IsText() bool { return c.Macro == "" }

func (a Arg) String() string {
	if a.Chunk != nil {
		return a.Chunk.String()
	}
	return a.Literal
}

func (c *Chunk) String() string {
	if c.IsText() {
		return "TEXT"
	}
	parts := []string{c.Macro}
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return "{{" + strings.Join(parts, " ") + "}}"
}

// Dump writes an indented outline of chunks, one node per line.
func Dump(w io.Writer, chunks []*Chunk) {
	dump(w, chunks, 0)
}

func dump(w io.Writer, chunks []*Chunk, level int) {
	for _, c := range chunks {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", level), c)
		dump(w, c.Children, level+1)
	}
}

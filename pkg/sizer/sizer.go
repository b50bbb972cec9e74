// Package sizer emits C snippets that compute how many bytes an MPI call
// sends or receives. Each known call maps to one of a handful of recipes
// filled with the caller's argument expressions; the mapping is a static
// table embedded from recipes.yaml.
package sizer

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed recipes.yaml
var recipesYAML []byte

//go:embed helpers.c
var helpersC string

// Direction selects the data flowing into (in) or out of (out) the caller.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Entry maps one call to a recipe. Args gives, for each recipe parameter,
// the position of the call argument that supplies it.
type Entry struct {
	Recipe string         `mapstructure:"recipe"`
	Args   map[string]int `mapstructure:"args"`
}

// Table holds the entries of each direction, keyed by function name.
type Table map[Direction]map[string]Entry

// Load decodes a recipe table and checks that every entry names a known
// recipe.
func Load(data []byte) (Table, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("recipe table: %w", err)
	}

	var table Table
	if err := mapstructure.Decode(raw, &table); err != nil {
		return nil, fmt.Errorf("recipe table: %w", err)
	}
	for dir, entries := range table {
		if dir != In && dir != Out {
			return nil, fmt.Errorf("recipe table: unknown direction %q", dir)
		}
		for fn, e := range entries {
			if _, ok := recipes[e.Recipe]; !ok {
				return nil, fmt.Errorf("recipe table: %s %s: unknown recipe %q", dir, fn, e.Recipe)
			}
		}
	}
	return table, nil
}

// Sizer renders size snippets from a Table.
type Sizer struct {
	table Table
}

// New returns a Sizer over the embedded table.
func New() (*Sizer, error) {
	table, err := Load(recipesYAML)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded size recipes", "in", len(table[In]), "out", len(table[Out]))
	return &Sizer{table: table}, nil
}

// NewFromTable returns a Sizer over table.
func NewFromTable(table Table) *Sizer {
	return &Sizer{table: table}
}

// Functions returns the sorted names of the calls with a recipe for dir.
func (s *Sizer) Functions(dir Direction) []string {
	names := maps.Keys(s.table[dir])
	slices.Sort(names)
	return names
}

// Size returns the snippet declaring and setting _size_<dir> for a call to
// fn whose arguments are the C expressions args. Calls without a recipe
// get a size of zero.
func (s *Sizer) Size(dir Direction, fn string, args []string) (string, error) {
	e, ok := s.table[dir][fn]
	if !ok {
		return fmt.Sprintf("    size_t _size_%s = 0;\n", dir), nil
	}

	p := params{"dir": string(dir)}
	for name, pos := range e.Args {
		if pos < 0 || pos >= len(args) {
			return "", fmt.Errorf("size recipe for %s needs argument %d (%s), call has %d", fn, pos, name, len(args))
		}
		p[name] = args[pos]
	}
	return recipes[e.Recipe](p), nil
}

// SizeIn is Size(In, ...).
func (s *Sizer) SizeIn(fn string, args []string) (string, error) {
	return s.Size(In, fn, args)
}

// SizeOut is Size(Out, ...).
func (s *Sizer) SizeOut(fn string, args []string) (string, error) {
	return s.Size(Out, fn, args)
}

// Total returns both directions followed by their sum in _size.
func (s *Sizer) Total(fn string, args []string) (string, error) {
	in, err := s.SizeIn(fn, args)
	if err != nil {
		return "", err
	}
	out, err := s.SizeOut(fn, args)
	if err != nil {
		return "", err
	}
	return in + out + "\n    size_t _size = _size_in + _size_out;", nil
}

// Helpers returns the C support functions the recipes call, such as
// topo_neigh_count. Emit them once, ahead of any wrapper.
func (s *Sizer) Helpers() string {
	return helpersC
}

package macro

import "fmt"

// Scope maps names to values and defers to its enclosing scope for names
// it does not bind. A scope lives for one expansion: the top-level scope
// for one template file, and a fresh child for every macro invocation and
// every catalog entry iterated over.
type Scope struct {
	vars     map[string]Value
	parent   *Scope
	function string // catalog entry whose signature this scope binds
}

// NewScope returns an empty scope enclosed by parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]Value), parent: parent}
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Get returns the value bound to name here or in an enclosing scope.
func (s *Scope) Get(name string) (Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup is Get that fails for unbound names.
func (s *Scope) Lookup(name string) (Value, error) {
	v, ok := s.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s is not in scope", name)
	}
	return v, nil
}

// Contains reports whether name is bound here or in an enclosing scope.
func (s *Scope) Contains(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Set binds name in this scope, shadowing any enclosing binding.
func (s *Scope) Set(name string, v Value) {
	s.vars[name] = v
}

// Include binds every entry of m in this scope.
func (s *Scope) Include(m map[string]Value) {
	for k, v := range m {
		s.vars[k] = v
	}
}

// SetFunction records the catalog entry this scope expands.
func (s *Scope) SetFunction(name string) {
	s.function = name
}

// Function returns the catalog entry being expanded by this scope or the
// nearest enclosing scope that has one, or "".
func (s *Scope) Function() string {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.function != "" {
			return sc.function
		}
	}
	return ""
}

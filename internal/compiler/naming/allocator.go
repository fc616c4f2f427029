// Package naming mints unique, keyword-safe identifiers for inferred types
// and fields.
package naming

import (
	"strconv"
)

// collisionSuffix separates a base name from its collision counter
const collisionSuffix = "Type"

// Scope is one namespace: the global top level, the names nested in one
// enclosing type, or the field names of one type.
type Scope struct {
	owner string
	taken map[string]struct{}
	next  map[string]int
}

// NewScope creates an empty scope owned by the given qualified name
func NewScope(owner string) *Scope {
	return &Scope{
		owner: owner,
		taken: make(map[string]struct{}),
		next:  make(map[string]int),
	}
}

// Owner returns the qualified name of the type owning the scope, empty for the global scope
func (s *Scope) Owner() string {
	return s.owner
}

// Contains reports whether name has already been handed out
func (s *Scope) Contains(name string) bool {
	_, ok := s.taken[name]
	return ok
}

// Len returns the number of names handed out
func (s *Scope) Len() int {
	return len(s.taken)
}

// Allocate sanitizes base and returns a name not yet used in the scope.
// Collisions get a deterministic suffix: Foo, FooType2, FooType3, ...
func (s *Scope) Allocate(base string) string {
	name := Sanitize(base)
	if !s.Contains(name) {
		s.taken[name] = struct{}{}
		return name
	}

	n := s.next[name]
	if n < 2 {
		n = 2
	}
	for {
		candidate := name + collisionSuffix + strconv.Itoa(n)
		n++
		if !s.Contains(candidate) {
			s.next[name] = n
			s.taken[candidate] = struct{}{}
			return candidate
		}
	}
}

// Allocator owns every scope of one analysis run
type Allocator struct {
	global *Scope
	nested map[string]*Scope
}

// NewAllocator creates an allocator with an empty global scope
func NewAllocator() *Allocator {
	return &Allocator{
		global: NewScope(""),
		nested: make(map[string]*Scope),
	}
}

// Global returns the top-level scope
func (a *Allocator) Global() *Scope {
	return a.global
}

// Nested returns the scope of names nested in the type with the given
// qualified name, creating it on first use. The empty owner is the global scope.
func (a *Allocator) Nested(owner string) *Scope {
	if owner == "" {
		return a.global
	}
	scope, ok := a.nested[owner]
	if !ok {
		scope = NewScope(owner)
		a.nested[owner] = scope
	}
	return scope
}

// Allocate returns a unique name for base within scope
func (a *Allocator) Allocate(base string, scope *Scope) string {
	if scope == nil {
		scope = a.global
	}
	return scope.Allocate(base)
}

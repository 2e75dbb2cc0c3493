// Package state holds what the rule engine accumulates over one schema
// document: declared names, field type references, copyField edges and the
// uniqueKey capture. A State lives for exactly one run.
package state

import (
	"iter"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Position is a 1-based line and column in the schema document.
// The zero value means unknown.
type Position struct {
	Line   int
	Column int
}

// State is the accumulated state of one validation run.
type State struct {
	Names     Names
	Types     TypeRefs
	Copies    CopyEdges
	UniqueKey UniqueKey
}

// New returns empty state.
func New() *State {
	return &State{
		Names: Names{keys: sets.New[string]()},
		Types: TypeRefs{index: make(map[string]int)},
	}
}

// Names is the registry of declared "<kind>:<name>" keys.
type Names struct {
	keys sets.Set[string]
}

// Key builds the composite registry key for a declaration.
func Key(kind, name string) string {
	return kind + ":" + name
}

// Has reports whether name was declared under kind.
func (n *Names) Has(kind, name string) bool {
	return n.keys.Has(Key(kind, name))
}

// Add registers name under kind. It reports false if the key already existed.
func (n *Names) Add(kind, name string) bool {
	key := Key(kind, name)
	if n.keys.Has(key) {
		return false
	}
	n.keys.Insert(key)
	return true
}

// Len reports the number of distinct keys registered.
func (n *Names) Len() int { return n.keys.Len() }

// TypeRef is a field's reference to a fieldType.
type TypeRef struct {
	Element string
	Field   string
	Type    string
	Pos     Position
}

// TypeRefs maps field names to referenced types, in declaration order.
type TypeRefs struct {
	refs  []TypeRef
	index map[string]int
}

// Add records ref. It reports false, leaving the first record in place, if
// the field already has a type.
func (r *TypeRefs) Add(ref TypeRef) bool {
	if _, ok := r.index[ref.Field]; ok {
		return false
	}
	r.index[ref.Field] = len(r.refs)
	r.refs = append(r.refs, ref)
	return true
}

// Lookup returns the type recorded for field.
func (r *TypeRefs) Lookup(field string) (TypeRef, bool) {
	i, ok := r.index[field]
	if !ok {
		return TypeRef{}, false
	}
	return r.refs[i], true
}

// All yields references in declaration order.
func (r *TypeRefs) All() iter.Seq[TypeRef] { return slices.Values(r.refs) }

// Len reports the number of recorded references.
func (r *TypeRefs) Len() int { return len(r.refs) }

// CopyEdge is one copyField declaration.
type CopyEdge struct {
	Source string
	Dest   string
	Pos    Position
}

// CopyEdges is the ordered list of copyField declarations.
type CopyEdges struct {
	edges []CopyEdge
}

// Add appends an edge.
func (c *CopyEdges) Add(edge CopyEdge) { c.edges = append(c.edges, edge) }

// All yields edges in declaration order.
func (c *CopyEdges) All() iter.Seq[CopyEdge] { return slices.Values(c.edges) }

// Len reports the number of edges.
func (c *CopyEdges) Len() int { return len(c.edges) }

// UniqueKey tracks the uniqueKey element and the field name it designates.
type UniqueKey struct {
	name     string
	pos      Position
	pending  bool
	captured bool
}

// Open marks that the next character data names the unique key.
func (u *UniqueKey) Open(pos Position) {
	u.pending = true
	u.pos = pos
}

// Pending reports whether a uniqueKey element awaits its text.
func (u *UniqueKey) Pending() bool { return u.pending }

// Capture stores name and clears the pending flag.
func (u *UniqueKey) Capture(name string) {
	u.name = name
	u.captured = true
	u.pending = false
}

// Close clears the pending flag without capturing.
func (u *UniqueKey) Close() { u.pending = false }

// Name returns the captured field name and whether one was captured.
func (u *UniqueKey) Name() (string, bool) { return u.name, u.captured }

// Pos returns where the uniqueKey element started.
func (u *UniqueKey) Pos() Position { return u.pos }

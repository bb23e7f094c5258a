// Package registry collects validated producer entries for one generation
// pass, grouped by the interface they implement.
//
// Iteration order is first-registration order. That order is the dispatch
// precedence of the generated factory, so it must stay deterministic.
// A Registry is not safe for concurrent use; every pass owns its own.
package registry

import (
	"iter"

	"github.com/Alia5/factorygen/internal/codegen/meta"
)

type group struct {
	iface   meta.InterfaceRef
	entries []meta.Entry
	index   map[string]int // qualified producer name -> position in entries
}

// Registry is an insertion-ordered set of entries keyed by qualified
// producer name within each interface group.
type Registry struct {
	groups map[string]*group // qualified interface name -> group
	order  []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{groups: make(map[string]*group)}
}

// Add inserts e under its interface group. Registering a producer that is
// already present in the group is a no-op and reports false; the first
// registration wins and keeps its position.
func (r *Registry) Add(e meta.Entry) bool {
	key := e.Interface().QualifiedName()
	g, ok := r.groups[key]
	if !ok {
		g = &group{iface: e.Interface(), index: make(map[string]int)}
		r.groups[key] = g
		r.order = append(r.order, key)
	}
	if _, dup := g.index[e.QualifiedName()]; dup {
		return false
	}
	g.index[e.QualifiedName()] = len(g.entries)
	g.entries = append(g.entries, e)
	return true
}

// Clear drops every entry so the registry can be reused for a new pass.
func (r *Registry) Clear() {
	clear(r.groups)
	r.order = r.order[:0]
}

// Len returns the number of entries across all groups.
func (r *Registry) Len() int {
	n := 0
	for _, g := range r.groups {
		n += len(g.entries)
	}
	return n
}

// Interfaces returns the registered interfaces in first-seen order.
func (r *Registry) Interfaces() []meta.InterfaceRef {
	out := make([]meta.InterfaceRef, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.groups[key].iface)
	}
	return out
}

// EntriesFor yields the entries registered for iface in registration order.
// iface is the qualified interface name ("example.com/app/fruits.Fruit");
// a bare simple name is accepted when exactly one group has it. The
// sequence can be ranged over any number of times.
func (r *Registry) EntriesFor(iface string) iter.Seq[meta.Entry] {
	g := r.lookup(iface)
	return func(yield func(meta.Entry) bool) {
		if g == nil {
			return
		}
		for _, e := range g.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries registered for iface.
func (r *Registry) Entries(iface string) []meta.Entry {
	var out []meta.Entry
	for e := range r.EntriesFor(iface) {
		out = append(out, e)
	}
	return out
}

func (r *Registry) lookup(iface string) *group {
	if g, ok := r.groups[iface]; ok {
		return g
	}
	var found *group
	for _, key := range r.order {
		g := r.groups[key]
		if g.iface.Name != iface {
			continue
		}
		if found != nil {
			return nil
		}
		found = g
	}
	return found
}

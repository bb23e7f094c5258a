// Package validate turns discovered producer declarations into normalized
// registry entries.
package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Alia5/factorygen/internal/codegen/meta"
)

// Options tune how declarations are resolved.
type Options struct {
	// DefaultPackage is the import path used for interfaces that carry no
	// package of their own (manifest entries written as just "Fruit").
	DefaultPackage string
}

// Validate checks one declaration and returns its normalized entry.
// Rules are checked in order and the first failure wins:
//  1. ids must be non-empty (MissingIdentifiers)
//  2. interface must resolve to a non-empty name (MissingTargetInterface)
//
// Overlapping ids across producers are not rejected here; see CheckDisjoint.
func Validate(d meta.Declaration, opts Options) (meta.Entry, error) {
	if len(d.Meta.IDs) == 0 {
		return meta.Entry{}, meta.ErrMissingIdentifiers(d)
	}

	ref := d.Meta.Interface
	if ref == nil || strings.TrimSpace(ref.Name) == "" {
		return meta.Entry{}, meta.ErrMissingTargetInterface(d)
	}

	iface := *ref
	if iface.Package == "" {
		iface.Package = opts.DefaultPackage
	}
	if iface.PackageName == "" {
		iface.PackageName = meta.PackageNameOf(iface.Package)
	}

	return meta.NewEntry(d, iface), nil
}

// Overlap is an identifier claimed by more than one producer of an interface.
// Owner is the producer that wins dispatch; Shadowed lists the others in
// registration order.
type Overlap struct {
	ID       int
	Owner    meta.Entry
	Shadowed []meta.Entry
}

func (o Overlap) String() string {
	names := make([]string, len(o.Shadowed))
	for i, e := range o.Shadowed {
		names[i] = e.Producer()
	}
	return fmt.Sprintf("id %d is claimed by %s and shadows %s", o.ID, o.Owner.Producer(), strings.Join(names, ", "))
}

// CheckDisjoint reports every identifier claimed by more than one of entries,
// which must be given in registration order. Overlaps are sorted by id.
func CheckDisjoint(entries []meta.Entry) []Overlap {
	owners := make(map[int]int)
	byID := make(map[int]*Overlap)
	for i, e := range entries {
		for _, id := range e.IDs() {
			first, seen := owners[id]
			if !seen {
				owners[id] = i
				continue
			}
			if first == i {
				// repeated within one producer's own set
				continue
			}
			o, ok := byID[id]
			if !ok {
				o = &Overlap{ID: id, Owner: entries[first]}
				byID[id] = o
			}
			if !slices.ContainsFunc(o.Shadowed, func(s meta.Entry) bool { return s.QualifiedName() == e.QualifiedName() }) {
				o.Shadowed = append(o.Shadowed, e)
			}
		}
	}

	out := make([]Overlap, 0, len(byID))
	for _, o := range byID {
		out = append(out, *o)
	}
	slices.SortFunc(out, func(a, b Overlap) int { return a.ID - b.ID })
	return out
}

// OverlapError converts an overlap into the strict-mode diagnostic, placed on
// the first shadowed producer.
func OverlapError(o Overlap) *meta.ProcessingError {
	s := o.Shadowed[0]
	return &meta.ProcessingError{
		Kind: meta.OverlappingIdentifiers,
		Decl: s.QualifiedName(),
		Pos:  s.Pos(),
		Msg: fmt.Sprintf("id %d of %s is already claimed by %s; %s would never be created for it",
			o.ID, s.QualifiedName(), o.Owner.QualifiedName(), s.Producer()),
	}
}

package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alia5/factorygen/internal/codegen/meta"
	"github.com/Alia5/factorygen/internal/codegen/scanner"
	"github.com/Alia5/factorygen/internal/codegen/validate"
	"github.com/Alia5/factorygen/internal/registry"
)

// Process validates every declaration and registers the accepted ones, in
// order, in a fresh registry. All validation failures are collected; if
// there is any, no registry is returned and the error joins them.
func Process(decls []meta.Declaration, opts validate.Options) (*registry.Registry, error) {
	reg := registry.New()
	var errs []error
	for _, d := range decls {
		e, err := validate.Validate(d, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reg.Add(e)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

// check reports shadowed identifiers and interfaces that do not exist where
// producers say they do. Both are warnings unless the pass is strict.
func (g *Generator) check(found *discovery, reg *registry.Registry) (map[string][]validate.Overlap, error) {
	overlaps := make(map[string][]validate.Overlap)
	var errs []error

	for _, iface := range reg.Interfaces() {
		key := iface.QualifiedName()
		entries := reg.Entries(key)

		for _, o := range validate.CheckDisjoint(entries) {
			overlaps[key] = append(overlaps[key], o)
			if g.cfg.Strict {
				errs = append(errs, validate.OverlapError(o))
				continue
			}
			g.logger.Warn("Identifier is shadowed", "interface", key, "detail", o.String())
		}

		if perr := unresolved(found, iface, entries[0]); perr != nil {
			if g.cfg.Strict {
				errs = append(errs, perr)
				continue
			}
			g.logger.Warn("Interface not found", "interface", key, "detail", perr.Msg)
		}
	}
	return overlaps, errors.Join(errs...)
}

// unresolved returns a diagnostic, placed on first, when iface is not
// declared in its package.
func unresolved(found *discovery, iface meta.InterfaceRef, first meta.Entry) *meta.ProcessingError {
	if iface.Package == "" {
		return nil
	}
	if _, err := found.module.Dir(iface.Package); err != nil {
		// outside the module, not checked
		return nil
	}
	pkg, ok := found.lookup(iface.Package)
	if ok && pkg.HasInterface(iface.Name) {
		return nil
	}

	var msg strings.Builder
	if !ok {
		fmt.Fprintf(&msg, "package %s of interface %s was not found in module %s", iface.Package, iface.Name, found.module.Path)
	} else {
		fmt.Fprintf(&msg, "interface %s is not declared in package %s", iface.Name, iface.Package)
		if s, ok := scanner.Suggest(iface.Name, pkg.Interfaces); ok {
			fmt.Fprintf(&msg, "; did you mean %s?", s)
		}
	}
	return &meta.ProcessingError{
		Kind: meta.UnresolvedInterface,
		Decl: first.QualifiedName(),
		Pos:  first.Pos(),
		Msg:  msg.String(),
	}
}

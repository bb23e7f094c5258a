package generator

import (
	"errors"
	"fmt"
	"go/token"
	"iter"
	"path/filepath"

	"github.com/Alia5/factorygen/internal/codegen/generator/golang"
	"github.com/Alia5/factorygen/internal/codegen/meta"
	"github.com/Alia5/factorygen/internal/registry"
)

// render synthesizes the dispatcher for iface and decides where it goes.
func (g *Generator) render(found *discovery, reg *registry.Registry, iface meta.InterfaceRef, version string) (*Output, error) {
	key := iface.QualifiedName()
	home := iface.Package
	if g.cfg.OutputPackage != "" {
		home = g.cfg.OutputPackage
	}
	if home == "" {
		return nil, fmt.Errorf("interface %s names no package; qualify it or set a default package", iface.Name)
	}

	dir, name, err := found.placement(home)
	if err != nil {
		return nil, fmt.Errorf("cannot place %s: %w", iface.FactoryName(), err)
	}

	opts := golang.Options{Version: version}
	if home == iface.Package {
		iface.PackageName = name
	} else {
		opts.Package, opts.PackageName = home, name
	}

	imported := []string{iface.Package}
	for e := range reg.EntriesFor(key) {
		imported = append(imported, e.ProducerPackage())
	}
	for _, path := range imported {
		if path == home {
			continue
		}
		if pkg, ok := found.lookup(path); ok && pkg.ImportsPath(home) {
			return nil, fmt.Errorf("%s imports %s: generating %s there would create an import cycle; set an output package",
				path, home, iface.FactoryName())
		}
	}

	if err := reachable(iface, home, reg.EntriesFor(key)); err != nil {
		return nil, err
	}

	file, err := golang.Synthesize(iface, reg.EntriesFor(key), opts)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Rendered factory", "interface", key, "type", file.TypeName, "producers", file.Entries)

	return &Output{File: file, Path: filepath.Join(dir, file.FileName), Status: StatusPending}, nil
}

// placement resolves the directory and package clause name for importPath.
// A package that does not exist yet is created under the module.
func (found *discovery) placement(importPath string) (dir, name string, err error) {
	if pkg, ok := found.lookup(importPath); ok {
		return pkg.Dir, pkg.Name, nil
	}
	dir, err = found.module.Dir(importPath)
	if err != nil {
		return "", "", err
	}
	return dir, meta.PackageNameOf(importPath), nil
}

// reachable rejects producers, constructors and interfaces that the
// dispatcher would have to name from another package while unexported.
func reachable(iface meta.InterfaceRef, home string, entries iter.Seq[meta.Entry]) error {
	var errs []error
	first := true
	for e := range entries {
		if first && iface.Package != home && !token.IsExported(iface.Name) {
			errs = append(errs, &meta.ProcessingError{
				Kind: meta.UnexportedReference,
				Decl: e.QualifiedName(),
				Pos:  e.Pos(),
				Msg: fmt.Sprintf("interface %s is unexported and cannot be named from %s; export it or drop the output package",
					iface.QualifiedName(), home),
			})
		}
		first = false

		if e.ProducerPackage() == home {
			continue
		}
		what, name := "type", e.Producer()
		if e.Constructor() != "" {
			what, name = "constructor", e.Constructor()
		}
		if !token.IsExported(name) {
			errs = append(errs, &meta.ProcessingError{
				Kind: meta.UnexportedReference,
				Decl: e.QualifiedName(),
				Pos:  e.Pos(),
				Msg: fmt.Sprintf("%s %s.%s is unexported and cannot be named from %s where %s is generated",
					what, e.ProducerPackage(), name, home, iface.FactoryName()),
			})
		}
	}
	return errors.Join(errs...)
}

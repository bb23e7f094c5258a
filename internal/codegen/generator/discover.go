package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alia5/factorygen/internal/codegen/manifest"
	"github.com/Alia5/factorygen/internal/codegen/meta"
	"github.com/Alia5/factorygen/internal/codegen/scanner"
)

type discovery struct {
	module   *scanner.Module
	packages []*scanner.Package          // scanned directories, in order
	byPath   map[string]*scanner.Package // also caches packages looked up later
	decls    []meta.Declaration
}

// discover collects declarations from directories, then manifests. The
// returned error, if any, joins the *meta.ProcessingError diagnostics of
// every input; the discovery itself is still usable so that validation
// can report its findings in the same pass. A nil discovery means an input
// could not be read at all.
func (g *Generator) discover(ctx context.Context) (*discovery, error) {
	dirs := g.cfg.Dirs
	if len(dirs) == 0 && len(g.cfg.Manifests) == 0 {
		dirs = []string{"."}
	}

	mod, err := g.loadModule(dirs)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Using module", "path", mod.Path, "root", mod.Root)

	found := &discovery{module: mod, byPath: make(map[string]*scanner.Package)}
	var diags []error

	g.logger.Info("Scanning packages for producers", "count", len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pkg, err := scanner.ScanPackage(dir, mod)
		if pkg == nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		if err != nil {
			diags = append(diags, err)
		}
		found.packages = append(found.packages, pkg)
		found.byPath[pkg.ImportPath] = pkg
		found.decls = append(found.decls, pkg.Producers...)
		g.logger.Info("Scanned package", "package", pkg.ImportPath, "producers", len(pkg.Producers))
	}

	for _, path := range g.cfg.Manifests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decls, err := manifest.Load(path)
		if err != nil {
			if len(meta.ProcessingErrors(err)) == 0 {
				return nil, fmt.Errorf("load manifest: %w", err)
			}
			diags = append(diags, err)
		}
		found.decls = append(found.decls, decls...)
		g.logger.Info("Loaded manifest", "file", path, "producers", len(decls))
	}

	for i := range found.decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found.refine(&found.decls[i])
	}

	return found, errors.Join(diags...)
}

func (g *Generator) loadModule(dirs []string) (*scanner.Module, error) {
	if g.cfg.ModuleRoot != "" {
		return scanner.LoadModule(g.cfg.ModuleRoot)
	}
	start := "."
	if len(dirs) > 0 {
		start = dirs[0]
	}
	return scanner.FindModule(start)
}

// refine replaces guessed package names with the ones declared in source,
// for packages that were scanned.
func (found *discovery) refine(d *meta.Declaration) {
	if pkg := found.byPath[d.Package]; pkg != nil && pkg.Name != "" {
		d.PackageName = pkg.Name
		if d.Dir == "" {
			d.Dir = pkg.Dir
		}
	}
	if ref := d.Meta.Interface; ref != nil {
		if pkg := found.byPath[ref.Package]; pkg != nil && pkg.Name != "" {
			ref.PackageName = pkg.Name
		}
	}
}

// lookup returns the package for importPath, scanning it on first use if it
// lives in the module. Packages without Go files are reported as missing.
func (found *discovery) lookup(importPath string) (*scanner.Package, bool) {
	pkg, ok := found.byPath[importPath]
	if !ok {
		dir, err := found.module.Dir(importPath)
		if err != nil {
			return nil, false
		}
		pkg, _ = scanner.ScanPackage(dir, found.module)
		found.byPath[importPath] = pkg
	}
	if pkg == nil || pkg.Name == "" {
		return nil, false
	}
	return pkg, true
}

// Package generator runs a factorygen pass: discover producer declarations,
// validate and register them, then render and write one dispatcher per
// target interface.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Alia5/factorygen/internal/codegen/common"
	"github.com/Alia5/factorygen/internal/codegen/generator/golang"
	"github.com/Alia5/factorygen/internal/codegen/scanner"
	"github.com/Alia5/factorygen/internal/codegen/validate"
	"github.com/Alia5/factorygen/internal/log"
	"github.com/Alia5/factorygen/internal/registry"
)

// Config describes one pass.
type Config struct {
	// ModuleRoot is the directory holding go.mod. Empty means the nearest
	// go.mod above the first directory.
	ModuleRoot string
	// Dirs are package directories to scan, in order. With neither Dirs nor
	// Manifests set the working directory is scanned.
	Dirs []string
	// Manifests are explicit registration files, loaded after Dirs.
	Manifests []string
	// DefaultPackage qualifies interfaces that name no package.
	DefaultPackage string
	// OutputPackage places every dispatcher in this package instead of the
	// interface's own, which breaks import cycles between the interface
	// package and producers that import it.
	OutputPackage string
	// Strict turns shadowed identifiers and unresolved interfaces into errors.
	Strict bool
	// DryRun renders everything but writes nothing.
	DryRun bool
}

// Status says what happened to one output file.
type Status string

const (
	StatusPending   Status = "pending"
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusDryRun    Status = "dry-run"
)

// Output is a rendered dispatcher and where it goes.
type Output struct {
	*golang.File
	Path   string
	Status Status
}

// Result is everything one pass produced.
type Result struct {
	Module   *scanner.Module
	Packages []*scanner.Package
	Registry *registry.Registry
	// Overlaps lists shadowed identifiers per qualified interface name.
	Overlaps map[string][]validate.Overlap
	Outputs  []*Output
}

// Generator runs passes with a fixed configuration.
type Generator struct {
	cfg    Config
	logger *slog.Logger
	source log.SourceLogger
}

// New creates a Generator. source receives every rendered file; pass
// log.NewSource(nil, false) to discard them.
func New(cfg Config, logger *slog.Logger, source log.SourceLogger) *Generator {
	if source == nil {
		source = log.NewSource(nil, false)
	}
	return &Generator{cfg: cfg, logger: logger, source: source}
}

// Run performs a full pass. If any declaration is rejected nothing is
// written and the returned error joins every *meta.ProcessingError found.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	res, err := g.Plan(ctx)
	if err != nil {
		return nil, err
	}
	for _, out := range res.Outputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := g.write(out); err != nil {
			return res, err
		}
	}
	g.logger.Info("Factory generation complete", "interfaces", len(res.Outputs), "producers", res.Registry.Len())
	return res, nil
}

// Plan performs a pass up to, but not including, writing files.
func (g *Generator) Plan(ctx context.Context) (*Result, error) {
	version, err := common.GetVersion()
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}

	found, diags := g.discover(ctx)
	if found == nil {
		return nil, diags
	}

	res := &Result{Module: found.module, Packages: found.packages}
	res.Registry, err = Process(found.decls, validate.Options{DefaultPackage: g.cfg.DefaultPackage})
	if err := errors.Join(diags, err); err != nil {
		return nil, err
	}
	if res.Registry.Len() == 0 {
		g.logger.Warn("No producers found", "dirs", g.cfg.Dirs, "manifests", g.cfg.Manifests)
		return res, nil
	}

	res.Overlaps, err = g.check(found, res.Registry)
	if err != nil {
		return nil, err
	}

	var errs []error
	claimed := make(map[string]string) // output path -> interface
	for _, iface := range res.Registry.Interfaces() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := g.render(found, res.Registry, iface, version)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		key := iface.QualifiedName()
		path := filepath.Clean(out.Path)
		if other, ok := claimed[path]; ok {
			errs = append(errs, fmt.Errorf("%s and %s both generate %s in %s; rename one interface or place them in different packages",
				other, key, out.TypeName, path))
			continue
		}
		claimed[path] = key
		res.Outputs = append(res.Outputs, out)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return res, nil
}

func (g *Generator) write(out *Output) error {
	g.source.Log(out.Path, out.Source)
	if g.cfg.DryRun {
		out.Status = StatusDryRun
		g.logger.Info("Dry run, not writing factory", "file", out.Path, "type", out.TypeName)
		return nil
	}

	existing, err := os.ReadFile(out.Path)
	switch {
	case err == nil && string(existing) == string(out.Source):
		out.Status = StatusUnchanged
		g.logger.Debug("Factory unchanged", "file", out.Path)
		return nil
	case err == nil && !common.IsGenerated(existing):
		return fmt.Errorf("refusing to overwrite %s: it was not generated by factorygen", out.Path)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("read %s: %w", out.Path, err)
	}

	if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", out.Path, err)
	}
	if err := os.WriteFile(out.Path, out.Source, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out.Path, err)
	}
	out.Status = StatusWritten
	g.logger.Info("Generated factory", "file", out.Path, "type", out.TypeName, "producers", out.Entries)
	return nil
}

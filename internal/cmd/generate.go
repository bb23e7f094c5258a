package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/factorygen/internal/codegen/generator"
	"github.com/Alia5/factorygen/internal/codegen/meta"
	"github.com/Alia5/factorygen/internal/log"
)

// Inputs selects what a pass reads. Shared by generate and list.
type Inputs struct {
	Dirs           []string `arg:"" optional:"" type:"path" help:"Package directories to scan (default: current directory)"`
	Manifest       []string `help:"Manifest files (yaml, toml, json or hcl) with explicit registrations" type:"path" sep:"," env:"FACTORYGEN_MANIFEST"`
	ModuleRoot     string   `help:"Directory holding go.mod (default: nearest above the first directory)" type:"path" env:"FACTORYGEN_MODULE_ROOT"`
	DefaultPackage string   `help:"Import path for interfaces named without a package" env:"FACTORYGEN_DEFAULT_PACKAGE"`
	OutputPackage  string   `help:"Import path of a package to place every factory in, instead of the interface's package" env:"FACTORYGEN_OUTPUT_PACKAGE"`
	Strict         bool     `help:"Fail on shadowed ids and unknown interfaces instead of warning" env:"FACTORYGEN_STRICT"`
}

func (in Inputs) config() generator.Config {
	return generator.Config{
		ModuleRoot:     in.ModuleRoot,
		Dirs:           in.Dirs,
		Manifests:      in.Manifest,
		DefaultPackage: in.DefaultPackage,
		OutputPackage:  in.OutputPackage,
		Strict:         in.Strict,
	}
}

type Generate struct {
	Inputs `embed:""`
	DryRun bool `help:"Print generated sources instead of writing them" env:"FACTORYGEN_DRY_RUN"`
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(ctx context.Context, logger *slog.Logger, source log.SourceLogger) error {
	cfg := c.config()
	cfg.DryRun = c.DryRun
	if c.DryRun {
		source = log.NewSource(stdout, true)
	}
	logger.Debug("Starting factory generation", "dirs", cfg.Dirs, "manifests", cfg.Manifests, "strict", cfg.Strict, "dryRun", cfg.DryRun)

	_, err := generator.New(cfg, logger, source).Run(ctx)
	return report(logger, err)
}

// report logs each rejected declaration on its own line, so go:generate
// output lists every problem, and returns a short summary error. Errors that
// are not tied to a declaration are returned as they are.
func report(logger *slog.Logger, err error) error {
	pes, others := split(err)
	if len(pes) == 0 {
		return err
	}
	for _, pe := range pes {
		logger.Error("Rejected producer declaration", "kind", pe.Kind, "type", pe.Decl, "error", pe.Error())
	}
	summary := fmt.Errorf("%d producer declaration(s) rejected; no files were written", len(pes))
	return errors.Join(append([]error{summary}, others...)...)
}

// split separates the declaration diagnostics in an errors.Join tree from
// everything else.
func split(err error) (pes []*meta.ProcessingError, others []error) {
	var pe *meta.ProcessingError
	switch e := err.(type) {
	case nil:
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			p, o := split(inner)
			pes, others = append(pes, p...), append(others, o...)
		}
	default:
		if errors.As(err, &pe) {
			pes = append(pes, pe)
		} else {
			others = append(others, err)
		}
	}
	return pes, others
}

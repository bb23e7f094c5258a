package scanner

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// Module maps between directories and import paths of one Go module.
type Module struct {
	Root string // absolute directory holding go.mod
	Path string // module path from go.mod
}

// FindModule walks up from dir to the nearest go.mod and loads it.
func FindModule(dir string) (*Module, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for cur := abs; ; {
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return LoadModule(cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("no go.mod found in %s or any parent directory", abs)
		}
		cur = parent
	}
}

// LoadModule reads root/go.mod.
func LoadModule(root string) (*Module, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	gomod := filepath.Join(abs, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return nil, fmt.Errorf("read go.mod: %w", err)
	}
	f, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", gomod, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return nil, fmt.Errorf("%s has no module directive", gomod)
	}
	return &Module{Root: abs, Path: f.Module.Mod.Path}, nil
}

// ImportPath returns the import path of the package in dir.
func (m *Module) ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(m.Root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside module %s (%s)", abs, m.Path, m.Root)
	}
	if rel == "." {
		return m.Path, nil
	}
	return path.Join(m.Path, filepath.ToSlash(rel)), nil
}

// ErrNotInModule is returned by Dir for import paths the module does not own.
var ErrNotInModule = errors.New("import path is not part of the module")

// Dir returns the directory that holds importPath.
func (m *Module) Dir(importPath string) (string, error) {
	if importPath == m.Path {
		return m.Root, nil
	}
	rel, ok := strings.CutPrefix(importPath, m.Path+"/")
	if !ok {
		return "", fmt.Errorf("%s: %w %s", importPath, ErrNotInModule, m.Path)
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel)), nil
}

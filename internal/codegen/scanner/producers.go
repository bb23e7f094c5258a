package scanner

import (
	"errors"
	"fmt"
	"go/ast"
	"go/build"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Alia5/factorygen/internal/codegen/meta"
)

// Package is the result of scanning one package directory.
type Package struct {
	Dir        string             `json:"dir"`
	ImportPath string             `json:"importPath"`
	Name       string             `json:"name"`
	Producers  []meta.Declaration `json:"producers"`  // in file name, then source order
	Interfaces []string           `json:"interfaces"` // interface types declared in the package
	Imports    []string           `json:"imports"`    // sorted, unique
}

// ImportsPath reports whether any file of the package imports path.
func (p *Package) ImportsPath(path string) bool {
	_, found := slices.BinarySearch(p.Imports, path)
	return found
}

// HasInterface reports whether the package declares an interface type name.
func (p *Package) HasInterface(name string) bool {
	return slices.Contains(p.Interfaces, name)
}

// ScanPackage parses the Go files of dir (non-recursively, tests and files
// excluded by build constraints skipped) and collects producer declarations.
//
// Malformed directives do not stop the scan: they are returned joined as
// *meta.ProcessingError values next to a fully populated Package, so a pass
// can report every diagnostic at once. Any other error means the package
// could not be read.
func ScanPackage(dir string, mod *Module) (*Package, error) {
	importPath, err := mod.ImportPath(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	pkg := &Package{Dir: dir, ImportPath: importPath}
	var diags []error

	fset := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if ok, err := build.Default.MatchFile(dir, name); err != nil || !ok {
			continue
		}

		filePath := filepath.Join(dir, name)
		file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse file: %w", err)
		}

		switch {
		case pkg.Name == "":
			pkg.Name = file.Name.Name
		case pkg.Name != file.Name.Name:
			return nil, fmt.Errorf("%s: found packages %s and %s in %s", filePath, pkg.Name, file.Name.Name, dir)
		}

		for _, imp := range file.Imports {
			if path, err := strconv.Unquote(imp.Path.Value); err == nil {
				pkg.Imports = append(pkg.Imports, path)
			}
		}
		diags = append(diags, pkg.scanFile(fset, file)...)
	}

	slices.Sort(pkg.Imports)
	pkg.Imports = slices.Compact(pkg.Imports)
	return pkg, errors.Join(diags...)
}

func (p *Package) scanFile(fset *token.FileSet, file *ast.File) []error {
	var diags []error
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if _, isIface := typeSpec.Type.(*ast.InterfaceType); isIface {
				p.Interfaces = append(p.Interfaces, typeSpec.Name.Name)
			}

			docs := []*ast.CommentGroup{typeSpec.Doc}
			if !genDecl.Lparen.IsValid() {
				docs = append(docs, genDecl.Doc)
			}
			d, err := p.producer(fset, typeSpec, docs)
			if err != nil {
				diags = append(diags, err)
				continue
			}
			if d != nil {
				p.Producers = append(p.Producers, *d)
			}
		}
	}
	return diags
}

// producer returns the declaration for typeSpec, or nil if it carries no
// directive.
func (p *Package) producer(fset *token.FileSet, typeSpec *ast.TypeSpec, docs []*ast.CommentGroup) (*meta.Declaration, error) {
	decl := meta.Declaration{
		Name:        typeSpec.Name.Name,
		Package:     p.ImportPath,
		PackageName: p.Name,
		Dir:         p.Dir,
		Pos:         fset.Position(typeSpec.Name.Pos()),
	}

	var found *Directive
	for _, group := range docs {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			dir, ok, err := ParseDirective(comment.Text)
			if !ok {
				continue
			}
			if err != nil {
				return nil, meta.ErrMalformed(decl, err.Error())
			}
			if found != nil {
				return nil, meta.ErrMalformed(decl, "more than one "+DirectiveName+" directive")
			}
			found = dir
		}
	}
	if found == nil {
		return nil, nil
	}

	if typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0 {
		return nil, meta.ErrMalformed(decl, "generic producer types are not supported")
	}
	if _, isIface := typeSpec.Type.(*ast.InterfaceType); isIface {
		return nil, meta.ErrMalformed(decl, "a producer must be a concrete type, not an interface")
	}

	decl.Meta = meta.Metadata{
		IDs:         found.IDs,
		Interface:   meta.ParseInterfaceRef(found.Interface, p.ImportPath),
		Constructor: found.Constructor,
	}
	if decl.Meta.Interface != nil && decl.Meta.Interface.Package == p.ImportPath {
		decl.Meta.Interface.PackageName = p.Name
	}
	return &decl, nil
}

// ScanPackages scans each directory in order. Diagnostics from all packages
// are joined; a read or parse failure stops the scan.
func ScanPackages(dirs []string, mod *Module) ([]*Package, error) {
	var pkgs []*Package
	var diags []error
	for _, dir := range dirs {
		pkg, err := ScanPackage(dir, mod)
		if pkg == nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		if err != nil {
			diags = append(diags, err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, errors.Join(diags...)
}

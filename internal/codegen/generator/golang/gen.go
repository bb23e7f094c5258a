// Package golang renders the Go source of a factory dispatcher.
package golang

import (
	"bytes"
	"cmp"
	"fmt"
	"go/format"
	"go/token"
	"iter"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/Alia5/factorygen/internal/codegen/common"
	"github.com/Alia5/factorygen/internal/codegen/meta"
)

// DispatchPath is the runtime package every generated dispatcher imports.
const DispatchPath = "github.com/Alia5/factorygen/dispatch"

// Options control where and how a dispatcher is rendered.
type Options struct {
	// Version goes into the generated header.
	Version string

	// Package and PackageName place the dispatcher outside the interface's
	// own package. Both empty means the interface's package.
	Package     string
	PackageName string
}

// File is a rendered dispatcher and its destination.
type File struct {
	Interface   meta.InterfaceRef
	Package     string // import path of the package the file belongs to
	PackageName string
	TypeName    string // e.g. "FruitFactory"
	FileName    string // e.g. "fruit_factory.go"
	Entries     int
	Source      []byte
}

const factoryTemplate = `{{.Header}}

package {{.PackageName}}

import (
{{range .Std}}	{{template "import" .}}
{{end}}{{if .Imports}}
{{range .Imports}}	{{template "import" .}}
{{end}}{{end}})

// {{.TypeName}} creates {{.Interface}} values from integer identifiers.
type {{.TypeName}} struct{}

// Create returns a new value of the producer registered for id. Producers
// are tried in registration order and the first one claiming id wins.
func ({{.TypeName}}) Create({{.Param}} int) ({{.Interface}}, error) {
	if {{.Param}} < 0 {
		return nil, {{.Dispatch}}.InvalidArgument({{printf "%q" .TypeName}}, {{.Param}})
	}
{{range .Cases}}	if {{$.Slices}}.Contains({{.IDs}}, {{$.Param}}) {
		return {{.Expr}}, nil
	}
{{end}}	return nil, {{.Dispatch}}.UnknownIdentifier({{printf "%q" .TypeName}}, {{.Param}})
}
{{define "import"}}{{if .Alias}}{{.Alias}} {{end}}{{printf "%q" .Path}}{{end}}`

var tmpl = template.Must(template.New("factory").Parse(factoryTemplate))

type importSpec struct {
	Alias string // empty when the package name is used as is
	Path  string
}

type dispatchCase struct {
	IDs  string
	Expr string
}

type templateData struct {
	Header      string
	PackageName string
	TypeName    string
	Interface   string
	Param       string
	Slices      string
	Dispatch    string
	Std         []importSpec
	Imports     []importSpec
	Cases       []dispatchCase
}

// Synthesize renders the dispatcher for iface from its entries in
// registration order. It performs no I/O.
func Synthesize(iface meta.InterfaceRef, entries iter.Seq[meta.Entry], opts Options) (*File, error) {
	if iface.Name == "" {
		return nil, fmt.Errorf("synthesize: interface has no name")
	}

	home, homeName := iface.Package, iface.PackageName
	if opts.Package != "" {
		home, homeName = opts.Package, opts.PackageName
	}
	if homeName == "" {
		homeName = meta.PackageNameOf(home)
	}
	if !token.IsIdentifier(homeName) {
		return nil, fmt.Errorf("synthesize %s: invalid package name %q", iface.QualifiedName(), homeName)
	}

	file := &File{
		Interface:   iface,
		Package:     home,
		PackageName: homeName,
		TypeName:    iface.FactoryName(),
		FileName:    common.FactoryFileName(iface.Name),
	}

	entryList := slices.Collect(entries)

	// names declared in the home package that the file refers to unqualified
	reserved := []string{file.TypeName}
	if iface.Package == home {
		reserved = append(reserved, iface.Name)
	}
	for _, e := range entryList {
		if e.ProducerPackage() == home {
			reserved = append(reserved, e.Producer(), e.Constructor())
		}
	}

	im := newImports(home, reserved...)
	data := templateData{
		Header:      common.GeneratedHeader(cmp.Or(opts.Version, "dev")),
		PackageName: homeName,
		TypeName:    file.TypeName,
		Param:       im.fresh("id"),
		Slices:      im.add("slices", "slices"),
		Dispatch:    im.add(DispatchPath, "dispatch"),
		Interface:   im.qualify(iface.Package, iface.PackageName, iface.Name),
	}

	for _, e := range entryList {
		ids := e.IDs()
		if len(ids) == 0 {
			return nil, fmt.Errorf("synthesize %s: producer %s has no ids", iface.QualifiedName(), e.QualifiedName())
		}
		expr := "new(" + im.qualify(e.ProducerPackage(), e.ProducerPackageName(), e.Producer()) + ")"
		if e.Constructor() != "" {
			expr = im.qualify(e.ProducerPackage(), e.ProducerPackageName(), e.Constructor()) + "()"
		}
		data.Cases = append(data.Cases, dispatchCase{IDs: intSlice(ids), Expr: expr})
	}
	if len(data.Cases) == 0 {
		return nil, fmt.Errorf("synthesize %s: no producers registered", iface.QualifiedName())
	}
	file.Entries = len(data.Cases)
	data.Std, data.Imports = im.sorted()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template for %s: %w", file.TypeName, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w\n%s", file.FileName, err, buf.Bytes())
	}
	file.Source = src
	return file, nil
}

func intSlice(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "[]int{" + strings.Join(parts, ", ") + "}"
}

// imports hands out collision-free local names for imported packages.
// Names are assigned in first-use order, so the result is deterministic.
type imports struct {
	home   string
	byPath map[string]string
	used   map[string]bool
	specs  []importSpec
}

func newImports(home string, reserved ...string) *imports {
	im := &imports{home: home, byPath: make(map[string]string), used: make(map[string]bool)}
	for _, r := range reserved {
		if r != "" {
			im.used[r] = true
		}
	}
	return im
}

// fresh claims a local name that is not taken yet, starting with name.
func (im *imports) fresh(name string) string {
	local := name
	for i := 2; im.used[local] || token.IsKeyword(local); i++ {
		local = name + strconv.Itoa(i)
	}
	im.used[local] = true
	return local
}

// add imports path and returns the name to refer to it by.
func (im *imports) add(path, name string) string {
	if local, ok := im.byPath[path]; ok {
		return local
	}
	if name == "" {
		name = meta.PackageNameOf(path)
	}
	local := im.fresh(name)
	im.byPath[path] = local

	spec := importSpec{Path: path}
	if local != name || local != meta.PackageNameOf(path) {
		spec.Alias = local
	}
	im.specs = append(im.specs, spec)
	return local
}

// qualify returns ident as referenced from the home package.
func (im *imports) qualify(path, name, ident string) string {
	if path == "" || path == im.home {
		return ident
	}
	return im.add(path, name) + "." + ident
}

// sorted returns standard library imports and the rest, each sorted by path.
func (im *imports) sorted() (std, other []importSpec) {
	for _, spec := range im.specs {
		if first, _, _ := strings.Cut(spec.Path, "/"); strings.Contains(first, ".") {
			other = append(other, spec)
		} else {
			std = append(std, spec)
		}
	}
	byPath := func(a, b importSpec) int { return strings.Compare(a.Path, b.Path) }
	slices.SortFunc(std, byPath)
	slices.SortFunc(other, byPath)
	return std, other
}

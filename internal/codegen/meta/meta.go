package meta

import (
	"go/token"
	"slices"
	"strings"
)

// InterfaceRef names the interface a producer implements.
type InterfaceRef struct {
	Name        string `json:"name"`        // simple name, e.g. "Fruit"
	Package     string `json:"package"`     // import path, e.g. "example.com/app/fruits"
	PackageName string `json:"packageName"` // package clause name, e.g. "fruits"
}

// QualifiedName returns "importpath.Name", or just Name if the package is unknown.
func (r InterfaceRef) QualifiedName() string {
	if r.Package == "" {
		return r.Name
	}
	return r.Package + "." + r.Name
}

// FactoryName returns the name of the dispatcher type generated for r.
func (r InterfaceRef) FactoryName() string {
	return r.Name + "Factory"
}

// ParseInterfaceRef parses an interface reference as written by an author.
// "Fruit" resolves against defaultPkg; "example.com/app/fruits.Fruit" is
// taken as-is. An empty reference returns nil.
func ParseInterfaceRef(s, defaultPkg string) *InterfaceRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	slash := strings.LastIndex(s, "/")
	dot := strings.LastIndex(s, ".")
	if dot > slash {
		pkg := s[:dot]
		return &InterfaceRef{Name: s[dot+1:], Package: pkg, PackageName: PackageNameOf(pkg)}
	}
	return &InterfaceRef{Name: s, Package: defaultPkg, PackageName: PackageNameOf(defaultPkg)}
}

// PackageNameOf guesses the package clause name from an import path the way
// the go tool does for most packages: last element, major version suffixes
// skipped, characters invalid in identifiers dropped.
func PackageNameOf(importPath string) string {
	if importPath == "" {
		return ""
	}
	elems := strings.Split(importPath, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.LastIndex(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && b.Len() > 0:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Metadata is the declarative record an author attaches to a producer type.
// It is carried as written; checks belong to the validator.
type Metadata struct {
	IDs         []int         `json:"ids"`
	Interface   *InterfaceRef `json:"interface,omitempty"`   // nil if absent
	Constructor string        `json:"constructor,omitempty"` // optional func() T used instead of new(T)
}

// Declaration is one tagged producer type as discovered in source or a manifest.
type Declaration struct {
	Name        string         `json:"name"`        // type name, e.g. "Pear"
	Package     string         `json:"package"`     // import path
	PackageName string         `json:"packageName"` // package clause name
	Dir         string         `json:"dir,omitempty"`
	Pos         token.Position `json:"pos"`
	Meta        Metadata       `json:"meta"`
}

// QualifiedName returns the globally unique identity of the producer type.
func (d Declaration) QualifiedName() string {
	if d.Package == "" {
		return d.Name
	}
	return d.Package + "." + d.Name
}

// Entry is a validated, normalized producer record. Entries are immutable;
// use NewEntry to build one.
type Entry struct {
	qualifiedName string
	producer      string
	pkg           string
	pkgName       string
	constructor   string
	ids           []int
	iface         InterfaceRef
	pos           token.Position
}

// NewEntry builds an entry from a declaration and its resolved interface.
// The identifier set is copied.
func NewEntry(d Declaration, iface InterfaceRef) Entry {
	return Entry{
		qualifiedName: d.QualifiedName(),
		producer:      d.Name,
		pkg:           d.Package,
		pkgName:       d.PackageName,
		constructor:   d.Meta.Constructor,
		ids:           slices.Clone(d.Meta.IDs),
		iface:         iface,
		pos:           d.Pos,
	}
}

func (e Entry) QualifiedName() string       { return e.qualifiedName }
func (e Entry) Producer() string            { return e.producer }
func (e Entry) ProducerPackage() string     { return e.pkg }
func (e Entry) ProducerPackageName() string { return e.pkgName }
func (e Entry) Constructor() string         { return e.constructor }
func (e Entry) Interface() InterfaceRef     { return e.iface }
func (e Entry) Pos() token.Position         { return e.pos }

// IDs returns a copy of the producer's identifier set.
func (e Entry) IDs() []int { return slices.Clone(e.ids) }

// Claims reports whether id is in the producer's identifier set.
func (e Entry) Claims(id int) bool { return slices.Contains(e.ids, id) }

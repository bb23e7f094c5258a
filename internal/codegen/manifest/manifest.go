// Package manifest loads explicit producer registrations from YAML, TOML,
// JSON or HCL files, as an alternative to factorygen:producer directives.
//
// A YAML manifest looks like:
//
//	package: example.com/orchard/fruits
//	producers:
//	  - type: Apple
//	    ids: [1]
//	    interface: Fruit
//	  - type: example.com/orchard/tropical.Mango
//	    ids: [7, 8]
//	    interface: Fruit
//	    new: NewMango
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/token"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/factorygen/internal/codegen/meta"
)

// Manifest is the decoded file.
type Manifest struct {
	// Package qualifies type and interface names that carry no import path.
	Package   string     `json:"package" yaml:"package" toml:"package"`
	Producers []Producer `json:"producers" yaml:"producers" toml:"producers"`
}

// Producer is one registration.
type Producer struct {
	Type      string `json:"type" yaml:"type" toml:"type"`
	IDs       []int  `json:"ids" yaml:"ids" toml:"ids"`
	Interface string `json:"interface" yaml:"interface" toml:"interface"`
	New       string `json:"new,omitempty" yaml:"new,omitempty" toml:"new,omitempty"`

	pos token.Position
}

// Extensions lists the file extensions Load understands.
var Extensions = []string{".yaml", ".yml", ".toml", ".json", ".hcl"}

// Load reads the manifest at path and returns its producers as declarations
// in file order.
//
// As with source scanning, per-producer problems are returned joined as
// *meta.ProcessingError values next to the declarations that did load. Any
// other error means the file could not be read.
func Load(path string) ([]meta.Declaration, error) {
	m, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return m.Declarations(path)
}

// Decode reads and decodes the manifest at path, choosing the format by
// extension.
func Decode(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m *Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		m, err = decodeYAML(path, data)
	case ".toml":
		m, err = decodeTOML(path, data)
	case ".json":
		m, err = decodeJSON(data)
	case ".hcl":
		m, err = decodeHCL(path, data)
	default:
		return nil, fmt.Errorf("%s: unsupported manifest format %q (supported: %s)", path, ext, strings.Join(Extensions, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

// Declarations converts the manifest's producers.
func (m *Manifest) Declarations(path string) ([]meta.Declaration, error) {
	var decls []meta.Declaration
	var diags []error
	for i, p := range m.Producers {
		pos := p.pos
		if pos.Filename == "" {
			pos.Filename = path
		}

		pkg, name := splitType(p.Type, m.Package)
		d := meta.Declaration{
			Name:        name,
			Package:     pkg,
			PackageName: meta.PackageNameOf(pkg),
			Pos:         pos,
			Meta: meta.Metadata{
				IDs:         p.IDs,
				Interface:   meta.ParseInterfaceRef(p.Interface, m.Package),
				Constructor: p.New,
			},
		}
		if d.Name == "" {
			d.Name = fmt.Sprintf("producers[%d]", i)
		}

		switch {
		case p.Type == "":
			diags = append(diags, meta.ErrMalformed(d, "type is required"))
		case !token.IsIdentifier(name):
			diags = append(diags, meta.ErrMalformed(d, fmt.Sprintf("type %q is not a Go type name", p.Type)))
		case pkg == "":
			diags = append(diags, meta.ErrMalformed(d, "type "+name+" has no package; qualify it or set the manifest package"))
		case p.New != "" && !token.IsIdentifier(p.New):
			diags = append(diags, meta.ErrMalformed(d, fmt.Sprintf("constructor %q is not an identifier", p.New)))
		case negative(p.IDs):
			diags = append(diags, meta.ErrMalformed(d, fmt.Sprintf("ids %v contain a negative id", p.IDs)))
		default:
			decls = append(decls, d)
		}
	}
	return decls, errors.Join(diags...)
}

// splitType splits "example.com/app/fruits.Apple" into package and name.
// An unqualified name belongs to defaultPkg.
func splitType(s, defaultPkg string) (pkg, name string) {
	s = strings.TrimSpace(s)
	slash := strings.LastIndex(s, "/")
	if dot := strings.LastIndex(s, "."); dot > slash {
		return s[:dot], s[dot+1:]
	}
	return defaultPkg, s
}

func negative(ids []int) bool {
	for _, id := range ids {
		if id < 0 {
			return true
		}
	}
	return false
}

// decodeMap fills out from a generic map the way every format shares:
// json tag names, unknown keys rejected, fractional ids rejected.
func decodeMap(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncKind(wholeNumbers),
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

func wholeNumbers(from, to reflect.Kind, data any) (any, error) {
	if to != reflect.Int || (from != reflect.Float64 && from != reflect.Float32) {
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", data)
	}
	return data, nil
}

func decodeJSON(data []byte) (*Manifest, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	var m Manifest
	if err := decodeMap(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// decodeYAML walks the node tree so every producer keeps its line.
func decodeYAML(path string, data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &Manifest{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping at the top level", root.Line)
	}

	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return nil, err
	}
	var m Manifest
	if err := decodeMap(raw, &m); err != nil {
		return nil, err
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "producers" {
			continue
		}
		items := root.Content[i+1].Content
		for j := range m.Producers {
			if j < len(items) {
				m.Producers[j].pos = token.Position{Filename: path, Line: items[j].Line, Column: items[j].Column}
			}
		}
	}
	return &m, nil
}

func decodeTOML(path string, data []byte) (*Manifest, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := decodeMap(tree.ToMap(), &m); err != nil {
		return nil, err
	}

	if tables, ok := tree.Get("producers").([]*toml.Tree); ok {
		for j := range m.Producers {
			if j < len(tables) {
				p := tables[j].Position()
				m.Producers[j].pos = token.Position{Filename: path, Line: p.Line, Column: p.Col}
			}
		}
	}
	return &m, nil
}

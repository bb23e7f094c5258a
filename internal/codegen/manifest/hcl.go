package manifest

import (
	"fmt"
	"go/token"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclManifest is the top-level structure of an HCL manifest:
//
//	package = "example.com/orchard/fruits"
//
//	producer "Pear" {
//	  ids       = [2, 3]
//	  interface = "Fruit"
//	}
type hclManifest struct {
	Package   string         `hcl:"package,optional"`
	Producers []*hclProducer `hcl:"producer,block"`
}

type hclProducer struct {
	Type      string         `hcl:"type,label"`
	IDs       hcl.Expression `hcl:"ids,optional"`
	Interface string         `hcl:"interface,optional"`
	New       string         `hcl:"new,optional"`
}

func decodeHCL(path string, data []byte) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed hclManifest
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, diags
	}

	m := &Manifest{Package: parsed.Package}
	for _, p := range parsed.Producers {
		ids, idDiags := evalIDs(p.IDs)
		diags = append(diags, idDiags...)

		start := p.IDs.Range().Start
		m.Producers = append(m.Producers, Producer{
			Type:      p.Type,
			IDs:       ids,
			Interface: p.Interface,
			New:       p.New,
			pos:       token.Position{Filename: path, Line: start.Line, Column: start.Column},
		})
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return m, nil
}

// evalIDs evaluates a literal ids expression. A missing attribute yields nil,
// which the validator reports as missing identifiers.
func evalIDs(expr hcl.Expression) ([]int, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}

	list, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, hcl.Diagnostics{invalidIDs(expr, "The 'ids' attribute must be a list of numbers.")}
	}
	ids := []int{}
	if err := gocty.FromCtyValue(list, &ids); err != nil {
		return nil, hcl.Diagnostics{invalidIDs(expr, fmt.Sprintf("The 'ids' attribute must hold whole numbers: %s.", err))}
	}
	return ids, nil
}

func invalidIDs(expr hcl.Expression, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid ids value",
		Detail:   detail,
		Subject:  expr.Range().Ptr(),
	}
}

package loader

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeHCL reads top-level attributes as one document, or `block "<name>"`
// blocks as one definition each. Expressions are evaluated without variables
// or functions.
func decodeHCL(path string, data []byte) ([]map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}

	if len(body.Blocks) == 0 {
		doc, err := attributes(body)
		if err != nil {
			return nil, err
		}
		return split(doc)
	}

	if len(body.Attributes) > 0 {
		return nil, fmt.Errorf("top-level attributes cannot be mixed with block definitions")
	}
	out := make([]map[string]any, 0, len(body.Blocks))
	for _, block := range body.Blocks {
		if block.Type != "block" || len(block.Labels) != 1 {
			return nil, fmt.Errorf("%s: expected `block \"<name>\" { ... }`, got %q with %d labels",
				block.DefRange(), block.Type, len(block.Labels))
		}
		doc, err := attributes(block.Body)
		if err != nil {
			return nil, err
		}
		doc["name"] = block.Labels[0]
		out = append(out, doc)
	}
	return out, nil
}

func attributes(body *hclsyntax.Body) (map[string]any, error) {
	if len(body.Blocks) > 0 {
		b := body.Blocks[0]
		return nil, fmt.Errorf("%s: nested blocks are not supported, use an object attribute for %q", b.DefRange(), b.Type)
	}

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := make(map[string]any, len(names))
	for _, name := range names {
		attr := body.Attributes[name]
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		doc[name] = native
	}
	return doc, nil
}

// ctyToNative converts a cty value into plain Go data.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

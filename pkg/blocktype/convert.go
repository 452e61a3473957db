package blocktype

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int(f), nil
}

func toStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return cloneStrings(list), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of strings, got %T", v)
}

func toMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("expected string keys, got %T", k)
			}
			out[ks] = val
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected object, got %T", v)
}

func toStringMap(v any) (map[string]string, error) {
	if m, ok := v.(map[string]string); ok {
		return m, nil
	}
	m, err := toMap(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("key %q: expected string, got %T", k, val)
		}
		out[k] = s
	}
	return out, nil
}

func decode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func toStyles(v any) ([]Style, error) {
	if styles, ok := v.([]Style); ok {
		return append([]Style{}, styles...), nil
	}
	var out []Style
	if err := decode(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toVariations(v any) ([]Variation, error) {
	if variations, ok := v.([]Variation); ok {
		out := make([]Variation, len(variations))
		for i, variation := range variations {
			out[i] = variation.clone()
		}
		return out, nil
	}
	var out []Variation
	if err := decode(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toDeprecations(v any) ([]Deprecation, error) {
	switch list := v.(type) {
	case []Deprecation:
		out := make([]Deprecation, len(list))
		for i, d := range list {
			out[i] = d.Clone()
		}
		return out, nil
	case []any:
		out := make([]Deprecation, 0, len(list))
		for i, item := range list {
			m, err := toMap(item)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			d, err := DeprecationFromMap(m)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			out = append(out, d)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of deprecations, got %T", v)
}

// ToIcon turns structured icon documents (an Icon value or a map with a src
// key) into *Icon and leaves everything else as given so the validator can
// judge it.
func ToIcon(v any) (any, error) {
	switch icon := v.(type) {
	case Icon:
		return &icon, nil
	case map[string]any:
		if _, ok := icon["src"]; !ok {
			return v, nil
		}
		out := &Icon{}
		if err := decode(icon, out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return v, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(in []any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = cloneValue(v)
	}
	return out
}

// cloneValue copies nested plain data and shares everything else.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		return cloneSlice(val)
	case []string:
		return cloneStrings(val)
	}
	return v
}

func cloneIcon(v any) any {
	if icon, ok := v.(*Icon); ok && icon != nil {
		c := *icon
		return &c
	}
	return v
}

// ExportValue converts a settings value into something encoding/json can
// render: callables become their handle name, Go funcs become the string
// "function", elements become their markup.
func ExportValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Callable:
		return val.CallableRef()
	case Element:
		return val.Render()
	case *Icon:
		if val == nil {
			return nil
		}
		out := map[string]any{"src": ExportValue(val.Src)}
		if val.Background != "" {
			out["background"] = val.Background
		}
		if val.Foreground != "" {
			out["foreground"] = val.Foreground
		}
		if val.ShadowColor != "" {
			out["shadowColor"] = val.ShadowColor
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ExportValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ExportValue(item)
		}
		return out
	case []Variation:
		out := make([]map[string]any, len(val))
		for i, variation := range val {
			out[i] = exportVariation(variation)
		}
		return out
	}
	if reflect.ValueOf(v).Kind() == reflect.Func {
		return "function"
	}
	return v
}

func exportVariation(v Variation) map[string]any {
	out := map[string]any{"name": v.Name}
	if v.Title != "" {
		out["title"] = v.Title
	}
	if v.Description != "" {
		out["description"] = v.Description
	}
	if v.Category != "" {
		out["category"] = v.Category
	}
	if v.Icon != nil {
		out["icon"] = ExportValue(v.Icon)
	}
	if v.IsDefault {
		out["isDefault"] = true
	}
	if v.Attributes != nil {
		out["attributes"] = ExportValue(v.Attributes)
	}
	if v.InnerBlocks != nil {
		out["innerBlocks"] = ExportValue(v.InnerBlocks)
	}
	if v.Example != nil {
		out["example"] = ExportValue(v.Example)
	}
	if len(v.Scope) > 0 {
		out["scope"] = v.Scope
	}
	if len(v.Keywords) > 0 {
		out["keywords"] = v.Keywords
	}
	if len(v.IsActive) > 0 {
		out["isActive"] = v.IsActive
	}
	if v.Source != "" {
		out["source"] = v.Source
	}
	return out
}

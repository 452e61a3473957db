package loader

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type decoder func(path string, data []byte) ([]map[string]any, error)

var decoders = map[string]decoder{
	".json": decodeJSON,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".toml": decodeTOML,
	".hcl":  decodeHCL,
}

func decodeJSON(_ string, data []byte) ([]map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return split(doc)
}

func decodeYAML(_ string, data []byte) ([]map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return split(doc)
}

func decodeTOML(_ string, data []byte) ([]map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return split(doc)
}

// split returns the definitions of a decoded document: the entries of its
// "blocks" list, or the document itself.
func split(doc map[string]any) ([]map[string]any, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is empty")
	}
	list, ok := doc["blocks"]
	if !ok {
		return []map[string]any{doc}, nil
	}
	items, ok := list.([]any)
	if !ok {
		return nil, fmt.Errorf("\"blocks\" must be a list, got %T", list)
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("blocks[%d] must be an object, got %T", i, item)
		}
		out = append(out, m)
	}
	return out, nil
}

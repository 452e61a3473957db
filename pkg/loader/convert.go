package loader

import (
	"fmt"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/icon"
)

// metadataKeys are dropped from documents before conversion.
var metadataKeys = []string{"$schema"}

func toSettings(doc map[string]any) (*blocktype.Settings, error) {
	for _, k := range metadataKeys {
		delete(doc, k)
	}
	refs(doc, blocktype.KeySave, blocktype.KeyEdit)

	if v, ok := doc[blocktype.KeyIcon]; ok {
		converted, err := convertIcon(v)
		if err != nil {
			return nil, err
		}
		doc[blocktype.KeyIcon] = converted
	}

	if v, ok := doc[blocktype.KeyDeprecated]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%q must be a list, got %T", blocktype.KeyDeprecated, v)
		}
		for _, item := range list {
			if entry, ok := item.(map[string]any); ok {
				refs(entry, blocktype.KeySave, blocktype.KeyMigrate, blocktype.KeyIsEligible)
			}
		}
	}

	return blocktype.FromMap(doc)
}

// refs turns string callables into handles. Other values are left for the
// validator to judge.
func refs(doc map[string]any, keys ...string) {
	for _, k := range keys {
		if s, ok := doc[k].(string); ok && s != "" {
			doc[k] = blocktype.Ref(s)
		}
	}
}

func convertIcon(v any) (any, error) {
	switch val := v.(type) {
	case string:
		if icon.LooksLikeSVG(val) {
			return icon.ParseSVG(val)
		}
	case map[string]any:
		if src, ok := val["src"].(string); ok && icon.LooksLikeSVG(src) {
			svg, err := icon.ParseSVG(src)
			if err != nil {
				return nil, err
			}
			val["src"] = svg
		}
	}
	return v, nil
}

package processor

import (
	"fmt"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
)

// DefaultLegacyCategories maps retired category slugs to their replacements.
var DefaultLegacyCategories = map[string]string{
	"common":     "text",
	"formatting": "text",
	"layout":     "design",
}

// NormalizeCategory rewrites a legacy category and removes one that is not
// among known, reporting a warning. It never rejects.
func NormalizeCategory(s *blocktype.Settings, known []blocktype.Category, legacy map[string]string, sink diagnostics.Sink) {
	if s.Category == "" {
		return
	}
	if mapped, ok := legacy[s.Category]; ok {
		s.Category = mapped
	}
	for _, c := range known {
		if c.Slug == s.Category {
			return
		}
	}
	diagnostics.Warning(sink, errors.ErrInvalidCategory, s.Name,
		fmt.Sprintf("The block %q is registered with an invalid category %q.", s.Name, s.Category))
	s.Delete(blocktype.KeyCategory)
}

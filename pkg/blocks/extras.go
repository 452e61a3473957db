package blocks

import (
	"strings"
	"unicode"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/store"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RegisterBlockStyle adds style to each named block. Blocks need not be
// registered yet.
func (r *Registry) RegisterBlockStyle(blockNames []string, style blocktype.Style) error {
	if style.Name == "" || strings.ContainsFunc(style.Name, unicode.IsSpace) {
		err := errors.Newf(errors.ErrInvalidInput, "Block style name %q must be a non-empty string without spaces.", style.Name)
		for _, name := range blockNames {
			diagnostics.Warning(r.sink, errors.ErrInvalidInput, name, err.Message)
		}
		return err
	}
	r.store.Dispatch(store.AddBlockStyles{BlockNames: blockNames, Styles: []blocktype.Style{style}})
	return nil
}

// UnregisterBlockStyle removes a style from a block.
func (r *Registry) UnregisterBlockStyle(blockName, styleName string) {
	r.store.Dispatch(store.RemoveBlockStyles{BlockName: blockName, StyleNames: []string{styleName}})
}

// GetBlockStyles returns the styles of a block.
func (r *Registry) GetBlockStyles(name string) []blocktype.Style {
	styles, _ := r.store.State().Styles.Lookup(name)
	return append([]blocktype.Style(nil), styles...)
}

// RegisterBlockVariation adds variation to a block.
func (r *Registry) RegisterBlockVariation(blockName string, variation blocktype.Variation) error {
	if variation.Name == "" {
		err := errors.New(errors.ErrInvalidInput, "Variation names must be unique strings.")
		diagnostics.Warning(r.sink, errors.ErrInvalidInput, blockName, err.Message)
		return err
	}
	r.store.Dispatch(store.AddBlockVariations{BlockName: blockName, Variations: []blocktype.Variation{variation}})
	return nil
}

// UnregisterBlockVariation removes a variation from a block.
func (r *Registry) UnregisterBlockVariation(blockName, variationName string) {
	r.store.Dispatch(store.RemoveBlockVariations{BlockName: blockName, VariationNames: []string{variationName}})
}

// GetBlockVariations returns the variations of a block available in scope.
// An empty scope returns all of them.
func (r *Registry) GetBlockVariations(name, scope string) []blocktype.Variation {
	variations, _ := r.store.State().Variations.Lookup(name)
	out := make([]blocktype.Variation, 0, len(variations))
	for _, v := range variations {
		if scope == "" || v.HasScope(scope) {
			out = append(out, v)
		}
	}
	return out
}

// GetDefaultBlockVariation returns the variation marked default in scope.
// When several are, the last one wins.
func (r *Registry) GetDefaultBlockVariation(name, scope string) (blocktype.Variation, bool) {
	var found blocktype.Variation
	ok := false
	for _, v := range r.GetBlockVariations(name, scope) {
		if v.IsDefault {
			found, ok = v, true
		}
	}
	return found, ok
}

// RegisterBlockCollection gives the namespace a title and icon.
func (r *Registry) RegisterBlockCollection(namespace, title string, icon any) {
	r.store.Dispatch(store.AddBlockCollection{Namespace: namespace, Title: title, Icon: icon})
}

// UnregisterBlockCollection removes the namespace's collection.
func (r *Registry) UnregisterBlockCollection(namespace string) {
	r.store.Dispatch(store.RemoveBlockCollection{Namespace: namespace})
}

// GetCollections returns the collections in registration order.
func (r *Registry) GetCollections() []blocktype.Collection {
	return r.store.State().Collections.Values()
}

// SetCategories replaces the category list.
func (r *Registry) SetCategories(categories []blocktype.Category) {
	r.store.Dispatch(store.SetCategories{Categories: categories})
}

// UpdateCategory merges patch into the category with slug. Unknown slugs are
// ignored.
func (r *Registry) UpdateCategory(slug string, patch blocktype.CategoryPatch) {
	r.store.Dispatch(store.UpdateCategory{Slug: slug, Patch: patch})
}

// GetCategories returns the category list.
func (r *Registry) GetCategories() []blocktype.Category {
	return append([]blocktype.Category(nil), r.store.State().Categories...)
}

// SetDefaultBlockName sets the block inserted by default.
func (r *Registry) SetDefaultBlockName(name string) {
	r.store.Dispatch(store.SetDefaultBlockName{Name: name})
}

// GetDefaultBlockName returns the default block name.
func (r *Registry) GetDefaultBlockName() string { return r.store.State().DefaultBlockName }

// SetFreeformContentHandlerName sets the block that handles freeform content.
func (r *Registry) SetFreeformContentHandlerName(name string) {
	r.store.Dispatch(store.SetFreeformFallbackBlockName{Name: name})
}

// GetFreeformContentHandlerName returns the freeform content handler.
func (r *Registry) GetFreeformContentHandlerName() string {
	return r.store.State().FreeformFallbackBlockName
}

// SetUnregisteredTypeHandlerName sets the block that stands in for unknown blocks.
func (r *Registry) SetUnregisteredTypeHandlerName(name string) {
	r.store.Dispatch(store.SetUnregisteredFallbackBlockName{Name: name})
}

// GetUnregisteredTypeHandlerName returns the unregistered block handler.
func (r *Registry) GetUnregisteredTypeHandlerName() string {
	return r.store.State().UnregisteredFallbackBlockName
}

// SetGroupingBlockName sets the block used to group other blocks.
func (r *Registry) SetGroupingBlockName(name string) {
	r.store.Dispatch(store.SetGroupingBlockName{Name: name})
}

// GetGroupingBlockName returns the grouping block name.
func (r *Registry) GetGroupingBlockName() string { return r.store.State().GroupingBlockName }

// GetFallbacks returns every fallback slot keyed by slot name.
func (r *Registry) GetFallbacks() map[string]string { return r.store.State().Fallbacks() }

// IsMatchingSearchTerm reports whether term matches the title, a keyword,
// the category or a string description of the block. Matching ignores case,
// accents and surrounding space.
func (r *Registry) IsMatchingSearchTerm(name, term string) bool {
	s, ok := r.store.State().BlockTypes.Lookup(name)
	if !ok {
		return false
	}
	needle := normalizeSearch(term)
	match := func(candidate string) bool {
		return strings.Contains(normalizeSearch(candidate), needle)
	}

	if title, ok := s.Title.(string); ok && match(title) {
		return true
	}
	for _, k := range s.Keywords {
		if match(k) {
			return true
		}
	}
	if match(s.Category) {
		return true
	}
	if description, ok := s.Description.(string); ok && match(description) {
		return true
	}
	return false
}

func normalizeSearch(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

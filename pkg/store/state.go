package store

import (
	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/registry"
)

// State is one snapshot of the registry. A State returned by Store.State must
// not be modified.
type State struct {
	// BlockTypes holds the processed definitions by name.
	BlockTypes *registry.Map[*blocktype.Settings]
	// Unprocessed holds every definition ever submitted, including ones that
	// failed processing, so filters can be reapplied later.
	Unprocessed *registry.Map[*blocktype.Settings]
	Styles      *registry.Map[[]blocktype.Style]
	Variations  *registry.Map[[]blocktype.Variation]
	Collections *registry.Map[blocktype.Collection]
	Categories  []blocktype.Category

	DefaultBlockName              string
	FreeformFallbackBlockName     string
	UnregisteredFallbackBlockName string
	GroupingBlockName             string
}

// NewState returns an empty State with the given categories.
func NewState(categories []blocktype.Category) *State {
	return &State{
		BlockTypes:  registry.New[*blocktype.Settings](),
		Unprocessed: registry.New[*blocktype.Settings](),
		Styles:      registry.New[[]blocktype.Style](),
		Variations:  registry.New[[]blocktype.Variation](),
		Collections: registry.New[blocktype.Collection](),
		Categories:  append([]blocktype.Category(nil), categories...),
	}
}

// clone copies the containers. Values inside are shared; actions replace
// them rather than mutate them.
func (s *State) clone() *State {
	c := *s
	c.BlockTypes = s.BlockTypes.Clone()
	c.Unprocessed = s.Unprocessed.Clone()
	c.Styles = s.Styles.Clone()
	c.Variations = s.Variations.Clone()
	c.Collections = s.Collections.Clone()
	c.Categories = append([]blocktype.Category(nil), s.Categories...)
	return &c
}

// Category returns the category with the given slug.
func (s *State) Category(slug string) (blocktype.Category, bool) {
	for _, c := range s.Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return blocktype.Category{}, false
}

// Fallbacks returns the fallback name slots keyed by slot name.
func (s *State) Fallbacks() map[string]string {
	return map[string]string{
		SlotDefault:      s.DefaultBlockName,
		SlotFreeform:     s.FreeformFallbackBlockName,
		SlotUnregistered: s.UnregisteredFallbackBlockName,
		SlotGrouping:     s.GroupingBlockName,
	}
}

// Fallback slot names.
const (
	SlotDefault      = "default"
	SlotFreeform     = "freeform"
	SlotUnregistered = "unregistered"
	SlotGrouping     = "grouping"
)

// DefaultCategories are the categories a fresh registry starts with.
func DefaultCategories() []blocktype.Category {
	return []blocktype.Category{
		{Slug: "text", Title: "Text"},
		{Slug: "media", Title: "Media"},
		{Slug: "design", Title: "Design"},
		{Slug: "widgets", Title: "Widgets"},
		{Slug: "theme", Title: "Theme"},
		{Slug: "embed", Title: "Embeds"},
		{Slug: "reusable", Title: "Reusable blocks"},
	}
}

package store

import (
	"github.com/arthur-debert/blockreg/pkg/blocktype"
)

// ActionType names an action for logging
type ActionType string

const (
	ActionAddBlockTypes                    ActionType = "ADD_BLOCK_TYPES"
	ActionRemoveBlockTypes                 ActionType = "REMOVE_BLOCK_TYPES"
	ActionAddUnprocessedBlockType          ActionType = "ADD_UNPROCESSED_BLOCK_TYPE"
	ActionAddBlockStyles                   ActionType = "ADD_BLOCK_STYLES"
	ActionRemoveBlockStyles                ActionType = "REMOVE_BLOCK_STYLES"
	ActionAddBlockVariations               ActionType = "ADD_BLOCK_VARIATIONS"
	ActionRemoveBlockVariations            ActionType = "REMOVE_BLOCK_VARIATIONS"
	ActionSetDefaultBlockName              ActionType = "SET_DEFAULT_BLOCK_NAME"
	ActionSetFreeformFallbackBlockName     ActionType = "SET_FREEFORM_FALLBACK_BLOCK_NAME"
	ActionSetUnregisteredFallbackBlockName ActionType = "SET_UNREGISTERED_FALLBACK_BLOCK_NAME"
	ActionSetGroupingBlockName             ActionType = "SET_GROUPING_BLOCK_NAME"
	ActionSetCategories                    ActionType = "SET_CATEGORIES"
	ActionUpdateCategory                   ActionType = "UPDATE_CATEGORY"
	ActionAddBlockCollection               ActionType = "ADD_BLOCK_COLLECTION"
	ActionRemoveBlockCollection            ActionType = "REMOVE_BLOCK_COLLECTION"
)

// Action is a description of a state change.
type Action interface {
	Type() ActionType
	apply(*State)
}

// AddBlockTypes upserts processed definitions by name. Styles and variations
// the definitions declare are merged into the per-block lists with source
// "block", replacing the ones an earlier version of the block declared.
type AddBlockTypes struct {
	BlockTypes []*blocktype.Settings
}

func (AddBlockTypes) Type() ActionType { return ActionAddBlockTypes }

func (a AddBlockTypes) apply(s *State) {
	for _, bt := range a.BlockTypes {
		if bt == nil || bt.Name == "" {
			continue
		}
		s.BlockTypes.Set(bt.Name, bt)

		styles := make([]blocktype.Style, 0, len(bt.Styles))
		for _, st := range bt.Styles {
			st.Source = blocktype.SourceBlock
			styles = append(styles, st)
		}
		existing, _ := s.Styles.Lookup(bt.Name)
		for _, st := range existing {
			if st.Source != blocktype.SourceBlock {
				styles = upsertStyle(styles, st)
			}
		}
		s.Styles.Set(bt.Name, uniqueStyles(styles))

		variations := make([]blocktype.Variation, 0, len(bt.Variations))
		for _, v := range bt.Variations {
			v.Source = blocktype.SourceBlock
			variations = append(variations, v)
		}
		existingVariations, _ := s.Variations.Lookup(bt.Name)
		for _, v := range existingVariations {
			if v.Source != blocktype.SourceBlock {
				variations = upsertVariation(variations, v)
			}
		}
		s.Variations.Set(bt.Name, uniqueVariations(variations))
	}
}

// RemoveBlockTypes deletes definitions by name, together with their raw
// entries and any fallback slot naming them. Unknown names are ignored.
type RemoveBlockTypes struct {
	Names []string
}

func (RemoveBlockTypes) Type() ActionType { return ActionRemoveBlockTypes }

func (a RemoveBlockTypes) apply(s *State) {
	for _, name := range a.Names {
		s.BlockTypes.Delete(name)
		s.Unprocessed.Delete(name)
		s.Styles.Delete(name)
		s.Variations.Delete(name)

		if s.DefaultBlockName == name {
			s.DefaultBlockName = ""
		}
		if s.FreeformFallbackBlockName == name {
			s.FreeformFallbackBlockName = ""
		}
		if s.UnregisteredFallbackBlockName == name {
			s.UnregisteredFallbackBlockName = ""
		}
		if s.GroupingBlockName == name {
			s.GroupingBlockName = ""
		}
	}
}

// AddUnprocessedBlockType records a definition as submitted.
type AddUnprocessedBlockType struct {
	Name      string
	BlockType *blocktype.Settings
}

func (AddUnprocessedBlockType) Type() ActionType { return ActionAddUnprocessedBlockType }

func (a AddUnprocessedBlockType) apply(s *State) {
	if a.Name == "" || a.BlockType == nil {
		return
	}
	s.Unprocessed.Set(a.Name, a.BlockType)
}

// AddBlockStyles upserts styles by name on each of the named blocks.
type AddBlockStyles struct {
	BlockNames []string
	Styles     []blocktype.Style
}

func (AddBlockStyles) Type() ActionType { return ActionAddBlockStyles }

func (a AddBlockStyles) apply(s *State) {
	for _, name := range a.BlockNames {
		existing, _ := s.Styles.Lookup(name)
		styles := append([]blocktype.Style(nil), existing...)
		for _, st := range a.Styles {
			styles = upsertStyle(styles, st)
		}
		s.Styles.Set(name, styles)
	}
}

// RemoveBlockStyles deletes styles by name from one block.
type RemoveBlockStyles struct {
	BlockName  string
	StyleNames []string
}

func (RemoveBlockStyles) Type() ActionType { return ActionRemoveBlockStyles }

func (a RemoveBlockStyles) apply(s *State) {
	existing, ok := s.Styles.Lookup(a.BlockName)
	if !ok {
		return
	}
	kept := make([]blocktype.Style, 0, len(existing))
	for _, st := range existing {
		if !contains(a.StyleNames, st.Name) {
			kept = append(kept, st)
		}
	}
	s.Styles.Set(a.BlockName, kept)
}

// AddBlockVariations upserts variations by name on one block.
type AddBlockVariations struct {
	BlockName  string
	Variations []blocktype.Variation
}

func (AddBlockVariations) Type() ActionType { return ActionAddBlockVariations }

func (a AddBlockVariations) apply(s *State) {
	existing, _ := s.Variations.Lookup(a.BlockName)
	variations := append([]blocktype.Variation(nil), existing...)
	for _, v := range a.Variations {
		variations = upsertVariation(variations, v)
	}
	s.Variations.Set(a.BlockName, variations)
}

// RemoveBlockVariations deletes variations by name from one block.
type RemoveBlockVariations struct {
	BlockName      string
	VariationNames []string
}

func (RemoveBlockVariations) Type() ActionType { return ActionRemoveBlockVariations }

func (a RemoveBlockVariations) apply(s *State) {
	existing, ok := s.Variations.Lookup(a.BlockName)
	if !ok {
		return
	}
	kept := make([]blocktype.Variation, 0, len(existing))
	for _, v := range existing {
		if !contains(a.VariationNames, v.Name) {
			kept = append(kept, v)
		}
	}
	s.Variations.Set(a.BlockName, kept)
}

// SetDefaultBlockName overwrites the default block slot. The name is not
// checked against registered blocks.
type SetDefaultBlockName struct{ Name string }

func (SetDefaultBlockName) Type() ActionType { return ActionSetDefaultBlockName }

func (a SetDefaultBlockName) apply(s *State) { s.DefaultBlockName = a.Name }

// SetFreeformFallbackBlockName overwrites the freeform content handler slot.
type SetFreeformFallbackBlockName struct{ Name string }

func (SetFreeformFallbackBlockName) Type() ActionType { return ActionSetFreeformFallbackBlockName }

func (a SetFreeformFallbackBlockName) apply(s *State) { s.FreeformFallbackBlockName = a.Name }

// SetUnregisteredFallbackBlockName overwrites the unregistered block handler slot.
type SetUnregisteredFallbackBlockName struct{ Name string }

func (SetUnregisteredFallbackBlockName) Type() ActionType {
	return ActionSetUnregisteredFallbackBlockName
}

func (a SetUnregisteredFallbackBlockName) apply(s *State) { s.UnregisteredFallbackBlockName = a.Name }

// SetGroupingBlockName overwrites the grouping block slot.
type SetGroupingBlockName struct{ Name string }

func (SetGroupingBlockName) Type() ActionType { return ActionSetGroupingBlockName }

func (a SetGroupingBlockName) apply(s *State) { s.GroupingBlockName = a.Name }

// SetCategories replaces the category list.
type SetCategories struct {
	Categories []blocktype.Category
}

func (SetCategories) Type() ActionType { return ActionSetCategories }

func (a SetCategories) apply(s *State) {
	s.Categories = append([]blocktype.Category(nil), a.Categories...)
}

// UpdateCategory merges Patch into the category with Slug. An empty patch or
// an unknown slug changes nothing.
type UpdateCategory struct {
	Slug  string
	Patch blocktype.CategoryPatch
}

func (UpdateCategory) Type() ActionType { return ActionUpdateCategory }

func (a UpdateCategory) apply(s *State) {
	if a.Patch.IsEmpty() {
		return
	}
	for i, c := range s.Categories {
		if c.Slug == a.Slug {
			s.Categories[i] = a.Patch.Apply(c)
			return
		}
	}
}

// AddBlockCollection upserts a collection by namespace.
type AddBlockCollection struct {
	Namespace string
	Title     string
	Icon      any
}

func (AddBlockCollection) Type() ActionType { return ActionAddBlockCollection }

func (a AddBlockCollection) apply(s *State) {
	s.Collections.Set(a.Namespace, blocktype.Collection{Namespace: a.Namespace, Title: a.Title, Icon: a.Icon})
}

// RemoveBlockCollection deletes a collection by namespace.
type RemoveBlockCollection struct{ Namespace string }

func (RemoveBlockCollection) Type() ActionType { return ActionRemoveBlockCollection }

func (a RemoveBlockCollection) apply(s *State) { s.Collections.Delete(a.Namespace) }

func upsertStyle(list []blocktype.Style, st blocktype.Style) []blocktype.Style {
	for i := range list {
		if list[i].Name == st.Name {
			list[i] = st
			return list
		}
	}
	return append(list, st)
}

func uniqueStyles(list []blocktype.Style) []blocktype.Style {
	out := make([]blocktype.Style, 0, len(list))
	for _, st := range list {
		out = upsertStyle(out, st)
	}
	return out
}

func upsertVariation(list []blocktype.Variation, v blocktype.Variation) []blocktype.Variation {
	for i := range list {
		if list[i].Name == v.Name {
			list[i] = v
			return list
		}
	}
	return append(list, v)
}

func uniqueVariations(list []blocktype.Variation) []blocktype.Variation {
	out := make([]blocktype.Variation, 0, len(list))
	for _, v := range list {
		out = upsertVariation(out, v)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

package blocktype

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Wire names of the fields Settings knows about.
const (
	KeyName            = "name"
	KeyAPIVersion      = "apiVersion"
	KeyTitle           = "title"
	KeyDescription     = "description"
	KeyCategory        = "category"
	KeyIcon            = "icon"
	KeyKeywords        = "keywords"
	KeyParent          = "parent"
	KeyAncestor        = "ancestor"
	KeyAllowedBlocks   = "allowedBlocks"
	KeyAttributes      = "attributes"
	KeyProvidesContext = "providesContext"
	KeyUsesContext     = "usesContext"
	KeySelectors       = "selectors"
	KeySupports        = "supports"
	KeyStyles          = "styles"
	KeyVariations      = "variations"
	KeyExample         = "example"
	KeyBlockHooks      = "blockHooks"
	KeyTextDomain      = "textdomain"
	KeySave            = "save"
	KeyEdit            = "edit"
	KeyDeprecated      = "deprecated"
	KeyMigrate         = "migrate"
	KeyIsEligible      = "isEligible"
)

var knownKeys = []string{
	KeyName, KeyAPIVersion, KeyTitle, KeyDescription, KeyCategory, KeyIcon,
	KeyKeywords, KeyParent, KeyAncestor, KeyAllowedBlocks, KeyAttributes,
	KeyProvidesContext, KeyUsesContext, KeySelectors, KeySupports, KeyStyles,
	KeyVariations, KeyExample, KeyBlockHooks, KeyTextDomain, KeySave, KeyEdit,
	KeyDeprecated,
}

// Settings is a block type definition as it travels through registration.
//
// Fields the registry understands are typed; anything else a definition or a
// filter adds is kept in Extra. Title, Description, Icon, Save and Edit are
// loosely typed because third-party definitions may get them wrong and the
// validator has to be able to say so. A nil or zero field is absent.
type Settings struct {
	Name            string
	APIVersion      int
	Title           any
	Description     any
	Category        string
	Icon            any
	Keywords        []string
	Parent          []string
	Ancestor        []string
	AllowedBlocks   []string
	Attributes      map[string]any
	ProvidesContext map[string]any
	UsesContext     []string
	Selectors       map[string]any
	Supports        map[string]any
	Styles          []Style
	Variations      []Variation
	Example         map[string]any
	BlockHooks      map[string]string
	TextDomain      string
	Save            any
	Edit            any
	Deprecated      []Deprecation

	Extra map[string]any
}

// Get returns the value stored under a wire key and whether it is present.
func (s *Settings) Get(key string) (any, bool) {
	switch key {
	case KeyName:
		return s.Name, s.Name != ""
	case KeyAPIVersion:
		return s.APIVersion, s.APIVersion != 0
	case KeyTitle:
		return s.Title, s.Title != nil
	case KeyDescription:
		return s.Description, s.Description != nil
	case KeyCategory:
		return s.Category, s.Category != ""
	case KeyIcon:
		return s.Icon, s.Icon != nil
	case KeyKeywords:
		return s.Keywords, s.Keywords != nil
	case KeyParent:
		return s.Parent, s.Parent != nil
	case KeyAncestor:
		return s.Ancestor, s.Ancestor != nil
	case KeyAllowedBlocks:
		return s.AllowedBlocks, s.AllowedBlocks != nil
	case KeyAttributes:
		return s.Attributes, s.Attributes != nil
	case KeyProvidesContext:
		return s.ProvidesContext, s.ProvidesContext != nil
	case KeyUsesContext:
		return s.UsesContext, s.UsesContext != nil
	case KeySelectors:
		return s.Selectors, s.Selectors != nil
	case KeySupports:
		return s.Supports, s.Supports != nil
	case KeyStyles:
		return s.Styles, s.Styles != nil
	case KeyVariations:
		return s.Variations, s.Variations != nil
	case KeyExample:
		return s.Example, s.Example != nil
	case KeyBlockHooks:
		return s.BlockHooks, s.BlockHooks != nil
	case KeyTextDomain:
		return s.TextDomain, s.TextDomain != ""
	case KeySave:
		return s.Save, s.Save != nil
	case KeyEdit:
		return s.Edit, s.Edit != nil
	case KeyDeprecated:
		return s.Deprecated, s.Deprecated != nil
	}
	v, ok := s.Extra[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Settings) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set stores value under a wire key. Typed fields convert compatible values
// (a []any of strings becomes []string, any number becomes an int) and
// return an error for anything else. Unknown keys go to Extra.
func (s *Settings) Set(key string, value any) error {
	var err error
	switch key {
	case KeyName:
		s.Name, err = toString(value)
	case KeyAPIVersion:
		s.APIVersion, err = toInt(value)
	case KeyTitle:
		s.Title = value
	case KeyDescription:
		s.Description = value
	case KeyCategory:
		s.Category, err = toString(value)
	case KeyIcon:
		s.Icon, err = ToIcon(value)
	case KeyKeywords:
		s.Keywords, err = toStrings(value)
	case KeyParent:
		s.Parent, err = toStrings(value)
	case KeyAncestor:
		s.Ancestor, err = toStrings(value)
	case KeyAllowedBlocks:
		s.AllowedBlocks, err = toStrings(value)
	case KeyAttributes:
		s.Attributes, err = toMap(value)
	case KeyProvidesContext:
		s.ProvidesContext, err = toMap(value)
	case KeyUsesContext:
		s.UsesContext, err = toStrings(value)
	case KeySelectors:
		s.Selectors, err = toMap(value)
	case KeySupports:
		s.Supports, err = toMap(value)
	case KeyStyles:
		s.Styles, err = toStyles(value)
	case KeyVariations:
		s.Variations, err = toVariations(value)
	case KeyExample:
		s.Example, err = toMap(value)
	case KeyBlockHooks:
		s.BlockHooks, err = toStringMap(value)
	case KeyTextDomain:
		s.TextDomain, err = toString(value)
	case KeySave:
		s.Save = value
	case KeyEdit:
		s.Edit = value
	case KeyDeprecated:
		s.Deprecated, err = toDeprecations(value)
	default:
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[key] = value
	}
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Settings) Delete(key string) {
	switch key {
	case KeyName:
		s.Name = ""
	case KeyAPIVersion:
		s.APIVersion = 0
	case KeyTitle:
		s.Title = nil
	case KeyDescription:
		s.Description = nil
	case KeyCategory:
		s.Category = ""
	case KeyIcon:
		s.Icon = nil
	case KeyKeywords:
		s.Keywords = nil
	case KeyParent:
		s.Parent = nil
	case KeyAncestor:
		s.Ancestor = nil
	case KeyAllowedBlocks:
		s.AllowedBlocks = nil
	case KeyAttributes:
		s.Attributes = nil
	case KeyProvidesContext:
		s.ProvidesContext = nil
	case KeyUsesContext:
		s.UsesContext = nil
	case KeySelectors:
		s.Selectors = nil
	case KeySupports:
		s.Supports = nil
	case KeyStyles:
		s.Styles = nil
	case KeyVariations:
		s.Variations = nil
	case KeyExample:
		s.Example = nil
	case KeyBlockHooks:
		s.BlockHooks = nil
	case KeyTextDomain:
		s.TextDomain = ""
	case KeySave:
		s.Save = nil
	case KeyEdit:
		s.Edit = nil
	case KeyDeprecated:
		s.Deprecated = nil
	default:
		delete(s.Extra, key)
	}
}

// Keys returns the present keys: known fields in declaration order followed
// by extra fields sorted by name.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(knownKeys)+len(s.Extra))
	for _, k := range knownKeys {
		if s.Has(k) {
			keys = append(keys, k)
		}
	}
	extra := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Clone returns a copy that shares no maps or slices with s.
// Opaque values (callables, elements) are shared.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	c.Keywords = cloneStrings(s.Keywords)
	c.Parent = cloneStrings(s.Parent)
	c.Ancestor = cloneStrings(s.Ancestor)
	c.AllowedBlocks = cloneStrings(s.AllowedBlocks)
	c.Attributes = cloneMap(s.Attributes)
	c.ProvidesContext = cloneMap(s.ProvidesContext)
	c.UsesContext = cloneStrings(s.UsesContext)
	c.Selectors = cloneMap(s.Selectors)
	c.Supports = cloneMap(s.Supports)
	c.Example = cloneMap(s.Example)
	c.Extra = cloneMap(s.Extra)
	c.Icon = cloneIcon(s.Icon)
	if s.BlockHooks != nil {
		c.BlockHooks = make(map[string]string, len(s.BlockHooks))
		for k, v := range s.BlockHooks {
			c.BlockHooks[k] = v
		}
	}
	if s.Styles != nil {
		c.Styles = append([]Style{}, s.Styles...)
	}
	if s.Variations != nil {
		c.Variations = make([]Variation, len(s.Variations))
		for i, v := range s.Variations {
			c.Variations[i] = v.clone()
		}
	}
	if s.Deprecated != nil {
		c.Deprecated = make([]Deprecation, len(s.Deprecated))
		for i, d := range s.Deprecated {
			c.Deprecated[i] = d.Clone()
		}
	}
	return &c
}

// Omit returns a clone without the given keys.
func (s *Settings) Omit(keys ...string) *Settings {
	c := s.Clone()
	for _, k := range keys {
		c.Delete(k)
	}
	return c
}

// ToMap flattens the settings into a wire-keyed map.
func (s *Settings) ToMap() map[string]any {
	out := make(map[string]any)
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		out[k] = v
	}
	return out
}

// FromMap builds Settings from a decoded document.
func FromMap(m map[string]any) (*Settings, error) {
	s := &Settings{}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] == nil {
			continue
		}
		if err := s.Set(k, m[k]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MarshalJSON renders the settings with callables reduced to their handle
// names and elements to their markup.
func (s *Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		out[k] = ExportValue(v)
	}
	return json.Marshal(out)
}

func (v Variation) clone() Variation {
	c := v
	c.Attributes = cloneMap(v.Attributes)
	c.Example = cloneMap(v.Example)
	c.Scope = cloneStrings(v.Scope)
	c.Keywords = cloneStrings(v.Keywords)
	c.IsActive = cloneStrings(v.IsActive)
	if v.InnerBlocks != nil {
		c.InnerBlocks = cloneSlice(v.InnerBlocks)
	}
	return c
}

// HasScope reports whether the variation applies to scope. Variations
// without an explicit scope apply to "block" and "inserter".
func (v Variation) HasScope(scope string) bool {
	scopes := v.Scope
	if len(scopes) == 0 {
		scopes = []string{"block", "inserter"}
	}
	for _, sc := range scopes {
		if sc == scope {
			return true
		}
	}
	return false
}

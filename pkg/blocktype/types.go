package blocktype

import "reflect"

// Callable is an opaque handle to a function owned by the rendering layer.
// The registry never invokes it, it only checks that one is present.
type Callable interface {
	CallableRef() string
}

// Ref is a Callable identified by the name the renderer resolves it with.
type Ref string

// CallableRef returns the handle name.
func (r Ref) CallableRef() string { return string(r) }

// IsCallable reports whether v is a usable callable handle: a non-empty Callable
// or a non-nil Go func value.
func IsCallable(v any) bool {
	if v == nil {
		return false
	}
	if c, ok := v.(Callable); ok {
		return c.CallableRef() != ""
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// Element is a renderable value, such as parsed inline SVG markup.
type Element interface {
	Render() string
}

// Icon is the normalized icon shape stored on processed block types.
type Icon struct {
	Src         any    `json:"src" mapstructure:"src"`
	Background  string `json:"background,omitempty" mapstructure:"background"`
	Foreground  string `json:"foreground,omitempty" mapstructure:"foreground"`
	ShadowColor string `json:"shadowColor,omitempty" mapstructure:"shadowColor"`
}

// Category groups block types in the inserter. Slug is the join key with
// Settings.Category.
type Category struct {
	Slug  string `json:"slug" koanf:"slug"`
	Title string `json:"title" koanf:"title"`
	Icon  any    `json:"icon,omitempty" koanf:"icon"`
}

// CategoryPatch holds the fields UpdateCategory merges into an existing
// category. Nil fields are left untouched.
type CategoryPatch struct {
	Title *string
	Icon  any
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Title == nil && p.Icon == nil
}

// Apply returns c with the patch merged in.
func (p CategoryPatch) Apply(c Category) Category {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Icon != nil {
		c.Icon = p.Icon
	}
	return c
}

// Style is an alternative visual style for a block type, unique by name
// within one block.
type Style struct {
	Name        string `json:"name" mapstructure:"name"`
	Label       string `json:"label,omitempty" mapstructure:"label"`
	IsDefault   bool   `json:"isDefault,omitempty" mapstructure:"isDefault"`
	InlineStyle string `json:"inlineStyle,omitempty" mapstructure:"inlineStyle"`
	StyleHandle string `json:"styleHandle,omitempty" mapstructure:"styleHandle"`
	Source      string `json:"source,omitempty" mapstructure:"source"`
}

// Variation is a preset of attributes and inner blocks for a block type,
// unique by name within one block.
type Variation struct {
	Name        string         `json:"name" mapstructure:"name"`
	Title       string         `json:"title,omitempty" mapstructure:"title"`
	Description string         `json:"description,omitempty" mapstructure:"description"`
	Category    string         `json:"category,omitempty" mapstructure:"category"`
	Icon        any            `json:"icon,omitempty" mapstructure:"icon"`
	IsDefault   bool           `json:"isDefault,omitempty" mapstructure:"isDefault"`
	Attributes  map[string]any `json:"attributes,omitempty" mapstructure:"attributes"`
	InnerBlocks []any          `json:"innerBlocks,omitempty" mapstructure:"innerBlocks"`
	Example     map[string]any `json:"example,omitempty" mapstructure:"example"`
	Scope       []string       `json:"scope,omitempty" mapstructure:"scope"`
	Keywords    []string       `json:"keywords,omitempty" mapstructure:"keywords"`
	IsActive    []string       `json:"isActive,omitempty" mapstructure:"isActive"`
	Source      string         `json:"source,omitempty" mapstructure:"source"`
}

// Collection gives a title and icon to every block type of a namespace.
type Collection struct {
	Namespace string `json:"namespace" koanf:"namespace"`
	Title     string `json:"title" koanf:"title"`
	Icon      any    `json:"icon,omitempty" koanf:"icon"`
}

// Source values for styles and variations.
const (
	SourceBlock = "block"
)

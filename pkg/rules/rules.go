package rules

import (
	"path"
	"strings"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/hooks"
)

// Rule is one declarative filter.
type Rule struct {
	Match    string         `koanf:"match" mapstructure:"match"`
	Priority *int           `koanf:"priority" mapstructure:"priority"`
	Category string         `koanf:"category" mapstructure:"category"`
	Icon     string         `koanf:"icon" mapstructure:"icon"`
	Keywords []string       `koanf:"keywords" mapstructure:"keywords"`
	Supports map[string]any `koanf:"supports" mapstructure:"supports"`
}

// FilterPriority is the priority the rule's filter is added with. Rules that
// set none run at hooks.DefaultPriority.
func (r Rule) FilterPriority() int {
	if r.Priority == nil {
		return hooks.DefaultPriority
	}
	return *r.Priority
}

// Validate checks the match pattern.
func (r Rule) Validate() error {
	pattern := strings.TrimPrefix(r.Match, "!")
	if pattern == "" {
		return errors.New(errors.ErrInvalidInput, "filter rule has an empty match pattern")
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "filter rule pattern %q is malformed", r.Match)
	}
	return nil
}

// Matches reports whether the rule applies to the named block.
func (r Rule) Matches(name string) bool {
	pattern, negate := strings.CutPrefix(r.Match, "!")
	ok, err := path.Match(pattern, name)
	if err != nil {
		return false
	}
	return ok != negate
}

// Apply writes the rule into s.
func (r Rule) Apply(s *blocktype.Settings) {
	if r.Category != "" {
		s.Category = r.Category
	}
	if r.Icon != "" {
		s.Icon = r.Icon
	}
	for _, k := range r.Keywords {
		if !containsString(s.Keywords, k) {
			s.Keywords = append(s.Keywords, k)
		}
	}
	if len(r.Supports) > 0 {
		merged := make(map[string]any, len(s.Supports)+len(r.Supports))
		for k, v := range s.Supports {
			merged[k] = v
		}
		for k, v := range r.Supports {
			merged[k] = v
		}
		s.Supports = merged
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Test Type: Unit Test
// Description: Tests for declarative filter rules

package rules_test

import (
	"testing"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/hooks"
	"github.com/arthur-debert/blockreg/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		block   string
		want    bool
	}{
		{"exact", "core/paragraph", "core/paragraph", true},
		{"exact_miss", "core/paragraph", "core/heading", false},
		{"namespace_glob", "core/*", "core/heading", true},
		{"namespace_glob_miss", "core/*", "acme/heading", false},
		{"name_glob", "*/gallery", "acme/gallery", true},
		{"negated", "!core/*", "acme/card", true},
		{"negated_miss", "!core/*", "core/card", false},
		{"star_does_not_cross_slash", "*", "core/paragraph", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Rule{Match: tt.pattern}.Matches(tt.block))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, rules.Rule{Match: "core/*"}.Validate())
	assert.True(t, errors.IsErrorCode(rules.Rule{}.Validate(), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(rules.Rule{Match: "!"}.Validate(), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(rules.Rule{Match: "core/[a-"}.Validate(), errors.ErrInvalidInput))
}

func TestApply(t *testing.T) {
	s := &blocktype.Settings{
		Name:     "acme/card",
		Category: "text",
		Icon:     "id",
		Keywords: []string{"box"},
		Supports: map[string]any{"html": true, "align": true},
	}
	original := s.Supports

	rules.Rule{
		Keywords: []string{"box", "acme"},
		Supports: map[string]any{"html": false},
	}.Apply(s)

	assert.Equal(t, "text", s.Category, "unset category leaves the field alone")
	assert.Equal(t, "id", s.Icon)
	assert.Equal(t, []string{"box", "acme"}, s.Keywords)
	assert.Equal(t, map[string]any{"html": false, "align": true}, s.Supports)
	assert.Equal(t, true, original["html"], "supports map is replaced, not mutated")

	rules.Rule{Category: "widgets", Icon: "star"}.Apply(s)
	assert.Equal(t, "widgets", s.Category)
	assert.Equal(t, "star", s.Icon)
}

func TestInstall(t *testing.T) {
	filters := hooks.New()
	uninstall, err := rules.Install(filters, []rules.Rule{
		{Match: "acme/*", Category: "widgets"},
		{Match: "acme/card", Priority: intPtr(20), Category: "media"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"blockreg/rules/0", "blockreg/rules/1"}, filters.Namespaces(hooks.HookRegisterBlockType))

	out := filters.ApplyFilters(hooks.HookRegisterBlockType, &blocktype.Settings{Name: "acme/card"}, "acme/card", nil)
	assert.Equal(t, "media", out.(*blocktype.Settings).Category, "higher priority runs later")

	out = filters.ApplyFilters(hooks.HookRegisterBlockType, &blocktype.Settings{Name: "acme/list"}, "acme/list", nil)
	assert.Equal(t, "widgets", out.(*blocktype.Settings).Category)

	out = filters.ApplyFilters(hooks.HookRegisterBlockType, &blocktype.Settings{Name: "core/list"}, "core/list", nil)
	assert.Empty(t, out.(*blocktype.Settings).Category)

	uninstall()
	assert.False(t, filters.HasFilters(hooks.HookRegisterBlockType))
}

func intPtr(v int) *int { return &v }

func TestInstallPriorityZero(t *testing.T) {
	filters := hooks.New()
	require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/plain", func(v any, _ ...any) any {
		s := v.(*blocktype.Settings)
		s.Category = "text"
		return s
	}, hooks.DefaultPriority))
	_, err := rules.Install(filters, []rules.Rule{
		{Match: "acme/*", Priority: intPtr(0), Category: "widgets"},
		{Match: "acme/*", Category: "media"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"blockreg/rules/0", "acme/plain", "blockreg/rules/1"}, filters.Namespaces(hooks.HookRegisterBlockType))
	out := filters.ApplyFilters(hooks.HookRegisterBlockType, &blocktype.Settings{Name: "acme/card"}, "acme/card", nil)
	assert.Equal(t, "media", out.(*blocktype.Settings).Category, "unset priority runs at the default")
	assert.Equal(t, hooks.DefaultPriority, rules.Rule{Match: "acme/*"}.FilterPriority())
}

func TestInstallSkipsDeprecations(t *testing.T) {
	filters := hooks.New()
	_, err := rules.Install(filters, []rules.Rule{{Match: "*/*", Category: "widgets"}})
	require.NoError(t, err)

	out := filters.ApplyFilters(hooks.HookRegisterBlockType, &blocktype.Settings{Name: "acme/card"}, "acme/card", blocktype.Deprecation{})
	assert.Empty(t, out.(*blocktype.Settings).Category)
}

func TestInstallRejectsInvalid(t *testing.T) {
	filters := hooks.New()
	_, err := rules.Install(filters, []rules.Rule{{Match: "acme/*"}, {Match: ""}})

	assert.Error(t, err)
	assert.False(t, filters.HasFilters(hooks.HookRegisterBlockType))
}

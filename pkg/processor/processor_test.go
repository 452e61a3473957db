// Test Type: Unit Test
// Description: Tests for the block type registration pipeline

package processor_test

import (
	"testing"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/hooks"
	"github.com/arthur-debert/blockreg/pkg/processor"
	"github.com/arthur-debert/blockreg/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBlock() *blocktype.Settings {
	return &blocktype.Settings{
		Name:     "acme/card",
		Title:    "Card",
		Category: "text",
		Icon:     "id",
		Save:     blocktype.Ref("acme.card.save"),
		Edit:     blocktype.Ref("acme.card.edit"),
	}
}

func newProcessor(t *testing.T) (*processor.Processor, *hooks.Filters, *diagnostics.Recorder) {
	t.Helper()
	filters := hooks.New()
	rec := diagnostics.NewRecorder()
	return processor.New(filters, rec), filters, rec
}

func TestProcessAccepts(t *testing.T) {
	p, _, rec := newProcessor(t)
	raw := validBlock()

	got, err := p.Process(raw, store.DefaultCategories())
	require.NoError(t, err)

	assert.Equal(t, "acme/card", got.Name)
	assert.Equal(t, "text", got.Category)
	assert.Equal(t, &blocktype.Icon{Src: "id"}, got.Icon)
	assert.Equal(t, 0, rec.Len())
	assert.Equal(t, "id", raw.Icon, "raw definition is not modified")
}

func TestProcessRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *blocktype.Settings)
		code    errors.ErrorCode
		message string
	}{
		{
			name:    "missing_save",
			mutate:  func(s *blocktype.Settings) { s.Save = nil },
			code:    errors.ErrMissingRequiredCallable,
			message: processor.MsgMissingRequiredCallable,
		},
		{
			name:    "save_not_callable",
			mutate:  func(s *blocktype.Settings) { s.Save = "<div/>" },
			code:    errors.ErrMissingRequiredCallable,
			message: processor.MsgMissingRequiredCallable,
		},
		{
			name:    "edit_not_callable",
			mutate:  func(s *blocktype.Settings) { s.Edit = 12 },
			code:    errors.ErrInvalidOptionalCallable,
			message: processor.MsgInvalidOptionalCallable,
		},
		{
			name:    "missing_title",
			mutate:  func(s *blocktype.Settings) { s.Title = nil },
			code:    errors.ErrMissingTitle,
			message: `The block "acme/card" must have a title.`,
		},
		{
			name:    "empty_title",
			mutate:  func(s *blocktype.Settings) { s.Title = "" },
			code:    errors.ErrMissingTitle,
			message: `The block "acme/card" must have a title.`,
		},
		{
			name:    "title_not_string",
			mutate:  func(s *blocktype.Settings) { s.Title = map[string]any{"en": "Card"} },
			code:    errors.ErrInvalidTitleType,
			message: processor.MsgInvalidTitleType,
		},
		{
			name:    "icon_invalid",
			mutate:  func(s *blocktype.Settings) { s.Icon = 3 },
			code:    errors.ErrInvalidIcon,
			message: processor.MsgInvalidIcon,
		},
		{
			name:    "icon_nil",
			mutate:  func(s *blocktype.Settings) { s.Icon = nil },
			code:    errors.ErrInvalidIcon,
			message: processor.MsgInvalidIcon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, rec := newProcessor(t)
			raw := validBlock()
			tt.mutate(raw)

			got, err := p.Process(raw, store.DefaultCategories())
			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
			assert.Equal(t, "acme/card", errors.GetErrorDetails(err)["block"])

			rejected := rec.ByLevel(diagnostics.LevelError)
			require.Len(t, rejected, 1)
			assert.Equal(t, tt.code, rejected[0].Kind)
			assert.Equal(t, tt.message, rejected[0].Message)
			assert.Equal(t, "acme/card", rejected[0].Block)
		})
	}
}

func TestProcessNilDefinition(t *testing.T) {
	p, _, rec := newProcessor(t)

	_, err := p.Process(nil, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedDefinition))
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, diagnostics.UnknownBlock, rec.All()[0].Block)
}

func TestProcessFilterReturnsNonRecord(t *testing.T) {
	p, filters, rec := newProcessor(t)
	require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/broken", func(any, ...any) any {
		return []any{"not", "a", "record"}
	}, hooks.DefaultPriority))

	_, err := p.Process(validBlock(), store.DefaultCategories())
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedDefinition))
	assert.Equal(t, "[]interface {}", errors.GetErrorDetails(err)["type"])
	assert.True(t, rec.HasKind(errors.ErrMalformedDefinition))
}

func TestProcessLegacyCategories(t *testing.T) {
	tests := []struct {
		legacy string
		want   string
	}{
		{"common", "text"},
		{"formatting", "text"},
		{"layout", "design"},
	}

	for _, tt := range tests {
		t.Run(tt.legacy, func(t *testing.T) {
			p, _, rec := newProcessor(t)
			raw := validBlock()
			raw.Category = tt.legacy

			got, err := p.Process(raw, store.DefaultCategories())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, 0, rec.Len())
		})
	}
}

func TestProcessUnknownCategory(t *testing.T) {
	p, _, rec := newProcessor(t)
	raw := validBlock()
	raw.Category = "custom"

	got, err := p.Process(raw, store.DefaultCategories())
	require.NoError(t, err)

	assert.False(t, got.Has(blocktype.KeyCategory))
	warnings := rec.ByLevel(diagnostics.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, errors.ErrInvalidCategory, warnings[0].Kind)
	assert.Equal(t, `The block "acme/card" is registered with an invalid category "custom".`, warnings[0].Message)

	t.Run("no_category_is_fine", func(t *testing.T) {
		p, _, rec := newProcessor(t)
		raw := validBlock()
		raw.Category = ""

		got, err := p.Process(raw, nil)
		require.NoError(t, err)
		assert.False(t, got.Has(blocktype.KeyCategory))
		assert.Equal(t, 0, rec.Len())
	})
}

func TestProcessCustomLegacyTable(t *testing.T) {
	p := processor.New(hooks.New(), nil, processor.WithLegacyCategories(map[string]string{"old": "media"}))
	raw := validBlock()
	raw.Category = "old"

	got, err := p.Process(raw, store.DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, "media", got.Category)
}

func TestProcessFiltersMayRewrite(t *testing.T) {
	p, filters, _ := newProcessor(t)
	require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/extend", func(v any, args ...any) any {
		s := v.(*blocktype.Settings)
		if args[1] == nil {
			s.Category = "media"
			_ = s.Set("acmeFlag", true)
		}
		return s
	}, hooks.DefaultPriority))

	got, err := p.Process(validBlock(), store.DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, "media", got.Category)
	flag, ok := got.Get("acmeFlag")
	assert.True(t, ok, "unknown fields added by filters are kept")
	assert.Equal(t, true, flag)
}

func TestProcessFilterCannotRename(t *testing.T) {
	p, filters, _ := newProcessor(t)
	require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/rename", func(v any, _ ...any) any {
		s := v.(*blocktype.Settings)
		s.Name = "acme/other"
		return s
	}, hooks.DefaultPriority))

	got, err := p.Process(validBlock(), store.DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, "acme/card", got.Name)
}

func TestProcessFilterCanFixSave(t *testing.T) {
	p, filters, _ := newProcessor(t)
	require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/fix", func(v any, _ ...any) any {
		s := v.(*blocktype.Settings)
		s.Save = blocktype.Ref("fixed")
		return s
	}, hooks.DefaultPriority))

	raw := validBlock()
	raw.Save = nil
	got, err := p.Process(raw, store.DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, blocktype.Ref("fixed"), got.Save)
}

func TestProcessNonStringDescription(t *testing.T) {
	p, _, rec := newProcessor(t)
	raw := validBlock()
	raw.Description = map[string]any{"en": "A card"}

	_, err := p.Process(raw, store.DefaultCategories())
	require.NoError(t, err)

	notices := rec.ByLevel(diagnostics.LevelDeprecated)
	require.Len(t, notices, 1)
	assert.Equal(t, errors.ErrLegacyDescriptionShape, notices[0].Kind)
	assert.Equal(t, processor.DescriptionDeprecatedSince, notices[0].Since)

	t.Run("string_description_is_silent", func(t *testing.T) {
		p, _, rec := newProcessor(t)
		raw := validBlock()
		raw.Description = "A card"
		_, err := p.Process(raw, store.DefaultCategories())
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Len())
	})
}

func TestProcessIconNormalization(t *testing.T) {
	p, _, _ := newProcessor(t)
	raw := validBlock()
	raw.Icon = &blocktype.Icon{Src: "id", Background: "#000000"}

	got, err := p.Process(raw, store.DefaultCategories())
	require.NoError(t, err)

	normalized := got.Icon.(*blocktype.Icon)
	assert.Equal(t, "id", normalized.Src)
	assert.Equal(t, "#fff", normalized.Foreground)
	assert.Equal(t, "rgba(0, 0, 0, 0.3)", normalized.ShadowColor)

	again, err := p.Process(got, store.DefaultCategories())
	require.NoError(t, err)
	assert.Equal(t, got.Icon, again.Icon, "normalizing twice changes nothing")
}

func TestProcessIconSetByFilter(t *testing.T) {
	tests := []struct {
		name string
		icon any
	}{
		{"map_form", map[string]any{"src": "star", "background": "#000000"}},
		{"value_form", blocktype.Icon{Src: "star", Background: "#000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, filters, _ := newProcessor(t)
			require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/icons", func(v any, _ ...any) any {
				s := v.(*blocktype.Settings)
				s.Icon = tt.icon
				return s
			}, hooks.DefaultPriority))

			got, err := p.Process(validBlock(), store.DefaultCategories())
			require.NoError(t, err)

			normalized, ok := got.Icon.(*blocktype.Icon)
			require.True(t, ok)
			assert.Equal(t, "star", normalized.Src)
			assert.Equal(t, "#000000", normalized.Background)
			assert.Equal(t, "#fff", normalized.Foreground)
			assert.Equal(t, "rgba(0, 0, 0, 0.3)", normalized.ShadowColor)
		})
	}

	t.Run("malformed_map_is_rejected", func(t *testing.T) {
		p, filters, _ := newProcessor(t)
		require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/icons", func(v any, _ ...any) any {
			s := v.(*blocktype.Settings)
			s.Icon = map[string]any{"src": "star", "background": 7}
			return s
		}, hooks.DefaultPriority))

		_, err := p.Process(validBlock(), store.DefaultCategories())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidIcon))
	})
}

func TestProcessDeprecations(t *testing.T) {
	t.Run("live_supports_are_not_inherited", func(t *testing.T) {
		p, _, _ := newProcessor(t)
		raw := validBlock()
		raw.Supports = map[string]any{"x": true}
		raw.Deprecated = []blocktype.Deprecation{
			{Attributes: map[string]any{"old": map[string]any{"type": "string"}}, Save: blocktype.Ref("v1")},
		}

		got, err := p.Process(raw, store.DefaultCategories())
		require.NoError(t, err)

		require.Len(t, got.Deprecated, 1)
		d := got.Deprecated[0]
		assert.Nil(t, d.Supports)
		assert.Equal(t, blocktype.Ref("v1"), d.Save)
		assert.Contains(t, d.Attributes, "old")
		assert.Equal(t, map[string]any{"x": true}, got.Supports)
	})

	t.Run("explicit_supports_are_kept", func(t *testing.T) {
		p, _, _ := newProcessor(t)
		raw := validBlock()
		raw.Supports = map[string]any{"x": true}
		raw.Deprecated = []blocktype.Deprecation{{Supports: map[string]any{"y": true}}}

		got, err := p.Process(raw, store.DefaultCategories())
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"y": true}, got.Deprecated[0].Supports)
	})

	t.Run("non_allowlisted_keys_are_dropped", func(t *testing.T) {
		p, filters, _ := newProcessor(t)
		require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/extra", func(v any, _ ...any) any {
			s := v.(*blocktype.Settings)
			_ = s.Set("acmeFlag", true)
			return s
		}, hooks.DefaultPriority))
		raw := validBlock()
		raw.Deprecated = []blocktype.Deprecation{{Save: blocktype.Ref("v1"), Extra: map[string]any{"title": "Old"}}}

		got, err := p.Process(raw, store.DefaultCategories())
		require.NoError(t, err)

		d := got.Deprecated[0]
		assert.Empty(t, d.Extra)
		assert.Equal(t, []string{blocktype.KeySave}, d.Keys())
		assert.True(t, got.Has("acmeFlag"))
	})

	t.Run("filters_see_the_entry_as_context", func(t *testing.T) {
		p, filters, _ := newProcessor(t)
		var contexts []any
		require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/spy", func(v any, args ...any) any {
			assert.Equal(t, "acme/card", args[0])
			contexts = append(contexts, args[1])
			if dep, ok := args[1].(blocktype.Deprecation); ok && dep.Save == blocktype.Ref("v2") {
				s := v.(*blocktype.Settings)
				s.Attributes = map[string]any{"added": true}
			}
			return v
		}, hooks.DefaultPriority))
		raw := validBlock()
		raw.Deprecated = []blocktype.Deprecation{{Save: blocktype.Ref("v1")}, {Save: blocktype.Ref("v2")}}

		got, err := p.Process(raw, store.DefaultCategories())
		require.NoError(t, err)

		require.Len(t, contexts, 3)
		assert.Nil(t, contexts[0])
		assert.Equal(t, blocktype.Ref("v1"), contexts[1].(blocktype.Deprecation).Save)
		require.Len(t, got.Deprecated, 2)
		assert.Nil(t, got.Deprecated[0].Attributes)
		assert.Equal(t, map[string]any{"added": true}, got.Deprecated[1].Attributes)
	})

	t.Run("migrate_and_eligibility_survive", func(t *testing.T) {
		p, _, _ := newProcessor(t)
		raw := validBlock()
		raw.Deprecated = []blocktype.Deprecation{{
			Save:       blocktype.Ref("v1"),
			Migrate:    blocktype.Ref("migrate.v1"),
			IsEligible: blocktype.Ref("eligible.v1"),
			APIVersion: 2,
		}}

		got, err := p.Process(raw, store.DefaultCategories())
		require.NoError(t, err)
		d := got.Deprecated[0]
		assert.Equal(t, blocktype.Ref("migrate.v1"), d.Migrate)
		assert.Equal(t, blocktype.Ref("eligible.v1"), d.IsEligible)
		assert.Equal(t, 2, d.APIVersion)
	})

	t.Run("custom_allowlist", func(t *testing.T) {
		p := processor.New(hooks.New(), nil, processor.WithDeprecatedEntryKeys([]string{blocktype.KeySave, blocktype.KeyTitle}))
		raw := validBlock()
		raw.Deprecated = []blocktype.Deprecation{
			{Save: blocktype.Ref("v1")},
			{Save: blocktype.Ref("v2"), Extra: map[string]any{blocktype.KeyTitle: "Old card"}},
		}

		got, err := p.Process(raw, store.DefaultCategories())
		require.NoError(t, err)
		require.Len(t, got.Deprecated, 2)
		assert.NotContains(t, got.Deprecated[0].Extra, blocktype.KeyTitle, "allowlisted keys are never inherited")
		assert.Equal(t, "Old card", got.Deprecated[1].Extra[blocktype.KeyTitle])
		assert.Equal(t, []string{blocktype.KeySave, blocktype.KeyTitle}, got.Deprecated[1].Keys())
		assert.Equal(t, []string{blocktype.KeySave, blocktype.KeyTitle}, p.EntryKeys())
	})
}

func TestProcessFilterPanicPropagates(t *testing.T) {
	p, filters, _ := newProcessor(t)
	require.NoError(t, filters.AddFilter(hooks.HookRegisterBlockType, "acme/boom", func(any, ...any) any {
		panic("filter failed")
	}, hooks.DefaultPriority))

	assert.Panics(t, func() { _, _ = p.Process(validBlock(), store.DefaultCategories()) })
}

func TestValidate(t *testing.T) {
	s := validBlock()
	s.Icon = &blocktype.Icon{Src: "id"}
	assert.Nil(t, processor.Validate(s))

	s.Edit = "nope"
	err := processor.Validate(s)
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrInvalidOptionalCallable, err.Code)
}

func TestNormalizeCategory(t *testing.T) {
	rec := diagnostics.NewRecorder()
	s := &blocktype.Settings{Name: "acme/card", Category: "layout"}

	processor.NormalizeCategory(s, store.DefaultCategories(), processor.DefaultLegacyCategories, rec)
	assert.Equal(t, "design", s.Category)

	processor.NormalizeCategory(s, nil, processor.DefaultLegacyCategories, rec)
	assert.Equal(t, "", s.Category)
	assert.True(t, rec.HasKind(errors.ErrInvalidCategory))
}

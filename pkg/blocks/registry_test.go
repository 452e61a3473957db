// Test Type: Unit Test
// Description: Tests for the block registration API

package blocks_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/blockreg/pkg/blocks"
	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/hooks"
	"github.com/arthur-debert/blockreg/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observed struct {
	name string
	err  error
}

type recordingObserver struct {
	calls []observed
}

func (o *recordingObserver) ObserveRegistration(name string, err error) {
	o.calls = append(o.calls, observed{name, err})
}

func newRegistry(t *testing.T) (*blocks.Registry, *diagnostics.Recorder) {
	t.Helper()
	rec := diagnostics.NewRecorder()
	return blocks.New(blocks.Options{Sink: rec}), rec
}

func card(name string) *blocktype.Settings {
	return &blocktype.Settings{
		Name:     name,
		Title:    "Card",
		Category: "design",
		Save:     blocktype.Ref("save"),
		Keywords: []string{"box", "Panel"},
	}
}

func TestRegisterBlockType(t *testing.T) {
	r, rec := newRegistry(t)

	got, err := r.RegisterBlockType(card("acme/card"))
	require.NoError(t, err)

	assert.Equal(t, &blocktype.Icon{Src: "block-default"}, got.Icon)
	assert.Equal(t, map[string]any{}, got.Supports)
	assert.Equal(t, []string{}, got.UsesContext)
	assert.Equal(t, 0, rec.Len())

	stored, ok := r.GetBlockType("acme/card")
	require.True(t, ok)
	assert.Equal(t, "Card", stored.Title)

	raw := r.GetUnprocessedBlockTypes()["acme/card"]
	require.NotNil(t, raw)
	assert.Equal(t, "block-default", raw.Icon, "defaults are recorded on the raw entry")
}

func TestRegisterBlockTypeNames(t *testing.T) {
	tests := []struct {
		name    string
		block   string
		message string
	}{
		{"empty", "", blocks.MsgNameNotString},
		{"no_namespace", "card", blocks.MsgNameFormat},
		{"uppercase", "Acme/Card", blocks.MsgNameFormat},
		{"starts_with_digit", "acme/1card", blocks.MsgNameFormat},
		{"too_many_parts", "acme/card/extra", blocks.MsgNameFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newRegistry(t)
			_, err := r.RegisterBlockType(card(tt.block))

			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidName))
			require.Equal(t, 1, rec.Len())
			assert.Equal(t, tt.message, rec.All()[0].Message)
			assert.Empty(t, r.GetUnprocessedBlockTypes(), "nothing is recorded for a bad name")
		})
	}

	t.Run("nil_settings", func(t *testing.T) {
		r, _ := newRegistry(t)
		_, err := r.RegisterBlockType(nil)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidName))
	})
}

func TestRegisterMissingSave(t *testing.T) {
	r, rec := newRegistry(t)
	bt := card("acme/card")
	bt.Save = nil

	_, err := r.RegisterBlockType(bt)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingRequiredCallable))

	_, ok := r.GetBlockType("acme/card")
	assert.False(t, ok)
	assert.Contains(t, r.GetUnprocessedBlockTypes(), "acme/card", "rejected definitions stay recorded")
	assert.True(t, rec.HasKind(errors.ErrMissingRequiredCallable))
}

func TestRegisterTwice(t *testing.T) {
	r, rec := newRegistry(t)

	_, err := r.RegisterBlockType(card("acme/card"))
	require.NoError(t, err)
	second := card("acme/card")
	second.Title = "Card v2"
	_, err = r.RegisterBlockType(second)
	require.NoError(t, err)

	all := r.GetBlockTypes()
	require.Len(t, all, 1)
	assert.Equal(t, "Card v2", all[0].Title)
	assert.True(t, rec.HasKind(errors.ErrAlreadyRegistered))
}

func TestRegisterReturnsCopies(t *testing.T) {
	r, _ := newRegistry(t)
	in := card("acme/card")

	got, err := r.RegisterBlockType(in)
	require.NoError(t, err)
	got.Keywords[0] = "changed"
	in.Keywords[1] = "changed"

	stored, _ := r.GetBlockType("acme/card")
	assert.Equal(t, []string{"box", "Panel"}, stored.Keywords)
}

func TestUnregisterBlockType(t *testing.T) {
	r, rec := newRegistry(t)
	_, err := r.RegisterBlockType(card("acme/card"))
	require.NoError(t, err)
	r.SetDefaultBlockName("acme/card")

	old, ok := r.UnregisterBlockType("acme/card")
	require.True(t, ok)
	assert.Equal(t, "acme/card", old.Name)
	_, exists := r.GetBlockType("acme/card")
	assert.False(t, exists)
	assert.Empty(t, r.GetDefaultBlockName())
	assert.Empty(t, r.GetUnprocessedBlockTypes())

	_, ok = r.UnregisterBlockType("never/registered")
	assert.False(t, ok)
	assert.True(t, rec.HasKind(errors.ErrNotRegistered))
}

func TestForgetBlockTypes(t *testing.T) {
	r, rec := newRegistry(t)
	_, err := r.RegisterBlockType(card("acme/card"))
	require.NoError(t, err)
	bad := card("acme/bad")
	bad.Save = nil
	_, err = r.RegisterBlockType(bad)
	require.Error(t, err)
	require.Contains(t, r.GetUnprocessedBlockTypes(), "acme/bad")
	rec.Reset()

	removed := r.ForgetBlockTypes("acme/card", "acme/bad", "never/registered")
	assert.Equal(t, []string{"acme/card"}, removed)
	assert.Empty(t, r.GetUnprocessedBlockTypes())
	assert.Equal(t, 0, rec.Len())

	r.ReapplyBlockTypeFilters()
	assert.Empty(t, r.GetBlockTypes())
}

func TestConcurrentWritersStayConsistent(t *testing.T) {
	r := blocks.New(blocks.Options{Sink: diagnostics.Discard})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			def := card("acme/card")
			def.Title = fmt.Sprintf("Card %d", i)
			_, _ = r.RegisterBlockType(def)
		}(i)
		go func() {
			defer wg.Done()
			r.ReapplyBlockTypeFilters()
		}()
	}
	wg.Wait()

	raw := r.GetUnprocessedBlockTypes()["acme/card"]
	require.NotNil(t, raw)
	got, ok := r.GetBlockType("acme/card")
	require.True(t, ok)
	assert.Equal(t, raw.Title, got.Title, "processed entry must match the last recorded definition")
}

func TestRegistryObserver(t *testing.T) {
	obs := &recordingObserver{}
	r := blocks.New(blocks.Options{Sink: diagnostics.Discard, Observer: obs})

	_, _ = r.RegisterBlockType(card("acme/card"))
	bad := card("acme/bad")
	bad.Title = nil
	_, _ = r.RegisterBlockType(bad)

	require.Len(t, obs.calls, 2)
	assert.NoError(t, obs.calls[0].err)
	assert.True(t, errors.IsErrorCode(obs.calls[1].err, errors.ErrMissingTitle))
}

func TestReapplyRecoversLateCategory(t *testing.T) {
	r, rec := newRegistry(t)
	bt := card("acme/card")
	bt.Category = "custom"

	got, err := r.RegisterBlockType(bt)
	require.NoError(t, err)
	assert.False(t, got.Has(blocktype.KeyCategory))
	assert.True(t, rec.HasKind(errors.ErrInvalidCategory))

	r.SetCategories(append(r.GetCategories(), blocktype.Category{Slug: "custom", Title: "Custom"}))
	rec.Reset()
	r.ReapplyBlockTypeFilters()

	stored, ok := r.GetBlockType("acme/card")
	require.True(t, ok)
	assert.Equal(t, "custom", stored.Category)
	assert.Equal(t, 0, rec.Len(), "no warning once the category exists")
}

func TestReapplyRecoversLateFilter(t *testing.T) {
	r, _ := newRegistry(t)
	bt := card("acme/card")
	bt.Save = nil
	_, err := r.RegisterBlockType(bt)
	require.Error(t, err)

	require.NoError(t, r.Filters().AddFilter(hooks.HookRegisterBlockType, "acme/save", func(v any, _ ...any) any {
		s := v.(*blocktype.Settings)
		if s.Save == nil {
			s.Save = blocktype.Ref("late")
		}
		return s
	}, hooks.DefaultPriority))

	accepted := r.ReapplyBlockTypeFilters()
	require.Len(t, accepted, 1)
	stored, ok := r.GetBlockType("acme/card")
	require.True(t, ok)
	assert.Equal(t, blocktype.Ref("late"), stored.Save)
}

func TestReapplyIsIdempotent(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Filters().AddFilter(hooks.HookRegisterBlockType, "acme/tag", func(v any, _ ...any) any {
		s := v.(*blocktype.Settings)
		s.Keywords = append(s.Keywords, "tagged")
		return s
	}, hooks.DefaultPriority))
	for _, name := range []string{"acme/a", "acme/b", "acme/c"} {
		_, err := r.RegisterBlockType(card(name))
		require.NoError(t, err)
	}

	r.ReapplyBlockTypeFilters()
	first := r.GetBlockTypes()
	r.ReapplyBlockTypeFilters()
	second := r.GetBlockTypes()

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"box", "Panel", "tagged"}, second[0].Keywords)
}

func TestReapplyKeepsPreviouslyAccepted(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.RegisterBlockType(card("acme/card"))
	require.NoError(t, err)

	require.NoError(t, r.Filters().AddFilter(hooks.HookRegisterBlockType, "acme/break", func(v any, _ ...any) any {
		s := v.(*blocktype.Settings)
		s.Title = nil
		return s
	}, hooks.DefaultPriority))
	accepted := r.ReapplyBlockTypeFilters()

	assert.Empty(t, accepted)
	_, ok := r.GetBlockType("acme/card")
	assert.True(t, ok, "last successful result persists")
}

func TestStylesAndVariations(t *testing.T) {
	r, rec := newRegistry(t)
	bt := card("acme/card")
	bt.Styles = []blocktype.Style{{Name: "flat", Label: "Flat"}}
	bt.Variations = []blocktype.Variation{
		{Name: "wide", Scope: []string{"inserter"}},
		{Name: "narrow", IsDefault: true},
	}
	_, err := r.RegisterBlockType(bt)
	require.NoError(t, err)

	require.NoError(t, r.RegisterBlockStyle([]string{"acme/card"}, blocktype.Style{Name: "shadow"}))
	styles := r.GetBlockStyles("acme/card")
	require.Len(t, styles, 2)
	assert.Equal(t, blocktype.SourceBlock, styles[0].Source)

	r.UnregisterBlockStyle("acme/card", "flat")
	assert.Len(t, r.GetBlockStyles("acme/card"), 1)

	err = r.RegisterBlockStyle([]string{"acme/card"}, blocktype.Style{Name: "has space"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.True(t, rec.HasKind(errors.ErrInvalidInput))

	assert.Len(t, r.GetBlockVariations("acme/card", ""), 2)
	assert.Len(t, r.GetBlockVariations("acme/card", "block"), 1)
	assert.Len(t, r.GetBlockVariations("acme/card", "inserter"), 2)

	def, ok := r.GetDefaultBlockVariation("acme/card", "block")
	require.True(t, ok)
	assert.Equal(t, "narrow", def.Name)

	require.NoError(t, r.RegisterBlockVariation("acme/card", blocktype.Variation{Name: "tall", Scope: []string{"transform"}}))
	assert.Len(t, r.GetBlockVariations("acme/card", "transform"), 1)
	r.UnregisterBlockVariation("acme/card", "tall")
	assert.Empty(t, r.GetBlockVariations("acme/card", "transform"))

	assert.Error(t, r.RegisterBlockVariation("acme/card", blocktype.Variation{}))
}

func TestCollectionsAndCategories(t *testing.T) {
	r, _ := newRegistry(t)

	r.RegisterBlockCollection("acme", "Acme", "star")
	require.Len(t, r.GetCollections(), 1)
	r.UnregisterBlockCollection("acme")
	assert.Empty(t, r.GetCollections())

	before := r.GetCategories()
	title := "Words"
	r.UpdateCategory("missing", blocktype.CategoryPatch{Title: &title})
	assert.Equal(t, before, r.GetCategories())

	r.UpdateCategory("text", blocktype.CategoryPatch{Title: &title})
	assert.Equal(t, "Words", r.GetCategories()[0].Title)
}

func TestFallbacks(t *testing.T) {
	r, _ := newRegistry(t)
	r.SetDefaultBlockName("core/paragraph")
	r.SetFreeformContentHandlerName("core/freeform")
	r.SetUnregisteredTypeHandlerName("core/missing")
	r.SetGroupingBlockName("core/group")

	assert.Equal(t, "core/paragraph", r.GetDefaultBlockName())
	assert.Equal(t, "core/freeform", r.GetFreeformContentHandlerName())
	assert.Equal(t, "core/missing", r.GetUnregisteredTypeHandlerName())
	assert.Equal(t, "core/group", r.GetGroupingBlockName())
	assert.Equal(t, "core/group", r.GetFallbacks()[store.SlotGrouping])
}

func TestBlockSupport(t *testing.T) {
	r, _ := newRegistry(t)
	bt := card("acme/card")
	bt.Supports = map[string]any{
		"align":   true,
		"html":    false,
		"color":   map[string]any{"background": true, "gradients": false},
		"spacing": map[string]any{"padding": []any{"top"}},
	}
	_, err := r.RegisterBlockType(bt)
	require.NoError(t, err)

	assert.True(t, r.HasBlockSupport("acme/card", "align", false))
	assert.False(t, r.HasBlockSupport("acme/card", "html", true))
	assert.True(t, r.HasBlockSupport("acme/card", "color.background", false))
	assert.False(t, r.HasBlockSupport("acme/card", "color.gradients", true))
	assert.True(t, r.HasBlockSupport("acme/card", "missing", true))
	assert.True(t, r.HasBlockSupport("acme/card", "spacing.padding", false))
	assert.Equal(t, "fallback", r.GetBlockSupport("acme/card", "color.text", "fallback"))
	assert.Equal(t, "fallback", r.GetBlockSupport("never/registered", "align", "fallback"))
}

func TestChildBlockNames(t *testing.T) {
	r, _ := newRegistry(t)
	parent := card("acme/list")
	child := card("acme/item")
	child.Parent = []string{"acme/list"}
	other := card("acme/other")
	for _, bt := range []*blocktype.Settings{parent, child, other} {
		_, err := r.RegisterBlockType(bt)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"acme/item"}, r.GetChildBlockNames("acme/list"))
	assert.Empty(t, r.GetChildBlockNames("acme/other"))
}

func TestIsMatchingSearchTerm(t *testing.T) {
	r, _ := newRegistry(t)
	bt := card("acme/card")
	bt.Title = "Café Card"
	bt.Description = "Shows a summary"
	_, err := r.RegisterBlockType(bt)
	require.NoError(t, err)

	tests := []struct {
		term string
		want bool
	}{
		{"cafe", true},
		{"  CARD ", true},
		{"panel", true},
		{"design", true},
		{"summary", true},
		{"video", false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsMatchingSearchTerm("acme/card", tt.term))
		})
	}

	assert.False(t, r.IsMatchingSearchTerm("never/registered", "card"))
}

func TestSubscribe(t *testing.T) {
	r, _ := newRegistry(t)
	var counts []int
	unsubscribe := r.Subscribe(func(s *store.State) { counts = append(counts, s.BlockTypes.Len()) })
	defer unsubscribe()

	_, err := r.RegisterBlockType(card("acme/card"))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, counts, "raw entry then processed entry")
}

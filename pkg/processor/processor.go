package processor

import (
	"fmt"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/hooks"
	"github.com/arthur-debert/blockreg/pkg/icon"
	"github.com/arthur-debert/blockreg/pkg/logging"
)

// DescriptionDeprecatedSince is the version non-string descriptions were
// deprecated in.
const DescriptionDeprecatedSince = "6.2"

// Processor runs the registration pipeline.
type Processor struct {
	filters   hooks.Applier
	sink      diagnostics.Sink
	legacy    map[string]string
	entryKeys []string
}

// Option configures a Processor.
type Option func(*Processor)

// WithLegacyCategories replaces the legacy category table.
func WithLegacyCategories(legacy map[string]string) Option {
	return func(p *Processor) {
		p.legacy = legacy
	}
}

// WithDeprecatedEntryKeys replaces the keys a processed deprecation may keep.
func WithDeprecatedEntryKeys(keys []string) Option {
	return func(p *Processor) {
		p.entryKeys = append([]string(nil), keys...)
	}
}

// New returns a Processor applying filters and reporting to sink. A nil sink
// discards diagnostics.
func New(filters hooks.Applier, sink diagnostics.Sink, opts ...Option) *Processor {
	if sink == nil {
		sink = diagnostics.Discard
	}
	p := &Processor{
		filters:   filters,
		sink:      sink,
		legacy:    DefaultLegacyCategories,
		entryKeys: blocktype.DefaultDeprecatedEntryKeys,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EntryKeys returns the deprecation allowlist in use.
func (p *Processor) EntryKeys() []string {
	return append([]string(nil), p.entryKeys...)
}

// Process runs raw through the pipeline against the known categories. raw is
// not modified. On rejection the returned error carries the rejection code
// and the diagnostic has already been reported.
//
// Panics raised by filters are not recovered.
func (p *Processor) Process(raw *blocktype.Settings, categories []blocktype.Category) (*blocktype.Settings, error) {
	if raw == nil {
		err := errors.Reject(errors.ErrMalformedDefinition, "", MsgMalformedDefinition)
		diagnostics.Rejected(p.sink, err.Code, "", err.Message)
		return nil, err
	}
	name := raw.Name
	logger := logging.GetLogger("processor").With().Str("block", name).Logger()
	done := logging.LogOperationStart(logger, "process")
	defer done()

	settings, rejection := p.applyFilters(raw)
	if rejection != nil {
		diagnostics.Rejected(p.sink, rejection.Code, name, rejection.Message)
		return nil, rejection
	}
	settings.Name = name

	NormalizeCategory(settings, categories, p.legacy, p.sink)

	if rejection := validateCallables(settings); rejection != nil {
		diagnostics.Rejected(p.sink, rejection.Code, name, rejection.Message)
		return nil, rejection
	}
	if rejection := validateTitle(settings); rejection != nil {
		diagnostics.Rejected(p.sink, rejection.Code, name, rejection.Message)
		return nil, rejection
	}

	settings.Icon = icon.Normalize(settings.Icon)
	if rejection := validateIcon(settings); rejection != nil {
		diagnostics.Rejected(p.sink, rejection.Code, name, rejection.Message)
		return nil, rejection
	}

	logger.Debug().Int("deprecations", len(settings.Deprecated)).Msg("Block type accepted")
	return settings, nil
}

// applyFilters runs the registration hook over the live definition, reports a
// non-string description, then runs it over each deprecation.
func (p *Processor) applyFilters(raw *blocktype.Settings) (*blocktype.Settings, *errors.Error) {
	filtered := p.apply(raw.Clone(), raw.Name, nil)
	settings, rejection := asSettings(filtered, raw.Name)
	if rejection != nil {
		return nil, rejection
	}
	settings = settings.Clone()

	if settings.Description != nil {
		if _, ok := settings.Description.(string); !ok {
			diagnostics.Deprecated(p.sink, errors.ErrLegacyDescriptionShape, raw.Name,
				"Declaring non-string block descriptions",
				diagnostics.DeprecationOptions{Since: DescriptionDeprecatedSince})
		}
	}

	if settings.Deprecated == nil {
		return settings, nil
	}
	deprecations, rejection := p.processDeprecations(raw, settings.Deprecated)
	if rejection != nil {
		return nil, rejection
	}
	settings.Deprecated = deprecations
	return settings, nil
}

// processDeprecations builds each entry from the raw definition minus the
// allowlisted keys with the entry laid over it, filters it with the entry as
// context and keeps only allowlisted keys. Order is preserved.
func (p *Processor) processDeprecations(raw *blocktype.Settings, entries []blocktype.Deprecation) ([]blocktype.Deprecation, *errors.Error) {
	base := raw.Omit(p.entryKeys...)
	out := make([]blocktype.Deprecation, 0, len(entries))
	for i, entry := range entries {
		merged, err := entry.Overlay(base)
		if err != nil {
			return nil, errors.Reject(errors.ErrMalformedDefinition, raw.Name,
				fmt.Sprintf("Deprecation %d cannot be merged: %v", i, err))
		}

		filtered, rejection := asSettings(p.apply(merged, raw.Name, entry.Clone()), raw.Name)
		if rejection != nil {
			return nil, rejection.WithDetail(errors.DetailDeprecation, i)
		}

		picked, err := blocktype.PickDeprecation(filtered, p.entryKeys)
		if err != nil {
			return nil, errors.Reject(errors.ErrMalformedDefinition, raw.Name,
				fmt.Sprintf("Deprecation %d is invalid: %v", i, err))
		}
		out = append(out, picked)
	}
	return out, nil
}

func (p *Processor) apply(value *blocktype.Settings, name string, context any) any {
	if p.filters == nil {
		return value
	}
	return p.filters.ApplyFilters(hooks.HookRegisterBlockType, value, name, context)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

package blocks

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/hooks"
	"github.com/arthur-debert/blockreg/pkg/icon"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/arthur-debert/blockreg/pkg/processor"
	"github.com/arthur-debert/blockreg/pkg/store"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*/[a-z][a-z0-9-]*$`)

// Messages reported for registration surface errors.
const (
	MsgNameNotString = "Block names must be strings."
	MsgNameFormat    = "Block names must contain a namespace prefix, include only lowercase alphanumeric characters or dashes, and start with a letter. Example: my-plugin/my-custom-block"
)

// Observer is told the outcome of every registration attempt.
type Observer interface {
	ObserveRegistration(name string, err error)
}

// Options configure a Registry. Zero values get defaults.
type Options struct {
	Filters    *hooks.Filters
	Sink       diagnostics.Sink
	Categories []blocktype.Category
	Processor  []processor.Option
	Observer   Observer
}

// Registry is the block type registry. Reads are served from store snapshots
// and never block. Each write to block types runs as one unit under a writer
// lock, so filters and observers must not call back into those methods.
type Registry struct {
	writeMu sync.Mutex

	store     *store.Store
	filters   *hooks.Filters
	processor *processor.Processor
	sink      diagnostics.Sink
	observer  Observer
}

// New returns a Registry. Categories default to store.DefaultCategories and
// diagnostics go to the log.
func New(opts Options) *Registry {
	if opts.Filters == nil {
		opts.Filters = hooks.New()
	}
	if opts.Sink == nil {
		opts.Sink = diagnostics.LogSink{}
	}
	if opts.Categories == nil {
		opts.Categories = store.DefaultCategories()
	}
	return &Registry{
		store:     store.New(opts.Categories),
		filters:   opts.Filters,
		processor: processor.New(opts.Filters, opts.Sink, opts.Processor...),
		sink:      opts.Sink,
		observer:  opts.Observer,
	}
}

// Filters returns the filter chains the registry applies.
func (r *Registry) Filters() *hooks.Filters { return r.filters }

// Store returns the underlying store.
func (r *Registry) Store() *store.Store { return r.store }

// Subscribe calls fn after every change to the registry.
func (r *Registry) Subscribe(fn store.Listener) func() { return r.store.Subscribe(fn) }

// ValidateName checks that name is a namespaced block name.
func ValidateName(name string) *errors.Error {
	if name == "" {
		return errors.New(errors.ErrInvalidName, MsgNameNotString)
	}
	if !namePattern.MatchString(name) {
		return errors.Reject(errors.ErrInvalidName, name, MsgNameFormat)
	}
	return nil
}

// RegisterBlockType records settings and runs it through the pipeline. The
// processed definition is returned and stored on success. A definition whose
// name is already registered replaces it after a warning.
//
// Rejected definitions stay recorded so a later ReapplyBlockTypeFilters can
// accept them.
func (r *Registry) RegisterBlockType(settings *blocktype.Settings) (*blocktype.Settings, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	logger := logging.GetLogger("blocks")
	if settings == nil {
		settings = &blocktype.Settings{}
	}
	name := settings.Name

	if err := ValidateName(name); err != nil {
		diagnostics.Rejected(r.sink, err.Code, name, err.Message)
		r.observe(name, err)
		return nil, err
	}

	if _, exists := r.GetBlockType(name); exists {
		diagnostics.Warning(r.sink, errors.ErrAlreadyRegistered, name,
			fmt.Sprintf("Block %q is already registered.", name))
	}

	raw := settings.Clone()
	applyDefaults(raw)
	r.store.Dispatch(store.AddUnprocessedBlockType{Name: name, BlockType: raw})

	processed, err := r.processor.Process(raw, r.store.State().Categories)
	r.observe(name, err)
	if err != nil {
		logger.Debug().Str("block", name).Err(err).Msg("Block type rejected")
		return nil, err
	}

	r.store.Dispatch(store.AddBlockTypes{BlockTypes: []*blocktype.Settings{processed}})
	logger.Info().Str("block", name).Msg("Block type registered")
	return processed.Clone(), nil
}

// applyDefaults fills the fields a registered block type always carries.
// save is left alone so a definition without one is rejected.
func applyDefaults(s *blocktype.Settings) {
	if s.Icon == nil {
		s.Icon = icon.Default
	}
	if s.Keywords == nil {
		s.Keywords = []string{}
	}
	if s.Attributes == nil {
		s.Attributes = map[string]any{}
	}
	if s.ProvidesContext == nil {
		s.ProvidesContext = map[string]any{}
	}
	if s.UsesContext == nil {
		s.UsesContext = []string{}
	}
	if s.Selectors == nil {
		s.Selectors = map[string]any{}
	}
	if s.Supports == nil {
		s.Supports = map[string]any{}
	}
	if s.Styles == nil {
		s.Styles = []blocktype.Style{}
	}
	if s.Variations == nil {
		s.Variations = []blocktype.Variation{}
	}
	if s.BlockHooks == nil {
		s.BlockHooks = map[string]string{}
	}
}

// UnregisterBlockType removes a block type and returns its definition.
func (r *Registry) UnregisterBlockType(name string) (*blocktype.Settings, bool) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	old, ok := r.GetBlockType(name)
	if !ok {
		diagnostics.Rejected(r.sink, errors.ErrNotRegistered, name,
			fmt.Sprintf("Block %q is not registered.", name))
		return nil, false
	}
	r.store.Dispatch(store.RemoveBlockTypes{Names: []string{name}})
	logger := logging.GetLogger("blocks")
	logger.Info().Str("block", name).Msg("Block type unregistered")
	return old, true
}

// ForgetBlockTypes drops every trace of the named blocks, including the raw
// definitions of blocks that were rejected, so a later reapply cannot bring
// them back. It returns the names that were registered before removal.
// Unknown names are ignored without a diagnostic.
func (r *Registry) ForgetBlockTypes(names ...string) []string {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	state := r.store.State()
	var removed []string
	for _, name := range names {
		if state.BlockTypes.Has(name) {
			removed = append(removed, name)
		}
	}
	r.store.Dispatch(store.RemoveBlockTypes{Names: names})
	logger := logging.GetLogger("blocks")
	logger.Info().Strs("blocks", names).Int("registered", len(removed)).Msg("Block types forgotten")
	return removed
}

// ReapplyBlockTypeFilters runs the pipeline again over every recorded
// definition and stores the accepted ones in one batch. Definitions rejected
// this time keep whatever processed entry they already had.
func (r *Registry) ReapplyBlockTypeFilters() []*blocktype.Settings {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	logger := logging.GetLogger("blocks")
	done := logging.LogOperationStart(logger, "reapply filters")
	defer done()

	state := r.store.State()
	accepted := make([]*blocktype.Settings, 0, state.Unprocessed.Len())
	state.Unprocessed.Range(func(name string, raw *blocktype.Settings) bool {
		processed, err := r.processor.Process(raw, state.Categories)
		r.observe(name, err)
		if err == nil {
			accepted = append(accepted, processed)
		}
		return true
	})

	r.store.Dispatch(store.AddBlockTypes{BlockTypes: accepted})
	logger.Info().
		Int("accepted", len(accepted)).
		Int("submitted", state.Unprocessed.Len()).
		Msg("Reapplied block type filters")
	return accepted
}

func (r *Registry) observe(name string, err error) {
	if r.observer != nil {
		r.observer.ObserveRegistration(name, err)
	}
}

// GetBlockType returns a copy of a processed definition.
func (r *Registry) GetBlockType(name string) (*blocktype.Settings, bool) {
	s, ok := r.store.State().BlockTypes.Lookup(name)
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// GetBlockTypes returns copies of every processed definition in registration order.
func (r *Registry) GetBlockTypes() []*blocktype.Settings {
	values := r.store.State().BlockTypes.Values()
	out := make([]*blocktype.Settings, len(values))
	for i, s := range values {
		out[i] = s.Clone()
	}
	return out
}

// GetUnprocessedBlockTypes returns copies of every recorded definition keyed by name.
func (r *Registry) GetUnprocessedBlockTypes() map[string]*blocktype.Settings {
	state := r.store.State()
	out := make(map[string]*blocktype.Settings, state.Unprocessed.Len())
	state.Unprocessed.Range(func(name string, s *blocktype.Settings) bool {
		out[name] = s.Clone()
		return true
	})
	return out
}

// GetChildBlockNames returns the names of the block types that list name as parent.
func (r *Registry) GetChildBlockNames(name string) []string {
	var out []string
	r.store.State().BlockTypes.Range(func(child string, s *blocktype.Settings) bool {
		for _, p := range s.Parent {
			if p == name {
				out = append(out, child)
				break
			}
		}
		return true
	})
	return out
}

// GetBlockSupport returns the supports value at a dotted path, or def.
func (r *Registry) GetBlockSupport(name, path string, def any) any {
	s, ok := r.store.State().BlockTypes.Lookup(name)
	if !ok || s.Supports == nil {
		return def
	}
	var current any = s.Supports
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return def
		}
		current, ok = m[part]
		if !ok || current == nil {
			return def
		}
	}
	return current
}

// HasBlockSupport reports whether the supports value at feature is truthy.
func (r *Registry) HasBlockSupport(name, feature string, def bool) bool {
	return truthy(r.GetBlockSupport(name, feature, def))
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0
	}
	return true
}

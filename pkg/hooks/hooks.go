// Package hooks implements named filter chains.
//
// A filter is registered on a hook under a namespace with a priority. Applying
// a hook folds the value through every filter in ascending priority order;
// filters with equal priority run in the order they were added.
package hooks

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/logging"
)

// DefaultPriority is the priority callers pass when they have no ordering
// need of their own.
const DefaultPriority = 10

// HookRegisterBlockType is applied to every block type definition before it
// is validated.
const HookRegisterBlockType = "blocks.registerBlockType"

var (
	hookNamePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)
	namespacePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.\-/]*$`)
)

// FilterFunc transforms value. args are the extra arguments given to ApplyFilters.
type FilterFunc func(value any, args ...any) any

// Applier runs a filter chain.
type Applier interface {
	ApplyFilters(hook string, value any, args ...any) any
}

type handler struct {
	namespace string
	priority  int
	fn        FilterFunc
	seq       uint64
}

// Filters holds the filter chains of every hook.
type Filters struct {
	mu       sync.Mutex
	handlers map[string][]handler
	runs     map[string]int
	current  []string
	seq      uint64
}

// New returns an empty filter set.
func New() *Filters {
	return &Filters{
		handlers: make(map[string][]handler),
		runs:     make(map[string]int),
	}
}

// ValidateHookName checks hook against the allowed hook name syntax.
func ValidateHookName(hook string) error {
	if hook == "" {
		return errors.New(errors.ErrInvalidHookName, "hook name must be a non-empty string")
	}
	if strings.HasPrefix(hook, "__") {
		return errors.Newf(errors.ErrInvalidHookName, "hook name %q cannot begin with \"__\"", hook)
	}
	if !hookNamePattern.MatchString(hook) {
		return errors.Newf(errors.ErrInvalidHookName, "hook name %q can only contain letters, numbers, periods, hyphens and underscores", hook)
	}
	return nil
}

// ValidateNamespace checks namespace against the allowed namespace syntax.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return errors.New(errors.ErrInvalidNamespace, "namespace must be a non-empty string")
	}
	if !namespacePattern.MatchString(namespace) {
		return errors.Newf(errors.ErrInvalidNamespace, "namespace %q can only contain letters, numbers, periods, hyphens, underscores and slashes", namespace)
	}
	return nil
}

// AddFilter registers fn on hook under namespace. Lower priorities run
// first, and every int is a legal priority, including 0 and negatives.
func (f *Filters) AddFilter(hook, namespace string, fn FilterFunc, priority int) error {
	if err := ValidateHookName(hook); err != nil {
		return err
	}
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}
	if fn == nil {
		return errors.Newf(errors.ErrInvalidInput, "filter %q on %q has no function", namespace, hook)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	list := append(f.handlers[hook], handler{namespace: namespace, priority: priority, fn: fn, seq: f.seq})
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	f.handlers[hook] = list

	logger := logging.GetLogger("hooks")
	logger.Debug().
		Str("hook", hook).
		Str("namespace", namespace).
		Int("priority", priority).
		Msg("Filter added")
	return nil
}

// RemoveFilter removes every filter registered on hook under namespace and
// returns how many were removed.
func (f *Filters) RemoveFilter(hook, namespace string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.handlers[hook]
	kept := list[:0:0]
	for _, h := range list {
		if h.namespace != namespace {
			kept = append(kept, h)
		}
	}
	removed := len(list) - len(kept)
	if len(kept) == 0 {
		delete(f.handlers, hook)
	} else {
		f.handlers[hook] = kept
	}
	return removed
}

// RemoveAllFilters removes every filter on hook and returns how many were removed.
func (f *Filters) RemoveAllFilters(hook string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed := len(f.handlers[hook])
	delete(f.handlers, hook)
	return removed
}

// HasFilter reports whether namespace has a filter on hook.
func (f *Filters) HasFilter(hook, namespace string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, h := range f.handlers[hook] {
		if h.namespace == namespace {
			return true
		}
	}
	return false
}

// HasFilters reports whether hook has any filter.
func (f *Filters) HasFilters(hook string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[hook]) > 0
}

// Namespaces returns the namespaces registered on hook in run order.
func (f *Filters) Namespaces(hook string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.handlers[hook]))
	for _, h := range f.handlers[hook] {
		out = append(out, h.namespace)
	}
	return out
}

// ApplyFilters folds value through the filters on hook. Panics raised by a
// filter propagate to the caller.
func (f *Filters) ApplyFilters(hook string, value any, args ...any) any {
	f.mu.Lock()
	list := append([]handler(nil), f.handlers[hook]...)
	f.runs[hook]++
	f.current = append(f.current, hook)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.current = f.current[:len(f.current)-1]
		f.mu.Unlock()
	}()

	for _, h := range list {
		value = h.fn(value, args...)
	}
	return value
}

// DidFilter returns how many times hook has been applied.
func (f *Filters) DidFilter(hook string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[hook]
}

// CurrentFilter returns the innermost hook being applied, or "".
func (f *Filters) CurrentFilter() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.current) == 0 {
		return ""
	}
	return f.current[len(f.current)-1]
}

// DoingFilter reports whether hook is being applied. An empty hook asks
// whether any filter is running.
func (f *Filters) DoingFilter(hook string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if hook == "" {
		return len(f.current) > 0
	}
	for _, c := range f.current {
		if c == hook {
			return true
		}
	}
	return false
}

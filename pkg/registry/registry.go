package registry

import (
	"github.com/arthur-debert/blockreg/pkg/errors"
)

// Map is an insertion-ordered map keyed by name. Overwriting a key keeps its
// original position, so iteration order is the order keys were first set.
//
// A Map is not safe for concurrent mutation. The store treats a published Map
// as immutable and mutates a Clone.
type Map[T any] struct {
	keys  []string
	items map[string]T
}

// New creates an empty Map
func New[T any]() *Map[T] {
	return &Map[T]{items: make(map[string]T)}
}

// Set stores item under name. Later writes for the same name win.
func (m *Map[T]) Set(name string, item T) {
	if m.items == nil {
		m.items = make(map[string]T)
	}
	if _, exists := m.items[name]; !exists {
		m.keys = append(m.keys, name)
	}
	m.items[name] = item
}

// Get retrieves an item, returning ErrNotFound when absent
func (m *Map[T]) Get(name string) (T, error) {
	item, ok := m.Lookup(name)
	if !ok {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}
	return item, nil
}

// Lookup retrieves an item and whether it exists
func (m *Map[T]) Lookup(name string) (T, bool) {
	if m == nil {
		var zero T
		return zero, false
	}
	item, ok := m.items[name]
	return item, ok
}

// Has checks if an item is present
func (m *Map[T]) Has(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Delete removes name and reports whether it was present. Deleting an absent
// name is a no-op.
func (m *Map[T]) Delete(name string) bool {
	if m == nil {
		return false
	}
	if _, exists := m.items[name]; !exists {
		return false
	}
	delete(m.items, name)
	for i, k := range m.keys {
		if k == name {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the names in insertion order
func (m *Map[T]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Values returns the items in insertion order
func (m *Map[T]) Values() []T {
	if m == nil {
		return nil
	}
	out := make([]T, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.items[k])
	}
	return out
}

// Len returns the number of items
func (m *Map[T]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a shallow copy that can be mutated independently
func (m *Map[T]) Clone() *Map[T] {
	c := &Map[T]{
		keys:  m.Keys(),
		items: make(map[string]T, m.Len()),
	}
	if m != nil {
		for k, v := range m.items {
			c.items[k] = v
		}
	}
	return c
}

// Range calls fn for each item in insertion order until fn returns false
func (m *Map[T]) Range(fn func(name string, item T) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.items[k]) {
			return
		}
	}
}

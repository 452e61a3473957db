package store

import (
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/logging"
)

// Listener is called after every committed dispatch with the new state.
type Listener func(*State)

// Store owns the registry state.
type Store struct {
	mu        sync.Mutex
	state     atomic.Pointer[State]
	listeners map[int]Listener
	nextID    int
}

// New returns a store holding an empty registry with the given categories.
func New(categories []blocktype.Category) *Store {
	s := &Store{listeners: make(map[int]Listener)}
	s.state.Store(NewState(categories))
	return s
}

// State returns the current snapshot.
func (s *Store) State() *State {
	return s.state.Load()
}

// Dispatch applies actions in order as one atomic change and notifies
// subscribers. Dispatching nothing is a no-op.
func (s *Store) Dispatch(actions ...Action) {
	if len(actions) == 0 {
		return
	}
	logger := logging.GetLogger("store")

	s.mu.Lock()
	next := s.state.Load().clone()
	for _, a := range actions {
		a.apply(next)
		logger.Trace().Str("action", string(a.Type())).Msg("Applied action")
	}
	s.state.Store(next)
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	logger.Debug().
		Int("actions", len(actions)).
		Int("blockTypes", next.BlockTypes.Len()).
		Msg("State committed")

	for _, l := range listeners {
		l(next)
	}
}

// Subscribe registers fn to run after each dispatch, in subscription order.
// The returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

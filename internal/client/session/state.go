package session

import (
	"sync"

	"github.com/jobtrackr/jobtrackr-go/internal/client/api"
)

// State is the single source of truth consumed by UI, guards and the
// transport. Invariant: IsAuthenticated implies User != nil and Token != "".
//
// IsLoading is true only while a sign-in/sign-up/refresh/auto-login call is
// in flight. Error is cleared at the start of every auth attempt and set
// only when a sign-in/sign-up class operation fails.
type State struct {
	IsAuthenticated bool
	User            *api.User
	Token           string
	IsLoading       bool
	Error           string
}

// StateStore is an observable State value: one writer (the coordinator),
// many readers. Subscribers are notified after every update with a snapshot;
// pollers can cheaply compare Version instead.
type StateStore struct {
	mu      sync.Mutex
	state   State
	version uint64
	subs    map[int]func(State)
	nextID  int
}

func NewStateStore() *StateStore {
	return &StateStore{subs: make(map[int]func(State))}
}

// Get returns a snapshot of the current state. The User pointer refers to a
// copy owned by the store's last update; callers must not mutate it.
func (s *StateStore) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns a counter incremented by every update.
func (s *StateStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Update applies fn to the current state and notifies subscribers with the
// result. fn runs under the store lock and must not call back into the
// store; notifications happen outside the lock.
func (s *StateStore) Update(fn func(State) State) {
	s.mu.Lock()
	s.state = fn(s.state)
	s.version++
	snapshot := s.state
	listeners := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, notify := range listeners {
		notify(snapshot)
	}
}

// Subscribe registers fn to be called after every update and returns a
// cancel function. fn is invoked synchronously from the updater's
// goroutine and should return quickly.
func (s *StateStore) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

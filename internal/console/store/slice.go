// Package store is the console's shared state: independently subscribable
// slices for the session and for each screen's last list result.
package store

import "sync"

// Slice is one observable value. It is unknown until first set; callers must
// not read an unknown slice as empty.
type Slice[T any] struct {
	mu    sync.RWMutex
	value T
	known bool

	subMu   sync.Mutex
	subs    map[int]func(T)
	nextSub int
}

func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{subs: make(map[int]func(T))}
}

// Get returns the value and whether it is known yet.
func (s *Slice[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.known
}

func (s *Slice[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.known = true
	s.mu.Unlock()
	s.publish(v)
}

// Clear sets the zero value. A cleared slice is known to be empty.
func (s *Slice[T]) Clear() {
	var zero T
	s.Set(zero)
}

func (s *Slice[T]) Subscribe(fn func(T)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Slice[T]) publish(v T) {
	s.subMu.Lock()
	fns := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

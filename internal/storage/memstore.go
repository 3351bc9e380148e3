package storage

import "sync"

// MemStore is an in-memory Store. Like the browser's localStorage, writes
// through it never notify its own subscribers; EmitExternal stands in for a
// change arriving from another execution context.
type MemStore struct {
	mu      sync.Mutex
	values  map[string]string
	subs    map[int]func(Event)
	nextSub int
}

func NewMemStore() *MemStore {
	return &MemStore{
		values: make(map[string]string),
		subs:   make(map[int]func(Event)),
	}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemStore) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// EmitExternal applies a change as if another execution context made it and
// notifies subscribers.
func (s *MemStore) EmitExternal(ev Event) {
	s.mu.Lock()
	if ev.Removed {
		delete(s.values, ev.Key)
	} else {
		s.values[ev.Key] = ev.NewValue
	}
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

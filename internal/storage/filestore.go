package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore keeps one file per key under dir and watches the directory so
// that writes made by other processes surface as Events. Its own writes are
// suppressed by content comparison: an event whose on-disk value matches
// what this store last wrote is treated as the echo of a self-write. An
// external write of the identical value is indistinguishable and also
// suppressed, which is harmless since it carries no state change.
type FileStore struct {
	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	own     map[string]string // last value written by this process
	removed map[string]bool   // pending self-removals
	subs    map[int]func(Event)
	nextSub int
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch state dir: %w", err)
	}

	s := &FileStore{
		dir:     dir,
		watcher: watcher,
		done:    make(chan struct{}),
		own:     make(map[string]string),
		removed: make(map[string]bool),
		subs:    make(map[int]func(Event)),
	}
	go s.watch()
	return s, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileStore) Get(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	s.own[key] = value
	delete(s.removed, key)
	s.mu.Unlock()
	return os.WriteFile(s.path(key), []byte(value), 0o600)
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.own, key)
	s.removed[key] = true
	s.mu.Unlock()
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		// Nothing was deleted, so no event will arrive to consume the
		// marker; leaving it pending would swallow the next external
		// removal of this key.
		s.mu.Lock()
		delete(s.removed, key)
		s.mu.Unlock()
		return nil
	}
	return err
}

func (s *FileStore) Subscribe(fn func(Event)) (cancel func()) {
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

// Close stops the watcher. Pending events may still be delivered until the
// event loop drains.
func (s *FileStore) Close() error {
	err := s.watcher.Close()
	<-s.done
	return err
}

func (s *FileStore) watch() {
	defer close(s.done)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(ev)
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (s *FileStore) handle(ev fsnotify.Event) {
	key := filepath.Base(ev.Name)

	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		s.mu.Lock()
		if s.removed[key] {
			// Echo of our own Remove.
			delete(s.removed, key)
			s.mu.Unlock()
			return
		}
		delete(s.own, key)
		s.mu.Unlock()
		s.notify(Event{Key: key, Removed: true})

	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		value, ok := s.Get(key)
		if !ok {
			return
		}
		s.mu.Lock()
		// The key exists again; any pending self-removal is moot.
		delete(s.removed, key)
		if own, exists := s.own[key]; exists && own == value {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.notify(Event{Key: key, NewValue: value})
	}
}

func (s *FileStore) notify(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

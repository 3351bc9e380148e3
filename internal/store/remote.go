// Package store holds the remote-entity state the presentation layer
// renders: a list, an optional selected detail, and loading/error flags per
// collection. Every load follows the same protocol: mark loading, call the
// API, publish on success, keep stale data on failure, always clear the
// loading flag. One generic core replaces the per-entity copies of that
// boilerplate.
package store

import (
	"sync"

	"aulavideo/internal/api"
)

// Result is how mutations report back: presentation code branches on it
// instead of unwrapping errors at every call site.
type Result struct {
	Success bool
	Error   string
}

func resultadoDe(err error, fallback string) Result {
	if err == nil {
		return Result{Success: true}
	}
	return Result{Error: api.Message(err, fallback)}
}

// Lista is the shared remote-collection state machine. Loads may overlap;
// each begin bumps a generation and a finish whose generation is stale is
// discarded so an old in-flight response can never overwrite a newer one.
type Lista[T any] struct {
	mu       sync.Mutex
	items    []T
	selected *T
	cargando bool
	err      string
	gen      uint64
}

func (l *Lista[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.cargando = true
	l.err = ""
	return l.gen
}

// finishItems publishes a list response. Stale generations are dropped;
// failures keep the previous items.
func (l *Lista[T]) finishItems(gen uint64, items []T, err error, fallback string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.cargando = false
	if err != nil {
		l.err = fallback
		return false
	}
	l.items = items
	l.err = ""
	return true
}

// finishSelected publishes a detail response under the same rules.
func (l *Lista[T]) finishSelected(gen uint64, item *T, err error, fallback string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.cargando = false
	if err != nil {
		l.err = fallback
		return false
	}
	l.selected = item
	l.err = ""
	return true
}

// Items returns a copy of the current list.
func (l *Lista[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Seleccionado returns a copy of the selected detail, nil when none.
func (l *Lista[T]) Seleccionado() *T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.selected == nil {
		return nil
	}
	v := *l.selected
	return &v
}

func (l *Lista[T]) Cargando() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cargando
}

// Error returns the last load failure message, empty after a success.
func (l *Lista[T]) Error() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

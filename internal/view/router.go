// Package view holds the navigation state machine: which screen is
// current, which screens are gated behind a role, and what loads when a
// screen is entered. Screens are string tags, never component references,
// so the presentation layer stays swappable.
package view

import (
	"context"
	"errors"
	"sync"
)

// View tags one screen of the application.
type View string

const (
	Home         View = "home"
	Cursos       View = "cursos"
	MisCursos    View = "mis-cursos"
	CursoDetalle View = "curso-detalle"
	Subir        View = "subir"
	AgregarVideo View = "agregar-video"
	Login        View = "login"

	AdminDashboard       View = "admin-dashboard"
	AdminUsuarios        View = "admin-usuarios"
	AdminCursos          View = "admin-cursos"
	AdminCategorias      View = "admin-categorias"
	AdminCalificaciones  View = "admin-calificaciones"
	AdminVisualizaciones View = "admin-visualizaciones"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrViewDenied  = errors.New("view denied for current role")
)

var known = map[View]bool{
	Home: true, Cursos: true, MisCursos: true, CursoDetalle: true,
	Subir: true, AgregarVideo: true, Login: true,
	AdminDashboard: true, AdminUsuarios: true, AdminCursos: true,
	AdminCategorias: true, AdminCalificaciones: true, AdminVisualizaciones: true,
}

// Router tracks the current view and enforces role gates at the state
// layer, so a denied transition never happens regardless of what the
// presentation layer renders.
type Router struct {
	mu      sync.Mutex
	current View
	gates   map[View]func() bool
	onEnter map[View]func(context.Context)
}

func NewRouter() *Router {
	return &Router{
		current: Home,
		gates:   make(map[View]func() bool),
		onEnter: make(map[View]func(context.Context)),
	}
}

// Gate guards a view with a predicate evaluated at navigation time.
func (r *Router) Gate(v View, allowed func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gates[v] = allowed
}

// OnEnter registers a handler that runs after each successful transition
// into v. A view's entry loads live here instead of in presentation code.
func (r *Router) OnEnter(v View, fn func(context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnter[v] = fn
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate switches to v. Unknown tags and failed gates leave the current
// view untouched; on success the on-enter handler runs after the commit,
// outside the lock, so it may navigate again.
func (r *Router) Navigate(ctx context.Context, v View) error {
	if !known[v] {
		return ErrUnknownView
	}

	r.mu.Lock()
	if gate, gated := r.gates[v]; gated && !gate() {
		r.mu.Unlock()
		return ErrViewDenied
	}
	r.current = v
	fn := r.onEnter[v]
	r.mu.Unlock()

	if fn != nil {
		fn(ctx)
	}
	return nil
}

// ForceLogin jumps to the login view unconditionally. It is the landing
// for session expiry, so it bypasses gates and skips on-enter loads.
func (r *Router) ForceLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = Login
}

// Roles is the slice of session state the gates need.
type Roles interface {
	IsInstructor() bool
	IsAdmin() bool
}

// ConfigurarGates installs the standard role gates: instructor screens
// admit instructors and admins, admin screens admit admins only.
func ConfigurarGates(r *Router, roles Roles) {
	instructor := func() bool { return roles.IsInstructor() || roles.IsAdmin() }
	admin := roles.IsAdmin

	for _, v := range []View{MisCursos, Subir, AgregarVideo} {
		r.Gate(v, instructor)
	}
	for _, v := range []View{
		AdminDashboard, AdminUsuarios, AdminCursos,
		AdminCategorias, AdminCalificaciones, AdminVisualizaciones,
	} {
		r.Gate(v, admin)
	}
}

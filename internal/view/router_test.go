package view

import (
	"context"
	"testing"
)

type rolesFijos struct {
	instructor bool
	admin      bool
}

func (r rolesFijos) IsInstructor() bool { return r.instructor }
func (r rolesFijos) IsAdmin() bool      { return r.admin }

func TestNavigate_StartsAtHome(t *testing.T) {
	r := NewRouter()
	if r.Current() != Home {
		t.Errorf("initial view = %q, want %q", r.Current(), Home)
	}
}

func TestNavigate_UnknownViewRejected(t *testing.T) {
	r := NewRouter()
	err := r.Navigate(context.Background(), View("panel-secreto"))
	if err != ErrUnknownView {
		t.Fatalf("Navigate() error = %v, want ErrUnknownView", err)
	}
	if r.Current() != Home {
		t.Errorf("current view changed to %q after rejected navigation", r.Current())
	}
}

func TestNavigate_StudentDeniedAdminViews(t *testing.T) {
	r := NewRouter()
	ConfigurarGates(r, rolesFijos{})

	adminViews := []View{
		AdminDashboard, AdminUsuarios, AdminCursos,
		AdminCategorias, AdminCalificaciones, AdminVisualizaciones,
	}
	for _, v := range adminViews {
		if err := r.Navigate(context.Background(), v); err != ErrViewDenied {
			t.Errorf("Navigate(%q) error = %v, want ErrViewDenied", v, err)
		}
		if r.Current() != Home {
			t.Errorf("current view = %q after denied navigation to %q, want %q", r.Current(), v, Home)
		}
	}
}

func TestNavigate_StudentDeniedInstructorViews(t *testing.T) {
	r := NewRouter()
	ConfigurarGates(r, rolesFijos{})

	for _, v := range []View{MisCursos, Subir, AgregarVideo} {
		if err := r.Navigate(context.Background(), v); err != ErrViewDenied {
			t.Errorf("Navigate(%q) error = %v, want ErrViewDenied", v, err)
		}
	}
}

func TestNavigate_InstructorAllowedOwnViews(t *testing.T) {
	r := NewRouter()
	ConfigurarGates(r, rolesFijos{instructor: true})

	if err := r.Navigate(context.Background(), MisCursos); err != nil {
		t.Fatalf("Navigate(mis-cursos) = %v", err)
	}
	if r.Current() != MisCursos {
		t.Errorf("current view = %q, want %q", r.Current(), MisCursos)
	}
	if err := r.Navigate(context.Background(), AdminUsuarios); err != ErrViewDenied {
		t.Errorf("instructor reached admin view, error = %v", err)
	}
}

func TestNavigate_AdminAllowedEverywhere(t *testing.T) {
	r := NewRouter()
	ConfigurarGates(r, rolesFijos{admin: true})

	for _, v := range []View{Cursos, MisCursos, Subir, AdminDashboard, AdminVisualizaciones} {
		if err := r.Navigate(context.Background(), v); err != nil {
			t.Errorf("Navigate(%q) = %v", v, err)
		}
	}
}

func TestNavigate_OnEnterRunsAfterCommit(t *testing.T) {
	r := NewRouter()
	var visto View
	r.OnEnter(Cursos, func(context.Context) { visto = r.Current() })

	if err := r.Navigate(context.Background(), Cursos); err != nil {
		t.Fatalf("Navigate() = %v", err)
	}
	if visto != Cursos {
		t.Errorf("on-enter saw current = %q, want %q", visto, Cursos)
	}
}

func TestNavigate_OnEnterSkippedWhenDenied(t *testing.T) {
	r := NewRouter()
	r.Gate(MisCursos, func() bool { return false })
	llamado := false
	r.OnEnter(MisCursos, func(context.Context) { llamado = true })

	if err := r.Navigate(context.Background(), MisCursos); err != ErrViewDenied {
		t.Fatalf("Navigate() = %v, want ErrViewDenied", err)
	}
	if llamado {
		t.Error("on-enter ran for a denied transition")
	}
}

func TestNavigate_GateEvaluatedEachTime(t *testing.T) {
	r := NewRouter()
	admin := false
	r.Gate(AdminDashboard, func() bool { return admin })

	if err := r.Navigate(context.Background(), AdminDashboard); err != ErrViewDenied {
		t.Fatalf("Navigate() = %v, want ErrViewDenied", err)
	}
	admin = true
	if err := r.Navigate(context.Background(), AdminDashboard); err != nil {
		t.Fatalf("Navigate() after role change = %v", err)
	}
}

func TestForceLogin(t *testing.T) {
	r := NewRouter()
	llamado := false
	r.OnEnter(Login, func(context.Context) { llamado = true })

	if err := r.Navigate(context.Background(), Cursos); err != nil {
		t.Fatalf("Navigate() = %v", err)
	}
	r.ForceLogin()

	if r.Current() != Login {
		t.Errorf("current view = %q, want %q", r.Current(), Login)
	}
	if llamado {
		t.Error("ForceLogin ran the on-enter load")
	}
}

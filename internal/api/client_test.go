package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aulavideo/internal/api"
	"aulavideo/internal/api/apitest"
	"aulavideo/internal/models"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newClient(backend *apitest.Server, token string) *api.Client {
	c := api.New(backend.BaseURL(), 5*time.Second)
	if token != "" {
		c.SetTokenSource(staticToken(token))
	}
	return c
}

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, 5*time.Second)
	c.SetTokenSource(staticToken("tok-123"))

	if _, err := c.Cursos.ObtenerPublicos(context.Background()); err != nil {
		t.Fatalf("ObtenerPublicos: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Expected bearer header, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("Expected an X-Request-ID header on every request")
	}
}

func TestClient_AnonymousWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, 5*time.Second)
	if _, err := c.Cursos.ObtenerPublicos(context.Background()); err != nil {
		t.Fatalf("ObtenerPublicos: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Expected no Authorization header, got %q", gotAuth)
	}
}

func TestClient_UnauthorizedRunsHookAndStillFails(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()

	c := newClient(backend, "garbage-token")
	hookRan := false
	c.OnUnauthorized(func() { hookRan = true })

	_, err := c.Cursos.ObtenerMisCursos(context.Background())

	if !hookRan {
		t.Error("401 must run the unauthorized hook")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.Status)
	}
}

func TestClient_BackendMessageSurfacedVerbatim(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	backend.FailWith(http.MethodGet, "/api/cursos/publicos", http.StatusBadRequest, "Parámetros inválidos")

	c := newClient(backend, "")
	_, err := c.Cursos.ObtenerPublicos(context.Background())

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Message != "Parámetros inválidos" {
		t.Errorf("Expected backend message verbatim, got %q", apiErr.Message)
	}
}

func TestClient_GenericMessageWhenBodyHasNone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := api.New(srv.URL, 5*time.Second)
	_, err := c.Cursos.ObtenerPublicos(context.Background())

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Message != api.MensajeGenerico {
		t.Errorf("Expected generic message, got %q", apiErr.Message)
	}
}

func TestClient_TransportFailureIsGeneric(t *testing.T) {
	c := api.New("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := c.Cursos.ObtenerPublicos(context.Background())

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Status != 0 {
		t.Errorf("Transport failures carry status 0, got %d", apiErr.Status)
	}
	if apiErr.Message != api.MensajeGenerico {
		t.Errorf("Expected generic message, got %q", apiErr.Message)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	backend.AgregarUsuario(models.Usuario{
		Nombre: "Ana", Email: "ana@upb.edu", Rol: models.RolInstructor, Activo: true,
	}, "secreta")

	c := newClient(backend, "")
	resp, err := c.Auth.Login(context.Background(), models.Credenciales{Email: "ana@upb.edu", Password: "secreta"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token")
	}
	if resp.Rol != models.RolInstructor {
		t.Errorf("Expected INSTRUCTOR, got %s", resp.Rol)
	}

	_, err = c.Auth.Login(context.Background(), models.Credenciales{Email: "ana@upb.edu", Password: "mal"})
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Credenciales inválidas" {
		t.Errorf("Expected backend login message, got %v", err)
	}
}

func TestCursos_CrearMultipartRoundTrip(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	instructor := backend.AgregarUsuario(models.Usuario{
		Nombre: "Ana", Email: "ana@upb.edu", Rol: models.RolInstructor, Activo: true,
	}, "secreta")

	c := newClient(backend, backend.TokenPara(instructor))

	precio := 49.90
	curso, err := c.Cursos.Crear(context.Background(), models.NuevoCurso{
		Titulo:      "Redes de Computadoras",
		Descripcion: "Fundamentos de TCP/IP",
		CategoriaID: 3,
		Precio:      &precio,
		Imagen:      &models.Archivo{Nombre: "portada.png", Contenido: strings.NewReader("png-bytes")},
	})
	if err != nil {
		t.Fatalf("Crear: %v", err)
	}

	if curso.Titulo != "Redes de Computadoras" {
		t.Errorf("Expected titulo round-trip, got %q", curso.Titulo)
	}
	if curso.Publicado {
		t.Error("New courses must start as drafts")
	}
	if curso.Imagen != "portada.png" {
		t.Errorf("Expected image filename, got %q", curso.Imagen)
	}

	// Drafts are invisible publicly but present in mis-cursos.
	publicos, err := c.Cursos.ObtenerPublicos(context.Background())
	if err != nil {
		t.Fatalf("ObtenerPublicos: %v", err)
	}
	if len(publicos) != 0 {
		t.Errorf("Draft leaked into public listing: %+v", publicos)
	}

	mios, err := c.Cursos.ObtenerMisCursos(context.Background())
	if err != nil {
		t.Fatalf("ObtenerMisCursos: %v", err)
	}
	if len(mios) != 1 || mios[0].Titulo != "Redes de Computadoras" {
		t.Fatalf("Expected the draft in mis-cursos, got %+v", mios)
	}
}

func TestCursos_PublicarFlow(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	instructor := backend.AgregarUsuario(models.Usuario{
		Nombre: "Ana", Email: "ana@upb.edu", Rol: models.RolInstructor, Activo: true,
	}, "secreta")
	curso := backend.AgregarCurso(models.Curso{Titulo: "Borrador", InstructorID: instructor.ID})

	c := newClient(backend, backend.TokenPara(instructor))
	if err := c.Cursos.Publicar(context.Background(), curso.ID); err != nil {
		t.Fatalf("Publicar: %v", err)
	}

	publicos, err := c.Cursos.ObtenerPublicos(context.Background())
	if err != nil {
		t.Fatalf("ObtenerPublicos: %v", err)
	}
	if len(publicos) != 1 || publicos[0].ID != curso.ID {
		t.Fatalf("Expected published course in public listing, got %+v", publicos)
	}
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	student := backend.AgregarUsuario(models.Usuario{
		Nombre: "Beto", Email: "beto@upb.edu", Rol: models.RolStudent, Activo: true,
	}, "clave")

	c := newClient(backend, backend.TokenPara(student))
	_, err := c.Admin.ObtenerUsuarios(context.Background())

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin, got %d", apiErr.Status)
	}
}

func TestAdmin_FiltrosDeCalificaciones(t *testing.T) {
	backend := apitest.New()
	defer backend.Close()
	admin := backend.AgregarUsuario(models.Usuario{
		Nombre: "Root", Email: "root@upb.edu", Rol: models.RolAdmin, Activo: true,
	}, "clave")
	backend.AgregarCalificacion(models.Calificacion{CursoID: 1, UsuarioID: 10, Puntuacion: 5, Fecha: time.Now()})
	backend.AgregarCalificacion(models.Calificacion{CursoID: 2, UsuarioID: 11, Puntuacion: 3, Fecha: time.Now()})

	c := newClient(backend, backend.TokenPara(admin))

	todas, err := c.Admin.ObtenerCalificaciones(context.Background(), models.FiltroCalificaciones{})
	if err != nil {
		t.Fatalf("ObtenerCalificaciones: %v", err)
	}
	if len(todas) != 2 {
		t.Fatalf("Expected 2 ratings, got %d", len(todas))
	}

	soloCurso1, err := c.Admin.ObtenerCalificaciones(context.Background(), models.FiltroCalificaciones{CursoID: "1"})
	if err != nil {
		t.Fatalf("ObtenerCalificaciones: %v", err)
	}
	if len(soloCurso1) != 1 || soloCurso1[0].CursoID != 1 {
		t.Fatalf("Expected only curso 1 ratings, got %+v", soloCurso1)
	}
}

func TestMessage_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		expected string
	}{
		{"backend message wins", &api.APIError{Status: 400, Message: "X"}, "fallback", "X"},
		{"generic replaced by fallback", &api.APIError{Message: api.MensajeGenerico}, "fallback", "fallback"},
		{"non-api error", errors.New("boom"), "fallback", "fallback"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := api.Message(tc.err, tc.fallback); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

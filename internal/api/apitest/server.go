// Package apitest runs an in-process rendition of the course-video backend
// for the test suites: real HTTP, real bearer tokens, a handful of maps
// instead of a database. Route shapes and auth handling mirror the live
// backend so client behavior observed here transfers.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"aulavideo/internal/models"
)

type contextKey string

const userKey contextKey = "usuario"

type failure struct {
	status  int
	message string
}

type Server struct {
	secret []byte
	srv    *httptest.Server

	mu              sync.Mutex
	usuarios        map[uint]models.Usuario
	passwords       map[string]string
	cursos          map[uint]models.Curso
	categorias      []models.Categoria
	resumenes       map[uint]models.ResumenCalificacion
	calificaciones  map[uint]models.Calificacion
	visualizaciones map[uint]models.Visualizacion
	fail            map[string]failure
	requests        []string
	nextID          uint
}

func New() *Server {
	s := &Server{
		secret:          []byte("apitest-secret"),
		usuarios:        make(map[uint]models.Usuario),
		passwords:       make(map[string]string),
		cursos:          make(map[uint]models.Curso),
		resumenes:       make(map[uint]models.ResumenCalificacion),
		calificaciones:  make(map[uint]models.Calificacion),
		visualizaciones: make(map[uint]models.Visualizacion),
		fail:            make(map[string]failure),
		nextID:          100,
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(s.record)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/registro", s.registro)
		})

		r.Route("/cursos", func(r chi.Router) {
			r.Get("/publicos", s.cursosPublicos)
			r.Get("/buscar", s.buscarCursos)
			r.Get("/categoria/{id}", s.cursosPorCategoria)
			r.Get("/{id}", s.cursoPorID)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/mis-cursos", s.misCursos)
				r.Post("/", s.crearCurso)
				r.Put("/{id}", s.actualizarCurso)
				r.Delete("/{id}", s.eliminarCurso)
				r.Post("/{id}/publicar", s.publicarCurso)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/curso/{id}", s.videosPorCurso)
			r.Get("/{id}", s.videoPorID)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/curso/{id}", s.subirVideo)
				r.Put("/{id}", s.actualizarVideo)
				r.Delete("/{id}", s.eliminarVideo)
			})
		})

		r.Route("/categorias", func(r chi.Router) {
			r.Get("/", s.listarCategorias)
			r.Get("/{id}", s.categoriaPorID)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Use(s.requireAdmin)
				r.Post("/", s.crearCategoria)
				r.Put("/{id}", s.actualizarCategoria)
				r.Delete("/{id}", s.eliminarCategoria)
			})
		})

		r.Route("/calificaciones/curso/{id}", func(r chi.Router) {
			r.Get("/resumen", s.resumenCurso)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.calificar)
				r.Get("/mi-calificacion", s.miCalificacion)
				r.Delete("/", s.eliminarMiCalificacion)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Use(s.requireAdmin)

			r.Get("/estadisticas", s.estadisticas)

			r.Route("/usuarios", func(r chi.Router) {
				r.Get("/", s.listarUsuarios)
				r.Post("/", s.crearUsuario)
				r.Get("/{id}", s.usuarioPorID)
				r.Put("/{id}", s.actualizarUsuario)
				r.Patch("/{id}/estado", s.cambiarEstadoUsuario)
				r.Delete("/{id}", s.eliminarUsuario)
			})

			r.Route("/cursos", func(r chi.Router) {
				r.Get("/", s.listarCursosAdmin)
				r.Patch("/{id}/estado", s.cambiarEstadoCurso)
				r.Delete("/{id}", s.eliminarCursoAdmin)
			})

			r.Delete("/videos/{id}", s.eliminarVideoAdmin)

			r.Route("/calificaciones", func(r chi.Router) {
				r.Get("/", s.listarCalificaciones)
				r.Delete("/{id}", s.eliminarCalificacionAdmin)
			})

			r.Route("/visualizaciones", func(r chi.Router) {
				r.Get("/", s.listarVisualizaciones)
				r.Get("/estadisticas", s.estadisticasVisualizaciones)
				r.Delete("/{id}", s.eliminarVisualizacion)
			})
		})
	})

	s.srv = httptest.NewServer(r)
	return s
}

func (s *Server) Close() { s.srv.Close() }

// BaseURL is what the client under test uses as API_BASE_URL.
func (s *Server) BaseURL() string { return s.srv.URL + "/api" }

// FailWith forces every call to method+path to answer with status and a
// backend-style message body until cleared.
func (s *Server) FailWith(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method+" "+path] = failure{status: status, message: message}
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = make(map[string]failure)
}

// Requests lists "METHOD /path" for every call seen, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// ─── Fixture setup ───

func (s *Server) AgregarUsuario(u models.Usuario, password string) models.Usuario {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextID++
		u.ID = s.nextID
	}
	s.usuarios[u.ID] = u
	s.passwords[u.Email] = password
	return u
}

func (s *Server) AgregarCurso(c models.Curso) models.Curso {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	}
	s.cursos[c.ID] = c
	return c
}

func (s *Server) AgregarCategoria(c models.Categoria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categorias = append(s.categorias, c)
}

func (s *Server) AgregarResumen(r models.ResumenCalificacion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumenes[r.CursoID] = r
}

func (s *Server) AgregarCalificacion(c models.Calificacion) models.Calificacion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	}
	s.calificaciones[c.ID] = c
	return c
}

func (s *Server) AgregarVisualizacion(v models.Visualizacion) models.Visualizacion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		s.nextID++
		v.ID = s.nextID
	}
	s.visualizaciones[v.ID] = v
	return v
}

// TokenPara mints a valid bearer token for a fixture user.
func (s *Server) TokenPara(u models.Usuario) string {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"rol":     string(u.Rol),
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString(s.secret)
	return signed
}

// ─── Middleware ───

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		forced, hasForced := s.fail[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if hasForced {
			writeError(w, forced.status, forced.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Token requerido")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Token inválido")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		id, ok := claims["user_id"].(float64)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Token inválido")
			return
		}

		s.mu.Lock()
		usuario, exists := s.usuarios[uint(id)]
		s.mu.Unlock()
		if !exists {
			writeError(w, http.StatusUnauthorized, "Usuario no encontrado")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUsuario(r.Context(), usuario)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if usuarioDe(r).Rol != models.RolAdmin {
			writeError(w, http.StatusForbidden, "Se requiere rol de administrador")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Helpers ───

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func pathID(r *http.Request) uint {
	id, _ := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id)
}

package store

import (
	"context"
	"log"
	"sync"

	"aulavideo/internal/api"
	"aulavideo/internal/models"
)

// AdminStore drives the back office: users, courses, ratings and view
// records, plus the dashboard statistics. Mutations reload their list on
// success so the tables reflect the backend immediately.
type AdminStore struct {
	api *api.Client

	Usuarios        Lista[models.Usuario]
	Cursos          Lista[models.Curso]
	Categorias      Lista[models.Categoria]
	Calificaciones  Lista[models.Calificacion]
	Visualizaciones Lista[models.Visualizacion]

	mu                    sync.Mutex
	estadisticas          *models.Estadisticas
	estadisticasVis       *models.EstadisticasVisualizaciones
	filtroRol             models.Rol
	filtroEstado          string // "", "activo", "inactivo"
	filtroCalificaciones  models.FiltroCalificaciones
	filtroVisualizaciones models.FiltroVisualizaciones
}

func NewAdminStore(client *api.Client) *AdminStore {
	return &AdminStore{api: client}
}

// ─── Loads ───

func (s *AdminStore) CargarEstadisticas(ctx context.Context) {
	stats, err := s.api.Admin.ObtenerEstadisticas(ctx)
	if err != nil {
		log.Printf("Error al cargar estadísticas: %v", err)
		return
	}
	s.mu.Lock()
	s.estadisticas = stats
	s.mu.Unlock()
}

func (s *AdminStore) CargarUsuarios(ctx context.Context) {
	gen := s.Usuarios.begin()
	usuarios, err := s.api.Admin.ObtenerUsuarios(ctx)
	s.Usuarios.finishItems(gen, usuarios, err, "Error al cargar usuarios")
}

func (s *AdminStore) CargarCursos(ctx context.Context) {
	gen := s.Cursos.begin()
	cursos, err := s.api.Admin.ObtenerCursos(ctx)
	s.Cursos.finishItems(gen, cursos, err, "Error al cargar cursos")
}

func (s *AdminStore) CargarCategorias(ctx context.Context) {
	gen := s.Categorias.begin()
	categorias, err := s.api.Categorias.ObtenerTodas(ctx)
	s.Categorias.finishItems(gen, categorias, err, "Error al cargar categorías")
}

func (s *AdminStore) CargarCalificaciones(ctx context.Context) {
	gen := s.Calificaciones.begin()
	calificaciones, err := s.api.Admin.ObtenerCalificaciones(ctx, s.FiltroCalificaciones())
	s.Calificaciones.finishItems(gen, calificaciones, err, "Error al cargar las calificaciones")
}

func (s *AdminStore) CargarVisualizaciones(ctx context.Context) {
	gen := s.Visualizaciones.begin()
	visualizaciones, err := s.api.Admin.ObtenerVisualizaciones(ctx, s.FiltroVisualizaciones())
	s.Visualizaciones.finishItems(gen, visualizaciones, err, "Error al cargar las visualizaciones")
}

func (s *AdminStore) CargarEstadisticasVisualizaciones(ctx context.Context) {
	stats, err := s.api.Admin.ObtenerEstadisticasVisualizaciones(ctx)
	if err != nil {
		log.Printf("Error al cargar estadísticas de visualizaciones: %v", err)
		return
	}
	s.mu.Lock()
	s.estadisticasVis = stats
	s.mu.Unlock()
}

// ─── Mutations ───

func (s *AdminStore) CrearUsuario(ctx context.Context, datos models.NuevoUsuario) Result {
	if err := s.api.Admin.CrearUsuario(ctx, datos); err != nil {
		return resultadoDe(err, "Error al crear usuario")
	}
	s.CargarUsuarios(ctx)
	return Result{Success: true}
}

func (s *AdminStore) ActualizarUsuario(ctx context.Context, id uint, datos models.NuevoUsuario) Result {
	if err := s.api.Admin.ActualizarUsuario(ctx, id, datos); err != nil {
		return resultadoDe(err, "Error al actualizar usuario")
	}
	s.CargarUsuarios(ctx)
	return Result{Success: true}
}

func (s *AdminStore) CambiarEstadoUsuario(ctx context.Context, id uint, activo bool) Result {
	if err := s.api.Admin.CambiarEstadoUsuario(ctx, id, activo); err != nil {
		return resultadoDe(err, "Error al cambiar estado")
	}
	s.CargarUsuarios(ctx)
	return Result{Success: true}
}

func (s *AdminStore) EliminarUsuario(ctx context.Context, id uint) Result {
	if err := s.api.Admin.EliminarUsuario(ctx, id); err != nil {
		return resultadoDe(err, "Error al eliminar usuario")
	}
	s.CargarUsuarios(ctx)
	return Result{Success: true}
}

func (s *AdminStore) EliminarCurso(ctx context.Context, id uint) Result {
	if err := s.api.Admin.EliminarCurso(ctx, id); err != nil {
		return resultadoDe(err, "Error al eliminar curso")
	}
	s.CargarCursos(ctx)
	return Result{Success: true}
}

func (s *AdminStore) CambiarEstadoCurso(ctx context.Context, id uint, publicado bool) Result {
	if err := s.api.Admin.CambiarEstadoCurso(ctx, id, publicado); err != nil {
		return resultadoDe(err, "Error al cambiar estado")
	}
	s.CargarCursos(ctx)
	return Result{Success: true}
}

func (s *AdminStore) CrearCategoria(ctx context.Context, nombre string) Result {
	if _, err := s.api.Categorias.Crear(ctx, nombre); err != nil {
		return resultadoDe(err, "Error al crear la categoría")
	}
	s.CargarCategorias(ctx)
	return Result{Success: true}
}

func (s *AdminStore) ActualizarCategoria(ctx context.Context, id uint, nombre string) Result {
	if _, err := s.api.Categorias.Actualizar(ctx, id, nombre); err != nil {
		return resultadoDe(err, "Error al actualizar la categoría")
	}
	s.CargarCategorias(ctx)
	return Result{Success: true}
}

func (s *AdminStore) EliminarCategoria(ctx context.Context, id uint) Result {
	if err := s.api.Categorias.Eliminar(ctx, id); err != nil {
		return resultadoDe(err, "Error al eliminar la categoría")
	}
	s.CargarCategorias(ctx)
	return Result{Success: true}
}

func (s *AdminStore) EliminarVideo(ctx context.Context, id uint) Result {
	if err := s.api.Admin.EliminarVideo(ctx, id); err != nil {
		return resultadoDe(err, "Error al eliminar el video")
	}
	return Result{Success: true}
}

func (s *AdminStore) EliminarCalificacion(ctx context.Context, id uint) Result {
	if err := s.api.Admin.EliminarCalificacion(ctx, id); err != nil {
		return resultadoDe(err, "Error al eliminar la calificación")
	}
	s.CargarCalificaciones(ctx)
	return Result{Success: true}
}

func (s *AdminStore) EliminarVisualizacion(ctx context.Context, id uint) Result {
	if err := s.api.Admin.EliminarVisualizacion(ctx, id); err != nil {
		return resultadoDe(err, "Error al eliminar la visualización")
	}
	s.CargarVisualizaciones(ctx)
	s.CargarEstadisticasVisualizaciones(ctx)
	return Result{Success: true}
}

// ─── Filters ───

// UsuariosFiltrados applies the role/status filters locally, the way the
// user table renders them.
func (s *AdminStore) UsuariosFiltrados() []models.Usuario {
	s.mu.Lock()
	rol, estado := s.filtroRol, s.filtroEstado
	s.mu.Unlock()

	out := []models.Usuario{}
	for _, u := range s.Usuarios.Items() {
		if rol != "" && u.Rol != rol {
			continue
		}
		if estado == "activo" && !u.Activo {
			continue
		}
		if estado == "inactivo" && u.Activo {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (s *AdminStore) SetFiltroRol(rol models.Rol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtroRol = rol
}

func (s *AdminStore) SetFiltroEstado(estado string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtroEstado = estado
}

func (s *AdminStore) FiltroCalificaciones() models.FiltroCalificaciones {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtroCalificaciones
}

func (s *AdminStore) SetFiltroCalificaciones(f models.FiltroCalificaciones) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtroCalificaciones = f
}

func (s *AdminStore) FiltroVisualizaciones() models.FiltroVisualizaciones {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtroVisualizaciones
}

func (s *AdminStore) SetFiltroVisualizaciones(f models.FiltroVisualizaciones) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtroVisualizaciones = f
}

// ─── Accessors ───

func (s *AdminStore) Estadisticas() *models.Estadisticas {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estadisticas == nil {
		return nil
	}
	v := *s.estadisticas
	return &v
}

func (s *AdminStore) EstadisticasVisualizaciones() *models.EstadisticasVisualizaciones {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estadisticasVis == nil {
		return nil
	}
	v := *s.estadisticasVis
	return &v
}

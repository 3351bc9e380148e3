package store

import (
	"context"
	"log"
	"strings"
	"sync"

	"aulavideo/internal/api"
	"aulavideo/internal/models"
)

// CursosStore drives the course browsing screens: public catalog, the
// instructor's own courses, search, and the selected course detail with
// its videos and rating state.
type CursosStore struct {
	api *api.Client

	Cursos Lista[models.Curso]

	mu                    sync.Mutex
	categorias            []models.Categoria
	videos                []models.Video
	resumenes             map[uint]models.ResumenCalificacion
	miCalificacion        *models.Calificacion
	busqueda              string
	categoriaSeleccionada string
}

func NewCursosStore(client *api.Client) *CursosStore {
	return &CursosStore{api: client}
}

func (s *CursosStore) CargarCursosPublicos(ctx context.Context) {
	gen := s.Cursos.begin()
	cursos, err := s.api.Cursos.ObtenerPublicos(ctx)
	s.Cursos.finishItems(gen, cursos, err, "Error al cargar cursos")
}

func (s *CursosStore) CargarMisCursos(ctx context.Context) {
	gen := s.Cursos.begin()
	cursos, err := s.api.Cursos.ObtenerMisCursos(ctx)
	s.Cursos.finishItems(gen, cursos, err, "Error al cargar tus cursos")
}

// BuscarCursos searches the catalog. An empty or whitespace query falls
// back to the full public load; the backend treats the two as distinct
// endpoints so this is a contract, not a shortcut.
func (s *CursosStore) BuscarCursos(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		s.CargarCursosPublicos(ctx)
		return
	}
	gen := s.Cursos.begin()
	cursos, err := s.api.Cursos.Buscar(ctx, query, s.CategoriaSeleccionada())
	s.Cursos.finishItems(gen, cursos, err, "Error al buscar cursos")
}

// VerDetalleCurso selects a course and hydrates the dependent video list
// from the embedded collection on the detail payload. This is the one
// cross-entity copy in the hook layer and stays an explicit assignment.
func (s *CursosStore) VerDetalleCurso(ctx context.Context, cursoID uint) {
	gen := s.Cursos.begin()
	curso, err := s.api.Cursos.ObtenerPorID(ctx, cursoID)
	applied := s.Cursos.finishSelected(gen, curso, err, "Error al cargar el curso")
	if !applied {
		return
	}

	videos := curso.ListaVideos
	if videos == nil {
		videos = []models.Video{}
	}
	s.mu.Lock()
	s.videos = videos
	s.miCalificacion = nil
	s.mu.Unlock()
}

// PublicarCurso publishes a draft and refreshes the detail on success.
func (s *CursosStore) PublicarCurso(ctx context.Context, cursoID uint) Result {
	if err := s.api.Cursos.Publicar(ctx, cursoID); err != nil {
		return resultadoDe(err, "Error al publicar el curso")
	}
	s.VerDetalleCurso(ctx, cursoID)
	return Result{Success: true}
}

func (s *CursosStore) CrearCurso(ctx context.Context, nuevo models.NuevoCurso) Result {
	if _, err := s.api.Cursos.Crear(ctx, nuevo); err != nil {
		return resultadoDe(err, "Error al crear el curso")
	}
	return Result{Success: true}
}

func (s *CursosStore) ActualizarCurso(ctx context.Context, cursoID uint, datos models.NuevoCurso) Result {
	if _, err := s.api.Cursos.Actualizar(ctx, cursoID, datos); err != nil {
		return resultadoDe(err, "Error al actualizar el curso")
	}
	s.VerDetalleCurso(ctx, cursoID)
	return Result{Success: true}
}

func (s *CursosStore) EliminarCurso(ctx context.Context, cursoID uint) Result {
	if err := s.api.Cursos.Eliminar(ctx, cursoID); err != nil {
		return resultadoDe(err, "Error al eliminar el curso")
	}
	s.CargarMisCursos(ctx)
	return Result{Success: true}
}

// SubirVideo uploads a video to a course and refreshes the detail so the
// new entry shows up in order.
func (s *CursosStore) SubirVideo(ctx context.Context, cursoID uint, nuevo models.NuevoVideo) Result {
	if _, err := s.api.Videos.Subir(ctx, cursoID, nuevo); err != nil {
		return resultadoDe(err, "Error al subir el video")
	}
	s.VerDetalleCurso(ctx, cursoID)
	return Result{Success: true}
}

// CargarCategorias fills the category filter. Failures are logged, not
// stored: the catalog remains usable without the filter.
func (s *CursosStore) CargarCategorias(ctx context.Context) {
	categorias, err := s.api.Categorias.ObtenerTodas(ctx)
	if err != nil {
		log.Printf("Error al cargar categorías: %v", err)
		return
	}
	s.mu.Lock()
	s.categorias = categorias
	s.mu.Unlock()
}

// CargarResumenes fetches the rating summary of every listed course in
// parallel and publishes once when all have settled. Courses whose fetch
// failed are simply absent from the map; the rest still render.
func (s *CursosStore) CargarResumenes(ctx context.Context) {
	cursos := s.Cursos.Items()

	resumenes := make(map[uint]models.ResumenCalificacion, len(cursos))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, curso := range cursos {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			resumen, err := s.api.Calificaciones.Resumen(ctx, id)
			if err != nil {
				return
			}
			mu.Lock()
			resumenes[id] = *resumen
			mu.Unlock()
		}(curso.ID)
	}
	wg.Wait()

	s.mu.Lock()
	s.resumenes = resumenes
	s.mu.Unlock()
}

// Calificar rates the selected course and refreshes the local rating state.
func (s *CursosStore) Calificar(ctx context.Context, cursoID uint, puntuacion int) Result {
	if err := s.api.Calificaciones.Calificar(ctx, cursoID, puntuacion); err != nil {
		return resultadoDe(err, "Error al calificar el curso")
	}
	s.CargarMiCalificacion(ctx, cursoID)
	return Result{Success: true}
}

func (s *CursosStore) EliminarMiCalificacion(ctx context.Context, cursoID uint) Result {
	if err := s.api.Calificaciones.Eliminar(ctx, cursoID); err != nil {
		return resultadoDe(err, "Error al eliminar la calificación")
	}
	s.mu.Lock()
	s.miCalificacion = nil
	s.mu.Unlock()
	return Result{Success: true}
}

func (s *CursosStore) CargarMiCalificacion(ctx context.Context, cursoID uint) {
	calificacion, err := s.api.Calificaciones.MiCalificacion(ctx, cursoID)
	if err != nil {
		// 404 means "not rated yet"; either way there is nothing to show.
		return
	}
	s.mu.Lock()
	s.miCalificacion = calificacion
	s.mu.Unlock()
}

// ─── Accessors ───

func (s *CursosStore) Categorias() []models.Categoria {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Categoria, len(s.categorias))
	copy(out, s.categorias)
	return out
}

// Videos is the ordered list of the selected course.
func (s *CursosStore) Videos() []models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Video, len(s.videos))
	copy(out, s.videos)
	return out
}

func (s *CursosStore) Resumenes() map[uint]models.ResumenCalificacion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]models.ResumenCalificacion, len(s.resumenes))
	for id, r := range s.resumenes {
		out[id] = r
	}
	return out
}

func (s *CursosStore) MiCalificacion() *models.Calificacion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.miCalificacion == nil {
		return nil
	}
	c := *s.miCalificacion
	return &c
}

func (s *CursosStore) Busqueda() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busqueda
}

func (s *CursosStore) SetBusqueda(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busqueda = q
}

func (s *CursosStore) CategoriaSeleccionada() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoriaSeleccionada
}

func (s *CursosStore) SetCategoriaSeleccionada(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoriaSeleccionada = id
}

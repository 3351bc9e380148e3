package apitest

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"aulavideo/internal/models"
)

func withUsuario(ctx context.Context, u models.Usuario) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func usuarioDe(r *http.Request) models.Usuario {
	u, _ := r.Context().Value(userKey).(models.Usuario)
	return u
}

// ─── Auth ───

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var cred models.Credenciales
	if err := decodeJSON(r, &cred); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo inválido")
		return
	}

	s.mu.Lock()
	password, known := s.passwords[cred.Email]
	var usuario *models.Usuario
	for _, u := range s.usuarios {
		if u.Email == cred.Email {
			v := u
			usuario = &v
			break
		}
	}
	s.mu.Unlock()

	if !known || password != cred.Password || usuario == nil {
		writeError(w, http.StatusBadRequest, "Credenciales inválidas")
		return
	}
	if !usuario.Activo {
		writeError(w, http.StatusForbidden, "Usuario desactivado")
		return
	}

	writeJSON(w, http.StatusOK, models.RespuestaAuth{Token: s.TokenPara(*usuario), Usuario: *usuario})
}

func (s *Server) registro(w http.ResponseWriter, r *http.Request) {
	var reg models.Registro
	if err := decodeJSON(r, &reg); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo inválido")
		return
	}

	s.mu.Lock()
	if _, exists := s.passwords[reg.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "El email ya está registrado")
		return
	}
	s.nextID++
	usuario := models.Usuario{
		ID:       s.nextID,
		Nombre:   reg.Nombre,
		Apellido: reg.Apellido,
		Email:    reg.Email,
		Rol:      reg.Rol,
		Activo:   true,
	}
	s.usuarios[usuario.ID] = usuario
	s.passwords[reg.Email] = reg.Password
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.RespuestaAuth{Token: s.TokenPara(usuario), Usuario: usuario})
}

// ─── Cursos ───

func (s *Server) cursosPublicos(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cursosWhere(func(c models.Curso) bool { return c.Publicado }))
}

func (s *Server) misCursos(w http.ResponseWriter, r *http.Request) {
	yo := usuarioDe(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	// Own courses regardless of published state.
	writeJSON(w, http.StatusOK, s.cursosWhere(func(c models.Curso) bool { return c.InstructorID == yo.ID }))
}

func (s *Server) buscarCursos(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	categoria := r.URL.Query().Get("categoria")

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cursosWhere(func(c models.Curso) bool {
		if !c.Publicado || !strings.Contains(strings.ToLower(c.Titulo), q) {
			return false
		}
		return categoria == "" || strconv.FormatUint(uint64(c.CategoriaID), 10) == categoria
	}))
}

func (s *Server) cursosPorCategoria(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cursosWhere(func(c models.Curso) bool {
		return c.Publicado && c.CategoriaID == id
	}))
}

func (s *Server) cursoPorID(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	curso, ok := s.cursos[pathID(r)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, curso)
}

func (s *Server) crearCurso(w http.ResponseWriter, r *http.Request) {
	yo := usuarioDe(r)
	if yo.Rol != models.RolInstructor && yo.Rol != models.RolAdmin {
		writeError(w, http.StatusForbidden, "Se requiere rol de instructor")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Se esperaba multipart/form-data")
		return
	}

	categoriaID, _ := strconv.ParseUint(r.FormValue("categoriaId"), 10, 64)
	precio, _ := strconv.ParseFloat(r.FormValue("precio"), 64)

	s.mu.Lock()
	s.nextID++
	curso := models.Curso{
		ID:           s.nextID,
		Titulo:       r.FormValue("titulo"),
		Descripcion:  r.FormValue("descripcion"),
		Instructor:   yo.Nombre,
		InstructorID: yo.ID,
		CategoriaID:  uint(categoriaID),
		Precio:       precio,
		// Drafts stay unpublished until the explicit publish call.
		Publicado: false,
	}
	if _, header, err := r.FormFile("imagen"); err == nil {
		curso.Imagen = header.Filename
	}
	s.cursos[curso.ID] = curso
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, curso)
}

func (s *Server) actualizarCurso(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Se esperaba multipart/form-data")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	curso, ok := s.cursos[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}
	if yo := usuarioDe(r); curso.InstructorID != yo.ID && yo.Rol != models.RolAdmin {
		writeError(w, http.StatusForbidden, "No eres el dueño de este curso")
		return
	}

	curso.Titulo = r.FormValue("titulo")
	curso.Descripcion = r.FormValue("descripcion")
	if v, err := strconv.ParseUint(r.FormValue("categoriaId"), 10, 64); err == nil {
		curso.CategoriaID = uint(v)
	}
	if v, err := strconv.ParseFloat(r.FormValue("precio"), 64); err == nil {
		curso.Precio = v
	}
	s.cursos[curso.ID] = curso
	writeJSON(w, http.StatusOK, curso)
}

func (s *Server) eliminarCurso(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.cursos, pathID(r))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) publicarCurso(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	curso, ok := s.cursos[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}
	curso.Publicado = true
	s.cursos[curso.ID] = curso
	writeJSON(w, http.StatusOK, curso)
}

// cursosWhere filters under the caller's lock, ordered by id for stable
// assertions.
func (s *Server) cursosWhere(keep func(models.Curso) bool) []models.Curso {
	out := []models.Curso{}
	for _, c := range s.cursos {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ─── Videos ───

func (s *Server) videosPorCurso(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	curso, ok := s.cursos[pathID(r)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}
	videos := curso.ListaVideos
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) videoPorID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, curso := range s.cursos {
		for _, v := range curso.ListaVideos {
			if v.ID == id {
				writeJSON(w, http.StatusOK, v)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Video no encontrado")
}

func (s *Server) subirVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Se esperaba multipart/form-data")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	curso, ok := s.cursos[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}
	if yo := usuarioDe(r); curso.InstructorID != yo.ID && yo.Rol != models.RolAdmin {
		writeError(w, http.StatusForbidden, "No eres el dueño de este curso")
		return
	}

	orden, _ := strconv.Atoi(r.FormValue("orden"))
	duracion, _ := strconv.Atoi(r.FormValue("duracionSegundos"))
	s.nextID++
	video := models.Video{
		ID:               s.nextID,
		CursoID:          curso.ID,
		Titulo:           r.FormValue("titulo"),
		Descripcion:      r.FormValue("descripcion"),
		Orden:            orden,
		DuracionSegundos: duracion,
	}
	if _, header, err := r.FormFile("archivo"); err == nil {
		video.URL = "/uploads/" + header.Filename
	}
	curso.ListaVideos = append(curso.ListaVideos, video)
	curso.CantidadVideos = len(curso.ListaVideos)
	curso.DuracionTotal += video.DuracionSegundos
	s.cursos[curso.ID] = curso
	writeJSON(w, http.StatusCreated, video)
}

func (s *Server) actualizarVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Se esperaba multipart/form-data")
		return
	}

	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for cursoID, curso := range s.cursos {
		for i, v := range curso.ListaVideos {
			if v.ID != id {
				continue
			}
			v.Titulo = r.FormValue("titulo")
			v.Descripcion = r.FormValue("descripcion")
			if orden, err := strconv.Atoi(r.FormValue("orden")); err == nil {
				v.Orden = orden
			}
			curso.ListaVideos[i] = v
			s.cursos[cursoID] = curso
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Video no encontrado")
}

func (s *Server) eliminarVideo(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for cursoID, curso := range s.cursos {
		for i, v := range curso.ListaVideos {
			if v.ID != id {
				continue
			}
			curso.ListaVideos = append(curso.ListaVideos[:i], curso.ListaVideos[i+1:]...)
			curso.CantidadVideos = len(curso.ListaVideos)
			curso.DuracionTotal -= v.DuracionSegundos
			s.cursos[cursoID] = curso
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Video no encontrado")
}

// ─── Categorias ───

func (s *Server) listarCategorias(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.categorias
	if out == nil {
		out = []models.Categoria{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) categoriaPorID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categorias {
		if c.ID == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Categoría no encontrada")
}

func (s *Server) crearCategoria(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nombre string `json:"nombre"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Nombre == "" {
		writeError(w, http.StatusBadRequest, "El nombre es obligatorio")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categorias {
		if c.Nombre == payload.Nombre {
			writeError(w, http.StatusBadRequest, "La categoría ya existe")
			return
		}
	}
	s.nextID++
	categoria := models.Categoria{ID: s.nextID, Nombre: payload.Nombre}
	s.categorias = append(s.categorias, categoria)
	writeJSON(w, http.StatusCreated, categoria)
}

func (s *Server) actualizarCategoria(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nombre string `json:"nombre"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Nombre == "" {
		writeError(w, http.StatusBadRequest, "El nombre es obligatorio")
		return
	}

	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.categorias {
		if c.ID == id {
			s.categorias[i].Nombre = payload.Nombre
			writeJSON(w, http.StatusOK, s.categorias[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Categoría no encontrada")
}

func (s *Server) eliminarCategoria(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.categorias {
		if c.ID == id {
			s.categorias = append(s.categorias[:i], s.categorias[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Categoría no encontrada")
}

// ─── Calificaciones ───

func (s *Server) resumenCurso(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resumen, ok := s.resumenes[pathID(r)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Sin calificaciones")
		return
	}
	writeJSON(w, http.StatusOK, resumen)
}

func (s *Server) calificar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Puntuacion int `json:"puntuacion"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Puntuacion < 1 || payload.Puntuacion > 5 {
		writeError(w, http.StatusBadRequest, "La puntuación debe estar entre 1 y 5")
		return
	}

	yo := usuarioDe(r)
	cursoID := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	// One rating per (user, course): replace if present.
	for id, c := range s.calificaciones {
		if c.CursoID == cursoID && c.UsuarioID == yo.ID {
			c.Puntuacion = payload.Puntuacion
			s.calificaciones[id] = c
			s.recomputarResumen(cursoID)
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	s.nextID++
	calificacion := models.Calificacion{
		ID:         s.nextID,
		CursoID:    cursoID,
		UsuarioID:  yo.ID,
		Puntuacion: payload.Puntuacion,
		Fecha:      time.Now().UTC(),
	}
	s.calificaciones[calificacion.ID] = calificacion
	s.recomputarResumen(cursoID)
	writeJSON(w, http.StatusCreated, calificacion)
}

func (s *Server) miCalificacion(w http.ResponseWriter, r *http.Request) {
	yo := usuarioDe(r)
	cursoID := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calificaciones {
		if c.CursoID == cursoID && c.UsuarioID == yo.ID {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Aún no has calificado este curso")
}

func (s *Server) eliminarMiCalificacion(w http.ResponseWriter, r *http.Request) {
	yo := usuarioDe(r)
	cursoID := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.calificaciones {
		if c.CursoID == cursoID && c.UsuarioID == yo.ID {
			delete(s.calificaciones, id)
			s.recomputarResumen(cursoID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Aún no has calificado este curso")
}

// recomputarResumen mirrors the backend recomputing after every mutation.
// Caller holds the lock.
func (s *Server) recomputarResumen(cursoID uint) {
	total, suma := 0, 0
	for _, c := range s.calificaciones {
		if c.CursoID == cursoID {
			total++
			suma += c.Puntuacion
		}
	}
	if total == 0 {
		delete(s.resumenes, cursoID)
		return
	}
	s.resumenes[cursoID] = models.ResumenCalificacion{
		CursoID:  cursoID,
		Promedio: float64(suma) / float64(total),
		Total:    total,
	}
}

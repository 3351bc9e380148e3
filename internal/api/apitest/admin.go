package apitest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"aulavideo/internal/models"
)

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) estadisticas(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.Estadisticas{
		TotalUsuarios:        len(s.usuarios),
		TotalCursos:          len(s.cursos),
		TotalVisualizaciones: len(s.visualizaciones),
	}
	for _, c := range s.cursos {
		if c.Publicado {
			stats.CursosPublicados++
		}
		stats.TotalVideos += len(c.ListaVideos)
	}
	writeJSON(w, http.StatusOK, stats)
}

// ─── Usuarios ───

func (s *Server) listarUsuarios(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Usuario{}
	for _, u := range s.usuarios {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) usuarioPorID(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	usuario, ok := s.usuarios[pathID(r)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, usuario)
}

func (s *Server) crearUsuario(w http.ResponseWriter, r *http.Request) {
	var datos models.NuevoUsuario
	if err := decodeJSON(r, &datos); err != nil || datos.Email == "" {
		writeError(w, http.StatusBadRequest, "Datos de usuario inválidos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.passwords[datos.Email]; exists {
		writeError(w, http.StatusBadRequest, "El email ya está registrado")
		return
	}
	s.nextID++
	usuario := models.Usuario{
		ID:       s.nextID,
		Nombre:   datos.Nombre,
		Apellido: datos.Apellido,
		Email:    datos.Email,
		Rol:      datos.Rol,
		Activo:   true,
	}
	s.usuarios[usuario.ID] = usuario
	s.passwords[datos.Email] = datos.Password
	writeJSON(w, http.StatusCreated, usuario)
}

func (s *Server) actualizarUsuario(w http.ResponseWriter, r *http.Request) {
	var datos models.NuevoUsuario
	if err := decodeJSON(r, &datos); err != nil {
		writeError(w, http.StatusBadRequest, "Datos de usuario inválidos")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	usuario, ok := s.usuarios[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	usuario.Nombre = datos.Nombre
	usuario.Apellido = datos.Apellido
	usuario.Email = datos.Email
	usuario.Rol = datos.Rol
	s.usuarios[usuario.ID] = usuario
	writeJSON(w, http.StatusOK, usuario)
}

func (s *Server) cambiarEstadoUsuario(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usuario, ok := s.usuarios[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	usuario.Activo = r.URL.Query().Get("activo") == "true"
	s.usuarios[usuario.ID] = usuario
	writeJSON(w, http.StatusOK, usuario)
}

func (s *Server) eliminarUsuario(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usuario, ok := s.usuarios[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	delete(s.usuarios, usuario.ID)
	delete(s.passwords, usuario.Email)
	w.WriteHeader(http.StatusNoContent)
}

// ─── Cursos / Videos ───

func (s *Server) listarCursosAdmin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cursosWhere(func(models.Curso) bool { return true }))
}

func (s *Server) cambiarEstadoCurso(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	curso, ok := s.cursos[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}
	curso.Publicado = r.URL.Query().Get("publicado") == "true"
	s.cursos[curso.ID] = curso
	writeJSON(w, http.StatusOK, curso)
}

func (s *Server) eliminarCursoAdmin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.cursos, pathID(r))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) eliminarVideoAdmin(w http.ResponseWriter, r *http.Request) {
	videoID := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, curso := range s.cursos {
		kept := curso.ListaVideos[:0]
		for _, v := range curso.ListaVideos {
			if v.ID != videoID {
				kept = append(kept, v)
			}
		}
		curso.ListaVideos = kept
		s.cursos[id] = curso
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Calificaciones / Visualizaciones ───

func (s *Server) listarCalificaciones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Calificacion{}
	for _, c := range s.calificaciones {
		if !matchID(q.Get("cursoId"), c.CursoID) || !matchID(q.Get("usuarioId"), c.UsuarioID) {
			continue
		}
		if !matchFecha(q.Get("fechaDesde"), q.Get("fechaHasta"), c.Fecha) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) eliminarCalificacionAdmin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	calificacion, ok := s.calificaciones[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "Calificación no encontrada")
		return
	}
	delete(s.calificaciones, calificacion.ID)
	s.recomputarResumen(calificacion.CursoID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listarVisualizaciones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Visualizacion{}
	for _, v := range s.visualizaciones {
		if !matchID(q.Get("videoId"), v.VideoID) || !matchID(q.Get("usuarioId"), v.UsuarioID) {
			continue
		}
		if !matchFecha(q.Get("fechaDesde"), q.Get("fechaHasta"), v.Fecha) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) estadisticasVisualizaciones(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.EstadisticasVisualizaciones{Total: len(s.visualizaciones)}
	vistos := map[uint]bool{}
	hace7 := time.Now().AddDate(0, 0, -7)
	for _, v := range s.visualizaciones {
		vistos[v.VideoID] = true
		if v.Fecha.After(hace7) {
			stats.UltimaSemana++
		}
	}
	stats.VideosUnicos = len(vistos)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) eliminarVisualizacion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visualizaciones[pathID(r)]; !ok {
		writeError(w, http.StatusNotFound, "Visualización no encontrada")
		return
	}
	delete(s.visualizaciones, pathID(r))
	w.WriteHeader(http.StatusNoContent)
}

func matchID(filtro string, id uint) bool {
	if filtro == "" {
		return true
	}
	return filtro == strconv.FormatUint(uint64(id), 10)
}

func matchFecha(desde, hasta string, fecha time.Time) bool {
	const layout = "2006-01-02"
	if desde != "" {
		if d, err := time.Parse(layout, desde); err == nil && fecha.Before(d) {
			return false
		}
	}
	if hasta != "" {
		if h, err := time.Parse(layout, hasta); err == nil && fecha.After(h.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

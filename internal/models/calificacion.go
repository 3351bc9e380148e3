package models

import "time"

type Calificacion struct {
	ID         uint      `json:"id"`
	CursoID    uint      `json:"cursoId"`
	Curso      string    `json:"curso,omitempty"`
	UsuarioID  uint      `json:"usuarioId"`
	Usuario    string    `json:"usuario,omitempty"`
	Puntuacion int       `json:"puntuacion"`
	Fecha      time.Time `json:"fecha"`
}

// ResumenCalificacion is the server-computed average for one course.
type ResumenCalificacion struct {
	CursoID  uint    `json:"cursoId"`
	Promedio float64 `json:"promedio"`
	Total    int     `json:"total"`
}

type Visualizacion struct {
	ID        uint      `json:"id"`
	VideoID   uint      `json:"videoId"`
	Video     string    `json:"video,omitempty"`
	UsuarioID uint      `json:"usuarioId"`
	Usuario   string    `json:"usuario,omitempty"`
	Fecha     time.Time `json:"fecha"`
}

type Estadisticas struct {
	TotalUsuarios        int `json:"totalUsuarios"`
	TotalCursos          int `json:"totalCursos"`
	CursosPublicados     int `json:"cursosPublicados"`
	TotalVideos          int `json:"totalVideos"`
	TotalVisualizaciones int `json:"totalVisualizaciones"`
}

type EstadisticasVisualizaciones struct {
	Total        int `json:"total"`
	UltimaSemana int `json:"ultimaSemana"`
	VideosUnicos int `json:"videosUnicos"`
}

// FiltroCalificaciones narrows the admin ratings listing. Zero values mean
// "no filter"; dates travel as YYYY-MM-DD strings, matching the backend.
type FiltroCalificaciones struct {
	CursoID    string
	UsuarioID  string
	FechaDesde string
	FechaHasta string
}

type FiltroVisualizaciones struct {
	VideoID    string
	UsuarioID  string
	FechaDesde string
	FechaHasta string
}

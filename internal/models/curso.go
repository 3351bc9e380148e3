package models

import "io"

type Curso struct {
	ID             uint    `json:"id"`
	Titulo         string  `json:"titulo"`
	Descripcion    string  `json:"descripcion"`
	Instructor     string  `json:"instructor"`
	InstructorID   uint    `json:"instructorId"`
	CategoriaID    uint    `json:"categoriaId"`
	Categoria      string  `json:"categoria"`
	Precio         float64 `json:"precio"`
	Publicado      bool    `json:"publicado"`
	Imagen         string  `json:"imagen,omitempty"`
	CantidadVideos int     `json:"cantidadVideos"`
	DuracionTotal  int     `json:"duracionTotal"`

	// Only present on the detail endpoint.
	ListaVideos []Video `json:"listaVideos,omitempty"`
}

type Video struct {
	ID          uint   `json:"id"`
	CursoID     uint   `json:"cursoId"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion,omitempty"`
	// 1-based position within the course. Uniqueness is enforced by the
	// backend; the client never assumes it locally.
	Orden            int    `json:"orden"`
	DuracionSegundos int    `json:"duracionSegundos,omitempty"`
	URL              string `json:"url"`
}

type Categoria struct {
	ID     uint   `json:"id"`
	Nombre string `json:"nombre"`
}

// Archivo is a file reference for multipart uploads.
type Archivo struct {
	Nombre    string
	Contenido io.Reader
}

// NuevoCurso is the multipart payload for creating or updating a course.
type NuevoCurso struct {
	Titulo      string
	Descripcion string
	CategoriaID uint
	Precio      *float64
	Imagen      *Archivo
}

// NuevoVideo is the multipart payload for uploading a video to a course.
type NuevoVideo struct {
	Titulo           string
	Descripcion      string
	Orden            int
	DuracionSegundos int
	Archivo          *Archivo
}

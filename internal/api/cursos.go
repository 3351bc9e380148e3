package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"aulavideo/internal/models"
)

type CursosAPI struct{ c *Client }

// ObtenerPublicos lists published courses only; the backend applies the
// visibility rule.
func (a *CursosAPI) ObtenerPublicos(ctx context.Context) ([]models.Curso, error) {
	var cursos []models.Curso
	if err := a.c.getJSON(ctx, "/cursos/publicos", &cursos); err != nil {
		return nil, err
	}
	return cursos, nil
}

// ObtenerMisCursos lists every course owned by the current user, drafts
// included.
func (a *CursosAPI) ObtenerMisCursos(ctx context.Context) ([]models.Curso, error) {
	var cursos []models.Curso
	if err := a.c.getJSON(ctx, "/cursos/mis-cursos", &cursos); err != nil {
		return nil, err
	}
	return cursos, nil
}

// ObtenerPorID fetches the course detail, embedded video list included.
func (a *CursosAPI) ObtenerPorID(ctx context.Context, id uint) (*models.Curso, error) {
	var curso models.Curso
	if err := a.c.getJSON(ctx, fmt.Sprintf("/cursos/%d", id), &curso); err != nil {
		return nil, err
	}
	return &curso, nil
}

func (a *CursosAPI) ObtenerPorCategoria(ctx context.Context, categoriaID uint) ([]models.Curso, error) {
	var cursos []models.Curso
	if err := a.c.getJSON(ctx, fmt.Sprintf("/cursos/categoria/%d", categoriaID), &cursos); err != nil {
		return nil, err
	}
	return cursos, nil
}

// Buscar searches published courses. categoria is optional and travels
// only when non-empty.
func (a *CursosAPI) Buscar(ctx context.Context, query, categoria string) ([]models.Curso, error) {
	params := url.Values{}
	params.Set("q", query)
	if categoria != "" {
		params.Set("categoria", categoria)
	}
	var cursos []models.Curso
	if err := a.c.getJSON(ctx, "/cursos/buscar?"+params.Encode(), &cursos); err != nil {
		return nil, err
	}
	return cursos, nil
}

func (a *CursosAPI) Crear(ctx context.Context, nuevo models.NuevoCurso) (*models.Curso, error) {
	var curso models.Curso
	err := a.c.sendMultipart(ctx, http.MethodPost, "/cursos", cursoFields(nuevo),
		map[string]*models.Archivo{"imagen": nuevo.Imagen}, &curso)
	if err != nil {
		return nil, err
	}
	return &curso, nil
}

func (a *CursosAPI) Actualizar(ctx context.Context, id uint, datos models.NuevoCurso) (*models.Curso, error) {
	var curso models.Curso
	err := a.c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/cursos/%d", id), cursoFields(datos),
		map[string]*models.Archivo{"imagen": datos.Imagen}, &curso)
	if err != nil {
		return nil, err
	}
	return &curso, nil
}

func (a *CursosAPI) Eliminar(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/cursos/%d", id))
}

func (a *CursosAPI) Publicar(ctx context.Context, id uint) error {
	return a.c.do(ctx, http.MethodPost, fmt.Sprintf("/cursos/%d/publicar", id), nil, "", nil)
}

func cursoFields(datos models.NuevoCurso) map[string]string {
	fields := map[string]string{
		"titulo":      datos.Titulo,
		"descripcion": datos.Descripcion,
		"categoriaId": strconv.FormatUint(uint64(datos.CategoriaID), 10),
	}
	if datos.Precio != nil {
		fields["precio"] = strconv.FormatFloat(*datos.Precio, 'f', 2, 64)
	}
	return fields
}

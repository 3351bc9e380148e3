package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"aulavideo/internal/models"
)

type AdminAPI struct{ c *Client }

func (a *AdminAPI) ObtenerEstadisticas(ctx context.Context) (*models.Estadisticas, error) {
	var stats models.Estadisticas
	if err := a.c.getJSON(ctx, "/admin/estadisticas", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ─── Usuarios ───

func (a *AdminAPI) ObtenerUsuarios(ctx context.Context) ([]models.Usuario, error) {
	var usuarios []models.Usuario
	if err := a.c.getJSON(ctx, "/admin/usuarios", &usuarios); err != nil {
		return nil, err
	}
	return usuarios, nil
}

func (a *AdminAPI) ObtenerUsuarioPorID(ctx context.Context, id uint) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := a.c.getJSON(ctx, fmt.Sprintf("/admin/usuarios/%d", id), &usuario); err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (a *AdminAPI) CrearUsuario(ctx context.Context, datos models.NuevoUsuario) error {
	return a.c.sendJSON(ctx, http.MethodPost, "/admin/usuarios", datos, nil)
}

func (a *AdminAPI) ActualizarUsuario(ctx context.Context, id uint, datos models.NuevoUsuario) error {
	return a.c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/usuarios/%d", id), datos, nil)
}

func (a *AdminAPI) CambiarEstadoUsuario(ctx context.Context, id uint, activo bool) error {
	path := fmt.Sprintf("/admin/usuarios/%d/estado?activo=%s", id, strconv.FormatBool(activo))
	return a.c.do(ctx, http.MethodPatch, path, nil, "", nil)
}

func (a *AdminAPI) EliminarUsuario(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/admin/usuarios/%d", id))
}

// ─── Cursos ───

func (a *AdminAPI) ObtenerCursos(ctx context.Context) ([]models.Curso, error) {
	var cursos []models.Curso
	if err := a.c.getJSON(ctx, "/admin/cursos", &cursos); err != nil {
		return nil, err
	}
	return cursos, nil
}

func (a *AdminAPI) EliminarCurso(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/admin/cursos/%d", id))
}

func (a *AdminAPI) CambiarEstadoCurso(ctx context.Context, id uint, publicado bool) error {
	path := fmt.Sprintf("/admin/cursos/%d/estado?publicado=%s", id, strconv.FormatBool(publicado))
	return a.c.do(ctx, http.MethodPatch, path, nil, "", nil)
}

// ─── Videos ───

func (a *AdminAPI) EliminarVideo(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/admin/videos/%d", id))
}

// ─── Calificaciones ───

func (a *AdminAPI) ObtenerCalificaciones(ctx context.Context, filtro models.FiltroCalificaciones) ([]models.Calificacion, error) {
	params := url.Values{}
	setParam(params, "cursoId", filtro.CursoID)
	setParam(params, "usuarioId", filtro.UsuarioID)
	setParam(params, "fechaDesde", filtro.FechaDesde)
	setParam(params, "fechaHasta", filtro.FechaHasta)

	var calificaciones []models.Calificacion
	if err := a.c.getJSON(ctx, withQuery("/admin/calificaciones", params), &calificaciones); err != nil {
		return nil, err
	}
	return calificaciones, nil
}

func (a *AdminAPI) EliminarCalificacion(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/admin/calificaciones/%d", id))
}

// ─── Visualizaciones ───

func (a *AdminAPI) ObtenerVisualizaciones(ctx context.Context, filtro models.FiltroVisualizaciones) ([]models.Visualizacion, error) {
	params := url.Values{}
	setParam(params, "videoId", filtro.VideoID)
	setParam(params, "usuarioId", filtro.UsuarioID)
	setParam(params, "fechaDesde", filtro.FechaDesde)
	setParam(params, "fechaHasta", filtro.FechaHasta)

	var visualizaciones []models.Visualizacion
	if err := a.c.getJSON(ctx, withQuery("/admin/visualizaciones", params), &visualizaciones); err != nil {
		return nil, err
	}
	return visualizaciones, nil
}

func (a *AdminAPI) ObtenerEstadisticasVisualizaciones(ctx context.Context) (*models.EstadisticasVisualizaciones, error) {
	var stats models.EstadisticasVisualizaciones
	if err := a.c.getJSON(ctx, "/admin/visualizaciones/estadisticas", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (a *AdminAPI) EliminarVisualizacion(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/admin/visualizaciones/%d", id))
}

func setParam(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

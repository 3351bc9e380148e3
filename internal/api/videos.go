package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"aulavideo/internal/models"
)

type VideosAPI struct{ c *Client }

func (a *VideosAPI) ObtenerPorCurso(ctx context.Context, cursoID uint) ([]models.Video, error) {
	var videos []models.Video
	if err := a.c.getJSON(ctx, fmt.Sprintf("/videos/curso/%d", cursoID), &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (a *VideosAPI) ObtenerPorID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := a.c.getJSON(ctx, fmt.Sprintf("/videos/%d", id), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// Subir uploads a video file and its metadata to a course in one multipart
// request.
func (a *VideosAPI) Subir(ctx context.Context, cursoID uint, nuevo models.NuevoVideo) (*models.Video, error) {
	var video models.Video
	err := a.c.sendMultipart(ctx, http.MethodPost, fmt.Sprintf("/videos/curso/%d", cursoID),
		videoFields(nuevo), map[string]*models.Archivo{"archivo": nuevo.Archivo}, &video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (a *VideosAPI) Actualizar(ctx context.Context, id uint, datos models.NuevoVideo) (*models.Video, error) {
	var video models.Video
	err := a.c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/videos/%d", id),
		videoFields(datos), map[string]*models.Archivo{"archivo": datos.Archivo}, &video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (a *VideosAPI) Eliminar(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/videos/%d", id))
}

func videoFields(datos models.NuevoVideo) map[string]string {
	fields := map[string]string{
		"titulo": datos.Titulo,
		"orden":  strconv.Itoa(datos.Orden),
	}
	if datos.Descripcion != "" {
		fields["descripcion"] = datos.Descripcion
	}
	if datos.DuracionSegundos > 0 {
		fields["duracionSegundos"] = strconv.Itoa(datos.DuracionSegundos)
	}
	return fields
}

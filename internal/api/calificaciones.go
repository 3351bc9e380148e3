package api

import (
	"context"
	"fmt"
	"net/http"

	"aulavideo/internal/models"
)

type CalificacionesAPI struct{ c *Client }

// Calificar creates or replaces the caller's rating for a course; the
// backend holds the one-per-(user,course) rule and recomputes the summary.
func (a *CalificacionesAPI) Calificar(ctx context.Context, cursoID uint, puntuacion int) error {
	payload := map[string]int{"puntuacion": puntuacion}
	return a.c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/calificaciones/curso/%d", cursoID), payload, nil)
}

func (a *CalificacionesAPI) MiCalificacion(ctx context.Context, cursoID uint) (*models.Calificacion, error) {
	var calificacion models.Calificacion
	if err := a.c.getJSON(ctx, fmt.Sprintf("/calificaciones/curso/%d/mi-calificacion", cursoID), &calificacion); err != nil {
		return nil, err
	}
	return &calificacion, nil
}

func (a *CalificacionesAPI) Resumen(ctx context.Context, cursoID uint) (*models.ResumenCalificacion, error) {
	var resumen models.ResumenCalificacion
	if err := a.c.getJSON(ctx, fmt.Sprintf("/calificaciones/curso/%d/resumen", cursoID), &resumen); err != nil {
		return nil, err
	}
	return &resumen, nil
}

// Eliminar removes the caller's own rating.
func (a *CalificacionesAPI) Eliminar(ctx context.Context, cursoID uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/calificaciones/curso/%d", cursoID))
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"aulavideo/internal/models"
)

type CategoriasAPI struct{ c *Client }

func (a *CategoriasAPI) ObtenerTodas(ctx context.Context) ([]models.Categoria, error) {
	var categorias []models.Categoria
	if err := a.c.getJSON(ctx, "/categorias", &categorias); err != nil {
		return nil, err
	}
	return categorias, nil
}

func (a *CategoriasAPI) ObtenerPorID(ctx context.Context, id uint) (*models.Categoria, error) {
	var categoria models.Categoria
	if err := a.c.getJSON(ctx, fmt.Sprintf("/categorias/%d", id), &categoria); err != nil {
		return nil, err
	}
	return &categoria, nil
}

func (a *CategoriasAPI) Crear(ctx context.Context, nombre string) (*models.Categoria, error) {
	var categoria models.Categoria
	payload := map[string]string{"nombre": nombre}
	if err := a.c.sendJSON(ctx, http.MethodPost, "/categorias", payload, &categoria); err != nil {
		return nil, err
	}
	return &categoria, nil
}

func (a *CategoriasAPI) Actualizar(ctx context.Context, id uint, nombre string) (*models.Categoria, error) {
	var categoria models.Categoria
	payload := map[string]string{"nombre": nombre}
	if err := a.c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/categorias/%d", id), payload, &categoria); err != nil {
		return nil, err
	}
	return &categoria, nil
}

func (a *CategoriasAPI) Eliminar(ctx context.Context, id uint) error {
	return a.c.delete(ctx, fmt.Sprintf("/categorias/%d", id))
}

package api

import (
	"context"
	"net/http"

	"aulavideo/internal/models"
)

type AuthAPI struct{ c *Client }

func (a *AuthAPI) Login(ctx context.Context, cred models.Credenciales) (*models.RespuestaAuth, error) {
	var resp models.RespuestaAuth
	if err := a.c.sendJSON(ctx, http.MethodPost, "/auth/login", cred, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Registro(ctx context.Context, reg models.Registro) (*models.RespuestaAuth, error) {
	var resp models.RespuestaAuth
	if err := a.c.sendJSON(ctx, http.MethodPost, "/auth/registro", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

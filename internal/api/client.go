// Package api is the typed HTTP client for the course-video backend. It
// owns bearer injection, request correlation, and the normalization of
// every failure into an *APIError; nothing above it touches net/http.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"aulavideo/internal/models"
)

// MensajeGenerico is shown whenever the backend supplies no message:
// transport failures and bodyless 5xx responses.
const MensajeGenerico = "Error de conexión con el servidor"

// APIError is the single failure shape callers see. Status is 0 for
// transport-level failures.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Message extracts the user-facing text from any error the client
// returned, falling back when it is not an APIError.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Message != MensajeGenerico {
		return apiErr.Message
	}
	return fallback
}

// TokenSource yields the current bearer token, empty when anonymous.
type TokenSource interface {
	Token() string
}

type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource

	onUnauthorized func()

	Auth           *AuthAPI
	Cursos         *CursosAPI
	Videos         *VideosAPI
	Categorias     *CategoriasAPI
	Calificaciones *CalificacionesAPI
	Admin          *AdminAPI
}

func New(baseURL string, timeout time.Duration) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
	c.Auth = &AuthAPI{c}
	c.Cursos = &CursosAPI{c}
	c.Videos = &VideosAPI{c}
	c.Categorias = &CategoriasAPI{c}
	c.Calificaciones = &CalificacionesAPI{c}
	c.Admin = &AdminAPI{c}
	return c
}

// SetTokenSource wires the session in after construction; the session
// itself needs the Auth group, so the two are built in sequence.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

// OnUnauthorized registers the single global side effect this layer is
// allowed: the hook runs on every 401 before the error is returned to the
// caller, so the caller's error path still executes.
func (c *Client) OnUnauthorized(fn func()) { c.onUnauthorized = fn }

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return &APIError{Message: MensajeGenerico}
	}

	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: MensajeGenerico}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &APIError{Status: resp.StatusCode, Message: backendMessage(resp.Body, "Sesión expirada")}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: backendMessage(resp.Body, MensajeGenerico)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: MensajeGenerico}
	}
	return nil
}

// backendMessage pulls the message field out of an error body, if any.
func backendMessage(body io.Reader, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &APIError{Message: MensajeGenerico}
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// sendMultipart encodes fields and files as multipart/form-data. Upload
// mechanics beyond the encoding stay with the caller and the backend.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, files map[string]*models.Archivo, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return &APIError{Message: MensajeGenerico}
		}
	}
	for name, archivo := range files {
		if archivo == nil {
			continue
		}
		part, err := w.CreateFormFile(name, archivo.Nombre)
		if err != nil {
			return &APIError{Message: MensajeGenerico}
		}
		if _, err := io.Copy(part, archivo.Contenido); err != nil {
			return &APIError{Message: fmt.Sprintf("Error al leer el archivo %s", archivo.Nombre)}
		}
	}
	if err := w.Close(); err != nil {
		return &APIError{Message: MensajeGenerico}
	}
	return c.do(ctx, method, path, &buf, w.FormDataContentType(), out)
}

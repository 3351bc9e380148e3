// Package session owns the authenticated user and bearer token: in-memory
// for predicates, persisted through storage so a restart (or another
// process on the same state dir) sees the same session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"aulavideo/internal/models"
	"aulavideo/internal/storage"
)

var ErrNoSession = errors.New("no active session")

// AuthAPI is the slice of the API client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, cred models.Credenciales) (*models.RespuestaAuth, error)
	Registro(ctx context.Context, reg models.Registro) (*models.RespuestaAuth, error)
}

type Manager struct {
	store storage.Store
	auth  AuthAPI

	mu      sync.RWMutex
	usuario *models.Usuario
	token   string

	cancelSub func()
}

// New hydrates from storage and starts listening for changes made by other
// execution contexts. A stored user that fails to parse is treated as
// absent: the manager starts logged out rather than failing.
func New(store storage.Store, auth AuthAPI) *Manager {
	m := &Manager{store: store, auth: auth}
	m.hydrate()
	m.cancelSub = store.Subscribe(m.onStorageEvent)
	return m
}

// Close stops the storage subscription. The session itself stays usable.
func (m *Manager) Close() {
	if m.cancelSub != nil {
		m.cancelSub()
	}
}

func (m *Manager) hydrate() {
	token, okT := m.store.Get(storage.KeyToken)
	raw, okU := m.store.Get(storage.KeyUser)
	if !okT || !okU {
		return
	}
	var u models.Usuario
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return
	}
	m.usuario = &u
	m.token = token
}

// Login exchanges credentials for a session. On success the token and user
// are persisted together and memory updated; on failure nothing changes and
// the error carries the backend's message.
func (m *Manager) Login(ctx context.Context, cred models.Credenciales) error {
	resp, err := m.auth.Login(ctx, cred)
	if err != nil {
		return err
	}
	m.establish(resp)
	return nil
}

// Register creates an account and opens a session, same contract as Login.
func (m *Manager) Register(ctx context.Context, reg models.Registro) error {
	resp, err := m.auth.Registro(ctx, reg)
	if err != nil {
		return err
	}
	m.establish(resp)
	return nil
}

func (m *Manager) establish(resp *models.RespuestaAuth) {
	raw, err := json.Marshal(resp.Usuario)
	if err != nil {
		// Usuario is a plain struct; this cannot happen in practice.
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Both keys or neither: a session is never half-persisted. The
	// in-memory session opens regardless; persistence only affects
	// restarts and other contexts.
	if err := m.store.Set(storage.KeyToken, resp.Token); err != nil {
		log.Printf("Failed to persist session token: %v", err)
	} else if err := m.store.Set(storage.KeyUser, string(raw)); err != nil {
		log.Printf("Failed to persist session user: %v", err)
		m.store.Remove(storage.KeyToken)
	}
	u := resp.Usuario
	m.usuario = &u
	m.token = resp.Token
}

// Logout clears storage and memory. It never calls the backend.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Remove(storage.KeyToken); err != nil {
		log.Printf("Failed to clear stored token: %v", err)
	}
	if err := m.store.Remove(storage.KeyUser); err != nil {
		log.Printf("Failed to clear stored user: %v", err)
	}
	m.usuario = nil
	m.token = ""
}

// onStorageEvent resyncs this context when another one logs in or out. Only
// the token key drives the resync; the user key is carried along.
func (m *Manager) onStorageEvent(ev storage.Event) {
	if ev.Key != storage.KeyToken {
		return
	}

	if ev.Removed {
		log.Println("Session closed in another context, closing here too")
		m.mu.Lock()
		defer m.mu.Unlock()
		m.store.Remove(storage.KeyUser)
		m.usuario = nil
		m.token = ""
		return
	}

	raw, ok := m.store.Get(storage.KeyUser)
	if !ok {
		return
	}
	var u models.Usuario
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return
	}
	log.Println("Session opened in another context, syncing")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usuario = &u
	m.token = ev.NewValue
}

// Usuario returns a copy of the current user, or nil when logged out.
func (m *Manager) Usuario() *models.Usuario {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.usuario == nil {
		return nil
	}
	u := *m.usuario
	return &u
}

// Token implements the api token source.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usuario != nil
}

func (m *Manager) IsInstructor() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usuario != nil && m.usuario.Rol == models.RolInstructor
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usuario != nil && m.usuario.Rol == models.RolAdmin
}

// TokenClaims decodes the bearer token's claims without verifying the
// signature. Display and expiry warnings only; authorization stays with the
// backend.
func (m *Manager) TokenClaims() (jwt.MapClaims, error) {
	tok := m.Token()
	if tok == "" {
		return nil, ErrNoSession
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpiresAt reports the token's exp claim. ok is false when there is
// no session, the token is opaque, or it carries no expiry.
func (m *Manager) TokenExpiresAt() (time.Time, bool) {
	claims, err := m.TokenClaims()
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aulavideo/internal/models"
	"aulavideo/internal/storage"
)

type stubAuth struct {
	resp *models.RespuestaAuth
	err  error
}

func (s *stubAuth) Login(ctx context.Context, cred models.Credenciales) (*models.RespuestaAuth, error) {
	return s.resp, s.err
}

func (s *stubAuth) Registro(ctx context.Context, reg models.Registro) (*models.RespuestaAuth, error) {
	return s.resp, s.err
}

func authOK(rol models.Rol) *stubAuth {
	return &stubAuth{resp: &models.RespuestaAuth{
		Token: mintToken(time.Now().Add(time.Hour)),
		Usuario: models.Usuario{
			ID:     7,
			Nombre: "Ana",
			Email:  "ana@upb.edu",
			Rol:    rol,
			Activo: true,
		},
	}}
}

func mintToken(exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     exp.Unix(),
	})
	signed, _ := tok.SignedString([]byte("test-secret"))
	return signed
}

func TestLogin_PersistsTokenAndUserTogether(t *testing.T) {
	store := storage.NewMemStore()
	m := New(store, authOK(models.RolInstructor))
	defer m.Close()

	err := m.Login(context.Background(), models.Credenciales{Email: "ana@upb.edu", Password: "secret"})
	require.NoError(t, err)

	tok, okT := store.Get(storage.KeyToken)
	raw, okU := store.Get(storage.KeyUser)
	assert.True(t, okT, "token must be persisted")
	assert.True(t, okU, "user must be persisted")
	assert.NotEmpty(t, tok)
	assert.Contains(t, raw, `"rol":"INSTRUCTOR"`)

	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.IsInstructor())
	assert.False(t, m.IsAdmin())
	require.NotNil(t, m.Usuario())
	assert.Equal(t, "Ana", m.Usuario().Nombre)
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	store := storage.NewMemStore()
	m := New(store, &stubAuth{err: errors.New("Credenciales inválidas")})
	defer m.Close()

	err := m.Login(context.Background(), models.Credenciales{Email: "ana@upb.edu", Password: "bad"})
	require.EqualError(t, err, "Credenciales inválidas")

	_, okT := store.Get(storage.KeyToken)
	_, okU := store.Get(storage.KeyUser)
	assert.False(t, okT, "no token may be persisted on failure")
	assert.False(t, okU, "no user may be persisted on failure")
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.Usuario())
	assert.Empty(t, m.Token())
}

// failingStore rejects writes to one key, simulating a disk failure.
type failingStore struct {
	*storage.MemStore
	failKey string
}

func (s *failingStore) Set(key, value string) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.MemStore.Set(key, value)
}

func TestLogin_UserWriteFailureRollsBackToken(t *testing.T) {
	store := &failingStore{MemStore: storage.NewMemStore(), failKey: storage.KeyUser}
	m := New(store, authOK(models.RolStudent))
	defer m.Close()

	err := m.Login(context.Background(), models.Credenciales{Email: "ana@upb.edu", Password: "secret"})
	require.NoError(t, err)

	// Both keys or neither: the half-persisted token must be rolled back.
	_, okT := store.Get(storage.KeyToken)
	_, okU := store.Get(storage.KeyUser)
	assert.False(t, okT, "token must not outlive a failed user write")
	assert.False(t, okU)

	// The backend accepted the login; this context stays usable.
	assert.True(t, m.IsAuthenticated())
	assert.NotEmpty(t, m.Token())
}

func TestRegister_SameContractAsLogin(t *testing.T) {
	store := storage.NewMemStore()
	m := New(store, authOK(models.RolStudent))
	defer m.Close()

	err := m.Register(context.Background(), models.Registro{
		Nombre: "Ana", Apellido: "Pérez", Email: "ana@upb.edu", Password: "secret", Rol: models.RolStudent,
	})
	require.NoError(t, err)
	assert.True(t, m.IsAuthenticated())
	assert.False(t, m.IsInstructor())

	failing := New(storage.NewMemStore(), &stubAuth{err: errors.New("El email ya está registrado")})
	defer failing.Close()
	err = failing.Register(context.Background(), models.Registro{Email: "ana@upb.edu"})
	require.EqualError(t, err, "El email ya está registrado")
	assert.False(t, failing.IsAuthenticated())
}

func TestLogout_ClearsStorageAndPredicates(t *testing.T) {
	store := storage.NewMemStore()
	m := New(store, authOK(models.RolAdmin))
	defer m.Close()

	require.NoError(t, m.Login(context.Background(), models.Credenciales{}))
	require.True(t, m.IsAdmin())

	m.Logout()

	_, okT := store.Get(storage.KeyToken)
	_, okU := store.Get(storage.KeyUser)
	assert.False(t, okT)
	assert.False(t, okU)
	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.IsInstructor())
	assert.False(t, m.IsAdmin())
	assert.Empty(t, m.Token())
}

func TestHydrate_FromStoredSession(t *testing.T) {
	store := storage.NewMemStore()
	store.Set(storage.KeyToken, "stored-token")
	store.Set(storage.KeyUser, `{"id":3,"nombre":"Luis","rol":"ADMIN","activo":true}`)

	m := New(store, &stubAuth{})
	defer m.Close()

	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.IsAdmin())
	assert.Equal(t, "stored-token", m.Token())
}

func TestHydrate_MalformedUserFailsOpen(t *testing.T) {
	store := storage.NewMemStore()
	store.Set(storage.KeyToken, "stored-token")
	store.Set(storage.KeyUser, `{not json`)

	m := New(store, &stubAuth{})
	defer m.Close()

	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.Usuario())
}

func TestHydrate_TokenWithoutUserIsLoggedOut(t *testing.T) {
	store := storage.NewMemStore()
	store.Set(storage.KeyToken, "orphan-token")

	m := New(store, &stubAuth{})
	defer m.Close()

	assert.False(t, m.IsAuthenticated())
}

func TestExternalTokenRemoval_ClearsSession(t *testing.T) {
	store := storage.NewMemStore()
	m := New(store, authOK(models.RolStudent))
	defer m.Close()

	require.NoError(t, m.Login(context.Background(), models.Credenciales{}))
	require.True(t, m.IsAuthenticated())

	// Another context logged out: only the storage event arrives here.
	store.EmitExternal(storage.Event{Key: storage.KeyToken, Removed: true})

	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.Usuario())
	assert.Empty(t, m.Token())
	_, okU := store.Get(storage.KeyUser)
	assert.False(t, okU, "user key follows the token out")
}

func TestExternalLogin_LoadsUser(t *testing.T) {
	store := storage.NewMemStore()
	m := New(store, &stubAuth{})
	defer m.Close()
	require.False(t, m.IsAuthenticated())

	// Another context logged in: it wrote both keys; we observe the token.
	store.Set(storage.KeyUser, `{"id":9,"nombre":"Mar","rol":"INSTRUCTOR","activo":true}`)
	store.EmitExternal(storage.Event{Key: storage.KeyToken, NewValue: "fresh-token"})

	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.IsInstructor())
	assert.Equal(t, "fresh-token", m.Token())
}

func TestExternalEvent_OtherKeysIgnored(t *testing.T) {
	store := storage.NewMemStore()
	m := New(store, authOK(models.RolStudent))
	defer m.Close()
	require.NoError(t, m.Login(context.Background(), models.Credenciales{}))

	store.EmitExternal(storage.Event{Key: "theme", NewValue: "dark"})

	assert.True(t, m.IsAuthenticated())
}

func TestTokenExpiresAt(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	store := storage.NewMemStore()
	auth := &stubAuth{resp: &models.RespuestaAuth{
		Token:   mintToken(exp),
		Usuario: models.Usuario{ID: 1, Rol: models.RolStudent},
	}}
	m := New(store, auth)
	defer m.Close()
	require.NoError(t, m.Login(context.Background(), models.Credenciales{}))

	got, ok := m.TokenExpiresAt()
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())

	claims, err := m.TokenClaims()
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims["user_id"])
}

func TestTokenExpiresAt_NoSession(t *testing.T) {
	m := New(storage.NewMemStore(), &stubAuth{})
	defer m.Close()

	_, ok := m.TokenExpiresAt()
	assert.False(t, ok)

	_, err := m.TokenClaims()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTokenExpiresAt_OpaqueToken(t *testing.T) {
	store := storage.NewMemStore()
	store.Set(storage.KeyToken, "not-a-jwt")
	store.Set(storage.KeyUser, `{"id":1,"rol":"STUDENT"}`)

	m := New(store, &stubAuth{})
	defer m.Close()

	_, ok := m.TokenExpiresAt()
	assert.False(t, ok)
}

package models

type Rol string

const (
	RolStudent    Rol = "STUDENT"
	RolInstructor Rol = "INSTRUCTOR"
	RolAdmin      Rol = "ADMIN"
)

type Usuario struct {
	ID       uint   `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Rol      Rol    `json:"rol"`
	Activo   bool   `json:"activo"`
}

type Credenciales struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registro struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Rol      Rol    `json:"rol"`
}

// RespuestaAuth is the login/registro response body: the bearer token plus
// the user fields inlined at the top level.
type RespuestaAuth struct {
	Token string `json:"token"`
	Usuario
}

// NuevoUsuario is the admin create/update payload. Password is only sent
// when non-empty (updates may leave it unchanged).
type NuevoUsuario struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Rol      Rol    `json:"rol"`
	Activo   bool   `json:"activo"`
}

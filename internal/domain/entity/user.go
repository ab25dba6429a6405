package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User es la fila de perfil propia de la aplicación (tabla users).
// El ID coincide con el de la identidad creada por el proveedor de autenticación.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      string // user, admin
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin indica si el usuario tiene rol de administrador.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

package auth

import "context"

// IdentityProvider es el servicio externo que guarda credenciales (Supabase Auth o la tabla local).
// Los IDs que devuelve son también el ID de la fila de perfil en users.
type IdentityProvider interface {
	// SignUp crea la identidad. Devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
	SignUp(ctx context.Context, email, password string) (string, error)
	// SignIn verifica credenciales. Devuelve domain.ErrInvalidCredentials si no coinciden.
	SignIn(ctx context.Context, email, password string) (string, error)
	// DeleteIdentity elimina la identidad (compensación de un registro a medias o baja de usuario).
	DeleteIdentity(ctx context.Context, id string) error
}

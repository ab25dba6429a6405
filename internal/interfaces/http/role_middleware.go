package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

// RequireRole devuelve un middleware que deja pasar solo a las sesiones con alguno de los roles.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 UNAUTHENTICATED → no hay sesión en el contexto.
//   - 403 FORBIDDEN       → el rol del usuario no está en la lista.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		session, ok := GetSession(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, CodeUnauthenticated, "autenticación requerida")
		}
		if _, ok := allowed[session.Role]; !ok {
			return writeError(c, fiber.StatusForbidden, CodeForbidden, "permisos insuficientes")
		}
		return c.Next()
	}
}

// RequireAdmin atajo de RequireRole(admin).
func RequireAdmin() fiber.Handler {
	return RequireRole(entity.RoleAdmin)
}

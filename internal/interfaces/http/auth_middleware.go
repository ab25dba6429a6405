package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/pkg/jwt"
)

// LocalSession clave de c.Locals donde AuthMiddleware deja la sesión.
const LocalSession = "session"

// Session identidad del usuario autenticado para la petición en curso.
// El rol se lee de la tabla users en cada petición, no del token.
type Session struct {
	UserID string
	Role   string
}

// UserLookup es lo único que el middleware necesita de la persistencia de usuarios.
// Lo implementa repository.UserRepository.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// AuthMiddleware valida el Bearer Token, carga la fila de perfil y deja la sesión en c.Locals.
//
// Respuestas:
//   - 401 UNAUTHENTICATED → sin header Authorization o sin token.
//   - 401 INVALID_TOKEN   → firma, expiración o formato inválidos.
//   - 401 USER_NOT_FOUND  → el sujeto no es un UUID, el usuario ya no existe o la consulta falló.
func AuthMiddleware(jwtSecret string, users UserLookup, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return writeError(c, fiber.StatusUnauthorized, CodeUnauthenticated, "token de acceso requerido")
		}
		claims, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return writeError(c, fiber.StatusUnauthorized, CodeInvalidToken, "token inválido o expirado")
		}
		// users.id es UUID: un sujeto con otro formato no puede existir y no llega a la base.
		if _, err := uuid.Parse(claims.UserID); err != nil {
			return writeError(c, fiber.StatusUnauthorized, CodeUserNotFound, "usuario no encontrado")
		}

		user, err := users.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("auth: consulta de usuario fallida")
			return writeError(c, fiber.StatusUnauthorized, CodeUserNotFound, "usuario no encontrado")
		}
		if user == nil {
			return writeError(c, fiber.StatusUnauthorized, CodeUserNotFound, "usuario no encontrado")
		}

		c.Locals(LocalSession, Session{UserID: user.ID, Role: user.Role})
		return c.Next()
	}
}

// bearerToken extrae el token de "Bearer <token>". Devuelve "" si el formato no coincide.
func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetSession devuelve la sesión de la petición (después del middleware de auth).
func GetSession(c *fiber.Ctx) (Session, bool) {
	s, ok := c.Locals(LocalSession).(Session)
	return s, ok && s.UserID != ""
}

// GetUserID devuelve el UserID de la sesión o "".
func GetUserID(c *fiber.Ctx) string {
	s, _ := GetSession(c)
	return s.UserID
}

// GetRole devuelve el rol de la sesión o "".
func GetRole(c *fiber.Ctx) string {
	s, _ := GetSession(c)
	return s.Role
}

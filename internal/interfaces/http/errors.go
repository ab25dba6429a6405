package http

import (
	"errors"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain"
)

// Códigos de error de la API.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_FAILED"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInternal           = "INTERNAL"
)

// localStack clave de c.Locals donde el middleware recover deja la traza del pánico.
const localStack = "panic_stack"

// errorMapping traduce un error de dominio a (status, código, mensaje público).
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{domain.ErrUnauthenticated, fiber.StatusUnauthorized, CodeUnauthenticated, "autenticación requerida"},
	{domain.ErrInvalidToken, fiber.StatusUnauthorized, CodeInvalidToken, "token inválido o expirado"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, CodeUserNotFound, "usuario no encontrado"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, CodeInvalidCredentials, "email o contraseña incorrectos"},
	{domain.ErrForbidden, fiber.StatusForbidden, CodeForbidden, "acceso denegado"},
	{domain.ErrNotFound, fiber.StatusNotFound, CodeNotFound, "recurso no encontrado"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, CodeEmailExists, "el email ya está registrado"},
	{domain.ErrConflict, fiber.StatusConflict, CodeConflict, "conflicto con el estado actual"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, CodeValidation, "datos inválidos"},
}

// ErrorHandler es el manejador final de Fiber: todo error devuelto por un handler termina aquí.
// Los errores de dominio conocidos se traducen a su status; el resto es 500 y se reporta a Sentry.
// Fuera de producción la respuesta incluye el error original y, tras un pánico, la traza.
func ErrorHandler(production bool, log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := mapError(err)

		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", requestID(c)).
				Msg("error no controlado")
			if hub := sentryfiber.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			} else if sentry.CurrentHub().Client() != nil {
				sentry.CaptureException(err)
			}
		}

		if !production {
			body.Error = err.Error()
			if stack, ok := c.Locals(localStack).(string); ok {
				body.Stack = stack
			}
		}
		return c.Status(status).JSON(body)
	}
}

func mapError(err error) (int, dto.ErrorResponse) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code:    CodeValidation,
			Message: "datos inválidos",
			Errors:  verr.Fields,
		}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, dto.ErrorResponse{Code: m.code, Message: m.message}
		}
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, dto.ErrorResponse{Code: fiberErrorCode(ferr.Code), Message: ferr.Message}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: CodeInternal, Message: "error interno del servidor"}
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	}
	if status >= fiber.StatusInternalServerError {
		return CodeInternal
	}
	return "BAD_REQUEST"
}

// writeError responde directamente desde un middleware, sin pasar por el ErrorHandler.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// StackTraceHandler guarda la traza del pánico para que ErrorHandler pueda exponerla.
// Se usa como recover.Config.StackTraceHandler.
func StackTraceHandler(c *fiber.Ctx, _ interface{}) {
	c.Locals(localStack, string(debug.Stack()))
}

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok {
		return v
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

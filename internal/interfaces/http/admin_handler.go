package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/application/usecase"
)

// AdminHandler administración de usuarios (solo rol admin).
type AdminHandler struct {
	uc        *usecase.UserUseCase
	validator *Validator
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *usecase.UserUseCase, validator *Validator) *AdminHandler {
	return &AdminHandler{uc: uc, validator: validator}
}

// ListUsers godoc
// @Summary      Listar usuarios
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.UserListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.ListUsers(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateRole godoc
// @Summary      Cambiar el rol de un usuario
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateRoleRequest  true  "user o admin"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/role [patch]
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	var in dto.UpdateRoleRequest
	if err := h.validator.Bind(c, SchemaRole, &in); err != nil {
		return err
	}
	out, err := h.uc.SetRole(c.UserContext(), GetUserID(c), c.Params("id"), in.Role)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteUser godoc
// @Summary      Eliminar un usuario y todos sus datos
// @Tags         admin
// @Security     Bearer
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.uc.DeleteUser(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

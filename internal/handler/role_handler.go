package handler

import (
	"go-kiosk-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

type RoleLister interface {
	FindAll() ([]model.Role, error)
}

type RoleHandler struct {
	roleRepo RoleLister
}

func NewRoleHandler(roleRepo RoleLister) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo}
}

// GetRoles returns the seeded roles with their capabilities. Read only.
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll()
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(roles)
}

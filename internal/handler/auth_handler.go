package handler

import (
	"go-kiosk-pos/internal/service"
	"go-kiosk-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	PIN string `json:"pin"`
}

// Login exchanges a staff PIN for a capability token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	response, err := h.authService.Login(c.UserContext(), req.PIN)
	if err != nil {
		return fail(c, err, nil)
	}

	return c.JSON(response)
}

// Me echoes the token payload.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*jwt.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "UNAUTHORIZED"})
	}
	return c.JSON(fiber.Map{"user": claims})
}

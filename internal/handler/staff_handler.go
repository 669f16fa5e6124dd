package handler

import (
	"go-kiosk-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StaffHandler struct {
	staff service.StaffService
}

func NewStaffHandler(staff service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

type ResetPINRequest struct {
	PIN string `json:"pin"`
}

// GetStaff lists every staff member, newest first.
// GET /api/v1/staff
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	staff, err := h.staff.ListStaff(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(staff)
}

// CreateStaff handles staff creation
// POST /api/v1/staff
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req service.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	staff, err := h.staff.CreateStaff(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": staff.ID, "data": staff.ToResponse()})
}

// UpdateStaff handles a partial staff update. Root cannot be edited here.
// PATCH /api/v1/staff/:id
func (h *StaffHandler) UpdateStaff(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return fail(c, service.ErrStaffNotFound, nil)
	}
	var req service.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	staff, err := h.staff.UpdateStaff(c.UserContext(), actorFrom(c), id, req)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(fiber.Map{"ok": true, "data": staff.ToResponse()})
}

// POST /api/v1/staff/:id/reset-pin
func (h *StaffHandler) ResetPIN(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return fail(c, service.ErrStaffNotFound, nil)
	}
	var req ResetPINRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, service.ErrInvalidPINFormat, nil)
	}
	if err := h.staff.ResetPIN(c.UserContext(), actorFrom(c), id, req.PIN); err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// UpdatePreferences saves the caller's own language and theme.
// PATCH /api/v1/staff/me/preferences
func (h *StaffHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req service.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	prefs, err := h.staff.UpdatePreferences(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(fiber.Map{"ok": true, "ui_language": prefs.UILanguage, "ui_theme": prefs.UITheme})
}

package handler

import (
	"go-kiosk-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	sales service.SalesService
	audit service.AuditRecorder
}

func NewDashboardHandler(sales service.SalesService, audit service.AuditRecorder) *DashboardHandler {
	return &DashboardHandler{sales: sales, audit: audit}
}

// Today returns today's paid and partial totals plus low-stock items.
// GET /api/v1/dashboard/today
func (h *DashboardHandler) Today(c *fiber.Ctx) error {
	stats, err := h.sales.Dashboard(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(stats)
}

// AuditLog returns the latest audit entries.
// GET /api/v1/audit?limit=200
func (h *DashboardHandler) AuditLog(c *fiber.Ctx) error {
	logs, err := h.audit.List(c.UserContext(), c.QueryInt("limit", 200))
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(logs)
}

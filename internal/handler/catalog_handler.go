package handler

import (
	"strconv"

	"go-kiosk-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalog service.CatalogService
	ledger  service.StockLedger
}

func NewCatalogHandler(catalog service.CatalogService, ledger service.StockLedger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, ledger: ledger}
}

type AdjustStockRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

// GET /api/v1/catalog/items?active=true
func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.catalog.ListItems(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(items)
}

// POST /api/v1/catalog/items
func (h *CatalogHandler) CreateItem(c *fiber.Ctx) error {
	var in service.ItemInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.catalog.CreateItem(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": item.ID, "data": item})
}

// PATCH /api/v1/catalog/items/:id
func (h *CatalogHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return fail(c, service.ErrItemNotFound, nil)
	}
	var in service.ItemInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.catalog.UpdateItem(c.UserContext(), actorFrom(c), id, in)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(fiber.Map{"ok": true, "data": item})
}

// POST /api/v1/catalog/items/:id/adjust-stock
func (h *CatalogHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return fail(c, service.ErrItemNotFound, nil)
	}
	var req AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, service.ErrDeltaInvalid, nil)
	}
	item, err := h.ledger.RecordManualAdjustment(c.UserContext(), actorFrom(c), id, req.Delta, req.Reason)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(fiber.Map{"ok": true, "stock_qty": item.StockQty})
}

// GET /api/v1/catalog/items/:id/movements?limit=50
func (h *CatalogHandler) Movements(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return fail(c, service.ErrItemNotFound, nil)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	moves, err := h.ledger.History(c.UserContext(), id, limit)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(moves)
}

// GET /api/v1/inventory/reconciliation
func (h *CatalogHandler) Reconciliation(c *fiber.Ctx) error {
	rows, err := h.ledger.Reconcile(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(fiber.Map{
		"balanced":   len(rows) == 0,
		"mismatches": rows,
	})
}

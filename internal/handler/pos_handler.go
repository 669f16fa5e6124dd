package handler

import (
	"go-kiosk-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type POSHandler struct {
	checkout service.CheckoutService
	sales    service.SalesService
	receipts service.ReceiptService
}

func NewPOSHandler(checkout service.CheckoutService, sales service.SalesService, receipts service.ReceiptService) *POSHandler {
	return &POSHandler{checkout: checkout, sales: sales, receipts: receipts}
}

// Checkout converts the posted cart into a sale.
// POST /api/v1/pos/checkout
func (h *POSHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	res, err := h.checkout.Checkout(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return fail(c, err, service.ErrCheckoutFailed)
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"sale_id":    res.SaleID,
		"sale_no":    res.SaleNo,
		"receipt_no": res.ReceiptNo,
		"status":     res.Status,
		"receipt":    res.Receipt,
	})
}

// GET /api/v1/pos/sales/today
func (h *POSHandler) SalesToday(c *fiber.Ctx) error {
	sales, err := h.sales.Today(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(sales)
}

// GET /api/v1/pos/sales/:id
func (h *POSHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return fail(c, service.ErrSaleNotFound, nil)
	}
	sale, err := h.sales.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(sale)
}

// GetReceipt returns the stored receipt exactly as written at checkout.
// GET /api/v1/pos/receipts/:receipt_no
func (h *POSHandler) GetReceipt(c *fiber.Ctx) error {
	payload, err := h.receipts.GetByNumber(c.UserContext(), c.Params("receipt_no"))
	if err != nil {
		return fail(c, err, nil)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubCheckout struct {
	res     *service.CheckoutResult
	err     error
	gotReq  service.CheckoutRequest
	gotUser service.Actor
}

func (s *stubCheckout) Checkout(_ context.Context, actor service.Actor, req service.CheckoutRequest) (*service.CheckoutResult, error) {
	s.gotReq = req
	s.gotUser = actor
	return s.res, s.err
}

type stubReceipts struct {
	byNo map[string][]byte
}

func (s *stubReceipts) GetByNumber(_ context.Context, receiptNo string) ([]byte, error) {
	if b, ok := s.byNo[receiptNo]; ok {
		return b, nil
	}
	return nil, service.ErrReceiptNotFound
}

type stubSales struct {
	sales map[uuid.UUID]*model.Sale
}

func (s *stubSales) Today(context.Context) ([]model.Sale, error) { return []model.Sale{}, nil }

func (s *stubSales) Get(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	if sale, ok := s.sales[id]; ok {
		return sale, nil
	}
	return nil, service.ErrSaleNotFound
}

func (s *stubSales) Dashboard(context.Context) (*service.DashboardToday, error) {
	return &service.DashboardToday{LowStock: []model.CatalogItem{}}, nil
}

type stubLedger struct {
	stock map[uuid.UUID]int64
}

func (l *stubLedger) RecordSaleConsumption(context.Context, *gorm.DB, uuid.UUID, int64, uuid.UUID, uuid.UUID) error {
	return nil
}

func (l *stubLedger) RecordCatalogCorrection(context.Context, *gorm.DB, uuid.UUID, int64, string, uuid.UUID) error {
	return nil
}

func (l *stubLedger) RecordManualAdjustment(_ context.Context, _ service.Actor, id uuid.UUID, delta int64, _ string) (*model.CatalogItem, error) {
	if delta == 0 {
		return nil, service.ErrDeltaInvalid
	}
	qty, ok := l.stock[id]
	if !ok {
		return nil, service.ErrItemNotFound
	}
	if qty+delta < 0 {
		return nil, service.ErrOutOfStock
	}
	l.stock[id] = qty + delta
	item := &model.CatalogItem{StockQty: qty + delta}
	item.ID = id
	return item, nil
}

func (l *stubLedger) Reconcile(context.Context) ([]model.StockMismatch, error) {
	return nil, nil
}

func (l *stubLedger) History(_ context.Context, id uuid.UUID, _ int) ([]model.InventoryMovement, error) {
	if _, ok := l.stock[id]; !ok {
		return nil, service.ErrItemNotFound
	}
	return []model.InventoryMovement{}, nil
}

func withStaff(id uuid.UUID, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("staff_id", id.String())
		c.Locals("staff_name", name)
		return c.Next()
	}
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m))
	code, _ := m["error"].(string)
	return code
}

var staffID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func posApp(checkout *stubCheckout, sales *stubSales, receipts *stubReceipts) *fiber.App {
	h := NewPOSHandler(checkout, sales, receipts)
	app := fiber.New()
	app.Use(withStaff(staffID, "Awa"))
	app.Post("/checkout", h.Checkout)
	app.Get("/sales/:id", h.GetSale)
	app.Get("/receipts/:receipt_no", h.GetReceipt)
	return app
}

func TestPOSHandler_Checkout(t *testing.T) {
	saleID := uuid.New()
	receipt := json.RawMessage(`{"receipt_no":"R-2026-000002","totals":{"total":5000}}`)
	checkout := &stubCheckout{res: &service.CheckoutResult{
		SaleID: saleID, SaleNo: "ADK-2026-000001", ReceiptNo: "R-2026-000002", Status: model.SalePaid, Receipt: receipt,
	}}
	app := posApp(checkout, &stubSales{}, &stubReceipts{})

	status, body := do(t, app, "POST", "/checkout", map[string]interface{}{
		"items":    []map[string]interface{}{{"item_id": uuid.NewString(), "qty": 2}},
		"payments": []map[string]interface{}{{"method": "CASH", "amount": 5000}},
		"language": "en",
	})
	require.Equal(t, fiber.StatusOK, status)

	var got struct {
		OK        bool            `json:"ok"`
		SaleID    uuid.UUID       `json:"sale_id"`
		SaleNo    string          `json:"sale_no"`
		ReceiptNo string          `json:"receipt_no"`
		Status    string          `json:"status"`
		Receipt   json.RawMessage `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.OK)
	assert.Equal(t, saleID, got.SaleID)
	assert.Equal(t, "PAID", got.Status)
	assert.JSONEq(t, string(receipt), string(got.Receipt))

	assert.Equal(t, staffID, checkout.gotUser.ID)
	assert.Equal(t, "Awa", checkout.gotUser.Name)
	require.Len(t, checkout.gotReq.Items, 1)
	assert.Equal(t, int64(2), checkout.gotReq.Items[0].Qty)
	assert.Equal(t, "en", checkout.gotReq.Language)
}

func TestPOSHandler_CheckoutErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty cart", service.ErrEmptyCart, 400, "EMPTY_CART"},
		{"bad qty", service.ErrInvalidQuantity, 400, "QTY_INVALID"},
		{"unknown item", fmt.Errorf("%w: x", service.ErrItemNotFound), 404, "ITEM_NOT_FOUND"},
		{"inactive", service.ErrItemInactive, 409, "ITEM_INACTIVE"},
		{"out of stock", fmt.Errorf("%w: x", service.ErrOutOfStock), 409, "OUT_OF_STOCK"},
		{"timeout", fmt.Errorf("%w: deadline", service.ErrCheckoutTimeout), 503, "CHECKOUT_TIMEOUT"},
		{"failed", fmt.Errorf("%w: boom", service.ErrCheckoutFailed), 500, "CHECKOUT_FAILED"},
		{"unexpected", errors.New("boom"), 500, "CHECKOUT_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := posApp(&stubCheckout{err: tt.err}, &stubSales{}, &stubReceipts{})
			status, body := do(t, app, "POST", "/checkout", map[string]interface{}{"items": []interface{}{}})
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, errorOf(t, body))
		})
	}
}

func TestPOSHandler_CheckoutBadBody(t *testing.T) {
	app := posApp(&stubCheckout{}, &stubSales{}, &stubReceipts{})
	status, body := do(t, app, "POST", "/checkout", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", errorOf(t, body))
}

// cartRules rejects carts the way the checkout service does before touching storage.
type cartRules struct {
	gotReq service.CheckoutRequest
}

func (s *cartRules) Checkout(_ context.Context, _ service.Actor, req service.CheckoutRequest) (*service.CheckoutResult, error) {
	s.gotReq = req
	if len(req.Items) == 0 {
		return nil, service.ErrEmptyCart
	}
	for _, l := range req.Items {
		if l.Qty <= 0 || l.Qty > service.MaxLineQty {
			return nil, service.ErrInvalidQuantity
		}
	}
	return nil, service.ErrItemNotFound
}

func TestPOSHandler_CheckoutMalformedCart(t *testing.T) {
	itemID := uuid.NewString()
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"fractional qty", `{"items":[{"item_id":"` + itemID + `","qty":1.5}]}`, "QTY_INVALID"},
		{"string qty", `{"items":[{"item_id":"` + itemID + `","qty":"2"}]}`, "QTY_INVALID"},
		{"items is an object", `{"items":{}}`, "EMPTY_CART"},
		{"items is null", `{"items":null}`, "EMPTY_CART"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkout := &cartRules{}
			h := NewPOSHandler(checkout, &stubSales{}, &stubReceipts{})
			app := fiber.New()
			app.Use(withStaff(staffID, "Awa"))
			app.Post("/checkout", h.Checkout)

			status, body := do(t, app, "POST", "/checkout", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tt.wantCode, errorOf(t, body))
			if tt.wantCode == "QTY_INVALID" {
				require.Len(t, checkout.gotReq.Items, 1)
				assert.Equal(t, itemID, checkout.gotReq.Items[0].ItemID)
				assert.Zero(t, checkout.gotReq.Items[0].Qty)
			}
		})
	}
}

func TestPOSHandler_GetReceiptReturnsStoredBytes(t *testing.T) {
	stored := []byte(`{"brand":"ALLIANCE DigiKiosk","receipt_no":"R-2026-000007","items":[]}`)
	app := posApp(&stubCheckout{}, &stubSales{}, &stubReceipts{byNo: map[string][]byte{"R-2026-000007": stored}})

	status, body := do(t, app, "GET", "/receipts/R-2026-000007", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, stored, body)

	status, body = do(t, app, "GET", "/receipts/R-2026-000008", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "RECEIPT_NOT_FOUND", errorOf(t, body))
}

func TestPOSHandler_GetSale(t *testing.T) {
	sale := &model.Sale{ID: uuid.New(), SaleNo: "ADK-2026-000003", Status: model.SalePartial}
	app := posApp(&stubCheckout{}, &stubSales{sales: map[uuid.UUID]*model.Sale{sale.ID: sale}}, &stubReceipts{})

	status, body := do(t, app, "GET", "/sales/"+sale.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "ADK-2026-000003")

	status, body = do(t, app, "GET", "/sales/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "SALE_NOT_FOUND", errorOf(t, body))
}

func TestCatalogHandler_AdjustStock(t *testing.T) {
	itemID := uuid.New()
	ledger := &stubLedger{stock: map[uuid.UUID]int64{itemID: 4}}
	h := NewCatalogHandler(nil, ledger)
	app := fiber.New()
	app.Use(withStaff(staffID, "Awa"))
	app.Post("/items/:id/adjust-stock", h.AdjustStock)
	app.Get("/items/:id/movements", h.Movements)
	app.Get("/reconciliation", h.Reconciliation)

	status, body := do(t, app, "POST", "/items/"+itemID.String()+"/adjust-stock", map[string]interface{}{"delta": 3, "reason": "delivery"})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"ok":true,"stock_qty":7}`, string(body))

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"zero delta", "/items/" + itemID.String() + "/adjust-stock", map[string]interface{}{"delta": 0}, 400, "DELTA_INVALID"},
		{"bad body", "/items/" + itemID.String() + "/adjust-stock", `{"delta":"lots"}`, 400, "DELTA_INVALID"},
		{"below zero", "/items/" + itemID.String() + "/adjust-stock", map[string]interface{}{"delta": -50}, 409, "OUT_OF_STOCK"},
		{"unknown item", "/items/" + uuid.NewString() + "/adjust-stock", map[string]interface{}{"delta": 1}, 404, "ITEM_NOT_FOUND"},
		{"malformed id", "/items/abc/adjust-stock", map[string]interface{}{"delta": 1}, 404, "ITEM_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, "POST", tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, errorOf(t, body))
		})
	}

	status, body = do(t, app, "GET", "/reconciliation", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"balanced":true,"mismatches":null}`, string(body))

	status, _ = do(t, app, "GET", "/items/"+uuid.NewString()+"/movements", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

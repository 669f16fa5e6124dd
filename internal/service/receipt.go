package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-kiosk-pos/internal/metrics"
	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptItem struct {
	ItemID             uuid.UUID `json:"item_id"`
	ItemNameSnapshot   string    `json:"item_name_snapshot"`
	UnitPriceAmount    int64     `json:"unit_price_amount"`
	Qty                int64     `json:"qty"`
	LineTotalAmount    int64     `json:"line_total_amount"`
	TrackStockSnapshot bool      `json:"track_stock_snapshot"`
}

type ReceiptTotals struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	Total          int64 `json:"total"`
	Paid           int64 `json:"paid"`
	ChangeAmount   int64 `json:"change_amount"`
}

type ReceiptPayment struct {
	Method    model.PaymentMethod `json:"method"`
	Provider  *string             `json:"provider"`
	Reference *string             `json:"reference"`
	Amount    int64               `json:"amount"`
}

// ReceiptPayload is frozen at checkout; later catalog edits never reach it.
type ReceiptPayload struct {
	Brand        string           `json:"brand"`
	SaleNo       string           `json:"sale_no"`
	ReceiptNo    string           `json:"receipt_no"`
	Language     string           `json:"language"`
	CreatedAt    time.Time        `json:"created_at"`
	Cashier      string           `json:"cashier"`
	Items        []ReceiptItem    `json:"items"`
	Totals       ReceiptTotals    `json:"totals"`
	Payments     []ReceiptPayment `json:"payments"`
	CustomerName *string          `json:"customer_name"`
	Notes        *string          `json:"notes"`
}

// BuildReceipt derives the receipt snapshot from a sale and its lines.
func BuildReceipt(sale *model.Sale, items []model.SaleItem, payments []model.SalePayment, receiptNo, cashier, brand string, at time.Time) ReceiptPayload {
	p := ReceiptPayload{
		Brand:     brand,
		SaleNo:    sale.SaleNo,
		ReceiptNo: receiptNo,
		Language:  sale.Language,
		CreatedAt: at.UTC(),
		Cashier:   cashier,
		Items:     make([]ReceiptItem, 0, len(items)),
		Totals: ReceiptTotals{
			Subtotal:       sale.SubtotalAmount,
			DiscountAmount: sale.DiscountAmount,
			TaxAmount:      sale.TaxAmount,
			Total:          sale.TotalAmount,
			Paid:           sale.PaidAmount,
			ChangeAmount:   sale.ChangeAmount,
		},
		Payments:     make([]ReceiptPayment, 0, len(payments)),
		CustomerName: sale.CustomerName,
		Notes:        sale.Notes,
	}
	for _, it := range items {
		p.Items = append(p.Items, ReceiptItem{
			ItemID:             it.ItemID,
			ItemNameSnapshot:   it.ItemNameSnapshot,
			UnitPriceAmount:    it.UnitPriceAmount,
			Qty:                it.Qty,
			LineTotalAmount:    it.LineTotalAmount,
			TrackStockSnapshot: it.TrackStockSnapshot,
		})
	}
	for _, pay := range payments {
		p.Payments = append(p.Payments, ReceiptPayment{
			Method:    pay.Method,
			Provider:  pay.Provider,
			Reference: pay.Reference,
			Amount:    pay.Amount,
		})
	}
	return p
}

// ReceiptCache is a read-through cache of stored receipt bytes.
type ReceiptCache interface {
	Get(ctx context.Context, receiptNo string) ([]byte, bool)
	Set(ctx context.Context, receiptNo string, payload []byte)
}

type ReceiptService interface {
	GetByNumber(ctx context.Context, receiptNo string) ([]byte, error)
}

type receiptService struct {
	repo  repository.ReceiptRepository
	cache ReceiptCache
}

// NewReceiptService builds the receipt reader. cache may be nil.
func NewReceiptService(repo repository.ReceiptRepository, cache ReceiptCache) ReceiptService {
	return &receiptService{repo: repo, cache: cache}
}

// GetByNumber returns the payload bytes exactly as stored at checkout.
// Receipts are immutable, so cached entries are never invalidated.
func (s *receiptService) GetByNumber(ctx context.Context, receiptNo string) ([]byte, error) {
	if s.cache != nil {
		if b, ok := s.cache.Get(ctx, receiptNo); ok {
			metrics.ReceiptCache.WithLabelValues("hit").Inc()
			return b, nil
		}
		metrics.ReceiptCache.WithLabelValues("miss").Inc()
	}

	r, err := s.repo.FindByNumber(ctx, receiptNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		logger.Error(ctx).Err(err).Str("receipt_no", receiptNo).Msg("receipt lookup failed")
		return nil, err
	}

	payload := []byte(r.Payload)
	if s.cache != nil {
		s.cache.Set(ctx, receiptNo, payload)
	}
	return payload, nil
}

func marshalReceipt(p ReceiptPayload) ([]byte, error) {
	return json.Marshal(p)
}

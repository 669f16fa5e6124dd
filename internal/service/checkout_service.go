package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-kiosk-pos/internal/events"
	"go-kiosk-pos/internal/metrics"
	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultCheckoutTimeout = 10 * time.Second
	defaultNumberAttempts  = 5
	eventPublishTimeout    = 5 * time.Second

	// MaxLineQty caps a single cart line.
	MaxLineQty = 1_000_000
)

type CheckoutLine struct {
	ItemID string `json:"item_id"`
	Qty    int64  `json:"qty"`
}

type PaymentInput struct {
	Method    string  `json:"method"`
	Provider  *string `json:"provider" validate:"omitempty,max=100"`
	Reference *string `json:"reference" validate:"omitempty,max=100"`
	Amount    int64   `json:"amount" validate:"max=1000000000000"`
}

type CheckoutRequest struct {
	Items        []CheckoutLine `json:"items"`
	Payments     []PaymentInput `json:"payments" validate:"dive"`
	CustomerName *string        `json:"customer_name" validate:"omitempty,max=255"`
	Notes        *string        `json:"notes" validate:"omitempty,max=2000"`
	Language     string         `json:"language"`
}

// UnmarshalJSON keeps a malformed line instead of failing the whole body:
// a qty that is not a JSON integer decodes as 0 and item_id that is not a
// string decodes as "", so the cart checks report QTY_INVALID or
// ITEM_NOT_FOUND.
func (l *CheckoutLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID json.RawMessage `json:"item_id"`
		Qty    json.RawMessage `json:"qty"`
	}
	*l = CheckoutLine{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var id string
	if json.Unmarshal(raw.ItemID, &id) == nil {
		l.ItemID = id
	}
	if qty, err := strconv.ParseInt(string(bytes.TrimSpace(raw.Qty)), 10, 64); err == nil {
		l.Qty = qty
	}
	return nil
}

type checkoutRequestFields CheckoutRequest

// UnmarshalJSON treats an items value that is not an array as an empty cart.
func (r *CheckoutRequest) UnmarshalJSON(data []byte) error {
	var body struct {
		checkoutRequestFields
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	*r = CheckoutRequest(body.checkoutRequestFields)
	r.Items = nil
	if items := bytes.TrimSpace(body.Items); len(items) > 0 && items[0] == '[' {
		return json.Unmarshal(items, &r.Items)
	}
	return nil
}

type CheckoutResult struct {
	SaleID    uuid.UUID        `json:"sale_id"`
	SaleNo    string           `json:"sale_no"`
	ReceiptNo string           `json:"receipt_no"`
	Status    model.SaleStatus `json:"status"`
	Receipt   json.RawMessage  `json:"receipt"`
}

type CheckoutConfig struct {
	Brand    string
	Timeout  time.Duration
	Attempts int
}

// CheckoutService turns a cart into a committed sale.
type CheckoutService interface {
	Checkout(ctx context.Context, actor Actor, req CheckoutRequest) (*CheckoutResult, error)
}

type checkoutService struct {
	db        *gorm.DB
	catalog   repository.CatalogRepository
	sales     repository.SaleRepository
	receipts  repository.ReceiptRepository
	ledger    StockLedger
	audit     AuditRecorder
	hub       Broadcaster
	publisher events.Publisher
	pricing   PricingRules

	brand    string
	timeout  time.Duration
	attempts int

	now     func() time.Time
	numbers func(prefix string, year int) string
}

func NewCheckoutService(
	db *gorm.DB,
	catalog repository.CatalogRepository,
	sales repository.SaleRepository,
	receipts repository.ReceiptRepository,
	ledger StockLedger,
	audit AuditRecorder,
	hub Broadcaster,
	publisher events.Publisher,
	pricing PricingRules,
	cfg CheckoutConfig,
) CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if pricing == nil {
		pricing = NoPricing{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCheckoutTimeout
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultNumberAttempts
	}
	return &checkoutService{
		db:        db,
		catalog:   catalog,
		sales:     sales,
		receipts:  receipts,
		ledger:    ledger,
		audit:     audit,
		hub:       hub,
		publisher: publisher,
		pricing:   pricing,
		brand:     cfg.Brand,
		timeout:   cfg.Timeout,
		attempts:  cfg.Attempts,
		now:       time.Now,
		numbers:   randomNumber,
	}
}

// randomNumber returns PREFIX-YEAR-NNNNNN. Uniqueness is enforced by the
// database; collisions are retried by the caller.
func randomNumber(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, rand.Intn(1000000))
}

type cartLine struct {
	itemID uuid.UUID
	qty    int64
}

type committedSale struct {
	result *CheckoutResult
	sale   *model.Sale
	items  []model.SaleItem
	levels []StockLevel
}

func (s *checkoutService) Checkout(ctx context.Context, actor Actor, req CheckoutRequest) (*CheckoutResult, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "pos.checkout")
	defer span.End()
	span.SetAttributes(attribute.Int("cart.lines", len(req.Items)))

	out, err := s.checkout(ctx, actor, req)
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		code := ErrorCode(err)
		metrics.CheckoutTotal.WithLabelValues(code).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		return nil, err
	}

	metrics.CheckoutTotal.WithLabelValues("OK").Inc()
	if out.sale.TotalAmount > 0 {
		metrics.SaleAmount.WithLabelValues(string(out.sale.Status)).Add(float64(out.sale.TotalAmount))
	}
	span.SetAttributes(attribute.String("sale.no", out.sale.SaleNo))

	s.afterCommit(ctx, actor, out)
	return out.result, nil
}

func (s *checkoutService) checkout(ctx context.Context, actor Actor, req CheckoutRequest) (*committedSale, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	lines, err := parseLines(req.Items)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&actor); err != nil {
		return nil, err
	}

	payments, dropped := filterPayments(req.Payments)
	if dropped > 0 {
		logger.Warn(ctx).
			Int("dropped_payments", dropped).
			Str("actor", actor.Name).
			Msg("ignored payment entries with invalid amount or method")
	}
	// only the entries that will be stored are validated
	req.Payments = payments
	if err := validateInput(&req); err != nil {
		return nil, err
	}

	lang := normalizeLanguage(req.Language)
	customer := trimmedOrNil(req.CustomerName)
	notes := trimmedOrNil(req.Notes)

	// Detached from the request: a client that hangs up must not abort a commit.
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		out, err := s.persist(txCtx, actor, lines, payments, lang, customer, notes)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < s.attempts && txCtx.Err() == nil {
			logger.Warn(ctx).Int("attempt", attempt).Msg("sale or receipt number taken, retrying checkout")
			continue
		}
		return nil, s.classify(ctx, txCtx, err)
	}
}

func (s *checkoutService) classify(ctx, txCtx context.Context, err error) error {
	for _, domain := range []error{ErrItemNotFound, ErrItemInactive, ErrInvalidQuantity, ErrOutOfStock, ErrValidation} {
		if errors.Is(err, domain) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(txCtx.Err(), context.DeadlineExceeded) {
		logger.Error(ctx).Err(err).Dur("timeout", s.timeout).Msg("checkout timed out")
		return fmt.Errorf("%w: %v", ErrCheckoutTimeout, err)
	}
	logger.Error(ctx).Err(err).Msg("checkout failed")
	return fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
}

func (s *checkoutService) persist(
	ctx context.Context,
	actor Actor,
	lines []cartLine,
	payments []PaymentInput,
	lang string,
	customer, notes *string,
) (*committedSale, error) {
	var out *committedSale

	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		requested := make(map[uuid.UUID]int64, len(lines))
		for _, l := range lines {
			requested[l.itemID] += l.qty
		}
		ids := make([]uuid.UUID, 0, len(requested))
		for id := range requested {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		locked, err := s.catalog.LockByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]model.CatalogItem, len(locked))
		for _, it := range locked {
			byID[it.ID] = it
		}

		for _, l := range lines {
			item, ok := byID[l.itemID]
			if !ok {
				return fmt.Errorf("%w: %s", ErrItemNotFound, l.itemID)
			}
			if !item.IsActive {
				return fmt.Errorf("%w: %s", ErrItemInactive, l.itemID)
			}
			if item.IsStockTracked() && requested[l.itemID] > item.StockQty {
				return fmt.Errorf("%w: %s", ErrOutOfStock, l.itemID)
			}
		}

		now := s.now()
		saleItems := make([]model.SaleItem, 0, len(lines))
		priced := make([]PricedLine, 0, len(lines))
		var subtotal int64
		for _, l := range lines {
			item := byID[l.itemID]
			if item.PriceAmount > math.MaxInt64/l.qty {
				return fmt.Errorf("%w: line total overflows for %s", ErrInvalidQuantity, l.itemID)
			}
			lineTotal := item.PriceAmount * l.qty
			if subtotal > math.MaxInt64-lineTotal {
				return fmt.Errorf("%w: cart subtotal overflows", ErrInvalidQuantity)
			}
			subtotal += lineTotal
			saleItems = append(saleItems, model.SaleItem{
				ItemID:             item.ID,
				ItemNameSnapshot:   item.Name,
				UnitPriceAmount:    item.PriceAmount,
				Qty:                l.qty,
				LineTotalAmount:    lineTotal,
				TrackStockSnapshot: item.IsStockTracked(),
			})
			priced = append(priced, PricedLine{Item: item, Qty: l.qty, LineTotal: lineTotal})
		}

		adj := s.pricing.Apply(priced, subtotal)
		if adj.Discount < 0 || adj.Tax < 0 || adj.Discount > subtotal || adj.Tax > math.MaxInt64-(subtotal-adj.Discount) {
			return fmt.Errorf("%w: pricing adjustments out of range", ErrValidation)
		}
		total := subtotal - adj.Discount + adj.Tax

		salePayments := make([]model.SalePayment, 0, len(payments))
		var paid int64
		for _, p := range payments {
			if paid > math.MaxInt64-p.Amount {
				return fmt.Errorf("%w: payments total overflows", ErrValidation)
			}
			paid += p.Amount
			salePayments = append(salePayments, model.SalePayment{
				Method:       model.PaymentMethod(strings.TrimSpace(p.Method)),
				Provider:     trimmedOrNil(p.Provider),
				Reference:    trimmedOrNil(p.Reference),
				Amount:       p.Amount,
				ReceivedByID: actor.ID,
				CreatedAt:    now,
			})
		}

		sale := &model.Sale{
			ID:             uuid.New(),
			SaleNo:         s.numbers("ADK", now.Year()),
			Status:         SaleStatusFor(paid, total),
			SubtotalAmount: subtotal,
			DiscountAmount: adj.Discount,
			TaxAmount:      adj.Tax,
			TotalAmount:    total,
			PaidAmount:     paid,
			ChangeAmount:   ChangeDue(paid, total, salePayments),
			CustomerName:   customer,
			Notes:          notes,
			Language:       lang,
			CreatedByID:    actor.ID,
			CreatedAt:      now,
		}
		if err := s.sales.Create(ctx, tx, sale); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		for i := range saleItems {
			saleItems[i].SaleID = sale.ID
			if err := s.sales.CreateItem(ctx, tx, &saleItems[i]); err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}
			if saleItems[i].TrackStockSnapshot {
				if err := s.ledger.RecordSaleConsumption(ctx, tx, saleItems[i].ItemID, saleItems[i].Qty, sale.ID, actor.ID); err != nil {
					return err
				}
			}
		}

		for i := range salePayments {
			salePayments[i].SaleID = sale.ID
		}
		if err := s.sales.CreatePayments(ctx, tx, salePayments); err != nil {
			return fmt.Errorf("insert payments: %w", err)
		}

		receiptNo := s.numbers("R", now.Year())
		body, err := marshalReceipt(BuildReceipt(sale, saleItems, salePayments, receiptNo, actor.Name, s.brand, now))
		if err != nil {
			return fmt.Errorf("encode receipt: %w", err)
		}
		if err := s.receipts.Create(ctx, tx, &model.Receipt{
			SaleID:    sale.ID,
			ReceiptNo: receiptNo,
			Payload:   datatypes.JSON(body),
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("insert receipt: %w", err)
		}

		var levels []StockLevel
		for _, id := range ids {
			if item := byID[id]; item.IsStockTracked() {
				levels = append(levels, StockLevel{ItemID: id, Name: item.Name, StockQty: item.StockQty - requested[id]})
			}
		}

		sale.Items = saleItems
		sale.Payments = salePayments
		out = &committedSale{
			result: &CheckoutResult{
				SaleID:    sale.ID,
				SaleNo:    sale.SaleNo,
				ReceiptNo: receiptNo,
				Status:    sale.Status,
				Receipt:   json.RawMessage(body),
			},
			sale:   sale,
			items:  saleItems,
			levels: levels,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// afterCommit runs the side effects that must only follow a committed sale.
func (s *checkoutService) afterCommit(ctx context.Context, actor Actor, out *committedSale) {
	sale := out.sale
	s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionCheckoutSale,
		EntityType: model.EntitySale,
		EntityID:   &sale.ID,
		Metadata: map[string]interface{}{
			"sale_no":      sale.SaleNo,
			"total_amount": sale.TotalAmount,
			"paid_amount":  sale.PaidAmount,
			"status":       string(sale.Status),
		},
	})

	broadcastStock(ctx, s.hub, "sale_completed", actor, out.levels)

	event := events.SaleCompletedEvent{
		SaleID:      sale.ID,
		SaleNo:      sale.SaleNo,
		ReceiptNo:   out.result.ReceiptNo,
		Status:      string(sale.Status),
		TotalAmount: sale.TotalAmount,
		PaidAmount:  sale.PaidAmount,
		CashierID:   actor.ID,
		Timestamp:   sale.CreatedAt.UTC(),
	}
	for _, it := range out.items {
		event.Lines = append(event.Lines, events.SaleLine{
			ItemID:    it.ItemID,
			Name:      it.ItemNameSnapshot,
			Qty:       it.Qty,
			UnitPrice: it.UnitPriceAmount,
			LineTotal: it.LineTotalAmount,
		})
	}
	pubCtx := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(pubCtx, eventPublishTimeout)
		defer cancel()
		if err := s.publisher.PublishSaleCompleted(pubCtx, event); err != nil {
			logger.Warn(pubCtx).Err(err).Str("sale_no", event.SaleNo).Msg("sale.completed not published")
		}
	}()

	logger.Info(ctx).
		Str("sale_no", sale.SaleNo).
		Str("status", string(sale.Status)).
		Int64("total", sale.TotalAmount).
		Int64("paid", sale.PaidAmount).
		Str("cashier", actor.Name).
		Msg("checkout committed")
}

func parseLines(in []CheckoutLine) ([]cartLine, error) {
	lines := make([]cartLine, 0, len(in))
	// quantities first, so a bad qty never costs a lock
	for _, l := range in {
		if l.Qty <= 0 || l.Qty > MaxLineQty {
			return nil, ErrInvalidQuantity
		}
	}
	for _, l := range in {
		id, err := uuid.Parse(strings.TrimSpace(l.ItemID))
		if err != nil || id == uuid.Nil {
			return nil, fmt.Errorf("%w: %q", ErrItemNotFound, l.ItemID)
		}
		lines = append(lines, cartLine{itemID: id, qty: l.Qty})
	}
	return lines, nil
}

// filterPayments keeps entries with a positive amount and a known method.
func filterPayments(in []PaymentInput) ([]PaymentInput, int) {
	out := make([]PaymentInput, 0, len(in))
	for _, p := range in {
		if p.Amount <= 0 || !model.PaymentMethod(strings.TrimSpace(p.Method)).Valid() {
			continue
		}
		out = append(out, p)
	}
	return out, len(in) - len(out)
}

// SaleStatusFor derives the sale status from what was paid against the total.
func SaleStatusFor(paid, total int64) model.SaleStatus {
	switch {
	case paid >= total:
		return model.SalePaid
	case paid > 0:
		return model.SalePartial
	default:
		return model.SaleDraft
	}
}

// ChangeDue is only given back on overpayment that includes cash.
func ChangeDue(paid, total int64, payments []model.SalePayment) int64 {
	if paid <= total {
		return 0
	}
	for _, p := range payments {
		if p.Method == model.PayCash {
			return paid - total
		}
	}
	return 0
}

func normalizeLanguage(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), "en") {
		return "en"
	}
	return "fr"
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-kiosk-pos/internal/events"
	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubCatalogRepo struct {
	items map[uuid.UUID]*model.CatalogItem
	// lockHook runs before LockByIDs returns, if set.
	lockHook func(ctx context.Context) error
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{items: make(map[uuid.UUID]*model.CatalogItem)}
}

func (r *stubCatalogRepo) add(item model.CatalogItem) *model.CatalogItem {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = &item
	return &item
}

func (r *stubCatalogRepo) stock(id uuid.UUID) int64 {
	return r.items[id].StockQty
}

func (r *stubCatalogRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CatalogItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *stubCatalogRepo) FindAll(_ context.Context, includeInactive bool) ([]model.CatalogItem, error) {
	var out []model.CatalogItem
	for _, it := range r.items {
		if includeInactive || it.IsActive {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) FindBySKU(_ context.Context, sku string) (*model.CatalogItem, error) {
	for _, it := range r.items {
		if it.SKU != nil && *it.SKU == sku {
			cp := *it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCatalogRepo) LockByIDs(ctx context.Context, _ *gorm.DB, ids []uuid.UUID) ([]model.CatalogItem, error) {
	if r.lockHook != nil {
		if err := r.lockHook(ctx); err != nil {
			return nil, err
		}
	}
	var out []model.CatalogItem
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *stubCatalogRepo) Create(_ context.Context, _ *gorm.DB, item *model.CatalogItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *stubCatalogRepo) UpdateDetails(_ context.Context, _ *gorm.DB, item *model.CatalogItem) error {
	existing, ok := r.items[item.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stock := existing.StockQty
	cp := *item
	cp.StockQty = stock
	r.items[item.ID] = &cp
	return nil
}

func (r *stubCatalogRepo) ApplyStockDelta(_ context.Context, _ *gorm.DB, id uuid.UUID, delta int64) (bool, error) {
	it, ok := r.items[id]
	if !ok || !it.IsStockTracked() || it.StockQty+delta < 0 {
		return false, nil
	}
	it.StockQty += delta
	return true, nil
}

func (r *stubCatalogRepo) LowStock(_ context.Context, threshold int64) ([]model.CatalogItem, error) {
	var out []model.CatalogItem
	for _, it := range r.items {
		if it.IsActive && it.IsStockTracked() && it.StockQty <= threshold {
			out = append(out, *it)
		}
	}
	return out, nil
}

var _ repository.CatalogRepository = (*stubCatalogRepo)(nil)

type stubSaleRepo struct {
	sales    []*model.Sale
	items    []model.SaleItem
	payments []model.SalePayment
	// createErrs are returned by successive Create calls before succeeding.
	createErrs []error

	totalsStatuses []model.SaleStatus
	totalsSince    time.Time
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, sale *model.Sale) error {
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return err
	}
	r.sales = append(r.sales, sale)
	return nil
}

func (r *stubSaleRepo) CreateItem(_ context.Context, _ *gorm.DB, item *model.SaleItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *stubSaleRepo) CreatePayments(_ context.Context, _ *gorm.DB, payments []model.SalePayment) error {
	r.payments = append(r.payments, payments...)
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) ListSince(_ context.Context, since time.Time, limit int) ([]model.Sale, error) {
	var out []model.Sale
	for i := len(r.sales) - 1; i >= 0 && len(out) < limit; i-- {
		if !r.sales[i].CreatedAt.Before(since) {
			out = append(out, *r.sales[i])
		}
	}
	return out, nil
}

func (r *stubSaleRepo) TotalsSince(_ context.Context, since time.Time, statuses []model.SaleStatus) (repository.SaleTotals, error) {
	r.totalsSince = since
	r.totalsStatuses = statuses
	var t repository.SaleTotals
	for _, s := range r.sales {
		if s.CreatedAt.Before(since) {
			continue
		}
		for _, st := range statuses {
			if s.Status == st {
				t.TotalAmount += s.TotalAmount
				t.Count++
			}
		}
	}
	return t, nil
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubReceiptRepo struct {
	byNo  map[string]*model.Receipt
	reads int
}

func newStubReceiptRepo() *stubReceiptRepo {
	return &stubReceiptRepo{byNo: make(map[string]*model.Receipt)}
}

func (r *stubReceiptRepo) Create(_ context.Context, _ *gorm.DB, receipt *model.Receipt) error {
	if _, taken := r.byNo[receipt.ReceiptNo]; taken {
		return gorm.ErrDuplicatedKey
	}
	r.byNo[receipt.ReceiptNo] = receipt
	return nil
}

func (r *stubReceiptRepo) FindByNumber(_ context.Context, receiptNo string) (*model.Receipt, error) {
	r.reads++
	rec, ok := r.byNo[receiptNo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

var _ repository.ReceiptRepository = (*stubReceiptRepo)(nil)

type stubMovementRepo struct {
	catalog *stubCatalogRepo
	moves   []model.InventoryMovement
}

func (r *stubMovementRepo) Create(_ context.Context, _ *gorm.DB, m *model.InventoryMovement) error {
	r.moves = append(r.moves, *m)
	return nil
}

func (r *stubMovementRepo) ListByItem(_ context.Context, itemID uuid.UUID, limit int) ([]model.InventoryMovement, error) {
	var out []model.InventoryMovement
	for i := len(r.moves) - 1; i >= 0 && len(out) < limit; i-- {
		if r.moves[i].ItemID == itemID {
			out = append(out, r.moves[i])
		}
	}
	return out, nil
}

func (r *stubMovementRepo) Mismatches(_ context.Context) ([]model.StockMismatch, error) {
	sums := map[uuid.UUID]int64{}
	for _, m := range r.moves {
		sums[m.ItemID] += m.Delta
	}
	var out []model.StockMismatch
	for id, it := range r.catalog.items {
		if it.StockQty != sums[id] {
			out = append(out, model.StockMismatch{ItemID: id, Name: it.Name, StockQty: it.StockQty, LedgerTotal: sums[id]})
		}
	}
	return out, nil
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

type stubAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
	err     error
}

func (r *stubAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, limit int) ([]model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) > limit {
		return r.entries[:limit], nil
	}
	return r.entries, nil
}

func (r *stubAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

var _ repository.AuditRepository = (*stubAuditRepo)(nil)

type stubHub struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (h *stubHub) Publish(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func (h *stubHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}

type stubPublisher struct {
	mu     sync.Mutex
	events []events.SaleCompletedEvent
	err    error
}

func (p *stubPublisher) PublishSaleCompleted(_ context.Context, ev events.SaleCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *stubPublisher) Close() error { return nil }

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type stubStaffRepo struct {
	staff []model.Staff
	err   error
}

func (r *stubStaffRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	for i := range r.staff {
		if r.staff[i].ID == id {
			return &r.staff[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStaffRepo) FindActive(_ context.Context) ([]model.Staff, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Staff
	for _, s := range r.staff {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubStaffRepo) FindRoot(_ context.Context) (*model.Staff, error) {
	for i := range r.staff {
		if r.staff[i].IsRoot {
			return &r.staff[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStaffRepo) FindByName(_ context.Context, name string) (*model.Staff, error) {
	for i := range r.staff {
		if r.staff[i].FullName == name {
			return &r.staff[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStaffRepo) FindAll(_ context.Context) ([]model.Staff, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]model.Staff(nil), r.staff...), nil
}

func (r *stubStaffRepo) Create(_ context.Context, s *model.Staff) error {
	if r.err != nil {
		return r.err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.staff = append(r.staff, *s)
	return nil
}

func (r *stubStaffRepo) Update(_ context.Context, s *model.Staff) error {
	for i := range r.staff {
		if r.staff[i].ID == s.ID {
			r.staff[i].FullName = s.FullName
			r.staff[i].RoleID = s.RoleID
			r.staff[i].IsActive = s.IsActive
			r.staff[i].UpdatedBy = s.UpdatedBy
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubStaffRepo) UpdatePreferences(_ context.Context, id uuid.UUID, language, theme string) error {
	for i := range r.staff {
		if r.staff[i].ID == id {
			r.staff[i].UILanguage = language
			r.staff[i].UITheme = theme
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubStaffRepo) UpdatePIN(_ context.Context, id uuid.UUID, hash string) error {
	for i := range r.staff {
		if r.staff[i].ID == id {
			r.staff[i].PINHash = hash
			return nil
		}
	}
	return errors.New("not found")
}

var _ repository.StaffRepository = (*stubStaffRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	catalog   *stubCatalogRepo
	sales     *stubSaleRepo
	receipts  *stubReceiptRepo
	movements *stubMovementRepo
	auditRepo *stubAuditRepo
	hub       *stubHub
	publisher *stubPublisher

	audit    AuditRecorder
	ledger   StockLedger
	checkout *checkoutService
	cat      CatalogService

	clock time.Time
	seq   int
}

var cashier = Actor{ID: uuid.MustParse("00000000-0000-0000-0000-00000000c0de"), Name: "Awa"}

func newFixture() *fixture {
	f := &fixture{
		catalog:   newStubCatalogRepo(),
		sales:     &stubSaleRepo{},
		receipts:  newStubReceiptRepo(),
		auditRepo: &stubAuditRepo{},
		hub:       &stubHub{},
		publisher: &stubPublisher{},
		clock:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	f.movements = &stubMovementRepo{catalog: f.catalog}
	f.audit = NewAuditRecorder(f.auditRepo)
	f.ledger = NewStockLedger(nil, f.catalog, f.movements, f.audit, f.hub)
	f.cat = NewCatalogService(nil, f.catalog, f.ledger, f.audit, f.hub)

	svc := NewCheckoutService(nil, f.catalog, f.sales, f.receipts, f.ledger, f.audit, f.hub, f.publisher, nil,
		CheckoutConfig{Brand: "ALLIANCE DigiKiosk", Timeout: time.Second, Attempts: 3}).(*checkoutService)
	svc.now = func() time.Time { return f.clock }
	svc.numbers = func(prefix string, year int) string {
		f.seq++
		return fmt.Sprintf("%s-%d-%06d", prefix, year, f.seq)
	}
	f.checkout = svc
	return f
}

func (f *fixture) product(name string, price, stock int64) *model.CatalogItem {
	return f.catalog.add(model.CatalogItem{
		ItemType: model.ItemProduct, Name: name, Category: "Accessories",
		PriceAmount: price, TrackStock: true, StockQty: stock, IsActive: true,
	})
}

func (f *fixture) service(name string, price int64) *model.CatalogItem {
	return f.catalog.add(model.CatalogItem{
		ItemType: model.ItemService, Name: name, Category: "Services",
		PriceAmount: price, IsActive: true,
	})
}

func line(item *model.CatalogItem, qty int64) CheckoutLine {
	return CheckoutLine{ItemID: item.ID.String(), Qty: qty}
}

func pay(method string, amount int64) PaymentInput {
	return PaymentInput{Method: method, Amount: amount}
}

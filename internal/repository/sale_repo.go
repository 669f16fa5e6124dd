package repository

import (
	"context"
	"time"

	"go-kiosk-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleTotals struct {
	TotalAmount int64 `json:"total_sales"`
	Count       int64 `json:"sales_count"`
}

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, sale *model.Sale) error
	CreateItem(ctx context.Context, tx *gorm.DB, item *model.SaleItem) error
	CreatePayments(ctx context.Context, tx *gorm.DB, payments []model.SalePayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSince(ctx context.Context, since time.Time, limit int) ([]model.Sale, error)
	TotalsSince(ctx context.Context, since time.Time, statuses []model.SaleStatus) (SaleTotals, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// Create inserts the sale header only; lines and payments are written separately.
func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, sale *model.Sale) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Create(sale).Error
}

func (r *saleRepo) CreateItem(ctx context.Context, tx *gorm.DB, item *model.SaleItem) error {
	return conn(ctx, r.db, tx).Create(item).Error
}

func (r *saleRepo) CreatePayments(ctx context.Context, tx *gorm.DB, payments []model.SalePayment) error {
	if len(payments) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(&payments).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleRepo) TotalsSince(ctx context.Context, since time.Time, statuses []model.SaleStatus) (SaleTotals, error) {
	var totals SaleTotals
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total_amount, COUNT(*) AS count").
		Where("created_at >= ? AND status IN ?", since, statuses).
		Scan(&totals).Error
	return totals, err
}

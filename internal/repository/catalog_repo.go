package repository

import (
	"context"

	"go-kiosk-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error)
	FindAll(ctx context.Context, includeInactive bool) ([]model.CatalogItem, error)
	FindBySKU(ctx context.Context, sku string) (*model.CatalogItem, error)
	LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.CatalogItem, error)
	Create(ctx context.Context, tx *gorm.DB, item *model.CatalogItem) error
	UpdateDetails(ctx context.Context, tx *gorm.DB, item *model.CatalogItem) error
	ApplyStockDelta(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int64) (bool, error)
	LowStock(ctx context.Context, threshold int64) ([]model.CatalogItem, error)
}

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db}
}

func (r *catalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepo) FindAll(ctx context.Context, includeInactive bool) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	q := r.db.WithContext(ctx).Order("category ASC, name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *catalogRepo) FindBySKU(ctx context.Context, sku string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// LockByIDs takes row locks in id order so concurrent checkouts on overlapping
// carts cannot deadlock.
func (r *catalogRepo) LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *catalogRepo) Create(ctx context.Context, tx *gorm.DB, item *model.CatalogItem) error {
	return conn(ctx, r.db, tx).Create(item).Error
}

// UpdateDetails never writes stock_qty; stock only moves through the ledger.
func (r *catalogRepo) UpdateDetails(ctx context.Context, tx *gorm.DB, item *model.CatalogItem) error {
	return conn(ctx, r.db, tx).Model(item).
		Select("sku", "item_type", "name", "category", "description", "price_amount",
			"cost_amount", "track_stock", "is_active", "updated_by", "updated_at").
		Updates(item).Error
}

// ApplyStockDelta adds delta to a tracked product's stock only if the result stays
// non-negative. It reports whether a row was changed.
func (r *catalogRepo) ApplyStockDelta(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int64) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.CatalogItem{}).
		Where("id = ? AND item_type = ? AND track_stock = ? AND stock_qty + ? >= 0", id, model.ItemProduct, true, delta).
		Update("stock_qty", gorm.Expr("stock_qty + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *catalogRepo) LowStock(ctx context.Context, threshold int64) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND item_type = ? AND track_stock = ? AND stock_qty <= ?", true, model.ItemProduct, true, threshold).
		Order("stock_qty ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

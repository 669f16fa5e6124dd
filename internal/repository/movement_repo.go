package repository

import (
	"context"

	"go-kiosk-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(ctx context.Context, tx *gorm.DB, m *model.InventoryMovement) error
	ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.InventoryMovement, error)
	Mismatches(ctx context.Context) ([]model.StockMismatch, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(ctx context.Context, tx *gorm.DB, m *model.InventoryMovement) error {
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *movementRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.InventoryMovement, error) {
	var moves []model.InventoryMovement
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Limit(limit).
		Find(&moves).Error
	if err != nil {
		return nil, err
	}
	return moves, nil
}

func (r *movementRepo) Mismatches(ctx context.Context) ([]model.StockMismatch, error) {
	var rows []model.StockMismatch
	err := r.db.WithContext(ctx).
		Table("catalog_items AS c").
		Select("c.id AS item_id, c.name, c.stock_qty, COALESCE(SUM(m.delta), 0) AS ledger_total").
		Joins("LEFT JOIN inventory_movements AS m ON m.item_id = c.id").
		Group("c.id, c.name, c.stock_qty").
		Having("c.stock_qty <> COALESCE(SUM(m.delta), 0)").
		Order("c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

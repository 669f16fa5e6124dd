package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReasonSale       = "SALE"
	ReasonAdjustment = "ADJUSTMENT"
	ReasonOpening    = "OPENING"
	ReasonCorrection = "CORRECTION"
)

type MovementRefType string

const (
	RefSale    MovementRefType = "SALE"
	RefManual  MovementRefType = "MANUAL"
	RefCatalog MovementRefType = "CATALOG"
)

// InventoryMovement is one append-only signed stock change.
// For every item the sum of deltas equals catalog_items.stock_qty.
type InventoryMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Delta       int64           `gorm:"not null;check:delta <> 0" json:"delta"`
	Reason      string          `gorm:"type:varchar(120);not null" json:"reason"`
	RefType     MovementRefType `gorm:"type:varchar(10);not null" json:"ref_type"`
	RefID       *uuid.UUID      `gorm:"type:uuid;index" json:"ref_id,omitempty"`
	CreatedByID *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

func (m *InventoryMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// StockMismatch is an item whose stock_qty disagrees with its ledger.
type StockMismatch struct {
	ItemID      uuid.UUID `json:"item_id"`
	Name        string    `json:"name"`
	StockQty    int64     `json:"stock_qty"`
	LedgerTotal int64     `json:"ledger_total"`
}

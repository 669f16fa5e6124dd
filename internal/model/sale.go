package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleStatus string

const (
	SaleDraft   SaleStatus = "DRAFT"
	SalePartial SaleStatus = "PARTIAL"
	SalePaid    SaleStatus = "PAID"
	SaleVoid    SaleStatus = "VOID"
)

type PaymentMethod string

const (
	PayCash        PaymentMethod = "CASH"
	PayMobileMoney PaymentMethod = "MOBILE_MONEY"
	PayCard        PaymentMethod = "CARD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayMobileMoney, PayCard:
		return true
	}
	return false
}

// Sale is created exactly once per checkout and owns its items and payments.
type Sale struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key;" json:"id"`
	SaleNo         string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"sale_no"`
	Status         SaleStatus    `gorm:"type:varchar(10);not null;index" json:"status"`
	SubtotalAmount int64         `gorm:"not null;check:subtotal_amount >= 0" json:"subtotal_amount"`
	DiscountAmount int64         `gorm:"not null;default:0;check:discount_amount >= 0" json:"discount_amount"`
	TaxAmount      int64         `gorm:"not null;default:0;check:tax_amount >= 0" json:"tax_amount"`
	TotalAmount    int64         `gorm:"not null;check:total_amount >= 0" json:"total_amount"`
	PaidAmount     int64         `gorm:"not null;default:0;check:paid_amount >= 0" json:"paid_amount"`
	ChangeAmount   int64         `gorm:"not null;default:0;check:change_amount >= 0" json:"change_amount"`
	CustomerName   *string       `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	Notes          *string       `gorm:"type:text" json:"notes,omitempty"`
	Language       string        `gorm:"type:varchar(2);not null" json:"language"`
	CreatedByID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
	Items          []SaleItem    `gorm:"constraint:OnDelete:CASCADE;" json:"items,omitempty"`
	Payments       []SalePayment `gorm:"constraint:OnDelete:CASCADE;" json:"payments,omitempty"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleItem snapshots the catalog item as it was when sold.
type SaleItem struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID             uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ItemID             uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	ItemNameSnapshot   string    `gorm:"type:varchar(255);not null" json:"item_name_snapshot"`
	UnitPriceAmount    int64     `gorm:"not null;check:unit_price_amount >= 0" json:"unit_price_amount"`
	Qty                int64     `gorm:"not null;check:qty > 0" json:"qty"`
	LineTotalAmount    int64     `gorm:"not null;check:line_total_amount >= 0" json:"line_total_amount"`
	TrackStockSnapshot bool      `gorm:"not null" json:"track_stock_snapshot"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type SalePayment struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"sale_id"`
	Method       PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Provider     *string       `gorm:"type:varchar(100)" json:"provider,omitempty"`
	Reference    *string       `gorm:"type:varchar(100)" json:"reference,omitempty"`
	Amount       int64         `gorm:"not null;check:amount > 0" json:"amount"`
	ReceivedByID uuid.UUID     `gorm:"type:uuid;not null" json:"received_by"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (p *SalePayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

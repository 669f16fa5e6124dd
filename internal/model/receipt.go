package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Receipt is written once at checkout and never updated. Payload uses json,
// not jsonb, so the stored text is returned byte for byte.
type Receipt struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"sale_id"`
	ReceiptNo string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"receipt_no"`
	Payload   datatypes.JSON `gorm:"type:json;not null" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit action codes.
const (
	ActionCheckoutSale = "CHECKOUT_SALE"
	ActionAdjustStock  = "ADJUST_STOCK"
	ActionCreateItem   = "CREATE_ITEM"
	ActionUpdateItem   = "UPDATE_ITEM"
	ActionLoginOK      = "LOGIN_OK"
	ActionLoginFail    = "LOGIN_FAIL"
	ActionResetPIN     = "RESET_PIN"

	ActionCreateStaff       = "CREATE_STAFF"
	ActionUpdateStaff       = "UPDATE_STAFF"
	ActionUpdatePreferences = "UPDATE_PREFERENCES"
)

// Audit entity types.
const (
	EntitySale  = "SALE"
	EntityItem  = "ITEM"
	EntityAuth  = "AUTH"
	EntityStaff = "STAFF"
)

// AuditLog is append-only.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key;" json:"id"`
	ActorID    *uuid.UUID        `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorName  string            `gorm:"type:varchar(255);not null" json:"actor_name"`
	Action     string            `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string            `gorm:"type:varchar(30);not null" json:"entity_type"`
	EntityID   *uuid.UUID        `gorm:"type:uuid" json:"entity_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

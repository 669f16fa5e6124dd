package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go-kiosk-pos/pkg/logger"
	"go-kiosk-pos/pkg/validator"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("kiosk-pos/service")

// Actor is the authenticated staff member performing an operation.
type Actor struct {
	ID   uuid.UUID `validate:"uuid_required"`
	Name string
}

func (a Actor) idPtr() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// validateInput runs struct tag validation and reports the first failure.
func validateInput(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return fmt.Errorf("%w: field %s failed on %s", ErrValidation, errs[0].FailedField, errs[0].Tag)
	}
	return nil
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Broadcaster pushes messages to connected POS screens.
type Broadcaster interface {
	Publish(msg []byte)
}

// StockLevel is the post-commit stock of one item.
type StockLevel struct {
	ItemID   uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	StockQty int64     `json:"stock_qty"`
}

func broadcastStock(ctx context.Context, b Broadcaster, action string, actor Actor, levels []StockLevel) {
	if b == nil || len(levels) == 0 {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"type":   "stock_update",
		"action": action,
		"items":  levels,
		"user": map[string]interface{}{
			"id":   actor.ID,
			"name": actor.Name,
		},
	})
	if err != nil {
		logger.Error(ctx).Err(err).Msg("failed to encode stock update")
		return
	}
	b.Publish(msg)
}

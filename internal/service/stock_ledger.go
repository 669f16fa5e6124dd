package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-kiosk-pos/internal/metrics"
	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const maxHistory = 200

// StockLedger is the only writer of catalog_items.stock_qty. Every change is
// paired with an appended inventory movement in the same transaction.
type StockLedger interface {
	RecordSaleConsumption(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int64, saleID, actorID uuid.UUID) error
	RecordManualAdjustment(ctx context.Context, actor Actor, itemID uuid.UUID, delta int64, reason string) (*model.CatalogItem, error)
	RecordCatalogCorrection(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, delta int64, reason string, actorID uuid.UUID) error
	Reconcile(ctx context.Context) ([]model.StockMismatch, error)
	History(ctx context.Context, itemID uuid.UUID, limit int) ([]model.InventoryMovement, error)
}

type stockLedger struct {
	db        *gorm.DB
	catalog   repository.CatalogRepository
	movements repository.MovementRepository
	audit     AuditRecorder
	hub       Broadcaster
}

func NewStockLedger(db *gorm.DB, catalog repository.CatalogRepository, movements repository.MovementRepository, audit AuditRecorder, hub Broadcaster) StockLedger {
	return &stockLedger{
		db:        db,
		catalog:   catalog,
		movements: movements,
		audit:     audit,
		hub:       hub,
	}
}

// RecordSaleConsumption decrements stock for a sold line. The decrement is
// conditional on enough stock remaining, so a concurrent sale that got there
// first turns this into ErrOutOfStock and the caller's transaction rolls back.
func (l *stockLedger) RecordSaleConsumption(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int64, saleID, actorID uuid.UUID) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return l.apply(ctx, tx, &model.InventoryMovement{
		ItemID:      itemID,
		Delta:       -qty,
		Reason:      model.ReasonSale,
		RefType:     model.RefSale,
		RefID:       &saleID,
		CreatedByID: &actorID,
	})
}

func (l *stockLedger) RecordCatalogCorrection(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, delta int64, reason string, actorID uuid.UUID) error {
	if delta == 0 {
		return nil
	}
	if reason == "" {
		reason = model.ReasonCorrection
	}
	return l.apply(ctx, tx, &model.InventoryMovement{
		ItemID:      itemID,
		Delta:       delta,
		Reason:      reason,
		RefType:     model.RefCatalog,
		RefID:       &itemID,
		CreatedByID: &actorID,
	})
}

func (l *stockLedger) RecordManualAdjustment(ctx context.Context, actor Actor, itemID uuid.UUID, delta int64, reason string) (*model.CatalogItem, error) {
	ctx, span := tracer.Start(ctx, "stock.adjust")
	defer span.End()
	span.SetAttributes(attribute.String("item.id", itemID.String()), attribute.Int64("stock.delta", delta))

	if delta == 0 {
		return nil, ErrDeltaInvalid
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = model.ReasonAdjustment
	}

	var updated model.CatalogItem
	err := runTx(ctx, l.db, func(tx *gorm.DB) error {
		locked, err := l.catalog.LockByIDs(ctx, tx, []uuid.UUID{itemID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return ErrItemNotFound
		}
		item := locked[0]
		if !item.IsStockTracked() {
			return ErrStockNotTracked
		}
		if item.StockQty+delta < 0 {
			return ErrOutOfStock
		}
		if err := l.apply(ctx, tx, &model.InventoryMovement{
			ItemID:      itemID,
			Delta:       delta,
			Reason:      reason,
			RefType:     model.RefManual,
			CreatedByID: actor.idPtr(),
		}); err != nil {
			return err
		}
		item.StockQty += delta
		updated = item
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	l.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionAdjustStock,
		EntityType: model.EntityItem,
		EntityID:   &itemID,
		Metadata: map[string]interface{}{
			"delta":     delta,
			"reason":    reason,
			"new_stock": updated.StockQty,
		},
	})
	broadcastStock(ctx, l.hub, "stock_adjusted", actor, []StockLevel{{
		ItemID: updated.ID, Name: updated.Name, StockQty: updated.StockQty,
	}})

	logger.Info(ctx).
		Str("item_id", itemID.String()).
		Int64("delta", delta).
		Int64("new_stock", updated.StockQty).
		Str("actor", actor.Name).
		Msg("stock adjusted")

	return &updated, nil
}

// apply moves stock and appends the movement inside tx.
func (l *stockLedger) apply(ctx context.Context, tx *gorm.DB, m *model.InventoryMovement) error {
	ok, err := l.catalog.ApplyStockDelta(ctx, tx, m.ItemID, m.Delta)
	if err != nil {
		return fmt.Errorf("apply stock delta for %s: %w", m.ItemID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOutOfStock, m.ItemID)
	}
	if err := l.movements.Create(ctx, tx, m); err != nil {
		return fmt.Errorf("append movement for %s: %w", m.ItemID, err)
	}
	metrics.StockMovements.WithLabelValues(movementLabel(m)).Inc()
	return nil
}

func movementLabel(m *model.InventoryMovement) string {
	if m.RefType == model.RefManual {
		return model.ReasonAdjustment
	}
	return m.Reason
}

func (l *stockLedger) Reconcile(ctx context.Context) ([]model.StockMismatch, error) {
	ctx, span := tracer.Start(ctx, "stock.reconcile")
	defer span.End()

	rows, err := l.movements.Mismatches(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(rows) > 0 {
		logger.Warn(ctx).Int("mismatched_items", len(rows)).Msg("stock ledger out of balance")
	}
	return rows, nil
}

func (l *stockLedger) History(ctx context.Context, itemID uuid.UUID, limit int) ([]model.InventoryMovement, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}
	if _, err := l.catalog.FindByID(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return l.movements.ListByItem(ctx, itemID, limit)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemInput carries a create or partial update of a catalog item. Nil fields
// are left unchanged on update.
type ItemInput struct {
	SKU         *string `json:"sku" validate:"omitempty,max=64"`
	ItemType    string  `json:"item_type"`
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PriceAmount *int64  `json:"price_amount"`
	CostAmount  *int64  `json:"cost_amount"`
	TrackStock  *bool   `json:"track_stock"`
	StockQty    *int64  `json:"stock_qty"`
	IsActive    *bool   `json:"is_active"`
}

type CatalogService interface {
	CreateItem(ctx context.Context, actor Actor, in ItemInput) (*model.CatalogItem, error)
	UpdateItem(ctx context.Context, actor Actor, id uuid.UUID, in ItemInput) (*model.CatalogItem, error)
	ListItems(ctx context.Context, activeOnly bool) ([]model.CatalogItem, error)
}

type catalogService struct {
	db      *gorm.DB
	catalog repository.CatalogRepository
	ledger  StockLedger
	audit   AuditRecorder
	hub     Broadcaster
}

func NewCatalogService(db *gorm.DB, catalog repository.CatalogRepository, ledger StockLedger, audit AuditRecorder, hub Broadcaster) CatalogService {
	return &catalogService{
		db:      db,
		catalog: catalog,
		ledger:  ledger,
		audit:   audit,
		hub:     hub,
	}
}

func (s *catalogService) ListItems(ctx context.Context, activeOnly bool) ([]model.CatalogItem, error) {
	return s.catalog.FindAll(ctx, !activeOnly)
}

func (s *catalogService) CreateItem(ctx context.Context, actor Actor, in ItemInput) (*model.CatalogItem, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	itemType, err := parseItemType(in.ItemType)
	if err != nil {
		return nil, err
	}
	item := &model.CatalogItem{
		ItemType:    itemType,
		Name:        strings.TrimSpace(deref(in.Name)),
		Category:    strings.TrimSpace(deref(in.Category)),
		Description: trimmedOrNil(in.Description),
		SKU:         trimmedOrNil(in.SKU),
		CostAmount:  in.CostAmount,
		IsActive:    true,
	}
	if item.Name == "" {
		return nil, ErrNameRequired
	}
	if item.Category == "" {
		return nil, ErrCategoryRequired
	}
	if in.PriceAmount == nil || *in.PriceAmount < 0 {
		return nil, ErrPriceInvalid
	}
	if in.CostAmount != nil && *in.CostAmount < 0 {
		return nil, ErrPriceInvalid
	}
	item.PriceAmount = *in.PriceAmount
	item.TrackStock = in.TrackStock != nil && *in.TrackStock

	var opening int64
	if in.StockQty != nil {
		opening = *in.StockQty
	}
	item.Normalize()
	if !item.IsStockTracked() {
		opening = 0
	}
	if opening < 0 {
		return nil, ErrStockInvalid
	}

	if item.SKU != nil {
		if existing, err := s.catalog.FindBySKU(ctx, *item.SKU); err == nil && existing != nil {
			return nil, ErrSKUTaken
		}
	}

	item.CreatedBy = actor.ID.String()
	item.UpdatedBy = actor.ID.String()

	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		// stock starts at zero and the opening balance goes through the ledger
		item.StockQty = 0
		if err := s.catalog.Create(ctx, tx, item); err != nil {
			return err
		}
		if opening > 0 {
			if err := s.ledger.RecordCatalogCorrection(ctx, tx, item.ID, opening, model.ReasonOpening, actor.ID); err != nil {
				return err
			}
			item.StockQty = opening
		}
		return nil
	})
	if err != nil {
		return nil, s.storageError(ctx, "create item", err)
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionCreateItem,
		EntityType: model.EntityItem,
		EntityID:   &item.ID,
		Metadata: map[string]interface{}{
			"item_type":    item.ItemType,
			"name":         item.Name,
			"category":     item.Category,
			"price_amount": item.PriceAmount,
			"track_stock":  item.TrackStock,
			"stock_qty":    item.StockQty,
		},
	})
	if item.IsStockTracked() {
		broadcastStock(ctx, s.hub, "item_created", actor, []StockLevel{{ItemID: item.ID, Name: item.Name, StockQty: item.StockQty}})
	}
	return item, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, actor Actor, id uuid.UUID, in ItemInput) (*model.CatalogItem, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	var before, after model.CatalogItem

	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		locked, err := s.catalog.LockByIDs(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return ErrItemNotFound
		}
		before = locked[0]
		after = before

		if in.Name != nil {
			if after.Name = strings.TrimSpace(*in.Name); after.Name == "" {
				return ErrNameRequired
			}
		}
		if in.Category != nil {
			if after.Category = strings.TrimSpace(*in.Category); after.Category == "" {
				return ErrCategoryRequired
			}
		}
		if in.Description != nil {
			after.Description = trimmedOrNil(in.Description)
		}
		if in.SKU != nil {
			after.SKU = trimmedOrNil(in.SKU)
		}
		if in.PriceAmount != nil {
			if *in.PriceAmount < 0 {
				return ErrPriceInvalid
			}
			after.PriceAmount = *in.PriceAmount
		}
		if in.CostAmount != nil {
			if *in.CostAmount < 0 {
				return ErrPriceInvalid
			}
			after.CostAmount = in.CostAmount
		}
		if in.IsActive != nil {
			after.IsActive = *in.IsActive
		}
		if in.TrackStock != nil {
			after.TrackStock = *in.TrackStock
		}

		targetStock := before.StockQty
		if in.StockQty != nil {
			targetStock = *in.StockQty
		}
		after.Normalize()
		if !after.IsStockTracked() {
			targetStock = 0
		} else if targetStock < 0 {
			return ErrStockInvalid
		}
		after.UpdatedBy = actor.ID.String()

		delta := targetStock - before.StockQty
		// The ledger only moves stock of tracked rows, so a correction runs
		// while the row is still tracked.
		if before.IsStockTracked() {
			if err := s.ledger.RecordCatalogCorrection(ctx, tx, id, delta, model.ReasonCorrection, actor.ID); err != nil {
				return err
			}
			if err := s.catalog.UpdateDetails(ctx, tx, &after); err != nil {
				return err
			}
		} else {
			if err := s.catalog.UpdateDetails(ctx, tx, &after); err != nil {
				return err
			}
			if err := s.ledger.RecordCatalogCorrection(ctx, tx, id, delta, model.ReasonCorrection, actor.ID); err != nil {
				return err
			}
		}
		after.StockQty = targetStock
		return nil
	})
	if err != nil {
		return nil, s.storageError(ctx, "update item", err)
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionUpdateItem,
		EntityType: model.EntityItem,
		EntityID:   &id,
		Metadata: map[string]interface{}{
			"before": before,
			"after":  after,
		},
	})
	if before.StockQty != after.StockQty || before.IsStockTracked() != after.IsStockTracked() {
		broadcastStock(ctx, s.hub, "item_updated", actor, []StockLevel{{ItemID: after.ID, Name: after.Name, StockQty: after.StockQty}})
	}
	return &after, nil
}

// storageError passes domain errors through and wraps the rest.
func (s *catalogService) storageError(ctx context.Context, op string, err error) error {
	if ErrorCode(err) != ErrInternal.Error() {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSKUTaken
	}
	logger.Error(ctx).Err(err).Str("op", op).Msg("catalog write failed")
	return fmt.Errorf("%s: %w", op, err)
}

// parseItemType defaults to PRODUCT when unset.
func parseItemType(raw string) (model.ItemType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(model.ItemProduct):
		return model.ItemProduct, nil
	case string(model.ItemService):
		return model.ItemService, nil
	}
	return "", ErrItemTypeInvalid
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

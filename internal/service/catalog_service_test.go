package service

import (
	"context"
	"strings"
	"testing"

	"go-kiosk-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func i64(v int64) *int64      { return &v }
func boolPtr(b bool) *bool    { return &b }

func TestCatalogService_CreateProductWithOpeningStock(t *testing.T) {
	f := newFixture()

	item, err := f.cat.CreateItem(context.Background(), cashier, ItemInput{
		SKU:         strPtr(" USB-C-1M "),
		Name:        strPtr("  USB-C cable "),
		Category:    strPtr("Cables"),
		PriceAmount: i64(2500),
		TrackStock:  boolPtr(true),
		StockQty:    i64(12),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemProduct, item.ItemType)
	assert.Equal(t, "USB-C cable", item.Name)
	assert.Equal(t, "USB-C-1M", *item.SKU)
	assert.Equal(t, int64(12), item.StockQty)
	assert.Equal(t, int64(12), f.catalog.stock(item.ID))

	require.Len(t, f.movements.moves, 1)
	assert.Equal(t, model.ReasonOpening, f.movements.moves[0].Reason)
	assert.Equal(t, model.RefCatalog, f.movements.moves[0].RefType)
	assert.Equal(t, int64(12), f.movements.moves[0].Delta)

	assert.Equal(t, []string{model.ActionCreateItem}, f.auditRepo.actions())
	assert.Equal(t, 1, f.hub.count())
}

func TestCatalogService_CreateServiceIsNeverTracked(t *testing.T) {
	f := newFixture()

	item, err := f.cat.CreateItem(context.Background(), cashier, ItemInput{
		ItemType:    "service",
		Name:        strPtr("Printing A4"),
		Category:    strPtr("Services"),
		PriceAmount: i64(100),
		TrackStock:  boolPtr(true),
		StockQty:    i64(50),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemService, item.ItemType)
	assert.False(t, item.TrackStock)
	assert.Zero(t, item.StockQty)
	assert.Empty(t, f.movements.moves)
	assert.Zero(t, f.hub.count())
}

func TestCatalogService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      ItemInput
		wantErr error
	}{
		{"missing name", ItemInput{Name: strPtr("  "), Category: strPtr("X"), PriceAmount: i64(1)}, ErrNameRequired},
		{"missing category", ItemInput{Name: strPtr("Mouse"), PriceAmount: i64(1)}, ErrCategoryRequired},
		{"missing price", ItemInput{Name: strPtr("Mouse"), Category: strPtr("X")}, ErrPriceInvalid},
		{"negative price", ItemInput{Name: strPtr("Mouse"), Category: strPtr("X"), PriceAmount: i64(-1)}, ErrPriceInvalid},
		{"negative cost", ItemInput{Name: strPtr("Mouse"), Category: strPtr("X"), PriceAmount: i64(1), CostAmount: i64(-1)}, ErrPriceInvalid},
		{"unknown type", ItemInput{ItemType: "BUNDLE", Name: strPtr("Mouse"), Category: strPtr("X"), PriceAmount: i64(1)}, ErrItemTypeInvalid},
		{"sku too long", ItemInput{SKU: strPtr(strings.Repeat("S", 65)), Name: strPtr("Mouse"), Category: strPtr("X"), PriceAmount: i64(1)}, ErrValidation},
		{"negative stock", ItemInput{Name: strPtr("Mouse"), Category: strPtr("X"), PriceAmount: i64(1), TrackStock: boolPtr(true), StockQty: i64(-2)}, ErrStockInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.cat.CreateItem(context.Background(), cashier, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.catalog.items)
			assert.Empty(t, f.auditRepo.actions())
		})
	}
}

func TestCatalogService_CreateDuplicateSKU(t *testing.T) {
	f := newFixture()
	f.catalog.add(model.CatalogItem{SKU: strPtr("MS-01"), Name: "Mouse", Category: "X", ItemType: model.ItemProduct, IsActive: true})

	_, err := f.cat.CreateItem(context.Background(), cashier, ItemInput{
		SKU: strPtr("MS-01"), Name: strPtr("Other mouse"), Category: strPtr("X"), PriceAmount: i64(10),
	})
	assert.ErrorIs(t, err, ErrSKUTaken)
	assert.Equal(t, "SKU_TAKEN", ErrorCode(err))
}

func TestCatalogService_UpdateStockGoesThroughLedger(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.cat.CreateItem(ctx, cashier, ItemInput{
		Name: strPtr("Mouse"), Category: strPtr("X"), PriceAmount: i64(3000), TrackStock: boolPtr(true), StockQty: i64(5),
	})
	require.NoError(t, err)

	updated, err := f.cat.UpdateItem(ctx, cashier, item.ID, ItemInput{StockQty: i64(8), PriceAmount: i64(3500)})
	require.NoError(t, err)
	assert.Equal(t, int64(8), updated.StockQty)
	assert.Equal(t, int64(3500), updated.PriceAmount)
	assert.Equal(t, int64(8), f.catalog.stock(item.ID))
	assert.Equal(t, int64(3500), f.catalog.items[item.ID].PriceAmount)

	require.Len(t, f.movements.moves, 2)
	assert.Equal(t, model.ReasonCorrection, f.movements.moves[1].Reason)
	assert.Equal(t, int64(3), f.movements.moves[1].Delta)

	actions := f.auditRepo.actions()
	assert.Equal(t, []string{model.ActionCreateItem, model.ActionUpdateItem}, actions)
	meta := f.auditRepo.entries[1].Metadata
	assert.Contains(t, meta, "before")
	assert.Contains(t, meta, "after")
}

func TestCatalogService_UpdateTrackingOffZeroesStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.cat.CreateItem(ctx, cashier, ItemInput{
		Name: strPtr("Gift card"), Category: strPtr("X"), PriceAmount: i64(5000), TrackStock: boolPtr(true), StockQty: i64(5),
	})
	require.NoError(t, err)

	updated, err := f.cat.UpdateItem(ctx, cashier, item.ID, ItemInput{TrackStock: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.TrackStock)
	assert.Zero(t, updated.StockQty)
	assert.Zero(t, f.catalog.stock(item.ID))

	mismatches, err := f.ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestCatalogService_UpdateTrackingOnWithStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item, err := f.cat.CreateItem(ctx, cashier, ItemInput{
		Name: strPtr("Headset"), Category: strPtr("X"), PriceAmount: i64(9000),
	})
	require.NoError(t, err)
	assert.Empty(t, f.movements.moves)

	updated, err := f.cat.UpdateItem(ctx, cashier, item.ID, ItemInput{TrackStock: boolPtr(true), StockQty: i64(4)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.StockQty)
	assert.Equal(t, int64(4), f.catalog.stock(item.ID))
	require.Len(t, f.movements.moves, 1)
	assert.Equal(t, int64(4), f.movements.moves[0].Delta)
}

func TestCatalogService_UpdateRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mouse := f.product("Mouse", 3000, 2)

	_, err := f.cat.UpdateItem(ctx, cashier, uuid.New(), ItemInput{Name: strPtr("X")})
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = f.cat.UpdateItem(ctx, cashier, mouse.ID, ItemInput{Name: strPtr(" ")})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = f.cat.UpdateItem(ctx, cashier, mouse.ID, ItemInput{StockQty: i64(-1)})
	assert.ErrorIs(t, err, ErrStockInvalid)

	_, err = f.cat.UpdateItem(ctx, cashier, mouse.ID, ItemInput{PriceAmount: i64(-1)})
	assert.ErrorIs(t, err, ErrPriceInvalid)

	assert.Equal(t, int64(2), f.catalog.stock(mouse.ID))
	assert.Empty(t, f.movements.moves)
	assert.Empty(t, f.auditRepo.actions())
}

func TestCatalogService_ListItems(t *testing.T) {
	f := newFixture()
	f.product("Mouse", 3000, 2)
	old := f.product("Old charger", 1000, 0)
	f.catalog.items[old.ID].IsActive = false

	active, err := f.cat.ListItems(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := f.cat.ListItems(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

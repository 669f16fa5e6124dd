package model

type ItemType string

const (
	ItemProduct ItemType = "PRODUCT"
	ItemService ItemType = "SERVICE"
)

// CatalogItem is the authoritative record for something the kiosk sells.
// Items referenced by sales are deactivated, never deleted.
type CatalogItem struct {
	BaseModel
	SKU         *string  `gorm:"type:varchar(64);uniqueIndex" json:"sku,omitempty"`
	ItemType    ItemType `gorm:"type:varchar(10);not null" json:"item_type"`
	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Category    string   `gorm:"type:varchar(100);not null" json:"category"`
	Description *string  `gorm:"type:text" json:"description,omitempty"`
	PriceAmount int64    `gorm:"not null;check:price_amount >= 0" json:"price_amount"`
	CostAmount  *int64   `json:"cost_amount,omitempty"`
	TrackStock  bool     `gorm:"not null;default:false" json:"track_stock"`
	StockQty    int64    `gorm:"not null;default:0" json:"stock_qty"`
	IsActive    bool     `gorm:"not null;default:true;index" json:"is_active"`
}

// IsStockTracked is true only for products flagged to track stock.
func (i *CatalogItem) IsStockTracked() bool {
	return i.ItemType == ItemProduct && i.TrackStock
}

// Normalize enforces that services never carry stock.
func (i *CatalogItem) Normalize() {
	if i.ItemType != ItemProduct {
		i.TrackStock = false
	}
	if !i.IsStockTracked() {
		i.StockQty = 0
	}
}

package service

import "go-kiosk-pos/internal/model"

type PricedLine struct {
	Item      model.CatalogItem
	Qty       int64
	LineTotal int64
}

type Adjustments struct {
	Discount int64
	Tax      int64
}

// PricingRules computes discount and tax for a cart.
type PricingRules interface {
	Apply(lines []PricedLine, subtotal int64) Adjustments
}

// NoPricing applies no discount and no tax.
type NoPricing struct{}

func (NoPricing) Apply([]PricedLine, int64) Adjustments { return Adjustments{} }

package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const EventTypeSaleCompleted = "sale.completed"

// SaleLine is one line of a completed sale as published downstream.
type SaleLine struct {
	ItemID    uuid.UUID `json:"item_id"`
	Name      string    `json:"name"`
	Qty       int64     `json:"qty"`
	UnitPrice int64     `json:"unit_price_amount"`
	LineTotal int64     `json:"line_total_amount"`
}

// SaleCompletedEvent is emitted after a checkout commits.
type SaleCompletedEvent struct {
	EventID     string     `json:"event_id"`
	EventType   string     `json:"event_type"`
	Timestamp   time.Time  `json:"timestamp"`
	SaleID      uuid.UUID  `json:"sale_id"`
	SaleNo      string     `json:"sale_no"`
	ReceiptNo   string     `json:"receipt_no"`
	Status      string     `json:"status"`
	TotalAmount int64      `json:"total_amount"`
	PaidAmount  int64      `json:"paid_amount"`
	CashierID   uuid.UUID  `json:"cashier_id"`
	Lines       []SaleLine `json:"lines"`
}

// Publisher delivers domain events. Delivery is best effort: the sale is
// already committed when an event is published.
type Publisher interface {
	PublishSaleCompleted(ctx context.Context, event SaleCompletedEvent) error
	Close() error
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishSaleCompleted(context.Context, SaleCompletedEvent) error { return nil }
func (NopPublisher) Close() error                                                { return nil }

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CheckoutTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkout_total",
			Help: "Checkouts by outcome code",
		},
		[]string{"result"},
	)

	CheckoutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pos_checkout_duration_seconds",
			Help:    "Checkout latency including the database transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	SaleAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_sale_amount_total",
			Help: "Sum of committed sale totals in minor currency units",
		},
		[]string{"status"},
	)

	StockMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_stock_movements_total",
			Help: "Inventory movements appended, by reason",
		},
		[]string{"reason"},
	)

	ReceiptCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_receipt_cache_total",
			Help: "Receipt lookups by cache outcome",
		},
		[]string{"outcome"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_events_published_total",
			Help: "Domain events published to Kafka, by result",
		},
		[]string{"topic", "result"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(
		CheckoutTotal,
		CheckoutDuration,
		SaleAmount,
		StockMovements,
		ReceiptCache,
		EventsPublished,
		HTTPRequests,
		HTTPLatency,
	)
}

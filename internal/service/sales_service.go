package service

import (
	"context"
	"errors"
	"time"

	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const salesListLimit = 200

type DashboardToday struct {
	TotalSales int64               `json:"total_sales"`
	SalesCount int64               `json:"sales_count"`
	LowStock   []model.CatalogItem `json:"low_stock"`
}

// SalesService is the read side over committed sales.
type SalesService interface {
	Today(ctx context.Context) ([]model.Sale, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	Dashboard(ctx context.Context) (*DashboardToday, error)
}

type salesService struct {
	sales    repository.SaleRepository
	catalog  repository.CatalogRepository
	lowStock int64
	now      func() time.Time
}

func NewSalesService(sales repository.SaleRepository, catalog repository.CatalogRepository, lowStockThreshold int) SalesService {
	return &salesService{
		sales:    sales,
		catalog:  catalog,
		lowStock: int64(lowStockThreshold),
		now:      time.Now,
	}
}

func (s *salesService) startOfDay() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

func (s *salesService) Today(ctx context.Context) ([]model.Sale, error) {
	return s.sales.ListSince(ctx, s.startOfDay(), salesListLimit)
}

func (s *salesService) Get(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// Dashboard counts PAID and PARTIAL sales since midnight and lists tracked
// products at or below the low-stock threshold.
func (s *salesService) Dashboard(ctx context.Context) (*DashboardToday, error) {
	totals, err := s.sales.TotalsSince(ctx, s.startOfDay(), []model.SaleStatus{model.SalePaid, model.SalePartial})
	if err != nil {
		return nil, err
	}
	low, err := s.catalog.LowStock(ctx, s.lowStock)
	if err != nil {
		return nil, err
	}
	if low == nil {
		low = []model.CatalogItem{}
	}
	return &DashboardToday{
		TotalSales: totals.TotalAmount,
		SalesCount: totals.Count,
		LowStock:   low,
	}, nil
}

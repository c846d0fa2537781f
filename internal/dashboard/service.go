package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bandejao/cantina-backend/pkg/config"
	"github.com/bandejao/cantina-backend/pkg/enums"
	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
)

const defaultTopProductsLimit = 10

// Service exposes the admin dashboard aggregations.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
	Sales(ctx context.Context, filters SalesFilters) ([]SalesPointDTO, error)
	TopProducts(ctx context.Context, limit int) ([]TopProductDTO, error)
	PeakHours(ctx context.Context) ([]PeakHourDTO, error)
	OrdersByStatus(ctx context.Context) ([]StatusCountDTO, error)
	RecentOrders(ctx context.Context) ([]RecentOrderDTO, error)
}

type service struct {
	repo *Repository
	cfg  config.OrdersConfig
}

// NewService constructs a dashboard service with the provided dependencies.
func NewService(repo *Repository, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository is required")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	stats := &StatsDTO{}

	var err error
	if stats.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	if stats.PendingOrders, err = s.repo.CountOrdersInStatus(ctx, enums.OrderStatusPendente); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending orders")
	}
	if stats.TotalRevenue, err = s.repo.TotalRevenue(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if stats.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	return stats, nil
}

func (s *service) Sales(ctx context.Context, filters SalesFilters) ([]SalesPointDTO, error) {
	rows, err := s.repo.SalesByDay(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sales by day")
	}
	points := make([]SalesPointDTO, 0, len(rows))
	for _, row := range rows {
		points = append(points, SalesPointDTO{
			Day:     row.Day,
			Orders:  row.Orders,
			Revenue: row.Revenue,
		})
	}
	return points, nil
}

func (s *service) TopProducts(ctx context.Context, limit int) ([]TopProductDTO, error) {
	if limit <= 0 {
		limit = defaultTopProductsLimit
	}
	rows, err := s.repo.TopProducts(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	products := make([]TopProductDTO, 0, len(rows))
	for _, row := range rows {
		productID, err := uuid.Parse(row.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse product id")
		}
		products = append(products, TopProductDTO{
			ProductID:    productID,
			ProductName:  row.ProductName,
			QuantitySold: row.QuantitySold,
			Revenue:      row.Revenue,
		})
	}
	return products, nil
}

func (s *service) PeakHours(ctx context.Context) ([]PeakHourDTO, error) {
	rows, err := s.repo.PeakHours(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "peak hours")
	}
	hours := make([]PeakHourDTO, 0, len(rows))
	for _, row := range rows {
		hours = append(hours, PeakHourDTO{Hour: row.Hour, Orders: row.Orders})
	}
	return hours, nil
}

func (s *service) OrdersByStatus(ctx context.Context) ([]StatusCountDTO, error) {
	rows, err := s.repo.OrdersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "orders by status")
	}
	counts := make([]StatusCountDTO, 0, len(rows))
	for _, row := range rows {
		status, err := enums.ParseOrderStatus(row.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse order status")
		}
		counts = append(counts, StatusCountDTO{Status: status, Count: row.Count})
	}
	return counts, nil
}

func (s *service) RecentOrders(ctx context.Context) ([]RecentOrderDTO, error) {
	limit := s.cfg.RecentOrdersLimit
	if limit <= 0 {
		limit = 10
	}
	orders, err := s.repo.RecentOrders(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent orders")
	}
	recent := make([]RecentOrderDTO, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		recent = append(recent, RecentOrderDTO{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Status:      order.Status,
			Total:       order.Total,
			CreatedAt:   order.CreatedAt,
		})
	}
	return recent, nil
}

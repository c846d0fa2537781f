package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bandejao/cantina-backend/pkg/db/models"
	"github.com/bandejao/cantina-backend/pkg/enums"
)

// Repository runs the read-only aggregations behind the dashboard. All of
// it is derived from orders, order items, users, and products; there is no
// materialized statistics table.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dashboard repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountOrdersInStatus(ctx context.Context, status enums.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// TotalRevenue sums order totals, excluding cancelled orders.
func (r *Repository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Where("status <> ?", enums.OrderStatusCancelado).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Revenue, nil
}

type salesRow struct {
	Day     string
	Orders  int64
	Revenue decimal.Decimal
}

// SalesByDay groups non-cancelled orders by calendar day, oldest first.
func (r *Repository) SalesByDay(ctx context.Context, filters SalesFilters) ([]salesRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(r.dayExpr() + " AS day, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Where("status <> ?", enums.OrderStatusCancelado).
		Group("day").
		Order("day ASC")
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("created_at <= ?", *filters.EndDate)
	}

	var rows []salesRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type topProductRow struct {
	ProductID    string
	ProductName  string
	QuantitySold int64
	Revenue      decimal.Decimal
}

// TopProducts ranks by summed quantity descending; ties break on product
// id so the ordering is deterministic.
func (r *Repository) TopProducts(ctx context.Context, limit int) ([]topProductRow, error) {
	var rows []topProductRow
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.product_id AS product_id, order_items.product_name AS product_name, SUM(order_items.quantity) AS quantity_sold, COALESCE(SUM(order_items.subtotal), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", enums.OrderStatusCancelado).
		Group("order_items.product_id, order_items.product_name").
		Order("quantity_sold DESC, product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type peakHourRow struct {
	Hour   int
	Orders int64
}

// PeakHours groups historical orders by hour of day.
func (r *Repository) PeakHours(ctx context.Context) ([]peakHourRow, error) {
	var rows []peakHourRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(r.hourExpr() + " AS hour, COUNT(*) AS orders").
		Group("hour").
		Order("orders DESC, hour ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *Repository) OrdersByStatus(ctx context.Context) ([]statusCountRow, error) {
	var rows []statusCountRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC, status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// dayExpr and hourExpr paper over the dialect difference between postgres
// in production and sqlite in tests.
func (r *Repository) dayExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-%d', created_at)"
	}
	return "to_char(created_at, 'YYYY-MM-DD')"
}

func (r *Repository) hourExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%H', created_at) AS INTEGER)"
	}
	return "CAST(EXTRACT(HOUR FROM created_at) AS INTEGER)"
}

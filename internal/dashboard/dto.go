package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bandejao/cantina-backend/pkg/enums"
)

// StatsDTO is the headline dashboard card. Revenue excludes cancelled
// orders.
type StatsDTO struct {
	TotalOrders   int64           `json:"total_orders"`
	PendingOrders int64           `json:"pending_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalUsers    int64           `json:"total_users"`
	TotalProducts int64           `json:"total_products"`
}

// SalesPointDTO is one day of the revenue-by-period series.
type SalesPointDTO struct {
	Day     string          `json:"day"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// TopProductDTO ranks products by summed quantity across order items.
type TopProductDTO struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// PeakHourDTO is the order count for one hour of the day.
type PeakHourDTO struct {
	Hour   int   `json:"hour"`
	Orders int64 `json:"orders"`
}

// StatusCountDTO is the order count for one lifecycle status.
type StatusCountDTO struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
}

// RecentOrderDTO is a slim order row for the dashboard feed.
type RecentOrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber int64             `json:"order_number"`
	UserID      uuid.UUID         `json:"user_id"`
	Status      enums.OrderStatus `json:"status"`
	Total       decimal.Decimal   `json:"total"`
	CreatedAt   time.Time         `json:"created_at"`
}

// SalesFilters bounds the revenue-by-period series.
type SalesFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
}

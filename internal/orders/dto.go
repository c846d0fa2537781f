package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bandejao/cantina-backend/pkg/db/models"
	"github.com/bandejao/cantina-backend/pkg/enums"
	"github.com/bandejao/cantina-backend/pkg/pagination"
)

// ItemDTO is a frozen order line.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// HistoryDTO is one entry of the append-only status trail.
type HistoryDTO struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderDTO is the transport shape of an order.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   int64             `json:"order_number"`
	UserID        uuid.UUID         `json:"user_id"`
	Status        enums.OrderStatus `json:"status"`
	Total         decimal.Decimal   `json:"total"`
	Notes         *string           `json:"notes,omitempty"`
	Items         []ItemDTO         `json:"items"`
	StatusHistory []HistoryDTO      `json:"status_history"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// CreateOrderItem is one line of an explicit-item checkout.
type CreateOrderItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest creates an order from the caller's cart, or from an
// explicit item list when Items is non-empty.
type CreateOrderRequest struct {
	Notes *string           `json:"notes,omitempty"`
	Items []CreateOrderItem `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// UpdateStatusRequest is the admin transition payload.
type UpdateStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// ListFilters narrows order listings. UserID is only honored on the admin
// listing; user listings are always scoped to the caller.
type ListFilters struct {
	Status    *enums.OrderStatus
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Page      pagination.Params
}

func fromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		Total:         o.Total,
		Notes:         o.Notes,
		Items:         make([]ItemDTO, 0, len(o.Items)),
		StatusHistory: make([]HistoryDTO, 0, len(o.StatusHistory)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for i := range o.Items {
		item := &o.Items[i]
		dto.Items = append(dto.Items, ItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	for i := range o.StatusHistory {
		entry := &o.StatusHistory[i]
		dto.StatusHistory = append(dto.StatusHistory, HistoryDTO{
			ID:        entry.ID,
			Status:    entry.Status,
			CreatedAt: entry.CreatedAt,
		})
	}
	return dto
}

func fromModels(items []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(items))
	for i := range items {
		out = append(out, *fromModel(&items[i]))
	}
	return out
}

package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bandejao/cantina-backend/pkg/db/models"
)

// ItemDTO is one cart line with its price snapshot taken from the current
// catalog. Subtotal and Total are computed, never stored.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	IsAvailable bool            `json:"is_available"`
}

// CartDTO is the transport shape of a user's cart.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Items     []ItemDTO       `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AddItemRequest adds a product to the cart, merging with an existing line.
// Quantity defaults to 1 when omitted.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
}

// UpdateItemRequest replaces a line's quantity. Zero or negative removes it.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

func fromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	dto := &CartDTO{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     make([]ItemDTO, 0, len(c.Items)),
		Total:     decimal.Zero,
		UpdatedAt: c.UpdatedAt,
	}
	for i := range c.Items {
		item := &c.Items[i]
		line := ItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.UnitPrice = item.Product.Price
			line.IsAvailable = item.Product.IsAvailable
			line.Subtotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		dto.Total = dto.Total.Add(line.Subtotal)
		dto.Items = append(dto.Items, line)
	}
	return dto
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bandejao/cantina-backend/pkg/enums"
)

// Order is an immutable snapshot of a checkout. Only Status (and the
// derived history) changes after creation.
type Order struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   int64                `gorm:"column:order_number;not null;uniqueIndex"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	Status        enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'PENDENTE'"`
	Total         decimal.Decimal      `gorm:"column:total;type:numeric(10,2);not null"`
	Notes         *string              `gorm:"column:notes"`
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

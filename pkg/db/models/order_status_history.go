package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bandejao/cantina-backend/pkg/enums"
)

// OrderStatusHistory is the append-only audit trail of status transitions.
type OrderStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

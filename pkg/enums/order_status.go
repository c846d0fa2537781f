package enums

import "fmt"

// OrderStatus tracks the lifecycle of a canteen order.
type OrderStatus string

const (
	OrderStatusPendente  OrderStatus = "PENDENTE"
	OrderStatusEmPreparo OrderStatus = "EM_PREPARO"
	OrderStatusConcluido OrderStatus = "CONCLUIDO"
	OrderStatusCancelado OrderStatus = "CANCELADO"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendente,
	OrderStatusEmPreparo,
	OrderStatusConcluido,
	OrderStatusCancelado,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusConcluido || o == OrderStatusCancelado
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

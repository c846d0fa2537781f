package orders

import "github.com/bandejao/cantina-backend/pkg/enums"

// allowedTransitions is the order lifecycle. Terminal states have no
// outgoing edges; everything not listed is rejected.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendente: {
		enums.OrderStatusEmPreparo,
		enums.OrderStatusCancelado,
	},
	enums.OrderStatusEmPreparo: {
		enums.OrderStatusConcluido,
		enums.OrderStatusCancelado,
	},
}

// CanTransition reports whether moving from one status to another is a
// valid edge of the lifecycle.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

package orders

import (
	"github.com/alexvaldes/gigworks-backend/pkg/enums"
)

// transitions holds the allowed lifecycle edges. Delivered orders can only be
// completed; completed and cancelled are terminal.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusInProgress, enums.OrderStatusCancelled},
	enums.OrderStatusInProgress: {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:  {enums.OrderStatusCompleted},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from the status.
func IsTerminal(status enums.OrderStatus) bool {
	return len(transitions[status]) == 0
}

// Package statusflow holds the order lifecycle rules: which role may move an
// order from which status to which, and when an order can still be canceled.
package statusflow

import "github.com/jcmexdev/koi-console/internal/console/core/domain/entity"

// Transition is one row of the role-gated transition table.
type Transition struct {
	From entity.OrderStatus
	To   entity.OrderStatus
}

var table = map[entity.Role][]Transition{
	entity.RoleSalesStaff: {
		{From: entity.StatusHealthCheck, To: entity.StatusHealthChecked},
		{From: entity.StatusHealthChecked, To: entity.StatusPacking},
		{From: entity.StatusPacking, To: entity.StatusPacked},
	},
	entity.RoleDeliveryStaff: {
		{From: entity.StatusPending, To: entity.StatusHealthCheck},
		{From: entity.StatusPacked, To: entity.StatusInTransit},
		{From: entity.StatusInTransit, To: entity.StatusDelivered},
	},
}

// Next returns the single status role may advance an order in status to.
func Next(role entity.Role, status entity.OrderStatus) (entity.OrderStatus, bool) {
	for _, t := range table[role] {
		if t.From == status {
			return t.To, true
		}
	}
	return "", false
}

// CanCancel reports whether an order in status may still be canceled.
func CanCancel(status entity.OrderStatus) bool {
	return !status.IsTerminal()
}

// Transitions lists the rows role may perform, in pipeline order.
func Transitions(role entity.Role) []Transition {
	return append([]Transition(nil), table[role]...)
}

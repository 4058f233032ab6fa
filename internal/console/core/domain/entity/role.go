package entity

import "strings"

type Role string

const (
	RoleCustomer      Role = "Customer"
	RoleSalesStaff    Role = "SalesStaff"
	RoleDeliveryStaff Role = "DeliveryStaff"
	RoleManager       Role = "Manager"
)

// ParseRole accepts the role claim as issued by the auth server. Older tokens
// carry "DeliveringStaff" for delivery staff.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer":
		return RoleCustomer, true
	case "salesstaff", "sales":
		return RoleSalesStaff, true
	case "deliverystaff", "deliveringstaff", "delivery":
		return RoleDeliveryStaff, true
	case "manager", "admin":
		return RoleManager, true
	}
	return "", false
}

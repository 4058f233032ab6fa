package entity

import (
	"strings"
	"time"
)

type TransportMethod string

const (
	TransportAir  TransportMethod = "Air"
	TransportSea  TransportMethod = "Sea"
	TransportLand TransportMethod = "Land"
)

// Valid reports whether m is one of the carrier modes the price list knows.
func (m TransportMethod) Valid() bool {
	switch m {
	case TransportAir, TransportSea, TransportLand:
		return true
	}
	return false
}

type OrderStatus string

const (
	StatusPending         OrderStatus = "Pending"
	StatusHealthCheck     OrderStatus = "HealthCheck"
	StatusHealthChecked   OrderStatus = "HealthChecked"
	StatusPacking         OrderStatus = "Packing"
	StatusPacked          OrderStatus = "Packed"
	StatusInTransit       OrderStatus = "InTransit"
	StatusDelivered       OrderStatus = "Delivered"
	StatusSuccess         OrderStatus = "Success"
	StatusCanceled        OrderStatus = "Canceled"
	StatusAwaitingPayment OrderStatus = "AwaitingPayment"
)

var knownStatuses = []OrderStatus{
	StatusPending, StatusHealthCheck, StatusHealthChecked, StatusPacking, StatusPacked,
	StatusInTransit, StatusDelivered, StatusSuccess, StatusCanceled, StatusAwaitingPayment,
}

// ParseOrderStatus matches s case-insensitively against the known statuses.
// The API historically spelled the cancel state "Cancelled"; both map to StatusCanceled.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "Cancelled") {
		return StatusCanceled, true
	}
	for _, st := range knownStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no transition, forward or cancel, may leave s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusSuccess, StatusCanceled:
		return true
	}
	return false
}

type Order struct {
	ID                 int64           `json:"orderId"`
	CustomerID         int64           `json:"customerId"`
	PickupLocation     string          `json:"pickupLocation"`
	Destination        string          `json:"destination"`
	Weight             float64         `json:"weight"`
	Quantity           int             `json:"quantity"`
	TransportMethod    TransportMethod `json:"transportMethod"`
	AdditionalServices string          `json:"additionalServices"`
	PricingID          int64           `json:"pricingId,omitempty"`
	Total              float64         `json:"total"`
	Status             OrderStatus     `json:"status"`
	PlacedDate         time.Time       `json:"placedDate"`
}

// NeedsPayment reports whether the server parked the order until it is paid.
func (o Order) NeedsPayment() bool {
	return o.Status == StatusAwaitingPayment
}
